package main

import (
	"github.com/spf13/cobra"
)

// backfill is the same pipeline as process with a mandatory
// recompute-from fence; entity upserts overwrite the affected rows.
func runBackfill(cmd *cobra.Command, _ []string) error {
	return runEngine(cmd, true)
}
