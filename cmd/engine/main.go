package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "engine",
		Short:        "Agent marketplace analytics engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	processCmd := &cobra.Command{
		Use:   "process",
		Short: "Process decoded events into analytics entities",
		RunE:  runProcess,
	}
	addEngineFlags(processCmd)
	root.AddCommand(processCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Reprocess events from a timestamp, overwriting derived entities",
		RunE:  runBackfill,
	}
	addEngineFlags(backfillCmd)
	root.AddCommand(backfillCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "chain RPC URL for token metadata (optional)")
	cmd.Flags().String("in", "", "input decoded events JSONL")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN (omit for in-memory store)")
	cmd.Flags().Int("batch-size", 500, "events per state checkpoint")
	cmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	cmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	cmd.Flags().Int("max-retries", 5, "maximum metadata retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().StringSlice("usd-pairs", nil, "stable-asset token addresses (comma-separated)")
	cmd.Flags().String("fee-recipient", "", "protocol fee recipient address")
	cmd.Flags().String("registrar-out", "./data/watch_sources.jsonl", "watch source registration JSONL path")
	cmd.Flags().String("selector-map", "", "extra selector->event mappings (comma-separated key=value)")
	cmd.Flags().Int64("graduation-threshold", 100, "maturity score required to graduate")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
