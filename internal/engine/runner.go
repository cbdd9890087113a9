package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"agentscope/internal/model"
	"agentscope/internal/store"
)

// RunConfig controls a run over an event file.
type RunConfig struct {
	BatchSize     int
	RecomputeFrom uint64
	StateStore    StateStore
}

// Runner drives the engine over a decoded-events JSONL file. Events must
// arrive in chain-canonical order; the runner enforces only the resume
// fence, not ordering.
type Runner struct {
	cfg    RunConfig
	engine *Engine
	store  store.Store
	logger *zap.Logger

	lastProcessed uint64
}

func NewRunner(cfg RunConfig, engine *Engine, s store.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	return &Runner{cfg: cfg, engine: engine, store: s, logger: logger}
}

// Run processes one JSONL file. Events at or before the saved fence are
// skipped; state is persisted every BatchSize applied events and at the
// end, after the corresponding entity writes have flushed.
func (r *Runner) Run(ctx context.Context, inputPath string) error {
	if r.engine == nil {
		return fmt.Errorf("engine is nil")
	}
	if r.store == nil {
		return fmt.Errorf("store is nil")
	}

	startTs, err := r.loadStartTimestamp(ctx)
	if err != nil {
		return err
	}
	r.lastProcessed = startTs

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, applied, skipped, failed int

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.EventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			r.logger.Warn("decode event record", zap.Error(err))
			continue
		}

		if record.Timestamp <= startTs {
			skipped++
			continue
		}

		if err := r.engine.Apply(ctx, record); err != nil {
			return err
		}
		applied++

		if record.Timestamp > r.lastProcessed {
			r.lastProcessed = record.Timestamp
		}

		if applied%r.cfg.BatchSize == 0 {
			if err := r.store.Flush(ctx); err != nil {
				return err
			}
			if err := r.saveState(ctx); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	if err := r.store.Flush(ctx); err != nil {
		return err
	}
	if err := r.saveState(ctx); err != nil {
		return err
	}

	r.logger.Info("run complete",
		zap.Int("total", total),
		zap.Int("applied", applied),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Uint64("last_processed", r.lastProcessed),
	)
	return nil
}

func (r *Runner) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if r.cfg.RecomputeFrom > 0 {
		return r.cfg.RecomputeFrom - 1, nil
	}
	if r.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := r.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

func (r *Runner) saveState(ctx context.Context) error {
	if r.cfg.StateStore == nil {
		return nil
	}
	return r.cfg.StateStore.Save(ctx, r.lastProcessed)
}
