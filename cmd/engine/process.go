package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentscope/internal/chain"
	"agentscope/internal/config"
	"agentscope/internal/engine"
	"agentscope/internal/oracle"
	"agentscope/internal/registrar"
	"agentscope/internal/store"
	"agentscope/internal/store/memory"
	"agentscope/internal/store/postgres"
)

func runProcess(cmd *cobra.Command, _ []string) error {
	return runEngine(cmd, false)
}

func runEngine(cmd *cobra.Command, backfill bool) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}

	recomputeFrom, err := config.ParseTimestamp(cfg.RecomputeFrom)
	if err != nil {
		return fmt.Errorf("parse recompute-from: %w", err)
	}
	if backfill && recomputeFrom == 0 {
		return fmt.Errorf("recompute-from is required for backfill")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		entityStore store.Store
		pgStore     *postgres.Store
	)
	if cfg.PGDSN != "" {
		pgStore, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
		entityStore = pgStore
	} else {
		logger.Warn("no pg dsn configured, using in-memory store")
		entityStore = memory.NewStore()
	}

	var meta engine.MetadataSource
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		meta = chain.NewMetadataFetcher(chainClient, cfg.MaxRetries, cfg.RetryBackoff)
	}

	var stateStore engine.StateStore
	if cfg.StateFile != "" {
		stateStore = &engine.FileStateStore{Path: cfg.StateFile}
	} else if pgStore != nil {
		stateStore = &engine.DBStateStore{Store: pgStore, Name: "engine"}
	}

	usdPairs := oracle.NewUSDPairSet(cfg.USDPairs)
	eng := engine.New(engine.Config{
		USDPairs:            usdPairs,
		FeeRecipient:        cfg.FeeRecipient,
		SelectorKinds:       cfg.SelectorMap,
		GraduationThreshold: cfg.GraduationThreshold,
	}, entityStore, nil, meta, registrar.NewJsonlRegistrar(cfg.RegistrarOut), logger)

	runner := engine.NewRunner(engine.RunConfig{
		BatchSize:     cfg.BatchSize,
		RecomputeFrom: recomputeFrom,
		StateStore:    stateStore,
	}, eng, entityStore, logger)

	logger.Info("engine start",
		zap.String("input", cfg.Input),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Uint64("recompute_from", recomputeFrom),
		zap.Bool("backfill", backfill),
	)

	return runner.Run(ctx, cfg.Input)
}
