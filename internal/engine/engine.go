// Package engine applies decoded marketplace events to the derived
// analytics entities, one event at a time, using closed-form incremental
// updates. Processing is strictly single-threaded per event stream: every
// formula reads the previous cumulative value, so the Engine is not safe
// for concurrent use.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"agentscope/internal/chain"
	"agentscope/internal/model"
	"agentscope/internal/oracle"
	"agentscope/internal/registrar"
	"agentscope/internal/store"
)

// MetadataSource resolves ERC20 decimals and total supply. A nil source
// means the engine always falls back to the documented defaults.
type MetadataSource interface {
	TokenMetadata(ctx context.Context, token string) (chain.TokenMetadata, error)
}

// Config holds the injected engine settings.
type Config struct {
	USDPairs            oracle.USDPairSet
	FeeRecipient        string
	SelectorKinds       map[string]string
	GraduationThreshold int64
}

// Engine is the incremental aggregation engine.
type Engine struct {
	store     store.Store
	logger    *zap.Logger
	price     oracle.PriceSource
	meta      MetadataSource
	registrar registrar.Registrar
	cfg       Config

	seen map[string]struct{}
}

func New(cfg Config, s store.Store, price oracle.PriceSource, meta MetadataSource, reg registrar.Registrar, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GraduationThreshold <= 0 {
		cfg.GraduationThreshold = 100
	}
	if price == nil {
		price = oracle.NewStoreSource(s, cfg.USDPairs)
	}
	return &Engine{
		cfg:       cfg,
		store:     s,
		logger:    logger,
		price:     price,
		meta:      meta,
		registrar: reg,
		seen:      make(map[string]struct{}),
	}
}

// Apply processes one event. Malformed events are logged and skipped;
// only store failures surface as errors. Duplicate deliveries within a
// run are dropped by (block, tx hash, log index). Each handler reports
// whether it applied the event; rejected events leave no entity behind,
// network metrics included.
func (e *Engine) Apply(ctx context.Context, rec model.EventRecord) error {
	if rec.EventName == "" {
		e.logger.Warn("event without name", zap.String("tx", rec.TxHash))
		return nil
	}
	if e.isDuplicate(rec) {
		e.logger.Debug("duplicate event dropped",
			zap.Uint64("block", rec.BlockNumber),
			zap.String("tx", rec.TxHash),
			zap.Uint64("log_index", rec.LogIndex),
		)
		return nil
	}

	var (
		applied bool
		err     error
	)
	switch rec.EventName {
	case model.EventSwap:
		applied, err = e.handleSwap(ctx, rec)
	case model.EventTransfer:
		applied, err = e.handleTransfer(ctx, rec)
	case model.EventStakeUpdated:
		applied, err = e.handleStakeUpdated(ctx, rec)
	case model.EventRewardDistributed:
		applied, err = e.handleRewardDistributed(ctx, rec)
	case model.EventServiceAccepted:
		applied, err = e.handleServiceAccepted(ctx, rec)
	case model.EventValidatorAdded:
		applied, err = e.handleValidatorAdded(ctx, rec)
	case model.EventValidatorScoreUpdated:
		applied, err = e.handleValidatorScoreUpdated(ctx, rec)
	case model.EventContributionSubmitted:
		applied, err = e.handleContributionSubmitted(ctx, rec)
	case model.EventAgentCreated:
		applied, err = e.handleAgentCreated(ctx, rec)
	case model.EventAgentGraduated:
		applied, err = e.handleAgentGraduated(ctx, rec)
	case model.EventLaunched:
		applied, err = e.handleLaunched(ctx, rec)
	case model.EventLaunchCall:
		applied, err = e.handleLaunchCall(ctx, rec)
	default:
		e.logger.Warn("unknown event", zap.String("event", rec.EventName), zap.String("tx", rec.TxHash))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", rec.EventName, rec.TxHash, err)
	}
	if !applied {
		return nil
	}

	return e.updateNetworkMetrics(ctx, rec)
}

func (e *Engine) isDuplicate(rec model.EventRecord) bool {
	id := fmt.Sprintf("%d:%s:%d", rec.BlockNumber, rec.TxHash, rec.LogIndex)
	if _, ok := e.seen[id]; ok {
		return true
	}
	e.seen[id] = struct{}{}
	return false
}

func decodePayload(rec model.EventRecord, out any) error {
	if err := json.Unmarshal(rec.Decoded, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", rec.EventName, err)
	}
	return nil
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

func parseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
