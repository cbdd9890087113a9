// Package store defines the keyed entity store the engine persists
// through. The store carries no business logic: get/put of JSON documents
// keyed by (kind, key), exactly as the engine resolves them.
package store

import "context"

// Entity kinds. Keys are documented next to each entity's resolver.
const (
	KindTokenSupply            = "token_supply"
	KindTokenEconomics         = "token_economics"
	KindEconomicSnapshot       = "economic_snapshot"
	KindTokenDayStats          = "token_day_stats"
	KindTokenTraderStats       = "token_trader_stats"
	KindTradeSnapshot          = "trade_snapshot"
	KindSwap                   = "swap"
	KindTokenLaunch            = "token_launch"
	KindAgent                  = "agent"
	KindAgentTokenIndex        = "agent_token_index"
	KindAgentDayData           = "agent_day_data"
	KindService                = "service"
	KindContribution           = "contribution"
	KindValidator              = "validator"
	KindValidatorNetwork       = "validator_network"
	KindMaturityScoreSnapshot  = "maturity_score_snapshot"
	KindMarketHealthSnapshot   = "market_health_snapshot"
	KindGraduationPrediction   = "graduation_prediction"
	KindGraduationMarketImpact = "graduation_market_impact"
	KindNetworkMetrics         = "network_metrics"
)

// Store is a keyed JSON document store with upsert semantics. Put may
// buffer; Flush commits everything buffered so far. Implementations are
// safe for use from a single event-processing goroutine.
type Store interface {
	Get(ctx context.Context, kind, key string) ([]byte, bool, error)
	Put(ctx context.Context, kind, key string, data []byte) error
	Flush(ctx context.Context) error
}
