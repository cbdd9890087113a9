package model

import "github.com/shopspring/decimal"

// Trade direction labels stored on Swap and TradeSnapshot entities.
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// TokenSupply tracks supply and last-known pricing per token. Never deleted.
type TokenSupply struct {
	Token                string          `json:"token"`
	CirculatingSupply    decimal.Decimal `json:"circulating_supply"`
	TotalSupply          decimal.Decimal `json:"total_supply"`
	Decimals             uint8           `json:"decimals"`
	MetadataChecked      bool            `json:"metadata_checked"`
	SupplyClamped        bool            `json:"supply_clamped"`
	LastUpdateBlock      uint64          `json:"last_update_block"`
	LastUpdateTimestamp  uint64          `json:"last_update_timestamp"`
	IsUSDPair            bool            `json:"is_usd_pair"`
	LastPriceUSD         decimal.Decimal `json:"last_price_usd"`
	LastPriceUpdateBlock uint64          `json:"last_price_update_block"`
}

// TokenEconomics is the continuously updated (not time-bucketed) economics
// row per token. Every formula reads the pre-update cumulative values.
type TokenEconomics struct {
	Token                   string          `json:"token"`
	UpdateTimestamp         uint64          `json:"update_timestamp"`
	TotalVolume             decimal.Decimal `json:"total_volume"`
	TotalTransactions       int64           `json:"total_transactions"`
	TotalRewardsDistributed decimal.Decimal `json:"total_rewards_distributed"`
	VolumeWeightedPrice     decimal.Decimal `json:"volume_weighted_price"`
	TradeImpactAverage      decimal.Decimal `json:"trade_impact_average"`
	MarketEfficiency        decimal.Decimal `json:"market_efficiency"`
	TokenVelocity           decimal.Decimal `json:"token_velocity"`
	LiquidityDepth          decimal.Decimal `json:"liquidity_depth"`
	PriceStability          decimal.Decimal `json:"price_stability"`
	StakingEfficiency       decimal.Decimal `json:"staking_efficiency"`
	RewardEfficiency        decimal.Decimal `json:"reward_efficiency"`
}

// EconomicSnapshot is an immutable point-in-time copy of TokenEconomics,
// one per (token, timestamp). Day-over-day changes come from the snapshot
// exactly 86400 seconds earlier, looked up directly by key.
type EconomicSnapshot struct {
	Token                  string          `json:"token"`
	Timestamp              uint64          `json:"timestamp"`
	DayNumber              int64           `json:"day_number"`
	PriceUSD               decimal.Decimal `json:"price_usd"`
	LiquidityDepth         decimal.Decimal `json:"liquidity_depth"`
	TokenVelocity          decimal.Decimal `json:"token_velocity"`
	RewardEfficiency       decimal.Decimal `json:"reward_efficiency"`
	TriggerType            string          `json:"trigger_type"`
	TriggerAddress         string          `json:"trigger_address"`
	PriceChangePercent     decimal.Decimal `json:"price_change_percent"`
	LiquidityChangePercent decimal.Decimal `json:"liquidity_change_percent"`
	VelocityChangePercent  decimal.Decimal `json:"velocity_change_percent"`
	CumulativeVolume       decimal.Decimal `json:"cumulative_volume"`
	CumulativeRewards      decimal.Decimal `json:"cumulative_rewards"`
}

// TradeSnapshot is an immutable record of a single trade, keyed by a
// content hash of token, timestamp, and transaction hash.
type TradeSnapshot struct {
	Token             string          `json:"token"`
	Timestamp         uint64          `json:"timestamp"`
	Transaction       string          `json:"transaction"`
	Trader            string          `json:"trader"`
	Type              string          `json:"type"`
	VolumeToken       decimal.Decimal `json:"volume_token"`
	VolumeUSD         decimal.Decimal `json:"volume_usd"`
	PriceUSD          decimal.Decimal `json:"price_usd"`
	CirculatingSupply decimal.Decimal `json:"circulating_supply"`
	MarketCap         decimal.Decimal `json:"market_cap"`
}

// Swap is the mutable per-transaction trade record. The swap handler
// creates it; a later transfer event in the same transaction fills in the
// true counter-asset addresses and fee routing.
type Swap struct {
	Transaction  string `json:"transaction"`
	Timestamp    uint64 `json:"timestamp"`
	Block        uint64 `json:"block"`
	Trader       string `json:"trader"`
	Type         string `json:"type"`
	AmountIn     string `json:"amount_in"`
	AmountOut    string `json:"amount_out"`
	TokenIn      string `json:"token_in"`
	TokenOut     string `json:"token_out"`
	FeeAmount    string `json:"fee_amount"`
	FeeRecipient string `json:"fee_recipient"`
}

// TokenLaunch records a token launch, created by the Launched event and
// enriched by the launch function-call record for the same transaction.
type TokenLaunch struct {
	Transaction    string   `json:"transaction"`
	Token          string   `json:"token"`
	Pair           string   `json:"pair"`
	Creator        string   `json:"creator"`
	CreatedAtBlock uint64   `json:"created_at_block"`
	Timestamp      uint64   `json:"timestamp"`
	Name           string   `json:"name"`
	Ticker         string   `json:"ticker"`
	Description    string   `json:"description"`
	ImageURL       string   `json:"image_url"`
	URLs           []string `json:"urls"`
	Cores          []uint8  `json:"cores"`
	PurchaseAmount string   `json:"purchase_amount"`
}
