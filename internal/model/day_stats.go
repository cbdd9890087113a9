package model

import "github.com/shopspring/decimal"

// HoursPerDay sizes the intraday histograms on TokenDayStats.
const HoursPerDay = 24

// TokenDayStats is the mutable per-(token, day-bucket) market statistics
// row, updated in place across every trade within the day.
type TokenDayStats struct {
	Token string `json:"token"`
	Date  uint64 `json:"date"`

	OpenPrice  decimal.Decimal `json:"open_price"`
	HighPrice  decimal.Decimal `json:"high_price"`
	LowPrice   decimal.Decimal `json:"low_price"`
	ClosePrice decimal.Decimal `json:"close_price"`

	VolumeToken decimal.Decimal `json:"volume_token"`
	VolumeUSD   decimal.Decimal `json:"volume_usd"`
	TxCount     int64           `json:"tx_count"`
	BuyCount    int64           `json:"buy_count"`
	SellCount   int64           `json:"sell_count"`

	LargestTrade     decimal.Decimal `json:"largest_trade"`
	SmallestTrade    decimal.Decimal `json:"smallest_trade"`
	LargeTradeCount  int64           `json:"large_trade_count"`
	AverageTradeSize decimal.Decimal `json:"average_trade_size"`

	BuyRatio       decimal.Decimal `json:"buy_ratio"`
	BuyVolumeRatio decimal.Decimal `json:"buy_volume_ratio"`
	PriceChange    decimal.Decimal `json:"price_change"`

	VolumeWeightedPrice decimal.Decimal `json:"volume_weighted_price"`
	AveragePriceImpact  decimal.Decimal `json:"average_price_impact"`

	// Accumulators for the incremental volatility (stddev of trade prices).
	PriceSum        decimal.Decimal `json:"price_sum"`
	PriceSquaredSum decimal.Decimal `json:"price_squared_sum"`
	PriceVolatility decimal.Decimal `json:"price_volatility"`

	PriceMovementCount    int64 `json:"price_movement_count"`
	LongestPriceUptrend   int64 `json:"longest_price_uptrend"`
	LongestPriceDowntrend int64 `json:"longest_price_downtrend"`

	LiquidityScore   decimal.Decimal `json:"liquidity_score"`
	MarketEfficiency decimal.Decimal `json:"market_efficiency"`
	BuyPressure      decimal.Decimal `json:"buy_pressure"`
	MarketDepth      decimal.Decimal `json:"market_depth"`

	HourlyVolume     [HoursPerDay]decimal.Decimal `json:"hourly_volume"`
	HourlyTradeCount [HoursPerDay]int64           `json:"hourly_trade_count"`
	PeakTradingHour  int32                        `json:"peak_trading_hour"`
	QuietTradingHour int32                        `json:"quiet_trading_hour"`

	UniqueTraderCount int64           `json:"unique_trader_count"`
	CirculatingSupply decimal.Decimal `json:"circulating_supply"`
	MarketCap         decimal.Decimal `json:"market_cap"`
}

// TokenTraderStats is the mutable per-(token, trader, day-bucket) behavior
// row. Entry price follows a single-slot model: a buy overwrites it, a sell
// consumes it for PnL.
type TokenTraderStats struct {
	Token  string `json:"token"`
	Trader string `json:"trader"`
	Date   uint64 `json:"date"`

	TxCount     int64           `json:"tx_count"`
	VolumeToken decimal.Decimal `json:"volume_token"`
	VolumeUSD   decimal.Decimal `json:"volume_usd"`
	BuyCount    int64           `json:"buy_count"`
	SellCount   int64           `json:"sell_count"`

	RealizedPnL       decimal.Decimal `json:"realized_pnl"`
	AverageEntryPrice decimal.Decimal `json:"average_entry_price"`
	AverageExitPrice  decimal.Decimal `json:"average_exit_price"`

	HoldTime           uint64          `json:"hold_time"`
	LastTradeTimestamp uint64          `json:"last_trade_timestamp"`
	TradeFrequency     decimal.Decimal `json:"trade_frequency"`

	WinningTrades      int64           `json:"winning_trades"`
	WinningStreak      int64           `json:"winning_streak"`
	LosingStreak       int64           `json:"losing_streak"`
	ProfitabilityRatio decimal.Decimal `json:"profitability_ratio"`

	AveragePositionSize decimal.Decimal `json:"average_position_size"`
	MaxDrawdown         decimal.Decimal `json:"max_drawdown"`
}
