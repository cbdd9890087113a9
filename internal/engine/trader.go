package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"agentscope/internal/decmath"
	"agentscope/internal/model"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
)

// updateTraderStats maintains the per-(token, trader, day) behavior row.
// Entry price is a single slot: each buy overwrites it, each sell reads
// it for PnL without clearing it.
func (e *Engine) updateTraderStats(ctx context.Context, token, trader string, isSell bool, priceUSD, volumeToken, volumeUSD decimal.Decimal, ts uint64) error {
	id := resolve.TraderStatsID(token, trader, ts)
	stats, created, err := resolve.LoadOrCreate[model.TokenTraderStats](ctx, e.store, store.KindTokenTraderStats, id)
	if err != nil {
		return err
	}
	if created {
		stats.Token = token
		stats.Trader = trader
		stats.Date = resolve.DayStart(ts)
	}

	stats.TxCount++
	stats.VolumeToken = stats.VolumeToken.Add(volumeToken)
	stats.VolumeUSD = stats.VolumeUSD.Add(volumeUSD)

	txCount := decmath.FromInt64(stats.TxCount)
	stats.AveragePositionSize = stats.VolumeToken.Div(txCount)

	// Running average of inter-trade gaps, skipped on the bucket's first
	// trade and on zero gaps.
	if stats.TxCount > 1 && stats.LastTradeTimestamp > 0 && ts > stats.LastTradeTimestamp {
		gap := decmath.FromInt64(int64(ts - stats.LastTradeTimestamp))
		stats.TradeFrequency = stats.TradeFrequency.
			Mul(txCount.Sub(decmath.One)).
			Add(gap).
			Div(txCount)
	}
	stats.LastTradeTimestamp = ts

	if isSell {
		stats.SellCount++
		stats.AverageExitPrice = priceUSD
		if stats.HoldTime == 0 && ts > stats.Date {
			stats.HoldTime = ts - stats.Date
		}
		if stats.AverageEntryPrice.Sign() > 0 {
			pnlPerUnit := priceUSD.Sub(stats.AverageEntryPrice)
			stats.RealizedPnL = stats.RealizedPnL.Add(pnlPerUnit.Mul(volumeToken))
			if pnlPerUnit.Sign() > 0 {
				stats.WinningTrades++
				stats.WinningStreak++
				stats.LosingStreak = 0
			} else {
				stats.WinningStreak = 0
				stats.LosingStreak++
			}
			drawdown := stats.AverageEntryPrice.Sub(priceUSD).
				Div(stats.AverageEntryPrice).
				Mul(decmath.Hundred)
			if drawdown.GreaterThan(stats.MaxDrawdown) {
				stats.MaxDrawdown = drawdown
			}
		}
	} else {
		stats.BuyCount++
		stats.AverageEntryPrice = priceUSD
	}

	stats.ProfitabilityRatio = decmath.FromInt64(stats.WinningTrades).Div(txCount)

	return resolve.Save(ctx, e.store, store.KindTokenTraderStats, id, stats)
}
