package engine

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"agentscope/internal/decmath"
	"agentscope/internal/model"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
)

const secondsPerYear = 31536000

// handleSwap updates every trade-derived entity for one swap: the swap
// record itself, token economics, the economic snapshot, the trade
// snapshot, the day-stats row, trader stats, and the owning agent's
// market fields.
func (e *Engine) handleSwap(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.SwapEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed swap payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}

	amount0In, err0 := parseBigInt(data.Amount0In)
	amount1In, err1 := parseBigInt(data.Amount1In)
	amount0Out, err2 := parseBigInt(data.Amount0Out)
	amount1Out, err3 := parseBigInt(data.Amount1Out)
	for _, err := range []error{err0, err1, err2, err3} {
		if err != nil {
			e.logger.Warn("malformed swap amount", zap.String("tx", rec.TxHash), zap.Error(err))
			return false, nil
		}
	}
	if amount0In.Sign() == 0 && amount1In.Sign() == 0 {
		e.logger.Warn("swap with both input amounts zero", zap.String("tx", rec.TxHash))
		return false, nil
	}

	isSell := amount0In.Sign() > 0
	token := resolve.Address(rec.Address)
	trader := resolve.Address(rec.TxFrom)
	ts := rec.Timestamp

	supply, created, err := resolve.LoadOrCreate[model.TokenSupply](ctx, e.store, store.KindTokenSupply, token)
	if err != nil {
		return false, err
	}
	if created {
		supply.Token = token
		supply.Decimals = 18
		supply.IsUSDPair = e.cfg.USDPairs.Contains(token)
	}

	// Token side in, counter side out on a sell; reversed on a buy.
	var tokenRaw, counterRaw *big.Int
	if isSell {
		tokenRaw, counterRaw = amount0In, amount1Out
	} else {
		tokenRaw, counterRaw = amount0Out, amount1In
	}

	if err := e.recordSwap(ctx, rec, data, isSell, token, trader); err != nil {
		return false, err
	}

	// The Swap record is written from here on, so the event counts as
	// applied even when the aggregate updates below are skipped.
	volumeToken := decmath.FromRawAmount(tokenRaw, supply.Decimals)
	if volumeToken.IsZero() {
		e.logger.Warn("swap with zero token volume", zap.String("tx", rec.TxHash), zap.String("token", token))
		return true, nil
	}

	// Instantaneous pair price is output over input, in converted units.
	var price decimal.Decimal
	if isSell {
		price = decmath.FromRawAmount(counterRaw, 18).Div(volumeToken)
	} else {
		counter := decmath.FromRawAmount(counterRaw, 18)
		if counter.IsZero() {
			e.logger.Warn("buy with zero counter amount", zap.String("tx", rec.TxHash))
			return true, nil
		}
		price = volumeToken.Div(counter)
	}

	priceUSD, err := e.price.USDPrice(ctx, token, tokenRaw, counterRaw, supply.Decimals)
	if err != nil {
		return false, err
	}
	volumeUSD := volumeToken.Mul(priceUSD)

	if priceUSD.Sign() > 0 && rec.BlockNumber >= supply.LastPriceUpdateBlock {
		supply.LastPriceUSD = priceUSD
		supply.LastPriceUpdateBlock = rec.BlockNumber
	}
	supply.LastUpdateBlock = rec.BlockNumber
	supply.LastUpdateTimestamp = ts
	if err := resolve.Save(ctx, e.store, store.KindTokenSupply, token, supply); err != nil {
		return false, err
	}

	econ, err := e.updateTokenEconomics(ctx, token, price, volumeToken, ts)
	if err != nil {
		return false, err
	}
	if err := e.writeEconomicSnapshot(ctx, econ, priceUSD, "swap", trader, ts); err != nil {
		return false, err
	}
	if err := e.writeTradeSnapshot(ctx, rec, supply, isSell, trader, volumeToken, volumeUSD, priceUSD); err != nil {
		return false, err
	}
	if err := e.updateDayStats(ctx, supply, isSell, priceUSD, volumeToken, volumeUSD, ts); err != nil {
		return false, err
	}
	if err := e.updateTraderStats(ctx, token, trader, isSell, priceUSD, volumeToken, volumeUSD, ts); err != nil {
		return false, err
	}
	if err := e.updateAgentMarket(ctx, token, econ); err != nil {
		return false, err
	}
	return true, nil
}

// recordSwap creates or completes the per-transaction Swap record. The
// counter-asset addresses are unknown until the transfer leg of the same
// transaction arrives, so they start as the emitting pair address.
func (e *Engine) recordSwap(ctx context.Context, rec model.EventRecord, data model.SwapEventData, isSell bool, token, trader string) error {
	swap, created, err := resolve.LoadOrCreate[model.Swap](ctx, e.store, store.KindSwap, rec.TxHash)
	if err != nil {
		return err
	}
	if created {
		swap.Transaction = rec.TxHash
		swap.TokenIn = token
		swap.TokenOut = token
		swap.FeeAmount = "0"
		swap.FeeRecipient = token
	}
	swap.Timestamp = rec.Timestamp
	swap.Block = rec.BlockNumber
	swap.Trader = trader
	if isSell {
		swap.Type = model.TradeTypeSell
		swap.AmountIn = data.Amount0In
		swap.AmountOut = data.Amount1Out
	} else {
		swap.Type = model.TradeTypeBuy
		swap.AmountIn = data.Amount1In
		swap.AmountOut = data.Amount0Out
	}
	return resolve.Save(ctx, e.store, store.KindSwap, rec.TxHash, swap)
}

func (e *Engine) updateTokenEconomics(ctx context.Context, token string, price, volumeToken decimal.Decimal, ts uint64) (*model.TokenEconomics, error) {
	econ, created, err := resolve.LoadOrCreate[model.TokenEconomics](ctx, e.store, store.KindTokenEconomics, token)
	if err != nil {
		return nil, err
	}
	if created {
		econ.Token = token
	}

	volumeBefore := econ.TotalVolume
	econ.TotalVolume = econ.TotalVolume.Add(volumeToken)
	econ.TotalTransactions++

	// VWAP weights the previous value by the pre-update cumulative volume.
	if econ.VolumeWeightedPrice.IsZero() || volumeBefore.IsZero() {
		econ.VolumeWeightedPrice = price
	} else {
		econ.VolumeWeightedPrice = econ.VolumeWeightedPrice.Mul(volumeBefore).
			Add(price.Mul(volumeToken)).
			Div(econ.TotalVolume)
	}

	if econ.VolumeWeightedPrice.Sign() > 0 {
		impact := decmath.Abs(price.Sub(econ.VolumeWeightedPrice)).
			Div(econ.VolumeWeightedPrice).
			Mul(decmath.Hundred)
		txCount := decmath.FromInt64(econ.TotalTransactions)
		if econ.TradeImpactAverage.IsZero() {
			econ.TradeImpactAverage = impact
		} else {
			econ.TradeImpactAverage = econ.TradeImpactAverage.
				Mul(txCount.Sub(decmath.One)).
				Add(impact).
				Div(txCount)
		}
		econ.MarketEfficiency = decmath.Hundred.Sub(econ.TradeImpactAverage)
		econ.PriceStability = decmath.Hundred.Sub(econ.TradeImpactAverage)
	}

	if elapsed := ts - econ.UpdateTimestamp; elapsed > 0 {
		econ.TokenVelocity = volumeToken.Div(decmath.FromInt64(int64(elapsed)))
	}
	econ.UpdateTimestamp = ts

	if err := resolve.Save(ctx, e.store, store.KindTokenEconomics, token, econ); err != nil {
		return nil, err
	}
	return econ, nil
}

// writeEconomicSnapshot freezes the economics row at ts and computes
// day-over-day changes against the snapshot exactly one day earlier, when
// one exists at that key.
func (e *Engine) writeEconomicSnapshot(ctx context.Context, econ *model.TokenEconomics, priceUSD decimal.Decimal, trigger, triggerAddr string, ts uint64) error {
	snap := model.EconomicSnapshot{
		Token:             econ.Token,
		Timestamp:         ts,
		DayNumber:         int64(ts / resolve.SecondsPerDay),
		PriceUSD:          priceUSD,
		LiquidityDepth:    econ.LiquidityDepth,
		TokenVelocity:     econ.TokenVelocity,
		RewardEfficiency:  econ.RewardEfficiency,
		TriggerType:       trigger,
		TriggerAddress:    triggerAddr,
		CumulativeVolume:  econ.TotalVolume,
		CumulativeRewards: econ.TotalRewardsDistributed,
	}

	if ts >= resolve.SecondsPerDay {
		prevKey := resolve.EconomicSnapshotKey(econ.Token, ts-resolve.SecondsPerDay)
		prev, ok, err := resolve.Load[model.EconomicSnapshot](ctx, e.store, store.KindEconomicSnapshot, prevKey)
		if err != nil {
			return err
		}
		if ok {
			snap.PriceChangePercent = percentChange(prev.PriceUSD, snap.PriceUSD)
			snap.LiquidityChangePercent = percentChange(prev.LiquidityDepth, snap.LiquidityDepth)
			snap.VelocityChangePercent = percentChange(prev.TokenVelocity, snap.TokenVelocity)
		}
	}

	key := resolve.EconomicSnapshotKey(econ.Token, ts)
	return resolve.Save(ctx, e.store, store.KindEconomicSnapshot, key, snap)
}

func percentChange(old, new decimal.Decimal) decimal.Decimal {
	if old.IsZero() {
		return decimal.Zero
	}
	return new.Sub(old).Div(old).Mul(decmath.Hundred)
}

func (e *Engine) writeTradeSnapshot(ctx context.Context, rec model.EventRecord, supply *model.TokenSupply, isSell bool, trader string, volumeToken, volumeUSD, priceUSD decimal.Decimal) error {
	tradeType := model.TradeTypeBuy
	if isSell {
		tradeType = model.TradeTypeSell
	}
	marketCap := supply.CirculatingSupply.Mul(priceUSD)
	if priceUSD.Sign() > 0 && supply.TotalSupply.Sign() > 0 {
		marketCap = supply.TotalSupply.Mul(priceUSD)
	}
	snap := model.TradeSnapshot{
		Token:             supply.Token,
		Timestamp:         rec.Timestamp,
		Transaction:       rec.TxHash,
		Trader:            trader,
		Type:              tradeType,
		VolumeToken:       volumeToken,
		VolumeUSD:         volumeUSD,
		PriceUSD:          priceUSD,
		CirculatingSupply: supply.CirculatingSupply,
		MarketCap:         marketCap,
	}
	id := resolve.TradeSnapshotID(supply.Token, rec.Timestamp, rec.TxHash)
	return resolve.Save(ctx, e.store, store.KindTradeSnapshot, id, snap)
}

func (e *Engine) updateDayStats(ctx context.Context, supply *model.TokenSupply, isSell bool, priceUSD, volumeToken, volumeUSD decimal.Decimal, ts uint64) error {
	key := resolve.DayStatsKey(supply.Token, ts)
	stats, created, err := resolve.LoadOrCreate[model.TokenDayStats](ctx, e.store, store.KindTokenDayStats, key)
	if err != nil {
		return err
	}
	if created {
		stats.Token = supply.Token
		stats.Date = resolve.DayStart(ts)
	}

	prevClose := stats.ClosePrice
	volumeBefore := stats.VolumeToken
	firstTrade := stats.TxCount == 0

	if firstTrade {
		stats.OpenPrice = priceUSD
	}
	if priceUSD.GreaterThan(stats.HighPrice) {
		stats.HighPrice = priceUSD
	}
	if stats.LowPrice.IsZero() || priceUSD.LessThan(stats.LowPrice) {
		stats.LowPrice = priceUSD
	}

	stats.VolumeToken = stats.VolumeToken.Add(volumeToken)
	stats.VolumeUSD = stats.VolumeUSD.Add(volumeUSD)
	stats.TxCount++
	if isSell {
		stats.SellCount++
	} else {
		stats.BuyCount++
	}
	// Counts trades, not distinct traders: no per-day trader set is kept,
	// so a repeat trader increments this on every swap.
	stats.UniqueTraderCount++

	if volumeToken.GreaterThan(stats.LargestTrade) {
		stats.LargestTrade = volumeToken
	}
	if stats.SmallestTrade.IsZero() || volumeToken.LessThan(stats.SmallestTrade) {
		stats.SmallestTrade = volumeToken
	}

	txCount := decmath.FromInt64(stats.TxCount)
	stats.AverageTradeSize = stats.VolumeToken.Div(txCount)
	if volumeToken.GreaterThan(stats.AverageTradeSize) {
		stats.LargeTradeCount++
	}

	stats.BuyRatio = decmath.FromInt64(stats.BuyCount).Div(txCount)
	stats.BuyVolumeRatio = stats.BuyRatio
	if stats.OpenPrice.Sign() > 0 {
		stats.PriceChange = priceUSD.Sub(stats.OpenPrice).Div(stats.OpenPrice).Mul(decmath.Hundred)
	}

	if firstTrade || volumeBefore.IsZero() {
		stats.VolumeWeightedPrice = priceUSD
	} else {
		stats.VolumeWeightedPrice = stats.VolumeWeightedPrice.Mul(volumeBefore).
			Add(priceUSD.Mul(volumeToken)).
			Div(stats.VolumeToken)
	}

	if !firstTrade {
		delta := decmath.Abs(priceUSD.Sub(prevClose))
		stats.AveragePriceImpact = stats.AveragePriceImpact.
			Mul(txCount.Sub(decmath.One)).
			Add(delta).
			Div(txCount)

		switch {
		case priceUSD.GreaterThan(prevClose):
			stats.LongestPriceUptrend++
			stats.LongestPriceDowntrend = 0
			stats.PriceMovementCount++
		case priceUSD.LessThan(prevClose):
			stats.LongestPriceDowntrend++
			stats.LongestPriceUptrend = 0
			stats.PriceMovementCount++
		}
	}
	stats.ClosePrice = priceUSD

	stats.PriceSum = stats.PriceSum.Add(priceUSD)
	stats.PriceSquaredSum = stats.PriceSquaredSum.Add(priceUSD.Mul(priceUSD))
	if stats.TxCount >= 2 {
		mean := stats.PriceSum.Div(txCount)
		variance := stats.PriceSquaredSum.Div(txCount).Sub(mean.Mul(mean))
		if variance.Sign() < 0 {
			variance = decimal.Zero
		}
		stats.PriceVolatility = decmath.Sqrt(variance)
	}

	if !stats.AveragePriceImpact.IsZero() {
		stats.LiquidityScore = decmath.One.Div(stats.AveragePriceImpact)
	}
	if !stats.PriceVolatility.IsZero() {
		stats.MarketEfficiency = decmath.One.Div(stats.PriceVolatility)
	}
	stats.BuyPressure = stats.BuyVolumeRatio.Sub(decimal.NewFromFloat(0.5)).Mul(decmath.Two)
	stats.MarketDepth = stats.VolumeToken.Div(decmath.Max(stats.PriceVolatility, decmath.One))

	hour := resolve.HourOfDay(ts)
	stats.HourlyVolume[hour] = stats.HourlyVolume[hour].Add(volumeToken)
	stats.HourlyTradeCount[hour]++
	stats.PeakTradingHour, stats.QuietTradingHour = scanTradingHours(stats.HourlyVolume)

	stats.CirculatingSupply = supply.CirculatingSupply
	stats.MarketCap = supply.CirculatingSupply.Mul(priceUSD)

	return resolve.Save(ctx, e.store, store.KindTokenDayStats, key, stats)
}

// scanTradingHours rescans all 24 slots; the first slot found wins ties.
func scanTradingHours(volumes [model.HoursPerDay]decimal.Decimal) (peak, quiet int32) {
	peakVolume := volumes[0]
	quietVolume := volumes[0]
	for i := 1; i < model.HoursPerDay; i++ {
		if volumes[i].GreaterThan(peakVolume) {
			peakVolume = volumes[i]
			peak = int32(i)
		}
		if volumes[i].LessThan(quietVolume) {
			quietVolume = volumes[i]
			quiet = int32(i)
		}
	}
	return peak, quiet
}

// updateAgentMarket mirrors trade-impact statistics onto the owning
// agent, and fills the post-graduation market impact on the first trade
// after graduation.
func (e *Engine) updateAgentMarket(ctx context.Context, token string, econ *model.TokenEconomics) error {
	index, ok, err := resolve.Load[model.AgentTokenIndex](ctx, e.store, store.KindAgentTokenIndex, token)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	agent, ok, err := resolve.Load[model.Agent](ctx, e.store, store.KindAgent, index.AgentID)
	if err != nil || !ok {
		return err
	}

	agent.AverageTradeImpact = econ.TradeImpactAverage
	agent.MarketStability = decmath.Hundred.Sub(econ.TradeImpactAverage)
	if err := resolve.Save(ctx, e.store, store.KindAgent, index.AgentID, agent); err != nil {
		return err
	}

	if !agent.GraduatedToUniswap {
		return nil
	}
	impact, ok, err := resolve.Load[model.GraduationMarketImpact](ctx, e.store, store.KindGraduationMarketImpact, index.AgentID)
	if err != nil || !ok {
		return err
	}
	if impact.PostRecorded {
		return nil
	}
	impact.PostVWAP = econ.VolumeWeightedPrice
	impact.PostVolume = econ.TotalVolume
	impact.PostTxCount = econ.TotalTransactions
	impact.PostRecorded = true
	return resolve.Save(ctx, e.store, store.KindGraduationMarketImpact, index.AgentID, impact)
}
