package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agentscope/internal/model"
	"agentscope/internal/oracle"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
	"agentscope/internal/store/memory"
)

const (
	testToken = "0x1111111111111111111111111111111111111111"
	testPair  = "0x2222222222222222222222222222222222222222"
	testFees  = "0x3333333333333333333333333333333333333333"
	trader1   = "0xaaaa567890123456789012345678901234567aaa"
	trader2   = "0xbbbb567890123456789012345678901234567bbb"
	trader3   = "0xcccc567890123456789012345678901234567ccc"

	// 12:00 UTC so intraday hours stay within one day bucket.
	baseTS = uint64(1700049600)
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	mem := memory.NewStore()
	eng := New(Config{
		USDPairs:            oracle.NewUSDPairSet([]string{testToken}),
		FeeRecipient:        testFees,
		GraduationThreshold: 100,
	}, mem, nil, nil, nil, zap.NewNop())
	return eng, mem
}

// raw returns n whole tokens as a raw 18-decimal integer string.
func raw(n int64) string {
	scaled := new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	return scaled.String()
}

func record(t *testing.T, name, tx string, ts uint64, payload any) model.EventRecord {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return model.EventRecord{
		ChainID:     1,
		BlockNumber: ts / 12,
		TxHash:      tx,
		LogIndex:    0,
		Address:     testToken,
		EventName:   name,
		Timestamp:   ts,
		TxFrom:      trader1,
		Decoded:     data,
	}
}

// sellSwap trades tokenAmount tokens for usdAmount of the counter asset.
func sellSwap(t *testing.T, tx string, ts uint64, tokenAmount, usdAmount int64) model.EventRecord {
	return record(t, model.EventSwap, tx, ts, model.SwapEventData{
		Amount0In:  raw(tokenAmount),
		Amount1Out: raw(usdAmount),
	})
}

func buySwap(t *testing.T, tx string, ts uint64, usdAmount, tokenAmount int64) model.EventRecord {
	return record(t, model.EventSwap, tx, ts, model.SwapEventData{
		Amount1In:  raw(usdAmount),
		Amount0Out: raw(tokenAmount),
	})
}

func load[T any](t *testing.T, s store.Store, kind, key string) *T {
	t.Helper()
	entity, ok, err := resolve.Load[T](context.Background(), s, kind, key)
	require.NoError(t, err)
	require.True(t, ok, "missing %s/%s", kind, key)
	return entity
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

func TestBuySellDayScenario(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Apply(ctx, buySwap(t, "0x01", baseTS, 100, 100)))
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x02", baseTS+600, 50, 60)))

	stats := load[model.TokenDayStats](t, mem, store.KindTokenDayStats, resolve.DayStatsKey(testToken, baseTS))
	requireDecimal(t, "1", stats.OpenPrice)
	requireDecimal(t, "1.2", stats.ClosePrice)
	requireDecimal(t, "1.2", stats.HighPrice)
	requireDecimal(t, "1", stats.LowPrice)
	require.EqualValues(t, 2, stats.TxCount)
	require.EqualValues(t, 1, stats.BuyCount)
	require.EqualValues(t, 1, stats.SellCount)
	requireDecimal(t, "0.5", stats.BuyRatio)
	require.True(t, stats.HighPrice.GreaterThanOrEqual(stats.OpenPrice))
	require.True(t, stats.LowPrice.LessThanOrEqual(stats.ClosePrice))

	traderStats := load[model.TokenTraderStats](t, mem, store.KindTokenTraderStats, resolve.TraderStatsID(testToken, trader1, baseTS))
	requireDecimal(t, "10", traderStats.RealizedPnL)
	require.EqualValues(t, 1, traderStats.WinningTrades)
	require.EqualValues(t, 1, traderStats.WinningStreak)
	require.EqualValues(t, 0, traderStats.LosingStreak)
	requireDecimal(t, "0.5", traderStats.ProfitabilityRatio)
	requireDecimal(t, "1", traderStats.AverageEntryPrice)
	requireDecimal(t, "1.2", traderStats.AverageExitPrice)
	// One 600s gap folded across both trades.
	requireDecimal(t, "300", traderStats.TradeFrequency)
}

func TestHighLowEnvelope(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x01", baseTS, 10, 10)))    // 1.0
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x02", baseTS+60, 10, 20))) // 2.0
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x03", baseTS+120, 10, 5))) // 0.5

	stats := load[model.TokenDayStats](t, mem, store.KindTokenDayStats, resolve.DayStatsKey(testToken, baseTS))
	requireDecimal(t, "2", stats.HighPrice)
	requireDecimal(t, "0.5", stats.LowPrice)
	require.True(t, stats.HighPrice.GreaterThanOrEqual(stats.OpenPrice))
	require.True(t, stats.HighPrice.GreaterThanOrEqual(stats.ClosePrice))
	require.True(t, stats.LowPrice.LessThanOrEqual(stats.OpenPrice))
	require.True(t, stats.LowPrice.LessThanOrEqual(stats.ClosePrice))
	require.True(t, stats.PriceVolatility.Sign() > 0)
}

func TestVWAPClosedForm(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	// Sells at price 1, 2, 3 with volumes 10, 20, 30.
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x01", baseTS, 10, 10)))
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x02", baseTS+60, 20, 40)))
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x03", baseTS+120, 30, 90)))

	econ := load[model.TokenEconomics](t, mem, store.KindTokenEconomics, testToken)
	// (1*10 + 2*20 + 3*30) / 60
	want := decimal.RequireFromString("140").Div(decimal.RequireFromString("60"))
	require.True(t, econ.VolumeWeightedPrice.Sub(want).Abs().LessThan(decimal.New(1, -12)),
		"want %s, got %s", want, econ.VolumeWeightedPrice)
	requireDecimal(t, "60", econ.TotalVolume)
	require.EqualValues(t, 3, econ.TotalTransactions)
}

func TestVWAPFirstTradeIsPrice(t *testing.T) {
	eng, mem := newTestEngine(t)

	require.NoError(t, eng.Apply(context.Background(), sellSwap(t, "0x01", baseTS, 10, 25)))

	econ := load[model.TokenEconomics](t, mem, store.KindTokenEconomics, testToken)
	requireDecimal(t, "2.5", econ.VolumeWeightedPrice)
	requireDecimal(t, "0", econ.TradeImpactAverage)
	requireDecimal(t, "100", econ.MarketEfficiency)
}

func TestDuplicateEventDropped(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	rec := sellSwap(t, "0x01", baseTS, 10, 10)
	require.NoError(t, eng.Apply(ctx, rec))
	require.NoError(t, eng.Apply(ctx, rec))

	econ := load[model.TokenEconomics](t, mem, store.KindTokenEconomics, testToken)
	require.EqualValues(t, 1, econ.TotalTransactions)
}

func TestReplayCollidesOnSnapshotID(t *testing.T) {
	_, mem := newTestEngine(t)
	ctx := context.Background()

	rec := sellSwap(t, "0x01", baseTS, 10, 10)

	// Two engine instances share the store, as a restart would.
	for i := 0; i < 2; i++ {
		eng := New(Config{USDPairs: oracle.NewUSDPairSet([]string{testToken})}, mem, nil, nil, nil, zap.NewNop())
		require.NoError(t, eng.Apply(ctx, rec))
	}

	require.Equal(t, 1, mem.Count(store.KindTradeSnapshot))
}

func TestSwapBothInputsZeroRejected(t *testing.T) {
	eng, mem := newTestEngine(t)

	rec := record(t, model.EventSwap, "0x01", baseTS, model.SwapEventData{
		Amount0Out: raw(5),
	})
	require.NoError(t, eng.Apply(context.Background(), rec))

	require.Equal(t, 0, mem.Count(store.KindTokenEconomics))
	require.Equal(t, 0, mem.Count(store.KindSwap))
}

func TestHourlyHistogramAndPeakHour(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	hour12 := baseTS        // 12:00
	hour13 := baseTS + 3600 // 13:00
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x01", hour12, 10, 10)))
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x02", hour13, 40, 40)))
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x03", hour13+60, 10, 10)))

	stats := load[model.TokenDayStats](t, mem, store.KindTokenDayStats, resolve.DayStatsKey(testToken, baseTS))
	requireDecimal(t, "10", stats.HourlyVolume[12])
	requireDecimal(t, "50", stats.HourlyVolume[13])
	require.EqualValues(t, 2, stats.HourlyTradeCount[13])
	require.EqualValues(t, 13, stats.PeakTradingHour)
	// All-zero slots tie; the first one wins.
	require.EqualValues(t, 0, stats.QuietTradingHour)
}

func createAgent(t *testing.T, eng *Engine, virtualID uint64, ts uint64) {
	t.Helper()
	rec := record(t, model.EventAgentCreated, fmt.Sprintf("0xc%d", virtualID), ts, model.AgentCreatedEventData{
		VirtualID: virtualID,
		Founder:   trader1,
		DAO:       trader2,
		Token:     testToken,
		TBA:       testPair,
		CoreTypes: []uint8{0, 1},
	})
	require.NoError(t, eng.Apply(context.Background(), rec))
}

func TestAgentCreatedInitialState(t *testing.T) {
	eng, mem := newTestEngine(t)
	createAgent(t, eng, 7, baseTS)

	agent := load[model.Agent](t, mem, store.KindAgent, "7")
	require.Equal(t, testToken, agent.Token)
	require.Equal(t, baseTS, agent.CreatedAt)
	require.Empty(t, agent.ServicesArray)
	require.False(t, agent.GraduatedToUniswap)

	// The stake-duration clock starts at creation.
	require.Equal(t, baseTS, agent.LastServiceTimestamp)

	index := load[model.AgentTokenIndex](t, mem, store.KindAgentTokenIndex, testToken)
	require.Equal(t, "7", index.AgentID)
	require.Equal(t, 1, mem.Count(store.KindAgentDayData))
	require.Equal(t, 1, mem.Count(store.KindMaturityScoreSnapshot))
}

func TestRejectedEventSkipsNetworkMetrics(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	// Undecodable payload.
	rec := record(t, model.EventAgentCreated, "0xe1", baseTS, nil)
	rec.Decoded = json.RawMessage(`{"virtual_id":"not-a-number"}`)
	require.NoError(t, eng.Apply(ctx, rec))

	// Decodes but fails validation.
	rec = record(t, model.EventAgentCreated, "0xe2", baseTS, model.AgentCreatedEventData{VirtualID: 8})
	require.NoError(t, eng.Apply(ctx, rec))

	// References an agent that was never created.
	rec = record(t, model.EventStakeUpdated, "0xe3", baseTS, model.StakeUpdatedEventData{
		VirtualID: 99, OldStake: "0", NewStake: "100",
	})
	require.NoError(t, eng.Apply(ctx, rec))

	require.Equal(t, 0, mem.Count(store.KindAgent))
	require.Equal(t, 0, mem.Count(store.KindNetworkMetrics))

	createAgent(t, eng, 7, baseTS)
	metrics := load[model.NetworkMetrics](t, mem, store.KindNetworkMetrics, resolve.NetworkDayKey(baseTS))
	require.EqualValues(t, 1, metrics.NewAgents)
	require.EqualValues(t, 1, metrics.TotalTransactions)
}

func TestStakeUpdatedGuards(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()
	createAgent(t, eng, 7, baseTS)

	// First stake from zero: growth rate must stay zero.
	rec := record(t, model.EventStakeUpdated, "0x11", baseTS+100, model.StakeUpdatedEventData{
		VirtualID: 7, OldStake: "0", NewStake: "1000", UniqueStakers: 4,
	})
	require.NoError(t, eng.Apply(ctx, rec))

	agent := load[model.Agent](t, mem, store.KindAgent, "7")
	requireDecimal(t, "1000", agent.TotalStaked)
	requireDecimal(t, "0", agent.StakeGrowthRate)
	requireDecimal(t, "0", agent.StakingAPY)
	requireDecimal(t, "1000", agent.MinStakeAmount)
	requireDecimal(t, "1000", agent.MaxStakeAmount)

	rec = record(t, model.EventStakeUpdated, "0x12", baseTS+200, model.StakeUpdatedEventData{
		VirtualID: 7, OldStake: "1000", NewStake: "1500", UniqueStakers: 5,
	})
	require.NoError(t, eng.Apply(ctx, rec))

	agent = load[model.Agent](t, mem, store.KindAgent, "7")
	requireDecimal(t, "50", agent.StakeGrowthRate)
	requireDecimal(t, "1500", agent.MaxStakeAmount)
	requireDecimal(t, "1000", agent.MinStakeAmount)
	// The second update weights the previous stake over the time since
	// creation, because no service has moved the clock yet.
	require.EqualValues(t, 200, agent.AverageStakeDuration)
	requireDecimal(t, "200000", agent.TimeWeightedStake)

	day := load[model.AgentDayData](t, mem, store.KindAgentDayData, resolve.AgentDayKey("7", baseTS))
	requireDecimal(t, "1500", day.DailyStakeAmount)
	requireDecimal(t, "1500", day.NetStakingChange)
	require.EqualValues(t, 5, day.UniqueDailyStakers)
	require.Len(t, day.StakeSizeDistribution, 2)
}

func TestRewardRoutingAndAPY(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()
	createAgent(t, eng, 7, baseTS)

	stake := record(t, model.EventStakeUpdated, "0x11", baseTS+100, model.StakeUpdatedEventData{
		VirtualID: 7, OldStake: "0", NewStake: "1000", UniqueStakers: 4,
	})
	require.NoError(t, eng.Apply(ctx, stake))

	for i, recipientType := range []int32{0, 1, 2, 3} {
		rec := record(t, model.EventRewardDistributed, fmt.Sprintf("0x2%d", i), baseTS+200+uint64(i), model.RewardDistributedEventData{
			VirtualID: 7, Amount: "25", RecipientType: recipientType,
		})
		require.NoError(t, eng.Apply(ctx, rec))
	}

	day := load[model.AgentDayData](t, mem, store.KindAgentDayData, resolve.AgentDayKey("7", baseTS))
	requireDecimal(t, "25", day.StakersRewards)
	requireDecimal(t, "25", day.ValidatorsRewards)
	requireDecimal(t, "25", day.ContributorsRewards)
	requireDecimal(t, "25", day.ProtocolRewards)
	requireDecimal(t, "100", day.DailyRewardsGenerated)
	requireDecimal(t, "0.1", day.RewardPerStake)

	agent := load[model.Agent](t, mem, store.KindAgent, "7")
	requireDecimal(t, "100", agent.StakingRewardsDistributed)
	require.True(t, agent.StakingAPY.Sign() > 0)
	// The yield ladder divides the APY by fixed period counts.
	requireDecimal(t, agent.StakingAPY.Div(decimal.NewFromInt(365)).String(), agent.DailyYield)
	requireDecimal(t, agent.StakingAPY.Div(decimal.NewFromInt(8760)).String(), agent.HourlyYield)
}

func serviceRecord(t *testing.T, tx string, ts uint64, serviceID uint64, maturity int64, impact string) model.EventRecord {
	return record(t, model.EventServiceAccepted, tx, ts, model.ServiceAcceptedEventData{
		VirtualID:     7,
		ServiceID:     serviceID,
		MaturityScore: maturity,
		Impact:        impact,
		CoreType:      1,
	})
}

func TestFirstServiceAccepted(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()
	createAgent(t, eng, 7, baseTS)

	require.NoError(t, eng.Apply(ctx, serviceRecord(t, "0x31", baseTS+100, 1, 40, "10")))

	agent := load[model.Agent](t, mem, store.KindAgent, "7")
	require.Len(t, agent.ServicesArray, 1)
	requireDecimal(t, "10", agent.AverageServiceImpact)
	requireDecimal(t, "100", agent.ServiceSuccessRate)
	require.EqualValues(t, 40, agent.MaturityScore)
	requireDecimal(t, "40", agent.GraduationProgress)
	require.Equal(t, baseTS+100, agent.LastServiceTimestamp)

	require.Equal(t, 1, mem.Count(store.KindService))
	require.Equal(t, 1, mem.Count(store.KindMarketHealthSnapshot))
	require.Equal(t, 1, mem.Count(store.KindGraduationPrediction))
}

func TestGraduationProgressMonotonic(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()
	createAgent(t, eng, 7, baseTS)

	require.NoError(t, eng.Apply(ctx, serviceRecord(t, "0x31", baseTS+100, 1, 40, "10")))
	require.NoError(t, eng.Apply(ctx, serviceRecord(t, "0x32", baseTS+200, 2, 30, "5")))
	require.NoError(t, eng.Apply(ctx, serviceRecord(t, "0x33", baseTS+300, 3, 60, "0")))

	agent := load[model.Agent](t, mem, store.KindAgent, "7")
	require.EqualValues(t, 60, agent.MaturityScore)
	requireDecimal(t, "60", agent.GraduationProgress)
	require.EqualValues(t, 2, agent.ServiceSuccessCount)
	require.EqualValues(t, 1, agent.ServiceFailureCount)
	// Rescan counts two of three services with positive impact.
	require.True(t, agent.ServiceSuccessRate.Sub(decimal.RequireFromString("66.666")).Abs().LessThan(decimal.RequireFromString("0.001")))
}

func TestContributionLifecycle(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()
	createAgent(t, eng, 7, baseTS)

	submit := record(t, model.EventContributionSubmitted, "0x41", baseTS+50, model.ContributionSubmittedEventData{
		VirtualID: 7, ContributionID: 9, Contributor: trader2, CoreType: 1,
	})
	require.NoError(t, eng.Apply(ctx, submit))

	agent := load[model.Agent](t, mem, store.KindAgent, "7")
	require.EqualValues(t, 1, agent.ContributionCount)
	requireDecimal(t, "0", agent.ContributionAcceptanceRate)

	accept := record(t, model.EventServiceAccepted, "0x42", baseTS+100, model.ServiceAcceptedEventData{
		VirtualID: 7, ServiceID: 1, ContributionID: 9, MaturityScore: 20, Impact: "5", CoreType: 1,
	})
	require.NoError(t, eng.Apply(ctx, accept))

	contribution := load[model.Contribution](t, mem, store.KindContribution, "7-9")
	require.True(t, contribution.Accepted)
	require.Equal(t, "7-1", contribution.Service)

	agent = load[model.Agent](t, mem, store.KindAgent, "7")
	requireDecimal(t, "100", agent.ContributionAcceptanceRate)
}

func TestValidatorFlow(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()
	createAgent(t, eng, 7, baseTS)

	// Score update for a validator that was never added is dropped.
	orphan := record(t, model.EventValidatorScoreUpdated, "0x50", baseTS+10, model.ValidatorScoreUpdatedEventData{
		VirtualID: 7, Validator: trader2, NewScore: 5,
	})
	require.NoError(t, eng.Apply(ctx, orphan))
	require.Equal(t, 0, mem.Count(store.KindValidator))

	added := record(t, model.EventValidatorAdded, "0x51", baseTS+20, model.ValidatorAddedEventData{
		VirtualID: 7, Validator: trader2,
	})
	require.NoError(t, eng.Apply(ctx, added))

	agent := load[model.Agent](t, mem, store.KindAgent, "7")
	require.EqualValues(t, 1, agent.ValidatorCount)
	require.EqualValues(t, 1, agent.ActiveValidatorCount)

	update := record(t, model.EventValidatorScoreUpdated, "0x52", baseTS+30, model.ValidatorScoreUpdatedEventData{
		VirtualID: 7, Validator: trader2, NewScore: 80,
	})
	require.NoError(t, eng.Apply(ctx, update))

	validator := load[model.Validator](t, mem, store.KindValidator, resolve.ValidatorKey("7", trader2))
	require.EqualValues(t, 80, validator.Score)
	require.EqualValues(t, 1, validator.ValidationCount)
	requireDecimal(t, "8000", validator.SuccessRate)

	network := load[model.ValidatorNetwork](t, mem, store.KindValidatorNetwork, trader2)
	require.EqualValues(t, 1, network.AgentCount)
	require.EqualValues(t, 1, network.TotalValidations)
	requireDecimal(t, "1", network.InfluenceScore)
}

func TestValidatorAddedUnknownAgentSkipped(t *testing.T) {
	eng, mem := newTestEngine(t)

	rec := record(t, model.EventValidatorAdded, "0x51", baseTS, model.ValidatorAddedEventData{
		VirtualID: 99, Validator: trader2,
	})
	require.NoError(t, eng.Apply(context.Background(), rec))
	require.Equal(t, 0, mem.Count(store.KindValidator))
}

func TestGraduationMarketImpact(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()
	createAgent(t, eng, 7, baseTS)

	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x61", baseTS+10, 10, 10)))

	graduate := record(t, model.EventAgentGraduated, "0x62", baseTS+20, model.AgentGraduatedEventData{VirtualID: 7})
	require.NoError(t, eng.Apply(ctx, graduate))

	impact := load[model.GraduationMarketImpact](t, mem, store.KindGraduationMarketImpact, "7")
	require.EqualValues(t, 1, impact.PreTxCount)
	require.False(t, impact.PostRecorded)

	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x63", baseTS+30, 10, 12)))

	impact = load[model.GraduationMarketImpact](t, mem, store.KindGraduationMarketImpact, "7")
	require.True(t, impact.PostRecorded)
	require.EqualValues(t, 2, impact.PostTxCount)
	postVolume := impact.PostVolume

	// A later trade must not move the frozen post side.
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x64", baseTS+40, 10, 12)))
	impact = load[model.GraduationMarketImpact](t, mem, store.KindGraduationMarketImpact, "7")
	require.True(t, impact.PostVolume.Equal(postVolume))
}

func TestNetworkGrowthGuard(t *testing.T) {
	eng, mem := newTestEngine(t)

	createAgent(t, eng, 7, baseTS)

	day1 := load[model.NetworkMetrics](t, mem, store.KindNetworkMetrics, resolve.NetworkDayKey(baseTS))
	require.EqualValues(t, 1, day1.NewAgents)
	requireDecimal(t, "0", day1.NetworkGrowthRate)

	// Two events on the next day against one the day before.
	nextDay := baseTS + resolve.SecondsPerDay
	createAgent(t, eng, 8, nextDay)
	createAgent(t, eng, 9, nextDay+60)

	day2 := load[model.NetworkMetrics](t, mem, store.KindNetworkMetrics, resolve.NetworkDayKey(nextDay))
	require.EqualValues(t, 2, day2.NewAgents)
	requireDecimal(t, "100", day2.NetworkGrowthRate)
}

func TestMintBurnSupplyClamp(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	mint := record(t, model.EventTransfer, "0x71", baseTS, model.TransferEventData{
		From: zeroAddress, To: trader1, Value: raw(100),
	})
	require.NoError(t, eng.Apply(ctx, mint))

	supply := load[model.TokenSupply](t, mem, store.KindTokenSupply, testToken)
	requireDecimal(t, "100", supply.CirculatingSupply)
	require.False(t, supply.SupplyClamped)

	burn := record(t, model.EventTransfer, "0x72", baseTS+10, model.TransferEventData{
		From: trader1, To: zeroAddress, Value: raw(150),
	})
	require.NoError(t, eng.Apply(ctx, burn))

	supply = load[model.TokenSupply](t, mem, store.KindTokenSupply, testToken)
	requireDecimal(t, "0", supply.CirculatingSupply)
	require.True(t, supply.SupplyClamped)
}

func TestSwapTransferCorrelation(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x81", baseTS, 10, 10)))

	swap := load[model.Swap](t, mem, store.KindSwap, "0x81")
	require.Equal(t, model.TradeTypeSell, swap.Type)
	require.Equal(t, "0", swap.FeeAmount)
	require.Equal(t, testToken, swap.TokenIn)

	fee := record(t, model.EventTransfer, "0x81", baseTS, model.TransferEventData{
		From: trader1, To: testFees, Value: raw(1),
	})
	fee.LogIndex = 1
	require.NoError(t, eng.Apply(ctx, fee))

	swap = load[model.Swap](t, mem, store.KindSwap, "0x81")
	require.Equal(t, raw(1), swap.FeeAmount)
	require.Equal(t, testFees, swap.FeeRecipient)

	leg := record(t, model.EventTransfer, "0x81", baseTS, model.TransferEventData{
		From: trader1, To: trader2, Value: raw(10),
	})
	leg.LogIndex = 2
	require.NoError(t, eng.Apply(ctx, leg))

	swap = load[model.Swap](t, mem, store.KindSwap, "0x81")
	require.Equal(t, trader1, swap.TokenIn)
	require.Equal(t, trader2, swap.TokenOut)

	// First non-fee leg wins; a later leg in the same tx must not refill.
	second := record(t, model.EventTransfer, "0x81", baseTS, model.TransferEventData{
		From: trader2, To: trader3, Value: raw(3),
	})
	second.LogIndex = 3
	require.NoError(t, eng.Apply(ctx, second))

	swap = load[model.Swap](t, mem, store.KindSwap, "0x81")
	require.Equal(t, trader1, swap.TokenIn)
	require.Equal(t, trader2, swap.TokenOut)
}

func TestEconomicSnapshotDayOverDay(t *testing.T) {
	eng, mem := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x91", baseTS, 10, 10)))
	// Exactly one day later so the prior snapshot key resolves.
	require.NoError(t, eng.Apply(ctx, sellSwap(t, "0x92", baseTS+resolve.SecondsPerDay, 10, 20)))

	snap := load[model.EconomicSnapshot](t, mem, store.KindEconomicSnapshot,
		resolve.EconomicSnapshotKey(testToken, baseTS+resolve.SecondsPerDay))
	requireDecimal(t, "100", snap.PriceChangePercent)
	requireDecimal(t, "20", snap.CumulativeVolume)
}

func TestUnknownEventIgnored(t *testing.T) {
	eng, mem := newTestEngine(t)

	rec := model.EventRecord{
		EventName:   "unknown_thing",
		TxHash:      "0xff",
		Timestamp:   baseTS,
		BlockNumber: 1,
		Decoded:     json.RawMessage(`{}`),
	}
	require.NoError(t, eng.Apply(context.Background(), rec))
	require.Equal(t, 0, mem.Count(store.KindNetworkMetrics))
}
