package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"agentscope/internal/decmath"
	"agentscope/internal/model"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
)

func (e *Engine) handleAgentCreated(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.AgentCreatedEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed agent_created payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	if data.Token == "" {
		e.logger.Warn("agent_created without token", zap.String("tx", rec.TxHash))
		return false, nil
	}

	id := resolve.AgentKey(data.VirtualID)
	if _, ok, err := resolve.Load[model.Agent](ctx, e.store, store.KindAgent, id); err != nil {
		return false, err
	} else if ok {
		e.logger.Warn("agent already exists", zap.String("agent", id), zap.String("tx", rec.TxHash))
		return false, nil
	}

	agent := model.Agent{
		ID:            id,
		VirtualID:     data.VirtualID,
		Founder:       resolve.Address(data.Founder),
		DAO:           resolve.Address(data.DAO),
		Token:         resolve.Address(data.Token),
		TBA:           resolve.Address(data.TBA),
		CoreTypes:     data.CoreTypes,
		CreatedAt:     rec.Timestamp,
		ServicesArray: []string{},
		// Ranking is computed downstream; the engine only seeds the inputs.
		// The stake-duration clock also starts at creation, so the first
		// stake update measures from here rather than staying unset.
		LastRankUpdate:       rec.Timestamp,
		LastServiceTimestamp: rec.Timestamp,
	}
	if err := resolve.Save(ctx, e.store, store.KindAgent, id, &agent); err != nil {
		return false, err
	}

	index := model.AgentTokenIndex{Token: agent.Token, AgentID: id}
	if err := resolve.Save(ctx, e.store, store.KindAgentTokenIndex, agent.Token, &index); err != nil {
		return false, err
	}

	if err := e.writeMaturitySnapshot(ctx, &agent, rec, 0); err != nil {
		return false, err
	}

	day, _, err := e.loadAgentDay(ctx, id, rec.Timestamp)
	if err != nil {
		return false, err
	}
	if err := e.saveAgentDay(ctx, day); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) handleAgentGraduated(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.AgentGraduatedEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed agent_graduated payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	agent, ok, err := e.loadAgent(ctx, data.VirtualID, rec)
	if err != nil || !ok {
		return false, err
	}
	if agent.GraduatedToUniswap {
		return false, nil
	}
	agent.GraduatedToUniswap = true
	agent.GraduationTimestamp = rec.Timestamp
	if err := resolve.Save(ctx, e.store, store.KindAgent, agent.ID, agent); err != nil {
		return false, err
	}

	// Freeze the pre-graduation market state; the post side fills on the
	// first trade after graduation.
	impact := model.GraduationMarketImpact{
		Agent:               agent.ID,
		Token:               agent.Token,
		GraduationTimestamp: rec.Timestamp,
	}
	econ, ok, err := resolve.Load[model.TokenEconomics](ctx, e.store, store.KindTokenEconomics, agent.Token)
	if err != nil {
		return false, err
	}
	if ok {
		impact.PreVWAP = econ.VolumeWeightedPrice
		impact.PreVolume = econ.TotalVolume
		impact.PreTxCount = econ.TotalTransactions
	}
	if err := resolve.Save(ctx, e.store, store.KindGraduationMarketImpact, agent.ID, &impact); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) handleStakeUpdated(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.StakeUpdatedEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed stake_updated payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	agent, ok, err := e.loadAgent(ctx, data.VirtualID, rec)
	if err != nil || !ok {
		return false, err
	}

	oldStake, err := parseDecimal(data.OldStake)
	if err != nil {
		e.logger.Warn("malformed old stake", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	newStake, err := parseDecimal(data.NewStake)
	if err != nil {
		e.logger.Warn("malformed new stake", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}

	// Time-weighted stake uses the previous stake over the elapsed time
	// since the agent's last recorded service.
	if agent.TotalStaked.Sign() > 0 && agent.LastServiceTimestamp > 0 && rec.Timestamp > agent.LastServiceTimestamp {
		elapsed := rec.Timestamp - agent.LastServiceTimestamp
		agent.AverageStakeDuration = elapsed
		agent.TimeWeightedStake = agent.TotalStaked.Mul(decmath.FromInt64(int64(elapsed)))
	}

	agent.TotalStaked = newStake
	agent.UniqueStakers = data.UniqueStakers

	if newStake.Sign() > 0 {
		if agent.MinStakeAmount.IsZero() || newStake.LessThan(agent.MinStakeAmount) {
			agent.MinStakeAmount = newStake
		}
		if newStake.GreaterThan(agent.MaxStakeAmount) {
			agent.MaxStakeAmount = newStake
		}
	}

	if oldStake.Sign() > 0 {
		agent.StakeGrowthRate = newStake.Sub(oldStake).Div(oldStake).Mul(decmath.Hundred)
		agent.StakingGrowthRate = agent.StakeGrowthRate
	}

	e.updateStakingYield(agent, rec.Timestamp)

	if err := resolve.Save(ctx, e.store, store.KindAgent, agent.ID, agent); err != nil {
		return false, err
	}

	day, _, err := e.loadAgentDay(ctx, agent.ID, rec.Timestamp)
	if err != nil {
		return false, err
	}
	change := newStake.Sub(oldStake)
	if change.Sign() > 0 {
		day.DailyStakeAmount = day.DailyStakeAmount.Add(change)
	} else {
		day.DailyUnstakeAmount = day.DailyUnstakeAmount.Add(change.Neg())
	}
	day.NetStakingChange = day.DailyStakeAmount.Sub(day.DailyUnstakeAmount)
	day.UniqueDailyStakers = data.UniqueStakers
	if data.UniqueStakers > 0 {
		day.AverageStakeSize = newStake.Div(decmath.FromInt64(data.UniqueStakers))
	}
	if newStake.Sign() > 0 {
		day.RewardPerStake = day.DailyRewardsGenerated.Div(newStake)
	}
	day.StakeSizeDistribution = append(day.StakeSizeDistribution, newStake)
	if err := e.saveAgentDay(ctx, day); err != nil {
		return false, err
	}
	return true, nil
}

// updateStakingYield annualizes cumulative rewards against the current
// stake, then derives the hourly/daily/weekly/monthly ladder.
func (e *Engine) updateStakingYield(agent *model.Agent, ts uint64) {
	if agent.StakingRewardsDistributed.Sign() <= 0 || agent.TotalStaked.Sign() <= 0 {
		return
	}
	if ts <= agent.CreatedAt {
		return
	}
	elapsed := decmath.FromInt64(int64(ts - agent.CreatedAt))
	annualized := agent.StakingRewardsDistributed.
		Mul(decmath.FromInt64(secondsPerYear)).
		Div(elapsed)
	agent.StakingAPY = annualized.Div(agent.TotalStaked).Mul(decmath.Hundred)
	agent.HourlyYield = agent.StakingAPY.Div(decmath.FromInt64(8760))
	agent.DailyYield = agent.StakingAPY.Div(decmath.FromInt64(365))
	agent.WeeklyYield = agent.StakingAPY.Div(decmath.FromInt64(52))
	agent.MonthlyYield = agent.StakingAPY.Div(decmath.FromInt64(12))
}

func (e *Engine) handleRewardDistributed(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.RewardDistributedEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed reward_distributed payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	agent, ok, err := e.loadAgent(ctx, data.VirtualID, rec)
	if err != nil || !ok {
		return false, err
	}
	amount, err := parseDecimal(data.Amount)
	if err != nil {
		e.logger.Warn("malformed reward amount", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}

	agent.StakingRewardsDistributed = agent.StakingRewardsDistributed.Add(amount)
	e.updateStakingYield(agent, rec.Timestamp)
	if err := resolve.Save(ctx, e.store, store.KindAgent, agent.ID, agent); err != nil {
		return false, err
	}

	econ, created, err := resolve.LoadOrCreate[model.TokenEconomics](ctx, e.store, store.KindTokenEconomics, agent.Token)
	if err != nil {
		return false, err
	}
	if created {
		econ.Token = agent.Token
	}
	econ.TotalRewardsDistributed = econ.TotalRewardsDistributed.Add(amount)
	if err := resolve.Save(ctx, e.store, store.KindTokenEconomics, agent.Token, econ); err != nil {
		return false, err
	}

	day, _, err := e.loadAgentDay(ctx, agent.ID, rec.Timestamp)
	if err != nil {
		return false, err
	}
	day.DailyRewardsGenerated = day.DailyRewardsGenerated.Add(amount)
	switch data.RecipientType {
	case 0:
		day.StakersRewards = day.StakersRewards.Add(amount)
	case 1:
		day.ValidatorsRewards = day.ValidatorsRewards.Add(amount)
	case 2:
		day.ContributorsRewards = day.ContributorsRewards.Add(amount)
	case 3:
		day.ProtocolRewards = day.ProtocolRewards.Add(amount)
	default:
		e.logger.Warn("unknown reward recipient type",
			zap.Int32("recipient_type", data.RecipientType),
			zap.String("tx", rec.TxHash),
		)
	}
	if agent.TotalStaked.Sign() > 0 {
		day.RewardPerStake = day.DailyRewardsGenerated.Div(agent.TotalStaked)
	}
	if err := e.saveAgentDay(ctx, day); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) handleServiceAccepted(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.ServiceAcceptedEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed service_accepted payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	agent, ok, err := e.loadAgent(ctx, data.VirtualID, rec)
	if err != nil || !ok {
		return false, err
	}
	impact, err := parseDecimal(data.Impact)
	if err != nil {
		e.logger.Warn("malformed service impact", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}

	serviceID := fmt.Sprintf("%s-%d", agent.ID, data.ServiceID)
	service := model.Service{
		ID:            serviceID,
		Agent:         agent.ID,
		MaturityScore: data.MaturityScore,
		Impact:        impact,
		CoreType:      data.CoreType,
		Timestamp:     rec.Timestamp,
		Token:         agent.Token,
		PriceImpact:   impact.Div(decmath.Hundred),
	}
	if data.ContributionID > 0 {
		service.Contribution = fmt.Sprintf("%s-%d", agent.ID, data.ContributionID)
	}
	if err := resolve.Save(ctx, e.store, store.KindService, serviceID, &service); err != nil {
		return false, err
	}

	if service.Contribution != "" {
		contribution, ok, err := resolve.Load[model.Contribution](ctx, e.store, store.KindContribution, service.Contribution)
		if err != nil {
			return false, err
		}
		if ok {
			contribution.Accepted = true
			contribution.Service = serviceID
			if err := resolve.Save(ctx, e.store, store.KindContribution, service.Contribution, contribution); err != nil {
				return false, err
			}
		}
	}

	oldScore := agent.MaturityScore

	agent.ServicesArray = append(agent.ServicesArray, serviceID)
	agent.TotalServiceImpact = agent.TotalServiceImpact.Add(impact)
	agent.AverageServiceImpact = agent.TotalServiceImpact.Div(decmath.FromInt64(int64(len(agent.ServicesArray))))
	if impact.Sign() > 0 {
		agent.ServiceSuccessCount++
	} else {
		agent.ServiceFailureCount++
	}
	if err := e.rescanServiceSuccess(ctx, agent); err != nil {
		return false, err
	}

	if data.MaturityScore > agent.MaturityScore {
		agent.MaturityScore = data.MaturityScore
	}
	agent.GraduationProgress = decmath.FromInt64(agent.MaturityScore).
		Div(decmath.FromInt64(e.cfg.GraduationThreshold)).
		Mul(decmath.Hundred)
	agent.LastServiceTimestamp = rec.Timestamp

	if agent.ContributionCount > 0 {
		agent.ContributionAcceptanceRate = decmath.FromInt64(int64(len(agent.ServicesArray))).
			Div(decmath.FromInt64(agent.ContributionCount)).
			Mul(decmath.Hundred)
	}

	if err := e.writeMaturitySnapshot(ctx, agent, rec, oldScore); err != nil {
		return false, err
	}

	day, _, err := e.loadAgentDay(ctx, agent.ID, rec.Timestamp)
	if err != nil {
		return false, err
	}
	day.AcceptedServices++
	day.DailyImpactScore = day.DailyImpactScore.Add(impact)
	if impact.Sign() > 0 {
		day.ServiceSuccessCount++
	} else {
		day.ServiceFailureCount++
	}
	day.DailySuccessRate = decmath.FromInt64(day.ServiceSuccessCount).
		Div(decmath.FromInt64(day.AcceptedServices)).
		Mul(decmath.Hundred)
	day.PerformanceScore = day.DailyImpactScore.Mul(day.DailySuccessRate).Div(decmath.Hundred)
	day.MaturityScoreChange += agent.MaturityScore - oldScore
	day.ImpactScoreDistribution = append(day.ImpactScoreDistribution, impact)
	if day.ActiveValidators > 0 {
		day.ValidationsPerValidator = decmath.FromInt64(day.ServiceSuccessCount).
			Div(decmath.FromInt64(day.ActiveValidators))
	}
	if err := e.saveAgentDay(ctx, day); err != nil {
		return false, err
	}

	if err := e.updateServiceGrowth(ctx, agent, day); err != nil {
		return false, err
	}

	econ, err := e.serviceEconomics(ctx, agent, &service, rec.Timestamp)
	if err != nil {
		return false, err
	}
	if err := e.writeMarketHealth(ctx, agent, econ, rec.Timestamp); err != nil {
		return false, err
	}
	if err := e.predictGraduation(ctx, agent, rec.Timestamp); err != nil {
		return false, err
	}

	if err := resolve.Save(ctx, e.store, store.KindAgent, agent.ID, agent); err != nil {
		return false, err
	}
	return true, nil
}

// rescanServiceSuccess recomputes the success rate by reloading every
// service in the agent's array. Linear in service count, intentionally.
func (e *Engine) rescanServiceSuccess(ctx context.Context, agent *model.Agent) error {
	if len(agent.ServicesArray) == 0 {
		agent.ServiceSuccessRate = decmath.Zero
		return nil
	}
	var successes int64
	for _, id := range agent.ServicesArray {
		service, ok, err := resolve.Load[model.Service](ctx, e.store, store.KindService, id)
		if err != nil {
			return err
		}
		if ok && service.Impact.Sign() > 0 {
			successes++
		}
	}
	agent.ServiceSuccessRate = decmath.FromInt64(successes).
		Div(decmath.FromInt64(int64(len(agent.ServicesArray)))).
		Mul(decmath.Hundred)
	return nil
}

// updateServiceGrowth chains today's accepted-service count against the
// previous day bucket.
func (e *Engine) updateServiceGrowth(ctx context.Context, agent *model.Agent, day *model.AgentDayData) error {
	if day.Date < resolve.SecondsPerDay {
		return nil
	}
	prevKey := resolve.AgentDayKey(agent.ID, day.Date-resolve.SecondsPerDay)
	prev, ok, err := resolve.Load[model.AgentDayData](ctx, e.store, store.KindAgentDayData, prevKey)
	if err != nil {
		return err
	}
	if ok && prev.AcceptedServices > 0 {
		agent.ServiceGrowthRate = decmath.FromInt64(day.AcceptedServices - prev.AcceptedServices).
			Div(decmath.FromInt64(prev.AcceptedServices)).
			Mul(decmath.Hundred)
	}
	return nil
}

// serviceEconomics folds a service acceptance into the token's economics
// row and snapshots it with a service trigger.
func (e *Engine) serviceEconomics(ctx context.Context, agent *model.Agent, service *model.Service, ts uint64) (*model.TokenEconomics, error) {
	econ, created, err := resolve.LoadOrCreate[model.TokenEconomics](ctx, e.store, store.KindTokenEconomics, agent.Token)
	if err != nil {
		return nil, err
	}
	if created {
		econ.Token = agent.Token
	}
	econ.LiquidityDepth = econ.LiquidityDepth.Add(service.LiquidityEffect)
	econ.StakingEfficiency = decmath.Min(agent.StakingAPY, decmath.Hundred)
	if econ.TotalRewardsDistributed.Sign() > 0 && agent.TotalServiceImpact.Sign() > 0 {
		econ.RewardEfficiency = agent.TotalServiceImpact.Div(econ.TotalRewardsDistributed)
	}
	econ.UpdateTimestamp = ts
	if err := resolve.Save(ctx, e.store, store.KindTokenEconomics, agent.Token, econ); err != nil {
		return nil, err
	}

	supply, ok, err := resolve.Load[model.TokenSupply](ctx, e.store, store.KindTokenSupply, agent.Token)
	if err != nil {
		return nil, err
	}
	priceUSD := decimal.Zero
	if ok {
		priceUSD = supply.LastPriceUSD
	}
	if err := e.writeEconomicSnapshot(ctx, econ, priceUSD, "service", agent.ID, ts); err != nil {
		return nil, err
	}
	return econ, nil
}

// writeMarketHealth computes the weighted composite and freezes it with
// its inputs.
func (e *Engine) writeMarketHealth(ctx context.Context, agent *model.Agent, econ *model.TokenEconomics, ts uint64) error {
	validatorParticipation := decimal.Zero
	if agent.ValidatorCount > 0 {
		validatorParticipation = decmath.FromInt64(agent.ActiveValidatorCount).
			Div(decmath.FromInt64(agent.ValidatorCount)).
			Mul(decmath.Hundred)
	}
	stakingEfficiency := decmath.Min(agent.StakingAPY, decmath.Hundred)

	score := econ.PriceStability.Mul(decimal.NewFromFloat(0.30)).
		Add(econ.LiquidityDepth.Mul(decimal.NewFromFloat(0.20))).
		Add(validatorParticipation.Mul(decimal.NewFromFloat(0.20))).
		Add(stakingEfficiency.Mul(decimal.NewFromFloat(0.15))).
		Add(agent.ServiceSuccessRate.Mul(decimal.NewFromFloat(0.15)))
	agent.MarketHealthScore = score

	agent.NetworkGrowthContribution = agent.StakingGrowthRate.Mul(decimal.NewFromFloat(0.40)).
		Add(agent.ValidatorGrowthRate.Mul(decimal.NewFromFloat(0.30))).
		Add(agent.ServiceGrowthRate.Mul(decimal.NewFromFloat(0.30)))

	snap := model.MarketHealthSnapshot{
		Agent:                  agent.ID,
		Timestamp:              ts,
		Score:                  score,
		PriceStability:         econ.PriceStability,
		LiquidityDepth:         econ.LiquidityDepth,
		ValidatorParticipation: validatorParticipation,
		StakingEfficiency:      stakingEfficiency,
		ServiceSuccess:         agent.ServiceSuccessRate,
	}
	key := resolve.AgentTimestampKey(agent.ID, ts)
	return resolve.Save(ctx, e.store, store.KindMarketHealthSnapshot, key, &snap)
}

// predictGraduation extrapolates progress linearly from creation time.
// A zero or negative rate, or completed progress, leaves the previous
// prediction in place.
func (e *Engine) predictGraduation(ctx context.Context, agent *model.Agent, ts uint64) error {
	if ts <= agent.CreatedAt {
		return nil
	}
	if agent.GraduationProgress.Sign() <= 0 || agent.GraduationProgress.GreaterThanOrEqual(decmath.Hundred) {
		return nil
	}
	elapsed := decmath.FromInt64(int64(ts - agent.CreatedAt))
	rate := agent.GraduationProgress.Div(elapsed)
	if rate.Sign() <= 0 {
		return nil
	}
	remaining := decmath.Hundred.Sub(agent.GraduationProgress).Div(rate)
	predictedAt := ts + uint64(remaining.Truncate(0).IntPart())

	stakingSignal := decimal.Zero
	if agent.StakingGrowthRate.Sign() > 0 {
		stakingSignal = decmath.One
	}
	confidence := agent.ServiceSuccessRate.Div(decmath.Hundred).
		Add(agent.ValidatorSuccessRate.Div(decmath.Hundred)).
		Add(stakingSignal).
		Div(decmath.FromInt64(3))

	agent.GraduationPredictedAt = predictedAt
	agent.GraduationConfidence = confidence

	prediction := model.GraduationPrediction{
		Agent:        agent.ID,
		Timestamp:    ts,
		Progress:     agent.GraduationProgress,
		ProgressRate: rate,
		PredictedAt:  predictedAt,
		Confidence:   confidence,
	}
	return resolve.Save(ctx, e.store, store.KindGraduationPrediction, agent.ID, &prediction)
}

func (e *Engine) handleContributionSubmitted(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.ContributionSubmittedEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed contribution_submitted payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	agent, ok, err := e.loadAgent(ctx, data.VirtualID, rec)
	if err != nil || !ok {
		return false, err
	}

	id := fmt.Sprintf("%s-%d", agent.ID, data.ContributionID)
	contribution := model.Contribution{
		ID:          id,
		Agent:       agent.ID,
		Contributor: resolve.Address(data.Contributor),
		CoreType:    data.CoreType,
		Timestamp:   rec.Timestamp,
	}
	if data.ParentContributionID > 0 {
		contribution.ParentContribution = fmt.Sprintf("%s-%d", agent.ID, data.ParentContributionID)
	}
	if err := resolve.Save(ctx, e.store, store.KindContribution, id, &contribution); err != nil {
		return false, err
	}

	agent.ContributionCount++
	agent.ContributionAcceptanceRate = decmath.FromInt64(int64(len(agent.ServicesArray))).
		Div(decmath.FromInt64(agent.ContributionCount)).
		Mul(decmath.Hundred)
	if err := resolve.Save(ctx, e.store, store.KindAgent, agent.ID, agent); err != nil {
		return false, err
	}

	day, _, err := e.loadAgentDay(ctx, agent.ID, rec.Timestamp)
	if err != nil {
		return false, err
	}
	day.NewContributions++
	if err := e.saveAgentDay(ctx, day); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) writeMaturitySnapshot(ctx context.Context, agent *model.Agent, rec model.EventRecord, oldScore int64) error {
	snap := model.MaturityScoreSnapshot{
		Agent:       agent.ID,
		Timestamp:   rec.Timestamp,
		Score:       agent.MaturityScore,
		BlockNumber: rec.BlockNumber,
	}
	if oldScore > 0 {
		snap.GrowthRate = decmath.FromInt64(agent.MaturityScore - oldScore).
			Div(decmath.FromInt64(oldScore)).
			Mul(decmath.Hundred)
	}
	key := resolve.AgentTimestampKey(agent.ID, rec.Timestamp)
	return resolve.Save(ctx, e.store, store.KindMaturityScoreSnapshot, key, &snap)
}

// loadAgent resolves an agent by numeric id, logging and skipping when it
// was never created.
func (e *Engine) loadAgent(ctx context.Context, virtualID uint64, rec model.EventRecord) (*model.Agent, bool, error) {
	agent, ok, err := resolve.Load[model.Agent](ctx, e.store, store.KindAgent, resolve.AgentKey(virtualID))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		e.logger.Warn("event for unknown agent",
			zap.Uint64("virtual_id", virtualID),
			zap.String("event", rec.EventName),
			zap.String("tx", rec.TxHash),
		)
		return nil, false, nil
	}
	return agent, true, nil
}

func (e *Engine) loadAgentDay(ctx context.Context, agentID string, ts uint64) (*model.AgentDayData, bool, error) {
	key := resolve.AgentDayKey(agentID, ts)
	day, created, err := resolve.LoadOrCreate[model.AgentDayData](ctx, e.store, store.KindAgentDayData, key)
	if err != nil {
		return nil, false, err
	}
	if created {
		day.Agent = agentID
		day.Date = resolve.DayStart(ts)
	}
	return day, created, nil
}

func (e *Engine) saveAgentDay(ctx context.Context, day *model.AgentDayData) error {
	key := resolve.AgentDayKey(day.Agent, day.Date)
	return resolve.Save(ctx, e.store, store.KindAgentDayData, key, day)
}
