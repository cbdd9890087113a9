package engine

import (
	"context"

	"go.uber.org/zap"

	"agentscope/internal/decmath"
	"agentscope/internal/model"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
)

func (e *Engine) handleValidatorAdded(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.ValidatorAddedEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed validator_added payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	if data.Validator == "" {
		e.logger.Warn("validator_added without address", zap.String("tx", rec.TxHash))
		return false, nil
	}
	agent, ok, err := e.loadAgent(ctx, data.VirtualID, rec)
	if err != nil || !ok {
		return false, err
	}

	address := resolve.Address(data.Validator)
	key := resolve.ValidatorKey(agent.ID, address)
	if _, ok, err := resolve.Load[model.Validator](ctx, e.store, store.KindValidator, key); err != nil {
		return false, err
	} else if ok {
		e.logger.Warn("validator already registered",
			zap.String("agent", agent.ID),
			zap.String("validator", address),
		)
		return false, nil
	}

	validator := model.Validator{
		ID:                  key,
		Agent:               agent.ID,
		Address:             address,
		LastActiveTimestamp: rec.Timestamp,
	}
	if err := resolve.Save(ctx, e.store, store.KindValidator, key, &validator); err != nil {
		return false, err
	}

	agent.ValidatorCount++
	agent.ActiveValidatorCount++

	network, created, err := resolve.LoadOrCreate[model.ValidatorNetwork](ctx, e.store, store.KindValidatorNetwork, address)
	if err != nil {
		return false, err
	}
	if created {
		network.Address = address
	}
	network.AgentCount++
	if err := resolve.Save(ctx, e.store, store.KindValidatorNetwork, address, network); err != nil {
		return false, err
	}

	day, _, err := e.loadAgentDay(ctx, agent.ID, rec.Timestamp)
	if err != nil {
		return false, err
	}
	day.ActiveValidators++
	day.ValidatorScoreDistribution = append(day.ValidatorScoreDistribution, decmath.Zero)
	if err := e.saveAgentDay(ctx, day); err != nil {
		return false, err
	}

	if err := e.updateValidatorGrowth(ctx, agent, day); err != nil {
		return false, err
	}
	if err := resolve.Save(ctx, e.store, store.KindAgent, agent.ID, agent); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) handleValidatorScoreUpdated(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.ValidatorScoreUpdatedEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed validator_score_updated payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	agent, ok, err := e.loadAgent(ctx, data.VirtualID, rec)
	if err != nil || !ok {
		return false, err
	}

	address := resolve.Address(data.Validator)
	key := resolve.ValidatorKey(agent.ID, address)
	validator, ok, err := resolve.Load[model.Validator](ctx, e.store, store.KindValidator, key)
	if err != nil {
		return false, err
	}
	if !ok {
		e.logger.Warn("score update for unknown validator",
			zap.String("agent", agent.ID),
			zap.String("validator", address),
			zap.String("tx", rec.TxHash),
		)
		return false, nil
	}

	validator.Score = data.NewScore
	validator.ValidationCount++
	validator.LastActiveTimestamp = rec.Timestamp
	validator.SuccessRate = decmath.FromInt64(validator.Score).
		Div(decmath.FromInt64(validator.ValidationCount)).
		Mul(decmath.Hundred)
	if err := resolve.Save(ctx, e.store, store.KindValidator, key, validator); err != nil {
		return false, err
	}

	network, created, err := resolve.LoadOrCreate[model.ValidatorNetwork](ctx, e.store, store.KindValidatorNetwork, address)
	if err != nil {
		return false, err
	}
	if created {
		network.Address = address
		network.AgentCount = 1
	}
	network.TotalValidations++
	if agent.ValidatorCount > 0 {
		network.InfluenceScore = decmath.FromInt64(validator.ValidationCount).
			Div(decmath.FromInt64(agent.ValidatorCount))
	}
	if err := resolve.Save(ctx, e.store, store.KindValidatorNetwork, address, network); err != nil {
		return false, err
	}

	agent.ValidatorSuccessRate = validator.SuccessRate
	if err := resolve.Save(ctx, e.store, store.KindAgent, agent.ID, agent); err != nil {
		return false, err
	}

	day, _, err := e.loadAgentDay(ctx, agent.ID, rec.Timestamp)
	if err != nil {
		return false, err
	}
	day.AverageValidatorScore = decmath.FromInt64(data.NewScore)
	day.ValidatorScoreDistribution = append(day.ValidatorScoreDistribution, decmath.FromInt64(data.NewScore))
	if err := e.saveAgentDay(ctx, day); err != nil {
		return false, err
	}
	return true, nil
}

// updateValidatorGrowth chains today's active-validator count against the
// previous day bucket.
func (e *Engine) updateValidatorGrowth(ctx context.Context, agent *model.Agent, day *model.AgentDayData) error {
	if day.Date < resolve.SecondsPerDay {
		return nil
	}
	prevKey := resolve.AgentDayKey(agent.ID, day.Date-resolve.SecondsPerDay)
	prev, ok, err := resolve.Load[model.AgentDayData](ctx, e.store, store.KindAgentDayData, prevKey)
	if err != nil {
		return err
	}
	if ok && prev.ActiveValidators > 0 {
		agent.ValidatorGrowthRate = decmath.FromInt64(day.ActiveValidators - prev.ActiveValidators).
			Div(decmath.FromInt64(prev.ActiveValidators)).
			Mul(decmath.Hundred)
	}
	return nil
}
