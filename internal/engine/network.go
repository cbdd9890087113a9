package engine

import (
	"context"

	"agentscope/internal/decmath"
	"agentscope/internal/model"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
)

// updateNetworkMetrics folds every applied event into the day-bucketed
// network row. Event classification prefers the configured selector
// table and falls back to the event name.
func (e *Engine) updateNetworkMetrics(ctx context.Context, rec model.EventRecord) error {
	key := resolve.NetworkDayKey(rec.Timestamp)
	metrics, created, err := resolve.LoadOrCreate[model.NetworkMetrics](ctx, e.store, store.KindNetworkMetrics, key)
	if err != nil {
		return err
	}
	if created {
		metrics.Date = resolve.DayStart(rec.Timestamp)
	}

	metrics.TotalTransactions++
	switch e.classify(rec) {
	case model.EventAgentCreated:
		metrics.NewAgents++
	case model.EventValidatorAdded:
		metrics.NewValidators++
	case model.EventServiceAccepted:
		metrics.NewServices++
	case model.EventContributionSubmitted:
		metrics.NewContributions++
	}

	// Growth stays zero when the previous day bucket is absent or empty.
	if metrics.Date >= resolve.SecondsPerDay {
		prevKey := resolve.NetworkDayKey(metrics.Date - resolve.SecondsPerDay)
		prev, ok, err := resolve.Load[model.NetworkMetrics](ctx, e.store, store.KindNetworkMetrics, prevKey)
		if err != nil {
			return err
		}
		if ok && prev.TotalTransactions > 0 {
			metrics.NetworkGrowthRate = decmath.FromInt64(metrics.TotalTransactions - prev.TotalTransactions).
				Div(decmath.FromInt64(prev.TotalTransactions)).
				Mul(decmath.Hundred)
		}
	}

	return resolve.Save(ctx, e.store, store.KindNetworkMetrics, key, metrics)
}

func (e *Engine) classify(rec model.EventRecord) string {
	if rec.Selector != "" {
		if kind, ok := e.cfg.SelectorKinds[rec.Selector]; ok {
			return kind
		}
	}
	return rec.EventName
}
