package engine

import (
	"context"

	"go.uber.org/zap"

	"agentscope/internal/model"
	"agentscope/internal/registrar"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
)

// handleLaunched records a token launch and registers both new addresses
// as watch sources. The launch-call record for the same transaction may
// arrive in either order.
func (e *Engine) handleLaunched(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.LaunchedEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed launched payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	if data.Token == "" || data.Pair == "" {
		e.logger.Warn("launched without token or pair", zap.String("tx", rec.TxHash))
		return false, nil
	}

	launch, created, err := resolve.LoadOrCreate[model.TokenLaunch](ctx, e.store, store.KindTokenLaunch, rec.TxHash)
	if err != nil {
		return false, err
	}
	if created {
		launch.Transaction = rec.TxHash
		launch.URLs = []string{}
	}
	launch.Token = resolve.Address(data.Token)
	launch.Pair = resolve.Address(data.Pair)
	launch.Creator = resolve.Address(rec.TxFrom)
	launch.CreatedAtBlock = rec.BlockNumber
	launch.Timestamp = rec.Timestamp
	if err := resolve.Save(ctx, e.store, store.KindTokenLaunch, rec.TxHash, launch); err != nil {
		return false, err
	}

	if e.registrar != nil {
		if err := e.registrar.Register(registrar.SourcePair, launch.Pair); err != nil {
			e.logger.Warn("pair registration failed", zap.String("pair", launch.Pair), zap.Error(err))
		}
		if err := e.registrar.Register(registrar.SourceToken, launch.Token); err != nil {
			e.logger.Warn("token registration failed", zap.String("token", launch.Token), zap.Error(err))
		}
	}
	return true, nil
}

// handleLaunchCall enriches the launch record with the call inputs.
// Records with an empty name or ticker are rejected outright.
func (e *Engine) handleLaunchCall(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.LaunchCallData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed launch call payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	if data.Name == "" || data.Ticker == "" {
		e.logger.Warn("launch call without name or ticker", zap.String("tx", rec.TxHash))
		return false, nil
	}

	launch, created, err := resolve.LoadOrCreate[model.TokenLaunch](ctx, e.store, store.KindTokenLaunch, rec.TxHash)
	if err != nil {
		return false, err
	}
	if created {
		launch.Transaction = rec.TxHash
		launch.Timestamp = rec.Timestamp
		launch.CreatedAtBlock = rec.BlockNumber
		launch.Creator = resolve.Address(rec.TxFrom)
		launch.URLs = []string{}
	}
	launch.Name = data.Name
	launch.Ticker = data.Ticker
	launch.Description = data.Description
	launch.ImageURL = data.ImageURL
	launch.URLs = launch.URLs[:0]
	for _, url := range data.URLs {
		if url != "" {
			launch.URLs = append(launch.URLs, url)
		}
	}
	if len(data.Cores) > 0 {
		launch.Cores = data.Cores
	}
	launch.PurchaseAmount = data.PurchaseAmount
	if err := resolve.Save(ctx, e.store, store.KindTokenLaunch, rec.TxHash, launch); err != nil {
		return false, err
	}
	return true, nil
}
