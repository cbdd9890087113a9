package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"agentscope/internal/decmath"
	"agentscope/internal/model"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// handleTransfer maintains token supply from mints and burns, fetches
// token metadata on first touch, and joins fee and counter-asset data
// onto the Swap record sharing the transaction.
func (e *Engine) handleTransfer(ctx context.Context, rec model.EventRecord) (bool, error) {
	var data model.TransferEventData
	if err := decodePayload(rec, &data); err != nil {
		e.logger.Warn("malformed transfer payload", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}
	if data.From == "" || data.To == "" {
		e.logger.Warn("transfer with empty address", zap.String("tx", rec.TxHash))
		return false, nil
	}
	value, err := parseBigInt(data.Value)
	if err != nil {
		e.logger.Warn("malformed transfer value", zap.String("tx", rec.TxHash), zap.Error(err))
		return false, nil
	}

	token := resolve.Address(rec.Address)
	from := resolve.Address(data.From)
	to := resolve.Address(data.To)

	supply, created, err := resolve.LoadOrCreate[model.TokenSupply](ctx, e.store, store.KindTokenSupply, token)
	if err != nil {
		return false, err
	}
	if created {
		supply.Token = token
		supply.Decimals = 18
		supply.IsUSDPair = e.cfg.USDPairs.Contains(token)
	}

	if !supply.MetadataChecked {
		supply.MetadataChecked = true
		e.fetchMetadata(ctx, token, supply)
	}

	amount := decmath.FromRawAmount(value, supply.Decimals)
	switch {
	case from == zeroAddress:
		supply.CirculatingSupply = supply.CirculatingSupply.Add(amount)
		supply.TotalSupply = supply.TotalSupply.Add(amount)
	case to == zeroAddress:
		supply.CirculatingSupply = supply.CirculatingSupply.Sub(amount)
		supply.TotalSupply = supply.TotalSupply.Sub(amount)
		if supply.CirculatingSupply.Sign() < 0 {
			e.logger.Warn("burn exceeds tracked supply, clamping",
				zap.String("token", token),
				zap.String("tx", rec.TxHash),
			)
			supply.CirculatingSupply = decmath.Zero
			supply.SupplyClamped = true
		}
		if supply.TotalSupply.Sign() < 0 {
			supply.TotalSupply = decmath.Zero
			supply.SupplyClamped = true
		}
	}

	supply.LastUpdateBlock = rec.BlockNumber
	supply.LastUpdateTimestamp = rec.Timestamp
	if err := resolve.Save(ctx, e.store, store.KindTokenSupply, token, supply); err != nil {
		return false, err
	}

	if err := e.correlateTransfer(ctx, rec, from, to, data.Value); err != nil {
		return false, err
	}
	return true, nil
}

// fetchMetadata resolves decimals and total supply once per token. A
// failed lookup keeps the defaults and is never retried on later events.
func (e *Engine) fetchMetadata(ctx context.Context, token string, supply *model.TokenSupply) {
	if e.meta == nil {
		return
	}
	meta, err := e.meta.TokenMetadata(ctx, token)
	if err != nil {
		e.logger.Warn("token metadata lookup failed, using defaults",
			zap.String("token", token),
			zap.Error(err),
		)
		return
	}
	if meta.Decimals > 0 {
		supply.Decimals = meta.Decimals
	}
	if meta.TotalSupply != nil && meta.TotalSupply.Sign() > 0 {
		supply.TotalSupply = decmath.FromRawAmount(meta.TotalSupply, supply.Decimals)
	}
}

// correlateTransfer completes the Swap record for the same transaction:
// a transfer to the configured fee recipient carries the fee, and the
// first other transfer carries the true counter-asset addresses. TokenIn
// starts as the emitting contract address and acts as the pending-fill
// marker; once filled, later transfer legs leave it alone.
func (e *Engine) correlateTransfer(ctx context.Context, rec model.EventRecord, from, to, value string) error {
	swap, ok, err := resolve.Load[model.Swap](ctx, e.store, store.KindSwap, rec.TxHash)
	if err != nil || !ok {
		return err
	}

	feeRecipient := strings.ToLower(e.cfg.FeeRecipient)
	switch {
	case feeRecipient != "" && to == feeRecipient:
		swap.FeeAmount = value
		swap.FeeRecipient = to
	case from != feeRecipient && swap.TokenIn == resolve.Address(rec.Address):
		swap.TokenIn = from
		swap.TokenOut = to
	default:
		return nil
	}
	return resolve.Save(ctx, e.store, store.KindSwap, rec.TxHash, swap)
}
