// Package oracle resolves USD prices for trades. The default source is a
// stub over locally known state: a direct computation for configured
// stable-asset pairs, otherwise the token's last recorded price. It never
// blocks on anything external.
package oracle

import (
	"context"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"agentscope/internal/decmath"
	"agentscope/internal/model"
	"agentscope/internal/resolve"
	"agentscope/internal/store"
)

// USDPairSet is the injected set of stable-asset token addresses.
type USDPairSet map[string]struct{}

func NewUSDPairSet(addresses []string) USDPairSet {
	set := make(USDPairSet, len(addresses))
	for _, addr := range addresses {
		set[strings.ToLower(addr)] = struct{}{}
	}
	return set
}

func (s USDPairSet) Contains(address string) bool {
	_, ok := s[strings.ToLower(address)]
	return ok
}

// PriceSource yields a USD price for a trade on a token. Implementations
// must not block; zero means unknown.
type PriceSource interface {
	USDPrice(ctx context.Context, token string, amountToken, amountCounter *big.Int, tokenDecimals uint8) (decimal.Decimal, error)
}

// StoreSource prices trades from the entity store's TokenSupply rows.
type StoreSource struct {
	store    store.Store
	usdPairs USDPairSet
}

func NewStoreSource(s store.Store, usdPairs USDPairSet) *StoreSource {
	return &StoreSource{store: s, usdPairs: usdPairs}
}

// USDPrice returns counter/token for stable pairs, else the last known
// price, else zero. Counter-asset amounts are assumed 18-decimal.
func (s *StoreSource) USDPrice(ctx context.Context, token string, amountToken, amountCounter *big.Int, tokenDecimals uint8) (decimal.Decimal, error) {
	supply, ok, err := resolve.Load[model.TokenSupply](ctx, s.store, store.KindTokenSupply, resolve.TokenKey(token))
	if err != nil {
		return decimal.Zero, err
	}

	isUSDPair := s.usdPairs.Contains(token)
	if ok && supply.IsUSDPair {
		isUSDPair = true
	}

	if isUSDPair {
		tokenAmount := decmath.FromRawAmount(amountToken, tokenDecimals)
		usdAmount := decmath.FromRawAmount(amountCounter, 18)
		if tokenAmount.IsZero() {
			return decimal.Zero, nil
		}
		return usdAmount.Div(tokenAmount), nil
	}

	if ok {
		return supply.LastPriceUSD, nil
	}
	return decimal.Zero, nil
}
