package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20ABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20ABI     abi.ABI
	erc20ABIOnce sync.Once
	erc20ABIErr  error
)

func erc20ABIInstance() (abi.ABI, error) {
	erc20ABIOnce.Do(func() {
		erc20ABI, erc20ABIErr = abi.JSON(strings.NewReader(erc20ABIJSON))
	})
	return erc20ABI, erc20ABIErr
}

// TokenMetadata is the result of the ERC20 metadata calls.
type TokenMetadata struct {
	Decimals    uint8
	TotalSupply *big.Int
}

// MetadataFetcher resolves ERC20 decimals and total supply with an
// in-memory cache and retry. A nil fetcher is valid: callers fall back to
// their documented defaults.
type MetadataFetcher struct {
	client       *Client
	maxRetries   int
	retryBackoff time.Duration

	mu    sync.RWMutex
	cache map[common.Address]TokenMetadata
}

func NewMetadataFetcher(client *Client, maxRetries int, retryBackoff time.Duration) *MetadataFetcher {
	return &MetadataFetcher{
		client:       client,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		cache:        make(map[common.Address]TokenMetadata),
	}
}

// TokenMetadata fetches decimals and totalSupply for a token.
func (f *MetadataFetcher) TokenMetadata(ctx context.Context, token string) (TokenMetadata, error) {
	if f == nil || f.client == nil {
		return TokenMetadata{}, fmt.Errorf("no chain client configured")
	}
	if !common.IsHexAddress(token) {
		return TokenMetadata{}, fmt.Errorf("invalid token address: %s", token)
	}
	addr := common.HexToAddress(token)

	f.mu.RLock()
	meta, ok := f.cache[addr]
	f.mu.RUnlock()
	if ok {
		return meta, nil
	}

	parsed, err := erc20ABIInstance()
	if err != nil {
		return TokenMetadata{}, fmt.Errorf("parse erc20 abi: %w", err)
	}

	var fetched TokenMetadata
	err = withRetry(ctx, f.maxRetries, f.retryBackoff, func(ctx context.Context) error {
		decimals, err := f.callUint8(ctx, parsed, addr, "decimals")
		if err != nil {
			return err
		}
		totalSupply, err := f.callBigInt(ctx, parsed, addr, "totalSupply")
		if err != nil {
			return err
		}
		fetched = TokenMetadata{Decimals: decimals, TotalSupply: totalSupply}
		return nil
	})
	if err != nil {
		return TokenMetadata{}, err
	}

	f.mu.Lock()
	f.cache[addr] = fetched
	f.mu.Unlock()

	return fetched, nil
}

func (f *MetadataFetcher) callUint8(ctx context.Context, parsed abi.ABI, addr common.Address, method string) (uint8, error) {
	values, err := f.call(ctx, parsed, addr, method)
	if err != nil {
		return 0, err
	}
	switch v := values[0].(type) {
	case uint8:
		return v, nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported %s type %T", method, values[0])
	}
}

func (f *MetadataFetcher) callBigInt(ctx context.Context, parsed abi.ABI, addr common.Address, method string) (*big.Int, error) {
	values, err := f.call(ctx, parsed, addr, method)
	if err != nil {
		return nil, err
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unsupported %s type %T", method, values[0])
	}
	return new(big.Int).Set(v), nil
}

func (f *MetadataFetcher) call(ctx context.Context, parsed abi.ABI, addr common.Address, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &addr, Data: data}
	resp, err := f.client.CallContract(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("empty %s result", method)
	}
	return values, nil
}
