package etherscan

import (
	"context"
	"encoding/json"
	"log/slog"

	"walletrep/internal/domain"
)

// Data kinds used as cache keys alongside the wallet address.
const (
	KindTransactions   = "txlist"
	KindTokenTransfers = "tokentx"
)

// PayloadCache stores fetched histories keyed by (address, kind). Reads that
// fail count as misses; writes that fail are dropped.
type PayloadCache interface {
	Get(ctx context.Context, address, kind string) ([]byte, bool)
	Set(ctx context.Context, address, kind string, payload []byte)
}

type CacheObserver interface {
	OnCacheHit(kind string)
	OnCacheMiss(kind string)
}

// CachedClient decorates a Client with a payload cache so repeated scoring
// runs for the same wallet skip the paginated upstream fetch.
type CachedClient struct {
	base     *Client
	cache    PayloadCache
	observer CacheObserver
}

func NewCachedClient(base *Client, cache PayloadCache, observer CacheObserver) *CachedClient {
	return &CachedClient{base: base, cache: cache, observer: observer}
}

func (c *CachedClient) Transactions(ctx context.Context, address string) ([]domain.Transaction, error) {
	if c.cache == nil {
		return c.base.Transactions(ctx, address)
	}
	if payload, ok := c.cache.Get(ctx, address, KindTransactions); ok {
		var txs []domain.Transaction
		if err := json.Unmarshal(payload, &txs); err == nil {
			c.hit(KindTransactions)
			return txs, nil
		}
		slog.Warn("cache payload decode error, refetching", "kind", KindTransactions, "address", address)
	}
	c.miss(KindTransactions)
	txs, err := c.base.Transactions(ctx, address)
	if err != nil {
		return nil, err
	}
	c.store(ctx, address, KindTransactions, txs)
	return txs, nil
}

func (c *CachedClient) TokenTransfers(ctx context.Context, address string) ([]domain.TokenTransfer, error) {
	if c.cache == nil {
		return c.base.TokenTransfers(ctx, address)
	}
	if payload, ok := c.cache.Get(ctx, address, KindTokenTransfers); ok {
		var transfers []domain.TokenTransfer
		if err := json.Unmarshal(payload, &transfers); err == nil {
			c.hit(KindTokenTransfers)
			return transfers, nil
		}
		slog.Warn("cache payload decode error, refetching", "kind", KindTokenTransfers, "address", address)
	}
	c.miss(KindTokenTransfers)
	transfers, err := c.base.TokenTransfers(ctx, address)
	if err != nil {
		return nil, err
	}
	c.store(ctx, address, KindTokenTransfers, transfers)
	return transfers, nil
}

func (c *CachedClient) store(ctx context.Context, address, kind string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache payload encode error", "kind", kind, "address", address, "err", err)
		return
	}
	c.cache.Set(ctx, address, kind, payload)
}

func (c *CachedClient) hit(kind string) {
	if c.observer != nil {
		c.observer.OnCacheHit(kind)
	}
}

func (c *CachedClient) miss(kind string) {
	if c.observer != nil {
		c.observer.OnCacheMiss(kind)
	}
}
