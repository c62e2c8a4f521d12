package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// AssetCache is a read-through cache for asset reference data. Assets change
// rarely but are consulted on every ledger mutation, so they are cached as
// JSON under a short TTL.
type AssetCache struct {
	client *goredis.Client
	prefix string
}

// NewAssetCache creates a new Redis-backed asset cache.
func NewAssetCache(client *goredis.Client) *AssetCache {
	return &AssetCache{
		client: client,
		prefix: "asset:",
	}
}

// Get retrieves a cached asset by id.
// Returns nil, nil if the key does not exist.
func (c *AssetCache) Get(ctx context.Context, assetID string) (*domain.Asset, error) {
	val, err := c.client.Get(ctx, c.prefix+assetID).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis asset get: %w", err)
	}

	a := &domain.Asset{}
	if err := json.Unmarshal(val, a); err != nil {
		return nil, fmt.Errorf("redis asset decode: %w", err)
	}
	return a, nil
}

// Set stores an asset in the cache with TTL.
func (c *AssetCache) Set(ctx context.Context, asset *domain.Asset, ttl time.Duration) error {
	val, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("redis asset encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+asset.AssetID, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis asset set: %w", err)
	}
	return nil
}

// Invalidate drops an asset from the cache so the next resolve re-reads the
// database.
func (c *AssetCache) Invalidate(ctx context.Context, assetID string) error {
	if err := c.client.Del(ctx, c.prefix+assetID).Err(); err != nil {
		return fmt.Errorf("redis asset del: %w", err)
	}
	return nil
}
