package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cheapr/opsboard/internal/config"
	"github.com/cheapr/opsboard/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	matchKeyPrefix     = "match:candidates"
	matchScanBatchSize = 100
)

// MatchCache holds match candidate sets keyed by buying order. Any mutation
// that can change an order's candidates or links invalidates that order's
// entry; stale reads never outlive the TTL.
type MatchCache interface {
	GetCandidates(ctx context.Context, buyingOrderID int64) (*domain.MatchCandidates, bool, error)
	SetCandidates(ctx context.Context, buyingOrderID int64, candidates *domain.MatchCandidates) error
	Invalidate(ctx context.Context, buyingOrderID int64) error
	InvalidateAll(ctx context.Context) error
}

type redisMatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopMatchCache struct{}

func NewMatchCache(cfg config.CacheConfig) (MatchCache, error) {
	if !cfg.Enabled {
		return &noopMatchCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisMatchCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopMatchCache() MatchCache {
	return &noopMatchCache{}
}

func (c *redisMatchCache) GetCandidates(ctx context.Context, buyingOrderID int64) (*domain.MatchCandidates, bool, error) {
	key := buildMatchKey(buyingOrderID)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var candidates domain.MatchCandidates
	if err := json.Unmarshal(payload, &candidates); err != nil {
		return nil, false, fmt.Errorf("decode match candidates cache: %w", err)
	}

	return &candidates, true, nil
}

func (c *redisMatchCache) SetCandidates(ctx context.Context, buyingOrderID int64, candidates *domain.MatchCandidates) error {
	key := buildMatchKey(buyingOrderID)
	payload, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("encode match candidates cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisMatchCache) Invalidate(ctx context.Context, buyingOrderID int64) error {
	return c.client.Del(ctx, buildMatchKey(buyingOrderID)).Err()
}

func (c *redisMatchCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, matchKeyPrefix, matchScanBatchSize)
}

func (n *noopMatchCache) GetCandidates(ctx context.Context, buyingOrderID int64) (*domain.MatchCandidates, bool, error) {
	return nil, false, nil
}

func (n *noopMatchCache) SetCandidates(ctx context.Context, buyingOrderID int64, candidates *domain.MatchCandidates) error {
	return nil
}

func (n *noopMatchCache) Invalidate(ctx context.Context, buyingOrderID int64) error {
	return nil
}

func (n *noopMatchCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildMatchKey(buyingOrderID int64) string {
	raw := fmt.Sprintf("buying_order=%d", buyingOrderID)
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", matchKeyPrefix, hex.EncodeToString(sum[:]))
}
