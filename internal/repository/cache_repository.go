package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/edusched/timetable-api/pkg/errors"
)

// CacheRepository mirrors generation proposals to Redis so they survive
// restarts. A nil client degrades to a no-op: Get misses, writes succeed.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

func proposalKey(id string) string {
	return "timetable:proposal:" + id
}

// GetProposal retrieves and unmarshals a mirrored proposal.
func (r *CacheRepository) GetProposal(ctx context.Context, id string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, proposalKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get proposal %s: %w", id, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal proposal %s: %w", id, err)
	}
	return nil
}

// SetProposal mirrors a proposal with the given TTL.
func (r *CacheRepository) SetProposal(ctx context.Context, id string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal proposal %s: %w", id, err)
	}

	if err := r.client.Set(ctx, proposalKey(id), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set proposal %s: %w", id, err)
	}
	return nil
}

// DeleteProposal drops a mirrored proposal.
func (r *CacheRepository) DeleteProposal(ctx context.Context, id string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, proposalKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete proposal %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
