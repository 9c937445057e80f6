package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/africa-markett/storefront/internal/domain"
	apperrors "github.com/africa-markett/storefront/pkg/errors"
)

const keyPrefix = "storefront:configuration:"

// ConfigurationRepository implements repository.ConfigurationRepository
// using Redis. Every Save restarts the key's TTL, which gives sessions an
// inactivity timeout.
type ConfigurationRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewConfigurationRepository creates a new Redis-backed configuration repository.
func NewConfigurationRepository(client redis.UniversalClient, ttl time.Duration) *ConfigurationRepository {
	return &ConfigurationRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a configuration by ID from Redis.
func (r *ConfigurationRepository) Get(ctx context.Context, id string) (*domain.Configuration, error) {
	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("configuration", id)
		}
		return nil, fmt.Errorf("redis get configuration: %w", err)
	}

	var cfg domain.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	return &cfg, nil
}

// Save persists a configuration with the configured TTL. The key is WATCHed
// while the stored version is compared, so a write that lands in between
// aborts the transaction and surfaces as a conflict.
func (r *ConfigurationRepository) Save(ctx context.Context, cfg *domain.Configuration) error {
	key := keyPrefix + cfg.ID

	next := *cfg
	next.Version = cfg.Version + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		stored, found, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := domain.CheckSaveVersion(cfg.ID, cfg.Version, stored, found); err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		cfg.Version = next.Version
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return apperrors.Conflict(fmt.Sprintf("configuration %s was changed by another request", cfg.ID))
	case errors.As(err, &appErr):
		return err
	default:
		return fmt.Errorf("redis set configuration: %w", err)
	}
}

func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, bool, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var v struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, false, fmt.Errorf("unmarshal configuration: %w", err)
	}
	return v.Version, true, nil
}

// Delete removes a configuration from Redis.
func (r *ConfigurationRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del configuration: %w", err)
	}

	return nil
}
