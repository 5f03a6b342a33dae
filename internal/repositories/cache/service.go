// Package cache provides the Redis-backed read cache for account
// profiles. Balances flow through it only as part of cached account
// snapshots; the transfer engine invalidates both sides after a commit
// so stale balances are short-lived.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"payflow/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Service wraps a Redis client with JSON serialization and a default TTL.
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

func NewService(client *redis.Client, defaultTTL time.Duration) *Service {
	return &Service{client: client, ttl: defaultTTL}
}

func (s *Service) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *Service) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *Service) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *Service) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func accountKey(id uuid.UUID) string {
	return fmt.Sprintf("account:id:%s", id)
}

// SetAccount caches an account snapshot under its id.
func (s *Service) SetAccount(ctx context.Context, acc *models.Account) error {
	if acc == nil {
		return errors.New("cannot cache nil account")
	}
	return s.Set(ctx, accountKey(acc.ID), acc)
}

// GetAccount returns a cached account or ErrCacheMiss.
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var acc models.Account
	found, err := s.Get(ctx, accountKey(id), &acc)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCacheMiss
	}
	return &acc, nil
}

// InvalidateAccount drops the cached snapshot for an account.
func (s *Service) InvalidateAccount(ctx context.Context, id uuid.UUID) error {
	return s.Delete(ctx, accountKey(id))
}

func (s *Service) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *Service) Close() error {
	return s.client.Close()
}
