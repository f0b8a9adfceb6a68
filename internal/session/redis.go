package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "kisaangrow:session:"

// RedisStore shares sessions between server instances. The idle window is
// the key's ttl, refreshed on every Get.
type RedisStore struct {
	client *redis.Client
	idle   time.Duration
}

func NewRedisStore(client *redis.Client, idle time.Duration) *RedisStore {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &RedisStore{client: client, idle: idle}
}

func key(id string) string {
	return keyPrefix + id
}

func (r *RedisStore) Create(ctx context.Context, s *models.Session) error {
	return r.set(ctx, s)
}

func (r *RedisStore) set(ctx context.Context, s *models.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, key(s.ID), b, r.idle).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	b, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s models.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	s.LastActivity = time.Now().UTC()
	if err := r.Save(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *models.Session) error {
	// XX keeps a session that expired or was deleted meanwhile from being
	// resurrected.
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	ok, err := r.client.SetXX(ctx, key(s.ID), b, r.idle).Result()
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
