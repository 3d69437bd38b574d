package router

import (
	"context"
	"encoding/json"
	"time"

	"medirouter/models"

	"github.com/go-redis/redis/v8"
)

const routerContextPrefix = "router:ctx:"

// ContextStore keeps per-requester conversation state between queries
// (last intent, pending hold token). TTL-bounded.
type ContextStore interface {
	Get(ctx context.Context, requesterID string) (*models.RouterContext, error)
	Set(ctx context.Context, requesterID string, rc *models.RouterContext) error
	Clear(ctx context.Context, requesterID string) error
}

type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, requesterID string) (*models.RouterContext, error) {
	key := routerContextPrefix + requesterID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.RouterContext{}, nil
	}
	if err != nil {
		return nil, err
	}
	var rc models.RouterContext
	if err := json.Unmarshal([]byte(data), &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}

func (s *RedisContextStore) Set(ctx context.Context, requesterID string, rc *models.RouterContext) error {
	key := routerContextPrefix + requesterID
	b, err := json.Marshal(rc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, requesterID string) error {
	key := routerContextPrefix + requesterID
	return s.client.Del(ctx, key).Err()
}
