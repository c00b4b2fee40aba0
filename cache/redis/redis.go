package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"llm_api/logger"
)

const keyPrefix = "llm_api:answer:"

// RedisCacheService implements [cache.Service] on a Redis backend so
// cached answers survive restarts and are shared across api replicas.
// Keys are the sha256 of the exact question string, which keeps the
// exact-match contract while bounding key length.
type RedisCacheService struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis at addr. A zero ttl stores entries without
// expiration.
func New(addr string, ttl time.Duration) *RedisCacheService {
	return &RedisCacheService{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Get implements [cache.Service].
func (s *RedisCacheService) Get(ctx context.Context, question string) (string, bool, error) {
	answer, err := s.client.Get(ctx, cacheKey(question)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fail to get from redis: %w", err)
	}
	return answer, true, nil
}

// Set implements [cache.Service].
func (s *RedisCacheService) Set(ctx context.Context, question string, answer string) error {
	if err := s.client.Set(ctx, cacheKey(question), answer, s.ttl).Err(); err != nil {
		return fmt.Errorf("fail to set in redis: %w", err)
	}
	return nil
}

// Shutdown implements [cache.Service].
func (s *RedisCacheService) Shutdown() {
	if err := s.client.Close(); err != nil {
		logger.Warn("fail to close redis client: %v", err)
	}
}

func cacheKey(question string) string {
	sum := sha256.Sum256([]byte(question))
	return keyPrefix + hex.EncodeToString(sum[:])
}
