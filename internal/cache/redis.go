package cache

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore keeps entries in Redis under a fixed key prefix so Clear only
// touches this store's keys. Errors are logged and otherwise ignored.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisStore creates a store over an existing Redis client
func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Debug("redis get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		s.logger.Debug("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.logger.Debug("redis del failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) Clear(ctx context.Context) {
	keys, err := s.client.Keys(ctx, s.prefix+"*").Result()
	if err != nil {
		s.logger.Debug("redis keys failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Debug("redis clear failed", zap.Error(err))
	}
}
