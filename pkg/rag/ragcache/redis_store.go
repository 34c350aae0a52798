package ragcache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cache entries across processes. Redis errors are
// treated as cache misses; the cache layer must never fail a request.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisStore{
		client: redis.NewClient(opts),
		prefix: prefix,
	}, nil
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.client.Set(ctx, s.key(key), value, ttl)
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	s.client.Del(ctx, s.key(key))
}

func (s *RedisStore) Flush(ctx context.Context) {
	iter := s.client.Scan(ctx, 0, s.key("*"), 0).Iterator()
	for iter.Next(ctx) {
		s.client.Del(ctx, iter.Val())
	}
}
