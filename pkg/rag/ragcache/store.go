package ragcache

import (
	"context"
	"time"
)

// Store is a TTL and size bounded key-value cache. It is purely a
// performance layer: losing every entry changes latency, never
// correctness. Writes replace whole values so readers can never see a
// partially updated entry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Flush(ctx context.Context)
}
