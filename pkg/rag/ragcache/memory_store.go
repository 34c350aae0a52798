package ragcache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore bounds go-cache with a capacity: when full, the oldest
// entry (by insertion time) is evicted first.
type MemoryStore struct {
	cache      *gocache.Cache
	maxEntries int

	mu       sync.Mutex
	inserted map[string]time.Time
}

func NewMemoryStore(defaultTTL time.Duration, maxEntries int) *MemoryStore {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 500
	}
	return &MemoryStore{
		cache:      gocache.New(defaultTTL, 2*defaultTTL),
		maxEntries: maxEntries,
		inserted:   make(map[string]time.Time),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	data, ok := v.([]byte)
	return data, ok
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cache.Get(key); !exists && s.cache.ItemCount() >= s.maxEntries {
		s.evictOldestLocked()
	}

	s.cache.Set(key, value, ttl)
	s.inserted[key] = time.Now()
}

func (s *MemoryStore) Delete(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(key)
	delete(s.inserted, key)
}

func (s *MemoryStore) Flush(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Flush()
	s.inserted = make(map[string]time.Time)
}

// evictOldestLocked drops the entry with the earliest insertion time.
// Entries go-cache already expired are cleaned out of the book-keeping
// map along the way.
func (s *MemoryStore) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time

	for key, at := range s.inserted {
		if _, alive := s.cache.Get(key); !alive {
			delete(s.inserted, key)
			continue
		}
		if oldestKey == "" || at.Before(oldestAt) {
			oldestKey = key
			oldestAt = at
		}
	}

	if oldestKey != "" {
		s.cache.Delete(oldestKey)
		delete(s.inserted, oldestKey)
	}
}
