package ragcache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 10)

	s.Set(ctx, "k1", []byte("v1"), time.Minute)
	got, ok := s.Get(ctx, "k1")
	if !ok || string(got) != "v1" {
		t.Errorf("Get() = %q, %v; want v1, true", got, ok)
	}

	if _, ok := s.Get(ctx, "missing"); ok {
		t.Errorf("expected miss for unknown key")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 10)

	s.Set(ctx, "short", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, ok := s.Get(ctx, "short"); ok {
		t.Errorf("expected entry to expire")
	}
}

func TestMemoryStore_CapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 2)

	s.Set(ctx, "first", []byte("1"), time.Minute)
	time.Sleep(5 * time.Millisecond)
	s.Set(ctx, "second", []byte("2"), time.Minute)
	time.Sleep(5 * time.Millisecond)
	s.Set(ctx, "third", []byte("3"), time.Minute)

	if _, ok := s.Get(ctx, "first"); ok {
		t.Errorf("expected oldest entry to be evicted")
	}
	if _, ok := s.Get(ctx, "second"); !ok {
		t.Errorf("expected second entry to survive")
	}
	if _, ok := s.Get(ctx, "third"); !ok {
		t.Errorf("expected newest entry to survive")
	}
}

func TestMemoryStore_OverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 2)

	s.Set(ctx, "a", []byte("1"), time.Minute)
	s.Set(ctx, "b", []byte("2"), time.Minute)
	s.Set(ctx, "a", []byte("updated"), time.Minute)

	got, ok := s.Get(ctx, "a")
	if !ok || string(got) != "updated" {
		t.Errorf("Get(a) = %q, %v; want updated, true", got, ok)
	}
	if _, ok := s.Get(ctx, "b"); !ok {
		t.Errorf("overwriting an existing key must not evict others")
	}
}

func TestMemoryStore_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute, 10)

	s.Set(ctx, "a", []byte("1"), time.Minute)
	s.Delete(ctx, "a")
	if _, ok := s.Get(ctx, "a"); ok {
		t.Errorf("expected deleted key to miss")
	}

	s.Set(ctx, "b", []byte("2"), time.Minute)
	s.Flush(ctx)
	if _, ok := s.Get(ctx, "b"); ok {
		t.Errorf("expected flush to clear everything")
	}
}
