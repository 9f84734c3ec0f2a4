package cache

import (
	"context"
	"testing"
	"time"

	"SpendScout/internal/domain"
)

func TestMemoryCacheSetAndGet(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	ctx := context.Background()
	value := []domain.DealMessage{{Text: "deal one"}, {Text: "deal two"}}

	c.Set(ctx, "key-1", value, time.Minute)

	got, ok := c.Get(ctx, "key-1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 || got[0].Text != "deal one" {
		t.Fatalf("unexpected cached value: %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()

	if _, ok := c.Get(context.Background(), "absent"); ok {
		t.Fatal("expected cache miss")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "short", []domain.DealMessage{{Text: "gone soon"}}, time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	if _, ok := c.Get(ctx, "short"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Size() != 1 {
		t.Fatalf("expired entry should still count until sweep, got %d", c.Size())
	}
}

func TestMemoryCacheEmptyResultIsCacheable(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "empty", []domain.DealMessage{}, time.Minute)

	got, ok := c.Get(ctx, "empty")
	if !ok {
		t.Fatal("expected hit for cached empty result")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}
