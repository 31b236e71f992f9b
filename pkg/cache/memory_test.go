package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	if err := mc.Set(ctx, "q:YPF", quote{Symbol: "YPF", Price: 31.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got quote
	if err := mc.Get(ctx, "q:YPF", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Symbol != "YPF" || got.Price != 31.5 {
		t.Fatalf("unexpected value %+v", got)
	}

	var s string
	_ = mc.Set(ctx, "raw", "hello", time.Minute)
	if err := mc.Get(ctx, "raw", &s); err != nil || s != "hello" {
		t.Fatalf("string round trip failed: %q %v", s, err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	_ = mc.Set(ctx, "k", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	var v int
	if err := mc.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after expiry, got %v", err)
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	_ = mc.Set(ctx, "a", 1, time.Minute)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", 2, time.Minute)
	time.Sleep(time.Millisecond)
	var v int
	_ = mc.Get(ctx, "a", &v)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", 3, time.Minute)

	if err := mc.Get(ctx, "b", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b to be evicted")
	}
	if mc.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", mc.Len())
	}
}

func TestMemoryCacheLock(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	ok, _ := mc.TryLock(ctx, "lock", time.Minute)
	if !ok {
		t.Fatalf("first lock should succeed")
	}
	if ok, _ := mc.TryLock(ctx, "lock", time.Minute); ok {
		t.Fatalf("second lock should fail")
	}
	_ = mc.Unlock(ctx, "lock")
	if ok, _ := mc.TryLock(ctx, "lock", time.Minute); !ok {
		t.Fatalf("lock after unlock should succeed")
	}
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	calls := 0
	load := func(context.Context) ([]quote, error) {
		calls++
		return []quote{{Symbol: "GGAL", Price: 40}}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := GetOrLoad(ctx, mc, "quotes", time.Minute, load)
		if err != nil || len(got) != 1 || got[0].Symbol != "GGAL" {
			t.Fatalf("unexpected result %v %v", got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single load, got %d", calls)
	}

	boom := errors.New("upstream down")
	_, err := GetOrLoad(ctx, mc, "failing", time.Minute, func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	var v int
	if err := mc.Get(ctx, "failing", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("errors must not be cached")
	}

	n, err := GetOrLoad(ctx, nil, "nocache", time.Minute, func(context.Context) (int, error) { return 7, nil })
	if err != nil || n != 7 {
		t.Fatalf("nil cache should pass through, got %v %v", n, err)
	}
}
