package translate

import (
	"context"
	"testing"
)

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey("ja", "zh", "こんにちは")
	b := CacheKey("ja", "zh", "こんにちは")
	if a != b {
		t.Fatal("cache key must be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
	if CacheKey("ja", "en", "こんにちは") == a {
		t.Error("destination language must change the key")
	}
	if CacheKey("ja", "zh", "こんばんは") == a {
		t.Error("text must change the key")
	}
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	if _, ok := cache.Get(ctx, "ja", "zh", "こんにちは"); ok {
		t.Fatal("empty cache must miss")
	}
	cache.Put(ctx, "ja", "zh", "こんにちは", "你好")
	got, ok := cache.Get(ctx, "ja", "zh", "こんにちは")
	if !ok || got != "你好" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	// Upsert replaces.
	cache.Put(ctx, "ja", "zh", "こんにちは", "您好")
	if got, _ := cache.Get(ctx, "ja", "zh", "こんにちは"); got != "您好" {
		t.Errorf("upsert not applied: %q", got)
	}
}

func TestSQLiteCacheStatsAndClear(t *testing.T) {
	cache, err := OpenCache(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	ctx := context.Background()
	cache.Put(ctx, "ja", "zh", "a", "甲")
	cache.Put(ctx, "ja", "zh", "b", "乙")
	cache.Put(ctx, "ja", "en", "a", "alpha")

	perLang, total, err := cache.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if total != 3 || perLang["zh"] != 2 || perLang["en"] != 1 {
		t.Errorf("stats = %v total %d", perLang, total)
	}

	removed, err := cache.Clear(ctx)
	if err != nil || removed != 3 {
		t.Fatalf("Clear = %d, %v", removed, err)
	}
	if _, total, _ := cache.Stats(ctx); total != 0 {
		t.Errorf("cache not empty after clear: %d", total)
	}
}

func TestSQLiteCacheDisablesAfterBackendError(t *testing.T) {
	cache, err := OpenCache(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	cache.Put(ctx, "ja", "zh", "a", "甲")

	// Kill the backend out from under the cache.
	if err := cache.db.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Get(ctx, "ja", "zh", "a"); ok {
		t.Fatal("closed backend must miss")
	}
	if !cache.failed {
		t.Fatal("first backend error must flip the cache to no-op")
	}
	// Subsequent calls are silent no-ops.
	cache.Put(ctx, "ja", "zh", "b", "乙")
	if _, ok := cache.Get(ctx, "ja", "zh", "a"); ok {
		t.Fatal("disabled cache must always miss")
	}
}
