package driver

import (
	"context"
	"crypto/sha256"
	"testing"

	"borrowck/internal/borrow"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := CacheKey(sha256.Sum256([]byte("bind x")), borrow.Options{})

	var out DiskPayload
	if hit, err := cache.Get(key, &out); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	v := &borrow.Violation{Kind: borrow.UseAfterMove, Index: 1, Message: "m", Related: 0, RelatedNote: "value moved here"}
	if err := cache.Put(key, payloadFor("a.own", Digest{}, 2, v)); err != nil {
		t.Fatal(err)
	}
	if hit, err := cache.Get(key, &out); err != nil || !hit {
		t.Fatalf("expected hit: hit=%v err=%v", hit, err)
	}
	got, ok := out.violation([]borrow.Event{borrow.Bind("x", false), borrow.Read("x")})
	if !ok || got.Kind != borrow.UseAfterMove || got.Event != borrow.Read("x") {
		t.Fatalf("rebuilt violation = %+v ok=%v", got, ok)
	}
	if _, ok := out.violation([]borrow.Event{borrow.Bind("x", false)}); ok {
		t.Fatal("payload must not fit a different event count")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if hit, _ := cache.Get(key, &out); hit {
		t.Fatal("expected miss after DropAll")
	}
}

func TestCacheKeyDependsOnRules(t *testing.T) {
	content := sha256.Sum256([]byte("bind x"))
	if CacheKey(content, borrow.Options{}) == CacheKey(content, borrow.StrictOptions()) {
		t.Fatal("strict and base verdicts must not share a key")
	}
}

func TestCheckUsesCache(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := []byte("bind mut v\nborrow mut v as a\nborrow v as b\n")
	opts := Options{Cache: cache}

	first := CheckSource(context.Background(), "c.own", src, opts)
	if first.Cached || first.Violation == nil {
		t.Fatalf("first run: cached=%v violation=%v", first.Cached, first.Violation)
	}
	second := CheckSource(context.Background(), "c.own", src, opts)
	if !second.Cached {
		t.Fatal("second run must come from cache")
	}
	if second.Violation.Kind != borrow.ConflictingBorrow || second.Violation.Related != first.Violation.Related {
		t.Fatalf("cached verdict differs: %+v vs %+v", second.Violation, first.Violation)
	}
	if len(second.Bag.Items()) != 1 || len(second.Bag.Items()[0].Notes) != 1 {
		t.Fatalf("cached diagnostics incomplete: %+v", second.Bag.Items())
	}

	logged := CheckSource(context.Background(), "c.own", src, Options{Cache: cache, KeepLog: true})
	if logged.Cached || len(logged.Log) == 0 {
		t.Fatal("KeepLog must bypass the cache")
	}
}
