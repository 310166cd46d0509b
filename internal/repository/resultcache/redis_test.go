package resultcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRedis_SetGet(t *testing.T) {
	r, kv, _ := newTestRedis(t)
	const key = "GET /api/reports?page=1"

	if _, ok, err := fetch(r, docs, key); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := put(t, r, docs, key, `{"data":[]}`, 10*time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	v, ok, err := fetch(r, docs, key)
	if err != nil || !ok || v != `{"data":[]}` {
		t.Fatalf("get = %q %v %v", v, ok, err)
	}

	var entryKeys []string
	for k := range kv.data {
		entryKeys = append(entryKeys, k)
	}
	if len(entryKeys) != 1 || !strings.HasPrefix(entryKeys[0], "reportdex:cache:documents:0:") {
		t.Errorf("keys = %v", entryKeys)
	}
	if kv.ttls[entryKeys[0]] != 10*time.Minute {
		t.Errorf("ttl = %v", kv.ttls[entryKeys[0]])
	}
}

func TestRedis_InvalidateBumpsGeneration(t *testing.T) {
	r, kv, _ := newTestRedis(t)
	ctx := context.Background()
	_ = put(t, r, docs, "k", "old", time.Hour)
	_ = put(t, r, facets, "k", "facets", time.Hour)

	if err := r.Invalidate(ctx, docs); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if string(kv.data["reportdex:cache:gen:documents"]) != "1" {
		t.Errorf("generation = %q", kv.data["reportdex:cache:gen:documents"])
	}
	if _, ok, _ := fetch(r, docs, "k"); ok {
		t.Error("invalidated topic must miss")
	}
	if _, ok, _ := fetch(r, facets, "k"); !ok {
		t.Error("other topic must still hit")
	}

	_ = put(t, r, docs, "k", "new", time.Hour)
	if v, ok, _ := fetch(r, docs, "k"); !ok || v != "new" {
		t.Errorf("after rewrite = %q %v", v, ok)
	}
}

func TestRedis_SupersededGenerationUnreachable(t *testing.T) {
	r, _, _ := newTestRedis(t)
	ctx := context.Background()

	look, err := r.Get(ctx, docs, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := r.Invalidate(ctx, docs); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := r.Set(ctx, docs, "k", []byte("pre-update"), time.Hour, look.Generation); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := fetch(r, docs, "k"); ok {
		t.Error("value computed before the invalidation must not be served")
	}
}

func TestRedis_WindowElapsed(t *testing.T) {
	r, _, clock := newTestRedis(t)
	_ = put(t, r, docs, "k", "v", time.Minute)

	clock.Advance(time.Minute)
	if _, ok, _ := fetch(r, docs, "k"); ok {
		t.Error("entry past its window must miss even if the key has not expired yet")
	}
}

func TestRedis_SubSecondWindowSkipped(t *testing.T) {
	r, kv, _ := newTestRedis(t)
	if err := r.Set(context.Background(), docs, "k", []byte("v"), 500*time.Millisecond, Generation{}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(kv.data) != 0 {
		t.Error("sub-second window must not be written")
	}
}

func TestRedis_StoreErrors(t *testing.T) {
	r, kv, _ := newTestRedis(t)
	ctx := context.Background()
	boom := errors.New("connection reset")

	kv.getErr = boom
	if _, err := r.Get(ctx, docs, "k"); !errors.Is(err, boom) {
		t.Errorf("get error = %v", err)
	}

	kv.getErr = nil
	kv.setErr = boom
	if err := r.Set(ctx, docs, "k", []byte("v"), time.Minute, Generation{}); !errors.Is(err, boom) {
		t.Errorf("set error = %v", err)
	}

	kv.incErr = boom
	if err := r.Invalidate(ctx, docs); !errors.Is(err, boom) {
		t.Errorf("invalidate error = %v", err)
	}
}

func TestRedis_CorruptEntry(t *testing.T) {
	r, kv, _ := newTestRedis(t)
	kv.data[entryKey(docs, 0, "k")] = []byte("not json")

	if _, err := r.Get(context.Background(), docs, "k"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRedis_CorruptGeneration(t *testing.T) {
	r, kv, _ := newTestRedis(t)
	kv.data[generationKey(docs)] = []byte("x")

	if _, err := r.Get(context.Background(), docs, "k"); err == nil {
		t.Fatal("expected generation parse error")
	}
}

func TestEntryKey_HashesRequest(t *testing.T) {
	a := entryKey(docs, 3, "GET /api/reports?page=1")
	b := entryKey(docs, 3, "GET /api/reports?page=2")
	if a == b {
		t.Error("different requests must map to different keys")
	}
	if !strings.HasPrefix(a, "reportdex:cache:documents:3:") || len(a) != len("reportdex:cache:documents:3:")+64 {
		t.Errorf("key = %q", a)
	}
}
