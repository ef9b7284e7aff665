package feedcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/foodmap/internal/db"
	"github.com/kailas-cloud/foodmap/internal/domain"
)

func TestFetch_CacheMiss(t *testing.T) {
	inner := &mockSource{name: "https://example.com/food.csv", data: []byte("a,b\n1,2\n")}
	cs, ms := newTestCachedSource(t, inner)

	var (
		setKey string
		setTTL time.Duration
		setVal []byte
	)
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		setKey, setVal, setTTL = key, value, ttl
		return nil
	}

	data, err := cs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Fatalf("unexpected data: %q", data)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 upstream fetch, got %d", inner.calls)
	}
	if setKey != CacheKey(inner.name) {
		t.Errorf("stored under %q, want %q", setKey, CacheKey(inner.name))
	}
	if string(setVal) != string(data) {
		t.Error("stored value differs from upstream data")
	}
	if setTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", setTTL)
	}
}

func TestFetch_CacheHit(t *testing.T) {
	inner := &mockSource{name: "s3://bucket/food.csv", data: []byte("upstream")}
	cs, ms := newTestCachedSource(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("cached"), nil
	}
	ms.ttlFn = func(_ context.Context, _ string) (time.Duration, error) {
		return 30 * time.Minute, nil
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Fatal("SET must not be called on hit")
		return nil
	}

	data, err := cs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "cached" {
		t.Fatalf("expected cached bytes, got %q", data)
	}
	if inner.calls != 0 {
		t.Fatalf("hit must not fetch upstream, got %d calls", inner.calls)
	}
}

func TestFetch_EmptyCachedValueIsMiss(t *testing.T) {
	inner := &mockSource{name: "n", data: []byte("upstream")}
	cs, ms := newTestCachedSource(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return []byte{}, nil }

	data, err := cs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "upstream" || inner.calls != 1 {
		t.Fatalf("expected upstream read, got %q (calls=%d)", data, inner.calls)
	}
}

func TestFetch_StoreFailuresAreNotFatal(t *testing.T) {
	inner := &mockSource{name: "n", data: []byte("upstream")}
	cs, ms := newTestCachedSource(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("connection refused")
	}

	data, err := cs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("cache failure must not surface: %v", err)
	}
	if string(data) != "upstream" {
		t.Fatalf("unexpected data: %q", data)
	}
}

func TestFetch_InnerError(t *testing.T) {
	inner := &mockSource{name: "n", err: domain.ErrDatasetUnavailable}
	cs, ms := newTestCachedSource(t, inner)
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		t.Fatal("SET must not be called when upstream fails")
		return nil
	}

	_, err := cs.Fetch(context.Background())
	if !errors.Is(err, domain.ErrDatasetUnavailable) {
		t.Fatalf("expected ErrDatasetUnavailable, got %v", err)
	}
}

func TestFetch_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_dataset_cache_total"}, []string{"result"})
	inner := &mockSource{name: "n", data: []byte("upstream")}

	stored := map[string][]byte{}
	ms := &mockKVStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if v, ok := stored[key]; ok {
				return v, nil
			}
			return nil, db.ErrKeyNotFound
		},
		setFn: func(_ context.Context, key string, value []byte, _ time.Duration) error {
			stored[key] = value
			return nil
		},
	}
	cs := New(inner, ms, 0, counter, zap.NewNop())

	for range 3 {
		if _, err := cs.Fetch(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 2 {
		t.Errorf("hit = %v, want 2", got)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", inner.calls)
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://example.com/a.csv")
	b := CacheKey("https://example.com/b.csv")
	if a == b {
		t.Fatal("different names must produce different keys")
	}
	if !strings.HasPrefix(a, "foodmap:dataset:") {
		t.Errorf("unexpected prefix: %q", a)
	}
	if len(a) != len("foodmap:dataset:")+64 {
		t.Errorf("expected hex sha256 suffix, got %q", a)
	}
	if CacheKey("x") != CacheKey("x") {
		t.Error("key must be deterministic")
	}
}

func TestName_DelegatesToInner(t *testing.T) {
	cs, _ := newTestCachedSource(t, &mockSource{name: "s3://b/k"})
	if cs.Name() != "s3://b/k" {
		t.Errorf("Name() = %q", cs.Name())
	}
}

func memoryStore() *mockKVStore {
	stored := map[string][]byte{}
	return &mockKVStore{
		getFn: func(_ context.Context, key string) ([]byte, error) {
			if v, ok := stored[key]; ok {
				return v, nil
			}
			return nil, db.ErrKeyNotFound
		},
		setFn: func(_ context.Context, key string, value []byte, _ time.Duration) error {
			stored[key] = value
			return nil
		},
	}
}

func rejectHTML(data []byte) error {
	if strings.HasPrefix(string(data), "<html>") {
		return errors.New("not a dataset")
	}
	return nil
}

func TestFetch_InvalidUpstreamIsNotCached(t *testing.T) {
	inner := &mockSource{name: "n", data: []byte("<html>502 Bad Gateway</html>")}
	ms := memoryStore()
	cs := New(inner, ms, time.Hour, nil, zap.NewNop()).WithValidator(rejectHTML)

	data, err := cs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "<html>502 Bad Gateway</html>" {
		t.Fatalf("invalid bytes must still reach the caller, got %q", data)
	}

	// Upstream recovers; the next start must see the fixed dataset.
	inner.data = []byte("latitudes,longitudes\n")
	data, err = cs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "latitudes,longitudes\n" {
		t.Fatalf("expected recovered upstream data, got %q", data)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 upstream fetches, got %d", inner.calls)
	}

	// The good copy is cached now.
	if _, err := cs.Fetch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("valid data should be served from cache, got %d upstream fetches", inner.calls)
	}
}

func TestFetch_InvalidCachedCopyIsRefetched(t *testing.T) {
	inner := &mockSource{name: "n", data: []byte("good")}
	ms := memoryStore()
	if err := ms.SetWithTTL(context.Background(), CacheKey("n"), []byte("<html>old</html>"), time.Hour); err != nil {
		t.Fatal(err)
	}
	cs := New(inner, ms, time.Hour, nil, zap.NewNop()).WithValidator(rejectHTML)

	data, err := cs.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "good" || inner.calls != 1 {
		t.Fatalf("expected upstream read, got %q (calls=%d)", data, inner.calls)
	}

	cached, err := ms.Get(context.Background(), CacheKey("n"))
	if err != nil || string(cached) != "good" {
		t.Errorf("bad cached copy must be overwritten, got %q (%v)", cached, err)
	}
}
