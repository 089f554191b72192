package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeCache struct {
	data   map[string]string
	getErr error
	sets   int
}

func (f *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.sets++
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

// Scan returns every match on the first page and an empty last page, so
// callers must follow the cursor.
func (f *fakeCache) Scan(_ context.Context, cursor uint64, match string, _ int64) *redis.ScanCmd {
	if cursor != 0 {
		return redis.NewScanCmdResult(nil, 0, nil)
	}
	prefix := strings.TrimSuffix(match, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return redis.NewScanCmdResult(keys, 1, nil)
}

func (f *fakeCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type countingStore struct {
	Store
	films []Film
	calls int
}

func (s *countingStore) Films(_ context.Context, f Filter) ([]Film, error) {
	s.calls++
	var out []Film
	for _, film := range s.films {
		if f.Matches(film) {
			out = append(out, film)
		}
	}
	return out, nil
}

func (s *countingStore) Film(_ context.Context, id string) (Film, error) {
	s.calls++
	for _, f := range s.films {
		if f.UUID == id {
			return f, nil
		}
	}
	return Film{}, ErrNotFound
}

func TestCachedStoreReadThrough(t *testing.T) {
	next := &countingStore{films: []Film{{UUID: "1", Name: "A", Type: TypeComedy}, {UUID: "2", Name: "B", Type: TypeAction}}}
	cache := &fakeCache{data: map[string]string{}}
	s := NewCachedStore(next, cache, time.Minute, "t")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := s.Films(ctx, Filter{Type: TypeComedy})
		if err != nil || len(got) != 1 || got[0].UUID != "1" {
			t.Fatalf("films = %+v, %v", got, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("store calls = %d, want 1", next.calls)
	}
	if _, ok := cache.data["t:films:comedy"]; !ok {
		t.Fatalf("cache keys = %v", cache.data)
	}
}

func TestCachedStoreSkipsNotFound(t *testing.T) {
	next := &countingStore{}
	cache := &fakeCache{data: map[string]string{}}
	s := NewCachedStore(next, cache, time.Minute, "t")

	if _, err := s.Film(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if cache.sets != 0 {
		t.Fatal("not-found results must not be cached")
	}
}

func TestCachedStoreFallsBackOnCacheError(t *testing.T) {
	next := &countingStore{films: []Film{{UUID: "1"}}}
	cache := &fakeCache{data: map[string]string{}, getErr: errors.New("connection refused")}
	s := NewCachedStore(next, cache, time.Minute, "t")

	got, err := s.Film(context.Background(), "1")
	if err != nil || got.UUID != "1" {
		t.Fatalf("film = %+v, %v", got, err)
	}
}

func TestCachedStorePurgeDropsOnlyPrefixedKeys(t *testing.T) {
	cache := &fakeCache{data: map[string]string{"other:films:*": "[]"}}
	store := &countingStore{films: []Film{{UUID: "f1", Name: "Heat", Type: TypeAction}}}
	cached := NewCachedStore(store, cache, time.Minute, "kb")
	ctx := context.Background()

	if _, err := cached.Films(ctx, Filter{}); err != nil {
		t.Fatalf("films: %v", err)
	}
	if _, err := cached.Film(ctx, "f1"); err != nil {
		t.Fatalf("film: %v", err)
	}
	removed, err := cached.Purge(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if _, ok := cache.data["other:films:*"]; !ok || len(cache.data) != 1 {
		t.Fatalf("cache after purge = %v", cache.data)
	}

	store.films[0].Name = "Heat (1995)"
	f, err := cached.Film(ctx, "f1")
	if err != nil || f.Name != "Heat (1995)" {
		t.Fatalf("film after purge = %+v err=%v", f, err)
	}
}
