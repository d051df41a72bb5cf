package assets_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/oliver-os/canvas/internal/assets"
	"github.com/oliver-os/canvas/pkg/domain"
	"github.com/oliver-os/canvas/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResource is a minimal decoded asset for tests.
type fakeResource struct {
	path string
	size int
}

func (r fakeResource) Path() string { return r.path }
func (r fakeResource) Size() int    { return r.size }

// fakeFetcher counts fetches per path and can fail or block on demand.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	failing map[string]error

	// gate, when set, is closed by the test to release blocked fetches.
	gate chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: map[string]int{}, failing: map[string]error{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, path string) (ports.Resource, error) {
	f.mu.Lock()
	f.calls[path]++
	gate := f.gate
	err := f.failing[path]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return fakeResource{path: path, size: 1024}, nil
}

func (f *fakeFetcher) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func TestCache_LoadAndGet(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := assets.NewCache(fetcher)
	ctx := context.Background()

	res, err := cache.BeginLoad(ctx, "bg.png")
	require.NoError(t, err)
	assert.Equal(t, "bg.png", res.Path())

	rec, ok := cache.Get("bg.png")
	require.True(t, ok)
	assert.Equal(t, assets.StateLoaded, rec.State)
	assert.Equal(t, 1, cache.Loaded())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := assets.NewCache(fetcher, assets.WithCapacity(2))
	ctx := context.Background()

	_, err := cache.BeginLoad(ctx, "a")
	require.NoError(t, err)
	_, err = cache.BeginLoad(ctx, "b")
	require.NoError(t, err)
	_, err = cache.BeginLoad(ctx, "c")
	require.NoError(t, err)

	// a was least recently used and must be gone; b and c remain.
	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.True(t, ok)
	_, ok = cache.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Loaded())
}

func TestCache_AccessRefreshesRecency(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := assets.NewCache(fetcher, assets.WithCapacity(2))
	ctx := context.Background()

	_, _ = cache.BeginLoad(ctx, "a")
	_, _ = cache.BeginLoad(ctx, "b")

	// Touch a so that b becomes the LRU entry.
	_, err := cache.BeginLoad(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.callCount("a"), "cached hit must not refetch")

	_, _ = cache.BeginLoad(ctx, "c")

	_, ok := cache.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = cache.Get("a")
	assert.True(t, ok)
}

func TestCache_DeduplicatesConcurrentLoads(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.gate = make(chan struct{})
	cache := assets.NewCache(fetcher)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	var okCount atomic.Int32
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := cache.BeginLoad(ctx, "shared.png")
			if assert.NoError(t, err) && assert.Equal(t, "shared.png", res.Path()) {
				okCount.Add(1)
			}
		}()
	}

	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, int32(callers), okCount.Load())
	assert.Equal(t, 1, fetcher.callCount("shared.png"), "fetch must be issued exactly once")
}

func TestCache_FailureIsRecordedAndRetryable(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failing["broken.png"] = fmt.Errorf("decode error")
	cache := assets.NewCache(fetcher)
	ctx := context.Background()

	_, err := cache.BeginLoad(ctx, "broken.png")
	assert.ErrorIs(t, err, domain.ErrAssetLoadFailed)

	rec, ok := cache.Get("broken.png")
	require.True(t, ok)
	assert.Equal(t, assets.StateFailed, rec.State)
	assert.Equal(t, []string{"broken.png"}, cache.Failed())

	// A second BeginLoad returns the recorded failure without refetching.
	_, err = cache.BeginLoad(ctx, "broken.png")
	assert.ErrorIs(t, err, domain.ErrAssetLoadFailed)
	assert.Equal(t, 1, fetcher.callCount("broken.png"))

	// Retry clears the record and refetches.
	fetcher.mu.Lock()
	delete(fetcher.failing, "broken.png")
	fetcher.mu.Unlock()

	res, err := cache.Retry(ctx, "broken.png")
	require.NoError(t, err)
	assert.Equal(t, "broken.png", res.Path())
	assert.Empty(t, cache.Failed())
}

func TestCache_FailedEntriesAreNeverEvicted(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failing["bad"] = fmt.Errorf("boom")
	cache := assets.NewCache(fetcher, assets.WithCapacity(1))
	ctx := context.Background()

	_, _ = cache.BeginLoad(ctx, "bad")
	_, _ = cache.BeginLoad(ctx, "x")
	_, _ = cache.BeginLoad(ctx, "y")

	// x was evicted by y, but the failed record survives eviction.
	rec, ok := cache.Get("bad")
	require.True(t, ok)
	assert.Equal(t, assets.StateFailed, rec.State)
	_, ok = cache.Get("x")
	assert.False(t, ok)
}

func TestCache_BoundHoldsAfterEverySettledLoad(t *testing.T) {
	fetcher := newFakeFetcher()
	cache := assets.NewCache(fetcher, assets.WithCapacity(3))
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := cache.BeginLoad(ctx, fmt.Sprintf("asset-%d", i))
		require.NoError(t, err)
		assert.LessOrEqual(t, cache.Loaded(), 3)
	}
}

func TestCache_HooksFireOutsideLock(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failing["bad"] = fmt.Errorf("boom")

	var loaded, failed []string
	var cache *assets.Cache
	cache = assets.NewCache(fetcher, assets.WithHooks(assets.Hooks{
		OnLoaded: func(path string, res ports.Resource) {
			// Re-entrancy: a hook may query the cache.
			_, _ = cache.Get(path)
			loaded = append(loaded, path)
		},
		OnFailed: func(path string, err error) {
			failed = append(failed, path)
		},
	}))
	ctx := context.Background()

	_, _ = cache.BeginLoad(ctx, "ok")
	_, _ = cache.BeginLoad(ctx, "bad")

	assert.Equal(t, []string{"ok"}, loaded)
	assert.Equal(t, []string{"bad"}, failed)
}
