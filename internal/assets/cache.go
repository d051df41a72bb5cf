// Package assets owns asset loading: a bounded LRU cache over decoded
// resources and a concurrency-limited batch scheduler on top of it.
package assets

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oliver-os/canvas/internal/logging"
	"github.com/oliver-os/canvas/pkg/domain"
	"github.com/oliver-os/canvas/pkg/ports"
)

// LoadState is the lifecycle state of a cached path.
type LoadState string

const (
	StateLoading LoadState = "loading"
	StateLoaded  LoadState = "loaded"
	StateFailed  LoadState = "failed"
)

// DefaultCapacity bounds the number of loaded resources kept in memory.
const DefaultCapacity = 50

// Record is a point-in-time view of one cache entry.
type Record struct {
	Path     string
	State    LoadState
	Resource ports.Resource
	Err      error
}

// Hooks receives load outcomes. Callbacks run outside the cache lock.
type Hooks struct {
	OnLoaded func(path string, res ports.Resource)
	OnFailed func(path string, err error)
}

type entry struct {
	path  string
	state LoadState
	res   ports.Resource
	err   error

	// done is closed once the load settles (loaded or failed). Waiters
	// read res/err only after done is closed.
	done chan struct{}

	// elem is the recency list element; non-nil only while loaded.
	elem *list.Element
}

// Cache is a bounded path-to-resource cache with strict LRU eviction over
// loaded entries. Entries that are still loading or have failed are never
// evicted. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	fetcher  ports.AssetFetcher
	capacity int
	entries  map[string]*entry
	recency  *list.List // front = most recently used, loaded entries only
	loaded   int
	hooks    Hooks
	logger   *slog.Logger
}

// CacheOption configures the Cache.
type CacheOption func(*Cache)

// WithCapacity overrides the default loaded-entry bound.
func WithCapacity(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithHooks registers load outcome callbacks.
func WithHooks(h Hooks) CacheOption {
	return func(c *Cache) {
		c.hooks = h
	}
}

// WithLogger configures a logger for the cache.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates a cache that loads through the given fetcher.
func NewCache(fetcher ports.AssetFetcher, opts ...CacheOption) *Cache {
	c := &Cache{
		fetcher:  fetcher,
		capacity: DefaultCapacity,
		entries:  make(map[string]*entry),
		recency:  list.New(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current record for a path, or absent.
// It is a pure query and does not refresh recency.
func (c *Cache) Get(path string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok {
		return Record{}, false
	}
	return Record{Path: e.path, State: e.state, Resource: e.res, Err: e.err}, true
}

// BeginLoad resolves a path into a resource.
//
// A loaded path resolves immediately and refreshes its recency. A path
// already loading joins the in-flight load: the underlying fetch is issued
// exactly once and all callers observe the same resolution. A failed path
// returns its recorded error without refetching; use Retry to re-open it.
func (c *Cache) BeginLoad(ctx context.Context, path string) (ports.Resource, error) {
	c.mu.Lock()

	if e, ok := c.entries[path]; ok {
		switch e.state {
		case StateLoaded:
			c.recency.MoveToFront(e.elem)
			res := e.res
			c.mu.Unlock()
			return res, nil
		case StateFailed:
			err := e.err
			c.mu.Unlock()
			return nil, err
		default: // loading: join the in-flight load
			done := e.done
			c.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-done:
				return e.res, e.err
			}
		}
	}

	e := &entry{path: path, state: StateLoading, done: make(chan struct{})}
	c.entries[path] = e
	c.mu.Unlock()

	res, err := c.fetcher.Fetch(ctx, path)
	if err != nil {
		c.settleFailed(e, err)
		return nil, e.err
	}
	c.settleLoaded(e, res)
	return res, nil
}

// Retry clears a failed record and re-invokes BeginLoad. Paths that are
// not in the failed state load normally.
func (c *Cache) Retry(ctx context.Context, path string) (ports.Resource, error) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok && e.state == StateFailed {
		delete(c.entries, path)
	}
	c.mu.Unlock()
	return c.BeginLoad(ctx, path)
}

// Loaded returns the number of loaded entries.
func (c *Cache) Loaded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Failed returns the paths currently in the failed state.
func (c *Cache) Failed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var failed []string
	for path, e := range c.entries {
		if e.state == StateFailed {
			failed = append(failed, path)
		}
	}
	return failed
}

// Len returns the total number of tracked entries in any state.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) settleLoaded(e *entry, res ports.Resource) {
	var evicted []string

	c.mu.Lock()
	e.state = StateLoaded
	e.res = res
	e.elem = c.recency.PushFront(e)
	c.loaded++

	// Strict LRU over loaded entries only: the recency list contains
	// nothing else, so the back element is always evictable.
	for c.loaded > c.capacity {
		back := c.recency.Back()
		if back == nil {
			break
		}
		victim := back.Value.(*entry)
		c.recency.Remove(back)
		delete(c.entries, victim.path)
		c.loaded--
		evicted = append(evicted, victim.path)
	}
	close(e.done)
	c.mu.Unlock()

	for _, path := range evicted {
		c.logger.Debug("evicted asset", "path", path)
	}
	if c.hooks.OnLoaded != nil {
		c.hooks.OnLoaded(e.path, res)
	}
}

func (c *Cache) settleFailed(e *entry, cause error) {
	c.mu.Lock()
	e.state = StateFailed
	e.err = fmt.Errorf("%w: %s: %v", domain.ErrAssetLoadFailed, e.path, cause)
	close(e.done)
	c.mu.Unlock()

	c.logger.Warn("asset load failed", "path", e.path, "err", cause)
	if c.hooks.OnFailed != nil {
		c.hooks.OnFailed(e.path, cause)
	}
}
