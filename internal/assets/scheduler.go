package assets

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/oliver-os/canvas/internal/logging"
	"github.com/oliver-os/canvas/pkg/domain"
	"github.com/oliver-os/canvas/pkg/ports"
)

// DefaultConcurrency bounds in-flight loads per batch chunk.
const DefaultConcurrency = 5

// DefaultCriticalCount is how many objects PreloadCritical covers.
const DefaultCriticalCount = 3

// Scheduler runs batched loads through the cache with bounded concurrency.
// Batches are partitioned into sequential chunks; a chunk must fully settle
// (every load succeeded or failed) before the next chunk starts.
type Scheduler struct {
	cache       *Cache
	concurrency int
	logger      *slog.Logger

	mu    sync.Mutex
	known map[string]bool // scheduled paths; true once a load has settled loaded
}

// SchedulerOption configures the Scheduler.
type SchedulerOption func(*Scheduler)

// WithConcurrency overrides the per-chunk load bound.
func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSchedulerLogger configures a logger for the scheduler.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a scheduler over the given cache.
func NewScheduler(cache *Cache, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		cache:       cache,
		concurrency: DefaultConcurrency,
		logger:      logging.NewNop(),
		known:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadAll loads every path, at most `concurrency` in flight at a time.
// Individual failures never abort the batch: the failed count is returned
// and each failure stays visible through the cache's failed set. The only
// error returned is context cancellation.
func (s *Scheduler) LoadAll(ctx context.Context, paths []string) (failed int, err error) {
	paths = s.track(paths)

	for start := 0; start < len(paths); start += s.concurrency {
		if err := ctx.Err(); err != nil {
			return failed, err
		}

		end := min(start+s.concurrency, len(paths))
		chunk := paths[start:end]

		results := make([]error, len(chunk))
		g, gctx := errgroup.WithContext(ctx)
		for i, path := range chunk {
			i, path := i, path
			g.Go(func() error {
				_, loadErr := s.cache.BeginLoad(gctx, path)
				results[i] = loadErr
				return nil // collect failures instead of failing the group
			})
		}
		_ = g.Wait()

		s.mu.Lock()
		for i, loadErr := range results {
			if loadErr != nil {
				failed++
				s.logger.Warn("asset load failed in batch", "path", chunk[i], "err", loadErr)
				continue
			}
			s.known[chunk[i]] = true
		}
		s.mu.Unlock()
	}

	if failed > 0 {
		s.logger.Info("batch load finished with failures", "failed", failed, "total", len(paths))
	}
	return failed, ctx.Err()
}

// PreloadCritical loads only the first count objects' assets so the first
// visible frame is ready before the rest of the canvas.
func (s *Scheduler) PreloadCritical(ctx context.Context, objects []domain.ObjectConfig, count int) (int, error) {
	if count <= 0 {
		count = DefaultCriticalCount
	}
	if count > len(objects) {
		count = len(objects)
	}

	var paths []string
	for _, obj := range objects[:count] {
		paths = append(paths, obj.Assets.Paths()...)
	}
	return s.LoadAll(ctx, paths)
}

// Retry re-opens a failed path through the cache and loads it again. The
// path counts as unloaded from the moment it is re-opened until the new
// load settles.
func (s *Scheduler) Retry(ctx context.Context, path string) (ports.Resource, error) {
	s.mu.Lock()
	s.known[path] = false
	s.mu.Unlock()

	res, err := s.cache.Retry(ctx, path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.known[path] = true
	s.mu.Unlock()
	return res, nil
}

// Progress returns the rounded percentage of scheduled paths whose load
// has settled loaded. The scheduler keeps its own settlement record, so
// evicting a decoded asset from the cache never rolls progress back: it
// is monotonically non-decreasing until a Retry re-opens a failed path.
func (s *Scheduler) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.known)
	if total == 0 {
		return 100
	}
	loaded := 0
	for _, settled := range s.known {
		if settled {
			loaded++
		}
	}
	return int(math.Round(float64(loaded) / float64(total) * 100))
}

// ProgressFor returns the loaded percentage across a specific set of
// paths, used for per-object progress in snapshots. Loadedness follows
// the scheduler's settlement record; paths it never scheduled fall back
// to cache residency.
func (s *Scheduler) ProgressFor(paths []string) int {
	if len(paths) == 0 {
		return 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := 0
	for _, path := range paths {
		settled, scheduled := s.known[path]
		switch {
		case settled:
			loaded++
		case !scheduled:
			if rec, ok := s.cache.Get(path); ok && rec.State == StateLoaded {
				loaded++
			}
		}
	}
	return int(math.Round(float64(loaded) / float64(len(paths)) * 100))
}

// track records paths for progress accounting and drops duplicates while
// preserving order.
func (s *Scheduler) track(paths []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	deduped := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		if _, tracked := s.known[path]; !tracked {
			s.known[path] = false
		}
		deduped = append(deduped, path)
	}
	return deduped
}
