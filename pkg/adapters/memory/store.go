package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/oliver-os/canvas/pkg/domain"
	"github.com/oliver-os/canvas/pkg/ports"
)

// Resource is an in-memory decoded asset.
type Resource struct {
	path string
	data []byte
}

// Path returns the path the resource was loaded from.
func (r Resource) Path() string { return r.path }

// Size returns the decoded size in bytes.
func (r Resource) Size() int { return len(r.data) }

// Data returns the raw bytes.
func (r Resource) Data() []byte { return r.data }

// Fetcher implements ports.AssetFetcher over an in-memory byte store.
// Safe for concurrent use.
type Fetcher struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewFetcher creates an empty in-memory fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{data: make(map[string][]byte)}
}

// Put stores asset bytes under a path.
func (f *Fetcher) Put(path string, data []byte) {
	f.mu.Lock()
	f.data[path] = append([]byte(nil), data...)
	f.mu.Unlock()
}

// Fetch resolves a stored path into a resource.
func (f *Fetcher) Fetch(ctx context.Context, path string) (ports.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	data, ok := f.data[path]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, path)
	}
	return Resource{path: path, data: data}, nil
}
