package ports

import "context"

// Resource is an opaque decoded asset handle. The engine only caches and
// hands it back to the rendering layer; it never inspects the contents.
type Resource interface {
	// Path returns the path the resource was loaded from.
	Path() string

	// Size returns the decoded size in bytes, used for cache accounting
	// and diagnostics.
	Size() int
}

// AssetFetcher resolves an opaque asset path into a decoded resource.
// Implementations perform the actual network or filesystem I/O; the cache
// owns dedup, recency, and eviction.
type AssetFetcher interface {
	// Fetch loads and decodes the asset at path. It must honor ctx
	// cancellation and return domain.ErrAssetNotFound for unresolvable
	// paths.
	Fetch(ctx context.Context, path string) (Resource, error)
}

// FetcherFunc adapts a function to the AssetFetcher interface.
type FetcherFunc func(ctx context.Context, path string) (Resource, error)

// Fetch implements AssetFetcher.
func (f FetcherFunc) Fetch(ctx context.Context, path string) (Resource, error) {
	return f(ctx, path)
}
