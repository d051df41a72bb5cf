package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oliver-os/canvas/pkg/domain"
	"github.com/oliver-os/canvas/pkg/ports"
)

// Resource is an asset read from disk.
type Resource struct {
	path string
	data []byte
}

// Path returns the registry path the resource was loaded from.
func (r Resource) Path() string { return r.path }

// Size returns the size in bytes.
func (r Resource) Size() int { return len(r.data) }

// Data returns the raw bytes.
func (r Resource) Data() []byte { return r.data }

// Fetcher implements ports.AssetFetcher over a root directory. Asset
// paths resolve relative to the root; escaping the root is rejected.
type Fetcher struct {
	root string
}

// NewFetcher creates a fetcher rooted at dir.
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{root: dir}
}

// Fetch reads the asset at path under the root directory.
func (f *Fetcher) Fetch(ctx context.Context, path string) (ports.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("%w: path escapes asset root: %s", domain.ErrAssetNotFound, path)
	}

	data, err := os.ReadFile(filepath.Join(f.root, clean))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAssetNotFound, path)
		}
		return nil, fmt.Errorf("failed to read asset %s: %w", path, err)
	}
	return Resource{path: path, data: data}, nil
}
