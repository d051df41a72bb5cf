package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/oliver-os/canvas/pkg/adapters/file"
	"github.com/oliver-os/canvas/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryYAML = `
objects:
  - id: brain-core
    zIndex: 2
    assets:
      fullBackground: scene-full.png
      backgroundWithoutObject: scene-empty.png
      objectIsolated: brain.png
    position: {x: 100, y: 100, width: 200, height: 150, anchor: top-left}
    interactive: true
    visible: true
    interactions:
      affects: [panel-left, panel-right]
      cascadeDelay: 100
  - id: panel-left
    zIndex: 1
    assets:
      objectIsolated: panel-left.png
    position: {x: 0, y: 0, width: 80, height: 300}
    interactive: true
    visible: true
presets:
  reading:
    brain-core: {x: 40, y: 40, width: 200, height: 150}
    panel-left: {x: 0, y: 120, width: 80, height: 300}
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_ParsesObjects(t *testing.T) {
	loader, err := file.NewLoader(writeRegistry(t, registryYAML))
	require.NoError(t, err)

	objects, err := loader.LoadObjects(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 2)

	brain := objects[0]
	assert.Equal(t, "brain-core", brain.ID)
	assert.Equal(t, 2, brain.ZIndex)
	assert.Equal(t, "scene-full.png", brain.Assets.FullBackground)
	assert.Equal(t, float64(100), brain.Position.X)
	assert.Equal(t, domain.AnchorTopLeft, brain.Position.Anchor)
	require.NotNil(t, brain.Cascade)
	assert.Equal(t, []string{"panel-left", "panel-right"}, brain.Cascade.Affects)
	assert.Equal(t, 100, brain.Cascade.DelayMillis)

	assert.Nil(t, objects[1].Cascade)
}

func TestLoader_ParsesPresets(t *testing.T) {
	loader, err := file.NewLoader(writeRegistry(t, registryYAML))
	require.NoError(t, err)

	names, err := loader.ListPresets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"reading"}, names)

	preset, err := loader.LoadPreset(context.Background(), "reading")
	require.NoError(t, err)
	assert.Equal(t, float64(40), preset["brain-core"].X)

	_, err = loader.LoadPreset(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownPreset)
}

func TestLoader_RejectsInvalidObjects(t *testing.T) {
	bad := `
objects:
  - id: broken
    position: {x: 0, y: 0, width: -5, height: 10}
`
	_, err := file.NewLoader(writeRegistry(t, bad))
	assert.ErrorIs(t, err, domain.ErrInvalidPosition)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := file.NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestFetcher_ReadsAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brain.png"), []byte("png-bytes"), 0o644))

	fetcher := file.NewFetcher(dir)
	res, err := fetcher.Fetch(context.Background(), "brain.png")
	require.NoError(t, err)
	assert.Equal(t, "brain.png", res.Path())
	assert.Equal(t, 9, res.Size())
}

func TestFetcher_MissingAsset(t *testing.T) {
	fetcher := file.NewFetcher(t.TempDir())
	_, err := fetcher.Fetch(context.Background(), "ghost.png")
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestFetcher_RejectsEscapingPaths(t *testing.T) {
	fetcher := file.NewFetcher(t.TempDir())
	_, err := fetcher.Fetch(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}
