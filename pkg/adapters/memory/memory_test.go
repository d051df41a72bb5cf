package memory_test

import (
	"context"
	"testing"

	"github.com/oliver-os/canvas/pkg/adapters/memory"
	"github.com/oliver-os/canvas/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Objects(t *testing.T) {
	objects := []domain.ObjectConfig{
		{ID: "a", Position: domain.Position{Width: 10, Height: 10}},
		{ID: "b", Position: domain.Position{Width: 10, Height: 10}},
	}
	loader := memory.NewLoader(objects)

	got, err := loader.LoadObjects(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)

	// The loader hands out copies: callers cannot mutate its data.
	got[0].ID = "mutated"
	again, _ := loader.LoadObjects(context.Background())
	assert.Equal(t, "a", again[0].ID)
}

func TestLoader_Presets(t *testing.T) {
	loader := memory.NewLoader(nil)
	loader.AddPreset("compact", domain.Preset{
		"a": {X: 1, Y: 2, Width: 10, Height: 10},
	})

	names, err := loader.ListPresets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"compact"}, names)

	preset, err := loader.LoadPreset(context.Background(), "compact")
	require.NoError(t, err)
	assert.Equal(t, float64(1), preset["a"].X)

	_, err = loader.LoadPreset(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUnknownPreset)
}

func TestFetcher(t *testing.T) {
	fetcher := memory.NewFetcher()
	fetcher.Put("brain.png", []byte{0x89, 0x50, 0x4e, 0x47})

	res, err := fetcher.Fetch(context.Background(), "brain.png")
	require.NoError(t, err)
	assert.Equal(t, "brain.png", res.Path())
	assert.Equal(t, 4, res.Size())

	_, err = fetcher.Fetch(context.Background(), "missing.png")
	assert.ErrorIs(t, err, domain.ErrAssetNotFound)
}

func TestFetcher_HonorsContext(t *testing.T) {
	fetcher := memory.NewFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
