package ports

import (
	"context"

	"github.com/oliver-os/canvas/pkg/domain"
)

// RegistryLoader supplies the immutable object configuration at startup.
// This allows the registry source (YAML file, embedded data, memory) to be
// decoupled from the engine.
type RegistryLoader interface {
	// LoadObjects returns the ordered list of object descriptors.
	// The engine reads this exactly once and never mutates the result.
	LoadObjects(ctx context.Context) ([]domain.ObjectConfig, error)
}

// PresetLoader is implemented by registry sources that also carry named
// position presets.
type PresetLoader interface {
	// LoadPreset returns the preset with the given name. Presets are not
	// validated against the registry here; unknown IDs are skipped when
	// the preset is applied.
	LoadPreset(ctx context.Context, name string) (domain.Preset, error)

	// ListPresets returns the available preset names.
	ListPresets(ctx context.Context) ([]string, error)
}
