// Package memory provides in-memory registry and asset adapters, used by
// tests and demos.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/oliver-os/canvas/pkg/domain"
)

// Loader implements ports.RegistryLoader and ports.PresetLoader from
// in-memory data.
type Loader struct {
	mu      sync.RWMutex
	objects []domain.ObjectConfig
	presets map[string]domain.Preset
}

// NewLoader creates a loader serving the given object descriptors.
func NewLoader(objects []domain.ObjectConfig) *Loader {
	return &Loader{
		objects: append([]domain.ObjectConfig(nil), objects...),
		presets: make(map[string]domain.Preset),
	}
}

// AddPreset registers a named preset.
func (l *Loader) AddPreset(name string, preset domain.Preset) {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := make(domain.Preset, len(preset))
	for id, pos := range preset {
		copied[id] = pos
	}
	l.presets[name] = copied
}

// LoadObjects returns a copy of the object descriptors in declaration
// order.
func (l *Loader) LoadObjects(ctx context.Context) ([]domain.ObjectConfig, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.ObjectConfig(nil), l.objects...), nil
}

// LoadPreset returns the named preset.
func (l *Loader) LoadPreset(ctx context.Context, name string) (domain.Preset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	preset, ok := l.presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPreset, name)
	}
	copied := make(domain.Preset, len(preset))
	for id, pos := range preset {
		copied[id] = pos
	}
	return copied, nil
}

// ListPresets returns the available preset names, sorted.
func (l *Loader) ListPresets(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.presets))
	for name := range l.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
