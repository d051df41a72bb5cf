// Package file provides registry and asset adapters backed by the
// filesystem: a YAML object registry and a directory asset fetcher.
package file

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/oliver-os/canvas/pkg/domain"
)

// registryFile is the raw YAML shape. Objects and preset entries are kept
// as loose maps and decoded through mapstructure so the YAML may carry
// ints where the domain uses floats.
type registryFile struct {
	Objects []map[string]any          `yaml:"objects"`
	Presets map[string]map[string]any `yaml:"presets"`
}

// Loader implements ports.RegistryLoader and ports.PresetLoader from a
// YAML registry file. The file is parsed once at construction; the
// registry is a one-shot, read-only source.
type Loader struct {
	objects []domain.ObjectConfig
	presets map[string]domain.Preset
}

// NewLoader parses the registry file at path.
func NewLoader(path string) (*Loader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var parsed registryFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}

	l := &Loader{presets: make(map[string]domain.Preset)}

	for i, rawObj := range parsed.Objects {
		var cfg domain.ObjectConfig
		if err := decode(rawObj, &cfg); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		l.objects = append(l.objects, cfg)
	}

	for name, rawPreset := range parsed.Presets {
		preset := make(domain.Preset, len(rawPreset))
		for id, rawPos := range rawPreset {
			var pos domain.Position
			if err := decode(rawPos, &pos); err != nil {
				return nil, fmt.Errorf("preset %s, object %s: %w", name, id, err)
			}
			preset[id] = pos
		}
		l.presets[name] = preset
	}

	return l, nil
}

// LoadObjects returns the parsed object descriptors in file order.
func (l *Loader) LoadObjects(ctx context.Context) ([]domain.ObjectConfig, error) {
	return append([]domain.ObjectConfig(nil), l.objects...), nil
}

// LoadPreset returns the named preset.
func (l *Loader) LoadPreset(ctx context.Context, name string) (domain.Preset, error) {
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
	names := make([]string, 0, len(l.presets))
	for name := range l.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// decode maps a loose YAML value onto a typed struct. WeaklyTypedInput
// lets YAML integers fill float fields.
func decode(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}
	return nil
}
