package domain

import "fmt"

// AssetSet holds the asset paths a layered object renders with.
// Paths are opaque strings resolved by the configured AssetFetcher.
type AssetSet struct {
	FullBackground          string `yaml:"fullBackground" mapstructure:"fullBackground"`
	BackgroundWithoutObject string `yaml:"backgroundWithoutObject" mapstructure:"backgroundWithoutObject"`
	ObjectIsolated          string `yaml:"objectIsolated" mapstructure:"objectIsolated"`
}

// Paths returns the non-empty asset paths in declaration order.
func (a AssetSet) Paths() []string {
	paths := make([]string, 0, 3)
	for _, p := range []string{a.FullBackground, a.BackgroundWithoutObject, a.ObjectIsolated} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Cascade declares that activating an object ripples activation onto
// dependent objects with a staggered delay per target.
type Cascade struct {
	// Affects lists target object IDs in firing order.
	Affects []string `yaml:"affects" mapstructure:"affects"`

	// DelayMillis is the base delay; target at index k fires at delay*(k+1).
	DelayMillis int `yaml:"cascadeDelay" mapstructure:"cascadeDelay"`
}

// ObjectConfig is the immutable registry descriptor for a single object.
// It is supplied once at registration and never mutated by the engine.
type ObjectConfig struct {
	ID          string   `yaml:"id" mapstructure:"id"`
	ZIndex      int      `yaml:"zIndex" mapstructure:"zIndex"`
	Assets      AssetSet `yaml:"assets" mapstructure:"assets"`
	Position    Position `yaml:"position" mapstructure:"position"`
	Interactive bool     `yaml:"interactive" mapstructure:"interactive"`
	Visible     bool     `yaml:"visible" mapstructure:"visible"`
	Cascade     *Cascade `yaml:"interactions,omitempty" mapstructure:"interactions"`
}

// Validate checks the descriptor once at registration time so call sites
// never need to re-check optional fields.
func (c ObjectConfig) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidConfig)
	}
	if err := c.Position.Validate(); err != nil {
		return fmt.Errorf("object %q: %w", c.ID, err)
	}
	if c.Cascade != nil {
		if len(c.Cascade.Affects) == 0 {
			return fmt.Errorf("%w: object %q declares a cascade with no targets", ErrInvalidConfig, c.ID)
		}
		if c.Cascade.DelayMillis <= 0 {
			return fmt.Errorf("%w: object %q declares a non-positive cascade delay", ErrInvalidConfig, c.ID)
		}
		for _, target := range c.Cascade.Affects {
			if target == c.ID {
				return fmt.Errorf("%w: object %q cascades onto itself", ErrInvalidConfig, c.ID)
			}
		}
	}
	return nil
}
