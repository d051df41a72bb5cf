package domain

import (
	"fmt"
	"math"
)

// Anchor names the reference corner a position is measured from.
type Anchor string

const (
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorCenter      Anchor = "center"
)

// SnapConfig enables grid snapping for a position update.
type SnapConfig struct {
	Enabled bool    `yaml:"enabled" mapstructure:"enabled"`
	Spacing float64 `yaml:"spacing" mapstructure:"spacing"`
}

// Position describes where and how large an object is on the canvas.
type Position struct {
	X      float64 `yaml:"x" mapstructure:"x"`
	Y      float64 `yaml:"y" mapstructure:"y"`
	Width  float64 `yaml:"width" mapstructure:"width"`
	Height float64 `yaml:"height" mapstructure:"height"`
	Anchor Anchor  `yaml:"anchor,omitempty" mapstructure:"anchor"`

	// Snap, when set and enabled, requests grid snapping for this update.
	Snap *SnapConfig `yaml:"snap,omitempty" mapstructure:"snap"`
}

// Validate rejects degenerate dimensions before they reach the store.
func (p Position) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: width=%g height=%g", ErrInvalidPosition, p.Width, p.Height)
	}
	return nil
}

// Snapped returns a copy with x, y, width and height rounded to the nearest
// multiple of spacing. Dimensions never snap below one grid cell, so a valid
// position stays valid. Snapping is deterministic: snapping an already
// snapped position is a no-op.
func (p Position) Snapped(spacing float64) Position {
	if spacing <= 0 {
		return p
	}
	snap := func(v float64) float64 {
		return math.Round(v/spacing) * spacing
	}
	out := p
	out.X = snap(p.X)
	out.Y = snap(p.Y)
	out.Width = math.Max(snap(p.Width), spacing)
	out.Height = math.Max(snap(p.Height), spacing)
	return out
}

// Contains reports whether the point lies inside the bounding box.
// Only top-left anchored boxes participate in hit testing for now.
func (p Position) Contains(x, y float64) bool {
	return x >= p.X && x < p.X+p.Width && y >= p.Y && y < p.Y+p.Height
}

// Preset maps object IDs to target positions. Unknown IDs are skipped on
// application; objects absent from the preset keep their current position.
type Preset map[string]Position
