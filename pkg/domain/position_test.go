package domain_test

import (
	"testing"

	"github.com/oliver-os/canvas/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestPosition_Validate(t *testing.T) {
	valid := domain.Position{X: 10, Y: 20, Width: 100, Height: 50}
	assert.NoError(t, valid.Validate())

	negWidth := domain.Position{X: 0, Y: 0, Width: -5, Height: 10}
	assert.ErrorIs(t, negWidth.Validate(), domain.ErrInvalidPosition)

	zeroHeight := domain.Position{X: 0, Y: 0, Width: 5, Height: 0}
	assert.ErrorIs(t, zeroHeight.Validate(), domain.ErrInvalidPosition)
}

func TestPosition_Snapped(t *testing.T) {
	p := domain.Position{X: 13, Y: 27, Width: 101, Height: 48}

	snapped := p.Snapped(20)
	assert.Equal(t, float64(20), snapped.X)
	assert.Equal(t, float64(20), snapped.Y)
	assert.Equal(t, float64(100), snapped.Width)
	assert.Equal(t, float64(40), snapped.Height)

	// Snapping is idempotent: a snapped position does not move again.
	assert.Equal(t, snapped, snapped.Snapped(20))
}

func TestPosition_Snapped_NeverCollapsesDimensions(t *testing.T) {
	p := domain.Position{X: 0, Y: 0, Width: 4, Height: 4}
	snapped := p.Snapped(20)

	// 4 rounds to 0, which would be an invalid dimension; clamp to one cell.
	assert.Equal(t, float64(20), snapped.Width)
	assert.Equal(t, float64(20), snapped.Height)
	assert.NoError(t, snapped.Validate())
}

func TestZoneFor(t *testing.T) {
	p := domain.Position{X: 90, Y: 0, Width: 90, Height: 30}

	assert.Equal(t, domain.ZoneLeft, domain.ZoneFor(p, 100))
	assert.Equal(t, domain.ZoneMiddle, domain.ZoneFor(p, 130))
	assert.Equal(t, domain.ZoneRight, domain.ZoneFor(p, 170))
	assert.Equal(t, domain.ZoneNone, domain.ZoneFor(p, 50))
	assert.Equal(t, domain.ZoneNone, domain.ZoneFor(p, 180))
}

func TestObjectConfig_Validate(t *testing.T) {
	base := domain.ObjectConfig{
		ID:       "brain-core",
		Position: domain.Position{X: 0, Y: 0, Width: 100, Height: 100},
	}
	assert.NoError(t, base.Validate())

	missing := base
	missing.ID = ""
	assert.ErrorIs(t, missing.Validate(), domain.ErrInvalidConfig)

	selfCascade := base
	selfCascade.Cascade = &domain.Cascade{Affects: []string{"brain-core"}, DelayMillis: 100}
	assert.ErrorIs(t, selfCascade.Validate(), domain.ErrInvalidConfig)

	emptyCascade := base
	emptyCascade.Cascade = &domain.Cascade{DelayMillis: 100}
	assert.ErrorIs(t, emptyCascade.Validate(), domain.ErrInvalidConfig)

	badDelay := base
	badDelay.Cascade = &domain.Cascade{Affects: []string{"panel-left"}, DelayMillis: 0}
	assert.ErrorIs(t, badDelay.Validate(), domain.ErrInvalidConfig)

	badPos := base
	badPos.Position.Width = -1
	assert.ErrorIs(t, badPos.Validate(), domain.ErrInvalidPosition)
}
