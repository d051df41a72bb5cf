package domain

// ClickZone is the horizontal third of an object's bounding box a click
// landed in. Zones let the host bind different behaviors to the edges of
// an object without registering extra hit targets.
type ClickZone string

const (
	ZoneLeft   ClickZone = "left"
	ZoneMiddle ClickZone = "middle"
	ZoneRight  ClickZone = "right"
	ZoneNone   ClickZone = ""
)

// ZoneFor resolves the click zone for a pointer X coordinate relative to
// the object's bounding box. Returns ZoneNone when the point is outside.
func ZoneFor(p Position, x float64) ClickZone {
	if x < p.X || x >= p.X+p.Width {
		return ZoneNone
	}
	third := p.Width / 3
	switch {
	case x < p.X+third:
		return ZoneLeft
	case x < p.X+2*third:
		return ZoneMiddle
	default:
		return ZoneRight
	}
}

// Action is a named input action, typically bound to a keyboard shortcut
// by the host.
type Action string

const (
	ActionTogglePositioning Action = "toggle_positioning"
	ActionToggleGrid        Action = "toggle_grid"
	ActionUndo              Action = "undo"
	ActionRedo              Action = "redo"
	ActionReset             Action = "reset"
	ActionEscape            Action = "escape"
)
