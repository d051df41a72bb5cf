package domain

// ActivationState defines the interaction state of an object.
type ActivationState string

const (
	StateIdle   ActivationState = "idle"
	StateActive ActivationState = "active"
)

// ObjectSnapshot is the per-object view handed to the rendering layer.
// It is a value copy; mutating it has no effect on the engine.
type ObjectSnapshot struct {
	ID            string          `json:"id"`
	ZIndex        int             `json:"z_index"`
	Position      Position        `json:"position"`
	Activation    ActivationState `json:"activation"`
	Hovered       bool            `json:"hovered"`
	AssetProgress int             `json:"asset_progress"`
	IsDragging    bool            `json:"is_dragging"`
	IsSelected    bool            `json:"is_selected"`
	Visible       bool            `json:"visible"`
	Locked        bool            `json:"locked"`
}

// CanvasSnapshot is the full render view: every object plus canvas-level
// mode flags, ordered by ascending z-index.
type CanvasSnapshot struct {
	Objects         []ObjectSnapshot `json:"objects"`
	PositioningMode bool             `json:"positioning_mode"`
	GridEnabled     bool             `json:"grid_enabled"`
	AssetProgress   int              `json:"asset_progress"`
}
