// Package tui renders canvas snapshots for the terminal.
package tui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/muesli/termenv"

	"github.com/oliver-os/canvas/pkg/domain"
)

// Renderer paints a snapshot onto a character grid. Objects draw in
// snapshot order, so higher z-indexes overwrite lower ones.
type Renderer struct {
	cols    int
	rows    int
	profile termenv.Profile
}

// New creates a renderer for a terminal viewport of cols x rows cells.
func New(cols, rows int) *Renderer {
	if cols < 20 {
		cols = 20
	}
	if rows < 8 {
		rows = 8
	}
	return &Renderer{
		cols:    cols,
		rows:    rows,
		profile: termenv.ColorProfile(),
	}
}

// Render returns the snapshot as a framed character grid plus a status
// line. Each object paints its bounding box with the first letter of its
// ID; active objects are highlighted, the dragged object is inverted.
func (r *Renderer) Render(snap domain.CanvasSnapshot) string {
	width, height := bounds(snap)
	grid := make([][]string, r.rows)
	for y := range grid {
		grid[y] = make([]string, r.cols)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	for _, obj := range snap.Objects {
		if !obj.Visible {
			continue
		}
		r.paint(grid, obj, width, height)
	}

	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", r.cols) + "+\n")
	for _, row := range grid {
		b.WriteString("|" + strings.Join(row, "") + "|\n")
	}
	b.WriteString("+" + strings.Repeat("-", r.cols) + "+\n")
	b.WriteString(r.statusLine(snap))
	return b.String()
}

func (r *Renderer) paint(grid [][]string, obj domain.ObjectSnapshot, width, height float64) {
	x0 := scale(obj.Position.X, width, r.cols)
	y0 := scale(obj.Position.Y, height, r.rows)
	x1 := scale(obj.Position.X+obj.Position.Width, width, r.cols)
	y1 := scale(obj.Position.Y+obj.Position.Height, height, r.rows)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	cell := glyph(obj.ID)
	for y := y0; y < y1 && y < r.rows; y++ {
		for x := x0; x < x1 && x < r.cols; x++ {
			grid[y][x] = r.style(cell, obj)
		}
	}
}

func (r *Renderer) style(cell string, obj domain.ObjectSnapshot) string {
	s := termenv.String(cell)
	switch {
	case obj.IsDragging:
		s = s.Reverse()
	case obj.Activation == domain.StateActive:
		s = s.Foreground(r.profile.Color("#34d399")).Bold()
	default:
		s = s.Foreground(r.profile.Color("#6b7280"))
	}
	if obj.IsSelected {
		s = s.Underline()
	}
	return s.String()
}

func (r *Renderer) statusLine(snap domain.CanvasSnapshot) string {
	mode := "off"
	if snap.PositioningMode {
		mode = "on"
	}
	grid := "off"
	if snap.GridEnabled {
		grid = "on"
	}
	return fmt.Sprintf("positioning %s | grid %s | assets %d%%\n", mode, grid, snap.AssetProgress)
}

// bounds returns the canvas extent covered by the snapshot.
func bounds(snap domain.CanvasSnapshot) (float64, float64) {
	width, height := 1.0, 1.0
	for _, obj := range snap.Objects {
		if edge := obj.Position.X + obj.Position.Width; edge > width {
			width = edge
		}
		if edge := obj.Position.Y + obj.Position.Height; edge > height {
			height = edge
		}
	}
	return width, height
}

func scale(v, extent float64, cells int) int {
	if extent <= 0 {
		return 0
	}
	n := int(v / extent * float64(cells))
	if n < 0 {
		n = 0
	}
	if n > cells {
		n = cells
	}
	return n
}

func glyph(id string) string {
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "#"
}
