package graph

import (
	"fmt"
	"strings"

	"github.com/oliver-os/canvas/pkg/domain"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	ActiveIDs  []string
	SelectedID string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from the object
// registry, drawing cascade links as labelled edges.
// It applies semantic styling:
// - Interactive: [[Subroutine]]
// - Hidden: [/Parallelogram/]
// - Default: [Rectangle]
// It also applies overlay styles (Active/Selected) if provided.
func GenerateMermaid(objects []domain.ObjectConfig, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, obj := range objects {
		// Sanitize ID for Mermaid
		safeID := sanitizeMermaidID(obj.ID)

		// Node Shape based on role
		opener, closer := "[", "]"

		switch {
		case obj.Interactive:
			opener, closer = "[[", "]]" // Subroutine
		case !obj.Visible:
			opener, closer = "[/", "/]" // Parallelogram
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s <br/> z%d\"%s\n", safeID, opener, obj.ID, obj.ZIndex, closer))

		if obj.Cascade == nil {
			continue
		}
		for i, target := range obj.Cascade.Affects {
			safeTo := sanitizeMermaidID(target)
			// Label each edge with the staggered firing offset.
			delay := obj.Cascade.DelayMillis * (i + 1)
			arrow := fmt.Sprintf("-- \"%dms\" -->", delay)
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		// Deduplicate active nodes (using safeIDs)
		activeSet := make(map[string]bool)
		for _, id := range overlay.ActiveIDs {
			safeID := sanitizeMermaidID(id)
			if !activeSet[safeID] && safeID != "" {
				activeSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s active;\n", safeID))
			}
		}

		if overlay.SelectedID != "" {
			safeSelected := sanitizeMermaidID(overlay.SelectedID)
			sb.WriteString(fmt.Sprintf("    class %s selected;\n", safeSelected))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
