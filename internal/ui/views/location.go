package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"geographia/internal/domain"
)

// LocationRenderer renders location rows
type LocationRenderer struct {
	styles *Styles
}

// NewLocationRenderer creates a new location renderer
func NewLocationRenderer(styles *Styles) *LocationRenderer {
	return &LocationRenderer{styles: styles}
}

// RenderList renders at most visible rows around the cursor
func (lr *LocationRenderer) RenderList(locations []domain.Location, cursor, visible int) string {
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(locations))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(lr.RenderRow(locations[i], i == cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if end < len(locations) {
		b.WriteString("\n")
		b.WriteString(lr.styles.Dim.Render(fmt.Sprintf("… %d más", len(locations)-end)))
	}
	return b.String()
}

// RenderRow renders a single location line
func (lr *LocationRenderer) RenderRow(loc domain.Location, selected bool) string {
	marker := lipgloss.NewStyle().Foreground(lipgloss.Color(TypeColor(loc.Type))).Render("●")
	name := loc.Name
	if selected {
		name = lr.styles.Highlight.Render(name)
	}
	line := fmt.Sprintf("%s %s  %s  %s", marker, name, lr.styles.Dim.Render(loc.Address), Stars(loc.AverageRating, lr.styles))
	if selected {
		return lr.styles.SelectionBg.Render("> ") + line
	}
	return "  " + line
}

// Stars renders a 0-5 rating
func Stars(rating float64, styles *Styles) string {
	full := int(rating + 0.5)
	full = max(0, min(full, 5))
	return styles.Rating.Render(strings.Repeat("★", full) + strings.Repeat("☆", 5-full))
}
