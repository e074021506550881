package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderOverlay draws content centered on top of base with the given style.
// The base is greyed out so the overlay stands out.
func (pr *PopupRenderer) RenderOverlay(base, content string, width, height int, style lipgloss.Style) string {
	styled := style.Render(content)

	w := lipgloss.Width(styled)
	h := lipgloss.Height(styled)
	x := max((width-w)/2, 0)
	y := max((height-h)/2, 0)

	return place(desaturateANSI(base), styled, x, y, height)
}

// place splices the lines of top into base starting at column x, row y
func place(base, top string, x, y, height int) string {
	baseLines := strings.Split(base, "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	topLines := strings.Split(top, "\n")

	for i, line := range topLines {
		row := y + i
		if row >= len(baseLines) {
			baseLines = append(baseLines, "")
		}
		under := baseLines[row]
		if pad := x - ansi.StringWidth(under); pad > 0 {
			under += strings.Repeat(" ", pad)
		}
		left := ansi.Truncate(under, x, "")
		right := ansi.TruncateLeft(under, x+ansi.StringWidth(line), "")
		baseLines[row] = left + line + right
	}
	return strings.Join(baseLines, "\n")
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// desaturateANSI strips ANSI color/style codes and recolors text dim gray
func desaturateANSI(s string) string {
	lines := strings.Split(s, "\n")
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	for i, line := range lines {
		plain := ansiRE.ReplaceAllString(line, "")
		if plain != "" {
			lines[i] = dim.Render(plain)
		}
	}
	return strings.Join(lines, "\n")
}
