package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"geographia/internal/api"
)

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	err error
}

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

var helpSections = []helpSection{
	{"Mapa", []helpEntry{
		{"↑/↓, j/k", "Mover entre ubicaciones"},
		{"enter", "Ver resumen / ver más"},
		{"t", "Cambiar tipo de mapa"},
		{"l", "Listar ubicaciones del tipo"},
		{"a", "Agregar ubicación en el centro"},
	}},
	{"Búsqueda", []helpEntry{
		{"/", "Buscar lugares y direcciones"},
		{"↑/↓", "Elegir resultado"},
		{"enter", "Abrir resultado"},
		{"esc", "Salir de la búsqueda"},
	}},
	{"Ubicación", []helpEntry{
		{"c", "Comentar"},
		{"r", "Calificar (1-5, enter)"},
		{"p", "Perfil del autor del comentario"},
		{"d", "Eliminar (solo propias)"},
		{"v", "Ver en el paginador"},
	}},
	{"Cuenta", []helpEntry{
		{"E", "Editar perfil"},
		{"P", "Cambiar contraseña"},
		{"V", "Privacidad"},
		{"X", "Eliminar cuenta"},
		{"o", "Cerrar sesión"},
	}},
	{"Otros", []helpEntry{
		{"y/n", "Confirmar / cancelar"},
		{"esc", "Cerrar la ventana superior"},
		{"?", "Mostrar/ocultar esta ayuda"},
		{"H", "Ayuda en el paginador"},
		{"q", "Salir"},
	}},
}

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	title   lipgloss.Style
	section lipgloss.Style
	key     lipgloss.Style
	desc    lipgloss.Style
	dim     lipgloss.Style
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginBottom(1),
		section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		desc:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// RenderHelpContent renders the help screen, windowed to height lines
func (r *HelpRenderer) RenderHelpContent(height, scrollOffset int) string {
	lines := strings.Split(r.RenderHelpContentPlain(), "\n")
	totalLines := len(lines)

	// Account for popup border and padding
	visibleHeight := max(height-4, 5)
	if totalLines <= visibleHeight {
		return strings.Join(lines, "\n")
	}

	maxOffset := totalLines - visibleHeight
	scrollOffset = max(0, min(scrollOffset, maxOffset))
	visible := append([]string(nil), lines[scrollOffset:scrollOffset+visibleHeight]...)
	if scrollOffset > 0 {
		visible[0] = r.dim.Render("↑ (hay más arriba)")
	}
	if scrollOffset < maxOffset {
		visible[len(visible)-1] = r.dim.Render("↓ (hay más abajo)")
	}
	return strings.Join(visible, "\n")
}

// RenderHelpContentPlain renders the whole help text
func (r *HelpRenderer) RenderHelpContentPlain() string {
	var help strings.Builder
	help.WriteString(r.title.Render("Ayuda de Geographia"))
	help.WriteString("\n")

	width := 0
	for _, s := range helpSections {
		for _, e := range s.entries {
			width = max(width, lipgloss.Width(e.keys))
		}
	}

	for i, s := range helpSections {
		help.WriteString(r.section.Render(s.title))
		help.WriteString("\n")
		for j, e := range s.entries {
			pad := strings.Repeat(" ", width-lipgloss.Width(e.keys)+2)
			help.WriteString(fmt.Sprintf("  %s%s%s", r.key.Render(e.keys), pad, r.desc.Render(e.desc)))
			if i < len(helpSections)-1 || j < len(s.entries)-1 {
				help.WriteString("\n")
			}
		}
	}
	return help.String()
}

// RenderDetailPlain renders a location and its comments for the pager
func RenderDetailPlain(d *api.LocationDetail) string {
	var b strings.Builder
	loc := d.Location
	b.WriteString(fmt.Sprintf("%s\n%s · %s\n", loc.Name, loc.Type, loc.Address))
	b.WriteString(fmt.Sprintf("Calificación promedio: %.1f\n", loc.AverageRating))
	if !loc.CreatedAt.IsZero() {
		b.WriteString("Creada: " + loc.CreatedAt.Format("02/01/2006") + "\n")
	}
	if loc.Details != "" {
		b.WriteString("\n" + loc.Details + "\n")
	}
	if len(loc.Tags) > 0 {
		b.WriteString("\n#" + strings.Join(loc.Tags, " #") + "\n")
	}
	b.WriteString(fmt.Sprintf("\nComentarios (%d)\n", len(d.Comments)))
	for _, c := range d.Comments {
		b.WriteString(fmt.Sprintf("\n%s %s", c.UserFirstName, c.UserLastName))
		if c.Address != "" {
			b.WriteString(" · " + c.Address)
		}
		if !c.CreatedAt.IsZero() {
			b.WriteString(" · " + c.CreatedAt.Format("02/01/2006 15:04"))
		}
		b.WriteString("\n  " + c.Text + "\n")
	}
	return b.String()
}

// Pager shows long content outside the bubbletea screen
type Pager struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPager creates a pager bound to program
func NewPager(program *tea.Program) *Pager {
	return &Pager{program: program}
}

// Show hands the terminal to ov until the user quits it
func (p *Pager) Show(content string) error {
	if p == nil || p.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// pagerCmd runs the pager off the update loop
func pagerCmd(p *Pager, content string) tea.Cmd {
	return func() tea.Msg {
		return pagerMsg{err: p.Show(content)}
	}
}
