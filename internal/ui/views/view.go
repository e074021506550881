package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"geographia/internal/api"
	"geographia/internal/domain"
	"geographia/internal/geocode"
	"geographia/internal/ui/services/navigation"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	Nav       navigation.State
	Type      domain.LocationType
	MapStyle  string
	LoggedIn  bool
	Center    domain.Point
	Locations []domain.Location // already filtered by Type
	Cursor    int
	Loading   bool

	SearchInput   string // rendered text input
	SearchFocused bool
	Candidates    []geocode.Candidate
	Matches       []domain.Location
	Recent        []domain.Location
	Candidate     int

	Detail        *api.LocationDetail
	DetailErr     string
	CommentInput  string
	CommentCursor int
	Rating        int // score being chosen in the rate modal
	Profile       *domain.User
	AddAddress    string // reverse geocoded address of the add location point

	Notice   *domain.NoticeEvent
	HelpView string
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	locRender   *LocationRenderer
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		locRender:   NewLocationRenderer(styles),
		popupRender: NewPopupRenderer(styles),
	}
}

// Styles exposes the renderer's styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	if state.Nav.Path != navigation.PathMap {
		return r.styles.Main.Render(r.renderPage(state))
	}

	content := &strings.Builder{}
	content.WriteString(r.renderTitle(state))
	content.WriteString("\n")
	content.WriteString(r.renderSearch(state))
	content.WriteString("\n")

	switch {
	case state.Loading && len(state.Locations) == 0:
		content.WriteString(r.styles.Dim.Render("Cargando ubicaciones..."))
	case len(state.Locations) == 0:
		content.WriteString(r.styles.Dim.Render("No hay ubicaciones de este tipo."))
	default:
		content.WriteString(r.locRender.RenderList(state.Locations, state.Cursor, max(state.Height-14, 3)))
	}

	if state.Notice != nil {
		content.WriteString("\n")
		content.WriteString(r.renderNotice(*state.Notice))
	}

	if state.HelpView != "" {
		currentLines := strings.Count(content.String(), "\n") + 1
		if pad := state.Height - 3 - currentLines; pad > 0 {
			content.WriteString(strings.Repeat("\n", pad))
		}
		content.WriteString("\n")
		content.WriteString(r.styles.Help.Render(state.HelpView))
	}

	screen := r.styles.Main.Render(content.String())

	if popup := state.Nav.Active(navigation.SlotPopup); popup != "" {
		screen = r.popupRender.RenderOverlay(screen, r.renderPopup(popup, state), state.Width, state.Height, r.styles.Popup)
	}
	if modal := state.Nav.Active(navigation.SlotModal); modal != "" {
		screen = r.popupRender.RenderOverlay(screen, r.renderModal(modal, state), state.Width, state.Height, r.styles.Modal)
	}
	return screen
}

// Overlay draws content in a popup centered over screen
func (r *Renderer) Overlay(screen, content string, width, height int) string {
	return r.popupRender.RenderOverlay(screen, content, width, height, r.styles.Popup)
}

func (r *Renderer) renderTitle(state ViewState) string {
	logo := r.styles.Title.Render("geographia")

	session := "sin sesión"
	if state.LoggedIn {
		session = "sesión iniciada"
	}
	right := TypeList(state.Type, r.styles) + "  " + r.styles.Header.Render(fmt.Sprintf("%s · %.4f, %.4f · %s",
		state.MapStyle, state.Center.Lat, state.Center.Lng, session))

	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	padding := termWidth - 4 - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

func (r *Renderer) renderSearch(state ViewState) string {
	style := r.styles.Search
	if state.SearchFocused {
		style = r.styles.SearchFocused
	}
	box := style.Render(state.SearchInput)
	if !state.SearchFocused {
		return box
	}

	var b strings.Builder
	b.WriteString(box)
	b.WriteString("\n")
	row := 0
	write := func(label string) {
		line := "  " + label
		if row == state.Candidate {
			line = r.styles.SelectionBg.Render("> " + label)
		}
		b.WriteString(line)
		b.WriteString("\n")
		row++
	}

	if len(state.Matches) == 0 && len(state.Candidates) == 0 && len(state.Recent) > 0 {
		b.WriteString(r.styles.Dim.Render("Búsquedas recientes"))
		b.WriteString("\n")
		for _, loc := range state.Recent {
			write(loc.Name)
		}
		return b.String()
	}
	for _, loc := range state.Matches {
		write(loc.Name + r.styles.Dim.Render("  "+loc.Address))
	}
	for _, c := range state.Candidates {
		write(r.styles.Dim.Render("⌖ ") + c.Label)
	}
	return b.String()
}

func (r *Renderer) renderNotice(n domain.NoticeEvent) string {
	text := n.Title
	if n.Message != "" {
		text += ": " + n.Message
	}
	return r.styles.NoticeStyle(n.Level).Render(text)
}

// renderPage draws the pages outside the map
func (r *Renderer) renderPage(state ViewState) string {
	var title, body string
	switch state.Nav.Path {
	case navigation.PathWelcome:
		title, body = "Bienvenido a Geographia", "Descubrí y compartí lugares de Argentina.\n\nEnter para abrir el mapa."
	case navigation.PathLogin:
		title, body = "Iniciar sesión", "Usá `geographia login` para iniciar sesión.\n\nEnter para volver al mapa."
	case navigation.PathRegister:
		title, body = "Registrarse", "El registro se realiza desde la web.\n\nEnter para volver al mapa."
	case navigation.PathRecoverPassword:
		title, body = "Recuperar contraseña", "Usá `geographia recover` para recuperar tu contraseña.\n\nEnter para volver al mapa."
	case navigation.PathTerms:
		title, body = "Términos y privacidad", "Tu ubicación se comparte solo a nivel de ciudad y provincia."
	}
	return r.styles.Title.Render(title) + "\n" + body
}
