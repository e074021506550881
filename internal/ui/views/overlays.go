package views

import (
	"fmt"
	"strings"

	"geographia/internal/domain"
	"geographia/internal/ui/services/navigation"
)

func (r *Renderer) renderPopup(view navigation.ViewID, state ViewState) string {
	switch view {
	case navigation.ViewLocation:
		return r.renderLocationDetail(state)
	case navigation.ViewResumeLocation:
		return r.renderResume(state)
	case navigation.ViewListLocations:
		return r.renderList(state)
	case navigation.ViewAddLocation:
		return r.renderAddLocation(state)
	case navigation.ViewCloseSession:
		return r.confirm("Cerrar sesión", "¿Querés cerrar la sesión?")
	case navigation.ViewDeleteConfirmation:
		return r.confirm("Eliminar cuenta", "Esta acción no se puede deshacer.")
	case navigation.ViewEditProfile, navigation.ViewChangePassword, navigation.ViewPrivacySettings:
		return r.styles.Title.Render(accountTitle(view)) + "\n" +
			r.styles.Dim.Render("Disponible desde `geographia account`.") + "\n\n" + r.styles.Help.Render("esc cerrar")
	}
	return string(view)
}

func (r *Renderer) renderModal(view navigation.ViewID, state ViewState) string {
	switch view {
	case navigation.ViewRateLocation:
		var b strings.Builder
		b.WriteString(r.styles.Title.Render("Calificar ubicación"))
		b.WriteString("\n")
		b.WriteString(Stars(float64(state.Rating), r.styles))
		b.WriteString("\n\n")
		b.WriteString(r.styles.Help.Render("1-5 elegir · enter guardar · esc cancelar"))
		return b.String()
	case navigation.ViewDeleteLocationConfirmation:
		return r.styles.Danger.Render("Eliminar ubicación") + "\n" +
			"¿Seguro que querés eliminar esta ubicación?\n\n" +
			r.styles.Help.Render("y eliminar · n cancelar")
	case navigation.ViewProfileResume:
		return r.renderProfile(state)
	}
	return string(view)
}

func (r *Renderer) renderLocationDetail(state ViewState) string {
	if state.Detail == nil {
		if state.DetailErr != "" {
			return r.styles.NoticeError.Render(state.DetailErr)
		}
		return r.styles.Dim.Render("Cargando...")
	}
	d := state.Detail
	loc := d.Location

	var b strings.Builder
	b.WriteString(r.styles.Title.Render(loc.Name))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s · %s\n", loc.Type, loc.Address))
	b.WriteString(Stars(loc.AverageRating, r.styles))
	if d.MyRating != nil {
		b.WriteString(r.styles.Dim.Render(fmt.Sprintf("  tu calificación: %d", d.MyRating.Score)))
	}
	b.WriteString("\n")
	if loc.Details != "" {
		b.WriteString("\n" + loc.Details + "\n")
	}
	if len(loc.Tags) > 0 {
		b.WriteString(r.styles.Dim.Render("#"+strings.Join(loc.Tags, " #")) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(r.styles.Header.Render(fmt.Sprintf("Comentarios (%d)", len(d.Comments))))
	b.WriteString("\n")
	for i, c := range d.Comments {
		author := strings.TrimSpace(c.UserFirstName + " " + c.UserLastName)
		if i == state.CommentCursor {
			b.WriteString(r.styles.SelectionBg.Render("> "))
		}
		b.WriteString(r.styles.CommentAuthor.Render(author))
		b.WriteString(r.styles.Dim.Render("  " + c.Address))
		b.WriteString("\n  " + c.Text + "\n")
	}

	b.WriteString("\n")
	b.WriteString(state.CommentInput)
	b.WriteString("\n\n")
	keys := "c comentar · r calificar · p perfil · esc cerrar"
	if d.Owned() {
		keys = "c comentar · r calificar · d eliminar · esc cerrar"
	}
	b.WriteString(r.styles.Help.Render(keys))
	return b.String()
}

func (r *Renderer) renderResume(state ViewState) string {
	if state.Detail == nil {
		return r.styles.Dim.Render("Cargando...")
	}
	loc := state.Detail.Location
	return r.styles.Title.Render(loc.Name) + "\n" +
		loc.Address + "\n" + Stars(loc.AverageRating, r.styles) + "\n\n" +
		r.styles.Help.Render("enter ver más · esc cerrar")
}

func (r *Renderer) renderList(state ViewState) string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(fmt.Sprintf("Ubicaciones · %s", state.Type)))
	b.WriteString("\n")
	if len(state.Locations) == 0 {
		b.WriteString(r.styles.Dim.Render("Sin ubicaciones"))
	} else {
		b.WriteString(r.locRender.RenderList(state.Locations, state.Cursor, 10))
	}
	b.WriteString("\n\n")
	b.WriteString(r.styles.Help.Render("↑/↓ mover · enter abrir · esc cerrar"))
	return b.String()
}

func (r *Renderer) renderAddLocation(state ViewState) string {
	lat, _ := state.Nav.Params.Float(navigation.ParamLat)
	lng, _ := state.Nav.Params.Float(navigation.ParamLng)
	addr := state.AddAddress
	if addr == "" {
		addr = "Buscando dirección..."
	}
	return r.styles.Title.Render("Agregar ubicación") + "\n" +
		fmt.Sprintf("%.5f, %.5f\n%s\n\n", lat, lng, addr) +
		r.styles.Dim.Render("Completá el alta con `geographia add`.") + "\n\n" +
		r.styles.Help.Render("esc cerrar")
}

func (r *Renderer) renderProfile(state ViewState) string {
	u := state.Profile
	if u == nil {
		return r.styles.Dim.Render("Cargando perfil...")
	}
	var b strings.Builder
	b.WriteString(r.styles.Title.Render(u.FullName()))
	b.WriteString("\n")
	if u.ShowEmail && u.Email != "" {
		b.WriteString(u.Email + "\n")
	}
	if u.ShowLocation && u.Address != "" {
		b.WriteString(u.Address + "\n")
	}
	if u.ShowBirthDate && !u.BirthDate.IsZero() {
		b.WriteString(u.BirthDate.Format("02/01/2006") + "\n")
	}
	b.WriteString("\n" + r.styles.Help.Render("esc cerrar"))
	return b.String()
}

func (r *Renderer) confirm(title, question string) string {
	return r.styles.Title.Render(title) + "\n" + question + "\n\n" + r.styles.Help.Render("y confirmar · n cancelar")
}

func accountTitle(view navigation.ViewID) string {
	switch view {
	case navigation.ViewEditProfile:
		return "Editar perfil"
	case navigation.ViewChangePassword:
		return "Cambiar contraseña"
	default:
		return "Privacidad"
	}
}

// TypeList renders the type selector line
func TypeList(current domain.LocationType, styles *Styles) string {
	parts := make([]string, 0, len(domain.LocationTypes))
	for _, t := range domain.LocationTypes {
		label := string(t)
		if t == current {
			label = styles.Highlight.Render("[" + label + "]")
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " ")
}
