package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the key bindings of the map screen
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Search  key.Binding
	Add     key.Binding
	List    key.Binding
	Type    key.Binding
	Rate    key.Binding
	Delete  key.Binding
	Comment key.Binding
	Profile key.Binding
	Session key.Binding
	// Profile menu
	EditProfile    key.Binding
	ChangePassword key.Binding
	Privacy        key.Binding
	DeleteAccount  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Close   key.Binding
	Score   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "arriba")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "abajo")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "abrir")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "agregar")),
		List:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "listar")),
		Type:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tipo de mapa")),
		Rate:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "calificar")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "eliminar")),
		Comment: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comentar")),
		Profile: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "perfil")),
		Session: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "cerrar sesión")),

		EditProfile:    key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "editar perfil")),
		ChangePassword: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "cambiar contraseña")),
		Privacy:        key.NewBinding(key.WithKeys("V"), key.WithHelp("V", "privacidad")),
		DeleteAccount:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "eliminar cuenta")),

		Confirm: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirmar")),
		Cancel:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancelar")),
		Close:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cerrar")),
		Score:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "puntaje")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "ayuda")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "salir")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Open, k.Add, k.List, k.Type, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Search},
		{k.Add, k.List, k.Type, k.Session},
		{k.Comment, k.Rate, k.Profile, k.Delete},
		{k.Score, k.Confirm, k.Cancel, k.Close},
		{k.EditProfile, k.ChangePassword, k.Privacy, k.DeleteAccount},
		{k.Help, k.Quit},
	}
}
