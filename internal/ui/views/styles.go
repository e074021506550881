package views

import (
	"github.com/charmbracelet/lipgloss"

	"geographia/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Header        lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Search        lipgloss.Style
	SearchFocused lipgloss.Style
	Popup         lipgloss.Style
	Modal         lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Highlight     lipgloss.Style
	SelectionBg   lipgloss.Style
	Rating        lipgloss.Style
	CommentAuthor lipgloss.Style
	NoticeSuccess lipgloss.Style
	NoticeInfo    lipgloss.Style
	NoticeError   lipgloss.Style
	Danger        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Header: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Dim:    lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Search: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		SearchFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2).
			Width(64),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 2).
			Width(48),
		Help:          lipgloss.NewStyle().Faint(true),
		Main:          lipgloss.NewStyle().Padding(1, 2),
		Highlight:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		SelectionBg:   lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Rating:        lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		CommentAuthor: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		NoticeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		NoticeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		NoticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Danger:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
}

// TypeColor returns the marker color of a location type
func TypeColor(t domain.LocationType) string {
	switch t {
	case domain.TypeRural:
		return "78" // green
	case domain.TypeGeographic:
		return "33" // blue
	case domain.TypeHistoric:
		return "214" // yellow
	default:
		return "252"
	}
}

// NoticeStyle returns the style of a notification level
func (s *Styles) NoticeStyle(level domain.NoticeLevel) lipgloss.Style {
	switch level {
	case domain.NoticeSuccess:
		return s.NoticeSuccess
	case domain.NoticeError:
		return s.NoticeError
	default:
		return s.NoticeInfo
	}
}
