package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"geographia/internal/domain"
	"geographia/internal/geocode"
)

func (m *Model) loadLocations() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		locs, err := backend.Locations(ctx)
		return locationsMsg{locations: locs, err: err}
	}
}

// loadDetail fetches the popup content of id. keep leaves the current
// content on screen until the new one arrives.
func (m *Model) loadDetail(id int, keep bool) tea.Cmd {
	if id != m.detailID || !keep {
		m.detail = nil
		m.commentCursor = 0
	}
	m.detailID = id
	m.detailErr = ""

	ctx, coord := m.ctx, m.coord
	return func() tea.Msg {
		d, err := coord.LoadLocationDetail(ctx, id)
		return detailMsg{id: id, detail: d, err: err}
	}
}

func (m *Model) loadProfile(userID int) tea.Cmd {
	m.profileID = userID
	m.profile = nil
	ctx, backend := m.ctx, m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		u, err := backend.Profile(ctx, userID)
		return profileMsg{userID: userID, user: u, err: err}
	}
}

func (m *Model) lookupAddress(lat, lng float64) tea.Cmd {
	ctx, pipeline := m.ctx, m.coord.Geocode
	if pipeline == nil {
		return nil
	}
	return func() tea.Msg {
		return addressMsg{addr: pipeline.ReverseLookup(ctx, lat, lng)}
	}
}

func (m *Model) searchLocations(query string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		locs, err := backend.SearchLocations(ctx, query)
		return matchesMsg{query: query, locations: locs, err: err}
	}
}

// flow runs a coordinator flow off the update loop
func (m *Model) flow(name string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return flowMsg{name: name, err: fn(ctx)}
	}
}

// deleteAccount removes the account and ends the session
func (m *Model) deleteAccount() tea.Cmd {
	backend, coord := m.backend, m.coord
	return m.flow("delete account", func(ctx context.Context) error {
		if err := backend.DeleteAccount(ctx); err != nil {
			coord.Notice(err)
			return err
		}
		if err := coord.Logout(); err != nil {
			return err
		}
		coord.Notify(domain.NoticeSuccess, "Cuenta eliminada", "")
		return nil
	})
}

// waitForSearch delivers the next result of a search session
func waitForSearch(results <-chan geocode.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return nil
		}
		return searchMsg{result: r}
	}
}

func isBlankQuery(q string) bool {
	return strings.TrimSpace(q) == ""
}
