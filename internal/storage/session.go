package storage

import (
	"fmt"

	"geographia/internal/domain"
)

// MaxRecentSearches bounds the recent search list
const MaxRecentSearches = 5

// Session combines both scopes the way the client uses them: the token is
// looked up in the session scope first and the durable scope second.
type Session struct {
	session Store
	durable Store
}

// NewSession creates a session over the two stores
func NewSession(session, durable Store) *Session {
	return &Session{session: session, durable: durable}
}

// Token returns the bearer token, or "" when logged out
func (s *Session) Token() string {
	var token string
	if ok, err := s.session.Get(KeyToken, &token); err == nil && ok && token != "" {
		return token
	}
	if ok, err := s.durable.Get(KeyToken, &token); err == nil && ok {
		return token
	}
	return ""
}

// HasToken reports whether a token is stored in either scope
func (s *Session) HasToken() bool {
	return s.Token() != ""
}

// SaveToken stores token. remember keeps it beyond the session.
func (s *Session) SaveToken(token string, remember bool) error {
	if remember {
		return s.durable.Set(KeyToken, token)
	}
	return s.session.Set(KeyToken, token)
}

// Logout removes the token from both scopes and the session markers
func (s *Session) Logout() error {
	for _, err := range []error{
		s.session.Remove(KeyToken),
		s.session.Remove(KeyLocationSent),
		s.durable.Remove(KeyToken),
	} {
		if err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	return nil
}

// LocationSent reports whether the device address was already shared this session
func (s *Session) LocationSent() bool {
	var sent bool
	ok, err := s.session.Get(KeyLocationSent, &sent)
	return err == nil && ok && sent
}

// MarkLocationSent records that the device address was shared
func (s *Session) MarkLocationSent() error {
	return s.session.Set(KeyLocationSent, true)
}

// RecentSearches returns the durable recent search list, newest first
func (s *Session) RecentSearches() ([]domain.Location, error) {
	var recents []domain.Location
	if _, err := s.durable.Get(KeyRecentSearches, &recents); err != nil {
		return nil, err
	}
	return recents, nil
}

// AddRecentSearch moves loc to the front, dropping older entries past the limit
func (s *Session) AddRecentSearch(loc domain.Location) error {
	recents, err := s.RecentSearches()
	if err != nil {
		// A corrupt list is replaced rather than blocking the search
		recents = nil
	}
	out := make([]domain.Location, 0, MaxRecentSearches)
	out = append(out, loc)
	for _, r := range recents {
		if r.ID == loc.ID {
			continue
		}
		if len(out) == MaxRecentSearches {
			break
		}
		out = append(out, r)
	}
	return s.durable.Set(KeyRecentSearches, out)
}

// RemoveRecentSearch drops the location with id, e.g. after it was deleted
func (s *Session) RemoveRecentSearch(id int) error {
	recents, err := s.RecentSearches()
	if err != nil || len(recents) == 0 {
		return err
	}
	out := recents[:0]
	for _, r := range recents {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return s.durable.Set(KeyRecentSearches, out)
}
