package ui

import (
	"time"

	"geographia/internal/api"
	"geographia/internal/domain"
	"geographia/internal/eventbus"
	"geographia/internal/geocode"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// resyncMsg is sent after forwarded events had to be dropped
type resyncMsg struct{}

// frameMsg is sent once the frame after a focus request was painted
type frameMsg time.Time

// locationsMsg carries the result of loading every location
type locationsMsg struct {
	locations []domain.Location
	err       error
}

// detailMsg carries the popup content of a location
type detailMsg struct {
	id     int
	detail *api.LocationDetail
	err    error
}

// profileMsg carries the profile shown in the profile resume modal
type profileMsg struct {
	userID int
	user   *domain.User
	err    error
}

// addressMsg carries the reverse geocoded address of the add location point
type addressMsg struct {
	addr geocode.Address
}

// searchMsg carries a geocoding result from the search session
type searchMsg struct {
	result geocode.Result
}

// matchesMsg carries backend locations matching the search text
type matchesMsg struct {
	query     string
	locations []domain.Location
	err       error
}

// commentMsg is the outcome of posting a comment
type commentMsg struct {
	comment *domain.Comment
	err     error
}

// flowMsg is the outcome of a coordinator flow run in the background
type flowMsg struct {
	name string
	err  error
}

// noticeExpiredMsg hides the notification with the given sequence number
type noticeExpiredMsg struct {
	seq int
}
