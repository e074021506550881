package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventNavigated     EventType = "Navigated"
	EventReset         EventType = "Reset"
	EventTypeChanged   EventType = "TypeChanged"
	EventNotice        EventType = "Notice"
	EventLocationSaved EventType = "LocationSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// ResetEvent tells mounted views that data they cached may be stale.
// It carries nothing but the emission time.
type ResetEvent struct {
	At time.Time
}

func (e ResetEvent) Type() EventType { return EventReset }

// TypeChangedEvent is emitted whenever the selected map type is set. Seq
// orders the emissions of one holder.
type TypeChangedEvent struct {
	Current LocationType
	Seq     int
}

func (e TypeChangedEvent) Type() EventType { return EventTypeChanged }

// NoticeLevel is the style of a transient notification
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

// NoticeEvent asks the UI to show a transient notification
type NoticeEvent struct {
	Level   NoticeLevel
	Title   string
	Message string
}

func (e NoticeEvent) Type() EventType { return EventNotice }

// LocationSavedEvent is emitted after the device address was stored for the session
type LocationSavedEvent struct {
	Address string
}

func (e LocationSavedEvent) Type() EventType { return EventLocationSaved }
