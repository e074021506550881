// Package reset broadcasts "data changed elsewhere" signals to mounted views.
//
// Delivery is never buffered: a view that subscribes after a reset was
// emitted does not receive it and is expected to fetch fresh data on mount.
package reset

import (
	"time"

	"geographia/internal/domain"
	"geographia/internal/eventbus"
)

// Channel is the reset broadcast point
type Channel struct {
	bus eventbus.EventBus
	now func() time.Time
}

// NewChannel creates a reset channel on top of bus
func NewChannel(bus eventbus.EventBus) *Channel {
	return &Channel{bus: bus, now: time.Now}
}

// EmitReset notifies every current subscriber once
func (c *Channel) EmitReset() {
	c.bus.Publish(domain.ResetEvent{At: c.now()})
}

// Subscribe registers handler for every future reset and returns its cancel function
func (c *Channel) Subscribe(handler func(domain.ResetEvent)) func() {
	return c.bus.Subscribe(domain.EventReset, func(e eventbus.DomainEvent) {
		if ev, ok := e.(domain.ResetEvent); ok {
			handler(ev)
		}
	})
}
