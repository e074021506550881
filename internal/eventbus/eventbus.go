package eventbus

import (
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"geographia/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventNavigated     = domain.EventNavigated
	EventReset         = domain.EventReset
	EventTypeChanged   = domain.EventTypeChanged
	EventNotice        = domain.EventNotice
	EventLocationSaved = domain.EventLocationSaved
)

// Re-export domain event types
type ResetEvent = domain.ResetEvent
type TypeChangedEvent = domain.TypeChangedEvent
type NoticeEvent = domain.NoticeEvent
type LocationSavedEvent = domain.LocationSavedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// delivery is an event together with the subscribers registered when it was published
type delivery struct {
	event DomainEvent
	subs  []subscription
}

// bus is the concrete implementation of EventBus.
//
// Handlers run synchronously in the publishing goroutine. An event published
// while another one is being delivered is queued and delivered right after,
// so every subscriber sees events in publish order.
type bus struct {
	mu          sync.Mutex
	log         logrus.FieldLogger
	handlers    map[EventType][]subscription
	active      map[uint64]bool
	nextID      uint64
	queue       []delivery
	dispatching bool
}

// New creates a new event bus
func New(log logrus.FieldLogger) EventBus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &bus{
		log:      log.WithField("component", "eventbus"),
		handlers: make(map[EventType][]subscription),
		active:   make(map[uint64]bool),
	}
}

// Publish delivers an event to every handler subscribed to its type.
// Subscribers added after Publish returns never see the event.
func (b *bus) Publish(event DomainEvent) {
	b.mu.Lock()
	subs := make([]subscription, len(b.handlers[event.Type()]))
	copy(subs, b.handlers[event.Type()])
	b.queue = append(b.queue, delivery{event: event, subs: subs})
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true

	for len(b.queue) > 0 {
		d := b.queue[0]
		b.queue = b.queue[1:]
		b.mu.Unlock()
		b.dispatch(d)
		b.mu.Lock()
	}
	b.dispatching = false
	b.mu.Unlock()
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})
	b.active[id] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.active, id)
			handlers := b.handlers[eventType]
			for i, s := range handlers {
				if s.id == id {
					b.handlers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
					break
				}
			}
		})
	}
}

// dispatch calls each handler, isolating panics so one faulty subscriber
// cannot keep the others from running
func (b *bus) dispatch(d delivery) {
	for _, s := range d.subs {
		if !b.isActive(s.id) {
			continue
		}
		b.call(s.handler, d.event)
	}
}

func (b *bus) call(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{
				"event": event.Type(),
				"panic": r,
			}).Errorf("event handler panic\n%s", debug.Stack())
		}
	}()
	h(event)
}

func (b *bus) isActive(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active[id]
}
