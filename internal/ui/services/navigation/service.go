package navigation

import (
	"sync"

	"github.com/sirupsen/logrus"

	"geographia/internal/eventbus"
)

// Service is the overlay router. It owns the navigation state and publishes a
// NavigatedEvent with the full state after every transition, even when the
// state did not change.
type Service struct {
	mu       sync.Mutex
	registry Registry
	state    State
	applied  int
	bus      eventbus.EventBus
	log      logrus.FieldLogger
}

// NewService creates a router starting at the map with no overlays
func NewService(bus eventbus.EventBus, registry Registry, log logrus.FieldLogger) *Service {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		registry: registry,
		state:    InitialState(),
		bus:      bus,
		log:      log.WithField("component", "router"),
	}
}

// Open activates view in slot and combines params with the shared bag
func (s *Service) Open(slot SlotName, view ViewID, params Params, strategy MergeStrategy) error {
	return s.apply(Open{Slot: slot, View: view, Params: params, Strategy: strategy})
}

// Close empties slot. Params are left in place; callers reusing a key must
// overwrite or clear it themselves.
func (s *Service) Close(slot SlotName) error {
	return s.apply(Close{Slot: slot})
}

// ReplaceBothSlots sets both slots in one transition so no intermediate state
// with only one of them is ever emitted
func (s *Service) ReplaceBothSlots(popup, modal ViewID, params Params) error {
	return s.apply(ReplaceBoth{Popup: popup, Modal: modal, Params: params})
}

// Navigate moves to a primary path, dropping every overlay and param
func (s *Service) Navigate(path string) {
	// Navigate never fails
	_ = s.apply(Navigate{Path: path})
}

// NavigateURL replaces the whole state with the one encoded in raw
func (s *Service) NavigateURL(raw string) error {
	next, err := ParseURL(s.registry, raw)
	if err != nil {
		s.log.WithError(err).WithField("url", raw).Error("rejected navigation url")
		return err
	}

	s.mu.Lock()
	s.state = next
	s.applied++
	ev := NavigatedEvent{State: next.Clone(), Seq: s.applied}
	s.mu.Unlock()

	s.publish(ev)
	return nil
}

// CurrentState returns a snapshot of the navigation state
func (s *Service) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Latest returns the current state with its commit number
func (s *Service) Latest() NavigatedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return NavigatedEvent{State: s.state.Clone(), Seq: s.applied}
}

// URL returns the bookmarkable form of the current state
func (s *Service) URL() string {
	return FormatURL(s.CurrentState())
}

// Registry returns the registry the router validates against
func (s *Service) Registry() Registry {
	return s.registry
}

// Applied returns how many transitions have been committed
func (s *Service) Applied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Subscribe calls handler with the full state after every transition.
// Each call carries the authoritative state; handlers should drop anything
// derived from an earlier one. Transitions committed concurrently may be
// published out of order, so emissions older than the last delivered one are
// skipped.
func (s *Service) Subscribe(handler func(State)) func() {
	var mu sync.Mutex
	last := 0
	return s.bus.Subscribe(eventbus.EventNavigated, func(e eventbus.DomainEvent) {
		ev, ok := e.(NavigatedEvent)
		if !ok {
			return
		}
		mu.Lock()
		stale := ev.Seq <= last
		if !stale {
			last = ev.Seq
		}
		mu.Unlock()
		if !stale {
			handler(ev.State.Clone())
		}
	})
}

func (s *Service) apply(t Transition) error {
	s.mu.Lock()
	next, err := Reduce(s.registry, s.state, t)
	if err != nil {
		s.mu.Unlock()
		s.log.WithError(err).WithField("transition", t).Error("rejected navigation")
		return err
	}
	s.state = next
	s.applied++
	ev := NavigatedEvent{State: next.Clone(), Seq: s.applied}
	s.mu.Unlock()

	s.publish(ev)
	return nil
}

func (s *Service) publish(ev NavigatedEvent) {
	s.log.WithFields(logrus.Fields{"url": FormatURL(ev.State), "seq": ev.Seq}).Debug("navigated")
	s.bus.Publish(ev)
}
