package maptype

import (
	"sync"

	"github.com/sirupsen/logrus"

	"geographia/internal/domain"
	"geographia/internal/eventbus"
)

// Service holds the selected map type. Unlike the reset channel it is a state
// holder: new subscribers immediately receive the current value.
type Service struct {
	mu      sync.RWMutex
	current domain.LocationType
	seq     int
	bus     eventbus.EventBus
	log     logrus.FieldLogger
}

// NewService creates the service initialised to the default type
func NewService(bus eventbus.EventBus, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		current: domain.TypeDefault,
		bus:     bus,
		log:     log.WithField("component", "maptype"),
	}
}

// SetCurrentType validates and stores t, then emits it to every subscriber.
// An invalid value is rejected and the stored type stays as it was.
func (s *Service) SetCurrentType(t domain.LocationType) error {
	if !t.Valid() {
		err := &domain.InvalidTypeError{Value: string(t)}
		s.log.WithError(err).Error("rejected map type")
		return err
	}

	s.mu.Lock()
	s.current = t
	s.seq++
	ev := domain.TypeChangedEvent{Current: t, Seq: s.seq}
	s.mu.Unlock()

	s.bus.Publish(ev)
	return nil
}

// CurrentType returns the stored type
func (s *Service) CurrentType() domain.LocationType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe calls handler with the current type right away and then with
// every later change. A value older than one already delivered is skipped,
// so the last call always carries the stored type.
func (s *Service) Subscribe(handler func(domain.LocationType)) func() {
	sub := &subscriber{handler: handler, last: -1}

	s.mu.RLock()
	replay := domain.TypeChangedEvent{Current: s.current, Seq: s.seq}
	unsub := s.bus.Subscribe(domain.EventTypeChanged, func(e eventbus.DomainEvent) {
		if ev, ok := e.(domain.TypeChangedEvent); ok {
			sub.deliver(ev)
		}
	})
	s.mu.RUnlock()

	sub.deliver(replay)
	return unsub
}

// Cycle selects the type following the current one
func (s *Service) Cycle() domain.LocationType {
	next := Next(s.CurrentType())
	// Next only returns members of the enumeration
	_ = s.SetCurrentType(next)
	return next
}

// subscriber serialises the replay and the bus deliveries of one handler.
// A delivery arriving while the handler runs is queued and handled by the
// goroutine already draining.
type subscriber struct {
	mu       sync.Mutex
	handler  func(domain.LocationType)
	last     int
	pending  []domain.TypeChangedEvent
	draining bool
}

func (sub *subscriber) deliver(ev domain.TypeChangedEvent) {
	sub.mu.Lock()
	sub.pending = append(sub.pending, ev)
	if sub.draining {
		sub.mu.Unlock()
		return
	}
	sub.draining = true
	sub.mu.Unlock()

	finished := false
	defer func() {
		// a panicking handler must not leave the queue owned
		if !finished {
			sub.mu.Lock()
			sub.draining = false
			sub.mu.Unlock()
		}
	}()

	for {
		sub.mu.Lock()
		if len(sub.pending) == 0 {
			sub.draining = false
			finished = true
			sub.mu.Unlock()
			return
		}
		next := sub.pending[0]
		sub.pending = sub.pending[1:]
		if next.Seq <= sub.last {
			sub.mu.Unlock()
			continue
		}
		sub.last = next.Seq
		sub.mu.Unlock()

		sub.handler(next.Current)
	}
}
