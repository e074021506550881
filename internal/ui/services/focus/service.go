package focus

import (
	"sync"

	"github.com/sirupsen/logrus"

	"geographia/internal/ui/services/navigation"
)

// Service moves keyboard focus into overlays when they open and back out
// when they close
type Service struct {
	mu       sync.Mutex
	sched    Scheduler
	fallback Element
	focused  Element
	saved    map[navigation.SlotName]Element
	log      logrus.FieldLogger
}

// NewService creates a focus coordinator. fallback receives focus whenever the
// element to restore is gone.
func NewService(sched Scheduler, fallback Element, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		sched:    sched,
		fallback: fallback,
		focused:  fallback,
		saved:    make(map[navigation.SlotName]Element),
		log:      log.WithField("component", "focus"),
	}
}

// Focused returns the element currently holding focus
func (s *Service) Focused() Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// SetFocused records a focus change made outside the coordinator
func (s *Service) SetFocused(el Element) {
	s.mu.Lock()
	s.focused = el
	s.mu.Unlock()
}

// OnOverlayOpened remembers what had focus before slot opened and moves focus
// to el on the next paint, once el is part of the rendered tree
func (s *Service) OnOverlayOpened(slot navigation.SlotName, el Element) {
	s.mu.Lock()
	// Swapping the view inside an open slot keeps the original focus to return to
	if _, ok := s.saved[slot]; !ok {
		s.saved[slot] = s.focused
	}
	s.mu.Unlock()

	s.sched.Defer(func() {
		if el == nil || !el.Attached() {
			s.log.WithField("slot", slot).Debug("overlay element gone before paint, focus not moved")
			return
		}
		el.Focus()
		s.SetFocused(el)
	})
}

// OnOverlayClosed gives focus back to previous, or to the default target if
// previous no longer exists. It returns the element that received focus.
func (s *Service) OnOverlayClosed(previous Element) Element {
	target := previous
	if target == nil || !target.Attached() {
		target = s.fallback
	}
	if target == nil {
		return nil
	}
	target.Focus()
	s.SetFocused(target)
	return target
}

// RestoreSlot restores the focus remembered when slot was opened
func (s *Service) RestoreSlot(slot navigation.SlotName) Element {
	s.mu.Lock()
	prev := s.saved[slot]
	delete(s.saved, slot)
	s.mu.Unlock()
	return s.OnOverlayClosed(prev)
}

// Forget drops every remembered element, e.g. after navigating away from the map
func (s *Service) Forget() {
	s.mu.Lock()
	s.saved = make(map[navigation.SlotName]Element)
	s.mu.Unlock()
}

// Closer is the part of the router the escape handler needs
type Closer interface {
	CurrentState() navigation.State
	Close(slot navigation.SlotName) error
}

// HandleEscape closes the topmost open overlay, leaving other slots alone,
// and restores focus. It reports which slot was closed.
func (s *Service) HandleEscape(c Closer) (navigation.SlotName, bool, error) {
	slot, ok := c.CurrentState().Topmost()
	if !ok {
		return "", false, nil
	}
	if err := c.Close(slot); err != nil {
		return slot, false, err
	}
	s.RestoreSlot(slot)
	return slot, true, nil
}
