package ui

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"geographia/internal/eventbus"
)

// ForwardedEvents are the bus events the model reacts to
var ForwardedEvents = []eventbus.EventType{
	eventbus.EventNavigated,
	eventbus.EventReset,
	eventbus.EventTypeChanged,
	eventbus.EventNotice,
	eventbus.EventLocationSaved,
}

// Forward delivers bus events to the program as EventMsg. Handlers never
// block the publisher; when the buffer is full the event is dropped and a
// resyncMsg follows the buffered events so the model reads the services
// again. The returned function unsubscribes and stops the delivery goroutine.
func Forward(bus eventbus.EventBus, send func(tea.Msg), log logrus.FieldLogger) func() {
	if log == nil {
		log = logrus.StandardLogger()
	}
	eventChan := make(chan eventbus.DomainEvent, 100)

	var mu sync.Mutex
	var dropped atomic.Bool
	closed := false
	enqueue := func(e eventbus.DomainEvent) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case eventChan <- e:
		default:
			dropped.Store(true)
			log.WithField("event", e.Type()).Warn("event channel full, dropping event")
		}
	}

	unsubs := make([]func(), 0, len(ForwardedEvents))
	for _, t := range ForwardedEvents {
		unsubs = append(unsubs, bus.Subscribe(t, enqueue))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range eventChan {
			send(EventMsg{Event: event})
			if dropped.CompareAndSwap(true, false) {
				send(resyncMsg{})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, unsub := range unsubs {
				unsub()
			}
			mu.Lock()
			closed = true
			close(eventChan)
			mu.Unlock()
			<-done
		})
	}
}
