package focus

import "sync"

// Element is anything that can take keyboard focus
type Element interface {
	ID() string
	// Attached reports whether the element is currently part of the rendered tree
	Attached() bool
	Focus()
}

// Scheduler runs work on a later UI paint
type Scheduler interface {
	Defer(fn func())
}

// FrameScheduler queues deferred work until the UI calls Flush after painting
type FrameScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// NewFrameScheduler creates an empty scheduler
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

// Defer queues fn for the next Flush
func (f *FrameScheduler) Defer(fn func()) {
	f.mu.Lock()
	f.queue = append(f.queue, fn)
	f.mu.Unlock()
}

// Flush runs everything queued so far and returns how many functions ran.
// Work deferred while flushing waits for the next frame.
func (f *FrameScheduler) Flush() int {
	f.mu.Lock()
	queue := f.queue
	f.queue = nil
	f.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Pending returns the number of queued functions
func (f *FrameScheduler) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
