package geocode

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Search is one debounced forward search session, e.g. a search bar.
// Each Query supersedes the previous one: a pending debounce is dropped, an
// in-flight request is cancelled and any result it still produces is
// discarded. Only the result of the latest query is ever delivered.
type Search struct {
	p        *Pipeline
	debounce time.Duration

	mu      sync.Mutex
	token   uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool
	results chan Result
}

// NewSearch starts a search session
func (p *Pipeline) NewSearch() *Search {
	return &Search{
		p:        p,
		debounce: p.opts.Debounce,
		results:  make(chan Result, 1),
	}
}

// Results delivers the outcome of the latest query. An undelivered result is
// replaced by a newer one. The channel is closed by Close.
func (s *Search) Results() <-chan Result {
	return s.results
}

// Query schedules a search for text. Blank text clears the results at once
// without contacting the provider.
func (s *Search) Query(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.token++
	tok := s.token
	s.supersede()

	if isBlank(text) {
		s.deliver(Result{Query: text, Candidates: []Candidate{}})
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.run(tok, text) })
}

// Close stops the session and closes Results
func (s *Search) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.token++
	s.supersede()
	close(s.results)
}

// supersede drops the pending timer and in-flight request, mu held
func (s *Search) supersede() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Search) run(tok uint64, text string) {
	s.mu.Lock()
	if s.closed || tok != s.token {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.timer = nil
	s.mu.Unlock()

	candidates, err := s.p.provider.Forward(ctx, text)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || tok != s.token {
		return
	}
	s.cancel = nil
	if err != nil {
		s.p.log.WithError(err).WithField("query", text).Info("forward search failed")
		s.deliver(Result{Query: text, Err: err})
		return
	}
	s.deliver(Result{Query: text, Candidates: candidates})
}

// deliver replaces any unread result, mu held
func (s *Search) deliver(r Result) {
	select {
	case <-s.results:
	default:
	}
	s.results <- r
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
