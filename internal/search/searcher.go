package search

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a query is run.
const DefaultDebounce = 300 * time.Millisecond

// Token identifies one issued search.
type Token uint64

// Searcher guards against stale results: only the most recently issued
// search may deliver. Issuing a new search cancels the previous one.
type Searcher struct {
	mu     sync.Mutex
	latest Token
	cancel context.CancelFunc
}

// Begin issues a new search and returns its context and token. The context
// of the previous search is cancelled.
func (s *Searcher) Begin(parent context.Context) (context.Context, Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.latest++
	return ctx, s.latest
}

// Accept reports whether results for token may still be delivered.
func (s *Searcher) Accept(token Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.latest
}

// Latest returns the most recently issued token.
func (s *Searcher) Latest() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Reset invalidates any in-flight search.
func (s *Searcher) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.latest++
}

// Debouncer runs only the last of a burst of calls, once the quiet period
// has elapsed without another call.
type Debouncer struct {
	delay time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger schedules fn, replacing any call still waiting.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop drops a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
