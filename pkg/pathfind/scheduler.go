package pathfind

import "sync"

// Scheduler defers a callback to the next cycle of a cooperative loop, such
// as a game tick. Schedule must run fn exactly once.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func())

// Schedule calls f.
func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// TickScheduler collects callbacks and runs them on the next Tick.
// Callbacks scheduled while a tick is running wait for the following one.
type TickScheduler struct {
	mu      sync.Mutex
	pending []func()
}

// NewTickScheduler returns an empty TickScheduler.
func NewTickScheduler() *TickScheduler {
	return &TickScheduler{}
}

// Schedule queues fn for the next Tick.
func (s *TickScheduler) Schedule(fn func()) {
	s.mu.Lock()
	s.pending = append(s.pending, fn)
	s.mu.Unlock()
}

// Tick runs the callbacks queued before it started and returns how many ran.
func (s *TickScheduler) Tick() int {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Pending returns the number of callbacks waiting for the next Tick.
func (s *TickScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
