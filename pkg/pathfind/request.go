package pathfind

import (
	"sync"

	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// RequestState tracks a queued search.
type RequestState int

const (
	RequestPending RequestState = iota
	RequestRunning
	RequestDone
)

// String returns the state name.
func (s RequestState) String() string {
	switch s {
	case RequestPending:
		return "pending"
	case RequestRunning:
		return "running"
	case RequestDone:
		return "done"
	default:
		return "unknown"
	}
}

// Request is a search waiting in a Queue. It runs at most once, either on
// the queue worker or on a goroutine that forces it.
type Request struct {
	Map     *navgrid.Map
	Start   navgrid.Coordinate
	End     navgrid.Coordinate
	Options Options

	// onDone receives the result on the goroutine that ran the search.
	// deferred is true when the queue worker ran it.
	onDone func(res Result, deferred bool)

	mu       sync.Mutex
	state    RequestState
	result   Result
	finished chan struct{}
}

// NewRequest returns a pending request. onDone may be nil.
func NewRequest(m *navgrid.Map, start, end navgrid.Coordinate, opts Options, onDone func(res Result, deferred bool)) *Request {
	opts.Disallowed = append([]navgrid.Coordinate(nil), opts.Disallowed...)
	return &Request{
		Map:      m,
		Start:    start,
		End:      end,
		Options:  opts,
		onDone:   onDone,
		finished: make(chan struct{}),
	}
}

// State returns the current state.
func (r *Request) State() RequestState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Result returns the search result once the request is done.
func (r *Request) Result() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.state == RequestDone
}

// Done is closed when the search has finished.
func (r *Request) Done() <-chan struct{} {
	return r.finished
}

type buildOutcome int

const (
	builtHere buildOutcome = iota
	builtElsewhere
	alreadyBuilt
)

// build runs the search if nobody has claimed it yet. When another goroutine
// is running it, build waits for it to finish.
func (r *Request) build(deferred bool) buildOutcome {
	r.mu.Lock()
	switch r.state {
	case RequestDone:
		r.mu.Unlock()
		return alreadyBuilt
	case RequestRunning:
		r.mu.Unlock()
		<-r.finished
		return builtElsewhere
	}
	r.state = RequestRunning
	r.mu.Unlock()

	res := FindPathCells(r.Map, r.Start, r.End, r.Options)

	r.mu.Lock()
	r.result = res
	r.state = RequestDone
	r.mu.Unlock()
	close(r.finished)

	if r.onDone != nil {
		r.onDone(res, deferred)
	}
	return builtHere
}
