package pathfind

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

var (
	// ErrInvalidState is returned when a result is read before the path is ready.
	ErrInvalidState = errors.New("pathfind: path is not ready")
	// ErrAlreadyBuilt is returned when forcing a request that already ran.
	ErrAlreadyBuilt = errors.New("pathfind: path already built")
)

// Path is a handle on a search result. Immediate paths are ready on return;
// queued paths become ready when their completion is delivered.
type Path struct {
	req *Request

	mu        sync.Mutex
	ready     bool
	result    Result
	observers []func(*Path)
	readyCh   chan struct{}
}

func newPath(req *Request) *Path {
	return &Path{req: req, readyCh: make(chan struct{})}
}

// FindPathImmediate searches on the calling goroutine and returns a ready
// Path. ErrOutOfBounds is returned when start or end is outside the map.
func FindPathImmediate(m *navgrid.Map, start, end math.Vec3, opts Options) (*Path, error) {
	res, err := FindPath(m, start, end, opts)
	if err != nil {
		return nil, err
	}
	p := newPath(nil)
	p.complete(res)
	return p, nil
}

// complete makes the path ready and runs its observers. Later calls are
// ignored.
func (p *Path) complete(res Result) {
	p.mu.Lock()
	if p.ready {
		p.mu.Unlock()
		return
	}
	p.ready = true
	p.result = res
	observers := p.observers
	p.observers = nil
	close(p.readyCh)
	p.mu.Unlock()

	for _, fn := range observers {
		fn(p)
	}
}

// IsReady reports whether the result is available.
func (p *Path) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Request returns the queued request behind the path, or nil for an
// immediate path.
func (p *Path) Request() *Request {
	return p.req
}

func (p *Path) readyResult() (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready {
		return Result{}, ErrInvalidState
	}
	return p.result, nil
}

// Valid reports whether a route was found.
func (p *Path) Valid() (bool, error) {
	res, err := p.readyResult()
	return res.Found, err
}

// Len returns the number of waypoints, zero when no route was found.
func (p *Path) Len() (int, error) {
	res, err := p.readyResult()
	return len(res.Waypoints), err
}

// At returns waypoint i, counted from the start.
func (p *Path) At(i int) (math.Vec3, error) {
	res, err := p.readyResult()
	if err != nil {
		return math.Vec3{}, err
	}
	if i < 0 || i >= len(res.Waypoints) {
		return math.Vec3{}, fmt.Errorf("%w: waypoint %d of %d", navgrid.ErrIndexOutOfRange, i, len(res.Waypoints))
	}
	return res.Waypoints[i], nil
}

// Waypoints returns a copy of the waypoints from start to end.
func (p *Path) Waypoints() ([]math.Vec3, error) {
	res, err := p.readyResult()
	if err != nil {
		return nil, err
	}
	return append([]math.Vec3(nil), res.Waypoints...), nil
}

// Cost returns the accumulated G cost of the end node.
func (p *Path) Cost() (float32, error) {
	res, err := p.readyResult()
	return res.Cost, err
}

// Result returns the full search result.
func (p *Path) Result() (Result, error) {
	return p.readyResult()
}

// OnBuilt registers fn to run when the path becomes ready. If it already is,
// fn runs immediately on the caller.
func (p *Path) OnBuilt(fn func(*Path)) {
	p.mu.Lock()
	if !p.ready {
		p.observers = append(p.observers, fn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	fn(p)
}

// Wait blocks until the path is ready or ctx is done.
func (p *Path) Wait(ctx context.Context) error {
	select {
	case <-p.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ForceBuild runs a still-pending queued request on the calling goroutine
// and makes the path ready before returning. If the queue worker is already
// running it, ForceBuild waits for that search instead. ErrAlreadyBuilt is
// returned when the path is ready or its request has finished.
func (p *Path) ForceBuild() error {
	if p.req == nil || p.IsReady() {
		return ErrAlreadyBuilt
	}
	switch p.req.build(false) {
	case alreadyBuilt:
		return ErrAlreadyBuilt
	case builtElsewhere:
		res, _ := p.req.Result()
		p.complete(res)
	}
	return nil
}
