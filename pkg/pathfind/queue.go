package pathfind

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/eapache/queue.v1"

	"github.com/Faultbox/gridpath/internal/logger"
	"github.com/Faultbox/gridpath/internal/metrics"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// Queue runs path requests one at a time, in the order they were added, on
// a background worker. The worker starts with the first request and exits
// once the queue is empty.
type Queue struct {
	// Scheduler receives completion of searches run by the worker. With a
	// nil Scheduler completion is delivered on the worker goroutine.
	Scheduler Scheduler

	mu      sync.Mutex
	pending *queue.Queue
	running bool
}

// NewQueue returns an empty queue that delivers completions through s.
func NewQueue(s Scheduler) *Queue {
	return &Queue{Scheduler: s, pending: queue.New()}
}

// DefaultQueue serves the package-level RequestPath.
var DefaultQueue = NewQueue(nil)

// RequestPath queues a search on DefaultQueue.
func RequestPath(m *navgrid.Map, start, end math.Vec3, opts Options) (*Path, error) {
	return DefaultQueue.RequestPath(m, start, end, opts)
}

// RequestPath queues a search between two world positions and returns a
// pending Path. ErrOutOfBounds is returned, and nothing is queued, when
// either position is outside the map.
func (q *Queue) RequestPath(m *navgrid.Map, start, end math.Vec3, opts Options) (*Path, error) {
	if !m.InBounds(start) || !m.InBounds(end) {
		return nil, fmt.Errorf("%w: %v -> %v outside %v..%v", navgrid.ErrOutOfBounds, start, end, m.Start(), m.End())
	}
	return q.RequestCells(m, m.PositionToIndexFloor(start), m.PositionToIndexFloor(end), opts), nil
}

// RequestCells queues a search between two cells.
func (q *Queue) RequestCells(m *navgrid.Map, from, to navgrid.Coordinate, opts Options) *Path {
	var p *Path
	req := NewRequest(m, from, to, opts, func(res Result, deferred bool) {
		if deferred && q.Scheduler != nil {
			q.Scheduler.Schedule(func() { p.complete(res) })
			return
		}
		p.complete(res)
	})
	p = newPath(req)
	q.enqueue(req)
	return p
}

func (q *Queue) enqueue(req *Request) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = queue.New()
	}
	q.pending.Add(req)
	metrics.SetQueueLength(q.pending.Length())
	if !q.running {
		q.running = true
		go q.work()
	}
}

func (q *Queue) work() {
	log := logger.Named("queue")
	log.Debug("worker started")
	served := 0
	for {
		q.mu.Lock()
		if q.pending.Length() == 0 {
			q.running = false
			q.mu.Unlock()
			log.Debug("worker stopped", zap.Int("served", served))
			return
		}
		req := q.pending.Remove().(*Request)
		metrics.SetQueueLength(q.pending.Length())
		q.mu.Unlock()

		// A request forced by its owner is skipped.
		if req.build(true) == builtHere {
			served++
		}
	}
}

// Len returns the number of requests not yet taken by the worker.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		return 0
	}
	return q.pending.Length()
}

// Running reports whether the worker goroutine is alive.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}
