package world

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
	"github.com/Faultbox/gridpath/pkg/pathfind"
)

// ErrNoPath is returned by MoveTo when the destination cannot be reached.
var ErrNoPath = errors.New("no path to destination")

// Agent is something that walks toward one destination at a time.
type Agent interface {
	Position() math.Vec3
	SetDestination(pos math.Vec3)
	HasDestination() bool
	ClearDestination()
}

// MovementController walks an Agent along a path, one waypoint at a time.
// When the map is updated while a path is being followed, a new path from
// the agent's position is requested on the next Update.
type MovementController struct {
	m     *navgrid.Map
	queue *pathfind.Queue
	opts  pathfind.Options
	agent Agent

	mu        sync.Mutex
	target    math.Vec3
	path      []math.Vec3
	pathIndex int
	pending   *pathfind.Path
	following bool

	stale       atomic.Bool
	unsubscribe func()
}

// NewMovementController creates a controller for agent on m. Re-paths go
// through queue, or pathfind.DefaultQueue when queue is nil.
func NewMovementController(m *navgrid.Map, queue *pathfind.Queue, opts pathfind.Options, agent Agent) *MovementController {
	if queue == nil {
		queue = pathfind.DefaultQueue
	}
	mc := &MovementController{m: m, queue: queue, opts: opts, agent: agent}
	mc.unsubscribe = m.OnUpdate(func() { mc.stale.Store(true) })
	return mc
}

// Close stops listening for map updates.
func (mc *MovementController) Close() {
	mc.unsubscribe()
}

// MoveTo searches a path from the agent to dest and starts following it.
func (mc *MovementController) MoveTo(dest math.Vec3) error {
	p, err := pathfind.FindPathImmediate(mc.m, mc.agent.Position(), dest, mc.opts)
	if err != nil {
		return err
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.target = dest
	mc.pending = nil
	if !mc.adopt(p) {
		return ErrNoPath
	}
	return nil
}

// Update advances the controller by one tick.
func (mc *MovementController) Update() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.pending != nil && mc.pending.IsReady() {
		p := mc.pending
		mc.pending = nil
		mc.adopt(p)
	}

	if mc.stale.Swap(false) && mc.following {
		p, err := mc.queue.RequestPath(mc.m, mc.agent.Position(), mc.target, mc.opts)
		if err == nil {
			mc.pending = p
		}
	}

	if !mc.following || mc.agent.HasDestination() {
		return
	}
	if mc.pathIndex < len(mc.path) {
		mc.setNextWaypoint()
	} else if mc.pending == nil {
		mc.following = false
	}
}

// adopt replaces the current path with p. The first waypoint is the agent's
// own cell and is skipped.
func (mc *MovementController) adopt(p *pathfind.Path) bool {
	waypoints, err := p.Waypoints()
	if err != nil || len(waypoints) == 0 {
		mc.clear()
		return false
	}
	mc.path = waypoints[1:]
	mc.pathIndex = 0
	mc.following = true
	mc.agent.ClearDestination()
	mc.setNextWaypoint()
	return true
}

// ClearPath stops the current path following.
func (mc *MovementController) ClearPath() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.clear()
}

func (mc *MovementController) clear() {
	mc.path = nil
	mc.pathIndex = 0
	mc.pending = nil
	mc.following = false
	mc.agent.ClearDestination()
}

// IsFollowingPath reports whether the agent still has waypoints to visit.
func (mc *MovementController) IsFollowingPath() bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.following
}

// Path returns the remaining waypoints, including the current one.
func (mc *MovementController) Path() []math.Vec3 {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.pathIndex == 0 {
		return append([]math.Vec3(nil), mc.path...)
	}
	return append([]math.Vec3(nil), mc.path[mc.pathIndex-1:]...)
}

// Repathing reports whether a replacement path is being searched.
func (mc *MovementController) Repathing() bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.pending != nil
}

func (mc *MovementController) setNextWaypoint() {
	if mc.pathIndex >= len(mc.path) {
		return
	}
	mc.agent.SetDestination(mc.path[mc.pathIndex])
	mc.pathIndex++
}

// CanWalkTo checks if the cell under pos is walkable.
func (mc *MovementController) CanWalkTo(pos math.Vec3) bool {
	if !mc.m.InBounds(pos) {
		return false
	}
	n := mc.m.Node(mc.m.PositionToIndexFloor(pos))
	return n != nil && n.Walkable
}
