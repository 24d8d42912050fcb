package navgrid

import (
	stdmath "math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Faultbox/gridpath/pkg/math"
)

// Map owns a fixed-size grid of nodes plus the scratch arrays a search needs.
//
// The node grid and both scratch arrays are guarded by the map lock. Readers
// that only need static fields after generation may skip it; anything that
// writes to nodes must hold it.
type Map struct {
	cfg    Config
	tilesX int
	tilesY int

	nodes  []Node
	open   []int // 1-indexed binary heap of node offsets
	closed []int

	mu   sync.Mutex
	busy atomic.Bool

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

// NewMap allocates a map for cfg. The config is copied and normalized; every
// node starts non-walkable at DefaultDepth with zero cost.
func NewMap(cfg Config) (*Map, error) {
	c := cfg.Clone()
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	tx, ty := c.TilesX(), c.TilesY()
	m := &Map{
		cfg:    c,
		tilesX: tx,
		tilesY: ty,
		nodes:  make([]Node, tx*ty),
		open:   make([]int, tx*ty+1),
		closed: make([]int, tx*ty),
		subs:   make(map[int]func()),
	}
	for y := 0; y < ty; y++ {
		for x := 0; x < tx; x++ {
			idx := Coordinate{X: x, Y: y}
			m.nodes[y*tx+x] = NewNode(idx, m.CellPosition(idx, c.DefaultDepth))
		}
	}
	return m, nil
}

// TilesX returns the number of columns.
func (m *Map) TilesX() int { return m.tilesX }

// TilesY returns the number of rows.
func (m *Map) TilesY() int { return m.tilesY }

// Len returns the number of nodes.
func (m *Map) Len() int { return len(m.nodes) }

// Config returns a copy of the normalized config the map was built from.
func (m *Map) Config() Config { return m.cfg.Clone() }

// ConfigRef returns the map's own config. Callers must not modify it.
func (m *Map) ConfigRef() *Config { return &m.cfg }

// Start returns the lower world-space corner, MinDepth on the depth axis.
func (m *Map) Start() math.Vec3 {
	return m.cfg.WorldPoint(m.cfg.Start, m.cfg.MinDepth)
}

// End returns the upper world-space corner, MaxDepth on the depth axis.
func (m *Map) End() math.Vec3 {
	return m.cfg.WorldPoint(m.cfg.End, m.cfg.MaxDepth)
}

// CellPosition returns the world position of a cell's origin at depth.
func (m *Map) CellPosition(c Coordinate, depth float32) math.Vec3 {
	plane := math.Vec2{
		X: m.cfg.Start.X + m.cfg.CellSize.X*float32(c.X),
		Y: m.cfg.Start.Y + m.cfg.CellSize.Y*float32(c.Y),
	}
	return m.cfg.WorldPoint(plane, depth)
}

// InBounds reports whether pos lies inside the map extent on the grid plane.
// Depth is ignored.
func (m *Map) InBounds(pos math.Vec3) bool {
	p := m.cfg.PlanePoint(pos)
	return p.X >= m.cfg.Start.X && p.X <= m.cfg.End.X &&
		p.Y >= m.cfg.Start.Y && p.Y <= m.cfg.End.Y
}

// InBoundsDepth is InBounds plus a MinDepth..MaxDepth check on the depth axis.
func (m *Map) InBoundsDepth(pos math.Vec3) bool {
	if !m.InBounds(pos) {
		return false
	}
	d := pos.Axis(m.cfg.DepthAxis())
	return d >= m.cfg.MinDepth && d <= m.cfg.MaxDepth
}

// Contains reports whether c addresses a cell of the grid.
func (m *Map) Contains(c Coordinate) bool {
	return c.X >= 0 && c.X < m.tilesX && c.Y >= 0 && c.Y < m.tilesY
}

// PositionToIndexFloor maps a world position to the cell whose origin is at
// or below it on each plane axis. The result is not clamped.
func (m *Map) PositionToIndexFloor(pos math.Vec3) Coordinate {
	qx, qy := m.quotients(pos)
	return Coordinate{X: int(stdmath.Floor(qx)), Y: int(stdmath.Floor(qy))}
}

// PositionToIndexCeil maps a world position to the cell whose origin is at or
// above it on each plane axis. Integral quotients are returned unchanged.
func (m *Map) PositionToIndexCeil(pos math.Vec3) Coordinate {
	qx, qy := m.quotients(pos)
	return Coordinate{X: int(stdmath.Ceil(qx)), Y: int(stdmath.Ceil(qy))}
}

func (m *Map) quotients(pos math.Vec3) (float64, float64) {
	p := m.cfg.PlanePoint(pos)
	qx := float64(p.X-m.cfg.Start.X) / float64(m.cfg.CellSize.X)
	qy := float64(p.Y-m.cfg.Start.Y) / float64(m.cfg.CellSize.Y)
	return qx, qy
}

// BringInBounds clamps c into [0, TilesX-1] x [0, TilesY-1].
func (m *Map) BringInBounds(c Coordinate) Coordinate {
	return Coordinate{X: clampInt(c.X, 0, m.tilesX-1), Y: clampInt(c.Y, 0, m.tilesY-1)}
}

// BringPositionInBounds clamps the plane axes of pos into the map extent.
// The depth component is returned unchanged.
func (m *Map) BringPositionInBounds(pos math.Vec3) math.Vec3 {
	ax, ay := m.cfg.PlaneAxes()
	pos = pos.WithAxis(ax, clampFloat(pos.Axis(ax), m.cfg.Start.X, m.cfg.End.X))
	return pos.WithAxis(ay, clampFloat(pos.Axis(ay), m.cfg.Start.Y, m.cfg.End.Y))
}

// Acquire blocks until the caller holds the map exclusively.
func (m *Map) Acquire() {
	m.mu.Lock()
	m.busy.Store(true)
}

// Release gives up exclusive access taken with Acquire.
func (m *Map) Release() {
	m.busy.Store(false)
	m.mu.Unlock()
}

// IsBusy reports whether a generation, update or search holds the map.
func (m *Map) IsBusy() bool {
	return m.busy.Load()
}

// Offset returns the row-major offset of c. c must be inside the grid.
func (m *Map) Offset(c Coordinate) int {
	return c.Y*m.tilesX + c.X
}

// Node returns the node at c, or nil when c is outside the grid.
func (m *Map) Node(c Coordinate) *Node {
	if !m.Contains(c) {
		return nil
	}
	return &m.nodes[m.Offset(c)]
}

// NodeAt returns the node at a row-major offset.
func (m *Map) NodeAt(offset int) *Node {
	return &m.nodes[offset]
}

// Nodes returns the backing node slice.
func (m *Map) Nodes() []Node { return m.nodes }

// OpenList returns the open-list scratch array. Slot 0 is unused.
func (m *Map) OpenList() []int { return m.open }

// ClosedList returns the closed-list scratch array.
func (m *Map) ClosedList() []int { return m.closed }

// OnUpdate registers fn to run after every batch of node mutations. The
// returned function removes the subscription.
func (m *Map) OnUpdate(fn func()) (unsubscribe func()) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
		})
	}
}

// NotifyUpdated runs every update subscriber in registration order.
func (m *Map) NotifyUpdated() {
	m.subMu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	fns := make([]func(), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// IndexesBetween returns every cell between two world positions, inclusive.
// The lower corner rounds up and the upper corner rounds down, so only cells
// whose origin lies inside the rectangle are returned. Corners are reordered
// per axis and clamped into the grid.
func (m *Map) IndexesBetween(a, b math.Vec3) []Coordinate {
	pa, pb := m.cfg.PlanePoint(a), m.cfg.PlanePoint(b)
	lo := math.Vec2{X: min(pa.X, pb.X), Y: min(pa.Y, pb.Y)}
	hi := math.Vec2{X: max(pa.X, pb.X), Y: max(pa.Y, pb.Y)}

	minIdx := m.PositionToIndexCeil(m.cfg.WorldPoint(lo, 0))
	maxIdx := m.PositionToIndexFloor(m.cfg.WorldPoint(hi, 0))
	if minIdx.X > maxIdx.X || minIdx.Y > maxIdx.Y {
		return nil
	}
	return m.IndexesBetweenIndices(minIdx, maxIdx)
}

// IndexesBetweenIndices enumerates the inclusive rectangle spanned by a and b
// row by row. Corners are reordered and clamped into the grid.
func (m *Map) IndexesBetweenIndices(a, b Coordinate) []Coordinate {
	lo := m.BringInBounds(Coordinate{X: min(a.X, b.X), Y: min(a.Y, b.Y)})
	hi := m.BringInBounds(Coordinate{X: max(a.X, b.X), Y: max(a.Y, b.Y)})

	out := make([]Coordinate, 0, (hi.X-lo.X+1)*(hi.Y-lo.Y+1))
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			out = append(out, Coordinate{X: x, Y: y})
		}
	}
	return out
}

// WalkableCount returns the number of walkable nodes.
func (m *Map) WalkableCount() int {
	n := 0
	for i := range m.nodes {
		if m.nodes[i].Walkable {
			n++
		}
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
