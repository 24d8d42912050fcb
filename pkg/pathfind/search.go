package pathfind

import (
	"fmt"
	stdmath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/gridpath/internal/logger"
	"github.com/Faultbox/gridpath/internal/metrics"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

const diagonalCost = float32(stdmath.Sqrt2)

// neighbours in expansion order. Odd entries are diagonal.
var neighbours = [8]navgrid.Coordinate{
	{X: -1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
	{X: 1, Y: 0},
	{X: 1, Y: -1},
	{X: 0, Y: -1},
	{X: -1, Y: -1},
}

// search is the state of one A* run. It only lives while its goroutine holds
// both the search token and the map lock.
type search struct {
	m      *navgrid.Map
	nodes  []navgrid.Node
	tilesX int
	tilesY int

	open      []int
	openLen   int
	closed    []int
	closedLen int

	opts       Options
	multiplier float32
	depthAxis  int
	end        navgrid.Coordinate
}

func newSearch(m *navgrid.Map, opts Options) *search {
	mult := opts.Aggression
	if mult < 0 {
		mult = -mult
	}
	return &search{
		m:          m,
		nodes:      m.Nodes(),
		tilesX:     m.TilesX(),
		tilesY:     m.TilesY(),
		open:       m.OpenList(),
		closed:     m.ClosedList(),
		opts:       opts,
		multiplier: mult,
		depthAxis:  m.ConfigRef().DepthAxis(),
	}
}

// FindPath searches between two world positions. It returns ErrOutOfBounds,
// before taking any lock, when either position is outside the map extent.
// A search that finds no route returns a Result with Found == false and a
// nil error.
func FindPath(m *navgrid.Map, start, end math.Vec3, opts Options) (Result, error) {
	if !m.InBounds(start) || !m.InBounds(end) {
		metrics.ObserveSearch(metrics.ResultRejected, 0, 0)
		return Result{}, fmt.Errorf("%w: %v -> %v outside %v..%v", navgrid.ErrOutOfBounds, start, end, m.Start(), m.End())
	}
	return FindPathCells(m, m.PositionToIndexFloor(start), m.PositionToIndexFloor(end), opts), nil
}

// FindPathCells searches between two cells. Both are clamped into the grid.
func FindPathCells(m *navgrid.Map, from, to navgrid.Coordinate, opts Options) Result {
	began := time.Now()
	res := runExclusive(m, from, to, opts)
	elapsed := time.Since(began)

	outcome := metrics.ResultNoPath
	if res.Found {
		outcome = metrics.ResultFound
	}
	metrics.ObserveSearch(outcome, res.Expanded, elapsed)
	logger.Named("pathfind").Debug("search finished",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Bool("found", res.Found),
		zap.Int("waypoints", len(res.Waypoints)),
		zap.Int("expanded", res.Expanded),
		zap.Duration("took", elapsed))
	return res
}

func runExclusive(m *navgrid.Map, from, to navgrid.Coordinate, opts Options) Result {
	searchToken.lock()
	defer searchToken.unlock()
	m.Acquire()
	defer m.Release()

	s := newSearch(m, opts)
	defer s.finalize()
	return s.run(m.BringInBounds(from), m.BringInBounds(to))
}

func (s *search) run(start, end navgrid.Coordinate) Result {
	s.end = end
	for _, c := range s.opts.Disallowed {
		if !s.m.Contains(c) {
			continue
		}
		off := s.m.Offset(c)
		n := &s.nodes[off]
		if n.OnClosedList {
			continue
		}
		n.OnClosedList = true
		s.closed[s.closedLen] = off
		s.closedLen++
	}
	preClosed := s.closedLen

	startOff, endOff := s.m.Offset(start), s.m.Offset(end)
	sn, en := &s.nodes[startOff], &s.nodes[endOff]
	if !sn.Walkable || !en.Walkable || sn.OnClosedList || en.OnClosedList {
		return Result{}
	}

	sn.G = 0
	sn.H = s.heuristic(start)
	sn.F = sn.H
	s.push(startOff)

	for !en.OnClosedList {
		if s.openLen == 0 {
			return Result{Expanded: s.closedLen - preClosed}
		}
		s.expand(s.pop())
	}

	return Result{
		Found:     true,
		Waypoints: s.reconstruct(endOff),
		Cost:      en.G,
		Expanded:  s.closedLen - preClosed,
	}
}

func (s *search) expand(curOff int) {
	cur := &s.nodes[curOff]
	ci := cur.Index
	curDepth := cur.Position.Axis(s.depthAxis)

	for i, d := range neighbours {
		diagonal := i&1 == 1
		if diagonal && !s.opts.Diagonal {
			continue
		}
		nx, ny := ci.X+d.X, ci.Y+d.Y
		if nx < 0 || ny < 0 || nx >= s.tilesX || ny >= s.tilesY {
			continue
		}
		off := ny*s.tilesX + nx
		nb := &s.nodes[off]

		depthDiff := nb.Position.Axis(s.depthAxis) - curDepth
		if depthDiff < 0 {
			depthDiff = -depthDiff
		}
		if depthDiff > s.opts.MaxDepthDifference {
			continue
		}
		if nb.OnClosedList {
			continue
		}
		if diagonal && s.opts.PreventCornerCutting &&
			(!s.walkable(ci.X+d.X, ci.Y) || !s.walkable(ci.X, ci.Y+d.Y)) {
			continue
		}

		step := cur.MoveCost
		if diagonal {
			step *= diagonalCost
		}
		g := cur.G + step + s.opts.DepthCostWeight*depthDiff

		if nb.OnOpenList {
			if g < nb.G {
				nb.Parent = curOff
				nb.G = g
				nb.F = g + nb.H
				s.up(nb.HeapIndex)
			}
			continue
		}
		if !nb.Walkable {
			continue
		}
		nb.Parent = curOff
		nb.G = g
		nb.H = s.heuristic(nb.Index)
		nb.F = g + nb.H
		s.push(off)
	}
}

func (s *search) walkable(x, y int) bool {
	return s.nodes[y*s.tilesX+x].Walkable
}

func (s *search) heuristic(c navgrid.Coordinate) float32 {
	return float32(abs(c.X-s.end.X)+abs(c.Y-s.end.Y)) * s.multiplier
}

// reconstruct walks parent links back from the end node.
func (s *search) reconstruct(endOff int) []math.Vec3 {
	n := 0
	for off := endOff; off != navgrid.NoParent; off = s.nodes[off].Parent {
		n++
	}
	out := make([]math.Vec3, n)
	for off := endOff; off != navgrid.NoParent; off = s.nodes[off].Parent {
		n--
		out[n] = s.nodes[off].Position
	}
	return out
}

// finalize resets every node the search touched.
func (s *search) finalize() {
	for i := 1; i <= s.openLen; i++ {
		s.nodes[s.open[i]].Reset()
	}
	for i := 0; i < s.closedLen; i++ {
		s.nodes[s.closed[i]].Reset()
	}
	s.openLen = 0
	s.closedLen = 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
