package generator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/gridpath/internal/logger"
	"github.com/Faultbox/gridpath/internal/metrics"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

type scopeKind int

const (
	scopeWhole scopeKind = iota
	scopeIndexes
	scopeRange
	scopeSingle
)

// Scope selects the cells a runtime update re-classifies.
type Scope struct {
	kind    scopeKind
	indexes []navgrid.Coordinate
	a, b    navgrid.Coordinate
}

// WholeMap selects every cell.
func WholeMap() Scope { return Scope{kind: scopeWhole} }

// Indexes selects an explicit list of cells. Every entry must be inside the
// grid.
func Indexes(cs ...navgrid.Coordinate) Scope {
	return Scope{kind: scopeIndexes, indexes: append([]navgrid.Coordinate(nil), cs...)}
}

// Range selects the inclusive rectangle between a and b. The corners may be
// given in any order but must both be inside the grid.
func Range(a, b navgrid.Coordinate) Scope {
	return Scope{kind: scopeRange, a: a, b: b}
}

// Single selects one cell, clamped into the grid.
func Single(c navgrid.Coordinate) Scope {
	return Scope{kind: scopeSingle, a: c}
}

// String names the scope kind.
func (s Scope) String() string {
	switch s.kind {
	case scopeWhole:
		return "whole"
	case scopeIndexes:
		return "indexes"
	case scopeRange:
		return "range"
	default:
		return "single"
	}
}

// targets validates the scope against m and returns the selected cells.
// A nil slice with a nil error means the whole map.
func (s Scope) targets(m *navgrid.Map) ([]navgrid.Coordinate, error) {
	switch s.kind {
	case scopeWhole:
		return nil, nil
	case scopeIndexes:
		for _, c := range s.indexes {
			if !m.Contains(c) {
				return nil, fmt.Errorf("%w: %v outside %dx%d", navgrid.ErrIndexOutOfRange, c, m.TilesX(), m.TilesY())
			}
		}
		return s.indexes, nil
	case scopeRange:
		if !m.Contains(s.a) || !m.Contains(s.b) {
			return nil, fmt.Errorf("%w: range %v..%v outside %dx%d", navgrid.ErrIndexOutOfRange, s.a, s.b, m.TilesX(), m.TilesY())
		}
		return m.IndexesBetweenIndices(s.a, s.b), nil
	default:
		return []navgrid.Coordinate{m.BringInBounds(s.a)}, nil
	}
}

// Update re-classifies the cells selected by scope under the map lock and
// then notifies the map's subscribers once. Nothing is modified when the
// scope is invalid.
func (g *Generator) Update(m *navgrid.Map, scope Scope) error {
	if g.Source == nil {
		return ErrNoSource
	}
	targets, err := scope.targets(m)
	if err != nil {
		return err
	}

	checkForced := g.Forced == ForcedRecheck
	m.Acquire()
	c := m.ConfigRef()
	r := compileRules(c)
	var buf []Hit
	count := 0
	if scope.kind == scopeWhole {
		nodes := m.Nodes()
		for i := range nodes {
			buf = g.classify(c, r, &nodes[i], buf, checkForced)
		}
		count = len(nodes)
	} else {
		for _, t := range targets {
			buf = g.classify(c, r, m.Node(t), buf, checkForced)
		}
		count = len(targets)
	}
	m.Release()

	metrics.MapUpdated(scope.String())
	metrics.CellsClassified(count)
	logger.Named("generator").Debug("map updated",
		zap.Stringer("scope", scope),
		zap.Int("cells", count),
		zap.Stringer("forced", g.Forced))

	m.NotifyUpdated()
	return nil
}

// UpdatePosition re-classifies the cell containing a world position. The
// position is clamped into the grid.
func (g *Generator) UpdatePosition(m *navgrid.Map, pos math.Vec3) error {
	return g.Update(m, Single(m.PositionToIndexFloor(pos)))
}

// UpdateArea re-classifies every cell touched by the world rectangle between
// a and b. Both corners round down and the result is clamped into the grid.
func (g *Generator) UpdateArea(m *navgrid.Map, a, b math.Vec3) error {
	cells := m.IndexesBetweenIndices(m.PositionToIndexFloor(a), m.PositionToIndexFloor(b))
	return g.Update(m, Indexes(cells...))
}
