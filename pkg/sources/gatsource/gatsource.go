// Package gatsource classifies grid cells from a GAT walkability file.
package gatsource

import (
	"fmt"
	stdmath "math"
	"sync"

	"github.com/Faultbox/gridpath/pkg/formats"
	"github.com/Faultbox/gridpath/pkg/generator"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// Layer returns the classification layer for a cell type.
func Layer(t formats.GATCellType) int {
	return int(t)
}

// Source reports one hit per GAT cell: the cell type as layer and ID, its
// terrain tag, and its average altitude as depth. GAT cells are already
// cell-sized, so CheckLargerArea and SingleHit change nothing.
type Source struct {
	mu       sync.RWMutex
	gat      *formats.GAT
	cellSize float32
}

var _ generator.Classifier = (*Source)(nil)

// New wraps g. Grid cell (x, y) maps to the world square starting at
// (x*cellSize, y*cellSize) on the grid plane.
func New(g *formats.GAT, cellSize float32) *Source {
	return &Source{gat: g, cellSize: cellSize}
}

// Open parses a GAT file from disk.
func Open(path string, cellSize float32) (*Source, error) {
	g, err := formats.ParseGATFile(path)
	if err != nil {
		return nil, err
	}
	return New(g, cellSize), nil
}

// GAT returns the wrapped grid.
func (s *Source) GAT() *formats.GAT {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gat
}

// Replace swaps the wrapped grid, e.g. after the file changed on disk.
func (s *Source) Replace(g *formats.GAT) {
	s.mu.Lock()
	s.gat = g
	s.mu.Unlock()
}

// SetType changes the type of one cell.
func (s *Source) SetType(x, y int, t formats.GATCellType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell := s.gat.Cell(x, y)
	if cell == nil {
		return fmt.Errorf("%w: gat cell %d,%d", navgrid.ErrIndexOutOfRange, x, y)
	}
	cell.Type = t
	return nil
}

// Config returns a generation config covering the whole grid. Walkable
// ground costs 1 and shallow water 2; every other type blocks. The grid lies
// on the XZ plane with altitude on Y.
func (s *Source) Config() navgrid.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo, hi := s.gat.AltitudeRange()
	return navgrid.Config{
		CellSize: math.Vec2{X: s.cellSize, Y: s.cellSize},
		End: math.Vec2{
			X: float32(s.gat.Width-1) * s.cellSize,
			Y: float32(s.gat.Height-1) * s.cellSize,
		},
		Use3D:        true,
		MinDepth:     lo,
		MaxDepth:     hi,
		DefaultDepth: lo,
		WalkableLayers: []navgrid.CostLayer{
			{Layer: Layer(formats.GATWalkable), Cost: 1},
			{Layer: Layer(formats.GATWalkableWater), Cost: 2},
		},
		NonWalkableLayers: []int{
			Layer(formats.GATBlocked),
			Layer(formats.GATWater),
			Layer(formats.GATSnipeable),
			Layer(formats.GATBlockedSnipe),
		},
		MatchAny: true,
	}
}

// Classify reports the GAT cell under pos, if any.
func (s *Source) Classify(dst []generator.Hit, pos math.Vec3, cfg *navgrid.Config) []generator.Hit {
	p := cfg.PlanePoint(pos)
	x := int(stdmath.Floor(float64((p.X-cfg.Start.X)/s.cellSize) + 0.5))
	y := int(stdmath.Floor(float64((p.Y-cfg.Start.Y)/s.cellSize) + 0.5))

	s.mu.RLock()
	defer s.mu.RUnlock()

	cell := s.gat.Cell(x, y)
	if cell == nil {
		return dst
	}
	return append(dst, generator.Hit{
		ID:    cell.Type.String(),
		Layer: Layer(cell.Type),
		Tag:   cell.Type.Tag(),
		Depth: cell.AverageHeight(),
	})
}
