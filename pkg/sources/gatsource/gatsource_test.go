package gatsource

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Faultbox/gridpath/pkg/formats"
	"github.com/Faultbox/gridpath/pkg/generator"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// testGAT builds a 4x3 grid: a blocked cell at (1,1), shallows at (2,0),
// deep water at (3,2), a cliff at (0,2) and a raised cell at (3,0).
func testGAT(t *testing.T) *formats.GAT {
	t.Helper()
	g, err := formats.NewGAT(4, 3)
	if err != nil {
		t.Fatalf("NewGAT failed: %v", err)
	}
	g.Cell(1, 1).Type = formats.GATBlocked
	g.Cell(2, 0).Type = formats.GATWalkableWater
	g.Cell(3, 2).Type = formats.GATWater
	g.Cell(0, 2).Type = formats.GATSnipeable
	g.Cell(3, 0).Heights = [4]float32{4, 4, 6, 6}
	return g
}

func TestConfigCoversGrid(t *testing.T) {
	src := New(testGAT(t), 2)
	cfg := src.Config()

	m, err := navgrid.NewMap(cfg)
	if err != nil {
		t.Fatalf("NewMap failed: %v", err)
	}
	if m.TilesX() != 4 || m.TilesY() != 3 {
		t.Errorf("expected 4x3 tiles, got %dx%d", m.TilesX(), m.TilesY())
	}
	if cfg.MinDepth != 0 || cfg.MaxDepth != 6 {
		t.Errorf("expected depth range [0, 6], got [%f, %f]", cfg.MinDepth, cfg.MaxDepth)
	}
	if cfg.XYGrid {
		t.Error("expected an XZ grid")
	}
}

func TestClassifyCells(t *testing.T) {
	src := New(testGAT(t), 2)
	cfg := src.Config()
	cfg.Normalize()

	hits := src.Classify(nil, math.Vec3{X: 6, Z: 0}, &cfg)
	if len(hits) != 1 {
		t.Fatalf("expected one hit, got %+v", hits)
	}
	h := hits[0]
	if h.Layer != Layer(formats.GATWalkable) || h.Tag != "ground" || h.ID != "Walkable" || h.Depth != 5 {
		t.Errorf("unexpected hit %+v", h)
	}

	hits = src.Classify(nil, math.Vec3{X: 4, Z: 0}, &cfg)
	if len(hits) != 1 || hits[0].Tag != "water" {
		t.Errorf("expected shallows, got %+v", hits)
	}

	if hits := src.Classify(nil, math.Vec3{X: 100, Z: 0}, &cfg); len(hits) != 0 {
		t.Errorf("expected no hits outside the grid, got %+v", hits)
	}
}

func TestGenerate(t *testing.T) {
	src := New(testGAT(t), 2)
	m, err := generator.New(src).Generate(src.Config())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	tests := []struct {
		c        navgrid.Coordinate
		walkable bool
		cost     float32
		height   float32
	}{
		{navgrid.Coordinate{X: 0, Y: 0}, true, 1, 0},
		{navgrid.Coordinate{X: 1, Y: 1}, false, 0, 0},
		{navgrid.Coordinate{X: 2, Y: 0}, true, 2, 0},
		{navgrid.Coordinate{X: 3, Y: 2}, false, 0, 0},
		{navgrid.Coordinate{X: 0, Y: 2}, false, 0, 0},
		{navgrid.Coordinate{X: 3, Y: 0}, true, 1, 5},
	}
	for _, tt := range tests {
		n := m.Node(tt.c)
		if n.Walkable != tt.walkable || n.MoveCost != tt.cost {
			t.Errorf("cell %s: walkable=%v cost=%f, want %v %f", tt.c, n.Walkable, n.MoveCost, tt.walkable, tt.cost)
		}
		if n.Position.Y != tt.height {
			t.Errorf("cell %s: height %f, want %f", tt.c, n.Position.Y, tt.height)
		}
	}
	if m.WalkableCount() != 9 {
		t.Errorf("expected 9 walkable cells, got %d", m.WalkableCount())
	}
}

func TestForcedCellType(t *testing.T) {
	src := New(testGAT(t), 1)
	cfg := src.Config()
	cfg.ForceWalkable = []navgrid.ForcedCost{{ID: formats.GATSnipeable.String(), Cost: 5}}

	m, err := generator.New(src).Generate(cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	n := m.Node(navgrid.Coordinate{X: 0, Y: 2})
	if !n.Walkable || n.MoveCost != 5 {
		t.Errorf("expected forced walkable cliff with cost 5, got %v %f", n.Walkable, n.MoveCost)
	}
}

func TestSetTypeAndUpdate(t *testing.T) {
	src := New(testGAT(t), 1)
	gen := generator.New(src)
	m, err := gen.Generate(src.Config())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if err := src.SetType(1, 1, formats.GATWalkable); err != nil {
		t.Fatalf("SetType failed: %v", err)
	}
	if err := gen.Update(m, generator.Single(navgrid.Coordinate{X: 1, Y: 1})); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !m.Node(navgrid.Coordinate{X: 1, Y: 1}).Walkable {
		t.Error("expected (1,1) walkable after update")
	}

	if err := src.SetType(4, 0, formats.GATWalkable); !errors.Is(err, navgrid.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.gat")
	if err := formats.WriteGATFile(path, testGAT(t)); err != nil {
		t.Fatalf("WriteGATFile failed: %v", err)
	}

	src, err := Open(path, 1)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	g := src.GAT()
	if g.Width != 4 || g.Height != 3 {
		t.Fatalf("expected 4x3 grid, got %dx%d", g.Width, g.Height)
	}
	if g.Cell(1, 1).Type != formats.GATBlocked {
		t.Errorf("expected blocked cell at (1,1), got %v", g.Cell(1, 1).Type)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.gat"), 1); err == nil {
		t.Error("expected error for a missing file")
	}
}
