package generator

import (
	"errors"
	stdmath "math"
	"testing"

	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

const (
	layerGround = 1
	layerWall   = 2
	layerWater  = 3
)

// cellSource returns canned hits per cell of a unit grid rooted at the origin.
type cellSource struct {
	cells map[navgrid.Coordinate][]Hit
	calls int
}

func newCellSource() *cellSource {
	return &cellSource{cells: make(map[navgrid.Coordinate][]Hit)}
}

func (s *cellSource) Classify(dst []Hit, pos math.Vec3, cfg *navgrid.Config) []Hit {
	s.calls++
	p := cfg.PlanePoint(pos)
	c := navgrid.Coordinate{
		X: int(stdmath.Floor(float64(p.X) + 0.5)),
		Y: int(stdmath.Floor(float64(p.Y) + 0.5)),
	}
	return append(dst, s.cells[c]...)
}

func (s *cellSource) fill(w, h int, hit Hit) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.cells[navgrid.Coordinate{X: x, Y: y}] = []Hit{hit}
		}
	}
}

func groundConfig(w, h int) navgrid.Config {
	return navgrid.Config{
		CellSize:          math.Vec2{X: 1, Y: 1},
		End:               math.Vec2{X: float32(w - 1), Y: float32(h - 1)},
		WalkableLayers:    []navgrid.CostLayer{{Layer: layerGround, Cost: 1}},
		WalkableTags:      []navgrid.CostTag{{Tag: "floor", Cost: 1}},
		NonWalkableLayers: []int{layerWall},
		NonWalkableTags:   []string{"wall"},
	}
}

var (
	floorHit = Hit{ID: "floor", Layer: layerGround, Tag: "floor"}
	wallHit  = Hit{ID: "wall", Layer: layerWall, Tag: "wall"}
)

func TestGenerateClassifiesEveryCell(t *testing.T) {
	src := newCellSource()
	src.fill(5, 4, floorHit)
	src.cells[navgrid.Coordinate{X: 2, Y: 1}] = []Hit{wallHit}

	m, err := New(src).Generate(groundConfig(5, 4))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if m.TilesX() != 5 || m.TilesY() != 4 {
		t.Fatalf("tiles = %dx%d, want 5x4", m.TilesX(), m.TilesY())
	}
	if src.calls != 20 {
		t.Errorf("Classify called %d times, want 20", src.calls)
	}
	if got := m.WalkableCount(); got != 19 {
		t.Errorf("walkable = %d, want 19", got)
	}
	if m.Node(navgrid.Coordinate{X: 2, Y: 1}).Walkable {
		t.Error("wall cell is walkable")
	}
	for _, n := range m.Nodes() {
		want := math.Vec3{X: float32(n.Index.X), Y: float32(n.Index.Y)}
		if n.Position != want {
			t.Errorf("node %v at %v, want %v", n.Index, n.Position, want)
		}
		if !n.IsReset() {
			t.Errorf("node %v scratch state dirty", n.Index)
		}
	}
	if m.IsBusy() {
		t.Error("map left busy after generation")
	}
}

func TestGenerateIdempotent(t *testing.T) {
	src := newCellSource()
	src.fill(6, 6, floorHit)
	src.cells[navgrid.Coordinate{X: 3, Y: 3}] = []Hit{wallHit}
	src.cells[navgrid.Coordinate{X: 1, Y: 4}] = []Hit{{ID: "mud", Layer: layerGround, Tag: "floor"}}

	g := New(src)
	cfg := groundConfig(6, 6)
	a, err := g.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := g.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, n := range a.Nodes() {
		if n != b.Nodes()[i] {
			t.Fatalf("node %v differs: %+v vs %+v", n.Index, n, b.Nodes()[i])
		}
	}
}

func TestGenerateCopiesConfig(t *testing.T) {
	src := newCellSource()
	src.fill(3, 3, floorHit)

	cfg := groundConfig(3, 3)
	m, err := New(src).Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	cfg.WalkableLayers[0].Cost = 9
	if got := m.Config().WalkableLayers[0].Cost; got != 1 {
		t.Errorf("map config followed caller mutation: cost = %g", got)
	}
}

func TestGenerateDepth(t *testing.T) {
	src := newCellSource()
	src.fill(3, 3, Hit{ID: "ramp", Layer: layerGround, Tag: "floor", Depth: 2.5})

	tests := []struct {
		name      string
		mutate    func(*navgrid.Config)
		wantDepth float32
		wantAxis  int
	}{
		{"3d xz plane", func(c *navgrid.Config) { c.Use3D = true }, 2.5, math.AxisY},
		{"3d xy plane", func(c *navgrid.Config) { c.Use3D = true; c.XYGrid = true }, 2.5, math.AxisZ},
		{"ignore depth", func(c *navgrid.Config) { c.Use3D = true; c.IgnoreDepth = true; c.DefaultDepth = -1 }, -1, math.AxisY},
		{"2d pins default", func(c *navgrid.Config) { c.DefaultDepth = 4 }, 4, math.AxisZ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := groundConfig(3, 3)
			tt.mutate(&cfg)
			m, err := New(src).Generate(cfg)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			n := m.Node(navgrid.Coordinate{X: 1, Y: 2})
			if !n.Walkable {
				t.Fatal("ramp not walkable")
			}
			if got := n.Position.Axis(tt.wantAxis); got != tt.wantDepth {
				t.Errorf("depth = %g, want %g", got, tt.wantDepth)
			}
		})
	}
}

func TestGenerateErrors(t *testing.T) {
	if _, err := (&Generator{}).Generate(groundConfig(2, 2)); !errors.Is(err, ErrNoSource) {
		t.Errorf("nil source: err = %v, want ErrNoSource", err)
	}
	cfg := groundConfig(2, 2)
	cfg.CellSize = math.Vec2{}
	if _, err := New(newCellSource()).Generate(cfg); !errors.Is(err, navgrid.ErrInvalidConfig) {
		t.Errorf("zero cell size: err = %v, want ErrInvalidConfig", err)
	}
}

func TestUpdateSingleFlipsCell(t *testing.T) {
	src := newCellSource()
	src.fill(3, 3, floorHit)
	target := navgrid.Coordinate{X: 1, Y: 1}
	src.cells[target] = []Hit{wallHit}

	g := New(src)
	m, err := g.Generate(groundConfig(3, 3))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	notified := 0
	m.OnUpdate(func() { notified++ })

	src.cells[target] = []Hit{floorHit}
	if err := g.Update(m, Single(target)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !m.Node(target).Walkable {
		t.Error("cell still blocked after update")
	}
	if notified != 1 {
		t.Errorf("notifications = %d, want 1", notified)
	}

	// Clamped into the corner cell.
	src.cells[navgrid.Coordinate{X: 2, Y: 2}] = []Hit{wallHit}
	if err := g.Update(m, Single(navgrid.Coordinate{X: 40, Y: 40})); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if m.Node(navgrid.Coordinate{X: 2, Y: 2}).Walkable {
		t.Error("clamped single update missed the corner cell")
	}
}

func TestUpdateScopes(t *testing.T) {
	tests := []struct {
		name      string
		scope     Scope
		wantErr   bool
		wantCalls int
	}{
		{"whole", WholeMap(), false, 16},
		{"range", Range(navgrid.Coordinate{X: 2, Y: 3}, navgrid.Coordinate{X: 1, Y: 1}), false, 6},
		{"range outside", Range(navgrid.Coordinate{X: 0, Y: 0}, navgrid.Coordinate{X: 4, Y: 1}), true, 0},
		{"indexes", Indexes(navgrid.Coordinate{X: 0, Y: 0}, navgrid.Coordinate{X: 3, Y: 3}), false, 2},
		{"indexes outside", Indexes(navgrid.Coordinate{X: 0, Y: 0}, navgrid.Coordinate{X: -1, Y: 0}), true, 0},
		{"single", Single(navgrid.Coordinate{X: 1, Y: 2}), false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newCellSource()
			src.fill(4, 4, floorHit)
			g := New(src)
			m, err := g.Generate(groundConfig(4, 4))
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			notified := 0
			m.OnUpdate(func() { notified++ })

			src.fill(4, 4, wallHit)
			src.calls = 0
			err = g.Update(m, tt.scope)
			if tt.wantErr {
				if !errors.Is(err, navgrid.ErrIndexOutOfRange) {
					t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
				}
				if m.WalkableCount() != 16 || notified != 0 {
					t.Error("failed update modified the map or notified")
				}
				return
			}
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			if src.calls != tt.wantCalls {
				t.Errorf("classified %d cells, want %d", src.calls, tt.wantCalls)
			}
			if got := 16 - m.WalkableCount(); got != tt.wantCalls {
				t.Errorf("blocked %d cells, want %d", got, tt.wantCalls)
			}
			if notified != 1 {
				t.Errorf("notifications = %d, want 1", notified)
			}
		})
	}
}

func TestUpdateWorldHelpers(t *testing.T) {
	src := newCellSource()
	src.fill(5, 5, floorHit)
	g := New(src)
	m, err := g.Generate(groundConfig(5, 5))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	src.fill(5, 5, wallHit)
	if err := g.UpdatePosition(m, math.Vec3{X: 3.7, Y: 0.2}); err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	if m.Node(navgrid.Coordinate{X: 3, Y: 0}).Walkable {
		t.Error("UpdatePosition missed cell 3,0")
	}
	if m.WalkableCount() != 24 {
		t.Errorf("walkable = %d, want 24", m.WalkableCount())
	}

	if err := g.UpdateArea(m, math.Vec3{X: 1.5, Y: 4.9}, math.Vec3{X: 0.2, Y: 3}); err != nil {
		t.Fatalf("UpdateArea: %v", err)
	}
	// x 0..1, y 3..4
	if m.WalkableCount() != 20 {
		t.Errorf("walkable = %d, want 20", m.WalkableCount())
	}
}

func TestForcedPolicy(t *testing.T) {
	cfg := groundConfig(3, 1)
	cfg.ForceWalkable = []navgrid.ForcedCost{{ID: "bridge", Cost: 2}}
	bridge := navgrid.Coordinate{X: 1, Y: 0}

	src := newCellSource()
	src.fill(3, 1, floorHit)
	src.cells[bridge] = []Hit{wallHit, {ID: "bridge", Layer: layerWall, Tag: "wall"}}

	tests := []struct {
		policy       ForcedPolicy
		wantWalkable bool
	}{
		{ForcedRecheck, true},
		{ForcedSkip, false},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			g := New(src)
			m, err := g.Generate(cfg)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if n := m.Node(bridge); !n.Walkable || n.MoveCost != 2 {
				t.Fatalf("generation ignored forced walkable: %+v", n)
			}

			g.Forced = tt.policy
			if err := g.Update(m, Single(bridge)); err != nil {
				t.Fatalf("Update: %v", err)
			}
			if got := m.Node(bridge).Walkable; got != tt.wantWalkable {
				t.Errorf("walkable = %v, want %v", got, tt.wantWalkable)
			}
		})
	}
}
