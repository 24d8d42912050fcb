package pathfind

import (
	"testing"

	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// newGrid builds a unit grid whose layout rows are read bottom-up:
// '.' walkable at cost 1, '2'..'9' walkable at that cost, '#' blocked.
// layout[0] is the row y = len(layout)-1 so the picture matches the world.
func newGrid(t testing.TB, layout ...string) *navgrid.Map {
	t.Helper()
	h := len(layout)
	w := len(layout[0])
	m, err := navgrid.NewMap(navgrid.Config{
		CellSize: math.Vec2{X: 1, Y: 1},
		End:      math.Vec2{X: float32(w - 1), Y: float32(h - 1)},
	})
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	for row, line := range layout {
		y := h - 1 - row
		for x, ch := range line {
			n := m.Node(navgrid.Coordinate{X: x, Y: y})
			switch {
			case ch == '.':
				n.Walkable, n.MoveCost = true, 1
			case ch >= '2' && ch <= '9':
				n.Walkable, n.MoveCost = true, float32(ch-'0')
			}
		}
	}
	return m
}

func openGrid(t testing.TB, w, h int) *navgrid.Map {
	t.Helper()
	row := make([]byte, w)
	for i := range row {
		row[i] = '.'
	}
	layout := make([]string, h)
	for i := range layout {
		layout[i] = string(row)
	}
	return newGrid(t, layout...)
}

func at(x, y int) math.Vec3 {
	return math.Vec3{X: float32(x), Y: float32(y)}
}

func cell(p math.Vec3) navgrid.Coordinate {
	return navgrid.Coordinate{X: int(p.X), Y: int(p.Y)}
}

func assertReset(t *testing.T, m *navgrid.Map) {
	t.Helper()
	for _, n := range m.Nodes() {
		if !n.IsReset() {
			t.Fatalf("node %v scratch state leaked: %+v", n.Index, n)
		}
	}
	if m.IsBusy() {
		t.Fatal("map still busy")
	}
}

func approx(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-3
}
