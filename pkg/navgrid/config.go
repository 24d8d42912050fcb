package navgrid

import (
	"fmt"
	stdmath "math"

	"github.com/Faultbox/gridpath/pkg/math"
)

// CostLayer marks a classification layer as walkable with a movement cost.
type CostLayer struct {
	Layer int     `yaml:"layer"`
	Cost  float32 `yaml:"cost"`
}

// CostTag marks a classification tag as walkable with a movement cost.
type CostTag struct {
	Tag  string  `yaml:"tag"`
	Cost float32 `yaml:"cost"`
}

// ForcedCost forces every cell that contains the identity ID to be walkable.
type ForcedCost struct {
	ID   string  `yaml:"id"`
	Cost float32 `yaml:"cost"`
}

// Config holds the generation parameters of a Map.
//
// Start and End are in-plane coordinates: (x, y) for an XY grid and (x, z)
// otherwise. The depth axis is the remaining world axis.
type Config struct {
	CellSize math.Vec2 `yaml:"cell_size"`
	Start    math.Vec2 `yaml:"start"`
	End      math.Vec2 `yaml:"end"`

	Use3D  bool `yaml:"use_3d"`
	XYGrid bool `yaml:"xy_grid"`

	MinDepth     float32 `yaml:"min_depth"`
	MaxDepth     float32 `yaml:"max_depth"`
	DefaultDepth float32 `yaml:"default_depth"`
	IgnoreDepth  bool    `yaml:"ignore_depth"`

	// WalkableLayers is scanned in priority order.
	WalkableLayers    []CostLayer `yaml:"walkable_layers"`
	WalkableTags      []CostTag   `yaml:"walkable_tags"`
	NonWalkableLayers []int       `yaml:"non_walkable_layers"`
	NonWalkableTags   []string    `yaml:"non_walkable_tags"`
	// MatchAny lets a layer or a tag match on its own. When false both the
	// layer and the tag of a hit must match.
	MatchAny bool `yaml:"match_any"`

	ForceWalkable    []ForcedCost `yaml:"force_walkable"`
	ForceNonWalkable []string     `yaml:"force_non_walkable"`

	CheckLargerArea bool `yaml:"check_larger_area"`
	SingleHit       bool `yaml:"single_hit"`

	normalized bool
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	out := c
	out.WalkableLayers = append([]CostLayer(nil), c.WalkableLayers...)
	out.WalkableTags = append([]CostTag(nil), c.WalkableTags...)
	out.NonWalkableLayers = append([]int(nil), c.NonWalkableLayers...)
	out.NonWalkableTags = append([]string(nil), c.NonWalkableTags...)
	out.ForceWalkable = append([]ForcedCost(nil), c.ForceWalkable...)
	out.ForceNonWalkable = append([]string(nil), c.ForceNonWalkable...)
	return out
}

// Normalize orders Start/End per axis, forces an XY grid when 3D
// classification is off and pads End by one cell so the last row and column
// are inclusive. Normalizing twice is a no-op.
func (c *Config) Normalize() {
	if c.normalized {
		return
	}
	if c.Start.X > c.End.X {
		c.Start.X, c.End.X = c.End.X, c.Start.X
	}
	if c.Start.Y > c.End.Y {
		c.Start.Y, c.End.Y = c.End.Y, c.Start.Y
	}
	if c.MinDepth > c.MaxDepth {
		c.MinDepth, c.MaxDepth = c.MaxDepth, c.MinDepth
	}
	if !c.Use3D {
		c.XYGrid = true
	}
	c.End = c.End.Add(c.CellSize)
	c.normalized = true
}

// Normalized reports whether Normalize has been applied.
func (c *Config) Normalized() bool {
	return c.normalized
}

// Validate checks that the config describes at least one cell.
func (c *Config) Validate() error {
	if c.CellSize.X <= 0 || c.CellSize.Y <= 0 {
		return fmt.Errorf("%w: cell size %gx%g", ErrInvalidConfig, c.CellSize.X, c.CellSize.Y)
	}
	if c.TilesX() < 1 || c.TilesY() < 1 {
		return fmt.Errorf("%w: extent yields %dx%d tiles", ErrInvalidConfig, c.TilesX(), c.TilesY())
	}
	return nil
}

// TilesX returns floor((End.x - Start.x) / CellSize.x).
func (c *Config) TilesX() int {
	return tiles(c.Start.X, c.End.X, c.CellSize.X)
}

// TilesY returns floor((End.y - Start.y) / CellSize.y).
func (c *Config) TilesY() int {
	return tiles(c.Start.Y, c.End.Y, c.CellSize.Y)
}

func tiles(start, end, size float32) int {
	if size <= 0 {
		return 0
	}
	return int(stdmath.Floor(float64(end-start) / float64(size)))
}

// DepthAxis returns the world axis orthogonal to the grid plane.
func (c *Config) DepthAxis() int {
	if c.XYGrid {
		return math.AxisZ
	}
	return math.AxisY
}

// PlaneAxes returns the world axes that grid X and grid Y map onto.
func (c *Config) PlaneAxes() (int, int) {
	if c.XYGrid {
		return math.AxisX, math.AxisY
	}
	return math.AxisX, math.AxisZ
}

// WorldPoint lifts an in-plane point and a depth into world space.
func (c *Config) WorldPoint(plane math.Vec2, depth float32) math.Vec3 {
	ax, ay := c.PlaneAxes()
	var p math.Vec3
	p = p.WithAxis(ax, plane.X)
	p = p.WithAxis(ay, plane.Y)
	return p.WithAxis(c.DepthAxis(), depth)
}

// PlanePoint projects a world position onto the grid plane.
func (c *Config) PlanePoint(pos math.Vec3) math.Vec2 {
	ax, ay := c.PlaneAxes()
	return math.Vec2{X: pos.Axis(ax), Y: pos.Axis(ay)}
}
