// Package scene loads YAML collider descriptions and turns them into
// classification sources.
package scene

import (
	"errors"
	"fmt"
	"os"

	"github.com/jakecoffman/cp"
	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/gridpath/pkg/generator"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
	"github.com/Faultbox/gridpath/pkg/sources/physics2d"
	"github.com/Faultbox/gridpath/pkg/sources/volume"
)

// Scene kinds.
const (
	Kind2D = "2d"
	Kind3D = "3d"
)

// ErrInvalidScene is returned for scenes that cannot be built.
var ErrInvalidScene = errors.New("invalid scene")

// Scene is a set of static colliders plus an optional grid.
type Scene struct {
	Kind      string          `yaml:"kind"`
	Grid      *navgrid.Config `yaml:"grid"`
	Colliders []Collider      `yaml:"colliders"`
}

// Collider is one shape. Exactly one of Box, Circle and Polygon is set.
// Circles are only available in 2D scenes; Bottom and Top only matter in 3D.
type Collider struct {
	ID      string      `yaml:"id"`
	Layer   int         `yaml:"layer"`
	Tag     string      `yaml:"tag"`
	Box     *BoxSpec    `yaml:"box"`
	Circle  *CircleSpec `yaml:"circle"`
	Polygon []math.Vec2 `yaml:"polygon"`
	Bottom  float64     `yaml:"bottom"`
	Top     float64     `yaml:"top"`
}

// BoxSpec is an axis-aligned rectangle on the grid plane.
type BoxSpec struct {
	Min math.Vec2 `yaml:"min"`
	Max math.Vec2 `yaml:"max"`
}

// CircleSpec is a circle on the grid plane.
type CircleSpec struct {
	Center math.Vec2 `yaml:"center"`
	Radius float32   `yaml:"radius"`
}

// Load reads a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scene.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Kind == "" {
		s.Kind = Kind2D
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the kind and that every collider has exactly one shape.
func (s *Scene) Validate() error {
	if s.Kind != Kind2D && s.Kind != Kind3D {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidScene, s.Kind)
	}
	for i, c := range s.Colliders {
		shapes := 0
		if c.Box != nil {
			shapes++
		}
		if c.Circle != nil {
			shapes++
		}
		if len(c.Polygon) > 0 {
			shapes++
		}
		if shapes != 1 {
			return fmt.Errorf("%w: collider %d (%q) needs exactly one shape", ErrInvalidScene, i, c.ID)
		}
		if c.Circle != nil && s.Kind == Kind3D {
			return fmt.Errorf("%w: collider %d (%q): circles are 2d only", ErrInvalidScene, i, c.ID)
		}
		if len(c.Polygon) > 0 && len(c.Polygon) < 3 {
			return fmt.Errorf("%w: collider %d (%q): polygon needs 3 points", ErrInvalidScene, i, c.ID)
		}
	}
	return nil
}

// GridConfig returns the scene's grid, or fallback when it has none. 3D
// scenes always classify in 3D.
func (s *Scene) GridConfig(fallback navgrid.Config) navgrid.Config {
	cfg := fallback.Clone()
	if s.Grid != nil {
		cfg = s.Grid.Clone()
	}
	if s.Kind == Kind3D {
		cfg.Use3D = true
	}
	return cfg
}

// Build creates the classification source for the scene.
func (s *Scene) Build() (generator.Classifier, error) {
	if s.Kind == Kind3D {
		return s.buildVolume()
	}
	return s.buildPhysics(), nil
}

func (s *Scene) buildPhysics() *physics2d.Source {
	src := physics2d.New()
	for _, c := range s.Colliders {
		meta := physics2d.Collider{ID: c.ID, Layer: c.Layer, Tag: c.Tag}
		switch {
		case c.Box != nil:
			src.AddBox(cp.BB{
				L: float64(c.Box.Min.X), B: float64(c.Box.Min.Y),
				R: float64(c.Box.Max.X), T: float64(c.Box.Max.Y),
			}, meta)
		case c.Circle != nil:
			center := cp.Vector{X: float64(c.Circle.Center.X), Y: float64(c.Circle.Center.Y)}
			src.AddCircle(center, float64(c.Circle.Radius), meta)
		default:
			verts := make([]cp.Vector, len(c.Polygon))
			for i, p := range c.Polygon {
				verts[i] = cp.Vector{X: float64(p.X), Y: float64(p.Y)}
			}
			src.AddPolygon(verts, meta)
		}
	}
	return src
}

func (s *Scene) buildVolume() (*volume.Source, error) {
	src := volume.New()
	for _, c := range s.Colliders {
		var v volume.Volume
		if c.Box != nil {
			v = volume.Box(c.ID, c.Layer, c.Tag, c.Box.Min, c.Box.Max, c.Bottom, c.Top)
		} else {
			ring := make(orb.Ring, 0, len(c.Polygon)+1)
			for _, p := range c.Polygon {
				ring = append(ring, orb.Point{float64(p.X), float64(p.Y)})
			}
			ring = append(ring, ring[0])
			v = volume.Volume{ID: c.ID, Layer: c.Layer, Tag: c.Tag, Footprint: orb.Polygon{ring}, Bottom: c.Bottom, Top: c.Top}
		}
		if err := src.Add(v); err != nil {
			return nil, err
		}
	}
	return src, nil
}
