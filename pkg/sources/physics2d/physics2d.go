// Package physics2d classifies grid cells against static colliders held in a
// chipmunk physics space.
package physics2d

import (
	"slices"
	"sync"

	"github.com/jakecoffman/cp"

	"github.com/Faultbox/gridpath/pkg/generator"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// Collider is the metadata attached to every shape through Shape.UserData.
type Collider struct {
	ID    string
	Layer int
	Tag   string
}

// Source is a generator.Classifier over a cp.Space. The grid plane maps onto
// the space's X/Y plane.
type Source struct {
	mu    sync.Mutex
	space *cp.Space

	shapes []*cp.Shape // scratch, reused between queries
}

var _ generator.Classifier = (*Source)(nil)

// New returns a source with an empty space.
func New() *Source {
	return &Source{space: cp.NewSpace()}
}

// Space returns the underlying physics space.
func (s *Source) Space() *cp.Space {
	return s.space
}

// AddBox adds an axis-aligned static box collider.
func (s *Source) AddBox(bb cp.BB, c Collider) *cp.Shape {
	return s.AddShape(cp.NewBox2(s.space.StaticBody, bb, 0), c)
}

// AddCircle adds a static circle collider.
func (s *Source) AddCircle(center cp.Vector, radius float64, c Collider) *cp.Shape {
	return s.AddShape(cp.NewCircle(s.space.StaticBody, radius, center), c)
}

// AddPolygon adds the convex hull of verts as a static collider.
func (s *Source) AddPolygon(verts []cp.Vector, c Collider) *cp.Shape {
	shape := cp.NewPolyShape(s.space.StaticBody, len(verts), verts, cp.NewTransformIdentity(), 0)
	return s.AddShape(shape, c)
}

// AddShape attaches c to shape and adds it to the space. The shape must not
// belong to another space.
func (s *Source) AddShape(shape *cp.Shape, c Collider) *cp.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()

	shape.UserData = c
	return s.space.AddShape(shape)
}

// Remove takes shape out of the space.
func (s *Source) Remove(shape *cp.Shape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.space.RemoveShape(shape)
}

// Classify reports every collider under the cell sample. A point sample keeps
// shapes that contain the point; a larger-area sample keeps shapes whose
// bounding box overlaps the cell-sized box centred on it. Hits come back in
// insertion order.
func (s *Source) Classify(dst []generator.Hit, pos math.Vec3, cfg *navgrid.Config) []generator.Hit {
	p := cfg.PlanePoint(pos)
	at := cp.Vector{X: float64(p.X), Y: float64(p.Y)}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.shapes = s.shapes[:0]
	if cfg.CheckLargerArea {
		bb := cp.NewBBForExtents(at, float64(cfg.CellSize.X)/2, float64(cfg.CellSize.Y)/2)
		s.space.BBQuery(bb, cp.SHAPE_FILTER_ALL, s.collect, nil)
	} else {
		s.space.BBQuery(cp.NewBBForCircle(at, 0), cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, _ interface{}) {
			if shape.PointQuery(at).Distance <= 0 {
				s.collect(shape, nil)
			}
		}, nil)
	}

	slices.SortFunc(s.shapes, func(a, b *cp.Shape) int {
		switch {
		case a.HashId() < b.HashId():
			return -1
		case a.HashId() > b.HashId():
			return 1
		}
		return 0
	})

	for _, shape := range s.shapes {
		c, _ := shape.UserData.(Collider)
		dst = append(dst, generator.Hit{ID: c.ID, Layer: c.Layer, Tag: c.Tag, Depth: cfg.DefaultDepth})
		if cfg.SingleHit {
			break
		}
	}
	return dst
}

func (s *Source) collect(shape *cp.Shape, _ interface{}) {
	s.shapes = append(s.shapes, shape)
}
