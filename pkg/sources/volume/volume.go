// Package volume classifies grid cells against extruded polygons stored in
// an R-tree.
//
// Each Volume is a footprint on the grid plane swept along the depth axis
// between Bottom and Top. A cell is sampled with a ray across the configured
// depth range: an XZ grid casts down from MaxDepth and reports the top
// surface it lands on; an XY grid casts forward from MinDepth and reports the
// first face it meets.
package volume

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/Faultbox/gridpath/pkg/generator"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// ErrInvalidVolume is returned for volumes with no usable footprint.
var ErrInvalidVolume = errors.New("invalid volume")

// sampleTolerance pads point queries so that touching rectangles intersect.
const sampleTolerance = 1e-6

// Volume is an extruded polygon.
type Volume struct {
	ID    string
	Layer int
	Tag   string

	// Footprint is in grid-plane coordinates.
	Footprint orb.Polygon
	Bottom    float64
	Top       float64
}

// Box returns a volume with a rectangular footprint.
func Box(id string, layer int, tag string, lo, hi math.Vec2, bottom, top float64) Volume {
	b := orb.Bound{
		Min: orb.Point{float64(lo.X), float64(lo.Y)},
		Max: orb.Point{float64(hi.X), float64(hi.Y)},
	}
	return Volume{ID: id, Layer: layer, Tag: tag, Footprint: b.ToPolygon(), Bottom: bottom, Top: top}
}

type entry struct {
	vol   Volume
	seq   int
	bound orb.Bound
	rect  rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

type candidate struct {
	e     *entry
	depth float64
}

// Source is a generator.Classifier over a set of volumes.
type Source struct {
	mu   sync.Mutex
	tree *rtreego.Rtree
	byID map[string][]*entry
	seq  int

	scratch []candidate
}

var _ generator.Classifier = (*Source)(nil)

// New returns an empty source.
func New() *Source {
	return &Source{
		tree: rtreego.NewTree(3, 25, 50),
		byID: make(map[string][]*entry),
	}
}

// Add indexes v. Bottom and Top are swapped when reversed.
func (s *Source) Add(v Volume) error {
	if len(v.Footprint) == 0 || len(v.Footprint[0]) < 3 {
		return fmt.Errorf("%w: %q needs a ring of at least 3 points", ErrInvalidVolume, v.ID)
	}
	if v.Bottom > v.Top {
		v.Bottom, v.Top = v.Top, v.Bottom
	}
	bound := v.Footprint.Bound()
	rect, err := rtreego.NewRectFromPoints(
		rtreego.Point{bound.Min[0], bound.Min[1], v.Bottom},
		rtreego.Point{bound.Max[0], bound.Max[1], v.Top},
	)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidVolume, v.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{vol: v, seq: s.seq, bound: bound, rect: rect}
	s.seq++
	s.tree.Insert(e)
	s.byID[v.ID] = append(s.byID[v.ID], e)
	return nil
}

// Remove drops every volume with the given id and reports how many there were.
func (s *Source) Remove(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.byID[id]
	for _, e := range entries {
		s.tree.Delete(e)
	}
	delete(s.byID, id)
	return len(entries)
}

// Len returns the number of indexed volumes.
func (s *Source) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Size()
}

// Classify casts a ray through the cell sample and reports the volumes it
// meets, nearest first.
func (s *Source) Classify(dst []generator.Hit, pos math.Vec3, cfg *navgrid.Config) []generator.Hit {
	p := cfg.PlanePoint(pos)
	at := orb.Point{float64(p.X), float64(p.Y)}
	lo, hi := float64(cfg.MinDepth), float64(cfg.MaxDepth)

	cell := orb.Bound{Min: at, Max: at}
	if cfg.CheckLargerArea {
		hx, hy := float64(cfg.CellSize.X)/2, float64(cfg.CellSize.Y)/2
		cell = orb.Bound{Min: orb.Point{at[0] - hx, at[1] - hy}, Max: orb.Point{at[0] + hx, at[1] + hy}}
	}
	query, err := rtreego.NewRectFromPoints(
		rtreego.Point{cell.Min[0] - sampleTolerance, cell.Min[1] - sampleTolerance, lo - sampleTolerance},
		rtreego.Point{cell.Max[0] + sampleTolerance, cell.Max[1] + sampleTolerance, hi + sampleTolerance},
	)
	if err != nil {
		return dst
	}

	// An XZ grid looks down onto surfaces; an XY grid looks along +depth.
	down := !cfg.XYGrid

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scratch = s.scratch[:0]
	for _, sp := range s.tree.SearchIntersect(query) {
		e := sp.(*entry)
		if e.vol.Top < lo || e.vol.Bottom > hi {
			continue
		}
		if !overlaps(e, cell, cfg.CheckLargerArea) {
			continue
		}
		depth := max(e.vol.Bottom, lo)
		if down {
			depth = min(e.vol.Top, hi)
		}
		s.scratch = append(s.scratch, candidate{e: e, depth: depth})
	}

	slices.SortFunc(s.scratch, func(a, b candidate) int {
		if a.depth != b.depth {
			if (a.depth > b.depth) == down {
				return -1
			}
			return 1
		}
		return a.e.seq - b.e.seq
	})

	for _, c := range s.scratch {
		dst = append(dst, generator.Hit{
			ID:    c.e.vol.ID,
			Layer: c.e.vol.Layer,
			Tag:   c.e.vol.Tag,
			Depth: float32(c.depth),
		})
		if cfg.SingleHit {
			break
		}
	}
	return dst
}

// overlaps tests the footprint against the sample. An area sample counts when
// either shape has a vertex inside the other.
func overlaps(e *entry, cell orb.Bound, area bool) bool {
	if !area {
		return planar.PolygonContains(e.vol.Footprint, cell.Min)
	}
	if !e.bound.Intersects(cell) {
		return false
	}
	for _, pt := range cell.ToRing() {
		if planar.PolygonContains(e.vol.Footprint, pt) {
			return true
		}
	}
	for _, pt := range e.vol.Footprint[0] {
		if cell.Contains(pt) {
			return true
		}
	}
	return planar.PolygonContains(e.vol.Footprint, cell.Center())
}
