// Package generator classifies the cells of a navgrid.Map as walkable or
// blocked by querying a Classifier and applying layered override rules.
package generator

import (
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// Hit is one object found at a sampled position.
type Hit struct {
	ID    string // stable identity used by the forced override lists
	Layer int
	Tag   string
	Depth float32 // world coordinate on the depth axis
}

// Classifier reports what occupies a world position.
//
// Classify appends the hits at pos to dst and returns the extended slice.
// Sources decide from cfg whether to sample a point or the whole cell
// (CheckLargerArea) and whether to stop at the first hit (SingleHit).
// A full generation calls Classify once per cell, so implementations should
// avoid allocating beyond dst.
type Classifier interface {
	Classify(dst []Hit, pos math.Vec3, cfg *navgrid.Config) []Hit
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(dst []Hit, pos math.Vec3, cfg *navgrid.Config) []Hit

// Classify calls f.
func (f ClassifierFunc) Classify(dst []Hit, pos math.Vec3, cfg *navgrid.Config) []Hit {
	return f(dst, pos, cfg)
}
