// Package pathfind runs A* searches over a navgrid.Map, either on the calling
// goroutine or through a FIFO request queue served by a background worker.
//
// Searches reuse the scratch arrays owned by the Map and allocate only the
// returned waypoint slice. Exactly one search runs at a time in the process.
package pathfind

import (
	stdmath "math"

	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// Options are the per-search parameters.
type Options struct {
	// Aggression scales the Manhattan heuristic. Larger values expand fewer
	// nodes but may return longer paths. The sign is ignored.
	Aggression float32
	Diagonal   bool
	// MaxDepthDifference is the largest depth step between neighbours that
	// can be taken. Zero allows only level moves.
	MaxDepthDifference float32
	// DepthCostWeight adds weight*|depth step| to every move.
	DepthCostWeight float32
	// Disallowed cells are closed before the search starts. Cells outside
	// the grid are ignored.
	Disallowed []navgrid.Coordinate
	// PreventCornerCutting rejects a diagonal move unless both orthogonal
	// cells it passes are walkable.
	PreventCornerCutting bool
}

// DefaultOptions returns aggression 1 with diagonal moves, no depth cost and
// no depth step limit.
func DefaultOptions() Options {
	return Options{
		Aggression:         1,
		Diagonal:           true,
		MaxDepthDifference: float32(stdmath.Inf(1)),
	}
}

// Result is the outcome of one search.
type Result struct {
	Found     bool
	Waypoints []math.Vec3 // node positions from start to end
	Cost      float32     // G of the end node
	Expanded  int         // nodes closed by the search, disallowed cells excluded
}
