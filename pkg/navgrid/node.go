// Package navgrid holds the dense node grid that the generator classifies and
// the pathfinder searches.
package navgrid

import (
	"fmt"

	"github.com/Faultbox/gridpath/pkg/math"
)

// Sentinels for the search scratch fields of a Node.
const (
	NoParent    = -1
	NoHeapIndex = -1
)

// Coordinate identifies a grid cell. Cells are zero-based and stored row-major.
type Coordinate struct {
	X, Y int
}

// String returns the coordinate as "x,y".
func (c Coordinate) String() string {
	return fmt.Sprintf("%d,%d", c.X, c.Y)
}

// Node is one grid cell.
//
// Index, Position, Walkable and MoveCost are written by the generator. The
// remaining fields are search scratch space: they belong to whichever search
// holds the owning Map's lock and read as their defaults at all other times.
type Node struct {
	Index    Coordinate
	Position math.Vec3
	Walkable bool
	MoveCost float32

	Parent       int // offset of the parent node in the same grid
	OnOpenList   bool
	OnClosedList bool
	F, G, H      float32
	HeapIndex    int
}

// NewNode returns a non-walkable node with default scratch state.
func NewNode(index Coordinate, position math.Vec3) Node {
	n := Node{Index: index, Position: position}
	n.Reset()
	return n
}

// Reset restores the scratch fields to their defaults.
func (n *Node) Reset() {
	n.Parent = NoParent
	n.OnOpenList = false
	n.OnClosedList = false
	n.F = 0
	n.G = 0
	n.H = 0
	n.HeapIndex = NoHeapIndex
}

// IsReset reports whether every scratch field holds its default.
func (n *Node) IsReset() bool {
	return n.Parent == NoParent && !n.OnOpenList && !n.OnClosedList &&
		n.F == 0 && n.G == 0 && n.H == 0 && n.HeapIndex == NoHeapIndex
}
