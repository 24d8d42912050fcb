// Package formats reads and writes on-disk walkability grids.
//
// GAT (Ground Altitude Table) stores one record per cell: four corner
// altitudes and a cell type. It is the grid format gridpath loads maps from
// and exports classified maps to.
package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
	ErrInvalidGATDimensions  = errors.New("invalid GAT dimensions")
)

const (
	gatMagic = "GRAT"
	// MaxGATSide bounds each side of a grid accepted by the parser.
	MaxGATSide = 4096
)

// GATVersion is the file version.
type GATVersion struct {
	Major uint8
	Minor uint8
}

// DefaultGATVersion is written by EncodeGAT when a grid has no version.
var DefaultGATVersion = GATVersion{Major: 1, Minor: 2}

// String returns the version as "Major.Minor".
func (v GATVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GATCellType is the walkability class of a cell.
type GATCellType uint32

// Cell types.
const (
	GATWalkable      GATCellType = 0
	GATBlocked       GATCellType = 1
	GATWater         GATCellType = 2 // deep water
	GATWalkableWater GATCellType = 3 // shallows
	GATSnipeable     GATCellType = 4 // cliff edge, blocks walking only
	GATBlockedSnipe  GATCellType = 5
)

// String returns a human-readable cell type name.
func (t GATCellType) String() string {
	switch t {
	case GATWalkable:
		return "Walkable"
	case GATBlocked:
		return "Blocked"
	case GATWater:
		return "Water"
	case GATWalkableWater:
		return "Walkable+Water"
	case GATSnipeable:
		return "Snipeable"
	case GATBlockedSnipe:
		return "Blocked+Snipe"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// Tag returns the terrain tag used when the cell is classified.
func (t GATCellType) Tag() string {
	switch t {
	case GATWalkable:
		return "ground"
	case GATBlocked, GATBlockedSnipe:
		return "wall"
	case GATWater, GATWalkableWater:
		return "water"
	case GATSnipeable:
		return "cliff"
	default:
		return ""
	}
}

// IsWalkable reports whether the type allows walking.
func (t GATCellType) IsWalkable() bool {
	return t == GATWalkable || t == GATWalkableWater
}

// IsBlocked reports whether the type blocks movement and sight.
func (t GATCellType) IsBlocked() bool {
	return t == GATBlocked || t == GATBlockedSnipe
}

// IsWater reports whether the cell holds water.
func (t GATCellType) IsWater() bool {
	return t == GATWater || t == GATWalkableWater
}

// GATCell is one grid cell.
type GATCell struct {
	// Heights are the corner altitudes:
	// [0] bottom-left, [1] bottom-right, [2] top-left, [3] top-right.
	Heights [4]float32
	Type    GATCellType
}

// AverageHeight returns the mean of the four corner altitudes.
func (c *GATCell) AverageHeight() float32 {
	return (c.Heights[0] + c.Heights[1] + c.Heights[2] + c.Heights[3]) / 4.0
}

// Slope returns the spread between the highest and lowest corner.
func (c *GATCell) Slope() float32 {
	lo, hi := c.Heights[0], c.Heights[0]
	for _, h := range c.Heights[1:] {
		lo = min(lo, h)
		hi = max(hi, h)
	}
	return hi - lo
}

// GAT is a parsed Ground Altitude Table. Cells are row-major, y up.
type GAT struct {
	Version GATVersion
	Width   uint32
	Height  uint32
	Cells   []GATCell
}

// NewGAT returns a flat, walkable grid.
func NewGAT(width, height uint32) (*GAT, error) {
	if err := checkGATSize(width, height); err != nil {
		return nil, err
	}
	return &GAT{
		Version: DefaultGATVersion,
		Width:   width,
		Height:  height,
		Cells:   make([]GATCell, int(width)*int(height)),
	}, nil
}

func checkGATSize(width, height uint32) error {
	if width == 0 || height == 0 || width > MaxGATSide || height > MaxGATSide {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGATDimensions, width, height)
	}
	return nil
}

// Cell returns the cell at (x, y), or nil outside the grid.
func (g *GAT) Cell(x, y int) *GATCell {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Cells[y*int(g.Width)+x]
}

// IsWalkable reports whether (x, y) is inside the grid and walkable.
func (g *GAT) IsWalkable(x, y int) bool {
	cell := g.Cell(x, y)
	return cell != nil && cell.Type.IsWalkable()
}

// CountByType returns the number of cells of each type.
func (g *GAT) CountByType() map[GATCellType]int {
	counts := make(map[GATCellType]int)
	for _, cell := range g.Cells {
		counts[cell.Type]++
	}
	return counts
}

// AltitudeRange returns the lowest and highest corner altitude.
func (g *GAT) AltitudeRange() (lo, hi float32) {
	if len(g.Cells) == 0 {
		return 0, 0
	}
	lo, hi = g.Cells[0].Heights[0], g.Cells[0].Heights[0]
	for _, cell := range g.Cells {
		for _, h := range cell.Heights {
			lo = min(lo, h)
			hi = max(hi, h)
		}
	}
	return lo, hi
}

type gatHeader struct {
	Magic  [4]byte
	Minor  uint8
	Major  uint8
	Width  uint32
	Height uint32
}

const gatHeaderSize = 14

// ParseGAT parses a GAT file from raw bytes.
func ParseGAT(data []byte) (*GAT, error) {
	if len(data) < gatHeaderSize {
		return nil, ErrTruncatedGATData
	}
	return DecodeGAT(bytes.NewReader(data))
}

// DecodeGAT reads a GAT file from r.
func DecodeGAT(r io.Reader) (*GAT, error) {
	var hdr gatHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedGATData)
	}
	if string(hdr.Magic[:]) != gatMagic {
		return nil, ErrInvalidGATMagic
	}

	// The version is stored minor first.
	version := GATVersion{Major: hdr.Major, Minor: hdr.Minor}
	// 1.2 through 3.x share the cell layout.
	if version.Major < 1 || version.Major > 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGATVersion, version)
	}
	if err := checkGATSize(hdr.Width, hdr.Height); err != nil {
		return nil, err
	}

	gat := &GAT{
		Version: version,
		Width:   hdr.Width,
		Height:  hdr.Height,
		Cells:   make([]GATCell, int(hdr.Width)*int(hdr.Height)),
	}
	if err := binary.Read(r, binary.LittleEndian, gat.Cells); err != nil {
		return nil, fmt.Errorf("%w: reading %d cells", ErrTruncatedGATData, len(gat.Cells))
	}
	return gat, nil
}

// ParseGATFile parses a GAT file from disk.
func ParseGATFile(path string) (*GAT, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	defer f.Close()
	return DecodeGAT(bufio.NewReader(f))
}

// EncodeGAT writes g to w in the GAT layout.
func EncodeGAT(w io.Writer, g *GAT) error {
	if err := checkGATSize(g.Width, g.Height); err != nil {
		return err
	}
	if len(g.Cells) != int(g.Width)*int(g.Height) {
		return fmt.Errorf("%w: %d cells for %dx%d", ErrInvalidGATDimensions, len(g.Cells), g.Width, g.Height)
	}
	v := g.Version
	if v.Major == 0 {
		v = DefaultGATVersion
	}
	hdr := gatHeader{Minor: v.Minor, Major: v.Major, Width: g.Width, Height: g.Height}
	copy(hdr.Magic[:], gatMagic)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("writing GAT header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, g.Cells); err != nil {
		return fmt.Errorf("writing GAT cells: %w", err)
	}
	return bw.Flush()
}

// WriteGATFile writes g to path, replacing any existing file.
func WriteGATFile(path string, g *GAT) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating GAT file: %w", err)
	}
	if err := EncodeGAT(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
