package models

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Volume represents a CT scan loaded from disk as a regular grid of
// signed 16-bit density samples
type Volume struct {
	// Data holds the samples in file order: X varies fastest, then Y, then Z
	Data []int16

	// Width, Height and Depth are the X, Y and Z extents in voxels
	Width  int
	Height int
	Depth  int

	min int16
	max int16
}

// NewVolume wraps already decoded samples. min and max must bound every
// sample in data.
func NewVolume(data []int16, width, height, depth int, min, max int16) *Volume {
	return &Volume{
		Data:   data,
		Width:  width,
		Height: height,
		Depth:  depth,
		min:    min,
		max:    max,
	}
}

// Min returns the smallest sample seen while loading
func (v *Volume) Min() int16 { return v.min }

// Max returns the largest sample seen while loading
func (v *Volume) Max() int16 { return v.max }

// Index returns the offset of (x, y, z) in Data
func (v *Volume) Index(x, y, z int) int {
	return x + v.Width*(y+v.Height*z)
}

// At returns the sample at (x, y, z)
func (v *Volume) At(x, y, z int) int16 {
	return v.Data[v.Index(x, y, z)]
}

// Extent returns the number of voxels along the given axis
func (v *Volume) Extent(axis Axis) int {
	switch axis {
	case AxisX:
		return v.Width
	case AxisY:
		return v.Height
	default:
		return v.Depth
	}
}

// WorkingGrid is the cubic render buffer that holds either the
// thresholded, re-centered volume or its rotated copy.
// Columns along the view (Z) axis are contiguous in memory.
type WorkingGrid struct {
	data []int32
	size int
}

// NewWorkingGrid allocates a zeroed size×size×size grid
func NewWorkingGrid(size int) *WorkingGrid {
	return &WorkingGrid{
		data: make([]int32, size*size*size),
		size: size,
	}
}

// Size returns the edge length of the cube
func (g *WorkingGrid) Size() int { return g.size }

// Index returns the offset of (x, y, z) in the backing buffer
func (g *WorkingGrid) Index(x, y, z int) int {
	return (x*g.size+y)*g.size + z
}

// InBounds reports whether (x, y, z) lies inside the cube
func (g *WorkingGrid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size && z >= 0 && z < g.size
}

func (g *WorkingGrid) At(x, y, z int) int32 {
	return g.data[g.Index(x, y, z)]
}

func (g *WorkingGrid) Set(x, y, z int, value int32) {
	g.data[g.Index(x, y, z)] = value
}

// Add accumulates value into (x, y, z)
func (g *WorkingGrid) Add(x, y, z int, value int32) {
	g.data[g.Index(x, y, z)] += value
}

// AtomicAdd accumulates value into (x, y, z) and is safe to call from
// several goroutines at once
func (g *WorkingGrid) AtomicAdd(x, y, z int, value int32) {
	atomic.AddInt32(&g.data[g.Index(x, y, z)], value)
}

// Column returns the samples along Z at (x, y). The slice aliases the grid.
func (g *WorkingGrid) Column(x, y int) []int32 {
	start := g.Index(x, y, 0)
	return g.data[start : start+g.size]
}

// Clone returns a deep copy of the grid
func (g *WorkingGrid) Clone() *WorkingGrid {
	c := &WorkingGrid{
		data: make([]int32, len(g.data)),
		size: g.size,
	}
	copy(c.data, g.data)
	return c
}

// NonZero counts voxels with a non-zero value
func (g *WorkingGrid) NonZero() int {
	n := 0
	for _, v := range g.data {
		if v != 0 {
			n++
		}
	}
	return n
}

// Axis selects one of the three volume axes
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the lower-case axis name
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts "x", "y" or "z" in either case
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("invalid axis: %s (must be x, y, or z)", s)
	}
}

// Axes lists the three axes in order
var Axes = []Axis{AxisX, AxisY, AxisZ}
