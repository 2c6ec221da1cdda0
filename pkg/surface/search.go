// Package surface locates the first visible voxel behind every pixel of the
// shaded view.
package surface

import (
	"context"

	"golang.org/x/sync/errgroup"

	"skullrender/internal/models"
)

// NoHit marks a pixel whose ray never meets a non-zero voxel
const NoHit = -1

// PixelPlan holds, for each (x, y) pixel, the Z index of the first
// non-zero voxel or NoHit
type PixelPlan struct {
	Size  int
	Depth []int
}

// NewPixelPlan allocates a plan with every pixel set to NoHit
func NewPixelPlan(size int) *PixelPlan {
	depth := make([]int, size*size)
	for i := range depth {
		depth[i] = NoHit
	}
	return &PixelPlan{Size: size, Depth: depth}
}

// At returns the hit depth for pixel (x, y)
func (p *PixelPlan) At(x, y int) int {
	return p.Depth[y*p.Size+x]
}

func (p *PixelPlan) set(x, y, z int) {
	p.Depth[y*p.Size+x] = z
}

// Hits counts pixels with a surface
func (p *PixelPlan) Hits() int {
	n := 0
	for _, d := range p.Depth {
		if d != NoHit {
			n++
		}
	}
	return n
}

// FindFirstHits scans every column of grid along Z from index 0 and records
// the first non-zero sample. This is an opaque first-hit policy with no
// accumulation.
func FindFirstHits(ctx context.Context, grid *models.WorkingGrid, workers int) (*PixelPlan, error) {
	size := grid.Size()
	plan := NewPixelPlan(size)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for x := 0; x < size; x++ {
		x := x
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for y := 0; y < size; y++ {
				if z := firstNonZero(grid.Column(x, y)); z != NoHit {
					plan.set(x, y, z)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plan, nil
}

func firstNonZero(column []int32) int {
	for z, v := range column {
		if v != 0 {
			return z
		}
	}
	return NoHit
}
