// Package rotation turns the thresholded CT volume inside the cubic working
// grid. Every angle change rebuilds the rotated grid from the unrotated one
// by scattering each voxel into the eight cells around its new position.
package rotation

import (
	"context"
	"math"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"skullrender/internal/models"
)

// Options controls how the volume is placed in the working grid
type Options struct {
	// Size is the edge length S of the working grid
	Size int

	// ZScale replicates each source Z slice this many times
	ZScale int

	// BoneMin and BoneMax bound the kept densities, both exclusive
	BoneMin int
	BoneMax int

	// Workers limits the goroutines used by a rebuild
	Workers int
}

// Engine owns the unrotated and rotated working grids and the current
// rotation angles
type Engine struct {
	opts Options

	unrotated *models.WorkingGrid
	rotated   *models.WorkingGrid

	xAngle, yAngle int
	matrix         Matrix4
}

// NewEngine builds the unrotated grid from vol and starts at angles (0, 0),
// where the rotated grid equals the unrotated one
func NewEngine(vol *models.Volume, opts Options) *Engine {
	if opts.ZScale < 1 {
		opts.ZScale = 1
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	e := &Engine{
		opts:   opts,
		matrix: Identity(),
	}
	e.unrotated = BuildUnrotated(vol, opts)
	e.rotated = e.unrotated.Clone()

	glog.V(1).Infof("Working grid %d^3 holds %d bone voxels", opts.Size, e.unrotated.NonZero())
	return e
}

// BuildUnrotated centers vol in an S×S×S grid, stretching Z by ZScale and
// zeroing every sample outside the bone window. Voxels that do not fit in
// the cube are dropped.
func BuildUnrotated(vol *models.Volume, opts Options) *models.WorkingGrid {
	size := opts.Size
	zScale := opts.ZScale
	if zScale < 1 {
		zScale = 1
	}
	grid := models.NewWorkingGrid(size)

	xShift := (size - vol.Width) / 2
	yShift := (size - vol.Height) / 2
	zShift := (size - vol.Depth*zScale) / 2

	for z := 0; z < vol.Depth; z++ {
		for y := 0; y < vol.Height; y++ {
			for x := 0; x < vol.Width; x++ {
				v := int(vol.At(x, y, z))
				if v <= opts.BoneMin || v >= opts.BoneMax {
					continue
				}
				gx, gy := x+xShift, y+yShift
				for r := 0; r < zScale; r++ {
					gz := z*zScale + r + zShift
					if grid.InBounds(gx, gy, gz) {
						grid.Set(gx, gy, gz, int32(v))
					}
				}
			}
		}
	}
	return grid
}

// SetAngles adds the deltas to the current angles, wraps them into
// [0, 360) and rebuilds the rotated grid. On error the engine keeps its
// previous angles and grid.
func (e *Engine) SetAngles(ctx context.Context, dAzimuth, dElevation int) error {
	xAngle := WrapAngle(e.xAngle + dAzimuth)
	yAngle := WrapAngle(e.yAngle + dElevation)
	matrix := RotationX(xAngle).Mul(RotationY(yAngle))

	rotated, err := e.rotate(ctx, xAngle, yAngle, matrix)
	if err != nil {
		return err
	}

	e.xAngle, e.yAngle = xAngle, yAngle
	e.matrix = matrix
	e.rotated = rotated
	return nil
}

// rotate resamples the unrotated grid through matrix into a fresh grid
func (e *Engine) rotate(ctx context.Context, xAngle, yAngle int, matrix Matrix4) (*models.WorkingGrid, error) {
	if xAngle == 0 && yAngle == 0 {
		return e.unrotated.Clone(), nil
	}

	size := e.opts.Size
	center := float64(size / 2)
	dst := models.NewWorkingGrid(size)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for x := 0; x < size; x++ {
		x := x
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for y := 0; y < size; y++ {
				column := e.unrotated.Column(x, y)
				for z, v := range column {
					if v == 0 {
						continue
					}
					px, py, pz := matrix.Apply(float64(x)-center, float64(y)-center, float64(z)-center)
					Scatter(dst, px+center, py+center, pz+center, v)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}

// Scatter spreads value over the eight grid cells surrounding (x, y, z).
// Each axis contributes a weight of 1-frac for the lower cell and frac for
// the upper one, and a cell receives value scaled by the length of its
// weight vector (wx, wy, wz). Contributions are added, never clamped, and
// cells outside the grid are skipped.
func Scatter(dst *models.WorkingGrid, x, y, z float64, value int32) {
	bx, by, bz := math.Floor(x), math.Floor(y), math.Floor(z)
	fx, fy, fz := x-bx, y-by, z-bz
	ix, iy, iz := int(bx), int(by), int(bz)

	for i := 0; i < 2; i++ {
		wx := axisWeight(fx, i)
		for j := 0; j < 2; j++ {
			wy := axisWeight(fy, j)
			for k := 0; k < 2; k++ {
				wz := axisWeight(fz, k)

				cx, cy, cz := ix+i, iy+j, iz+k
				if !dst.InBounds(cx, cy, cz) {
					continue
				}
				w := math.Sqrt(wx*wx + wy*wy + wz*wz)
				if c := int32(float64(value) * w); c != 0 {
					dst.AtomicAdd(cx, cy, cz, c)
				}
			}
		}
	}
}

func axisWeight(frac float64, upper int) float64 {
	if upper == 0 {
		return 1 - frac
	}
	return frac
}

// WrapAngle maps any whole number of degrees into [0, 360)
func WrapAngle(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// CurrentGrid returns the rotated grid consumed by rendering. Callers must
// not modify it.
func (e *Engine) CurrentGrid() *models.WorkingGrid { return e.rotated }

// UnrotatedGrid returns the thresholded, re-centered reference grid
func (e *Engine) UnrotatedGrid() *models.WorkingGrid { return e.unrotated }

// Angles returns the current azimuth and elevation in degrees
func (e *Engine) Angles() (xAngle, yAngle int) { return e.xAngle, e.yAngle }

// Matrix returns the combined rotation built from the current angles
func (e *Engine) Matrix() Matrix4 { return e.matrix }

// Size returns the working grid edge length
func (e *Engine) Size() int { return e.opts.Size }
