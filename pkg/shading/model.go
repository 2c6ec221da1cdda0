// Package shading lights the iso-surface found by the surface search. The
// surface normal comes from central differences of the density field and
// lighting follows an ambient, diffuse and specular (Phong-Blinn) model.
package shading

import (
	"context"
	"errors"
	"image"
	"math"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"skullrender/internal/models"
	"skullrender/pkg/config"
	"skullrender/pkg/surface"
	"skullrender/pkg/vector"
)

// Params holds the lighting constants
type Params struct {
	// Size is the working grid edge length S
	Size int

	Ambient   float64
	Diffuse   float64
	Specular  float64
	Shininess float64

	BoneColor    models.RGB
	AmbientColor models.RGB

	// LightOffsetY and LightOffsetZ place the light relative to the
	// cube center; the X offset comes from LightState
	LightOffsetY int
	LightOffsetZ int
}

// ParamsFromConfig copies the shading section of cfg
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Size:         cfg.Render.Size,
		Ambient:      cfg.Shading.Ambient,
		Diffuse:      cfg.Shading.Diffuse,
		Specular:     cfg.Shading.Specular,
		Shininess:    cfg.Shading.Shininess,
		BoneColor:    cfg.Shading.BoneColor,
		AmbientColor: cfg.Shading.AmbientColor,
		LightOffsetY: cfg.Shading.LightOffsetY,
		LightOffsetZ: cfg.Shading.LightOffsetZ,
	}
}

// Model evaluates the lighting for surface voxels
type Model struct {
	p Params
}

func New(p Params) *Model {
	return &Model{p: p}
}

// Params returns the model's constants
func (m *Model) Params() Params { return m.p }

// Gradient estimates the density gradient at (x, y, z) by central
// differences. On a grid face the voxel itself stands in for the missing
// neighbor, so the difference there is one-sided.
func Gradient(grid *models.WorkingGrid, x, y, z int) vector.Vector3 {
	last := grid.Size() - 1
	element := float64(grid.At(x, y, z))

	x1, x2 := element, element
	if x > 0 {
		x1 = float64(grid.At(x-1, y, z))
	}
	if x < last {
		x2 = float64(grid.At(x+1, y, z))
	}

	y1, y2 := element, element
	if y > 0 {
		y1 = float64(grid.At(x, y-1, z))
	}
	if y < last {
		y2 = float64(grid.At(x, y+1, z))
	}

	z1, z2 := element, element
	if z > 0 {
		z1 = float64(grid.At(x, y, z-1))
	}
	if z < last {
		z2 = float64(grid.At(x, y, z+1))
	}

	return vector.Between(x1, y1, z1, x2, y2, z2)
}

// LightPosition returns the light location in grid coordinates
func (m *Model) LightPosition(light models.LightState) (x, y, z float64) {
	c := m.p.Size / 2
	return float64(c + light.OffsetX), float64(c + m.p.LightOffsetY), float64(c + m.p.LightOffsetZ)
}

// EyePosition returns the viewer location: centered on the front face
func (m *Model) EyePosition() (x, y, z float64) {
	c := float64(m.p.Size / 2)
	return c, c, 0
}

// Shade returns the color of the surface voxel at (x, y, z). It must only
// be called for pixels that have a surface hit.
func (m *Model) Shade(grid *models.WorkingGrid, x, y, z int, light models.LightState) models.RGB {
	c, _ := m.shade(grid, x, y, z, light)
	return c
}

// shade also reports whether the gradient was degenerate. A zero gradient
// has no direction, so the voxel gets the ambient term only.
func (m *Model) shade(grid *models.WorkingGrid, x, y, z int, light models.LightState) (models.RGB, bool) {
	ambient := m.p.BoneColor.Mul(m.p.AmbientColor).Scale(m.p.Ambient)

	normal, err := Gradient(grid, x, y, z).Normalize()
	if errors.Is(err, vector.ErrZeroLength) {
		return ambient.ClampMax(1), true
	}

	px, py, pz := float64(x), float64(y), float64(z)

	lx, ly, lz := m.LightPosition(light)
	toSurface, err := vector.Between(lx, ly, lz, px, py, pz).Normalize()
	if err != nil {
		// the light sits on the voxel itself
		return ambient.ClampMax(1), true
	}

	diffuse := math.Max(0, normal.Dot(toSurface))

	specular := 0.0
	ex, ey, ez := m.EyePosition()
	if eye, err := vector.Between(px, py, pz, ex, ey, ez).Normalize(); err == nil {
		reflected := vector.Reflect(normal, toSurface)
		specular = math.Pow(math.Max(0, eye.Dot(reflected)), m.p.Shininess)
	}

	lit := m.p.BoneColor.Mul(light.Color)
	color := ambient.
		Add(lit.Scale(m.p.Diffuse * diffuse)).
		Add(lit.Scale(m.p.Specular * specular))

	return color.ClampMax(1), false
}

// RenderImage shades every pixel of plan into an S×S image. Pixels
// without a hit are opaque black and never reach Shade.
func (m *Model) RenderImage(ctx context.Context, grid *models.WorkingGrid, plan *surface.PixelPlan, light models.LightState, workers int) (*image.RGBA, error) {
	size := plan.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	background := models.Black.RGBA()

	var degenerate atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for y := 0; y < size; y++ {
		y := y
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for x := 0; x < size; x++ {
				z := plan.At(x, y)
				if z == surface.NoHit {
					img.SetRGBA(x, y, background)
					continue
				}
				c, flat := m.shade(grid, x, y, z, light)
				if flat {
					degenerate.Add(1)
				}
				img.SetRGBA(x, y, c.RGBA())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if n := degenerate.Load(); n > 0 {
		glog.V(1).Infof("Shaded %d surface voxels with a zero gradient as ambient only", n)
	}
	return img, nil
}
