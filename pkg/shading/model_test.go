package shading

import (
	"context"
	"image/color"
	"math"
	"testing"

	"skullrender/internal/models"
	"skullrender/pkg/config"
	"skullrender/pkg/surface"
)

const epsilon = 1e-9

// rampGrid fills a grid with value(x, y, z)
func rampGrid(size int, value func(x, y, z int) int32) *models.WorkingGrid {
	g := models.NewWorkingGrid(size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			for z := 0; z < size; z++ {
				g.Set(x, y, z, value(x, y, z))
			}
		}
	}
	return g
}

func testParams(size int) Params {
	cfg := config.DefaultConfig()
	cfg.Render.Size = size
	cfg.Shading.LightOffsetY = size / 2
	cfg.Shading.LightOffsetZ = -size / 2
	return ParamsFromConfig(cfg)
}

// TestGradientRamp checks that a linear ramp yields an axis-aligned normal
func TestGradientRamp(t *testing.T) {
	axes := []struct {
		name  string
		ramp  func(x, y, z int) int32
		check func(x, y, z float64) bool
	}{
		{"x", func(x, y, z int) int32 { return int32(10*x + 1) }, func(x, y, z float64) bool { return x == 1 && y == 0 && z == 0 }},
		{"y", func(x, y, z int) int32 { return int32(3*y + 1) }, func(x, y, z float64) bool { return x == 0 && y == 1 && z == 0 }},
		{"z", func(x, y, z int) int32 { return int32(100 - 7*z) }, func(x, y, z float64) bool { return x == 0 && y == 0 && z == -1 }},
	}

	for _, tc := range axes {
		t.Run(tc.name, func(t *testing.T) {
			g := rampGrid(5, tc.ramp)
			n, err := Gradient(g, 2, 2, 2).Normalize()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !tc.check(n.X(), n.Y(), n.Z()) {
				t.Errorf("Expected unit vector along %s, got (%g, %g, %g)", tc.name, n.X(), n.Y(), n.Z())
			}
		})
	}
}

// TestGradientBoundary verifies the one-sided difference on the grid faces
func TestGradientBoundary(t *testing.T) {
	g := rampGrid(4, func(x, y, z int) int32 { return int32(10 * x) })

	if got := Gradient(g, 0, 1, 1).X(); got != 10 {
		t.Errorf("Expected one-sided difference 10 at x=0, got %g", got)
	}
	if got := Gradient(g, 3, 1, 1).X(); got != 10 {
		t.Errorf("Expected one-sided difference 10 at x=S-1, got %g", got)
	}
	if got := Gradient(g, 1, 1, 1).X(); got != 20 {
		t.Errorf("Expected central difference 20 at x=1, got %g", got)
	}
}

// TestShadeDiffuseOnly lights a surface facing away from the viewer's
// reflection, so only ambient and diffuse terms remain
func TestShadeDiffuseOnly(t *testing.T) {
	p := testParams(8)
	m := New(p)
	g := rampGrid(8, func(x, y, z int) int32 { return int32(z + 1) })
	light := models.LightState{Color: models.White}

	got := m.Shade(g, 4, 4, 4, light)

	// light at (4, 8, 0), normal +Z, light direction (0, -1, 1)/sqrt2
	want := p.Ambient*p.AmbientColor.R + p.Diffuse/math.Sqrt2
	if math.Abs(got.R-want) > epsilon {
		t.Errorf("Expected R %g, got %g", want, got.R)
	}
}

// TestShadeSpecular uses a normal that reflects the light toward the eye
func TestShadeSpecular(t *testing.T) {
	p := testParams(8)
	m := New(p)
	g := rampGrid(8, func(x, y, z int) int32 { return int32(8 - y) })
	light := models.LightState{Color: models.RGB{R: 1, G: 0.5, B: 0}}

	got := m.Shade(g, 4, 4, 4, light)

	diffuse := 1 / math.Sqrt2
	specular := math.Pow(1/math.Sqrt2, p.Shininess)
	ambient := p.Ambient * p.AmbientColor.R

	want := models.RGB{
		R: ambient + p.Diffuse*diffuse + p.Specular*specular,
		G: ambient + 0.5*(p.Diffuse*diffuse+p.Specular*specular),
		B: ambient,
	}
	if math.Abs(got.R-want.R) > epsilon || math.Abs(got.G-want.G) > epsilon || math.Abs(got.B-want.B) > epsilon {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

// TestShadeDegenerateGradient falls back to ambient on a flat field
func TestShadeDegenerateGradient(t *testing.T) {
	p := testParams(6)
	m := New(p)
	g := rampGrid(6, func(x, y, z int) int32 { return 500 })

	got := m.Shade(g, 3, 3, 3, models.LightState{Color: models.White})
	want := p.Ambient * p.AmbientColor.R
	if math.Abs(got.R-want) > epsilon || math.Abs(got.G-want) > epsilon || math.Abs(got.B-want) > epsilon {
		t.Errorf("Expected ambient-only %g, got %+v", want, got)
	}
}

// TestShadeClamped verifies the upper clamp with oversized coefficients
func TestShadeClamped(t *testing.T) {
	p := testParams(8)
	p.Ambient = 3
	p.Diffuse = 4
	p.Specular = 5
	m := New(p)
	g := rampGrid(8, func(x, y, z int) int32 { return int32(8 - y) })

	for offset := -4; offset <= 4; offset += 2 {
		c := m.Shade(g, 4, 4, 4, models.LightState{OffsetX: offset, Color: models.White})
		if c.R > 1 || c.G > 1 || c.B > 1 {
			t.Errorf("Offset %d: expected channels <= 1, got %+v", offset, c)
		}
	}
}

func TestLightAndEyePosition(t *testing.T) {
	m := New(testParams(256))

	x, y, z := m.LightPosition(models.LightState{OffsetX: -20})
	if x != 108 || y != 256 || z != 0 {
		t.Errorf("Expected light at (108, 256, 0), got (%g, %g, %g)", x, y, z)
	}
	ex, ey, ez := m.EyePosition()
	if ex != 128 || ey != 128 || ez != 0 {
		t.Errorf("Expected eye at (128, 128, 0), got (%g, %g, %g)", ex, ey, ez)
	}
}

// TestRenderImageBackground checks that pixels without a hit are black
func TestRenderImageBackground(t *testing.T) {
	size := 6
	m := New(testParams(size))
	g := rampGrid(size, func(x, y, z int) int32 { return int32(z + 1) })
	plan := surface.NewPixelPlan(size)
	plan.Depth[2*size+3] = 2 // pixel (3, 2)

	img, err := m.RenderImage(context.Background(), g, plan, models.LightState{Color: models.White}, 3)
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}

	black := color.RGBA{A: 0xff}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			got := img.RGBAAt(x, y)
			if x == 3 && y == 2 {
				if got == black {
					t.Errorf("Expected lit pixel at (3, 2)")
				}
				continue
			}
			if got != black {
				t.Errorf("Pixel (%d, %d): expected black, got %v", x, y, got)
			}
		}
	}
}
