package models

import (
	"image/color"
	"math"
)

// RGB is a linear color with channels nominally in [0, 1]
type RGB struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{1, 1, 1}

	// WhiteSmoke matches the CSS color of the same name (245, 245, 245)
	WhiteSmoke = RGB{245.0 / 255, 245.0 / 255, 245.0 / 255}
)

// Scale multiplies every channel by s
func (c RGB) Scale(s float64) RGB {
	return RGB{c.R * s, c.G * s, c.B * s}
}

// Mul multiplies channel by channel
func (c RGB) Mul(o RGB) RGB {
	return RGB{c.R * o.R, c.G * o.G, c.B * o.B}
}

func (c RGB) Add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// ClampMax caps every channel at max
func (c RGB) ClampMax(max float64) RGB {
	return RGB{math.Min(max, c.R), math.Min(max, c.G), math.Min(max, c.B)}
}

// Clamp limits every channel to [0, 1]
func (c RGB) Clamp() RGB {
	return RGB{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// RGBA converts to an opaque 8-bit color
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: 0xff,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}

// LightState is the mutable light owned by the renderer
type LightState struct {
	// OffsetX is the horizontal displacement of the light from the cube
	// center, bounded to [-S/2, S/2]
	OffsetX int

	// Color of the light source
	Color RGB
}
