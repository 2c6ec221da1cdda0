// Package render is the facade a host drives: it owns the rotation and light
// state and turns each host event into one finished frame.
//
// The shaded view runs rotation, surface search and shading in sequence.
// Slice stacks and volume renderings are computed from the source volume
// independently of that state.
package render

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/golang/glog"

	"skullrender/internal/models"
	"skullrender/pkg/compositor"
	"skullrender/pkg/config"
	"skullrender/pkg/rotation"
	"skullrender/pkg/shading"
	"skullrender/pkg/surface"
	"skullrender/pkg/transfer"
)

// RenderState is the mutable view state. It is changed only through the
// Engine's event methods.
type RenderState struct {
	XAngle, YAngle int
	Light          models.LightState
}

// Engine renders a single volume. It is not safe for concurrent use.
type Engine struct {
	cfg    *config.Config
	volume *models.Volume

	rotator  *rotation.Engine
	shader   *shading.Model
	transfer *transfer.Function

	state RenderState
}

// NewEngine validates cfg and prepares the working grid for vol
func NewEngine(vol *models.Volume, cfg *config.Config) (*Engine, error) {
	if vol == nil {
		return nil, fmt.Errorf("no volume to render")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	start := time.Now()
	rotator := rotation.NewEngine(vol, rotation.Options{
		Size:    cfg.Render.Size,
		ZScale:  cfg.Render.ZScale,
		BoneMin: cfg.Bone.Min,
		BoneMax: cfg.Bone.Max,
		Workers: cfg.Workers(),
	})
	glog.V(1).Infof("Built %d^3 working grid in %v", cfg.Render.Size, time.Since(start))

	e := &Engine{
		cfg:      cfg,
		volume:   vol,
		rotator:  rotator,
		shader:   shading.New(shading.ParamsFromConfig(cfg)),
		transfer: transfer.FromConfig(cfg.Transfer.Bins, cfg.Transfer.SkinOpacity),
	}
	e.state.Light = models.LightState{
		OffsetX: e.clampLight(cfg.Shading.LightOffsetX),
		Color:   cfg.Shading.LightColor.Clamp(),
	}
	return e, nil
}

// State returns a copy of the current view state
func (e *Engine) State() RenderState { return e.state }

// Size returns the edge length of the shaded view
func (e *Engine) Size() int { return e.cfg.Render.Size }

// Rotate adds the angle deltas, rebuilds the rotated grid and renders
func (e *Engine) Rotate(ctx context.Context, dAzimuth, dElevation int) (*image.RGBA, error) {
	start := time.Now()
	if err := e.rotator.SetAngles(ctx, dAzimuth, dElevation); err != nil {
		return nil, fmt.Errorf("rotation failed: %w", err)
	}
	e.state.XAngle, e.state.YAngle = e.rotator.Angles()
	glog.V(1).Infof("Rotated to (%d, %d) in %v", e.state.XAngle, e.state.YAngle, time.Since(start))

	return e.Render(ctx)
}

// SetLightOffset moves the light horizontally and renders. Offsets outside
// [-S/2, S/2] are clamped.
func (e *Engine) SetLightOffset(ctx context.Context, x int) (*image.RGBA, error) {
	e.state.Light.OffsetX = e.clampLight(x)
	return e.Render(ctx)
}

// SetLightColor changes the light color and renders. Channels are clamped
// to [0, 1].
func (e *Engine) SetLightColor(ctx context.Context, c models.RGB) (*image.RGBA, error) {
	e.state.Light.Color = c.Clamp()
	return e.Render(ctx)
}

func (e *Engine) clampLight(x int) int {
	limit := e.cfg.Render.Size / 2
	clamped := min(max(x, -limit), limit)
	if clamped != x {
		glog.V(1).Infof("Light offset %d clamped to %d", x, clamped)
	}
	return clamped
}

// Render draws the shaded view for the current state without changing it
func (e *Engine) Render(ctx context.Context) (*image.RGBA, error) {
	start := time.Now()
	grid := e.rotator.CurrentGrid()
	workers := e.cfg.Workers()

	plan, err := surface.FindFirstHits(ctx, grid, workers)
	if err != nil {
		return nil, fmt.Errorf("surface search failed: %w", err)
	}

	img, err := e.shader.RenderImage(ctx, grid, plan, e.state.Light, workers)
	if err != nil {
		return nil, fmt.Errorf("shading failed: %w", err)
	}

	glog.V(1).Infof("Shaded %d surface pixels in %v", plan.Hits(), time.Since(start))
	return img, nil
}

// Slices renders every grayscale slice along axis
func (e *Engine) Slices(ctx context.Context, axis models.Axis) ([]*image.RGBA, error) {
	return compositor.SliceImages(ctx, e.volume, axis, e.cfg.Workers())
}

// VolumeRender composites the whole volume along axis with the configured
// transfer function
func (e *Engine) VolumeRender(ctx context.Context, axis models.Axis) (*image.RGBA, error) {
	return compositor.RenderAxis(ctx, e.volume, axis, e.transfer, e.cfg.Workers())
}

// OpacitySweep renders the volume along axis once per skin opacity
func (e *Engine) OpacitySweep(ctx context.Context, axis models.Axis, opacities []float64) ([]*image.RGBA, error) {
	build := func(op float64) *transfer.Function {
		return transfer.FromConfig(e.cfg.Transfer.Bins, op)
	}
	return compositor.OpacitySweep(ctx, e.volume, axis, build, opacities, e.cfg.Workers())
}

// WorkingGrid exposes the rotated grid the next frame will be drawn from
func (e *Engine) WorkingGrid() *models.WorkingGrid { return e.rotator.CurrentGrid() }
