// Package compositor renders the CT volume along one of its axes, either as
// a stack of grayscale slices or as a single front-to-back composited
// volume rendering classified by a transfer function.
package compositor

import (
	"context"
	"image"
	"image/color"

	"golang.org/x/sync/errgroup"

	"skullrender/internal/models"
	"skullrender/pkg/transfer"
)

// CompositeRay accumulates samples front to back, nearest first. Starting
// from full transmittance, each classified sample adds T·opacity·color and
// then attenuates T by (1 - opacity). Samples in gaps or transparent bins
// contribute nothing. The color is clamped to 1 per channel; the final
// transmittance is returned alongside it.
func CompositeRay(samples []int16, tf *transfer.Function) (models.RGB, float64) {
	var acc models.RGB
	t := 1.0

	for _, s := range samples {
		class, ok := tf.Classify(int(s))
		if !ok {
			continue
		}
		acc = acc.Add(class.Color.Scale(t * class.Opacity))
		t *= 1 - class.Opacity
	}

	return acc.ClampMax(1), t
}

// ImageSize returns the dimensions of an image looking down axis
func ImageSize(vol *models.Volume, axis models.Axis) (width, height int) {
	switch axis {
	case models.AxisX:
		return vol.Height, vol.Depth
	case models.AxisY:
		return vol.Width, vol.Depth
	default:
		return vol.Width, vol.Height
	}
}

// voxelAt maps image pixel (u, v) and ray position i to volume coordinates
func voxelAt(axis models.Axis, u, v, i int) (x, y, z int) {
	switch axis {
	case models.AxisX:
		return i, u, v
	case models.AxisY:
		return u, i, v
	default:
		return u, v, i
	}
}

// RenderAxis composites one ray per pixel through vol along axis. Rays run
// from index 0 upward. Rows are rendered concurrently but every ray is
// accumulated by a single goroutine in that fixed order.
func RenderAxis(ctx context.Context, vol *models.Volume, axis models.Axis, tf *transfer.Function, workers int) (*image.RGBA, error) {
	width, height := ImageSize(vol, axis)
	depth := vol.Extent(axis)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for v := 0; v < height; v++ {
		v := v
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ray := make([]int16, depth)
			for u := 0; u < width; u++ {
				for i := range ray {
					ray[i] = vol.At(voxelAt(axis, u, v, i))
				}
				c, _ := CompositeRay(ray, tf)
				img.SetRGBA(u, v, c.RGBA())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

// OpacitySweep renders one volume image along axis for every skin opacity.
// build returns the transfer function for a given opacity.
func OpacitySweep(ctx context.Context, vol *models.Volume, axis models.Axis, build func(skinOpacity float64) *transfer.Function, opacities []float64, workers int) ([]*image.RGBA, error) {
	images := make([]*image.RGBA, 0, len(opacities))
	for _, op := range opacities {
		img, err := RenderAxis(ctx, vol, axis, build(op), workers)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// Gray maps a sample linearly from [min, max] to a gray level. A volume
// with a single value maps everything to black.
func Gray(s, min, max int16) uint8 {
	if max <= min {
		return 0
	}
	f := float64(int(s)-int(min)) / float64(int(max)-int(min))
	return models.RGB{R: f}.RGBA().R
}

// Slice renders position index along axis as a grayscale image with no
// lighting or compositing
func Slice(vol *models.Volume, axis models.Axis, index int) *image.RGBA {
	width, height := ImageSize(vol, axis)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	min, max := vol.Min(), vol.Max()

	for v := 0; v < height; v++ {
		for u := 0; u < width; u++ {
			l := Gray(vol.At(voxelAt(axis, u, v, index)), min, max)
			img.SetRGBA(u, v, color.RGBA{R: l, G: l, B: l, A: 0xff})
		}
	}
	return img
}

// SliceImages renders every slice along axis, in index order
func SliceImages(ctx context.Context, vol *models.Volume, axis models.Axis, workers int) ([]*image.RGBA, error) {
	n := vol.Extent(axis)
	images := make([]*image.RGBA, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			images[i] = Slice(vol, axis, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}
