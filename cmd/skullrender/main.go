package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"skullrender/internal/models"
	"skullrender/pkg/config"
	"skullrender/pkg/render"
	"skullrender/pkg/visualization"
	"skullrender/pkg/volume"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "skullrender.yaml", "YAML configuration file (defaults are used if it does not exist)")
	inputPath := flag.String("input", "", "Raw CT volume file (overrides volume.path)")
	outputDir := flag.String("output", "", "Directory for rendered images (overrides output.dir)")
	frames := flag.Int("frames", 1, "Number of shaded frames to render")
	stepAz := flag.Int("step-az", 10, "Azimuth change in degrees between shaded frames")
	stepEl := flag.Int("step-el", 0, "Elevation change in degrees between shaded frames")
	lightOffset := flag.Int("light-offset", 0, "Horizontal light offset from the volume center")
	lightColor := flag.String("light-color", "", "Light color as r,g,b in [0,1]")
	slices := flag.Bool("slices", false, "Save grayscale slices along the selected axes")
	volumeRender := flag.Bool("volume-render", false, "Save a composited volume rendering along each axis")
	sweep := flag.Bool("sweep", false, "Save volume renderings for every configured skin opacity")
	axesFlag := flag.String("axes", "x,y,z", "Axes for -slices, -volume-render and -sweep")
	writeConfig := flag.String("write-config", "", "Write the default configuration to this path and exit")
	flag.Parse()
	defer glog.Flush()

	if *writeConfig != "" {
		if err := config.CreateDefaultConfigFile(*writeConfig); err != nil {
			glog.Exitf("Failed to write default config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *writeConfig)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		glog.Exitf("Failed to load config: %v", err)
	}
	if *inputPath != "" {
		cfg.Volume.Path = *inputPath
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if err := cfg.Validate(); err != nil {
		glog.Exitf("Invalid configuration: %v", err)
	}

	axes, err := parseAxes(*axesFlag)
	if err != nil {
		glog.Exitf("Invalid -axes: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// A failed load is fatal: nothing is rendered from a partial volume
	glog.Infof("Loading %dx%dx%d volume from %s", cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth, cfg.Volume.Path)
	vol, err := volume.Load(cfg.Volume.Path, cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth)
	if err != nil {
		glog.Exitf("Failed to load volume: %v", err)
	}
	glog.Infof("Loaded volume: %v", volume.Summarize(vol))

	engine, err := render.NewEngine(vol, cfg)
	if err != nil {
		glog.Exitf("Failed to create renderer: %v", err)
	}

	writer, err := visualization.NewWriter(cfg.Output.Dir, cfg.Output.Format)
	if err != nil {
		glog.Exitf("Failed to create image writer: %v", err)
	}

	start := time.Now()
	if err := renderShaded(ctx, engine, writer, *frames, *stepAz, *stepEl, *lightOffset, *lightColor); err != nil {
		glog.Exitf("Shaded rendering failed: %v", err)
	}

	if *slices {
		for _, axis := range axes {
			images, err := engine.Slices(ctx, axis)
			if err != nil {
				glog.Exitf("Slicing along %v failed: %v", axis, err)
			}
			n, err := visualization.SaveSequence(writer, images, filepath.Join("slices", axis.String()), "slice_"+axis.String())
			if err != nil {
				glog.Warningf("Failed to save %v-axis slices: %v", axis, err)
				continue
			}
			glog.Infof("Saved %d %v-axis slices", n, axis)
		}
	}

	if *volumeRender {
		for _, axis := range axes {
			img, err := engine.VolumeRender(ctx, axis)
			if err != nil {
				glog.Exitf("Volume rendering along %v failed: %v", axis, err)
			}
			save(writer, img, filepath.Join("volume", "volume_"+axis.String()))
		}
	}

	if *sweep {
		for _, axis := range axes {
			images, err := engine.OpacitySweep(ctx, axis, cfg.Transfer.SweepOpacities)
			if err != nil {
				glog.Exitf("Opacity sweep along %v failed: %v", axis, err)
			}
			if _, err := visualization.SaveSequence(writer, images, filepath.Join("sweep", axis.String()), "skin_"+axis.String()); err != nil {
				glog.Warningf("Failed to save %v-axis sweep: %v", axis, err)
			}
		}
	}

	fmt.Printf("Rendering completed in %.2f seconds, output in %s\n", time.Since(start).Seconds(), cfg.Output.Dir)
}

// renderShaded replays the host events of an interactive session: the
// light is set once, then the view is rotated frame by frame
func renderShaded(ctx context.Context, engine *render.Engine, writer *visualization.Writer, frames, stepAz, stepEl, lightOffset int, lightColor string) error {
	if lightColor != "" {
		c, err := parseColor(lightColor)
		if err != nil {
			return err
		}
		if _, err := engine.SetLightColor(ctx, c); err != nil {
			return err
		}
	}

	img, err := engine.SetLightOffset(ctx, lightOffset)
	if err != nil {
		return err
	}

	for i := 0; i < frames; i++ {
		if i > 0 {
			if img, err = engine.Rotate(ctx, stepAz, stepEl); err != nil {
				return err
			}
		}
		s := engine.State()
		save(writer, img, filepath.Join("shaded", fmt.Sprintf("frame_%03d_az%03d_el%03d", i, s.XAngle, s.YAngle)))
	}
	glog.Infof("Rendered %d shaded frames", frames)
	return nil
}

func save(writer *visualization.Writer, img image.Image, name string) {
	path, err := writer.SaveImage(img, name)
	if err != nil {
		glog.Warningf("Failed to save %s: %v", name, err)
		return
	}
	glog.V(1).Infof("Wrote %s", path)
}

func parseAxes(s string) ([]models.Axis, error) {
	var axes []models.Axis
	for _, name := range strings.Split(s, ",") {
		axis, err := models.ParseAxis(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		axes = append(axes, axis)
	}
	return axes, nil
}

// parseColor reads "r,g,b" with channels in [0,1]
func parseColor(s string) (models.RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return models.RGB{}, fmt.Errorf("invalid color %q: expected r,g,b", s)
	}
	var ch [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		ch[i] = v
	}
	return models.RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}
