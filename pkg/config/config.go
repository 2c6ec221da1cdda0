// Package config provides configuration loading and management for skullrender.
// It handles loading configuration from YAML files and provides default values
// for every tunable constant of the rendering pipeline.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"skullrender/internal/models"
)

// BinConfig describes one transfer function range. Low and High are
// exclusive bounds.
type BinConfig struct {
	Low         int        `yaml:"low"`
	High        int        `yaml:"high"`
	Color       models.RGB `yaml:"color"`
	Opacity     float64    `yaml:"opacity"`
	Transparent bool       `yaml:"transparent"`

	// Skin marks the bin whose opacity follows Transfer.SkinOpacity
	Skin bool `yaml:"skin,omitempty"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Volume describes the raw input file
	Volume struct {
		// Path to the headerless 16-bit sample stream
		Path string `yaml:"path"`

		// Width, Height and Depth are the X, Y and Z extents in voxels
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
		Depth  int `yaml:"depth"`
	} `yaml:"volume"`

	// Render controls the shaded iso-surface view
	Render struct {
		// Size is the edge length S of the cubic working grid and of the
		// shaded output image
		Size int `yaml:"size"`

		// ZScale replicates every source Z slice this many times when the
		// volume is placed in the working grid
		ZScale int `yaml:"zScale"`

		// NumCores limits the number of goroutines used per frame
		NumCores int `yaml:"numCores"`
	} `yaml:"render"`

	// Bone is the density window kept in the working grid. Both bounds
	// are exclusive.
	Bone struct {
		Min int `yaml:"min"`
		Max int `yaml:"max"`
	} `yaml:"bone"`

	// Shading holds the Phong-Blinn lighting parameters
	Shading struct {
		Ambient   float64 `yaml:"ambient"`
		Diffuse   float64 `yaml:"diffuse"`
		Specular  float64 `yaml:"specular"`
		Shininess float64 `yaml:"shininess"`

		BoneColor    models.RGB `yaml:"boneColor"`
		AmbientColor models.RGB `yaml:"ambientColor"`
		LightColor   models.RGB `yaml:"lightColor"`

		// LightOffsetX is the initial horizontal light displacement
		LightOffsetX int `yaml:"lightOffsetX"`

		// LightOffsetY and LightOffsetZ place the light relative to the
		// cube center
		LightOffsetY int `yaml:"lightOffsetY"`
		LightOffsetZ int `yaml:"lightOffsetZ"`
	} `yaml:"shading"`

	// Transfer is the classification table for volume rendering
	Transfer struct {
		// SkinOpacity replaces the opacity of bins marked as skin
		SkinOpacity float64 `yaml:"skinOpacity"`

		// SweepOpacities are rendered by the opacity sweep
		SweepOpacities []float64 `yaml:"sweepOpacities"`

		// Bins are evaluated in order; the first match wins
		Bins []BinConfig `yaml:"bins"`
	} `yaml:"transfer"`

	// Output parameters
	Output struct {
		// Dir is where rendered images are written
		Dir string `yaml:"dir"`

		// Format is "png" or "jpeg"
		Format string `yaml:"format"`
	} `yaml:"output"`
}

// DefaultBins returns the classification table of the skull viewer
func DefaultBins() []BinConfig {
	return []BinConfig{
		{Low: math.MinInt32, High: -300, Transparent: true},
		{Low: -301, High: 50, Color: models.RGB{R: 1, G: 0.79, B: 0.6}, Skin: true},
		{Low: 49, High: 300, Transparent: true},
		{Low: 299, High: 4097, Color: models.White, Opacity: 0.8},
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// CThead: 256×256×113 samples with slices twice as far apart as pixels
	cfg.Volume.Path = "CThead"
	cfg.Volume.Width = 256
	cfg.Volume.Height = 256
	cfg.Volume.Depth = 113

	cfg.Render.Size = 256
	cfg.Render.ZScale = 2
	cfg.Render.NumCores = runtime.NumCPU()

	cfg.Bone.Min = 300
	cfg.Bone.Max = 1000

	cfg.Shading.Ambient = 0.2
	cfg.Shading.Diffuse = 0.5
	cfg.Shading.Specular = 1
	cfg.Shading.Shininess = 10
	cfg.Shading.BoneColor = models.White
	cfg.Shading.AmbientColor = models.WhiteSmoke
	cfg.Shading.LightColor = models.White
	cfg.Shading.LightOffsetX = 0
	cfg.Shading.LightOffsetY = cfg.Render.Size / 2
	cfg.Shading.LightOffsetZ = -cfg.Render.Size / 2

	cfg.Transfer.SkinOpacity = 0
	cfg.Transfer.SweepOpacities = []float64{0, 0.01, 0.02, 0.05, 0.1}
	cfg.Transfer.Bins = DefaultBins()

	cfg.Output.Dir = "renders"
	cfg.Output.Format = "png"

	return cfg
}

// Validate checks that the configuration describes a renderable setup
func (c *Config) Validate() error {
	var errs []error

	if c.Volume.Width <= 0 || c.Volume.Height <= 0 || c.Volume.Depth <= 0 {
		errs = append(errs, fmt.Errorf("volume dimensions must be positive, got %dx%dx%d",
			c.Volume.Width, c.Volume.Height, c.Volume.Depth))
	}
	if c.Render.Size < 2 {
		errs = append(errs, fmt.Errorf("render size must be at least 2, got %d", c.Render.Size))
	}
	if c.Render.ZScale < 1 {
		errs = append(errs, fmt.Errorf("zScale must be at least 1, got %d", c.Render.ZScale))
	}
	if c.Bone.Min >= c.Bone.Max {
		errs = append(errs, fmt.Errorf("bone range (%d, %d) is empty", c.Bone.Min, c.Bone.Max))
	}
	if c.Shading.Shininess < 0 {
		errs = append(errs, fmt.Errorf("shininess must be non-negative, got %g", c.Shading.Shininess))
	}
	if c.Transfer.SkinOpacity < 0 || c.Transfer.SkinOpacity > 1 {
		errs = append(errs, fmt.Errorf("skin opacity %g outside [0, 1]", c.Transfer.SkinOpacity))
	}
	for i, b := range c.Transfer.Bins {
		if b.Low >= b.High {
			errs = append(errs, fmt.Errorf("transfer bin %d: range (%d, %d) is empty", i, b.Low, b.High))
		}
		if b.Opacity < 0 || b.Opacity > 1 {
			errs = append(errs, fmt.Errorf("transfer bin %d: opacity %g outside [0, 1]", i, b.Opacity))
		}
	}
	switch c.Output.Format {
	case "png", "jpeg", "jpg":
	default:
		errs = append(errs, fmt.Errorf("unsupported output format %q", c.Output.Format))
	}

	return errors.Join(errs...)
}

// Workers returns the configured number of goroutines, at least one
func (c *Config) Workers() int {
	if c.Render.NumCores < 1 {
		return 1
	}
	return c.Render.NumCores
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
