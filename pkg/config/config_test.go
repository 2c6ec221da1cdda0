package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestDefaultConfig verifies the defaults of the skull viewer
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Render.Size != 256 {
		t.Errorf("Expected render size 256, got %d", cfg.Render.Size)
	}
	if cfg.Bone.Min != 300 || cfg.Bone.Max != 1000 {
		t.Errorf("Expected bone range (300, 1000), got (%d, %d)", cfg.Bone.Min, cfg.Bone.Max)
	}
	if cfg.Shading.Shininess != 10 {
		t.Errorf("Expected shininess 10, got %g", cfg.Shading.Shininess)
	}
	if cfg.Shading.LightOffsetY != 128 || cfg.Shading.LightOffsetZ != -128 {
		t.Errorf("Expected light offsets (128, -128), got (%d, %d)",
			cfg.Shading.LightOffsetY, cfg.Shading.LightOffsetZ)
	}
	if len(cfg.Transfer.Bins) != 4 {
		t.Fatalf("Expected 4 transfer bins, got %d", len(cfg.Transfer.Bins))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got: %v", err)
	}
}

// TestSaveAndLoadConfig round-trips a modified config through YAML
func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Render.Size = 64
	cfg.Render.NumCores = 3
	cfg.Shading.LightOffsetX = -12
	cfg.Transfer.SkinOpacity = 0.25

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("Loaded config differs (-want +got):\n%s", diff)
	}
}

// TestLoadConfigMissingFile falls back to defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error for missing file, got %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Expected default config (-want +got):\n%s", diff)
	}
}

// TestLoadConfigPartialOverride keeps defaults for keys absent from the file
func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "render:\n  size: 128\nbone:\n  min: 100\n  max: 2000\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Render.Size != 128 {
		t.Errorf("Expected size 128, got %d", cfg.Render.Size)
	}
	if cfg.Bone.Min != 100 || cfg.Bone.Max != 2000 {
		t.Errorf("Expected bone range (100, 2000), got (%d, %d)", cfg.Bone.Min, cfg.Bone.Max)
	}
	if cfg.Shading.Ambient != 0.2 {
		t.Errorf("Expected default ambient 0.2, got %g", cfg.Shading.Ambient)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("render: [unterminated"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected a parse error")
	}
}

// TestValidate checks that each kind of bad value is reported
func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad dims", func(c *Config) { c.Volume.Depth = 0 }, "volume dimensions"},
		{"small size", func(c *Config) { c.Render.Size = 1 }, "render size"},
		{"zscale", func(c *Config) { c.Render.ZScale = 0 }, "zScale"},
		{"bone range", func(c *Config) { c.Bone.Min = c.Bone.Max }, "bone range"},
		{"skin opacity", func(c *Config) { c.Transfer.SkinOpacity = 1.5 }, "skin opacity"},
		{"empty bin", func(c *Config) { c.Transfer.Bins[0].High = c.Transfer.Bins[0].Low }, "transfer bin 0"},
		{"bin opacity", func(c *Config) { c.Transfer.Bins[3].Opacity = -0.1 }, "transfer bin 3"},
		{"format", func(c *Config) { c.Output.Format = "gif" }, "output format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Expected validation error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("Expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestWorkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.NumCores = 0
	if cfg.Workers() != 1 {
		t.Errorf("Expected 1 worker, got %d", cfg.Workers())
	}
	cfg.Render.NumCores = 6
	if cfg.Workers() != 6 {
		t.Errorf("Expected 6 workers, got %d", cfg.Workers())
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("Failed to create default config: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file to exist: %v", err)
	}
}
