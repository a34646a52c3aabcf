package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-twinmap/internal/viewport"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if len(cfg.Viewports) != 2 {
		t.Fatalf("viewports = %d, want 2", len(cfg.Viewports))
	}
	if cfg.Viewports[0].ID != "left" || cfg.Viewports[0].AllowRotation {
		t.Errorf("left viewport = %+v", cfg.Viewports[0])
	}
	if cfg.Viewports[1].ID != "right" || !cfg.Viewports[1].AllowRotation {
		t.Errorf("right viewport = %+v", cfg.Viewports[1])
	}
	if len(cfg.Rings.Radii) != 12 || cfg.Rings.Radii[4] != 500 {
		t.Errorf("radii = %v", cfg.Rings.Radii)
	}
	if cfg.Rings.Segments != 120 {
		t.Errorf("segments = %d, want 120", cfg.Rings.Segments)
	}
	if cfg.Camera.InitialZoom != 15 {
		t.Errorf("initial zoom = %v, want 15", cfg.Camera.InitialZoom)
	}
	if cfg.Camera.ResetDuration != 500*time.Millisecond {
		t.Errorf("reset duration = %v", cfg.Camera.ResetDuration)
	}
	if cfg.Camera.ResetBearingDuration != 300*time.Millisecond {
		t.Errorf("reset bearing duration = %v", cfg.Camera.ResetBearingDuration)
	}
	if cfg.Camera.ZoomEpsilon != 1e-6 {
		t.Errorf("zoom epsilon = %v", cfg.Camera.ZoomEpsilon)
	}
}

func TestViewportConfigs(t *testing.T) {
	vcs := Default().ViewportConfigs()
	if vcs[0].ID != viewport.Left || vcs[1].ID != viewport.Right {
		t.Fatalf("ids = %s, %s", vcs[0].ID, vcs[1].ID)
	}
	if math.Abs(vcs[0].InitialCenter.Lon-2.30137) > 1e-9 || math.Abs(vcs[0].InitialCenter.Lat-48.83886) > 1e-9 {
		t.Errorf("left center = %v", vcs[0].InitialCenter)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"one viewport", func(c *Config) { c.Viewports = c.Viewports[:1] }, "exactly 2 viewports"},
		{"duplicate id", func(c *Config) { c.Viewports[1].ID = c.Viewports[0].ID }, "duplicated"},
		{"missing id", func(c *Config) { c.Viewports[0].ID = "" }, "id is required"},
		{"bad center", func(c *Config) { c.Viewports[0].InitialCenter = []float64{2} }, "[lon, lat]"},
		{"latitude out of range", func(c *Config) { c.Viewports[0].InitialCenter = []float64{2, 95} }, "not a valid coordinate"},
		{"no radii", func(c *Config) { c.Rings.Radii = nil }, "must not be empty"},
		{"negative radius", func(c *Config) { c.Rings.Radii = []float64{-1, 100} }, "positive number"},
		{"descending radii", func(c *Config) { c.Rings.Radii = []float64{200, 100} }, "strictly ascending"},
		{"few segments", func(c *Config) { c.Rings.Segments = 2 }, "segments must be >= 3"},
		{"zero epsilon", func(c *Config) { c.Camera.ZoomEpsilon = 0 }, "zoom_epsilon"},
		{"zoom range", func(c *Config) { c.Camera.InitialZoom = 30 }, "initial_zoom"},
		{"negative duration", func(c *Config) { c.Camera.ResetDuration = -time.Second }, "durations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "twinmap.yaml")
	yaml := `
viewports:
  - id: west
    label: West
    initial_center: [-0.1276, 51.5072]
    allow_rotation: true
  - id: east
    label: East
    initial_center: [13.405, 52.52]
rings:
  radii: [250, 500, 1000]
  segments: 64
camera:
  initial_zoom: 13
  reset_duration: 1s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Viewports[0].ID != "west" || !cfg.Viewports[0].AllowRotation {
		t.Errorf("viewport[0] = %+v", cfg.Viewports[0])
	}
	if cfg.Viewports[1].InitialCenter[1] != 52.52 {
		t.Errorf("viewport[1] center = %v", cfg.Viewports[1].InitialCenter)
	}
	if len(cfg.Rings.Radii) != 3 || cfg.Rings.Segments != 64 {
		t.Errorf("rings = %+v", cfg.Rings)
	}
	if cfg.Camera.InitialZoom != 13 || cfg.Camera.ResetDuration != time.Second {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	// Untouched keys keep their defaults.
	if cfg.Camera.ResetBearingDuration != 300*time.Millisecond {
		t.Errorf("reset bearing duration = %v", cfg.Camera.ResetBearingDuration)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("TWINMAP_CAMERA_INITIAL_ZOOM", "12")
	t.Setenv("TWINMAP_METRICS_ADDR", ":9190")

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Camera.InitialZoom != 12 {
		t.Errorf("initial zoom = %v, want 12", cfg.Camera.InitialZoom)
	}
	if cfg.Metrics.Addr != ":9190" {
		t.Errorf("metrics addr = %q", cfg.Metrics.Addr)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing explicit config file should fail")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("rings:\n  segments: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "segments") {
		t.Errorf("invalid config should fail validation, got %v", err)
	}
}
