// Package config loads application configuration from file and environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/litescript/ls-twinmap/internal/geo"
	"github.com/litescript/ls-twinmap/internal/rings"
	"github.com/litescript/ls-twinmap/internal/viewport"
	"github.com/litescript/ls-twinmap/internal/zoomsync"
)

// Config holds all application configuration.
type Config struct {
	Viewports []ViewportConfig `mapstructure:"viewports"`
	Rings     RingsConfig      `mapstructure:"rings"`
	Camera    CameraConfig     `mapstructure:"camera"`
	Log       LogConfig        `mapstructure:"log"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
}

type ViewportConfig struct {
	ID            string    `mapstructure:"id"`
	Label         string    `mapstructure:"label"`
	InitialCenter []float64 `mapstructure:"initial_center"` // [lon, lat]
	AllowRotation bool      `mapstructure:"allow_rotation"`
}

// Viewport converts the entry to the viewport package's setup record.
func (v ViewportConfig) Viewport() viewport.Config {
	var center geo.Point
	if len(v.InitialCenter) == 2 {
		center = geo.NewPoint(v.InitialCenter[0], v.InitialCenter[1])
	}
	return viewport.Config{
		ID:            viewport.ID(v.ID),
		Label:         v.Label,
		InitialCenter: center,
		AllowRotation: v.AllowRotation,
	}
}

type RingsConfig struct {
	Radii    []float64 `mapstructure:"radii"`
	Segments int       `mapstructure:"segments"`
}

type CameraConfig struct {
	InitialZoom          float64       `mapstructure:"initial_zoom"`
	ZoomEpsilon          float64       `mapstructure:"zoom_epsilon"`
	ZoomStep             float64       `mapstructure:"zoom_step"`
	ZoomDuration         time.Duration `mapstructure:"zoom_duration"`
	ResetDuration        time.Duration `mapstructure:"reset_duration"`
	ResetBearingDuration time.Duration `mapstructure:"reset_bearing_duration"`
	RotateStep           float64       `mapstructure:"rotate_step"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("viewports", []map[string]interface{}{
		{
			"id":             string(viewport.Left),
			"label":          "Left · main view",
			"initial_center": []float64{2.30137, 48.83886},
			"allow_rotation": false,
		},
		{
			"id":             string(viewport.Right),
			"label":          "Right · comparison view",
			"initial_center": []float64{2.36929, 48.85301},
			"allow_rotation": true,
		},
	})
	v.SetDefault("rings.radii", rings.DefaultRadii)
	v.SetDefault("rings.segments", rings.DefaultSegments)
	v.SetDefault("camera.initial_zoom", 15.0)
	v.SetDefault("camera.zoom_epsilon", zoomsync.DefaultEpsilon)
	v.SetDefault("camera.zoom_step", 1.0)
	v.SetDefault("camera.zoom_duration", 200*time.Millisecond)
	v.SetDefault("camera.reset_duration", 500*time.Millisecond)
	v.SetDefault("camera.reset_bearing_duration", 300*time.Millisecond)
	v.SetDefault("camera.rotate_step", 15.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("metrics.addr", "")
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// Defaults are static; failing to decode them is a programming error.
		panic(fmt.Sprintf("config: decode defaults: %v", err))
	}
	return cfg
}

// Load reads configuration from path (or twinmap.yaml in . or ./configs when
// path is empty) and TWINMAP_* environment variables, on top of defaults.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("twinmap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	// Environment variables: TWINMAP_CAMERA_INITIAL_ZOOM → camera.initial_zoom
	v.SetEnvPrefix("TWINMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ViewportConfigs returns the viewport setup records in file order.
func (c *Config) ViewportConfigs() []viewport.Config {
	out := make([]viewport.Config, len(c.Viewports))
	for i, v := range c.Viewports {
		out[i] = v.Viewport()
	}
	return out
}

// Validate checks that the configuration describes exactly two viewports
// and a usable ring layout.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Viewports) != 2 {
		errs = append(errs, fmt.Sprintf("exactly 2 viewports are required, got %d", len(c.Viewports)))
	}
	seen := make(map[string]bool)
	for i, v := range c.Viewports {
		if v.ID == "" {
			errs = append(errs, fmt.Sprintf("viewports[%d].id is required", i))
		} else if seen[v.ID] {
			errs = append(errs, fmt.Sprintf("viewports[%d].id %q is duplicated", i, v.ID))
		}
		seen[v.ID] = true

		if len(v.InitialCenter) != 2 {
			errs = append(errs, fmt.Sprintf("viewports[%d].initial_center must be [lon, lat]", i))
			continue
		}
		lon, lat := v.InitialCenter[0], v.InitialCenter[1]
		if !(geo.Point{Lon: lon, Lat: lat}).Valid() || lat < -90 || lat > 90 {
			errs = append(errs, fmt.Sprintf("viewports[%d].initial_center %v is not a valid coordinate", i, v.InitialCenter))
		}
	}

	if len(c.Rings.Radii) == 0 {
		errs = append(errs, "rings.radii must not be empty")
	}
	for i, r := range c.Rings.Radii {
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			errs = append(errs, fmt.Sprintf("rings.radii[%d] must be a positive number, got %v", i, r))
		} else if i > 0 && r <= c.Rings.Radii[i-1] {
			errs = append(errs, fmt.Sprintf("rings.radii must be strictly ascending (index %d)", i))
		}
	}
	if c.Rings.Segments < 3 {
		errs = append(errs, fmt.Sprintf("rings.segments must be >= 3, got %d", c.Rings.Segments))
	}

	if c.Camera.ZoomEpsilon <= 0 {
		errs = append(errs, "camera.zoom_epsilon must be positive")
	}
	if c.Camera.InitialZoom < 0 || c.Camera.InitialZoom > 24 {
		errs = append(errs, fmt.Sprintf("camera.initial_zoom must be 0-24, got %v", c.Camera.InitialZoom))
	}
	if c.Camera.ZoomStep <= 0 {
		errs = append(errs, "camera.zoom_step must be positive")
	}
	if c.Camera.ResetDuration < 0 || c.Camera.ResetBearingDuration < 0 || c.Camera.ZoomDuration < 0 {
		errs = append(errs, "camera durations must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
