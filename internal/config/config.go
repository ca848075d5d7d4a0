// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Camera     CameraConfig     `yaml:"camera"`
	Render     RenderConfig     `yaml:"render"`
	Assets     AssetsConfig     `yaml:"assets"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// CameraConfig holds the starting camera and its input response.
type CameraConfig struct {
	Position          [3]float32 `yaml:"position"`
	Target            [3]float32 `yaml:"target"`
	YawOffsetDeg      float32    `yaml:"yaw_offset_deg"`
	StepVertical      float32    `yaml:"step_vertical"`   // PageUp/PageDown
	StepHorizontal    float32    `yaml:"step_horizontal"` // ArrowLeft/ArrowRight
	StepDepth         float32    `yaml:"step_depth"`      // ArrowUp/ArrowDown
	RotateSensitivity float32    `yaml:"rotate_sensitivity"`
	PanSensitivity    float32    `yaml:"pan_sensitivity"`
}

// RenderConfig holds projection and colour settings.
type RenderConfig struct {
	FOVDeg        float32    `yaml:"fov_deg"`
	Near          float32    `yaml:"near"`
	Far           float32    `yaml:"far"`
	Background    [4]float32 `yaml:"background"`
	TriangleColor [4]float32 `yaml:"triangle_color"` // faces read as triangles
	QuadColor     [4]float32 `yaml:"quad_color"`     // faces read as quads
}

// AssetsConfig lists the meshes loaded at startup, in draw-buffer order.
type AssetsConfig struct {
	Sources []string `yaml:"sources"` // file paths or http(s) URLs
}

// ScreenshotConfig holds F12 capture settings.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "objview",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Camera: CameraConfig{
			Position:          [3]float32{0, 4, 10},
			Target:            [3]float32{0, 0, 0},
			YawOffsetDeg:      -45,
			StepVertical:      0.25,
			StepHorizontal:    0.15,
			StepDepth:         0.55,
			RotateSensitivity: 0.0025,
			PanSensitivity:    0.01,
		},
		Render: RenderConfig{
			FOVDeg:        60,
			Near:          0.1,
			Far:           200,
			Background:    [4]float32{1, 1, 1, 1},
			TriangleColor: [4]float32{0.3, 0.3, 0.3, 1},
			QuadColor:     [4]float32{0.5, 1.0, 0.5, 1},
		},
		Assets: AssetsConfig{
			Sources: []string{"Assets/cat.obj", "Assets/terrain.obj"},
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Render.FOVDeg <= 0 || c.Render.FOVDeg >= 180 {
		errs = append(errs, fmt.Errorf("fov_deg must be in (0, 180), got %g", c.Render.FOVDeg))
	}
	if c.Render.Near <= 0 || c.Render.Near >= c.Render.Far {
		errs = append(errs, fmt.Errorf("need 0 < near < far, got near=%g far=%g", c.Render.Near, c.Render.Far))
	}
	if len(c.Assets.Sources) == 0 {
		errs = append(errs, errors.New("no asset sources configured"))
	}
	return errors.Join(errs...)
}
