package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// WindowSettings describes the demo window.
type WindowSettings struct {
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	Title  string `yaml:"title" toml:"title"`
	VSync  bool   `yaml:"vsync" toml:"vsync"`
}

// CameraSettings feeds the perspective projection.
type CameraSettings struct {
	FOV  float32 `yaml:"fov" toml:"fov"` // degrees
	Near float32 `yaml:"near" toml:"near"`
	Far  float32 `yaml:"far" toml:"far"`
}

// RenderSettings holds render configuration
type RenderSettings struct {
	ClearColor     [4]float32 `yaml:"clear_color" toml:"clear_color"`
	OffscreenClear [4]float32 `yaml:"offscreen_clear" toml:"offscreen_clear"`
	// Overlay is the destination of the composited off-screen texture as
	// x, y, width, height in pixels.
	Overlay   [4]int  `yaml:"overlay" toml:"overlay"`
	CubeSpeed float32 `yaml:"cube_speed" toml:"cube_speed"` // radians per second
	// OverlayImage is an optional image file drawn at OverlayImageRect.
	OverlayImage     string `yaml:"overlay_image" toml:"overlay_image"`
	OverlayImageRect [4]int `yaml:"overlay_image_rect" toml:"overlay_image_rect"`
	// SlowFrameMs is the frame time above which a frame is logged.
	SlowFrameMs int `yaml:"slow_frame_ms" toml:"slow_frame_ms"`
}

type Settings struct {
	Window   WindowSettings `yaml:"window" toml:"window"`
	Camera   CameraSettings `yaml:"camera" toml:"camera"`
	Render   RenderSettings `yaml:"render" toml:"render"`
	LogLevel string         `yaml:"log_level" toml:"log_level"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Window: WindowSettings{Width: 900, Height: 600, Title: "spritegl", VSync: true},
		Camera: CameraSettings{FOV: 45, Near: 0.1, Far: 5000},
		Render: RenderSettings{
			ClearColor:       [4]float32{0, 0, 0, 1},
			OffscreenClear:   [4]float32{1, 0, 1, 0},
			Overlay:          [4]int{0, 0, 256, 256},
			CubeSpeed:        2.0944,
			OverlayImageRect: [4]int{272, 0, 64, 64},
			SlowFrameMs:      50,
		},
		LogLevel: "info",
	}
}

var (
	mu      sync.RWMutex
	current = Defaults()
)

// Get returns a copy of the current settings.
func Get() Settings {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set clamps s and makes it current.
func Set(s Settings) {
	s.clamp()
	mu.Lock()
	current = s
	mu.Unlock()
}

// Parse decodes YAML over the defaults, so omitted keys keep their default.
func Parse(data []byte) (Settings, error) {
	s := Defaults()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	s.clamp()
	return s, nil
}

// ParseTOML is Parse for TOML documents.
func ParseTOML(data []byte) (Settings, error) {
	s := Defaults()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	s.clamp()
	return s, nil
}

// Load reads a settings file and makes it current. Files ending in .toml are
// decoded as TOML, anything else as YAML. A missing file leaves the current
// settings untouched and reports os.ErrNotExist.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	parse := Parse
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parse = ParseTOML
	}
	s, err := parse(data)
	if err != nil {
		return err
	}
	Set(s)
	return nil
}

// GetFOV returns the vertical field of view in degrees
func GetFOV() float32 {
	mu.RLock()
	defer mu.RUnlock()
	return current.Camera.FOV
}

// SetFOV sets the vertical field of view in degrees
func SetFOV(fov float32) {
	mu.Lock()
	defer mu.Unlock()
	current.Camera.FOV = clampFOV(fov)
}

func clampFOV(fov float32) float32 {
	// Clamp to reasonable values
	if fov < 10 {
		return 10
	}
	if fov > 120 {
		return 120
	}
	return fov
}

func (s *Settings) clamp() {
	s.Camera.FOV = clampFOV(s.Camera.FOV)
	if s.Camera.Near <= 0 {
		s.Camera.Near = 0.1
	}
	if s.Camera.Far <= s.Camera.Near {
		s.Camera.Far = s.Camera.Near * 1000
	}
	if s.Window.Width < 64 {
		s.Window.Width = 64
	}
	if s.Window.Height < 64 {
		s.Window.Height = 64
	}
	if s.Render.SlowFrameMs < 1 {
		s.Render.SlowFrameMs = 1
	}
}
