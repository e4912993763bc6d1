package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds input/output paths and preview render settings.
type Config struct {
	// Paths
	InputDir  string `json:"input_dir"`
	OutputDir string `json:"output_dir"`
	Matcap    string `json:"matcap"`

	// Render settings
	RenderSize  int     `json:"render_size"`
	Supersample int     `json:"supersample"`
	Fill        float64 `json:"fill"`
	Workers     int     `json:"workers"`
	Yaw         float64 `json:"yaw"`
	Pitch       float64 `json:"pitch"`

	// Geometry
	Levels     int  `json:"levels"`
	Frame      int  `json:"frame"`
	FlatShaded bool `json:"flat_shaded"`

	Debug bool `json:"debug"`

	// Set when the file names levels/yaw/pitch, so an explicit 0 is kept.
	levelsSet, yawSet, pitchSet bool
}

// Load reads a JSON config file. Fields not set in the file keep their zero
// values until Resolve.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err == nil {
		_, cfg.levelsSet = present["levels"]
		_, cfg.yawSet = present["yaw"]
		_, cfg.pitchSet = present["pitch"]
	}

	base := filepath.Dir(path)
	cfg.InputDir = relativeTo(base, cfg.InputDir)
	cfg.OutputDir = relativeTo(base, cfg.OutputDir)
	cfg.Matcap = relativeTo(base, cfg.Matcap)
	return cfg, nil
}

// relativeTo resolves a relative path in the config file against the
// file's directory.
func relativeTo(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Flags holds CLI flag values that override config file settings. Zero
// values and nil pointers leave the file's value alone.
type Flags struct {
	InputDir  string
	OutputDir string
	Matcap    string
	Workers   int
	Size      int
	Levels    *int
	Frame     *int
	Yaw       *float64
	Pitch     *float64
	Flat      bool
	Debug     bool
}

// Defaults for fields left empty.
const (
	DefaultRenderSize  = 256
	DefaultSupersample = 2
	DefaultFill        = 0.9
	DefaultLevels      = 1
	DefaultYaw         = 30.0
	DefaultPitch       = -20.0
)

// Resolve applies CLI overrides, then fills anything still unset with
// defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Matcap != "" {
		c.Matcap = flags.Matcap
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}
	if flags.Levels != nil {
		c.Levels = *flags.Levels
	} else if !c.levelsSet {
		c.Levels = DefaultLevels
	}
	if flags.Frame != nil {
		c.Frame = *flags.Frame
	}
	if flags.Yaw != nil {
		c.Yaw, c.yawSet = *flags.Yaw, true
	}
	if flags.Pitch != nil {
		c.Pitch, c.pitchSet = *flags.Pitch, true
	}
	c.FlatShaded = c.FlatShaded || flags.Flat
	c.Debug = c.Debug || flags.Debug

	if c.InputDir == "" {
		c.InputDir = "."
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.InputDir, "previews")
	}
	if c.RenderSize <= 0 {
		c.RenderSize = DefaultRenderSize
	}
	if c.Supersample <= 0 {
		c.Supersample = DefaultSupersample
	}
	if c.Fill <= 0 || c.Fill > 1 {
		c.Fill = DefaultFill
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Levels < 0 {
		c.Levels = 0
	}
	if c.Frame < 0 {
		c.Frame = 0
	}
	if !c.yawSet {
		c.Yaw = DefaultYaw
	}
	if !c.pitchSet {
		c.Pitch = DefaultPitch
	}
}
