package config

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when Load is
// called without a path.
const EnvConfigPath = "VOXELCORE_CONFIG"

// Config is the root of the YAML configuration.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Render  RenderConfig  `yaml:"render"`
	Player  PlayerConfig  `yaml:"player"`
	Game    GameConfig    `yaml:"game"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type WorldConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Depth       int    `yaml:"depth"`
	ChunkSize   int    `yaml:"chunk_size"`
	SavePath    string `yaml:"save_path"`
	Compression string `yaml:"compression"`
}

type RenderConfig struct {
	WindowWidth   int     `yaml:"window_width"`
	WindowHeight  int     `yaml:"window_height"`
	FOV           float32 `yaml:"fov"`
	Near          float32 `yaml:"near"`
	Far           float32 `yaml:"far"`
	RebuildBudget int     `yaml:"rebuild_budget"`
	MeshWorkers   int     `yaml:"mesh_workers"`
	FogDensity    float32 `yaml:"fog_density"`
	Atlas         string  `yaml:"atlas"`
	VSync         bool    `yaml:"vsync"`
}

type PlayerConfig struct {
	Sensitivity float32 `yaml:"sensitivity"`
	Reach       float32 `yaml:"reach"`
}

type GameConfig struct {
	TicksPerSecond int `yaml:"ticks_per_second"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// MetricsConfig enables the Prometheus endpoint when Listen is non-empty.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Width:       256,
			Height:      256,
			Depth:       64,
			ChunkSize:   16,
			SavePath:    "level.dat",
			Compression: "gzip",
		},
		Render: RenderConfig{
			WindowWidth:   1024,
			WindowHeight:  768,
			FOV:           70,
			Near:          0.05,
			Far:           1000,
			RebuildBudget: 2,
			MeshWorkers:   2,
			FogDensity:    0.2,
			VSync:         true,
		},
		Player: PlayerConfig{
			Sensitivity: 0.15,
			Reach:       4,
		},
		Game: GameConfig{
			TicksPerSecond: 60,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Load reads a YAML file over the defaults. With an empty path the
// VOXELCORE_CONFIG variable is tried; if that is unset too the defaults are
// returned as they are.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	w := c.World
	if w.Width <= 0 || w.Height <= 0 || w.Depth <= 0 {
		return errors.Errorf("world dimensions must be positive, got %dx%dx%d", w.Width, w.Height, w.Depth)
	}
	if w.ChunkSize <= 0 {
		return errors.Errorf("chunk size must be positive, got %d", w.ChunkSize)
	}
	if w.SavePath == "" {
		return errors.New("save path is empty")
	}
	switch w.Compression {
	case "gzip", "zstd":
	default:
		return errors.Errorf("unknown compression %q", w.Compression)
	}

	r := c.Render
	if r.WindowWidth <= 0 || r.WindowHeight <= 0 {
		return errors.Errorf("window size must be positive, got %dx%d", r.WindowWidth, r.WindowHeight)
	}
	if r.FOV <= 0 || r.FOV >= 180 {
		return errors.Errorf("fov out of range: %v", r.FOV)
	}
	if r.Near <= 0 || r.Far <= r.Near {
		return errors.Errorf("bad clip range %v..%v", r.Near, r.Far)
	}
	if r.RebuildBudget < 0 {
		return errors.Errorf("rebuild budget must not be negative, got %d", r.RebuildBudget)
	}
	if r.MeshWorkers < 0 {
		return errors.Errorf("mesh workers must not be negative, got %d", r.MeshWorkers)
	}
	if c.Player.Reach <= 0 {
		return errors.Errorf("reach must be positive, got %v", c.Player.Reach)
	}
	if c.Game.TicksPerSecond <= 0 {
		return errors.Errorf("ticks per second must be positive, got %d", c.Game.TicksPerSecond)
	}
	return nil
}

// RenderSettings holds the render values that can change while running.
type RenderSettings struct {
	mu            sync.RWMutex
	rebuildBudget int
	fogEnabled    bool
}

var globalRenderSettings = &RenderSettings{
	rebuildBudget: 2,
	fogEnabled:    true,
}

// GetRebuildBudget returns the number of chunk rebuilds allowed per frame.
func GetRebuildBudget() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.rebuildBudget
}

// SetRebuildBudget sets the per-frame rebuild limit.
func SetRebuildBudget(budget int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	if budget < 0 {
		budget = 0
	}
	if budget > 64 {
		budget = 64
	}

	globalRenderSettings.rebuildBudget = budget
}

// GetFogEnabled reports whether the shaded layer is drawn with fog.
func GetFogEnabled() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fogEnabled
}

// SetFogEnabled toggles fog on the shaded layer.
func SetFogEnabled(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.fogEnabled = enabled
}

// Apply copies the runtime-adjustable values of c into the global settings.
func (c *Config) Apply() {
	SetRebuildBudget(c.Render.RebuildBudget)
}
