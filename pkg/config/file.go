package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the binaries.
type Config struct {
	SurfaceSize int `yaml:"surface_size"`
	TileSize    int `yaml:"tile_size"`

	// Difficulty intervals in milliseconds, merged over DefaultPolicy.
	Difficulties  map[string]int `yaml:"difficulties"`
	MinIntervalMs int            `yaml:"min_interval_ms"`
	SpeedUpFactor float64        `yaml:"speed_up_factor"`
	PointsPerFood int            `yaml:"points_per_food"`
	FoodPerLevel  int            `yaml:"food_per_level"`

	DatabasePath string `yaml:"database_path"`
	RecordDir    string `yaml:"record_dir"`
	Record       bool   `yaml:"record"`

	ListenAddr string `yaml:"listen_addr"`
	ReplayAddr string `yaml:"replay_addr"`
	StaticDir  string `yaml:"static_dir"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns Config with the stock game settings.
func Default() Config {
	return Config{
		SurfaceSize:   SurfaceSize,
		TileSize:      TileSize,
		MinIntervalMs: int(MinTickInterval / time.Millisecond),
		SpeedUpFactor: SpeedUpFactor,
		PointsPerFood: PointsPerFood,
		FoodPerLevel:  FoodPerLevel,
		DatabasePath:  "data/game.db",
		RecordDir:     "records",
		ListenAddr:    ":8080",
		ReplayAddr:    ":8081",
		StaticDir:     "web/static",
		LogLevel:      "info",
		LogFile:       "snake.log",
	}
}

// Load reads .env (if present), then the YAML file at path (if it exists)
// over Default(), then applies environment overrides.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SNAKE_DB":         &c.DatabasePath,
		"SNAKE_RECORD_DIR": &c.RecordDir,
		"SNAKE_ADDR":       &c.ListenAddr,
		"SNAKE_REPLAY":     &c.ReplayAddr,
		"SNAKE_STATIC":     &c.StaticDir,
		"LOG_LEVEL":        &c.LogLevel,
		"LOG_FILE":         &c.LogFile,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("SNAKE_RECORD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SNAKE_RECORD: %w", err)
		}
		c.Record = b
	}
	return nil
}

// Validate rejects configurations the game cannot run with.
func (c Config) Validate() error {
	if c.TileSize <= 0 || c.SurfaceSize < c.TileSize {
		return fmt.Errorf("invalid surface %d / tile %d", c.SurfaceSize, c.TileSize)
	}
	if c.MinIntervalMs <= 0 {
		return fmt.Errorf("min_interval_ms must be positive, got %d", c.MinIntervalMs)
	}
	if c.SpeedUpFactor <= 0 || c.SpeedUpFactor > 1 {
		return fmt.Errorf("speed_up_factor must be in (0, 1], got %v", c.SpeedUpFactor)
	}
	if c.FoodPerLevel <= 0 {
		return fmt.Errorf("food_per_level must be positive, got %d", c.FoodPerLevel)
	}
	for name, ms := range c.Difficulties {
		if ms <= 0 {
			return fmt.Errorf("difficulty %q: interval must be positive, got %d", name, ms)
		}
	}
	return nil
}

// GridSize returns the number of tiles along one edge of the board.
func (c Config) GridSize() int {
	return c.SurfaceSize / c.TileSize
}

// Rules returns the progression rules described by c.
func (c Config) Rules() Rules {
	policy := DefaultPolicy()
	for name, ms := range c.Difficulties {
		policy[name] = time.Duration(ms) * time.Millisecond
	}
	return Rules{
		PointsPerFood: c.PointsPerFood,
		FoodPerLevel:  c.FoodPerLevel,
		SpeedUpFactor: c.SpeedUpFactor,
		MinInterval:   time.Duration(c.MinIntervalMs) * time.Millisecond,
		Policy:        policy,
	}
}
