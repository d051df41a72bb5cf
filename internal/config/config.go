// Package config loads process-level engine defaults from the
// environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries the tunables the CLI wires into the engine.
type Config struct {
	// CacheCapacity bounds the number of decoded assets kept in memory.
	CacheCapacity int `env:"CANVAS_CACHE_CAPACITY" envDefault:"50"`

	// LoadConcurrency bounds in-flight asset loads per batch chunk.
	LoadConcurrency int `env:"CANVAS_LOAD_CONCURRENCY" envDefault:"5"`

	// GridSpacing is the snap grid cell size in canvas units.
	GridSpacing float64 `env:"CANVAS_GRID_SPACING" envDefault:"20"`

	// GridEnabled turns grid snapping on at startup.
	GridEnabled bool `env:"CANVAS_GRID_ENABLED" envDefault:"false"`

	// HTTPAddr is the listen address for the serve command.
	HTTPAddr string `env:"CANVAS_HTTP_ADDR" envDefault:":8080"`

	// RedisAddr, when set, enables the Redis telemetry sink.
	RedisAddr string `env:"CANVAS_REDIS_ADDR"`

	// RedisChannel is the pub/sub channel events are published to.
	RedisChannel string `env:"CANVAS_REDIS_CHANNEL" envDefault:"canvas:events"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"CANVAS_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
