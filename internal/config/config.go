package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/NativeSquare/Cadence-sub000/internal/device"
	"github.com/NativeSquare/Cadence-sub000/internal/scene"
	"github.com/NativeSquare/Cadence-sub000/internal/stream"
)

const (
	minAutoAdvance = 300 * time.Millisecond
	maxAutoAdvance = 600 * time.Millisecond
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/cadence.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	// CatalogPath points at a YAML questionnaire. Empty uses the built-in one.
	CatalogPath string `env:"CATALOG_PATH"`

	CharInterval   time.Duration `env:"CHAR_INTERVAL" envDefault:"30ms"`
	StartDelay     time.Duration `env:"START_DELAY" envDefault:"250ms"`
	BlockPause     time.Duration `env:"BLOCK_PAUSE" envDefault:"700ms"`
	SettleDelay    time.Duration `env:"SETTLE_DELAY" envDefault:"900ms"`
	AutoAdvance    time.Duration `env:"AUTO_ADVANCE" envDefault:"400ms"`
	ConnectAdvance time.Duration `env:"CONNECT_ADVANCE" envDefault:"1200ms"`

	DeviceProviders []string      `env:"DEVICE_PROVIDERS" envSeparator:"," envDefault:"garmin,strava,apple_health,coros"`
	DeviceLatency   time.Duration `env:"DEVICE_LATENCY" envDefault:"1500ms"`
	BreakerFailures uint32        `env:"BREAKER_FAILURES" envDefault:"3"`
	BreakerTimeout  time.Duration `env:"BREAKER_TIMEOUT" envDefault:"30s"`
	EffectTimeout   time.Duration `env:"EFFECT_TIMEOUT" envDefault:"20s"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

// Timing returns the scene pacing with the auto-advance delay clamped to
// the range single-select taps feel responsive in.
func (c *Config) Timing() scene.Timing {
	return scene.Timing{
		BlockPause:     c.BlockPause,
		SettleDelay:    c.SettleDelay,
		AutoAdvance:    min(max(c.AutoAdvance, minAutoAdvance), maxAutoAdvance),
		ConnectAdvance: c.ConnectAdvance,
	}
}

func (c *Config) StreamOptions() stream.Options {
	return stream.Options{Interval: c.CharInterval, StartDelay: c.StartDelay}
}

func (c *Config) Breaker() device.BreakerSettings {
	return device.BreakerSettings{MaxFailures: c.BreakerFailures, Timeout: c.BreakerTimeout}
}
