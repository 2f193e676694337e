package config

import (
	"log/slog"
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.DBPath != "data/cadence.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	want := []string{"garmin", "strava", "apple_health", "coros"}
	if !slices.Equal(cfg.DeviceProviders, want) {
		t.Errorf("DeviceProviders = %v, want %v", cfg.DeviceProviders, want)
	}
	if cfg.CharInterval != 30*time.Millisecond {
		t.Errorf("CharInterval = %v", cfg.CharInterval)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DEVICE_PROVIDERS", "garmin,strava")
	t.Setenv("BLOCK_PAUSE", "1s")
	t.Setenv("BREAKER_FAILURES", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if !slices.Equal(cfg.DeviceProviders, []string{"garmin", "strava"}) {
		t.Errorf("DeviceProviders = %v", cfg.DeviceProviders)
	}
	if got := cfg.Timing().BlockPause; got != time.Second {
		t.Errorf("BlockPause = %v", got)
	}
	if got := cfg.Breaker().MaxFailures; got != 5 {
		t.Errorf("MaxFailures = %d", got)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CHAR_INTERVAL", "fast")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestTimingClampsAutoAdvance(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{100 * time.Millisecond, 300 * time.Millisecond},
		{450 * time.Millisecond, 450 * time.Millisecond},
		{2 * time.Second, 600 * time.Millisecond},
	}
	for _, tt := range tests {
		cfg := Config{AutoAdvance: tt.in}
		if got := cfg.Timing().AutoAdvance; got != tt.want {
			t.Errorf("AutoAdvance(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
