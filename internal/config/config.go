// Package config loads the daemon configuration from an optional YAML
// file. Flags in package main override individual fields.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete daemon configuration.
type Config struct {
	Evcc    EvccConfig    `yaml:"evcc"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// EvccConfig points at the evcc instance being rendered.
type EvccConfig struct {
	URL            string `yaml:"url"`
	PollSeconds    int    `yaml:"poll_seconds"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Poll returns the poll interval as a duration.
func (c EvccConfig) Poll() time.Duration { return time.Duration(c.PollSeconds) * time.Second }

// Timeout returns the HTTP timeout as a duration.
func (c EvccConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSeconds) * time.Second }

// DisplayConfig tunes the presentation engine.
type DisplayConfig struct {
	RotationSeconds int `yaml:"rotation_seconds"`
	// ActivityEpsilon is the watt threshold below which a reading is
	// shown as inactive.
	ActivityEpsilon float64 `yaml:"activity_epsilon"`
	BarWidth        int     `yaml:"bar_width"`
}

// Rotation returns the loadpoint rotation interval as a duration.
func (c DisplayConfig) Rotation() time.Duration {
	return time.Duration(c.RotationSeconds) * time.Second
}

// LogConfig sizes the diagnostic log ring.
type LogConfig struct {
	Capacity int    `yaml:"capacity"`
	MinLevel string `yaml:"min_level"`
}

// MQTTConfig configures event publishing. An empty broker disables it.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
}

// HTTPConfig configures the status server. An empty addr disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Evcc: EvccConfig{
			PollSeconds:    10,
			TimeoutSeconds: 8,
		},
		Display: DisplayConfig{
			RotationSeconds: 10,
			ActivityEpsilon: 10,
			BarWidth:        360,
		},
		Log: LogConfig{
			Capacity: 128,
			MinLevel: "error",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot run
// with.
func (c Config) Validate() error {
	if c.Evcc.URL == "" {
		return fmt.Errorf("evcc.url is required")
	}
	if c.Evcc.PollSeconds <= 0 {
		return fmt.Errorf("evcc.poll_seconds must be positive, got %d", c.Evcc.PollSeconds)
	}
	if c.Evcc.TimeoutSeconds <= 0 {
		return fmt.Errorf("evcc.timeout_seconds must be positive, got %d", c.Evcc.TimeoutSeconds)
	}
	if c.Display.RotationSeconds <= 0 {
		return fmt.Errorf("display.rotation_seconds must be positive, got %d", c.Display.RotationSeconds)
	}
	if c.Display.BarWidth < 1 {
		return fmt.Errorf("display.bar_width must be at least 1, got %d", c.Display.BarWidth)
	}
	if c.Log.Capacity < 1 {
		return fmt.Errorf("log.capacity must be at least 1, got %d", c.Log.Capacity)
	}
	return nil
}
