package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if got := cfg.Evcc.Poll(); got != 10*time.Second {
		t.Errorf("default poll = %v, want 10s", got)
	}
	if got := cfg.Evcc.Timeout(); got != 8*time.Second {
		t.Errorf("default timeout = %v, want 8s", got)
	}
	if got := cfg.Display.Rotation(); got != 10*time.Second {
		t.Errorf("default rotation = %v, want 10s", got)
	}
	if cfg.Display.BarWidth != 360 {
		t.Errorf("default bar width = %d, want 360", cfg.Display.BarWidth)
	}
	if cfg.Log.Capacity != 128 {
		t.Errorf("default log capacity = %d, want 128", cfg.Log.Capacity)
	}
	if cfg.Log.MinLevel != "error" {
		t.Errorf("default min level = %q, want error", cfg.Log.MinLevel)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("default http addr = %q, want :8080", cfg.HTTP.Addr)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	body := `
evcc:
  url: http://evcc.local:7070
  poll_seconds: 5
display:
  rotation_seconds: 30
  activity_epsilon: 25
log:
  min_level: info
mqtt:
  broker: tcp://broker:1883
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Evcc.URL != "http://evcc.local:7070" {
		t.Errorf("url = %q", cfg.Evcc.URL)
	}
	if got := cfg.Evcc.Poll(); got != 5*time.Second {
		t.Errorf("poll = %v, want 5s", got)
	}
	if got := cfg.Evcc.Timeout(); got != 8*time.Second {
		t.Errorf("timeout = %v, want default 8s", got)
	}
	if got := cfg.Display.Rotation(); got != 30*time.Second {
		t.Errorf("rotation = %v, want 30s", got)
	}
	if cfg.Display.ActivityEpsilon != 25 {
		t.Errorf("epsilon = %v, want 25", cfg.Display.ActivityEpsilon)
	}
	if cfg.Display.BarWidth != 360 {
		t.Errorf("bar width = %d, want default 360", cfg.Display.BarWidth)
	}
	if cfg.Log.MinLevel != "info" {
		t.Errorf("min level = %q, want info", cfg.Log.MinLevel)
	}
	if cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("broker = %q", cfg.MQTT.Broker)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("evcc: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for bad YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Evcc.URL = "http://evcc.local:7070"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing url", func(c *Config) { c.Evcc.URL = "" }, true},
		{"zero poll", func(c *Config) { c.Evcc.PollSeconds = 0 }, true},
		{"negative timeout", func(c *Config) { c.Evcc.TimeoutSeconds = -1 }, true},
		{"zero rotation", func(c *Config) { c.Display.RotationSeconds = 0 }, true},
		{"zero bar width", func(c *Config) { c.Display.BarWidth = 0 }, true},
		{"zero log capacity", func(c *Config) { c.Log.Capacity = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
