package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Sources.FetchTimeout != 30*time.Second {
		t.Errorf("expected 30s fetch timeout, got %v", cfg.Sources.FetchTimeout)
	}
	if cfg.Import.MinMagnitude != 4.0 {
		t.Errorf("expected default min magnitude 4.0, got %v", cfg.Import.MinMagnitude)
	}
	if cfg.Import.CombinedMinMagnitude != 3.5 {
		t.Errorf("expected combined min magnitude 3.5, got %v", cfg.Import.CombinedMinMagnitude)
	}
	if cfg.Import.DefaultRegionCode != "CR" {
		t.Errorf("expected default region CR, got %s", cfg.Import.DefaultRegionCode)
	}
	if cfg.Scheduler.SeismicInterval != 30*time.Minute {
		t.Errorf("expected 30m seismic interval, got %v", cfg.Scheduler.SeismicInterval)
	}
	if cfg.Scheduler.WeatherInterval != 15*time.Minute {
		t.Errorf("expected 15m weather interval, got %v", cfg.Scheduler.WeatherInterval)
	}
	if cfg.Scheduler.CombinedInterval != 6*time.Hour {
		t.Errorf("expected 6h combined interval, got %v", cfg.Scheduler.CombinedInterval)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SEISMIC_MIN_MAGNITUDE", "5.0")
	t.Setenv("WEATHER_IMPORT_INTERVAL", "20m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Import.MinMagnitude != 5.0 {
		t.Errorf("expected min magnitude 5.0, got %v", cfg.Import.MinMagnitude)
	}
	if cfg.Scheduler.WeatherInterval != 20*time.Minute {
		t.Errorf("expected 20m weather interval, got %v", cfg.Scheduler.WeatherInterval)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "SERVER_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"interval too short", "WEATHER_IMPORT_INTERVAL", "10s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
