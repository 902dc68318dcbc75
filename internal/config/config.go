package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Sources   SourcesConfig
	Scheduler SchedulerConfig
	Import    ImportConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type SourcesConfig struct {
	USGSBaseURL  string
	NWSBaseURL   string
	FetchTimeout time.Duration
	UserAgent    string
}

type SchedulerConfig struct {
	PollInterval     time.Duration
	SeismicInterval  time.Duration
	WeatherInterval  time.Duration
	CombinedInterval time.Duration
}

type ImportConfig struct {
	WindowHours          int
	MinMagnitude         float64
	CombinedMinMagnitude float64
	DefaultRegionCode    string
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Sources: SourcesConfig{
			USGSBaseURL:  getEnv("USGS_BASE_URL", "https://earthquake.usgs.gov"),
			NWSBaseURL:   getEnv("NWS_BASE_URL", "https://api.weather.gov"),
			FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
			UserAgent:    getEnv("FEED_USER_AGENT", "cdrp-disaster-ingest/1.0 (ops@cdrp.org)"),
		},
		Scheduler: SchedulerConfig{
			PollInterval:     getEnvDuration("SCHED_POLL_INTERVAL", time.Minute),
			SeismicInterval:  getEnvDuration("SEISMIC_IMPORT_INTERVAL", 30*time.Minute),
			WeatherInterval:  getEnvDuration("WEATHER_IMPORT_INTERVAL", 15*time.Minute),
			CombinedInterval: getEnvDuration("COMBINED_IMPORT_INTERVAL", 6*time.Hour),
		},
		Import: ImportConfig{
			WindowHours:          getEnvInt("SEISMIC_WINDOW_HOURS", 24),
			MinMagnitude:         getEnvFloat("SEISMIC_MIN_MAGNITUDE", 4.0),
			CombinedMinMagnitude: getEnvFloat("COMBINED_MIN_MAGNITUDE", 3.5),
			DefaultRegionCode:    getEnv("DEFAULT_REGION_CODE", "CR"),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/disaster-ingest.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Sources.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.Import.WindowHours < 1 {
		return fmt.Errorf("seismic window must be at least 1 hour")
	}
	if c.Scheduler.PollInterval < time.Second {
		return fmt.Errorf("scheduler poll interval must be at least 1 second")
	}
	if c.Scheduler.SeismicInterval < time.Minute {
		return fmt.Errorf("seismic import interval must be at least 1 minute")
	}
	if c.Scheduler.WeatherInterval < time.Minute {
		return fmt.Errorf("weather import interval must be at least 1 minute")
	}
	if c.Scheduler.CombinedInterval < time.Minute {
		return fmt.Errorf("combined import interval must be at least 1 minute")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
