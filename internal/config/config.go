// Package config loads layered service configuration: defaults, then an
// optional YAML file, then MOODTUNE_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces every environment override.
const envPrefix = "MOODTUNE_"

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "MOODTUNE_CONFIG"

// defaultConfigPaths lists where the config file is searched, in order.
var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moodtune/config.yaml",
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type CatalogConfig struct {
	Path         string `koanf:"path"`
	FallbackPath string `koanf:"fallback_path"`
	// Watch reloads the index when the catalog file changes on disk.
	Watch bool `koanf:"watch"`
}

type AudioConfig struct {
	// ServiceURL points at the external speech/emotion analysis service.
	// Empty disables the audio endpoint's upstream call.
	ServiceURL string        `koanf:"service_url"`
	Timeout    time.Duration `koanf:"timeout"`
}

type RecommendConfig struct {
	TopK              int  `koanf:"top_k"`
	MaxExternalCalls  int  `koanf:"max_external_calls"`
	UseExternalSearch bool `koanf:"use_external_search"`
}

type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	BaseURL      string `koanf:"base_url"`
	TokenURL     string `koanf:"token_url"`
}

type GigaChatConfig struct {
	APIKey        string        `koanf:"api_key"`
	BaseURL       string        `koanf:"base_url"`
	Model         string        `koanf:"model"`
	Retries       int           `koanf:"retries"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
	Timeout       time.Duration `koanf:"timeout"`
	MaxConcurrent int           `koanf:"max_concurrent"`
}

type MetricsConfig struct {
	// Driver selects the sink backend: csv or sqlite.
	Driver    string `koanf:"driver"`
	Path      string `koanf:"path"`
	QueueSize int    `koanf:"queue_size"`
	Workers   int    `koanf:"workers"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Audio     AudioConfig     `koanf:"audio"`
	Recommend RecommendConfig `koanf:"recommend"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	GigaChat  GigaChatConfig  `koanf:"gigachat"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ShutdownTimeout: 15 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:         "data/tracks.csv",
			FallbackPath: "data/tracks_fallback.csv",
			Watch:        true,
		},
		Audio: AudioConfig{
			Timeout: 60 * time.Second,
		},
		Recommend: RecommendConfig{
			TopK:              5,
			MaxExternalCalls:  3,
			UseExternalSearch: true,
		},
		GigaChat: GigaChatConfig{
			Model:         "GigaChat-2-Max",
			Retries:       3,
			RetryDelay:    2 * time.Second,
			Timeout:       60 * time.Second,
			MaxConcurrent: 5,
		},
		Metrics: MetricsConfig{
			Driver:    "csv",
			Path:      "data/metrics.csv",
			QueueSize: 256,
			Workers:   2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load assembles the configuration with precedence ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// MOODTUNE_SERVER_PORT -> server.port, MOODTUNE_RECOMMEND_TOP_K ->
	// recommend.top_k: the first underscore after the prefix splits the
	// section from the key.
	envProvider := env.Provider(envPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if i := strings.Index(s, "_"); i > 0 {
		return s[:i] + "." + s[i+1:]
	}
	return s
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Catalog.Path == "" && c.Catalog.FallbackPath == "" {
		return fmt.Errorf("catalog.path or catalog.fallback_path must be set")
	}
	if c.Recommend.TopK < 1 {
		return fmt.Errorf("recommend.top_k must be positive")
	}
	switch c.Metrics.Driver {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("metrics.driver must be csv or sqlite, got %q", c.Metrics.Driver)
	}
	return nil
}
