package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Feed      FeedConfig      `yaml:"feed"`
	DB        DBConfig        `yaml:"db"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Grid      GridConfig      `yaml:"grid"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// FeedConfig points at the C123 server WebSocket.
type FeedConfig struct {
	URL        string        `yaml:"url"`
	RetryWait  time.Duration `yaml:"retry_wait"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// LogConfig sets the log level. A non-empty Path logs to a rotated file.
type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type GridConfig struct {
	WrapAround bool `yaml:"wrap_around"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportHTTP,
		},
		Feed: FeedConfig{
			URL:        "ws://localhost:27123/ws",
			RetryWait:  3 * time.Second,
			StaleAfter: 10 * time.Second,
		},
		DB: DBConfig{
			Path: "c123-scoring.db",
		},
		Storage: StorageConfig{
			KeyPrefix: "c123-scoring",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("C123_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Feed.RetryWait <= 0 {
		return fmt.Errorf("invalid feed retry wait %s", c.Feed.RetryWait)
	}
	if c.Feed.StaleAfter <= 0 {
		return fmt.Errorf("invalid feed stale after %s", c.Feed.StaleAfter)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("C123_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("C123_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid C123_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("C123_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if url := os.Getenv("C123_FEED_URL"); url != "" {
		cfg.Feed.URL = url
	}
	if err := envDuration("C123_FEED_RETRY_WAIT", &cfg.Feed.RetryWait); err != nil {
		return err
	}
	if err := envDuration("C123_FEED_STALE_AFTER", &cfg.Feed.StaleAfter); err != nil {
		return err
	}
	if dbPath := os.Getenv("C123_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if prefix := os.Getenv("C123_STORAGE_KEY_PREFIX"); prefix != "" {
		cfg.Storage.KeyPrefix = prefix
	}
	if level := os.Getenv("C123_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("C123_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if wrap := os.Getenv("C123_GRID_WRAP_AROUND"); wrap != "" {
		v, err := strconv.ParseBool(wrap)
		if err != nil {
			return fmt.Errorf("invalid C123_GRID_WRAP_AROUND: %w", err)
		}
		cfg.Grid.WrapAround = v
	}
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	s := os.Getenv(name)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
