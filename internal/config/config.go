package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"backtest-playback/internal/logging"
	"backtest-playback/internal/playback"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Backend  BackendConfig   `yaml:"backend"`
	Playback PlaybackConfig  `yaml:"playback"`
	Logging  logging.Options `yaml:"logging"`
}

type ServerConfig struct {
	Port        string   `yaml:"port"`
	Env         string   `yaml:"env"`
	StaticDir   string   `yaml:"static_dir"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type BackendConfig struct {
	URL          string        `yaml:"url"`
	Path         string        `yaml:"path"`
	NumCandles   int           `yaml:"num_candles"`
	Timeout      time.Duration `yaml:"timeout"`
	CacheEnabled bool          `yaml:"cache_enabled"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

type PlaybackConfig struct {
	WindowSize     int             `yaml:"window_size"`
	BaseFrameDelay time.Duration   `yaml:"base_frame_delay"`
	Speeds         playback.Speeds `yaml:"speeds"`
	AutoLoad       bool            `yaml:"auto_load"`
}

// Default is the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Env:         "development",
			StaticDir:   "./web/dist",
			CORSOrigins: []string{"*"},
		},
		Backend: BackendConfig{
			URL:          "http://127.0.0.1:5000",
			Path:         "/backtest",
			NumCandles:   2000,
			Timeout:      30 * time.Second,
			CacheEnabled: true,
			CacheTTL:     5 * time.Minute,
		},
		Playback: PlaybackConfig{
			WindowSize:     playback.DefaultWindowSize,
			BaseFrameDelay: playback.DefaultBaseFrameDelay,
			Speeds:         playback.DefaultSpeeds(),
			AutoLoad:       true,
		},
		Logging: logging.Options{Level: "info", Format: "text"},
	}
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none)
// into the process environment. Missing files are not an error; existing
// variables are never overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values with API_PORT, API_ENV, STATIC_DIR,
// BACKTEST_URL, NUM_CANDLES and LOG_LEVEL when they are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("API_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("API_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("BACKTEST_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("NUM_CANDLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NUM_CANDLES: %w", err)
		}
		c.Backend.NumCandles = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Backend.URL == "" {
		return errors.New("backend.url is required")
	}
	if c.Backend.NumCandles < 0 {
		return fmt.Errorf("backend.num_candles must be >= 0 (got %d)", c.Backend.NumCandles)
	}
	if c.Backend.Timeout < 0 || c.Backend.CacheTTL < 0 {
		return errors.New("backend.timeout and backend.cache_ttl must be >= 0")
	}
	if c.Playback.WindowSize <= 0 {
		return fmt.Errorf("playback.window_size must be > 0 (got %d)", c.Playback.WindowSize)
	}
	if c.Playback.BaseFrameDelay <= 0 {
		return fmt.Errorf("playback.base_frame_delay must be > 0 (got %v)", c.Playback.BaseFrameDelay)
	}
	if err := c.Playback.Speeds.Validate(); err != nil {
		return fmt.Errorf("playback.speeds invalid: %w", err)
	}
	return nil
}

// Production reports whether the server runs in release mode.
func (s ServerConfig) Production() bool { return s.Env == "production" }
