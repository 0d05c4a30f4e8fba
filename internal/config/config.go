package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/dm/fast-go/internal/client"
	"github.com/dm/fast-go/internal/engine"
)

// Config defines configuration for the fast CLI.
type Config struct {
	Upload  bool `yaml:"upload"`
	Verbose bool `yaml:"verbose"`

	Host           string        `yaml:"host"`
	APIURL         string        `yaml:"api_url"`
	Token          string        `yaml:"token"`
	URLCount       int           `yaml:"url_count"`
	MinDuration    time.Duration `yaml:"min_duration"`
	MaxDuration    time.Duration `yaml:"max_duration"`
	SampleInterval time.Duration `yaml:"sample_interval"`
	LatencyProbes  int           `yaml:"latency_probes"`
	PayloadSize    int64         `yaml:"payload_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Host:           "fast.com",
		APIURL:         "https://api.fast.com",
		URLCount:       5,
		MinDuration:    5 * time.Second,
		MaxDuration:    30 * time.Second,
		SampleInterval: 200 * time.Millisecond,
		LatencyProbes:  5,
		PayloadSize:    25 * 1000 * 1000, // 25MB
		RequestTimeout: 10 * time.Second,
	}
}

// yamlConfig is used for YAML unmarshaling with string durations and sizes.
type yamlConfig struct {
	Upload         bool   `yaml:"upload"`
	Verbose        bool   `yaml:"verbose"`
	Host           string `yaml:"host"`
	APIURL         string `yaml:"api_url"`
	Token          string `yaml:"token"`
	URLCount       int    `yaml:"url_count"`
	MinDuration    string `yaml:"min_duration"`
	MaxDuration    string `yaml:"max_duration"`
	SampleInterval string `yaml:"sample_interval"`
	LatencyProbes  int    `yaml:"latency_probes"`
	PayloadSize    string `yaml:"payload_size"`
	RequestTimeout string `yaml:"request_timeout"`
}

// LoadFromFile loads configuration from a YAML file. Missing keys keep
// their defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()
	cfg.Upload = yc.Upload
	cfg.Verbose = yc.Verbose
	if yc.Host != "" {
		cfg.Host = yc.Host
	}
	if yc.APIURL != "" {
		cfg.APIURL = yc.APIURL
	}
	if yc.Token != "" {
		cfg.Token = yc.Token
	}
	if yc.URLCount != 0 {
		cfg.URLCount = yc.URLCount
	}
	if yc.LatencyProbes != 0 {
		cfg.LatencyProbes = yc.LatencyProbes
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"min_duration", yc.MinDuration, &cfg.MinDuration},
		{"max_duration", yc.MaxDuration, &cfg.MaxDuration},
		{"sample_interval", yc.SampleInterval, &cfg.SampleInterval},
		{"request_timeout", yc.RequestTimeout, &cfg.RequestTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if yc.PayloadSize != "" {
		size, err := parseSize(yc.PayloadSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse payload_size: %w", err)
		}
		cfg.PayloadSize = size
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the FAST_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("FAST_UPLOAD"); v != "" {
		c.Upload = v == "true" || v == "1"
	}
	if v := os.Getenv("FAST_VERBOSE"); v != "" {
		c.Verbose = v == "true" || v == "1"
	}
	if v := os.Getenv("FAST_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("FAST_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("FAST_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("FAST_URL_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse FAST_URL_COUNT: %w", err)
		}
		c.URLCount = n
	}
	if v := os.Getenv("FAST_LATENCY_PROBES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse FAST_LATENCY_PROBES: %w", err)
		}
		c.LatencyProbes = n
	}
	if v := os.Getenv("FAST_MIN_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FAST_MIN_DURATION: %w", err)
		}
		c.MinDuration = d
	}
	if v := os.Getenv("FAST_MAX_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FAST_MAX_DURATION: %w", err)
		}
		c.MaxDuration = d
	}
	if v := os.Getenv("FAST_SAMPLE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FAST_SAMPLE_INTERVAL: %w", err)
		}
		c.SampleInterval = d
	}
	if v := os.Getenv("FAST_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse FAST_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv("FAST_PAYLOAD_SIZE"); v != "" {
		size, err := parseSize(v)
		if err != nil {
			return fmt.Errorf("parse FAST_PAYLOAD_SIZE: %w", err)
		}
		c.PayloadSize = size
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("config: host is required")
	}
	if c.APIURL == "" {
		return errors.New("config: api_url is required")
	}
	if c.URLCount <= 0 {
		return errors.New("config: url_count must be positive")
	}
	if c.MaxDuration <= 0 {
		return errors.New("config: max_duration must be positive")
	}
	if c.MinDuration < 0 || c.MinDuration > c.MaxDuration {
		return errors.New("config: min_duration must be between 0 and max_duration")
	}
	if c.SampleInterval <= 0 {
		return errors.New("config: sample_interval must be positive")
	}
	if c.LatencyProbes <= 0 {
		return errors.New("config: latency_probes must be positive")
	}
	if c.PayloadSize <= 0 {
		return errors.New("config: payload_size must be positive")
	}
	return nil
}

// MeasureUpload reports whether the upload phase runs. Verbose output
// always includes upload.
func (c Config) MeasureUpload() bool {
	return c.Upload || c.Verbose
}

// BaseURL is the web front-end serving the app script.
func (c Config) BaseURL() string {
	return "https://" + c.Host
}

// Engine returns the measurement tuning derived from c.
func (c Config) Engine() engine.Config {
	return engine.Config{
		MeasureUpload:  c.MeasureUpload(),
		Verbose:        c.Verbose,
		Token:          c.Token,
		URLCount:       c.URLCount,
		MinDuration:    c.MinDuration,
		MaxDuration:    c.MaxDuration,
		SampleInterval: c.SampleInterval,
		LatencyProbes:  c.LatencyProbes,
		PayloadSize:    c.PayloadSize,
	}
}

// Client returns the API client settings derived from c.
func (c Config) Client(userAgent string) client.ClientConfig {
	return client.ClientConfig{
		BaseURL:        c.BaseURL(),
		APIURL:         c.APIURL,
		UserAgent:      userAgent,
		RequestTimeout: c.RequestTimeout,
	}
}

// parseSize parses human byte strings such as "25MB" or "10 MiB".
func parseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n == 0 || n > 1<<40 {
		return 0, fmt.Errorf("size %q out of range", s)
	}
	return int64(n), nil
}
