// Package config defines all configuration structures for the drug effect
// estimation pipeline.  No I/O or parsing logic lives here — only plain data
// types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds logging behaviour.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// InferenceConfig holds the serving endpoint and sampling parameters.
type InferenceConfig struct {
	Endpoint       string        `mapstructure:"endpoint"`
	Model          string        `mapstructure:"model"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Temperature    float64       `mapstructure:"temperature"`
	TopP           float64       `mapstructure:"top_p"`
	MaxTokens      int           `mapstructure:"max_tokens"`

	// NumGPUs is recorded for provenance; the serving endpoint owns its own
	// parallelism and the value is never transmitted.
	NumGPUs int `mapstructure:"num_gpus"`
}

// RunConfig holds per-run pipeline knobs.
type RunConfig struct {
	InputPath     string `mapstructure:"input_path"`
	Column        string `mapstructure:"column"`
	OutputDir     string `mapstructure:"output_dir"`
	BatchSize     int    `mapstructure:"batch_size"`
	Reasoning     bool   `mapstructure:"reasoning"`
	KeepResponses bool   `mapstructure:"keep_responses"`
	ShowProgress  bool   `mapstructure:"show_progress"`
}

// CacheConfig holds the optional Redis response cache settings.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	TTL          time.Duration `mapstructure:"ttl"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StorageConfig holds the optional MinIO artifact upload settings.
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MetricsConfig holds the optional Prometheus listener settings.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Top-level config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Inference InferenceConfig `mapstructure:"inference"`
	Run       RunConfig       `mapstructure:"run"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks the configuration for internal consistency.  It assumes
// ApplyDefaults has already run, so zero values in defaulted fields are
// genuine caller errors.
func (c *Config) Validate() error {
	if err := c.validateLog(); err != nil {
		return err
	}
	if err := c.validateInference(); err != nil {
		return err
	}
	if err := c.validateRun(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLog() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug/info/warn/error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

func (c *Config) validateInference() error {
	if c.Inference.Endpoint == "" {
		return fmt.Errorf("inference.endpoint is required")
	}
	if c.Inference.Model == "" {
		return fmt.Errorf("inference.model is required")
	}
	if c.Inference.Temperature < 0 {
		return fmt.Errorf("inference.temperature must be non-negative, got %g", c.Inference.Temperature)
	}
	if c.Inference.TopP <= 0 || c.Inference.TopP > 1 {
		return fmt.Errorf("inference.top_p must be in (0, 1], got %g", c.Inference.TopP)
	}
	if c.Inference.MaxTokens < 1 {
		return fmt.Errorf("inference.max_tokens must be at least 1, got %d", c.Inference.MaxTokens)
	}
	if c.Inference.NumGPUs < 1 {
		return fmt.Errorf("inference.num_gpus must be at least 1, got %d", c.Inference.NumGPUs)
	}
	return nil
}

// validateRun leaves input_path alone: it is usually supplied per
// invocation on the command line, after the file and env layers load.
func (c *Config) validateRun() error {
	if c.Run.Column == "" {
		return fmt.Errorf("run.column is required")
	}
	if c.Run.BatchSize < 1 {
		return fmt.Errorf("run.batch_size must be at least 1, got %d", c.Run.BatchSize)
	}
	return nil
}

func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.Addr == "" {
		return fmt.Errorf("cache.addr is required when cache is enabled")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be non-negative, got %s", c.Cache.TTL)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("storage.endpoint is required when storage is enabled")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return fmt.Errorf("metrics.listen_addr is required when metrics is enabled")
	}
	return nil
}

//Personal.AI order the ending
