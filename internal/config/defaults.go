package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultEndpoint       = "http://localhost:8000"
	DefaultModel          = "meta-llama/Meta-Llama-3-8B-Instruct"
	DefaultRequestTimeout = 5 * time.Minute
	DefaultTemperature    = 0.6
	DefaultTopP           = 0.9
	DefaultMaxTokens      = 4096
	DefaultNumGPUs        = 1

	DefaultColumn    = "values"
	DefaultOutputDir = "."
	DefaultBatchSize = 4

	DefaultCacheAddr      = "localhost:6379"
	DefaultCacheKeyPrefix = "drugprob:"
	DefaultCacheTTL       = 7 * 24 * time.Hour

	DefaultStorageEndpoint = "localhost:9000"

	DefaultMetricsListenAddr = ":9090"
)

// ApplyDefaults fills every zero-value field in cfg with the pipeline
// default.  Fields already set by the caller are left unchanged so that
// explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stderr"}
	}

	// Inference
	if cfg.Inference.Endpoint == "" {
		cfg.Inference.Endpoint = DefaultEndpoint
	}
	if cfg.Inference.Model == "" {
		cfg.Inference.Model = DefaultModel
	}
	if cfg.Inference.RequestTimeout == 0 {
		cfg.Inference.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Inference.Temperature == 0 {
		cfg.Inference.Temperature = DefaultTemperature
	}
	if cfg.Inference.TopP == 0 {
		cfg.Inference.TopP = DefaultTopP
	}
	if cfg.Inference.MaxTokens == 0 {
		cfg.Inference.MaxTokens = DefaultMaxTokens
	}
	if cfg.Inference.NumGPUs == 0 {
		cfg.Inference.NumGPUs = DefaultNumGPUs
	}

	// Run
	if cfg.Run.Column == "" {
		cfg.Run.Column = DefaultColumn
	}
	if cfg.Run.OutputDir == "" {
		cfg.Run.OutputDir = DefaultOutputDir
	}
	if cfg.Run.BatchSize == 0 {
		cfg.Run.BatchSize = DefaultBatchSize
	}

	// Cache
	if cfg.Cache.Addr == "" {
		cfg.Cache.Addr = DefaultCacheAddr
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = DefaultCacheKeyPrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.DialTimeout == 0 {
		cfg.Cache.DialTimeout = 5 * time.Second
	}
	if cfg.Cache.ReadTimeout == 0 {
		cfg.Cache.ReadTimeout = 3 * time.Second
	}
	if cfg.Cache.WriteTimeout == 0 {
		cfg.Cache.WriteTimeout = 3 * time.Second
	}

	// Storage
	if cfg.Storage.Endpoint == "" {
		cfg.Storage.Endpoint = DefaultStorageEndpoint
	}

	// Metrics
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = DefaultMetricsListenAddr
	}
}

//Personal.AI order the ending
