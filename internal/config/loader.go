package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Su-informatics-lab/llm-drug-effect/pkg/errors"
)

// envPrefix is the environment variable prefix used by all pipeline settings.
const envPrefix = "DRUGPROB"

// newViper builds a pre-configured Viper instance: YAML file type, DRUGPROB_
// env prefix, automatic env binding, and a key replacer that maps "." → "_"
// so that nested keys like "inference.endpoint" resolve to
// "DRUGPROB_INFERENCE_ENDPOINT".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindKeys(v)
	return v
}

// bindKeys registers every configuration key so that env-only values are
// visible to Unmarshal even when no config file is loaded.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"log.level", "log.format", "log.output_paths",
		"inference.endpoint", "inference.model", "inference.api_key",
		"inference.request_timeout", "inference.temperature",
		"inference.top_p", "inference.max_tokens", "inference.num_gpus",
		"run.input_path", "run.column", "run.output_dir", "run.batch_size",
		"run.reasoning", "run.keep_responses", "run.show_progress",
		"cache.enabled", "cache.addr", "cache.password", "cache.db",
		"cache.key_prefix", "cache.ttl", "cache.dial_timeout",
		"cache.read_timeout", "cache.write_timeout",
		"storage.enabled", "storage.endpoint", "storage.access_key",
		"storage.secret_key", "storage.bucket", "storage.use_ssl",
		"metrics.enabled", "metrics.listen_addr",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges any DRUGPROB_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfig,
			fmt.Sprintf("failed to read config file %q", configPath))
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from DRUGPROB_* environment
// variables, with no config file required.
//
// Environment variable naming convention:
//
//	DRUGPROB_<SECTION>_<FIELD>   e.g.  DRUGPROB_INFERENCE_MODEL
func LoadFromEnv() (*Config, error) {
	v := newViper()
	// No config file, rely solely on env vars and defaults.
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfig, "failed to unmarshal configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfig, "validation failed")
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading safe settings such as the log level during a long run; the
// caller decides which fields to apply.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// A changed file that fails to parse or validate is skipped without invoking
// onChange.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read. Errors are ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for main(), where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
