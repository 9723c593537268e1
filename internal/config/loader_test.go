package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FileValues(t *testing.T) {
	t.Parallel()
	path := writeConfigFile(t, `
log:
  level: debug
inference:
  endpoint: http://gpu-node:8000
  model: my/model
  temperature: 0.2
run:
  batch_size: 8
  column: drug_name
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http://gpu-node:8000", cfg.Inference.Endpoint)
	assert.Equal(t, "my/model", cfg.Inference.Model)
	assert.Equal(t, 0.2, cfg.Inference.Temperature)
	assert.Equal(t, 8, cfg.Run.BatchSize)
	assert.Equal(t, "drug_name", cfg.Run.Column)

	// Unset fields still receive defaults.
	assert.Equal(t, 0.9, cfg.Inference.TopP)
	assert.Equal(t, 4096, cfg.Inference.MaxTokens)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	t.Parallel()
	path := writeConfigFile(t, `
log:
  level: shouty
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DRUGPROB_INFERENCE_MODEL", "env/model")
	t.Setenv("DRUGPROB_RUN_BATCH_SIZE", "32")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env/model", cfg.Inference.Model)
	assert.Equal(t, 32, cfg.Run.BatchSize)
}

func TestLoadFromEnv_DefaultsOnly(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Inference.Model)
	assert.Equal(t, DefaultBatchSize, cfg.Run.BatchSize)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}

func TestWatch_InvokesCallbackOnChange(t *testing.T) {
	t.Parallel()
	path := writeConfigFile(t, "log:\n  level: info\n")

	changed := make(chan *Config, 1)
	Watch(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})

	// Give the watcher a moment to arm before rewriting the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "debug", cfg.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change callback was not invoked")
	}
}

//Personal.AI order the ending
