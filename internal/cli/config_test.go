package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowq-dev/snowq/internal/schema"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snowq.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_DefaultsWhenAbsent(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, schema.DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, "data", cfg.DefaultColumn)
}

func TestLoadConfig_ExplicitMissingPathIsAnError(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_FullFile(t *testing.T) {
	path := writeConfig(t, `
max_depth: 6
element_samples: 2
sample_literals: 10
cache_path: /tmp/snowq-cache.db
cache_ttl: 30m
default_column: payload
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.MaxDepth)
	assert.Equal(t, 2, cfg.ElementSamples)
	assert.Equal(t, 10, cfg.SampleLiterals)
	assert.Equal(t, "/tmp/snowq-cache.db", cfg.CachePath)
	assert.Equal(t, Duration(30*time.Minute), cfg.CacheTTL)
	assert.Equal(t, "payload", cfg.DefaultColumn)
}

func TestLoadConfig_SparseFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "max_depth: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, schema.DefaultElementSamples, cfg.ElementSamples)
	assert.Equal(t, DefaultConfig().CacheTTL, cfg.CacheTTL)
	assert.Equal(t, "data", cfg.DefaultColumn)
}

func TestLoadConfig_BadDuration(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "cache_ttl: soon\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_Malformed(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "max_depth: [not an int\n"))
	assert.Error(t, err)
}

func TestConfig_Inferencer(t *testing.T) {
	cfg := Config{MaxDepth: 3, ElementSamples: 1, SampleLiterals: 2}
	inf := cfg.Inferencer()
	assert.Equal(t, 3, inf.MaxDepth)
	assert.Equal(t, 1, inf.ElementSamples)
	assert.Equal(t, 2, inf.SampleLiterals)
}
