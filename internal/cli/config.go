package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snowq-dev/snowq/internal/cache"
	"github.com/snowq-dev/snowq/internal/schema"
)

// DefaultConfigFile is probed in the working directory when --config is not given.
const DefaultConfigFile = "snowq.yaml"

// Duration wraps time.Duration so config files can say "30m" or "1h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the tunables the commands share. Every field has a working
// default, so an absent config file is not an error.
type Config struct {
	// Inference bounds.
	MaxDepth       int `yaml:"max_depth"`
	ElementSamples int `yaml:"element_samples"`
	SampleLiterals int `yaml:"sample_literals"`

	// Schema cache. An empty path disables the persistent cache.
	CachePath string   `yaml:"cache_path"`
	CacheTTL  Duration `yaml:"cache_ttl"`

	// DefaultColumn is used when --column is not supplied.
	DefaultColumn string `yaml:"default_column"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		MaxDepth:       schema.DefaultMaxDepth,
		ElementSamples: schema.DefaultElementSamples,
		SampleLiterals: schema.DefaultSampleLiterals,
		CacheTTL:       Duration(cache.DefaultTTL),
		DefaultColumn:  "data",
	}
}

// LoadConfig reads the YAML config at path, layering it over the defaults.
// With an empty path it probes DefaultConfigFile and silently falls back to
// the defaults when no file exists; an explicit path that cannot be read is
// an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Zero or negative bounds from a sparse file fall back to defaults.
	def := DefaultConfig()
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.ElementSamples <= 0 {
		cfg.ElementSamples = def.ElementSamples
	}
	if cfg.SampleLiterals <= 0 {
		cfg.SampleLiterals = def.SampleLiterals
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.DefaultColumn == "" {
		cfg.DefaultColumn = def.DefaultColumn
	}
	return cfg, nil
}

// Inferencer builds a schema.Inferencer from the configured bounds.
func (c Config) Inferencer() *schema.Inferencer {
	return &schema.Inferencer{
		MaxDepth:       c.MaxDepth,
		ElementSamples: c.ElementSamples,
		SampleLiterals: c.SampleLiterals,
	}
}
