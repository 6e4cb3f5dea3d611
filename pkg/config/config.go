// Package config handles configuration for element-resolver.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/element-resolver/pkg/actionable"
	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/fingerprint"
	"github.com/devicelab-dev/element-resolver/pkg/jobs"
	"github.com/devicelab-dev/element-resolver/pkg/layer"
	"github.com/devicelab-dev/element-resolver/pkg/textmatch"
)

// Config represents the engine configuration (resolver.yaml).
type Config struct {
	TextMatching textmatch.Config   `yaml:"textMatching"`
	Fingerprint  FingerprintConfig  `yaml:"fingerprint"`
	Children     actionable.Options `yaml:"children"`
	Layers       layer.Options      `yaml:"layers"`
	Jobs         JobsConfig         `yaml:"jobs"`
	Server       ServerConfig       `yaml:"server"`
}

// FingerprintConfig holds the default weights applied to captured
// fingerprints and the relocation floor.
type FingerprintConfig struct {
	Weights fingerprint.Weights `yaml:"weights"`
	Floor   float64             `yaml:"floor"`
}

// JobsConfig bounds the analysis job tracker.
type JobsConfig struct {
	MaxFinished int `yaml:"maxFinished"` // Finished jobs kept queryable
	Workers     int `yaml:"workers"`     // Parallel workers for batch analysis
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes"` // Request body limit
}

// DefaultServerAddr is where serve listens without --addr or config.
const DefaultServerAddr = "127.0.0.1:8765"

// Default returns the configuration used when no file is present.
func Default() *Config {
	layers := layer.DefaultOptions()
	layers.NavLabels = append([]string(nil), layer.DefaultNavLabels...)

	return &Config{
		TextMatching: textmatch.DefaultConfig(),
		Fingerprint: FingerprintConfig{
			Weights: fingerprint.DefaultWeights(),
			Floor:   fingerprint.DefaultFloor,
		},
		Children: actionable.DefaultOptions(),
		Layers:   layers,
		Jobs: JobsConfig{
			MaxFinished: jobs.DefaultMaxFinished,
			Workers:     4,
		},
		Server: ServerConfig{
			Addr:         DefaultServerAddr,
			MaxBodyBytes: 16 << 20,
		},
	}
}

// Load loads configuration from a file. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithCause(err).
			WithDetails(map[string]interface{}{"path": path})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for resolver.yaml or resolver.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// Validate rejects values no engine component can work with.
func (c *Config) Validate() error {
	switch c.TextMatching.Mode {
	case textmatch.ModeExact, textmatch.ModePartial:
	default:
		return invalid("textMatching.mode", fmt.Sprintf("unknown mode %q (want exact or partial)", c.TextMatching.Mode))
	}
	if t := c.TextMatching.PartialMatchThreshold; t < 0 || t > 1 {
		return invalid("textMatching.partialMatchThreshold", "must be within [0, 1]")
	}
	for i, p := range c.TextMatching.AntonymPairs {
		if p.Positive == "" || p.Negative == "" {
			return invalid(fmt.Sprintf("textMatching.antonymPairs[%d]", i), "positive and negative are required")
		}
	}

	w := c.Fingerprint.Weights
	if w.Anchor < 0 || w.Container < 0 || w.Sibling < 0 {
		return invalid("fingerprint.weights", "weights must not be negative")
	}
	if f := c.Fingerprint.Floor; f < 0 || f >= 1 {
		return invalid("fingerprint.floor", "must be within [0, 1)")
	}

	if c.Children.MaxDepth < 0 {
		return invalid("children.maxDepth", "must not be negative")
	}
	if b := c.Layers.BottomNavBand; b < 0 || b >= 1 {
		return invalid("layers.bottomNavBand", "must be within [0, 1)")
	}
	if c.Jobs.MaxFinished < 0 || c.Jobs.Workers < 0 {
		return invalid("jobs", "limits must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return invalid("server.maxBodyBytes", "must not be negative")
	}
	return nil
}

func invalid(field, msg string) error {
	return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("invalid %s: %s", field, msg)).
		WithDetails(map[string]interface{}{"field": field})
}
