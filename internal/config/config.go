package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// DefaultFile is read when present in the working directory
const DefaultFile = "evaltool.yaml"

// EnvPrefix starts every environment override, e.g. EVAL__PROJECTION__ZONE=33
const EnvPrefix = "EVAL__"

// Config represents the complete evaluation configuration
type Config struct {
	Projection ProjectionConfig `koanf:"projection"`
	Similarity SimilarityConfig `koanf:"similarity"`
	Matching   MatchingConfig   `koanf:"matching"`
	Logging    LoggingConfig    `koanf:"logging"`
	Plot       PlotConfig       `koanf:"plot"`
}

// ProjectionConfig selects the UTM zone routes are projected into
type ProjectionConfig struct {
	Zone  int  `koanf:"zone"`
	South bool `koanf:"south"`
}

// SimilarityConfig holds Hausdorff comparison settings
type SimilarityConfig struct {
	ResamplePoints int `koanf:"resample_points"`
}

// MatchingConfig holds benchmark lookup settings
type MatchingConfig struct {
	BucketSize float64 `koanf:"bucket_size"`
	FirstID    int     `koanf:"first_id"`
	LastID     int     `koanf:"last_id"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// PlotConfig holds chart settings
type PlotConfig struct {
	WidthInches  float64 `koanf:"width_inches"`
	HeightInches float64 `koanf:"height_inches"`
	MaxID        int     `koanf:"max_id"`
}

// defaults match the settings the thesis results were produced with
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"projection.zone":            32,
		"projection.south":           false,
		"similarity.resample_points": 20,
		"matching.bucket_size":       50.0,
		"matching.first_id":          1,
		"matching.last_id":           10,
		"logging.level":              "info",
		"logging.format":             "console",
		"plot.width_inches":          8.0,
		"plot.height_inches":         4.0,
		"plot.max_id":                10,
	}
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	cfg, err := load("")
	if err != nil {
		panic(fmt.Sprintf("invalid default configuration: %v", err))
	}
	return cfg
}

// Load merges defaults, the YAML file at path and EVAL__ environment
// variables, in that order. An empty path skips the file; DefaultFile may be
// absent, any other path must exist.
func Load(path string) (*Config, error) {
	return load(path, env.Provider(EnvPrefix, ".", envKey))
}

func load(path string, providers ...koanf.Provider) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && path == DefaultFile:
			// optional
		default:
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	for _, p := range providers {
		if err := k.Load(p, nil); err != nil {
			return nil, fmt.Errorf("failed to load environment: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps EVAL__MATCHING__BUCKET_SIZE to matching.bucket_size
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var err error

	if c.Projection.Zone < 1 || c.Projection.Zone > 60 {
		err = multierr.Append(err, fmt.Errorf("projection.zone must be within 1..60, got %d", c.Projection.Zone))
	}
	if c.Similarity.ResamplePoints < 2 {
		err = multierr.Append(err, fmt.Errorf("similarity.resample_points must be at least 2, got %d", c.Similarity.ResamplePoints))
	}
	if c.Matching.BucketSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("matching.bucket_size must be positive, got %v", c.Matching.BucketSize))
	}
	if c.Matching.FirstID > c.Matching.LastID {
		err = multierr.Append(err, fmt.Errorf("matching.first_id %d is after matching.last_id %d", c.Matching.FirstID, c.Matching.LastID))
	}
	if _, parseErr := zapcore.ParseLevel(c.Logging.Level); parseErr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", parseErr))
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		err = multierr.Append(err, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	if c.Plot.WidthInches <= 0 || c.Plot.HeightInches <= 0 {
		err = multierr.Append(err, fmt.Errorf("plot size must be positive, got %vx%v", c.Plot.WidthInches, c.Plot.HeightInches))
	}
	if c.Plot.MaxID < 1 {
		err = multierr.Append(err, fmt.Errorf("plot.max_id must be at least 1, got %d", c.Plot.MaxID))
	}

	return err
}
