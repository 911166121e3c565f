// Package config provides configuration for synthetic exemplar generation.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/asgen/internal/classify"
	"github.com/cwbudde/asgen/internal/opt"
	"gopkg.in/yaml.v3"
)

// Polarity selections accepted by the generate command.
const (
	PolarityBoth     = "both"
	PolarityPositive = "positive"
	PolarityNegative = "negative"
)

// Config holds the generation configuration.
type Config struct {
	// Input
	Class string `yaml:"class"`
	Data  string `yaml:"data"`

	// Output root; datastorage/, gendata/ and runs/ are created below it
	OutDir string `yaml:"out_dir"`

	// Search
	GenerateSize int     `yaml:"generate_size"`
	Budget       int     `yaml:"budget"`
	InitNum      int     `yaml:"init_num"`
	Lower        float64 `yaml:"lower"`
	Upper        float64 `yaml:"upper"`
	Seed         int64   `yaml:"seed"`

	Polarity   string `yaml:"polarity"`
	AppendMode string `yaml:"append_mode"`

	Optimizer  OptimizerConfig  `yaml:"optimizer"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// OptimizerConfig selects and tunes the black-box optimizer.
type OptimizerConfig struct {
	Algorithm string `yaml:"algorithm"`
	AutoSet   bool   `yaml:"auto_set"`
	PopSize   int    `yaml:"pop_size"`
	MaxIters  int    `yaml:"max_iters"`
}

// ClassifierConfig tunes the reference logistic classifier.
type ClassifierConfig struct {
	Epochs       int     `yaml:"epochs"`
	LearningRate float64 `yaml:"learning_rate"`
	L2           float64 `yaml:"l2"`
}

// Default returns the built-in configuration. The output directory falls
// back to ASGEN_OUT_DIR, then the working directory. Classifier settings are
// those of classify.NewLogistic.
func Default() *Config {
	clf := classify.NewLogistic()
	return &Config{
		OutDir:       getEnv("ASGEN_OUT_DIR", "."),
		GenerateSize: 10,
		Budget:       1000,
		InitNum:      10,
		Lower:        -1,
		Upper:        1,
		Seed:         42,
		Polarity:     PolarityBoth,
		AppendMode:   "line",
		Optimizer: OptimizerConfig{
			Algorithm: opt.AlgorithmMayfly,
			AutoSet:   true,
			PopSize:   20,
			MaxIters:  25,
		},
		Classifier: ClassifierConfig{
			Epochs:       clf.Epochs,
			LearningRate: clf.LearningRate,
			L2:           clf.L2,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch {
	case c.Class == "":
		return &ValidationError{Field: "class", Reason: "cannot be empty"}
	case c.Data == "":
		return &ValidationError{Field: "data", Reason: "cannot be empty"}
	case c.OutDir == "":
		return &ValidationError{Field: "out_dir", Reason: "cannot be empty"}
	case c.GenerateSize < 0:
		return &ValidationError{Field: "generate_size", Reason: "cannot be negative"}
	case c.Budget <= 0:
		return &ValidationError{Field: "budget", Reason: "must be positive"}
	case c.InitNum <= 0:
		return &ValidationError{Field: "init_num", Reason: "must be positive"}
	case !(c.Lower < c.Upper):
		return &ValidationError{Field: "lower", Reason: fmt.Sprintf("must be below upper (%g >= %g)", c.Lower, c.Upper)}
	}

	switch c.Polarity {
	case PolarityBoth, PolarityPositive, PolarityNegative:
	default:
		return &ValidationError{Field: "polarity", Reason: fmt.Sprintf("unknown value %q", c.Polarity)}
	}
	switch c.AppendMode {
	case "line", "cumulative":
	default:
		return &ValidationError{Field: "append_mode", Reason: fmt.Sprintf("unknown value %q", c.AppendMode)}
	}

	if c.Optimizer.Algorithm == "" {
		return &ValidationError{Field: "optimizer.algorithm", Reason: "cannot be empty"}
	}
	if !c.Optimizer.AutoSet {
		if c.Optimizer.PopSize < 20 {
			return &ValidationError{Field: "optimizer.pop_size", Reason: "must be at least 20"}
		}
		if c.Optimizer.MaxIters <= 0 {
			return &ValidationError{Field: "optimizer.max_iters", Reason: "must be positive"}
		}
	}

	if c.Classifier.Epochs <= 0 {
		return &ValidationError{Field: "classifier.epochs", Reason: "must be positive"}
	}
	if c.Classifier.LearningRate <= 0 {
		return &ValidationError{Field: "classifier.learning_rate", Reason: "must be positive"}
	}
	if c.Classifier.L2 < 0 {
		return &ValidationError{Field: "classifier.l2", Reason: "cannot be negative"}
	}

	return nil
}

// NewClassifier builds the classifier described by the classifier section.
func (c *Config) NewClassifier() *classify.Logistic {
	return &classify.Logistic{
		Epochs:       c.Classifier.Epochs,
		LearningRate: c.Classifier.LearningRate,
		L2:           c.Classifier.L2,
	}
}

// Polarities expands the polarity selection in generation order.
func (c *Config) Polarities() []string {
	switch c.Polarity {
	case PolarityPositive:
		return []string{PolarityPositive}
	case PolarityNegative:
		return []string{PolarityNegative}
	default:
		return []string{PolarityPositive, PolarityNegative}
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config field %s: %s", e.Field, e.Reason)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
