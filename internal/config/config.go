// Package config defines the configuration structures for the affinity
// pipeline.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"

	"github.com/bindwell/affinity/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// DatasetConfig names one affinity dataset file on disk.
type DatasetConfig struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// DataConfig lists the datasets a pipeline run processes.
type DataConfig struct {
	Datasets []DatasetConfig `mapstructure:"datasets"`
}

// SplitConfig holds train/test partitioning parameters shared by both split
// policies.
type SplitConfig struct {
	// Seed feeds the shuffles in both policies so runs are reproducible.
	Seed int64 `mapstructure:"seed"`

	// HoldoutProteins is the number of whole proteins reserved for the test
	// side under the new-proteins policy.
	HoldoutProteins int `mapstructure:"holdout_proteins"`
}

// ModelConfig holds regressor architecture parameters.
type ModelConfig struct {
	// HiddenSizes are the widths of the hidden layers, in order.
	HiddenSizes []int `mapstructure:"hidden_sizes"`

	// BatchNormMomentum weights the running statistics update after each
	// training batch.
	BatchNormMomentum float64 `mapstructure:"batch_norm_momentum"`

	// BatchNormEpsilon stabilises normalisation against zero variance.
	BatchNormEpsilon float64 `mapstructure:"batch_norm_epsilon"`
}

// TrainingConfig holds optimisation parameters.
type TrainingConfig struct {
	Epochs       int     `mapstructure:"epochs"`
	BatchSize    int     `mapstructure:"batch_size"`
	LearningRate float64 `mapstructure:"learning_rate"`
	Beta1        float64 `mapstructure:"beta1"`
	Beta2        float64 `mapstructure:"beta2"`
	Epsilon      float64 `mapstructure:"epsilon"`
}

// EvalConfig holds evaluation parameters.
type EvalConfig struct {
	// PositiveThreshold binarises true affinity for the precision-recall
	// curve: samples strictly above it count as positives.
	PositiveThreshold float64 `mapstructure:"positive_threshold"`
}

// MetricsConfig holds Prometheus exposition parameters.  When ListenAddr is
// set the run command serves the exposition endpoint on it for the duration
// of the run; when empty, metrics are collected but not served.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Namespace  string `mapstructure:"namespace"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration for a pipeline run.
type Config struct {
	Data     DataConfig        `mapstructure:"data"`
	Split    SplitConfig       `mapstructure:"split"`
	Model    ModelConfig       `mapstructure:"model"`
	Training TrainingConfig    `mapstructure:"training"`
	Eval     EvalConfig        `mapstructure:"eval"`
	Log      logging.LogConfig `mapstructure:"log"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start a run.
func (c *Config) Validate() error {
	if len(c.Data.Datasets) == 0 {
		return fmt.Errorf("config: data.datasets must list at least one dataset")
	}
	for i, d := range c.Data.Datasets {
		if d.Name == "" {
			return fmt.Errorf("config: data.datasets[%d].name is required", i)
		}
		if d.Path == "" {
			return fmt.Errorf("config: data.datasets[%d].path is required", i)
		}
	}

	if c.Split.HoldoutProteins < 1 {
		return fmt.Errorf("config: split.holdout_proteins must be ≥ 1, got %d", c.Split.HoldoutProteins)
	}

	if len(c.Model.HiddenSizes) == 0 {
		return fmt.Errorf("config: model.hidden_sizes must list at least one layer width")
	}
	for i, w := range c.Model.HiddenSizes {
		if w < 1 {
			return fmt.Errorf("config: model.hidden_sizes[%d] must be ≥ 1, got %d", i, w)
		}
	}
	if c.Model.BatchNormMomentum <= 0 || c.Model.BatchNormMomentum >= 1 {
		return fmt.Errorf("config: model.batch_norm_momentum %g is out of range (0, 1)", c.Model.BatchNormMomentum)
	}
	if c.Model.BatchNormEpsilon <= 0 {
		return fmt.Errorf("config: model.batch_norm_epsilon must be > 0, got %g", c.Model.BatchNormEpsilon)
	}

	if c.Training.Epochs < 1 {
		return fmt.Errorf("config: training.epochs must be ≥ 1, got %d", c.Training.Epochs)
	}
	if c.Training.BatchSize < 2 {
		return fmt.Errorf("config: training.batch_size must be ≥ 2, got %d", c.Training.BatchSize)
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("config: training.learning_rate must be > 0, got %g", c.Training.LearningRate)
	}
	if c.Training.Beta1 <= 0 || c.Training.Beta1 >= 1 {
		return fmt.Errorf("config: training.beta1 %g is out of range (0, 1)", c.Training.Beta1)
	}
	if c.Training.Beta2 <= 0 || c.Training.Beta2 >= 1 {
		return fmt.Errorf("config: training.beta2 %g is out of range (0, 1)", c.Training.Beta2)
	}
	if c.Training.Epsilon <= 0 {
		return fmt.Errorf("config: training.epsilon must be > 0, got %g", c.Training.Epsilon)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	return nil
}
