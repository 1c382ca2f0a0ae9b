package config

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultSeed            = 42
	DefaultHoldoutProteins = 42

	DefaultBatchNormMomentum = 0.9
	DefaultBatchNormEpsilon  = 1e-5

	DefaultEpochs       = 20
	DefaultBatchSize    = 256
	DefaultLearningRate = 0.001
	DefaultBeta1        = 0.9
	DefaultBeta2        = 0.999
	DefaultEpsilon      = 1e-8

	DefaultPositiveThreshold = 12.1

	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultMetricsNamespace = "affinity"
)

// DefaultHiddenSizes returns the standard hidden-layer widths.  A function
// rather than a package variable so callers cannot mutate the shared slice.
func DefaultHiddenSizes() []int {
	return []int{512, 256, 128}
}

// ApplyDefaults fills every zero-value field in cfg with the pipeline
// default.  Fields already set by the caller are left unchanged so explicit
// configuration always wins.  Call after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Split ─────────────────────────────────────────────────────────────────
	if cfg.Split.Seed == 0 {
		cfg.Split.Seed = DefaultSeed
	}
	if cfg.Split.HoldoutProteins == 0 {
		cfg.Split.HoldoutProteins = DefaultHoldoutProteins
	}

	// ── Model ─────────────────────────────────────────────────────────────────
	if len(cfg.Model.HiddenSizes) == 0 {
		cfg.Model.HiddenSizes = DefaultHiddenSizes()
	}
	if cfg.Model.BatchNormMomentum == 0 {
		cfg.Model.BatchNormMomentum = DefaultBatchNormMomentum
	}
	if cfg.Model.BatchNormEpsilon == 0 {
		cfg.Model.BatchNormEpsilon = DefaultBatchNormEpsilon
	}

	// ── Training ──────────────────────────────────────────────────────────────
	if cfg.Training.Epochs == 0 {
		cfg.Training.Epochs = DefaultEpochs
	}
	if cfg.Training.BatchSize == 0 {
		cfg.Training.BatchSize = DefaultBatchSize
	}
	if cfg.Training.LearningRate == 0 {
		cfg.Training.LearningRate = DefaultLearningRate
	}
	if cfg.Training.Beta1 == 0 {
		cfg.Training.Beta1 = DefaultBeta1
	}
	if cfg.Training.Beta2 == 0 {
		cfg.Training.Beta2 = DefaultBeta2
	}
	if cfg.Training.Epsilon == 0 {
		cfg.Training.Epsilon = DefaultEpsilon
	}

	// ── Eval ──────────────────────────────────────────────────────────────────
	if cfg.Eval.PositiveThreshold == 0 {
		cfg.Eval.PositiveThreshold = DefaultPositiveThreshold
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
