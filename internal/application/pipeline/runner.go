// Package pipeline orchestrates full benchmark runs: for every configured
// dataset and each split policy it loads, encodes, splits, trains a fresh
// regressor, and evaluates it on the held-out side.
package pipeline

import (
	"context"
	"time"

	"github.com/bindwell/affinity/internal/config"
	"github.com/bindwell/affinity/internal/domain/dataset"
	"github.com/bindwell/affinity/internal/domain/encoding"
	"github.com/bindwell/affinity/internal/infrastructure/monitoring/logging"
	"github.com/bindwell/affinity/internal/infrastructure/monitoring/prometheus"
	"github.com/bindwell/affinity/internal/intelligence/affinet"
	affinitytypes "github.com/bindwell/affinity/pkg/types/affinity"
)

// Runner executes the (dataset x policy) grid described by its config.
type Runner struct {
	cfg     *config.Config
	logger  logging.Logger
	metrics *prometheus.PipelineMetrics
	loader  *dataset.Loader
}

// NewRunner wires a Runner.  A nil logger is replaced with a no-op one;
// metrics may be nil to disable recording.
func NewRunner(cfg *config.Config, logger logging.Logger, metrics *prometheus.PipelineMetrics) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{
		cfg:     cfg,
		logger:  logger.Named("pipeline"),
		metrics: metrics,
		loader:  dataset.NewLoader(logger),
	}
}

// Run executes every (dataset, policy) combination and returns one summary
// per completed run.  The first failure aborts the grid.
func (r *Runner) Run(ctx context.Context) ([]*affinitytypes.RunSummary, error) {
	var summaries []*affinitytypes.RunSummary
	for _, d := range r.cfg.Data.Datasets {
		raw, err := r.loader.Load(ctx, d.Path)
		if err != nil {
			return nil, err
		}

		encoder, err := encoding.NewEncoder(raw, r.logger)
		if err != nil {
			return nil, err
		}
		encoded, err := encoder.Encode(d.Name, raw)
		if err != nil {
			return nil, err
		}

		for _, policy := range affinitytypes.AllSplitPolicies() {
			summary, err := r.runOnce(ctx, encoded, policy)
			if err != nil {
				return nil, err
			}
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

// runOnce trains and evaluates one fresh model on one split of one dataset.
func (r *Runner) runOnce(ctx context.Context, encoded *dataset.EncodedDataset,
	policy affinitytypes.SplitPolicy) (*affinitytypes.RunSummary, error) {
	started := time.Now()
	summary, err := r.trainAndEvaluate(ctx, encoded, policy)
	elapsed := time.Since(started)
	r.metrics.ObserveRun(encoded.Name, policy.String(), err, elapsed)
	if err != nil {
		r.logger.Error("run failed",
			logging.String("dataset", encoded.Name),
			logging.String("policy", policy.String()),
			logging.Err(err),
		)
		return nil, err
	}

	summary.Duration = elapsed
	r.logger.Info("run complete",
		logging.String("dataset", encoded.Name),
		logging.String("policy", policy.DisplayName()),
		logging.String("run_id", summary.RunID),
		logging.Float64("final_loss", summary.FinalLoss()),
		logging.Float64("mse", summary.Report.MSE),
		logging.Float64("r2", summary.Report.R2),
		logging.Float64("ci", summary.Report.CI),
		logging.Float64("pearson", summary.Report.Pearson),
		logging.Float64("aupr", summary.Report.AUPR),
		logging.Duration("elapsed", elapsed),
	)
	return summary, nil
}

func (r *Runner) trainAndEvaluate(ctx context.Context, encoded *dataset.EncodedDataset,
	policy affinitytypes.SplitPolicy) (*affinitytypes.RunSummary, error) {
	splitter := dataset.NewSplitter(r.cfg.Split.Seed, r.cfg.Split.HoldoutProteins, r.logger)
	train, test, err := splitter.Split(encoded, policy)
	if err != nil {
		return nil, err
	}

	model, err := affinet.NewModel(affinet.Config{
		InputDim:          encoded.FeatureDim(),
		HiddenSizes:       r.cfg.Model.HiddenSizes,
		BatchNormMomentum: r.cfg.Model.BatchNormMomentum,
		BatchNormEpsilon:  r.cfg.Model.BatchNormEpsilon,
		Seed:              r.cfg.Split.Seed,
	})
	if err != nil {
		return nil, err
	}

	provider, err := dataset.NewBatchProvider(train, r.cfg.Training.BatchSize, r.cfg.Split.Seed, true)
	if err != nil {
		return nil, err
	}

	opt := affinet.NewAdamOptimizer(affinet.AdamConfig{
		LearningRate: r.cfg.Training.LearningRate,
		Beta1:        r.cfg.Training.Beta1,
		Beta2:        r.cfg.Training.Beta2,
		Epsilon:      r.cfg.Training.Epsilon,
	})

	session := affinet.NewTrainingSession(model, opt, provider, r.logger,
		&epochRecorder{metrics: r.metrics, dataset: encoded.Name, policy: policy.String()})
	losses, err := session.Train(ctx, r.cfg.Training.Epochs)
	if err != nil {
		return nil, err
	}

	evaluator := affinet.NewEvaluator(r.cfg.Eval.PositiveThreshold, r.logger)
	report, err := evaluator.Evaluate(model, test)
	if err != nil {
		return nil, err
	}
	r.recordEvaluation(encoded.Name, policy.String(), report)

	return &affinitytypes.RunSummary{
		RunID:       session.ID,
		Dataset:     encoded.Name,
		Policy:      policy,
		TrainSize:   train.Len(),
		TestSize:    test.Len(),
		Epochs:      r.cfg.Training.Epochs,
		EpochLosses: losses,
		Report:      report,
	}, nil
}

func (r *Runner) recordEvaluation(ds, policy string, report *affinitytypes.Report) {
	r.metrics.ObserveEvaluation(ds, policy, "mse", report.MSE)
	r.metrics.ObserveEvaluation(ds, policy, "r2", report.R2)
	r.metrics.ObserveEvaluation(ds, policy, "ci", report.CI)
	r.metrics.ObserveEvaluation(ds, policy, "pearson", report.Pearson)
	r.metrics.ObserveEvaluation(ds, policy, "aupr", report.AUPR)
}

// epochRecorder forwards per-epoch progress to the pipeline metrics under
// fixed dataset and policy labels.
type epochRecorder struct {
	metrics *prometheus.PipelineMetrics
	dataset string
	policy  string
}

func (e *epochRecorder) ObserveEpoch(_ int, loss float64, batches int) {
	e.metrics.ObserveEpoch(e.dataset, e.policy, loss, batches)
}
