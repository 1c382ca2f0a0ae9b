package affinet

import (
	"context"

	"github.com/google/uuid"

	"github.com/bindwell/affinity/internal/domain/dataset"
	"github.com/bindwell/affinity/internal/infrastructure/monitoring/logging"
	errs "github.com/bindwell/affinity/pkg/errors"
)

// EpochObserver receives per-epoch training progress.  The pipeline's
// metrics collector satisfies it; a nil observer is skipped.
type EpochObserver interface {
	ObserveEpoch(epoch int, loss float64, batches int)
}

// TrainingSession owns one model's training over one train set.  Sessions
// are single-use: construct a fresh one per (dataset, policy) run so no
// optimiser state or running statistics leak between runs.
type TrainingSession struct {
	ID string

	model    *Model
	opt      *AdamOptimizer
	provider *dataset.BatchProvider
	logger   logging.Logger
	observer EpochObserver
}

// NewTrainingSession wires a model, optimiser, and batch provider together
// under a fresh run identifier.  A nil logger is replaced with a no-op one;
// observer may be nil.
func NewTrainingSession(model *Model, opt *AdamOptimizer, provider *dataset.BatchProvider,
	logger logging.Logger, observer EpochObserver) *TrainingSession {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	id := uuid.NewString()
	return &TrainingSession{
		ID:       id,
		model:    model,
		opt:      opt,
		provider: provider,
		logger:   logger.Named("session").With(logging.String("run_id", id)),
		observer: observer,
	}
}

// Model returns the session's model, trained in place by Train.
func (s *TrainingSession) Model() *Model { return s.model }

// Train runs the given number of epochs and returns the mean training loss
// of each.  Every epoch draws a freshly shuffled pass of mini-batches; each
// batch does one forward pass, a mean-squared-error gradient, one backward
// pass, and one Adam step.  A cancelled context stops between batches.
func (s *TrainingSession) Train(ctx context.Context, epochs int) ([]float64, error) {
	if epochs < 1 {
		return nil, errs.Newf(errs.ErrCodeModelInvalidConfig, "epochs must be ≥ 1, got %d", epochs)
	}

	s.model.SetTraining(true)
	defer s.model.SetTraining(false)

	losses := make([]float64, 0, epochs)
	for epoch := 1; epoch <= epochs; epoch++ {
		batches := s.provider.Pass()
		if len(batches) == 0 {
			return nil, errs.New(errs.ErrCodeModelInvalidBatchSize,
				"training set yields no usable batches (every batch smaller than the batch-norm minimum)")
		}
		epochLoss := 0.0

		for _, b := range batches {
			if err := ctx.Err(); err != nil {
				return nil, errs.Wrap(err, errs.ErrCodeInternal, "training cancelled")
			}

			loss, err := s.trainBatch(b)
			if err != nil {
				return nil, err
			}
			epochLoss += loss
		}
		epochLoss /= float64(len(batches))
		losses = append(losses, epochLoss)

		s.logger.Info("epoch complete",
			logging.Int("epoch", epoch),
			logging.Float64("loss", epochLoss),
			logging.Int("batches", len(batches)),
		)
		if s.observer != nil {
			s.observer.ObserveEpoch(epoch, epochLoss, len(batches))
		}
	}
	return losses, nil
}

// trainBatch runs one optimisation step and returns the batch's mean squared
// error.
func (s *TrainingSession) trainBatch(b dataset.Batch) (float64, error) {
	preds, err := s.model.Forward(b.Features, b.Rows)
	if err != nil {
		return 0, err
	}

	// MSE and its gradient with respect to the predictions.
	m := float64(b.Rows)
	loss := 0.0
	dOut := make([]float64, b.Rows)
	for i, p := range preds {
		diff := p - b.Targets[i]
		loss += diff * diff
		dOut[i] = 2 * diff / m
	}
	loss /= m

	if err := s.model.Backward(dOut); err != nil {
		return 0, err
	}
	s.opt.Step(s.model)
	return loss, nil
}
