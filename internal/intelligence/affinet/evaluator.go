package affinet

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/bindwell/affinity/internal/domain/dataset"
	"github.com/bindwell/affinity/internal/infrastructure/monitoring/logging"
	errs "github.com/bindwell/affinity/pkg/errors"
	affinitytypes "github.com/bindwell/affinity/pkg/types/affinity"
)

// Evaluator computes the five held-out statistics of a trained model.
// Degenerate inputs (constant series, single-class binarisation, no
// comparable pair) fail with a coded error rather than yielding NaN.
type Evaluator struct {
	// PositiveThreshold binarises true affinity for the precision-recall
	// curve: values strictly above it are positives.
	PositiveThreshold float64

	logger logging.Logger
}

// NewEvaluator constructs an Evaluator.  A nil logger is replaced with a
// no-op one.
func NewEvaluator(positiveThreshold float64, logger logging.Logger) *Evaluator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Evaluator{
		PositiveThreshold: positiveThreshold,
		logger:            logger.Named("evaluator"),
	}
}

// Evaluate runs the model over the whole test set in inference mode and
// returns all five statistics.  The model is not mutated.
func (e *Evaluator) Evaluate(model *Model, test *dataset.EncodedDataset) (*affinitytypes.Report, error) {
	if test == nil || test.Len() == 0 {
		return nil, errs.New(errs.ErrCodeEvalEmptyInput, "cannot evaluate on an empty test set")
	}

	model.SetTraining(false)
	b := dataset.FullBatch(test)
	preds, err := model.Forward(b.Features, b.Rows)
	if err != nil {
		return nil, err
	}
	return e.Report(preds, b.Targets)
}

// Report computes the five statistics from prediction and truth series of
// equal length.
func (e *Evaluator) Report(preds, truths []float64) (*affinitytypes.Report, error) {
	if len(preds) == 0 || len(preds) != len(truths) {
		return nil, errs.Newf(errs.ErrCodeEvalEmptyInput,
			"prediction and truth series must be equal-length and non-empty, got %d and %d",
			len(preds), len(truths))
	}

	mse := MeanSquaredError(preds, truths)

	r2, err := RSquared(preds, truths)
	if err != nil {
		return nil, err
	}
	ci, err := ConcordanceIndex(preds, truths)
	if err != nil {
		return nil, err
	}
	pearson, err := PearsonCorrelation(preds, truths)
	if err != nil {
		return nil, err
	}
	aupr, err := AUPR(preds, truths, e.PositiveThreshold)
	if err != nil {
		return nil, err
	}

	report := &affinitytypes.Report{
		MSE:     mse,
		R2:      r2,
		CI:      ci,
		Pearson: pearson,
		AUPR:    aupr,
	}
	e.logger.Info("evaluation complete",
		logging.Int("samples", len(preds)),
		logging.Float64("mse", mse),
		logging.Float64("ci", ci),
	)
	return report, nil
}

// MeanSquaredError returns the mean of the squared residuals.
func MeanSquaredError(preds, truths []float64) float64 {
	sum := 0.0
	for i := range preds {
		d := preds[i] - truths[i]
		sum += d * d
	}
	return sum / float64(len(preds))
}

// RSquared returns the coefficient of determination, 1 - SSres/SStot.  A
// constant truth series has zero total variance and is degenerate.
func RSquared(preds, truths []float64) (float64, error) {
	mean := stat.Mean(truths, nil)

	ssRes, ssTot := 0.0, 0.0
	for i := range truths {
		r := truths[i] - preds[i]
		ssRes += r * r
		d := truths[i] - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0, errs.New(errs.ErrCodeEvalDegenerate,
			"true affinities are constant; R² is undefined")
	}
	return 1 - ssRes/ssTot, nil
}

// ConcordanceIndex scores how often prediction order agrees with truth order
// over all pairs with differing true affinities: an agreeing pair counts 1,
// a predicted tie counts 0.5.  Fails when no pair has differing truths.
func ConcordanceIndex(preds, truths []float64) (float64, error) {
	pairs, credit := 0.0, 0.0
	for i := 0; i < len(truths); i++ {
		for j := i + 1; j < len(truths); j++ {
			if truths[i] == truths[j] {
				continue
			}
			pairs++

			// Orient the pair so hi has the larger truth.
			hi, lo := preds[i], preds[j]
			if truths[j] > truths[i] {
				hi, lo = lo, hi
			}
			switch {
			case hi > lo:
				credit++
			case hi == lo:
				credit += 0.5
			}
		}
	}
	if pairs == 0 {
		return 0, errs.New(errs.ErrCodeEvalNoComparablePair,
			"no sample pair with differing true affinities")
	}
	return credit / pairs, nil
}

// PearsonCorrelation returns the linear correlation between the two series.
// Either series being constant makes it undefined.
func PearsonCorrelation(preds, truths []float64) (float64, error) {
	if isConstant(preds) || isConstant(truths) {
		return 0, errs.New(errs.ErrCodeEvalDegenerate,
			"a constant series has no defined correlation")
	}
	return stat.Correlation(preds, truths, nil), nil
}

func isConstant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

// AUPR binarises truth at the threshold (strictly above is positive), sweeps
// the decision boundary over the continuous predictions, and integrates
// precision over recall with the trapezoid rule.  Samples with equal
// predictions enter the curve together.  Fails when binarisation yields a
// single class.
func AUPR(preds, truths []float64, threshold float64) (float64, error) {
	n := len(truths)
	positives := 0
	for _, v := range truths {
		if v > threshold {
			positives++
		}
	}
	if positives == 0 || positives == n {
		return 0, errs.Newf(errs.ErrCodeEvalSingleClass,
			"binarisation at %g yields %d positives out of %d samples", threshold, positives, n)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return preds[order[a]] > preds[order[b]] })

	// Walk thresholds from the highest prediction down, collapsing ties so
	// equal scores cannot be split across the decision boundary.
	area := 0.0
	tp, fp := 0, 0
	prevRecall, prevPrecision := 0.0, 1.0
	for i := 0; i < n; {
		j := i
		for j < n && preds[order[j]] == preds[order[i]] {
			if truths[order[j]] > threshold {
				tp++
			} else {
				fp++
			}
			j++
		}
		recall := float64(tp) / float64(positives)
		precision := float64(tp) / float64(tp+fp)

		area += (recall - prevRecall) * (precision + prevPrecision) / 2
		prevRecall, prevPrecision = recall, precision
		i = j
	}
	return area, nil
}
