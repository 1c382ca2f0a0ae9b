// Package affinity defines the shared public types of the binding-affinity
// pipeline: split policies, evaluation reports, and run summaries.  Domain
// and application packages depend on these types; nothing here carries
// behaviour beyond validation and formatting.
package affinity

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// SplitPolicy
// ─────────────────────────────────────────────────────────────────────────────

// SplitPolicy selects how a dataset is partitioned into train and test sets.
type SplitPolicy string

const (
	// PolicySeenProteins splits within each protein group: every protein
	// with enough samples contributes rows to both sides.  It measures
	// generalisation to unseen drug–protein pairs only.
	PolicySeenProteins SplitPolicy = "seen_proteins"

	// PolicyNewProteins holds out whole proteins: no protein identifier
	// appears on both sides.  It measures generalisation to proteins never
	// seen during training.
	PolicyNewProteins SplitPolicy = "new_proteins"
)

// IsValid checks if the split policy is one of the supported values.
func (p SplitPolicy) IsValid() bool {
	switch p {
	case PolicySeenProteins, PolicyNewProteins:
		return true
	default:
		return false
	}
}

// String returns the string representation of the split policy.
func (p SplitPolicy) String() string {
	return string(p)
}

// DisplayName returns the human-readable case name used in reports.
func (p SplitPolicy) DisplayName() string {
	switch p {
	case PolicySeenProteins:
		return "Seen Proteins"
	case PolicyNewProteins:
		return "New Proteins"
	default:
		return "Unknown"
	}
}

// ParseSplitPolicy parses a string into a SplitPolicy.
func ParseSplitPolicy(s string) (SplitPolicy, error) {
	p := SplitPolicy(s)
	if p.IsValid() {
		return p, nil
	}
	return "", fmt.Errorf("unsupported split policy: %q", s)
}

// AllSplitPolicies returns the two supported policies in evaluation order.
func AllSplitPolicies() []SplitPolicy {
	return []SplitPolicy{PolicySeenProteins, PolicyNewProteins}
}

// ─────────────────────────────────────────────────────────────────────────────
// Evaluation report
// ─────────────────────────────────────────────────────────────────────────────

// Report carries the five evaluation statistics computed over a held-out set.
// All values are finite; degenerate inputs fail evaluation instead of
// producing NaNs here.
type Report struct {
	// MSE is the mean squared error between predicted and true affinities.
	MSE float64 `json:"mse"`

	// R2 is the coefficient of determination.
	R2 float64 `json:"r2"`

	// CI is the concordance index over comparable sample pairs; predicted
	// ties score half credit.
	CI float64 `json:"ci"`

	// Pearson is the linear correlation between predictions and truths.
	Pearson float64 `json:"pearson"`

	// AUPR is the area under the precision-recall curve after binarising
	// true affinity at the positive threshold.
	AUPR float64 `json:"aupr"`
}

func (r *Report) String() string {
	return fmt.Sprintf("Report{mse=%.4f, r2=%.4f, ci=%.4f, pearson=%.4f, aupr=%.4f}",
		r.MSE, r.R2, r.CI, r.Pearson, r.AUPR)
}

// ─────────────────────────────────────────────────────────────────────────────
// Run summary
// ─────────────────────────────────────────────────────────────────────────────

// RunSummary describes one completed (dataset, policy) training run.
type RunSummary struct {
	RunID       string        `json:"run_id"`
	Dataset     string        `json:"dataset"`
	Policy      SplitPolicy   `json:"policy"`
	TrainSize   int           `json:"train_size"`
	TestSize    int           `json:"test_size"`
	Epochs      int           `json:"epochs"`
	EpochLosses []float64     `json:"epoch_losses"`
	Report      *Report       `json:"report"`
	Duration    time.Duration `json:"duration"`
}

// FinalLoss returns the training loss of the last epoch, or 0 when no epoch
// has been recorded.
func (s *RunSummary) FinalLoss() float64 {
	if len(s.EpochLosses) == 0 {
		return 0
	}
	return s.EpochLosses[len(s.EpochLosses)-1]
}
