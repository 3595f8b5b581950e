package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoLeafTasks is reported when normalization is requested on a tree
	// without any leaf tasks.
	ErrNoLeafTasks = errors.New("no leaf tasks to normalize")
	// ErrZeroWeightSum is reported when the current weight sum is 0; scaling
	// is undefined in that case.
	ErrZeroWeightSum = errors.New("weight sum is zero, nothing to scale")
)

var hundred = decimal.NewFromInt(100)

// WeightedLeaf is a leaf task's weight as seen by the normalizer; both
// template and project task trees feed into it.
type WeightedLeaf struct {
	ID     string
	Weight decimal.Decimal
}

// WeightNormalization reports the outcome of a normalization pass.
// Success is best-effort: compounding rounding can leave the final sum off
// 100.00 even after the remainder adjustment, and that is surfaced here
// rather than raised.
type WeightNormalization struct {
	Changed      map[string]decimal.Decimal // leaf id -> new weight, changed weights only
	UpdatedCount int
	FinalSum     decimal.Decimal
	Success      bool
}

// NormalizeLeafWeights rescales leaf weights so they sum to 100.00.
//
// Each weight is scaled by 100/currentSum and rounded half-away-from-zero to
// 2 decimals; the remaining rounding difference is absorbed entirely by the
// post-scaling heaviest leaf (ties broken by lowest id).
func NormalizeLeafWeights(leaves []WeightedLeaf) (WeightNormalization, error) {
	if len(leaves) == 0 {
		return WeightNormalization{}, ErrNoLeafTasks
	}

	sum := decimal.Zero
	for _, l := range leaves {
		sum = sum.Add(l.Weight)
	}
	if sum.IsZero() {
		return WeightNormalization{}, ErrZeroWeightSum
	}

	scale := hundred.Div(sum)

	changed := make(map[string]decimal.Decimal)
	newWeights := make([]decimal.Decimal, len(leaves))
	newSum := decimal.Zero
	for i, l := range leaves {
		nw := l.Weight.Mul(scale).Round(2)
		newWeights[i] = nw
		newSum = newSum.Add(nw)
		if !nw.Equal(l.Weight) {
			changed[l.ID] = nw
		}
	}

	if diff := hundred.Sub(newSum).Round(2); !diff.IsZero() {
		hi := 0
		for i := 1; i < len(leaves); i++ {
			switch {
			case newWeights[i].GreaterThan(newWeights[hi]):
				hi = i
			case newWeights[i].Equal(newWeights[hi]) && leaves[i].ID < leaves[hi].ID:
				hi = i
			}
		}
		adjusted := newWeights[hi].Add(diff).Round(2)
		newWeights[hi] = adjusted
		if adjusted.Equal(leaves[hi].Weight) {
			delete(changed, leaves[hi].ID)
		} else {
			changed[leaves[hi].ID] = adjusted
		}
	}

	final := decimal.Zero
	for _, nw := range newWeights {
		final = final.Add(nw)
	}

	return WeightNormalization{
		Changed:      changed,
		UpdatedCount: len(changed),
		FinalSum:     final,
		Success:      final.Equal(hundred),
	}, nil
}
