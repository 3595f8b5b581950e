package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNormalizeLeafWeights(t *testing.T) {
	tests := []struct {
		name        string
		leaves      []WeightedLeaf
		wantErr     error
		wantSum     string
		wantChanged map[string]string
	}{
		{
			name:    "no leaves",
			wantErr: ErrNoLeafTasks,
		},
		{
			name:    "zero sum",
			leaves:  []WeightedLeaf{{ID: "a", Weight: dec("0")}, {ID: "b", Weight: dec("0")}},
			wantErr: ErrZeroWeightSum,
		},
		{
			name:        "already normalized",
			leaves:      []WeightedLeaf{{ID: "a", Weight: dec("40")}, {ID: "b", Weight: dec("60")}},
			wantSum:     "100",
			wantChanged: map[string]string{},
		},
		{
			name:        "simple scale up",
			leaves:      []WeightedLeaf{{ID: "a", Weight: dec("20")}, {ID: "b", Weight: dec("30")}},
			wantSum:     "100",
			wantChanged: map[string]string{"a": "40", "b": "60"},
		},
		{
			name:        "scale down",
			leaves:      []WeightedLeaf{{ID: "a", Weight: dec("120")}, {ID: "b", Weight: dec("80")}},
			wantSum:     "100",
			wantChanged: map[string]string{"a": "60", "b": "40"},
		},
		{
			name: "rounding remainder goes to heaviest",
			// 1/3 each scales to 33.33; remainder 0.01 lands on the heaviest
			leaves:      []WeightedLeaf{{ID: "a", Weight: dec("1")}, {ID: "b", Weight: dec("1")}, {ID: "c", Weight: dec("1")}},
			wantSum:     "100",
			wantChanged: map[string]string{"a": "33.34", "b": "33.33", "c": "33.33"},
		},
		{
			name: "remainder tie broken by lowest id",
			leaves: []WeightedLeaf{
				{ID: "z", Weight: dec("10")},
				{ID: "m", Weight: dec("10")},
				{ID: "a", Weight: dec("10")},
			},
			wantSum: "100",
			// 33.33 each leaves 0.01; "a" is the lowest id among equals
			wantChanged: map[string]string{"z": "33.33", "m": "33.33", "a": "33.34"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NormalizeLeafWeights(tt.leaves)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, res.Success, "final sum = %s", res.FinalSum)
			assert.Equal(t, tt.wantSum, res.FinalSum.String())
			assert.Len(t, res.Changed, len(tt.wantChanged))
			assert.Equal(t, len(tt.wantChanged), res.UpdatedCount)
			for id, want := range tt.wantChanged {
				got, ok := res.Changed[id]
				require.True(t, ok, "expected %s to change", id)
				assert.Equal(t, want, got.String(), "leaf %s", id)
			}
		})
	}
}

func TestNormalizeLeafWeights_convergesForArbitrarySums(t *testing.T) {
	weights := []string{"0.07", "13.5", "42", "7.77", "21.9", "3.33", "8.88"}
	leaves := make([]WeightedLeaf, 0, len(weights))
	for i, w := range weights {
		leaves = append(leaves, WeightedLeaf{ID: string(rune('a' + i)), Weight: dec(w)})
	}

	res, err := NormalizeLeafWeights(leaves)
	require.NoError(t, err)

	// the sum of all resulting weights must land on 100.00 (+-0.01)
	final := decimal.Zero
	byID := make(map[string]decimal.Decimal, len(leaves))
	for _, l := range leaves {
		byID[l.ID] = l.Weight
	}
	for id, nw := range res.Changed {
		byID[id] = nw
	}
	for _, w := range byID {
		final = final.Add(w)
	}
	assert.True(t, final.Sub(hundred).Abs().LessThanOrEqual(dec("0.01")), "sum = %s", final)
	assert.Equal(t, res.FinalSum.String(), final.String())
}
