package progress

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/nestedset"
	"github.com/danwahyudir/lapju/core/task"
)

// RollupMode selects how parent percentages aggregate their leaves.
type RollupMode string

const (
	// ModeMean is the default: the arithmetic mean of all leaf descendants,
	// leaves without data contributing 0 and still counting in the
	// denominator.
	ModeMean RollupMode = "mean"
	// ModeWeighted averages leaves weighted by their task weight.
	ModeWeighted RollupMode = "weighted"
)

type (
	// LeafStatus is a leaf task's latest-known progress as of a date.
	// HasData distinguishes a genuine 0% entry from no entry at all.
	LeafStatus struct {
		Percentage decimal.Decimal `json:"percentage"`
		Date       time.Time       `json:"date"`
		Notes      string          `json:"notes,omitempty"`
		HasData    bool            `json:"has_data"`
	}

	// Rollup is a non-leaf task's aggregated percentage over its leaf
	// descendants. An empty container rolls up to 0 with LeafCount 0.
	Rollup struct {
		Percentage decimal.Decimal `json:"percentage"`
		LeafCount  int             `json:"leaf_count"`
	}

	// Snapshot is a project's full progress picture as of one date.
	Snapshot struct {
		Leaves  map[string]LeafStatus `json:"leaves"`  // leaf task id -> latest status
		Rollups map[string]Rollup     `json:"rollups"` // non-leaf task id -> aggregate
		Project Rollup                `json:"project"` // aggregate over every leaf in the project
	}
)

// LatestByLeaf finds, for every leaf task, the most recent entry dated at or
// before asOf. Pure function over already-loaded data so any historical date
// can be recomputed.
func LatestByLeaf(tasks []task.Task, entries []Entry, asOf time.Time) map[string]LeafStatus {
	asOf = core.DateOf(asOf)
	leaves := nestedset.Leaves(task.Nodes(tasks))

	latest := make(map[string]LeafStatus, len(leaves))
	for _, l := range leaves {
		latest[l.NodeID()] = LeafStatus{}
	}
	for _, e := range entries {
		status, ok := latest[e.TaskID]
		if !ok {
			continue // not a leaf
		}
		d := core.DateOf(e.ProgressDate)
		if d.After(asOf) {
			continue
		}
		if !status.HasData || d.After(status.Date) {
			latest[e.TaskID] = LeafStatus{
				Percentage: e.Percentage,
				Date:       d,
				Notes:      e.Notes.String,
				HasData:    true,
			}
		}
	}
	return latest
}

// ComputeSnapshot aggregates a project's progress as of a date: the latest
// status of every leaf, one Rollup per non-leaf task, and the whole-project
// Rollup over all leaves regardless of intermediate grouping.
func ComputeSnapshot(tasks []task.Task, entries []Entry, asOf time.Time, mode RollupMode) Snapshot {
	nodes := task.Nodes(tasks)
	leafStatus := LatestByLeaf(tasks, entries, asOf)

	weightByID := make(map[string]decimal.Decimal, len(tasks))
	for _, t := range tasks {
		weightByID[t.ID] = t.Weight
	}

	rollups := make(map[string]Rollup)
	var allLeaves []nestedset.Node
	for _, n := range nodes {
		if _, isLeaf := leafStatus[n.NodeID()]; isLeaf {
			allLeaves = append(allLeaves, n)
			continue
		}
		var leaves []nestedset.Node
		for _, d := range nestedset.Descendants(n, nodes) {
			if _, isLeaf := leafStatus[d.NodeID()]; isLeaf {
				leaves = append(leaves, d)
			}
		}
		rollups[n.NodeID()] = aggregate(leaves, leafStatus, weightByID, mode)
	}

	return Snapshot{
		Leaves:  leafStatus,
		Rollups: rollups,
		Project: aggregate(allLeaves, leafStatus, weightByID, mode),
	}
}

// aggregate averages the latest-known percentages of the given leaves.
// Leaves without data contribute 0 and still count in the denominator. In
// weighted mode the mean is weighted by task weight; a zero total weight
// falls back to the unweighted mean.
func aggregate(leaves []nestedset.Node, status map[string]LeafStatus, weights map[string]decimal.Decimal, mode RollupMode) Rollup {
	if len(leaves) == 0 {
		return Rollup{Percentage: decimal.Zero, LeafCount: 0}
	}

	if mode == ModeWeighted {
		totalWeight := decimal.Zero
		weightedSum := decimal.Zero
		for _, l := range leaves {
			w := weights[l.NodeID()]
			totalWeight = totalWeight.Add(w)
			weightedSum = weightedSum.Add(status[l.NodeID()].Percentage.Mul(w))
		}
		if !totalWeight.IsZero() {
			return Rollup{
				Percentage: weightedSum.Div(totalWeight).Round(2),
				LeafCount:  len(leaves),
			}
		}
	}

	sum := decimal.Zero
	for _, l := range leaves {
		sum = sum.Add(status[l.NodeID()].Percentage)
	}
	return Rollup{
		Percentage: sum.Div(decimal.NewFromInt(int64(len(leaves)))).Round(2),
		LeafCount:  len(leaves),
	}
}
