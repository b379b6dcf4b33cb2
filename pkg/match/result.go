package match

import (
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/crossmap/pkg/score"
	"github.com/agentstation/crossmap/pkg/tabular"
)

// ResultRow is the join outcome for one master row. Master and Target hold
// the configured output columns; for unmatched rows every target column is
// present with a nil value.
type ResultRow struct {
	MasterID  string          `json:"masterId"`
	TargetID  string          `json:"targetId,omitempty"`
	Matched   bool            `json:"matched"`
	Score     int             `json:"score"`
	Algorithm score.Algorithm `json:"algorithm,omitempty"`
	Master    map[string]any  `json:"master"`
	Target    map[string]any  `json:"target"`
}

// Stats summarizes one join execution.
type Stats struct {
	MasterRows    int           `json:"masterRows"`
	TargetRows    int           `json:"targetRows"`
	Matched       int           `json:"matched"`
	Unmatched     int           `json:"unmatched"`
	UnusedTargets int           `json:"unusedTargets"`
	Duration      time.Duration `json:"duration"`
}

// Result holds everything one join run produced. Every run computes a
// fresh Result; nothing is cached across runs.
type Result struct {
	// Rows has exactly one entry per master row, in master-dataset order.
	Rows []ResultRow `json:"rows"`

	// Unused holds the target rows never claimed by any master row, in
	// target-dataset order.
	Unused []tabular.Row `json:"unused"`

	// MasterColumns and TargetColumns are the resolved output column
	// selections, in order, for consumers that need a stable layout.
	MasterColumns []string `json:"masterColumns"`
	TargetColumns []string `json:"targetColumns"`

	Stats Stats `json:"stats"`

	StartedAt  utc.Time `json:"startedAt"`
	FinishedAt utc.Time `json:"finishedAt"`
}

func newResult(masterRows, targetRows int) *Result {
	return &Result{
		Rows: make([]ResultRow, 0, masterRows),
		Stats: Stats{
			MasterRows: masterRows,
			TargetRows: targetRows,
		},
		StartedAt: utc.Now(),
	}
}

// finalize stamps the finish time and derives the remaining counters.
func (r *Result) finalize(unused []tabular.Row) {
	r.Unused = unused
	r.Stats.UnusedTargets = len(unused)
	r.Stats.Unmatched = r.Stats.MasterRows - r.Stats.Matched
	r.FinishedAt = utc.Now()
	r.Stats.Duration = r.FinishedAt.Sub(r.StartedAt)
}
