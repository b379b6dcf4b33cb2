package match

import (
	"github.com/agentstation/crossmap/pkg/normalize"
	"github.com/agentstation/crossmap/pkg/tabular"
)

// Index maps, per target column, each normalized value to the ordered list
// of target-row positions holding it. Rows sharing a value stay grouped in
// dataset order, and the empty normalized value is indexed like any other.
//
// Build the referenced columns once before matching; lookups after that are
// read-only and safe for concurrent use.
type Index struct {
	target  *tabular.Dataset
	cfg     normalize.Config
	columns map[string]map[string][]int
}

// NewIndex returns an empty index over the target dataset.
func NewIndex(target *tabular.Dataset, cfg normalize.Config) *Index {
	return &Index{
		target:  target,
		cfg:     cfg,
		columns: make(map[string]map[string][]int),
	}
}

// Build indexes the given columns. Columns already built are skipped, so
// only the columns a join actually references ever pay the indexing cost.
func (ix *Index) Build(columns []string) {
	for _, col := range columns {
		if _, ok := ix.columns[col]; ok {
			continue
		}
		buckets := make(map[string][]int)
		for pos := 0; pos < ix.target.Len(); pos++ {
			key := normalize.Value(ix.target.Row(pos).Value(col), ix.cfg)
			buckets[key] = append(buckets[key], pos)
		}
		ix.columns[col] = buckets
	}
}

// Lookup returns the bucket of target positions for a normalized value, or
// nil when the value (or the column) has no entries.
func (ix *Index) Lookup(column, normalized string) []int {
	buckets, ok := ix.columns[column]
	if !ok {
		return nil
	}
	return buckets[normalized]
}
