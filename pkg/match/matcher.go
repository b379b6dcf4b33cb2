// Package match implements the hierarchical join engine: a per-master-row
// cascade over configured key pairs, narrowing target candidates step by
// step with an index shortcut for the first pair and scorer scans after
// that. Target rows are claimed at most once, resolved in master order.
package match

import (
	"context"
	"sync"

	"github.com/agentstation/crossmap/pkg/errors"
	"github.com/agentstation/crossmap/pkg/logging"
	"github.com/agentstation/crossmap/pkg/normalize"
	"github.com/agentstation/crossmap/pkg/score"
	"github.com/agentstation/crossmap/pkg/semantic"
	"github.com/agentstation/crossmap/pkg/tabular"
)

// Matcher executes joins described by one validated Config. A Matcher is
// stateless across runs and safe to reuse.
type Matcher struct {
	cfg  *Config
	opts *options
}

// New validates the config, applies options, and returns a ready Matcher.
func New(cfg *Config, opts ...Option) (*Matcher, error) {
	if cfg == nil {
		return nil, &errors.ConfigError{Component: "config", Message: "join config is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Matcher{cfg: cfg, opts: o}, nil
}

// Join matches every master row against the target dataset and returns the
// full result set. The context is honored between rows; a canceled join
// returns an error and no partial result.
func (m *Matcher) Join(ctx context.Context, master, target *tabular.Dataset) (*Result, error) {
	if master == nil || target == nil {
		return nil, errors.NewValidationError("dataset", nil, "master and target datasets are required")
	}

	log := logging.Ctx(ctx)
	log.Info().
		Str("master", master.Name()).
		Int("master_rows", master.Len()).
		Str("target", target.Name()).
		Int("target_rows", target.Len()).
		Int("workers", m.opts.workers).
		Msg("join started")

	res := newResult(master.Len(), target.Len())

	index := NewIndex(target, m.cfg.Normalize)
	index.Build(m.cfg.rightColumns())
	casc := newCascader(m.cfg, index, target)

	outcomes := make([]rowOutcome, master.Len())
	if err := m.evaluateAll(ctx, casc, master, outcomes); err != nil {
		return nil, errors.NewJoinError(master.Name(), target.Name(), nil, err)
	}

	masterCols := outputColumns(m.cfg.MasterColumns, master.Schema())
	targetCols := outputColumns(m.cfg.TargetColumns, target.Schema())
	res.MasterColumns = masterCols
	res.TargetColumns = targetCols

	// Claims resolve sequentially in master order, so the outcome is the
	// same for any worker count.
	claimed := make([]bool, target.Len())
	for i := 0; i < master.Len(); i++ {
		out := &outcomes[i]
		winner := -1
		for _, pos := range out.survivors {
			if !claimed[pos] {
				winner = pos
				break
			}
		}

		mr := master.Row(i)
		row := ResultRow{
			MasterID: mr.ID(),
			Master:   projectRow(mr, masterCols),
		}
		if winner >= 0 {
			claimed[winner] = true
			tr := target.Row(winner)
			row.TargetID = tr.ID()
			row.Matched = true
			row.Score = out.score()
			row.Algorithm = out.algorithms[winner]
			row.Target = projectRow(tr, targetCols)
			res.Stats.Matched++
		} else {
			row.Target = nullColumns(targetCols)
		}
		res.Rows = append(res.Rows, row)

		if m.opts.onProgress != nil && ((i+1)%m.opts.progressEvery == 0 || i+1 == master.Len()) {
			m.opts.onProgress(i+1, master.Len())
		}
	}

	m.semanticPass(ctx, master, target, claimed, targetCols, res)

	if m.opts.onMatched != nil || m.opts.onUnmatched != nil {
		for _, row := range res.Rows {
			switch {
			case row.Matched && m.opts.onMatched != nil:
				m.opts.onMatched(row)
			case !row.Matched && m.opts.onUnmatched != nil:
				m.opts.onUnmatched(row)
			}
		}
	}

	var unused []tabular.Row
	for pos, c := range claimed {
		if !c {
			unused = append(unused, target.Row(pos))
		}
	}
	res.finalize(unused)

	log.Info().
		Int("matched", res.Stats.Matched).
		Int("unmatched", res.Stats.Unmatched).
		Int("unused_targets", res.Stats.UnusedTargets).
		Dur("duration", res.Stats.Duration).
		Msg("join completed")
	return res, nil
}

// evaluateAll runs every master row's cascade, fanning out across the
// configured worker count. Workers share only read-only state and each
// writes its own outcome slot.
func (m *Matcher) evaluateAll(ctx context.Context, casc *cascader, master *tabular.Dataset, outcomes []rowOutcome) error {
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < m.opts.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = casc.evaluate(master.Row(i))
			}
		}()
	}

	var err error
feed:
	for i := 0; i < master.Len(); i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return err
}

// semanticPass consults the external collaborator for rows still
// unmatched. It applies only with a single key pair; references are the
// unclaimed target values and each one can be claimed by one master row,
// in master order. Low-confidence suggestions are discarded.
func (m *Matcher) semanticPass(ctx context.Context, master, target *tabular.Dataset, claimed []bool, targetCols []string, res *Result) {
	if m.opts.semantic == nil || !m.cfg.enabled(score.AlgorithmSemantic) || len(m.cfg.KeyPairs) != 1 {
		return
	}

	var unmatchedIdx []int
	for i, row := range res.Rows {
		if !row.Matched {
			unmatchedIdx = append(unmatchedIdx, i)
		}
	}
	var refPos []int
	for pos, c := range claimed {
		if !c {
			refPos = append(refPos, pos)
		}
	}
	if len(unmatchedIdx) == 0 || len(refPos) == 0 {
		return
	}

	kp := m.cfg.KeyPairs[0]
	refs := make([]string, len(refPos))
	for j, pos := range refPos {
		refs[j] = normalize.Value(target.Row(pos).Value(kp.Target), m.cfg.Normalize)
	}
	queries := make([]string, len(unmatchedIdx))
	for j, i := range unmatchedIdx {
		queries[j] = normalize.Value(master.Row(i).Value(kp.Master), m.cfg.Normalize)
	}

	log := logging.Ctx(ctx)
	log.Debug().Int("queries", len(queries)).Int("references", len(refs)).Msg("semantic fallback started")

	suggestions := m.opts.semantic.Match(ctx, refs, queries)
	if len(suggestions) != len(queries) {
		log.Warn().Int("got", len(suggestions)).Int("want", len(queries)).Msg("semantic fallback returned wrong suggestion count, ignoring")
		return
	}

	adopted := 0
	for j, sug := range suggestions {
		if sug.Reference < 0 || sug.Reference >= len(refPos) {
			continue
		}
		var s int
		switch sug.Confidence {
		case semantic.ConfidenceHigh:
			s = 90
		case semantic.ConfidenceMedium:
			s = 75
		default:
			continue
		}
		pos := refPos[sug.Reference]
		if claimed[pos] {
			continue
		}
		claimed[pos] = true

		i := unmatchedIdx[j]
		tr := target.Row(pos)
		res.Rows[i].TargetID = tr.ID()
		res.Rows[i].Matched = true
		res.Rows[i].Score = s
		res.Rows[i].Algorithm = score.AlgorithmSemantic
		res.Rows[i].Target = projectRow(tr, targetCols)
		res.Stats.Matched++
		adopted++
	}
	log.Debug().Int("adopted", adopted).Msg("semantic fallback finished")
}

// outputColumns resolves a column selection, defaulting to the full schema.
func outputColumns(selected []string, schema tabular.Schema) []string {
	if len(selected) > 0 {
		return selected
	}
	return schema.Names()
}

// projectRow copies the selected columns out of a row. Columns the row
// does not carry read as nil.
func projectRow(row tabular.Row, cols []string) map[string]any {
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		out[c] = row.Value(c)
	}
	return out
}

// nullColumns builds the all-null target projection for unmatched rows.
func nullColumns(cols []string) map[string]any {
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		out[c] = nil
	}
	return out
}
