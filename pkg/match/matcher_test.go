package match_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/crossmap/pkg/match"
	"github.com/agentstation/crossmap/pkg/normalize"
	"github.com/agentstation/crossmap/pkg/score"
	"github.com/agentstation/crossmap/pkg/semantic"
	"github.com/agentstation/crossmap/pkg/tabular"
)

func newDataset(t *testing.T, name string, columns []string, rows ...map[string]any) *tabular.Dataset {
	t.Helper()
	schema := make(tabular.Schema, len(columns))
	for i, c := range columns {
		schema[i] = tabular.Column{Name: c, Type: tabular.FieldTypeString}
	}
	trows := make([]tabular.Row, len(rows))
	for i, cells := range rows {
		trows[i] = tabular.NewRow(fmt.Sprintf("%s-%d", name, i+1), cells)
	}
	ds, err := tabular.NewDataset(name, schema, trows)
	require.NoError(t, err)
	return ds
}

func exactConfig(pairs ...match.KeyPair) *match.Config {
	return &match.Config{
		KeyPairs:   pairs,
		Algorithms: []score.Algorithm{score.AlgorithmExact},
		Threshold:  match.DefaultThreshold,
		Normalize:  normalize.DefaultConfig(),
	}
}

func TestJoinExactOnly(t *testing.T) {
	master := newDataset(t, "m", []string{"name", "city"},
		map[string]any{"name": "John Smith", "city": "Leeds"},
		map[string]any{"name": "Jane Doe", "city": "York"},
		map[string]any{"name": "Nobody Here", "city": "Hull"},
	)
	target := newDataset(t, "t", []string{"name", "ref"},
		map[string]any{"name": "jane doe", "ref": "T2"},
		map[string]any{"name": "john smith!", "ref": "T1"},
	)

	m, err := match.New(exactConfig(match.KeyPair{Master: "name", Target: "name"}))
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)

	require.Len(t, res.Rows, 3)
	assert.Equal(t, 2, res.Stats.Matched)
	assert.Equal(t, 1, res.Stats.Unmatched)
	assert.Equal(t, res.Stats.MasterRows, res.Stats.Matched+res.Stats.Unmatched)

	// Punctuation differences vanish under normalization.
	assert.True(t, res.Rows[0].Matched)
	assert.Equal(t, "t-2", res.Rows[0].TargetID)
	assert.Equal(t, 100, res.Rows[0].Score)
	assert.Equal(t, score.AlgorithmExact, res.Rows[0].Algorithm)
	assert.Equal(t, "T1", res.Rows[0].Target["ref"])

	assert.True(t, res.Rows[1].Matched)
	assert.Equal(t, "t-1", res.Rows[1].TargetID)

	// A key with zero occurrences in the target column stays unmatched
	// when only exact matching is on.
	assert.False(t, res.Rows[2].Matched)
	assert.Equal(t, "", res.Rows[2].TargetID)
	assert.Nil(t, res.Rows[2].Target["ref"])

	assert.Empty(t, res.Unused)
	assert.False(t, res.FinishedAt.Before(res.StartedAt))
	assert.GreaterOrEqual(t, res.Stats.Duration, time.Duration(0))
}

func TestJoinLevenshteinFallback(t *testing.T) {
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "jon smith"},
	)
	target := newDataset(t, "t", []string{"name"},
		map[string]any{"name": "John Smith"},
		map[string]any{"name": "Jane Doe"},
	)

	cfg := &match.Config{
		KeyPairs:   []match.KeyPair{{Master: "name", Target: "name"}},
		Algorithms: []score.Algorithm{score.AlgorithmExact, score.AlgorithmLevenshtein},
		Threshold:  80,
		Normalize:  normalize.DefaultConfig(),
	}
	m, err := match.New(cfg)
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)

	// "jon smith" vs "john smith": one edit over ten runes, similarity 90.
	require.True(t, res.Rows[0].Matched)
	assert.Equal(t, "t-1", res.Rows[0].TargetID)
	assert.Equal(t, 90, res.Rows[0].Score)
	assert.Equal(t, score.AlgorithmLevenshtein, res.Rows[0].Algorithm)

	require.Len(t, res.Unused, 1)
	assert.Equal(t, "t-2", res.Unused[0].ID())
}

func TestJoinThresholdBoundary(t *testing.T) {
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "jon"},
	)
	target := newDataset(t, "t", []string{"name"},
		map[string]any{"name": "john"},
	)

	cfg := &match.Config{
		KeyPairs:   []match.KeyPair{{Master: "name", Target: "name"}},
		Algorithms: []score.Algorithm{score.AlgorithmExact, score.AlgorithmLevenshtein},
		Threshold:  80,
		Normalize:  normalize.DefaultConfig(),
	}
	m, err := match.New(cfg)
	require.NoError(t, err)

	// Similarity 75 misses an 80 threshold.
	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)
	assert.False(t, res.Rows[0].Matched)

	// At threshold 75 the same pair matches, so the comparison is >=.
	cfg.Threshold = 75
	m, err = match.New(cfg)
	require.NoError(t, err)
	res, err = m.Join(context.Background(), master, target)
	require.NoError(t, err)
	require.True(t, res.Rows[0].Matched)
	assert.Equal(t, 75, res.Rows[0].Score)
}

func TestJoinEmptyTarget(t *testing.T) {
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	)
	target := newDataset(t, "t", []string{"name"})

	m, err := match.New(exactConfig(match.KeyPair{Master: "name", Target: "name"}))
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Stats.Matched)
	assert.Equal(t, 2, res.Stats.Unmatched)
	assert.Empty(t, res.Unused)
	for _, row := range res.Rows {
		assert.False(t, row.Matched)
	}
}

func TestJoinClaimsTargetAtMostOnce(t *testing.T) {
	// Two master rows normalize to the same key present once in the
	// target: the earlier master row wins, the later one stays unmatched.
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "ACME Ltd."},
		map[string]any{"name": "acme ltd"},
	)
	target := newDataset(t, "t", []string{"name"},
		map[string]any{"name": "Acme Ltd"},
	)

	m, err := match.New(exactConfig(match.KeyPair{Master: "name", Target: "name"}))
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)

	assert.True(t, res.Rows[0].Matched)
	assert.False(t, res.Rows[1].Matched)
	assert.Equal(t, 1, res.Stats.Matched)
	assert.Empty(t, res.Unused)
}

func TestJoinClaimFallsThroughToNextSurvivor(t *testing.T) {
	// Both masters share the key and the target holds it twice: each
	// master claims its own copy in discovery order.
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "smith"},
		map[string]any{"name": "smith"},
	)
	target := newDataset(t, "t", []string{"name"},
		map[string]any{"name": "smith"},
		map[string]any{"name": "smith"},
	)

	m, err := match.New(exactConfig(match.KeyPair{Master: "name", Target: "name"}))
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)

	assert.Equal(t, "t-1", res.Rows[0].TargetID)
	assert.Equal(t, "t-2", res.Rows[1].TargetID)
	assert.Equal(t, 2, res.Stats.Matched)
	assert.Empty(t, res.Unused)
}

func TestJoinHierarchicalCascade(t *testing.T) {
	// The first key pair narrows to the two Smiths, the second pair
	// separates them by city.
	master := newDataset(t, "m", []string{"surname", "city"},
		map[string]any{"surname": "Smith", "city": "Leeds"},
	)
	target := newDataset(t, "t", []string{"surname", "city", "ref"},
		map[string]any{"surname": "smith", "city": "York", "ref": "wrong"},
		map[string]any{"surname": "smith", "city": "Leeds", "ref": "right"},
		map[string]any{"surname": "doe", "city": "Leeds", "ref": "other"},
	)

	m, err := match.New(exactConfig(
		match.KeyPair{Master: "surname", Target: "surname"},
		match.KeyPair{Master: "city", Target: "city"},
	))
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)

	require.True(t, res.Rows[0].Matched)
	assert.Equal(t, "t-2", res.Rows[0].TargetID)
	assert.Equal(t, "right", res.Rows[0].Target["ref"])
	assert.Equal(t, 100, res.Rows[0].Score)
	require.Len(t, res.Unused, 2)
}

func TestJoinColumnSelection(t *testing.T) {
	master := newDataset(t, "m", []string{"name", "secret"},
		map[string]any{"name": "x", "secret": "hide me"},
	)
	target := newDataset(t, "t", []string{"name", "ref", "noise"},
		map[string]any{"name": "x", "ref": "T1", "noise": "drop"},
	)

	cfg := exactConfig(match.KeyPair{Master: "name", Target: "name"})
	cfg.MasterColumns = []string{"name"}
	cfg.TargetColumns = []string{"ref"}

	m, err := match.New(cfg)
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)

	row := res.Rows[0]
	assert.Equal(t, map[string]any{"name": "x"}, row.Master)
	assert.Equal(t, map[string]any{"ref": "T1"}, row.Target)
}

func TestJoinMissingColumnReadsAsNull(t *testing.T) {
	// Key pairs naming a column neither dataset has still run; every
	// value normalizes to "" and two empties are exact-equal.
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "a"},
	)
	target := newDataset(t, "t", []string{"name"},
		map[string]any{"name": "b"},
	)

	m, err := match.New(exactConfig(match.KeyPair{Master: "ghost", Target: "ghost"}))
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)
	assert.True(t, res.Rows[0].Matched)
	assert.Equal(t, 100, res.Rows[0].Score)
}

func TestJoinParallelMatchesSequential(t *testing.T) {
	cols := []string{"name"}
	var masterRows, targetRows []map[string]any
	names := []string{"smith", "smyth", "jones", "johnson", "jonson", "taylor", "tailor", "brown", "braun", "wilson"}
	for i := 0; i < 60; i++ {
		masterRows = append(masterRows, map[string]any{"name": names[i%len(names)]})
		targetRows = append(targetRows, map[string]any{"name": names[(i*7)%len(names)]})
	}
	master := newDataset(t, "m", cols, masterRows...)
	target := newDataset(t, "t", cols, targetRows...)

	cfg := &match.Config{
		KeyPairs:   []match.KeyPair{{Master: "name", Target: "name"}},
		Algorithms: []score.Algorithm{score.AlgorithmExact, score.AlgorithmPhonetic, score.AlgorithmLevenshtein},
		Threshold:  80,
		Normalize:  normalize.DefaultConfig(),
	}

	seq, err := match.New(cfg)
	require.NoError(t, err)
	par, err := match.New(cfg, match.WithWorkers(8))
	require.NoError(t, err)

	want, err := seq.Join(context.Background(), master, target)
	require.NoError(t, err)
	got, err := par.Join(context.Background(), master, target)
	require.NoError(t, err)

	require.Equal(t, len(want.Rows), len(got.Rows))
	for i := range want.Rows {
		assert.Equal(t, want.Rows[i].TargetID, got.Rows[i].TargetID, "row %d", i)
		assert.Equal(t, want.Rows[i].Score, got.Rows[i].Score, "row %d", i)
	}
	assert.Equal(t, want.Stats.Matched, got.Stats.Matched)
}

func TestJoinCanceledContext(t *testing.T) {
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "a"},
	)
	target := newDataset(t, "t", []string{"name"},
		map[string]any{"name": "a"},
	)

	m, err := match.New(exactConfig(match.KeyPair{Master: "name", Target: "name"}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Join(ctx, master, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJoinProgressAndRowHooks(t *testing.T) {
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
		map[string]any{"name": "zzz"},
	)
	target := newDataset(t, "t", []string{"name"},
		map[string]any{"name": "a"},
		map[string]any{"name": "b"},
	)

	var progress [][2]int
	var matched, unmatched []string
	m, err := match.New(exactConfig(match.KeyPair{Master: "name", Target: "name"}),
		match.WithProgress(2, func(done, total int) {
			progress = append(progress, [2]int{done, total})
		}),
		match.WithOnRowMatched(func(row match.ResultRow) { matched = append(matched, row.MasterID) }),
		match.WithOnRowUnmatched(func(row match.ResultRow) { unmatched = append(unmatched, row.MasterID) }),
	)
	require.NoError(t, err)

	_, err = m.Join(context.Background(), master, target)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{2, 3}, {3, 3}}, progress)
	assert.Equal(t, []string{"m-1", "m-2"}, matched)
	assert.Equal(t, []string{"m-3"}, unmatched)
}

// scriptedSemantic suggests a fixed reference index for every query.
type scriptedSemantic struct {
	suggestions []semantic.Suggestion
}

func (s scriptedSemantic) Match(_ context.Context, _ []string, queries []string) []semantic.Suggestion {
	out := make([]semantic.Suggestion, len(queries))
	for i := range out {
		if i < len(s.suggestions) {
			out[i] = s.suggestions[i]
		} else {
			out[i] = semantic.None()
		}
	}
	return out
}

func TestJoinSemanticFallback(t *testing.T) {
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "intl business machines"},
		map[string]any{"name": "big blue"},
	)
	target := newDataset(t, "t", []string{"name"},
		map[string]any{"name": "IBM Corporation"},
	)

	cfg := &match.Config{
		KeyPairs:   []match.KeyPair{{Master: "name", Target: "name"}},
		Algorithms: []score.Algorithm{score.AlgorithmExact, score.AlgorithmSemantic},
		Threshold:  match.DefaultThreshold,
		Normalize:  normalize.DefaultConfig(),
	}

	// Both leftovers point at the only reference: the first master row
	// claims it, the second finds it taken.
	m, err := match.New(cfg, match.WithSemantic(scriptedSemantic{suggestions: []semantic.Suggestion{
		{Reference: 0, Confidence: semantic.ConfidenceHigh},
		{Reference: 0, Confidence: semantic.ConfidenceHigh},
	}}))
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)

	require.True(t, res.Rows[0].Matched)
	assert.Equal(t, score.AlgorithmSemantic, res.Rows[0].Algorithm)
	assert.Equal(t, 90, res.Rows[0].Score)
	assert.Equal(t, "t-1", res.Rows[0].TargetID)

	assert.False(t, res.Rows[1].Matched)
	assert.Empty(t, res.Unused)
	assert.Equal(t, 1, res.Stats.Matched)
}

func TestJoinSemanticSkippedForMultipleKeyPairs(t *testing.T) {
	master := newDataset(t, "m", []string{"a", "b"},
		map[string]any{"a": "x", "b": "y"},
	)
	target := newDataset(t, "t", []string{"a", "b"},
		map[string]any{"a": "q", "b": "r"},
	)

	cfg := &match.Config{
		KeyPairs: []match.KeyPair{
			{Master: "a", Target: "a"},
			{Master: "b", Target: "b"},
		},
		Algorithms: []score.Algorithm{score.AlgorithmExact, score.AlgorithmSemantic},
		Threshold:  match.DefaultThreshold,
		Normalize:  normalize.DefaultConfig(),
	}
	m, err := match.New(cfg, match.WithSemantic(scriptedSemantic{suggestions: []semantic.Suggestion{
		{Reference: 0, Confidence: semantic.ConfidenceHigh},
	}}))
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)
	assert.False(t, res.Rows[0].Matched)
}

func TestJoinSemanticLowConfidenceDiscarded(t *testing.T) {
	master := newDataset(t, "m", []string{"name"},
		map[string]any{"name": "alpha"},
	)
	target := newDataset(t, "t", []string{"name"},
		map[string]any{"name": "omega"},
	)

	cfg := &match.Config{
		KeyPairs:   []match.KeyPair{{Master: "name", Target: "name"}},
		Algorithms: []score.Algorithm{score.AlgorithmExact, score.AlgorithmSemantic},
		Threshold:  match.DefaultThreshold,
		Normalize:  normalize.DefaultConfig(),
	}
	m, err := match.New(cfg, match.WithSemantic(scriptedSemantic{suggestions: []semantic.Suggestion{
		{Reference: 0, Confidence: semantic.ConfidenceLow},
	}}))
	require.NoError(t, err)

	res, err := m.Join(context.Background(), master, target)
	require.NoError(t, err)
	assert.False(t, res.Rows[0].Matched)
	require.Len(t, res.Unused, 1)
}
