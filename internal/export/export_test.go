package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/crossmap/pkg/match"
	"github.com/agentstation/crossmap/pkg/score"
	"github.com/agentstation/crossmap/pkg/tabular"
)

func sampleResult() *match.Result {
	return &match.Result{
		Rows: []match.ResultRow{
			{
				MasterID:  "m-1",
				TargetID:  "t-1",
				Matched:   true,
				Score:     90,
				Algorithm: score.AlgorithmLevenshtein,
				Master:    map[string]any{"name": "jon smith", "amount": int64(12)},
				Target:    map[string]any{"name": "John Smith", "ref": "T1"},
			},
			{
				MasterID: "m-2",
				Master:   map[string]any{"name": "jane", "amount": nil},
				Target:   map[string]any{"name": nil, "ref": nil},
			},
		},
		Unused: []tabular.Row{
			tabular.NewRow("t-2", map[string]any{"name": "Jane Doe", "ref": "T2"}),
		},
		MasterColumns: []string{"name", "amount"},
		TargetColumns: []string{"name", "ref"},
		Stats:         match.Stats{MasterRows: 2, TargetRows: 2, Matched: 1, Unmatched: 1, UnusedTargets: 1},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Colliding target column names get prefixed.
	assert.Equal(t, []string{
		"master_id", "target_id", "matched", "score", "algorithm",
		"name", "amount", "target_name", "ref",
	}, records[0])

	assert.Equal(t, []string{"m-1", "t-1", "true", "90", "LEVENSHTEIN", "jon smith", "12", "John Smith", "T1"}, records[1])

	// Unmatched rows render empty score and null target cells.
	assert.Equal(t, []string{"m-2", "", "false", "", "", "jane", "", "", ""}, records[2])
}

func TestWriteUnusedCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUnusedCSV(&buf, sampleResult()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"target_id", "name", "ref"}, records[0])
	assert.Equal(t, []string{"t-2", "Jane Doe", "T2"}, records[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	rows := decoded["rows"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.Equal(t, "m-1", first["masterId"])
	assert.Equal(t, float64(90), first["score"])

	unused := decoded["unused"].([]any)
	require.Len(t, unused, 1)
	row := unused[0].(map[string]any)
	assert.Equal(t, "t-2", row["id"])
}
