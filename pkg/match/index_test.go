package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/crossmap/pkg/match"
	"github.com/agentstation/crossmap/pkg/normalize"
)

func TestIndexBuckets(t *testing.T) {
	target := newDataset(t, "t", []string{"name", "city"},
		map[string]any{"name": "Smith", "city": "Leeds"},
		map[string]any{"name": "smith!", "city": "York"},
		map[string]any{"name": nil, "city": "Hull"},
		map[string]any{"name": "Doe", "city": "Leeds"},
	)

	ix := match.NewIndex(target, normalize.DefaultConfig())
	ix.Build([]string{"name"})

	// Collisions stay grouped in dataset order.
	assert.Equal(t, []int{0, 1}, ix.Lookup("name", "smith"))
	assert.Equal(t, []int{3}, ix.Lookup("name", "doe"))

	// Null values index under the empty key.
	assert.Equal(t, []int{2}, ix.Lookup("name", ""))

	assert.Nil(t, ix.Lookup("name", "absent"))

	// Columns never built have no entries.
	assert.Nil(t, ix.Lookup("city", "leeds"))

	// Rebuilding an already-built column is a no-op.
	ix.Build([]string{"name", "city"})
	require.Equal(t, []int{0, 3}, ix.Lookup("city", "leeds"))
}
