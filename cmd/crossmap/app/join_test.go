package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/crossmap/pkg/match"
	"github.com/agentstation/crossmap/pkg/score"
)

func TestParseKeyPairs(t *testing.T) {
	pairs, err := parseKeyPairs([]string{"surname=last_name", "city"})
	require.NoError(t, err)
	assert.Equal(t, []match.KeyPair{
		{Master: "surname", Target: "last_name"},
		{Master: "city", Target: "city"},
	}, pairs)

	_, err = parseKeyPairs(nil)
	require.Error(t, err)
}

func TestParseAlgorithms(t *testing.T) {
	algorithms, err := parseAlgorithms([]string{"exact", " Levenshtein ", "SEMANTIC"})
	require.NoError(t, err)
	assert.Equal(t, []score.Algorithm{
		score.AlgorithmExact,
		score.AlgorithmLevenshtein,
		score.AlgorithmSemantic,
	}, algorithms)

	_, err = parseAlgorithms([]string{"metaphone"})
	require.Error(t, err)
}

func TestJoinConfigFromFlags(t *testing.T) {
	flags := &joinFlags{
		keys:       []string{"name=company"},
		algorithms: []string{"exact", "phonetic"},
		threshold:  90,
		keepCase:   true,
	}

	cfg, err := flags.joinConfig()
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.Threshold)
	assert.False(t, cfg.Normalize.Lowercase)
	assert.True(t, cfg.Normalize.StripSpecial)
	assert.False(t, cfg.Normalize.StripDigits)
	require.Len(t, cfg.KeyPairs, 1)
}

func TestJoinConfigRejectsBadThreshold(t *testing.T) {
	flags := &joinFlags{
		keys:       []string{"a=b"},
		algorithms: []string{"exact"},
		threshold:  250,
	}
	_, err := flags.joinConfig()
	require.Error(t, err)
}
