package llmprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFencedBlock(t *testing.T) {
	raw := "Here is my analysis:\n```json\n{\"confidence\": 0.9}\n```\nLet me know if you need more."
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"confidence": 0.9}`, got)
}

func TestExtractJSONFencedBlockNoLanguageTag(t *testing.T) {
	raw := "```\n[{\"a\": 1}]\n```"
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `[{"a": 1}]`, got)
}

func TestExtractJSONBraceBalancedFallback(t *testing.T) {
	raw := `The result is {"hypotheses": [{"a": "b, c"}], "count": 1} and that's final.`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"hypotheses": [{"a": "b, c"}], "count": 1}`, got)
}

func TestExtractJSONBraceBalancedIgnoresBracesInStrings(t *testing.T) {
	raw := `{"summary": "uses a { in prose }", "score": 2}`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestExtractJSONArrayTopLevel(t *testing.T) {
	raw := `prefix [1, 2, {"x": [3]}] suffix`
	got, err := ExtractJSON(raw)
	require.NoError(t, err)
	assert.Equal(t, `[1, 2, {"x": [3]}]`, got)
}

func TestExtractJSONNoJSONReturnsError(t *testing.T) {
	_, err := ExtractJSON("no json content here at all")
	assert.Error(t, err)
}

func TestExtractJSONUnterminatedFallsThroughToError(t *testing.T) {
	_, err := ExtractJSON(`{"unterminated": true`)
	assert.Error(t, err)
}
