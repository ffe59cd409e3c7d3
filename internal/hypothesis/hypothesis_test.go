package hypothesis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
)

func factsFixture() []investigation.Fact {
	return []investigation.Fact{
		{Source: "lambda_config", Content: "lambda_config: timeout=3s memory=128mb", Confidence: 0.6},
		{Source: "lambda_metrics_error", Content: "get_function_metrics failed: AccessDenied", Confidence: 0.7},
	}
}

func TestGenerateUsesLLMWhenResponseValid(t *testing.T) {
	mock := llmprovider.NewMockProvider(`[{"type": "Permission Issue", "description": "role lacks permission", "confidence": 1.5, "evidence": ["AccessDenied"]}]`)

	hyps := Generate(context.Background(), mock, factsFixture())
	require.Len(t, hyps, 1)
	assert.Equal(t, "permission_issue", hyps[0].Type)
	assert.Equal(t, 1.0, hyps[0].Confidence)
}

func TestGenerateDropsHypothesisWithNoMatchingEvidence(t *testing.T) {
	mock := llmprovider.NewMockProvider(`[{"type": "code_bug", "description": "x", "confidence": 0.9, "evidence": ["nonexistent string"]}]`)

	hyps := Generate(context.Background(), mock, factsFixture())
	assert.Empty(t, hyps)
}

func TestGenerateDropsHypothesisWithEmptyEvidence(t *testing.T) {
	mock := llmprovider.NewMockProvider(`[{"type": "code_bug", "description": "x", "confidence": 0.9, "evidence": []}]`)

	hyps := Generate(context.Background(), mock, factsFixture())
	assert.Empty(t, hyps)
}

func TestGenerateSortsByConfidenceDescending(t *testing.T) {
	mock := llmprovider.NewMockProvider(`[
		{"type": "timeout", "description": "a", "confidence": 0.75, "evidence": ["timeout=3s"]},
		{"type": "permission_issue", "description": "b", "confidence": 0.90, "evidence": ["AccessDenied"]}
	]`)

	hyps := Generate(context.Background(), mock, factsFixture())
	require.Len(t, hyps, 2)
	assert.Equal(t, "permission_issue", hyps[0].Type)
	assert.Equal(t, "timeout", hyps[1].Type)
}

func TestGenerateFallsBackToHeuristicWhenLLMErrors(t *testing.T) {
	mock := llmprovider.NewMockProvider()

	hyps := Generate(context.Background(), mock, factsFixture())
	require.NotEmpty(t, hyps)
	for _, h := range hyps {
		assert.Equal(t, true, h.Metadata["heuristic"])
	}
}

func TestGenerateFallsBackWhenLLMReturnsUnparseableJSON(t *testing.T) {
	mock := llmprovider.NewMockProvider("not json at all")

	hyps := Generate(context.Background(), mock, factsFixture())
	require.NotEmpty(t, hyps)
	assert.Equal(t, true, hyps[0].Metadata["heuristic"])
}

func TestGenerateWithNilProviderUsesHeuristic(t *testing.T) {
	hyps := Generate(context.Background(), nil, factsFixture())
	require.NotEmpty(t, hyps)
}

func TestHeuristicFallbackDetectsAccessDeniedAndTimeout(t *testing.T) {
	hyps := heuristicFallback(factsFixture())

	var types []string
	for _, h := range hyps {
		types = append(types, h.Type)
	}
	assert.Contains(t, types, string(investigation.HypothesisTimeout))
	assert.Contains(t, types, string(investigation.HypothesisPermissionIssue))
}

func TestHeuristicFallbackDeduplicatesByType(t *testing.T) {
	facts := []investigation.Fact{
		{Source: "a", Content: "timeout while calling downstream"},
		{Source: "b", Content: "operation timed out again"},
	}
	hyps := heuristicFallback(facts)

	count := 0
	for _, h := range hyps {
		if h.Type == string(investigation.HypothesisTimeout) {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestNormalizeType(t *testing.T) {
	assert.Equal(t, "permission_issue", normalizeType("Permission Issue"))
	assert.Equal(t, "code_bug", normalizeType("code_bug"))
	assert.Equal(t, "network_issue", normalizeType("  Network-Issue  "))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.5, clamp01(0.5))
}
