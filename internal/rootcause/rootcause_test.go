package rootcause

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
)

func hypothesesFixture() []investigation.Hypothesis {
	return []investigation.Hypothesis{
		{Type: "permission_issue", Description: "role lacks permission", Confidence: 0.90, Evidence: []string{"AccessDenied"}},
		{Type: "timeout", Description: "call timed out", Confidence: 0.80, Evidence: []string{"timed out"}},
		{Type: "code_bug", Description: "nil pointer deref", Confidence: 0.85, Evidence: []string{"panic"}},
	}
}

func TestAnalyzeEmptyHypothesesContract(t *testing.T) {
	result := Analyze(context.Background(), nil, nil, nil)
	require.NotNil(t, result)
	assert.Nil(t, result.PrimaryRootCause)
	assert.Equal(t, 0.0, result.ConfidenceScore)
	assert.Contains(t, result.AnalysisSummary, "No hypotheses generated")
}

func TestAnalyzeUsesLLMWhenResponseValid(t *testing.T) {
	mock := llmprovider.NewMockProvider(`{"primary_root_cause_index": 0, "contributing_factor_indices": [2], "analysis_summary": "IAM role is missing a permission"}`)

	result := Analyze(context.Background(), mock, hypothesesFixture(), nil)
	require.NotNil(t, result.PrimaryRootCause)
	assert.Equal(t, "permission_issue", result.PrimaryRootCause.Type)
	require.Len(t, result.ContributingFactors, 1)
	assert.Equal(t, "code_bug", result.ContributingFactors[0].Type)
	assert.Equal(t, 0.90, result.ConfidenceScore)
}

func TestAnalyzeFallsBackWhenLLMIndexOutOfRange(t *testing.T) {
	mock := llmprovider.NewMockProvider(`{"primary_root_cause_index": 99, "contributing_factor_indices": [], "analysis_summary": "bad"}`)

	result := Analyze(context.Background(), mock, hypothesesFixture(), nil)
	require.NotNil(t, result.PrimaryRootCause)
	// Falls back to classify(): highest-confidence true_cause wins.
	assert.Equal(t, "permission_issue", result.PrimaryRootCause.Type)
}

func TestAnalyzeFallsBackWhenLLMReturnsUnparseableJSON(t *testing.T) {
	mock := llmprovider.NewMockProvider("not json")

	result := Analyze(context.Background(), mock, hypothesesFixture(), nil)
	require.NotNil(t, result.PrimaryRootCause)
	assert.Equal(t, "permission_issue", result.PrimaryRootCause.Type)
}

func TestAnalyzeFallsBackWhenLLMErrors(t *testing.T) {
	mock := llmprovider.NewMockProvider()

	result := Analyze(context.Background(), mock, hypothesesFixture(), nil)
	require.NotNil(t, result.PrimaryRootCause)
	assert.Equal(t, "permission_issue", result.PrimaryRootCause.Type)
}

func TestClassifyPrefersTrueCauseOverSymptom(t *testing.T) {
	hyps := []investigation.Hypothesis{
		{Type: "timeout", Confidence: 0.95},
		{Type: "configuration_error", Confidence: 0.70},
	}
	result := classify(hyps)
	require.NotNil(t, result.PrimaryRootCause)
	assert.Equal(t, "configuration_error", result.PrimaryRootCause.Type)
}

func TestClassifyFallsBackToSymptomWithDiscountedConfidence(t *testing.T) {
	hyps := []investigation.Hypothesis{
		{Type: "timeout", Description: "call timed out", Confidence: 0.80},
	}
	result := classify(hyps)
	require.NotNil(t, result.PrimaryRootCause)
	assert.Equal(t, "timeout", result.PrimaryRootCause.Type)
	assert.InDelta(t, 0.56, result.ConfidenceScore, 0.001)
	assert.Contains(t, result.PrimaryRootCause.Description, "symptom - root cause unclear")
}

func TestClassifyFallsBackToOtherWhenNoRecognizedType(t *testing.T) {
	hyps := []investigation.Hypothesis{
		{Type: "unusual_category", Confidence: 0.75},
	}
	result := classify(hyps)
	require.NotNil(t, result.PrimaryRootCause)
	assert.Equal(t, "unusual_category", result.PrimaryRootCause.Type)
	assert.Nil(t, result.ContributingFactors)
}

func TestClassifyLimitsContributingFactorsToThree(t *testing.T) {
	hyps := []investigation.Hypothesis{
		{Type: "permission_issue", Confidence: 0.95},
		{Type: "configuration_error", Confidence: 0.90},
		{Type: "code_bug", Confidence: 0.85},
		{Type: "network_issue", Confidence: 0.80},
		{Type: "error_rate", Confidence: 0.75},
	}
	result := classify(hyps)
	require.NotNil(t, result.PrimaryRootCause)
	assert.Equal(t, "permission_issue", result.PrimaryRootCause.Type)
	assert.LessOrEqual(t, len(result.ContributingFactors), 3)
}

func TestInRange(t *testing.T) {
	assert.True(t, inRange(0, 3))
	assert.True(t, inRange(2, 3))
	assert.False(t, inRange(3, 3))
	assert.False(t, inRange(-1, 3))
}
