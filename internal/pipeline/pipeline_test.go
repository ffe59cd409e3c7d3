package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/rca-engine/internal/config"
	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
	"github.com/arclight-labs/rca-engine/internal/parser"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.AWSRegion = "us-east-1"
	return cfg
}

func TestRunReturnsInsufficientDataWhenNothingToInvestigate(t *testing.T) {
	p := New(testConfig(), tools.NewRegistry(), llmprovider.NewMockProvider(), nil)

	rep, err := p.Run(context.Background(), parser.Input{FreeText: "everything seems fine today"}, Overrides{})

	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, investigation.StatusInsufficientData, rep.Status)
	assert.NotEmpty(t, rep.RunID)
}

func TestRunCompletesWithExplicitTarget(t *testing.T) {
	p := New(testConfig(), tools.NewRegistry(), llmprovider.NewMockProvider(), nil)

	rep, err := p.Run(context.Background(), parser.Input{
		FreeText: "the checkout-service lambda arn:aws:lambda:us-east-1:111122223333:function:checkout-service is failing with AccessDenied errors",
	}, Overrides{})

	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, investigation.StatusCompleted, rep.Status)
	assert.NotEmpty(t, rep.RunID)
	require.NotNil(t, rep.SeverityAssessment)
	require.NotNil(t, rep.RootCauseAnalysis)
	assert.NotEmpty(t, rep.Timeline)
}

func TestInvestigationTypeReflectsTraceIDs(t *testing.T) {
	assert.Equal(t, "resource", investigationType(&investigation.ParsedInputs{}))
	assert.Equal(t, "trace", investigationType(&investigation.ParsedInputs{TraceIDs: []string{"1-abc"}}))
}

func TestSummarizeInputPrefersFreeText(t *testing.T) {
	assert.Equal(t, "hello", summarizeInput(parser.Input{FreeText: "hello"}))
	assert.Equal(t, "structured_input", summarizeInput(parser.Input{Structured: &parser.StructuredInput{}}))
	assert.Equal(t, "legacy_input", summarizeInput(parser.Input{Legacy: &parser.LegacyInput{}}))
	assert.Equal(t, "", summarizeInput(parser.Input{}))
}

func TestBuildAffectedResourcesDerivesHealthFromConfidence(t *testing.T) {
	resources := []investigation.Resource{
		{Type: "compute", Name: "failed-fn"},
		{Type: "compute", Name: "degraded-fn"},
		{Type: "compute", Name: "healthy-fn"},
	}
	facts := []investigation.Fact{
		{ResourceKey: "compute:failed-fn", Content: "AccessDenied", Confidence: 0.9},
		{ResourceKey: "compute:degraded-fn", Content: "elevated latency", Confidence: 0.3},
	}

	affected := buildAffectedResources(resources, facts)
	require.Len(t, affected, 3)

	byName := map[string]investigation.AffectedResource{}
	for _, a := range affected {
		byName[a.ResourceName] = a
	}

	assert.Equal(t, investigation.HealthFailed, byName["failed-fn"].HealthStatus)
	assert.Equal(t, investigation.HealthDegraded, byName["degraded-fn"].HealthStatus)
	assert.Equal(t, investigation.HealthHealthy, byName["healthy-fn"].HealthStatus)
	assert.Len(t, byName["failed-fn"].DetectedIssues, 1)
}
