package severity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
)

func TestScoreCountsErrorAndWarningKeywordsOncePerFact(t *testing.T) {
	facts := []investigation.Fact{
		{Content: "operation failed with an error and a timeout"},
		{Content: "latency is slightly degraded"},
	}
	assert.Equal(t, 3+1, score(facts, nil))
}

func TestScoreCountsResourceHealth(t *testing.T) {
	resources := []investigation.AffectedResource{
		{HealthStatus: investigation.HealthFailed},
		{HealthStatus: investigation.HealthDegraded},
		{HealthStatus: investigation.HealthHealthy},
	}
	// 4 (failed) + 2 (degraded) + 2 (count>2 bucket... len==3 -> >2 -> +2)
	assert.Equal(t, 4+2+2, score(nil, resources))
}

func TestScoreToSeverityMapping(t *testing.T) {
	sev, conf := scoreToSeverity(15)
	assert.Equal(t, investigation.SeverityCritical, sev)
	assert.Equal(t, 0.80, conf)

	sev, conf = scoreToSeverity(10)
	assert.Equal(t, investigation.SeverityHigh, sev)
	assert.Equal(t, 0.75, conf)

	sev, conf = scoreToSeverity(5)
	assert.Equal(t, investigation.SeverityMedium, sev)
	assert.Equal(t, 0.70, conf)

	sev, conf = scoreToSeverity(0)
	assert.Equal(t, investigation.SeverityLow, sev)
	assert.Equal(t, 0.65, conf)
}

func TestImpactScope(t *testing.T) {
	assert.Equal(t, investigation.ImpactScopeUnknown, impactScope(nil, nil))
	assert.Equal(t, investigation.ImpactScopeSingleResource, impactScope(nil, make([]investigation.AffectedResource, 1)))
	assert.Equal(t, investigation.ImpactScopeSingleResource, impactScope(nil, make([]investigation.AffectedResource, 2)))
	assert.Equal(t, investigation.ImpactScopeService, impactScope(nil, make([]investigation.AffectedResource, 3)))
	assert.Equal(t, investigation.ImpactScopeSystemWide, impactScope(nil, make([]investigation.AffectedResource, 6)))
}

func TestImpactScopeSystemWideRequiresKeywordInMidRange(t *testing.T) {
	resources := make([]investigation.AffectedResource, 4)

	assert.Equal(t, investigation.ImpactScopeService, impactScope(nil, resources))

	keywordFacts := []investigation.Fact{{Content: "the shared network layer is unreachable"}}
	assert.Equal(t, investigation.ImpactScopeSystemWide, impactScope(keywordFacts, resources))
}

func TestUserImpactPromotionLadder(t *testing.T) {
	assert.Equal(t, investigation.UserImpactNone, userImpact(0, nil))
	assert.Equal(t, investigation.UserImpactMinimal, userImpact(5, nil))
	assert.Equal(t, investigation.UserImpactModerate, userImpact(10, nil))
	assert.Equal(t, investigation.UserImpactSevere, userImpact(15, nil))

	resources := []investigation.AffectedResource{{HealthStatus: investigation.HealthFailed}}
	assert.Equal(t, investigation.UserImpactModerate, userImpact(0, resources))

	resources = []investigation.AffectedResource{
		{HealthStatus: investigation.HealthFailed},
		{HealthStatus: investigation.HealthFailed},
	}
	assert.Equal(t, investigation.UserImpactSevere, userImpact(0, resources))
}

func TestAssessWithNilProviderReturnsHeuristic(t *testing.T) {
	facts := []investigation.Fact{{Content: "operation failed"}}
	result := Assess(context.Background(), nil, facts, nil)
	require.NotNil(t, result)
	assert.Equal(t, investigation.SeverityLow, result.Severity)
}

func TestAssessUsesLLMWhenResponseValid(t *testing.T) {
	mock := llmprovider.NewMockProvider(`{"severity": "critical", "confidence": 0.95, "reasoning": "widespread outage"}`)
	facts := []investigation.Fact{{Content: "operation failed"}}
	result := Assess(context.Background(), mock, facts, nil)
	assert.Equal(t, investigation.SeverityCritical, result.Severity)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, "widespread outage", result.Reasoning)
}

func TestAssessFallsBackOnInvalidSeverityValue(t *testing.T) {
	mock := llmprovider.NewMockProvider(`{"severity": "apocalyptic", "confidence": 0.95, "reasoning": "x"}`)
	facts := []investigation.Fact{{Content: "operation failed"}}
	result := Assess(context.Background(), mock, facts, nil)
	assert.Equal(t, investigation.SeverityLow, result.Severity)
}

func TestAssessFallsBackWhenLLMErrors(t *testing.T) {
	mock := llmprovider.NewMockProvider()
	result := Assess(context.Background(), mock, nil, nil)
	assert.Equal(t, investigation.SeverityLow, result.Severity)
}

func TestAssessFallsBackWhenLLMReturnsUnparseableJSON(t *testing.T) {
	mock := llmprovider.NewMockProvider("not json")
	result := Assess(context.Background(), mock, nil, nil)
	assert.Equal(t, investigation.SeverityLow, result.Severity)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-1))
	assert.Equal(t, 1.0, clamp01(2))
	assert.Equal(t, 0.5, clamp01(0.5))
}
