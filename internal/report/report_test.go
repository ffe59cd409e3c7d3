package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/rca-engine/internal/investigation"
)

func TestAssembleSetsRunIDAndDuration(t *testing.T) {
	a := New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Second)

	report := a.Assemble(Params{
		Input:     &investigation.ParsedInputs{Region: "us-east-1"},
		StartedAt: start,
		CompletedAt: end,
		Status:    investigation.StatusCompleted,
	})

	require.NotNil(t, report)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 30.0, report.DurationSeconds)
	assert.Equal(t, investigation.StatusCompleted, report.Status)
}

func TestAssembleZeroesConfidenceWhenNoPrimaryRootCause(t *testing.T) {
	a := New()
	report := a.Assemble(Params{
		StartedAt:   time.Now(),
		CompletedAt: time.Now(),
		Status:      investigation.StatusInsufficientData,
		RootCauseAnalysis: &investigation.RootCauseAnalysis{
			PrimaryRootCause: nil,
			ConfidenceScore:  0.42, // should be zeroed since there is no primary cause
		},
	})

	require.NotNil(t, report.RootCauseAnalysis)
	assert.Equal(t, 0.0, report.RootCauseAnalysis.ConfidenceScore)
}

func TestAssembleTimelineIncludesStartCompleteAndOnePerTrace(t *testing.T) {
	a := New()
	report := a.Assemble(Params{
		StartedAt:   time.Now(),
		CompletedAt: time.Now(),
		Status:      investigation.StatusCompleted,
		TraceIDs:    []string{"1-abc", "1-def"},
	})

	require.Len(t, report.Timeline, 4) // start + 2 trace + complete
	assert.Equal(t, "investigation_start", report.Timeline[0].EventType)
	assert.Equal(t, "trace_analysis", report.Timeline[1].EventType)
	assert.Equal(t, "trace_analysis", report.Timeline[2].EventType)
	assert.Equal(t, "investigation_complete", report.Timeline[len(report.Timeline)-1].EventType)
}

func TestAssembleSummaryReflectsCounts(t *testing.T) {
	a := New()
	report := a.Assemble(Params{
		StartedAt:   time.Now(),
		CompletedAt: time.Now(),
		Status:      investigation.StatusCompleted,
		Facts: []investigation.Fact{
			{Content: "a", Confidence: 0.9},
			{Content: "b", Confidence: 0.4},
		},
		Hypotheses: []investigation.Hypothesis{{Type: "timeout"}},
		Advice:     []investigation.Advice{{Title: "x"}},
	})

	assert.Equal(t, 2, report.Summary["facts"])
	assert.Equal(t, 1, report.Summary["error_count"])
	assert.Equal(t, 1, report.Summary["hypotheses"])
	assert.Equal(t, 1, report.Summary["advice"])
}

func TestAssembleHashesInputConsistently(t *testing.T) {
	in := &investigation.ParsedInputs{Region: "us-east-1"}
	h1 := hashInput(in)
	h2 := hashInput(in)
	assert.Equal(t, h1, h2)
	assert.NotEmpty(t, h1)
}

func TestHashInputNilReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", hashInput(nil))
}

func TestRunIDIsMonotonicWithinProcess(t *testing.T) {
	startedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first := runID(startedAt, "deadbeef")
	second := runID(startedAt, "deadbeef")
	assert.NotEqual(t, first, second)
	assert.Less(t, first, second)
}

func TestRunIDIncludesInputHashSuffix(t *testing.T) {
	startedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id := runID(startedAt, "deadbeefcafef00d")
	assert.Contains(t, id, "deadbeef")
}
