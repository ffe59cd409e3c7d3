// Package report implements the report assembler (C10): the outputs of
// every earlier phase are stitched into one InvestigationReport, with a
// run ID, a chronological timeline, and a status reflecting how far the
// investigation got.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/arclight-labs/rca-engine/internal/investigation"
)

// runSeq breaks ties between two investigations whose startedAt lands on
// the same nanosecond, keeping runID strictly increasing within a process.
var runSeq uint64

// Assembler builds the final InvestigationReport from the intermediate
// results of each pipeline phase.
type Assembler struct{}

func New() *Assembler {
	return &Assembler{}
}

// Params bundles everything the assembler needs; every field besides
// StartedAt/CompletedAt/Status is optional and may be a zero value when a
// phase was skipped (e.g. insufficient_data investigations carry no
// hypotheses or root cause).
type Params struct {
	Input              *investigation.ParsedInputs
	StartedAt          time.Time
	CompletedAt        time.Time
	Status             string
	AffectedResources  []investigation.AffectedResource
	Facts              []investigation.Fact
	Hypotheses         []investigation.Hypothesis
	RootCauseAnalysis  *investigation.RootCauseAnalysis
	SeverityAssessment *investigation.SeverityAssessment
	Advice             []investigation.Advice
	TraceIDs           []string
}

// Assemble builds the report. Invariants enforced here: AffectedResources
// count matches len(AffectedResources); DurationSeconds is derived, never
// passed in; if RootCauseAnalysis has no primary cause its confidence
// score is 0.
func (a *Assembler) Assemble(p Params) *investigation.InvestigationReport {
	inputHash := hashInput(p.Input)

	report := &investigation.InvestigationReport{
		RunID:              runID(p.StartedAt, inputHash),
		Status:             p.Status,
		StartedAt:          p.StartedAt,
		CompletedAt:        p.CompletedAt,
		DurationSeconds:    p.CompletedAt.Sub(p.StartedAt).Seconds(),
		AffectedResources:  p.AffectedResources,
		SeverityAssessment: p.SeverityAssessment,
		Facts:              p.Facts,
		RootCauseAnalysis:  p.RootCauseAnalysis,
		Hypotheses:         p.Hypotheses,
		Advice:             p.Advice,
		Timeline:           buildTimeline(p),
		Summary:            buildSummary(p),
		InputHash:          inputHash,
	}

	if report.RootCauseAnalysis == nil || report.RootCauseAnalysis.PrimaryRootCause == nil {
		if report.RootCauseAnalysis != nil {
			report.RootCauseAnalysis.ConfidenceScore = 0
		}
	}

	return report
}

// runID is a monotonically increasing per-process identifier: the epoch
// nanosecond the investigation started, a per-process sequence number to
// break ties, and a short hash of the input so identical re-submissions are
// traceable back to the same input without colliding with a genuinely
// distinct concurrent investigation.
func runID(startedAt time.Time, inputHash string) string {
	suffix := inputHash
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	seq := atomic.AddUint64(&runSeq, 1)
	return fmt.Sprintf("%d-%d-%s", startedAt.UnixNano(), seq, suffix)
}

func hashInput(in *investigation.ParsedInputs) string {
	if in == nil {
		return ""
	}
	encoded, err := json.Marshal(in)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

func buildTimeline(p Params) []investigation.EventTimeline {
	timeline := []investigation.EventTimeline{
		{
			Timestamp:   p.StartedAt,
			EventType:   "investigation_start",
			Component:   "pipeline",
			Description: "Investigation started",
		},
	}

	for _, traceID := range p.TraceIDs {
		timeline = append(timeline, investigation.EventTimeline{
			Timestamp:   p.StartedAt,
			EventType:   "trace_analysis",
			Component:   "evidence",
			Description: "Analyzed trace " + traceID,
			Metadata:    map[string]interface{}{"traceId": traceID},
		})
	}

	timeline = append(timeline, investigation.EventTimeline{
		Timestamp:   p.CompletedAt,
		EventType:   "investigation_complete",
		Component:   "pipeline",
		Description: "Investigation " + p.Status,
	})

	return timeline
}

func buildSummary(p Params) map[string]interface{} {
	errorCount := 0
	for _, f := range p.Facts {
		if f.Confidence >= 0.7 {
			errorCount++
		}
	}

	investigationType := "resource"
	if len(p.TraceIDs) > 0 {
		investigationType = "trace"
	}

	region := ""
	if p.Input != nil {
		region = p.Input.Region
	}

	return map[string]interface{}{
		"investigation_type": investigationType,
		"target_count":       len(p.AffectedResources),
		"trace_count":        len(p.TraceIDs),
		"error_count":        errorCount,
		"facts":              len(p.Facts),
		"hypotheses":         len(p.Hypotheses),
		"advice":             len(p.Advice),
		"region":             region,
	}
}
