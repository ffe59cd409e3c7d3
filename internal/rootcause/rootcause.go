// Package rootcause implements the root-cause phase (C8): sorted
// hypotheses plus facts go in, a single RootCauseAnalysis comes out. An
// LLM call picks the primary cause and contributing factors by index; a
// deterministic classification fallback is always available.
package rootcause

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
	"github.com/arclight-labs/rca-engine/internal/logging"
)

var log = logging.Get("rootcause")

const (
	temperature = 0.2
	maxTokens   = 768
)

// trueCauseTypes and symptomTypes classify hypothesis types for the
// deterministic fallback per §4.8.
var trueCauseTypes = map[string]bool{
	string(investigation.HypothesisPermissionIssue):    true,
	string(investigation.HypothesisConfigurationError): true,
	string(investigation.HypothesisCodeBug):            true,
	string(investigation.HypothesisInfrastructure):      true,
	string(investigation.HypothesisIntegrationFailure):  true,
	string(investigation.HypothesisNetworkIssue):        true,
}

var symptomTypes = map[string]bool{
	string(investigation.HypothesisTimeout):            true,
	string(investigation.HypothesisErrorRate):           true,
	string(investigation.HypothesisThrottling):          true,
	"high_latency":                                      true,
	string(investigation.HypothesisResourceConstraint):  true,
}

// Analyze runs the root-cause phase. Never returns an error: an
// unavailable or unparseable LLM response falls back to the deterministic
// classification.
func Analyze(ctx context.Context, llm llmprovider.Provider, hypotheses []investigation.Hypothesis, facts []investigation.Fact) *investigation.RootCauseAnalysis {
	if len(hypotheses) == 0 {
		return &investigation.RootCauseAnalysis{
			PrimaryRootCause:    nil,
			ContributingFactors: nil,
			ConfidenceScore:     0,
			AnalysisSummary:     "No hypotheses generated; insufficient evidence to determine a root cause.",
		}
	}

	if llm != nil {
		if result, ok := analyzeViaLLM(ctx, llm, hypotheses); ok {
			return result
		}
	}

	return classify(hypotheses)
}

func analyzeViaLLM(ctx context.Context, llm llmprovider.Provider, hypotheses []investigation.Hypothesis) (*investigation.RootCauseAnalysis, bool) {
	raw, err := llm.Complete(ctx, prompt(hypotheses), temperature, maxTokens)
	if err != nil {
		log.Warn("rootcause llm call failed", logging.F("error", err.Error()))
		return nil, false
	}

	jsonStr, err := llmprovider.ExtractJSON(raw)
	if err != nil {
		log.Warn("rootcause llm response had no JSON", logging.F("raw", raw))
		return nil, false
	}

	var decoded struct {
		PrimaryRootCauseIndex     *int   `json:"primary_root_cause_index"`
		ContributingFactorIndices []int  `json:"contributing_factor_indices"`
		AnalysisSummary           string `json:"analysis_summary"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &decoded); err != nil {
		log.Warn("rootcause llm response malformed", logging.F("error", err.Error()))
		return nil, false
	}
	if decoded.PrimaryRootCauseIndex == nil || !inRange(*decoded.PrimaryRootCauseIndex, len(hypotheses)) {
		log.Warn("rootcause llm response missing or out-of-range primary index")
		return nil, false
	}

	primaryIdx := *decoded.PrimaryRootCauseIndex
	primary := hypotheses[primaryIdx]

	var contributing []investigation.Hypothesis
	for _, idx := range decoded.ContributingFactorIndices {
		if idx == primaryIdx || !inRange(idx, len(hypotheses)) {
			continue
		}
		contributing = append(contributing, hypotheses[idx])
	}

	return &investigation.RootCauseAnalysis{
		PrimaryRootCause:    &primary,
		ContributingFactors: contributing,
		ConfidenceScore:     primary.Confidence,
		AnalysisSummary:     decoded.AnalysisSummary,
	}, true
}

func inRange(idx, length int) bool {
	return idx >= 0 && idx < length
}

func prompt(hypotheses []investigation.Hypothesis) string {
	var sb strings.Builder
	sb.WriteString("Given these ranked hypotheses about a cloud infrastructure incident, identify the single ")
	sb.WriteString("primary root cause and any contributing factors.\n\n")
	for i, h := range hypotheses {
		fmt.Fprintf(&sb, "[%d] type=%s confidence=%.2f: %s\n", i, h.Type, h.Confidence, h.Description)
	}
	sb.WriteString("\nRespond with only JSON: ")
	sb.WriteString(`{"primary_root_cause_index": int, "contributing_factor_indices": [int, ...], "analysis_summary": string}`)
	return sb.String()
}

// classify is the deterministic fallback per §4.8: bucket hypotheses into
// true_cause/symptom/other by type, prefer the highest-confidence
// true_cause as primary, otherwise fall back to symptoms (discounted 0.7x
// since a symptom is not itself a root cause), otherwise "other".
func classify(hypotheses []investigation.Hypothesis) *investigation.RootCauseAnalysis {
	var trueCauses, symptoms, other []investigation.Hypothesis
	for _, h := range hypotheses {
		switch {
		case trueCauseTypes[h.Type]:
			trueCauses = append(trueCauses, h)
		case symptomTypes[h.Type]:
			symptoms = append(symptoms, h)
		default:
			other = append(other, h)
		}
	}

	if len(trueCauses) > 0 {
		primary := trueCauses[0]
		var contributing []investigation.Hypothesis
		if len(trueCauses) > 1 {
			contributing = append(contributing, trueCauses[1:min(3, len(trueCauses))]...)
		}
		if len(symptoms) > 0 && len(contributing) < 3 {
			contributing = append(contributing, symptoms[0])
		}
		return &investigation.RootCauseAnalysis{
			PrimaryRootCause:    &primary,
			ContributingFactors: contributing,
			ConfidenceScore:     primary.Confidence,
			AnalysisSummary:     fmt.Sprintf("Classified %q as the primary root cause based on hypothesis type.", primary.Type),
		}
	}

	if len(symptoms) > 0 {
		primary := symptoms[0]
		primary.Confidence *= 0.7
		primary.Description += " (symptom - root cause unclear)"
		return &investigation.RootCauseAnalysis{
			PrimaryRootCause:    &primary,
			ContributingFactors: nil,
			ConfidenceScore:     primary.Confidence,
			AnalysisSummary:     "No true root cause identified; reporting the highest-confidence symptom.",
		}
	}

	if len(other) > 0 {
		primary := other[0]
		return &investigation.RootCauseAnalysis{
			PrimaryRootCause:    &primary,
			ContributingFactors: nil,
			ConfidenceScore:     primary.Confidence,
			AnalysisSummary:     "No recognized root-cause or symptom type; reporting the highest-confidence hypothesis.",
		}
	}

	return &investigation.RootCauseAnalysis{
		PrimaryRootCause:    nil,
		ContributingFactors: nil,
		ConfidenceScore:     0,
		AnalysisSummary:     "No hypotheses generated; insufficient evidence to determine a root cause.",
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
