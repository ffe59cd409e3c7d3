// Package hypothesis implements the hypothesis phase (C7): facts go in,
// confidence-ranked, evidence-backed Hypotheses come out. An LLM call
// drives generation; a deterministic keyword-scan heuristic is the
// fallback when the provider is unavailable or returns unparseable
// output.
package hypothesis

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
	"github.com/arclight-labs/rca-engine/internal/logging"
)

var log = logging.Get("hypothesis")

const (
	temperature = 0.3
	maxTokens   = 1024
)

// Generate runs the hypothesis phase over facts. Always returns a
// confidence-sorted, evidence-validated slice; never an error — an
// unusable LLM response falls back to the deterministic heuristic.
func Generate(ctx context.Context, llm llmprovider.Provider, facts []investigation.Fact) []investigation.Hypothesis {
	if llm != nil {
		if hyps, ok := generateViaLLM(ctx, llm, facts); ok {
			return hyps
		}
	}
	return heuristicFallback(facts)
}

func generateViaLLM(ctx context.Context, llm llmprovider.Provider, facts []investigation.Fact) ([]investigation.Hypothesis, bool) {
	raw, err := llm.Complete(ctx, prompt(facts), temperature, maxTokens)
	if err != nil {
		log.Warn("hypothesis llm call failed", logging.F("error", err.Error()))
		return nil, false
	}

	jsonStr, err := llmprovider.ExtractJSON(raw)
	if err != nil {
		log.Warn("hypothesis llm response had no JSON", logging.F("raw", raw))
		return nil, false
	}

	var candidates []struct {
		Type        string   `json:"type"`
		Description string   `json:"description"`
		Confidence  float64  `json:"confidence"`
		Evidence    []string `json:"evidence"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &candidates); err != nil {
		log.Warn("hypothesis llm response malformed", logging.F("error", err.Error()))
		return nil, false
	}

	validated := make([]investigation.Hypothesis, 0, len(candidates))
	for _, c := range candidates {
		if !evidenceMatchesFacts(c.Evidence, facts) {
			continue
		}
		validated = append(validated, investigation.Hypothesis{
			Type:        normalizeType(c.Type),
			Description: c.Description,
			Confidence:  clamp01(c.Confidence),
			Evidence:    c.Evidence,
		})
	}

	sortByConfidenceDesc(validated)
	return validated, true
}

func prompt(facts []investigation.Fact) string {
	var sb strings.Builder
	sb.WriteString("You are analyzing evidence from a cloud infrastructure incident. ")
	sb.WriteString("Generate a ranked list of hypotheses about what went wrong.\n\n")
	sb.WriteString("Evidence:\n")
	for _, f := range facts {
		fmt.Fprintf(&sb, "- [%s] %s (confidence: %.2f)\n", f.Source, f.Content, f.Confidence)
	}
	sb.WriteString("\nExpected hypothesis types: permission_issue, configuration_error, code_bug, timeout, ")
	sb.WriteString("resource_constraint, integration_failure, infrastructure_issue, error_rate, throttling, network_issue.\n\n")
	sb.WriteString("Confidence calibration: 0.95+ for an explicit error message; 0.85-0.94 for a config mismatch ")
	sb.WriteString("plus a corroborating observation; 0.70-0.84 for a correlation across multiple facts; below 0.70, drop it.\n\n")
	sb.WriteString("Respond with only a JSON array: ")
	sb.WriteString(`[{"type": string, "description": string, "confidence": number, "evidence": [string, ...]}, ...]`)
	sb.WriteString("\nEach evidence string must be a substring of one of the facts above.")
	return sb.String()
}

// evidenceMatchesFacts requires a non-empty evidence list where at least
// one entry substring-matches some fact's content.
func evidenceMatchesFacts(evidence []string, facts []investigation.Fact) bool {
	if len(evidence) == 0 {
		return false
	}
	for _, e := range evidence {
		for _, f := range facts {
			if e != "" && strings.Contains(f.Content, e) {
				return true
			}
		}
	}
	return false
}

var typeNormalizer = regexp.MustCompile(`[^a-z0-9]+`)

func normalizeType(t string) string {
	lower := strings.ToLower(strings.TrimSpace(t))
	return strings.Trim(typeNormalizer.ReplaceAllString(lower, "_"), "_")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sortByConfidenceDesc sorts by confidence descending, stable on ties so
// input order (LLM's own ranking) is preserved among equal confidences.
func sortByConfidenceDesc(hyps []investigation.Hypothesis) {
	sort.SliceStable(hyps, func(i, j int) bool {
		return hyps[i].Confidence > hyps[j].Confidence
	})
}
