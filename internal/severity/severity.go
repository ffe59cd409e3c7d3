// Package severity implements the severity phase (C9): facts and affected
// resources go in, a single SeverityAssessment comes out. A deterministic
// heuristic score always runs first; an optional LLM pass can override it
// when a provider is configured.
package severity

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
	"github.com/arclight-labs/rca-engine/internal/logging"
)

var log = logging.Get("severity")

const (
	temperature = 0.2
	maxTokens   = 512
)

// errorKeywords and warningKeywords score fact content toward the
// heuristic severity total. Each fact contributes at most once per
// keyword tier, regardless of how many keywords it matches.
var errorKeywords = []string{"error", "failed", "exception", "timeout", "denied", "unauthorized"}
var warningKeywords = []string{"warning", "degraded", "slow", "latency"}
var systemWideKeywords = []string{"system", "platform", "infrastructure", "network", "database"}

// score returns the deterministic severity score for a set of facts and
// affected resources, following the weighting in §4.9:
//   - +3 per fact containing an error keyword (once per fact)
//   - +1 per fact containing a warning keyword (once per fact)
//   - +4 per failed resource, +2 per degraded resource
//   - +3/+2/+1 for affected resource counts >5 / >2 / >0
func score(facts []investigation.Fact, resources []investigation.AffectedResource) int {
	total := 0

	for _, f := range facts {
		lower := strings.ToLower(f.Content)
		if containsAny(lower, errorKeywords) {
			total += 3
		}
		if containsAny(lower, warningKeywords) {
			total += 1
		}
	}

	for _, r := range resources {
		switch r.HealthStatus {
		case investigation.HealthFailed:
			total += 4
		case investigation.HealthDegraded:
			total += 2
		}
	}

	switch {
	case len(resources) > 5:
		total += 3
	case len(resources) > 2:
		total += 2
	case len(resources) > 0:
		total += 1
	}

	return total
}

func containsAny(haystack string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}

// scoreToSeverity maps the heuristic score to a severity/confidence pair
// per §4.9's fallback mapping.
func scoreToSeverity(s int) (severity string, confidence float64) {
	switch {
	case s >= 15:
		return investigation.SeverityCritical, 0.80
	case s >= 10:
		return investigation.SeverityHigh, 0.75
	case s >= 5:
		return investigation.SeverityMedium, 0.70
	default:
		return investigation.SeverityLow, 0.65
	}
}

// impactScope derives the blast radius from the affected resource count
// and, for the system_wide tier, whether any fact mentions a
// systemic-scope keyword.
func impactScope(facts []investigation.Fact, resources []investigation.AffectedResource) string {
	count := len(resources)
	switch {
	case count == 0:
		return investigation.ImpactScopeUnknown
	case count > 5:
		return investigation.ImpactScopeSystemWide
	case count > 3 && factsContainAny(facts, systemWideKeywords):
		return investigation.ImpactScopeSystemWide
	case count > 2:
		return investigation.ImpactScopeService
	default:
		return investigation.ImpactScopeSingleResource
	}
}

func factsContainAny(facts []investigation.Fact, keywords []string) bool {
	for _, f := range facts {
		if containsAny(strings.ToLower(f.Content), keywords) {
			return true
		}
	}
	return false
}

// userImpact promotes from none up through severe as the heuristic score
// and failed-resource count climb.
func userImpact(s int, resources []investigation.AffectedResource) string {
	failedCount := 0
	for _, r := range resources {
		if r.HealthStatus == investigation.HealthFailed {
			failedCount++
		}
	}

	switch {
	case failedCount > 1 || s >= 15:
		return investigation.UserImpactSevere
	case failedCount == 1 || s >= 10:
		return investigation.UserImpactModerate
	case s >= 5:
		return investigation.UserImpactMinimal
	default:
		return investigation.UserImpactNone
	}
}

// Assess runs the severity phase. Never returns an error: the heuristic
// result is always returned, optionally refined by an LLM pass.
func Assess(ctx context.Context, llm llmprovider.Provider, facts []investigation.Fact, resources []investigation.AffectedResource) *investigation.SeverityAssessment {
	s := score(facts, resources)
	sevValue, confidence := scoreToSeverity(s)

	assessment := &investigation.SeverityAssessment{
		Severity:              sevValue,
		ImpactScope:           impactScope(facts, resources),
		AffectedResourceCount: len(resources),
		UserImpact:            userImpact(s, resources),
		Confidence:            confidence,
		Reasoning:             "Heuristic score derived from fact keywords and affected resource health.",
	}

	if llm == nil {
		return assessment
	}

	if refined, ok := assessViaLLM(ctx, llm, facts, resources, assessment); ok {
		return refined
	}
	return assessment
}

func assessViaLLM(ctx context.Context, llm llmprovider.Provider, facts []investigation.Fact, resources []investigation.AffectedResource, fallback *investigation.SeverityAssessment) (*investigation.SeverityAssessment, bool) {
	raw, err := llm.Complete(ctx, prompt(facts, resources, fallback), temperature, maxTokens)
	if err != nil {
		log.Warn("severity llm call failed", logging.F("error", err.Error()))
		return nil, false
	}

	jsonStr, err := llmprovider.ExtractJSON(raw)
	if err != nil {
		log.Warn("severity llm response had no JSON", logging.F("raw", raw))
		return nil, false
	}

	var decoded struct {
		Severity   string  `json:"severity"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &decoded); err != nil {
		log.Warn("severity llm response malformed", logging.F("error", err.Error()))
		return nil, false
	}
	if !validSeverity(decoded.Severity) {
		log.Warn("severity llm response had invalid severity", logging.F("severity", decoded.Severity))
		return nil, false
	}

	return &investigation.SeverityAssessment{
		Severity:              decoded.Severity,
		ImpactScope:           fallback.ImpactScope,
		AffectedResourceCount: fallback.AffectedResourceCount,
		UserImpact:            fallback.UserImpact,
		Confidence:            clamp01(decoded.Confidence),
		Reasoning:             decoded.Reasoning,
	}, true
}

func validSeverity(s string) bool {
	switch s {
	case investigation.SeverityLow, investigation.SeverityMedium, investigation.SeverityHigh, investigation.SeverityCritical:
		return true
	default:
		return false
	}
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

func prompt(facts []investigation.Fact, resources []investigation.AffectedResource, fallback *investigation.SeverityAssessment) string {
	var sb strings.Builder
	sb.WriteString("Given this evidence from a cloud infrastructure incident, assess its severity. ")
	sb.WriteString("A deterministic heuristic already scored it as ")
	sb.WriteString(fallback.Severity)
	sb.WriteString("; refine that judgment if the evidence below justifies a different severity.\n\n")
	sb.WriteString("Evidence:\n")
	for _, f := range facts {
		sb.WriteString("- [" + f.Source + "] " + f.Content + "\n")
	}
	sb.WriteString("\nAffected resources:\n")
	for _, r := range resources {
		sb.WriteString("- " + r.ResourceType + " " + r.ResourceName + " (" + r.HealthStatus + ")\n")
	}
	sb.WriteString("\nRespond with only JSON: ")
	sb.WriteString(`{"severity": "low"|"medium"|"high"|"critical", "confidence": number, "reasoning": string}`)
	return sb.String()
}
