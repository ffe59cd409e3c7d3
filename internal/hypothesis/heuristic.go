package hypothesis

import (
	"strings"

	"github.com/arclight-labs/rca-engine/internal/investigation"
)

// keywordRule maps a keyword pattern found in a fact's content to a fixed
// hypothesis. Evaluated in order; a fact may trigger more than one rule.
type keywordRule struct {
	keyword     string
	hypType     string
	description string
	confidence  float64
}

var keywordRules = []keywordRule{
	{"timeout", string(investigation.HypothesisTimeout), "Operation exceeded its configured timeout", 0.80},
	{"timed out", string(investigation.HypothesisTimeout), "Operation exceeded its configured timeout", 0.80},
	{"error rate", string(investigation.HypothesisErrorRate), "Elevated error rate observed", 0.80},
	{"low memory", string(investigation.HypothesisResourceConstraint), "Function under memory pressure", 0.85},
	{"division by zero", string(investigation.HypothesisCodeBug), "Unhandled division by zero", 0.95},
	{"empty list", string(investigation.HypothesisCodeBug), "Code does not handle an empty collection", 0.85},
	{"missing error handling", string(investigation.HypothesisCodeBug), "Error path is not handled", 0.80},
	{"accessdenied", string(investigation.HypothesisPermissionIssue), "Caller lacks required IAM permission", 0.90},
	{"deny", string(investigation.HypothesisPermissionIssue), "An explicit Deny statement blocks the action", 0.90},
}

// heuristicFallback scans fact content for fixed keyword patterns and
// emits at most one hypothesis per hypothesis type (from the first fact
// and rule that match it), each carrying
// metadata.heuristic=true. Used when the LLM is unavailable or its output
// is unusable.
func heuristicFallback(facts []investigation.Fact) []investigation.Hypothesis {
	seen := map[string]bool{}
	var hyps []investigation.Hypothesis

	for _, f := range facts {
		lower := strings.ToLower(f.Content)
		for _, rule := range keywordRules {
			if !strings.Contains(lower, rule.keyword) {
				continue
			}
			if seen[rule.hypType] {
				continue
			}
			seen[rule.hypType] = true
			hyps = append(hyps, investigation.Hypothesis{
				Type:        rule.hypType,
				Description: rule.description,
				Confidence:  rule.confidence,
				Evidence:    []string{f.Content},
				Metadata:    map[string]interface{}{"heuristic": true},
			})
		}
	}

	sortByConfidenceDesc(hyps)
	return hyps
}
