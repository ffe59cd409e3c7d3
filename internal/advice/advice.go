// Package advice deterministically derives remediation Advice from a root
// cause's hypothesis type. The system is advisory only — there is no
// fourth LLM call and no autonomous remediation; this is a fixed lookup
// table, same shape as the severity phase's heuristic scoring.
package advice

import "github.com/arclight-labs/rca-engine/internal/investigation"

// rule maps one hypothesis type to its fixed remediation advice.
type rule struct {
	hypType     investigation.HypothesisType
	title       string
	description string
	priority    string
	category    string
}

var rules = []rule{
	{
		hypType:     investigation.HypothesisPermissionIssue,
		title:       "Review IAM policy",
		description: "Grant the missing permission to the role or resource policy identified in the root cause, following least privilege.",
		priority:    investigation.PriorityHigh,
		category:    "iam",
	},
	{
		hypType:     investigation.HypothesisConfigurationError,
		title:       "Correct the misconfiguration",
		description: "Align the resource's configuration with the expected value called out in the root cause analysis.",
		priority:    investigation.PriorityMedium,
		category:    "configuration",
	},
	{
		hypType:     investigation.HypothesisCodeBug,
		title:       "Patch the offending code path",
		description: "Fix the defect identified in the root cause analysis and add a regression test covering the failure.",
		priority:    investigation.PriorityHigh,
		category:    "code",
	},
	{
		hypType:     investigation.HypothesisTimeout,
		title:       "Increase timeout or reduce latency",
		description: "Raise the configured timeout to accommodate observed latency, or investigate the slow downstream dependency.",
		priority:    investigation.PriorityMedium,
		category:    "performance",
	},
	{
		hypType:     investigation.HypothesisResourceConstraint,
		title:       "Increase allocated resources",
		description: "Raise the memory, concurrency, or storage limit implicated in the root cause analysis.",
		priority:    investigation.PriorityMedium,
		category:    "capacity",
	},
	{
		hypType:     investigation.HypothesisIntegrationFailure,
		title:       "Verify the downstream integration",
		description: "Confirm the downstream service's contract, credentials, and availability match what this resource expects.",
		priority:    investigation.PriorityHigh,
		category:    "integration",
	},
	{
		hypType:     investigation.HypothesisInfrastructure,
		title:       "Inspect infrastructure health",
		description: "Check the underlying infrastructure component's health dashboard and recent change history.",
		priority:    investigation.PriorityHigh,
		category:    "infrastructure",
	},
	{
		hypType:     investigation.HypothesisErrorRate,
		title:       "Investigate the error source",
		description: "Drill into the specific errors contributing to the elevated rate using the facts gathered during evidence collection.",
		priority:    investigation.PriorityMedium,
		category:    "reliability",
	},
	{
		hypType:     investigation.HypothesisThrottling,
		title:       "Request a quota increase or add backoff",
		description: "Raise the relevant service quota, or add retry/backoff to the caller to smooth out request bursts.",
		priority:    investigation.PriorityMedium,
		category:    "capacity",
	},
	{
		hypType:     investigation.HypothesisNetworkIssue,
		title:       "Review network path",
		description: "Check security group rules, routing, and DNS resolution along the path implicated in the root cause analysis.",
		priority:    investigation.PriorityHigh,
		category:    "network",
	},
}

// Generate returns remediation advice for a root cause's primary
// hypothesis plus each contributing factor, skipping any hypothesis type
// with no matching rule. Returns nil if rca has no primary cause.
func Generate(rca *investigation.RootCauseAnalysis) []investigation.Advice {
	if rca == nil || rca.PrimaryRootCause == nil {
		return nil
	}

	var out []investigation.Advice
	if a, ok := adviceFor(rca.PrimaryRootCause.Type); ok {
		out = append(out, a)
	}
	for _, factor := range rca.ContributingFactors {
		if a, ok := adviceFor(factor.Type); ok {
			out = append(out, a)
		}
	}
	return out
}

func adviceFor(hypType string) (investigation.Advice, bool) {
	for _, r := range rules {
		if string(r.hypType) == hypType {
			return investigation.Advice{
				Title:       r.title,
				Description: r.description,
				Priority:    r.priority,
				Category:    r.category,
			}, true
		}
	}
	return investigation.Advice{}, false
}
