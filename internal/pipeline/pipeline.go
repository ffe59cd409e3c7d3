// Package pipeline wires the full investigation sequence described in
// §4: parse -> discover -> collect -> hypothesize -> root cause ->
// severity -> advice -> assemble.
package pipeline

import (
	"context"
	"time"

	"github.com/arclight-labs/rca-engine/internal/advice"
	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/config"
	"github.com/arclight-labs/rca-engine/internal/discovery"
	"github.com/arclight-labs/rca-engine/internal/evidence"
	"github.com/arclight-labs/rca-engine/internal/hypothesis"
	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/parser"
	"github.com/arclight-labs/rca-engine/internal/rcaerrors"
	"github.com/arclight-labs/rca-engine/internal/report"
	"github.com/arclight-labs/rca-engine/internal/rootcause"
	"github.com/arclight-labs/rca-engine/internal/severity"
	"github.com/arclight-labs/rca-engine/internal/telemetry"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

var log = logging.Get("pipeline")

// Pipeline is built once at process startup and shared read-only across
// concurrent investigations; each Run call owns its own cloud client and
// fact set.
type Pipeline struct {
	cfg      *config.Config
	registry *tools.Registry
	llm      llmprovider.Provider
	metrics  *telemetry.Metrics
}

func New(cfg *config.Config, registry *tools.Registry, llm llmprovider.Provider, metrics *telemetry.Metrics) *Pipeline {
	return &Pipeline{cfg: cfg, registry: registry, llm: llm, metrics: metrics}
}

// Overrides carries per-request values supplied outside the free-text
// input itself: cloud credentials (the apiserver's service_config block,
// or CLI flags), and the investigation's region/trace id when the caller
// submits them as separate wire fields rather than embedded in prose.
// These take precedence over the process-wide config and over whatever
// parsing the free text itself produced.
type Overrides struct {
	RoleARN     string
	ExternalID  string
	Region      string
	XRayTraceID string
}

func (o Overrides) roleARN(cfg *config.Config) string {
	if o.RoleARN != "" {
		return o.RoleARN
	}
	return cfg.AWSAssumeRoleARN
}

func (o Overrides) externalID(cfg *config.Config) string {
	if o.ExternalID != "" {
		return o.ExternalID
	}
	return cfg.AWSExternalID
}

// Run executes one investigation end to end and always returns a report
// (never just an error) except when the investigation cannot even begin
// (credential failure, malformed input). The returned report's Status
// reflects how far the pipeline got: completed, insufficient_data, or
// failed.
func (p *Pipeline) Run(ctx context.Context, in parser.Input, overrides Overrides) (*investigation.InvestigationReport, error) {
	startedAt := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.InvestigationDeadlineSeconds)*time.Second)
	defer cancel()

	parsed, err := parser.New(p.llm).Parse(ctx, in)
	if err != nil {
		return nil, rcaerrors.Wrap("parse", err)
	}
	if overrides.Region != "" {
		parsed.Region = overrides.Region
	}
	if parsed.Region == "" {
		parsed.Region = p.cfg.AWSRegion
	}
	if overrides.XRayTraceID != "" && !containsString(parsed.TraceIDs, overrides.XRayTraceID) {
		parsed.TraceIDs = append(parsed.TraceIDs, overrides.XRayTraceID)
	}

	roleARN := overrides.roleARN(p.cfg)
	externalID := overrides.externalID(p.cfg)

	ctx, span := telemetry.StartInvestigationSpan(ctx, telemetry.InvestigationAttributes{
		Region:        parsed.Region,
		Type:          investigationType(parsed),
		AssumeRoleARN: roleARN,
		ExternalID:    externalID,
	})
	defer span.End()
	telemetry.RecordInput(span, summarizeInput(in))

	client, err := cloudclient.New(ctx, cloudclient.Config{
		Region:     parsed.Region,
		RoleARN:    roleARN,
		ExternalID: externalID,
	})
	if err != nil {
		telemetry.RecordFailure(span, err)
		return nil, rcaerrors.Credential("cloudclient", "failed to establish cloud credentials: %v", err)
	}

	resources, err := discovery.Discover(ctx, p.registry, client, parsed)
	if err != nil {
		if rcaerrors.Is(err, rcaerrors.KindInsufficientData) {
			rep := p.assembleInsufficientData(parsed, startedAt, err)
			p.recordCompletion(rep)
			return rep, nil
		}
		telemetry.RecordFailure(span, err)
		return nil, rcaerrors.Wrap("discovery", err)
	}

	facts := evidence.Collect(ctx, p.registry, client, resources, parsed, p.cfg)
	affected := buildAffectedResources(resources, facts)

	hyps := hypothesis.Generate(ctx, p.llm, facts)
	rca := rootcause.Analyze(ctx, p.llm, hyps, facts)
	sev := severity.Assess(ctx, p.llm, facts, affected)
	adv := advice.Generate(rca)

	status := investigation.StatusCompleted
	if ctx.Err() != nil {
		status = investigation.StatusFailed
	}

	rep := report.New().Assemble(report.Params{
		Input:              parsed,
		StartedAt:          startedAt,
		CompletedAt:        time.Now(),
		Status:             status,
		AffectedResources:  affected,
		Facts:              facts,
		Hypotheses:         hyps,
		RootCauseAnalysis:  rca,
		SeverityAssessment: sev,
		Advice:             adv,
		TraceIDs:           parsed.TraceIDs,
	})

	telemetry.RecordOutput(span, rep.RunID)
	p.recordCompletion(rep)
	return rep, nil
}

func (p *Pipeline) assembleInsufficientData(parsed *investigation.ParsedInputs, startedAt time.Time, cause error) *investigation.InvestigationReport {
	log.Warn("investigation ended with insufficient data", logging.F("error", cause.Error()))
	return report.New().Assemble(report.Params{
		Input:       parsed,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Status:      investigation.StatusInsufficientData,
		TraceIDs:    parsed.TraceIDs,
	})
}

func (p *Pipeline) recordCompletion(rep *investigation.InvestigationReport) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordInvestigation(rep.Status, rep.DurationSeconds)
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func investigationType(parsed *investigation.ParsedInputs) string {
	if len(parsed.TraceIDs) > 0 {
		return "trace"
	}
	return "resource"
}

func summarizeInput(in parser.Input) string {
	switch {
	case in.FreeText != "":
		return in.FreeText
	case in.Structured != nil:
		return "structured_input"
	case in.Legacy != nil:
		return "legacy_input"
	default:
		return ""
	}
}

// buildAffectedResources derives each discovered resource's health status
// from the facts collected about it: a resource with any high-confidence
// (>=0.7) fact attached is failed, one with only lower-confidence facts is
// degraded, and one with no facts at all is healthy.
func buildAffectedResources(resources []investigation.Resource, facts []investigation.Fact) []investigation.AffectedResource {
	bestConfidence := make(map[string]float64)
	issues := make(map[string][]string)
	for _, f := range facts {
		if f.ResourceKey == "" {
			continue
		}
		if f.Confidence > bestConfidence[f.ResourceKey] {
			bestConfidence[f.ResourceKey] = f.Confidence
		}
		if f.Confidence >= 0.7 {
			issues[f.ResourceKey] = append(issues[f.ResourceKey], f.Content)
		}
	}

	out := make([]investigation.AffectedResource, 0, len(resources))
	for _, r := range resources {
		key := r.Key()
		health := investigation.HealthHealthy
		switch {
		case bestConfidence[key] >= 0.7:
			health = investigation.HealthFailed
		case bestConfidence[key] > 0:
			health = investigation.HealthDegraded
		}

		out = append(out, investigation.AffectedResource{
			ResourceType:   r.Type,
			ResourceID:     key,
			ResourceName:   r.Name,
			HealthStatus:   health,
			DetectedIssues: issues[key],
			Metadata:       r.Metadata,
		})
	}
	return out
}
