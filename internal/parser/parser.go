// Package parser implements the input parser (C4): free text and partial
// structured hints become a typed investigation.ParsedInputs. Extraction is
// deterministic-first — regular expressions over trace ids, ARNs, and
// error-looking lines — with an optional LLM fallback for leftover
// ambiguity.
package parser

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/rcaerrors"
)

var log = logging.Get("parser")

var (
	traceIDPattern = regexp.MustCompile(`(?:Root=)?(1-[0-9a-f]{8}-[0-9a-f]{24})`)

	// arnPattern matches any well-formed AWS ARN; the resource type is
	// derived from the service segment rather than hard-coded per prefix.
	arnPattern = regexp.MustCompile(`arn:aws[a-zA-Z-]*:[a-zA-Z0-9-]+:[a-z0-9-]*:[0-9]*:[^\s"']+`)

	httpErrorPattern = regexp.MustCompile(`\b[45]\d{2}\b`)

	errorKeywords = []string{"Error", "Exception", "AccessDenied", "timed out"}
)

// arnServiceToResourceType maps an ARN's service segment to the short
// resource-type vocabulary used throughout discovery and the evidence
// specialists. It covers all eight categories of tracetools.awsOriginToType
// so a resource discovered from an ARN and the same resource discovered
// from a trace segment dispatch to the same specialist; eventbus, network
// and identity are produced only here (a trace segment of those kinds is
// typed "unknown").
var arnServiceToResourceType = map[string]string{
	"lambda":   "compute",
	"apigateway": "gateway",
	"states":   "workflow",
	"s3":       "storage",
	"sqs":      "queue",
	"sns":      "topic",
	"events":   "eventbus",
	"rds":      "relational",
	"dynamodb": "keyvalue",
	"ec2":      "network",
	"iam":      "identity",
}

// Input is the union of shapes the parser accepts. Exactly one of
// Structured, Legacy, or FreeText should be populated by the caller; the
// apiserver/CLI layer is responsible for routing the raw request body here.
type Input struct {
	FreeText   string
	Structured *StructuredInput
	Legacy     *LegacyInput
}

// StructuredInput mirrors the "investigation_inputs" wire shape.
type StructuredInput struct {
	InvestigationInputs struct {
		PrimaryTargets  []string               `json:"primary_targets"`
		TraceIDs        []string               `json:"trace_ids"`
		ErrorMessages   []string               `json:"error_messages"`
		TimeRange       *TimeRangeInput        `json:"time_range"`
		BusinessContext map[string]interface{} `json:"business_context"`
	} `json:"investigation_inputs"`
}

// TimeRangeInput accepts both Unix seconds and human-readable dates; see
// parseTimestamp in timerange.go.
type TimeRangeInput struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// LegacyInput mirrors the older function_name/xray_trace_id/
// investigation_target wire shape, kept for backward compatibility.
type LegacyInput struct {
	FunctionName       string `json:"function_name"`
	XRayTraceID        string `json:"xray_trace_id"`
	InvestigationTarget string `json:"investigation_target"`
	Region             string `json:"region"`
}

// Parser turns an Input into investigation.ParsedInputs. The LLM fallback
// is optional; a nil provider simply skips the classification pass.
type Parser struct {
	llm llmprovider.Provider
}

func New(llm llmprovider.Provider) *Parser {
	return &Parser{llm: llm}
}

// Parse dispatches on the populated field of in and returns typed inputs.
// The deterministic ARN/trace-id/error-line extraction runs on free text
// only; a structured payload's error_messages are copied as given and are
// not scanned for ARNs or trace ids.
func (p *Parser) Parse(ctx context.Context, in Input) (*investigation.ParsedInputs, error) {
	switch {
	case in.Structured != nil:
		return p.parseStructured(ctx, in.Structured)
	case in.Legacy != nil:
		return p.parseLegacy(ctx, in.Legacy)
	case strings.TrimSpace(in.FreeText) != "":
		return p.parseFreeText(ctx, in.FreeText)
	default:
		return nil, rcaerrors.Input("parser", "no investigation input provided")
	}
}

func (p *Parser) parseStructured(ctx context.Context, s *StructuredInput) (*investigation.ParsedInputs, error) {
	ii := s.InvestigationInputs

	parsed := &investigation.ParsedInputs{
		TraceIDs:        dedupeStrings(ii.TraceIDs),
		ErrorMessages:   append([]string(nil), ii.ErrorMessages...),
		BusinessContext: ii.BusinessContext,
	}
	if parsed.BusinessContext == nil {
		parsed.BusinessContext = map[string]interface{}{}
	}

	for _, target := range ii.PrimaryTargets {
		parsed.PrimaryTargets = append(parsed.PrimaryTargets, classifyTarget(target))
	}

	if ii.TimeRange != nil {
		tr, err := parseTimeRange(ii.TimeRange.Start, ii.TimeRange.End)
		if err != nil {
			return nil, rcaerrors.Wrap("parser", err)
		}
		parsed.TimeRange = tr
	}

	return p.fallbackIfEmpty(ctx, parsed)
}

func (p *Parser) parseLegacy(ctx context.Context, l *LegacyInput) (*investigation.ParsedInputs, error) {
	parsed := &investigation.ParsedInputs{
		BusinessContext: map[string]interface{}{},
		Region:          l.Region,
	}

	if l.FunctionName != "" {
		parsed.PrimaryTargets = append(parsed.PrimaryTargets, investigation.Resource{
			Type: "compute",
			Name: l.FunctionName,
		})
	}
	if l.InvestigationTarget != "" && l.InvestigationTarget != l.FunctionName {
		parsed.PrimaryTargets = append(parsed.PrimaryTargets, classifyTarget(l.InvestigationTarget))
	}
	if l.XRayTraceID != "" {
		parsed.TraceIDs = append(parsed.TraceIDs, l.XRayTraceID)
	}

	return p.fallbackIfEmpty(ctx, parsed)
}

func (p *Parser) parseFreeText(ctx context.Context, text string) (*investigation.ParsedInputs, error) {
	parsed := &investigation.ParsedInputs{
		TraceIDs:        extractTraceIDs(text),
		ErrorMessages:   extractErrorLines(text),
		BusinessContext: map[string]interface{}{},
	}

	for _, arn := range extractARNs(text) {
		parsed.PrimaryTargets = append(parsed.PrimaryTargets, classifyTarget(arn))
	}

	return p.fallbackIfEmpty(ctx, parsed)
}

// fallbackIfEmpty invokes the LLM classification pass only when
// deterministic extraction produced nothing usable: no primary targets and
// no trace ids. A nil provider means the fallback is disabled.
func (p *Parser) fallbackIfEmpty(ctx context.Context, parsed *investigation.ParsedInputs) (*investigation.ParsedInputs, error) {
	if p.llm == nil || len(parsed.PrimaryTargets) > 0 || len(parsed.TraceIDs) > 0 {
		return parsed, nil
	}

	raw, err := p.llm.Complete(ctx, classificationPrompt(parsed), 0.1, 256)
	if err != nil {
		log.Warn("llm classification fallback failed", logging.F("error", err.Error()))
		return parsed, nil
	}

	jsonStr, err := llmprovider.ExtractJSON(raw)
	if err != nil {
		log.Warn("llm classification fallback returned no JSON", logging.F("raw", raw))
		return parsed, nil
	}

	var classified struct {
		Targets []struct {
			Type string `json:"type"`
			Name string `json:"name"`
		} `json:"targets"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &classified); err != nil {
		log.Warn("llm classification fallback returned malformed JSON", logging.F("error", err.Error()))
		return parsed, nil
	}

	for _, t := range classified.Targets {
		if t.Name == "" {
			continue
		}
		resType := t.Type
		if resType == "" {
			resType = "unknown"
		}
		parsed.PrimaryTargets = append(parsed.PrimaryTargets, investigation.Resource{
			Type: resType,
			Name: t.Name,
		})
	}
	return parsed, nil
}

func classificationPrompt(parsed *investigation.ParsedInputs) string {
	var sb strings.Builder
	sb.WriteString("Identify cloud resources referenced in this incident report. ")
	sb.WriteString("Respond with only JSON: {\"targets\": [{\"type\": string, \"name\": string}]}.\n\n")
	for _, msg := range parsed.ErrorMessages {
		sb.WriteString(msg)
		sb.WriteString("\n")
	}
	return sb.String()
}

// classifyTarget turns a raw target string (ARN or bare name) into a
// Resource with a best-effort type. Unknown shapes become type="unknown"
// and are carried through for discovery to refine.
func classifyTarget(raw string) investigation.Resource {
	raw = strings.TrimSpace(raw)
	if arnPattern.MatchString(raw) {
		return investigation.Resource{
			Type: resourceTypeFromARN(raw),
			Name: arnSuffix(raw),
			ARN:  raw,
		}
	}
	return investigation.Resource{Type: "unknown", Name: raw}
}

func resourceTypeFromARN(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 3 {
		return "unknown"
	}
	if t, ok := arnServiceToResourceType[parts[2]]; ok {
		return t
	}
	return "unknown"
}

func arnSuffix(arn string) string {
	idx := strings.LastIndex(arn, ":")
	if idx == -1 || idx == len(arn)-1 {
		idx = strings.LastIndex(arn, "/")
	}
	if idx == -1 || idx == len(arn)-1 {
		return arn
	}
	return arn[idx+1:]
}

func extractTraceIDs(text string) []string {
	matches := traceIDPattern.FindAllStringSubmatch(text, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return dedupeStrings(ids)
}

func extractARNs(text string) []string {
	matches := arnPattern.FindAllString(text, -1)
	return dedupeStrings(matches)
}

func extractErrorLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if looksLikeError(trimmed) {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

func looksLikeError(line string) bool {
	for _, kw := range errorKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return httpErrorPattern.MatchString(line)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
