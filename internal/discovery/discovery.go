// Package discovery implements resource discovery (C5): deterministic
// extraction of cloud resources from trace ids and explicit targets, with
// de-duplication and API Gateway name-to-id resolution.
package discovery

import (
	"context"
	"encoding/json"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/rcaerrors"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

var log = logging.Get("discovery")

const resourceTypeGateway = "gateway"

// traceResource mirrors the "resources" array element returned by
// tracetools.GetAllResourcesFromTrace.
type traceResource struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Discover runs the §4.5 algorithm: seed from primary targets, append
// trace-derived resources, de-duplicate by key, resolve ambiguous API
// Gateway names to ids. Returns rcaerrors.KindInsufficientData when there
// are zero resources and zero trace ids after discovery.
func Discover(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, in *investigation.ParsedInputs) ([]investigation.Resource, error) {
	ordered := make([]investigation.Resource, 0, len(in.PrimaryTargets))
	seen := make(map[string]bool, len(in.PrimaryTargets))

	appendDeduped := func(r investigation.Resource) {
		key := r.Key()
		if seen[key] {
			return
		}
		seen[key] = true
		ordered = append(ordered, r)
	}

	for _, r := range in.PrimaryTargets {
		appendDeduped(r)
	}

	for _, traceID := range in.TraceIDs {
		resources, err := resourcesFromTrace(ctx, registry, client, traceID)
		if err != nil {
			log.Warn("trace resource extraction failed", logging.F("traceId", traceID), logging.F("error", err.Error()))
			continue
		}
		for _, r := range resources {
			r.DiscoveredVia = "trace:" + traceID
			appendDeduped(r)
		}
	}

	if len(ordered) == 0 && len(in.TraceIDs) == 0 {
		return nil, rcaerrors.InsufficientData("discovery", "No resources or trace IDs identified")
	}

	for i := range ordered {
		if ordered[i].Type != resourceTypeGateway {
			continue
		}
		resolveGatewayID(ctx, registry, client, &ordered[i])
	}

	return ordered, nil
}

func resourcesFromTrace(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, traceID string) ([]investigation.Resource, error) {
	args, err := json.Marshal(map[string]string{"traceId": traceID})
	if err != nil {
		return nil, rcaerrors.Internal("discovery", "marshal trace args: %v", err)
	}

	raw := registry.Execute(ctx, client, "get_all_resources_from_trace", args)

	var result struct {
		Error     string          `json:"error"`
		Resources []traceResource `json:"resources"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, rcaerrors.Internal("discovery", "decode trace resources: %v", err)
	}
	if result.Error != "" {
		return nil, rcaerrors.Tool("discovery", "%s", result.Error)
	}

	out := make([]investigation.Resource, 0, len(result.Resources))
	for _, tr := range result.Resources {
		if tr.Name == "" {
			continue
		}
		typ := tr.Type
		if typ == "" {
			typ = "unknown"
		}
		out = append(out, investigation.Resource{Type: typ, Name: tr.Name})
	}
	return out, nil
}

// resolveGatewayID resolves a human-friendly gateway name to its 10-char
// REST API id. Resolution failure is non-fatal: the original entry is kept
// with metadata.resolution_failed=true per §4.5 point 4.
func resolveGatewayID(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, r *investigation.Resource) {
	args, err := json.Marshal(map[string]string{"nameOrId": r.Name})
	if err != nil {
		markResolutionFailed(r)
		return
	}

	raw := registry.Execute(ctx, client, "resolve_api_id", args)

	var result struct {
		Error string `json:"error"`
		APIID string `json:"apiId"`
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil || result.Error != "" || result.APIID == "" {
		markResolutionFailed(r)
		return
	}

	if r.Metadata == nil {
		r.Metadata = map[string]interface{}{}
	}
	r.Metadata["resolvedApiId"] = result.APIID
}

func markResolutionFailed(r *investigation.Resource) {
	if r.Metadata == nil {
		r.Metadata = map[string]interface{}{}
	}
	r.Metadata["resolution_failed"] = true
}
