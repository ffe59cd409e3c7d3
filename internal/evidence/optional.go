package evidence

import (
	"context"
	"fmt"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/logging"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

// resourceTypeToServiceKey maps a discovered resource type to the service
// key check_service_health expects.
var resourceTypeToServiceKey = map[string]string{
	"compute":    "lambda",
	"gateway":    "apigateway",
	"workflow":   "states",
	"storage":    "s3",
	"queue":      "sqs",
	"topic":      "sns",
	"eventbus":   "events",
	"relational": "rds",
	"keyvalue":   "dynamodb",
	"network":    "ec2",
	"identity":   "iam",
}

// runOptionalChecks runs before the resource specialists per §4.6: a
// service-health check per unique service type, and an audit-trail lookup
// for the first optionalAuditTopN resources. Permission/unavailability
// failures are logged and produce no fact; they never abort collection.
func runOptionalChecks(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, resources []investigation.Resource, s *sink) {
	for _, svcKey := range uniqueServiceKeys(resources) {
		if ctx.Err() != nil {
			return
		}
		checkServiceHealth(ctx, registry, client, svcKey, s)
	}

	topN := resources
	if len(topN) > optionalAuditTopN {
		topN = topN[:optionalAuditTopN]
	}
	for _, r := range topN {
		if ctx.Err() != nil {
			return
		}
		checkAuditTrail(ctx, registry, client, r, s)
	}
}

func uniqueServiceKeys(resources []investigation.Resource) []string {
	seen := map[string]bool{}
	var keys []string
	for _, r := range resources {
		svcKey, ok := resourceTypeToServiceKey[r.Type]
		if !ok || seen[svcKey] {
			continue
		}
		seen[svcKey] = true
		keys = append(keys, svcKey)
	}
	return keys
}

func checkServiceHealth(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, svcKey string, s *sink) {
	decoded, ok := callTool(ctx, registry, client, "check_service_health", map[string]interface{}{"serviceKey": svcKey})
	if !ok {
		return
	}
	if errMsg, isErr := decoded["error"].(string); isErr && errMsg != "" {
		log.Info("service health check unavailable", logging.F("service", svcKey), logging.F("error", errMsg))
		return
	}
	s.add("", investigation.Fact{
		Source:     "service_health",
		Content:    fmt.Sprintf("service_health[%s]: %s", svcKey, summarize(decoded)),
		Confidence: baselineObservationConfidence,
	})
}

func checkAuditTrail(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, r investigation.Resource, s *sink) {
	decoded, ok := callTool(ctx, registry, client, "get_recent_audit_events", map[string]interface{}{"resourceName": r.Name})
	if !ok {
		return
	}
	if errMsg, isErr := decoded["error"].(string); isErr && errMsg != "" {
		log.Info("audit trail lookup unavailable", logging.F("resource", r.Name), logging.F("error", errMsg))
		return
	}
	s.add(r.Key(), investigation.Fact{
		Source:     "audit_trail",
		Content:    fmt.Sprintf("audit_trail[%s]: %s", r.Name, summarize(decoded)),
		Confidence: baselineObservationConfidence,
	})
}
