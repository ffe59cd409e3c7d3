package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

// baselineObservationConfidence is the confidence assigned to a plain
// successful tool observation, distinct from the higher confidence given
// to explicit errors (0.7) and trace-derived facts (0.8-0.95).
const baselineObservationConfidence = 0.6

// toolCall is one specialist-to-tool dispatch: the tool name, its
// arguments, and the stable Fact source name the observation is recorded
// under.
type toolCall struct {
	name   string
	args   map[string]interface{}
	source string
}

// runSpecialist dispatches a resource to its type's specialist. Unknown or
// unrecognized resource types contribute no facts; discovery may have
// already marked them resolution_failed or left them as type="unknown".
func runSpecialist(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, r investigation.Resource, s *sink) {
	calls := callsForResource(r)
	key := r.Key()
	for _, c := range calls {
		if ctx.Err() != nil {
			return
		}
		emitFromTool(ctx, registry, client, key, c.name, c.args, c.source, s)
	}
}

// callsForResource returns the tool calls appropriate for r's type: at most
// three. Network resources get exactly one; queue, topic and identity
// resources get a second call only when the queueUrl metadata, the ARN or
// the action metadata is present; a workflow without an ARN, a gateway
// without a name or id, and an unknown type get none. At most one entry
// per tool name, per §4.6's "MUST call each tool at most once per
// resource".
func callsForResource(r investigation.Resource) []toolCall {
	switch r.Type {
	case "compute":
		return []toolCall{
			{"get_function_config", map[string]interface{}{"name": r.Name}, "lambda_config"},
			{"get_function_metrics", map[string]interface{}{"name": r.Name}, "lambda_metrics"},
			{"get_function_failed_invocations", map[string]interface{}{"name": r.Name}, "lambda_failed_invocations"},
		}

	case "gateway":
		apiID := gatewayAPIID(r)
		stage := gatewayStage(r)
		if apiID == "" {
			return nil
		}
		return []toolCall{
			{"get_stage_config", map[string]interface{}{"apiId": apiID, "stage": stage}, "apigateway_config"},
			{"gateway_get_metrics", map[string]interface{}{"apiId": apiID, "stage": stage}, "apigateway_metrics"},
			{"get_access_logs_parsed", map[string]interface{}{"apiId": apiID, "stage": stage}, "apigateway_logs"},
		}

	case "workflow":
		if r.ARN == "" {
			return nil
		}
		return []toolCall{
			{"get_definition", map[string]interface{}{"arn": r.ARN}, "workflow_definition"},
			{"workflow_get_metrics", map[string]interface{}{"arn": r.ARN}, "workflow_metrics"},
			{"list_recent_executions", map[string]interface{}{"arn": r.ARN, "statusFilter": "FAILED"}, "workflow_failed_executions"},
		}

	case "storage":
		return []toolCall{
			{"get_bucket_config", map[string]interface{}{"bucket": r.Name}, "s3_config"},
			{"get_bucket_metrics", map[string]interface{}{"bucket": r.Name}, "s3_metrics"},
		}

	case "queue":
		calls := []toolCall{
			{"get_queue_metrics", map[string]interface{}{"queueName": r.Name}, "queue_metrics"},
		}
		if url, ok := r.Metadata["queueUrl"].(string); ok && url != "" {
			calls = append(calls, toolCall{"get_queue_config", map[string]interface{}{"queueUrl": url}, "queue_config"})
		}
		return calls

	case "topic":
		calls := []toolCall{
			{"get_topic_metrics", map[string]interface{}{"topicName": r.Name}, "topic_metrics"},
		}
		if r.ARN != "" {
			calls = append(calls, toolCall{"get_topic_config", map[string]interface{}{"topicArn": r.ARN}, "topic_config"})
		}
		return calls

	case "eventbus":
		return []toolCall{
			{"get_rule_config", map[string]interface{}{"rule": r.Name, "busName": eventBusName(r)}, "eventbus_config"},
			{"get_bus_metrics", map[string]interface{}{"rule": r.Name}, "eventbus_metrics"},
		}

	case "relational":
		return []toolCall{
			{"get_relational_config", map[string]interface{}{"instanceId": r.Name}, "rds_config"},
			{"get_database_metrics", map[string]interface{}{"identifier": r.Name, "namespace": "AWS/RDS"}, "rds_metrics"},
		}

	case "keyvalue":
		return []toolCall{
			{"get_keyvalue_config", map[string]interface{}{"tableName": r.Name}, "dynamodb_config"},
			{"get_database_metrics", map[string]interface{}{"identifier": r.Name, "namespace": "AWS/DynamoDB"}, "dynamodb_metrics"},
		}

	case "network":
		return networkCalls(r)

	case "identity":
		calls := []toolCall{
			{"get_role_config", map[string]interface{}{"roleName": r.Name}, "iam_analysis"},
		}
		if action, ok := r.Metadata["action"].(string); ok && action != "" {
			calls = append(calls, toolCall{"check_permission", map[string]interface{}{"roleName": r.Name, "action": action}, "iam_permission_check"})
		}
		return calls

	default:
		return nil
	}
}

func networkCalls(r investigation.Resource) []toolCall {
	switch {
	case strings.HasPrefix(r.Name, "sg-"):
		return []toolCall{
			{"get_security_group_config", map[string]interface{}{"groupId": r.Name}, "security_group_config"},
		}
	case strings.HasPrefix(r.Name, "subnet-"):
		return []toolCall{
			{"get_subnet_config", map[string]interface{}{"subnetId": r.Name}, "subnet_config"},
		}
	default:
		return []toolCall{
			{"get_network_metrics", map[string]interface{}{"networkInterfaceId": r.Name}, "network_metrics"},
		}
	}
}

func gatewayAPIID(r investigation.Resource) string {
	if id, ok := r.Metadata["resolvedApiId"].(string); ok && id != "" {
		return id
	}
	return r.Name
}

// gatewayStage defaults to "prod" when discovery didn't carry a stage
// hint; the evidence collector has no other source for it.
func gatewayStage(r investigation.Resource) string {
	if stage, ok := r.Metadata["stage"].(string); ok && stage != "" {
		return stage
	}
	return "prod"
}

func eventBusName(r investigation.Resource) string {
	if name, ok := r.Metadata["busName"].(string); ok && name != "" {
		return name
	}
	return "default"
}

// emitFromTool calls one tool, decodes its JSON result, and maps it to a
// Fact. A decoded "error" key yields a single confidence=0.7 explanatory
// fact; otherwise the full observation is recorded at the specialist's
// stable source name.
func emitFromTool(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, resourceKey, toolName string, args map[string]interface{}, source string, s *sink) {
	decoded, ok := callTool(ctx, registry, client, toolName, args)
	if !ok {
		return
	}

	if errMsg, isErr := decoded["error"].(string); isErr && errMsg != "" {
		s.add(resourceKey, investigation.Fact{
			Source:     source + "_error",
			Content:    fmt.Sprintf("%s failed: %s", toolName, errMsg),
			Confidence: 0.7,
		})
		return
	}

	s.add(resourceKey, investigation.Fact{
		Source:     source,
		Content:    fmt.Sprintf("%s: %s", source, summarize(decoded)),
		Confidence: baselineObservationConfidence,
	})
}

func callTool(ctx context.Context, registry *tools.Registry, client *cloudclient.Client, name string, args map[string]interface{}) (map[string]interface{}, bool) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, false
	}

	result := registry.Execute(ctx, client, name, raw)

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(result), &decoded); err != nil {
		return nil, false
	}
	return decoded, true
}
