package tools

import (
	"github.com/arclight-labs/rca-engine/internal/tools/audittools"
	"github.com/arclight-labs/rca-engine/internal/tools/computetools"
	"github.com/arclight-labs/rca-engine/internal/tools/databasetools"
	"github.com/arclight-labs/rca-engine/internal/tools/eventbustools"
	"github.com/arclight-labs/rca-engine/internal/tools/gatewaytools"
	"github.com/arclight-labs/rca-engine/internal/tools/healthtools"
	"github.com/arclight-labs/rca-engine/internal/tools/identitytools"
	"github.com/arclight-labs/rca-engine/internal/tools/networktools"
	"github.com/arclight-labs/rca-engine/internal/tools/obstools"
	"github.com/arclight-labs/rca-engine/internal/tools/queuetools"
	"github.com/arclight-labs/rca-engine/internal/tools/storagetools"
	"github.com/arclight-labs/rca-engine/internal/tools/topictools"
	"github.com/arclight-labs/rca-engine/internal/tools/tracetools"
	"github.com/arclight-labs/rca-engine/internal/tools/workflowtools"
)

func schema(properties map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

// NewDefaultRegistry builds and returns the registry every investigation
// pipeline uses: one entry per tool function across every resource-kind
// family, plus the generic observability and optional health/audit tools.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(Definition{Name: "get_trace", Description: "Fetch a distributed trace by id with duration and segment summary.",
		InputSchema: schema(map[string]interface{}{"traceId": prop("trace id")}, "traceId"), Fn: tracetools.GetTrace})
	r.Register(Definition{Name: "get_all_resources_from_trace", Description: "Enumerate every resource referenced by a trace's segments.",
		InputSchema: schema(map[string]interface{}{"traceId": prop("trace id")}, "traceId"), Fn: tracetools.GetAllResourcesFromTrace})
	r.Register(Definition{Name: "get_service_graph", Description: "Fetch the service-to-service call graph over a time window.",
		InputSchema: schema(map[string]interface{}{"window": prop("lookback duration, e.g. 1h")}), Fn: tracetools.GetServiceGraph})
	r.Register(Definition{Name: "query_logs_by_trace_id", Description: "Filter a log group for entries referencing a trace id.",
		InputSchema: schema(map[string]interface{}{
			"traceId":  prop("trace id"),
			"logGroup": prop("log group name"),
			"window":   prop("lookback duration"),
		}, "traceId", "logGroup"), Fn: tracetools.QueryLogsByTraceID})

	r.Register(Definition{Name: "get_function_config", Description: "Fetch a compute function's configuration.",
		InputSchema: schema(map[string]interface{}{"name": prop("function name")}, "name"), Fn: computetools.GetFunctionConfig})
	r.Register(Definition{Name: "get_function_logs", Description: "Fetch recent logs for a compute function.",
		InputSchema: schema(map[string]interface{}{"name": prop("function name"), "window": prop("lookback duration")}, "name"), Fn: computetools.GetFunctionLogs})
	r.Register(Definition{Name: "get_function_metrics", Description: "Fetch invocation/error/duration/throttle metrics for a compute function.",
		InputSchema: schema(map[string]interface{}{"name": prop("function name"), "window": prop("lookback duration")}, "name"), Fn: computetools.GetFunctionMetrics})
	r.Register(Definition{Name: "get_function_failed_invocations", Description: "Fetch log entries matching failure patterns for a compute function.",
		InputSchema: schema(map[string]interface{}{"name": prop("function name"), "window": prop("lookback duration"), "limit": map[string]interface{}{"type": "integer"}}, "name"), Fn: computetools.GetFunctionFailedInvocations})
	r.Register(Definition{Name: "get_function_version_history", Description: "List recent published versions of a compute function.",
		InputSchema: schema(map[string]interface{}{"name": prop("function name"), "limit": map[string]interface{}{"type": "integer"}}, "name"), Fn: computetools.GetFunctionVersionHistory})

	r.Register(Definition{Name: "get_stage_config", Description: "Fetch an API gateway stage's configuration.",
		InputSchema: schema(map[string]interface{}{"apiId": prop("API id"), "stage": prop("stage name")}, "apiId", "stage"), Fn: gatewaytools.GetStageConfig})
	r.Register(Definition{Name: "get_access_logs_parsed", Description: "Fetch and parse API gateway access logs for a stage.",
		InputSchema: schema(map[string]interface{}{"apiId": prop("API id"), "stage": prop("stage name"), "window": prop("lookback duration"), "limit": map[string]interface{}{"type": "integer"}}, "apiId", "stage"), Fn: gatewaytools.GetAccessLogsParsed})
	r.Register(Definition{Name: "gateway_get_metrics", Description: "Fetch 4xx/5xx/latency/count metrics for an API gateway stage.",
		InputSchema: schema(map[string]interface{}{"apiId": prop("API id"), "stage": prop("stage name"), "window": prop("lookback duration")}, "apiId", "stage"), Fn: gatewaytools.GetMetrics})
	r.Register(Definition{Name: "resolve_api_id", Description: "Resolve a human-friendly API name to its API gateway id.",
		InputSchema: schema(map[string]interface{}{"nameOrId": prop("API name or id")}, "nameOrId"), Fn: gatewaytools.ResolveAPIID})
	r.Register(Definition{Name: "get_deployment_history", Description: "List recent deployments for an API gateway API.",
		InputSchema: schema(map[string]interface{}{"apiId": prop("API id"), "limit": map[string]interface{}{"type": "integer"}}, "apiId"), Fn: gatewaytools.GetDeploymentHistory})

	r.Register(Definition{Name: "get_definition", Description: "Fetch a workflow engine state machine's definition.",
		InputSchema: schema(map[string]interface{}{"arn": prop("state machine ARN")}, "arn"), Fn: workflowtools.GetDefinition})
	r.Register(Definition{Name: "get_execution_details", Description: "Fetch details of one workflow execution.",
		InputSchema: schema(map[string]interface{}{"executionArn": prop("execution ARN")}, "executionArn"), Fn: workflowtools.GetExecutionDetails})
	r.Register(Definition{Name: "list_recent_executions", Description: "List recent executions of a workflow state machine.",
		InputSchema: schema(map[string]interface{}{"arn": prop("state machine ARN"), "statusFilter": prop("optional status filter"), "limit": map[string]interface{}{"type": "integer"}}, "arn"), Fn: workflowtools.ListRecentExecutions})
	r.Register(Definition{Name: "workflow_get_metrics", Description: "Fetch execution success/failure/timeout metrics for a workflow state machine.",
		InputSchema: schema(map[string]interface{}{"arn": prop("state machine ARN"), "window": prop("lookback duration")}, "arn"), Fn: workflowtools.GetMetrics})
	r.Register(Definition{Name: "get_logs", Description: "Fetch recent logs for a workflow state machine.",
		InputSchema: schema(map[string]interface{}{"arn": prop("state machine ARN"), "window": prop("lookback duration")}, "arn"), Fn: workflowtools.GetLogs})

	r.Register(Definition{Name: "get_bucket_config", Description: "Fetch an object store bucket's versioning/encryption configuration.",
		InputSchema: schema(map[string]interface{}{"bucket": prop("bucket name")}, "bucket"), Fn: storagetools.GetBucketConfig})
	r.Register(Definition{Name: "get_bucket_metrics", Description: "Fetch request/error metrics for an object store bucket.",
		InputSchema: schema(map[string]interface{}{"bucket": prop("bucket name"), "window": prop("lookback duration")}, "bucket"), Fn: storagetools.GetBucketMetrics})

	r.Register(Definition{Name: "get_queue_config", Description: "Fetch a queue's attributes.",
		InputSchema: schema(map[string]interface{}{"queueUrl": prop("queue URL")}, "queueUrl"), Fn: queuetools.GetQueueConfig})
	r.Register(Definition{Name: "get_queue_metrics", Description: "Fetch depth/age/throughput metrics for a queue.",
		InputSchema: schema(map[string]interface{}{"queueName": prop("queue name"), "window": prop("lookback duration")}, "queueName"), Fn: queuetools.GetQueueMetrics})

	r.Register(Definition{Name: "get_topic_config", Description: "Fetch a topic's attributes.",
		InputSchema: schema(map[string]interface{}{"topicArn": prop("topic ARN")}, "topicArn"), Fn: topictools.GetTopicConfig})
	r.Register(Definition{Name: "get_topic_metrics", Description: "Fetch publish/delivery/failure metrics for a topic.",
		InputSchema: schema(map[string]interface{}{"topicName": prop("topic name"), "window": prop("lookback duration")}, "topicName"), Fn: topictools.GetTopicMetrics})

	r.Register(Definition{Name: "get_rule_config", Description: "Fetch an event bus rule's configuration.",
		InputSchema: schema(map[string]interface{}{"busName": prop("event bus name"), "rule": prop("rule name")}, "rule"), Fn: eventbustools.GetRuleConfig})
	r.Register(Definition{Name: "get_bus_metrics", Description: "Fetch invocation/failure/throttle metrics for an event bus rule.",
		InputSchema: schema(map[string]interface{}{"rule": prop("rule name"), "window": prop("lookback duration")}, "rule"), Fn: eventbustools.GetBusMetrics})

	r.Register(Definition{Name: "get_relational_config", Description: "Fetch a relational database instance's configuration.",
		InputSchema: schema(map[string]interface{}{"instanceId": prop("DB instance id")}, "instanceId"), Fn: databasetools.GetRelationalConfig})
	r.Register(Definition{Name: "get_keyvalue_config", Description: "Fetch a key-value table's configuration.",
		InputSchema: schema(map[string]interface{}{"tableName": prop("table name")}, "tableName"), Fn: databasetools.GetKeyValueConfig})
	r.Register(Definition{Name: "get_database_metrics", Description: "Fetch utilization/throttle metrics for a relational or key-value database.",
		InputSchema: schema(map[string]interface{}{
			"identifier": prop("instance id or table name"),
			"namespace":  prop("AWS/RDS or AWS/DynamoDB"),
			"window":     prop("lookback duration"),
		}, "identifier", "namespace"), Fn: databasetools.GetDatabaseMetrics})

	r.Register(Definition{Name: "get_security_group_config", Description: "Fetch a network security group's ingress rules.",
		InputSchema: schema(map[string]interface{}{"groupId": prop("security group id")}, "groupId"), Fn: networktools.GetSecurityGroupConfig})
	r.Register(Definition{Name: "get_subnet_config", Description: "Fetch a network subnet's configuration.",
		InputSchema: schema(map[string]interface{}{"subnetId": prop("subnet id")}, "subnetId"), Fn: networktools.GetSubnetConfig})
	r.Register(Definition{Name: "get_network_metrics", Description: "Fetch packet/byte metrics for a network interface.",
		InputSchema: schema(map[string]interface{}{"networkInterfaceId": prop("network interface id"), "window": prop("lookback duration")}, "networkInterfaceId"), Fn: networktools.GetNetworkMetrics})

	r.Register(Definition{Name: "get_role_config", Description: "Fetch an identity role's attached policies.",
		InputSchema: schema(map[string]interface{}{"roleName": prop("role name")}, "roleName"), Fn: identitytools.GetRoleConfig})
	r.Register(Definition{Name: "check_permission", Description: "Substring-match a role's policy documents for an action. Not authoritative; cap confidence at 0.95.",
		InputSchema: schema(map[string]interface{}{"roleName": prop("role name"), "action": prop("action, e.g. dynamodb:GetItem")}, "roleName", "action"), Fn: identitytools.CheckPermission})

	r.Register(Definition{Name: "get_log_events", Description: "Filter a log group for events in a time window, optionally by pattern.",
		InputSchema: schema(map[string]interface{}{
			"logGroup":      prop("log group name"),
			"filterPattern": prop("optional CloudWatch Logs filter pattern"),
			"window":        prop("lookback duration"),
			"limit":         map[string]interface{}{"type": "integer"},
		}, "logGroup"), Fn: obstools.GetLogEvents})
	r.Register(Definition{Name: "get_metric_statistics", Description: "Fetch arbitrary metric statistics for a namespace/metric/dimension set.",
		InputSchema: schema(map[string]interface{}{
			"namespace":  prop("metric namespace"),
			"metricName": prop("metric name"),
			"window":     prop("lookback duration"),
			"statistic":  prop("Average, Sum, Maximum, or Minimum"),
		}, "namespace", "metricName"), Fn: obstools.GetMetricStatistics})

	r.Register(Definition{Name: "check_service_health", Description: "Optional: check the managed-service health dashboard for open events.",
		InputSchema: schema(map[string]interface{}{"serviceKey": prop("service key"), "region": prop("optional region")}, "serviceKey"), Fn: healthtools.CheckServiceHealth})
	r.Register(Definition{Name: "get_recent_audit_events", Description: "Optional: fetch recent audit-trail events referencing a resource.",
		InputSchema: schema(map[string]interface{}{"resourceName": prop("resource name"), "window": prop("lookback duration")}, "resourceName"), Fn: audittools.GetRecentAuditEvents})

	return r
}
