package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
)

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "echo", Fn: func(ctx context.Context, c *cloudclient.Client, args json.RawMessage) string {
		return string(args)
	}})

	def, ok := r.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", def.Name)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "dup", Fn: func(ctx context.Context, c *cloudclient.Client, args json.RawMessage) string { return "" }})

	assert.Panics(t, func() {
		r.Register(Definition{Name: "dup", Fn: func(ctx context.Context, c *cloudclient.Client, args json.RawMessage) string { return "" }})
	})
}

func TestExecuteUnknownTool(t *testing.T) {
	r := NewRegistry()
	result := r.Execute(context.Background(), nil, "missing", nil)
	assert.Contains(t, result, `"error"`)
	assert.Contains(t, result, "missing")
}

func TestExecuteRecoversFromPanic(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "boom", Fn: func(ctx context.Context, c *cloudclient.Client, args json.RawMessage) string {
		panic("unexpected")
	}})

	result := r.Execute(context.Background(), nil, "boom", nil)
	assert.Contains(t, result, `"error"`)
	assert.Contains(t, result, "panicked")
}

func TestExecuteTruncatesOversizeResult(t *testing.T) {
	r := NewRegistry()
	huge := strings.Repeat("x", MaxResultBytes*2)
	r.Register(Definition{Name: "huge", Fn: func(ctx context.Context, c *cloudclient.Client, args json.RawMessage) string {
		return huge
	}})

	result := r.Execute(context.Background(), nil, "huge", nil)
	assert.LessOrEqual(t, len(result), MaxResultBytes+1024)
	assert.Contains(t, result, `"truncated":true`)
}

func TestListReturnsEveryDefinition(t *testing.T) {
	r := NewRegistry()
	r.Register(Definition{Name: "a", Fn: func(ctx context.Context, c *cloudclient.Client, args json.RawMessage) string { return "" }})
	r.Register(Definition{Name: "b", Fn: func(ctx context.Context, c *cloudclient.Client, args json.RawMessage) string { return "" }})

	assert.Len(t, r.List(), 2)
}

func TestNewDefaultRegistryRegistersEveryFamily(t *testing.T) {
	r := NewDefaultRegistry()
	for _, name := range []string{
		"get_trace", "get_function_config", "get_stage_config", "resolve_api_id",
		"get_definition", "gateway_get_metrics", "workflow_get_metrics",
		"get_bucket_config", "get_queue_config", "get_topic_config", "get_rule_config",
		"get_relational_config", "get_keyvalue_config", "get_security_group_config",
		"get_role_config", "check_permission", "get_log_events", "get_metric_statistics",
		"check_service_health", "get_recent_audit_events",
	} {
		_, ok := r.Get(name)
		assert.True(t, ok, "expected tool %q to be registered", name)
	}
}
