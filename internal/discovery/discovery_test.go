package discovery

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/rca-engine/internal/cloudclient"
	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

func newTestRegistry() *tools.Registry {
	return tools.NewRegistry()
}

func registerStub(r *tools.Registry, name string, fn tools.Func) {
	r.Register(tools.Definition{Name: name, Fn: fn})
}

func jsonFn(payload string) tools.Func {
	return func(ctx context.Context, client *cloudclient.Client, args json.RawMessage) string {
		return payload
	}
}

func TestDiscoverSeedsFromPrimaryTargets(t *testing.T) {
	r := newTestRegistry()
	in := &investigation.ParsedInputs{
		PrimaryTargets: []investigation.Resource{
			{Type: "compute", Name: "billing-worker"},
		},
	}

	out, err := Discover(context.Background(), r, nil, in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "billing-worker", out[0].Name)
}

func TestDiscoverDedupesByARN(t *testing.T) {
	r := newTestRegistry()
	in := &investigation.ParsedInputs{
		PrimaryTargets: []investigation.Resource{
			{Type: "compute", Name: "billing-worker", ARN: "arn:aws:lambda:us-east-1:123456789012:function:billing-worker"},
			{Type: "compute", Name: "billing-worker", ARN: "arn:aws:lambda:us-east-1:123456789012:function:billing-worker"},
		},
	}

	out, err := Discover(context.Background(), r, nil, in)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestDiscoverDedupesByTypeAndName(t *testing.T) {
	r := newTestRegistry()
	in := &investigation.ParsedInputs{
		PrimaryTargets: []investigation.Resource{
			{Type: "queue", Name: "orders-queue"},
			{Type: "queue", Name: "orders-queue"},
			{Type: "queue", Name: "other-queue"},
		},
	}

	out, err := Discover(context.Background(), r, nil, in)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestDiscoverInsufficientDataWhenEmpty(t *testing.T) {
	r := newTestRegistry()
	in := &investigation.ParsedInputs{}

	_, err := Discover(context.Background(), r, nil, in)
	require.Error(t, err)
}

func TestDiscoverAppendsResourcesFromTrace(t *testing.T) {
	r := newTestRegistry()
	registerStub(r, "get_all_resources_from_trace", jsonFn(`{"resources": [{"type": "queue", "name": "orders-queue"}, {"type": "compute", "name": "billing-worker"}]}`))

	in := &investigation.ParsedInputs{TraceIDs: []string{"1-5f84c7a1-1234567890abcdef12345678"}}
	out, err := Discover(context.Background(), r, nil, in)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "trace:1-5f84c7a1-1234567890abcdef12345678", out[0].DiscoveredVia)
}

func TestDiscoverDedupesTraceResourcesAgainstPrimaryTargets(t *testing.T) {
	r := newTestRegistry()
	registerStub(r, "get_all_resources_from_trace", jsonFn(`{"resources": [{"type": "compute", "name": "billing-worker"}]}`))

	in := &investigation.ParsedInputs{
		PrimaryTargets: []investigation.Resource{{Type: "compute", Name: "billing-worker"}},
		TraceIDs:       []string{"1-5f84c7a1-1234567890abcdef12345678"},
	}
	out, err := Discover(context.Background(), r, nil, in)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestDiscoverContinuesWhenTraceToolFails(t *testing.T) {
	r := newTestRegistry()
	registerStub(r, "get_all_resources_from_trace", jsonFn(`{"error": "trace not found"}`))

	in := &investigation.ParsedInputs{TraceIDs: []string{"1-5f84c7a1-1234567890abcdef12345678"}}
	out, err := Discover(context.Background(), r, nil, in)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDiscoverResolvesGatewayName(t *testing.T) {
	r := newTestRegistry()
	registerStub(r, "resolve_api_id", jsonFn(`{"apiId": "abc1234567"}`))

	in := &investigation.ParsedInputs{
		PrimaryTargets: []investigation.Resource{{Type: "gateway", Name: "checkout-api"}},
	}
	out, err := Discover(context.Background(), r, nil, in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "abc1234567", out[0].Metadata["resolvedApiId"])
}

func TestDiscoverMarksResolutionFailedOnGatewayError(t *testing.T) {
	r := newTestRegistry()
	registerStub(r, "resolve_api_id", jsonFn(`{"error": "api not found"}`))

	in := &investigation.ParsedInputs{
		PrimaryTargets: []investigation.Resource{{Type: "gateway", Name: "unknown-api"}},
	}
	out, err := Discover(context.Background(), r, nil, in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, true, out[0].Metadata["resolution_failed"])
}
