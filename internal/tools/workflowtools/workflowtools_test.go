package workflowtools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDefinitionRequiresArn(t *testing.T) {
	assert.Contains(t, GetDefinition(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetExecutionDetailsRequiresExecutionArn(t *testing.T) {
	assert.Contains(t, GetExecutionDetails(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestListRecentExecutionsRequiresArn(t *testing.T) {
	assert.Contains(t, ListRecentExecutions(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetMetricsRequiresArn(t *testing.T) {
	assert.Contains(t, GetMetrics(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetLogsRequiresArn(t *testing.T) {
	assert.Contains(t, GetLogs(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestArnSuffixExtractsAfterLastColon(t *testing.T) {
	assert.Equal(t, "my-state-machine", arnSuffix("arn:aws:states:us-east-1:123456789012:stateMachine:my-state-machine"))
	assert.Equal(t, "no-colon", arnSuffix("no-colon"))
}
