package computetools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetFunctionConfigRequiresName(t *testing.T) {
	assert.Contains(t, GetFunctionConfig(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetFunctionLogsRequiresName(t *testing.T) {
	assert.Contains(t, GetFunctionLogs(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetFunctionMetricsRequiresName(t *testing.T) {
	assert.Contains(t, GetFunctionMetrics(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetFunctionFailedInvocationsRequiresName(t *testing.T) {
	assert.Contains(t, GetFunctionFailedInvocations(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetFunctionVersionHistoryRequiresName(t *testing.T) {
	assert.Contains(t, GetFunctionVersionHistory(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestParseWindowFallsBackToOneHour(t *testing.T) {
	assert.Equal(t, time.Hour, parseWindow(""))
}
