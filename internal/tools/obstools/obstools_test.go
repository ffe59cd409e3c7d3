package obstools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogEventsRequiresLogGroup(t *testing.T) {
	assert.Contains(t, GetLogEvents(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetMetricStatisticsRequiresNamespaceAndMetricName(t *testing.T) {
	assert.Contains(t, GetMetricStatistics(context.Background(), nil, json.RawMessage(`{"namespace":"AWS/Lambda"}`)), `"error"`)
}
