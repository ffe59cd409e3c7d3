package eventbustools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRuleConfigRequiresRule(t *testing.T) {
	assert.Contains(t, GetRuleConfig(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetBusMetricsRequiresRule(t *testing.T) {
	assert.Contains(t, GetBusMetrics(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}
