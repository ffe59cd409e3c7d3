package topictools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTopicConfigRequiresTopicARN(t *testing.T) {
	assert.Contains(t, GetTopicConfig(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetTopicMetricsRequiresTopicName(t *testing.T) {
	assert.Contains(t, GetTopicMetrics(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}
