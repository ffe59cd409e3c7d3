package storagetools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBucketConfigRequiresBucket(t *testing.T) {
	assert.Contains(t, GetBucketConfig(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetBucketMetricsRequiresBucket(t *testing.T) {
	assert.Contains(t, GetBucketMetrics(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}
