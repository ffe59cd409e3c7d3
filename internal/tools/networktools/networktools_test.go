package networktools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSecurityGroupConfigRequiresGroupID(t *testing.T) {
	assert.Contains(t, GetSecurityGroupConfig(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetSubnetConfigRequiresSubnetID(t *testing.T) {
	assert.Contains(t, GetSubnetConfig(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetNetworkMetricsRequiresNetworkInterfaceID(t *testing.T) {
	assert.Contains(t, GetNetworkMetrics(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}
