package databasetools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRelationalConfigRequiresInstanceID(t *testing.T) {
	assert.Contains(t, GetRelationalConfig(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetKeyValueConfigRequiresTableName(t *testing.T) {
	assert.Contains(t, GetKeyValueConfig(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}

func TestGetDatabaseMetricsRequiresIdentifierAndNamespace(t *testing.T) {
	assert.Contains(t, GetDatabaseMetrics(context.Background(), nil, json.RawMessage(`{"identifier":"x"}`)), `"error"`)
}
