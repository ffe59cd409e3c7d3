package gatewaytools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIIDShortCircuitsOnIDPattern(t *testing.T) {
	raw, err := json.Marshal(map[string]string{"nameOrId": "abc1234567"})
	require.NoError(t, err)

	result := ResolveAPIID(context.Background(), nil, raw)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result), &decoded))
	assert.Equal(t, "abc1234567", decoded["apiId"])
	assert.Nil(t, decoded["cached"])
}

func TestResolveAPIIDUsesCacheBeforeClient(t *testing.T) {
	idCache.Add("checkout-api", "cachedid01")

	raw, err := json.Marshal(map[string]string{"nameOrId": "checkout-api"})
	require.NoError(t, err)

	// client is nil: a cache miss would panic on client.APIGateway(), so a
	// clean result here proves the cache was consulted first.
	result := ResolveAPIID(context.Background(), nil, raw)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result), &decoded))
	assert.Equal(t, "cachedid01", decoded["apiId"])
	assert.Equal(t, true, decoded["cached"])
}

func TestResolveAPIIDRequiresNameOrID(t *testing.T) {
	result := ResolveAPIID(context.Background(), nil, json.RawMessage(`{}`))
	assert.Contains(t, result, `"error"`)
}

func TestAPIIDPatternMatchesTenCharLowercaseAlnum(t *testing.T) {
	assert.True(t, apiIDPattern.MatchString("abcd123456"))
	assert.False(t, apiIDPattern.MatchString("checkout-api"))
	assert.False(t, apiIDPattern.MatchString("ABCD123456"))
	assert.False(t, apiIDPattern.MatchString("short1"))
}
