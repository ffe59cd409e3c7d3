package llmprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnthropicProviderNameAndModel(t *testing.T) {
	p := NewAnthropicProvider("test-key", "claude-sonnet-4-5")
	assert.Equal(t, "anthropic", p.Name())
	assert.Equal(t, "claude-sonnet-4-5", p.Model())
}

func TestBedrockProviderNameAndModel(t *testing.T) {
	p := NewBedrockProvider(nil, "anthropic.claude-sonnet-4-5-v1:0")
	assert.Equal(t, "bedrock", p.Name())
	assert.Equal(t, "anthropic.claude-sonnet-4-5-v1:0", p.Model())
}

func TestProvidersSatisfyInterface(t *testing.T) {
	var _ Provider = NewAnthropicProvider("k", "m")
	var _ Provider = NewBedrockProvider(nil, "m")
	var _ Provider = NewMockProvider()
}
