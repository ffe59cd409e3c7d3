package llmprovider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderReturnsScriptedResponsesInOrder(t *testing.T) {
	p := NewMockProvider(`{"first": true}`, `{"second": true}`)

	got, err := p.Complete(context.Background(), "prompt one", 0.2, 512)
	require.NoError(t, err)
	assert.Equal(t, `{"first": true}`, got)

	got, err = p.Complete(context.Background(), "prompt two", 0.2, 512)
	require.NoError(t, err)
	assert.Equal(t, `{"second": true}`, got)

	assert.Equal(t, []string{"prompt one", "prompt two"}, p.Calls())
}

func TestMockProviderErrorsWhenResponsesExhausted(t *testing.T) {
	p := NewMockProvider(`{"only": true}`)
	_, err := p.Complete(context.Background(), "p1", 0, 1)
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "p2", 0, 1)
	assert.Error(t, err)
}

func TestMockProviderFailAtReturnsScriptedError(t *testing.T) {
	wantErr := errors.New("rate limited")
	p := NewMockProvider(`{"a": 1}`, `{"b": 2}`).FailAt(1, wantErr)

	_, err := p.Complete(context.Background(), "p1", 0, 1)
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "p2", 0, 1)
	assert.Equal(t, wantErr, err)
}

func TestMockProviderNameAndModel(t *testing.T) {
	p := NewMockProvider()
	assert.Equal(t, "mock", p.Name())
	assert.NotEmpty(t, p.Model())
}
