package rcaerrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindToHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInput, http.StatusBadRequest},
		{KindCredential, http.StatusUnauthorized},
		{KindInsufficientData, http.StatusUnprocessableEntity},
		{KindTool, http.StatusBadGateway},
		{KindLLM, http.StatusBadGateway},
		{KindDeadline, http.StatusGatewayTimeout},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := &Error{Kind: tt.kind, Message: "boom"}
			assert.Equal(t, tt.want, err.HTTPStatus())
		})
	}
}

func TestWrapPreservesExistingError(t *testing.T) {
	original := Input("parser", "bad trace id")
	wrapped := Wrap("evidence", original)
	assert.Same(t, original, wrapped)
}

func TestWrapClassifiesGenericError(t *testing.T) {
	generic := errors.New("connection refused")
	wrapped := Wrap("cloudclient", generic)

	assert.Equal(t, KindInternal, wrapped.Kind)
	assert.Equal(t, generic, wrapped.Cause)
	assert.ErrorIs(t, wrapped, generic)
}

func TestIsMatchesKind(t *testing.T) {
	err := Deadline("collector", "evidence collection timed out")
	assert.True(t, Is(err, KindDeadline))
	assert.False(t, Is(err, KindInput))
}

func TestWithDetailAttachesContext(t *testing.T) {
	err := Tool("computetools", "invoke_lambda failed")
	err.WithDetail("functionName", "billing-worker")

	assert.Equal(t, "billing-worker", err.Details["functionName"])
}
