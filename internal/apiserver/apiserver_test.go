package apiserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arclight-labs/rca-engine/internal/config"
	"github.com/arclight-labs/rca-engine/internal/llmprovider"
	"github.com/arclight-labs/rca-engine/internal/pipeline"
	"github.com/arclight-labs/rca-engine/internal/tools"
)

func testServer() *Server {
	cfg := config.Defaults()
	cfg.AWSRegion = "us-east-1"
	p := pipeline.New(cfg, tools.NewRegistry(), llmprovider.NewMockProvider(), nil)
	return New(cfg, p)
}

func doRequest(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.corsMiddleware(s.router).ServeHTTP(rec, req)
	return rec
}

func TestHandlePingReturnsOK(t *testing.T) {
	rec := doRequest(testServer(), http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleHealthReturnsServiceInfo(t *testing.T) {
	rec := doRequest(testServer(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, serviceName, body["service"])
	assert.Equal(t, version, body["version"])
}

func TestHandleStatusIncludesEnvironmentAndEndpoints(t *testing.T) {
	rec := doRequest(testServer(), http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "environment")
	assert.Contains(t, body, "endpoints")
}

func TestHandleInvocationsRejectsMalformedJSON(t *testing.T) {
	rec := doRequest(testServer(), http.MethodPost, "/invocations", []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body invocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestHandleInvocationsRejectsMissingInput(t *testing.T) {
	rec := doRequest(testServer(), http.MethodPost, "/invocations", []byte(`{"investigation":{}}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body invocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
}

func TestHandleInvocationsReturnsInsufficientDataAsSuccess(t *testing.T) {
	payload := []byte(`{"investigation":{"input":"nothing in particular happened today"}}`)
	rec := doRequest(testServer(), http.MethodPost, "/invocations", payload)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body invocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Investigation)
	assert.Equal(t, "insufficient_data", body.Investigation.Status)
}

func TestHandleInvocationsCompletesWithExplicitTarget(t *testing.T) {
	payload := []byte(`{"investigation":{"input":"the checkout-service lambda arn:aws:lambda:us-east-1:111122223333:function:checkout-service is throwing AccessDenied"}}`)
	rec := doRequest(testServer(), http.MethodPost, "/invocations", payload)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body invocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Investigation)
	assert.Equal(t, "completed", body.Investigation.Status)
	assert.NotNil(t, body.Severity)
}

func TestRoutesEnforceMethod(t *testing.T) {
	rec := doRequest(testServer(), http.MethodGet, "/invocations", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(testServer(), http.MethodPost, "/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
