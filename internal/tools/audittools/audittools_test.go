package audittools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRecentAuditEventsRequiresResourceName(t *testing.T) {
	assert.Contains(t, GetRecentAuditEvents(context.Background(), nil, json.RawMessage(`{}`)), `"error"`)
}
