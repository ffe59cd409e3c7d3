package logging

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevelRoundTrip(t *testing.T) {
	lvl, err := parseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, Debug, lvl)

	_, err = parseLevel("verbose")
	assert.Error(t, err)
}

func TestEffectiveLevelFallsBackToDefault(t *testing.T) {
	require.NoError(t, Initialize("warn", nil))
	assert.Equal(t, Warn, effectiveLevel("evidence"))
}

func TestEffectiveLevelExactOverride(t *testing.T) {
	require.NoError(t, Initialize("info", map[string]string{"evidence": "debug"}))
	assert.Equal(t, Debug, effectiveLevel("evidence"))
	assert.Equal(t, Info, effectiveLevel("hypothesis"))
}

func TestEffectiveLevelWildcardOverride(t *testing.T) {
	require.NoError(t, Initialize("info", map[string]string{"tools.*": "debug"}))
	assert.Equal(t, Debug, effectiveLevel("tools.computetools"))
	assert.Equal(t, Info, effectiveLevel("evidence"))
}

func TestLoggerSuppressesBelowLevel(t *testing.T) {
	require.NoError(t, Initialize("warn", nil))

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	Get("parser").Info("should not appear")
	assert.Empty(t, buf.String())

	Get("parser").Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestWithFieldsAppendsToEveryLine(t *testing.T) {
	require.NoError(t, Initialize("debug", nil))

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	Get("evidence").With(F("runId", "abc123")).Info("collecting")
	assert.Contains(t, buf.String(), "runId=abc123")
}
