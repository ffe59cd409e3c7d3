package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevelFlagsDefaultOnly(t *testing.T) {
	level, packages, err := parseLogLevelFlags([]string{"debug"})
	require.NoError(t, err)
	assert.Equal(t, "debug", level)
	assert.Empty(t, packages)
}

func TestParseLogLevelFlagsPerPackageOverride(t *testing.T) {
	level, packages, err := parseLogLevelFlags([]string{"warn", "evidence=debug", "discovery=error"})
	require.NoError(t, err)
	assert.Equal(t, "warn", level)
	assert.Equal(t, "debug", packages["evidence"])
	assert.Equal(t, "error", packages["discovery"])
}

func TestParseLogLevelFlagsDefaultsToInfo(t *testing.T) {
	level, _, err := parseLogLevelFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "info", level)
}

func TestParseLogLevelFlagsRejectsUnknownLevel(t *testing.T) {
	_, _, err := parseLogLevelFlags([]string{"verbose"})
	assert.Error(t, err)
}

func TestParseLogLevelFlagsRejectsUnknownPackageLevel(t *testing.T) {
	_, _, err := parseLogLevelFlags([]string{"info", "evidence=verbose"})
	assert.Error(t, err)
}

func TestValidateLogLevelAcceptsKnownLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "fatal"} {
		assert.NoError(t, validateLogLevel(level))
	}
}

func TestValidateLogLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, validateLogLevel("trace"))
}
