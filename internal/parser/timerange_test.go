package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampUnixSeconds(t *testing.T) {
	got, err := parseTimestamp("1700000000", "start")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), got.Unix())
}

func TestParseTimestampEmptyReturnsZero(t *testing.T) {
	got, err := parseTimestamp("", "start")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestParseTimestampNegativeUnixIsError(t *testing.T) {
	_, err := parseTimestamp("-5", "start")
	assert.Error(t, err)
}

func TestParseTimeRangeBothEmptyReturnsNil(t *testing.T) {
	tr, err := parseTimeRange("", "")
	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestParseTimeRangeUnixBounds(t *testing.T) {
	tr, err := parseTimeRange("1700000000", "1700003600")
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), tr.Start)
	assert.Equal(t, time.Unix(1700003600, 0).UTC(), tr.End)
}
