package parser

import (
	"strconv"
	"time"

	dps "github.com/markusmobius/go-dateparser"

	"github.com/arclight-labs/rca-engine/internal/investigation"
	"github.com/arclight-labs/rca-engine/internal/rcaerrors"
)

// parseTimeRange converts start/end strings, each either a Unix timestamp
// or a human-readable date, into an investigation.TimeRange.
func parseTimeRange(startStr, endStr string) (*investigation.TimeRange, error) {
	if startStr == "" && endStr == "" {
		return nil, nil
	}

	start, err := parseTimestamp(startStr, "start")
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp(endStr, "end")
	if err != nil {
		return nil, err
	}

	return &investigation.TimeRange{Start: start, End: end}, nil
}

// parseTimestamp parses a Unix timestamp or a human-readable date and
// returns it as a UTC time. An empty string returns the zero time.
func parseTimestamp(timestampStr, fieldName string) (time.Time, error) {
	if timestampStr == "" {
		return time.Time{}, nil
	}

	if unixSeconds, err := strconv.ParseInt(timestampStr, 10, 64); err == nil {
		if unixSeconds < 0 {
			return time.Time{}, rcaerrors.Input("parser", "%s timestamp must be non-negative", fieldName)
		}
		return time.Unix(unixSeconds, 0).UTC(), nil
	}

	parser := dps.Parser{}
	cfg := &dps.Configuration{PreferredDateSource: dps.CurrentPeriod}

	parsed, err := parser.Parse(cfg, timestampStr)
	if err != nil {
		return time.Time{}, rcaerrors.Input("parser", "%s must be a valid Unix timestamp or human-readable date: %v", fieldName, err)
	}
	if parsed.IsZero() {
		return time.Time{}, rcaerrors.Input("parser", "%s could not be parsed as a valid date: %s", fieldName, timestampStr)
	}

	return parsed.Time.UTC(), nil
}
