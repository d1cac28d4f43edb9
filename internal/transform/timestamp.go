package transform

import (
	"fmt"
	"time"

	"iot-connector/internal/common/errors"
)

// isoMillis is the canonical timestamp layout: ISO-8601 UTC with exactly
// millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z"

// FormatMillis renders a millisecond Unix epoch as a canonical timestamp
func FormatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(isoMillis)
}

// ParseToMillis parses a canonical timestamp back to a millisecond epoch.
// FormatMillis and ParseToMillis are exact inverses for any ms >= 0.
func ParseToMillis(s string) (int64, error) {
	t, err := time.Parse(isoMillis, s)
	if err != nil {
		// Accept full RFC 3339 as a fallback for caller-supplied bounds
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return 0, errors.ValidationError(fmt.Sprintf("timestamp %q is not ISO-8601", s))
		}
	}
	return t.UnixMilli(), nil
}

// normalizeTimestamp converts a raw timestamp field to canonical form. The
// platform emits millisecond epochs as JSON numbers; already-formatted
// strings pass through untouched.
func normalizeTimestamp(v interface{}) (string, bool) {
	switch ts := v.(type) {
	case float64:
		return FormatMillis(int64(ts)), true
	case string:
		if ts == "" {
			return "", false
		}
		return ts, true
	default:
		return "", false
	}
}
