package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iot-connector/internal/common/errors"
)

func TestFormatMillis(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{"known epoch", 1700000000000, "2023-11-14T22:13:20.000Z"},
		{"zero", 0, "1970-01-01T00:00:00.000Z"},
		{"sub-second precision kept", 1700000000123, "2023-11-14T22:13:20.123Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMillis(tt.ms))
		})
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, ms := range []int64{0, 1, 999, 1000, 1700000000000, 1700000000123, 4102444800000} {
		got, err := ParseToMillis(FormatMillis(ms))
		require.NoError(t, err)
		assert.Equal(t, ms, got)
	}
}

func TestParseToMillis_Invalid(t *testing.T) {
	_, err := ParseToMillis("not a timestamp")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestParseToMillis_RFC3339Fallback(t *testing.T) {
	got, err := ParseToMillis("2023-11-14T22:13:20Z")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), got)
}
