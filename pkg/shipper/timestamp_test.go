package shipper_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/dhlexpress/pkg/shipper"
)

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"+00:00", 0},
		{"+02:00", 2 * time.Hour},
		{"-05:30", -(5*time.Hour + 30*time.Minute)},
		{"+14:00", 14 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := shipper.ParseOffset(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOffset_Invalid(t *testing.T) {
	for _, in := range []string{"", "02:00", "+2:00", "+02-00", "+0a:00", "+02:75", "UTC"} {
		_, err := shipper.ParseOffset(in)
		assert.Error(t, err, in)
	}
}

func TestTimestampFormatter_Offset(t *testing.T) {
	assert.Equal(t, "+00:00", shipper.NewTimestampFormatter(0).Offset())
	assert.Equal(t, "+01:00", shipper.NewTimestampFormatter(time.Hour).Offset())
	assert.Equal(t, "-03:30", shipper.NewTimestampFormatter(-(3*time.Hour + 30*time.Minute)).Offset())
}

func TestTimestampFormatter_ShipTimestamp(t *testing.T) {
	f := shipper.NewTimestampFormatter(time.Hour)

	got := f.ShipTimestamp(time.Date(2024, 3, 1, 9, 30, 42, 0, time.UTC))

	assert.Equal(t, "2024-03-01T10:35:00 GMT+01:00", got)
}

func TestTimestampFormatter_ShipTimestamp_CrossesMidnight(t *testing.T) {
	f := shipper.NewTimestampFormatter(-5 * time.Hour)

	got := f.ShipTimestamp(time.Date(2024, 3, 1, 4, 58, 0, 0, time.UTC))

	assert.Equal(t, "2024-03-01T00:03:00 GMT-05:00", got)
}

func TestTimestampFormatter_PickupTime(t *testing.T) {
	f := shipper.NewTimestampFormatter(2 * time.Hour)

	assert.Equal(t, "13:05", f.PickupTime(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)))
	assert.Equal(t, "00:04", f.PickupTime(time.Date(2024, 3, 1, 21, 59, 0, 0, time.UTC)))
}

func TestLocalTimestampFormatter(t *testing.T) {
	f := shipper.LocalTimestampFormatter()

	offset := f.Offset()

	require.Len(t, offset, 6)
	parsed, err := shipper.ParseOffset(offset)
	require.NoError(t, err)
	_, secs := time.Now().Zone()
	assert.Equal(t, time.Duration(secs)*time.Second, parsed)
}
