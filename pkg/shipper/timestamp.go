package shipper

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

const (
	shipTimestampLayout = "2006-01-02T15:04:05 GMT"
	pickupTimeLayout    = "15:04"

	// timestampPadding absorbs clock and transmission skew against the
	// carrier's acceptance window.
	timestampPadding = 5 * time.Minute
)

// TimestampFormatter renders times in the carrier's textual formats.
//
// The UTC offset is resolved once, either injected at construction or taken
// lazily from the process time zone on first use.
type TimestampFormatter struct {
	once   sync.Once
	fixed  bool
	offset time.Duration
	zone   *time.Location
}

// NewTimestampFormatter returns a formatter using a fixed UTC offset.
func NewTimestampFormatter(offset time.Duration) *TimestampFormatter {
	return &TimestampFormatter{fixed: true, offset: offset}
}

// LocalTimestampFormatter returns a formatter that uses the process time zone
// offset observed on first use.
func LocalTimestampFormatter() *TimestampFormatter {
	return &TimestampFormatter{}
}

// ParseOffset parses a "+HH:MM" / "-HH:MM" offset.
func ParseOffset(s string) (time.Duration, error) {
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, fmt.Errorf("invalid UTC offset %q, want ±HH:MM", s)
	}
	hours, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, fmt.Errorf("invalid UTC offset %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(s[4:6])
	if err != nil || minutes >= 60 {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if s[0] == '-' {
		d = -d
	}
	return d, nil
}

func (f *TimestampFormatter) resolve() {
	f.once.Do(func() {
		if !f.fixed {
			_, secs := time.Now().Zone()
			f.offset = time.Duration(secs) * time.Second
		}
		f.zone = time.FixedZone("", int(f.offset/time.Second))
	})
}

// Offset returns the UTC offset as "±HH:MM".
func (f *TimestampFormatter) Offset() string {
	f.resolve()
	d := f.offset
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	return fmt.Sprintf("%s%02d:%02d", sign, int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// ShipTimestamp renders the padded ship time with seconds zeroed and the UTC
// offset appended, e.g. "2024-03-01T10:35:00 GMT+01:00".
func (f *TimestampFormatter) ShipTimestamp(t time.Time) string {
	f.resolve()
	padded := t.Add(timestampPadding).In(f.zone).Truncate(time.Minute)
	return padded.Format(shipTimestampLayout) + f.Offset()
}

// PickupTime renders the padded pickup time as "HH:MM".
func (f *TimestampFormatter) PickupTime(t time.Time) string {
	f.resolve()
	return t.Add(timestampPadding).In(f.zone).Format(pickupTimeLayout)
}
