// Package codec holds the wire converters for the time-flavored primitives.
// The resolver wires these into field descriptors; they are also usable
// standalone.
package codec

import "time"

// ParseRFC3339 accepts RFC3339 and RFC3339Nano timestamps.
func ParseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatRFC3339 normalizes to UTC and formats using RFC3339Nano (Go trims
// trailing zeros).
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

const dateLayout = "2006-01-02"

// ParseDate accepts a calendar date in "2006-01-02" form. The result carries
// UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders the date portion of t in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
