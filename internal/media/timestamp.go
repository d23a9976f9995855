package media

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Timestamp is a point in time with explicit calendar fields, as read from
// or written to embedded metadata. Offset is in minutes east of UTC and is
// only meaningful when HasOffset is set.
type Timestamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int

	HasOffset bool
	Offset    int
}

// exifDateRe matches "YYYY:MM:DD HH:MM:SS" with an optional numeric offset.
// exiftool prints file-system dates with a colon inside the offset
// ("+01:00"); the colon is optional so both spellings parse.
var exifDateRe = regexp.MustCompile(
	`^(\d{4}):(\d{2}):(\d{2}) (\d{2}):(\d{2}):(\d{2})(?:(Z)|([+-])(\d{2}):?(\d{2}))?$`)

// ParseDate parses an exiftool date/time value. Any string that does not
// follow the layout exactly is rejected with a *DateFormatError.
func ParseDate(s string) (Timestamp, error) {
	m := exifDateRe.FindStringSubmatch(s)
	if m == nil {
		return Timestamp{}, &DateFormatError{Value: s, Reason: "does not match YYYY:MM:DD HH:MM:SS[±HHMM]"}
	}

	n := make([]int, 6)
	for i := range n {
		n[i], _ = strconv.Atoi(m[i+1])
	}
	ts := Timestamp{Year: n[0], Month: n[1], Day: n[2], Hour: n[3], Minute: n[4], Second: n[5]}

	switch {
	case ts.Month < 1 || ts.Month > 12:
		return Timestamp{}, &DateFormatError{Value: s, Reason: "month out of range"}
	case ts.Day < 1 || ts.Day > 31:
		return Timestamp{}, &DateFormatError{Value: s, Reason: "day out of range"}
	case ts.Hour > 23 || ts.Minute > 59 || ts.Second > 59:
		return Timestamp{}, &DateFormatError{Value: s, Reason: "time of day out of range"}
	}

	if m[7] == "Z" {
		ts.HasOffset = true
	} else if m[8] != "" {
		hh, _ := strconv.Atoi(m[9])
		mm, _ := strconv.Atoi(m[10])
		ts.HasOffset = true
		ts.Offset = hh*60 + mm
		if m[8] == "-" {
			ts.Offset = -ts.Offset
		}
	}
	return ts, nil
}

// Format renders the timestamp in the layout used for metadata writes,
// without any offset.
func (t Timestamp) Format() string {
	return fmt.Sprintf("%04d:%02d:%02d %02d:%02d:%02d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// String renders the timestamp with its offset, when one is known.
func (t Timestamp) String() string {
	if !t.HasOffset {
		return t.Format()
	}
	sign, off := '+', t.Offset
	if off < 0 {
		sign, off = '-', -off
	}
	return fmt.Sprintf("%s%c%02d:%02d", t.Format(), sign, off/60, off%60)
}

// Time converts the timestamp to a time.Time. Timestamps without an offset
// are interpreted in UTC.
func (t Timestamp) Time() time.Time {
	loc := time.UTC
	if t.HasOffset && t.Offset != 0 {
		loc = time.FixedZone("", t.Offset*60)
	}
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, 0, loc)
}
