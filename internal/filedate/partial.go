// Package filedate infers capture dates from filenames.
package filedate

import (
	"fmt"

	"media-dater/internal/media"
)

// Precision is how much of a date a filename carried.
type Precision int

// The numeric value of each precision is the arity of the tuple it stands
// for: (year, order), (year, month, order), (year, month, day, order) and
// the full six-field timestamp.
const (
	PrecisionYear  Precision = 2
	PrecisionMonth Precision = 3
	PrecisionDay   Precision = 4
	PrecisionFull  Precision = 6
)

func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	case PrecisionFull:
		return "full"
	default:
		return fmt.Sprintf("Precision(%d)", int(p))
	}
}

// PartialDate is a date known to some precision. Fields below the precision
// are zero. Order is a disambiguating sequence number taken from the
// filename; it is unused at PrecisionFull.
type PartialDate struct {
	Precision Precision

	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int

	Order int
}

// Arity returns the number of populated fields: 2, 3, 4 or 6.
func (d PartialDate) Arity() int {
	return int(d.Precision)
}

// Materialize builds a full timestamp from the partial date. Missing month
// and day become 1. For every precision short of full, the order number is
// packed into the time of day as minute = order/60, second = order%60 with
// hour 0, so files sharing a coarse date keep distinct timestamps.
func (d PartialDate) Materialize() media.Timestamp {
	if d.Precision == PrecisionFull {
		return media.Timestamp{
			Year: d.Year, Month: d.Month, Day: d.Day,
			Hour: d.Hour, Minute: d.Minute, Second: d.Second,
		}
	}

	ts := media.Timestamp{
		Year:   d.Year,
		Month:  1,
		Day:    1,
		Minute: d.Order / 60,
		Second: d.Order % 60,
	}
	if d.Precision >= PrecisionMonth {
		ts.Month = d.Month
	}
	if d.Precision >= PrecisionDay {
		ts.Day = d.Day
	}
	return ts
}

// String renders the populated fields as a tuple, e.g. "(1998, 2, 90)".
func (d PartialDate) String() string {
	switch d.Precision {
	case PrecisionYear:
		return fmt.Sprintf("(%d, %d)", d.Year, d.Order)
	case PrecisionMonth:
		return fmt.Sprintf("(%d, %d, %d)", d.Year, d.Month, d.Order)
	case PrecisionDay:
		return fmt.Sprintf("(%d, %d, %d, %d)", d.Year, d.Month, d.Day, d.Order)
	case PrecisionFull:
		return fmt.Sprintf("(%d, %d, %d, %d, %d, %d)", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
	default:
		return "()"
	}
}
