package filedate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Bounds for a plausible year, both exclusive.
const (
	MinYear = 1700
	MaxYear = 2025
)

// ErrNoMatch is returned when no pattern matches the filename.
var ErrNoMatch = errors.New("no date pattern in filename")

// DateRangeError reports a matched date component outside its valid range.
// The filename is then treated as undeterminable.
type DateRangeError struct {
	Name  string
	Rule  string
	Field string
	Value string
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("%s out of range in %q (rule %s): %s", e.Field, e.Name, e.Rule, e.Value)
}

// Is makes a range error count as ErrNoMatch.
func (e *DateRangeError) Is(target error) bool {
	return target == ErrNoMatch
}

// rule is one entry of the cascade. build receives the submatches of re.
type rule struct {
	re    *regexp.Regexp
	desc  string
	build func(m []string) PartialDate
}

// rules are tried in order; the first whose pattern matches wins, even if
// its components then fail validation.
var rules = []rule{
	// 2021-03-19-195432.jpg
	{
		re:   regexp.MustCompile(`^([0-9]{4})-([0-9]{2})-([0-9]{2})-([0-9]{2})([0-9]{2})([0-9]{2})`),
		desc: "YYYY-MM-DD-HHMMSS",
		build: func(m []string) PartialDate {
			return PartialDate{Precision: PrecisionFull,
				Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3]),
				Hour: atoi(m[4]), Minute: atoi(m[5]), Second: atoi(m[6])}
		},
	},
	// 2021-03-19 beach 2.jpg
	{
		re:   regexp.MustCompile(`^([0-9]{4})-([0-9]{2})-([0-9]{2})[^0-9]+([0-9]+)`),
		desc: "YYYY-MM-DD<sep><order>",
		build: func(m []string) PartialDate {
			return PartialDate{Precision: PrecisionDay,
				Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3]), Order: atoi(m[4])}
		},
	},
	// 2021-03-19-somefile.jpg
	{
		re:   regexp.MustCompile(`^([0-9]{4})-([0-9]{2})-([0-9]{2})[^0-9]`),
		desc: "YYYY-MM-DD<sep>",
		build: func(m []string) PartialDate {
			return PartialDate{Precision: PrecisionDay,
				Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}
		},
	},
	// 1998-02 090.jpg
	{
		re:   regexp.MustCompile(`^([0-9]{4})-([0-9]{2})[^0-9]+([0-9]+)`),
		desc: "YYYY-MM<sep><order>",
		build: func(m []string) PartialDate {
			return PartialDate{Precision: PrecisionMonth,
				Year: atoi(m[1]), Month: atoi(m[2]), Order: atoi(m[3])}
		},
	},
	// 1998-02 trip.jpg
	{
		re:   regexp.MustCompile(`^([0-9]{4})-([0-9]{2})[^0-9]`),
		desc: "YYYY-MM<sep>",
		build: func(m []string) PartialDate {
			return PartialDate{Precision: PrecisionMonth,
				Year: atoi(m[1]), Month: atoi(m[2])}
		},
	},
	// 1987 12.jpg
	{
		re:   regexp.MustCompile(`^([0-9]{4}) ([0-9]+)`),
		desc: "YYYY <order>",
		build: func(m []string) PartialDate {
			return PartialDate{Precision: PrecisionYear,
				Year: atoi(m[1]), Order: atoi(m[2])}
		},
	},
	// 1987.jpg
	{
		re:   regexp.MustCompile(`^([0-9]{4})`),
		desc: "YYYY",
		build: func(m []string) PartialDate {
			return PartialDate{Precision: PrecisionYear, Year: atoi(m[1])}
		},
	},
}

// atoi converts a run of ASCII digits. Runs too long for an int yield -1,
// which validation rejects.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

// Guess infers a partial date from a filename (base name, not a path).
// It returns ErrNoMatch when no pattern applies, or a *DateRangeError when
// the first matching pattern carries an impossible component.
func Guess(name string) (PartialDate, error) {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		d := r.build(m)
		if err := validate(&d); err != nil {
			err.Name = name
			err.Rule = r.desc
			return PartialDate{}, err
		}
		return d, nil
	}
	return PartialDate{}, ErrNoMatch
}

// validate enforces the component ranges, coercing a zero month or day to 1.
func validate(d *PartialDate) *DateRangeError {
	if d.Year <= MinYear || d.Year >= MaxYear {
		return &DateRangeError{Field: "year", Value: strconv.Itoa(d.Year)}
	}
	if d.Order < 0 {
		return &DateRangeError{Field: "order", Value: "overflow"}
	}
	if d.Precision >= PrecisionMonth {
		if d.Month == 0 {
			d.Month = 1
		}
		if d.Month > 12 {
			return &DateRangeError{Field: "month", Value: strconv.Itoa(d.Month)}
		}
	}
	if d.Precision >= PrecisionDay {
		if d.Day == 0 {
			d.Day = 1
		}
		if d.Day > 31 {
			return &DateRangeError{Field: "day", Value: strconv.Itoa(d.Day)}
		}
	}
	if d.Precision == PrecisionFull {
		switch {
		case d.Hour > 23:
			return &DateRangeError{Field: "hour", Value: strconv.Itoa(d.Hour)}
		case d.Minute > 59:
			return &DateRangeError{Field: "minute", Value: strconv.Itoa(d.Minute)}
		case d.Second > 59:
			return &DateRangeError{Field: "second", Value: strconv.Itoa(d.Second)}
		}
	}
	return nil
}
