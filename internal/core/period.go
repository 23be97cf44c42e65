package core

import (
	"errors"
	"fmt"
	"time"
)

// Period identifies one calendar month. The zero value means "no period",
// which an Envelope uses for "never funded".
type Period struct {
	Year  int
	Month time.Month
}

var ErrInvalidPeriod = errors.New("invalid period")

// PeriodOf truncates a point in time to its calendar month.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// NewPeriod creates a Period from a year and a month number (1-12).
func NewPeriod(year, month int) (Period, error) {
	if year < 1 || month < 1 || month > 12 {
		return Period{}, ErrInvalidPeriod
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// ParsePeriod parses the storage format "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return PeriodOf(t), nil
}

// String formats the period as "YYYY-MM". Lexicographic order of the
// formatted value matches chronological order, which the storage layer
// relies on for its monotonicity guard.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Compare returns -1 when p is before q, 0 when equal, 1 when after.
func (p Period) Compare(q Period) int {
	switch {
	case p.Year != q.Year:
		if p.Year < q.Year {
			return -1
		}
		return 1
	case p.Month != q.Month:
		if p.Month < q.Month {
			return -1
		}
		return 1
	default:
		return 0
	}
}

func (p Period) Before(q Period) bool { return p.Compare(q) < 0 }

func (p Period) After(q Period) bool { return p.Compare(q) > 0 }

// Next returns the following calendar month, rolling December into January
// of the next year.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// PeriodsBetween enumerates the periods strictly after `after` through
// `through` inclusive, in chronological order. The result is empty when
// `through` is not after `after`. The synchronizer feeds this list to
// ApplyFunding one period at a time.
func PeriodsBetween(after, through Period) []Period {
	if !through.After(after) {
		return nil
	}
	var out []Period
	for p := after.Next(); !p.After(through); p = p.Next() {
		out = append(out, p)
	}
	return out
}
