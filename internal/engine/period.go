package engine

import "time"

const day = 24 * time.Hour

// Period is an inclusive [Start, End] calendar-date interval. Both
// bounds are truncated to date precision in UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

func NewPeriod(start, end time.Time) Period {
	return Period{Start: dateOf(start), End: dateOf(end)}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Days is the interval length: end - start + 1.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start)/day) + 1
}

func (p Period) Contains(t time.Time) bool {
	d := dateOf(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Previous is the immediately preceding interval of identical length:
// [start - len, start - 1 day].
func (p Period) Previous() Period {
	n := p.Days()
	return Period{
		Start: p.Start.AddDate(0, 0, -n),
		End:   p.Start.AddDate(0, 0, -1),
	}
}

// Trailing is the window of n preceding intervals of identical length:
// [start - n*len, start - 1 day].
func (p Period) Trailing(n int) Period {
	if n < 1 {
		n = 1
	}
	length := p.Days()
	return Period{
		Start: p.Start.AddDate(0, 0, -n*length),
		End:   p.Start.AddDate(0, 0, -1),
	}
}

// subPeriodIndex maps a date inside the trailing window to the index of
// the equal-length sub-period it falls in: 0 for the interval just
// before the current start, 1 for the one before that, and so on.
func (p Period) subPeriodIndex(t time.Time) int {
	days := int(p.Start.Sub(dateOf(t)) / day) // >= 1 inside the window
	return (days - 1) / p.Days()
}
