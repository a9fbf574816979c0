package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Upstream sheets are edited by hand: dates arrive as dd/mm/yyyy or
// ISO, amounts as Brazilian comma-decimal text with optional currency
// prefix. Numeric garbage coerces to zero rather than aborting the
// table; a bad date drops the row.

var dateLayouts = []string{"02/01/2006", "2006-01-02", "02/01/06"}

// ParseDate parses a sheet date cell. The second return is false when
// the cell is empty or unparseable, which excludes the row from all
// downstream computation.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ParseAmount normalizes comma-decimal currency text to a fixed-point
// decimal: currency prefix and spaces stripped, thousands dots removed,
// decimal comma converted to a point. Unparseable or negative input
// coerces to zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.Sign() < 0 {
		return decimal.Zero
	}
	return d
}

// ParseCount coerces a count cell to a non-negative integer. Cells
// holding formatted numbers ("12", "12.0", "1.234") resolve through
// the same normalization as amounts, truncated to an integer.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	d := ParseAmount(s)
	return int(d.IntPart())
}
