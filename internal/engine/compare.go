package engine

import (
	"github.com/shopspring/decimal"

	"vendas-dashboard/internal/models"
)

// Rollup reduces a set of rows to one scalar.
type Rollup func(rows []models.TransactionLine) (decimal.Decimal, error)

// SumOf is a Rollup summing a measure field.
func SumOf(field string) Rollup {
	return func(rows []models.TransactionLine) (decimal.Decimal, error) {
		return Total(rows, field)
	}
}

// DistinctOf is a Rollup counting distinct non-empty values of a
// dimension field.
func DistinctOf(field string) Rollup {
	return func(rows []models.TransactionLine) (decimal.Decimal, error) {
		n, err := DistinctCount(rows, field)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(int64(n)), nil
	}
}

// RatioOf is a Rollup computing sum(numField)/sum(denField) with the
// zero-denominator policy of AverageRatio.
func RatioOf(numField, denField string) Rollup {
	return func(rows []models.TransactionLine) (decimal.Decimal, error) {
		return AverageRatio(rows, numField, denField)
	}
}

// Comparison holds a metric rolled up over the current period, the
// immediately preceding period of equal length, and the trailing-window
// average, with absolute and percentage deltas.
type Comparison struct {
	Current      decimal.Decimal
	Previous     decimal.Decimal
	TrailingAvg  decimal.Decimal
	DeltaAbsPrev decimal.Decimal
	DeltaPctPrev decimal.Decimal
	DeltaAbsAvg  decimal.Decimal
	DeltaPctAvg  decimal.Decimal
}

// ComparePeriods rolls the metric up over three windows derived from
// current: the current period itself, its previous period, and its
// trailing window of trailingCount sub-periods. Each window is an
// independent filter-and-rollup pass over the full base table with the
// same non-date clauses; the previous and trailing values must never be
// computed from an already-date-narrowed table.
//
// The trailing aggregate is divided by the number of distinct
// sub-periods actually present in the filtered window, never by
// trailingCount, so short history does not overstate decline.
func ComparePeriods(base []models.TransactionLine, current Period, clauses []Clause, roll Rollup, trailingCount int) (Comparison, error) {
	currentRows, err := Apply(base, Filter{Period: &current, Clauses: clauses})
	if err != nil {
		return Comparison{}, err
	}
	previous := current.Previous()
	previousRows, err := Apply(base, Filter{Period: &previous, Clauses: clauses})
	if err != nil {
		return Comparison{}, err
	}
	trailing := current.Trailing(trailingCount)
	trailingRows, err := Apply(base, Filter{Period: &trailing, Clauses: clauses})
	if err != nil {
		return Comparison{}, err
	}

	cmp := Comparison{}
	if cmp.Current, err = roll(currentRows); err != nil {
		return Comparison{}, err
	}
	if cmp.Previous, err = roll(previousRows); err != nil {
		return Comparison{}, err
	}
	trailingTotal, err := roll(trailingRows)
	if err != nil {
		return Comparison{}, err
	}
	cmp.TrailingAvg = trailingTotal.Div(decimal.NewFromInt(int64(observedSubPeriods(trailingRows, current))))

	cmp.DeltaAbsPrev = cmp.Current.Sub(cmp.Previous)
	cmp.DeltaPctPrev = deltaPct(cmp.DeltaAbsPrev, cmp.Previous)
	cmp.DeltaAbsAvg = cmp.Current.Sub(cmp.TrailingAvg)
	cmp.DeltaPctAvg = deltaPct(cmp.DeltaAbsAvg, cmp.TrailingAvg)
	return cmp, nil
}

// observedSubPeriods counts the distinct equal-length sub-periods of
// the trailing window that have at least one row, floored at 1 so a
// degenerate window never divides by zero.
func observedSubPeriods(trailingRows []models.TransactionLine, current Period) int {
	seen := make(map[int]struct{})
	for _, row := range trailingRows {
		seen[current.subPeriodIndex(row.Date)] = struct{}{}
	}
	if len(seen) < 1 {
		return 1
	}
	return len(seen)
}

func deltaPct(deltaAbs, baseline decimal.Decimal) decimal.Decimal {
	if baseline.Sign() <= 0 {
		return decimal.Zero
	}
	return deltaAbs.Div(baseline).Mul(hundred)
}
