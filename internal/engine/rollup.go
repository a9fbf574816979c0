package engine

import (
	"github.com/shopspring/decimal"

	"vendas-dashboard/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Total sums a measure field over all rows. The empty table sums to 0.
func Total(rows []models.TransactionLine, field string) (decimal.Decimal, error) {
	get, err := measure(field)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(get(row))
	}
	return sum, nil
}

// AverageRatio is sum(numerator)/sum(denominator), or 0 when the
// denominator sums to zero or below. An undefined ratio is reported as
// zero, never as NaN or an error.
func AverageRatio(rows []models.TransactionLine, numField, denField string) (decimal.Decimal, error) {
	num, err := Total(rows, numField)
	if err != nil {
		return decimal.Zero, err
	}
	den, err := Total(rows, denField)
	if err != nil {
		return decimal.Zero, err
	}
	if den.Sign() <= 0 {
		return decimal.Zero, nil
	}
	return num.Div(den), nil
}

// DistinctCount counts distinct non-empty values of a dimension field.
func DistinctCount(rows []models.TransactionLine, field string) (int, error) {
	get, err := dimension(field)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{})
	for _, row := range rows {
		if v := get(row); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen), nil
}

// Share is part/whole as a percentage, or 0 when the whole is zero or
// below (same zero-not-NaN policy as AverageRatio).
func Share(part, whole decimal.Decimal) decimal.Decimal {
	if whole.Sign() <= 0 {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
