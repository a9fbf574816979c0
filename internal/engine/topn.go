package engine

import (
	"slices"

	"github.com/shopspring/decimal"

	"vendas-dashboard/internal/models"
)

// RankedGroup is one entry of a top-N breakdown: the group key, the
// summed ranking measure, and any extra summed measures.
type RankedGroup struct {
	Key      string
	Value    decimal.Decimal
	Measures map[string]decimal.Decimal
}

// TopN groups rows by a dimension field, sums the ranking measure (and
// any extra measures) per group, and returns the top n groups by the
// ranking measure, descending. Ties keep first-seen group order. Rows
// with an empty group value are excluded. The result length is
// min(n, distinct group count); n <= 0 yields an empty slice.
func TopN(rows []models.TransactionLine, groupField, measureField string, n int, extra ...string) ([]RankedGroup, error) {
	getKey, err := dimension(groupField)
	if err != nil {
		return nil, err
	}
	getValue, err := measure(measureField)
	if err != nil {
		return nil, err
	}
	getExtra := make(map[string]measureFunc, len(extra))
	for _, field := range extra {
		fn, err := measure(field)
		if err != nil {
			return nil, err
		}
		getExtra[field] = fn
	}

	byKey := make(map[string]int)
	groups := make([]RankedGroup, 0)
	for _, row := range rows {
		key := getKey(row)
		if key == "" {
			continue
		}
		idx, ok := byKey[key]
		if !ok {
			idx = len(groups)
			byKey[key] = idx
			g := RankedGroup{Key: key, Value: decimal.Zero}
			if len(getExtra) > 0 {
				g.Measures = make(map[string]decimal.Decimal, len(getExtra))
				for field := range getExtra {
					g.Measures[field] = decimal.Zero
				}
			}
			groups = append(groups, g)
		}
		groups[idx].Value = groups[idx].Value.Add(getValue(row))
		for field, fn := range getExtra {
			groups[idx].Measures[field] = groups[idx].Measures[field].Add(fn(row))
		}
	}

	// Stable sort over the first-seen order keeps tie-break stable.
	slices.SortStableFunc(groups, func(a, b RankedGroup) int {
		return b.Value.Cmp(a.Value)
	})

	if n < 0 {
		n = 0
	}
	if n > len(groups) {
		n = len(groups)
	}
	return groups[:n], nil
}
