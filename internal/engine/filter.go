package engine

import (
	"slices"

	"vendas-dashboard/internal/models"
)

// Clause restricts a dimension field to a set of allowed values. An
// empty Values set means "no restriction": no selection never turns
// into an empty intersection.
type Clause struct {
	Field  string
	Values []string
}

func (c Clause) restricts() bool {
	return len(c.Values) > 0
}

// Filter is the request-scoped predicate set for one engine call: an
// optional date interval plus zero or more dimension clauses.
type Filter struct {
	Period  *Period
	Clauses []Clause
}

// Apply returns the rows matching f, as a new slice preserving input
// order. An unknown clause field fails fast with ErrUnknownField; no
// filter at all returns a copy of the input.
func Apply(rows []models.TransactionLine, f Filter) ([]models.TransactionLine, error) {
	type boundClause struct {
		get     dimensionFunc
		allowed map[string]struct{}
	}

	bound := make([]boundClause, 0, len(f.Clauses))
	for _, c := range f.Clauses {
		get, err := dimension(c.Field)
		if err != nil {
			return nil, err
		}
		if !c.restricts() {
			continue
		}
		allowed := make(map[string]struct{}, len(c.Values))
		for _, v := range c.Values {
			allowed[v] = struct{}{}
		}
		bound = append(bound, boundClause{get: get, allowed: allowed})
	}

	if f.Period == nil && len(bound) == 0 {
		return slices.Clone(rows), nil
	}

	out := make([]models.TransactionLine, 0, len(rows))
rowLoop:
	for _, row := range rows {
		if f.Period != nil && !f.Period.Contains(row.Date) {
			continue
		}
		for _, bc := range bound {
			if _, ok := bc.allowed[bc.get(row)]; !ok {
				continue rowLoop
			}
		}
		out = append(out, row)
	}
	return out, nil
}
