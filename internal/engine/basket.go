package engine

import (
	"slices"

	"vendas-dashboard/internal/models"
)

// Pair is an unordered product pair in canonical order (A < B) with the
// number of groups both products appeared in.
type Pair struct {
	A     string
	B     string
	Count int
}

// CoOccurrence groups rows by a dimension field (order id or day),
// collects the distinct set of non-empty values of productField per
// group, and counts how often each unordered pair of distinct products
// occurs together across groups. Duplicates within a group count once;
// sorting the set before pairing makes (a,b) canonical so (b,a) is
// never counted separately. Returns the top n pairs by count,
// descending, ties broken by first-seen pair order.
func CoOccurrence(rows []models.TransactionLine, groupField, productField string, n int) ([]Pair, error) {
	getGroup, err := dimension(groupField)
	if err != nil {
		return nil, err
	}
	getProduct, err := dimension(productField)
	if err != nil {
		return nil, err
	}

	groupOrder := make([]string, 0)
	groupSets := make(map[string]map[string]struct{})
	for _, row := range rows {
		key := getGroup(row)
		product := getProduct(row)
		if key == "" || product == "" {
			continue
		}
		set, ok := groupSets[key]
		if !ok {
			set = make(map[string]struct{})
			groupSets[key] = set
			groupOrder = append(groupOrder, key)
		}
		set[product] = struct{}{}
	}

	type counter struct {
		pair  Pair
		count int
	}
	counts := make(map[[2]string]*counter)
	order := make([]*counter, 0)

	for _, key := range groupOrder {
		set := groupSets[key]
		if len(set) < 2 {
			continue
		}
		products := make([]string, 0, len(set))
		for p := range set {
			products = append(products, p)
		}
		slices.Sort(products)
		for i := 0; i < len(products); i++ {
			for j := i + 1; j < len(products); j++ {
				k := [2]string{products[i], products[j]}
				c, ok := counts[k]
				if !ok {
					c = &counter{pair: Pair{A: k[0], B: k[1]}}
					counts[k] = c
					order = append(order, c)
				}
				c.count++
			}
		}
	}

	slices.SortStableFunc(order, func(a, b *counter) int {
		return b.count - a.count
	})

	if n < 0 {
		n = 0
	}
	if n > len(order) {
		n = len(order)
	}
	out := make([]Pair, 0, n)
	for _, c := range order[:n] {
		p := c.pair
		p.Count = c.count
		out = append(out, p)
	}
	return out, nil
}
