// Package engine computes filtered totals, top-N breakdowns,
// period-over-period comparisons and product co-occurrence counts over
// in-memory transaction tables. Every function is a pure function of its
// inputs: no ambient state, no I/O, safe for concurrent callers working
// on independent table snapshots.
package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"vendas-dashboard/internal/models"
)

// Logical field names. Source spreadsheet headers are resolved to these
// once at ingestion; the engine never sees source column names.
const (
	FieldProduct = "product"
	FieldSKU     = "sku"
	FieldCity    = "city"
	FieldState   = "state"
	FieldOrderID = "order_id"

	FieldAmount = "amount"
	FieldOrders = "orders"
	FieldUnits  = "units"
)

// ErrUnknownField is returned when a caller references a logical field
// that does not exist. Referencing a missing field is a caller bug and
// must fail fast, never silently produce an empty result.
var ErrUnknownField = errors.New("unknown field")

type dimensionFunc func(models.TransactionLine) string

type measureFunc func(models.TransactionLine) decimal.Decimal

var dimensionFields = map[string]dimensionFunc{
	FieldProduct: func(l models.TransactionLine) string { return l.Product },
	FieldSKU:     func(l models.TransactionLine) string { return l.SKU },
	FieldCity:    func(l models.TransactionLine) string { return l.City },
	FieldState:   func(l models.TransactionLine) string { return l.State },
	FieldOrderID: func(l models.TransactionLine) string { return l.OrderID },
}

var measureFields = map[string]measureFunc{
	FieldAmount: func(l models.TransactionLine) decimal.Decimal { return l.Amount },
	FieldOrders: func(l models.TransactionLine) decimal.Decimal { return decimal.NewFromInt(int64(l.Orders)) },
	FieldUnits:  func(l models.TransactionLine) decimal.Decimal { return decimal.NewFromInt(int64(l.Units)) },
}

func dimension(field string) (dimensionFunc, error) {
	fn, ok := dimensionFields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a dimension field", ErrUnknownField, field)
	}
	return fn, nil
}

func measure(field string) (measureFunc, error) {
	fn, ok := measureFields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a measure field", ErrUnknownField, field)
	}
	return fn, nil
}
