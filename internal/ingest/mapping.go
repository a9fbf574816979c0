// Package ingest turns spreadsheet-shaped files (CSV or XLSX) into
// normalized transaction tables: source headers resolved through a
// column mapping, comma-decimal amounts converted to fixed-point, rows
// with unparseable dates dropped. It also provides the TTL cache that
// sits between a slow source and request handling.
package ingest

import (
	"fmt"
	"strings"
)

// ColumnMapping maps logical column names to source spreadsheet
// headers. Only Date, Amount and Product are required; the rest resolve
// to zero values when the source sheet lacks them. When OrderID is
// absent the calendar day becomes the co-occurrence group key.
type ColumnMapping struct {
	Date    string
	Amount  string
	Orders  string
	Units   string
	Product string
	SKU     string
	OrderID string
	City    string
	State   string
}

// DefaultMapping matches the headers of the upstream sales sheets.
func DefaultMapping() ColumnMapping {
	return ColumnMapping{
		Date:    "data",
		Amount:  "faturamento",
		Orders:  "quantidade_pedidos",
		Units:   "total_unidades",
		Product: "nome_universal",
		SKU:     "sku",
		OrderID: "pedido",
		City:    "cidade",
		State:   "estado",
	}
}

type columnIndex struct {
	date    int
	amount  int
	orders  int
	units   int
	product int
	sku     int
	orderID int
	city    int
	state   int
}

// resolve locates each mapped header in the source header row, once per
// load. A missing required column is a schema error; optional columns
// resolve to -1.
func (m ColumnMapping) resolve(header []string) (columnIndex, error) {
	find := func(name string) int {
		if name == "" {
			return -1
		}
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
		return -1
	}

	idx := columnIndex{
		date:    find(m.Date),
		amount:  find(m.Amount),
		orders:  find(m.Orders),
		units:   find(m.Units),
		product: find(m.Product),
		sku:     find(m.SKU),
		orderID: find(m.OrderID),
		city:    find(m.City),
		state:   find(m.State),
	}

	if idx.date < 0 {
		return idx, fmt.Errorf("date column %q not found in header", m.Date)
	}
	if idx.amount < 0 {
		return idx, fmt.Errorf("amount column %q not found in header", m.Amount)
	}
	if idx.product < 0 {
		return idx, fmt.Errorf("product column %q not found in header", m.Product)
	}
	return idx, nil
}
