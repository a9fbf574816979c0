package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"vendas-dashboard/internal/models"
)

// Source yields the full transaction table for one analysis request.
// Load rebuilds the table from scratch every call; incremental mutation
// is never attempted.
type Source interface {
	// ID identifies the source for cache keying and logging.
	ID() string
	Load(ctx context.Context) ([]models.TransactionLine, error)
}

// Open picks a source implementation by file extension: .xlsx/.xlsm
// workbooks go through excelize, everything else is read as CSV.
func Open(path, sheet string, mapping ColumnMapping, logger *slog.Logger) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return NewXLSXSource(path, sheet, mapping, logger)
	default:
		return NewCSVSource(path, mapping, logger)
	}
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

// parseRecord maps one source record to a TransactionLine. The second
// return is false when the date cell is unusable and the row must be
// dropped. All other bad cells coerce, never abort.
func parseRecord(idx columnIndex, record []string) (models.TransactionLine, bool) {
	date, ok := ParseDate(cell(record, idx.date))
	if !ok {
		return models.TransactionLine{}, false
	}

	line := models.TransactionLine{
		Date:    date,
		Amount:  ParseAmount(cell(record, idx.amount)),
		Orders:  ParseCount(cell(record, idx.orders)),
		Units:   ParseCount(cell(record, idx.units)),
		Product: strings.TrimSpace(cell(record, idx.product)),
		SKU:     strings.TrimSpace(cell(record, idx.sku)),
		OrderID: strings.TrimSpace(cell(record, idx.orderID)),
		City:    strings.TrimSpace(cell(record, idx.city)),
		State:   strings.TrimSpace(cell(record, idx.state)),
	}

	// Daily sheets carry no order column; the day itself is the
	// co-occurrence group then.
	if line.OrderID == "" {
		line.OrderID = date.Format("2006-01-02")
	}
	return line, true
}
