package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"vendas-dashboard/internal/models"
)

// XLSXSource reads the sales sheet out of a local workbook file.
type XLSXSource struct {
	path    string
	sheet   string
	mapping ColumnMapping
	logger  *slog.Logger
}

// NewXLSXSource reads from the named sheet, or the workbook's first
// sheet when sheet is empty.
func NewXLSXSource(path, sheet string, mapping ColumnMapping, logger *slog.Logger) *XLSXSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXSource{path: path, sheet: sheet, mapping: mapping, logger: logger}
}

func (s *XLSXSource) ID() string {
	return "xlsx:" + s.path + "#" + s.sheet
}

func (s *XLSXSource) Load(ctx context.Context) ([]models.TransactionLine, error) {
	start := time.Now()

	book, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = book.GetSheetName(0)
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	idx, err := s.mapping.resolve(rows[0])
	if err != nil {
		return nil, fmt.Errorf("resolve columns: %w", err)
	}

	lines := make([]models.TransactionLine, 0, len(rows)-1)
	dropped := 0
	for _, record := range rows[1:] {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		line, ok := parseRecord(idx, record)
		if !ok {
			dropped++
			continue
		}
		lines = append(lines, line)
	}

	s.logger.Info("workbook load complete",
		"source", s.ID(),
		"sheet", sheet,
		"rows", len(lines),
		"dropped", dropped,
		"duration", time.Since(start),
	)
	return lines, nil
}
