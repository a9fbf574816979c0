package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"vendas-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

// CSVSource reads a local CSV export of the sales sheet.
type CSVSource struct {
	path    string
	mapping ColumnMapping
	logger  *slog.Logger
}

func NewCSVSource(path string, mapping ColumnMapping, logger *slog.Logger) *CSVSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSource{path: path, mapping: mapping, logger: logger}
}

func (s *CSVSource) ID() string {
	return "csv:" + s.path
}

func (s *CSVSource) Load(ctx context.Context) ([]models.TransactionLine, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	start := time.Now()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := s.mapping.resolve(header)
	if err != nil {
		return nil, fmt.Errorf("resolve columns: %w", err)
	}

	var (
		lines   []models.TransactionLine
		dropped int
		batch   = make([][]string, 0, batchSize)
	)

	flush := func() error {
		kept, skipped, err := parseBatch(ctx, idx, batch)
		if err != nil {
			return err
		}
		lines = append(lines, kept...)
		dropped += skipped
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		batch = append(batch, record)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}

	s.logger.Info("csv load complete",
		"source", s.ID(),
		"rows", len(lines),
		"dropped", dropped,
		"duration", time.Since(start),
	)
	return lines, nil
}

// parseBatch parses records concurrently while preserving input order:
// each worker writes to its own index, the sequential pass after Wait
// keeps only the rows with a usable date.
func parseBatch(ctx context.Context, idx columnIndex, batch [][]string) ([]models.TransactionLine, int, error) {
	parsed := make([]models.TransactionLine, len(batch))
	valid := make([]bool, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)

	for i, record := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			parsed[i], valid[i] = parseRecord(idx, record)
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, 0, err
	}

	kept := make([]models.TransactionLine, 0, len(batch))
	dropped := 0
	for i := range parsed {
		if valid[i] {
			kept = append(kept, parsed[i])
		} else {
			dropped++
		}
	}
	return kept, dropped, nil
}
