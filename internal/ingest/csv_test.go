package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const csvHeader = "data,nome_universal,sku,pedido,cidade,estado,quantidade_pedidos,total_unidades,faturamento\n"

func TestCSVSource_Load(t *testing.T) {
	content := csvHeader +
		"05/01/2024,X,SKU1,1,Recife,PE,1,2,\"1.234,56\"\n" +
		"05/01/2024,Y,SKU2,1,Recife,PE,1,1,\"50,00\"\n" +
		"20/01/2024,X,SKU1,2,Natal,RN,1,3,\"200,00\"\n"

	src := NewCSVSource(writeTempCSV(t, content), DefaultMapping(), nil)

	rows, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if !rows[0].Amount.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("comma-decimal amount = %s, want 1234.56", rows[0].Amount)
	}
	if rows[0].Product != "X" || rows[0].City != "Recife" || rows[0].OrderID != "1" {
		t.Errorf("row 0 dimensions wrong: %+v", rows[0])
	}
	if rows[2].Units != 3 {
		t.Errorf("row 2 units = %d, want 3", rows[2].Units)
	}
}

func TestCSVSource_DropsUnparseableDates(t *testing.T) {
	content := csvHeader +
		"05/01/2024,X,SKU1,1,Recife,PE,1,1,\"10,00\"\n" +
		"not-a-date,Y,SKU2,2,Recife,PE,1,1,\"20,00\"\n" +
		",Z,SKU3,3,Natal,RN,1,1,\"30,00\"\n"

	src := NewCSVSource(writeTempCSV(t, content), DefaultMapping(), nil)

	rows, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("rows with bad dates must be dropped: got %d rows, want 1", len(rows))
	}
}

func TestCSVSource_CoercesBadNumbers(t *testing.T) {
	content := csvHeader +
		"05/01/2024,X,SKU1,1,Recife,PE,oops,,garbage\n"

	src := NewCSVSource(writeTempCSV(t, content), DefaultMapping(), nil)

	rows, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("bad numeric cells must coerce, not abort: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0].Amount.IsZero() || rows[0].Orders != 0 || rows[0].Units != 0 {
		t.Errorf("bad cells must coerce to zero: %+v", rows[0])
	}
}

func TestCSVSource_MissingRequiredColumn(t *testing.T) {
	content := "data,nome_universal\n05/01/2024,X\n"

	src := NewCSVSource(writeTempCSV(t, content), DefaultMapping(), nil)

	if _, err := src.Load(context.Background()); err == nil {
		t.Error("missing amount column must fail fast, not load an empty table")
	}
}

func TestCSVSource_MappedHeaders(t *testing.T) {
	mapping := DefaultMapping()
	mapping.Date = "Dia"
	mapping.Amount = "Receita"
	mapping.Product = "Produto"

	content := "Dia,Produto,Receita\n05/01/2024,X,\"99,90\"\n"
	src := NewCSVSource(writeTempCSV(t, content), mapping, nil)

	rows, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || !rows[0].Amount.Equal(decimal.RequireFromString("99.90")) {
		t.Errorf("remapped headers not honored: %+v", rows)
	}
}

func TestCSVSource_DayBecomesGroupKeyWithoutOrderColumn(t *testing.T) {
	content := "data,nome_universal,faturamento\n05/01/2024,X,\"10,00\"\n"

	src := NewCSVSource(writeTempCSV(t, content), DefaultMapping(), nil)

	rows, err := src.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].OrderID != "2024-01-05" {
		t.Errorf("group key = %q, want the calendar day", rows[0].OrderID)
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"), DefaultMapping(), nil)
	if _, err := src.Load(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
