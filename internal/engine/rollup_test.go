package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"vendas-dashboard/internal/models"
)

func TestTotal(t *testing.T) {
	rows := sampleRows()

	got, err := Total(rows, FieldAmount)
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.NewFromFloat(430); !got.Equal(want) {
		t.Errorf("Total(amount) = %s, want %s", got, want)
	}

	units, err := Total(rows, FieldUnits)
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.NewFromInt(7); !units.Equal(want) {
		t.Errorf("Total(units) = %s, want %s", units, want)
	}
}

func TestTotal_EmptyTable(t *testing.T) {
	got, err := Total(nil, FieldAmount)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsZero() {
		t.Errorf("Total over empty table = %s, want 0", got)
	}
}

func TestTotal_UnknownField(t *testing.T) {
	_, err := Total(sampleRows(), "price")
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestAverageRatio(t *testing.T) {
	rows := sampleRows()

	// 430 revenue over 4 orders.
	got, err := AverageRatio(rows, FieldAmount, FieldOrders)
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.NewFromFloat(107.5); !got.Equal(want) {
		t.Errorf("AverageRatio = %s, want %s", got, want)
	}
}

func TestAverageRatio_ZeroDenominatorPolicy(t *testing.T) {
	rows := []models.TransactionLine{
		{Date: date(2024, 1, 1), Product: "X", Amount: decimal.NewFromFloat(10), Orders: 0},
	}

	got, err := AverageRatio(rows, FieldAmount, FieldOrders)
	if err != nil {
		t.Fatalf("zero denominator must not error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("AverageRatio with zero denominator = %s, want exactly 0", got)
	}

	empty, err := AverageRatio(nil, FieldAmount, FieldOrders)
	if err != nil {
		t.Fatal(err)
	}
	if !empty.IsZero() {
		t.Errorf("AverageRatio over empty table = %s, want 0", empty)
	}
}

func TestDistinctCount(t *testing.T) {
	rows := sampleRows()

	got, err := DistinctCount(rows, FieldProduct)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("DistinctCount(product) = %d, want 3", got)
	}
}

func TestDistinctCount_IgnoresEmptyValues(t *testing.T) {
	rows := sampleRows()
	rows = append(rows, models.TransactionLine{Date: date(2024, 3, 1), Product: ""})

	got, err := DistinctCount(rows, FieldProduct)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("empty product must not count as a distinct value, got %d", got)
	}
}

func TestShare(t *testing.T) {
	got := Share(decimal.NewFromFloat(50), decimal.NewFromFloat(200))
	if want := decimal.NewFromFloat(25); !got.Equal(want) {
		t.Errorf("Share(50, 200) = %s, want %s", got, want)
	}
}

func TestShare_ZeroWholePolicy(t *testing.T) {
	if got := Share(decimal.NewFromFloat(50), decimal.Zero); !got.IsZero() {
		t.Errorf("Share with zero whole = %s, want exactly 0", got)
	}
	if got := Share(decimal.Zero, decimal.Zero); !got.IsZero() {
		t.Errorf("Share(0, 0) = %s, want 0", got)
	}
}
