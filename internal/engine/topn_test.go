package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"vendas-dashboard/internal/models"
)

func TestTopN_RanksByMeasure(t *testing.T) {
	rows := sampleRows()

	got, err := TopN(rows, FieldProduct, FieldAmount, 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(got))
	}
	if got[0].Key != "X" || !got[0].Value.Equal(decimal.NewFromFloat(300)) {
		t.Errorf("first group = %q/%s, want X/300", got[0].Key, got[0].Value)
	}
	if got[1].Key != "Z" || got[2].Key != "Y" {
		t.Errorf("ranking order = %q, %q, want Z then Y", got[1].Key, got[2].Key)
	}
}

func TestTopN_BoundedByDistinctGroups(t *testing.T) {
	rows := sampleRows()

	// 3 distinct products, N=10: exactly 3 entries, not padded.
	got, err := TopN(rows, FieldProduct, FieldAmount, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}

	got, err = TopN(rows, FieldProduct, FieldAmount, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}

	got, err = TopN(rows, FieldProduct, FieldAmount, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("N=0 must yield empty result, got %d", len(got))
	}
}

func TestTopN_EmptyTable(t *testing.T) {
	got, err := TopN(nil, FieldProduct, FieldAmount, 5)
	if err != nil {
		t.Fatalf("empty table must not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty sequence, got %d entries", len(got))
	}
}

func TestTopN_StableTieBreak(t *testing.T) {
	rows := []models.TransactionLine{
		line(date(2024, 1, 1), "B", 100),
		line(date(2024, 1, 2), "A", 100),
		line(date(2024, 1, 3), "C", 100),
	}

	got, err := TopN(rows, FieldProduct, FieldAmount, 3)
	if err != nil {
		t.Fatal(err)
	}

	// Ties keep first-seen order, not alphabetical.
	want := []string{"B", "A", "C"}
	for i, w := range want {
		if got[i].Key != w {
			t.Errorf("position %d = %q, want %q", i, got[i].Key, w)
		}
	}
}

func TestTopN_ExtraMeasures(t *testing.T) {
	rows := sampleRows()

	got, err := TopN(rows, FieldProduct, FieldAmount, 1, FieldOrders, FieldUnits)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 1 {
		t.Fatal("expected 1 group")
	}
	if !got[0].Measures[FieldOrders].Equal(decimal.NewFromInt(2)) {
		t.Errorf("summed orders = %s, want 2", got[0].Measures[FieldOrders])
	}
	if !got[0].Measures[FieldUnits].Equal(decimal.NewFromInt(5)) {
		t.Errorf("summed units = %s, want 5", got[0].Measures[FieldUnits])
	}
}

func TestTopN_SkipsEmptyGroupKeys(t *testing.T) {
	rows := append(sampleRows(), line(date(2024, 3, 1), "", 999))

	got, err := TopN(rows, FieldProduct, FieldAmount, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range got {
		if g.Key == "" {
			t.Error("rows without a product must be excluded from product aggregates")
		}
	}
}

func TestTopN_UnknownFields(t *testing.T) {
	if _, err := TopN(sampleRows(), "category", FieldAmount, 5); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField for group field, got %v", err)
	}
	if _, err := TopN(sampleRows(), FieldProduct, "revenue", 5); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField for measure field, got %v", err)
	}
}
