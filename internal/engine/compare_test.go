package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"vendas-dashboard/internal/models"
)

func scenarioRows() []models.TransactionLine {
	return []models.TransactionLine{
		{Date: date(2024, 1, 5), Product: "X", OrderID: "1", Amount: decimal.NewFromFloat(100.00), Orders: 1, Units: 1},
		{Date: date(2024, 1, 5), Product: "Y", OrderID: "1", Amount: decimal.NewFromFloat(50.00), Orders: 1, Units: 1},
		{Date: date(2024, 1, 20), Product: "X", OrderID: "2", Amount: decimal.NewFromFloat(200.00), Orders: 1, Units: 1},
	}
}

func TestComparePeriods_EmptyPreviousIsZeroNotError(t *testing.T) {
	current := NewPeriod(date(2024, 1, 1), date(2024, 1, 31))

	cmp, err := ComparePeriods(scenarioRows(), current, nil, SumOf(FieldAmount), 3)
	if err != nil {
		t.Fatal(err)
	}

	if want := decimal.NewFromFloat(350.00); !cmp.Current.Equal(want) {
		t.Errorf("current = %s, want %s", cmp.Current, want)
	}
	if !cmp.Previous.IsZero() {
		t.Errorf("previous = %s, want 0 (no December data)", cmp.Previous)
	}
	if !cmp.DeltaPctPrev.IsZero() {
		t.Errorf("delta_pct_vs_prev = %s, want exactly 0 under the zero-denominator policy", cmp.DeltaPctPrev)
	}
	if want := decimal.NewFromFloat(350.00); !cmp.DeltaAbsPrev.Equal(want) {
		t.Errorf("delta_abs_vs_prev = %s, want %s", cmp.DeltaAbsPrev, want)
	}
}

func TestComparePeriods_PreviousWindow(t *testing.T) {
	base := append(scenarioRows(),
		line(date(2023, 12, 10), "X", 70),
		line(date(2023, 12, 28), "Y", 30),
	)
	current := NewPeriod(date(2024, 1, 1), date(2024, 1, 31))

	cmp, err := ComparePeriods(base, current, nil, SumOf(FieldAmount), 3)
	if err != nil {
		t.Fatal(err)
	}

	if want := decimal.NewFromFloat(100); !cmp.Previous.Equal(want) {
		t.Errorf("previous = %s, want %s", cmp.Previous, want)
	}
	if want := decimal.NewFromFloat(250); !cmp.DeltaAbsPrev.Equal(want) {
		t.Errorf("delta_abs_vs_prev = %s, want %s", cmp.DeltaAbsPrev, want)
	}
	if want := decimal.NewFromFloat(250); !cmp.DeltaPctPrev.Equal(want) {
		t.Errorf("delta_pct_vs_prev = %s, want %s%%", cmp.DeltaPctPrev, want)
	}
}

func TestComparePeriods_IndependentOfCurrentWindowRows(t *testing.T) {
	// P5: previous/trailing must come from independent passes over the
	// base table, so altering current-window rows cannot change them.
	base := append(scenarioRows(),
		line(date(2023, 12, 10), "X", 70),
	)
	current := NewPeriod(date(2024, 1, 1), date(2024, 1, 31))

	before, err := ComparePeriods(base, current, nil, SumOf(FieldAmount), 3)
	if err != nil {
		t.Fatal(err)
	}

	altered := append(base,
		line(date(2024, 1, 2), "X", 9999),
		line(date(2024, 1, 30), "Y", 1234),
	)
	after, err := ComparePeriods(altered, current, nil, SumOf(FieldAmount), 3)
	if err != nil {
		t.Fatal(err)
	}

	if !before.Previous.Equal(after.Previous) {
		t.Errorf("previous changed from %s to %s after altering current-window rows", before.Previous, after.Previous)
	}
	if !before.TrailingAvg.Equal(after.TrailingAvg) {
		t.Errorf("trailing avg changed from %s to %s after altering current-window rows", before.TrailingAvg, after.TrailingAvg)
	}
}

func TestComparePeriods_TrailingAvgDividesByObservedSubPeriods(t *testing.T) {
	// Only one of the three trailing sub-periods has data; dividing by
	// 3 would understate the baseline.
	base := append(scenarioRows(),
		line(date(2023, 12, 10), "X", 90),
		line(date(2023, 12, 20), "X", 60),
	)
	current := NewPeriod(date(2024, 1, 1), date(2024, 1, 31))

	cmp, err := ComparePeriods(base, current, nil, SumOf(FieldAmount), 3)
	if err != nil {
		t.Fatal(err)
	}

	if want := decimal.NewFromFloat(150); !cmp.TrailingAvg.Equal(want) {
		t.Errorf("trailing avg = %s, want %s (150 over 1 observed sub-period)", cmp.TrailingAvg, want)
	}
}

func TestComparePeriods_TrailingAvgAcrossSubPeriods(t *testing.T) {
	base := append(scenarioRows(),
		line(date(2023, 12, 15), "X", 100), // sub-period 0
		line(date(2023, 11, 15), "X", 200), // sub-period 1
	)
	current := NewPeriod(date(2024, 1, 1), date(2024, 1, 31))

	cmp, err := ComparePeriods(base, current, nil, SumOf(FieldAmount), 3)
	if err != nil {
		t.Fatal(err)
	}

	if want := decimal.NewFromFloat(150); !cmp.TrailingAvg.Equal(want) {
		t.Errorf("trailing avg = %s, want %s (300 over 2 observed sub-periods)", cmp.TrailingAvg, want)
	}
}

func TestComparePeriods_AppliesNonDateClausesToAllWindows(t *testing.T) {
	base := []models.TransactionLine{
		{Date: date(2024, 1, 10), Product: "X", City: "Recife", Amount: decimal.NewFromFloat(100), Orders: 1},
		{Date: date(2024, 1, 10), Product: "Y", City: "Natal", Amount: decimal.NewFromFloat(500), Orders: 1},
		{Date: date(2023, 12, 10), Product: "X", City: "Recife", Amount: decimal.NewFromFloat(40), Orders: 1},
		{Date: date(2023, 12, 10), Product: "Y", City: "Natal", Amount: decimal.NewFromFloat(999), Orders: 1},
	}
	current := NewPeriod(date(2024, 1, 1), date(2024, 1, 31))
	clauses := []Clause{{Field: FieldCity, Values: []string{"Recife"}}}

	cmp, err := ComparePeriods(base, current, clauses, SumOf(FieldAmount), 3)
	if err != nil {
		t.Fatal(err)
	}

	if want := decimal.NewFromFloat(100); !cmp.Current.Equal(want) {
		t.Errorf("current = %s, want %s", cmp.Current, want)
	}
	if want := decimal.NewFromFloat(40); !cmp.Previous.Equal(want) {
		t.Errorf("previous = %s, want %s (same clauses re-applied)", cmp.Previous, want)
	}
}

func TestComparePeriods_DistinctRollup(t *testing.T) {
	current := NewPeriod(date(2024, 1, 1), date(2024, 1, 31))

	cmp, err := ComparePeriods(scenarioRows(), current, nil, DistinctOf(FieldOrderID), 3)
	if err != nil {
		t.Fatal(err)
	}

	if want := decimal.NewFromInt(2); !cmp.Current.Equal(want) {
		t.Errorf("distinct orders = %s, want %s", cmp.Current, want)
	}
}

func TestComparePeriods_UnknownClauseField(t *testing.T) {
	current := NewPeriod(date(2024, 1, 1), date(2024, 1, 31))
	clauses := []Clause{{Field: "region", Values: []string{"NE"}}}

	_, err := ComparePeriods(scenarioRows(), current, clauses, SumOf(FieldAmount), 3)
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestPeriod_Windows(t *testing.T) {
	p := NewPeriod(date(2024, 1, 1), date(2024, 1, 31))

	if p.Days() != 31 {
		t.Errorf("Days() = %d, want 31", p.Days())
	}

	prev := p.Previous()
	if !prev.Start.Equal(date(2023, 12, 1)) || !prev.End.Equal(date(2023, 12, 31)) {
		t.Errorf("Previous() = [%s, %s], want [2023-12-01, 2023-12-31]",
			prev.Start.Format("2006-01-02"), prev.End.Format("2006-01-02"))
	}

	trailing := p.Trailing(3)
	if !trailing.End.Equal(date(2023, 12, 31)) {
		t.Errorf("Trailing(3).End = %s, want 2023-12-31", trailing.End.Format("2006-01-02"))
	}
	if !trailing.Start.Equal(date(2023, 12, 31).AddDate(0, 0, -92)) {
		t.Errorf("Trailing(3).Start = %s, want 93 days before current start", trailing.Start.Format("2006-01-02"))
	}
}

func TestPeriod_SingleDay(t *testing.T) {
	p := NewPeriod(date(2024, 3, 10), date(2024, 3, 10))

	if p.Days() != 1 {
		t.Errorf("Days() = %d, want 1", p.Days())
	}
	prev := p.Previous()
	if !prev.Start.Equal(date(2024, 3, 9)) || !prev.End.Equal(date(2024, 3, 9)) {
		t.Errorf("Previous() of a single day = [%s, %s], want the day before",
			prev.Start.Format("2006-01-02"), prev.End.Format("2006-01-02"))
	}
}
