package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"vendas-dashboard/internal/engine"
	"vendas-dashboard/internal/ingest"
	"vendas-dashboard/internal/models"
)

const defaultTrailingWindows = 3

// Metric names accepted by Comparison.
const (
	MetricRevenue   = "revenue"
	MetricOrders    = "orders"
	MetricUnits     = "units"
	MetricAvgTicket = "avg_ticket"
)

// Query is the request-scoped filter state: selected period and
// dimension selections. Empty selections restrict nothing. All engine
// calls receive this explicitly; nothing is remembered between
// requests.
type Query struct {
	Period   *engine.Period
	Products []string
	Cities   []string
	States   []string
}

func (q Query) clauses() []engine.Clause {
	return []engine.Clause{
		{Field: engine.FieldProduct, Values: q.Products},
		{Field: engine.FieldCity, Values: q.Cities},
		{Field: engine.FieldState, Values: q.States},
	}
}

func (q Query) filter() engine.Filter {
	return engine.Filter{Period: q.Period, Clauses: q.clauses()}
}

// withoutProducts is the same scope minus the product selection, used
// as the share denominator for the headline KPI.
func (q Query) withoutProducts() engine.Filter {
	scoped := q
	scoped.Products = nil
	return scoped.filter()
}

// Dashboard answers the analytics queries behind the dashboard panels.
// It holds no per-request state: the data cache is the only shared
// thing, and every computation is a fresh pass over the table snapshot.
type Dashboard struct {
	data            *ingest.Cache
	logger          *slog.Logger
	trailingWindows int
}

func NewDashboard(data *ingest.Cache, trailingWindows int, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	if trailingWindows < 1 {
		trailingWindows = defaultTrailingWindows
	}
	return &Dashboard{data: data, logger: logger, trailingWindows: trailingWindows}
}

// Summary computes the KPI card values for the filtered scope.
func (d *Dashboard) Summary(ctx context.Context, q Query) (models.Summary, error) {
	base, err := d.data.Rows(ctx)
	if err != nil {
		return models.Summary{}, err
	}
	rows, err := engine.Apply(base, q.filter())
	if err != nil {
		return models.Summary{}, err
	}

	revenue, err := engine.Total(rows, engine.FieldAmount)
	if err != nil {
		return models.Summary{}, err
	}
	orders, err := engine.Total(rows, engine.FieldOrders)
	if err != nil {
		return models.Summary{}, err
	}
	units, err := engine.Total(rows, engine.FieldUnits)
	if err != nil {
		return models.Summary{}, err
	}
	avgTicket, err := engine.AverageRatio(rows, engine.FieldAmount, engine.FieldOrders)
	if err != nil {
		return models.Summary{}, err
	}
	distinct, err := engine.DistinctCount(rows, engine.FieldProduct)
	if err != nil {
		return models.Summary{}, err
	}

	// Share of the product selection against the same period/city/state
	// scope without the product clause. No selection reads as 100%.
	share := decimal.NewFromInt(100)
	if len(q.Products) > 0 {
		scopeRows, err := engine.Apply(base, q.withoutProducts())
		if err != nil {
			return models.Summary{}, err
		}
		scopeRevenue, err := engine.Total(scopeRows, engine.FieldAmount)
		if err != nil {
			return models.Summary{}, err
		}
		share = engine.Share(revenue, scopeRevenue)
	}

	return models.Summary{
		Revenue:          revenue,
		Orders:           orders.IntPart(),
		Units:            units.IntPart(),
		AvgTicket:        avgTicket,
		DistinctProducts: distinct,
		RevenueShare:     share,
		Rows:             len(rows),
	}, nil
}

// Comparison compares a metric over the query's period against the
// previous window and the trailing average. The period is required.
func (d *Dashboard) Comparison(ctx context.Context, q Query, metric string) (models.ComparisonReport, error) {
	if q.Period == nil {
		return models.ComparisonReport{}, fmt.Errorf("comparison requires a period")
	}
	roll, err := rollupFor(metric)
	if err != nil {
		return models.ComparisonReport{}, err
	}
	base, err := d.data.Rows(ctx)
	if err != nil {
		return models.ComparisonReport{}, err
	}

	cmp, err := engine.ComparePeriods(base, *q.Period, q.clauses(), roll, d.trailingWindows)
	if err != nil {
		return models.ComparisonReport{}, err
	}

	return models.ComparisonReport{
		Metric:       metric,
		Current:      cmp.Current,
		Previous:     cmp.Previous,
		TrailingAvg:  cmp.TrailingAvg,
		DeltaAbsPrev: cmp.DeltaAbsPrev,
		DeltaPctPrev: cmp.DeltaPctPrev,
		DeltaAbsAvg:  cmp.DeltaAbsAvg,
		DeltaPctAvg:  cmp.DeltaPctAvg,
	}, nil
}

func rollupFor(metric string) (engine.Rollup, error) {
	switch metric {
	case MetricRevenue:
		return engine.SumOf(engine.FieldAmount), nil
	case MetricOrders:
		return engine.SumOf(engine.FieldOrders), nil
	case MetricUnits:
		return engine.SumOf(engine.FieldUnits), nil
	case MetricAvgTicket:
		return engine.RatioOf(engine.FieldAmount, engine.FieldOrders), nil
	default:
		return nil, fmt.Errorf("unknown metric %q", metric)
	}
}

// TopProducts ranks products by revenue within the filtered scope.
func (d *Dashboard) TopProducts(ctx context.Context, q Query, n int) ([]models.ProductTotal, error) {
	rows, err := d.filtered(ctx, q)
	if err != nil {
		return nil, err
	}

	groups, err := engine.TopN(rows, engine.FieldProduct, engine.FieldAmount, n, engine.FieldOrders, engine.FieldUnits)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProductTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.ProductTotal{
			Product: g.Key,
			Revenue: g.Value,
			Orders:  g.Measures[engine.FieldOrders].IntPart(),
			Units:   g.Measures[engine.FieldUnits].IntPart(),
		})
	}
	return out, nil
}

// DailySeries aggregates revenue/orders/units per calendar day,
// chronologically, as the trend chart feed.
func (d *Dashboard) DailySeries(ctx context.Context, q Query) ([]models.DailyPoint, error) {
	rows, err := d.filtered(ctx, q)
	if err != nil {
		return nil, err
	}

	type agg struct {
		revenue decimal.Decimal
		orders  int64
		units   int64
	}
	byDay := make(map[string]*agg)
	for _, row := range rows {
		key := row.Date.Format("2006-01-02")
		a, ok := byDay[key]
		if !ok {
			a = &agg{revenue: decimal.Zero}
			byDay[key] = a
		}
		a.revenue = a.revenue.Add(row.Amount)
		a.orders += int64(row.Orders)
		a.units += int64(row.Units)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	slices.Sort(days)

	out := make([]models.DailyPoint, 0, len(days))
	for _, day := range days {
		a := byDay[day]
		out = append(out, models.DailyPoint{Date: day, Revenue: a.revenue, Orders: a.orders, Units: a.units})
	}
	return out, nil
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Weekday rolls revenue and orders up by day of week, Monday first.
// Days with no data still appear, zero-valued, so the chart axis stays
// complete.
func (d *Dashboard) Weekday(ctx context.Context, q Query) ([]models.WeekdayPoint, error) {
	rows, err := d.filtered(ctx, q)
	if err != nil {
		return nil, err
	}

	revenue := make(map[time.Weekday]decimal.Decimal, 7)
	orders := make(map[time.Weekday]int64, 7)
	for _, row := range rows {
		wd := row.Date.Weekday()
		revenue[wd] = revenue[wd].Add(row.Amount)
		orders[wd] += int64(row.Orders)
	}

	out := make([]models.WeekdayPoint, 0, 7)
	for _, wd := range weekdayOrder {
		out = append(out, models.WeekdayPoint{
			Weekday: wd.String(),
			Revenue: revenue[wd],
			Orders:  orders[wd],
		})
	}
	return out, nil
}

// Basket returns the top co-occurring product pairs in the filtered
// scope, grouped by order (or day, when the source has no orders).
func (d *Dashboard) Basket(ctx context.Context, q Query, n int) ([]models.ProductPair, error) {
	rows, err := d.filtered(ctx, q)
	if err != nil {
		return nil, err
	}

	pairs, err := engine.CoOccurrence(rows, engine.FieldOrderID, engine.FieldProduct, n)
	if err != nil {
		return nil, err
	}

	out := make([]models.ProductPair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, models.ProductPair{ProductA: p.A, ProductB: p.B, Count: p.Count})
	}
	return out, nil
}

// Dimensions lists the distinct filterable values, sorted, for the
// filter dropdowns. Always computed over the unfiltered table.
func (d *Dashboard) Dimensions(ctx context.Context) (models.Dimensions, error) {
	rows, err := d.data.Rows(ctx)
	if err != nil {
		return models.Dimensions{}, err
	}

	collect := func(get func(models.TransactionLine) string) []string {
		seen := make(map[string]struct{})
		for _, row := range rows {
			if v := get(row); v != "" {
				seen[v] = struct{}{}
			}
		}
		out := make([]string, 0, len(seen))
		for v := range seen {
			out = append(out, v)
		}
		slices.Sort(out)
		return out
	}

	return models.Dimensions{
		Products: collect(func(l models.TransactionLine) string { return l.Product }),
		Cities:   collect(func(l models.TransactionLine) string { return l.City }),
		States:   collect(func(l models.TransactionLine) string { return l.State }),
	}, nil
}

// Export returns the filtered rows for the CSV download.
func (d *Dashboard) Export(ctx context.Context, q Query) ([]models.TransactionLine, error) {
	return d.filtered(ctx, q)
}

// Reload forces a refetch from the source, bypassing the cache TTL.
func (d *Dashboard) Reload(ctx context.Context) (int, error) {
	rows, err := d.data.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	d.logger.Info("data reloaded", "rows", len(rows))
	return len(rows), nil
}

// Stats reports service internals for the admin endpoint.
func (d *Dashboard) Stats() map[string]any {
	rows, loadedAt, sourceID := d.data.Stats()
	return map[string]any{
		"source":           sourceID,
		"rows":             rows,
		"loaded_at":        loadedAt,
		"trailing_windows": d.trailingWindows,
	}
}

func (d *Dashboard) filtered(ctx context.Context, q Query) ([]models.TransactionLine, error) {
	base, err := d.data.Rows(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Apply(base, q.filter())
}
