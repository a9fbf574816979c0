package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionLine is one row of sales data after ingestion: dates parsed,
// amounts in fixed-point decimal, counts clamped at zero. The zero value
// of the optional dimensions (City, State, SKU) means "not provided".
type TransactionLine struct {
	Date    time.Time
	Amount  decimal.Decimal
	OrderID string
	Product string
	SKU     string
	City    string
	State   string
	Orders  int
	Units   int
}

type Summary struct {
	Revenue          decimal.Decimal `json:"revenue"`
	Orders           int64           `json:"orders"`
	Units            int64           `json:"units"`
	AvgTicket        decimal.Decimal `json:"avg_ticket"`
	DistinctProducts int             `json:"distinct_products"`
	RevenueShare     decimal.Decimal `json:"revenue_share_pct"`
	Rows             int             `json:"rows"`
}

type ComparisonReport struct {
	Metric       string          `json:"metric"`
	Current      decimal.Decimal `json:"current"`
	Previous     decimal.Decimal `json:"previous"`
	TrailingAvg  decimal.Decimal `json:"trailing_avg"`
	DeltaAbsPrev decimal.Decimal `json:"delta_abs_vs_prev"`
	DeltaPctPrev decimal.Decimal `json:"delta_pct_vs_prev"`
	DeltaAbsAvg  decimal.Decimal `json:"delta_abs_vs_avg"`
	DeltaPctAvg  decimal.Decimal `json:"delta_pct_vs_avg"`
}

type ProductTotal struct {
	Product string          `json:"product"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
	Units   int64           `json:"units"`
}

type DailyPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
	Units   int64           `json:"units"`
}

type WeekdayPoint struct {
	Weekday string          `json:"weekday"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

type ProductPair struct {
	ProductA string `json:"product_a"`
	ProductB string `json:"product_b"`
	Count    int    `json:"count"`
}

type Dimensions struct {
	Products []string `json:"products"`
	Cities   []string `json:"cities"`
	States   []string `json:"states"`
}
