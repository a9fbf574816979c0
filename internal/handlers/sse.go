package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"vendas-dashboard/internal/models"
	"vendas-dashboard/internal/services"
)

var topProductsTemplate = template.Must(template.New("topProducts").Parse(`
<div id="top-products-content">
<table class="modern-table">
<thead><tr><th>Product</th><th>Revenue</th><th>Orders</th><th>Units</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Product}}</td>
<td><strong>R$ {{.Revenue}}</strong></td>
<td>{{.Orders}}</td>
<td>{{.Units}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type productRow struct {
	Product string
	Revenue string
	Orders  int64
	Units   int64
}

func productRows(data []models.ProductTotal) []productRow {
	rows := make([]productRow, 0, len(data))
	for _, p := range data {
		rows = append(rows, productRow{
			Product: p.Product,
			Revenue: p.Revenue.StringFixed(2),
			Orders:  p.Orders,
			Units:   p.Units,
		})
	}
	return rows
}

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

func (h *SSEHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	q, err := parseQuery(r)
	if err != nil {
		h.logger.Warn("summary sse query", "error", err)
		return
	}

	summary, err := h.dashboard.Summary(r.Context(), q)
	if err != nil {
		h.logger.Error("summary sse", "error", err)
		return
	}

	jsonData, err := json.Marshal(map[string]any{"summary": summary})
	if err != nil {
		h.logger.Error("marshal summary signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	q, err := parseQuery(r)
	if err != nil {
		h.logger.Warn("top products sse query", "error", err)
		return
	}

	data, err := h.dashboard.TopProducts(r.Context(), q, parseLimit(r))
	if err != nil {
		h.logger.Error("top products sse", "error", err)
		return
	}

	var buf strings.Builder
	if err := topProductsTemplate.Execute(&buf, productRows(data)); err != nil {
		h.logger.Error("render top products table", "error", err)
		return
	}
	sse.PatchElements(buf.String())

	jsonData, err := json.Marshal(map[string]any{"productsData": data})
	if err != nil {
		h.logger.Error("marshal products data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleDaily(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	q, err := parseQuery(r)
	if err != nil {
		h.logger.Warn("daily sse query", "error", err)
		return
	}

	data, err := h.dashboard.DailySeries(r.Context(), q)
	if err != nil {
		h.logger.Error("daily sse", "error", err)
		return
	}

	jsonData, err := json.Marshal(map[string]any{"dailyData": data})
	if err != nil {
		h.logger.Error("marshal daily data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="daily-content">✅ Daily trend data loaded</div>`)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleRefreshAll pushes every dashboard panel in one SSE response.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	q, err := parseQuery(r)
	if err != nil {
		h.logger.Warn("refresh-all sse query", "error", err)
		return
	}

	summary, err := h.dashboard.Summary(r.Context(), q)
	if err != nil {
		h.logger.Error("refresh-all summary", "error", err)
		return
	}
	products, err := h.dashboard.TopProducts(r.Context(), q, parseLimit(r))
	if err != nil {
		h.logger.Error("refresh-all top products", "error", err)
		return
	}
	daily, err := h.dashboard.DailySeries(r.Context(), q)
	if err != nil {
		h.logger.Error("refresh-all daily", "error", err)
		return
	}
	weekday, err := h.dashboard.Weekday(r.Context(), q)
	if err != nil {
		h.logger.Error("refresh-all weekday", "error", err)
		return
	}
	basket, err := h.dashboard.Basket(r.Context(), q, parseLimit(r))
	if err != nil {
		h.logger.Error("refresh-all basket", "error", err)
		return
	}

	var buf strings.Builder
	if err := topProductsTemplate.Execute(&buf, productRows(products)); err != nil {
		h.logger.Error("render top products table", "error", err)
		return
	}
	sse.PatchElements(buf.String())

	allSignals, err := json.Marshal(map[string]any{
		"summary":      summary,
		"productsData": products,
		"dailyData":    daily,
		"weekdayData":  weekday,
		"basketData":   basket,
	})
	if err != nil {
		h.logger.Error("marshal refresh-all signals", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
