package handlers

import (
	"encoding/csv"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"vendas-dashboard/internal/engine"
	"vendas-dashboard/internal/errors"
	"vendas-dashboard/internal/observability"
	"vendas-dashboard/internal/services"
)

const (
	defaultTopN   = 10
	maxTopN       = 50
	cacheControl  = "public, max-age=300"
	queryDateForm = "2006-01-02"
)

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// parseQuery builds the request-scoped filter state from query
// parameters: start/end dates plus repeated or comma-separated
// product/city/state selections. No parameter means no restriction.
func parseQuery(r *http.Request) (services.Query, error) {
	values := r.URL.Query()

	q := services.Query{
		Products: splitParam(values["product"]),
		Cities:   splitParam(values["city"]),
		States:   splitParam(values["state"]),
	}

	start, end := values.Get("start"), values.Get("end")
	if (start == "") != (end == "") {
		return q, errors.BadRequest("start and end must be provided together")
	}
	if start != "" {
		from, err := time.Parse(queryDateForm, start)
		if err != nil {
			return q, errors.BadRequestWrap(err, fmt.Sprintf("invalid start date %q", start))
		}
		to, err := time.Parse(queryDateForm, end)
		if err != nil {
			return q, errors.BadRequestWrap(err, fmt.Sprintf("invalid end date %q", end))
		}
		if to.Before(from) {
			return q, errors.BadRequest("end date is before start date")
		}
		p := engine.NewPeriod(from, to)
		q.Period = &p
	}
	return q, nil
}

func splitParam(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		return defaultTopN
	}
	if n > maxTopN {
		return maxTopN
	}
	return n
}

// writeErr maps engine/service failures onto the error envelope. A bad
// field or metric is the caller's fault; anything else is internal.
// One panel failing must only take down its own endpoint.
func (h *APIHandlers) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	requestID := observability.GetRequestID(r.Context())

	var appErr *errors.AppError
	switch {
	case goerrors.As(err, &appErr):
	case goerrors.Is(err, engine.ErrUnknownField):
		err = errors.ValidationWrap(err, "unknown field in filter")
	default:
		err = errors.InternalWrap(err, "analytics query failed")
	}
	errors.WriteError(w, h.logger, err, requestID)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	data, err := h.dashboard.Summary(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleComparison(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if q.Period == nil {
		h.writeErr(w, r, errors.BadRequest("comparison requires start and end dates"))
		return
	}

	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = services.MetricRevenue
	}

	data, err := h.dashboard.Comparison(r.Context(), q, metric)
	if err != nil {
		h.writeErr(w, r, errors.BadRequestWrap(err, "comparison failed"))
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	data, err := h.dashboard.TopProducts(r.Context(), q, parseLimit(r))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleDaily(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	data, err := h.dashboard.DailySeries(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleWeekday(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	data, err := h.dashboard.Weekday(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleBasket(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	data, err := h.dashboard.Basket(r.Context(), q, parseLimit(r))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleDimensions(w http.ResponseWriter, r *http.Request) {
	data, err := h.dashboard.Dimensions(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

// HandleExport streams the filtered rows as a CSV download with logical
// column names and canonical decimal amounts.
func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	rows, err := h.dashboard.Export(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	filename := fmt.Sprintf("sales_%s_%s.csv",
		time.Now().Format("20060102_150405"), uuid.NewString()[:8])

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "product", "sku", "order_id", "city", "state", "orders", "units", "amount"}); err != nil {
		h.logger.Error("write export header", "error", err)
		return
	}
	for _, row := range rows {
		record := []string{
			row.Date.Format(queryDateForm),
			row.Product,
			row.SKU,
			row.OrderID,
			row.City,
			row.State,
			strconv.Itoa(row.Orders),
			strconv.Itoa(row.Units),
			row.Amount.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			h.logger.Error("write export row", "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("flush export", "error", err)
	}
}

func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboard.Reload(r.Context())
	if err != nil {
		h.writeErr(w, r, errors.Wrap(err, errors.CodeServiceUnavail, "source reload failed"))
		return
	}

	errors.WriteSuccess(w, map[string]any{"rows": rows})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}
