package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"lounge-pos-billing/internal/cart"
	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/money"
	"lounge-pos-billing/internal/service"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// BillingHandler serves the local billing API
type BillingHandler struct {
	rates   service.RateService
	billing service.BillingService
	metrics *Metrics
}

func NewBillingHandler(rates service.RateService, billing service.BillingService, metrics *Metrics) *BillingHandler {
	return &BillingHandler{
		rates:   rates,
		billing: billing,
		metrics: metrics,
	}
}

// RegisterRoutes registers the billing endpoints and /metrics, served from
// gatherer
func RegisterRoutes(router *mux.Router, h *BillingHandler, gatherer prometheus.Gatherer) {
	router.Use(h.metrics.Middleware)

	router.HandleFunc("/healthz", h.Health).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	router.HandleFunc("/rate", h.GetRate).Methods("GET")
	router.HandleFunc("/rate/history", h.GetRateHistory).Methods("GET")
	router.HandleFunc("/rate/refresh", h.RefreshRate).Methods("POST")
	router.HandleFunc("/convert", h.Convert).Methods("POST")
	router.HandleFunc("/price/reconcile", h.ReconcilePrice).Methods("POST")

	router.HandleFunc("/sessions/active/costs", h.ListActiveCosts).Methods("GET")
	router.HandleFunc("/sessions/{id}/cost", h.GetSessionCost).Methods("GET")
	router.HandleFunc("/sessions/{id}/end", h.EndSession).Methods("POST")
	router.HandleFunc("/sessions/{id}/settle", h.SettleSession).Methods("POST")
	router.HandleFunc("/sessions/{id}/cancel", h.CancelSession).Methods("POST")
	router.HandleFunc("/sales/{id}/settle", h.SettleSale).Methods("POST")

	router.HandleFunc("/quote/discount", h.QuoteDiscount).Methods("POST")
	router.HandleFunc("/quote/change", h.QuoteChange).Methods("POST")
	router.HandleFunc("/quote/cart", h.QuoteCart).Methods("POST")
}

func (h *BillingHandler) Health(w http.ResponseWriter, r *http.Request) {
	_, err := h.rates.Current(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rateAvailable": err == nil})
}

func (h *BillingHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.Current(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func (h *BillingHandler) GetRateHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, fmt.Errorf("%w: limit %q", errBadRequest, v))
			return
		}
		limit = n
	}
	entries, err := h.rates.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *BillingHandler) RefreshRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.rates.Refresh(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

type convertRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency money.Currency  `json:"currency"`
}

func (h *BillingHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.rates.Convert(r.Context(), req.Amount, req.Currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *BillingHandler) ReconcilePrice(w http.ResponseWriter, r *http.Request) {
	var req service.PriceEdit
	if !decode(w, r, &req) {
		return
	}
	res, err := h.rates.ReconcilePrice(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BillingHandler) ListActiveCosts(w http.ResponseWriter, r *http.Request) {
	readings, err := h.billing.ListActiveCosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

func (h *BillingHandler) GetSessionCost(w http.ResponseWriter, r *http.Request) {
	q, err := h.billing.QuoteSession(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("discountId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *BillingHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	var req domain.SessionEndRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	q, err := h.billing.EndSession(r.Context(), mux.Vars(r)["id"], req.DiscountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *BillingHandler) SettleSession(w http.ResponseWriter, r *http.Request) {
	var tender service.Tender
	if !decode(w, r, &tender) {
		return
	}
	res, err := h.billing.SettleSession(r.Context(), mux.Vars(r)["id"], tender)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.settled(res.Settlement.Route)
	writeJSON(w, http.StatusCreated, res)
}

func (h *BillingHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.billing.CancelSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type settleSaleRequest struct {
	AmountDue money.Money    `json:"amountDue"`
	Tender    service.Tender `json:"tender"`
}

func (h *BillingHandler) SettleSale(w http.ResponseWriter, r *http.Request) {
	var req settleSaleRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.billing.SettleSale(r.Context(), mux.Vars(r)["id"], req.AmountDue, req.Tender)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.settled(res.Settlement.Route)
	writeJSON(w, http.StatusCreated, res)
}

type quoteDiscountRequest struct {
	Base       money.Money           `json:"base"`
	Target     domain.DiscountTarget `json:"target"`
	TargetID   string                `json:"targetId"`
	DiscountID string                `json:"discountId"`
}

func (h *BillingHandler) QuoteDiscount(w http.ResponseWriter, r *http.Request) {
	var req quoteDiscountRequest
	if !decode(w, r, &req) {
		return
	}
	q, err := h.billing.QuoteDiscount(r.Context(), req.Base, req.Target, req.TargetID, req.DiscountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *BillingHandler) QuoteChange(w http.ResponseWriter, r *http.Request) {
	var req settleSaleRequest
	if !decode(w, r, &req) {
		return
	}
	st, err := h.billing.QuoteChange(r.Context(), req.AmountDue, req.Tender)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type quoteCartRequest struct {
	cart.Cart
	DiscountID string `json:"discountId"`
}

func (h *BillingHandler) QuoteCart(w http.ResponseWriter, r *http.Request) {
	var req quoteCartRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := h.billing.QuoteCart(r.Context(), req.Cart, req.DiscountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
