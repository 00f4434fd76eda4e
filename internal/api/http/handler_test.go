package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lounge-pos-billing/internal/accrual"
	"lounge-pos-billing/internal/cart"
	"lounge-pos-billing/internal/discount"
	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/money"
	"lounge-pos-billing/internal/repository/remote"
	"lounge-pos-billing/internal/service"
	"lounge-pos-billing/internal/settlement"
)

type apiFixture struct {
	rates   *MockRateService
	billing *MockBillingService
	metrics *Metrics
	router  *mux.Router
}

func newAPIFixture() *apiFixture {
	f := &apiFixture{
		rates:   new(MockRateService),
		billing: new(MockBillingService),
	}
	reg := prometheus.NewRegistry()
	f.metrics = NewMetrics(reg)
	f.router = mux.NewRouter()
	RegisterRoutes(f.router, NewBillingHandler(f.rates, f.billing, f.metrics), reg)
	return f
}

func (f *apiFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decimalIs(s string) any {
	return mock.MatchedBy(func(v decimal.Decimal) bool { return v.Equal(d(s)) })
}

func TestGetRate(t *testing.T) {
	t.Run("No rate yet", func(t *testing.T) {
		f := newAPIFixture()
		f.rates.On("Current", mock.Anything).Return(nil, money.ErrMissingRate)

		rec := f.do("GET", "/rate", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "exchange rate unavailable")
	})

	t.Run("Success", func(t *testing.T) {
		f := newAPIFixture()
		f.rates.On("Current", mock.Anything).Return(&domain.ExchangeRate{Rate: d("89500"), Currency: "LBP"}, nil)

		rec := f.do("GET", "/rate", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 89500.0, body["rate"])
	})
}

func TestGetRateHistory(t *testing.T) {
	f := newAPIFixture()
	f.rates.On("History", mock.Anything, 10).Return([]domain.RateHistoryEntry{{Rate: d("89500")}}, nil)

	assert.Equal(t, http.StatusOK, f.do("GET", "/rate/history?limit=10", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do("GET", "/rate/history?limit=ten", "").Code)
}

func TestConvert(t *testing.T) {
	f := newAPIFixture()
	f.rates.On("Convert", mock.Anything, decimalIs("2"), money.USD).Return(money.New(d("2"), d("179000")), nil)

	rec := f.do("POST", "/convert", `{"amount": 2, "currency": "usd"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"usd": 2, "lbp": 179000}`, rec.Body.String())

	rec = f.do("POST", "/convert", `{"amount": 2, "currency": "EUR"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteChangeCurrencySpelling(t *testing.T) {
	f := newAPIFixture()
	f.billing.On("QuoteChange", mock.Anything, mock.Anything, mock.MatchedBy(func(tn service.Tender) bool {
		return tn.Currency == money.USD
	})).Return(&settlement.Settlement{}, nil)

	rec := f.do("POST", "/quote/change", `{"amountDue": {"usd": 2.67, "lbp": 239250}, "tender": {"currency": "usd", "amount": 5}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSessionCost(t *testing.T) {
	f := newAPIFixture()
	f.billing.On("QuoteSession", mock.Anything, "s1", "vip").Return(&service.SessionQuote{
		Session:   domain.Session{ID: "s1", Status: domain.SessionStatusActive},
		AmountDue: money.New(d("2.70"), d("241650")),
		Route:     settlement.Route{Kind: settlement.RouteSession, SessionID: "s1"},
	}, nil)
	f.billing.On("QuoteSession", mock.Anything, "s9", "").Return(nil, fmt.Errorf("%w: s9", domain.ErrSessionNotFound))

	rec := f.do("GET", "/sessions/s1/cost?discountId=vip", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amountDue":{"usd":2.7,"lbp":241650}`)

	assert.Equal(t, http.StatusNotFound, f.do("GET", "/sessions/s9/cost", "").Code)
}

func TestEndSession(t *testing.T) {
	f := newAPIFixture()
	f.billing.On("EndSession", mock.Anything, "s1", "vip").Return(&service.SessionQuote{}, nil)
	f.billing.On("EndSession", mock.Anything, "s2", "").Return(nil, domain.ErrInvalidTransition)
	f.billing.On("EndSession", mock.Anything, "s3", "big").Return(nil, discount.ErrInvalidPercentage)

	assert.Equal(t, http.StatusOK, f.do("POST", "/sessions/s1/end", `{"discountId": "vip"}`).Code)
	assert.Equal(t, http.StatusConflict, f.do("POST", "/sessions/s2/end", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.do("POST", "/sessions/s3/end", `{"discountId": "big"}`).Code)
}

func TestSettleSession(t *testing.T) {
	t.Run("Counts settlements by route", func(t *testing.T) {
		f := newAPIFixture()
		f.billing.On("SettleSession", mock.Anything, "s1", mock.MatchedBy(func(tn service.Tender) bool {
			return tn.Currency == money.USD && tn.Amount.Equal(d("5"))
		})).Return(&service.SettlementResult{
			Settlement: &settlement.Settlement{Request: settlement.Request{Route: settlement.Route{Kind: settlement.RouteSale, SaleID: "sale-7"}}},
			Receipt:    &domain.PaymentReceipt{ID: "p1"},
		}, nil)

		rec := f.do("POST", "/sessions/s1/settle", `{"currency": "USD", "amount": 5}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.settlements.WithLabelValues("sale")))
		assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.settlements.WithLabelValues("session")))
	})

	t.Run("Currency is normalized like convert", func(t *testing.T) {
		f := newAPIFixture()
		f.billing.On("SettleSession", mock.Anything, "s2", mock.MatchedBy(func(tn service.Tender) bool {
			return tn.Currency == money.LBP && tn.Amount.Equal(d("300000"))
		})).Return(&service.SettlementResult{
			Settlement: &settlement.Settlement{Request: settlement.Request{Route: settlement.Route{Kind: settlement.RouteSession, SessionID: "s2"}}},
		}, nil)

		assert.Equal(t, http.StatusCreated, f.do("POST", "/sessions/s2/settle", `{"currency": "lbp", "amount": 300000}`).Code)
		assert.Equal(t, http.StatusBadRequest, f.do("POST", "/sessions/s2/settle", `{"currency": "EUR", "amount": 5}`).Code)
	})

	t.Run("Insufficient payment", func(t *testing.T) {
		f := newAPIFixture()
		f.billing.On("SettleSession", mock.Anything, "s1", mock.Anything).Return(nil, settlement.ErrInsufficientPayment)

		rec := f.do("POST", "/sessions/s1/settle", `{"currency": "LBP", "amount": 1000}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.settlements.WithLabelValues("session")))
	})

	t.Run("Malformed body", func(t *testing.T) {
		f := newAPIFixture()
		rec := f.do("POST", "/sessions/s1/settle", `{"currency": "USD", "amount": `)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.billing.AssertNotCalled(t, "SettleSession", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSettleSale(t *testing.T) {
	f := newAPIFixture()
	due := money.New(d("8.50"), d("760750"))
	f.billing.On("SettleSale", mock.Anything, "sale-1", mock.MatchedBy(func(m money.Money) bool { return m.Equal(due) }), mock.Anything).
		Return(&service.SettlementResult{
			Settlement: &settlement.Settlement{Request: settlement.Request{Route: settlement.SaleRoute("sale-1")}},
		}, nil)

	rec := f.do("POST", "/sales/sale-1/settle", `{"amountDue": {"usd": 8.5, "lbp": 760750}, "tender": {"currency": "USD", "amount": 10}}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.settlements.WithLabelValues("sale")))
}

func TestQuoteCart(t *testing.T) {
	f := newAPIFixture()
	f.billing.On("QuoteCart", mock.Anything, mock.MatchedBy(func(c cart.Cart) bool {
		return len(c.Items) == 1 && c.Items[0].Quantity == 2
	}), "all10").Return(&cart.Checkout{Total: money.New(d("1.80"), d("161100"))}, nil)

	rec := f.do("POST", "/quote/cart", `{"items": [{"productId": "cola", "unitPrice": {"usd": 1, "lbp": 89500}, "quantity": 2}], "discountId": "all10"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPIFixture()
	f.rates.On("Current", mock.Anything).Return(nil, money.ErrMissingRate)
	f.do("GET", "/healthz", "")

	rec := f.do("GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		money.ErrInvalidAmount:                                       http.StatusUnprocessableEntity,
		money.ErrUnknownCurrency:                                     http.StatusBadRequest,
		money.ErrMissingRate:                                         http.StatusServiceUnavailable,
		discount.ErrNotApplicable:                                    http.StatusUnprocessableEntity,
		cart.ErrInvalidQuantity:                                      http.StatusUnprocessableEntity,
		domain.ErrInvalidTransition:                                  http.StatusConflict,
		&remote.APIError{StatusCode: 404}:                            http.StatusNotFound,
		&remote.APIError{StatusCode: 500}:                            http.StatusBadGateway,
		fmt.Errorf("wrapped: %w", settlement.ErrInsufficientPayment): http.StatusUnprocessableEntity,
		accrual.ErrMissingEndTime:                                    http.StatusBadGateway,
		errors.New("boom"):                                           http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}
