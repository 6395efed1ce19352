package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jayPrakash10/expense-backend/internal/currency"
	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/handler"
	"github.com/jayPrakash10/expense-backend/internal/infra/cache"
	"github.com/jayPrakash10/expense-backend/internal/infra/memory"
	"github.com/jayPrakash10/expense-backend/internal/infra/observability"
	"github.com/jayPrakash10/expense-backend/internal/service"
)

type noopMailer struct{}

func (noopMailer) SendOTP(context.Context, string, string) error { return nil }

// newTestRouter wires the full stack over the in-memory store and returns a
// valid bearer token for a fresh user.
func newTestRouter(t *testing.T) (http.Handler, *memory.Store, *observability.Metrics, string) {
	t.Helper()

	store := memory.NewStore()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	settingsCache := cache.New[*domain.UserSettings](5 * time.Minute)
	converter := currency.NewConverter(currency.DefaultRates())

	authSvc := service.NewAuthService(store, store, store, noopMailer{},
		"test-secret", time.Hour, 5*time.Minute, metrics, logger)

	svcs := handler.Services{
		Auth:     authSvc,
		Expenses: service.NewExpenseService(store, store, store, settingsCache, converter, metrics, logger),
		Category: service.NewCategoryService(store, store, logger),
		Income:   service.NewIncomeService(store, store, logger),
		Settings: service.NewSettingsService(store, store, settingsCache, logger),
	}
	router := handler.NewRouter(svcs, metrics, logger)

	resp, err := authSvc.GoogleAuth(context.Background(), &domain.GoogleAuthRequest{
		Email: "router@example.com",
		Name:  "Router Test",
	})
	if err != nil {
		t.Fatalf("google auth: %v", err)
	}
	return router, store, metrics, resp.AccessToken
}

func doRequest(router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) domain.APIResponse {
	t.Helper()
	var env domain.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return env
}

func TestHealthz(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsSummary(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/v1/metrics/summary", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("expected success envelope")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/v1/expenses", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = doRequest(router, http.MethodGet, "/v1/expenses", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestExpenseLifecycleOverHTTP(t *testing.T) {
	router, _, _, token := newTestRouter(t)

	// Fresh users default to INR; switch to USD so the month total below is
	// not converted.
	rec := doRequest(router, http.MethodPatch, "/v1/settings", token, map[string]string{"currency": "USD"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch settings: %d %s", rec.Code, rec.Body.String())
	}

	// Category with an inline subcategory.
	rec = doRequest(router, http.MethodPost, "/v1/categories", token, map[string]any{
		"name":          "Food",
		"subcategories": []string{"Lunch"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: %d %s", rec.Code, rec.Body.String())
	}
	var catEnv struct {
		Data struct {
			ID            string `json:"id"`
			Subcategories []struct {
				ID string `json:"id"`
			} `json:"subcategories"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &catEnv); err != nil {
		t.Fatal(err)
	}
	subID := catEnv.Data.Subcategories[0].ID

	rec = doRequest(router, http.MethodPost, "/v1/expenses", token, map[string]any{
		"subcategoryId": subID,
		"amount":        42.5,
		"currency":      "USD",
		"paymentMode":   "card",
		"date":          "2024-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(router, http.MethodGet, "/v1/expenses/analytics/month?month=3&year=2024", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("month analytics: %d %s", rec.Code, rec.Body.String())
	}
	var viewEnv struct {
		Data struct {
			TotalAmount float64 `json:"totalAmount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &viewEnv); err != nil {
		t.Fatal(err)
	}
	if viewEnv.Data.TotalAmount != 42.5 {
		t.Errorf("expected total 42.5, got %v", viewEnv.Data.TotalAmount)
	}
}

func TestRequestCountersTrackOutcomes(t *testing.T) {
	router, _, metrics, token := newTestRouter(t)

	doRequest(router, http.MethodGet, "/healthz", "", nil)
	doRequest(router, http.MethodGet, "/v1/expenses/analytics/month?month=3&year=2024", token, nil)
	doRequest(router, http.MethodGet, "/v1/expenses", "", nil) // no token

	snap := metrics.Snapshot()
	if snap.RequestsTotal != 3 {
		t.Errorf("expected 3 requests counted, got %v", snap.RequestsTotal)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("expected 1 error counted, got %v", snap.ErrorsTotal)
	}

	// The month view must also record its duration.
	families, err := metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var observed bool
	for _, mf := range families {
		if mf.GetName() != "expense_request_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "operation" && lp.GetValue() == "month_view" && m.GetHistogram().GetSampleCount() > 0 {
					observed = true
				}
			}
		}
	}
	if !observed {
		t.Error("expected a month_view duration sample")
	}
}

func TestErrorStatusMapping(t *testing.T) {
	router, _, _, token := newTestRouter(t)

	// Invalid period.
	rec := doRequest(router, http.MethodGet, "/v1/expenses/analytics/month?month=13&year=2024", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for month 13, got %d", rec.Code)
	}

	// Unknown resource.
	rec = doRequest(router, http.MethodGet, "/v1/expenses/missing-id", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	// Unsupported currency in settings.
	rec = doRequest(router, http.MethodPatch, "/v1/settings", token, map[string]any{"currency": "JPY"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for JPY, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("error responses must not be marked successful")
	}
}
