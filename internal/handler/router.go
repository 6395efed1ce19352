package handler

import (
	"net/http"

	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/infra/observability"
	"github.com/jayPrakash10/expense-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

const apiVersion = "1.0"

// Services bundles everything the router needs.
type Services struct {
	Auth     *service.AuthService
	Expenses *service.ExpenseService
	Category *service.CategoryService
	Income   *service.IncomeService
	Settings *service.SettingsService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		r.Get("/metrics/summary", metricsSummaryHandler(metrics))

		// =============================================
		// Authentication (public)
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp/generate", generateLoginOTPHandler(svcs.Auth, logger))
			r.Post("/otp/verify", verifyLoginOTPHandler(svcs.Auth, logger))
			r.Post("/signup/otp/generate", generateSignupOTPHandler(svcs.Auth, logger))
			r.Post("/signup/otp/verify", verifySignupOTPHandler(svcs.Auth, logger))
			r.Post("/google", googleAuthHandler(svcs.Auth, logger))
		})

		// =============================================
		// Everything below requires a valid token
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Expenses
			r.Post("/expenses", createExpenseHandler(svcs.Expenses, logger))
			r.Get("/expenses", listExpensesHandler(svcs.Expenses, logger))
			r.Post("/expenses/bulk-delete", bulkDeleteExpensesHandler(svcs.Expenses, logger))
			r.Get("/expenses/analytics/month", monthViewHandler(svcs.Expenses, logger))
			r.Get("/expenses/analytics/year", yearViewHandler(svcs.Expenses, logger))
			r.Get("/expenses/{expenseID}", getExpenseHandler(svcs.Expenses, logger))
			r.Patch("/expenses/{expenseID}", updateExpenseHandler(svcs.Expenses, logger))
			r.Delete("/expenses/{expenseID}", deleteExpenseHandler(svcs.Expenses, logger))

			// Categories
			r.Post("/categories", createCategoryHandler(svcs.Category, logger))
			r.Get("/categories", listCategoriesHandler(svcs.Category, logger))
			r.Post("/categories/bulk-delete", bulkDeleteCategoriesHandler(svcs.Category, logger))
			r.Get("/categories/{categoryID}", getCategoryHandler(svcs.Category, logger))
			r.Patch("/categories/{categoryID}", updateCategoryHandler(svcs.Category, logger))
			r.Delete("/categories/{categoryID}", deleteCategoryHandler(svcs.Category, logger))

			// Subcategories
			r.Post("/subcategories", createSubcategoryHandler(svcs.Category, logger))
			r.Get("/subcategories", listSubcategoriesHandler(svcs.Category, logger))
			r.Get("/subcategories/category/{categoryID}", listSubcategoriesByCategoryHandler(svcs.Category, logger))
			r.Get("/subcategories/{subcategoryID}", getSubcategoryHandler(svcs.Category, logger))
			r.Patch("/subcategories/{subcategoryID}", updateSubcategoryHandler(svcs.Category, logger))
			r.Delete("/subcategories/{subcategoryID}", deleteSubcategoryHandler(svcs.Category, logger))

			// Monthly income
			r.Get("/income/current", currentIncomeHandler(svcs.Income, logger))
			r.Patch("/income/current", updateIncomeHandler(svcs.Income, logger))
			r.Get("/income/year", incomeYearHandler(svcs.Income, logger))

			// Settings and profile
			r.Get("/settings", getSettingsHandler(svcs.Settings, logger))
			r.Patch("/settings", updateSettingsHandler(svcs.Settings, logger))
			r.Get("/users/me", getMeHandler(svcs.Settings, logger))
			r.Patch("/users/me", updateMeHandler(svcs.Settings, logger))
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:  "healthy",
			Version: apiVersion,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, metrics.Snapshot())
	}
}
