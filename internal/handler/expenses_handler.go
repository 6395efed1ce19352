package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Expenses — /v1/expenses
// ============================================================

func createExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses")
		defer span.End()

		var req service.CreateExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		expense, err := svc.CreateExpense(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusCreated, expense)
	}
}

func listExpensesHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses")
		defer span.End()

		filter := domain.ExpenseFilter{
			SubcategoryID: r.URL.Query().Get("subcategory_id"),
			PaymentMode:   domain.PaymentMode(r.URL.Query().Get("payment_mode")),
		}
		filter.Page, filter.PageSize = parsePagination(r)

		if v := r.URL.Query().Get("from"); v != "" {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
				return
			}
			filter.From = &d
		}
		if v := r.URL.Query().Get("to"); v != "" {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
				return
			}
			filter.To = &d
		}

		result, err := svc.ListExpenses(ctx, UserIDFromContext(ctx), filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, result)
	}
}

func getExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses/{expenseID}")
		defer span.End()

		expense, err := svc.GetExpense(ctx, UserIDFromContext(ctx), chi.URLParam(r, "expenseID"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, expense)
	}
}

func updateExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/expenses/{expenseID}")
		defer span.End()

		var req service.UpdateExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		expense, err := svc.UpdateExpense(ctx, UserIDFromContext(ctx), chi.URLParam(r, "expenseID"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, expense)
	}
}

func deleteExpenseHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/expenses/{expenseID}")
		defer span.End()

		if err := svc.DeleteExpense(ctx, UserIDFromContext(ctx), chi.URLParam(r, "expenseID")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func bulkDeleteExpensesHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses/bulk-delete")
		defer span.End()

		var req struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		deleted, err := svc.DeleteExpenses(ctx, UserIDFromContext(ctx), req.IDs)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, map[string]int{"deleted": deleted})
	}
}

// ============================================================
// Analytics — /v1/expenses/analytics
// ============================================================

func monthViewHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses/analytics/month")
		defer span.End()

		month, ok := parseIntQuery(r, "month")
		if !ok {
			writeError(w, http.StatusBadRequest, "month is required")
			return
		}
		year, ok := parseIntQuery(r, "year")
		if !ok {
			writeError(w, http.StatusBadRequest, "year is required")
			return
		}

		view, err := svc.MonthView(ctx, UserIDFromContext(ctx), month, year)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, view)
	}
}

func yearViewHandler(svc *service.ExpenseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses/analytics/year")
		defer span.End()

		year, ok := parseIntQuery(r, "year")
		if !ok {
			writeError(w, http.StatusBadRequest, "year is required")
			return
		}

		view, err := svc.YearView(ctx, UserIDFromContext(ctx), year)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, view)
	}
}
