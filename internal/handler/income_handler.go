package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jayPrakash10/expense-backend/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Monthly income — /v1/income
// ============================================================

func currentIncomeHandler(svc *service.IncomeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/income/current")
		defer span.End()

		income, err := svc.CurrentMonthIncome(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, income)
	}
}

func updateIncomeHandler(svc *service.IncomeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/income/current")
		defer span.End()

		var req struct {
			Amount float64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		income, err := svc.UpdateCurrentMonthIncome(ctx, UserIDFromContext(ctx), req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, income)
	}
}

func incomeYearHandler(svc *service.IncomeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/income/year")
		defer span.End()

		year, ok := parseIntQuery(r, "year")
		if !ok {
			writeError(w, http.StatusBadRequest, "year is required")
			return
		}

		incomes, err := svc.IncomesForYear(ctx, UserIDFromContext(ctx), year)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeData(w, http.StatusOK, incomes)
	}
}
