package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/jayPrakash10/expense-backend/internal/domain"
)

// ============================================================
// Monthly income store
// ============================================================

func (c *Client) GetIncome(ctx context.Context, userID string, month, year int) (*domain.MonthlyIncome, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetIncome")
	defer span.End()

	path := fmt.Sprintf("monthly_incomes?user_id=eq.%s&month=eq.%d&year=eq.%d&limit=1", url.QueryEscape(userID), month, year)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.MonthlyIncome
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode monthly_incomes: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "income", ID: fmt.Sprintf("%s/%d-%d", userID, year, month)}
	}
	return &rows[0], nil
}

func (c *Client) CreateIncome(ctx context.Context, income *domain.MonthlyIncome) (*domain.MonthlyIncome, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateIncome")
	defer span.End()

	id := income.ID
	if id == "" {
		id = uuid.New().String()
	}
	data := map[string]any{
		"id":       id,
		"user_id":  income.UserID,
		"month":    income.Month,
		"year":     income.Year,
		"amount":   income.Amount,
		"currency": string(income.Currency),
	}

	body, err := c.doPost(ctx, "monthly_incomes", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.MonthlyIncome
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode monthly_incomes: %w", err)
	}
	if len(rows) == 0 {
		return income, nil
	}
	return &rows[0], nil
}

func (c *Client) UpdateIncome(ctx context.Context, incomeID string, updates map[string]any) (*domain.MonthlyIncome, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateIncome")
	defer span.End()

	path := fmt.Sprintf("monthly_incomes?id=eq.%s", url.QueryEscape(incomeID))
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []domain.MonthlyIncome
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode monthly_incomes: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "income", ID: incomeID}
	}
	return &rows[0], nil
}

func (c *Client) ListIncomesByYear(ctx context.Context, userID string, year int) ([]domain.MonthlyIncome, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListIncomesByYear")
	defer span.End()

	path := fmt.Sprintf("monthly_incomes?user_id=eq.%s&year=eq.%d&order=month.asc", url.QueryEscape(userID), year)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.MonthlyIncome
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode monthly_incomes: %w", err)
	}
	return rows, nil
}
