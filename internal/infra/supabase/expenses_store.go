package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/infra/resilience"
)

// ============================================================
// Expenses store
// ============================================================

// expenseRow maps the expenses table columns.
type expenseRow struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	SubcategoryID string  `json:"subcategory_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMode   string  `json:"payment_mode"`
	Date          string  `json:"date"`
	Note          string  `json:"note"`
	CreatedAt     string  `json:"created_at"`
}

func (r expenseRow) toDomain() domain.Expense {
	return domain.Expense{
		ID:            r.ID,
		UserID:        r.UserID,
		SubcategoryID: r.SubcategoryID,
		Amount:        r.Amount,
		Currency:      domain.Currency(r.Currency),
		PaymentMode:   domain.PaymentMode(r.PaymentMode),
		Date:          parseDate(r.Date),
		Note:          r.Note,
		CreatedAt:     parseDate(r.CreatedAt),
	}
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t
	}
	t, _ = time.Parse("2006-01-02", s)
	return t
}

func (c *Client) CreateExpense(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateExpense")
	defer span.End()

	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}
	data := map[string]any{
		"id":             id,
		"user_id":        e.UserID,
		"subcategory_id": e.SubcategoryID,
		"amount":         e.Amount,
		"currency":       string(e.Currency),
		"payment_mode":   string(e.PaymentMode),
		"date":           e.Date.Format(time.RFC3339),
		"note":           e.Note,
	}

	body, err := c.doPost(ctx, "expenses", data)
	if err != nil {
		return nil, err
	}

	var rows []expenseRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	if len(rows) == 0 {
		return e, nil
	}
	out := rows[0].toDomain()
	return &out, nil
}

func (c *Client) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetExpense")
	defer span.End()

	path := fmt.Sprintf("expenses?id=eq.%s&user_id=eq.%s&limit=1", url.QueryEscape(expenseID), url.QueryEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []expenseRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	out := rows[0].toDomain()
	return &out, nil
}

func (c *Client) ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListExpenses")
	defer span.End()

	var sb strings.Builder
	fmt.Fprintf(&sb, "expenses?user_id=eq.%s", url.QueryEscape(userID))
	if filter.From != nil {
		fmt.Fprintf(&sb, "&date=gte.%s", url.QueryEscape(filter.From.Format(time.RFC3339)))
	}
	if filter.To != nil {
		fmt.Fprintf(&sb, "&date=lte.%s", url.QueryEscape(filter.To.Format(time.RFC3339)))
	}
	if filter.SubcategoryID != "" {
		fmt.Fprintf(&sb, "&subcategory_id=eq.%s", url.QueryEscape(filter.SubcategoryID))
	}
	if filter.PaymentMode != "" {
		fmt.Fprintf(&sb, "&payment_mode=eq.%s", url.QueryEscape(string(filter.PaymentMode)))
	}
	offset := (filter.Page - 1) * filter.PageSize
	fmt.Fprintf(&sb, "&order=date.desc&limit=%d&offset=%d", filter.PageSize, offset)

	body, total, err := c.doGetWithCount(ctx, sb.String())
	if err != nil {
		return nil, 0, err
	}

	var rows []expenseRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("decode expenses: %w", err)
	}

	out := make([]domain.Expense, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, total, nil
}

// ListExpensesByDateRange is the analytics hot path; it goes through the
// circuit breaker and retry policy since month/year views hit it on every
// dashboard load.
func (c *Client) ListExpensesByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListExpensesByDateRange")
	defer span.End()

	var expenses []domain.Expense

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("expenses?user_id=eq.%s&date=gte.%s&date=lte.%s&order=date.asc",
				url.QueryEscape(userID), url.QueryEscape(from.Format(time.RFC3339)), url.QueryEscape(to.Format(time.RFC3339)))
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				expenses = []domain.Expense{}
				return nil
			}

			var rows []expenseRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode expenses: %w", err)
			}

			expenses = make([]domain.Expense, 0, len(rows))
			for _, r := range rows {
				expenses = append(expenses, r.toDomain())
			}
			return nil
		})
	})

	if err != nil {
		c.metrics.IncrExternalError("supabase/expenses")
		return nil, &domain.ErrExternalService{Service: "supabase/expenses", Err: err}
	}

	return expenses, nil
}

func (c *Client) UpdateExpense(ctx context.Context, userID, expenseID string, updates map[string]any) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateExpense")
	defer span.End()

	path := fmt.Sprintf("expenses?id=eq.%s&user_id=eq.%s", url.QueryEscape(expenseID), url.QueryEscape(userID))
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []expenseRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	out := rows[0].toDomain()
	return &out, nil
}

func (c *Client) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteExpense")
	defer span.End()

	path := fmt.Sprintf("expenses?id=eq.%s&user_id=eq.%s", url.QueryEscape(expenseID), url.QueryEscape(userID))
	return c.doDelete(ctx, path)
}

func (c *Client) DeleteExpenses(ctx context.Context, userID string, expenseIDs []string) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteExpenses")
	defer span.End()

	if len(expenseIDs) == 0 {
		return 0, nil
	}
	escaped := make([]string, len(expenseIDs))
	for i, id := range expenseIDs {
		escaped[i] = url.QueryEscape(id)
	}
	path := fmt.Sprintf("expenses?id=in.(%s)&user_id=eq.%s", strings.Join(escaped, ","), url.QueryEscape(userID))
	if err := c.doDelete(ctx, path); err != nil {
		return 0, err
	}
	return len(expenseIDs), nil
}
