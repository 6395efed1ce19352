package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jayPrakash10/expense-backend/internal/analytics"
	"github.com/jayPrakash10/expense-backend/internal/currency"
	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/infra/observability"
	"github.com/jayPrakash10/expense-backend/internal/port"
)

var expenseTracer = otel.Tracer("service/expenses")

const settingsCachePrefix = "settings:"

// ExpenseService handles expense CRUD and the month/year analytics views.
type ExpenseService struct {
	expenses      port.ExpenseStore
	categories    port.CategoryStore
	settings      port.SettingsStore
	settingsCache port.Cache[*domain.UserSettings]
	converter     *currency.Converter
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// NewExpenseService creates a new expense service.
func NewExpenseService(expenses port.ExpenseStore, categories port.CategoryStore, settings port.SettingsStore,
	settingsCache port.Cache[*domain.UserSettings], converter *currency.Converter,
	metrics *observability.Metrics, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenses:      expenses,
		categories:    categories,
		settings:      settings,
		settingsCache: settingsCache,
		converter:     converter,
		metrics:       metrics,
		logger:        logger,
	}
}

// ============================================================
// CRUD
// ============================================================

// CreateExpenseRequest is the body for POST /v1/expenses.
type CreateExpenseRequest struct {
	SubcategoryID string  `json:"subcategoryId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMode   string  `json:"paymentMode"`
	Date          string  `json:"date"` // RFC3339 or YYYY-MM-DD
	Note          string  `json:"note,omitempty"`
}

func (s *ExpenseService) CreateExpense(ctx context.Context, userID string, req *CreateExpenseRequest) (*domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.CreateExpense")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if req.SubcategoryID == "" {
		return nil, &domain.ErrValidation{Field: "subcategoryId", Message: "subcategory is required"}
	}
	if req.Amount < 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount must not be negative"}
	}
	cur := domain.Currency(req.Currency)
	if !domain.IsSupportedCurrency(cur) {
		return nil, &domain.ErrUnsupportedCurrency{Code: cur}
	}
	mode := domain.PaymentMode(req.PaymentMode)
	if !domain.IsValidPaymentMode(mode) {
		return nil, &domain.ErrValidation{Field: "paymentMode", Message: "unknown payment mode"}
	}
	date, err := parseFlexibleDate(req.Date)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "date", Message: "date must be RFC3339 or YYYY-MM-DD"}
	}

	// Ownership check: the subcategory must belong to the caller.
	if _, err := s.categories.GetSubcategory(ctx, userID, req.SubcategoryID); err != nil {
		return nil, err
	}

	expense, err := s.expenses.CreateExpense(ctx, &domain.Expense{
		UserID:        userID,
		SubcategoryID: req.SubcategoryID,
		Amount:        req.Amount,
		Currency:      cur,
		PaymentMode:   mode,
		Date:          date,
		Note:          req.Note,
	})
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.metrics.IncrExpenseCreated()
	s.logger.Info("expense created",
		zap.String("user_id", userID),
		zap.String("expense_id", expense.ID),
		zap.Float64("amount", expense.Amount),
	)
	return expense, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.GetExpense")
	defer span.End()

	return s.expenses.GetExpense(ctx, userID, expenseID)
}

func (s *ExpenseService) ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter) (*domain.ListResponse[domain.Expense], error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.ListExpenses")
	defer span.End()

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	items, total, err := s.expenses.ListExpenses(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	return &domain.ListResponse[domain.Expense]{
		Data:     items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		HasMore:  filter.Page*filter.PageSize < total,
	}, nil
}

// UpdateExpenseRequest is the body for PATCH /v1/expenses/{id}.
type UpdateExpenseRequest struct {
	SubcategoryID *string  `json:"subcategoryId,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	PaymentMode   *string  `json:"paymentMode,omitempty"`
	Date          *string  `json:"date,omitempty"`
	Note          *string  `json:"note,omitempty"`
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, userID, expenseID string, req *UpdateExpenseRequest) (*domain.Expense, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.UpdateExpense")
	defer span.End()

	updates := map[string]any{}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, &domain.ErrValidation{Field: "amount", Message: "amount must not be negative"}
		}
		updates["amount"] = *req.Amount
	}
	if req.Currency != nil {
		cur := domain.Currency(*req.Currency)
		if !domain.IsSupportedCurrency(cur) {
			return nil, &domain.ErrUnsupportedCurrency{Code: cur}
		}
		updates["currency"] = string(cur)
	}
	if req.PaymentMode != nil {
		mode := domain.PaymentMode(*req.PaymentMode)
		if !domain.IsValidPaymentMode(mode) {
			return nil, &domain.ErrValidation{Field: "paymentMode", Message: "unknown payment mode"}
		}
		updates["payment_mode"] = string(mode)
	}
	if req.SubcategoryID != nil {
		if _, err := s.categories.GetSubcategory(ctx, userID, *req.SubcategoryID); err != nil {
			return nil, err
		}
		updates["subcategory_id"] = *req.SubcategoryID
	}
	if req.Date != nil {
		date, err := parseFlexibleDate(*req.Date)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "date", Message: "date must be RFC3339 or YYYY-MM-DD"}
		}
		updates["date"] = date.Format(time.RFC3339)
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	return s.expenses.UpdateExpense(ctx, userID, expenseID, updates)
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.DeleteExpense")
	defer span.End()

	return s.expenses.DeleteExpense(ctx, userID, expenseID)
}

func (s *ExpenseService) DeleteExpenses(ctx context.Context, userID string, expenseIDs []string) (int, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.DeleteExpenses")
	defer span.End()

	if len(expenseIDs) == 0 {
		return 0, &domain.ErrValidation{Field: "ids", Message: "at least one id is required"}
	}
	return s.expenses.DeleteExpenses(ctx, userID, expenseIDs)
}

// ============================================================
// Analytics views
// ============================================================

// MonthView returns the expenses and analytics for one calendar month.
// Amounts are normalized to the user's settings currency before aggregation.
func (s *ExpenseService) MonthView(ctx context.Context, userID string, month, year int) (*domain.MonthViewData, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.MonthView")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("period.month", month),
		attribute.Int("period.year", year),
	)

	// Validate the period before any fetch.
	if _, err := analytics.AggregateMonth(nil, month, year); err != nil {
		return nil, err
	}

	begin := time.Now()
	defer func() { s.metrics.RecordRequestDuration("month_view", time.Since(begin)) }()

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	expenses, settings, err := s.fetchExpensesAndSettings(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	normalized, err := s.converter.NormalizeExpenses(expenses, settings.Currency)
	if err != nil {
		return nil, err
	}

	summary, err := analytics.AggregateMonth(normalized, month, year)
	if err != nil {
		return nil, err
	}

	return &domain.MonthViewData{
		Expenses:    normalized,
		TotalAmount: summary.TotalAmount,
		Month:       month,
		Year:        year,
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		Analytics:   summary,
	}, nil
}

// YearView returns the expenses and analytics for one calendar year, with
// the dense 12-month breakdown.
func (s *ExpenseService) YearView(ctx context.Context, userID string, year int) (*domain.YearViewData, error) {
	ctx, span := expenseTracer.Start(ctx, "ExpenseService.YearView")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("period.year", year),
	)

	if _, err := analytics.AggregateYear(nil, year); err != nil {
		return nil, err
	}

	begin := time.Now()
	defer func() { s.metrics.RecordRequestDuration("year_view", time.Since(begin)) }()

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)

	expenses, settings, err := s.fetchExpensesAndSettings(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	normalized, err := s.converter.NormalizeExpenses(expenses, settings.Currency)
	if err != nil {
		return nil, err
	}

	summary, err := analytics.AggregateYear(normalized, year)
	if err != nil {
		return nil, err
	}

	return &domain.YearViewData{
		Expenses:    normalized,
		TotalAmount: summary.TotalAmount,
		Year:        year,
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.Format("2006-01-02"),
		Analytics:   summary,
	}, nil
}

// fetchExpensesAndSettings loads the period's expenses and the user's
// settings concurrently. Settings go through the TTL cache.
func (s *ExpenseService) fetchExpensesAndSettings(ctx context.Context, userID string, from, to time.Time) ([]domain.Expense, *domain.UserSettings, error) {
	var (
		expenses []domain.Expense
		settings *domain.UserSettings
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		expenses, err = s.expenses.ListExpensesByDateRange(gctx, userID, from, to)
		return err
	})

	g.Go(func() error {
		var err error
		settings, err = s.getSettingsCached(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return expenses, settings, nil
}

func (s *ExpenseService) getSettingsCached(ctx context.Context, userID string) (*domain.UserSettings, error) {
	key := settingsCachePrefix + userID
	if cached, ok := s.settingsCache.Get(key); ok {
		s.metrics.IncrCacheHit("settings")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("settings")

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.settingsCache.Set(key, settings)
	return settings, nil
}

func parseFlexibleDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
