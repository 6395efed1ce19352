package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/port"
)

var incomeTracer = otel.Tracer("service/income")

// IncomeService handles monthly income rows.
type IncomeService struct {
	incomes  port.IncomeStore
	settings port.SettingsStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewIncomeService creates a new income service.
func NewIncomeService(incomes port.IncomeStore, settings port.SettingsStore, logger *zap.Logger) *IncomeService {
	return &IncomeService{incomes: incomes, settings: settings, logger: logger, now: time.Now}
}

// CurrentMonthIncome returns the row for the current calendar month,
// creating it on first access with defaults seeded from the user's settings.
func (s *IncomeService) CurrentMonthIncome(ctx context.Context, userID string) (*domain.MonthlyIncome, error) {
	ctx, span := incomeTracer.Start(ctx, "IncomeService.CurrentMonthIncome")
	defer span.End()

	now := s.now()
	month, year := int(now.Month()), now.Year()

	income, err := s.incomes.GetIncome(ctx, userID, month, year)
	if err == nil {
		return income, nil
	}
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	income, err = s.incomes.CreateIncome(ctx, &domain.MonthlyIncome{
		UserID:   userID,
		Month:    month,
		Year:     year,
		Amount:   settings.CurrentIncome,
		Currency: settings.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("create income: %w", err)
	}

	s.logger.Info("monthly income row created",
		zap.String("user_id", userID),
		zap.Int("month", month),
		zap.Int("year", year),
	)
	return income, nil
}

// UpdateCurrentMonthIncome sets the amount for the current month,
// creating the row first when missing.
func (s *IncomeService) UpdateCurrentMonthIncome(ctx context.Context, userID string, amount float64) (*domain.MonthlyIncome, error) {
	ctx, span := incomeTracer.Start(ctx, "IncomeService.UpdateCurrentMonthIncome")
	defer span.End()

	if amount < 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "amount must not be negative"}
	}

	income, err := s.CurrentMonthIncome(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.incomes.UpdateIncome(ctx, income.ID, map[string]any{"amount": amount})
}

// IncomesForYear lists a year's rows ordered by month.
func (s *IncomeService) IncomesForYear(ctx context.Context, userID string, year int) ([]domain.MonthlyIncome, error) {
	ctx, span := incomeTracer.Start(ctx, "IncomeService.IncomesForYear")
	defer span.End()

	if year < 2000 {
		return nil, &domain.ErrInvalidPeriod{Field: "year", Value: year}
	}
	return s.incomes.ListIncomesByYear(ctx, userID, year)
}
