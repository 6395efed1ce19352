// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/jayPrakash10/expense-backend/internal/domain"
)

// UserStore persists users.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, updates map[string]any) (*domain.User, error)
}

// SettingsStore persists per-user settings.
type SettingsStore interface {
	GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error)
	CreateSettings(ctx context.Context, settings *domain.UserSettings) (*domain.UserSettings, error)
	UpdateSettings(ctx context.Context, userID string, updates map[string]any) (*domain.UserSettings, error)
}

// ExpenseStore persists expense records.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, int, error)
	ListExpensesByDateRange(ctx context.Context, userID string, from, to time.Time) ([]domain.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, updates map[string]any) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	DeleteExpenses(ctx context.Context, userID string, expenseIDs []string) (int, error)
}

// CategoryStore persists categories and subcategories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)
	GetCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error)
	GetCategoryByName(ctx context.Context, userID, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, updates map[string]any) (*domain.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID string) error

	CreateSubcategory(ctx context.Context, s *domain.Subcategory) (*domain.Subcategory, error)
	GetSubcategory(ctx context.Context, userID, subcategoryID string) (*domain.Subcategory, error)
	GetSubcategoryByName(ctx context.Context, categoryID, name string) (*domain.Subcategory, error)
	ListSubcategories(ctx context.Context, userID string) ([]domain.Subcategory, error)
	ListSubcategoriesByCategory(ctx context.Context, userID, categoryID string) ([]domain.Subcategory, error)
	UpdateSubcategory(ctx context.Context, userID, subcategoryID string, updates map[string]any) (*domain.Subcategory, error)
	DeleteSubcategory(ctx context.Context, userID, subcategoryID string) error
	DeleteSubcategoriesByCategory(ctx context.Context, userID, categoryID string) error
}

// IncomeStore persists monthly income rows.
type IncomeStore interface {
	GetIncome(ctx context.Context, userID string, month, year int) (*domain.MonthlyIncome, error)
	CreateIncome(ctx context.Context, income *domain.MonthlyIncome) (*domain.MonthlyIncome, error)
	UpdateIncome(ctx context.Context, incomeID string, updates map[string]any) (*domain.MonthlyIncome, error)
	ListIncomesByYear(ctx context.Context, userID string, year int) ([]domain.MonthlyIncome, error)
}

// OTPStore persists one-time login codes.
type OTPStore interface {
	// DeleteOTPs removes every code for the email, used or not. Called
	// before issuing a new code so at most one is ever active.
	DeleteOTPs(ctx context.Context, email string) error
	StoreOTP(ctx context.Context, otp *domain.OTP) error
	// GetActiveOTP returns the unused, unexpired code for the email,
	// or ErrInvalidCode when none exists.
	GetActiveOTP(ctx context.Context, email string) (*domain.OTP, error)
	MarkOTPUsed(ctx context.Context, otpID string) error
}

// Mailer delivers one-time codes to users.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
