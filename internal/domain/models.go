// Package domain defines the core business entities for the expense backend.
// These models are independent of external services and represent the
// canonical data structures used throughout the API.
package domain

import "time"

// ============================================================
// Enums
// ============================================================

// Currency is an ISO-4217 code supported by the conversion table.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// SupportedCurrencies lists every currency the API accepts in settings
// and expense records.
var SupportedCurrencies = []Currency{CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyGBP}

// IsSupportedCurrency reports whether c is one of the accepted codes.
func IsSupportedCurrency(c Currency) bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// PaymentMode is how an expense was paid.
type PaymentMode string

const (
	PaymentModeCash       PaymentMode = "cash"
	PaymentModeCard       PaymentMode = "card"
	PaymentModeUPI        PaymentMode = "upi"
	PaymentModeNetBanking PaymentMode = "net_banking"
	PaymentModeOther      PaymentMode = "other"
)

// IsValidPaymentMode reports whether m is one of the known modes.
func IsValidPaymentMode(m PaymentMode) bool {
	switch m {
	case PaymentModeCash, PaymentModeCard, PaymentModeUPI, PaymentModeNetBanking, PaymentModeOther:
		return true
	}
	return false
}

// ============================================================
// Users
// ============================================================

// User is an account holder. Users authenticate via email OTP or a
// federated Google identity; there is no password.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	ProfileImg string    `json:"profile_img,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserSettings holds per-user preferences. Every user gets a row with
// defaults at signup.
type UserSettings struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Currency      Currency  `json:"currency"`
	Language      string    `json:"language"`
	CurrentIncome float64   `json:"current_income"`
	QuickAdd      []string  `json:"quick_add"` // subcategory IDs pinned for one-tap entry
	UpdatedAt     time.Time `json:"updated_at"`
}

// ============================================================
// Categories
// ============================================================

// Category groups subcategories. Names are unique per user.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Subcategory is the level expenses attach to. Names are unique per category.
type Subcategory struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Icon       string    `json:"icon,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ============================================================
// Expenses
// ============================================================

// Expense is a single spend record.
type Expense struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	SubcategoryID string      `json:"subcategory_id"`
	Amount        float64     `json:"amount"`
	Currency      Currency    `json:"currency"`
	PaymentMode   PaymentMode `json:"payment_mode"`
	Date          time.Time   `json:"date"`
	Note          string      `json:"note,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// ExpenseFilter narrows expense listings.
type ExpenseFilter struct {
	From          *time.Time
	To            *time.Time
	SubcategoryID string
	PaymentMode   PaymentMode
	Page          int
	PageSize      int
}

// ============================================================
// Monthly income
// ============================================================

// MonthlyIncome tracks the user's declared income for one calendar month.
type MonthlyIncome struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Month     int       `json:"month"` // 1-12
	Year      int       `json:"year"`
	Amount    float64   `json:"amount"`
	Currency  Currency  `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ============================================================
// OTP
// ============================================================

// OTP is a one-time login code issued to an email address. The code itself
// is never stored, only its bcrypt hash. Codes are single-use and issuing a
// new one invalidates any previous code for the same email.
type OTP struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the code is past its expiry at instant now.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
