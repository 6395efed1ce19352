// Package memory is an in-process implementation of every store port.
// It backs local development (USE_SUPABASE=false) and the integration tests,
// so the whole API can run without external services.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jayPrakash10/expense-backend/internal/domain"
)

// Store keeps everything in maps guarded by one mutex. Good enough for a
// single process; not meant for production data.
type Store struct {
	mu sync.RWMutex

	users         map[string]domain.User
	settings      map[string]domain.UserSettings // keyed by user ID
	expenses      map[string]domain.Expense
	categories    map[string]domain.Category
	subcategories map[string]domain.Subcategory
	incomes       map[string]domain.MonthlyIncome
	otps          map[string]domain.OTP
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:         make(map[string]domain.User),
		settings:      make(map[string]domain.UserSettings),
		expenses:      make(map[string]domain.Expense),
		categories:    make(map[string]domain.Category),
		subcategories: make(map[string]domain.Subcategory),
		incomes:       make(map[string]domain.MonthlyIncome),
		otps:          make(map[string]domain.OTP),
	}
}

func newID() string { return uuid.NewString() }

// ============================================================
// Users
// ============================================================

func (s *Store) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

func (s *Store) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	if u.ID == "" {
		u.ID = newID()
	}
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return &u, nil
}

func (s *Store) UpdateUser(_ context.Context, id string, updates map[string]any) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	if v, ok := updates["name"].(string); ok {
		u.Name = v
	}
	if v, ok := updates["phone"].(string); ok {
		u.Phone = v
	}
	if v, ok := updates["profile_img"].(string); ok {
		u.ProfileImg = v
	}
	s.users[id] = u
	return &u, nil
}

// ============================================================
// Settings
// ============================================================

func (s *Store) GetSettings(_ context.Context, userID string) (*domain.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.settings[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "settings", ID: userID}
	}
	return &st, nil
}

func (s *Store) CreateSettings(_ context.Context, settings *domain.UserSettings) (*domain.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := *settings
	if st.ID == "" {
		st.ID = newID()
	}
	st.UpdatedAt = time.Now().UTC()
	s.settings[st.UserID] = st
	return &st, nil
}

func (s *Store) UpdateSettings(_ context.Context, userID string, updates map[string]any) (*domain.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.settings[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "settings", ID: userID}
	}
	if v, ok := updates["currency"].(string); ok {
		st.Currency = domain.Currency(v)
	}
	if v, ok := updates["language"].(string); ok {
		st.Language = v
	}
	if v, ok := updates["current_income"].(float64); ok {
		st.CurrentIncome = v
	}
	if v, ok := updates["quick_add"].([]string); ok {
		st.QuickAdd = v
	}
	st.UpdatedAt = time.Now().UTC()
	s.settings[userID] = st
	return &st, nil
}

// ============================================================
// Expenses
// ============================================================

func (s *Store) CreateExpense(_ context.Context, e *domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp := *e
	if exp.ID == "" {
		exp.ID = newID()
	}
	exp.CreatedAt = time.Now().UTC()
	s.expenses[exp.ID] = exp
	return &exp, nil
}

func (s *Store) GetExpense(_ context.Context, userID, expenseID string) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[expenseID]
	if !ok || e.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	return &e, nil
}

func (s *Store) listForUser(userID string) []domain.Expense {
	var out []domain.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) ListExpenses(_ context.Context, userID string, filter domain.ExpenseFilter) ([]domain.Expense, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Expense, 0)
	for _, e := range s.listForUser(userID) {
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		if filter.SubcategoryID != "" && e.SubcategoryID != filter.SubcategoryID {
			continue
		}
		if filter.PaymentMode != "" && e.PaymentMode != filter.PaymentMode {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	total := len(matched)
	start := (filter.Page - 1) * filter.PageSize
	if start >= total {
		return []domain.Expense{}, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) ListExpensesByDateRange(_ context.Context, userID string, from, to time.Time) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Expense, 0)
	for _, e := range s.listForUser(userID) {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) UpdateExpense(_ context.Context, userID, expenseID string, updates map[string]any) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[expenseID]
	if !ok || e.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	if v, ok := updates["amount"].(float64); ok {
		e.Amount = v
	}
	if v, ok := updates["currency"].(string); ok {
		e.Currency = domain.Currency(v)
	}
	if v, ok := updates["payment_mode"].(string); ok {
		e.PaymentMode = domain.PaymentMode(v)
	}
	if v, ok := updates["subcategory_id"].(string); ok {
		e.SubcategoryID = v
	}
	if v, ok := updates["note"].(string); ok {
		e.Note = v
	}
	if v, ok := updates["date"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			e.Date = t
		}
	}
	s.expenses[expenseID] = e
	return &e, nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[expenseID]
	if !ok || e.UserID != userID {
		return &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	delete(s.expenses, expenseID)
	return nil
}

func (s *Store) DeleteExpenses(_ context.Context, userID string, expenseIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range expenseIDs {
		if e, ok := s.expenses[id]; ok && e.UserID == userID {
			delete(s.expenses, id)
			deleted++
		}
	}
	return deleted, nil
}

// ============================================================
// Categories + subcategories
// ============================================================

func (s *Store) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat := *c
	if cat.ID == "" {
		cat.ID = newID()
	}
	cat.CreatedAt = time.Now().UTC()
	s.categories[cat.ID] = cat
	return &cat, nil
}

func (s *Store) GetCategory(_ context.Context, userID, categoryID string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[categoryID]
	if !ok || c.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	return &c, nil
}

func (s *Store) GetCategoryByName(_ context.Context, userID, name string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			out := c
			return &out, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "category", ID: name}
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, 0)
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, userID, categoryID string, updates map[string]any) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[categoryID]
	if !ok || c.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	if v, ok := updates["name"].(string); ok {
		c.Name = v
	}
	if v, ok := updates["color"].(string); ok {
		c.Color = v
	}
	s.categories[categoryID] = c
	return &c, nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[categoryID]
	if !ok || c.UserID != userID {
		return &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	delete(s.categories, categoryID)
	return nil
}

func (s *Store) CreateSubcategory(_ context.Context, sub *domain.Subcategory) (*domain.Subcategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc := *sub
	if sc.ID == "" {
		sc.ID = newID()
	}
	sc.CreatedAt = time.Now().UTC()
	s.subcategories[sc.ID] = sc
	return &sc, nil
}

func (s *Store) GetSubcategory(_ context.Context, userID, subcategoryID string) (*domain.Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.subcategories[subcategoryID]
	if !ok || sc.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "subcategory", ID: subcategoryID}
	}
	return &sc, nil
}

func (s *Store) GetSubcategoryByName(_ context.Context, categoryID, name string) (*domain.Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sc := range s.subcategories {
		if sc.CategoryID == categoryID && strings.EqualFold(sc.Name, name) {
			out := sc
			return &out, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "subcategory", ID: name}
}

func (s *Store) ListSubcategories(_ context.Context, userID string) ([]domain.Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Subcategory, 0)
	for _, sc := range s.subcategories {
		if sc.UserID == userID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListSubcategoriesByCategory(_ context.Context, userID, categoryID string) ([]domain.Subcategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Subcategory, 0)
	for _, sc := range s.subcategories {
		if sc.UserID == userID && sc.CategoryID == categoryID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateSubcategory(_ context.Context, userID, subcategoryID string, updates map[string]any) (*domain.Subcategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.subcategories[subcategoryID]
	if !ok || sc.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "subcategory", ID: subcategoryID}
	}
	if v, ok := updates["name"].(string); ok {
		sc.Name = v
	}
	if v, ok := updates["icon"].(string); ok {
		sc.Icon = v
	}
	s.subcategories[subcategoryID] = sc
	return &sc, nil
}

func (s *Store) DeleteSubcategory(_ context.Context, userID, subcategoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.subcategories[subcategoryID]
	if !ok || sc.UserID != userID {
		return &domain.ErrNotFound{Resource: "subcategory", ID: subcategoryID}
	}
	delete(s.subcategories, subcategoryID)
	return nil
}

func (s *Store) DeleteSubcategoriesByCategory(_ context.Context, userID, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sc := range s.subcategories {
		if sc.UserID == userID && sc.CategoryID == categoryID {
			delete(s.subcategories, id)
		}
	}
	return nil
}

// ============================================================
// Monthly income
// ============================================================

func (s *Store) GetIncome(_ context.Context, userID string, month, year int) (*domain.MonthlyIncome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inc := range s.incomes {
		if inc.UserID == userID && inc.Month == month && inc.Year == year {
			out := inc
			return &out, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "income", ID: userID}
}

func (s *Store) CreateIncome(_ context.Context, income *domain.MonthlyIncome) (*domain.MonthlyIncome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inc := *income
	if inc.ID == "" {
		inc.ID = newID()
	}
	inc.UpdatedAt = time.Now().UTC()
	s.incomes[inc.ID] = inc
	return &inc, nil
}

func (s *Store) UpdateIncome(_ context.Context, incomeID string, updates map[string]any) (*domain.MonthlyIncome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inc, ok := s.incomes[incomeID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "income", ID: incomeID}
	}
	if v, ok := updates["amount"].(float64); ok {
		inc.Amount = v
	}
	if v, ok := updates["currency"].(string); ok {
		inc.Currency = domain.Currency(v)
	}
	inc.UpdatedAt = time.Now().UTC()
	s.incomes[incomeID] = inc
	return &inc, nil
}

func (s *Store) ListIncomesByYear(_ context.Context, userID string, year int) ([]domain.MonthlyIncome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MonthlyIncome, 0)
	for _, inc := range s.incomes {
		if inc.UserID == userID && inc.Year == year {
			out = append(out, inc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// ============================================================
// OTPs
// ============================================================

func (s *Store) DeleteOTPs(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, o := range s.otps {
		if strings.EqualFold(o.Email, email) {
			delete(s.otps, id)
		}
	}
	return nil
}

func (s *Store) StoreOTP(_ context.Context, otp *domain.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := *otp
	if o.ID == "" {
		o.ID = newID()
	}
	o.CreatedAt = time.Now().UTC()
	s.otps[o.ID] = o
	return nil
}

func (s *Store) GetActiveOTP(_ context.Context, email string) (*domain.OTP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var latest *domain.OTP
	for _, o := range s.otps {
		if !strings.EqualFold(o.Email, email) || o.Used || o.Expired(now) {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			out := o
			latest = &out
		}
	}
	if latest == nil {
		return nil, &domain.ErrInvalidCode{}
	}
	return latest, nil
}

func (s *Store) MarkOTPUsed(_ context.Context, otpID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.otps[otpID]
	if !ok {
		return &domain.ErrInvalidCode{}
	}
	o.Used = true
	s.otps[otpID] = o
	return nil
}
