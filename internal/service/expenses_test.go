package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jayPrakash10/expense-backend/internal/currency"
	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/infra/cache"
	"github.com/jayPrakash10/expense-backend/internal/infra/memory"
	"github.com/jayPrakash10/expense-backend/internal/infra/observability"
	"github.com/jayPrakash10/expense-backend/internal/service"
)

func newExpenseService(store *memory.Store) *service.ExpenseService {
	return service.NewExpenseService(
		store, store, store,
		cache.New[*domain.UserSettings](5*time.Minute),
		currency.NewConverter(currency.DefaultRates()),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

// seedUser creates a user with settings, a category and a subcategory.
func seedUser(t *testing.T, store *memory.Store, cur domain.Currency) (userID, subcategoryID string) {
	t.Helper()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, &domain.User{Name: "Test", Email: "t@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateSettings(ctx, &domain.UserSettings{
		UserID: user.ID, Currency: cur, Language: "en", QuickAdd: []string{},
	}); err != nil {
		t.Fatal(err)
	}
	cat, err := store.CreateCategory(ctx, &domain.Category{UserID: user.ID, Name: "Food"})
	if err != nil {
		t.Fatal(err)
	}
	sub, err := store.CreateSubcategory(ctx, &domain.Subcategory{CategoryID: cat.ID, UserID: user.ID, Name: "Lunch"})
	if err != nil {
		t.Fatal(err)
	}
	return user.ID, sub.ID
}

func addExpense(t *testing.T, store *memory.Store, userID, subID string, amount float64, cur domain.Currency, mode domain.PaymentMode, date string) {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateExpense(context.Background(), &domain.Expense{
		UserID: userID, SubcategoryID: subID, Amount: amount,
		Currency: cur, PaymentMode: mode, Date: d,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestExpenseService_CreateValidates(t *testing.T) {
	store := memory.NewStore()
	svc := newExpenseService(store)
	userID, subID := seedUser(t, store, domain.CurrencyUSD)
	ctx := context.Background()

	cases := []struct {
		name string
		req  service.CreateExpenseRequest
		want any
	}{
		{"missing subcategory", service.CreateExpenseRequest{Amount: 5, Currency: "USD", PaymentMode: "cash", Date: "2024-01-01"}, new(*domain.ErrValidation)},
		{"negative amount", service.CreateExpenseRequest{SubcategoryID: subID, Amount: -1, Currency: "USD", PaymentMode: "cash", Date: "2024-01-01"}, new(*domain.ErrValidation)},
		{"bad currency", service.CreateExpenseRequest{SubcategoryID: subID, Amount: 5, Currency: "JPY", PaymentMode: "cash", Date: "2024-01-01"}, new(*domain.ErrUnsupportedCurrency)},
		{"bad mode", service.CreateExpenseRequest{SubcategoryID: subID, Amount: 5, Currency: "USD", PaymentMode: "cheque", Date: "2024-01-01"}, new(*domain.ErrValidation)},
		{"bad date", service.CreateExpenseRequest{SubcategoryID: subID, Amount: 5, Currency: "USD", PaymentMode: "cash", Date: "01/02/2024"}, new(*domain.ErrValidation)},
		{"foreign subcategory", service.CreateExpenseRequest{SubcategoryID: "nope", Amount: 5, Currency: "USD", PaymentMode: "cash", Date: "2024-01-01"}, new(*domain.ErrNotFound)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateExpense(ctx, userID, &tc.req)
			if err == nil {
				t.Fatal("expected error")
			}
			switch target := tc.want.(type) {
			case **domain.ErrValidation:
				if !errors.As(err, target) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
			case **domain.ErrUnsupportedCurrency:
				if !errors.As(err, target) {
					t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
				}
			case **domain.ErrNotFound:
				if !errors.As(err, target) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
			}
		})
	}

	expense, err := svc.CreateExpense(ctx, userID, &service.CreateExpenseRequest{
		SubcategoryID: subID, Amount: 12.5, Currency: "USD", PaymentMode: "card", Date: "2024-01-15",
	})
	if err != nil {
		t.Fatalf("valid create failed: %v", err)
	}
	if expense.ID == "" {
		t.Error("expected generated id")
	}
}

func TestExpenseService_MonthView(t *testing.T) {
	store := memory.NewStore()
	svc := newExpenseService(store)
	userID, subID := seedUser(t, store, domain.CurrencyUSD)

	addExpense(t, store, userID, subID, 100, domain.CurrencyUSD, domain.PaymentModeCash, "2024-03-01")
	addExpense(t, store, userID, subID, 50, domain.CurrencyUSD, domain.PaymentModeCard, "2024-03-01")
	addExpense(t, store, userID, subID, 100, domain.CurrencyUSD, domain.PaymentModeCash, "2024-03-15")

	view, err := svc.MonthView(context.Background(), userID, 3, 2024)
	if err != nil {
		t.Fatalf("month view: %v", err)
	}

	if view.TotalAmount != 250 {
		t.Errorf("expected total 250, got %v", view.TotalAmount)
	}
	if view.Month != 3 || view.Year != 2024 {
		t.Errorf("unexpected period echo: %d/%d", view.Month, view.Year)
	}
	if view.StartDate != "2024-03-01" || view.EndDate != "2024-03-31" {
		t.Errorf("unexpected range: %s .. %s", view.StartDate, view.EndDate)
	}
	if len(view.Expenses) != 3 {
		t.Errorf("expected 3 expenses, got %d", len(view.Expenses))
	}
	if len(view.Analytics.Daily) != 2 {
		t.Errorf("expected 2 daily entries, got %d", len(view.Analytics.Daily))
	}
	if view.Analytics.MostUsedMode.Mode == nil || *view.Analytics.MostUsedMode.Mode != domain.PaymentModeCash {
		t.Errorf("unexpected most used mode: %+v", view.Analytics.MostUsedMode)
	}
}

func TestExpenseService_MonthViewNormalizesCurrency(t *testing.T) {
	store := memory.NewStore()
	svc := newExpenseService(store)
	userID, subID := seedUser(t, store, domain.CurrencyUSD)

	// 87.35 INR converts to exactly 1 USD.
	addExpense(t, store, userID, subID, 87.35, domain.CurrencyINR, domain.PaymentModeUPI, "2024-06-10")
	addExpense(t, store, userID, subID, 2, domain.CurrencyUSD, domain.PaymentModeUPI, "2024-06-11")

	view, err := svc.MonthView(context.Background(), userID, 6, 2024)
	if err != nil {
		t.Fatalf("month view: %v", err)
	}
	if view.TotalAmount != 3 {
		t.Errorf("expected total 3.00 USD, got %v", view.TotalAmount)
	}
	for _, e := range view.Expenses {
		if e.Currency != domain.CurrencyUSD {
			t.Errorf("expected all expenses in USD, got %s", e.Currency)
		}
	}
}

func TestExpenseService_MonthViewInvalidPeriod(t *testing.T) {
	store := memory.NewStore()
	svc := newExpenseService(store)
	userID, _ := seedUser(t, store, domain.CurrencyUSD)

	_, err := svc.MonthView(context.Background(), userID, 13, 2024)
	var invalid *domain.ErrInvalidPeriod
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}

	_, err = svc.MonthView(context.Background(), userID, 5, 1999)
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidPeriod for year, got %v", err)
	}
}

func TestExpenseService_YearView(t *testing.T) {
	store := memory.NewStore()
	svc := newExpenseService(store)
	userID, subID := seedUser(t, store, domain.CurrencyEUR)

	addExpense(t, store, userID, subID, 10, domain.CurrencyEUR, domain.PaymentModeCash, "2024-02-10")
	addExpense(t, store, userID, subID, 30, domain.CurrencyEUR, domain.PaymentModeCard, "2024-11-05")

	view, err := svc.YearView(context.Background(), userID, 2024)
	if err != nil {
		t.Fatalf("year view: %v", err)
	}
	if view.TotalAmount != 40 {
		t.Errorf("expected total 40, got %v", view.TotalAmount)
	}
	if len(view.Analytics.Monthly) != 12 {
		t.Fatalf("expected 12 month entries, got %d", len(view.Analytics.Monthly))
	}
	if view.Analytics.Monthly[1].Amount != 10 || view.Analytics.Monthly[10].Amount != 30 {
		t.Errorf("unexpected month amounts: %+v", view.Analytics.Monthly)
	}
	if view.StartDate != "2024-01-01" || view.EndDate != "2024-12-31" {
		t.Errorf("unexpected range: %s .. %s", view.StartDate, view.EndDate)
	}
}

func TestExpenseService_YearViewEmpty(t *testing.T) {
	store := memory.NewStore()
	svc := newExpenseService(store)
	userID, _ := seedUser(t, store, domain.CurrencyUSD)

	view, err := svc.YearView(context.Background(), userID, 2023)
	if err != nil {
		t.Fatalf("year view: %v", err)
	}
	if view.TotalAmount != 0 {
		t.Errorf("expected total 0, got %v", view.TotalAmount)
	}
	if len(view.Analytics.Monthly) != 12 {
		t.Errorf("expected zero-filled 12 months, got %d", len(view.Analytics.Monthly))
	}
	if view.Analytics.MostUsedMode.Mode != nil {
		t.Errorf("expected null mode, got %+v", view.Analytics.MostUsedMode)
	}
}

func TestExpenseService_ListPagination(t *testing.T) {
	store := memory.NewStore()
	svc := newExpenseService(store)
	userID, subID := seedUser(t, store, domain.CurrencyUSD)

	for i := 0; i < 25; i++ {
		addExpense(t, store, userID, subID, float64(i+1), domain.CurrencyUSD, domain.PaymentModeCash, "2024-05-10")
	}

	page1, err := svc.ListExpenses(context.Background(), userID, domain.ExpenseFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page1.Data) != 10 || page1.Total != 25 || !page1.HasMore {
		t.Errorf("unexpected page 1: len=%d total=%d hasMore=%v", len(page1.Data), page1.Total, page1.HasMore)
	}

	page3, err := svc.ListExpenses(context.Background(), userID, domain.ExpenseFilter{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page3.Data) != 5 || page3.HasMore {
		t.Errorf("unexpected page 3: len=%d hasMore=%v", len(page3.Data), page3.HasMore)
	}
}

func TestExpenseService_BulkDelete(t *testing.T) {
	store := memory.NewStore()
	svc := newExpenseService(store)
	userID, subID := seedUser(t, store, domain.CurrencyUSD)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		e, err := store.CreateExpense(ctx, &domain.Expense{
			UserID: userID, SubcategoryID: subID, Amount: 10,
			Currency: domain.CurrencyUSD, PaymentMode: domain.PaymentModeCash, Date: time.Now(),
		})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, e.ID)
	}

	deleted, err := svc.DeleteExpenses(ctx, userID, ids[:2])
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	if _, err := svc.GetExpense(ctx, userID, ids[2]); err != nil {
		t.Errorf("survivor should remain: %v", err)
	}
}
