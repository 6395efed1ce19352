package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/infra/cache"
	"github.com/jayPrakash10/expense-backend/internal/infra/memory"
	"github.com/jayPrakash10/expense-backend/internal/service"
)

func newCategoryService(store *memory.Store) *service.CategoryService {
	return service.NewCategoryService(store, store, zap.NewNop())
}

func TestCategoryService_CreateWithSubcategories(t *testing.T) {
	store := memory.NewStore()
	svc := newCategoryService(store)
	userID, _ := seedUser(t, store, domain.CurrencyUSD)

	cat, err := svc.CreateCategory(context.Background(), userID, &service.CreateCategoryRequest{
		Name:          "Travel",
		Color:         "#00aaff",
		Subcategories: []string{"Flights", "Hotels"},
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if len(cat.Subcategories) != 2 {
		t.Errorf("expected 2 subcategories, got %d", len(cat.Subcategories))
	}

	// Duplicate names per user are rejected.
	_, err = svc.CreateCategory(context.Background(), userID, &service.CreateCategoryRequest{Name: "travel"})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCategoryService_DuplicateSubcategoryName(t *testing.T) {
	store := memory.NewStore()
	svc := newCategoryService(store)
	userID, _ := seedUser(t, store, domain.CurrencyUSD)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, userID, &service.CreateCategoryRequest{Name: "Bills", Subcategories: []string{"Rent"}})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.CreateSubcategory(ctx, userID, &service.CreateSubcategoryRequest{CategoryID: cat.ID, Name: "rent"})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCategoryService_BulkDeleteCascades(t *testing.T) {
	store := memory.NewStore()
	svc := newCategoryService(store)
	userID, _ := seedUser(t, store, domain.CurrencyUSD)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, userID, &service.CreateCategoryRequest{
		Name:          "Shopping",
		Subcategories: []string{"Clothes", "Gadgets"},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Pin one of the subcategories in quick-add.
	if _, err := store.UpdateSettings(ctx, userID, map[string]any{
		"quick_add": []string{cat.Subcategories[0].ID, "unrelated-id"},
	}); err != nil {
		t.Fatal(err)
	}

	deleted, err := svc.DeleteCategories(ctx, userID, []string{cat.ID, "missing-id"})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted (missing ids skipped), got %d", deleted)
	}

	if _, err := store.GetCategory(ctx, userID, cat.ID); err == nil {
		t.Error("category should be gone")
	}
	subs, _ := store.ListSubcategoriesByCategory(ctx, userID, cat.ID)
	if len(subs) != 0 {
		t.Errorf("subcategories should cascade, %d remain", len(subs))
	}

	settings, err := store.GetSettings(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if len(settings.QuickAdd) != 1 || settings.QuickAdd[0] != "unrelated-id" {
		t.Errorf("quick-add should be scrubbed, got %v", settings.QuickAdd)
	}
}

func TestCategoryService_DeleteSubcategoryScrubsQuickAdd(t *testing.T) {
	store := memory.NewStore()
	svc := newCategoryService(store)
	userID, subID := seedUser(t, store, domain.CurrencyUSD)
	ctx := context.Background()

	if _, err := store.UpdateSettings(ctx, userID, map[string]any{"quick_add": []string{subID}}); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteSubcategory(ctx, userID, subID); err != nil {
		t.Fatalf("delete subcategory: %v", err)
	}

	settings, _ := store.GetSettings(ctx, userID)
	if len(settings.QuickAdd) != 0 {
		t.Errorf("quick-add should be scrubbed, got %v", settings.QuickAdd)
	}
}

func TestSettingsService_UpdateInvalidatesCache(t *testing.T) {
	store := memory.NewStore()
	settingsCache := cache.New[*domain.UserSettings](5 * time.Minute)
	svc := service.NewSettingsService(store, store, settingsCache, zap.NewNop())
	userID, _ := seedUser(t, store, domain.CurrencyUSD)
	ctx := context.Background()

	// Simulate a cached read by the expense service.
	cached, _ := store.GetSettings(ctx, userID)
	settingsCache.Set("settings:"+userID, cached)

	eur := domain.CurrencyEUR
	updated, err := svc.UpdateSettings(ctx, userID, &domain.UpdateSettingsRequest{Currency: &eur})
	if err != nil {
		t.Fatalf("update settings: %v", err)
	}
	if updated.Currency != domain.CurrencyEUR {
		t.Errorf("expected EUR, got %s", updated.Currency)
	}
	if _, ok := settingsCache.Get("settings:" + userID); ok {
		t.Error("cache entry should be invalidated")
	}
}

func TestSettingsService_RejectsBadEnums(t *testing.T) {
	store := memory.NewStore()
	svc := service.NewSettingsService(store, store, cache.New[*domain.UserSettings](time.Minute), zap.NewNop())
	userID, _ := seedUser(t, store, domain.CurrencyUSD)
	ctx := context.Background()

	bad := domain.Currency("YEN")
	_, err := svc.UpdateSettings(ctx, userID, &domain.UpdateSettingsRequest{Currency: &bad})
	var unsupported *domain.ErrUnsupportedCurrency
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}

	lang := "xx"
	_, err = svc.UpdateSettings(ctx, userID, &domain.UpdateSettingsRequest{Language: &lang})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestIncomeService_GetOrCreateCurrentMonth(t *testing.T) {
	store := memory.NewStore()
	svc := service.NewIncomeService(store, store, zap.NewNop())
	userID, _ := seedUser(t, store, domain.CurrencyGBP)
	ctx := context.Background()

	if _, err := store.UpdateSettings(ctx, userID, map[string]any{"current_income": 2500.0}); err != nil {
		t.Fatal(err)
	}

	income, err := svc.CurrentMonthIncome(ctx, userID)
	if err != nil {
		t.Fatalf("current month income: %v", err)
	}
	now := time.Now()
	if income.Month != int(now.Month()) || income.Year != now.Year() {
		t.Errorf("unexpected period: %d/%d", income.Month, income.Year)
	}
	if income.Amount != 2500 || income.Currency != domain.CurrencyGBP {
		t.Errorf("defaults not seeded from settings: %+v", income)
	}

	// Second call returns the same row, not a new one.
	again, err := svc.CurrentMonthIncome(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != income.ID {
		t.Error("expected the existing row on repeat access")
	}

	updated, err := svc.UpdateCurrentMonthIncome(ctx, userID, 3000)
	if err != nil {
		t.Fatalf("update income: %v", err)
	}
	if updated.Amount != 3000 {
		t.Errorf("expected 3000, got %v", updated.Amount)
	}

	rows, err := svc.IncomesForYear(ctx, userID, now.Year())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 row for the year, got %d", len(rows))
	}
}
