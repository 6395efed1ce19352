package currency_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jayPrakash10/expense-backend/internal/currency"
	"github.com/jayPrakash10/expense-backend/internal/domain"
)

func newConverter() *currency.Converter {
	return currency.NewConverter(currency.DefaultRates())
}

func TestConvert_SameCurrencyIsIdentity(t *testing.T) {
	c := newConverter()

	// Identity must hold even for values that would change under rounding.
	for _, amount := range []float64{0, 10.555, 87.35, 123.456789} {
		got, err := c.Convert(amount, domain.CurrencyINR, domain.CurrencyINR)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != amount {
			t.Errorf("identity broken: Convert(%v, INR, INR) = %v", amount, got)
		}
	}
}

func TestConvert_INRToUSD(t *testing.T) {
	c := newConverter()

	got, err := c.Convert(87.35, domain.CurrencyINR, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.00 {
		t.Errorf("expected 1.00, got %v", got)
	}
}

func TestConvert_USDToEUR(t *testing.T) {
	c := newConverter()

	got, err := c.Convert(100, domain.CurrencyUSD, domain.CurrencyEUR)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 85.00 {
		t.Errorf("expected 85.00, got %v", got)
	}
}

func TestConvert_RoundsHalfUpAtFinalStep(t *testing.T) {
	c := newConverter()

	// 1 INR -> USD = 1/87.35 = 0.011448... -> 0.01
	got, err := c.Convert(1, domain.CurrencyINR, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.01 {
		t.Errorf("expected 0.01, got %v", got)
	}

	// 100 GBP -> EUR = (100/0.74)*0.85 = 114.8648... -> 114.86
	got, err = c.Convert(100, domain.CurrencyGBP, domain.CurrencyEUR)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 114.86 {
		t.Errorf("expected 114.86, got %v", got)
	}
}

func TestConvert_UnsupportedCurrency(t *testing.T) {
	c := newConverter()

	_, err := c.Convert(10, "JPY", domain.CurrencyUSD)
	var unsupported *domain.ErrUnsupportedCurrency
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
	if unsupported.Code != "JPY" {
		t.Errorf("expected offending code JPY, got %s", unsupported.Code)
	}

	_, err = c.Convert(10, domain.CurrencyUSD, "AUD")
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupportedCurrency for target, got %v", err)
	}
}

func TestConvert_RoundTripBound(t *testing.T) {
	c := newConverter()

	pairs := [][2]domain.Currency{
		{domain.CurrencyINR, domain.CurrencyUSD},
		{domain.CurrencyUSD, domain.CurrencyEUR},
		{domain.CurrencyEUR, domain.CurrencyGBP},
		{domain.CurrencyGBP, domain.CurrencyINR},
	}
	for _, amount := range []float64{0.5, 1, 42.42, 100, 9999.99} {
		for _, pair := range pairs {
			there, err := c.Convert(amount, pair[0], pair[1])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			back, err := c.Convert(there, pair[1], pair[0])
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(back-amount) > 0.02 {
				t.Errorf("round trip %v %s->%s->%s drifted to %v", amount, pair[0], pair[1], pair[0], back)
			}
		}
	}
}

func TestNormalizeExpense_PreservesOtherFields(t *testing.T) {
	c := newConverter()

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	in := domain.Expense{
		ID:            "exp-1",
		UserID:        "user-1",
		SubcategoryID: "sub-1",
		Amount:        87.35,
		Currency:      domain.CurrencyINR,
		PaymentMode:   domain.PaymentModeUPI,
		Date:          date,
		Note:          "lunch",
	}

	out, err := c.NormalizeExpense(in, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Amount != 1.00 || out.Currency != domain.CurrencyUSD {
		t.Errorf("expected 1.00 USD, got %v %s", out.Amount, out.Currency)
	}
	if out.ID != in.ID || out.UserID != in.UserID || out.SubcategoryID != in.SubcategoryID ||
		out.PaymentMode != in.PaymentMode || !out.Date.Equal(date) || out.Note != in.Note {
		t.Error("non-amount fields were not preserved")
	}

	// The input record itself must be untouched.
	if in.Amount != 87.35 || in.Currency != domain.CurrencyINR {
		t.Error("input record was mutated")
	}
}

func TestNormalizeExpenses_PureAndOrdered(t *testing.T) {
	c := newConverter()

	in := []domain.Expense{
		{ID: "a", Amount: 100, Currency: domain.CurrencyUSD},
		{ID: "b", Amount: 87.35, Currency: domain.CurrencyINR},
		{ID: "c", Amount: 50, Currency: domain.CurrencyUSD},
	}

	out, err := c.NormalizeExpenses(in, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}
	if out[0].ID != "a" || out[1].ID != "b" || out[2].ID != "c" {
		t.Error("record order was not preserved")
	}
	if out[1].Amount != 1.00 {
		t.Errorf("expected 1.00 for record b, got %v", out[1].Amount)
	}
	if in[1].Amount != 87.35 {
		t.Error("input slice was mutated")
	}
}

func TestNormalizeExpenses_FailsWholeBatch(t *testing.T) {
	c := newConverter()

	in := []domain.Expense{
		{ID: "a", Amount: 10, Currency: domain.CurrencyUSD},
		{ID: "b", Amount: 10, Currency: "XYZ"},
	}

	out, err := c.NormalizeExpenses(in, domain.CurrencyUSD)
	var unsupported *domain.ErrUnsupportedCurrency
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
	if out != nil {
		t.Error("expected nil result on failure")
	}
}

func TestNewConverter_CopiesRateTable(t *testing.T) {
	rates := currency.DefaultRates()
	c := currency.NewConverter(rates)

	rates[domain.CurrencyINR] = 1 // mutate caller's map after construction

	got, err := c.Convert(87.35, domain.CurrencyINR, domain.CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.00 {
		t.Errorf("converter observed external mutation: got %v", got)
	}
}
