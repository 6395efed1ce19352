package analytics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jayPrakash10/expense-backend/internal/analytics"
	"github.com/jayPrakash10/expense-backend/internal/domain"
)

func expense(amount float64, mode domain.PaymentMode, date string) domain.Expense {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return domain.Expense{Amount: amount, PaymentMode: mode, Date: d, Currency: domain.CurrencyUSD}
}

func TestAggregateMonth_Basic(t *testing.T) {
	records := []domain.Expense{
		expense(100, domain.PaymentModeCash, "2024-03-01"),
		expense(50, domain.PaymentModeCard, "2024-03-01"),
		expense(100, domain.PaymentModeCash, "2024-03-15"),
	}

	got, err := analytics.AggregateMonth(records, 3, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.TotalAmount != 250 {
		t.Errorf("expected total 250, got %v", got.TotalAmount)
	}
	if len(got.Daily) != 2 {
		t.Fatalf("expected 2 daily entries, got %d", len(got.Daily))
	}
	if got.Daily[0].Date != "2024-03-01" || got.Daily[0].Amount != 150 {
		t.Errorf("unexpected first entry: %+v", got.Daily[0])
	}
	if got.Daily[1].Date != "2024-03-15" || got.Daily[1].Amount != 100 {
		t.Errorf("unexpected second entry: %+v", got.Daily[1])
	}
	if got.MostUsedMode.Mode == nil || *got.MostUsedMode.Mode != domain.PaymentModeCash || got.MostUsedMode.Count != 2 {
		t.Errorf("unexpected most used mode: %+v", got.MostUsedMode)
	}
	if got.HighestAmountMode.Mode == nil || *got.HighestAmountMode.Mode != domain.PaymentModeCash || got.HighestAmountMode.Amount != 200 {
		t.Errorf("unexpected highest amount mode: %+v", got.HighestAmountMode)
	}
	if got.PaymentModeAmounts[domain.PaymentModeCash] != 200 || got.PaymentModeAmounts[domain.PaymentModeCard] != 50 {
		t.Errorf("unexpected mode amounts: %v", got.PaymentModeAmounts)
	}
}

func TestAggregateMonth_BreakdownIsSparseAndSorted(t *testing.T) {
	records := []domain.Expense{
		expense(5, domain.PaymentModeUPI, "2024-07-30"),
		expense(5, domain.PaymentModeUPI, "2024-07-02"),
		expense(5, domain.PaymentModeUPI, "2024-07-15"),
	}

	got, err := analytics.AggregateMonth(records, 7, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Daily) != 3 {
		t.Fatalf("expected only days present in input, got %d entries", len(got.Daily))
	}
	want := []string{"2024-07-02", "2024-07-15", "2024-07-30"}
	for i, w := range want {
		if got.Daily[i].Date != w {
			t.Errorf("entry %d: expected %s, got %s", i, w, got.Daily[i].Date)
		}
	}
}

func TestAggregateMonth_EmptyInput(t *testing.T) {
	got, err := analytics.AggregateMonth(nil, 1, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalAmount != 0 {
		t.Errorf("expected total 0, got %v", got.TotalAmount)
	}
	if len(got.Daily) != 0 {
		t.Errorf("expected empty breakdown, got %d entries", len(got.Daily))
	}
	if len(got.PaymentModeAmounts) != 0 {
		t.Errorf("expected empty mode amounts, got %v", got.PaymentModeAmounts)
	}
	if got.MostUsedMode.Mode != nil || got.MostUsedMode.Count != 0 {
		t.Errorf("expected null most used mode, got %+v", got.MostUsedMode)
	}
	if got.HighestAmountMode.Mode != nil || got.HighestAmountMode.Amount != 0 {
		t.Errorf("expected null highest amount mode, got %+v", got.HighestAmountMode)
	}
}

func TestAggregateMonth_InvalidPeriod(t *testing.T) {
	cases := []struct {
		name  string
		month int
		year  int
		field string
	}{
		{"month zero", 0, 2024, "month"},
		{"month thirteen", 13, 2024, "month"},
		{"year below floor", 5, 1999, "year"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := analytics.AggregateMonth(nil, tc.month, tc.year)
			var invalid *domain.ErrInvalidPeriod
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidPeriod, got %v", err)
			}
			if invalid.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, invalid.Field)
			}
		})
	}
}

func TestAggregateYear_EmptyInputZeroFills(t *testing.T) {
	got, err := analytics.AggregateYear(nil, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalAmount != 0 {
		t.Errorf("expected total 0, got %v", got.TotalAmount)
	}
	if len(got.Monthly) != 12 {
		t.Fatalf("expected 12 month entries, got %d", len(got.Monthly))
	}
	for i, m := range got.Monthly {
		if m.Month != i+1 || m.Amount != 0 {
			t.Errorf("entry %d: expected month %d amount 0, got %+v", i, i+1, m)
		}
	}
	if got.MostUsedMode.Mode != nil || got.MostUsedMode.Count != 0 {
		t.Errorf("expected null most used mode, got %+v", got.MostUsedMode)
	}
}

func TestAggregateYear_AlwaysTwelveEntries(t *testing.T) {
	records := []domain.Expense{
		expense(10, domain.PaymentModeCash, "2024-02-10"),
		expense(30, domain.PaymentModeCard, "2024-11-05"),
		expense(20, domain.PaymentModeCash, "2024-02-20"),
	}

	got, err := analytics.AggregateYear(records, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Monthly) != 12 {
		t.Fatalf("expected 12 month entries, got %d", len(got.Monthly))
	}
	if got.Monthly[1].Amount != 30 { // February
		t.Errorf("expected 30 for February, got %v", got.Monthly[1].Amount)
	}
	if got.Monthly[10].Amount != 30 { // November
		t.Errorf("expected 30 for November, got %v", got.Monthly[10].Amount)
	}
	if got.Monthly[5].Amount != 0 {
		t.Errorf("expected zero-filled June, got %v", got.Monthly[5].Amount)
	}
	if got.TotalAmount != 60 {
		t.Errorf("expected total 60, got %v", got.TotalAmount)
	}
}

func TestAggregateYear_InvalidPeriod(t *testing.T) {
	_, err := analytics.AggregateYear(nil, 1987)
	var invalid *domain.ErrInvalidPeriod
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if invalid.Field != "year" || invalid.Value != 1987 {
		t.Errorf("unexpected error detail: %+v", invalid)
	}
}

func TestAggregate_TieBreakFirstInInputWins(t *testing.T) {
	// card and cash both occur twice and sum to the same amount; card
	// appears first so it must win both leader slots.
	records := []domain.Expense{
		expense(40, domain.PaymentModeCard, "2024-05-01"),
		expense(10, domain.PaymentModeCash, "2024-05-02"),
		expense(10, domain.PaymentModeCard, "2024-05-03"),
		expense(40, domain.PaymentModeCash, "2024-05-04"),
	}

	got, err := analytics.AggregateMonth(records, 5, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MostUsedMode.Mode == nil || *got.MostUsedMode.Mode != domain.PaymentModeCard {
		t.Errorf("expected card to win the count tie, got %+v", got.MostUsedMode)
	}
	if got.MostUsedMode.Count != 2 {
		t.Errorf("expected count 2, got %d", got.MostUsedMode.Count)
	}
	if got.HighestAmountMode.Mode == nil || *got.HighestAmountMode.Mode != domain.PaymentModeCard {
		t.Errorf("expected card to win the amount tie, got %+v", got.HighestAmountMode)
	}
	if got.HighestAmountMode.Amount != 50 {
		t.Errorf("expected amount 50, got %v", got.HighestAmountMode.Amount)
	}
}

func TestAggregate_SumInvariant(t *testing.T) {
	records := []domain.Expense{
		expense(12.5, domain.PaymentModeCash, "2024-09-01"),
		expense(7.25, domain.PaymentModeUPI, "2024-09-02"),
		expense(80, domain.PaymentModeNetBanking, "2024-09-10"),
		expense(0.25, domain.PaymentModeUPI, "2024-09-21"),
	}

	month, err := analytics.AggregateMonth(records, 9, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	year, err := analytics.AggregateYear(records, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, s := range map[string]*domain.PeriodSummary{"month": month, "year": year} {
		var sum float64
		for _, amount := range s.PaymentModeAmounts {
			sum += amount
		}
		if sum != s.TotalAmount {
			t.Errorf("%s: mode amounts sum %v != total %v", name, sum, s.TotalAmount)
		}
	}
}

func TestAggregateMonth_SumsInInputOrder(t *testing.T) {
	// Totals accumulate over records as given; duplicate days merge.
	records := []domain.Expense{
		expense(1.1, domain.PaymentModeOther, "2024-01-03"),
		expense(2.2, domain.PaymentModeOther, "2024-01-03"),
		expense(3.3, domain.PaymentModeOther, "2024-01-03"),
	}

	got, err := analytics.AggregateMonth(records, 1, 2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Daily) != 1 {
		t.Fatalf("expected one merged day, got %d", len(got.Daily))
	}
	if got.Daily[0].Amount != got.TotalAmount {
		t.Errorf("day amount %v != total %v", got.Daily[0].Amount, got.TotalAmount)
	}
}
