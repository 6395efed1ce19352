// Package analytics computes period summaries over expense records.
//
// Aggregation is pure: callers pre-filter records to the requested period
// (and normalize currencies first when mixing them), and the functions here
// only fold the slice they are given. Records are processed in input order,
// which is what makes the tie-break rules deterministic.
package analytics

import (
	"sort"

	"github.com/jayPrakash10/expense-backend/internal/domain"
)

const minYear = 2000

// AggregateMonth summarizes expenses for one calendar month.
//
// The daily breakdown is sparse: only days with at least one expense appear,
// keyed YYYY-MM-DD in ascending order.
func AggregateMonth(records []domain.Expense, month, year int) (*domain.PeriodSummary, error) {
	if month < 1 || month > 12 {
		return nil, &domain.ErrInvalidPeriod{Field: "month", Value: month}
	}
	if year < minYear {
		return nil, &domain.ErrInvalidPeriod{Field: "year", Value: year}
	}

	summary := summarizeModes(records)

	daily := make(map[string]float64)
	for _, e := range records {
		summary.TotalAmount += e.Amount
		daily[e.Date.Format("2006-01-02")] += e.Amount
	}

	keys := make([]string, 0, len(daily))
	for k := range daily {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	summary.Daily = make([]domain.DayAmount, 0, len(keys))
	for _, k := range keys {
		summary.Daily = append(summary.Daily, domain.DayAmount{Date: k, Amount: daily[k]})
	}
	return summary, nil
}

// AggregateYear summarizes expenses for one calendar year.
//
// Unlike the month view, the breakdown is dense: always exactly 12 entries,
// one per month, zero-filled where nothing was spent.
func AggregateYear(records []domain.Expense, year int) (*domain.PeriodSummary, error) {
	if year < minYear {
		return nil, &domain.ErrInvalidPeriod{Field: "year", Value: year}
	}

	summary := summarizeModes(records)

	var monthly [13]float64 // index 1-12
	for _, e := range records {
		summary.TotalAmount += e.Amount
		monthly[int(e.Date.Month())] += e.Amount
	}

	summary.Monthly = make([]domain.MonthAmount, 0, 12)
	for m := 1; m <= 12; m++ {
		summary.Monthly = append(summary.Monthly, domain.MonthAmount{Month: m, Amount: monthly[m]})
	}
	return summary, nil
}

// summarizeModes folds the payment-mode stats shared by both period kinds.
// Leaders are decided over first-seen mode order with a strict greater-than,
// so on a tie the mode that appeared first in the input wins.
func summarizeModes(records []domain.Expense) *domain.PeriodSummary {
	counts := make(map[domain.PaymentMode]int)
	amounts := make(map[domain.PaymentMode]float64)
	var seen []domain.PaymentMode

	for _, e := range records {
		if _, ok := counts[e.PaymentMode]; !ok {
			seen = append(seen, e.PaymentMode)
		}
		counts[e.PaymentMode]++
		amounts[e.PaymentMode] += e.Amount
	}

	summary := &domain.PeriodSummary{
		PaymentModeAmounts: amounts,
		MostUsedMode:       domain.ModeCount{Mode: nil, Count: 0},
		HighestAmountMode:  domain.ModeAmount{Mode: nil, Amount: 0},
	}

	for _, mode := range seen {
		mode := mode
		if summary.MostUsedMode.Mode == nil || counts[mode] > summary.MostUsedMode.Count {
			summary.MostUsedMode = domain.ModeCount{Mode: &mode, Count: counts[mode]}
		}
		if summary.HighestAmountMode.Mode == nil || amounts[mode] > summary.HighestAmountMode.Amount {
			summary.HighestAmountMode = domain.ModeAmount{Mode: &mode, Amount: amounts[mode]}
		}
	}
	return summary
}
