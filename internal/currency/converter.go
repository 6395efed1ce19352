// Package currency converts expense amounts between supported currencies
// through a USD-pivot rate table. All functions are pure: they never touch
// their inputs and depend only on the rate table the Converter was built with.
package currency

import (
	"math"

	"github.com/jayPrakash10/expense-backend/internal/domain"
)

// RateTable maps a currency code to its value in units per 1 USD.
type RateTable map[domain.Currency]float64

// DefaultRates is the built-in conversion table. USD is the pivot.
func DefaultRates() RateTable {
	return RateTable{
		domain.CurrencyUSD: 1,
		domain.CurrencyINR: 87.35,
		domain.CurrencyEUR: 0.85,
		domain.CurrencyGBP: 0.74,
	}
}

// Converter performs conversions against a fixed rate table. The table is
// copied on construction so later mutation of the caller's map has no effect.
type Converter struct {
	rates RateTable
}

// NewConverter builds a Converter over a private copy of rates.
func NewConverter(rates RateTable) *Converter {
	own := make(RateTable, len(rates))
	for code, rate := range rates {
		own[code] = rate
	}
	return &Converter{rates: own}
}

// Convert converts amount from one currency to another.
//
// Same-currency conversions return the amount unchanged, without rounding.
// Otherwise the amount is taken through USD and rounded half-up to two
// decimals as the final step only. Unknown codes fail before any arithmetic.
func (c *Converter) Convert(amount float64, from, to domain.Currency) (float64, error) {
	fromRate, ok := c.rates[from]
	if !ok {
		return 0, &domain.ErrUnsupportedCurrency{Code: from}
	}
	toRate, ok := c.rates[to]
	if !ok {
		return 0, &domain.ErrUnsupportedCurrency{Code: to}
	}

	if from == to {
		return amount, nil
	}

	usd := amount / fromRate
	return round2(usd * toRate), nil
}

// NormalizeExpense returns a copy of e with its amount converted to target
// and its currency field set to target. Every other field is untouched.
func (c *Converter) NormalizeExpense(e domain.Expense, target domain.Currency) (domain.Expense, error) {
	converted, err := c.Convert(e.Amount, e.Currency, target)
	if err != nil {
		return domain.Expense{}, err
	}
	e.Amount = converted
	e.Currency = target
	return e, nil
}

// NormalizeExpenses applies NormalizeExpense to each record, preserving
// order. The input slice is never modified. A single bad record fails the
// whole batch.
func (c *Converter) NormalizeExpenses(expenses []domain.Expense, target domain.Currency) ([]domain.Expense, error) {
	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		normalized, err := c.NormalizeExpense(e, target)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

// round2 rounds half-up to two decimal places. Amounts are non-negative,
// so rounding away from zero and rounding up coincide.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
