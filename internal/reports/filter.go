package reports

import (
	"github.com/iwvelando/rental-portfolio/pkg/mathutil"
	"github.com/iwvelando/rental-portfolio/pkg/records"
)

// FilterByDateRange keeps the records whose date falls inside r, inclusive on
// both ends. Records with blank or unparsable dates are dropped.
func FilterByDateRange[T any](items []T, r Range, dateOf func(T) string) []T {
	var kept []T
	for _, item := range items {
		if r.ContainsDate(dateOf(item)) {
			kept = append(kept, item)
		}
	}
	return kept
}

// ExpensesIn filters expenses by their date.
func ExpensesIn(expenses []records.Expense, r Range) []records.Expense {
	return FilterByDateRange(expenses, r, func(e records.Expense) string { return e.Date })
}

// RentPaymentsIn filters rent payments by their paid date.
func RentPaymentsIn(payments []records.RentPayment, r Range) []records.RentPayment {
	return FilterByDateRange(payments, r, func(p records.RentPayment) string { return p.PaidDate })
}

// SumExpenses totals expense amounts to the cent.
func SumExpenses(expenses []records.Expense) float64 {
	amounts := make([]float64, len(expenses))
	for i, e := range expenses {
		amounts[i] = e.Amount
	}
	return mathutil.SumCents(amounts...)
}

// SumRentPayments totals rent payment amounts to the cent.
func SumRentPayments(payments []records.RentPayment) float64 {
	amounts := make([]float64, len(payments))
	for i, p := range payments {
		amounts[i] = p.Amount
	}
	return mathutil.SumCents(amounts...)
}
