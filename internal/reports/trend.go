package reports

import (
	"sort"
	"strings"

	"github.com/iwvelando/rental-portfolio/pkg/datetime"
	"github.com/iwvelando/rental-portfolio/pkg/mathutil"
	"github.com/iwvelando/rental-portfolio/pkg/records"
)

// UncategorizedExpense is the bucket for expenses without a category.
const UncategorizedExpense = "other"

// TrendMonth is one calendar month of activity.
type TrendMonth struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	CashFlow float64 `json:"cash_flow"`
}

// CategoryTotal aggregates the expenses of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
	Average  float64 `json:"average"`
}

// PeriodTotals is the income and expense of one window.
type PeriodTotals struct {
	Range    Range   `json:"range"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	CashFlow float64 `json:"cash_flow"`
}

// PeriodComparison sets a window against the equally long window before it.
type PeriodComparison struct {
	Current              PeriodTotals `json:"current"`
	Previous             PeriodTotals `json:"previous"`
	IncomeChange         float64      `json:"income_change"`
	ExpenseChange        float64      `json:"expense_change"`
	CashFlowChange       float64      `json:"cash_flow_change"`
	IncomeChangePercent  float64      `json:"income_change_percent"`
	ExpenseChangePercent float64      `json:"expense_change_percent"`
}

// MonthlyTrend emits one row per calendar month from r's start month through
// its end month, zero-filled and in chronological order. Income is bucketed by
// paid date and expenses by date; records in months outside the walk are
// ignored.
func MonthlyTrend(expenses []records.Expense, payments []records.RentPayment, r Range) []TrendMonth {
	keys := r.Months()
	if len(keys) == 0 {
		return nil
	}

	trend := make([]TrendMonth, len(keys))
	index := make(map[string]int, len(keys))
	for i, key := range keys {
		trend[i] = TrendMonth{Month: key}
		index[key] = i
	}

	for _, p := range payments {
		key, ok := datetime.RecordMonthKey(p.PaidDate)
		if !ok {
			continue
		}
		if i, found := index[key]; found {
			trend[i].Income += p.Amount
		}
	}
	for _, e := range expenses {
		key, ok := datetime.RecordMonthKey(e.Date)
		if !ok {
			continue
		}
		if i, found := index[key]; found {
			trend[i].Expenses += e.Amount
		}
	}

	for i := range trend {
		trend[i].Income = mathutil.RoundCents(trend[i].Income)
		trend[i].Expenses = mathutil.RoundCents(trend[i].Expenses)
		trend[i].CashFlow = mathutil.RoundCents(trend[i].Income - trend[i].Expenses)
	}
	return trend
}

// ExpenseBreakdown groups the expenses inside r by category, largest total
// first. Ties are ordered by category name.
func ExpenseBreakdown(expenses []records.Expense, r Range) []CategoryTotal {
	totals := make(map[string]*CategoryTotal)
	for _, e := range ExpensesIn(expenses, r) {
		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = UncategorizedExpense
		}
		entry, ok := totals[category]
		if !ok {
			entry = &CategoryTotal{Category: category}
			totals[category] = entry
		}
		entry.Total += e.Amount
		entry.Count++
	}

	breakdown := make([]CategoryTotal, 0, len(totals))
	for _, entry := range totals {
		entry.Average = mathutil.SafeDivide(entry.Total, float64(entry.Count))
		breakdown = append(breakdown, *entry)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Total != breakdown[j].Total {
			return breakdown[i].Total > breakdown[j].Total
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// Totals sums the income and expenses that fall inside r.
func Totals(expenses []records.Expense, payments []records.RentPayment, r Range) PeriodTotals {
	income := SumRentPayments(RentPaymentsIn(payments, r))
	spent := SumExpenses(ExpensesIn(expenses, r))
	return PeriodTotals{
		Range:    r,
		Income:   income,
		Expenses: spent,
		CashFlow: mathutil.RoundCents(income - spent),
	}
}

// ComparePeriods compares current with the window of the same length that
// ends just before it. Percent changes are 0 when the previous value is 0.
func ComparePeriods(expenses []records.Expense, payments []records.RentPayment, current Range) PeriodComparison {
	now := Totals(expenses, payments, current)
	before := Totals(expenses, payments, current.Previous())
	return PeriodComparison{
		Current:              now,
		Previous:             before,
		IncomeChange:         now.Income - before.Income,
		ExpenseChange:        now.Expenses - before.Expenses,
		CashFlowChange:       now.CashFlow - before.CashFlow,
		IncomeChangePercent:  mathutil.PercentChange(before.Income, now.Income),
		ExpenseChangePercent: mathutil.PercentChange(before.Expenses, now.Expenses),
	}
}
