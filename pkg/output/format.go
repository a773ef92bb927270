// Package output provides utilities for formatting and displaying portfolio reports.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/iwvelando/rental-portfolio/internal/analysis"
	"github.com/iwvelando/rental-portfolio/internal/paydown"
	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write renders the report in the named format.
func Write(w io.Writer, outputFormat string, report *analysis.Report) error {
	switch outputFormat {
	case constants.OutputFormatJSON:
		return WriteJSON(w, report)
	case constants.OutputFormatPretty, "":
		return WritePretty(w, report)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// WriteJSON encodes the report document. Non-finite values become null.
func WriteJSON(w io.Writer, report *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(report))
}

// WritePretty renders the report as aligned text tables.
func WritePretty(w io.Writer, report *analysis.Report) error {
	pw := &prettyWriter{w: w, p: message.NewPrinter(language.English)}

	pw.printf("=== Portfolio report %s ===\n\n", report.Range)

	s := report.Summary
	pw.printf("--- Summary ---\n")
	pw.printf("Properties        | %d\n", s.PropertyCount)
	pw.printf("Total value       | %s\n", pw.money(s.TotalValue))
	pw.printf("Total debt        | %s\n", pw.money(s.TotalDebt))
	pw.printf("Total equity      | %s (%s)\n", pw.money(s.TotalEquity), format.Percent(s.EquityPercentage))
	pw.printf("Loan to value     | %s\n", format.Percent(s.LTV))
	pw.printf("Income            | %s\n", pw.money(s.Income))
	pw.printf("Expenses          | %s\n", pw.money(s.Expenses))
	pw.printf("Cash flow         | %s\n", pw.money(s.CashFlow))
	pw.printf("ROI (annualized)  | %s\n", format.Percent(s.ROI))
	pw.printf("Debt service      | %s/mo + %s escrow\n", pw.money(s.MonthlyDebtService), pw.money(s.MonthlyEscrow))
	pw.printf("Insurance         | %s/yr\n", pw.money(s.AnnualInsurance))
	pw.printf("Occupancy         | %s\n", format.Percent(s.OccupancyRate))
	pw.printf("Collection        | %s\n", format.Percent(s.CollectionRate))

	if len(report.Properties) > 0 {
		pw.printf("\n--- Properties ---\n")
		pw.printf("Property | NOI | Cap rate | Cash flow | Cash on cash | LTV | IRR\n")
		pw.printf("________ | ___ | ________ | _________ | ____________ | ___ | ___\n")
		for _, m := range report.Properties {
			pw.printf("%s | %s | %s | %s | %s | %s | %s\n",
				m.Name, pw.money(m.NOI), format.Percent(m.CapRate), pw.money(m.CashFlow),
				format.Percent(m.CashOnCash), format.Percent(m.LTV), format.Percent(m.IRR))
		}
	}

	if len(report.Trend) > 0 {
		pw.printf("\n--- Monthly trend ---\n")
		pw.printf("Month   | Income | Expenses | Cash flow\n")
		pw.printf("_____   | ______ | ________ | _________\n")
		for _, m := range report.Trend {
			pw.printf("%s | %s | %s | %s\n", m.Month, pw.money(m.Income), pw.money(m.Expenses), pw.money(m.CashFlow))
		}
	}

	if len(report.ExpenseBreakdown) > 0 {
		pw.printf("\n--- Expenses by category ---\n")
		for _, c := range report.ExpenseBreakdown {
			pw.printf("%s | %s | %d entries | avg %s\n", c.Category, pw.money(c.Total), c.Count, pw.money(c.Average))
		}
	}

	c := report.Comparison
	pw.printf("\n--- Compared with %s ---\n", c.Previous.Range)
	pw.printf("Income    | %s (%s)\n", pw.money(c.IncomeChange), format.Percent(c.IncomeChangePercent))
	pw.printf("Expenses  | %s (%s)\n", pw.money(c.ExpenseChange), format.Percent(c.ExpenseChangePercent))
	pw.printf("Cash flow | %s\n", pw.money(c.CashFlowChange))

	for _, r := range report.Refinance {
		pw.printf("\n--- Refinance: %s ---\n", r.Label)
		pw.printf("Scenario | Payment | Savings/mo | Break-even | Total savings | Grade\n")
		pw.printf("________ | _______ | __________ | __________ | _____________ | _____\n")
		for _, cmp := range r.Comparisons {
			pw.printf("%s | %s | %s | %s | %s | %s\n",
				cmp.Scenario.Label(), pw.money(cmp.NewPayment), pw.money(cmp.MonthlySavings),
				breakEven(cmp.BreakEvenMonths), pw.money(cmp.TotalSavings), cmp.Recommendation)
		}
		if r.Best != nil {
			pw.printf("Best: %s\n", r.Best.Scenario.Label())
		}
	}

	if report.Paydown != nil {
		pw.printf("\n--- Debt paydown ---\n")
		for _, plan := range []paydown.Plan{report.Paydown.Snowball, report.Paydown.Avalanche} {
			pw.printf("%s (%s, %s extra) | %s | %s interest\n",
				plan.Strategy, plan.Model, pw.money(plan.ExtraPayment),
				format.Months(plan.TotalMonths), pw.money(plan.TotalInterest))
		}
		if report.Paydown.Recommended != "" {
			pw.printf("Recommended: %s\n", report.Paydown.Recommended)
		}
	}

	if t := report.PayoffTarget; t != nil {
		pw.printf("\n--- Payoff target (%s) ---\n", format.Months(int(t.Target)))
		if t.Converged {
			pw.printf("Extra payment needed | %s (currently %s)\n", t.ValueDisplay, t.OriginalDisplay)
			pw.printf("Paid off in          | %s\n", format.Months(int(t.Achieved)))
		}
		for _, note := range t.Notes {
			pw.printf("Note: %s\n", note)
		}
	}

	if len(report.LeaseExpirations) > 0 || len(report.InsuranceRenewals) > 0 {
		pw.printf("\n--- Upcoming ---\n")
		for _, l := range report.LeaseExpirations {
			pw.printf("Lease %s ends %s (%d days)\n", l.TenantName, l.LeaseEndDate, l.DaysRemaining)
		}
		for _, r := range report.InsuranceRenewals {
			pw.printf("Insurance %s renews %s (%d days, %s)\n", r.Provider, r.ExpiryDate, r.DaysRemaining, pw.money(r.AnnualPremium))
		}
	}

	if len(report.Warnings) > 0 {
		pw.printf("\n--- Warnings ---\n%s\n", strings.Join(report.Warnings, "\n"))
	}
	return pw.err
}

type prettyWriter struct {
	w   io.Writer
	p   *message.Printer
	err error
}

// printf keeps the first write error and drops later output.
func (pw *prettyWriter) printf(formatStr string, args ...interface{}) {
	if pw.err != nil {
		return
	}
	_, pw.err = pw.p.Fprintf(pw.w, formatStr, args...)
}

func (pw *prettyWriter) money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	if v < 0 {
		return pw.p.Sprintf("-$%.2f", -v)
	}
	return pw.p.Sprintf("$%.2f", v)
}

func breakEven(months float64) string {
	if math.IsInf(months, 1) || math.IsNaN(months) {
		return "never"
	}
	return format.Months(int(months))
}
