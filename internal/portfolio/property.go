package portfolio

import (
	"errors"
	"math"
	"time"

	"github.com/iwvelando/rental-portfolio/internal/reports"
	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/datetime"
	"github.com/iwvelando/rental-portfolio/pkg/finance"
	"github.com/iwvelando/rental-portfolio/pkg/mathutil"
	"github.com/iwvelando/rental-portfolio/pkg/records"
	"go.uber.org/zap"
)

// PropertyMetrics is the per-property view for one window. CapRate, LTV,
// CashOnCash and IRR are percentages. IRR is NaN when it cannot be determined.
type PropertyMetrics struct {
	PropertyID         records.ID `json:"property_id"`
	Name               string     `json:"name"`
	CurrentValue       float64    `json:"current_value"`
	PurchasePrice      float64    `json:"purchase_price"`
	Debt               float64    `json:"debt"`
	Equity             float64    `json:"equity"`
	LTV                float64    `json:"ltv"`
	Income             float64    `json:"income"`
	Expenses           float64    `json:"expenses"`
	NOI                float64    `json:"noi"`
	CapRate            float64    `json:"cap_rate"`
	MortgagePayment    float64    `json:"mortgage_payment"`
	CashFlow           float64    `json:"cash_flow"`
	AnnualCashFlow     float64    `json:"annual_cash_flow"`
	CashInvested       float64    `json:"cash_invested"`
	CashOnCash         float64    `json:"cash_on_cash"`
	HoldingYears       int        `json:"holding_years"`
	AnnualDepreciation float64    `json:"annual_depreciation"`
	TaxSavings         float64    `json:"tax_savings"`
	IRR                float64    `json:"irr"`
	IRRDeterminable    bool       `json:"irr_determinable"`
}

// CompareProperties computes metrics for every property, in snapshot order.
func (c *Calculator) CompareProperties(snapshot records.Snapshot, window reports.Range, now time.Time) []PropertyMetrics {
	expenses := reports.ExpensesIn(snapshot.Expenses, window)
	payments := reports.RentPaymentsIn(snapshot.RentPayments, window)

	metrics := make([]PropertyMetrics, 0, len(snapshot.Properties))
	for _, p := range snapshot.Properties {
		metrics = append(metrics, c.propertyMetrics(p, snapshot.MortgagesFor(p.ID), expenses, payments, now))
	}
	return metrics
}

func (c *Calculator) propertyMetrics(p records.Property, mortgages []records.Mortgage, expenses []records.Expense, payments []records.RentPayment, now time.Time) PropertyMetrics {
	m := PropertyMetrics{
		PropertyID:    p.ID,
		Name:          p.Label(),
		CurrentValue:  p.CurrentValue,
		PurchasePrice: p.PurchasePrice,
	}

	for _, mortgage := range mortgages {
		m.Debt += mortgage.CurrentBalance
		m.MortgagePayment += mortgage.MonthlyPayment
	}
	m.Equity = p.CurrentValue - m.Debt
	m.LTV = finance.LoanToValue(m.Debt, p.CurrentValue)

	for _, pay := range payments {
		if pay.PropertyID == p.ID {
			m.Income += pay.Amount
		}
	}
	for _, e := range expenses {
		if e.PropertyID == p.ID {
			m.Expenses += e.Amount
		}
	}

	m.NOI = m.Income - m.Expenses
	m.CapRate = finance.CapRate(m.NOI, p.PurchasePrice)
	m.CashFlow = m.NOI - m.MortgagePayment
	m.AnnualCashFlow = m.CashFlow * constants.MonthsPerYear
	m.CashInvested = finance.CashInvested(p.PurchasePrice, c.assumptions.DownPaymentRatio)
	m.CashOnCash = finance.CashOnCash(m.AnnualCashFlow, m.CashInvested)
	m.AnnualDepreciation = finance.AnnualDepreciation(p.PurchasePrice, c.assumptions.DepreciationYears)
	m.TaxSavings = finance.TaxSavings(m.AnnualDepreciation, c.assumptions.TaxBracket)

	m.HoldingYears = c.holdingYears(p, now)
	flows := finance.HoldingCashFlows(m.CashInvested, m.AnnualCashFlow, p.CurrentValue, m.HoldingYears)
	rate, err := finance.SolveIRR(flows, c.assumptions.IRR)
	if err != nil {
		m.IRR = math.NaN()
		level := zap.DebugLevel
		if errors.Is(err, finance.ErrIRRNonConvergent) {
			level = zap.WarnLevel
		}
		if ce := c.logger.Check(level, "irr undeterminable"); ce != nil {
			ce.Write(
				zap.String("op", "portfolio.CompareProperties"),
				zap.String("property", m.Name),
				zap.Error(err),
			)
		}
	} else {
		m.IRR = rate * constants.PercentageMultiplier
		m.IRRDeterminable = true
	}
	return m
}

// holdingYears is the whole years since purchase clamped to [1, horizon].
// Missing or unparsable purchase dates count as one year.
func (c *Calculator) holdingYears(p records.Property, now time.Time) int {
	years := 0
	if purchased, ok := datetime.ParseDate(p.PurchaseDate); ok {
		years = datetime.YearsBetween(purchased, now)
	}
	return int(mathutil.Max(1, mathutil.Min(float64(years), float64(c.assumptions.IRRHorizonYears))))
}
