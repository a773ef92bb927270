// Package portfolio aggregates property, mortgage and ledger records into
// point-in-time and period metrics.
package portfolio

import (
	"github.com/iwvelando/rental-portfolio/internal/reports"
	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/finance"
	"github.com/iwvelando/rental-portfolio/pkg/mathutil"
	"github.com/iwvelando/rental-portfolio/pkg/records"
	"go.uber.org/zap"
)

// Assumptions are the investment inputs the records do not carry.
type Assumptions struct {
	DownPaymentRatio  float64             `yaml:"downPaymentRatio" mapstructure:"downPaymentRatio"`
	TaxBracket        float64             `yaml:"taxBracket" mapstructure:"taxBracket"`
	DepreciationYears float64             `yaml:"depreciationYears" mapstructure:"depreciationYears"`
	IRRHorizonYears   int                 `yaml:"irrHorizonYears" mapstructure:"irrHorizonYears"`
	IRR               finance.IRRSettings `yaml:"-" mapstructure:"-"`
}

// DefaultAssumptions returns 20% down, a 24% bracket, 27.5 year depreciation
// and a 30 year IRR horizon.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		DownPaymentRatio:  constants.DefaultDownPaymentRatio,
		TaxBracket:        constants.DefaultTaxBracket,
		DepreciationYears: constants.DefaultDepreciationYears,
		IRRHorizonYears:   constants.DefaultIRRHorizonYears,
		IRR:               finance.DefaultIRRSettings(),
	}
}

// Normalize fills unset fields with defaults.
func (a Assumptions) Normalize() Assumptions {
	defaults := DefaultAssumptions()
	if a.DownPaymentRatio <= 0 {
		a.DownPaymentRatio = defaults.DownPaymentRatio
	}
	if a.TaxBracket <= 0 {
		a.TaxBracket = defaults.TaxBracket
	}
	if a.DepreciationYears <= 0 {
		a.DepreciationYears = defaults.DepreciationYears
	}
	if a.IRRHorizonYears <= 0 {
		a.IRRHorizonYears = defaults.IRRHorizonYears
	}
	a.IRR = a.IRR.Normalize()
	return a
}

// Calculator computes portfolio and per-property metrics.
type Calculator struct {
	assumptions Assumptions
	logger      *zap.Logger
}

// NewCalculator returns a calculator with normalized assumptions.
func NewCalculator(logger *zap.Logger, assumptions Assumptions) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{assumptions: assumptions.Normalize(), logger: logger}
}

// Assumptions returns the normalized assumptions in use.
func (c *Calculator) Assumptions() Assumptions {
	return c.assumptions
}

// Summary is the portfolio-wide view for one window. LTV, EquityPercentage,
// ROI, OccupancyRate and CollectionRate are percentages.
type Summary struct {
	PropertyCount      int     `json:"property_count"`
	TotalValue         float64 `json:"total_value"`
	TotalDebt          float64 `json:"total_debt"`
	TotalEquity        float64 `json:"total_equity"`
	LTV                float64 `json:"ltv"`
	EquityPercentage   float64 `json:"equity_percentage"`
	Income             float64 `json:"income"`
	Expenses           float64 `json:"expenses"`
	CashFlow           float64 `json:"cash_flow"`
	ROI                float64 `json:"roi"`
	MonthlyDebtService float64 `json:"monthly_debt_service"`
	MonthlyEscrow      float64 `json:"monthly_escrow"`
	AnnualInsurance    float64 `json:"annual_insurance"`
	OccupancyRate      float64 `json:"occupancy_rate"`
	CollectionRate     float64 `json:"collection_rate"`
}

// Summarize aggregates the snapshot over window. Debt counts only mortgages
// secured by a property in the snapshot. ROI is the window's cash flow over
// total value annualized by 12 whatever the window length, so it is exact only
// for one-month windows.
func (c *Calculator) Summarize(snapshot records.Snapshot, window reports.Range) Summary {
	s := Summary{PropertyCount: len(snapshot.Properties)}
	owned := records.PropertyIDs(snapshot.Properties)

	for _, p := range snapshot.Properties {
		s.TotalValue += p.CurrentValue
	}
	for _, m := range snapshot.Mortgages {
		if !owned[m.PropertyID] {
			continue
		}
		s.TotalDebt += m.CurrentBalance
		s.MonthlyDebtService += m.MonthlyPayment
		s.MonthlyEscrow += m.EscrowPayment
	}
	for _, policy := range snapshot.InsurancePolicies {
		if owned[policy.PropertyID] {
			s.AnnualInsurance += policy.AnnualPremium
		}
	}

	s.TotalEquity = s.TotalValue - s.TotalDebt
	s.LTV = mathutil.CalculatePercentage(s.TotalDebt, s.TotalValue)
	s.EquityPercentage = mathutil.CalculatePercentage(s.TotalEquity, s.TotalValue)

	s.Income = reports.SumRentPayments(reports.RentPaymentsIn(snapshot.RentPayments, window))
	s.Expenses = reports.SumExpenses(reports.ExpensesIn(snapshot.Expenses, window))
	s.CashFlow = s.Income - s.Expenses
	s.ROI = mathutil.SafeDivide(s.CashFlow, s.TotalValue) * constants.PercentageMultiplier * constants.MonthsPerYear

	s.OccupancyRate = OccupancyRate(snapshot.Properties, snapshot.Tenants)
	s.CollectionRate = CollectionRate(snapshot.Properties, snapshot.Tenants, snapshot.RentPayments, window)

	c.logger.Debug("summarized portfolio",
		zap.String("op", "portfolio.Summarize"),
		zap.String("window", window.String()),
		zap.Int("properties", s.PropertyCount),
		zap.Float64("totalValue", s.TotalValue),
		zap.Float64("totalDebt", s.TotalDebt),
		zap.Float64("cashFlow", s.CashFlow),
	)
	return s
}
