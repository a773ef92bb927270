// Package analysis runs every calculation for a portfolio snapshot and
// collects the results into a single report.
package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/rental-portfolio/internal/config"
	"github.com/iwvelando/rental-portfolio/internal/optimizer"
	"github.com/iwvelando/rental-portfolio/internal/paydown"
	"github.com/iwvelando/rental-portfolio/internal/portfolio"
	"github.com/iwvelando/rental-portfolio/internal/refinance"
	"github.com/iwvelando/rental-portfolio/internal/reports"
	"github.com/iwvelando/rental-portfolio/pkg/adapters"
	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/datetime"
	"github.com/iwvelando/rental-portfolio/pkg/optimization"
	"github.com/iwvelando/rental-portfolio/pkg/records"
	"go.uber.org/zap"
)

// Settings configure an Engine.
type Settings struct {
	Assumptions portfolio.Assumptions
	Policy      refinance.Policy
	// Scenarios are evaluated against every mortgage. When empty the default
	// rate/term grid is derived per mortgage.
	Scenarios []refinance.Scenario

	ExtraPayment   float64
	MaxMonths      int
	Model          paydown.Model
	TargetStrategy paydown.Strategy
	// TargetMonths enables the payoff-target search when positive.
	TargetMonths int

	LeaseWindowDays     int
	InsuranceWindowDays int
}

// SettingsFromConfiguration maps a loaded configuration onto engine settings.
func SettingsFromConfiguration(conf *config.Configuration) (Settings, error) {
	model, err := conf.PaydownModel()
	if err != nil {
		return Settings{}, err
	}
	strategy, err := conf.PaydownStrategy()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Assumptions:         conf.PortfolioAssumptions(),
		Policy:              conf.RefinancePolicy(),
		Scenarios:           conf.Refinance.Scenarios,
		ExtraPayment:        conf.Paydown.ExtraPayment,
		MaxMonths:           conf.Paydown.MaxMonths,
		Model:               model,
		TargetStrategy:      strategy,
		TargetMonths:        conf.Paydown.TargetMonths,
		LeaseWindowDays:     conf.Alerts.LeaseWindowDays,
		InsuranceWindowDays: conf.Alerts.InsuranceWindowDays,
	}, nil
}

// MortgageRefinance holds the refinance comparisons for one mortgage.
type MortgageRefinance struct {
	MortgageID  records.ID             `json:"mortgage_id"`
	PropertyID  records.ID             `json:"property_id"`
	Label       string                 `json:"label"`
	Current     refinance.CurrentLoan  `json:"current"`
	Comparisons []refinance.Comparison `json:"comparisons"`
	Best        *refinance.Comparison  `json:"best,omitempty"`
}

// Report is the complete analysis of one snapshot for one window.
type Report struct {
	GeneratedAt       time.Time                    `json:"generated_at"`
	Request           reports.ReportRequest        `json:"request"`
	Range             reports.Range                `json:"range"`
	Summary           portfolio.Summary            `json:"summary"`
	Properties        []portfolio.PropertyMetrics  `json:"properties"`
	Trend             []reports.TrendMonth         `json:"trend"`
	ExpenseBreakdown  []reports.CategoryTotal      `json:"expense_breakdown"`
	Comparison        reports.PeriodComparison     `json:"comparison"`
	Refinance         []MortgageRefinance          `json:"refinance"`
	Paydown           *paydown.Comparison          `json:"paydown,omitempty"`
	PayoffTarget      *optimization.Summary        `json:"payoff_target,omitempty"`
	LeaseExpirations  []portfolio.LeaseExpiration  `json:"lease_expirations"`
	InsuranceRenewals []portfolio.InsuranceRenewal `json:"insurance_renewals"`
	Warnings          []string                     `json:"warnings,omitempty"`
}

// Engine runs the full analysis. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	logger     *zap.Logger
	settings   Settings
	calculator *portfolio.Calculator
	simulator  *paydown.Simulator
	optimizer  *optimizer.Runner
}

// NewEngine constructs an Engine. Zero settings fall back to defaults.
func NewEngine(logger *zap.Logger, settings Settings) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.ExtraPayment < 0 || math.IsNaN(settings.ExtraPayment) {
		return nil, fmt.Errorf("%w: %v", paydown.ErrNegativeExtra, settings.ExtraPayment)
	}
	if settings.Model == "" {
		settings.Model = paydown.ModelSequential
	}
	if settings.TargetStrategy == "" {
		settings.TargetStrategy = paydown.Avalanche
	}
	if settings.MaxMonths <= 0 {
		settings.MaxMonths = constants.DefaultMaxPayoffMonths
	}
	if settings.LeaseWindowDays <= 0 {
		settings.LeaseWindowDays = constants.DefaultLeaseWindowDays
	}
	if settings.InsuranceWindowDays <= 0 {
		settings.InsuranceWindowDays = constants.DefaultInsuranceWindowDays
	}
	settings.Assumptions = settings.Assumptions.Normalize()
	settings.Policy = settings.Policy.Normalize()

	simulator := paydown.NewSimulator(logger, settings.MaxMonths, settings.Model)
	runner, err := optimizer.NewRunner(logger, simulator)
	if err != nil {
		return nil, err
	}

	return &Engine{
		logger:     logger,
		settings:   settings,
		calculator: portfolio.NewCalculator(logger, settings.Assumptions),
		simulator:  simulator,
		optimizer:  runner,
	}, nil
}

// Settings returns the normalized settings.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Simulator exposes the configured paydown simulator.
func (e *Engine) Simulator() *paydown.Simulator {
	return e.simulator
}

// Run analyzes the snapshot for the requested window. now is interpreted by
// its wall-clock reading; only an invalid period selector is an error.
func (e *Engine) Run(snapshot records.Snapshot, req reports.ReportRequest, now time.Time) (*Report, error) {
	now = datetime.WallClockUTC(now)
	window, err := reports.DateRange(req, now)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:       now,
		Request:           req,
		Range:             window,
		Summary:           e.calculator.Summarize(snapshot, window),
		Properties:        e.calculator.CompareProperties(snapshot, window, now),
		Trend:             reports.MonthlyTrend(snapshot.Expenses, snapshot.RentPayments, window),
		ExpenseBreakdown:  reports.ExpenseBreakdown(snapshot.Expenses, window),
		Comparison:        reports.ComparePeriods(snapshot.Expenses, snapshot.RentPayments, window),
		LeaseExpirations:  portfolio.UpcomingLeaseExpirations(snapshot.Tenants, now, e.settings.LeaseWindowDays),
		InsuranceRenewals: portfolio.UpcomingInsuranceRenewals(snapshot.InsurancePolicies, now, e.settings.InsuranceWindowDays),
	}

	for _, m := range report.Properties {
		if !m.IRRDeterminable {
			report.Warnings = append(report.Warnings, fmt.Sprintf("IRR for %s could not be determined", m.Name))
		}
	}

	mortgages := e.ownedMortgages(snapshot, report)
	report.Refinance = e.refinance(mortgages)

	if err := e.paydown(mortgages, report); err != nil {
		return nil, err
	}

	e.logger.Info("portfolio analysis complete",
		zap.String("op", "analysis.Run"),
		zap.String("range", window.String()),
		zap.Int("properties", len(report.Properties)),
		zap.Int("mortgages", len(mortgages)),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

// ownedMortgages drops mortgages whose property is not in the snapshot, in
// line with the debt totals.
func (e *Engine) ownedMortgages(snapshot records.Snapshot, report *Report) []records.Mortgage {
	owned := records.PropertyIDs(snapshot.Properties)
	mortgages := make([]records.Mortgage, 0, len(snapshot.Mortgages))
	for _, m := range snapshot.Mortgages {
		if !owned[m.PropertyID] {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"%s references unknown property %s and was excluded from debt analysis", m.Label(), m.PropertyID))
			continue
		}
		mortgages = append(mortgages, m)
	}
	return mortgages
}

func (e *Engine) refinance(mortgages []records.Mortgage) []MortgageRefinance {
	results := make([]MortgageRefinance, 0, len(mortgages))
	for _, m := range mortgages {
		if m.CurrentBalance <= 0 {
			continue
		}
		current := adapters.MortgageToCurrentLoan(m)
		scenarios := e.settings.Scenarios
		if len(scenarios) == 0 {
			scenarios = refinance.DefaultScenarios(current, e.settings.Policy)
		}

		result := MortgageRefinance{
			MortgageID:  m.ID,
			PropertyID:  m.PropertyID,
			Label:       m.Label(),
			Current:     current,
			Comparisons: refinance.Analyze(current, scenarios, e.settings.Policy),
		}
		if best, ok := refinance.Best(result.Comparisons); ok {
			result.Best = &best
		}
		results = append(results, result)
	}
	return results
}

func (e *Engine) paydown(mortgages []records.Mortgage, report *Report) error {
	debts := adapters.MortgagesToLoans(mortgages)
	if len(debts) == 0 {
		return nil
	}

	cmp, err := e.simulator.Compare(debts, e.settings.ExtraPayment)
	if err != nil {
		return fmt.Errorf("paydown comparison failed: %w", err)
	}
	report.Paydown = &cmp

	seen := make(map[string]bool)
	for _, plan := range []paydown.Plan{cmp.Snowball, cmp.Avalanche} {
		for _, r := range plan.Results {
			if r.Err() == nil {
				continue
			}
			msg := r.Err().Error()
			if !seen[msg] {
				seen[msg] = true
				report.Warnings = append(report.Warnings, msg)
			}
		}
	}

	if e.settings.TargetMonths > 0 {
		summary, err := e.optimizer.RequiredExtraPayment(debts, optimizer.Target{
			Strategy:      e.settings.TargetStrategy,
			TargetMonths:  e.settings.TargetMonths,
			BaselineExtra: e.settings.ExtraPayment,
		})
		if err != nil {
			return fmt.Errorf("payoff target search failed: %w", err)
		}
		report.PayoffTarget = &summary
	}
	return nil
}
