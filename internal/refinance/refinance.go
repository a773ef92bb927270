// Package refinance compares a current mortgage against candidate refinance
// scenarios.
package refinance

import (
	"fmt"
	"math"

	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/loans"
)

// Recommendation grades a refinance scenario.
type Recommendation string

const (
	Good     Recommendation = "good"
	Marginal Recommendation = "marginal"
	Poor     Recommendation = "poor"
)

// Scenario is a candidate refinance. Rate is an annual percentage.
type Scenario struct {
	Name         string  `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Rate         float64 `json:"rate" yaml:"rate" mapstructure:"rate"`
	TermYears    int     `json:"term_years" yaml:"termYears" mapstructure:"termYears"`
	ClosingCosts float64 `json:"closing_costs" yaml:"closingCosts" mapstructure:"closingCosts"`
}

// Label returns the scenario name or a rate/term description.
func (s Scenario) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("%dyr @ %.2f%%", s.TermYears, s.Rate)
}

// CurrentLoan is the mortgage being refinanced. Rate is an annual percentage.
type CurrentLoan struct {
	Balance             float64 `json:"balance"`
	Rate                float64 `json:"rate"`
	MonthlyPayment      float64 `json:"monthly_payment"`
	RemainingTermMonths int     `json:"remaining_term_months"`
}

// Payment recomputes the current payment from balance, rate and remaining
// term. The recorded payment is used only when the recomputation yields 0.
func (c CurrentLoan) Payment() float64 {
	payment := loans.MonthlyPayment(c.Balance, loans.MonthlyRate(c.Rate), c.RemainingTermMonths)
	if payment > 0 {
		return payment
	}
	return c.MonthlyPayment
}

// Policy holds the grading thresholds.
type Policy struct {
	// GoodBreakEvenFraction is the share of the remaining term a break-even must
	// beat for a Good grade.
	GoodBreakEvenFraction float64 `json:"good_break_even_fraction" yaml:"goodBreakEvenFraction" mapstructure:"goodBreakEvenFraction"`
	// DefaultClosingCosts replaces closing costs that are zero or negative.
	DefaultClosingCosts float64 `json:"closing_costs" yaml:"closingCosts" mapstructure:"closingCosts"`
}

// DefaultPolicy grades Good below half the remaining term and assumes 5000 in
// closing costs.
func DefaultPolicy() Policy {
	return Policy{
		GoodBreakEvenFraction: constants.DefaultGoodBreakEvenFraction,
		DefaultClosingCosts:   constants.DefaultClosingCosts,
	}
}

// Normalize fills unset fields with defaults.
func (p Policy) Normalize() Policy {
	defaults := DefaultPolicy()
	if p.GoodBreakEvenFraction <= 0 {
		p.GoodBreakEvenFraction = defaults.GoodBreakEvenFraction
	}
	if p.DefaultClosingCosts <= 0 {
		p.DefaultClosingCosts = defaults.DefaultClosingCosts
	}
	return p
}

// Comparison is the outcome of one scenario. BreakEvenMonths is +Inf when the
// scenario does not lower the payment.
type Comparison struct {
	Scenario                Scenario       `json:"scenario"`
	CurrentPayment          float64        `json:"current_payment"`
	NewPayment              float64        `json:"new_payment"`
	MonthlySavings          float64        `json:"monthly_savings"`
	BreakEvenMonths         float64        `json:"break_even_months"`
	TotalSavings            float64        `json:"total_savings"`
	CurrentLifetimeInterest float64        `json:"current_lifetime_interest"`
	NewLifetimeInterest     float64        `json:"new_lifetime_interest"`
	InterestSaved           float64        `json:"interest_saved"`
	Recommendation          Recommendation `json:"recommendation"`
}

// BreaksEven reports whether the closing costs are ever recovered.
func (c Comparison) BreaksEven() bool {
	return !math.IsInf(c.BreakEvenMonths, 1)
}

// Compare evaluates one scenario. Savings are measured over the current
// loan's remaining term so scenarios with different new terms stay comparable.
func Compare(current CurrentLoan, scenario Scenario, policy Policy) Comparison {
	policy = policy.Normalize()
	if scenario.ClosingCosts <= 0 {
		scenario.ClosingCosts = policy.DefaultClosingCosts
	}

	newTerm := scenario.TermYears * constants.MonthsPerYear
	currentPayment := current.Payment()
	newPayment := loans.MonthlyPayment(current.Balance, loans.MonthlyRate(scenario.Rate), newTerm)
	savings := currentPayment - newPayment

	breakEven := math.Inf(1)
	if savings > 0 {
		breakEven = math.Ceil(scenario.ClosingCosts / savings)
	}
	remaining := float64(current.RemainingTermMonths)
	total := savings*remaining - scenario.ClosingCosts

	currentInterest := lifetimeInterest(currentPayment, current.RemainingTermMonths, current.Balance)
	newInterest := lifetimeInterest(newPayment, newTerm, current.Balance)

	return Comparison{
		Scenario:                scenario,
		CurrentPayment:          currentPayment,
		NewPayment:              newPayment,
		MonthlySavings:          savings,
		BreakEvenMonths:         breakEven,
		TotalSavings:            total,
		CurrentLifetimeInterest: currentInterest,
		NewLifetimeInterest:     newInterest,
		InterestSaved:           currentInterest - newInterest,
		Recommendation:          grade(total, breakEven, remaining, policy),
	}
}

func grade(totalSavings, breakEven, remainingMonths float64, policy Policy) Recommendation {
	switch {
	case totalSavings > 0 && breakEven < policy.GoodBreakEvenFraction*remainingMonths:
		return Good
	case totalSavings > 0:
		return Marginal
	default:
		return Poor
	}
}

func lifetimeInterest(payment float64, months int, balance float64) float64 {
	if payment <= 0 || months <= 0 {
		return 0
	}
	return math.Max(payment*float64(months)-balance, 0)
}

// Analyze evaluates every scenario in order.
func Analyze(current CurrentLoan, scenarios []Scenario, policy Policy) []Comparison {
	comparisons := make([]Comparison, 0, len(scenarios))
	for _, s := range scenarios {
		comparisons = append(comparisons, Compare(current, s, policy))
	}
	return comparisons
}

var (
	defaultRateDrops = []float64{0.5, 1.0, 1.5}
	defaultTermYears = []int{30, 15}
)

// DefaultScenarios proposes rate drops of half a point, one point and one and
// a half points at 30 and 15 year terms. Drops that would go below zero are
// skipped.
func DefaultScenarios(current CurrentLoan, policy Policy) []Scenario {
	policy = policy.Normalize()
	var scenarios []Scenario
	for _, term := range defaultTermYears {
		for _, drop := range defaultRateDrops {
			rate := current.Rate - drop
			if rate < 0 {
				continue
			}
			scenarios = append(scenarios, Scenario{
				Rate:         rate,
				TermYears:    term,
				ClosingCosts: policy.DefaultClosingCosts,
			})
		}
	}
	return scenarios
}

// Best returns the Good or Marginal comparison with the largest total savings.
func Best(comparisons []Comparison) (Comparison, bool) {
	var best Comparison
	found := false
	for _, c := range comparisons {
		if c.Recommendation == Poor {
			continue
		}
		if !found || c.TotalSavings > best.TotalSavings {
			best = c
			found = true
		}
	}
	return best, found
}
