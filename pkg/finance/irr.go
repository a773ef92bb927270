// Package finance provides return-on-investment formulas for rental holdings.
package finance

import (
	"errors"
	"math"

	"github.com/iwvelando/rental-portfolio/pkg/constants"
)

var (
	// ErrIRRNoSignChange is returned when the cash flows cannot be bracketed:
	// they lack an outflow or an inflow, or NPV has the same sign at both bounds.
	ErrIRRNoSignChange = errors.New("irr: cash flows do not change sign within the search bounds")

	// ErrIRRNonConvergent is returned when bisection exhausts its iteration budget.
	ErrIRRNonConvergent = errors.New("irr: solver did not converge")
)

// IRRSettings bounds the IRR search.
type IRRSettings struct {
	LowerBound    float64 `yaml:"lowerBound,omitempty" mapstructure:"lowerBound"`
	UpperBound    float64 `yaml:"upperBound,omitempty" mapstructure:"upperBound"`
	MaxIterations int     `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
	Tolerance     float64 `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
}

// DefaultIRRSettings searches [-0.99, 10] for up to 1000 iterations with a 1e-6 tolerance.
func DefaultIRRSettings() IRRSettings {
	return IRRSettings{
		LowerBound:    constants.DefaultIRRLowerBound,
		UpperBound:    constants.DefaultIRRUpperBound,
		MaxIterations: constants.DefaultIRRMaxIterations,
		Tolerance:     constants.DefaultIRRTolerance,
	}
}

// Normalize fills unset fields with defaults.
func (s IRRSettings) Normalize() IRRSettings {
	defaults := DefaultIRRSettings()
	if s.LowerBound == 0 && s.UpperBound == 0 {
		s.LowerBound = defaults.LowerBound
		s.UpperBound = defaults.UpperBound
	}
	if s.LowerBound <= -1 {
		s.LowerBound = defaults.LowerBound
	}
	if s.UpperBound <= s.LowerBound {
		s.UpperBound = defaults.UpperBound
	}
	if s.MaxIterations <= 0 {
		s.MaxIterations = defaults.MaxIterations
	}
	if s.Tolerance <= 0 {
		s.Tolerance = defaults.Tolerance
	}
	return s
}

// NPV discounts flows[t] by (1+rate)^t, t starting at 0. Rates at or below -1
// yield NaN.
func NPV(rate float64, flows []float64) float64 {
	base := 1 + rate
	if base <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for t, flow := range flows {
		sum += flow / math.Pow(base, float64(t))
	}
	return sum
}

// SolveIRR finds the rate r with NPV(r, flows) = 0 by bisection over the
// configured bounds. It converges when |NPV| or the bracket half-width drops
// below the tolerance.
func SolveIRR(flows []float64, settings IRRSettings) (float64, error) {
	settings = settings.Normalize()

	hasNeg, hasPos := false, false
	for _, f := range flows {
		if f < 0 {
			hasNeg = true
		}
		if f > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return math.NaN(), ErrIRRNoSignChange
	}

	lo, hi := settings.LowerBound, settings.UpperBound
	npvLo := NPV(lo, flows)
	npvHi := NPV(hi, flows)
	if math.IsNaN(npvLo) || math.IsNaN(npvHi) {
		return math.NaN(), ErrIRRNoSignChange
	}
	if npvLo == 0 {
		return lo, nil
	}
	if npvHi == 0 {
		return hi, nil
	}
	if npvLo*npvHi > 0 {
		return math.NaN(), ErrIRRNoSignChange
	}

	for iter := 0; iter < settings.MaxIterations; iter++ {
		mid := (lo + hi) / 2
		npvMid := NPV(mid, flows)
		if math.IsNaN(npvMid) {
			return math.NaN(), ErrIRRNonConvergent
		}
		if math.Abs(npvMid) < settings.Tolerance || (hi-lo)/2 < settings.Tolerance {
			return mid, nil
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}
	return math.NaN(), ErrIRRNonConvergent
}

// IRR is SolveIRR with default settings, returning NaN when the rate cannot be
// determined.
func IRR(flows []float64) float64 {
	rate, err := SolveIRR(flows, DefaultIRRSettings())
	if err != nil {
		return math.NaN()
	}
	return rate
}

// HoldingCashFlows builds the annual cash-flow vector of a holding: the initial
// outlay as a negative flow, then years equal annual flows, with the terminal
// value added to the final year. years below 1 are treated as 1.
func HoldingCashFlows(cashInvested, annualCashFlow, terminalValue float64, years int) []float64 {
	if years < 1 {
		years = 1
	}
	flows := make([]float64, years+1)
	flows[0] = -cashInvested
	for i := 1; i <= years; i++ {
		flows[i] = annualCashFlow
	}
	flows[years] += terminalValue
	return flows
}
