package validation

import (
	"fmt"

	"github.com/iwvelando/rental-portfolio/pkg/datetime"
)

// maxPlausibleRate flags annual rates that are almost certainly typed as a
// decimal or with an extra digit.
const maxPlausibleRate = 30.0

// ValidateRate warns about annual percentage rates outside [0, 30].
func ValidateRate(name string, rate float64) string {
	switch {
	case rate < 0:
		return fmt.Sprintf("%s has a negative rate (%.2f%%)", name, rate)
	case rate > maxPlausibleRate:
		return fmt.Sprintf("%s rate %.2f%% looks implausible; rates are annual percentages", name, rate)
	case rate > 0 && rate < 1:
		return fmt.Sprintf("%s rate %.4f%% is below 1%%; use percent units (6.5 means 6.5%%)", name, rate)
	default:
		return ""
	}
}

// ValidateRatio warns about ratios outside (0, 1]. A zero ratio means "use the
// default" and is accepted.
func ValidateRatio(name string, ratio float64) string {
	if ratio < 0 || ratio > 1 {
		return fmt.Sprintf("%s must be between 0 and 1, got %v", name, ratio)
	}
	return ""
}

// ValidateCustomRange checks a custom report window.
func ValidateCustomRange(start, end string) []string {
	var warnings []string

	startT, startOK := datetime.ParseDate(start)
	if !startOK {
		warnings = append(warnings, fmt.Sprintf("Custom report start %q is not a recognized date", start))
	}
	endT, endOK := datetime.ParseDate(end)
	if !endOK {
		warnings = append(warnings, fmt.Sprintf("Custom report end %q is not a recognized date", end))
	}
	if startOK && endOK && endT.Before(startT) {
		warnings = append(warnings, fmt.Sprintf("Custom report end %s precedes start %s", end, start))
	}
	return warnings
}

// ConfigValidator validates the analysis settings.
type ConfigValidator struct {
	Period      string
	CustomStart string
	CustomEnd   string
	Assumptions AssumptionConfig
	Scenarios   []ScenarioConfig
	Paydown     PaydownConfig
}

// AssumptionConfig mirrors the investment assumptions.
type AssumptionConfig struct {
	DownPaymentRatio  float64
	TaxBracket        float64
	DepreciationYears float64
}

// ScenarioConfig is a refinance scenario.
type ScenarioConfig struct {
	Name         string
	Rate         float64
	TermYears    int
	ClosingCosts float64
}

// PaydownConfig holds the paydown settings.
type PaydownConfig struct {
	ExtraPayment float64
	MaxMonths    int
	TargetMonths int
}

// ValidateAll validates the entire configuration and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if cv.Period == "custom" {
		warnings = append(warnings, ValidateCustomRange(cv.CustomStart, cv.CustomEnd)...)
	}

	if w := ValidateRatio("Down payment ratio", cv.Assumptions.DownPaymentRatio); w != "" {
		warnings = append(warnings, w)
	}
	if w := ValidateRatio("Tax bracket", cv.Assumptions.TaxBracket); w != "" {
		warnings = append(warnings, w)
	}
	if cv.Assumptions.DepreciationYears < 0 {
		warnings = append(warnings, fmt.Sprintf("Depreciation years cannot be negative, got %v", cv.Assumptions.DepreciationYears))
	}

	for i, s := range cv.Scenarios {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("Refinance scenario %d", i+1)
		}
		if w := ValidateRate(name, s.Rate); w != "" {
			warnings = append(warnings, w)
		}
		if s.TermYears <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s has no term; its payment will be zero", name))
		}
		if s.ClosingCosts < 0 {
			warnings = append(warnings, fmt.Sprintf("%s has negative closing costs; the default will be used", name))
		}
	}

	if cv.Paydown.ExtraPayment < 0 {
		warnings = append(warnings, fmt.Sprintf("Paydown extra payment cannot be negative, got %.2f", cv.Paydown.ExtraPayment))
	}
	if cv.Paydown.MaxMonths < 0 {
		warnings = append(warnings, fmt.Sprintf("Paydown max months cannot be negative, got %d", cv.Paydown.MaxMonths))
	}
	if cv.Paydown.TargetMonths > 0 && cv.Paydown.MaxMonths > 0 && cv.Paydown.TargetMonths > cv.Paydown.MaxMonths {
		warnings = append(warnings, fmt.Sprintf("Paydown target of %d months exceeds the %d month simulation cap",
			cv.Paydown.TargetMonths, cv.Paydown.MaxMonths))
	}

	return warnings
}
