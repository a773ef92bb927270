package validation

import (
	"strings"
	"testing"
)

func TestValidateRate(t *testing.T) {
	tests := []struct {
		name        string
		rate        float64
		expectWarn  bool
		warnContent string
	}{
		{"Typical mortgage rate", 6.5, false, ""},
		{"Zero rate", 0, false, ""},
		{"Negative rate", -1, true, "negative"},
		{"Implausibly high", 65, true, "implausible"},
		{"Decimal instead of percent", 0.065, true, "percent units"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateRate("Scenario", tt.rate)
			if (warning != "") != tt.expectWarn {
				t.Fatalf("ValidateRate(%v) = %q, expectWarn %v", tt.rate, warning, tt.expectWarn)
			}
			if tt.expectWarn && !strings.Contains(warning, tt.warnContent) {
				t.Errorf("warning %q should contain %q", warning, tt.warnContent)
			}
		})
	}
}

func TestValidateRatio(t *testing.T) {
	tests := []struct {
		ratio      float64
		expectWarn bool
	}{
		{0, false},
		{0.2, false},
		{1, false},
		{-0.1, true},
		{20, true},
	}

	for _, tt := range tests {
		if warning := ValidateRatio("Ratio", tt.ratio); (warning != "") != tt.expectWarn {
			t.Errorf("ValidateRatio(%v) = %q, expectWarn %v", tt.ratio, warning, tt.expectWarn)
		}
	}
}

func TestValidateCustomRange(t *testing.T) {
	tests := []struct {
		name          string
		start         string
		end           string
		expectedCount int
	}{
		{"Valid range", "2024-01-01", "2024-03-31", 0},
		{"Same day", "2024-01-01", "2024-01-01", 0},
		{"Reversed", "2024-03-01", "2024-01-01", 1},
		{"Missing start", "", "2024-01-01", 1},
		{"Both garbage", "soon", "later", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateCustomRange(tt.start, tt.end)
			if len(warnings) != tt.expectedCount {
				t.Errorf("ValidateCustomRange() = %v, expected %d warnings", warnings, tt.expectedCount)
			}
		})
	}
}

func TestConfigValidator_ValidateAll(t *testing.T) {
	validator := ConfigValidator{
		Period:      "custom",
		CustomStart: "2024-05-01",
		CustomEnd:   "2024-04-01",
		Assumptions: AssumptionConfig{DownPaymentRatio: 20, TaxBracket: 0.24},
		Scenarios: []ScenarioConfig{
			{Name: "Good scenario", Rate: 5.5, TermYears: 30, ClosingCosts: 4000},
			{Rate: 0.055, TermYears: 0, ClosingCosts: -1},
		},
		Paydown: PaydownConfig{ExtraPayment: -50, MaxMonths: 120, TargetMonths: 240},
	}

	warnings := validator.ValidateAll()

	expected := []string{
		"precedes start",
		"Down payment ratio",
		"Refinance scenario 2 rate",
		"Refinance scenario 2 has no term",
		"negative closing costs",
		"extra payment cannot be negative",
		"exceeds the 120 month simulation cap",
	}
	if len(warnings) != len(expected) {
		t.Fatalf("ValidateAll() returned %d warnings, expected %d: %v", len(warnings), len(expected), warnings)
	}
	for i, fragment := range expected {
		if !strings.Contains(warnings[i], fragment) {
			t.Errorf("warning %d = %q, expected to contain %q", i, warnings[i], fragment)
		}
	}
}

func TestConfigValidator_EmptyConfiguration(t *testing.T) {
	validator := ConfigValidator{}
	if warnings := validator.ValidateAll(); len(warnings) != 0 {
		t.Errorf("Expected no warnings for empty configuration, got %v", warnings)
	}
}

func TestConfigValidator_CustomRangeIgnoredForPresets(t *testing.T) {
	validator := ConfigValidator{Period: "month", CustomStart: "garbage"}
	if warnings := validator.ValidateAll(); len(warnings) != 0 {
		t.Errorf("custom dates should only be checked for custom periods, got %v", warnings)
	}
}
