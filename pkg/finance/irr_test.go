package finance

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestNPV(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		flows    []float64
		expected float64
	}{
		{"Zero rate sums flows", 0, []float64{-100, 50, 60}, 10},
		{"Ten percent", 0.1, []float64{-1000, 0, 1210}, 0},
		{"Empty flows", 0.1, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NPV(tt.rate, tt.flows)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("NPV() = %v, expected %v", result, tt.expected)
			}
		})
	}

	if !math.IsNaN(NPV(-1, []float64{-1, 2})) {
		t.Error("NPV at rate -1 should be NaN")
	}
}

func TestSolveIRR(t *testing.T) {
	tests := []struct {
		name      string
		flows     []float64
		expected  float64
		tolerance float64
	}{
		{"Single period", []float64{-100, 110}, 0.10, 1e-5},
		{"Two periods lump sum", []float64{-1000, 0, 1210}, 0.10, 1e-5},
		{"Level annuity", []float64{-100, 60, 60}, 0.130662, 1e-4},
		{"Negative return", []float64{-100, 50}, -0.5, 1e-5},
		{"Uneven flows", []float64{-1000, 300, 400, 500}, 0.0889634, 1e-4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SolveIRR(tt.flows, DefaultIRRSettings())
			if err != nil {
				t.Fatalf("SolveIRR() error = %v", err)
			}
			if math.Abs(result-tt.expected) > tt.tolerance {
				t.Errorf("SolveIRR() = %v, expected %v", result, tt.expected)
			}
			if npv := NPV(result, tt.flows); math.Abs(npv) > 1e-3 {
				t.Errorf("NPV at solved rate = %v, expected ~0", npv)
			}
		})
	}
}

func TestSolveIRRSentinels(t *testing.T) {
	tests := []struct {
		name     string
		flows    []float64
		settings IRRSettings
		wantErr  error
	}{
		{"Only inflows", []float64{100, 50}, DefaultIRRSettings(), ErrIRRNoSignChange},
		{"Only outflows", []float64{-100, -50}, DefaultIRRSettings(), ErrIRRNoSignChange},
		{"Empty", nil, DefaultIRRSettings(), ErrIRRNoSignChange},
		{"Root below search bounds", []float64{-100, 0.5}, DefaultIRRSettings(), ErrIRRNoSignChange},
		{"Iteration budget exhausted", []float64{-100, 110}, IRRSettings{LowerBound: -0.99, UpperBound: 10, MaxIterations: 1, Tolerance: 1e-9}, ErrIRRNonConvergent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SolveIRR(tt.flows, tt.settings)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SolveIRR() error = %v, expected %v", err, tt.wantErr)
			}
			if !math.IsNaN(result) {
				t.Errorf("SolveIRR() = %v, expected NaN sentinel", result)
			}
		})
	}
}

func TestIRRConvenience(t *testing.T) {
	if rate := IRR([]float64{-100, 110}); math.Abs(rate-0.1) > 1e-5 {
		t.Errorf("IRR() = %v, expected 0.1", rate)
	}
	if rate := IRR([]float64{100}); !math.IsNaN(rate) {
		t.Errorf("IRR() = %v, expected NaN", rate)
	}
}

func TestIRRSettingsNormalize(t *testing.T) {
	normalized := IRRSettings{}.Normalize()
	if !reflect.DeepEqual(normalized, DefaultIRRSettings()) {
		t.Errorf("Normalize() of zero value = %+v, expected defaults", normalized)
	}

	custom := IRRSettings{LowerBound: 0, UpperBound: 2, MaxIterations: 50, Tolerance: 1e-4}.Normalize()
	if custom.UpperBound != 2 || custom.MaxIterations != 50 || custom.Tolerance != 1e-4 {
		t.Errorf("Normalize() should keep explicit values, got %+v", custom)
	}

	invalid := IRRSettings{LowerBound: -2, UpperBound: -3}.Normalize()
	if invalid.LowerBound != DefaultIRRSettings().LowerBound || invalid.UpperBound != DefaultIRRSettings().UpperBound {
		t.Errorf("Normalize() should replace invalid bounds, got %+v", invalid)
	}
}

func TestHoldingCashFlows(t *testing.T) {
	tests := []struct {
		name     string
		invested float64
		annual   float64
		terminal float64
		years    int
		expected []float64
	}{
		{"Three years", 40000, 5000, 250000, 3, []float64{-40000, 5000, 5000, 255000}},
		{"Zero years treated as one", 40000, 5000, 250000, 0, []float64{-40000, 255000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HoldingCashFlows(tt.invested, tt.annual, tt.terminal, tt.years)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("HoldingCashFlows() = %v, expected %v", result, tt.expected)
			}
		})
	}
}
