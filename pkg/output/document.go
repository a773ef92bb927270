package output

import (
	"fmt"

	"github.com/iwvelando/rental-portfolio/internal/analysis"
	"github.com/iwvelando/rental-portfolio/internal/paydown"
	"github.com/iwvelando/rental-portfolio/internal/portfolio"
	"github.com/iwvelando/rental-portfolio/internal/refinance"
	"github.com/iwvelando/rental-portfolio/pkg/mathutil"
)

// The document types wrap engine results for JSON. Each one shadows the
// fields that may hold NaN or an infinity with a pointer that encodes as
// null; encoding/json rejects non-finite floats.

// Finite returns nil for NaN and infinities.
func Finite(v float64) *float64 {
	if !mathutil.IsFinite(v) {
		return nil
	}
	return &v
}

// PropertyDocument renders an undeterminable IRR as null.
type PropertyDocument struct {
	portfolio.PropertyMetrics
	IRR *float64 `json:"irr"`
}

// RefinanceDocument renders a break-even that never happens as null.
type RefinanceDocument struct {
	refinance.Comparison
	Label           string   `json:"label"`
	BreakEvenMonths *float64 `json:"break_even_months"`
}

// MortgageRefinanceDocument is one mortgage's refinance comparisons.
type MortgageRefinanceDocument struct {
	analysis.MortgageRefinance
	Comparisons []RefinanceDocument `json:"comparisons"`
	Best        *RefinanceDocument  `json:"best,omitempty"`
}

// LoanResultDocument renders the interest of an unpaid loan as null.
type LoanResultDocument struct {
	paydown.LoanResult
	TotalInterest *float64 `json:"total_interest"`
}

// PlanDocument renders the interest of an unpayable plan as null.
type PlanDocument struct {
	paydown.Plan
	Results       []LoanResultDocument `json:"results"`
	TotalInterest *float64             `json:"total_interest"`
}

// PaydownDocument renders a strategy comparison.
type PaydownDocument struct {
	paydown.Comparison
	Snowball           PlanDocument `json:"snowball"`
	Avalanche          PlanDocument `json:"avalanche"`
	InterestDifference *float64     `json:"interest_difference"`
}

// Document is the JSON form of a report.
type Document struct {
	analysis.Report
	Properties []PropertyDocument          `json:"properties"`
	Refinance  []MortgageRefinanceDocument `json:"refinance"`
	Paydown    *PaydownDocument            `json:"paydown,omitempty"`
	Warnings   []string                    `json:"warnings,omitempty"`
}

// NewDocument converts a report. Refinance scenarios that never break even
// add a warning; the report already carries warnings for IRR and paydown.
func NewDocument(report *analysis.Report) Document {
	doc := Document{
		Report:     *report,
		Properties: make([]PropertyDocument, 0, len(report.Properties)),
		Refinance:  make([]MortgageRefinanceDocument, 0, len(report.Refinance)),
		Warnings:   append([]string(nil), report.Warnings...),
	}

	for _, m := range report.Properties {
		doc.Properties = append(doc.Properties, PropertyDocument{PropertyMetrics: m, IRR: Finite(m.IRR)})
	}

	for _, r := range report.Refinance {
		comparisons, warnings := NewRefinanceDocuments(r.Label, r.Comparisons)
		entry := MortgageRefinanceDocument{MortgageRefinance: r, Comparisons: comparisons}
		if r.Best != nil {
			best := NewRefinanceDocument(*r.Best)
			entry.Best = &best
		}
		doc.Refinance = append(doc.Refinance, entry)
		doc.Warnings = append(doc.Warnings, warnings...)
	}

	if report.Paydown != nil {
		paydownDoc, _ := NewPaydownDocument(*report.Paydown)
		doc.Paydown = &paydownDoc
	}
	return doc
}

// NewRefinanceDocument converts a single comparison.
func NewRefinanceDocument(c refinance.Comparison) RefinanceDocument {
	return RefinanceDocument{Comparison: c, Label: c.Scenario.Label(), BreakEvenMonths: Finite(c.BreakEvenMonths)}
}

// NewRefinanceDocuments converts comparisons for the named loan and returns a
// warning for every scenario that never breaks even.
func NewRefinanceDocuments(loan string, comparisons []refinance.Comparison) ([]RefinanceDocument, []string) {
	docs := make([]RefinanceDocument, 0, len(comparisons))
	var warnings []string
	for _, c := range comparisons {
		docs = append(docs, NewRefinanceDocument(c))
		if !c.BreaksEven() {
			warnings = append(warnings, fmt.Sprintf("%s: refinance %s does not lower the payment and never breaks even", loan, c.Scenario.Label()))
		}
	}
	return docs, warnings
}

func newPlanDocument(plan paydown.Plan) (PlanDocument, []string) {
	doc := PlanDocument{
		Plan:          plan,
		Results:       make([]LoanResultDocument, 0, len(plan.Results)),
		TotalInterest: Finite(plan.TotalInterest),
	}
	var warnings []string
	for _, r := range plan.Results {
		doc.Results = append(doc.Results, LoanResultDocument{LoanResult: r, TotalInterest: Finite(r.TotalInterest)})
		if err := r.Err(); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s plan: %v", plan.Strategy, err))
		}
	}
	return doc, warnings
}

// NewPaydownDocument converts a strategy comparison and returns a warning
// for every loan that is not paid off.
func NewPaydownDocument(cmp paydown.Comparison) (PaydownDocument, []string) {
	snowball, warnings := newPlanDocument(cmp.Snowball)
	avalanche, avalancheWarnings := newPlanDocument(cmp.Avalanche)
	return PaydownDocument{
		Comparison:         cmp,
		Snowball:           snowball,
		Avalanche:          avalanche,
		InterestDifference: Finite(cmp.InterestDifference),
	}, append(warnings, avalancheWarnings...)
}
