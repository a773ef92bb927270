package finance

import (
	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/mathutil"
)

// CapRate is annualized NOI over purchase price, in percent. monthlyNOI is
// multiplied by 12.
func CapRate(monthlyNOI, purchasePrice float64) float64 {
	return mathutil.SafeDivide(monthlyNOI*constants.MonthsPerYear, purchasePrice) * constants.PercentageMultiplier
}

// CashInvested is the cash put into a purchase under the given down payment ratio.
func CashInvested(purchasePrice, downPaymentRatio float64) float64 {
	return purchasePrice * downPaymentRatio
}

// CashOnCash is annual cash flow over cash invested, in percent.
func CashOnCash(annualCashFlow, cashInvested float64) float64 {
	return mathutil.SafeDivide(annualCashFlow, cashInvested) * constants.PercentageMultiplier
}

// AnnualDepreciation spreads the purchase price straight-line over the recovery period.
func AnnualDepreciation(purchasePrice, recoveryYears float64) float64 {
	if purchasePrice <= 0 {
		return 0
	}
	return mathutil.SafeDivide(purchasePrice, recoveryYears)
}

// TaxSavings is the tax shielded by a deduction at the given marginal bracket
// (0.24 means 24%).
func TaxSavings(deduction, bracket float64) float64 {
	if deduction <= 0 || bracket <= 0 {
		return 0
	}
	return deduction * bracket
}

// LoanToValue returns debt over value in percent.
func LoanToValue(debt, value float64) float64 {
	return mathutil.CalculatePercentage(debt, value)
}
