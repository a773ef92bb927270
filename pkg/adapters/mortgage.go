// Package adapters provides adapter implementations between different package interfaces.
package adapters

import (
	"github.com/iwvelando/rental-portfolio/internal/paydown"
	"github.com/iwvelando/rental-portfolio/internal/refinance"
	"github.com/iwvelando/rental-portfolio/pkg/records"
)

// MortgageToLoan converts a mortgage record into a paydown loan. The escrow
// portion of the payment is not debt service and is left out.
func MortgageToLoan(m records.Mortgage) paydown.Loan {
	return paydown.Loan{
		ID:         m.ID,
		Name:       m.Label(),
		Balance:    m.CurrentBalance,
		Rate:       m.InterestRate,
		Payment:    m.MonthlyPayment,
		TermMonths: m.RemainingTermMonths,
	}
}

// MortgagesToLoans converts mortgage records to paydown loans, skipping
// mortgages that are already retired.
func MortgagesToLoans(mortgages []records.Mortgage) []paydown.Loan {
	if mortgages == nil {
		return nil
	}

	loans := make([]paydown.Loan, 0, len(mortgages))
	for _, m := range mortgages {
		if m.CurrentBalance <= 0 {
			continue
		}
		loans = append(loans, MortgageToLoan(m))
	}
	return loans
}

// MortgageToCurrentLoan converts a mortgage record into the loan a refinance
// is compared against.
func MortgageToCurrentLoan(m records.Mortgage) refinance.CurrentLoan {
	return refinance.CurrentLoan{
		Balance:             m.CurrentBalance,
		Rate:                m.InterestRate,
		MonthlyPayment:      m.MonthlyPayment,
		RemainingTermMonths: m.RemainingTermMonths,
	}
}
