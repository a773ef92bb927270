// Package paydown simulates snowball and avalanche debt payoff plans.
package paydown

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/loans"
	"github.com/iwvelando/rental-portfolio/pkg/records"
	"go.uber.org/multierr"
)

// Strategy is a payoff ordering.
type Strategy string

const (
	// Snowball pays the smallest balance first.
	Snowball Strategy = "snowball"
	// Avalanche pays the highest rate first.
	Avalanche Strategy = "avalanche"
)

// Model selects how the extra payment is applied across loans.
type Model string

const (
	// ModelSequential simulates each loan on its own with payment plus extra.
	// Freed-up payments are not rolled into the next loan, so the ordering only
	// affects presentation, never the totals.
	ModelSequential Model = "sequential"

	// ModelRolling pays every minimum each month and sends the extra plus any
	// freed-up minimums to the first unpaid loan in strategy order.
	ModelRolling Model = "rolling"
)

// NeverPaidOff is the month count of a loan that cannot be retired.
const NeverPaidOff = -1

var (
	// ErrNonAmortizing means a payment does not cover the interest accrued.
	ErrNonAmortizing = errors.New("payment does not cover interest")

	// ErrPayoffCapExceeded means the loan is still open at the simulation cap.
	ErrPayoffCapExceeded = errors.New("payoff exceeds simulation cap")

	// ErrUnknownStrategy is returned for strategies other than snowball and avalanche.
	ErrUnknownStrategy = errors.New("unknown paydown strategy")

	// ErrUnknownModel is returned for models other than sequential and rolling.
	ErrUnknownModel = errors.New("unknown paydown model")
)

// ParseStrategy resolves a strategy name, case-insensitively.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(name))) {
	case Snowball:
		return Snowball, nil
	case Avalanche:
		return Avalanche, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// ParseModel resolves a model name. A blank name is the sequential model.
func ParseModel(name string) (Model, error) {
	switch Model(strings.ToLower(strings.TrimSpace(name))) {
	case "", ModelSequential:
		return ModelSequential, nil
	case ModelRolling:
		return ModelRolling, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
}

// Loan is one debt in a payoff plan. Rate is an annual percentage.
type Loan struct {
	ID         records.ID `json:"id"`
	Name       string     `json:"name,omitempty"`
	Balance    float64    `json:"balance"`
	Rate       float64    `json:"rate"`
	Payment    float64    `json:"payment"`
	TermMonths int        `json:"term_months,omitempty"`
}

// Label returns the loan name, falling back to its id.
func (l Loan) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return "loan " + l.ID.String()
}

// MinimumPayment is the scheduled payment. When none is recorded it is
// recomputed from the balance, rate and term.
func (l Loan) MinimumPayment() float64 {
	if l.Payment > 0 {
		return l.Payment
	}
	return loans.MonthlyPayment(l.Balance, loans.MonthlyRate(l.Rate), l.TermMonths)
}

// Order returns a copy of the loans in strategy order. Equal keys keep their
// input order.
func Order(debts []Loan, strategy Strategy) ([]Loan, error) {
	ordered := make([]Loan, len(debts))
	copy(ordered, debts)
	switch strategy {
	case Snowball:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Balance < ordered[j].Balance
		})
	case Avalanche:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Rate > ordered[j].Rate
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	return ordered, nil
}

// Status is the outcome of simulating one loan.
type Status string

const (
	StatusPaidOff       Status = "paid_off"
	StatusNonAmortizing Status = "non_amortizing"
	StatusCapExceeded   Status = "cap_exceeded"
)

// LoanResult is the payoff of one loan. Non-amortizing loans report
// NeverPaidOff months and infinite interest.
type LoanResult struct {
	Loan          Loan    `json:"loan"`
	Order         int     `json:"order"`
	Months        int     `json:"months"`
	TotalInterest float64 `json:"total_interest"`
	Status        Status  `json:"status"`
}

// Err reports why the loan was not paid off, or nil.
func (r LoanResult) Err() error {
	switch r.Status {
	case StatusNonAmortizing:
		return fmt.Errorf("%s: %w", r.Loan.Label(), ErrNonAmortizing)
	case StatusCapExceeded:
		return fmt.Errorf("%s: %w", r.Loan.Label(), ErrPayoffCapExceeded)
	default:
		return nil
	}
}

// Plan is a full payoff simulation. When any loan cannot be retired the
// totals are NeverPaidOff months and infinite interest.
type Plan struct {
	Strategy      Strategy     `json:"strategy"`
	Model         Model        `json:"model"`
	ExtraPayment  float64      `json:"extra_payment"`
	Results       []LoanResult `json:"results"`
	TotalMonths   int          `json:"total_months"`
	TotalInterest float64      `json:"total_interest"`
}

// Payable reports whether every loan in the plan is retired.
func (p Plan) Payable() bool {
	for _, r := range p.Results {
		if r.Status != StatusPaidOff {
			return false
		}
	}
	return true
}

// Err combines the failures of every loan that was not paid off.
func (p Plan) Err() error {
	var err error
	for _, r := range p.Results {
		err = multierr.Append(err, r.Err())
	}
	return err
}

func (p *Plan) finalize() {
	if !p.Payable() {
		p.TotalMonths = NeverPaidOff
		p.TotalInterest = math.Inf(1)
		return
	}
	p.TotalInterest = 0
	for _, r := range p.Results {
		p.TotalInterest += r.TotalInterest
	}
}

func paidOff(balance float64) bool {
	return balance <= constants.BalanceEpsilon
}
