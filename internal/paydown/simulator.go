package paydown

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/loans"
	"github.com/iwvelando/rental-portfolio/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrNegativeExtra is returned when the extra payment is below zero.
var ErrNegativeExtra = errors.New("extra payment cannot be negative")

// Simulator runs payoff plans month by month up to MaxMonths.
type Simulator struct {
	MaxMonths int
	Model     Model
	logger    *zap.Logger
}

// NewSimulator returns a simulator. maxMonths <= 0 selects the default cap and
// a blank model selects ModelSequential.
func NewSimulator(logger *zap.Logger, maxMonths int, model Model) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxMonths <= 0 {
		maxMonths = constants.DefaultMaxPayoffMonths
	}
	if model == "" {
		model = ModelSequential
	}
	return &Simulator{MaxMonths: maxMonths, Model: model, logger: logger}
}

// Simulate builds the plan for one strategy. Only invalid arguments are
// returned as errors; loans that cannot be retired are reported through the
// plan's statuses and Plan.Err.
func (s *Simulator) Simulate(debts []Loan, extra float64, strategy Strategy) (Plan, error) {
	if extra < 0 || math.IsNaN(extra) {
		return Plan{}, fmt.Errorf("%w: %v", ErrNegativeExtra, extra)
	}
	ordered, err := Order(debts, strategy)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{Strategy: strategy, Model: s.Model, ExtraPayment: extra}
	switch s.Model {
	case ModelSequential:
		plan.Results = s.sequential(ordered, extra)
		for _, r := range plan.Results {
			plan.TotalMonths += r.Months
		}
	case ModelRolling:
		plan.Results = s.rolling(ordered, extra)
		for _, r := range plan.Results {
			if r.Months > plan.TotalMonths {
				plan.TotalMonths = r.Months
			}
		}
	default:
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownModel, s.Model)
	}
	plan.finalize()

	for _, r := range plan.Results {
		if r.Status == StatusPaidOff {
			continue
		}
		s.logger.Warn("loan cannot be paid off",
			zap.String("op", "paydown.Simulate"),
			zap.String("strategy", string(strategy)),
			zap.String("model", string(s.Model)),
			zap.String("loan", r.Loan.Label()),
			zap.String("status", string(r.Status)),
		)
	}
	return plan, nil
}

// sequential simulates each loan independently with its payment plus extra.
func (s *Simulator) sequential(ordered []Loan, extra float64) []LoanResult {
	results := make([]LoanResult, len(ordered))
	for i, loan := range ordered {
		results[i] = SimulateLoan(loan, loan.MinimumPayment()+extra, s.MaxMonths)
		results[i].Order = i + 1
	}
	return results
}

// SimulateLoan amortizes a single loan with a fixed monthly payment until the
// balance is retired, the payment stops covering interest, or maxMonths pass.
func SimulateLoan(loan Loan, payment float64, maxMonths int) LoanResult {
	result := LoanResult{Loan: loan, Status: StatusPaidOff}
	balance := loan.Balance
	rate := loans.MonthlyRate(loan.Rate)

	for !paidOff(balance) {
		if result.Months >= maxMonths {
			result.Status = StatusCapExceeded
			return result
		}
		interest := balance * rate
		if payment <= interest {
			result.Months = NeverPaidOff
			result.TotalInterest = math.Inf(1)
			result.Status = StatusNonAmortizing
			return result
		}
		result.TotalInterest += interest
		balance -= payment - interest
		result.Months++
	}
	return result
}

// rolling pays every open minimum each month and sends the extra plus the
// minimums of retired loans to the first open loan in order.
func (s *Simulator) rolling(ordered []Loan, extra float64) []LoanResult {
	n := len(ordered)
	results := make([]LoanResult, n)
	balances := make([]float64, n)
	minimums := make([]float64, n)
	rates := make([]float64, n)
	open := make([]bool, n)
	budget := extra
	remaining := 0

	for i, loan := range ordered {
		results[i] = LoanResult{Loan: loan, Order: i + 1, Status: StatusPaidOff}
		balances[i] = loan.Balance
		minimums[i] = loan.MinimumPayment()
		rates[i] = loans.MonthlyRate(loan.Rate)
		budget += minimums[i]
		if !paidOff(balances[i]) {
			open[i] = true
			remaining++
		}
	}

	for month := 1; remaining > 0; month++ {
		if month > s.MaxMonths {
			for i := range ordered {
				if open[i] {
					results[i].Months = s.MaxMonths
					results[i].Status = StatusCapExceeded
				}
			}
			break
		}

		accrued := 0.0
		for i := range ordered {
			if !open[i] {
				continue
			}
			interest := balances[i] * rates[i]
			balances[i] += interest
			results[i].TotalInterest += interest
			accrued += interest
		}
		if budget <= accrued {
			for i := range ordered {
				if open[i] {
					results[i].Months = NeverPaidOff
					results[i].TotalInterest = math.Inf(1)
					results[i].Status = StatusNonAmortizing
				}
			}
			break
		}

		available := budget
		for i := range ordered {
			if !open[i] {
				continue
			}
			pay := math.Min(math.Min(minimums[i], balances[i]), available)
			balances[i] -= pay
			available -= pay
		}
		for i := range ordered {
			if available <= 0 {
				break
			}
			if !open[i] {
				continue
			}
			pay := math.Min(available, balances[i])
			balances[i] -= pay
			available -= pay
		}

		for i := range ordered {
			if open[i] && paidOff(balances[i]) {
				open[i] = false
				results[i].Months = month
				remaining--
			}
		}
	}
	return results
}

// Comparison sets the snowball plan against the avalanche plan.
type Comparison struct {
	Snowball           Plan     `json:"snowball"`
	Avalanche          Plan     `json:"avalanche"`
	InterestDifference float64  `json:"interest_difference"`
	MonthsDifference   int      `json:"months_difference"`
	Recommended        Strategy `json:"recommended,omitempty"`
}

// Compare simulates both strategies. InterestDifference is snowball minus
// avalanche interest and is NaN unless both plans are payable. Avalanche is
// recommended only when it saves interest; no strategy is recommended when
// neither plan pays off.
func (s *Simulator) Compare(debts []Loan, extra float64) (Comparison, error) {
	snowball, err := s.Simulate(debts, extra, Snowball)
	if err != nil {
		return Comparison{}, err
	}
	avalanche, err := s.Simulate(debts, extra, Avalanche)
	if err != nil {
		return Comparison{}, err
	}

	cmp := Comparison{Snowball: snowball, Avalanche: avalanche, InterestDifference: math.NaN()}
	switch {
	case snowball.Payable() && avalanche.Payable():
		cmp.InterestDifference = snowball.TotalInterest - avalanche.TotalInterest
		cmp.MonthsDifference = snowball.TotalMonths - avalanche.TotalMonths
		cmp.Recommended = Snowball
		if mathutil.IsPositive(cmp.InterestDifference) {
			cmp.Recommended = Avalanche
		}
	case avalanche.Payable():
		cmp.Recommended = Avalanche
	case snowball.Payable():
		cmp.Recommended = Snowball
	}

	s.logger.Debug("compared paydown strategies",
		zap.String("op", "paydown.Compare"),
		zap.Int("loans", len(debts)),
		zap.Float64("extra", extra),
		zap.String("recommended", string(cmp.Recommended)),
	)
	return cmp, nil
}
