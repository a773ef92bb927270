// Package optimizer searches for the smallest extra monthly payment that
// retires a set of loans within a target number of months.
package optimizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/rental-portfolio/internal/paydown"
	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/format"
	"github.com/iwvelando/rental-portfolio/pkg/optimization"
	"go.uber.org/zap"
)

// FieldExtraPayment names the optimized field in summaries.
const FieldExtraPayment = "extraPayment"

// ErrInvalidTarget is returned when the payoff target is not positive.
var ErrInvalidTarget = errors.New("optimizer: target months must be positive")

// Target describes one payoff goal.
type Target struct {
	Strategy      paydown.Strategy
	TargetMonths  int
	BaselineExtra float64
	// MaxExtra bounds the search. Zero selects twice the total balance, which
	// retires every loan in its first month.
	MaxExtra      float64
	Tolerance     float64
	MaxIterations int
}

func (t Target) normalize(debts []paydown.Loan) Target {
	if t.MaxExtra <= 0 {
		for _, d := range debts {
			t.MaxExtra += 2 * d.Balance
		}
	}
	if t.Tolerance <= 0 {
		t.Tolerance = constants.CurrencyTolerance
	}
	if t.MaxIterations <= 0 {
		t.MaxIterations = constants.DefaultOptimizerMaxIterations
	}
	return t
}

// Runner evaluates payoff plans through a simulator.
type Runner struct {
	logger    *zap.Logger
	simulator *paydown.Simulator
}

type evaluation struct {
	extra  float64
	plan   paydown.Plan
	target int
}

func (e evaluation) feasible() bool {
	return e.plan.Payable() && e.plan.TotalMonths <= e.target
}

// headroom is 0 for unpayable plans, whose TotalMonths is NeverPaidOff.
func (e evaluation) headroom() float64 {
	if !e.plan.Payable() {
		return 0
	}
	return float64(e.target - e.plan.TotalMonths)
}

// NewRunner constructs a Runner around the provided simulator.
func NewRunner(logger *zap.Logger, simulator *paydown.Simulator) (*Runner, error) {
	if simulator == nil {
		return nil, fmt.Errorf("simulator cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, simulator: simulator}, nil
}

// RequiredExtraPayment bisects the extra payment between zero and
// target.MaxExtra. The result is rounded up to the cent and is only marked
// converged when the plan meets the target.
func (r *Runner) RequiredExtraPayment(debts []paydown.Loan, target Target) (optimization.Summary, error) {
	if target.TargetMonths <= 0 {
		return optimization.Summary{}, fmt.Errorf("%w: %d", ErrInvalidTarget, target.TargetMonths)
	}
	target = target.normalize(debts)

	summary := optimization.Summary{
		Scope:           "portfolio",
		TargetName:      string(target.Strategy),
		Field:           FieldExtraPayment,
		Original:        target.BaselineExtra,
		OriginalDisplay: format.Currency(target.BaselineExtra),
		Target:          float64(target.TargetMonths),
	}

	lowerEval, err := r.evaluate(debts, target, 0)
	if err != nil {
		return optimization.Summary{}, err
	}
	if lowerEval.feasible() {
		r.fill(&summary, lowerEval, 0, true)
		summary.Notes = []string{"minimum payments already meet the payoff target"}
		return summary, nil
	}

	upperEval, err := r.evaluate(debts, target, target.MaxExtra)
	if err != nil {
		return optimization.Summary{}, err
	}
	if !upperEval.feasible() {
		r.fill(&summary, upperEval, 0, false)
		summary.Notes = []string{fmt.Sprintf(
			"unable to pay off within %s using up to %s extra per month",
			format.Months(target.TargetMonths),
			format.Currency(target.MaxExtra),
		)}
		return summary, nil
	}

	iterations := 0
	lower, upper := lowerEval.extra, upperEval.extra
	finalEval := upperEval
	for iterations < target.MaxIterations && upper-lower > target.Tolerance {
		mid := lower + (upper-lower)/2
		evalMid, err := r.evaluate(debts, target, mid)
		if err != nil {
			return optimization.Summary{}, err
		}
		iterations++
		if evalMid.feasible() {
			finalEval = evalMid
			upper = mid
		} else {
			lower = mid
		}
	}

	rounded := math.Ceil(finalEval.extra*constants.DecimalPrecision) / constants.DecimalPrecision
	if rounded != finalEval.extra {
		roundedEval, err := r.evaluate(debts, target, rounded)
		if err != nil {
			return optimization.Summary{}, err
		}
		if roundedEval.feasible() {
			finalEval = roundedEval
		}
	}

	r.fill(&summary, finalEval, iterations, true)
	r.logger.Info("optimizer found extra payment",
		zap.String("op", "optimizer.RequiredExtraPayment"),
		zap.String("strategy", string(target.Strategy)),
		zap.Int("targetMonths", target.TargetMonths),
		zap.Float64("extra", summary.Value),
		zap.Float64("achievedMonths", summary.Achieved),
		zap.Int("iterations", iterations),
	)
	return summary, nil
}

func (r *Runner) evaluate(debts []paydown.Loan, target Target, extra float64) (evaluation, error) {
	plan, err := r.simulator.Simulate(debts, extra, target.Strategy)
	if err != nil {
		return evaluation{}, fmt.Errorf("optimizer evaluation failed: %w", err)
	}
	return evaluation{extra: extra, plan: plan, target: target.TargetMonths}, nil
}

func (r *Runner) fill(summary *optimization.Summary, eval evaluation, iterations int, converged bool) {
	summary.Value = eval.extra
	summary.ValueDisplay = format.Currency(eval.extra)
	summary.Achieved = float64(eval.plan.TotalMonths)
	summary.Headroom = eval.headroom()
	summary.Iterations = iterations
	summary.Converged = converged && eval.feasible()
}
