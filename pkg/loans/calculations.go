// Package loans provides the fixed-rate amortization engine.
package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"go.uber.org/zap"
)

// ErrTermTooLong is returned for terms beyond constants.MaxAmortizationMonths.
var ErrTermTooLong = errors.New("term exceeds maximum amortization length")

// MonthSplit holds the interest/principal split of a single payment.
type MonthSplit struct {
	Principal    float64 `json:"principal"`
	Interest     float64 `json:"interest"`
	TotalPayment float64 `json:"total_payment"`
}

// Covered reports whether the payment covers the interest due. A split whose
// payment does not cover interest never reduces the balance.
func (s MonthSplit) Covered() bool {
	return s.TotalPayment > s.Interest
}

// ScheduleRow is one month of an amortization schedule.
type ScheduleRow struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// MonthlyRate converts an annual percentage rate (6.5 means 6.5%) into the
// monthly decimal rate used by the annuity formulas.
func MonthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// MonthlyPayment calculates the level payment for a loan using the standard
// annuity formula P*r*(1+r)^n / ((1+r)^n - 1). monthlyRate is the monthly
// decimal rate. A zero principal or term yields 0; a zero rate amortizes
// straight-line.
func MonthlyPayment(principal, monthlyRate float64, months int) float64 {
	if principal == 0 || months <= 0 {
		return 0
	}
	if monthlyRate == 0 {
		return principal / float64(months)
	}

	power := math.Pow(1.00+monthlyRate, float64(months))
	return principal * monthlyRate * power / (power - 1.00)
}

// InterestPayment calculates the interest portion of a payment.
func InterestPayment(balance, annualRatePercent float64) float64 {
	return balance * MonthlyRate(annualRatePercent)
}

// AmortizationMonth splits the first level payment of a loan with the given
// balance, annual rate and remaining term into principal and interest. Both
// parts are floored at zero.
func AmortizationMonth(balance, annualRatePercent float64, months int) MonthSplit {
	payment := MonthlyPayment(balance, MonthlyRate(annualRatePercent), months)
	interest := InterestPayment(balance, annualRatePercent)
	return splitPayment(payment, interest)
}

// SplitPayment splits an arbitrary payment against the interest due on balance.
func SplitPayment(balance, annualRatePercent, payment float64) MonthSplit {
	return splitPayment(payment, InterestPayment(balance, annualRatePercent))
}

func splitPayment(payment, interest float64) MonthSplit {
	return MonthSplit{
		Principal:    math.Max(0, payment-interest),
		Interest:     math.Max(0, interest),
		TotalPayment: payment,
	}
}

// RemainingBalance returns the outstanding balance after paymentsMade level
// payments, using the closed-form annuity identity. The result is clamped to
// [0, originalBalance].
func RemainingBalance(originalBalance, monthlyRate float64, totalMonths, paymentsMade int) float64 {
	if originalBalance <= 0 || totalMonths <= 0 {
		return 0
	}
	if paymentsMade <= 0 {
		return originalBalance
	}
	if paymentsMade >= totalMonths {
		return 0
	}

	var remaining float64
	if monthlyRate == 0 {
		remaining = originalBalance - (originalBalance/float64(totalMonths))*float64(paymentsMade)
	} else {
		total := math.Pow(1+monthlyRate, float64(totalMonths))
		made := math.Pow(1+monthlyRate, float64(paymentsMade))
		remaining = originalBalance * (total - made) / (total - 1)
	}
	return math.Min(originalBalance, math.Max(0, remaining))
}

// GenerateAmortizationSchedule builds the full monthly schedule for a loan.
// The final row retires whatever residual floating point error remains, so the
// principal column always sums to the starting balance. Terms longer than
// constants.MaxAmortizationMonths yield no schedule.
func GenerateAmortizationSchedule(balance, annualRatePercent float64, months int) []ScheduleRow {
	if balance <= 0 || months <= 0 || months > constants.MaxAmortizationMonths {
		return nil
	}

	payment := MonthlyPayment(balance, MonthlyRate(annualRatePercent), months)
	schedule := make([]ScheduleRow, 0, months)
	remaining := balance
	for month := 1; month <= months; month++ {
		split := SplitPayment(remaining, annualRatePercent, payment)
		principal := split.Principal
		if month == months || principal > remaining {
			principal = remaining
		}
		remaining -= principal
		schedule = append(schedule, ScheduleRow{
			Month:     month,
			Payment:   principal + split.Interest,
			Principal: principal,
			Interest:  split.Interest,
			Balance:   remaining,
		})
	}
	return schedule
}

// TotalInterest sums the interest column of a schedule.
func TotalInterest(schedule []ScheduleRow) float64 {
	total := 0.0
	for _, row := range schedule {
		total += row.Interest
	}
	return total
}

// TotalPrincipal sums the principal column of a schedule.
func TotalPrincipal(schedule []ScheduleRow) float64 {
	total := 0.0
	for _, row := range schedule {
		total += row.Principal
	}
	return total
}

// AmortizationScheduleGenerator produces schedules that include recurring extra
// principal payments.
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateWithExtraPrincipal amortizes the loan with the level payment for the
// given term plus a fixed extra principal amount every month. The schedule ends
// as soon as the balance is retired, so it may be shorter than months.
func (g *AmortizationScheduleGenerator) GenerateWithExtraPrincipal(balance, annualRatePercent float64, months int, extra float64) ([]ScheduleRow, error) {
	if extra < 0 {
		return nil, fmt.Errorf("extra principal cannot be negative, got %.2f", extra)
	}
	if months > constants.MaxAmortizationMonths {
		return nil, fmt.Errorf("%w: %d months", ErrTermTooLong, months)
	}
	if balance <= 0 || months <= 0 {
		return nil, nil
	}

	payment := MonthlyPayment(balance, MonthlyRate(annualRatePercent), months)
	schedule := make([]ScheduleRow, 0, months)
	remaining := balance
	for month := 1; month <= months && remaining > constants.BalanceEpsilon; month++ {
		split := SplitPayment(remaining, annualRatePercent, payment)
		extraPrincipal := CapExtraPrincipal(g.logger, extra, remaining-split.Principal)
		principal := split.Principal + extraPrincipal
		if month == months || principal > remaining {
			principal = remaining
		}
		remaining -= principal
		schedule = append(schedule, ScheduleRow{
			Month:     month,
			Payment:   principal + split.Interest,
			Principal: principal,
			Interest:  split.Interest,
			Balance:   remaining,
		})
	}

	g.logger.Debug(fmt.Sprintf("amortized %.2f over %d of %d months with %.2f extra principal",
		balance, len(schedule), months, extra),
		zap.String("op", "loans.GenerateWithExtraPrincipal"),
	)
	return schedule, nil
}

// CapExtraPrincipal prevents overpayment by capping an extra principal payment
// to the balance left after the scheduled principal.
func CapExtraPrincipal(logger *zap.Logger, extra, balanceAfterScheduled float64) float64 {
	if balanceAfterScheduled <= 0 {
		return 0
	}
	if extra > balanceAfterScheduled {
		if logger != nil {
			logger.Debug("Capping extra principal payment to prevent overpayment",
				zap.String("op", "loans.CapExtraPrincipal"),
				zap.Float64("requested", extra),
				zap.Float64("capped_to_balance", balanceAfterScheduled))
		}
		return balanceAfterScheduled
	}
	return extra
}
