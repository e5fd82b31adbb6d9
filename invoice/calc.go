package invoice

import (
	"time"

	"github.com/xraph/paylater/config"
	"github.com/xraph/paylater/types"
)

// The calculator is pure: no I/O, no clock access beyond explicit inputs.
// All percentage math runs in integer basis points with round-half-up
// (types.ApplyBasisPoints), matching the client-side preview bit for bit.

// Terms is the fee breakdown for a proposed financing.
type Terms struct {
	Principal          int64   `json:"principal"`
	TenorWeeks         int     `json:"tenor_weeks"`
	FeePercent         float64 `json:"fee_percent"`
	FeeAmount          int64   `json:"fee_amount"`
	TotalBeforePenalty int64   `json:"total_before_penalty"`
}

// Build computes the flat tenor fee for a principal. The tenor is clamped
// into the supported range; a tenor missing from the fee table charges no fee.
func Build(principal int64, tenorWeeks int, cfg config.Config) Terms {
	tenor := config.ClampTenor(tenorWeeks)
	feePercent := cfg.TenorFee(tenor)
	feeAmount := types.ApplyBasisPoints(principal, types.BasisPoints(feePercent))

	return Terms{
		Principal:          principal,
		TenorWeeks:         tenor,
		FeePercent:         feePercent,
		FeeAmount:          feeAmount,
		TotalBeforePenalty: principal + feeAmount,
	}
}

// Penalty is the result of a penalty accrual.
type Penalty struct {
	DaysLate      int   `json:"days_late"`
	PenaltyAmount int64 `json:"penalty_amount"`
	CapAmount     int64 `json:"cap_amount"`
	TotalDue      int64 `json:"total_due"`
}

// AccruePenalty recomputes the late penalty from scratch for the given days
// late. Because the result depends only on (totalBeforePenalty, daysLate),
// repeated sweeps on the same day converge to the same amount.
func AccruePenalty(totalBeforePenalty int64, daysLate int, cfg config.Config) Penalty {
	if daysLate < 0 {
		daysLate = 0
	}

	dailyBps := types.BasisPoints(cfg.DailyPenaltyPercent)
	uncapped := types.ApplyBasisPoints(totalBeforePenalty, dailyBps*int64(daysLate))
	capAmount := types.ApplyBasisPoints(totalBeforePenalty, types.BasisPoints(cfg.PenaltyCapPercent))

	penalty := uncapped
	if penalty > capAmount {
		penalty = capAmount
	}

	return Penalty{
		DaysLate:      daysLate,
		PenaltyAmount: penalty,
		CapAmount:     capAmount,
		TotalDue:      totalBeforePenalty + penalty,
	}
}

// LimitIncreaseFromProfit converts the realized net profit of a settled
// order into a credit limit grant. Never negative.
func LimitIncreaseFromProfit(profitNet int64, cfg config.Config) int64 {
	return types.ApplyBasisPoints(profitNet, types.BasisPoints(cfg.ProfitToLimitPercent))
}

// DueDate computes an invoice due date from its opening time and tenor.
func DueDate(openedAt time.Time, tenorWeeks int) time.Time {
	return openedAt.AddDate(0, 0, 7*config.ClampTenor(tenorWeeks))
}
