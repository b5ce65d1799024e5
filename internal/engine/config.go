package engine

import (
	"fmt"
	"pprbitcoin/types"

	"github.com/shopspring/decimal"
)

type ReportingConfig struct {
	riskFreeRatePct decimal.Decimal
}

// NewReportingConfig sets the annual risk-free rate, in percent, used by the
// Sharpe and Sortino ratios.
func NewReportingConfig(riskFreeRatePct decimal.Decimal) *ReportingConfig {
	return &ReportingConfig{
		riskFreeRatePct: riskFreeRatePct,
	}
}

func defaultReportingConfig() *ReportingConfig {
	return NewReportingConfig(decimal.Zero)
}

// ValidateParameters checks the parameter domain. Values are never clamped.
func ValidateParameters(p types.PortfolioParameters) error {
	if !p.InitialInvestment.IsPositive() {
		return fmt.Errorf("%w: initial investment must be > 0, got %s", ErrValidation, p.InitialInvestment)
	}
	if p.MonthlyContribution.IsNegative() {
		return fmt.Errorf("%w: monthly contribution must be >= 0, got %s", ErrValidation, p.MonthlyContribution)
	}
	if p.BitcoinAllocation.IsNegative() || p.BitcoinAllocation.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: bitcoin allocation must be within [0, 1], got %s", ErrValidation, p.BitcoinAllocation)
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if types.CalendarDate(p.EndDate).Before(types.CalendarDate(p.StartDate)) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrValidation,
			p.EndDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
	}
	if _, ok := types.RebalanceFrequencyToMonths[p.Rebalancing]; !ok {
		return fmt.Errorf("%w: unknown rebalancing frequency %q", ErrValidation, p.Rebalancing)
	}
	return nil
}
