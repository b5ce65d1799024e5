package types

import (
	"github.com/shopspring/decimal"
)

type PortfolioMetrics struct {
	// Absolute performance
	TotalInvested    decimal.Decimal `json:"totalInvested"`
	TotalReturn      decimal.Decimal `json:"totalReturn"`
	TotalReturnPct   decimal.Decimal `json:"totalReturnPct"`
	AnnualizedReturn decimal.Decimal `json:"annualizedReturn"`
	CAGR             decimal.Decimal `json:"cagr"`
	FinalValue       decimal.Decimal `json:"finalValue"`

	// Risk
	Volatility   decimal.Decimal `json:"volatility"`
	SharpeRatio  decimal.Decimal `json:"sharpeRatio"`
	SortinoRatio decimal.Decimal `json:"sortinoRatio"`

	// Drawdown
	MaxDrawdown             decimal.Decimal `json:"maxDrawdown"`
	MaxDrawdownDurationDays int             `json:"maxDrawdownDurationDays"`

	// Monthly distribution
	BestMonth      decimal.Decimal `json:"bestMonth"`
	WorstMonth     decimal.Decimal `json:"worstMonth"`
	PositiveMonths int             `json:"positiveMonths"`
	TotalMonths    int             `json:"totalMonths"`
}

type AssetKind string

const (
	AssetFund    AssetKind = "FUND"
	AssetBitcoin AssetKind = "BITCOIN"
)

// AllocationBreakdown describes what one asset contributed to the result.
type AllocationBreakdown struct {
	Asset                AssetKind       `json:"asset"`
	AllocationPct        decimal.Decimal `json:"allocationPct"`
	Invested             decimal.Decimal `json:"invested"`
	FinalValue           decimal.Decimal `json:"finalValue"`
	ContributionToReturn decimal.Decimal `json:"contributionToReturn"`
}

// Result is the full outcome of one simulation run.
type Result struct {
	Params     PortfolioParameters   `json:"params"`
	Trajectory Trajectory            `json:"trajectory"`
	Metrics    PortfolioMetrics      `json:"metrics"`
	Allocation []AllocationBreakdown `json:"allocation"`
}
