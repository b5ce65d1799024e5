package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrajectoryPoint is the portfolio valuation on one date. Percentages are
// expressed in percent (5 means 5%).
type TrajectoryPoint struct {
	Date                time.Time       `json:"date"`
	TotalValue          decimal.Decimal `json:"totalValue"`
	FundValue           decimal.Decimal `json:"fundValue"`
	BtcValue            decimal.Decimal `json:"btcValue"`
	TotalInvested       decimal.Decimal `json:"totalInvested"`
	CumulativeReturnPct decimal.Decimal `json:"cumulativeReturnPct"`
	DrawdownPct         decimal.Decimal `json:"drawdownPct"`
}

type Trajectory []TrajectoryPoint

// Last returns the final point. The trajectory must not be empty.
func (t Trajectory) Last() TrajectoryPoint {
	return t[len(t)-1]
}
