package engine

import (
	"fmt"
	"pprbitcoin/types"
	"time"

	"github.com/shopspring/decimal"
)

// Simulate walks the aligned series once and returns the valuation on every
// date. The first date invests the initial amount at the target split; each
// later date applies price moves, then the monthly contribution when a new
// calendar month starts, then a rebalance when one is due.
func Simulate(series types.AlignedSeries, params types.PortfolioParameters) (types.Trajectory, error) {
	if err := ValidateParameters(params); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty aligned series", ErrInsufficientData)
	}

	fundGuard := &priceGuard{asset: "fund"}
	btcGuard := &priceGuard{asset: "bitcoin"}

	trajectory := make(types.Trajectory, 0, len(series))
	pf := newPortfolio(params.BitcoinAllocation)

	var prevDate, lastRebalance time.Time
	for i, point := range series {
		date := types.CalendarDate(point.Date)
		if i > 0 && !date.After(prevDate) {
			return nil, fmt.Errorf("%w: aligned dates not strictly ascending at %s", ErrDataIntegrity,
				date.Format(time.DateOnly))
		}

		fundPrice, err := fundGuard.check(i, date, point.FundPrice, point.FundCarried)
		if err != nil {
			return nil, err
		}
		btcPrice, err := btcGuard.check(i, date, point.BtcPrice, point.BtcCarried)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			pf.deposit(params.InitialInvestment, fundPrice, btcPrice)
			lastRebalance = date
		} else {
			if params.MonthlyContribution.IsPositive() {
				// One contribution per calendar month entered, including
				// months that had no observation of their own.
				for m := monthsBetween(prevDate, date); m > 0; m-- {
					pf.deposit(params.MonthlyContribution, fundPrice, btcPrice)
				}
			}
			if isRebalanceDue(params.Rebalancing, lastRebalance, date) {
				pf.rebalance(fundPrice, btcPrice)
				lastRebalance = date
			}
		}

		trajectory = append(trajectory, pf.record(date, fundPrice, btcPrice))
		prevDate = date
	}
	return trajectory, nil
}

// record values the portfolio at the given prices and advances the running peak.
func (p *portfolio) record(date time.Time, fundPrice, btcPrice decimal.Decimal) types.TrajectoryPoint {
	fund, btc, total := p.value(fundPrice, btcPrice)
	if total.GreaterThan(p.peak) {
		p.peak = total
	}

	drawdown := decimal.Zero
	if p.peak.IsPositive() {
		drawdown = total.Div(p.peak).Sub(one).Mul(hundred)
	}
	cumulative := decimal.Zero
	if p.invested.IsPositive() {
		cumulative = total.Div(p.invested).Sub(one).Mul(hundred)
	}

	return types.TrajectoryPoint{
		Date:                date,
		TotalValue:          total,
		FundValue:           fund,
		BtcValue:            btc,
		TotalInvested:       p.invested,
		CumulativeReturnPct: cumulative,
		DrawdownPct:         drawdown,
	}
}

// priceGuard tolerates a single zero quote per asset by holding the previous
// price (a zero return). A second observed zero, a zero on the first date or
// a negative quote fails the run. A carried-forward zero is the same quote
// again and is not counted twice.
type priceGuard struct {
	asset string
	last  decimal.Decimal
	zeros int
}

func (g *priceGuard) check(i int, date time.Time, price decimal.Decimal, carried bool) (decimal.Decimal, error) {
	switch {
	case price.IsNegative():
		return decimal.Zero, fmt.Errorf("%w: negative %s price %s on %s", ErrDataIntegrity,
			g.asset, price, date.Format(time.DateOnly))
	case price.IsZero():
		if i > 0 && carried {
			return g.last, nil
		}
		g.zeros++
		if i == 0 {
			return decimal.Zero, fmt.Errorf("%w: zero %s price on first date %s", ErrDataIntegrity,
				g.asset, date.Format(time.DateOnly))
		}
		if g.zeros > 1 {
			return decimal.Zero, fmt.Errorf("%w: repeated zero %s price on %s", ErrDataIntegrity,
				g.asset, date.Format(time.DateOnly))
		}
		return g.last, nil
	}
	g.last = price
	return price, nil
}
