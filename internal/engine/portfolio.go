package engine

import (
	"github.com/shopspring/decimal"
)

// unitsPrecision bounds the digits kept when converting money into units.
const unitsPrecision = 28

// valueScale is the number of decimal places kept on recorded valuations.
const valueScale = 10

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// portfolio is the mutable state of a single simulation run. Holdings are
// kept as units so that a holding's value is always units * price.
type portfolio struct {
	fundUnits decimal.Decimal
	btcUnits  decimal.Decimal
	invested  decimal.Decimal
	peak      decimal.Decimal

	fundTarget decimal.Decimal
	btcTarget  decimal.Decimal
}

func newPortfolio(btcAllocation decimal.Decimal) *portfolio {
	return &portfolio{
		fundUnits:  decimal.Zero,
		btcUnits:   decimal.Zero,
		invested:   decimal.Zero,
		peak:       decimal.Zero,
		fundTarget: one.Sub(btcAllocation),
		btcTarget:  btcAllocation,
	}
}

// deposit invests cash at the target allocation.
func (p *portfolio) deposit(amount, fundPrice, btcPrice decimal.Decimal) {
	p.fundUnits = p.fundUnits.Add(toUnits(amount.Mul(p.fundTarget), fundPrice))
	p.btcUnits = p.btcUnits.Add(toUnits(amount.Mul(p.btcTarget), btcPrice))
	p.invested = p.invested.Add(amount)
}

// rebalance resets both holdings to the target split of the current total.
func (p *portfolio) rebalance(fundPrice, btcPrice decimal.Decimal) {
	total := p.fundUnits.Mul(fundPrice).Add(p.btcUnits.Mul(btcPrice))
	p.fundUnits = toUnits(total.Mul(p.fundTarget), fundPrice)
	p.btcUnits = toUnits(total.Mul(p.btcTarget), btcPrice)
}

// value returns the current fund, bitcoin and total valuation.
func (p *portfolio) value(fundPrice, btcPrice decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	fund := p.fundUnits.Mul(fundPrice).Round(valueScale)
	btc := p.btcUnits.Mul(btcPrice).Round(valueScale)
	return fund, btc, fund.Add(btc)
}

func toUnits(amount, price decimal.Decimal) decimal.Decimal {
	if amount.IsZero() {
		return decimal.Zero
	}
	return amount.DivRound(price, unitsPrecision)
}
