package engine

import (
	"pprbitcoin/types"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var tolerance = decimal.RequireFromString("0.000001")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, d int) time.Time {
	return types.Date(year, month, d)
}

func pp(date time.Time, price string) types.PricePoint {
	return types.PricePoint{Date: date, Price: dec(price)}
}

// monthlyPoints returns one price per month starting at start.
func monthlyPoints(start time.Time, prices ...decimal.Decimal) []types.PricePoint {
	out := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = types.PricePoint{Date: start.AddDate(0, i, 0), Price: p}
	}
	return out
}

// flatPrices returns n copies of price.
func flatPrices(n int, price string) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = dec(price)
	}
	return out
}

func alignedMonthly(start time.Time, fund, btc []decimal.Decimal) types.AlignedSeries {
	out := make(types.AlignedSeries, len(fund))
	for i := range fund {
		out[i] = types.AlignedPoint{Date: start.AddDate(0, i, 0), FundPrice: fund[i], BtcPrice: btc[i]}
	}
	return out
}

func newParams(initial, btcFraction string, freq types.RebalanceFrequency, start, end time.Time) types.PortfolioParameters {
	return types.PortfolioParameters{
		InitialInvestment:   dec(initial),
		MonthlyContribution: decimal.Zero,
		BitcoinAllocation:   dec(btcFraction),
		StartDate:           start,
		EndDate:             end,
		Rebalancing:         freq,
	}
}

func assertClose(t *testing.T, what string, got, want decimal.Decimal) {
	t.Helper()
	if got.Sub(want).Abs().GreaterThan(tolerance) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}
