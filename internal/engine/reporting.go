package engine

import (
	"fmt"
	"io"
	"math"
	"pprbitcoin/types"
	"time"

	"github.com/shopspring/decimal"
)

var sqrtTwelve = math.Sqrt(12)

// ComputeMetrics derives the summary statistics of a trajectory using a 0%
// risk-free rate.
func ComputeMetrics(trajectory types.Trajectory, params types.PortfolioParameters) (types.PortfolioMetrics, error) {
	return computeMetrics(trajectory, params, defaultReportingConfig())
}

func computeMetrics(trajectory types.Trajectory, params types.PortfolioParameters, cfg *ReportingConfig) (types.PortfolioMetrics, error) {
	if len(trajectory) == 0 {
		return types.PortfolioMetrics{}, fmt.Errorf("%w: empty trajectory", ErrInsufficientData)
	}
	if err := ValidateParameters(params); err != nil {
		return types.PortfolioMetrics{}, err
	}

	first := trajectory[0]
	final := trajectory.Last()

	m := types.PortfolioMetrics{
		TotalInvested: final.TotalInvested,
		FinalValue:    final.TotalValue,
	}
	m.TotalReturn, m.TotalReturnPct = calcTotalReturn(final)

	months := monthsBetween(first.Date, final.Date)
	m.TotalMonths = months
	// Contributions are deliberately left out of the CAGR base.
	m.CAGR = calcCAGR(final.TotalValue, params.InitialInvestment, months)
	m.AnnualizedReturn = m.CAGR

	monthlyReturns := getMonthlyReturns(trajectory)
	m.Volatility = calcVolatility(monthlyReturns)
	m.SharpeRatio = calcRatio(m.AnnualizedReturn, cfg.riskFreeRatePct, m.Volatility)
	m.SortinoRatio = calcRatio(m.AnnualizedReturn, cfg.riskFreeRatePct, calcDownsideDeviation(monthlyReturns))

	m.MaxDrawdown, m.MaxDrawdownDurationDays = calcDrawdownMetrics(trajectory)
	m.BestMonth, m.WorstMonth, m.PositiveMonths = calcMonthlyExtremes(monthlyReturns)
	return m, nil
}

func calcTotalReturn(final types.TrajectoryPoint) (decimal.Decimal, decimal.Decimal) {
	totalReturn := final.TotalValue.Sub(final.TotalInvested)
	if !final.TotalInvested.IsPositive() {
		return totalReturn, decimal.Zero
	}
	return totalReturn, totalReturn.Div(final.TotalInvested).Mul(hundred)
}

// calcCAGR returns the compound annual growth rate in percent over a span of
// whole calendar months. Sub-month spans count as one month.
func calcCAGR(finalValue, initialInvestment decimal.Decimal, months int) decimal.Decimal {
	if !initialInvestment.IsPositive() {
		return decimal.Zero
	}
	if months < 1 {
		months = 1
	}
	years := float64(months) / 12.0

	ratio := finalValue.Div(initialInvestment)
	if !ratio.IsPositive() {
		return decimal.NewFromInt(-100)
	}
	if ratio.Equal(one) {
		return decimal.Zero
	}

	cagrFloat := math.Pow(ratio.InexactFloat64(), 1.0/years) - 1.0
	return decimal.NewFromFloat(cagrFloat * 100)
}

// getMonthlyReturns resamples the trajectory to the last value of each
// calendar month and returns the fractional change between consecutive
// month ends.
func getMonthlyReturns(trajectory types.Trajectory) []decimal.Decimal {
	if len(trajectory) == 0 {
		return nil
	}

	monthEnds := make([]decimal.Decimal, 0, len(trajectory))
	for i, point := range trajectory {
		if i+1 < len(trajectory) && sameMonth(point.Date, trajectory[i+1].Date) {
			continue
		}
		monthEnds = append(monthEnds, point.TotalValue)
	}
	if len(monthEnds) < 2 {
		return nil
	}

	returns := make([]decimal.Decimal, 0, len(monthEnds)-1)
	prev := monthEnds[0]
	for _, cur := range monthEnds[1:] {
		if !prev.IsPositive() {
			prev = cur
			continue
		}
		returns = append(returns, cur.Div(prev).Sub(one))
		prev = cur
	}
	return returns
}

// calcVolatility annualises the sample standard deviation of monthly returns
// and expresses it in percent.
func calcVolatility(monthlyReturns []decimal.Decimal) decimal.Decimal {
	std := sampleStdDev(monthlyReturns)
	if std == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(std * sqrtTwelve * 100)
}

// calcDownsideDeviation is calcVolatility restricted to the losing months.
func calcDownsideDeviation(monthlyReturns []decimal.Decimal) decimal.Decimal {
	negative := make([]decimal.Decimal, 0, len(monthlyReturns))
	for _, r := range monthlyReturns {
		if r.IsNegative() {
			negative = append(negative, r)
		}
	}
	return calcVolatility(negative)
}

// sampleStdDev keeps the mean and squared deviations in decimal so that a
// series of identical returns yields exactly zero.
func sampleStdDev(values []decimal.Decimal) float64 {
	if len(values) < 2 {
		return 0
	}
	n := decimal.NewFromInt(int64(len(values)))
	mean := decimal.Sum(decimal.Zero, values...).Div(n)

	varianceSum := decimal.Zero
	for _, v := range values {
		diff := v.Sub(mean)
		varianceSum = varianceSum.Add(diff.Mul(diff))
	}
	if varianceSum.IsZero() {
		return 0
	}
	variance := varianceSum.Div(n.Sub(one))
	return math.Sqrt(variance.InexactFloat64())
}

// calcRatio is the excess annual return over the risk-free rate per unit of
// risk. All inputs are percentages; zero risk yields zero.
func calcRatio(annualReturnPct, riskFreePct, riskPct decimal.Decimal) decimal.Decimal {
	if riskPct.IsZero() {
		return decimal.Zero
	}
	excess := annualReturnPct.Sub(riskFreePct).InexactFloat64()
	return decimal.NewFromFloat(excess / riskPct.InexactFloat64())
}

// calcDrawdownMetrics returns the deepest drawdown in percent and the longest
// stretch, in calendar days, spent below a previous peak. An unrecovered
// drawdown runs to the last date.
func calcDrawdownMetrics(trajectory types.Trajectory) (decimal.Decimal, int) {
	if len(trajectory) == 0 {
		return decimal.Zero, 0
	}

	maxDD := decimal.Zero
	for _, point := range trajectory {
		if point.DrawdownPct.LessThan(maxDD) {
			maxDD = point.DrawdownPct
		}
	}

	peak := trajectory[0].TotalValue
	peakTime := trajectory[0].Date
	underwater := false
	longest := 0
	for _, point := range trajectory[1:] {
		if point.TotalValue.LessThan(peak) {
			underwater = true
			continue
		}
		if underwater {
			longest = max(longest, daysBetween(peakTime, point.Date))
			underwater = false
		}
		peak = point.TotalValue
		peakTime = point.Date
	}
	if underwater {
		longest = max(longest, daysBetween(peakTime, trajectory.Last().Date))
	}
	return maxDD, longest
}

// calcMonthlyExtremes returns the best and worst monthly return in percent and
// the number of months that gained.
func calcMonthlyExtremes(monthlyReturns []decimal.Decimal) (decimal.Decimal, decimal.Decimal, int) {
	if len(monthlyReturns) == 0 {
		return decimal.Zero, decimal.Zero, 0
	}
	best := decimal.Max(monthlyReturns[0], monthlyReturns[1:]...)
	worst := decimal.Min(monthlyReturns[0], monthlyReturns[1:]...)

	positive := 0
	for _, r := range monthlyReturns {
		if r.IsPositive() {
			positive++
		}
	}
	return best.Mul(hundred), worst.Mul(hundred), positive
}

func daysBetween(a, b time.Time) int {
	return int(types.CalendarDate(b).Sub(types.CalendarDate(a)).Hours() / 24)
}

// PrintReport writes a human readable summary of a run.
func PrintReport(w io.Writer, result *types.Result) {
	m := result.Metrics
	p := result.Params
	traj := result.Trajectory

	fmt.Fprintln(w, "===== Portfolio Report =====")
	fmt.Fprintf(w, "Period:                %s -> %s\n",
		traj[0].Date.Format(time.DateOnly), traj.Last().Date.Format(time.DateOnly))
	fmt.Fprintf(w, "Bitcoin Allocation:    %s%%\n", p.BitcoinAllocation.Mul(hundred).StringFixed(2))
	fmt.Fprintf(w, "Rebalancing:           %s\n", p.Rebalancing)
	fmt.Fprintf(w, "Data Points:           %d\n", len(traj))

	fmt.Fprintln(w, "\n-- Absolute Performance --")
	fmt.Fprintf(w, "Total Invested:        %s\n", m.TotalInvested.StringFixed(2))
	fmt.Fprintf(w, "Final Value:           %s\n", m.FinalValue.StringFixed(2))
	fmt.Fprintf(w, "Total Return:          %s (%s%%)\n", m.TotalReturn.StringFixed(2), m.TotalReturnPct.StringFixed(2))
	fmt.Fprintf(w, "CAGR:                  %s%%\n", m.CAGR.StringFixed(2))

	fmt.Fprintln(w, "\n-- Risk-Adjusted Metrics --")
	fmt.Fprintf(w, "Volatility:            %s%%\n", m.Volatility.StringFixed(2))
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", m.SharpeRatio.StringFixed(2))
	fmt.Fprintf(w, "Sortino Ratio:         %s\n", m.SortinoRatio.StringFixed(2))

	fmt.Fprintln(w, "\n-- Drawdown Metrics --")
	fmt.Fprintf(w, "Max Drawdown %%:        %s\n", m.MaxDrawdown.StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown Days:     %d\n", m.MaxDrawdownDurationDays)

	fmt.Fprintln(w, "\n-- Monthly Returns --")
	fmt.Fprintf(w, "Best Month:            %s%%\n", m.BestMonth.StringFixed(2))
	fmt.Fprintf(w, "Worst Month:           %s%%\n", m.WorstMonth.StringFixed(2))
	fmt.Fprintf(w, "Positive Months:       %d/%d\n", m.PositiveMonths, m.TotalMonths)

	if len(result.Allocation) > 0 {
		fmt.Fprintln(w, "\n-- Allocation --")
		for _, a := range result.Allocation {
			fmt.Fprintf(w, "%-8s %6s%%  invested %s  final %s  contribution %s%%\n",
				a.Asset, a.AllocationPct.StringFixed(2), a.Invested.StringFixed(2),
				a.FinalValue.StringFixed(2), a.ContributionToReturn.StringFixed(2))
		}
	}
	fmt.Fprintln(w, "============================")
}
