package engine

import (
	"context"
	"fmt"
	"pprbitcoin/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const recommendationReason = "Highest risk-adjusted return (Sharpe ratio)"

// comparedMetrics lists the metrics put side by side, and whether a lower
// value is better.
var comparedMetrics = []struct {
	name        string
	lowerBetter bool
	get         func(types.PortfolioMetrics) decimal.Decimal
}{
	{"total_return_pct", false, func(m types.PortfolioMetrics) decimal.Decimal { return m.TotalReturnPct }},
	{"cagr", false, func(m types.PortfolioMetrics) decimal.Decimal { return m.CAGR }},
	{"volatility", true, func(m types.PortfolioMetrics) decimal.Decimal { return m.Volatility }},
	{"sharpe_ratio", false, func(m types.PortfolioMetrics) decimal.Decimal { return m.SharpeRatio }},
	{"max_drawdown", false, func(m types.PortfolioMetrics) decimal.Decimal { return m.MaxDrawdown }},
	{"final_value", false, func(m types.PortfolioMetrics) decimal.Decimal { return m.FinalValue }},
}

// Compare simulates every portfolio over the same prices. Runs are
// independent and execute concurrently; the first failure is returned and
// no comparison is produced.
func (e *Engine) Compare(ctx context.Context, prices types.PriceSeries, portfolios []types.NamedParameters) (*types.Comparison, error) {
	if len(portfolios) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 portfolios to compare, got %d", ErrValidation, len(portfolios))
	}

	results := make([]types.Result, len(portfolios))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range portfolios {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.RunPrices(prices, p.Params)
			if err != nil {
				return fmt.Errorf("portfolio %q: %w", portfolioName(p, i), err)
			}
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make([]string, len(portfolios))
	for i, p := range portfolios {
		names[i] = portfolioName(p, i)
	}
	return &types.Comparison{
		Results: results,
		Summary: summarize(results, names),
	}, nil
}

// CompareFund loads the prices covering every portfolio's window once and
// compares the portfolios on them.
func (e *Engine) CompareFund(ctx context.Context, fundID uuid.UUID, portfolios []types.NamedParameters) (*types.Comparison, error) {
	if len(portfolios) == 0 {
		return nil, fmt.Errorf("%w: no portfolios to compare", ErrValidation)
	}
	start, end := portfolios[0].Params.StartDate, portfolios[0].Params.EndDate
	for _, p := range portfolios {
		if err := ValidateParameters(p.Params); err != nil {
			return nil, err
		}
		if p.Params.StartDate.Before(start) {
			start = p.Params.StartDate
		}
		if p.Params.EndDate.After(end) {
			end = p.Params.EndDate
		}
	}

	prices, err := e.LoadPrices(ctx, fundID, start, end)
	if err != nil {
		return nil, err
	}
	return e.Compare(ctx, prices, portfolios)
}

func summarize(results []types.Result, names []string) types.ComparisonSummary {
	summary := types.ComparisonSummary{
		Portfolios: names,
		Metrics:    make(map[string]types.MetricComparison, len(comparedMetrics)),
	}

	for _, cm := range comparedMetrics {
		values := make([]decimal.Decimal, len(results))
		best := 0
		for i, r := range results {
			values[i] = cm.get(r.Metrics)
			better := values[i].GreaterThan(values[best])
			if cm.lowerBetter {
				better = values[i].LessThan(values[best])
			}
			if better {
				best = i
			}
		}
		summary.Metrics[cm.name] = types.MetricComparison{
			Values:        values,
			BestIndex:     best,
			BestPortfolio: names[best],
		}
	}

	sharpe := summary.Metrics["sharpe_ratio"]
	summary.Recommended = types.Recommendation{
		Index:  sharpe.BestIndex,
		Name:   sharpe.BestPortfolio,
		Reason: recommendationReason,
	}
	return summary
}

func portfolioName(p types.NamedParameters, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Portfolio %d", i+1)
}
