package engine

import (
	"context"
	"errors"
	"pprbitcoin/types"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func comparePrices() types.PriceSeries {
	btc := make([]decimal.Decimal, 13)
	for k := range btc {
		btc[k] = dec("20000").Add(decimal.NewFromInt(int64(1000 * k * k)))
	}
	return types.PriceSeries{
		Fund:    monthlyPoints(jan2023, flatPrices(13, "10")...),
		Bitcoin: monthlyPoints(jan2023, btc...),
	}
}

func TestEngineCompare(t *testing.T) {
	e := NewEngine(nil, nil, testLogger())
	end := jan2023.AddDate(1, 0, 0)
	portfolios := []types.NamedParameters{
		{Params: newParams("10000", "0", types.RebalanceNone, jan2023, end)},
		{Name: "All in", Params: newParams("10000", "1", types.RebalanceNone, jan2023, end)},
	}

	cmp, err := e.Compare(context.Background(), comparePrices(), portfolios)
	if err != nil {
		t.Fatalf("Compare() unexpected error: %v", err)
	}
	if len(cmp.Results) != 2 {
		t.Fatalf("results len = %d, want 2", len(cmp.Results))
	}

	summary := cmp.Summary
	if got := strings.Join(summary.Portfolios, ","); got != "Portfolio 1,All in" {
		t.Errorf("portfolio names = %q", got)
	}

	tests := []struct {
		metric string
		best   int
	}{
		{"total_return_pct", 1},
		{"cagr", 1},
		{"final_value", 1},
		{"sharpe_ratio", 1},
		{"volatility", 0},
		{"max_drawdown", 0},
	}
	for _, tt := range tests {
		mc, ok := summary.Metrics[tt.metric]
		if !ok {
			t.Errorf("metric %s missing from summary", tt.metric)
			continue
		}
		if mc.BestIndex != tt.best {
			t.Errorf("%s best index = %d, want %d (values %v)", tt.metric, mc.BestIndex, tt.best, mc.Values)
		}
		if mc.BestPortfolio != summary.Portfolios[tt.best] {
			t.Errorf("%s best portfolio = %q", tt.metric, mc.BestPortfolio)
		}
	}

	if summary.Recommended.Index != 1 || summary.Recommended.Name != "All in" {
		t.Errorf("recommended = %+v, want index 1", summary.Recommended)
	}
	if summary.Recommended.Reason != recommendationReason {
		t.Errorf("reason = %q", summary.Recommended.Reason)
	}
}

func TestSummarize_MaxDrawdownPrefersShallowest(t *testing.T) {
	results := []types.Result{
		{Metrics: types.PortfolioMetrics{MaxDrawdown: dec("-35"), Volatility: dec("40")}},
		{Metrics: types.PortfolioMetrics{MaxDrawdown: dec("-12"), Volatility: dec("15")}},
		{Metrics: types.PortfolioMetrics{MaxDrawdown: dec("-20"), Volatility: dec("9")}},
	}
	summary := summarize(results, []string{"a", "b", "c"})
	if got := summary.Metrics["max_drawdown"].BestPortfolio; got != "b" {
		t.Errorf("max_drawdown best = %q, want b", got)
	}
	if got := summary.Metrics["volatility"].BestPortfolio; got != "c" {
		t.Errorf("volatility best = %q, want c", got)
	}
}

func TestEngineCompare_Errors(t *testing.T) {
	e := NewEngine(nil, nil, testLogger())
	end := jan2023.AddDate(1, 0, 0)

	t.Run("needs two portfolios", func(t *testing.T) {
		one := []types.NamedParameters{{Params: newParams("10000", "0.1", types.RebalanceNone, jan2023, end)}}
		if _, err := e.Compare(context.Background(), comparePrices(), one); !errors.Is(err, ErrValidation) {
			t.Fatalf("Compare() error = %v, want ErrValidation", err)
		}
	})

	t.Run("one invalid portfolio fails the comparison", func(t *testing.T) {
		bad := newParams("10000", "1.5", types.RebalanceNone, jan2023, end)
		portfolios := []types.NamedParameters{
			{Params: newParams("10000", "0.1", types.RebalanceNone, jan2023, end)},
			{Params: bad},
		}
		cmp, err := e.Compare(context.Background(), comparePrices(), portfolios)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("Compare() error = %v, want ErrValidation", err)
		}
		if cmp != nil {
			t.Fatalf("Compare() returned a partial comparison")
		}
		if !strings.Contains(err.Error(), "Portfolio 2") {
			t.Errorf("error %q does not name the failing portfolio", err)
		}
	})
}

func TestEngineCompareFund_LoadsUnionWindowOnce(t *testing.T) {
	store, id := newMockStore()
	e := NewEngine(store, nil, testLogger())
	portfolios := []types.NamedParameters{
		{Name: "H1", Params: newParams("5000", "0.2", types.RebalanceMonthly, jan2023, day(2023, time.June, 1))},
		{Name: "Year", Params: newParams("5000", "0.2", types.RebalanceMonthly, jan2023, day(2024, time.January, 1))},
	}

	cmp, err := e.CompareFund(context.Background(), id, portfolios)
	if err != nil {
		t.Fatalf("CompareFund() unexpected error: %v", err)
	}
	if store.fundCalls != 1 || store.btcCalls != 1 {
		t.Errorf("store calls = %d/%d, want 1/1", store.fundCalls, store.btcCalls)
	}
	if len(cmp.Results[0].Trajectory) != 6 || len(cmp.Results[1].Trajectory) != 13 {
		t.Errorf("trajectory lengths = %d/%d, want 6/13", len(cmp.Results[0].Trajectory), len(cmp.Results[1].Trajectory))
	}
}
