package httpapi

import (
	"pprbitcoin/types"
	"time"

	"github.com/shopspring/decimal"
)

type fundResponse struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Gestor    string `json:"gestor"`
	Isin      string `json:"isin,omitempty"`
	Categoria string `json:"categoria,omitempty"`
}

type fundListResponse struct {
	Data  []fundResponse `json:"data"`
	Total int            `json:"total"`
}

type fundQuoteResponse struct {
	Data       string          `json:"data"`
	ValorQuota decimal.Decimal `json:"valor_quota"`
}

type fundHistoryResponse struct {
	PPR  fundResponse        `json:"ppr"`
	Data []fundQuoteResponse `json:"data"`
}

type bitcoinPriceResponse struct {
	Data     string          `json:"data"`
	PrecoEur decimal.Decimal `json:"preco_eur"`
}

type bitcoinHistoryResponse struct {
	Data []bitcoinPriceResponse `json:"data"`
}

type portfolioConfig struct {
	PprID                string          `json:"ppr_id"`
	BitcoinPercentage    decimal.Decimal `json:"bitcoin_percentage"`
	InitialInvestment    decimal.Decimal `json:"initial_investment"`
	MonthlyContribution  decimal.Decimal `json:"monthly_contribution"`
	StartDate            string          `json:"start_date"`
	EndDate              string          `json:"end_date"`
	RebalancingFrequency string          `json:"rebalancing_frequency"`
}

type metricsResponse struct {
	TotalInvested           decimal.Decimal `json:"total_invested"`
	TotalReturn             decimal.Decimal `json:"total_return"`
	TotalReturnPercentage   decimal.Decimal `json:"total_return_percentage"`
	AnnualizedReturn        decimal.Decimal `json:"annualized_return"`
	CAGR                    decimal.Decimal `json:"cagr"`
	Volatility              decimal.Decimal `json:"volatility"`
	SharpeRatio             decimal.Decimal `json:"sharpe_ratio"`
	SortinoRatio            decimal.Decimal `json:"sortino_ratio"`
	MaxDrawdown             decimal.Decimal `json:"max_drawdown"`
	MaxDrawdownDurationDays int             `json:"max_drawdown_duration_days"`
	FinalValue              decimal.Decimal `json:"final_value"`
	BestMonth               decimal.Decimal `json:"best_month"`
	WorstMonth              decimal.Decimal `json:"worst_month"`
	PositiveMonths          int             `json:"positive_months"`
	TotalMonths             int             `json:"total_months"`
}

type historicalPoint struct {
	Data           string          `json:"data"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	PprValue       decimal.Decimal `json:"ppr_value"`
	BitcoinValue   decimal.Decimal `json:"bitcoin_value"`
	TotalInvested  decimal.Decimal `json:"total_invested"`
	TotalReturn    decimal.Decimal `json:"total_return"`
	Drawdown       decimal.Decimal `json:"drawdown"`
}

type allocationResponse struct {
	Asset                string          `json:"asset"`
	AllocationPercentage decimal.Decimal `json:"allocation_percentage"`
	Invested             decimal.Decimal `json:"invested"`
	CurrentValue         decimal.Decimal `json:"current_value"`
	ContributionToReturn decimal.Decimal `json:"contribution_to_return"`
}

type calculationResponse struct {
	PortfolioConfig     portfolioConfig      `json:"portfolio_config"`
	Metrics             metricsResponse      `json:"metrics"`
	HistoricalData      []historicalPoint    `json:"historical_data"`
	AllocationBreakdown []allocationResponse `json:"allocation_breakdown"`
	CalculationDate     string               `json:"calculation_date"`
}

type metricComparisonResponse struct {
	Values        []decimal.Decimal `json:"values"`
	BestIndex     int               `json:"best_index"`
	BestPortfolio string            `json:"best_portfolio"`
}

type recommendationResponse struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type summaryResponse struct {
	Portfolios           []string                            `json:"portfolios"`
	MetricsComparison    map[string]metricComparisonResponse `json:"metrics_comparison"`
	RecommendedPortfolio recommendationResponse              `json:"recommended_portfolio"`
}

type comparisonResponse struct {
	Portfolios        []calculationResponse `json:"portfolios"`
	ComparisonSummary summaryResponse       `json:"comparison_summary"`
}

func newFundResponse(f types.Fund) fundResponse {
	return fundResponse{
		ID:        f.Id.String(),
		Nome:      f.Name,
		Gestor:    f.Manager,
		Isin:      f.ISIN,
		Categoria: string(f.Category),
	}
}

func newFundHistoryResponse(f types.Fund, points []types.PricePoint) fundHistoryResponse {
	resp := fundHistoryResponse{
		PPR:  newFundResponse(f),
		Data: make([]fundQuoteResponse, len(points)),
	}
	for i, p := range points {
		resp.Data[i] = fundQuoteResponse{Data: p.Date.Format(time.DateOnly), ValorQuota: p.Price}
	}
	return resp
}

func newBitcoinPrice(p types.PricePoint) bitcoinPriceResponse {
	return bitcoinPriceResponse{Data: p.Date.Format(time.DateOnly), PrecoEur: p.Price}
}

func newBitcoinPrices(points []types.PricePoint) []bitcoinPriceResponse {
	out := make([]bitcoinPriceResponse, len(points))
	for i, p := range points {
		out[i] = newBitcoinPrice(p)
	}
	return out
}

func newCalculationResponse(req CalculationRequest, result *types.Result, now time.Time) calculationResponse {
	p := result.Params
	m := result.Metrics

	resp := calculationResponse{
		PortfolioConfig: portfolioConfig{
			PprID:                req.PprID,
			BitcoinPercentage:    p.BitcoinAllocation.Mul(hundred),
			InitialInvestment:    p.InitialInvestment,
			MonthlyContribution:  p.MonthlyContribution,
			StartDate:            p.StartDate.Format(time.DateOnly),
			EndDate:              p.EndDate.Format(time.DateOnly),
			RebalancingFrequency: string(p.Rebalancing),
		},
		Metrics: metricsResponse{
			TotalInvested:           money(m.TotalInvested),
			TotalReturn:             money(m.TotalReturn),
			TotalReturnPercentage:   pct(m.TotalReturnPct),
			AnnualizedReturn:        pct(m.AnnualizedReturn),
			CAGR:                    pct(m.CAGR),
			Volatility:              pct(m.Volatility),
			SharpeRatio:             pct(m.SharpeRatio),
			SortinoRatio:            pct(m.SortinoRatio),
			MaxDrawdown:             pct(m.MaxDrawdown),
			MaxDrawdownDurationDays: m.MaxDrawdownDurationDays,
			FinalValue:              money(m.FinalValue),
			BestMonth:               pct(m.BestMonth),
			WorstMonth:              pct(m.WorstMonth),
			PositiveMonths:          m.PositiveMonths,
			TotalMonths:             m.TotalMonths,
		},
		HistoricalData:      make([]historicalPoint, len(result.Trajectory)),
		AllocationBreakdown: make([]allocationResponse, len(result.Allocation)),
		CalculationDate:     now.UTC().Format(time.DateOnly),
	}

	for i, pt := range result.Trajectory {
		resp.HistoricalData[i] = historicalPoint{
			Data:           pt.Date.Format(time.DateOnly),
			PortfolioValue: money(pt.TotalValue),
			PprValue:       money(pt.FundValue),
			BitcoinValue:   money(pt.BtcValue),
			TotalInvested:  money(pt.TotalInvested),
			TotalReturn:    pct(pt.CumulativeReturnPct),
			Drawdown:       pct(pt.DrawdownPct),
		}
	}
	for i, a := range result.Allocation {
		resp.AllocationBreakdown[i] = allocationResponse{
			Asset:                string(a.Asset),
			AllocationPercentage: pct(a.AllocationPct),
			Invested:             money(a.Invested),
			CurrentValue:         money(a.FinalValue),
			ContributionToReturn: pct(a.ContributionToReturn),
		}
	}
	return resp
}

func newSummaryResponse(s types.ComparisonSummary) summaryResponse {
	out := summaryResponse{
		Portfolios:        s.Portfolios,
		MetricsComparison: make(map[string]metricComparisonResponse, len(s.Metrics)),
		RecommendedPortfolio: recommendationResponse{
			Index:  s.Recommended.Index,
			Name:   s.Recommended.Name,
			Reason: s.Recommended.Reason,
		},
	}
	for name, mc := range s.Metrics {
		values := make([]decimal.Decimal, len(mc.Values))
		for i, v := range mc.Values {
			values[i] = pct(v)
		}
		// clients know this metric as total_return_percentage
		if name == "total_return_pct" {
			name = "total_return_percentage"
		}
		out.MetricsComparison[name] = metricComparisonResponse{
			Values:        values,
			BestIndex:     mc.BestIndex,
			BestPortfolio: mc.BestPortfolio,
		}
	}
	return out
}

func money(d decimal.Decimal) decimal.Decimal { return d.Round(2) }
func pct(d decimal.Decimal) decimal.Decimal   { return d.Round(4) }
