package engine

import (
	"context"
	"errors"
	"fmt"
	"pprbitcoin/internal/repository"
	"pprbitcoin/types"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Engine struct {
	db              dataStore
	reportingConfig *ReportingConfig
	logger          zerolog.Logger
}

func NewEngine(db dataStore, reportingConfig *ReportingConfig, logger zerolog.Logger) *Engine {
	if reportingConfig == nil {
		reportingConfig = defaultReportingConfig()
	}
	return &Engine{
		db:              db,
		reportingConfig: reportingConfig,
		logger:          logger,
	}
}

// Run aligns the two price series, simulates the portfolio and derives its
// metrics using a 0% risk-free rate.
func Run(prices types.PriceSeries, params types.PortfolioParameters) (*types.Result, error) {
	return runPrices(prices, params, defaultReportingConfig())
}

// ComputeMetrics is the package-level ComputeMetrics using the engine's
// risk-free rate.
func (e *Engine) ComputeMetrics(trajectory types.Trajectory, params types.PortfolioParameters) (types.PortfolioMetrics, error) {
	return computeMetrics(trajectory, params, e.reportingConfig)
}

// RunPrices runs one simulation over prices that are already in memory.
func (e *Engine) RunPrices(prices types.PriceSeries, params types.PortfolioParameters) (*types.Result, error) {
	start := time.Now()
	result, err := runPrices(prices, params, e.reportingConfig)
	if err != nil {
		return nil, err
	}
	e.logger.Info().
		Str("bitcoin_allocation", params.BitcoinAllocation.String()).
		Str("rebalancing", string(params.Rebalancing)).
		Int("points", len(result.Trajectory)).
		Str("final_value", result.Metrics.FinalValue.StringFixed(2)).
		Dur("took", time.Since(start)).
		Msg("simulation finished")
	return result, nil
}

// Run loads the fund and Bitcoin prices for the parameter window and runs
// the simulation on them.
func (e *Engine) Run(ctx context.Context, fundID uuid.UUID, params types.PortfolioParameters) (*types.Result, error) {
	if err := ValidateParameters(params); err != nil {
		return nil, err
	}
	prices, err := e.LoadPrices(ctx, fundID, params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}
	return e.RunPrices(prices, params)
}

// LoadPrices fetches the fund quotes and Bitcoin prices inside [start, end].
func (e *Engine) LoadPrices(ctx context.Context, fundID uuid.UUID, start, end time.Time) (types.PriceSeries, error) {
	fund, err := e.db.GetFund(ctx, fundID)
	if err != nil {
		return types.PriceSeries{}, err
	}
	fundPrices, err := e.db.GetFundPrices(ctx, fund.Id, start, end)
	if err != nil {
		return types.PriceSeries{}, fmt.Errorf("load %s prices: %w", fund.Name, classifyLoadErr(err))
	}
	btcPrices, err := e.db.GetBitcoinPrices(ctx, start, end)
	if err != nil {
		return types.PriceSeries{}, fmt.Errorf("load bitcoin prices: %w", classifyLoadErr(err))
	}
	e.logger.Debug().
		Str("fund", fund.Name).
		Int("fund_points", len(fundPrices)).
		Int("bitcoin_points", len(btcPrices)).
		Msg("prices loaded")
	return types.PriceSeries{Fund: fundPrices, Bitcoin: btcPrices}, nil
}

// FundHistory returns the fund and its quotes inside [start, end]. A window
// without quotes is an empty history, not an error.
func (e *Engine) FundHistory(ctx context.Context, fundID uuid.UUID, start, end time.Time) (*types.Fund, []types.PricePoint, error) {
	fund, err := e.db.GetFund(ctx, fundID)
	if err != nil {
		return nil, nil, err
	}
	points, err := e.db.GetFundPrices(ctx, fund.Id, start, end)
	if err != nil && !errors.Is(err, repository.ErrNoPrices) {
		return nil, nil, err
	}
	return fund, points, nil
}

// BitcoinHistory returns the Bitcoin prices inside [start, end], empty when
// none are stored.
func (e *Engine) BitcoinHistory(ctx context.Context, start, end time.Time) ([]types.PricePoint, error) {
	points, err := e.db.GetBitcoinPrices(ctx, start, end)
	if err != nil && !errors.Is(err, repository.ErrNoPrices) {
		return nil, err
	}
	return points, nil
}

func (e *Engine) LatestBitcoinPrice(ctx context.Context) (types.PricePoint, error) {
	return e.db.LatestBitcoinPrice(ctx)
}

// classifyLoadErr marks an empty window as insufficient data, keeping the
// store error in the chain.
func classifyLoadErr(err error) error {
	if errors.Is(err, repository.ErrNoPrices) {
		return fmt.Errorf("%w: %w", ErrInsufficientData, err)
	}
	return err
}

func (e *Engine) ListFunds(ctx context.Context) ([]types.Fund, error) {
	return e.db.ListFunds(ctx)
}

func (e *Engine) GetFund(ctx context.Context, id uuid.UUID) (*types.Fund, error) {
	return e.db.GetFund(ctx, id)
}

func runPrices(prices types.PriceSeries, params types.PortfolioParameters, cfg *ReportingConfig) (*types.Result, error) {
	if err := ValidateParameters(params); err != nil {
		return nil, err
	}
	aligned, err := Align(prices, params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}
	trajectory, err := Simulate(aligned, params)
	if err != nil {
		return nil, err
	}
	metrics, err := computeMetrics(trajectory, params, cfg)
	if err != nil {
		return nil, err
	}
	return &types.Result{
		Params:     params,
		Trajectory: trajectory,
		Metrics:    metrics,
		Allocation: calcAllocationBreakdown(trajectory, params),
	}, nil
}

// calcAllocationBreakdown splits the final result per asset. Every deposit
// follows the target split, so each asset received its target share of the
// total invested.
func calcAllocationBreakdown(trajectory types.Trajectory, params types.PortfolioParameters) []types.AllocationBreakdown {
	final := trajectory.Last()
	assets := []struct {
		kind     types.AssetKind
		fraction decimal.Decimal
		value    decimal.Decimal
	}{
		{types.AssetFund, params.FundAllocation(), final.FundValue},
		{types.AssetBitcoin, params.BitcoinAllocation, final.BtcValue},
	}

	out := make([]types.AllocationBreakdown, 0, len(assets))
	for _, a := range assets {
		invested := final.TotalInvested.Mul(a.fraction)
		out = append(out, types.AllocationBreakdown{
			Asset:                a.kind,
			AllocationPct:        a.fraction.Mul(hundred),
			Invested:             invested,
			FinalValue:           a.value,
			ContributionToReturn: a.value.Sub(invested).Div(final.TotalInvested).Mul(hundred),
		})
	}
	return out
}
