package main

import (
	"context"
	"fmt"
	"path/filepath"
	"pprbitcoin/internal/engine"
	"pprbitcoin/internal/pricefile"
	"pprbitcoin/types"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var hundred = decimal.NewFromInt(100)

type portfolioFlags struct {
	initial   string
	monthly   string
	start     string
	end       string
	rebalance string
}

func (f *portfolioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.initial, "initial", "10000", "initial investment in EUR")
	cmd.Flags().StringVar(&f.monthly, "monthly", "0", "monthly contribution in EUR")
	cmd.Flags().StringVar(&f.start, "start", "", "first day of the window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "last day of the window (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&f.rebalance, "rebalance", string(types.RebalanceQuarterly), "none, monthly, quarterly or yearly")
	_ = cmd.MarkFlagRequired("start")
}

// params builds validated parameters for a Bitcoin share given in percent.
func (f *portfolioFlags) params(btcPct decimal.Decimal) (types.PortfolioParameters, error) {
	initial, err := decimal.NewFromString(f.initial)
	if err != nil {
		return types.PortfolioParameters{}, fmt.Errorf("%w: --initial %q", engine.ErrValidation, f.initial)
	}
	monthly, err := decimal.NewFromString(f.monthly)
	if err != nil {
		return types.PortfolioParameters{}, fmt.Errorf("%w: --monthly %q", engine.ErrValidation, f.monthly)
	}
	start, err := time.Parse(time.DateOnly, f.start)
	if err != nil {
		return types.PortfolioParameters{}, fmt.Errorf("%w: --start %q", engine.ErrValidation, f.start)
	}
	end := types.CalendarDate(time.Now().UTC())
	if f.end != "" {
		if end, err = time.Parse(time.DateOnly, f.end); err != nil {
			return types.PortfolioParameters{}, fmt.Errorf("%w: --end %q", engine.ErrValidation, f.end)
		}
	}
	freq, err := types.ParseRebalanceFrequency(f.rebalance)
	if err != nil {
		return types.PortfolioParameters{}, fmt.Errorf("%w: %v", engine.ErrValidation, err)
	}

	p := types.PortfolioParameters{
		InitialInvestment:   initial,
		MonthlyContribution: monthly,
		BitcoinAllocation:   btcPct.Div(hundred),
		StartDate:           start,
		EndDate:             end,
		Rebalancing:         freq,
	}
	return p, engine.ValidateParameters(p)
}

// priceFlags selects where prices come from: a fund in the database, or a
// pair of CSV files.
type priceFlags struct {
	fundID  string
	fundCSV string
	btcCSV  string
}

func (f *priceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fundID, "fund", "", "fund id in the database")
	cmd.Flags().StringVar(&f.fundCSV, "fund-csv", "", "CSV file with date,price fund quotes")
	cmd.Flags().StringVar(&f.btcCSV, "btc-csv", "", "CSV file with date,price Bitcoin prices")
	cmd.MarkFlagsMutuallyExclusive("fund", "fund-csv")
	cmd.MarkFlagsRequiredTogether("fund-csv", "btc-csv")
	cmd.MarkFlagsOneRequired("fund", "fund-csv")
}

type pricedRun struct {
	eng      *engine.Engine
	prices   types.PriceSeries
	fundName string
	close    func()
}

// load returns the engine and the prices covering [start, end].
func (a *app) load(ctx context.Context, f priceFlags, start, end time.Time) (*pricedRun, error) {
	if f.fundCSV != "" {
		fund, err := pricefile.ReadFile(f.fundCSV)
		if err != nil {
			return nil, err
		}
		btc, err := pricefile.ReadFile(f.btcCSV)
		if err != nil {
			return nil, err
		}
		log.Debug().Int("fund_points", len(fund)).Int("bitcoin_points", len(btc)).Msg("price files read")
		return &pricedRun{
			eng:      a.newEngine(nil),
			prices:   types.PriceSeries{Fund: fund, Bitcoin: btc},
			fundName: strings.TrimSuffix(filepath.Base(f.fundCSV), filepath.Ext(f.fundCSV)),
			close:    func() {},
		}, nil
	}

	fundID, err := uuid.Parse(f.fundID)
	if err != nil {
		return nil, fmt.Errorf("%w: --fund must be a UUID", engine.ErrValidation)
	}
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	eng := a.newEngine(store)
	fund, err := eng.GetFund(ctx, fundID)
	if err != nil {
		closeStore()
		return nil, err
	}
	prices, err := eng.LoadPrices(ctx, fundID, start, end)
	if err != nil {
		closeStore()
		return nil, err
	}
	return &pricedRun{eng: eng, prices: prices, fundName: fund.Name, close: closeStore}, nil
}

// parsePercents reads a comma separated list such as "0,10,25".
func parsePercents(s string) ([]decimal.Decimal, error) {
	var out []decimal.Decimal
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		d, err := decimal.NewFromString(field)
		if err != nil {
			return nil, fmt.Errorf("%w: bitcoin percentage %q", engine.ErrValidation, field)
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no bitcoin percentages given", engine.ErrValidation)
	}
	return out, nil
}
