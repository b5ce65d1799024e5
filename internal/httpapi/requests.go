package httpapi

import (
	"fmt"
	"pprbitcoin/internal/engine"
	"pprbitcoin/types"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	hundred                  = decimal.NewFromInt(100)
	defaultInitialInvestment = decimal.NewFromInt(10000)
)

const defaultRebalancing = types.RebalanceQuarterly

var earliestHistory = types.Date(1900, time.January, 1)

// CalculationRequest is the JSON body for POST /portfolio/calculate.
// Omitted amounts and frequency fall back to the defaults; end_date defaults
// to today.
type CalculationRequest struct {
	PprID                string              `json:"ppr_id"`
	BitcoinPercentage    decimal.NullDecimal `json:"bitcoin_percentage"`
	InitialInvestment    decimal.NullDecimal `json:"initial_investment"`
	MonthlyContribution  decimal.NullDecimal `json:"monthly_contribution"`
	StartDate            string              `json:"start_date"`
	EndDate              string              `json:"end_date,omitempty"`
	RebalancingFrequency string              `json:"rebalancing_frequency,omitempty"`
}

// ComparisonRequest is the JSON body for POST /portfolio/compare.
type ComparisonRequest struct {
	Portfolios     []CalculationRequest `json:"portfolios"`
	PortfolioNames []string             `json:"portfolio_names,omitempty"`
}

func (req CalculationRequest) toParameters(now time.Time) (uuid.UUID, types.PortfolioParameters, error) {
	fundID, err := uuid.Parse(strings.TrimSpace(req.PprID))
	if err != nil {
		return uuid.Nil, types.PortfolioParameters{}, invalid("ppr_id must be a UUID, got %q", req.PprID)
	}

	btcPct := valueOr(req.BitcoinPercentage, decimal.Zero)
	if btcPct.IsNegative() || btcPct.GreaterThan(hundred) {
		return uuid.Nil, types.PortfolioParameters{}, invalid("bitcoin_percentage must be within 0-100, got %s", btcPct)
	}

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return uuid.Nil, types.PortfolioParameters{}, err
	}
	end := types.CalendarDate(now.UTC())
	if req.EndDate != "" {
		if end, err = parseDate("end_date", req.EndDate); err != nil {
			return uuid.Nil, types.PortfolioParameters{}, err
		}
	}
	if end.Before(start) {
		return uuid.Nil, types.PortfolioParameters{}, invalid("end_date %s is before start_date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	freq := defaultRebalancing
	if req.RebalancingFrequency != "" {
		if freq, err = types.ParseRebalanceFrequency(req.RebalancingFrequency); err != nil {
			return uuid.Nil, types.PortfolioParameters{}, fmt.Errorf("%w: %v", engine.ErrValidation, err)
		}
	}

	params := types.PortfolioParameters{
		InitialInvestment:   valueOr(req.InitialInvestment, defaultInitialInvestment),
		MonthlyContribution: valueOr(req.MonthlyContribution, decimal.Zero),
		BitcoinAllocation:   btcPct.Div(hundred),
		StartDate:           start,
		EndDate:             end,
		Rebalancing:         freq,
	}
	if err := engine.ValidateParameters(params); err != nil {
		return uuid.Nil, types.PortfolioParameters{}, err
	}
	return fundID, params, nil
}

// toPortfolios validates the request. Every portfolio must use the same fund
// so that the comparison runs on one set of prices.
func (req ComparisonRequest) toPortfolios(now time.Time) (uuid.UUID, []types.NamedParameters, error) {
	if n := len(req.Portfolios); n < 2 || n > maxComparedPortfolios {
		return uuid.Nil, nil, invalid("compare needs between 2 and %d portfolios, got %d", maxComparedPortfolios, n)
	}
	if len(req.PortfolioNames) > 0 && len(req.PortfolioNames) != len(req.Portfolios) {
		return uuid.Nil, nil, invalid("portfolio_names has %d entries for %d portfolios",
			len(req.PortfolioNames), len(req.Portfolios))
	}

	var fundID uuid.UUID
	portfolios := make([]types.NamedParameters, len(req.Portfolios))
	for i, p := range req.Portfolios {
		id, params, err := p.toParameters(now)
		if err != nil {
			return uuid.Nil, nil, fmt.Errorf("portfolio %d: %w", i+1, err)
		}
		if i == 0 {
			fundID = id
		} else if id != fundID {
			return uuid.Nil, nil, invalid("all compared portfolios must use the same ppr_id")
		}
		portfolios[i] = types.NamedParameters{Params: params}
		if len(req.PortfolioNames) > 0 {
			portfolios[i].Name = strings.TrimSpace(req.PortfolioNames[i])
		}
	}
	return fundID, portfolios, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, invalid("%s must be YYYY-MM-DD, got %q", field, s)
	}
	return t, nil
}

func valueOr(v decimal.NullDecimal, fallback decimal.Decimal) decimal.Decimal {
	if v.Valid {
		return v.Decimal
	}
	return fallback
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", engine.ErrValidation, fmt.Sprintf(format, args...))
}
