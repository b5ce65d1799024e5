package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RebalanceFrequency string

const (
	RebalanceNone      RebalanceFrequency = "none"
	RebalanceMonthly   RebalanceFrequency = "monthly"
	RebalanceQuarterly RebalanceFrequency = "quarterly"
	RebalanceYearly    RebalanceFrequency = "yearly"
)

// RebalanceFrequencyToMonths is the calendar period of each schedule.
var RebalanceFrequencyToMonths = map[RebalanceFrequency]int{
	RebalanceNone:      0,
	RebalanceMonthly:   1,
	RebalanceQuarterly: 3,
	RebalanceYearly:    12,
}

func ParseRebalanceFrequency(s string) (RebalanceFrequency, error) {
	f := RebalanceFrequency(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := RebalanceFrequencyToMonths[f]; !ok {
		return "", fmt.Errorf("unknown rebalancing frequency %q", s)
	}
	return f, nil
}

// PortfolioParameters configures a single simulation run.
type PortfolioParameters struct {
	InitialInvestment   decimal.Decimal    `json:"initialInvestment"`
	MonthlyContribution decimal.Decimal    `json:"monthlyContribution"`
	BitcoinAllocation   decimal.Decimal    `json:"bitcoinAllocation"`
	StartDate           time.Time          `json:"startDate"`
	EndDate             time.Time          `json:"endDate"`
	Rebalancing         RebalanceFrequency `json:"rebalancing"`
}

// FundAllocation is the target fraction held in the fund.
func (p PortfolioParameters) FundAllocation() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(p.BitcoinAllocation)
}

// NamedParameters labels one portfolio in a comparison.
type NamedParameters struct {
	Name   string              `json:"name"`
	Params PortfolioParameters `json:"params"`
}
