package types

import "github.com/shopspring/decimal"

type MetricComparison struct {
	Values        []decimal.Decimal `json:"values"`
	BestIndex     int               `json:"bestIndex"`
	BestPortfolio string            `json:"bestPortfolio"`
}

type Recommendation struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ComparisonSummary struct {
	Portfolios  []string                    `json:"portfolios"`
	Metrics     map[string]MetricComparison `json:"metricsComparison"`
	Recommended Recommendation              `json:"recommendedPortfolio"`
}

type Comparison struct {
	Results []Result          `json:"results"`
	Summary ComparisonSummary `json:"summary"`
}
