package engine

// MetricDescriptions explains every metric reported for a portfolio.
func MetricDescriptions() map[string]string {
	return map[string]string{
		"total_return":               "Absolute gain/loss in EUR over everything invested (initial investment plus contributions)",
		"total_return_percentage":    "Total return as a percentage of everything invested",
		"annualized_return":          "Average yearly return percentage (same as CAGR)",
		"cagr":                       "Compound Annual Growth Rate of the initial investment, contributions excluded",
		"volatility":                 "Annualized sample standard deviation of monthly returns, in percent",
		"sharpe_ratio":               "Risk-adjusted return = (Return - Risk-free rate) / Volatility. Higher is better.",
		"sortino_ratio":              "Downside risk-adjusted return, only penalizes losing months. Higher is better.",
		"max_drawdown":               "Largest peak-to-trough decline in percent. Negative number, closer to 0 is better.",
		"max_drawdown_duration_days": "Longest period (in calendar days) the portfolio stayed below a previous peak",
		"final_value":                "Portfolio value at the end of the period in EUR",
		"best_month":                 "Best month-end to month-end return percentage",
		"worst_month":                "Worst month-end to month-end return percentage",
		"positive_months":            "Number of months with positive returns",
		"total_months":               "Number of calendar months spanned by the analysis period",
		"rebalancing":                "none = buy and hold, monthly/quarterly/yearly = reset to the target split every 1/3/12 calendar months",
		"monthly_contribution":       "Amount invested on the first price date of every new calendar month, at the target split",
	}
}
