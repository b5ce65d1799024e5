package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one observed price of a single asset on a calendar date.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// PriceSeries holds the raw fund and Bitcoin observations for one run.
type PriceSeries struct {
	Fund    []PricePoint `json:"fund"`
	Bitcoin []PricePoint `json:"bitcoin"`
}

// AlignedPoint is one date on which both assets have a price. The Carried
// flags mark a price copied forward from an earlier observation.
type AlignedPoint struct {
	Date        time.Time       `json:"date"`
	FundPrice   decimal.Decimal `json:"fundPrice"`
	BtcPrice    decimal.Decimal `json:"btcPrice"`
	FundCarried bool            `json:"fundCarried,omitempty"`
	BtcCarried  bool            `json:"btcCarried,omitempty"`
}

type AlignedSeries []AlignedPoint

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CalendarDate drops the clock part of t, keeping its calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}
