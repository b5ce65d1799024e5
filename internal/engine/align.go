package engine

import (
	"fmt"
	"pprbitcoin/types"
	"time"
)

// Align merges the fund and Bitcoin series onto their common dates inside
// [start, end]. A date observed by only one asset takes the other asset's
// last known in-window price; dates before an asset's first in-window
// observation are dropped. Nothing is interpolated or back-filled.
func Align(series types.PriceSeries, start, end time.Time) (types.AlignedSeries, error) {
	start, end = types.CalendarDate(start), types.CalendarDate(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: window end %s is before start %s", ErrValidation,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	if err := checkSeries("fund", series.Fund); err != nil {
		return nil, err
	}
	if err := checkSeries("bitcoin", series.Bitcoin); err != nil {
		return nil, err
	}

	fund := clipToWindow(series.Fund, start, end)
	if len(fund) == 0 {
		return nil, fmt.Errorf("%w: no fund prices between %s and %s", ErrInsufficientData,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	btc := clipToWindow(series.Bitcoin, start, end)
	if len(btc) == 0 {
		return nil, fmt.Errorf("%w: no bitcoin prices between %s and %s", ErrInsufficientData,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	aligned := make(types.AlignedSeries, 0, max(len(fund), len(btc)))
	var lastFund, lastBtc *types.PricePoint
	i, j := 0, 0
	for i < len(fund) || j < len(btc) {
		var date time.Time
		switch {
		case j >= len(btc):
			date = fund[i].Date
		case i >= len(fund):
			date = btc[j].Date
		case fund[i].Date.Before(btc[j].Date):
			date = fund[i].Date
		default:
			date = btc[j].Date
		}

		fundSeen, btcSeen := false, false
		if i < len(fund) && fund[i].Date.Equal(date) {
			lastFund = &fund[i]
			fundSeen = true
			i++
		}
		if j < len(btc) && btc[j].Date.Equal(date) {
			lastBtc = &btc[j]
			btcSeen = true
			j++
		}
		if lastFund == nil || lastBtc == nil {
			continue
		}
		aligned = append(aligned, types.AlignedPoint{
			Date:        date,
			FundPrice:   lastFund.Price,
			BtcPrice:    lastBtc.Price,
			FundCarried: !fundSeen,
			BtcCarried:  !btcSeen,
		})
	}

	if len(aligned) == 0 {
		return nil, fmt.Errorf("%w: fund and bitcoin prices do not overlap", ErrInsufficientData)
	}
	return aligned, nil
}

// checkSeries rejects negative prices and dates that repeat or go backwards.
func checkSeries(name string, points []types.PricePoint) error {
	for i, p := range points {
		if p.Price.IsNegative() {
			return fmt.Errorf("%w: negative %s price %s on %s", ErrDataIntegrity,
				name, p.Price, p.Date.Format(time.DateOnly))
		}
		if i == 0 {
			continue
		}
		prev := types.CalendarDate(points[i-1].Date)
		cur := types.CalendarDate(p.Date)
		if cur.Equal(prev) {
			return fmt.Errorf("%w: duplicate %s date %s", ErrDataIntegrity, name, cur.Format(time.DateOnly))
		}
		if cur.Before(prev) {
			return fmt.Errorf("%w: %s dates not ascending (%s after %s)", ErrDataIntegrity,
				name, cur.Format(time.DateOnly), prev.Format(time.DateOnly))
		}
	}
	return nil
}

func clipToWindow(points []types.PricePoint, start, end time.Time) []types.PricePoint {
	out := make([]types.PricePoint, 0, len(points))
	for _, p := range points {
		d := types.CalendarDate(p.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, types.PricePoint{Date: d, Price: p.Price})
	}
	return out
}
