package engine

import (
	"pprbitcoin/types"
	"time"
)

// isRebalanceDue reports whether at least one full schedule period has
// elapsed between the last rebalance (or the start) and cur.
func isRebalanceDue(freq types.RebalanceFrequency, last, cur time.Time) bool {
	months := types.RebalanceFrequencyToMonths[freq]
	if months == 0 {
		return false
	}
	return !cur.Before(addMonthsClamped(last, months))
}

// addMonthsClamped moves t forward by n calendar months, pinning the day to
// the end of the target month instead of overflowing into the next one
// (Jan 31 + 1 month is Feb 28/29, not Mar 3).
func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

// monthsBetween counts calendar-month boundaries crossed from a to b.
func monthsBetween(a, b time.Time) int {
	ya, ma, _ := a.Date()
	yb, mb, _ := b.Date()
	return (yb-ya)*12 + int(mb) - int(ma)
}

func sameMonth(a, b time.Time) bool {
	ya, ma, _ := a.Date()
	yb, mb, _ := b.Date()
	return ya == yb && ma == mb
}
