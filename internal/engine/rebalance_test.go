package engine

import (
	"pprbitcoin/types"
	"testing"
	"time"
)

func TestIsRebalanceDue(t *testing.T) {
	start := day(2024, time.January, 1)
	tests := []struct {
		name string
		freq types.RebalanceFrequency
		last time.Time
		cur  time.Time
		want bool
	}{
		{"none never rebalances", types.RebalanceNone, start, day(2030, time.January, 1), false},
		{"monthly before a month elapsed", types.RebalanceMonthly, start, day(2024, time.January, 31), false},
		{"monthly exactly one month later", types.RebalanceMonthly, start, day(2024, time.February, 1), true},
		{"monthly well past one month", types.RebalanceMonthly, start, day(2024, time.March, 15), true},
		{"monthly from month end clamps to february", types.RebalanceMonthly, day(2024, time.January, 31), day(2024, time.February, 29), true},
		{"monthly from month end not yet due", types.RebalanceMonthly, day(2024, time.January, 31), day(2024, time.February, 28), false},
		{"quarterly after two months", types.RebalanceQuarterly, start, day(2024, time.March, 31), false},
		{"quarterly after three months", types.RebalanceQuarterly, start, day(2024, time.April, 1), true},
		{"yearly after eleven months", types.RebalanceYearly, start, day(2024, time.December, 31), false},
		{"yearly after twelve months", types.RebalanceYearly, start, day(2025, time.January, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRebalanceDue(tt.freq, tt.last, tt.cur); got != tt.want {
				t.Errorf("isRebalanceDue(%s, %s, %s) = %v, want %v", tt.freq,
					tt.last.Format(time.DateOnly), tt.cur.Format(time.DateOnly), got, tt.want)
			}
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{day(2024, time.January, 1), day(2024, time.January, 31), 0},
		{day(2024, time.January, 31), day(2024, time.February, 1), 1},
		{day(2023, time.November, 15), day(2024, time.February, 2), 3},
		{day(2020, time.January, 1), day(2021, time.January, 1), 12},
	}
	for _, tt := range tests {
		if got := monthsBetween(tt.a, tt.b); got != tt.want {
			t.Errorf("monthsBetween(%s, %s) = %d, want %d", tt.a.Format(time.DateOnly), tt.b.Format(time.DateOnly), got, tt.want)
		}
	}
}

func TestParseRebalanceFrequency(t *testing.T) {
	got, err := types.ParseRebalanceFrequency(" Quarterly ")
	if err != nil || got != types.RebalanceQuarterly {
		t.Fatalf("ParseRebalanceFrequency() = %q, %v", got, err)
	}
	if _, err := types.ParseRebalanceFrequency("weekly"); err == nil {
		t.Fatalf("ParseRebalanceFrequency(weekly) expected error")
	}
}
