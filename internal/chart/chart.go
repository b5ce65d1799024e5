// Package chart renders simulation trajectories as PNG line charts.
package chart

import (
	"errors"
	"fmt"
	"pprbitcoin/types"
	"time"

	"github.com/vicanso/go-charts/v2"
)

// maxPoints caps how many dates are drawn; longer trajectories are sampled.
const maxPoints = 500

var ErrEmptyTrajectory = errors.New("nothing to chart")

// TrajectoryPNG draws portfolio value, the fund and bitcoin legs and the
// amount invested over time.
func TrajectoryPNG(result *types.Result, title string) ([]byte, error) {
	if result == nil || len(result.Trajectory) == 0 {
		return nil, ErrEmptyTrajectory
	}
	traj := sample(result.Trajectory)

	names := []string{"Total", "Fund", "Bitcoin", "Invested"}
	values := make([][]float64, len(names))
	for _, p := range traj {
		values[0] = append(values[0], p.TotalValue.InexactFloat64())
		values[1] = append(values[1], p.FundValue.InexactFloat64())
		values[2] = append(values[2], p.BtcValue.InexactFloat64())
		values[3] = append(values[3], p.TotalInvested.InexactFloat64())
	}

	m := result.Metrics
	subtitle := fmt.Sprintf("Return: %s%% | CAGR: %s%% | Sharpe: %s | Vol: %s%% | MaxDD: %s%%",
		m.TotalReturnPct.StringFixed(2), m.CAGR.StringFixed(2), m.SharpeRatio.StringFixed(2),
		m.Volatility.StringFixed(2), m.MaxDrawdown.StringFixed(2))
	return render(title, subtitle, dateLabels(traj), names, values)
}

// ComparisonPNG draws the total value of every compared portfolio. All
// trajectories must cover the same dates.
func ComparisonPNG(cmp *types.Comparison, title string) ([]byte, error) {
	if cmp == nil || len(cmp.Results) == 0 || len(cmp.Results[0].Trajectory) == 0 {
		return nil, ErrEmptyTrajectory
	}
	base := cmp.Results[0].Trajectory
	for i, r := range cmp.Results[1:] {
		if len(r.Trajectory) != len(base) || !r.Trajectory[0].Date.Equal(base[0].Date) {
			return nil, fmt.Errorf("portfolio %d covers different dates than portfolio 1", i+2)
		}
	}

	values := make([][]float64, len(cmp.Results))
	for i, r := range cmp.Results {
		for _, p := range sample(r.Trajectory) {
			values[i] = append(values[i], p.TotalValue.InexactFloat64())
		}
	}
	names := cmp.Summary.Portfolios
	if len(names) != len(values) {
		names = make([]string, len(values))
		for i := range names {
			names[i] = fmt.Sprintf("Portfolio %d", i+1)
		}
	}
	subtitle := ""
	if cmp.Summary.Recommended.Name != "" {
		subtitle = "Recommended: " + cmp.Summary.Recommended.Name
	}
	return render(title, subtitle, dateLabels(sample(base)), names, values)
}

func render(title, subtitle string, labels, names []string, values [][]float64) ([]byte, error) {
	yMin, yMax := bounds(values)

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}

	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: splitNumber(len(labels))}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names, Top: charts.PositionBottom}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(600),
	)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	buf, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf, nil
}

// sample keeps at most maxPoints evenly spaced points, always including the
// first and last.
func sample(traj types.Trajectory) types.Trajectory {
	if len(traj) <= maxPoints {
		return traj
	}
	out := make(types.Trajectory, 0, maxPoints)
	step := float64(len(traj)-1) / float64(maxPoints-1)
	for i := 0; i < maxPoints; i++ {
		out = append(out, traj[int(float64(i)*step+0.5)])
	}
	return out
}

func dateLabels(traj types.Trajectory) []string {
	layout := "Jan 02"
	if len(traj) > 1 && traj.Last().Date.Sub(traj[0].Date) > 365*24*time.Hour {
		layout = "Jan '06"
	}
	labels := make([]string, len(traj))
	for i, p := range traj {
		labels[i] = p.Date.Format(layout)
	}
	return labels
}

// bounds pads the value range by 5% on each side.
func bounds(values [][]float64) (float64, float64) {
	first := true
	var lo, hi float64
	for _, series := range values {
		for _, v := range series {
			if first {
				lo, hi, first = v, v, false
				continue
			}
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	padding := (hi - lo) * 0.05
	if padding == 0 {
		padding = hi * 0.05
	}
	if padding == 0 {
		padding = 1
	}
	return lo - padding, hi + padding
}

func splitNumber(n int) int {
	if n > 30 {
		return 6
	}
	return max(n/3, 3)
}
