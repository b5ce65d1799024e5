package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"pprbitcoin/types"
	"time"
)

var trajectoryHeader = []string{
	"date",
	"total_value",
	"fund_value",
	"btc_value",
	"total_invested",
	"cumulative_return_pct",
	"drawdown_pct",
}

// WriteTrajectoryCSVFile writes a trajectory to a CSV file at the given path.
func WriteTrajectoryCSVFile(path string, trajectory types.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trajectory file: %w", err)
	}
	defer f.Close()

	return WriteTrajectoryCSV(f, trajectory)
}

// WriteTrajectoryCSV writes a trajectory to any io.Writer as CSV.
func WriteTrajectoryCSV(w io.Writer, trajectory types.Trajectory) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(trajectoryHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range trajectory {
		record := []string{
			p.Date.Format(time.DateOnly),
			p.TotalValue.StringFixed(2),
			p.FundValue.StringFixed(2),
			p.BtcValue.StringFixed(2),
			p.TotalInvested.StringFixed(2),
			p.CumulativeReturnPct.StringFixed(4),
			p.DrawdownPct.StringFixed(4),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
