package main

import (
	"fmt"
	"io"
	"pprbitcoin/types"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (a *app) sweepCmd() *cobra.Command {
	var (
		pf   portfolioFlags
		src  priceFlags
		step int64
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the same portfolio across Bitcoin shares from 0% to 100%",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if step <= 0 || step > 100 {
				return fmt.Errorf("--step must be within 1-100, got %d", step)
			}
			var runs []types.PortfolioParameters
			for pct := int64(0); pct <= 100; pct += step {
				params, err := pf.params(decimal.NewFromInt(pct))
				if err != nil {
					return err
				}
				runs = append(runs, params)
			}

			run, err := a.load(cmd.Context(), src, runs[0].StartDate, runs[0].EndDate)
			if err != nil {
				return err
			}
			defer run.close()

			bar := initProgressBar(len(runs))
			results := make([]*types.Result, 0, len(runs))
			for _, params := range runs {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				result, err := run.eng.RunPrices(run.prices, params)
				if err != nil {
					return err
				}
				results = append(results, result)
				_ = bar.Add(1)
			}
			_ = bar.Finish()
			fmt.Fprintln(cmd.OutOrStdout())

			printSweep(cmd.OutOrStdout(), results)
			return nil
		},
	}
	pf.register(cmd)
	src.register(cmd)
	cmd.Flags().Int64Var(&step, "step", 10, "Bitcoin share increment in percent")
	return cmd
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Sweeping allocations..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func printSweep(w io.Writer, results []*types.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "btc %\tfinal value\treturn %\tcagr %\tvolatility %\tsharpe\tmax dd %\t")
	for _, r := range results {
		m := r.Metrics
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Params.BitcoinAllocation.Mul(hundred).StringFixed(0),
			m.FinalValue.StringFixed(2),
			m.TotalReturnPct.StringFixed(2),
			m.CAGR.StringFixed(2),
			m.Volatility.StringFixed(2),
			m.SharpeRatio.StringFixed(2),
			m.MaxDrawdown.StringFixed(2))
	}
	_ = tw.Flush()
}
