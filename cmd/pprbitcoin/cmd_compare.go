package main

import (
	"fmt"
	"io"
	"os"
	"pprbitcoin/internal/chart"
	"pprbitcoin/types"
	"sort"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) compareCmd() *cobra.Command {
	var (
		pf       portfolioFlags
		src      priceFlags
		btcList  string
		chartOut string
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare portfolios that differ only in their Bitcoin share",
		RunE: func(cmd *cobra.Command, _ []string) error {
			percents, err := parsePercents(btcList)
			if err != nil {
				return err
			}
			portfolios := make([]types.NamedParameters, len(percents))
			for i, pct := range percents {
				params, err := pf.params(pct)
				if err != nil {
					return err
				}
				portfolios[i] = types.NamedParameters{Name: pct.String() + "% BTC", Params: params}
			}

			first := portfolios[0].Params
			run, err := a.load(cmd.Context(), src, first.StartDate, first.EndDate)
			if err != nil {
				return err
			}
			defer run.close()

			cmp, err := run.eng.Compare(cmd.Context(), run.prices, portfolios)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), cmp.Summary)

			if chartOut != "" {
				png, err := chart.ComparisonPNG(cmp, run.fundName+" vs Bitcoin")
				if err != nil {
					return err
				}
				if err := os.WriteFile(chartOut, png, 0o644); err != nil {
					return fmt.Errorf("write chart: %w", err)
				}
				log.Info().Str("path", chartOut).Msg("chart written")
			}
			return nil
		},
	}
	pf.register(cmd)
	src.register(cmd)
	cmd.Flags().StringVar(&btcList, "btc", "0,10,25,50", "comma separated Bitcoin shares in percent")
	cmd.Flags().StringVar(&chartOut, "chart", "", "write a PNG chart of the compared trajectories")
	return cmd
}

func printSummary(w io.Writer, s types.ComparisonSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "metric\t")
	for _, name := range s.Portfolios {
		fmt.Fprintf(tw, "%s\t", name)
	}
	fmt.Fprintln(tw, "best\t")

	names := make([]string, 0, len(s.Metrics))
	for name := range s.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mc := s.Metrics[name]
		fmt.Fprintf(tw, "%s\t", name)
		for _, v := range mc.Values {
			fmt.Fprintf(tw, "%s\t", v.StringFixed(2))
		}
		fmt.Fprintf(tw, "%s\t\n", mc.BestPortfolio)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nRecommended: %s (%s)\n", s.Recommended.Name, s.Recommended.Reason)
}
