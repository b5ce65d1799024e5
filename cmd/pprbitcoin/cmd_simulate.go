package main

import (
	"fmt"
	"pprbitcoin/internal/engine"
	"pprbitcoin/internal/telemetry"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (a *app) simulateCmd() *cobra.Command {
	var (
		pf     portfolioFlags
		src    priceFlags
		btc    string
		csvOut string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate one PPR + Bitcoin portfolio and print its metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			btcPct, err := decimal.NewFromString(btc)
			if err != nil {
				return fmt.Errorf("%w: --btc %q", engine.ErrValidation, btc)
			}
			params, err := pf.params(btcPct)
			if err != nil {
				return err
			}
			run, err := a.load(cmd.Context(), src, params.StartDate, params.EndDate)
			if err != nil {
				return err
			}
			defer run.close()

			start := time.Now()
			result, err := run.eng.RunPrices(run.prices, params)
			if err != nil {
				telemetry.ObserveSimulation("simulate", start, 0, err)
				return err
			}
			telemetry.ObserveSimulation("simulate", start, len(result.Trajectory), nil)

			fmt.Fprintf(cmd.OutOrStdout(), "Fund: %s\n", run.fundName)
			engine.PrintReport(cmd.OutOrStdout(), result)
			if csvOut != "" {
				if err := engine.WriteTrajectoryCSVFile(csvOut, result.Trajectory); err != nil {
					return err
				}
				log.Info().Str("path", csvOut).Int("rows", len(result.Trajectory)).Msg("trajectory written")
			}
			return nil
		},
	}
	pf.register(cmd)
	src.register(cmd)
	cmd.Flags().StringVar(&btc, "btc", "0", "Bitcoin share in percent (0-100)")
	cmd.Flags().StringVar(&csvOut, "csv", "", "write the daily trajectory to this CSV file")
	return cmd
}
