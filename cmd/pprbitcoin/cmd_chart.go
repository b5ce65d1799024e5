package main

import (
	"fmt"
	"os"
	"pprbitcoin/internal/chart"
	"pprbitcoin/internal/engine"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (a *app) chartCmd() *cobra.Command {
	var (
		pf  portfolioFlags
		src priceFlags
		btc string
		out string
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render the value of one portfolio over time as a PNG",
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

			result, err := run.eng.RunPrices(run.prices, params)
			if err != nil {
				return err
			}
			png, err := chart.TrajectoryPNG(result, fmt.Sprintf("%s + %s%% Bitcoin", run.fundName, btcPct.String()))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			log.Info().Str("path", out).Int("points", len(result.Trajectory)).Msg("chart written")
			return nil
		},
	}
	pf.register(cmd)
	src.register(cmd)
	cmd.Flags().StringVar(&btc, "btc", "0", "Bitcoin share in percent (0-100)")
	cmd.Flags().StringVarP(&out, "out", "o", "portfolio.png", "output PNG file")
	return cmd
}
