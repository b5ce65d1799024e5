package main

import (
	"fmt"
	"pprbitcoin/internal/pricefile"
	"pprbitcoin/internal/repository"
	"pprbitcoin/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load price history from CSV files into the database",
	}
	cmd.AddCommand(a.importFundCmd(), a.importBitcoinCmd())
	return cmd
}

func (a *app) importFundCmd() *cobra.Command {
	var (
		fundID string
		fund   types.Fund
		file   string
	)
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Import fund quotes, registering the fund when --fund is omitted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			points, err := pricefile.ReadFile(file)
			if err != nil {
				return err
			}
			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if fundID != "" {
				if fund.Id, err = uuid.Parse(fundID); err != nil {
					return fmt.Errorf("--fund must be a UUID: %w", err)
				}
			}
			id := fund.Id
			if id == uuid.Nil || fund.Name != "" {
				if id, err = db.SaveFund(ctx, fund); err != nil {
					return err
				}
			}
			if err := db.ImportFundPrices(ctx, id, points); err != nil {
				return err
			}
			log.Info().Str("fund", id.String()).Int("quotes", len(points)).Msg("fund quotes imported")
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&fundID, "fund", "", "id of the fund to update")
	cmd.Flags().StringVar(&fund.Name, "name", "", "fund name")
	cmd.Flags().StringVar(&fund.Manager, "manager", "", "fund manager")
	cmd.Flags().StringVar(&fund.ISIN, "isin", "", "fund ISIN")
	cmd.Flags().StringVar((*string)(&fund.Category), "category", "", "Conservador, Moderado or Dinâmico")
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file with date,price rows")
	_ = cmd.MarkFlagRequired("file")
	cmd.MarkFlagsOneRequired("fund", "name")
	return cmd
}

func (a *app) importBitcoinCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "bitcoin",
		Short: "Import Bitcoin EUR prices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			points, err := pricefile.ReadFile(file)
			if err != nil {
				return err
			}
			db, err := a.openDatabase(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.ImportBitcoinPrices(cmd.Context(), points); err != nil {
				return err
			}
			log.Info().Int("prices", len(points)).Msg("bitcoin prices imported")
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file with date,price rows")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// openDatabase connects without the cache and creates missing tables.
func (a *app) openDatabase(cmd *cobra.Command) (*repository.Database, error) {
	db, err := repository.NewDatabase(cmd.Context(), a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.EnsureSchema(cmd.Context()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
