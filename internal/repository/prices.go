package repository

import (
	"context"
	"errors"
	"fmt"
	"pprbitcoin/types"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetFundPrices returns the fund's quotes inside [start, end], oldest first.
func (db *Database) GetFundPrices(ctx context.Context, fundID uuid.UUID, start, end time.Time) ([]types.PricePoint, error) {
	rows, err := db.prices.GetFundQuotes(ctx, GetFundQuotesParams{
		FundID:    fundID,
		Starttime: types.CalendarDate(start),
		Endtime:   types.CalendarDate(end),
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fund %s: %w", fundID, ErrNoPrices)
	}
	return convertPrices(rows), nil
}

// GetBitcoinPrices returns the EUR Bitcoin prices inside [start, end], oldest first.
func (db *Database) GetBitcoinPrices(ctx context.Context, start, end time.Time) ([]types.PricePoint, error) {
	rows, err := db.prices.GetBitcoinPrices(ctx, types.CalendarDate(start), types.CalendarDate(end))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("bitcoin: %w", ErrNoPrices)
	}
	return convertPrices(rows), nil
}

// LatestBitcoinPrice returns the most recent stored Bitcoin price.
func (db *Database) LatestBitcoinPrice(ctx context.Context) (types.PricePoint, error) {
	row, err := db.prices.GetLatestBitcoinPrice(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.PricePoint{}, fmt.Errorf("bitcoin: %w", ErrNoPrices)
		}
		return types.PricePoint{}, err
	}
	return types.PricePoint{Date: types.CalendarDate(row.Data), Price: row.Price}, nil
}

// ImportFundPrices upserts quotes for an existing fund.
func (db *Database) ImportFundPrices(ctx context.Context, fundID uuid.UUID, points []types.PricePoint) error {
	if _, err := db.GetFund(ctx, fundID); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if err := db.prices.UpsertFundQuotes(ctx, fundID, toPriceRows(points)); err != nil {
		return fmt.Errorf("import fund %s prices: %w", fundID, err)
	}
	return nil
}

func (db *Database) ImportBitcoinPrices(ctx context.Context, points []types.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	if err := db.prices.UpsertBitcoinPrices(ctx, toPriceRows(points)); err != nil {
		return fmt.Errorf("import bitcoin prices: %w", err)
	}
	return nil
}

func convertPrices(rows []PriceRow) []types.PricePoint {
	points := make([]types.PricePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, types.PricePoint{
			Date:  types.CalendarDate(row.Data),
			Price: row.Price,
		})
	}
	return points
}

func toPriceRows(points []types.PricePoint) []PriceRow {
	rows := make([]PriceRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, PriceRow{Data: types.CalendarDate(p.Date), Price: p.Price})
	}
	return rows
}
