package repository

import (
	"context"
	"errors"
	"fmt"
	"pprbitcoin/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetFund retrieves a types.Fund by its id.
func (db *Database) GetFund(ctx context.Context, id uuid.UUID) (*types.Fund, error) {
	row, err := db.funds.GetFundByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("fund %s %w", id, ErrFundNotFound)
		}
		return nil, err
	}
	fund := convertFund(row)
	return &fund, nil
}

func (db *Database) ListFunds(ctx context.Context) ([]types.Fund, error) {
	rows, err := db.funds.ListFunds(ctx)
	if err != nil {
		return nil, err
	}
	funds := make([]types.Fund, 0, len(rows))
	for _, row := range rows {
		funds = append(funds, convertFund(row))
	}
	return funds, nil
}

// SaveFund inserts a fund, or updates the one sharing its ISIN, and returns
// the stored id.
func (db *Database) SaveFund(ctx context.Context, fund types.Fund) (uuid.UUID, error) {
	if fund.Name == "" || fund.Manager == "" {
		return uuid.Nil, errors.New("fund name and manager are required")
	}
	id := fund.Id
	if id == uuid.Nil {
		id = uuid.New()
	}
	return db.funds.UpsertFund(ctx, UpsertFundParams{
		ID:        id,
		Nome:      fund.Name,
		Gestor:    fund.Manager,
		Isin:      optional(fund.ISIN),
		Categoria: optional(string(fund.Category)),
	})
}

func convertFund(row FundRow) types.Fund {
	fund := types.Fund{
		Id:      row.ID,
		Name:    row.Nome,
		Manager: row.Gestor,
	}
	if row.Isin != nil {
		fund.ISIN = *row.Isin
	}
	if row.Categoria != nil {
		fund.Category = types.FundCategory(*row.Categoria)
	}
	if row.CreatedAt != nil {
		fund.CreatedAt = *row.CreatedAt
	}
	if row.UpdatedAt != nil {
		fund.UpdatedAt = *row.UpdatedAt
	}
	return fund
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
