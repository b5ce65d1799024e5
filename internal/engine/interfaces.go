package engine

import (
	"context"
	"pprbitcoin/types"
	"time"

	"github.com/google/uuid"
)

type dataStore interface {
	GetFund(ctx context.Context, id uuid.UUID) (*types.Fund, error)
	ListFunds(ctx context.Context) ([]types.Fund, error)
	GetFundPrices(ctx context.Context, fundID uuid.UUID, start, end time.Time) ([]types.PricePoint, error)
	GetBitcoinPrices(ctx context.Context, start, end time.Time) ([]types.PricePoint, error)
	LatestBitcoinPrice(ctx context.Context) (types.PricePoint, error)
}
