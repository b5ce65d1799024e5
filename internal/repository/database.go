package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Global error declarations.
var (
	ErrFundNotFound = errors.New("fund not found in datasource")
	ErrNoPrices     = errors.New("no prices found in datasource")
)

type fundsRepository interface {
	GetFundByID(ctx context.Context, id uuid.UUID) (FundRow, error)
	ListFunds(ctx context.Context) ([]FundRow, error)
	UpsertFund(ctx context.Context, arg UpsertFundParams) (uuid.UUID, error)
}

type pricesRepository interface {
	GetFundQuotes(ctx context.Context, arg GetFundQuotesParams) ([]PriceRow, error)
	GetBitcoinPrices(ctx context.Context, start, end time.Time) ([]PriceRow, error)
	GetLatestBitcoinPrice(ctx context.Context) (PriceRow, error)
	UpsertFundQuotes(ctx context.Context, fundID uuid.UUID, rows []PriceRow) error
	UpsertBitcoinPrices(ctx context.Context, rows []PriceRow) error
}

// Database struct that holds the database connection and queries.
type Database struct {
	funds  fundsRepository
	prices pricesRepository
	conn   *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	queries := New(conn)
	return &Database{
		funds:  queries,
		prices: queries,
		conn:   conn}, nil
}

// EnsureSchema creates the tables when they do not exist yet.
func (db *Database) EnsureSchema(ctx context.Context) error {
	if _, err := db.conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
