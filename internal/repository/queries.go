package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS pprs (
    id          UUID PRIMARY KEY,
    nome        VARCHAR(200) NOT NULL,
    gestor      VARCHAR(100) NOT NULL,
    isin        VARCHAR(12) UNIQUE,
    categoria   VARCHAR(50),
    taxa_gestao NUMERIC(4, 2),
    created_at  TIMESTAMP DEFAULT now(),
    updated_at  TIMESTAMP DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ppr_historical_data (
    id          UUID PRIMARY KEY,
    ppr_id      UUID NOT NULL REFERENCES pprs (id),
    data        DATE NOT NULL,
    valor_quota NUMERIC(10, 4) NOT NULL,
    created_at  TIMESTAMP DEFAULT now(),
    UNIQUE (ppr_id, data)
);

CREATE TABLE IF NOT EXISTS bitcoin_historical_data (
    id         UUID PRIMARY KEY,
    data       DATE NOT NULL UNIQUE,
    preco_eur  NUMERIC(12, 2) NOT NULL,
    volume     NUMERIC(20, 8),
    market_cap NUMERIC(20, 2),
    created_at TIMESTAMP DEFAULT now()
);
`

const getFundByID = `
SELECT id, nome, gestor, isin, categoria, created_at, updated_at
FROM pprs
WHERE id = $1`

const listFunds = `
SELECT id, nome, gestor, isin, categoria, created_at, updated_at
FROM pprs
ORDER BY nome`

const upsertFund = `
INSERT INTO pprs (id, nome, gestor, isin, categoria)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (isin) DO UPDATE
SET nome = EXCLUDED.nome, gestor = EXCLUDED.gestor, categoria = EXCLUDED.categoria, updated_at = now()
RETURNING id`

const getFundQuotes = `
SELECT data, valor_quota
FROM ppr_historical_data
WHERE ppr_id = $1 AND data BETWEEN $2 AND $3
ORDER BY data`

const getBitcoinPrices = `
SELECT data, preco_eur
FROM bitcoin_historical_data
WHERE data BETWEEN $1 AND $2
ORDER BY data`

const getLatestBitcoinPrice = `
SELECT data, preco_eur
FROM bitcoin_historical_data
ORDER BY data DESC
LIMIT 1`

const upsertFundQuote = `
INSERT INTO ppr_historical_data (id, ppr_id, data, valor_quota)
VALUES ($1, $2, $3, $4)
ON CONFLICT (ppr_id, data) DO UPDATE SET valor_quota = EXCLUDED.valor_quota`

const upsertBitcoinPrice = `
INSERT INTO bitcoin_historical_data (id, data, preco_eur)
VALUES ($1, $2, $3)
ON CONFLICT (data) DO UPDATE SET preco_eur = EXCLUDED.preco_eur`

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type FundRow struct {
	ID        uuid.UUID
	Nome      string
	Gestor    string
	Isin      *string
	Categoria *string
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

type PriceRow struct {
	Data  time.Time
	Price decimal.Decimal
}

type GetFundQuotesParams struct {
	FundID    uuid.UUID
	Starttime time.Time
	Endtime   time.Time
}

type UpsertFundParams struct {
	ID        uuid.UUID
	Nome      string
	Gestor    string
	Isin      *string
	Categoria *string
}

func (q *Queries) GetFundByID(ctx context.Context, id uuid.UUID) (FundRow, error) {
	var f FundRow
	err := q.db.QueryRow(ctx, getFundByID, id).
		Scan(&f.ID, &f.Nome, &f.Gestor, &f.Isin, &f.Categoria, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (q *Queries) ListFunds(ctx context.Context) ([]FundRow, error) {
	rows, err := q.db.Query(ctx, listFunds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funds []FundRow
	for rows.Next() {
		var f FundRow
		if err := rows.Scan(&f.ID, &f.Nome, &f.Gestor, &f.Isin, &f.Categoria, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

func (q *Queries) UpsertFund(ctx context.Context, arg UpsertFundParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, upsertFund, arg.ID, arg.Nome, arg.Gestor, arg.Isin, arg.Categoria).Scan(&id)
	return id, err
}

func (q *Queries) GetFundQuotes(ctx context.Context, arg GetFundQuotesParams) ([]PriceRow, error) {
	rows, err := q.db.Query(ctx, getFundQuotes, arg.FundID, arg.Starttime, arg.Endtime)
	if err != nil {
		return nil, err
	}
	return scanPriceRows(rows)
}

func (q *Queries) GetBitcoinPrices(ctx context.Context, start, end time.Time) ([]PriceRow, error) {
	rows, err := q.db.Query(ctx, getBitcoinPrices, start, end)
	if err != nil {
		return nil, err
	}
	return scanPriceRows(rows)
}

func (q *Queries) GetLatestBitcoinPrice(ctx context.Context) (PriceRow, error) {
	var r PriceRow
	err := q.db.QueryRow(ctx, getLatestBitcoinPrice).Scan(&r.Data, &r.Price)
	return r, err
}

// UpsertFundQuotes writes all rows in one batch round trip.
func (q *Queries) UpsertFundQuotes(ctx context.Context, fundID uuid.UUID, rows []PriceRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(upsertFundQuote, uuid.New(), fundID, r.Data, r.Price)
	}
	return q.execBatch(ctx, batch)
}

func (q *Queries) UpsertBitcoinPrices(ctx context.Context, rows []PriceRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(upsertBitcoinPrice, uuid.New(), r.Data, r.Price)
	}
	return q.execBatch(ctx, batch)
}

func (q *Queries) execBatch(ctx context.Context, batch *pgx.Batch) error {
	br := q.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return br.Close()
}

func scanPriceRows(rows pgx.Rows) ([]PriceRow, error) {
	defer rows.Close()

	var out []PriceRow
	for rows.Next() {
		var r PriceRow
		if err := rows.Scan(&r.Data, &r.Price); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
