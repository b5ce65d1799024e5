package repository

import (
	"context"
	"errors"
	"pprbitcoin/types"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var startTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
var endTime = startTime.AddDate(0, 0, 4)

type mockPricesRepository struct {
	sqlError error
	rows     []PriceRow

	lastQuery     GetFundQuotesParams
	fundUpserts   map[uuid.UUID][]PriceRow
	bitcoinUpsert []PriceRow
}

func (m *mockPricesRepository) GetFundQuotes(_ context.Context, arg GetFundQuotesParams) ([]PriceRow, error) {
	m.lastQuery = arg
	if m.sqlError != nil {
		return nil, m.sqlError
	}
	return m.rows, nil
}

func (m *mockPricesRepository) GetBitcoinPrices(_ context.Context, _, _ time.Time) ([]PriceRow, error) {
	if m.sqlError != nil {
		return nil, m.sqlError
	}
	return m.rows, nil
}

func (m *mockPricesRepository) GetLatestBitcoinPrice(context.Context) (PriceRow, error) {
	if m.sqlError != nil {
		return PriceRow{}, m.sqlError
	}
	if len(m.rows) == 0 {
		return PriceRow{}, pgx.ErrNoRows
	}
	return m.rows[len(m.rows)-1], nil
}

func (m *mockPricesRepository) UpsertFundQuotes(_ context.Context, fundID uuid.UUID, rows []PriceRow) error {
	if m.sqlError != nil {
		return m.sqlError
	}
	if m.fundUpserts == nil {
		m.fundUpserts = map[uuid.UUID][]PriceRow{}
	}
	m.fundUpserts[fundID] = append(m.fundUpserts[fundID], rows...)
	return nil
}

func (m *mockPricesRepository) UpsertBitcoinPrices(_ context.Context, rows []PriceRow) error {
	if m.sqlError != nil {
		return m.sqlError
	}
	m.bitcoinUpsert = append(m.bitcoinUpsert, rows...)
	return nil
}

func mockPriceRows(start, end time.Time) []PriceRow {
	var rows []PriceRow
	price := decimal.RequireFromString("10.1234")
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rows = append(rows, PriceRow{Data: d, Price: price})
		price = price.Add(decimal.RequireFromString("0.01"))
	}
	return rows
}

func TestDatabase_GetFundPrices(t *testing.T) {
	tests := []struct {
		name    string
		rows    []PriceRow
		sqlErr  error
		want    int
		wantErr error
	}{
		{"should throw ErrNoPrices", nil, nil, 0, ErrNoPrices},
		{"should pass through driver errors", nil, errors.New("timeout"), 0, nil},
		{"should return prices", mockPriceRows(startTime, endTime), nil, 5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockPricesRepository{sqlError: tt.sqlErr, rows: tt.rows}
			db := &Database{prices: mock}

			got, err := db.GetFundPrices(context.Background(), testFundID, startTime.Add(15*time.Hour), endTime)
			if tt.sqlErr != nil {
				if !errors.Is(err, tt.sqlErr) {
					t.Errorf("GetFundPrices() error = %v, want %v", err, tt.sqlErr)
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetFundPrices() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetFundPrices() unexpected error: %v", err)
			}
			if !mock.lastQuery.Starttime.Equal(startTime) {
				t.Errorf("GetFundPrices() queried from %v, want calendar date %v", mock.lastQuery.Starttime, startTime)
			}
			if len(got) != tt.want {
				t.Fatalf("GetFundPrices() len = %d, want %d", len(got), tt.want)
			}
			if !got[1].Price.Equal(decimal.RequireFromString("10.1334")) {
				t.Errorf("GetFundPrices() price got = %v", got[1].Price)
			}
		})
	}
}

func TestDatabase_GetBitcoinPrices(t *testing.T) {
	db := &Database{prices: &mockPricesRepository{}}
	if _, err := db.GetBitcoinPrices(context.Background(), startTime, endTime); !errors.Is(err, ErrNoPrices) {
		t.Fatalf("GetBitcoinPrices() error = %v, want ErrNoPrices", err)
	}

	db = &Database{prices: &mockPricesRepository{rows: mockPriceRows(startTime, endTime)}}
	got, err := db.GetBitcoinPrices(context.Background(), startTime, endTime)
	if err != nil {
		t.Fatalf("GetBitcoinPrices() unexpected error: %v", err)
	}
	if len(got) != 5 || !got[0].Date.Equal(startTime) {
		t.Errorf("GetBitcoinPrices() got = %v", got)
	}
}

func TestDatabase_LatestBitcoinPrice(t *testing.T) {
	db := &Database{prices: &mockPricesRepository{}}
	if _, err := db.LatestBitcoinPrice(context.Background()); !errors.Is(err, ErrNoPrices) {
		t.Fatalf("LatestBitcoinPrice() error = %v, want ErrNoPrices", err)
	}

	driverErr := errors.New("timeout")
	db = &Database{prices: &mockPricesRepository{sqlError: driverErr}}
	if _, err := db.LatestBitcoinPrice(context.Background()); !errors.Is(err, driverErr) || errors.Is(err, ErrNoPrices) {
		t.Fatalf("LatestBitcoinPrice() error = %v, want the driver error", err)
	}

	db = &Database{prices: &mockPricesRepository{rows: mockPriceRows(startTime, endTime)}}
	got, err := db.LatestBitcoinPrice(context.Background())
	if err != nil {
		t.Fatalf("LatestBitcoinPrice() unexpected error: %v", err)
	}
	if !got.Date.Equal(endTime) || !got.Price.Equal(decimal.RequireFromString("10.1634")) {
		t.Errorf("LatestBitcoinPrice() got = %+v", got)
	}
}

func TestDatabase_ImportFundPrices(t *testing.T) {
	points := []types.PricePoint{
		{Date: time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("5.5")},
		{Date: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("5.6")},
	}

	t.Run("should throw ErrFundNotFound", func(t *testing.T) {
		prices := &mockPricesRepository{}
		db := &Database{funds: &mockFundsRepository{}, prices: prices}
		if err := db.ImportFundPrices(context.Background(), testFundID, points); !errors.Is(err, ErrFundNotFound) {
			t.Fatalf("ImportFundPrices() error = %v, want ErrFundNotFound", err)
		}
		if len(prices.fundUpserts) != 0 {
			t.Errorf("ImportFundPrices() wrote prices for an unknown fund")
		}
	})

	t.Run("should upsert calendar dates", func(t *testing.T) {
		prices := &mockPricesRepository{}
		db := &Database{funds: &mockFundsRepository{funds: []FundRow{mockFundRow()}}, prices: prices}
		if err := db.ImportFundPrices(context.Background(), testFundID, points); err != nil {
			t.Fatalf("ImportFundPrices() unexpected error: %v", err)
		}
		rows := prices.fundUpserts[testFundID]
		if len(rows) != 2 {
			t.Fatalf("ImportFundPrices() rows = %d, want 2", len(rows))
		}
		if rows[0].Data.Hour() != 0 {
			t.Errorf("ImportFundPrices() kept time of day: %v", rows[0].Data)
		}
	})
}

func TestDatabase_ImportBitcoinPrices(t *testing.T) {
	writeErr := errors.New("deadlock detected")
	db := &Database{prices: &mockPricesRepository{sqlError: writeErr}}
	err := db.ImportBitcoinPrices(context.Background(), []types.PricePoint{{Date: startTime, Price: decimal.NewFromInt(40000)}})
	if !errors.Is(err, writeErr) {
		t.Fatalf("ImportBitcoinPrices() error = %v, want %v", err, writeErr)
	}

	if err := db.ImportBitcoinPrices(context.Background(), nil); err != nil {
		t.Fatalf("ImportBitcoinPrices(nil) unexpected error: %v", err)
	}
}
