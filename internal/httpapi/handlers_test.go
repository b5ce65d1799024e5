package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"pprbitcoin/internal/engine"
	"pprbitcoin/internal/repository"
	"pprbitcoin/types"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFundID = uuid.MustParse("0b9a7c3e-5d1f-4e2a-9c41-7a2e6f3d8b10")

type fakeStore struct {
	funds map[uuid.UUID]types.Fund
	fund  []types.PricePoint
	btc   []types.PricePoint
}

func (f *fakeStore) GetFund(_ context.Context, id uuid.UUID) (*types.Fund, error) {
	fund, ok := f.funds[id]
	if !ok {
		return nil, fmt.Errorf("fund %s %w", id, repository.ErrFundNotFound)
	}
	return &fund, nil
}

func (f *fakeStore) ListFunds(context.Context) ([]types.Fund, error) {
	out := make([]types.Fund, 0, len(f.funds))
	for _, fund := range f.funds {
		out = append(out, fund)
	}
	return out, nil
}

func (f *fakeStore) GetFundPrices(_ context.Context, _ uuid.UUID, start, end time.Time) ([]types.PricePoint, error) {
	return inWindow(f.fund, start, end)
}

func (f *fakeStore) GetBitcoinPrices(_ context.Context, start, end time.Time) ([]types.PricePoint, error) {
	return inWindow(f.btc, start, end)
}

func inWindow(points []types.PricePoint, start, end time.Time) ([]types.PricePoint, error) {
	var out []types.PricePoint
	for _, p := range points {
		if !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, repository.ErrNoPrices
	}
	return out, nil
}

func (f *fakeStore) LatestBitcoinPrice(context.Context) (types.PricePoint, error) {
	if len(f.btc) == 0 {
		return types.PricePoint{}, repository.ErrNoPrices
	}
	return f.btc[len(f.btc)-1], nil
}

// monthly returns n first-of-month prices from January 2023, starting at
// base and moving by step each month.
func monthly(n int, base, step int64) []types.PricePoint {
	out := make([]types.PricePoint, n)
	for i := range out {
		out[i] = types.PricePoint{
			Date:  types.Date(2023, time.January, 1).AddDate(0, i, 0),
			Price: decimal.NewFromInt(base + int64(i)*step),
		}
	}
	return out
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := &fakeStore{
		funds: map[uuid.UUID]types.Fund{
			testFundID: {
				Id:       testFundID,
				Name:     "PPR Teste",
				Manager:  "Gestora",
				ISIN:     "PTTEST000001",
				Category: types.FundCategoryModerate,
			},
		},
		fund: monthly(13, 10, 0),
		btc:  monthly(13, 20000, 1000),
	}
	eng := engine.NewEngine(store, nil, zerolog.Nop())
	clock := func() time.Time { return time.Date(2024, time.June, 30, 15, 4, 5, 0, time.UTC) }
	return NewServer(eng, WithClock(clock)).Routes()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func calcBody(btcPct string, extra string) string {
	return fmt.Sprintf(`{"ppr_id":%q,"bitcoin_percentage":%s,"initial_investment":10000,`+
		`"start_date":"2023-01-01","end_date":"2024-01-01"%s}`, testFundID, btcPct, extra)
}

func TestCalculate(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/portfolio/calculate", calcBody("0", ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp calculationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "quarterly", resp.PortfolioConfig.RebalancingFrequency)
	assert.Equal(t, "2024-06-30", resp.CalculationDate)
	assert.Len(t, resp.HistoricalData, 13)
	assert.Equal(t, "2023-01-01", resp.HistoricalData[0].Data)
	assert.True(t, resp.Metrics.FinalValue.Equal(decimal.NewFromInt(10000)), resp.Metrics.FinalValue.String())
	assert.True(t, resp.Metrics.TotalReturn.IsZero())
	assert.True(t, resp.Metrics.MaxDrawdown.IsZero())
	assert.Equal(t, 12, resp.Metrics.TotalMonths)
	require.Len(t, resp.AllocationBreakdown, 2)
}

func TestCalculate_AllBitcoin(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/portfolio/calculate", calcBody("100", `,"rebalancing_frequency":"none"`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp calculationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// 0.5 BTC bought at 20000, worth 32000 after twelve months.
	assert.True(t, resp.Metrics.FinalValue.Equal(decimal.NewFromInt(16000)), resp.Metrics.FinalValue.String())
	assert.True(t, resp.Metrics.TotalReturnPercentage.Equal(decimal.NewFromInt(60)), resp.Metrics.TotalReturnPercentage.String())
	assert.True(t, resp.PortfolioConfig.BitcoinPercentage.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 12, resp.Metrics.PositiveMonths)
}

func TestCalculate_DefaultEndDate(t *testing.T) {
	h := newTestServer(t)

	body := fmt.Sprintf(`{"ppr_id":%q,"start_date":"2023-06-01"}`, testFundID)
	rec := do(t, h, http.MethodPost, "/api/v1/portfolio/calculate", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp calculationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-06-30", resp.PortfolioConfig.EndDate)
	assert.True(t, resp.PortfolioConfig.InitialInvestment.Equal(decimal.NewFromInt(10000)))
	assert.True(t, resp.PortfolioConfig.BitcoinPercentage.IsZero())
	assert.Len(t, resp.HistoricalData, 8)
}

func TestCalculate_Errors(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"percentage above 100", calcBody("101", ""), http.StatusBadRequest},
		{"negative percentage", calcBody("-1", ""), http.StatusBadRequest},
		{"malformed json", `{"ppr_id":`, http.StatusBadRequest},
		{"unknown field", calcBody("10", `,"leverage":2`), http.StatusBadRequest},
		{"bad frequency", calcBody("10", `,"rebalancing_frequency":"weekly"`), http.StatusBadRequest},
		{"bad uuid", `{"ppr_id":"abc","start_date":"2023-01-01"}`, http.StatusBadRequest},
		{"missing start date", fmt.Sprintf(`{"ppr_id":%q}`, testFundID), http.StatusBadRequest},
		{"zero investment", fmt.Sprintf(`{"ppr_id":%q,"initial_investment":0,"start_date":"2023-01-01"}`, testFundID), http.StatusBadRequest},
		{"end before start", fmt.Sprintf(`{"ppr_id":%q,"start_date":"2023-05-01","end_date":"2023-01-01"}`, testFundID), http.StatusBadRequest},
		{"unknown fund", fmt.Sprintf(`{"ppr_id":%q,"start_date":"2023-01-01"}`, uuid.New()), http.StatusNotFound},
		{"window without prices", fmt.Sprintf(`{"ppr_id":%q,"start_date":"2019-01-01","end_date":"2019-12-31"}`, testFundID), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/portfolio/calculate", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Detail)
		})
	}
}

func TestCompare(t *testing.T) {
	h := newTestServer(t)

	body := fmt.Sprintf(`{"portfolios":[%s,%s],"portfolio_names":["Só PPR","Só Bitcoin"]}`,
		calcBody("0", ""), calcBody("100", ""))
	rec := do(t, h, http.MethodPost, "/api/v1/portfolio/compare", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp comparisonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Portfolios, 2)
	summary := resp.ComparisonSummary
	assert.Equal(t, []string{"Só PPR", "Só Bitcoin"}, summary.Portfolios)
	assert.Equal(t, 1, summary.MetricsComparison["final_value"].BestIndex)
	assert.Equal(t, 1, summary.MetricsComparison["total_return_percentage"].BestIndex)
	assert.Equal(t, 0, summary.MetricsComparison["volatility"].BestIndex)
	assert.Equal(t, "Só Bitcoin", summary.RecommendedPortfolio.Name)
	assert.Equal(t, 1, summary.RecommendedPortfolio.Index)
}

func TestCompare_Errors(t *testing.T) {
	h := newTestServer(t)

	portfolios := func(n int) string {
		items := make([]string, n)
		for i := range items {
			items[i] = calcBody("50", "")
		}
		return strings.Join(items, ",")
	}
	otherFund := fmt.Sprintf(`{"ppr_id":%q,"start_date":"2023-01-01"}`, uuid.New())

	tests := []struct {
		name string
		body string
	}{
		{"single portfolio", `{"portfolios":[` + portfolios(1) + `]}`},
		{"too many portfolios", `{"portfolios":[` + portfolios(6) + `]}`},
		{"name count mismatch", `{"portfolios":[` + portfolios(2) + `],"portfolio_names":["a"]}`},
		{"mixed funds", `{"portfolios":[` + calcBody("0", "") + `,` + otherFund + `]}`},
		{"invalid member", `{"portfolios":[` + calcBody("0", "") + `,` + calcBody("150", "") + `]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/portfolio/compare", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestFunds(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/funds", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list fundListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "PPR Teste", list.Data[0].Nome)
	assert.Equal(t, "Moderado", list.Data[0].Categoria)

	rec = do(t, h, http.MethodGet, "/api/v1/funds/"+testFundID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fund fundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fund))
	assert.Equal(t, "PTTEST000001", fund.Isin)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/funds/"+uuid.NewString(), "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/funds/not-a-uuid", "").Code)
}

func TestMetricDescriptionsAndHealth(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/portfolio/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var descriptions map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &descriptions))
	assert.Contains(t, descriptions, "sharpe_ratio")

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	rec = do(t, h, http.MethodOptions, "/api/v1/portfolio/calculate", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestChart(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/portfolio/chart", calcBody("25", ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestFundHistory(t *testing.T) {
	h := newTestServer(t)
	base := "/api/v1/funds/" + testFundID.String() + "/historical"

	rec := do(t, h, http.MethodGet, base+"?start_date=2023-02-01&end_date=2023-04-30", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp fundHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PPR Teste", resp.PPR.Nome)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "2023-02-01", resp.Data[0].Data)
	assert.True(t, resp.Data[0].ValorQuota.Equal(decimal.NewFromInt(10)))

	rec = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 13)

	rec = do(t, h, http.MethodGet, base+"?start_date=2019-01-01&end_date=2019-12-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/funds/"+uuid.NewString()+"/historical", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, base+"?start_date=01-02-2023", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, base+"?start_date=2023-05-01&end_date=2023-01-01", "").Code)
}

func TestBitcoinHistory(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/v1/bitcoin/historical?start_date=2023-11-01", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp bitcoinHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "2024-01-01", resp.Data[2].Data)
	assert.True(t, resp.Data[2].PrecoEur.Equal(decimal.NewFromInt(32000)))

	rec = do(t, h, http.MethodGet, "/api/v1/bitcoin/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest bitcoinPriceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, "2024-01-01", latest.Data)
	assert.True(t, latest.PrecoEur.Equal(decimal.NewFromInt(32000)))
}
