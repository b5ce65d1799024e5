package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"pprbitcoin/internal/chart"
	"pprbitcoin/internal/engine"
	"pprbitcoin/internal/telemetry"
	"pprbitcoin/types"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) listFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := s.sim.ListFunds(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]fundResponse, 0, len(funds))
	for _, f := range funds {
		out = append(out, newFundResponse(f))
	}
	writeJSON(w, http.StatusOK, fundListResponse{Data: out, Total: len(out)})
}

func (s *Server) getFund(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "fundID"))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: fund id must be a UUID", engine.ErrValidation))
		return
	}
	fund, err := s.sim.GetFund(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFundResponse(*fund))
}

// fundHistory handles GET /api/v1/funds/{fundID}/historical
func (s *Server) fundHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "fundID"))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: fund id must be a UUID", engine.ErrValidation))
		return
	}
	start, end, err := s.historyWindow(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	fund, points, err := s.sim.FundHistory(r.Context(), id, start, end)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFundHistoryResponse(*fund, points))
}

// bitcoinHistory handles GET /api/v1/bitcoin/historical
func (s *Server) bitcoinHistory(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.historyWindow(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	points, err := s.sim.BitcoinHistory(r.Context(), start, end)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bitcoinHistoryResponse{Data: newBitcoinPrices(points)})
}

func (s *Server) latestBitcoin(w http.ResponseWriter, r *http.Request) {
	point, err := s.sim.LatestBitcoinPrice(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBitcoinPrice(point))
}

// historyWindow reads the optional start_date and end_date query parameters.
// An open start covers the whole history; an open end means today.
func (s *Server) historyWindow(r *http.Request) (time.Time, time.Time, error) {
	start, end := earliestHistory, types.CalendarDate(s.now().UTC())
	var err error
	if v := r.URL.Query().Get("start_date"); v != "" {
		if start, err = parseDate("start_date", v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		if end, err = parseDate("end_date", v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, invalid("end_date %s is before start_date %s",
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return start, end, nil
}

// calculate handles POST /api/v1/portfolio/calculate
func (s *Server) calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	fundID, params, err := req.toParameters(s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	start := time.Now()
	result, err := s.sim.Run(r.Context(), fundID, params)
	telemetry.ObserveSimulation("calculate", start, trajectoryLen(result), err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCalculationResponse(req, result, s.now()))
}

// compare handles POST /api/v1/portfolio/compare
func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	var req ComparisonRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	fundID, portfolios, err := req.toPortfolios(s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	start := time.Now()
	cmp, err := s.sim.CompareFund(r.Context(), fundID, portfolios)
	telemetry.ObserveSimulation("compare", start, 0, err)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := comparisonResponse{
		Portfolios:        make([]calculationResponse, len(cmp.Results)),
		ComparisonSummary: newSummaryResponse(cmp.Summary),
	}
	for i := range cmp.Results {
		resp.Portfolios[i] = newCalculationResponse(req.Portfolios[i], &cmp.Results[i], s.now())
	}
	writeJSON(w, http.StatusOK, resp)
}

// chart handles POST /api/v1/portfolio/chart and answers with a PNG.
func (s *Server) chart(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	fundID, params, err := req.toParameters(s.now())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	start := time.Now()
	result, err := s.sim.Run(r.Context(), fundID, params)
	telemetry.ObserveSimulation("chart", start, trajectoryLen(result), err)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	fund, err := s.sim.GetFund(r.Context(), fundID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	title := fmt.Sprintf("%s + %s%% Bitcoin", fund.Name, params.BitcoinAllocation.Mul(hundred).StringFixed(0))
	png, err := chart.TrajectoryPNG(result, title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) metricDescriptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engine.MetricDescriptions())
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", engine.ErrValidation, err)
	}
	return nil
}

func trajectoryLen(result *types.Result) int {
	if result == nil {
		return 0
	}
	return len(result.Trajectory)
}
