// Package httpapi exposes the simulator over a JSON HTTP API.
package httpapi

import (
	"context"
	"net/http"
	"pprbitcoin/internal/telemetry"
	"pprbitcoin/types"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxComparedPortfolios bounds a single compare request.
const maxComparedPortfolios = 5

// Simulator is the part of the engine the API needs.
type Simulator interface {
	Run(ctx context.Context, fundID uuid.UUID, params types.PortfolioParameters) (*types.Result, error)
	CompareFund(ctx context.Context, fundID uuid.UUID, portfolios []types.NamedParameters) (*types.Comparison, error)
	ListFunds(ctx context.Context) ([]types.Fund, error)
	GetFund(ctx context.Context, id uuid.UUID) (*types.Fund, error)
	FundHistory(ctx context.Context, fundID uuid.UUID, start, end time.Time) (*types.Fund, []types.PricePoint, error)
	BitcoinHistory(ctx context.Context, start, end time.Time) ([]types.PricePoint, error)
	LatestBitcoinPrice(ctx context.Context) (types.PricePoint, error)
}

type Server struct {
	sim    Simulator
	logger zerolog.Logger
	now    func() time.Time
}

type Option func(*Server)

// WithClock replaces the clock used for the default end date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

func NewServer(sim Simulator, opts ...Option) *Server {
	s := &Server{
		sim:    sim,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the router with its middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(telemetry.Middleware)
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "pprbitcoin"})
	})
	r.Handle("/metrics", telemetry.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/funds", s.listFunds)
		r.Get("/funds/{fundID}", s.getFund)
		r.Get("/funds/{fundID}/historical", s.fundHistory)
		r.Get("/bitcoin/historical", s.bitcoinHistory)
		r.Get("/bitcoin/latest", s.latestBitcoin)

		r.Route("/portfolio", func(r chi.Router) {
			r.Post("/calculate", s.calculate)
			r.Post("/compare", s.compare)
			r.Post("/chart", s.chart)
			r.Get("/metrics", s.metricDescriptions)
		})
	})
	return r
}

// cors allows the browser front end to call the API from another origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
