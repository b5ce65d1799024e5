// Package cache puts a Redis read-through cache in front of a price store.
// Historical prices rarely change, so reads are served from Redis until the
// TTL expires; imports invalidate nothing and rely on the TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"pprbitcoin/types"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Store is the read side of the price repository.
type Store interface {
	GetFund(ctx context.Context, id uuid.UUID) (*types.Fund, error)
	ListFunds(ctx context.Context) ([]types.Fund, error)
	GetFundPrices(ctx context.Context, fundID uuid.UUID, start, end time.Time) ([]types.PricePoint, error)
	GetBitcoinPrices(ctx context.Context, start, end time.Time) ([]types.PricePoint, error)
	LatestBitcoinPrice(ctx context.Context) (types.PricePoint, error)
}

// CachedStore wraps a primary Store with a Redis read-through cache.
// Redis failures are never fatal: the primary is read instead.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) GetFund(ctx context.Context, id uuid.UUID) (*types.Fund, error) {
	var fund types.Fund
	if s.get(ctx, fundKey(id), &fund) {
		return &fund, nil
	}

	f, err := s.primary.GetFund(ctx, id)
	if err != nil {
		return nil, err
	}
	s.set(ctx, fundKey(id), f)
	return f, nil
}

func (s *CachedStore) ListFunds(ctx context.Context) ([]types.Fund, error) {
	var funds []types.Fund
	if s.get(ctx, fundsKey, &funds) {
		return funds, nil
	}

	funds, err := s.primary.ListFunds(ctx)
	if err != nil {
		return nil, err
	}
	s.set(ctx, fundsKey, funds)
	return funds, nil
}

func (s *CachedStore) GetFundPrices(ctx context.Context, fundID uuid.UUID, start, end time.Time) ([]types.PricePoint, error) {
	key := fundPricesKey(fundID, start, end)
	var points []types.PricePoint
	if s.get(ctx, key, &points) {
		return points, nil
	}

	points, err := s.primary.GetFundPrices(ctx, fundID, start, end)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, points)
	return points, nil
}

func (s *CachedStore) GetBitcoinPrices(ctx context.Context, start, end time.Time) ([]types.PricePoint, error) {
	key := bitcoinPricesKey(start, end)
	var points []types.PricePoint
	if s.get(ctx, key, &points) {
		return points, nil
	}

	points, err := s.primary.GetBitcoinPrices(ctx, start, end)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, points)
	return points, nil
}

// LatestBitcoinPrice always reads the primary; an import would otherwise be
// hidden until the TTL expires.
func (s *CachedStore) LatestBitcoinPrice(ctx context.Context) (types.PricePoint, error) {
	return s.primary.LatestBitcoinPrice(ctx)
}

// --- Cache helpers ---

func (s *CachedStore) get(ctx context.Context, key string, dst any) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *CachedStore) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

const fundsKey = "pprbtc:funds"

func fundKey(id uuid.UUID) string { return fmt.Sprintf("pprbtc:fund:%s", id) }

func fundPricesKey(id uuid.UUID, start, end time.Time) string {
	return fmt.Sprintf("pprbtc:prices:fund:%s:%s:%s", id, start.Format(time.DateOnly), end.Format(time.DateOnly))
}

func bitcoinPricesKey(start, end time.Time) string {
	return fmt.Sprintf("pprbtc:prices:btc:%s:%s", start.Format(time.DateOnly), end.Format(time.DateOnly))
}
