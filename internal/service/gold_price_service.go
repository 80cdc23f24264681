package service

import (
	"context"
	"time"

	"jewelpos/internal/dto"
	"jewelpos/internal/infra"
	"jewelpos/internal/metrics"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// goldFetchTimeout bounds one shared upstream call.
const goldFetchTimeout = 10 * time.Second

// DefaultGoldPrice is served, flagged, whenever no fresh price is available.
var DefaultGoldPrice = decimal.RequireFromString("6245.75")

// PriceFetcher is satisfied by *infra.GoldPriceClient.
type PriceFetcher interface {
	FetchPerGram(ctx context.Context) (decimal.Decimal, error)
}

type GoldPriceService interface {
	// Current never fails: it falls back to DefaultGoldPrice.
	Current(ctx context.Context) *dto.GoldPriceResponse
	// Refresh fetches from upstream and stores the result in the cache.
	Refresh(ctx context.Context) error
}

type goldPriceService struct {
	cache   GoldPriceCache
	fetcher PriceFetcher
	cb      *infra.CircuitBreaker
	group   singleflight.Group
	now     func() time.Time
}

func NewGoldPriceService(cache GoldPriceCache, fetcher PriceFetcher, cb *infra.CircuitBreaker) GoldPriceService {
	return &goldPriceService{cache: cache, fetcher: fetcher, cb: cb, now: time.Now}
}

func (s *goldPriceService) Current(ctx context.Context) *dto.GoldPriceResponse {
	if p, fresh := s.cache.Get(ctx); fresh {
		return priceResponse(p, false)
	}

	// Concurrent misses share one upstream call. The call is detached from the
	// caller that started it, so a cancelled request neither fails the others
	// nor leaves the cache empty; that caller alone falls back to the default.
	ch := s.group.DoChan("gold_price", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), goldFetchTimeout)
		defer cancel()
		return s.fetch(fetchCtx)
	})
	var (
		v   interface{}
		err error
	)
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		log.Warn().Err(err).Msg("gold price unavailable, serving default")
		metrics.GoldPriceFallbacks.Inc()
		return priceResponse(GoldPrice{Price: DefaultGoldPrice, FetchedAt: s.now()}, true)
	}
	return priceResponse(v.(GoldPrice), false)
}

func (s *goldPriceService) Refresh(ctx context.Context) error {
	_, err := s.fetch(ctx)
	return err
}

func (s *goldPriceService) fetch(ctx context.Context) (GoldPrice, error) {
	var price decimal.Decimal
	err := s.cb.Execute(func() error {
		p, err := s.fetcher.FetchPerGram(ctx)
		if err != nil {
			return err
		}
		price = p
		return nil
	})
	if err != nil {
		return GoldPrice{}, err
	}
	gp := GoldPrice{Price: price, FetchedAt: s.now()}
	s.cache.Set(ctx, gp)
	return gp, nil
}

func priceResponse(p GoldPrice, isDefault bool) *dto.GoldPriceResponse {
	return &dto.GoldPriceResponse{
		Price:          p.Price,
		Timestamp:      p.FetchedAt.UTC().Format(time.RFC3339),
		IsDefaultPrice: isDefault,
	}
}
