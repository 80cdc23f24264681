package worker

// gold_price_refresher.go
// Background goroutine that keeps the gold price cache warm so requests are
// answered from cache instead of waiting on the upstream provider.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// PriceRefresher is satisfied by the gold price service.
type PriceRefresher interface {
	Refresh(ctx context.Context) error
}

// StartGoldPriceRefresher refreshes once immediately, then every interval,
// until ctx is cancelled.
func StartGoldPriceRefresher(ctx context.Context, r PriceRefresher, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("gold_price_refresher: started")
		refreshGoldPrice(ctx, r)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("gold_price_refresher: shutting down")
				return
			case <-ticker.C:
				refreshGoldPrice(ctx, r)
			}
		}
	}()
}

func refreshGoldPrice(ctx context.Context, r PriceRefresher) {
	if err := r.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("gold_price_refresher: refresh failed, serving cached or default price")
	}
}
