package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jewelpos/internal/config"
	"jewelpos/internal/infra"
	"jewelpos/internal/repository"
	"jewelpos/internal/router"
	"jewelpos/internal/service"
	"jewelpos/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis backs the gold price cache and the job queues. Without it sales
	// still complete; bill documents are simply not generated.
	var rdb *redis.Client
	if client, err := infra.NewRedis(cfg.RedisURL); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache and background jobs")
	} else {
		rdb = client
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Gold price ───────────────────────────────────────────────────────────
	goldCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	var goldCache service.GoldPriceCache
	if rdb != nil {
		goldCache = service.NewRedisGoldPriceCache(rdb, cfg.GoldPriceTTL)
	} else {
		goldCache = service.NewMemoryGoldPriceCache(cfg.GoldPriceTTL)
	}
	goldSvc := service.NewGoldPriceService(goldCache, infra.NewGoldPriceClient(cfg.GoldPriceAPIURL, cfg.GoldPriceAPIKey), goldCB)
	// refresh a little before the cached value expires
	if cfg.GoldPriceTTL > 0 {
		worker.StartGoldPriceRefresher(ctx, goldSvc, cfg.GoldPriceTTL*4/5)
	}

	// ── Background jobs (bill PDF + email) ───────────────────────────────────
	if rdb != nil {
		dispatcher := worker.NewDispatcher(rdb)
		handlers := worker.Handlers{
			worker.QueueBillDocument: worker.NewBillDocumentWorker(
				repository.NewBillRepository(db), emailQueue(cfg, dispatcher), cfg.StoreName, cfg.PDFStoragePath),
			worker.QueueEmail: worker.NewEmailWorker(infra.NewMailer(cfg)),
		}
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)
	}

	r := router.New(cfg, db, rdb, goldSvc, goldCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("jewelpos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

// emailQueue returns nil when SMTP is not configured, so bill PDFs are still
// written but no email jobs are queued.
func emailQueue(cfg *config.Config, d *worker.Dispatcher) worker.EmailQueue {
	if !cfg.MailEnabled() {
		return nil
	}
	return d
}
