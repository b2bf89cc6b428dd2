package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tkamphefner/Inventory/internal/audit"
	"github.com/tkamphefner/Inventory/internal/config"
	"github.com/tkamphefner/Inventory/internal/infra"
	"github.com/tkamphefner/Inventory/internal/repository"
	"github.com/tkamphefner/Inventory/internal/router"
	"github.com/tkamphefner/Inventory/internal/service"
	"github.com/tkamphefner/Inventory/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Audit entries are enqueued by the services and drained here in the
	// composition root, so a Redis outage never blocks a request.
	auditRepo := repository.NewAuditRepository(db)
	worker.StartWorkerPool(ctx, rdb, auditRepo, cfg.WorkerPoolSize)

	// Scheduled reports run off the same service the HTTP layer uses.
	reportSvc := service.NewReportService(
		repository.NewReportRepository(db),
		repository.NewInventoryRepository(db),
		repository.NewCategoryRepository(db),
		audit.NewRecorder(rdb),
	)
	worker.StartReportScheduler(ctx, reportSvc, time.Duration(cfg.ReportSchedulerIntervalSeconds)*time.Second)

	r := router.New(cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("inventory backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
