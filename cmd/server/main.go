package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/MILO-debug/POS/internal/config"
	"github.com/MILO-debug/POS/internal/gateway"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/offline"
	"github.com/MILO-debug/POS/internal/router"
	"github.com/MILO-debug/POS/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// The offline queue must open — without it the terminal cannot promise
	// durability for a single write.
	queue, err := offline.Open(cfg.OfflineQueuePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open offline queue")
	}
	defer queue.Close()

	// The remote store is allowed to be unreachable at boot: the terminal
	// starts in offline mode and the drain loop reconciles later.
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := infra.NewMongo(bootCtx, cfg.MongoURI, cfg.MongoDB)
	bootCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure mongo client")
	}

	probe := infra.NewProbe(db.Client, time.Duration(cfg.ProbeTimeoutSecs)*time.Second)
	gw := gateway.New(db, infra.ExtJSONCodec{}, queue, probe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.StartDrainLoop(ctx, worker.DrainConfig{
		Gateway:  gw,
		Probe:    probe,
		Interval: time.Duration(cfg.DrainIntervalSecs) * time.Second,
	})

	r := router.New(cfg, db, probe, gw)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("POS backend listening on :%d", cfg.Port)
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
