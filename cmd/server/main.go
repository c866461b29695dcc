// Package main is the entry point for the public, read-only balances API.
// It serves championship rosters, settled balances and settlement reports.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EvertonDSS/corrida-app11/internal/api"
	"github.com/EvertonDSS/corrida-app11/internal/app"
	"github.com/EvertonDSS/corrida-app11/internal/config"
	log "github.com/sirupsen/logrus"
)

func main() {
	// ── 1. Config + logger ────────────────────────────────────────────────────
	cfg := config.MustLoad()
	app.ConfigureLogger(cfg)

	log.WithFields(log.Fields{
		"env":  cfg.Server.Env,
		"port": cfg.Server.Port,
	}).Info("starting balances server")

	// ── 2. Root context + signal handling ─────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 3. Storage + services ─────────────────────────────────────────────────
	a, err := app.New(ctx, cfg, "corrida")
	if err != nil {
		log.WithError(err).Error("startup failed")
		os.Exit(1)
	}
	defer a.Close()

	// ── 4. HTTP router ────────────────────────────────────────────────────────
	router := api.SetupRouter(api.RouterDeps{
		ChampionshipSvc: a.Championship,
		SettlementSvc:   a.Settlement,
		Metrics:         a.Metrics,
		Cfg:             cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── 5. Start server ───────────────────────────────────────────────────────
	go func() {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http server error")
			stop()
		}
	}()

	// ── 6. Graceful shutdown ──────────────────────────────────────────────────
	<-ctx.Done()
	log.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown error")
	}
	log.Info("server stopped cleanly")
}
