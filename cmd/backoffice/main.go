// Package main is the entry point for the operator backoffice server. It
// exposes the authenticated endpoints that register championships, wagers
// and settlement rules.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EvertonDSS/corrida-app11/internal/app"
	"github.com/EvertonDSS/corrida-app11/internal/backoffice"
	"github.com/EvertonDSS/corrida-app11/internal/config"
	log "github.com/sirupsen/logrus"
)

func main() {
	// ── Config + logger ───────────────────────────────────────────────────────
	cfg := config.MustLoad()
	app.ConfigureLogger(cfg)

	log.WithFields(log.Fields{
		"env":  cfg.Server.Env,
		"port": cfg.Server.BackofficePort,
	}).Info("starting backoffice server")

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, "corrida_backoffice")
	if err != nil {
		log.WithError(err).Error("startup failed")
		os.Exit(1)
	}
	defer a.Close()

	// ── Router ────────────────────────────────────────────────────────────────
	router := backoffice.SetupBackofficeRouter(backoffice.BackofficeDeps{
		AuthSvc:         a.Auth,
		ChampionshipSvc: a.Championship,
		WagerSvc:        a.Wager,
		ExclusionSvc:    a.Exclusion,
		WinnerSvc:       a.Winner,
		GroupSvc:        a.Group,
		HouseSvc:        a.House,
		SettlementSvc:   a.Settlement,
		Metrics:         a.Metrics,
		Cfg:             cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.BackofficePort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── Start ─────────────────────────────────────────────────────────────────
	go func() {
		log.WithField("addr", srv.Addr).Info("backoffice http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("backoffice server error")
			stop()
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("backoffice shutdown error")
	}
	log.Info("backoffice server stopped cleanly")
}
