// Package app wires configuration, storage and services into the object
// graph shared by the public and backoffice servers.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/EvertonDSS/corrida-app11/internal/cache"
	"github.com/EvertonDSS/corrida-app11/internal/config"
	"github.com/EvertonDSS/corrida-app11/internal/database"
	"github.com/EvertonDSS/corrida-app11/internal/metrics"
	"github.com/EvertonDSS/corrida-app11/internal/repository"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ConfigureLogger sets the global logrus formatter and level: JSON in
// production, coloured text otherwise.
func ConfigureLogger(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.IsProd() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.WithField("level", cfg.Log.Level).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// App holds every long-lived dependency.
type App struct {
	Cfg     *config.Config
	DB      *sqlx.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics

	Auth         *service.AuthService
	Championship *service.ChampionshipService
	Wager        *service.WagerService
	Exclusion    *service.ExclusionService
	Winner       *service.WinnerService
	Group        *service.GroupService
	House        *service.HouseService
	Settlement   *service.SettlementService
}

// New connects to PostgreSQL (and Redis when enabled), applies migrations
// when configured and builds the services. namespace prefixes the
// Prometheus metric names.
func New(ctx context.Context, cfg *config.Config, namespace string) (*App, error) {
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info("database connected")

	if cfg.DB.MigrateOnBoot {
		if err := database.MigrateUp(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("app.New: %w", err)
		}
		log.Info("migrations applied")
	}

	a := &App{Cfg: cfg, DB: db, Metrics: metrics.New(namespace)}

	var balanceCache *cache.SettlementCache
	if cfg.Redis.Enabled {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("app.New: %w", err)
		}
		a.Redis = rdb
		balanceCache = cache.NewSettlementCache(rdb, cfg.Settlement.CacheTTL)
		log.WithField("addr", cfg.Redis.Addr).Info("settlement cache enabled")
	}

	// ── Repositories ──────────────────────────────────────────────────────────
	champRepo := repository.NewChampionshipRepository(db)
	rtRepo := repository.NewRoundTypeRepository(db)
	pairRepo := repository.NewPairRepository(db)
	bettorRepo := repository.NewBettorRepository(db)
	wagerRepo := repository.NewWagerRepository(db)
	exclusionRepo := repository.NewExclusionRepository(db)
	winnerRepo := repository.NewWinnerRepository(db)
	pwRepo := repository.NewPossibleWinnerRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	houseRepo := repository.NewHouseStakeRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// ── Services ──────────────────────────────────────────────────────────────
	a.Settlement, err = service.NewSettlementService(snapshotRepo, balanceCache, a.Metrics, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Auth = service.NewAuthService(cfg)
	a.Championship = service.NewChampionshipService(db, champRepo, rtRepo, pairRepo, balanceCache)
	a.Wager = service.NewWagerService(db, champRepo, rtRepo, pairRepo, bettorRepo, wagerRepo, balanceCache, a.Metrics)
	a.Exclusion = service.NewExclusionService(champRepo, rtRepo, exclusionRepo, balanceCache)
	a.Winner = service.NewWinnerService(db, champRepo, rtRepo, pairRepo, winnerRepo, pwRepo, balanceCache)
	a.Group = service.NewGroupService(db, champRepo, groupRepo, balanceCache)
	a.House = service.NewHouseService(champRepo, houseRepo, balanceCache)

	return a, nil
}

// Close releases the database pool and the Redis client.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.WithError(err).Warn("redis close")
		}
	}
	if err := a.DB.Close(); err != nil {
		log.WithError(err).Warn("database close")
	}
}
