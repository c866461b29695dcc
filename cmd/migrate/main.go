// migrate applies or rolls back the embedded schema migrations.
// Usage, with DATABASE_DSN set (or present in .env):
//
//	go run ./cmd/migrate            # apply every pending migration
//	go run ./cmd/migrate -down 1    # roll back one migration
package main

import (
	"context"
	"flag"
	"time"

	"github.com/EvertonDSS/corrida-app11/internal/app"
	"github.com/EvertonDSS/corrida-app11/internal/config"
	"github.com/EvertonDSS/corrida-app11/internal/database"
	log "github.com/sirupsen/logrus"
)

func main() {
	down := flag.Int("down", 0, "number of migrations to roll back; 0 applies pending ones")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}
	app.ConfigureLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if *down > 0 {
		if err := database.MigrateDown(db, *down); err != nil {
			log.WithError(err).Fatal("rollback failed")
		}
		log.WithField("steps", *down).Info("migrations rolled back")
		return
	}
	if err := database.MigrateUp(db); err != nil {
		log.WithError(err).Fatal("migrate up failed")
	}
}
