package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/billing/engine/internal/infrastructure/config"
	"github.com/billing/engine/internal/infrastructure/event"
	"github.com/billing/engine/internal/infrastructure/logger"
	"github.com/billing/engine/internal/infrastructure/persistence"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logLevel)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("applying schema migrations",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName))

	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Fatal("billing schema migration failed", zap.Error(err))
	}
	if err := event.AutoMigrate(db.DB); err != nil {
		log.Fatal("outbox schema migration failed", zap.Error(err))
	}

	log.Info("schema migrations applied")
}
