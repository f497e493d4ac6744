package main

import (
	"context"

	"storefront-checkout/internal/config"
	"storefront-checkout/internal/db"
	"storefront-checkout/internal/logger"
	"storefront-checkout/internal/seed"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		bootLog := logger.New(logger.Options{Service: "seed"})
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Options{Service: "seed", Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()
	pool, err := db.Connect(ctx, db.Options{
		DSN:          cfg.DBConnString,
		MaxConns:     cfg.DBMaxConns,
		TraceQueries: cfg.DBTraceQueries,
		Logger:       log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("seed apply")
	}

	log.Info().Str("project", seed.ProjectKey).Msg("seed applied")
}
