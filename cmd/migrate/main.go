package main

import (
	"context"
	"flag"

	"storefront-checkout/internal/config"
	"storefront-checkout/internal/db"
	"storefront-checkout/internal/logger"
	"storefront-checkout/internal/migrate"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		bootLog := logger.New(logger.Options{Service: "migrate"})
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Options{Service: "migrate", Level: cfg.Log.Level, Format: cfg.Log.Format})

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

	if *down > 0 {
		if err := migrate.Rollback(ctx, pool, *down); err != nil {
			log.Fatal().Err(err).Int("steps", *down).Msg("roll back migrations")
		}
	} else if err := migrate.Apply(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	version, dirty, ok, err := migrate.Version(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("read schema version")
	}
	if !ok {
		log.Info().Msg("no migrations applied")
		return
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations done")
}
