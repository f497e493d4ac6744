package main

import (
	"context"
	"flag"
	"os"
	"time"

	"storefront-checkout/internal/config"
	"storefront-checkout/internal/db"
	"storefront-checkout/internal/importer"
	"storefront-checkout/internal/logger"
	"storefront-checkout/internal/repository/project"
	"storefront-checkout/internal/repository/variant"
)

func main() {
	var (
		filePath   string
		projectKey string
	)
	flag.StringVar(&filePath, "file", "", "Path to product CSV export")
	flag.StringVar(&projectKey, "project", "", "Project key to import into")
	flag.Parse()

	if filePath == "" || projectKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		bootLog := logger.New(logger.Options{Service: "importer"})
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Options{Service: "importer", Level: cfg.Log.Level, Format: cfg.Log.Format})
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

	proj, err := project.NewPostgres(pool).Ensure(ctx, projectKey, "")
	if err != nil {
		log.Fatal().Err(err).Str("project", projectKey).Msg("ensure project")
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, variant.NewPostgres(pool, log), proj.ID, log)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	log.Info().
		Int("variants", count).
		Str("project", projectKey).
		Dur("took", time.Since(start).Truncate(time.Millisecond)).
		Msg("import finished")
}
