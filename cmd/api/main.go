package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"storefront-checkout/internal/cache"
	"storefront-checkout/internal/config"
	"storefront-checkout/internal/db"
	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/httpserver"
	"storefront-checkout/internal/logger"
	"storefront-checkout/internal/metrics"
	cartrepo "storefront-checkout/internal/repository/cart"
	checkoutrepo "storefront-checkout/internal/repository/checkout"
	giftcardrepo "storefront-checkout/internal/repository/giftcard"
	projectrepo "storefront-checkout/internal/repository/project"
	variantrepo "storefront-checkout/internal/repository/variant"
	cartsvc "storefront-checkout/internal/service/cart"
	checkoutsvc "storefront-checkout/internal/service/checkout"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		bootLog := logger.New(logger.Options{Service: "api"})
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Options{Service: "api", Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, db.Options{
		DSN:          cfg.DBConnString,
		MaxConns:     cfg.DBMaxConns,
		TraceQueries: cfg.DBTraceQueries,
		Logger:       log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	variantRepo := variantrepo.NewPostgres(dbpool, log)
	cartRepo := cartrepo.NewPostgres(dbpool)

	checkoutDeps := checkoutsvc.Deps{
		Manager:   domain.NewModelManager(cfg.DefaultCurrency),
		Repo:      checkoutrepo.NewPostgres(dbpool, log),
		Carts:     cartRepo,
		Variants:  variantRepo,
		GiftCards: giftcardrepo.NewPostgres(dbpool),
		Metrics:   metrics.New(prometheus.DefaultRegisterer),
		Logger:    log,
	}
	serverDeps := httpserver.Deps{
		ProjectRepo: projectrepo.NewPostgres(dbpool),
		CartSvc:     cartsvc.New(cartRepo, variantRepo, log),
		Gatherer:    prometheus.DefaultGatherer,
		CORSOrigins: cfg.CORSOrigins,
	}

	var checkoutCache *cache.Checkouts
	if cfg.Redis.Enabled() {
		checkoutCache, err = cache.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("connect to redis")
		}
		checkoutDeps.Cache = checkoutCache
		serverDeps.Cache = checkoutCache
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("checkout cache enabled")
	}
	serverDeps.CheckoutSvc = checkoutsvc.New(checkoutDeps)

	srv, err := httpserver.New(cfg.HTTPAddr, log, dbpool, serverDeps)
	if err != nil {
		log.Fatal().Err(err).Msg("init server")
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	err = srv.Shutdown(ctx)
	if checkoutCache != nil {
		err = multierr.Append(err, checkoutCache.Close())
	}
	if err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
