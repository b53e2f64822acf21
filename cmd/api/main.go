package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"coursemedia/internal/adapter/repo"
	"coursemedia/internal/http/handlers"
	httpapi "coursemedia/internal/http/httpapi"
	"coursemedia/internal/infra"
	"coursemedia/internal/infra/credentials"
	"coursemedia/internal/infra/geoip"
	"coursemedia/internal/ingest"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLoggerTo(os.Stdout, cfg.AppEnv, cfg.LogLevel, cfg.AppEnv == "development")
	if err := cfg.RequireAPISecrets(); err != nil {
		logger.Fatal().Err(err).Msg("api: invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to connect database")
	}
	defer pool.Close()

	if err := infra.RunMigrations(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("api: migrations failed")
	}

	runner := infra.NewSQLRunner(pool, logger)
	courses := repo.NewCourseRepository(runner)

	service, err := ingest.NewServiceClient(ctx, cfg, credentials.NewStore(runner), &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure video service")
	}
	components := ingest.NewComponents(service, courses, cfg, &logger)

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("api: geoip disabled")
	}
	defer geo.Close()

	app := &handlers.App{
		Config:    cfg,
		Logger:    logger,
		DB:        pool,
		Courses:   courses,
		Broker:    components.Broker,
		Status:    components.Poller,
		Resolver:  components.Resolver,
		Lifecycle: components.Lifecycle,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		AllowedOrigins:  cfg.AllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   geo.Lookup(),
		RateLimitPerMin: cfg.RateLimitPerMin,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("api: listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("api: http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: failed to shutdown server")
	}

	// Deleted courses may still have remote cleanup in flight.
	done := make(chan struct{})
	go func() {
		components.Lifecycle.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(cfg.CleanupTimeoutDuration()):
		logger.Warn().Msg("api: pending asset cleanups abandoned")
	}
	logger.Info().Msg("api: stopped")
}
