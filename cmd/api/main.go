package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/myflix/myflix-api/internal/config"
	"github.com/myflix/myflix-api/internal/crypto"
	"github.com/myflix/myflix-api/internal/handler"
	"github.com/myflix/myflix-api/internal/metrics"
	"github.com/myflix/myflix-api/internal/middleware"
	"github.com/myflix/myflix-api/internal/model"
	"github.com/myflix/myflix-api/internal/repository"
	"github.com/myflix/myflix-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	users, catalog, closeStore, err := openStores(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New()
	hasher := crypto.NewHasher(crypto.DefaultHashParams())
	tokens := crypto.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.JWTExpiry)

	router := handler.NewRouter(handler.Deps{
		Auth:    service.NewAuthService(users, hasher, tokens, m),
		Users:   service.NewUserService(users, catalog, hasher, m),
		Movies:  service.NewMovieService(catalog, m),
		Metrics: m,
		Logger:  logger,
		Limiter: middleware.NewRateLimiter(ctx, cfg.Limit.RPS, cfg.Limit.Burst),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// openStores connects the configured user store and movie catalog. The
// returned func releases their connections.
func openStores(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (service.UserStore, service.MovieCatalog, func(), error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("connected to mysql")
		return repository.NewUserRepository(db), repository.NewMovieRepository(db), func() { db.Close() }, nil

	case config.DriverRedis:
		client, err := repository.NewRedisClient(ctx, repository.RedisConfig{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr)
		return repository.NewRedisUserStore(client), repository.NewMemoryMovieCatalog(model.SeedMovies()), func() { client.Close() }, nil

	default:
		logger.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryUserStore(), repository.NewMemoryMovieCatalog(model.SeedMovies()), func() {}, nil
	}
}
