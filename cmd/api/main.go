package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/paperloft/api/internal/di"
	"github.com/paperloft/api/internal/handlers"
	"github.com/paperloft/api/internal/platform/config"
	"github.com/paperloft/api/internal/platform/debounce"
	"github.com/paperloft/api/internal/platform/observability"
	"github.com/paperloft/api/internal/repositories/postgres"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	registry, err := postgres.NewRegistry(postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Logger:          logger.Named("db"),
	})
	if err != nil {
		logger.Fatal("failed to initialise database", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := registry.Close(closeCtx); err != nil {
			logger.Warn("database close error", zap.Error(err))
		}
	}()

	guard, redisClient := buildGuard(cfg, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}()
	}

	container, err := di.NewContainer(cfg, registry, guard)
	if err != nil {
		logger.Fatal("failed to assemble dependencies", zap.Error(err))
	}

	pruneCtx, pruneCancel := context.WithCancel(context.Background())
	var pruneWG sync.WaitGroup
	var pruneTicker *time.Ticker
	if cfg.Debounce.PruneInterval > 0 {
		pruneTicker = time.NewTicker(cfg.Debounce.PruneInterval)
		pruneWG.Add(1)
		go func() {
			defer pruneWG.Done()
			pruneLogger := logger.Named("debounce")
			maxAge := 2 * cfg.Debounce.Window
			for {
				select {
				case <-pruneTicker.C:
					runCtx, cancel := context.WithTimeout(pruneCtx, time.Minute)
					removed, err := guard.Prune(runCtx, time.Now().UTC(), maxAge)
					cancel()
					if err != nil {
						pruneLogger.Error("guard prune error", zap.Error(err))
						continue
					}
					if removed > 0 {
						pruneLogger.Info("guard pruned stale entries", zap.Int("count", removed))
					}
				case <-pruneCtx.Done():
					return
				}
			}
		}()
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	orderHandlers := handlers.NewOrderHandlers(container.Authenticator, container.Services.Orders)
	catalogHandlers := handlers.NewCatalogHandlers(container.Authenticator, container.Services.Catalog)
	categoryHandlers := handlers.NewCategoryHandlers(container.Services.Catalog)
	searchHandlers := handlers.NewSearchHandlers(container.Services.Catalog)
	customerHandlers := handlers.NewCustomerHandlers(container.Authenticator, container.Services.Customers)
	paymentHandlers := handlers.NewPaymentHandlers(container.Services.Payments)
	adminHandlers := handlers.NewAdminAuthHandlers(container.Authenticator)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(registry.Ping)),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithProductRoutes(catalogHandlers.Routes),
		handlers.WithCategoryRoutes(categoryHandlers.Routes),
		handlers.WithSearchRoutes(searchHandlers.Routes),
		handlers.WithCustomerRoutes(customerHandlers.Routes),
		handlers.WithPaymentRoutes(paymentHandlers.Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("paperloft api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	if pruneTicker != nil {
		pruneTicker.Stop()
	}
	pruneCancel()
	pruneWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildGuard picks Redis-backed debounce when an address is configured and
// falls back to the in-process map otherwise.
func buildGuard(cfg config.Config, logger *zap.Logger) (debounce.Guard, *redis.Client) {
	if cfg.Redis.Addr == "" {
		logger.Info("debounce guard using in-process store")
		return debounce.NewMemoryGuard(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	logger.Info("debounce guard using redis", zap.String("addr", cfg.Redis.Addr))
	return debounce.NewRedisGuard(client), client
}
