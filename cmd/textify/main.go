// Command textify runs the translation API: accounts, translation proxy and
// per-user history.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/codyseavey/textify/internal/api"
	"github.com/codyseavey/textify/internal/config"
	"github.com/codyseavey/textify/internal/database"
	"github.com/codyseavey/textify/internal/logger"
	"github.com/codyseavey/textify/internal/metrics"
	"github.com/codyseavey/textify/internal/middleware"
	"github.com/codyseavey/textify/internal/repository"
	"github.com/codyseavey/textify/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "textify:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, history, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	metrics.UpdateStoreMetrics(ctx, users, history, log)

	tokens, err := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		return err
	}
	upstream := services.NewTranslationService(services.MyMemoryOptions{
		BaseURL:         cfg.Translation.APIURL,
		Timeout:         cfg.Translation.Timeout,
		BreakerFailures: cfg.Translation.BreakerFailures,
		BreakerCooldown: cfg.Translation.BreakerCooldown,
	}, log)

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(api.Deps{
		Auth:           services.NewAuthService(users, tokens, cfg.Auth.BcryptCost, log),
		Translator:     services.NewTranslator(services.NewTranslationCache(cfg.Translation.CacheSize), upstream, log),
		History:        services.NewHistoryService(history, users, cfg.History.Cap, log),
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.Auth.RatePerMinute, cfg.Auth.RateBurst),
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Backend),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStore builds the repositories for the configured backend. The returned
// func releases the underlying database, if any.
func openStore(cfg *config.Config, log *zap.Logger) (repository.UserRepository, repository.HistoryRepository, func(), error) {
	if cfg.Storage.Backend == config.BackendMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryUsers(), repository.NewMemoryHistory(), func() {}, nil
	}

	db, err := database.Open(cfg.Storage.Path, gormlogger.Warn)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	log.Info("database opened", zap.String("path", cfg.Storage.Path))

	if cfg.Storage.LegacyUsersFile != "" {
		if _, err := database.ImportLegacyUsers(db, cfg.Storage.LegacyUsersFile, cfg.History.Cap, log); err != nil {
			closeDB()
			return nil, nil, nil, fmt.Errorf("legacy import failed: %w", err)
		}
	}

	return repository.NewSQLUsers(db), repository.NewSQLHistory(db), closeDB, nil
}
