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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/acme-erp/admin-console/internal/api"
	"github.com/acme-erp/admin-console/internal/api/handler"
	"github.com/acme-erp/admin-console/internal/core/ports"
	"github.com/acme-erp/admin-console/internal/core/service"
	"github.com/acme-erp/admin-console/internal/infrastructure/config"
	"github.com/acme-erp/admin-console/internal/infrastructure/db/memory"
	mongodb "github.com/acme-erp/admin-console/internal/infrastructure/db/mongo"
	"github.com/acme-erp/admin-console/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "erp-devserver:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.IsDevelopment(), App: "erp-devserver"})

	// --- Repository ---
	repo, closeRepo, err := openRepository(ctx, cfg.DevServer, logger.Component("repository"))
	if err != nil {
		return err
	}
	defer closeRepo()

	// --- Services ---
	accounts := service.NewAccountService(repo, cfg.DevServer.JWTSecret, cfg.DevServer.TokenTTL)
	if _, err := accounts.Seed(ctx, cfg.DevServer.SeedPassword, logger.Component("seed")); err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}

	e := api.NewRouter(api.Dependencies{
		Accounts:  accounts,
		Readiness: map[string]handler.Pinger{"accounts": repo},
		JWTSecret: cfg.DevServer.JWTSecret,
		Log:       logger.Component("http"),
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              cfg.DevServer.Addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.DevServer.Addr).Msg("development backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

type accountStore interface {
	ports.AccountRepository
	handler.Pinger
}

// openRepository selects MongoDB when a URI is configured and the
// in-memory store otherwise.
func openRepository(ctx context.Context, cfg config.DevServerConfig, log zerolog.Logger) (accountStore, func(), error) {
	if cfg.MongoURI == "" {
		log.Info().Msg("using in-memory account store")
		return memory.NewAccountRepository(), func() {}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.MongoURI, Database: cfg.MongoDB})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}

	repo := mongodb.NewAccountRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("mongo indexes: %w", err)
	}
	log.Info().Str("database", cfg.MongoDB).Msg("using mongo account store")
	return repo, closeFn, nil
}
