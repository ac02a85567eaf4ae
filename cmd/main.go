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

	"github.com/jackc/pgx/v5/pgxpool"

	"campaign-escrow/internal/adapter/events"
	httpadapter "campaign-escrow/internal/adapter/http"
	"campaign-escrow/internal/adapter/job"
	"campaign-escrow/internal/adapter/memory"
	"campaign-escrow/internal/adapter/postgres"
	"campaign-escrow/internal/adapter/usecase"
	"campaign-escrow/internal/config"
	"campaign-escrow/internal/config/configs"
	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
	"campaign-escrow/internal/db"
	"campaign-escrow/internal/walletauth"
)

// main is the entry point of the escrow ledger service. It loads
// configuration, opens the configured store (running migrations when asked),
// seeds development balances, then serves the HTTP API and the custody
// reconciliation job until a termination signal arrives.
func main() {
	if err := run(); err != nil {
		slog.Error("service stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(cfg.Log.NewHandler(os.Stdout)).With(slog.String("env", cfg.Env))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	authorities := domain.Authorities{Owner: cfg.Ledger.Owner, Verifier: cfg.Ledger.Verifier}
	store, closeStore, err := openStore(ctx, cfg, authorities, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	seed, err := cfg.Store.SeedBalances()
	if err != nil {
		return err
	}
	if len(seed) > 0 {
		if err = db.Seed(ctx, store, cfg.Ledger.Custody, seed); err != nil {
			return fmt.Errorf("seed balances: %w", err)
		}
		logger.Info("seeded balances", slog.Int("accounts", len(seed)))
	}

	dispatcher, err := events.NewDispatcher(cfg.Events.Workers, logger, events.NewLogSubscriber(logger))
	if err != nil {
		return fmt.Errorf("event dispatcher: %w", err)
	}
	defer dispatcher.Close()

	svc := usecase.NewLedgerUseCase(store, cfg.Ledger.Custody, usecase.WithPublisher(dispatcher))

	auth, err := walletauth.New(walletauth.Mode(cfg.Auth.Mode), cfg.Auth.MaxSkew,
		walletauth.WithReplayCacheSize(cfg.Auth.ReplayCacheSize))
	if err != nil {
		return err
	}
	if cfg.Auth.Mode == string(walletauth.ModeHeader) {
		logger.Warn("wallet signatures disabled; X-Wallet-Address is trusted as is")
	}

	if cfg.Reconcile.Enabled {
		jobs, err := job.NewManager(logger)
		if err != nil {
			return fmt.Errorf("job manager: %w", err)
		}
		if err = jobs.Register(job.NewCustodyReconciler(svc, logger), cfg.Reconcile.Interval); err != nil {
			return fmt.Errorf("register reconciler: %w", err)
		}
		jobs.Start()
		defer func() {
			if err := jobs.Stop(); err != nil {
				logger.Error("job manager shutdown error", slog.Any("error", err))
			}
		}()
	}

	handler := httpadapter.NewHandler(svc, auth, logger, httpadapter.Options{
		BodyLimit:     cfg.HTTP.BodyLimit,
		TokenDecimals: cfg.Ledger.TokenDecimals,
		TokenSymbol:   cfg.Ledger.TokenSymbol,
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.Int("port", int(cfg.HTTP.Port)),
			slog.String("store", cfg.Store.NormalizedDriver()),
			slog.String("custody", cfg.Ledger.Custody.Hex()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
	return nil
}

// openStore builds the configured port.Store. The returned func releases
// its resources.
func openStore(ctx context.Context, cfg config.Config, a domain.Authorities, logger *slog.Logger) (port.Store, func(), error) {
	switch cfg.Store.NormalizedDriver() {
	case configs.DriverMemory:
		logger.Warn("using in-memory store; state is lost on exit")
		return memory.NewStore(a), func() {}, nil

	case configs.DriverPostgres:
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String(), logger); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		var (
			pool *pgxpool.Pool
			err  error
		)
		if pool, err = db.NewPostgresPool(ctx, cfg.Psql); err != nil {
			return nil, nil, fmt.Errorf("database connection: %w", err)
		}
		store := postgres.NewStore(pool)
		if err = store.Init(ctx, a); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("init ledger settings: %w", err)
		}
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
