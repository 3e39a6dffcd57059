package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sales-order-backend/docs"
	"sales-order-backend/internal/config"
	"sales-order-backend/internal/database"
	"sales-order-backend/internal/logging"
	"sales-order-backend/internal/memstore"
	"sales-order-backend/internal/middleware"
	"sales-order-backend/internal/seed"
	"sales-order-backend/internal/server"
	"sales-order-backend/internal/services"
	"sales-order-backend/internal/store"
)

// app is the state shared by every subcommand, built in PersistentPreRunE.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var seedOnStart bool

	root := &cobra.Command{
		Use:           "sales-order-backend",
		Short:         "Sales order API server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), seedOnStart)
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), seedOnStart)
		},
	}
	serve.Flags().BoolVar(&seedOnStart, "seed", false, "load the sample order before serving")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.migrate(cmd.Context())
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample order into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.seed(cmd.Context())
		},
	}

	root.AddCommand(serve, migrate, seedCmd)
	return root
}

// openStore returns the configured backend. Postgres is migrated first.
func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.cfg.StoreDriver == config.DriverMemory {
		a.logger.Info("using in-memory store")
		return memstore.New().Store(), nil
	}

	db, err := database.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return store.Store{}, err
	}
	if err := database.NewMigrator(db, a.logger).Run(ctx); err != nil {
		_ = db.Close()
		return store.Store{}, fmt.Errorf("migration failed: %w", err)
	}
	a.logger.Info("using postgres store")
	return database.NewStore(db), nil
}

func (a *app) serve(ctx context.Context, seedOnStart bool) error {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if a.cfg.BaseURL != "" {
		if baseURL, err := url.Parse(a.cfg.BaseURL); err == nil && baseURL.Host != "" {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := services.New(st, a.logger)
	if seedOnStart {
		if _, err := seed.Run(ctx, svc.Orders); err != nil {
			return err
		}
	}

	stop := make(chan struct{})
	defer close(stop)
	router := server.NewRouter(server.Deps{
		Config:   a.cfg,
		Store:    st,
		Services: svc,
		Logger:   a.logger,
		Metrics:  middleware.NewMetrics("sales_order"),
		Stop:     stop,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("port", a.cfg.Port), zap.String("store", a.cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func (a *app) migrate(ctx context.Context) error {
	if a.cfg.StoreDriver != config.DriverPostgres {
		return fmt.Errorf("migrate needs STORE_DRIVER=%s", config.DriverPostgres)
	}
	db, err := database.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.NewMigrator(db, a.logger).Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	a.logger.Info("migrations completed successfully")
	return nil
}

func (a *app) seed(ctx context.Context) error {
	if a.cfg.StoreDriver == config.DriverMemory {
		a.logger.Warn("seeding the in-memory store has no lasting effect; use serve --seed instead")
	}
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	created, err := seed.Run(ctx, services.New(st, a.logger).Orders)
	if err != nil {
		return err
	}
	a.logger.Info("seed finished", zap.Bool("created", created))
	return nil
}
