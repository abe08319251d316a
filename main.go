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
	"github.com/spf13/cobra"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/config"
	router "github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/http"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/http/handlers"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/identity"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/logging"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/ratelimit"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	serve := func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), configPath, addr)
	}

	root := &cobra.Command{
		Use:           "blt-api",
		Short:         "OWASP BLT read API",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          serve,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default $"+config.ConfigPathEnvVar+")")
	root.PersistentFlags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  serve,
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the API version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), handlers.APIName, handlers.APIVersion)
		},
	})
	return root
}

func run(ctx context.Context, configPath, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	} else if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	sqlDB, err := config.OpenDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	db := store.New(sqlDB, store.BreakerConfig{
		Failures: cfg.Database.BreakerFailures,
		Timeout:  cfg.Database.BreakerTimeout,
	})
	defer db.Close()

	r := router.NewRouter(router.Deps{
		Config:   cfg,
		Handlers: handlers.New(db),
		Limiter:  ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
		Resolver: identity.NewResolver(repositories.TokenRepository{DB: db}),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Str("environment", cfg.Server.Environment).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logging.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.Info().Msg("server stopped")
	return nil
}
