// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crewdesk/crewdesk/internal/account"
	"github.com/crewdesk/crewdesk/internal/account/postgres"
	"github.com/crewdesk/crewdesk/internal/httpapi"
	"github.com/crewdesk/crewdesk/internal/logging"
	"github.com/crewdesk/crewdesk/internal/observability"
)

// Timeout applied to readiness probe pings and graceful shutdown.
const (
	readinessPingTimeout = 2 * time.Second
	shutdownTimeout      = 5 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the account service HTTP server",
		Long: `Start the account service, serving the user registration and
authentication API over HTTP with optional metrics and health endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadServeConfig(cmd.Flags(), configFile, cfg); err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	cmd.Flags().StringVar(&cfg.httpAddr, "http-addr", defaultHTTPAddr, "HTTP API listen address")
	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().StringVar(&cfg.logFormat, "log-format", defaultLogFormat, "log format (json or text)")
	cmd.Flags().StringVar(&cfg.databaseURL, "database-url", "", "PostgreSQL connection URL (default: DATABASE_URL env)")

	return cmd
}

// runServeWithDeps starts the account service with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *serveConfig, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}

	// Fill in real implementations for anything the caller left nil
	if deps.PoolFactory == nil {
		deps.PoolFactory = defaultPoolFactory
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if deps.APIServerFactory == nil {
		deps.APIServerFactory = func(svc *account.Service, metrics *observability.Metrics, logger *slog.Logger) (APIServer, error) {
			return httpapi.NewServer(svc, metrics, logger)
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.SetDefault("crewdesk", version, cfg.logFormat)

	slog.Info("starting account service",
		"http_addr", cfg.httpAddr,
		"log_format", cfg.logFormat,
	)

	pool, err := deps.PoolFactory(ctx, cfg.databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	slog.Info("connected to database")

	repo := postgres.NewAccountRepository(pool)
	hasher := account.NewBcryptHasher()
	svc, err := account.NewServiceWithLogger(repo, hasher, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create account service: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Metrics/health server is optional; an empty address disables it
	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.metricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.metricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), readinessPingTimeout)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return fmt.Errorf("failed to start observability server: %w", obsErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		metrics = obsServer.Metrics()
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	apiServer, err := deps.APIServerFactory(svc, metrics, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		if serveErr := apiServer.Listen(cfg.httpAddr); serveErr != nil {
			errChan <- serveErr
		}
	}()

	cmd.Println("Account service started")
	slog.Info("account service ready", "http_addr", cfg.httpAddr)

	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case err := <-errChan:
		runErr = fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("error stopping HTTP server", "error", err)
	}

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return runErr
}

// monitorServerErrors cancels the run context when the named server reports
// a fatal error. A closed channel means a clean stop.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
