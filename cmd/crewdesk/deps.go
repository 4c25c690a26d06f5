// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/crewdesk/crewdesk/internal/account"
	"github.com/crewdesk/crewdesk/internal/observability"
	"github.com/crewdesk/crewdesk/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolFactory creates a database pool from a connection string.
	// Default: store.NewPool
	PoolFactory func(ctx context.Context, dsn string) (Pool, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// APIServerFactory creates the HTTP API server.
	// Default: httpapi.NewServer
	APIServerFactory func(svc *account.Service, metrics *observability.Metrics, logger *slog.Logger) (APIServer, error)
}

// Pool wraps the pgxpool.Pool methods used by serve.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

// APIServer wraps the methods used from httpapi.Server.
type APIServer interface {
	Listen(addr string) error
	Shutdown(ctx context.Context) error
}

// defaultPoolFactory adapts store.NewPool to the Pool interface.
func defaultPoolFactory(ctx context.Context, dsn string) (Pool, error) {
	return store.NewPool(ctx, dsn)
}
