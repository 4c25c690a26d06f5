// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk/internal/account"
	"github.com/crewdesk/crewdesk/internal/observability"
)

type fakePool struct {
	pingErr error
	closed  bool
}

func (p *fakePool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (p *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (p *fakePool) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (p *fakePool) Ping(context.Context) error { return p.pingErr }

func (p *fakePool) Close() { p.closed = true }

type fakeObsServer struct {
	startErr error
	serveErr error

	mu      sync.Mutex
	errCh   chan error
	stopped bool
}

func (s *fakeObsServer) Start() (<-chan error, error) {
	if s.startErr != nil {
		return nil, s.startErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errCh = make(chan error, 1)
	if s.serveErr != nil {
		s.errCh <- s.serveErr
	}
	return s.errCh, nil
}

func (s *fakeObsServer) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		if s.errCh != nil {
			close(s.errCh)
		}
	}
	return nil
}

func (s *fakeObsServer) Addr() string { return "127.0.0.1:9100" }

func (s *fakeObsServer) Metrics() *observability.Metrics { return nil }

type fakeAPIServer struct {
	listenErr error

	once     sync.Once
	shutdown chan struct{}
	stopped  bool
}

func newFakeAPIServer(listenErr error) *fakeAPIServer {
	return &fakeAPIServer{listenErr: listenErr, shutdown: make(chan struct{})}
}

func (s *fakeAPIServer) Listen(string) error {
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.shutdown
	return nil
}

func (s *fakeAPIServer) Shutdown(context.Context) error {
	s.once.Do(func() {
		s.stopped = true
		close(s.shutdown)
	})
	return nil
}

func validServeConfig() *serveConfig {
	return &serveConfig{
		httpAddr:    "127.0.0.1:0",
		metricsAddr: "127.0.0.1:0",
		logFormat:   "text",
		databaseURL: "postgres://localhost/crewdesk_test",
	}
}

func fakeDeps(pool *fakePool, obs *fakeObsServer, api *fakeAPIServer) *ServeDeps {
	return &ServeDeps{
		PoolFactory: func(context.Context, string) (Pool, error) {
			return pool, nil
		},
		ObservabilityServerFactory: func(string, observability.ReadinessChecker) ObservabilityServer {
			return obs
		},
		APIServerFactory: func(*account.Service, *observability.Metrics, *slog.Logger) (APIServer, error) {
			return api, nil
		},
	}
}

func newServeTestCmd() (*cobra.Command, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	return cmd, buf
}

func TestRunServe_InvalidConfig(t *testing.T) {
	cfg := validServeConfig()
	cfg.logFormat = "xml"

	cmd, _ := newServeTestCmd()
	err := runServeWithDeps(t.Context(), cfg, cmd, fakeDeps(&fakePool{}, &fakeObsServer{}, newFakeAPIServer(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestRunServe_PoolFactoryError(t *testing.T) {
	deps := fakeDeps(&fakePool{}, &fakeObsServer{}, newFakeAPIServer(nil))
	deps.PoolFactory = func(context.Context, string) (Pool, error) {
		return nil, errors.New("connection refused")
	}

	cmd, _ := newServeTestCmd()
	err := runServeWithDeps(t.Context(), validServeConfig(), cmd, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestRunServe_ObservabilityStartError(t *testing.T) {
	pool := &fakePool{}
	obs := &fakeObsServer{startErr: errors.New("address in use")}

	cmd, _ := newServeTestCmd()
	err := runServeWithDeps(t.Context(), validServeConfig(), cmd, fakeDeps(pool, obs, newFakeAPIServer(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start observability server")
	assert.True(t, pool.closed, "Pool should be closed on failed start")
}

func TestRunServe_APIServerFactoryError(t *testing.T) {
	deps := fakeDeps(&fakePool{}, &fakeObsServer{}, newFakeAPIServer(nil))
	deps.APIServerFactory = func(*account.Service, *observability.Metrics, *slog.Logger) (APIServer, error) {
		return nil, errors.New("bad server config")
	}

	cmd, _ := newServeTestCmd()
	err := runServeWithDeps(t.Context(), validServeConfig(), cmd, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create API server")
}

func TestRunServe_ListenErrorTriggersShutdown(t *testing.T) {
	pool := &fakePool{}
	obs := &fakeObsServer{}
	api := newFakeAPIServer(errors.New("listen tcp: address already in use"))

	cmd, _ := newServeTestCmd()
	err := runServeWithDeps(t.Context(), validServeConfig(), cmd, fakeDeps(pool, obs, api))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server error")
	assert.True(t, obs.stopped, "Observability server should be stopped")
	assert.True(t, pool.closed, "Pool should be closed")
}

func TestRunServe_ContextCancelShutsDownCleanly(t *testing.T) {
	pool := &fakePool{}
	obs := &fakeObsServer{}
	api := newFakeAPIServer(nil)

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(50*time.Millisecond, cancel)

	cmd, buf := newServeTestCmd()
	err := runServeWithDeps(ctx, validServeConfig(), cmd, fakeDeps(pool, obs, api))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Account service started")
	assert.True(t, api.stopped, "API server should be shut down")
	assert.True(t, obs.stopped, "Observability server should be stopped")
	assert.True(t, pool.closed, "Pool should be closed")
}

func TestRunServe_ObservabilityErrorTriggersShutdown(t *testing.T) {
	pool := &fakePool{}
	obs := &fakeObsServer{serveErr: errors.New("metrics listener failed")}
	api := newFakeAPIServer(nil)

	cmd, _ := newServeTestCmd()
	// The buffered error cancels the run context via the monitor goroutine,
	// which counts as a clean shutdown rather than a fatal error.
	err := runServeWithDeps(t.Context(), validServeConfig(), cmd, fakeDeps(pool, obs, api))
	require.NoError(t, err)
	assert.True(t, api.stopped, "API server should be shut down")
}

func TestRunServe_MetricsDisabled(t *testing.T) {
	pool := &fakePool{}
	api := newFakeAPIServer(nil)

	obsFactoryCalled := false
	deps := fakeDeps(pool, &fakeObsServer{}, api)
	deps.ObservabilityServerFactory = func(string, observability.ReadinessChecker) ObservabilityServer {
		obsFactoryCalled = true
		return &fakeObsServer{}
	}

	cfg := validServeConfig()
	cfg.metricsAddr = ""

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(50*time.Millisecond, cancel)

	cmd, _ := newServeTestCmd()
	err := runServeWithDeps(ctx, cfg, cmd, deps)
	require.NoError(t, err)
	assert.False(t, obsFactoryCalled, "Observability factory should not run when metrics are disabled")
}
