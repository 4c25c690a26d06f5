// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

// Package httpapi exposes the account service over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/samber/oops"

	"github.com/crewdesk/crewdesk/internal/account"
	"github.com/crewdesk/crewdesk/internal/observability"
)

// Server wraps a Fiber application serving the user-account endpoints.
type Server struct {
	app     *fiber.App
	svc     *account.Service
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewServer creates the HTTP server and registers all routes.
// metrics may be nil when observability is disabled.
func NewServer(svc *account.Service, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, oops.Errorf("account service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		app:     fiber.New(),
		svc:     svc,
		metrics: metrics,
		logger:  logger,
	}

	if s.metrics != nil {
		s.app.Use(s.countRequests)
	}

	users := s.app.Group("/users")
	users.Post("/register", s.handleRegister)
	users.Post("/login", s.handleLogin)
	users.Get("/", s.handleList)
	users.Get("/:id", s.handleGetByID)

	return s, nil
}

// App returns the underlying Fiber application, primarily for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	if err := s.app.Listen(addr); err != nil {
		return oops.With("addr", addr).Wrap(err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return oops.With("operation", "shutdown http server").Wrap(err)
	}
	return nil
}

// countRequests records per-route request counts after the handler runs.
func (s *Server) countRequests(c fiber.Ctx) error {
	err := c.Next()
	route := c.Route().Path
	status := strconv.Itoa(c.Response().StatusCode())
	s.metrics.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	return err
}
