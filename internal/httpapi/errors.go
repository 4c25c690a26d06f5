// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package httpapi

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/crewdesk/crewdesk/pkg/errutil"
)

// respondError maps a classified service error to an HTTP response.
// Generic operation failures map to 400, matching the upstream behavior of
// reporting pipeline errors as bad requests; anything unrecognized is a 500.
func (s *Server) respondError(c fiber.Ctx, err error) error {
	code := errutil.Code(err)
	status := statusForCode(code)

	if status >= http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
		// No internals leak outward.
		return c.Status(status).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func statusForCode(code string) int {
	switch code {
	case "ACCOUNT_EMAIL_EXISTS":
		return http.StatusConflict
	case "AUTH_INVALID_CREDENTIALS", "ACCOUNT_DISABLED":
		return http.StatusUnauthorized
	case "ACCOUNT_NOT_FOUND":
		return http.StatusNotFound
	case "ACCOUNT_REGISTER_FAILED", "AUTH_LOGIN_FAILED":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// recordRegistration tracks registration outcomes; err nil means success.
func (s *Server) recordRegistration(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordRegistration(outcomeLabel(err, map[string]string{
		"ACCOUNT_EMAIL_EXISTS": "conflict",
	}))
}

// recordLogin tracks login outcomes; err nil means success.
func (s *Server) recordLogin(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordLogin(outcomeLabel(err, map[string]string{
		"AUTH_INVALID_CREDENTIALS": "invalid",
		"ACCOUNT_DISABLED":         "disabled",
	}))
}

func outcomeLabel(err error, classified map[string]string) string {
	if err == nil {
		return "success"
	}
	if label, ok := classified[errutil.Code(err)]; ok {
		return label
	}
	return "error"
}
