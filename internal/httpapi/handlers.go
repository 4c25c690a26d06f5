// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/oklog/ulid/v2"

	"github.com/crewdesk/crewdesk/internal/account"
)

// registerRequest is the wire shape of a registration request.
type registerRequest struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	Department  *string `json:"department"`
	PhoneNumber *string `json:"phoneNumber"`
}

// loginRequest is the wire shape of a login request.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates a new user account.
// POST /users/register
func (s *Server) handleRegister(c fiber.Ctx) error {
	var req registerRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	in := account.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		Role:        account.Role(req.Role),
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
	}

	if violations := account.ValidateRegisterInput(in); len(violations) > 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":      "validation failed",
			"violations": violations,
		})
	}

	user, err := s.svc.Register(c.Context(), in)
	if err != nil {
		s.recordRegistration(err)
		return s.respondError(c, err)
	}
	s.recordRegistration(nil)

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "user created successfully",
		"user":    user,
	})
}

// handleLogin authenticates a user.
// POST /users/login
func (s *Server) handleLogin(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if violations := account.ValidateLoginInput(req.Email, req.Password); len(violations) > 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":      "validation failed",
			"violations": violations,
		})
	}

	result, err := s.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		s.recordLogin(err)
		return s.respondError(c, err)
	}
	s.recordLogin(nil)

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":   "login successful",
		"user":      result.Account,
		"timestamp": result.Timestamp.Format(time.RFC3339),
	})
}

// handleList returns every account, sanitized.
// GET /users
func (s *Server) handleList(c fiber.Ctx) error {
	users, err := s.svc.List(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "users retrieved successfully",
		"data":    users,
		"count":   len(users),
	})
}

// handleGetByID returns a single sanitized account.
// GET /users/:id
func (s *Server) handleGetByID(c fiber.Ctx) error {
	id, err := ulid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "user not found",
			"code":  "ACCOUNT_NOT_FOUND",
		})
	}

	user, svcErr := s.svc.GetByID(c.Context(), id)
	if svcErr != nil {
		return s.respondError(c, svcErr)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "user retrieved successfully",
		"data":    user,
	})
}
