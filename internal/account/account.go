// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package account

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role is the closed set of account roles.
type Role string

// Valid account roles.
const (
	RoleHR       Role = "HR"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// DefaultRole is assigned when registration does not specify a role.
const DefaultRole = RoleEmployee

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleHR, RoleManager, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}

// ParseRole validates a role string. An empty string yields DefaultRole.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return DefaultRole, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", oops.Code("ACCOUNT_INVALID_ROLE").
			With("role", s).
			Errorf("invalid role %q, accepted values: HR, MANAGER, EMPLOYEE, ADMIN", s)
	}
	return r, nil
}

// Account represents a stored user identity and credential record.
//
// ID, CreatedAt and UpdatedAt are assigned by the repository on insert;
// leave them zero when constructing a draft for Create.
type Account struct {
	ID             ulid.ULID
	FirstName      string
	LastName       string
	Email          string
	PasswordHash   string
	Role           Role
	IsActive       bool
	Department     *string
	PhoneNumber    *string
	ProfilePicture *string
	LastLogin      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NormalizeEmail lowercases an email address for storage and lookup.
// Email uniqueness is case-insensitive throughout.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAccount creates an account draft with a validated role and normalized
// email. The password hash must already be computed; this constructor never
// sees a plaintext password.
func NewAccount(firstName, lastName, email, passwordHash string, role Role) (*Account, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, oops.Code("ACCOUNT_INVALID_NAME").Errorf("first name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, oops.Code("ACCOUNT_INVALID_NAME").Errorf("last name cannot be empty")
	}
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, oops.Code("ACCOUNT_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if role == "" {
		role = DefaultRole
	}
	if !role.Valid() {
		return nil, oops.Code("ACCOUNT_INVALID_ROLE").
			With("role", string(role)).
			Errorf("invalid role %q", string(role))
	}

	return &Account{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        normalized,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}, nil
}

// Sanitized is the outward representation of an Account. It carries every
// attribute except the password hash and never round-trips a secret.
type Sanitized struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	IsActive       bool       `json:"isActive"`
	Department     *string    `json:"department,omitempty"`
	PhoneNumber    *string    `json:"phoneNumber,omitempty"`
	ProfilePicture *string    `json:"profilePicture,omitempty"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Sanitize strips the password hash from the outward representation while
// preserving every other attribute. It is pure: the receiver is not mutated
// and repeated application yields the same view.
func (a *Account) Sanitize() Sanitized {
	return Sanitized{
		ID:             a.ID.String(),
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Email:          a.Email,
		Role:           a.Role,
		IsActive:       a.IsActive,
		Department:     a.Department,
		PhoneNumber:    a.PhoneNumber,
		ProfilePicture: a.ProfilePicture,
		LastLogin:      a.LastLogin,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountRepository manages account persistence. It is the single point of
// cross-call coordination: the storage layer's unique index on the
// lowercased email is the authoritative duplicate guard.
type AccountRepository interface {
	// Create stores a new account, assigning its ID and timestamps.
	// Returns an error wrapping ErrEmailExists when the unique email
	// index is violated.
	Create(ctx context.Context, acct *Account) error

	// GetByID retrieves an account by ID.
	// Returns an error wrapping ErrNotFound when absent.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByEmail retrieves an account by email (case-insensitive).
	// Returns an error wrapping ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// Update persists mutations to an existing account.
	// Returns an error wrapping ErrNotFound when the record no longer exists.
	Update(ctx context.Context, acct *Account) error

	// List retrieves all accounts, oldest first.
	List(ctx context.Context) ([]*Account, error)
}
