// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides account registration, login, and lookup operations.
// It is stateless per call and safe for concurrent invocation.
type Service struct {
	repo   AccountRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(repo AccountRepository, hasher PasswordHasher) (*Service, error) {
	if repo == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &Service{repo: repo, hasher: hasher}, nil
}

// NewServiceWithLogger creates a Service that logs operation outcomes.
func NewServiceWithLogger(repo AccountRepository, hasher PasswordHasher, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	svc, err := NewService(repo, hasher)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// wrapFailure reports an unexpected failure under the operation's code.
// oops resolves Code() to the deepest code in a wrap chain, so a cause that
// already carries a store-level code is folded into context instead of
// wrapped; the operation code stays authoritative for callers classifying
// the error.
func wrapFailure(code, operation string, err error, kv ...any) error {
	builder := oops.Code(code).With("operation", operation).With(kv...)
	if oopsErr, ok := oops.AsOops(err); ok {
		if causeCode, isString := oopsErr.Code().(string); isString && causeCode != "" {
			return builder.With("cause_code", causeCode).Errorf("%s: %s", operation, err.Error())
		}
	}
	return builder.Wrap(err)
}

// dummyPasswordHash is verified when a login targets an unknown email so the
// response time matches the known-email path. This is NOT a real credential;
// the comparison result is discarded for unknown emails.
//
//nolint:gosec // G101: intentionally fake hash for timing equalization, not a credential.
const dummyPasswordHash = "$2a$10$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// RegisterInput carries validated registration data into the service.
// Role defaults to EMPLOYEE when empty.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Role        Role
	Department  *string
	PhoneNumber *string
}

// Register creates a new account from the input, hashing the plaintext
// password before the first write.
//
// A duplicate email yields ACCOUNT_EMAIL_EXISTS whether it is caught by the
// pre-check or raised by the store's unique index at insert time; the index
// is the authority for the check-then-insert race. Any other failure is
// reported as ACCOUNT_REGISTER_FAILED.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Sanitized, error) {
	email := NormalizeEmail(in.Email)

	_, lookupErr := s.repo.GetByEmail(ctx, email)
	if lookupErr == nil {
		return nil, oops.Code("ACCOUNT_EMAIL_EXISTS").
			With("email", email).
			Wrap(ErrEmailExists)
	}
	if !errors.Is(lookupErr, ErrNotFound) {
		return nil, wrapFailure("ACCOUNT_REGISTER_FAILED", "get account by email", lookupErr)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, wrapFailure("ACCOUNT_REGISTER_FAILED", "hash password", err)
	}

	acct, err := NewAccount(in.FirstName, in.LastName, email, hash, in.Role)
	if err != nil {
		return nil, wrapFailure("ACCOUNT_REGISTER_FAILED", "build account", err)
	}
	acct.Department = in.Department
	acct.PhoneNumber = in.PhoneNumber

	if err := s.repo.Create(ctx, acct); err != nil {
		// Lost the race between pre-check and insert: the unique index
		// resolved it, classify identically to the pre-check hit.
		if errors.Is(err, ErrEmailExists) {
			return nil, oops.Code("ACCOUNT_EMAIL_EXISTS").
				With("email", email).
				Wrap(err)
		}
		return nil, wrapFailure("ACCOUNT_REGISTER_FAILED", "insert account", err)
	}

	if s.logger != nil {
		s.logger.Info("account registered",
			"account_id", acct.ID.String(),
			"email", acct.Email,
			"role", string(acct.Role))
	}

	sanitized := acct.Sanitize()
	return &sanitized, nil
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Account   Sanitized `json:"account"`
	Timestamp time.Time `json:"timestamp"`
}

// Login authenticates an account by email and plaintext password.
//
// Unknown email and wrong password both yield AUTH_INVALID_CREDENTIALS with
// no distinguishing detail; a dummy hash is verified on the unknown-email
// path so timing does not leak account existence. A known but inactive
// account yields ACCOUNT_DISABLED. Success records the login time through
// an explicit read-modify-write of the stored record.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acct, lookupErr := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Still verify against the dummy hash to keep response time
			// consistent with the known-email path.
			_, _ = s.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // result discarded
			return nil, s.invalidCredentials(email)
		}
		return nil, wrapFailure("AUTH_LOGIN_FAILED", "get account by email", lookupErr)
	}

	if !acct.IsActive {
		if s.logger != nil {
			s.logger.Warn("login rejected for disabled account", "account_id", acct.ID.String())
		}
		return nil, oops.Code("ACCOUNT_DISABLED").
			Errorf("account is disabled, contact an administrator")
	}

	valid, err := s.hasher.Verify(password, acct.PasswordHash)
	if err != nil {
		return nil, wrapFailure("AUTH_LOGIN_FAILED", "verify password", err)
	}
	if !valid {
		return nil, s.invalidCredentials(email)
	}

	// Explicit read-modify-write: mutate a copy and hand the whole record
	// to the store rather than patching in place.
	now := time.Now().UTC()
	updated := *acct
	updated.LastLogin = &now
	updated.UpdatedAt = now
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, wrapFailure("AUTH_LOGIN_FAILED", "record last login", err)
	}

	if s.logger != nil {
		s.logger.Info("login succeeded", "account_id", acct.ID.String())
	}

	return &LoginResult{Account: updated.Sanitize(), Timestamp: now}, nil
}

func (s *Service) invalidCredentials(email string) error {
	if s.logger != nil {
		s.logger.Warn("login failed", "email", NormalizeEmail(email))
	}
	return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
}

// List returns every account, sanitized.
func (s *Service) List(ctx context.Context) ([]Sanitized, error) {
	accts, err := s.repo.List(ctx)
	if err != nil {
		return nil, wrapFailure("ACCOUNT_LIST_FAILED", "list accounts", err)
	}

	out := make([]Sanitized, 0, len(accts))
	for _, a := range accts {
		out = append(out, a.Sanitize())
	}
	return out, nil
}

// GetByID returns a single sanitized account.
func (s *Service) GetByID(ctx context.Context, id ulid.ULID) (*Sanitized, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("ACCOUNT_NOT_FOUND").
				With("id", id.String()).
				Wrap(err)
		}
		return nil, wrapFailure("ACCOUNT_GET_FAILED", "get account by id", err, "id", id.String())
	}

	sanitized := acct.Sanitize()
	return &sanitized, nil
}
