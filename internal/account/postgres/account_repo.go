// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

// Package postgres implements account persistence using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/crewdesk/crewdesk/internal/account"
)

// dbIface is the subset of pgxpool.Pool used by the repository. Both
// *pgxpool.Pool and pgxmock.PgxPoolIface satisfy it.
type dbIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements account.AccountRepository using PostgreSQL.
// The unique index on lower(email) is the authoritative guard against
// concurrent duplicate registrations.
type AccountRepository struct {
	db dbIface
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db dbIface) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create stores a new account, assigning its ID and timestamps.
func (r *AccountRepository) Create(ctx context.Context, acct *account.Account) error {
	if acct.ID == (ulid.ULID{}) {
		acct.ID = ulid.Make()
	}
	now := time.Now().UTC()
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = now
		acct.UpdatedAt = now
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (
			id, first_name, last_name, email, password_hash,
			role, is_active, department, phone_number, profile_picture,
			last_login, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		acct.ID.String(),
		acct.FirstName,
		acct.LastName,
		acct.Email,
		acct.PasswordHash,
		string(acct.Role),
		acct.IsActive,
		acct.Department,
		acct.PhoneNumber,
		acct.ProfilePicture,
		acct.LastLogin,
		acct.CreatedAt,
		acct.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_EMAIL_EXISTS").
				With("email", acct.Email).
				Wrap(account.ErrEmailExists)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("email", acct.Email).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*account.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, password_hash,
		       role, is_active, department, phone_number, profile_picture,
		       last_login, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`, id.String())

	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return acct, nil
}

// GetByEmail retrieves an account by email (case-insensitive).
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, password_hash,
		       role, is_active, department, phone_number, profile_picture,
		       last_login, created_at, updated_at
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("email", email).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_EMAIL_FAILED").
			With("operation", "get account by email").
			With("email", email).
			Wrap(err)
	}
	return acct, nil
}

// Update persists mutations to an existing account.
func (r *AccountRepository) Update(ctx context.Context, acct *account.Account) error {
	result, err := r.db.Exec(ctx, `
		UPDATE accounts SET
			first_name = $2,
			last_name = $3,
			email = $4,
			password_hash = $5,
			role = $6,
			is_active = $7,
			department = $8,
			phone_number = $9,
			profile_picture = $10,
			last_login = $11,
			updated_at = $12
		WHERE id = $1
	`,
		acct.ID.String(),
		acct.FirstName,
		acct.LastName,
		acct.Email,
		acct.PasswordHash,
		string(acct.Role),
		acct.IsActive,
		acct.Department,
		acct.PhoneNumber,
		acct.ProfilePicture,
		acct.LastLogin,
		acct.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "update account").
			With("id", acct.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", acct.ID.String()).
			Wrap(account.ErrNotFound)
	}
	return nil
}

// List retrieves all accounts, oldest first.
func (r *AccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, first_name, last_name, email, password_hash,
		       role, is_active, department, phone_number, profile_picture,
		       last_login, created_at, updated_at
		FROM accounts
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("operation", "list accounts").
			Wrap(err)
	}
	defer rows.Close()

	var accts []*account.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_LIST_FAILED").
				With("operation", "scan account row").
				Wrap(err)
		}
		accts = append(accts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("operation", "iterate accounts").
			Wrap(err)
	}
	return accts, nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		idStr          string
		firstName      string
		lastName       string
		email          string
		passwordHash   string
		role           string
		isActive       bool
		department     *string
		phoneNumber    *string
		profilePicture *string
		lastLogin      *time.Time
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(
		&idStr,
		&firstName,
		&lastName,
		&email,
		&passwordHash,
		&role,
		&isActive,
		&department,
		&phoneNumber,
		&profilePicture,
		&lastLogin,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("operation", "parse account id").
			With("id", idStr).
			Wrap(err)
	}

	return &account.Account{
		ID:             id,
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		PasswordHash:   passwordHash,
		Role:           account.Role(role),
		IsActive:       isActive,
		Department:     department,
		PhoneNumber:    phoneNumber,
		ProfilePicture: profilePicture,
		LastLogin:      lastLogin,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// Compile-time interface check.
var _ account.AccountRepository = (*AccountRepository)(nil)
