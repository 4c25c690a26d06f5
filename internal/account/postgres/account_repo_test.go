// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk/internal/account"
	"github.com/crewdesk/crewdesk/pkg/errutil"
)

var accountColumns = []string{
	"id", "first_name", "last_name", "email", "password_hash",
	"role", "is_active", "department", "phone_number", "profile_picture",
	"last_login", "created_at", "updated_at",
}

func accountRow(id ulid.ULID, email string, createdAt time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(accountColumns).
		AddRow(id.String(), "Ada", "Lovelace", email, "$2a$10$hash",
			"EMPLOYEE", true, (*string)(nil), (*string)(nil), (*string)(nil),
			(*time.Time)(nil), createdAt, createdAt)
}

func TestAccountRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
		wantCode  string
		wantIs    error
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(pgxmock.AnyArg(), "Ada", "Lovelace", "ada@example.com", "$2a$10$hash",
						"EMPLOYEE", true, (*string)(nil), (*string)(nil), (*string)(nil),
						(*time.Time)(nil), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation maps to duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WillReturnError(&pgconn.PgError{
						Code:           pgerrcode.UniqueViolation,
						ConstraintName: "accounts_email_unique",
					})
			},
			wantErr:  true,
			wantCode: "ACCOUNT_EMAIL_EXISTS",
			wantIs:   account.ErrEmailExists,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr:  true,
			wantCode: "ACCOUNT_CREATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewAccountRepository(mock)
			acct, err := account.NewAccount("Ada", "Lovelace", "ada@example.com", "$2a$10$hash", "")
			require.NoError(t, err)

			createErr := repo.Create(context.Background(), acct)

			if tt.wantErr {
				require.Error(t, createErr)
				errutil.AssertErrorCode(t, createErr, tt.wantCode)
				if tt.wantIs != nil {
					assert.ErrorIs(t, createErr, tt.wantIs)
				}
			} else {
				require.NoError(t, createErr)
				// Create assigns ID and timestamps on the draft
				assert.NotEqual(t, ulid.ULID{}, acct.ID)
				assert.False(t, acct.CreatedAt.IsZero())
				assert.Equal(t, acct.CreatedAt, acct.UpdatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}

	t.Run("preserves a caller-assigned ID", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`INSERT INTO accounts`).
			WithArgs(id.String(), "Ada", "Lovelace", "ada@example.com", "$2a$10$hash",
				"EMPLOYEE", true, (*string)(nil), (*string)(nil), (*string)(nil),
				(*time.Time)(nil), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewAccountRepository(mock)
		acct, err := account.NewAccount("Ada", "Lovelace", "ada@example.com", "$2a$10$hash", "")
		require.NoError(t, err)
		acct.ID = id

		require.NoError(t, repo.Create(context.Background(), acct))
		assert.Equal(t, id, acct.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	id := ulid.Make()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
		wantCode  string
		wantIs    error
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM accounts`).
					WithArgs(id.String()).
					WillReturnRows(accountRow(id, "ada@example.com", createdAt))
			},
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM accounts`).
					WithArgs(id.String()).
					WillReturnRows(pgxmock.NewRows(accountColumns))
			},
			wantErr:  true,
			wantCode: "ACCOUNT_NOT_FOUND",
			wantIs:   account.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM accounts`).
					WithArgs(id.String()).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr:  true,
			wantCode: "ACCOUNT_GET_BY_ID_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewAccountRepository(mock)
			got, err := repo.GetByID(context.Background(), id)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				if tt.wantIs != nil {
					assert.ErrorIs(t, err, tt.wantIs)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, got.ID)
				assert.Equal(t, "ada@example.com", got.Email)
				assert.Equal(t, account.RoleEmployee, got.Role)
				assert.True(t, got.IsActive)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	id := ulid.Make()
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM accounts\s+WHERE LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("ada@example.com").
			WillReturnRows(accountRow(id, "ada@example.com", createdAt))

		repo := NewAccountRepository(mock)
		got, err := repo.GetByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM accounts`).
			WithArgs("missing@example.com").
			WillReturnRows(pgxmock.NewRows(accountColumns))

		repo := NewAccountRepository(mock)
		got, err := repo.GetByEmail(context.Background(), "missing@example.com")
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, account.ErrNotFound)
		errutil.AssertErrorCode(t, err, "ACCOUNT_NOT_FOUND")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed stored id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows(accountColumns).
			AddRow("not-a-ulid", "Ada", "Lovelace", "ada@example.com", "$2a$10$hash",
				"EMPLOYEE", true, (*string)(nil), (*string)(nil), (*string)(nil),
				(*time.Time)(nil), createdAt, createdAt)
		mock.ExpectQuery(`FROM accounts`).
			WithArgs("ada@example.com").
			WillReturnRows(rows)

		repo := NewAccountRepository(mock)
		got, err := repo.GetByEmail(context.Background(), "ada@example.com")
		require.Error(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_Update(t *testing.T) {
	acct := &account.Account{
		ID:           ulid.Make(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         account.RoleEmployee,
		IsActive:     true,
		UpdatedAt:    time.Now().UTC(),
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
		wantCode  string
		wantIs    error
	}{
		{
			name: "successful update",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE accounts SET`).
					WithArgs(acct.ID.String(), "Ada", "Lovelace", "ada@example.com", "$2a$10$hash",
						"EMPLOYEE", true, (*string)(nil), (*string)(nil), (*string)(nil),
						(*time.Time)(nil), acct.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "no rows affected means record is gone",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE accounts SET`).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr:  true,
			wantCode: "ACCOUNT_NOT_FOUND",
			wantIs:   account.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE accounts SET`).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr:  true,
			wantCode: "ACCOUNT_UPDATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewAccountRepository(mock)
			updateErr := repo.Update(context.Background(), acct)

			if tt.wantErr {
				require.Error(t, updateErr)
				errutil.AssertErrorCode(t, updateErr, tt.wantCode)
				if tt.wantIs != nil {
					assert.ErrorIs(t, updateErr, tt.wantIs)
				}
			} else {
				require.NoError(t, updateErr)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccountRepository_List(t *testing.T) {
	t.Run("returns accounts oldest first", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		older := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
		newer := time.Now().UTC().Truncate(time.Microsecond)
		id1, id2 := ulid.Make(), ulid.Make()

		rows := pgxmock.NewRows(accountColumns).
			AddRow(id1.String(), "Ada", "Lovelace", "ada@example.com", "h1",
				"EMPLOYEE", true, (*string)(nil), (*string)(nil), (*string)(nil),
				(*time.Time)(nil), older, older).
			AddRow(id2.String(), "Grace", "Hopper", "grace@example.com", "h2",
				"ADMIN", true, (*string)(nil), (*string)(nil), (*string)(nil),
				(*time.Time)(nil), newer, newer)
		mock.ExpectQuery(`FROM accounts\s+ORDER BY created_at, id`).
			WillReturnRows(rows)

		repo := NewAccountRepository(mock)
		got, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, id1, got[0].ID)
		assert.Equal(t, id2, got[1].ID)
		assert.Equal(t, account.RoleAdmin, got[1].Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for empty table", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM accounts`).
			WillReturnRows(pgxmock.NewRows(accountColumns))

		repo := NewAccountRepository(mock)
		got, err := repo.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM accounts`).
			WillReturnError(errors.New("connection refused"))

		repo := NewAccountRepository(mock)
		got, err := repo.List(context.Background())
		require.Error(t, err)
		assert.Nil(t, got)
		errutil.AssertErrorCode(t, err, "ACCOUNT_LIST_FAILED")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
