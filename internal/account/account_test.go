// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package account_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk/crewdesk/internal/account"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    account.Role
		wantErr bool
	}{
		{name: "HR", input: "HR", want: account.RoleHR},
		{name: "manager", input: "MANAGER", want: account.RoleManager},
		{name: "employee", input: "EMPLOYEE", want: account.RoleEmployee},
		{name: "admin", input: "ADMIN", want: account.RoleAdmin},
		{name: "empty defaults to employee", input: "", want: account.DefaultRole},
		{name: "unknown role", input: "WIZARD", wantErr: true},
		{name: "lowercase rejected", input: "admin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := account.ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ada@example.com", "ada@example.com"},
		{"Ada@Example.COM", "ada@example.com"},
		{"  ada@example.com  ", "ada@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, account.NormalizeEmail(tt.input))
	}
}

func TestNewAccount(t *testing.T) {
	t.Run("creates active account with defaults", func(t *testing.T) {
		acct, err := account.NewAccount("Ada", "Lovelace", "Ada@Example.com", "$2a$10$hash", "")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", acct.Email)
		assert.Equal(t, account.RoleEmployee, acct.Role)
		assert.True(t, acct.IsActive)
		// ID and timestamps are assigned by the repository on insert
		assert.Equal(t, ulid.ULID{}, acct.ID)
		assert.True(t, acct.CreatedAt.IsZero())
		assert.True(t, acct.UpdatedAt.IsZero())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name      string
			firstName string
			lastName  string
			email     string
			hash      string
			role      account.Role
		}{
			{name: "empty first name", lastName: "Lovelace", email: "a@b.c", hash: "h"},
			{name: "whitespace first name", firstName: "  ", lastName: "Lovelace", email: "a@b.c", hash: "h"},
			{name: "empty last name", firstName: "Ada", email: "a@b.c", hash: "h"},
			{name: "empty email", firstName: "Ada", lastName: "Lovelace", hash: "h"},
			{name: "empty hash", firstName: "Ada", lastName: "Lovelace", email: "a@b.c"},
			{name: "invalid role", firstName: "Ada", lastName: "Lovelace", email: "a@b.c", hash: "h", role: "WIZARD"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				acct, err := account.NewAccount(tt.firstName, tt.lastName, tt.email, tt.hash, tt.role)
				require.Error(t, err)
				assert.Nil(t, acct)
			})
		}
	})
}

func TestAccount_Sanitize(t *testing.T) {
	department := "Engineering"
	lastLogin := time.Now().UTC()
	acct := &account.Account{
		ID:           ulid.Make(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$verysecret",
		Role:         account.RoleManager,
		IsActive:     true,
		Department:   &department,
		LastLogin:    &lastLogin,
		CreatedAt:    time.Now().Add(-time.Hour),
		UpdatedAt:    time.Now(),
	}

	t.Run("preserves every non-secret attribute", func(t *testing.T) {
		s := acct.Sanitize()
		assert.Equal(t, acct.ID.String(), s.ID)
		assert.Equal(t, acct.FirstName, s.FirstName)
		assert.Equal(t, acct.LastName, s.LastName)
		assert.Equal(t, acct.Email, s.Email)
		assert.Equal(t, acct.Role, s.Role)
		assert.Equal(t, acct.IsActive, s.IsActive)
		assert.Equal(t, acct.Department, s.Department)
		assert.Equal(t, acct.LastLogin, s.LastLogin)
		assert.Equal(t, acct.CreatedAt, s.CreatedAt)
		assert.Equal(t, acct.UpdatedAt, s.UpdatedAt)
	})

	t.Run("does not mutate the account", func(t *testing.T) {
		before := *acct
		_ = acct.Sanitize()
		assert.Equal(t, before, *acct)
	})

	t.Run("repeated application yields the same view", func(t *testing.T) {
		assert.Equal(t, acct.Sanitize(), acct.Sanitize())
	})

	t.Run("serialized form never contains the hash", func(t *testing.T) {
		data, err := json.Marshal(acct.Sanitize())
		require.NoError(t, err)
		assert.NotContains(t, string(data), "verysecret")
		assert.NotContains(t, string(data), "password")
		assert.NotContains(t, string(data), "Password")
	})
}
