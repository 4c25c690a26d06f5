// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

// Package accounttest provides test doubles for the account package.
package accounttest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/crewdesk/crewdesk/internal/account"
)

// Repository is an in-memory account.AccountRepository. It enforces the same
// unique-email semantics as the PostgreSQL implementation, including under
// concurrent Create calls, which makes it suitable for exercising the
// check-then-insert race in service tests.
type Repository struct {
	mu     sync.Mutex
	byID   map[ulid.ULID]*account.Account
	emails map[string]ulid.ULID
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		byID:   make(map[ulid.ULID]*account.Account),
		emails: make(map[string]ulid.ULID),
	}
}

// Create stores a new account, assigning ID and timestamps like the real
// store. Returns account.ErrEmailExists when the email is taken.
func (r *Repository) Create(_ context.Context, acct *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := account.NormalizeEmail(acct.Email)
	if _, taken := r.emails[email]; taken {
		return account.ErrEmailExists
	}

	if acct.ID == (ulid.ULID{}) {
		acct.ID = ulid.Make()
	}
	now := time.Now().UTC()
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = now
		acct.UpdatedAt = now
	}

	stored := *acct
	r.byID[stored.ID] = &stored
	r.emails[email] = stored.ID
	return nil
}

// GetByID retrieves a copy of the account with the given ID.
func (r *Repository) GetByID(_ context.Context, id ulid.ULID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	cp := *acct
	return &cp, nil
}

// GetByEmail retrieves a copy of the account with the given email,
// case-insensitively.
func (r *Repository) GetByEmail(_ context.Context, email string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.emails[account.NormalizeEmail(email)]
	if !ok {
		return nil, account.ErrNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

// Update replaces the stored record for an existing account.
func (r *Repository) Update(_ context.Context, acct *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[acct.ID]; !ok {
		return account.ErrNotFound
	}
	stored := *acct
	r.byID[stored.ID] = &stored
	return nil
}

// List returns copies of all stored accounts, oldest first.
func (r *Repository) List(_ context.Context) ([]*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*account.Account, 0, len(r.byID))
	for _, acct := range r.byID {
		cp := *acct
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Compare(out[j].ID) < 0
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Compile-time interface check.
var _ account.AccountRepository = (*Repository)(nil)
