// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

// Package mocks provides testify mocks for the account package interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/crewdesk/crewdesk/internal/account"
)

// MockAccountRepository is a mock implementation of account.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a new repository mock whose expectations
// are asserted on test cleanup.
func NewMockAccountRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks account.AccountRepository.Create.
func (m *MockAccountRepository) Create(ctx context.Context, acct *account.Account) error {
	ret := m.Called(ctx, acct)
	return ret.Error(0)
}

// GetByID mocks account.AccountRepository.GetByID.
func (m *MockAccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*account.Account, error) {
	ret := m.Called(ctx, id)
	var r0 *account.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*account.Account)
	}
	return r0, ret.Error(1)
}

// GetByEmail mocks account.AccountRepository.GetByEmail.
func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	ret := m.Called(ctx, email)
	var r0 *account.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*account.Account)
	}
	return r0, ret.Error(1)
}

// Update mocks account.AccountRepository.Update.
func (m *MockAccountRepository) Update(ctx context.Context, acct *account.Account) error {
	ret := m.Called(ctx, acct)
	return ret.Error(0)
}

// List mocks account.AccountRepository.List.
func (m *MockAccountRepository) List(ctx context.Context) ([]*account.Account, error) {
	ret := m.Called(ctx)
	var r0 []*account.Account
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*account.Account)
	}
	return r0, ret.Error(1)
}

// Compile-time interface check.
var _ account.AccountRepository = (*MockAccountRepository)(nil)
