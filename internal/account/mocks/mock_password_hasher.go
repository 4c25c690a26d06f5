// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/crewdesk/crewdesk/internal/account"
)

// MockPasswordHasher is a mock implementation of account.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a new hasher mock whose expectations are
// asserted on test cleanup.
func NewMockPasswordHasher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Hash mocks account.PasswordHasher.Hash.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	ret := m.Called(password)
	return ret.String(0), ret.Error(1)
}

// Verify mocks account.PasswordHasher.Verify.
func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	ret := m.Called(password, hash)
	return ret.Bool(0), ret.Error(1)
}

// Compile-time interface check.
var _ account.PasswordHasher = (*MockPasswordHasher)(nil)
