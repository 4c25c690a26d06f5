// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package errutil

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requireOops fails the test unless err carries an oops error somewhere in
// its chain, and returns it.
func requireOops(t *testing.T, err error) oops.OopsError {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok, "expected an oops error in the chain, got %T", err)
	return oopsErr
}

// AssertErrorCode asserts that err carries the given oops code.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	requireOops(t, err)
	assert.Equal(t, code, Code(err))
}

// AssertErrorContext asserts that err carries the given oops context
// key/value pair.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	ctx := requireOops(t, err).Context()
	require.Contains(t, ctx, key)
	assert.Equal(t, value, ctx[key])
}

// AssertClassified asserts that err both matches the sentinel via errors.Is
// and carries the given oops code. Classified domain errors satisfy both at
// once, so callers can branch on either.
func AssertClassified(t *testing.T, err error, sentinel error, code string) {
	t.Helper()
	require.True(t, errors.Is(err, sentinel), "expected error chain to match %v, got %v", sentinel, err)
	AssertErrorCode(t, err, code)
}
