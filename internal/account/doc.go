// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

// Package account implements the credential lifecycle for CrewDesk: account
// registration, login verification, and safe externalization of user records.
//
// # Domain Types
//
// Account is the stored identity and credential record. Create one through
// NewAccount, which validates names, the role, and the normalized email;
// direct struct initialization bypasses validation and may create invalid
// state. Sanitized is the outward view of an Account with the password hash
// stripped; every value that crosses the service boundary is a Sanitized.
//
// # Services
//
// Service coordinates registration and login against an AccountRepository
// and a PasswordHasher. It holds no state of its own and is safe for
// concurrent use. Construct it with NewService or NewServiceWithLogger,
// which validate dependencies.
package account
