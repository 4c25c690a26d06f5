// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CrewDesk Contributors

package account

import (
	"regexp"
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// emailRegex accepts addresses of the shape local@domain.tld without
// attempting full RFC 5322 coverage.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Violation describes a single failed validation rule.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidateRegisterInput checks the shape constraints the HTTP boundary must
// enforce before invoking Register: non-empty names, email syntax, password
// strength, and role membership. It returns every violation found, not just
// the first.
func ValidateRegisterInput(in RegisterInput) []Violation {
	var vs []Violation

	if strings.TrimSpace(in.FirstName) == "" {
		vs = append(vs, Violation{Field: "firstName", Rule: "required", Message: "first name is required"})
	}
	if strings.TrimSpace(in.LastName) == "" {
		vs = append(vs, Violation{Field: "lastName", Rule: "required", Message: "last name is required"})
	}

	vs = append(vs, validateEmail(in.Email)...)
	vs = append(vs, validatePassword(in.Password)...)

	if in.Role != "" && !in.Role.Valid() {
		vs = append(vs, Violation{
			Field:   "role",
			Rule:    "enum",
			Message: "invalid role, accepted values: HR, MANAGER, EMPLOYEE, ADMIN",
		})
	}

	return vs
}

// ValidateLoginInput checks that login credentials are present and the email
// is syntactically plausible.
func ValidateLoginInput(email, password string) []Violation {
	var vs []Violation
	vs = append(vs, validateEmail(email)...)
	if password == "" {
		vs = append(vs, Violation{Field: "password", Rule: "required", Message: "password is required"})
	}
	return vs
}

func validateEmail(email string) []Violation {
	if strings.TrimSpace(email) == "" {
		return []Violation{{Field: "email", Rule: "required", Message: "email is required"}}
	}
	if !emailRegex.MatchString(strings.TrimSpace(email)) {
		return []Violation{{Field: "email", Rule: "email", Message: "invalid email format"}}
	}
	return nil
}

func validatePassword(password string) []Violation {
	var vs []Violation

	if password == "" {
		return []Violation{{Field: "password", Rule: "required", Message: "password is required"}}
	}
	if len(password) < MinPasswordLength {
		vs = append(vs, Violation{
			Field:   "password",
			Rule:    "minlength",
			Message: "password must contain at least 8 characters",
		})
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		vs = append(vs, Violation{
			Field:   "password",
			Rule:    "complexity",
			Message: "password must contain at least one uppercase letter, one lowercase letter and one digit",
		})
	}

	return vs
}
