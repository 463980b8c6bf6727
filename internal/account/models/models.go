package models

import (
	"net/mail"
	"strings"
	"time"

	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch r {
	case RoleAdmin, RoleMember:
		return r, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "role must be one of ADMIN, MEMBER")
}

// User is a dashboard account. Admins reach the /admin API.
type User struct {
	ID             id.UserID
	OrganizationID *id.OrganizationID
	Email          string
	Name           string
	Role           Role
	CreatedAt      time.Time
}

// UserInput carries the fields of a new user.
type UserInput struct {
	OrganizationID *id.OrganizationID
	Email          string
	Name           string
	Role           Role
}

// NewUser validates in. Emails are stored lower-case; the role defaults to MEMBER.
func NewUser(userID id.UserID, in UserInput, now time.Time) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, dErrors.New(dErrors.CodeValidation, "email must be a valid email")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	role := in.Role
	if role == "" {
		role = RoleMember
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	return &User{
		ID:             userID,
		OrganizationID: in.OrganizationID,
		Email:          email,
		Name:           name,
		Role:           role,
		CreatedAt:      now,
	}, nil
}

// KeyScheme is the leading segment of every API key.
const KeyScheme = "paam"

// APIKey is a hashed credential. Only Prefix is stored in clear.
type APIKey struct {
	ID         id.APIKeyID
	UserID     id.UserID
	Name       string
	Prefix     string
	Hash       string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	RevokedAt  *time.Time
}

func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// IssuedKey is a freshly created key with its plaintext value. The
// plaintext is never persisted.
type IssuedKey struct {
	APIKey
	Plaintext string
}

// FormatKey renders the plaintext form paam_<prefix>_<secret>.
func FormatKey(prefix, secret string) string {
	return KeyScheme + "_" + prefix + "_" + secret
}

// ParseKey splits a plaintext key into prefix and secret. The secret may
// itself contain underscores.
func ParseKey(raw string) (prefix, secret string, err error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "_", 3)
	if len(parts) != 3 || parts[0] != KeyScheme || parts[1] == "" || parts[2] == "" {
		return "", "", dErrors.New(dErrors.CodeUnauthorized, "invalid api key")
	}
	return parts[1], parts[2], nil
}
