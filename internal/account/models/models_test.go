package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	u, err := NewUser(id.UserID(uuid.New()), UserInput{Email: " Ops@Example.com ", Name: " Ops "}, now)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", u.Email)
	assert.Equal(t, "Ops", u.Name)
	assert.Equal(t, RoleMember, u.Role)
	assert.Equal(t, now, u.CreatedAt)

	for name, in := range map[string]UserInput{
		"missing email": {Name: "x"},
		"bad email":     {Email: "not-an-email", Name: "x"},
		"display name":  {Email: "Ops <ops@example.com>", Name: "x"},
		"missing name":  {Email: "ops@example.com"},
		"unknown role":  {Email: "ops@example.com", Name: "x", Role: "OWNER"},
	} {
		_, err := NewUser(id.UserID(uuid.New()), in, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), name)
	}
}

func TestKeyFormat(t *testing.T) {
	raw := FormatKey("a1b2c3d4e5f6", "abc_def-ghi")
	assert.Equal(t, "paam_a1b2c3d4e5f6_abc_def-ghi", raw)

	prefix, secret, err := ParseKey(raw)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4e5f6", prefix)
	assert.Equal(t, "abc_def-ghi", secret)

	for _, bad := range []string{"", "paam", "paam__secret", "sk_abc_def", "paam_abc_"} {
		_, _, err := ParseKey(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), bad)
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("root")
	assert.Error(t, err)
}
