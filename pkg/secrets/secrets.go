// Package secrets generates API key material and stores only its bcrypt hash.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "paam/pkg/domain-errors"
)

const (
	secretBytes = 32
	prefixBytes = 6
)

// Generate returns a URL-safe secret. It is shown to the caller once.
func Generate() (string, error) {
	b, err := random(secretBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GeneratePrefix returns the public lookup half of a key: twelve hex characters.
func GeneratePrefix() (string, error) {
	b, err := random(prefixBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read random bytes")
	}
	return b, nil
}

func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	switch {
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
	case err != nil:
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "hash secret")
	}
	return string(h), nil
}

// Verify returns an unauthorized error when secret does not match hash.
func Verify(secret, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return dErrors.New(dErrors.CodeUnauthorized, "invalid secret")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "verify secret")
	}
}
