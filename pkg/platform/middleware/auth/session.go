package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "paam/pkg/domain"
	"paam/pkg/requestcontext"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "paam_session"

var ErrInvalidSession = errors.New("invalid or expired session")

// SessionClaims is the payload of a PAAM session token.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the identity a valid token resolves to.
type Session struct {
	UserID    id.UserID
	Role      requestcontext.Role
	ExpiresAt time.Time
}

// Sessions mints and validates HS256 session tokens.
type Sessions struct {
	signingKey []byte
	ttl        time.Duration
}

func NewSessions(signingKey string, ttl time.Duration) *Sessions {
	return &Sessions{signingKey: []byte(signingKey), ttl: ttl}
}

// Mint signs a token for userID that expires ttl after now.
func (s *Sessions) Mint(userID id.UserID, role requestcontext.Role, now time.Time) (string, error) {
	if userID.IsNil() {
		return "", fmt.Errorf("mint session: user id is required")
	}
	claims := SessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse validates signature, algorithm and expiry against now.
// Every failure is reported as ErrInvalidSession.
func (s *Sessions) Parse(token string, now time.Time) (*Session, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %w", ErrInvalidSession, err)
	}
	role := requestcontext.Role(claims.Role)
	if role != requestcontext.RoleAdmin && role != requestcontext.RoleMember {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidSession, claims.Role)
	}
	return &Session{UserID: userID, Role: role, ExpiresAt: claims.ExpiresAt.Time}, nil
}
