// Package main mints PAAM session tokens for local development.
//
//	tokengen admin                 # ADMIN session, random user id
//	tokengen member -user-id <id>  # MEMBER session for a known user
//
// The signing key comes from JWT_SIGNING_KEY (or .env), so tokens match a
// server started in the same environment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"paam/internal/platform/config"
	id "paam/pkg/domain"
	"paam/pkg/platform/middleware/auth"
	"paam/pkg/requestcontext"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	UserID    string            `json:"user_id"`
	Role      string            `json:"role"`
	ExpiresAt time.Time         `json:"expires_at"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now()); err != nil {
		fmt.Fprintln(os.Stderr, "tokengen:", err)
		os.Exit(2)
	}
}

func run(args []string, out io.Writer, now time.Time) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tokengen <admin|member> [-user-id UUID] [-ttl 12h] [-key KEY] [-json]")
	}

	var role requestcontext.Role
	switch strings.ToLower(args[0]) {
	case "admin":
		role = requestcontext.RoleAdmin
	case "member":
		role = requestcontext.RoleMember
	default:
		return fmt.Errorf("unknown role %q, want admin or member", args[0])
	}

	cfg := config.FromEnv()
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userIDFlag := fs.String("user-id", "", "user id (UUID); generated when empty")
	ttl := fs.Duration("ttl", cfg.SessionTTL, "token lifetime")
	key := fs.String("key", cfg.JWTSigningKey, "HS256 signing key")
	asJSON := fs.Bool("json", false, "print JSON instead of the bare token")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	userID := id.UserID(uuid.New())
	if *userIDFlag != "" {
		parsed, err := id.ParseUserID(*userIDFlag)
		if err != nil {
			return fmt.Errorf("-user-id: %w", err)
		}
		userID = parsed
	}

	token, err := auth.NewSessions(*key, *ttl).Mint(userID, role, now)
	if err != nil {
		return err
	}

	if !*asJSON {
		_, err := fmt.Fprintln(out, token)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenOutput{
		Token:     token,
		UserID:    userID.String(),
		Role:      string(role),
		ExpiresAt: now.Add(*ttl).UTC(),
		Usage: map[string]string{
			"header": "Authorization: Bearer " + token,
			"cookie": auth.SessionCookie + "=" + token,
		},
	})
}
