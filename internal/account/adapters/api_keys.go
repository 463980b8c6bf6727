package adapters

import (
	"context"

	"paam/internal/account/models"
	id "paam/pkg/domain"
	"paam/pkg/requestcontext"
)

type keyAuthenticator interface {
	Authenticate(ctx context.Context, raw string) (*models.User, error)
}

// APIKeys adapts the account service to auth.APIKeyVerifier.
type APIKeys struct {
	accounts keyAuthenticator
}

func NewAPIKeys(accounts keyAuthenticator) *APIKeys {
	return &APIKeys{accounts: accounts}
}

func (a *APIKeys) VerifyAPIKey(ctx context.Context, raw string) (id.UserID, requestcontext.Role, error) {
	user, err := a.accounts.Authenticate(ctx, raw)
	if err != nil {
		return id.UserID{}, "", err
	}
	role := requestcontext.RoleMember
	if user.Role == models.RoleAdmin {
		role = requestcontext.RoleAdmin
	}
	return user.ID, role, nil
}
