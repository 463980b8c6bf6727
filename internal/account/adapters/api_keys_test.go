package adapters

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paam/internal/account/models"
	"paam/internal/account/service"
	"paam/internal/account/store"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/requestcontext"
)

func TestAPIKeysVerify(t *testing.T) {
	ctx := context.Background()
	accounts := service.New(store.NewInMemory(), service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	keys := NewAPIKeys(accounts)

	for _, tc := range []struct {
		role models.Role
		want requestcontext.Role
	}{
		{models.RoleAdmin, requestcontext.RoleAdmin},
		{models.RoleMember, requestcontext.RoleMember},
	} {
		user, err := accounts.CreateUser(ctx, models.UserInput{
			Email: string(tc.role) + "@example.com",
			Name:  "Key Owner",
			Role:  tc.role,
		})
		require.NoError(t, err)
		issued, err := accounts.IssueAPIKey(ctx, user.ID, "ci")
		require.NoError(t, err)

		userID, role, err := keys.VerifyAPIKey(ctx, issued.Plaintext)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
		assert.Equal(t, tc.want, role)
	}

	_, _, err := keys.VerifyAPIKey(ctx, "paam_000000000000_nope")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
