package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"paam/internal/account/models"
	"paam/internal/account/service/mocks"
	"paam/internal/account/store"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/sentinel"
	"paam/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemory
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.service = New(s.store, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) createUser(email string) *models.User {
	u, err := s.service.CreateUser(s.ctx, models.UserInput{Email: email, Name: "Dev"})
	require.NoError(s.T(), err)
	return u
}

func (s *ServiceSuite) TestCreateUser() {
	u := s.createUser("Dev@Example.com")
	assert.Equal(s.T(), "dev@example.com", u.Email)
	assert.Equal(s.T(), models.RoleMember, u.Role)

	_, err := s.service.CreateUser(s.ctx, models.UserInput{Email: "dev@example.com", Name: "Again"})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeConflict))

	page, err := s.service.ListUsers(s.ctx, 1, 10)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, page.Total)
	assert.Equal(s.T(), 1, page.Pages)
}

func (s *ServiceSuite) TestIssueAPIKey() {
	u := s.createUser("dev@example.com")

	issued, err := s.service.IssueAPIKey(s.ctx, u.ID, " ci ")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "ci", issued.Name)
	assert.True(s.T(), strings.HasPrefix(issued.Plaintext, "paam_"+issued.Prefix+"_"))
	assert.NotContains(s.T(), issued.Hash, issued.Plaintext)

	stored, err := s.store.FindAPIKey(s.ctx, issued.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), issued.Hash, stored.Hash)
	assert.NotContains(s.T(), stored.Hash, strings.TrimPrefix(issued.Plaintext, "paam_"+issued.Prefix+"_"))

	_, err = s.service.IssueAPIKey(s.ctx, u.ID, "  ")
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.IssueAPIKey(s.ctx, id.UserID(uuid.New()), "ci")
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestAuthenticate() {
	u := s.createUser("dev@example.com")
	issued, err := s.service.IssueAPIKey(s.ctx, u.ID, "ci")
	require.NoError(s.T(), err)

	later := requestcontext.WithTime(s.ctx, s.now.Add(time.Hour))
	got, err := s.service.Authenticate(later, issued.Plaintext)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), u.ID, got.ID)

	stored, err := s.store.FindAPIKey(s.ctx, issued.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), stored.LastUsedAt)
	assert.Equal(s.T(), s.now.Add(time.Hour), *stored.LastUsedAt)

	for _, raw := range []string{
		"garbage",
		"paam_000000000000_secret",
		"paam_" + issued.Prefix + "_wrong-secret",
	} {
		_, err := s.service.Authenticate(s.ctx, raw)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized), raw)
		assert.Equal(s.T(), "invalid api key", err.Error())
	}
}

func (s *ServiceSuite) TestRevokeAPIKey() {
	owner := s.createUser("dev@example.com")
	other := s.createUser("other@example.com")
	issued, err := s.service.IssueAPIKey(s.ctx, owner.ID, "ci")
	require.NoError(s.T(), err)

	_, err = s.service.RevokeAPIKey(s.ctx, other.ID, issued.ID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))

	revoked, err := s.service.RevokeAPIKey(s.ctx, owner.ID, issued.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), revoked.RevokedAt)
	assert.Equal(s.T(), s.now, *revoked.RevokedAt)

	again, err := s.service.RevokeAPIKey(requestcontext.WithTime(s.ctx, s.now.Add(time.Hour)), owner.ID, issued.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.now, *again.RevokedAt)

	_, err = s.service.Authenticate(s.ctx, issued.Plaintext)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestListAPIKeysPaging() {
	u := s.createUser("dev@example.com")
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.service.IssueAPIKey(s.ctx, u.ID, name)
		require.NoError(s.T(), err)
	}
	page, err := s.service.ListAPIKeys(s.ctx, 2, 2)
	require.NoError(s.T(), err)
	assert.Len(s.T(), page.Keys, 1)
	assert.Equal(s.T(), 3, page.Total)
	assert.Equal(s.T(), 2, page.Pages)

	_, err = s.service.ListAPIKeys(s.ctx, 1, 0)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestIssueAPIKeyRetriesPrefixCollisions(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	svc := New(st, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	userID := id.UserID(uuid.New())

	gomock.InOrder(
		st.EXPECT().CreateAPIKey(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict),
		st.EXPECT().CreateAPIKey(gomock.Any(), gomock.Any()).Return(nil),
	)
	issued, err := svc.IssueAPIKey(context.Background(), userID, "ci")
	require.NoError(t, err)
	assert.Equal(t, userID, issued.UserID)
}

func TestStoreFailuresBecomePersistenceErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	svc := New(st, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()

	st.EXPECT().ListUsers(gomock.Any(), 10, 0).Return(nil, errors.New("connection reset")).AnyTimes()
	st.EXPECT().CountUsers(gomock.Any()).Return(0, nil).AnyTimes()
	_, err := svc.ListUsers(ctx, 1, 10)
	assert.True(t, dErrors.HasCode(err, dErrors.CodePersistence))

	st.EXPECT().FindAPIKeyByPrefix(gomock.Any(), "abc").Return(nil, errors.New("connection reset"))
	_, err = svc.Authenticate(ctx, "paam_abc_secret")
	assert.True(t, dErrors.HasCode(err, dErrors.CodePersistence))
}
