package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"paam/internal/customer/models"
	"paam/internal/customer/service/mocks"
	"paam/internal/customer/store"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/requestcontext"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ServiceSuite struct {
	suite.Suite
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(store.NewInMemory(), WithLogger(quietLogger()))
	s.ctx = context.Background()
}

func (s *ServiceSuite) register(customerID, email string) *models.Customer {
	c, err := s.service.Create(s.ctx, models.CreateInput{
		ID: id.CustomerID(customerID), Email: email, FirstName: "Ada", LastName: "Lovelace",
	})
	require.NoError(s.T(), err)
	return c
}

func (s *ServiceSuite) TestCreateAndGet() {
	created := s.register("CUST-001", "ada@example.com")

	got, err := s.service.Get(s.ctx, "CUST-001")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.Email, got.Email)
	assert.Equal(s.T(), models.RiskLow, got.RiskLevel)
}

func (s *ServiceSuite) TestCreateDuplicateIsConflict() {
	s.register("CUST-001", "ada@example.com")

	_, err := s.service.Create(s.ctx, models.CreateInput{
		ID: "CUST-002", Email: "ADA@example.com", FirstName: "Ada", LastName: "Byron",
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestCreateValidation() {
	_, err := s.service.Create(s.ctx, models.CreateInput{ID: "CUST-001"})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestGetUnknownIsNotFound() {
	_, err := s.service.Get(s.ctx, "CUST-404")
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListPaging() {
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		ctx := requestcontext.WithTime(s.ctx, time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC))
		_, err := s.service.Create(ctx, models.CreateInput{
			ID: id.CustomerID("CUST-00" + string(rune('1'+i))), Email: email, FirstName: "A", LastName: "B",
		})
		require.NoError(s.T(), err)
	}

	result, err := s.service.List(s.ctx, models.Filter{}, 1, 2)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, result.Total)
	assert.Equal(s.T(), 2, result.Pages)
	require.Len(s.T(), result.Customers, 2)
	assert.Equal(s.T(), id.CustomerID("CUST-003"), result.Customers[0].ID)

	_, err = s.service.List(s.ctx, models.Filter{}, 0, 10)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = s.service.List(s.ctx, models.Filter{}, 1, 101)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestUpdateRiskLevel() {
	s.register("CUST-001", "ada@example.com")
	later := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	updated, err := s.service.UpdateRiskLevel(requestcontext.WithTime(s.ctx, later), "CUST-001", models.RiskHigh)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.RiskHigh, updated.RiskLevel)
	assert.Equal(s.T(), later, updated.UpdatedAt)

	_, err = s.service.UpdateRiskLevel(s.ctx, "CUST-404", models.RiskHigh)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.UpdateRiskLevel(s.ctx, "CUST-001", "EXTREME")
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestLookupSkipsUnknown() {
	s.register("CUST-001", "ada@example.com")

	found, err := s.service.Lookup(s.ctx, []id.CustomerID{"CUST-001", "CUST-404"})
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	assert.Equal(s.T(), id.CustomerID("CUST-001"), found[0].ID)
}

func TestServiceStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	svc := New(mockStore, WithLogger(quietLogger()))
	ctx := context.Background()
	boom := errors.New("connection reset")

	t.Run("create failure is a persistence error", func(t *testing.T) {
		mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(boom)
		_, err := svc.Create(ctx, models.CreateInput{ID: "CUST-001", Email: "a@example.com", FirstName: "A", LastName: "B"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodePersistence))
	})

	t.Run("list failure is a persistence error", func(t *testing.T) {
		mockStore.EXPECT().List(gomock.Any(), gomock.Any(), 10, 0).Return(nil, boom).AnyTimes()
		mockStore.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
		_, err := svc.List(ctx, models.Filter{}, 1, 10)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePersistence))
	})

	t.Run("lookup failure is a persistence error", func(t *testing.T) {
		mockStore.EXPECT().FindByIDs(gomock.Any(), []id.CustomerID{"CUST-001"}).Return(nil, boom)
		_, err := svc.Lookup(ctx, []id.CustomerID{"CUST-001"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodePersistence))
	})

	t.Run("empty lookup does not hit the store", func(t *testing.T) {
		found, err := svc.Lookup(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("unchanged risk level skips the write", func(t *testing.T) {
		mockStore.EXPECT().FindByID(gomock.Any(), id.CustomerID("CUST-001")).
			Return(&models.Customer{ID: "CUST-001", RiskLevel: models.RiskMedium}, nil)
		got, err := svc.UpdateRiskLevel(ctx, "CUST-001", models.RiskMedium)
		require.NoError(t, err)
		assert.Equal(t, models.RiskMedium, got.RiskLevel)
	})
}
