package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,CustomerDirectory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"paam/internal/kyc/models"
	"paam/internal/kyc/service/mocks"
	id "paam/pkg/domain"
	dErrors "paam/pkg/domain-errors"
	"paam/pkg/platform/sentinel"
)

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ServiceErrorSuite checks how store failures surface through the service.
type ServiceErrorSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	customers *mocks.MockCustomerDirectory
	service   *Service
}

func TestServiceErrorSuite(t *testing.T) {
	suite.Run(t, new(ServiceErrorSuite))
}

func (s *ServiceErrorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.customers = mocks.NewMockCustomerDirectory(s.ctrl)
	s.service = New(s.store, passthroughTx{}, s.customers,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *ServiceErrorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceErrorSuite) validInput() models.CreateProfileInput {
	return models.CreateProfileInput{
		CustomerID:  "CUST-001",
		ProfileType: models.ProfileIndividual,
		Documents:   []models.DocumentInput{{Type: models.DocumentPassport}},
		Checks:      []models.CheckInput{{Type: "sanctions_screening", Status: models.CheckPassed}},
	}
}

func (s *ServiceErrorSuite) expectCustomer() {
	s.customers.EXPECT().Summaries(gomock.Any(), []id.CustomerID{"CUST-001"}).
		Return(map[id.CustomerID]models.CustomerSummary{"CUST-001": {ID: "CUST-001"}}, nil)
}

func (s *ServiceErrorSuite) TestCreateValidationSkipsStore() {
	in := s.validInput()
	in.Documents = nil

	_, err := s.service.CreateProfile(context.Background(), in)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceErrorSuite) TestCreateUnknownCustomer() {
	s.customers.EXPECT().Summaries(gomock.Any(), gomock.Any()).Return(map[id.CustomerID]models.CustomerSummary{}, nil)

	_, err := s.service.CreateProfile(context.Background(), s.validInput())
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceErrorSuite) TestCreateCustomerLookupFailure() {
	s.customers.EXPECT().Summaries(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := s.service.CreateProfile(context.Background(), s.validInput())
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodePersistence))
}

func (s *ServiceErrorSuite) TestCreateInsertFailureIsPersistenceError() {
	s.expectCustomer()
	s.store.EXPECT().InsertProfile(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	_, err := s.service.CreateProfile(context.Background(), s.validInput())
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodePersistence))
	assert.NotContains(s.T(), err.Error(), "disk full")
}

func (s *ServiceErrorSuite) TestCreateCustomerDeletedConcurrently() {
	s.expectCustomer()
	s.store.EXPECT().InsertProfile(gomock.Any(), gomock.Any()).Return(sentinel.ErrNotFound)

	_, err := s.service.CreateProfile(context.Background(), s.validInput())
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceErrorSuite) TestCreateAuditFailureIsPersistenceError() {
	s.expectCustomer()
	s.store.EXPECT().InsertProfile(gomock.Any(), gomock.Any()).Return(nil)
	s.store.EXPECT().AppendAudit(gomock.Any(), gomock.Any()).Return(errors.New("timeout"))

	_, err := s.service.CreateProfile(context.Background(), s.validInput())
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodePersistence))
}

func (s *ServiceErrorSuite) TestGetNotFound() {
	s.store.EXPECT().FindProfile(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.GetProfile(context.Background(), id.ProfileID(uuid.New()))
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceErrorSuite) TestListRejectsBadPaging() {
	for _, page := range []models.Page{{Page: 0, Limit: 10}, {Page: 1, Limit: 0}, {Page: 1, Limit: 101}} {
		_, err := s.service.ListProfiles(context.Background(), models.Filter{}, page)
		assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation), "page %+v", page)
	}
}

func (s *ServiceErrorSuite) TestListStoreFailure() {
	s.store.EXPECT().ListProfiles(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom")).AnyTimes()
	s.store.EXPECT().CountProfiles(gomock.Any(), gomock.Any()).Return(0, nil).AnyTimes()
	s.store.EXPECT().CountByStatus(gomock.Any(), gomock.Any()).Return(map[models.Status]int{}, nil).AnyTimes()

	_, err := s.service.ListProfiles(context.Background(), models.Filter{}, models.Page{Page: 1, Limit: 10})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodePersistence))
}

func (s *ServiceErrorSuite) TestListCountsIgnoreStatusFilter() {
	approved := models.StatusApproved
	customer := id.CustomerID("CUST-001")
	filter := models.Filter{Status: &approved, CustomerID: &customer}

	s.store.EXPECT().ListProfiles(gomock.Any(), filter, gomock.Any()).Return([]*models.Profile{}, nil)
	s.store.EXPECT().CountProfiles(gomock.Any(), filter).Return(0, nil)
	s.store.EXPECT().CountByStatus(gomock.Any(), models.Filter{CustomerID: &customer}).
		Return(map[models.Status]int{models.StatusPending: 4}, nil)

	res, err := s.service.ListProfiles(context.Background(), filter, models.Page{Page: 1, Limit: 10})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 4, res.StatusCounts[models.StatusPending])
	assert.Zero(s.T(), res.Pages)
}

func (s *ServiceErrorSuite) TestUpdateStatusNotFound() {
	s.store.EXPECT().FindProfileForUpdate(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.UpdateStatus(context.Background(), models.UpdateStatusInput{
		ProfileID: id.ProfileID(uuid.New()),
		Status:    models.StatusApproved,
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceErrorSuite) TestUpdateStatusInvalidStatusSkipsStore() {
	_, err := s.service.UpdateStatus(context.Background(), models.UpdateStatusInput{
		ProfileID: id.ProfileID(uuid.New()),
		Status:    "ARCHIVED",
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceErrorSuite) TestUpdateStatusWriteFailure() {
	profileID := id.ProfileID(uuid.New())
	s.store.EXPECT().FindProfileForUpdate(gomock.Any(), profileID).
		Return(&models.Profile{ID: profileID, Status: models.StatusPending}, nil)
	s.store.EXPECT().UpdateStatus(gomock.Any(), profileID, models.StatusApproved, gomock.Any()).
		Return(errors.New("deadlock detected"))

	_, err := s.service.UpdateStatus(context.Background(), models.UpdateStatusInput{
		ProfileID: profileID,
		Status:    models.StatusApproved,
	})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodePersistence))
}

func (s *ServiceErrorSuite) TestDeleteNotFound() {
	s.store.EXPECT().FindProfileForUpdate(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

	err := s.service.DeleteProfile(context.Background(), id.ProfileID(uuid.New()), models.Actor{})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceErrorSuite) TestAuditTrailNotFound() {
	s.store.EXPECT().ListAudit(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

	_, err := s.service.GetAuditTrail(context.Background(), id.ProfileID(uuid.New()))
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}
