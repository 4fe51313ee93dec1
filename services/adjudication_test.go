package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	mocksdb "github.com/justicelabs/adjudications-api/databases/mocks"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/nomis"
	mocksnomis "github.com/justicelabs/adjudications-api/nomis/mocks"
)

func createRequest() CreateAdjudicationRequest {
	return CreateAdjudicationRequest{
		PrisonerNumber:     "A1234AA",
		OffenderBookingID:  100001,
		AgencyID:           "MDI",
		IncidentLocationID: 25538,
		IncidentTime:       testTime.Add(-24 * time.Hour),
		Statement:          "Found in possession of a prohibited item",
		OffenceCodes:       []string{"51:12"},
	}
}

func TestAdjudicationService_Create(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(41), nil)
	db.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	service := &AdjudicationService{DB: db, Clock: testClock}
	got, err := service.Create(context.TODO(), createRequest(), "tester")

	assert.NoError(t, err)
	assert.Equal(t, "MDI-000042", got.Details.ChargeNumber)
	assert.Equal(t, models.StatusAwaitingReview, got.Details.Status)
	assert.Equal(t, "tester", got.Details.CreatedBy)
	assert.Equal(t, testTime, got.Details.CreatedAt.Time().UTC())
}

func TestAdjudicationService_CreateValidation(t *testing.T) {
	service := &AdjudicationService{DB: &mocksdb.AdjudicationDatabase{}, Clock: testClock}

	missingPrisoner := createRequest()
	missingPrisoner.PrisonerNumber = ""
	_, err := service.Create(context.TODO(), missingPrisoner, "tester")
	assert.EqualError(t, err, "prisoner number and agency id are required")
	assert.True(t, models.IsValidationError(err))

	missingStatement := createRequest()
	missingStatement.Statement = ""
	_, err = service.Create(context.TODO(), missingStatement, "tester")
	assert.EqualError(t, err, "statement is required")
}

func TestAdjudicationService_SetStatusAcceptPublishesToGateway(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	gateway := &mocksnomis.Gateway{}

	adjudication := testAdjudication(models.StatusAwaitingReview)
	adjudication.Details.IncidentLocationID = 25538
	adjudication.Details.Statement = "Found in possession of a prohibited item"
	adjudication.Details.OffenceCodes = []string{"51:12"}
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	gateway.On("PublishAdjudication", mock.Anything, mock.MatchedBy(func(req nomis.AdjudicationRequest) bool {
		return req.OffenderNumber == "A1234AA" && req.AgencyID == "MDI" && req.IncidentLocationID == 25538
	})).Return(nil)

	service := &AdjudicationService{DB: db, Gateway: gateway, Clock: testClock}
	got, err := service.SetStatus(context.TODO(), "MDI-000001", models.StatusUnscheduled, "", "", "reviewer")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusUnscheduled, got.Details.Status)
	assert.Equal(t, int32(1), got.Version)
	gateway.AssertExpectations(t)
}

func TestAdjudicationService_SetStatusGatewayFailureLeavesReportUntouched(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	gateway := &mocksnomis.Gateway{}

	adjudication := testAdjudication(models.StatusAwaitingReview)
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)
	gateway.On("PublishAdjudication", mock.Anything, mock.Anything).Return(errors.New("gateway down"))

	service := &AdjudicationService{DB: db, Gateway: gateway, Clock: testClock}
	_, err := service.SetStatus(context.TODO(), "MDI-000001", models.StatusUnscheduled, "", "", "reviewer")

	assert.EqualError(t, err, "gateway down")
	db.AssertNotCalled(t, "ReplaceOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdjudicationService_SetStatusReject(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	adjudication := testAdjudication(models.StatusAwaitingReview)
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := &AdjudicationService{DB: db, Clock: testClock}
	got, err := service.SetStatus(context.TODO(), "MDI-000001", models.StatusRejected, "offender-released", "prisoner was released before review", "reviewer")

	assert.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Details.Status)
	assert.Equal(t, "offender-released", got.Details.StatusReason)
}

func TestAdjudicationService_SetStatusInvalidTransition(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	adjudication := testAdjudication(models.StatusChargeProved)
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)

	service := &AdjudicationService{DB: db, Clock: testClock}
	_, err := service.SetStatus(context.TODO(), "MDI-000001", models.StatusUnscheduled, "", "", "reviewer")

	assert.EqualError(t, err, "Invalid status transition")
	assert.True(t, models.IsValidationError(err))
	db.AssertNotCalled(t, "ReplaceOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdjudicationService_Get(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	adjudication := testAdjudication(models.StatusUnscheduled)
	db.On("FindOne", mock.Anything, chargeFilter("MDI-000001")).Return(adjudication, nil)

	service := &AdjudicationService{DB: db}
	got, err := service.Get(context.TODO(), "MDI-000001")

	assert.NoError(t, err)
	assert.Equal(t, "MDI-000001", got.Details.ChargeNumber)
}

func TestAdjudicationService_GetByAgencyStatusFilter(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("Find", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		m, ok := filter.(bson.M)
		if !ok {
			return false
		}
		_, hasStatus := m["adjudication.status"]
		return hasStatus
	}), mock.Anything).Return([]models.ReportedAdjudication{}, nil)

	service := &AdjudicationService{DB: db}
	_, err := service.GetByAgency(context.TODO(), "MDI", []models.ReportedAdjudicationStatus{models.StatusScheduled}, 20, 1)

	assert.NoError(t, err)
	db.AssertExpectations(t)
}
