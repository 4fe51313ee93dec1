package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	mocksdb "github.com/justicelabs/adjudications-api/databases/mocks"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/nomis"
	mocksnomis "github.com/justicelabs/adjudications-api/nomis/mocks"
)

func int64Ptr(v int64) *int64 { return &v }

func TestNomisOutcomeService_CreateHearingResult(t *testing.T) {
	gateway := &mocksnomis.Gateway{}
	gateway.On("CreateHearingResult", mock.Anything, "MDI-000001", int64(42), nomis.HearingResultRequest{
		Finding: models.FindingNotProceed,
		Plea:    nomis.PleaNotAsked,
	}).Return(nil)

	adjudication := testAdjudication(models.StatusReferPolice)
	hearing := hearingAt("h1", testTime)
	hearing.OicHearingID = int64Ptr(42)
	adjudication.Details.Hearings = []models.Hearing{hearing}
	outcome := outcomeAt(models.OutcomeNotProceed, testTime)

	service := &NomisOutcomeService{Gateway: gateway}
	err := service.CreateHearingResult(context.TODO(), &adjudication.Details, &outcome, "")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), *outcome.OicHearingID, "the outcome remembers which legacy hearing carries it")
	gateway.AssertExpectations(t)
}

func TestNomisOutcomeService_NeverMirrorsInadReferrals(t *testing.T) {
	// a bare mock panics on any unexpected call, which is the assertion here
	gateway := &mocksnomis.Gateway{}

	adjudication := testAdjudication(models.StatusScheduled)
	outcome := outcomeAt(models.OutcomeReferInad, testTime)

	service := &NomisOutcomeService{Gateway: gateway}
	assert.NoError(t, service.CreateHearingResult(context.TODO(), &adjudication.Details, &outcome, ""))
	assert.NoError(t, service.AmendHearingResult(context.TODO(), &adjudication.Details, &outcome, ""))
	assert.NoError(t, service.DeleteHearingResult(context.TODO(), &adjudication.Details, &outcome))
}

func TestNomisOutcomeService_SkipsCodesWithoutFinding(t *testing.T) {
	gateway := &mocksnomis.Gateway{}

	adjudication := testAdjudication(models.StatusUnscheduled)
	outcome := outcomeAt(models.OutcomeReferPolice, testTime)

	service := &NomisOutcomeService{Gateway: gateway}
	assert.NoError(t, service.CreateHearingResult(context.TODO(), &adjudication.Details, &outcome, ""))
}

func TestNomisOutcomeService_ProsecutionCreatesLegacyHearingFirst(t *testing.T) {
	gateway := &mocksnomis.Gateway{}
	gateway.On("CreateHearing", mock.Anything, "MDI-000001", nomis.HearingRequest{
		HearingType: string(models.HearingTypeGovAdult),
	}).Return(int64(99), nil)
	gateway.On("CreateHearingResult", mock.Anything, "MDI-000001", int64(99), nomis.HearingResultRequest{
		Finding: models.FindingProsecuted,
		Plea:    nomis.PleaNotAsked,
	}).Return(nil)

	// no hearings on the case, so the legacy system needs one to carry the result
	adjudication := testAdjudication(models.StatusReferPolice)
	outcome := outcomeAt(models.OutcomeProsecution, testTime)

	service := &NomisOutcomeService{Gateway: gateway}
	err := service.CreateHearingResult(context.TODO(), &adjudication.Details, &outcome, "")

	assert.NoError(t, err)
	assert.Equal(t, int64(99), *outcome.OicHearingID)
	gateway.AssertExpectations(t)
}

func TestNomisOutcomeService_DeleteProsecutionRemovesLegacyHearing(t *testing.T) {
	gateway := &mocksnomis.Gateway{}
	gateway.On("DeleteHearingResult", mock.Anything, "MDI-000001", int64(99)).Return(nil)
	gateway.On("DeleteHearing", mock.Anything, "MDI-000001", int64(99)).Return(nil)

	adjudication := testAdjudication(models.StatusProsecution)
	outcome := outcomeAt(models.OutcomeProsecution, testTime)
	outcome.OicHearingID = int64Ptr(99)

	service := &NomisOutcomeService{Gateway: gateway}
	err := service.DeleteHearingResult(context.TODO(), &adjudication.Details, &outcome)

	assert.NoError(t, err)
	gateway.AssertExpectations(t)
}

func TestNomisOutcomeService_DeleteKeepsOrdinaryHearings(t *testing.T) {
	gateway := &mocksnomis.Gateway{}
	gateway.On("DeleteHearingResult", mock.Anything, "MDI-000001", int64(42)).Return(nil)

	adjudication := testAdjudication(models.StatusNotProceed)
	outcome := outcomeAt(models.OutcomeNotProceed, testTime)
	outcome.OicHearingID = int64Ptr(42)

	service := &NomisOutcomeService{Gateway: gateway}
	err := service.DeleteHearingResult(context.TODO(), &adjudication.Details, &outcome)

	assert.NoError(t, err)
	gateway.AssertNotCalled(t, "DeleteHearing", mock.Anything, mock.Anything, mock.Anything)
}

func TestNomisOutcomeService_CreateAdjournResult(t *testing.T) {
	gateway := &mocksnomis.Gateway{}
	gateway.On("CreateHearingResult", mock.Anything, "MDI-000001", int64(42), nomis.HearingResultRequest{
		Finding: models.FindingAdjourned,
		Plea:    nomis.PleaGuilty,
	}).Return(nil)

	adjudication := testAdjudication(models.StatusScheduled)
	hearing := hearingAt("h1", testTime)
	hearing.OicHearingID = int64Ptr(42)

	service := &NomisOutcomeService{Gateway: gateway}
	err := service.CreateAdjournResult(context.TODO(), &adjudication.Details, &hearing, models.PleaGuilty)

	assert.NoError(t, err)
	gateway.AssertExpectations(t)
}

func TestNomisOutcomeService_NilServiceIsNoOp(t *testing.T) {
	var service *NomisOutcomeService

	adjudication := testAdjudication(models.StatusUnscheduled)
	outcome := outcomeAt(models.OutcomeChargeProved, testTime)

	assert.NoError(t, service.CreateHearingResult(context.TODO(), &adjudication.Details, &outcome, ""))
	assert.NoError(t, service.DeleteHearingResult(context.TODO(), &adjudication.Details, &outcome))
}

func TestNomisHearingOutcomeService_StampsExternallyResolvedHearings(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	gateway := &mocksnomis.Gateway{}

	resolved := testAdjudication(models.StatusScheduled)
	withResult := hearingAt("h1", testTime)
	withResult.OicHearingID = int64Ptr(42)
	resolved.Details.Hearings = []models.Hearing{withResult}

	pending := testAdjudication(models.StatusScheduled)
	pending.Details.ChargeNumber = "MDI-000002"
	withoutResult := hearingAt("h2", testTime)
	withoutResult.OicHearingID = int64Ptr(43)
	pending.Details.Hearings = []models.Hearing{withoutResult}

	candidates := []models.ReportedAdjudication{*resolved, *pending}
	db.On("Find", mock.Anything, mock.Anything).Return(candidates, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	gateway.On("HearingOutcomesExistInNomis", mock.Anything, "MDI-000001", int64(42)).Return(true, nil)
	gateway.On("HearingOutcomesExistInNomis", mock.Anything, "MDI-000002", int64(43)).Return(false, nil)

	service := &NomisHearingOutcomeService{DB: db, Gateway: gateway, Clock: testClock}
	stamped, err := service.CheckForNomisHearingOutcomesAndUpdate(context.TODO())

	assert.NoError(t, err)
	assert.Equal(t, 1, stamped)
	assert.Equal(t, models.HearingOutcomeNomis, candidates[0].Details.Hearings[0].Outcome.Code)
	assert.Nil(t, candidates[1].Details.Hearings[0].Outcome)
	db.AssertNumberOfCalls(t, "ReplaceOne", 1)
}

func TestNomisHearingOutcomeService_SkipsHearingsAlreadyResolved(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	gateway := &mocksnomis.Gateway{}

	adjudication := testAdjudication(models.StatusAdjourned)
	hearing := hearingAt("h1", testTime)
	hearing.OicHearingID = int64Ptr(42)
	hearing.Outcome = &models.HearingOutcome{ID: "ho1", Code: models.HearingOutcomeAdjourn}
	adjudication.Details.Hearings = []models.Hearing{hearing}

	db.On("Find", mock.Anything, mock.Anything).Return([]models.ReportedAdjudication{*adjudication}, nil)

	service := &NomisHearingOutcomeService{DB: db, Gateway: gateway, Clock: testClock}
	stamped, err := service.CheckForNomisHearingOutcomesAndUpdate(context.TODO())

	assert.NoError(t, err)
	assert.Zero(t, stamped)
	gateway.AssertNotCalled(t, "HearingOutcomesExistInNomis", mock.Anything, mock.Anything, mock.Anything)
	db.AssertNotCalled(t, "ReplaceOne", mock.Anything, mock.Anything, mock.Anything)
}
