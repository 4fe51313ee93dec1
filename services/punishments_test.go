package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mocksdb "github.com/justicelabs/adjudications-api/databases/mocks"
	"github.com/justicelabs/adjudications-api/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func suspendedPunishment(id string, punishmentType models.PunishmentType) models.Punishment {
	until := primitive.NewDateTimeFromTime(testTime.AddDate(0, 6, 0))
	return models.Punishment{
		ID:   id,
		Type: punishmentType,
		Schedules: []models.PunishmentSchedule{{
			ID:             "s1",
			Days:           10,
			SuspendedUntil: &until,
			CreatedAt:      primitive.NewDateTimeFromTime(testTime.AddDate(0, -1, 0)),
		}},
	}
}

func TestPunishmentsService_Create(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	adjudication := testAdjudication(models.StatusChargeProved)
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	got, err := service.Create(context.TODO(), "MDI-000001", []PunishmentRequest{{
		Type:           models.PunishmentConfinement,
		Days:           10,
		SuspendedUntil: timePtr(testTime.AddDate(0, 6, 0)),
	}}, "tester")

	assert.NoError(t, err)
	assert.Len(t, got.Details.Punishments, 1)
	punishment := got.Details.Punishments[0]
	assert.NotEmpty(t, punishment.ID)
	assert.True(t, punishment.IsSuspended())
	assert.Equal(t, 10, punishment.LatestSchedule().Days)
}

func TestPunishmentsService_CreateRequiresChargeProved(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(testAdjudication(models.StatusScheduled), nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	_, err := service.Create(context.TODO(), "MDI-000001", nil, "tester")

	assert.EqualError(t, err, "status is not CHARGE_PROVED")
}

func TestPunishmentsService_CreateValidation(t *testing.T) {
	stoppage := 50
	tests := []struct {
		name    string
		request PunishmentRequest
		wantErr string
	}{
		{
			name:    "privilege needs a subtype",
			request: PunishmentRequest{Type: models.PunishmentPrivilege, Days: 5},
			wantErr: "subtype required for type PRIVILEGE",
		},
		{
			name:    "other privilege needs a description",
			request: PunishmentRequest{Type: models.PunishmentPrivilege, PrivilegeType: models.PrivilegeOther, Days: 5},
			wantErr: "description required for subtype OTHER",
		},
		{
			name:    "earnings needs a stoppage percentage",
			request: PunishmentRequest{Type: models.PunishmentEarnings, Days: 5},
			wantErr: "stoppage percentage required for type EARNINGS",
		},
		{
			name: "schedule cannot be suspended and active at once",
			request: PunishmentRequest{
				Type:               models.PunishmentEarnings,
				StoppagePercentage: &stoppage,
				Days:               5,
				StartDate:          timePtr(testTime),
				SuspendedUntil:     timePtr(testTime.AddDate(0, 6, 0)),
			},
			wantErr: "punishment schedule cannot be both suspended and active",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := &mocksdb.AdjudicationDatabase{}
			db.On("FindOne", mock.Anything, mock.Anything).Return(testAdjudication(models.StatusChargeProved), nil)

			service := &PunishmentsService{DB: db, Clock: testClock}
			_, err := service.Create(context.TODO(), "MDI-000001", []PunishmentRequest{tc.request}, "tester")

			assert.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestPunishmentsService_CreateActivatesSuspended(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}

	acting := testAdjudication(models.StatusChargeProved)
	origin := testAdjudication(models.StatusChargeProved)
	origin.Details.ChargeNumber = "MDI-000002"
	origin.Details.Punishments = []models.Punishment{suspendedPunishment("p1", models.PunishmentConfinement)}

	db.On("FindOne", mock.Anything, chargeFilter("MDI-000001")).Return(acting, nil)
	db.On("FindOne", mock.Anything, chargeFilter("MDI-000002")).Return(origin, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	got, err := service.Create(context.TODO(), "MDI-000001", []PunishmentRequest{{
		ID:            "p1",
		Type:          models.PunishmentConfinement,
		Days:          10,
		StartDate:     timePtr(testTime),
		EndDate:       timePtr(testTime.AddDate(0, 0, 10)),
		ActivatedFrom: "MDI-000002",
	}}, "tester")

	assert.NoError(t, err)

	// the origin keeps the suspended row in history and gains an active row on top
	originPunishment := origin.Details.Punishments[0]
	assert.Len(t, originPunishment.Schedules, 2)
	assert.True(t, originPunishment.LatestSchedule().IsActive())
	assert.Equal(t, "MDI-000001", originPunishment.ActivatedByChargeNumber)

	// the acting charge carries a clone under a fresh id pointing back at the origin
	clone := got.Details.Punishments[0]
	assert.NotEqual(t, "p1", clone.ID)
	assert.Equal(t, "MDI-000002", clone.ActivatedFromChargeNumber)
}

func TestPunishmentsService_ActivateRequiresSuspended(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}

	acting := testAdjudication(models.StatusChargeProved)
	origin := testAdjudication(models.StatusChargeProved)
	origin.Details.ChargeNumber = "MDI-000002"
	start := primitive.NewDateTimeFromTime(testTime)
	end := primitive.NewDateTimeFromTime(testTime.AddDate(0, 0, 10))
	origin.Details.Punishments = []models.Punishment{{
		ID:        "p1",
		Type:      models.PunishmentConfinement,
		Schedules: []models.PunishmentSchedule{{ID: "s1", Days: 10, StartDate: &start, EndDate: &end}},
	}}

	db.On("FindOne", mock.Anything, chargeFilter("MDI-000001")).Return(acting, nil)
	db.On("FindOne", mock.Anything, chargeFilter("MDI-000002")).Return(origin, nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	_, err := service.Create(context.TODO(), "MDI-000001", []PunishmentRequest{{
		ID:            "p1",
		Type:          models.PunishmentConfinement,
		Days:          10,
		StartDate:     timePtr(testTime),
		EndDate:       timePtr(testTime.AddDate(0, 0, 10)),
		ActivatedFrom: "MDI-000002",
	}}, "tester")

	assert.EqualError(t, err, "punishment is not suspended")
}

func TestPunishmentsService_ActivateRequiresDates(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}

	acting := testAdjudication(models.StatusChargeProved)
	origin := testAdjudication(models.StatusChargeProved)
	origin.Details.ChargeNumber = "MDI-000002"
	origin.Details.Punishments = []models.Punishment{suspendedPunishment("p1", models.PunishmentConfinement)}

	db.On("FindOne", mock.Anything, chargeFilter("MDI-000001")).Return(acting, nil)
	db.On("FindOne", mock.Anything, chargeFilter("MDI-000002")).Return(origin, nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	_, err := service.Create(context.TODO(), "MDI-000001", []PunishmentRequest{{
		ID:            "p1",
		Type:          models.PunishmentConfinement,
		Days:          10,
		ActivatedFrom: "MDI-000002",
	}}, "tester")

	assert.EqualError(t, err, "start and end date required to activate a punishment")
}

func TestPunishmentsService_RemoveActivations(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}

	origin := testAdjudication(models.StatusChargeProved)
	origin.Details.ChargeNumber = "MDI-000002"
	activated := suspendedPunishment("p1", models.PunishmentConfinement)
	start := primitive.NewDateTimeFromTime(testTime)
	end := primitive.NewDateTimeFromTime(testTime.AddDate(0, 0, 10))
	activated.Schedules = append(activated.Schedules, models.PunishmentSchedule{
		ID: "s2", Days: 10, StartDate: &start, EndDate: &end,
	})
	activated.ActivatedByChargeNumber = "MDI-000001"
	origin.Details.Punishments = []models.Punishment{activated}

	acting := testAdjudication(models.StatusChargeProved)
	acting.Details.Punishments = []models.Punishment{
		{ID: "own", Type: models.PunishmentExtraWork},
		{ID: "clone", Type: models.PunishmentConfinement, ActivatedFromChargeNumber: "MDI-000002"},
	}

	db.On("FindOne", mock.Anything, chargeFilter("MDI-000002")).Return(origin, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	err := service.RemoveActivations(context.TODO(), acting)

	assert.NoError(t, err)
	assert.Len(t, acting.Details.Punishments, 1, "the clone is dropped, own punishments stay")
	assert.Equal(t, "own", acting.Details.Punishments[0].ID)

	restored := origin.Details.Punishments[0]
	assert.Len(t, restored.Schedules, 1, "the active row is dropped")
	assert.True(t, restored.IsSuspended())
	assert.Empty(t, restored.ActivatedByChargeNumber)
}

func TestPunishmentsService_UpdateOmissionRemoves(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	adjudication := testAdjudication(models.StatusChargeProved)
	adjudication.Details.Punishments = []models.Punishment{
		suspendedPunishment("keep", models.PunishmentConfinement),
		suspendedPunishment("drop", models.PunishmentExtraWork),
	}
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	got, err := service.Update(context.TODO(), "MDI-000001", []PunishmentRequest{{
		ID:             "keep",
		Type:           models.PunishmentConfinement,
		Days:           10,
		SuspendedUntil: timePtr(testTime.AddDate(0, 6, 0)),
	}}, "tester")

	assert.NoError(t, err)
	assert.Len(t, got.Details.Punishments, 1)
	assert.Equal(t, "keep", got.Details.Punishments[0].ID)
}

func TestPunishmentsService_UpdateReversesOmittedActivation(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}

	origin := testAdjudication(models.StatusChargeProved)
	origin.Details.ChargeNumber = "MDI-000002"
	activated := suspendedPunishment("p1", models.PunishmentConfinement)
	start := primitive.NewDateTimeFromTime(testTime)
	end := primitive.NewDateTimeFromTime(testTime.AddDate(0, 0, 10))
	activated.Schedules = append(activated.Schedules, models.PunishmentSchedule{
		ID: "s2", Days: 10, StartDate: &start, EndDate: &end,
	})
	activated.ActivatedByChargeNumber = "MDI-000001"
	origin.Details.Punishments = []models.Punishment{activated}

	acting := testAdjudication(models.StatusChargeProved)
	acting.Details.Punishments = []models.Punishment{
		{ID: "clone", Type: models.PunishmentConfinement, ActivatedFromChargeNumber: "MDI-000002"},
	}

	db.On("FindOne", mock.Anything, chargeFilter("MDI-000001")).Return(acting, nil)
	db.On("FindOne", mock.Anything, chargeFilter("MDI-000002")).Return(origin, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	got, err := service.Update(context.TODO(), "MDI-000001", nil, "tester")

	assert.NoError(t, err)
	assert.Empty(t, got.Details.Punishments, "the omitted clone is dropped")

	restored := origin.Details.Punishments[0]
	assert.Len(t, restored.Schedules, 1, "the active row is dropped on the origin")
	assert.True(t, restored.IsSuspended())
	assert.Empty(t, restored.ActivatedByChargeNumber)
}

func TestPunishmentsService_UpdateKeepsExistingActivation(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}

	acting := testAdjudication(models.StatusChargeProved)
	acting.Details.Punishments = []models.Punishment{
		{ID: "clone", Type: models.PunishmentConfinement, ActivatedFromChargeNumber: "MDI-000002"},
	}

	// only the acting charge is mocked: touching the origin again would be an
	// unexpected call
	db.On("FindOne", mock.Anything, chargeFilter("MDI-000001")).Return(acting, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	got, err := service.Update(context.TODO(), "MDI-000001", []PunishmentRequest{{
		ID:            "p1",
		Type:          models.PunishmentConfinement,
		Days:          10,
		StartDate:     timePtr(testTime),
		EndDate:       timePtr(testTime.AddDate(0, 0, 10)),
		ActivatedFrom: "MDI-000002",
	}}, "tester")

	assert.NoError(t, err)
	assert.Len(t, got.Details.Punishments, 1, "the clone is not duplicated")
	assert.Equal(t, "clone", got.Details.Punishments[0].ID)
	db.AssertNumberOfCalls(t, "ReplaceOne", 1)
}

func TestPunishmentsService_UpdateUnchangedSpanKeepsSchedule(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	adjudication := testAdjudication(models.StatusChargeProved)
	existing := suspendedPunishment("p1", models.PunishmentConfinement)
	adjudication.Details.Punishments = []models.Punishment{existing}
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	got, err := service.Update(context.TODO(), "MDI-000001", []PunishmentRequest{{
		ID:             "p1",
		Type:           models.PunishmentConfinement,
		Days:           10,
		SuspendedUntil: timePtr(existing.Schedules[0].SuspendedUntil.Time().UTC()),
	}}, "tester")

	assert.NoError(t, err)
	assert.Len(t, got.Details.Punishments[0].Schedules, 1, "an identical span adds no schedule row")
}

func TestPunishmentsService_UpdateChangedSpanAppendsSchedule(t *testing.T) {
	db := &mocksdb.AdjudicationDatabase{}
	adjudication := testAdjudication(models.StatusChargeProved)
	adjudication.Details.Punishments = []models.Punishment{suspendedPunishment("p1", models.PunishmentConfinement)}
	db.On("FindOne", mock.Anything, mock.Anything).Return(adjudication, nil)
	db.On("ReplaceOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	service := &PunishmentsService{DB: db, Clock: testClock}
	got, err := service.Update(context.TODO(), "MDI-000001", []PunishmentRequest{{
		ID:             "p1",
		Type:           models.PunishmentConfinement,
		Days:           15,
		SuspendedUntil: timePtr(testTime.AddDate(0, 9, 0)),
	}}, "tester")

	assert.NoError(t, err)
	schedules := got.Details.Punishments[0].Schedules
	assert.Len(t, schedules, 2)
	assert.Equal(t, 15, schedules[1].Days)
}
