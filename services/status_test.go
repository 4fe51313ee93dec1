package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/justicelabs/adjudications-api/models"
)

var testTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testClock() time.Time { return testTime }

func testAdjudication(status models.ReportedAdjudicationStatus) *models.ReportedAdjudication {
	return &models.ReportedAdjudication{
		ID: primitive.NewObjectID(),
		Details: models.AdjudicationDetails{
			ChargeNumber:        "MDI-000001",
			PrisonerNumber:      "A1234AA",
			OriginatingAgencyID: "MDI",
			Status:              status,
		},
	}
}

func outcomeAt(code models.OutcomeCode, at time.Time) models.Outcome {
	return newOutcome(code, "", "tester", at)
}

func hearingAt(id string, at time.Time) models.Hearing {
	return models.Hearing{
		ID:                id,
		LocationID:        100,
		DateTimeOfHearing: primitive.NewDateTimeFromTime(at),
		OicHearingType:    models.HearingTypeGovAdult,
		AgencyID:          "MDI",
	}
}

func TestDeriveStatus(t *testing.T) {
	adjourned := hearingAt("h1", testTime)
	adjourned.Outcome = &models.HearingOutcome{ID: "ho1", Code: models.HearingOutcomeAdjourn}

	tests := []struct {
		name    string
		details models.AdjudicationDetails
		want    models.ReportedAdjudicationStatus
	}{
		{
			name:    "no outcomes and no hearings",
			details: models.AdjudicationDetails{},
			want:    models.StatusUnscheduled,
		},
		{
			name:    "hearing without outcome",
			details: models.AdjudicationDetails{Hearings: []models.Hearing{hearingAt("h1", testTime)}},
			want:    models.StatusScheduled,
		},
		{
			name:    "adjourned hearing",
			details: models.AdjudicationDetails{Hearings: []models.Hearing{adjourned}},
			want:    models.StatusAdjourned,
		},
		{
			name: "outstanding police referral wins over hearing state",
			details: models.AdjudicationDetails{
				Hearings: []models.Hearing{hearingAt("h1", testTime)},
				Outcomes: []models.Outcome{outcomeAt(models.OutcomeReferPolice, testTime)},
			},
			want: models.StatusReferPolice,
		},
		{
			name: "schedule hearing resolution defers to the hearing",
			details: models.AdjudicationDetails{
				Hearings: []models.Hearing{hearingAt("h1", testTime.Add(2 * time.Hour))},
				Outcomes: []models.Outcome{
					outcomeAt(models.OutcomeReferPolice, testTime),
					outcomeAt(models.OutcomeScheduleHearing, testTime.Add(time.Hour)),
				},
			},
			want: models.StatusScheduled,
		},
		{
			name: "charge proved",
			details: models.AdjudicationDetails{
				Outcomes: []models.Outcome{outcomeAt(models.OutcomeChargeProved, testTime)},
			},
			want: models.StatusChargeProved,
		},
		{
			name: "quashed after proved",
			details: models.AdjudicationDetails{
				Outcomes: []models.Outcome{
					outcomeAt(models.OutcomeChargeProved, testTime),
					outcomeAt(models.OutcomeQuashed, testTime.Add(time.Hour)),
				},
			},
			want: models.StatusQuashed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(&tc.details))
		})
	}
}

func TestValidateReferralTransition(t *testing.T) {
	t.Run("police referral from unscheduled", func(t *testing.T) {
		d := models.AdjudicationDetails{Status: models.StatusUnscheduled}
		assert.NoError(t, validateReferralTransition(&d, models.OutcomeReferPolice))
	})

	t.Run("inad referral needs a hearing first", func(t *testing.T) {
		d := models.AdjudicationDetails{Status: models.StatusUnscheduled}
		err := validateReferralTransition(&d, models.OutcomeReferInad)
		assert.EqualError(t, err, "Invalid status transition")
	})

	t.Run("inad referral from scheduled", func(t *testing.T) {
		d := models.AdjudicationDetails{Status: models.StatusScheduled}
		assert.NoError(t, validateReferralTransition(&d, models.OutcomeReferInad))
	})

	t.Run("police referral cannot follow an unresolved police referral with inad", func(t *testing.T) {
		d := models.AdjudicationDetails{
			Status:   models.StatusReferPolice,
			Outcomes: []models.Outcome{outcomeAt(models.OutcomeReferPolice, testTime)},
		}
		err := validateReferralTransition(&d, models.OutcomeReferInad)
		assert.EqualError(t, err, "Invalid referral transition")
	})

	t.Run("non referral code rejected", func(t *testing.T) {
		d := models.AdjudicationDetails{Status: models.StatusUnscheduled}
		err := validateReferralTransition(&d, models.OutcomeChargeProved)
		assert.EqualError(t, err, "invalid referral type")
	})
}
