package services

import "github.com/justicelabs/adjudications-api/models"

// DeriveStatus recomputes the adjudication status from the outcome chain and the
// hearings. It is the single place status is derived; every mutating operation calls
// it after changing the aggregate so the status invariant is enforced once, not per
// service.
//
// Precedence: the latest outcome wins when it is a referral or a terminal disposal; a
// SCHEDULE_HEARING resolution defers to the hearing state so that an adjourned or
// rescheduled hearing is reflected correctly.
func DeriveStatus(d *models.AdjudicationDetails) models.ReportedAdjudicationStatus {
	if latest := d.LatestOutcome(); latest != nil && latest.Code != models.OutcomeScheduleHearing {
		return latest.Code.Status()
	}
	if hearing := d.LatestHearing(); hearing != nil {
		if hearing.Outcome != nil && hearing.Outcome.Code == models.HearingOutcomeAdjourn {
			return models.StatusAdjourned
		}
		return models.StatusScheduled
	}
	return models.StatusUnscheduled
}

// referralSources are the statuses a referral of each type may be created from when no
// unresolved referral precedes it.
var referralSources = map[models.OutcomeCode][]models.ReportedAdjudicationStatus{
	models.OutcomeReferPolice: {models.StatusUnscheduled, models.StatusScheduled, models.StatusAdjourned},
	models.OutcomeReferInad:   {models.StatusScheduled, models.StatusAdjourned},
}

// validateReferralTransition checks that a referral of the given code may be recorded
// against the case in its current state
func validateReferralTransition(d *models.AdjudicationDetails, code models.OutcomeCode) error {
	if err := code.ValidateReferral(); err != nil {
		return err
	}
	if latest := d.LatestOutcome(); latest != nil && latest.Code.IsReferral() {
		if !latest.Code.CanTransitionTo(code) {
			return models.NewValidationError("Invalid referral transition")
		}
		return nil
	}
	for _, source := range referralSources[code] {
		if d.Status == source {
			return nil
		}
	}
	return models.NewValidationError("Invalid status transition")
}
