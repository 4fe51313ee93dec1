package services

import (
	"context"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/events"
	"github.com/justicelabs/adjudications-api/models"
)

// ReferralService unwinds the most recent referral on a case. Removal takes the
// referral and whatever resolved it out of the chain in one step, so the case returns
// to the state it was in before the referral was made.
type ReferralService struct {
	DB     databases.AdjudicationDatabase
	Nomis  *NomisOutcomeService
	Events events.Publisher
	Clock  Clock
}

// RemoveReferral removes the latest referral outcome together with its resolution, if
// one was recorded. When the referral came out of a hearing, that hearing's outcome is
// cleared so the hearing can be resolved again.
func (s *ReferralService) RemoveReferral(ctx context.Context, chargeNumber, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}

	sorted := adjudication.Details.OutcomesSorted()
	referralIndex := -1
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Code.IsReferral() {
			referralIndex = i
			break
		}
	}
	if referralIndex == -1 {
		return nil, models.NewNotFoundError("referral not found")
	}

	removed := sorted[referralIndex:]
	// mirror removals newest first so the legacy chain unwinds in order
	for i := len(removed) - 1; i >= 0; i-- {
		outcome := removed[i]
		if err := s.Nomis.DeleteHearingResult(ctx, &adjudication.Details, &outcome); err != nil {
			return nil, err
		}
	}

	removedIDs := make(map[string]bool, len(removed))
	for _, outcome := range removed {
		removedIDs[outcome.ID] = true
	}
	kept := adjudication.Details.Outcomes[:0]
	for _, outcome := range adjudication.Details.Outcomes {
		if !removedIDs[outcome.ID] {
			kept = append(kept, outcome)
		}
	}
	adjudication.Details.Outcomes = kept

	clearReferralHearingOutcome(&adjudication.Details, sorted[referralIndex].Code)

	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// clearReferralHearingOutcome clears the latest hearing outcome that produced a
// referral of the given code, leaving earlier referral hearings untouched
func clearReferralHearingOutcome(d *models.AdjudicationDetails, code models.OutcomeCode) {
	sorted := d.HearingsSorted()
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Outcome == nil {
			continue
		}
		hearingCode, ok := sorted[i].Outcome.Code.OutcomeCode()
		if !ok || hearingCode != code {
			continue
		}
		if hearing := d.HearingByID(sorted[i].ID); hearing != nil {
			hearing.Outcome = nil
		}
		return
	}
}
