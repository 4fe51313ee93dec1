package services

import (
	"context"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/nomis"
)

// AmendHearingOutcomeService corrects the outcome already recorded against the latest
// hearing: the adjudicator, the plea and the free-text details. The outcome code itself
// cannot be changed; delete the outcome and record a new one instead.
type AmendHearingOutcomeService struct {
	DB    databases.AdjudicationDatabase
	Nomis *NomisOutcomeService
	Clock Clock
}

// AmendHearingOutcomeRequest carries the fields that may be corrected. Empty fields
// keep their current value.
type AmendHearingOutcomeRequest struct {
	Adjudicator string
	Plea        models.HearingOutcomePlea
	Details     string
}

// AmendHearingOutcome applies the corrections to the latest hearing's outcome. A plea
// change is mirrored into the legacy system as an amendment of the existing result,
// before the local save.
func (s *AmendHearingOutcomeService) AmendHearingOutcome(ctx context.Context, chargeNumber string, request AmendHearingOutcomeRequest, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	hearing := adjudication.Details.LatestHearing()
	if hearing == nil {
		return nil, models.NewNotFoundError("Hearing not found")
	}
	outcome := hearing.Outcome
	if outcome == nil {
		return nil, models.NewNotFoundError("outcome not found for hearing")
	}
	if outcome.Code == models.HearingOutcomeNomis {
		return nil, models.NewValidationError("hearing outcome was recorded in the legacy system")
	}

	if request.Adjudicator != "" {
		outcome.Adjudicator = request.Adjudicator
	}
	if request.Details != "" {
		outcome.Details = request.Details
	}
	if request.Plea != "" && request.Plea != outcome.Plea {
		outcome.Plea = request.Plea
		if err := s.mirrorPlea(ctx, &adjudication.Details, hearing); err != nil {
			return nil, err
		}
	}

	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	return adjudication, nil
}

// mirrorPlea re-sends the legacy result carrying the corrected plea. Referral outcomes
// carry no plea, so only adjournments and completed hearings mirror.
func (s *AmendHearingOutcomeService) mirrorPlea(ctx context.Context, d *models.AdjudicationDetails, hearing *models.Hearing) error {
	switch hearing.Outcome.Code {
	case models.HearingOutcomeAdjourn:
		if s.Nomis == nil || s.Nomis.Gateway == nil || hearing.OicHearingID == nil {
			return nil
		}
		return s.Nomis.Gateway.AmendHearingResult(ctx, d.ChargeNumber, *hearing.OicHearingID, nomis.HearingResultRequest{
			Finding: models.FindingAdjourned,
			Plea:    nomis.PleaFor(hearing.Outcome.Plea),
		})
	case models.HearingOutcomeComplete:
		if latest := d.LatestOutcome(); latest != nil {
			return s.Nomis.AmendHearingResult(ctx, d, latest, hearing.Outcome.Plea)
		}
	}
	return nil
}
