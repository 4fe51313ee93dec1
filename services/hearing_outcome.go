package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/events"
	"github.com/justicelabs/adjudications-api/models"
)

// HearingOutcomeService records dispositions against the latest hearing: referrals out
// of a hearing and adjournments. Each referral writes two records in one save, the
// hearing outcome and the parallel case-level outcome that tracks the referral chain.
type HearingOutcomeService struct {
	DB       databases.AdjudicationDatabase
	Nomis    *NomisOutcomeService
	Outcomes *OutcomeService
	Events   events.Publisher
	Clock    Clock
}

// CreateReferral records that the adjudicator referred the charge onward at the latest
// hearing
func (s *HearingOutcomeService) CreateReferral(ctx context.Context, chargeNumber string, code models.HearingOutcomeCode, adjudicator, details, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	hearing := adjudication.Details.LatestHearing()
	if hearing == nil {
		return nil, models.NewNotFoundError("Hearing not found")
	}
	if hearing.Outcome != nil {
		return nil, models.NewValidationError("hearing already has an outcome")
	}
	if err := code.ValidateReferral(); err != nil {
		return nil, err
	}
	outcomeCode, _ := code.OutcomeCode()
	if err := validateReferralTransition(&adjudication.Details, outcomeCode); err != nil {
		return nil, err
	}

	outcome := newOutcome(outcomeCode, details, actor, now(s.Clock))
	outcome.OicHearingID = hearing.OicHearingID
	if err := s.Nomis.CreateHearingResult(ctx, &adjudication.Details, &outcome, models.PleaNotAsked); err != nil {
		return nil, err
	}

	hearing.Outcome = &models.HearingOutcome{
		ID:          uuid.New().String(),
		Code:        code,
		Adjudicator: adjudicator,
		Details:     details,
	}
	adjudication.Details.Outcomes = append(adjudication.Details.Outcomes, outcome)
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// CreateAdjourn records that the latest hearing was adjourned. No case-level outcome
// is written; the adjournment lives on the hearing and the status derivation reads it
// from there.
func (s *HearingOutcomeService) CreateAdjourn(ctx context.Context, chargeNumber string, adjudicator string, reason models.HearingOutcomeAdjournReason, plea models.HearingOutcomePlea, details, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	hearing := adjudication.Details.LatestHearing()
	if hearing == nil {
		return nil, models.NewNotFoundError("Hearing not found")
	}
	if hearing.Outcome != nil {
		return nil, models.NewValidationError("hearing already has an outcome")
	}

	if err := s.Nomis.CreateAdjournResult(ctx, &adjudication.Details, hearing, plea); err != nil {
		return nil, err
	}

	hearing.Outcome = &models.HearingOutcome{
		ID:          uuid.New().String(),
		Code:        models.HearingOutcomeAdjourn,
		Adjudicator: adjudicator,
		Reason:      reason,
		Plea:        plea,
		Details:     details,
	}
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// DeleteHearingOutcome removes the outcome recorded against the latest hearing. Only
// the latest hearing is ever mutable, so no hearing id is taken; outcomes on earlier
// hearings are immutable history. When the hearing outcome wrote a parallel case-level
// outcome (a referral or a completed hearing's disposal) that outcome is removed with
// it, including any punishment activation reversal a charge-proved removal requires.
func (s *HearingOutcomeService) DeleteHearingOutcome(ctx context.Context, chargeNumber, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	hearing := adjudication.Details.LatestHearing()
	if hearing == nil {
		return nil, models.NewNotFoundError("Hearing not found")
	}
	if hearing.Outcome == nil {
		return nil, models.NewNotFoundError("outcome not found for hearing")
	}

	removed := hearing.Outcome
	hearing.Outcome = nil

	if caseOutcome := pairedCaseOutcome(&adjudication.Details, removed); caseOutcome != nil {
		// removeOutcome mirrors the legacy delete, re-derives the status and saves
		return s.Outcomes.removeOutcome(ctx, adjudication, caseOutcome)
	}

	if removed.Code == models.HearingOutcomeAdjourn && hearing.OicHearingID != nil && s.Nomis != nil && s.Nomis.Gateway != nil {
		if err := s.Nomis.Gateway.DeleteHearingResult(ctx, chargeNumber, *hearing.OicHearingID); err != nil {
			return nil, err
		}
	}

	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// GetHearingOutcomeForReferral returns the hearing outcome behind the nth referral of
// the given code, counting referrals in hearing date order. Used to show which hearing
// produced a given entry in the referral chain.
func (s *HearingOutcomeService) GetHearingOutcomeForReferral(ctx context.Context, chargeNumber string, code models.OutcomeCode, index int) (*models.HearingOutcome, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}

	seen := 0
	for _, hearing := range adjudication.Details.HearingsSorted() {
		if hearing.Outcome == nil {
			continue
		}
		hearingCode, ok := hearing.Outcome.Code.OutcomeCode()
		if !ok || hearingCode != code {
			continue
		}
		if seen == index {
			outcome := *hearing.Outcome
			return &outcome, nil
		}
		seen++
	}
	return nil, models.NewNotFoundError("outcome not found for hearing")
}

// pairedCaseOutcome finds the case-level outcome a hearing outcome wrote in parallel:
// the latest outcome, when its code matches what the hearing outcome produces
func pairedCaseOutcome(d *models.AdjudicationDetails, hearingOutcome *models.HearingOutcome) *models.Outcome {
	latest := d.LatestOutcome()
	if latest == nil {
		return nil
	}
	switch hearingOutcome.Code {
	case models.HearingOutcomeReferPolice, models.HearingOutcomeReferInad:
		if code, ok := hearingOutcome.Code.OutcomeCode(); ok && latest.Code == code {
			return latest
		}
	case models.HearingOutcomeComplete:
		switch latest.Code {
		case models.OutcomeChargeProved, models.OutcomeDismissed, models.OutcomeNotProceed:
			return latest
		}
	}
	return nil
}
