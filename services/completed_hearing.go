package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/events"
	"github.com/justicelabs/adjudications-api/models"
)

// CompletedHearingRequest carries the common fields of a completed hearing: who heard
// it and what the prisoner pleaded
type CompletedHearingRequest struct {
	Adjudicator string
	Plea        models.HearingOutcomePlea
	Details     string
}

// CompletedHearingService records hearings that reached a decision. Each operation
// writes a COMPLETE outcome on the hearing and the disposal on the case in one save.
type CompletedHearingService struct {
	DB     databases.AdjudicationDatabase
	Nomis  *NomisOutcomeService
	Events events.Publisher
	Clock  Clock
}

// CreateDismissed records that the hearing dismissed the charge
func (s *CompletedHearingService) CreateDismissed(ctx context.Context, chargeNumber string, req CompletedHearingRequest, actor string) (*models.ReportedAdjudication, error) {
	outcome := newOutcome(models.OutcomeDismissed, req.Details, actor, now(s.Clock))
	return s.complete(ctx, chargeNumber, req, outcome)
}

// CreateNotProceed records that the hearing decided not to proceed with the charge
func (s *CompletedHearingService) CreateNotProceed(ctx context.Context, chargeNumber string, reason models.NotProceedReason, req CompletedHearingRequest, actor string) (*models.ReportedAdjudication, error) {
	outcome := newOutcome(models.OutcomeNotProceed, req.Details, actor, now(s.Clock))
	outcome.Reason = reason
	return s.complete(ctx, chargeNumber, req, outcome)
}

// CreateChargeProved records that the hearing found the charge proved. Caution and
// damages owed are recorded on the outcome; punishments follow through the punishments
// service once the status is CHARGE_PROVED.
func (s *CompletedHearingService) CreateChargeProved(ctx context.Context, chargeNumber string, caution bool, damagesOwed *float64, req CompletedHearingRequest, actor string) (*models.ReportedAdjudication, error) {
	outcome := newOutcome(models.OutcomeChargeProved, req.Details, actor, now(s.Clock))
	outcome.Caution = &caution
	outcome.Amount = damagesOwed
	return s.complete(ctx, chargeNumber, req, outcome)
}

func (s *CompletedHearingService) complete(ctx context.Context, chargeNumber string, req CompletedHearingRequest, outcome models.Outcome) (*models.ReportedAdjudication, error) {
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

	outcome.OicHearingID = hearing.OicHearingID
	if err := s.Nomis.CreateHearingResult(ctx, &adjudication.Details, &outcome, req.Plea); err != nil {
		return nil, err
	}

	hearing.Outcome = &models.HearingOutcome{
		ID:          uuid.New().String(),
		Code:        models.HearingOutcomeComplete,
		Adjudicator: req.Adjudicator,
		Plea:        req.Plea,
		Details:     req.Details,
	}
	adjudication.Details.Outcomes = append(adjudication.Details.Outcomes, outcome)
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}
