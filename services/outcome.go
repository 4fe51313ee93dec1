package services

import (
	"context"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/events"
	"github.com/justicelabs/adjudications-api/models"
)

// OutcomeService records case-level outcomes: referrals made outside a hearing, the
// resolutions of referrals, and the quashing of proved charges. Outcomes reached inside
// a hearing go through CompletedHearingService and HearingOutcomeService instead.
type OutcomeService struct {
	DB          databases.AdjudicationDatabase
	Nomis       *NomisOutcomeService
	Punishments *PunishmentsService
	Events      events.Publisher
	Clock       Clock
}

// CreateReferral records a referral decided at case level, for example a police
// referral raised before any hearing was scheduled
func (s *OutcomeService) CreateReferral(ctx context.Context, chargeNumber string, code models.OutcomeCode, details, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	if err := validateReferralTransition(&adjudication.Details, code); err != nil {
		return nil, err
	}

	outcome := newOutcome(code, details, actor, now(s.Clock))
	if err := s.Nomis.CreateHearingResult(ctx, &adjudication.Details, &outcome, latestPlea(&adjudication.Details)); err != nil {
		return nil, err
	}

	adjudication.Details.Outcomes = append(adjudication.Details.Outcomes, outcome)
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// CreateNotProceed records the decision not to proceed with the charge. When a
// referral is outstanding the not-proceed must be one of its legal resolutions;
// otherwise it may be recorded directly.
func (s *OutcomeService) CreateNotProceed(ctx context.Context, chargeNumber string, reason models.NotProceedReason, details, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	if err := validateResolution(&adjudication.Details, models.OutcomeNotProceed); err != nil {
		return nil, err
	}

	outcome := newOutcome(models.OutcomeNotProceed, details, actor, now(s.Clock))
	outcome.Reason = reason
	if err := s.Nomis.CreateHearingResult(ctx, &adjudication.Details, &outcome, latestPlea(&adjudication.Details)); err != nil {
		return nil, err
	}

	adjudication.Details.Outcomes = append(adjudication.Details.Outcomes, outcome)
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// CreateDismissed records the dismissal of the charge at case level. Not a legal
// resolution of any referral, so it is rejected while one is outstanding.
func (s *OutcomeService) CreateDismissed(ctx context.Context, chargeNumber, details, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	if err := validateResolution(&adjudication.Details, models.OutcomeDismissed); err != nil {
		return nil, err
	}

	outcome := newOutcome(models.OutcomeDismissed, details, actor, now(s.Clock))
	if err := s.Nomis.CreateHearingResult(ctx, &adjudication.Details, &outcome, latestPlea(&adjudication.Details)); err != nil {
		return nil, err
	}

	adjudication.Details.Outcomes = append(adjudication.Details.Outcomes, outcome)
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// CreateProsecution records that the police are prosecuting the charge. Rejected while
// an independent-adjudicator referral is outstanding, since prosecution resolves police
// referrals only. The legacy system has no hearing-less results, so the mirror creates
// a legacy hearing to carry the prosecuted finding.
func (s *OutcomeService) CreateProsecution(ctx context.Context, chargeNumber, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	if err := validateResolution(&adjudication.Details, models.OutcomeProsecution); err != nil {
		return nil, err
	}

	outcome := newOutcome(models.OutcomeProsecution, "", actor, now(s.Clock))
	if err := s.Nomis.CreateHearingResult(ctx, &adjudication.Details, &outcome, latestPlea(&adjudication.Details)); err != nil {
		return nil, err
	}

	adjudication.Details.Outcomes = append(adjudication.Details.Outcomes, outcome)
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// CreateQuashed overturns a proved charge. Requires the latest outcome to be
// CHARGE_PROVED. Any suspended punishments this charge activated on other charges are
// reversed, and the legacy result on the proved hearing is amended to quashed.
func (s *OutcomeService) CreateQuashed(ctx context.Context, chargeNumber string, reason models.QuashedReason, details, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	proved := adjudication.Details.LatestOutcome()
	if proved == nil || proved.Code != models.OutcomeChargeProved {
		return nil, models.NewValidationError("latest outcome is not CHARGE_PROVED")
	}

	outcome := newOutcome(models.OutcomeQuashed, details, actor, now(s.Clock))
	outcome.QuashedReason = reason
	outcome.OicHearingID = proved.OicHearingID
	if err := s.Nomis.AmendHearingResult(ctx, &adjudication.Details, &outcome, latestPlea(&adjudication.Details)); err != nil {
		return nil, err
	}

	if s.Punishments != nil {
		if err := s.Punishments.RemoveActivations(ctx, adjudication); err != nil {
			return nil, err
		}
	}
	adjudication.Details.Outcomes = append(adjudication.Details.Outcomes, outcome)
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// GetOutcomes returns the outcome history in creation order, with each referral paired
// to the outcome that resolved it
func (s *OutcomeService) GetOutcomes(ctx context.Context, chargeNumber string) ([]models.CombinedOutcome, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}

	sorted := adjudication.Details.OutcomesSorted()
	var history []models.CombinedOutcome
	for i := 0; i < len(sorted); i++ {
		combined := models.CombinedOutcome{Outcome: sorted[i]}
		if sorted[i].Code.IsReferral() && i+1 < len(sorted) && sorted[i].Code.CanTransitionTo(sorted[i+1].Code) {
			resolution := sorted[i+1]
			combined.ReferralOutcome = &resolution
			i++
		}
		history = append(history, combined)
	}
	return history, nil
}

// DeleteOutcome removes the outcome with the given id. Only outcomes created at case
// level may be deleted this way; outcomes written by the hearing workflow must be
// removed through their hearing.
func (s *OutcomeService) DeleteOutcome(ctx context.Context, chargeNumber, outcomeID, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}

	var outcome *models.Outcome
	for i := range adjudication.Details.Outcomes {
		if adjudication.Details.Outcomes[i].ID == outcomeID {
			outcome = &adjudication.Details.Outcomes[i]
			break
		}
	}
	if outcome == nil {
		return nil, models.NewNotFoundError("outcome not found")
	}
	if !deletableViaAPI(&adjudication.Details, outcome) {
		return nil, models.NewValidationError("Unable to delete via api - DEL/outcome")
	}
	return s.removeOutcome(ctx, adjudication, outcome)
}

// DeleteLatestOutcome removes the most recent outcome when it is a not-proceed. Any
// other latest outcome is owned by the referral or hearing workflow and cannot be
// removed here.
func (s *OutcomeService) DeleteLatestOutcome(ctx context.Context, chargeNumber, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	latest := adjudication.Details.LatestOutcome()
	if latest == nil {
		return nil, models.NewNotFoundError("outcome not found")
	}
	if latest.Code != models.OutcomeNotProceed {
		return nil, models.NewValidationError("Unable to delete via api - DEL/outcome")
	}
	return s.removeOutcome(ctx, adjudication, latest)
}

// removeOutcome mirrors the removal into the legacy system, drops the outcome from the
// chain, reverses any punishment activations a proved charge held, and re-derives the
// status. Shared by the outcome and hearing-outcome delete paths.
func (s *OutcomeService) removeOutcome(ctx context.Context, adjudication *models.ReportedAdjudication, outcome *models.Outcome) (*models.ReportedAdjudication, error) {
	switch outcome.Code {
	case models.OutcomeQuashed:
		// restore the proved finding on the legacy hearing the quash amended
		if proved := previousOutcome(&adjudication.Details, outcome.ID); proved != nil && proved.Code == models.OutcomeChargeProved {
			if err := s.Nomis.AmendHearingResult(ctx, &adjudication.Details, proved, latestPlea(&adjudication.Details)); err != nil {
				return nil, err
			}
		}
	case models.OutcomeChargeProved:
		if s.Punishments != nil {
			if err := s.Punishments.RemoveActivations(ctx, adjudication); err != nil {
				return nil, err
			}
		}
		adjudication.Details.Punishments = nil
		if err := s.Nomis.DeleteHearingResult(ctx, &adjudication.Details, outcome); err != nil {
			return nil, err
		}
	default:
		if err := s.Nomis.DeleteHearingResult(ctx, &adjudication.Details, outcome); err != nil {
			return nil, err
		}
	}

	kept := adjudication.Details.Outcomes[:0]
	for _, o := range adjudication.Details.Outcomes {
		if o.ID != outcome.ID {
			kept = append(kept, o)
		}
	}
	adjudication.Details.Outcomes = kept
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)

	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// validateResolution guards only the referral chain: a terminal outcome recorded while
// a referral is outstanding must be one of that referral's legal resolutions. With no
// outstanding referral a terminal outcome may be recorded directly.
func validateResolution(d *models.AdjudicationDetails, code models.OutcomeCode) error {
	if latest := d.LatestOutcome(); latest != nil && latest.Code.IsReferral() {
		if !latest.Code.CanTransitionTo(code) {
			return models.NewValidationError("Invalid status transition")
		}
	}
	return nil
}

// deletableViaAPI limits direct outcome deletion to records the case-level API owns: a
// not-proceed, a quash, or a police referral raised before any hearing existed
func deletableViaAPI(d *models.AdjudicationDetails, outcome *models.Outcome) bool {
	switch outcome.Code {
	case models.OutcomeNotProceed, models.OutcomeQuashed:
		return true
	case models.OutcomeReferPolice:
		return len(d.Hearings) == 0
	default:
		return false
	}
}

// previousOutcome returns the outcome created immediately before the given one
func previousOutcome(d *models.AdjudicationDetails, outcomeID string) *models.Outcome {
	sorted := d.OutcomesSorted()
	for i := range sorted {
		if sorted[i].ID == outcomeID && i > 0 {
			prior := sorted[i-1]
			for j := range d.Outcomes {
				if d.Outcomes[j].ID == prior.ID {
					return &d.Outcomes[j]
				}
			}
		}
	}
	return nil
}

// latestPlea returns the plea entered at the most recent hearing, or NOT_ASKED when the
// case has no hearing outcome to take one from
func latestPlea(d *models.AdjudicationDetails) models.HearingOutcomePlea {
	hearings := d.HearingsSorted()
	for i := len(hearings) - 1; i >= 0; i-- {
		if hearings[i].Outcome != nil && hearings[i].Outcome.Plea != "" {
			return hearings[i].Outcome.Plea
		}
	}
	return models.PleaNotAsked
}
