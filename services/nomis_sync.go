package services

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/nomis"
)

// NomisOutcomeService mirrors outcome create/amend/delete operations into the legacy
// gateway's hearing-result calls during the migration period.
//
// Rules: REFER_INAD never calls the gateway (no legacy equivalent); a hearing must
// exist for PROSECUTION, so one is created in the legacy system first; delete removes
// the legacy hearing itself only when the outcome was PROSECUTION, since such hearings
// exist purely to carry the prosecution result.
type NomisOutcomeService struct {
	Gateway nomis.Gateway
}

// CreateHearingResult mirrors the creation of an outcome. Callers invoke it before the
// local save so a gateway failure leaves local state unchanged.
func (s *NomisOutcomeService) CreateHearingResult(ctx context.Context, d *models.AdjudicationDetails, outcome *models.Outcome, plea models.HearingOutcomePlea) error {
	if s == nil || s.Gateway == nil {
		return nil
	}
	if outcome.Code == models.OutcomeReferInad {
		return nil
	}
	finding, ok := outcome.Code.Finding()
	if !ok {
		return nil
	}

	hearingID, err := s.hearingIDFor(ctx, d, outcome)
	if err != nil {
		return err
	}
	if hearingID == nil {
		zap.S().Debugf("no hearing to mirror outcome %s for %s", outcome.Code, d.ChargeNumber)
		return nil
	}
	outcome.OicHearingID = hearingID

	return s.Gateway.CreateHearingResult(ctx, d.ChargeNumber, *hearingID, nomis.HearingResultRequest{
		Finding: finding,
		Plea:    nomis.PleaFor(plea),
	})
}

// AmendHearingResult mirrors an amendment to an existing outcome
func (s *NomisOutcomeService) AmendHearingResult(ctx context.Context, d *models.AdjudicationDetails, outcome *models.Outcome, plea models.HearingOutcomePlea) error {
	if s == nil || s.Gateway == nil {
		return nil
	}
	if outcome.Code == models.OutcomeReferInad {
		return nil
	}
	finding, ok := outcome.Code.Finding()
	if !ok || outcome.OicHearingID == nil {
		return nil
	}
	return s.Gateway.AmendHearingResult(ctx, d.ChargeNumber, *outcome.OicHearingID, nomis.HearingResultRequest{
		Finding: finding,
		Plea:    nomis.PleaFor(plea),
	})
}

// DeleteHearingResult mirrors the removal of an outcome
func (s *NomisOutcomeService) DeleteHearingResult(ctx context.Context, d *models.AdjudicationDetails, outcome *models.Outcome) error {
	if s == nil || s.Gateway == nil {
		return nil
	}
	if outcome.Code == models.OutcomeReferInad {
		return nil
	}
	if _, ok := outcome.Code.Finding(); !ok {
		return nil
	}
	hearingID := outcome.OicHearingID
	if hearingID == nil {
		if latest := d.LatestHearing(); latest != nil {
			hearingID = latest.OicHearingID
		}
	}
	if hearingID == nil {
		return nil
	}

	if err := s.Gateway.DeleteHearingResult(ctx, d.ChargeNumber, *hearingID); err != nil {
		return err
	}
	if outcome.Code == models.OutcomeProsecution {
		// the legacy hearing was created purely to carry the prosecution result
		return s.Gateway.DeleteHearing(ctx, d.ChargeNumber, *hearingID)
	}
	return nil
}

// CreateAdjournResult mirrors an adjournment recorded against a hearing
func (s *NomisOutcomeService) CreateAdjournResult(ctx context.Context, d *models.AdjudicationDetails, hearing *models.Hearing, plea models.HearingOutcomePlea) error {
	if s == nil || s.Gateway == nil || hearing.OicHearingID == nil {
		return nil
	}
	return s.Gateway.CreateHearingResult(ctx, d.ChargeNumber, *hearing.OicHearingID, nomis.HearingResultRequest{
		Finding: models.FindingAdjourned,
		Plea:    nomis.PleaFor(plea),
	})
}

func (s *NomisOutcomeService) hearingIDFor(ctx context.Context, d *models.AdjudicationDetails, outcome *models.Outcome) (*int64, error) {
	if outcome.OicHearingID != nil {
		return outcome.OicHearingID, nil
	}
	if latest := d.LatestHearing(); latest != nil && latest.OicHearingID != nil {
		return latest.OicHearingID, nil
	}
	if outcome.Code != models.OutcomeProsecution {
		return nil, nil
	}

	// prosecution needs a legacy hearing to carry the result; create one there first
	hearingID, err := s.Gateway.CreateHearing(ctx, d.ChargeNumber, nomis.HearingRequest{
		HearingType: string(models.HearingTypeGovAdult),
	})
	if err != nil {
		return nil, err
	}
	return &hearingID, nil
}

// NomisHearingOutcomeService sweeps hearings that have no outcome recorded here and
// asks the legacy system whether a result now exists for them. Matches are stamped
// with a NOMIS placeholder outcome signalling "resolved externally, not through this
// system's workflow". The case status is left untouched.
type NomisHearingOutcomeService struct {
	DB      databases.AdjudicationDatabase
	Gateway nomis.Gateway
	Clock   Clock
}

// CheckForNomisHearingOutcomesAndUpdate runs one sweep and returns the number of
// hearings stamped
func (s *NomisHearingOutcomeService) CheckForNomisHearingOutcomesAndUpdate(ctx context.Context) (int, error) {
	filter := bson.M{
		"adjudication.hearings": bson.M{
			"$elemMatch": bson.M{
				"outcome":      bson.M{"$exists": false},
				"oicHearingId": bson.M{"$exists": true},
			},
		},
	}
	candidates, err := s.DB.Find(ctx, filter)
	if err != nil {
		return 0, err
	}

	stamped := 0
	for i := range candidates {
		adjudication := &candidates[i]
		changed := false
		for j := range adjudication.Details.Hearings {
			hearing := &adjudication.Details.Hearings[j]
			if hearing.Outcome != nil || hearing.OicHearingID == nil {
				continue
			}
			exists, err := s.Gateway.HearingOutcomesExistInNomis(ctx, adjudication.Details.ChargeNumber, *hearing.OicHearingID)
			if err != nil {
				zap.S().Errorw("failed to check nomis for hearing outcome",
					"chargeNumber", adjudication.Details.ChargeNumber,
					"oicHearingId", *hearing.OicHearingID,
					"error", err,
				)
				continue
			}
			if !exists {
				continue
			}
			hearing.Outcome = &models.HearingOutcome{
				ID:          uuid.New().String(),
				Code:        models.HearingOutcomeNomis,
				Adjudicator: "",
			}
			changed = true
			stamped++
		}
		if changed {
			if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
				return stamped, err
			}
		}
	}
	return stamped, nil
}
