package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/models"
)

// MigrationHearing is one legacy hearing carried on a migration record
type MigrationHearing struct {
	OicHearingID int64
	DateTime     time.Time
	LocationID   int64
	HearingType  models.OicHearingType
	Adjudicator  string
	Finding      models.Finding
	Plea         models.HearingOutcomePlea
}

// MigrationRecord is one legacy adjudication as the migration feed delivers it
type MigrationRecord struct {
	ChargeNumber      string
	PrisonerNumber    string
	OffenderBookingID int64
	AgencyID          string
	ReportedBy        string
	ReportedAt        time.Time
	Hearings          []MigrationHearing
	Punishments       []models.Punishment
}

// MigrateService owns the destructive reset of migrated data so a migration run can be
// replayed from scratch
type MigrateService struct {
	DB databases.AdjudicationDatabase
}

// Reset deletes every migrated record, leaving records created through this service
// untouched. Returns the number of records removed.
func (s *MigrateService) Reset(ctx context.Context) (int64, error) {
	deleted, err := s.DB.DeleteMany(ctx, bson.M{"adjudication.migrated": true})
	if err != nil {
		return 0, err
	}
	zap.S().Infof("migration reset removed %d records", deleted)
	return deleted, nil
}

// MigrateNewRecordService accepts one legacy record into the adjudications store,
// translating legacy findings into the outcome chain this workflow maintains
type MigrateNewRecordService struct {
	DB    databases.AdjudicationDatabase
	Clock Clock
}

// AcceptNewRecord translates and stores one migration record. A record whose charge
// number already exists is rejected; the feed retries are idempotent at the caller.
func (s *MigrateNewRecordService) AcceptNewRecord(ctx context.Context, record MigrationRecord) (*models.ReportedAdjudication, error) {
	existing, err := s.DB.CountDocuments(ctx, chargeFilter(record.ChargeNumber))
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, models.NewValidationError(fmt.Sprintf("charge number %s already exists", record.ChargeNumber))
	}

	at := now(s.Clock)
	details := models.AdjudicationDetails{
		ChargeNumber:        record.ChargeNumber,
		PrisonerNumber:      record.PrisonerNumber,
		OffenderBookingID:   record.OffenderBookingID,
		OriginatingAgencyID: record.AgencyID,
		Punishments:         record.Punishments,
		Migrated:            true,
		CreatedAt:           primitive.NewDateTimeFromTime(record.ReportedAt),
		UpdatedAt:           primitive.NewDateTimeFromTime(at),
		CreatedBy:           record.ReportedBy,
	}

	for _, legacyHearing := range record.Hearings {
		oicHearingID := legacyHearing.OicHearingID
		hearing := models.Hearing{
			ID:                uuid.New().String(),
			LocationID:        legacyHearing.LocationID,
			DateTimeOfHearing: primitive.NewDateTimeFromTime(legacyHearing.DateTime),
			OicHearingType:    legacyHearing.HearingType,
			OicHearingID:      &oicHearingID,
			AgencyID:          record.AgencyID,
		}
		if legacyHearing.Finding != "" {
			outcome, hearingOutcome, err := translateFinding(legacyHearing, record.ReportedBy)
			if err != nil {
				return nil, err
			}
			hearing.Outcome = hearingOutcome
			for i := range outcome {
				outcome[i].OicHearingID = &oicHearingID
				details.Outcomes = append(details.Outcomes, outcome[i])
			}
		}
		details.Hearings = append(details.Hearings, hearing)
	}

	details.Status = DeriveStatus(&details)
	adjudication := &models.ReportedAdjudication{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := s.DB.InsertOne(ctx, adjudication); err != nil {
		return nil, err
	}
	return adjudication, nil
}

// translateFinding maps one legacy finding to the outcome records this workflow would
// have written. A quashed finding implies the charge was first proved, so it expands to
// the proved-then-quashed pair.
func translateFinding(hearing MigrationHearing, actor string) ([]models.Outcome, *models.HearingOutcome, error) {
	complete := &models.HearingOutcome{
		ID:          uuid.New().String(),
		Code:        models.HearingOutcomeComplete,
		Adjudicator: hearing.Adjudicator,
		Plea:        hearing.Plea,
	}
	at := hearing.DateTime

	switch hearing.Finding {
	case models.FindingProved:
		return []models.Outcome{newOutcome(models.OutcomeChargeProved, "", actor, at)}, complete, nil
	case models.FindingDismissed:
		return []models.Outcome{newOutcome(models.OutcomeDismissed, "", actor, at)}, complete, nil
	case models.FindingNotProceed:
		return []models.Outcome{newOutcome(models.OutcomeNotProceed, "", actor, at)}, complete, nil
	case models.FindingRefPolice:
		referral := &models.HearingOutcome{
			ID:          uuid.New().String(),
			Code:        models.HearingOutcomeReferPolice,
			Adjudicator: hearing.Adjudicator,
		}
		return []models.Outcome{newOutcome(models.OutcomeReferPolice, "", actor, at)}, referral, nil
	case models.FindingProsecuted:
		return []models.Outcome{
			newOutcome(models.OutcomeReferPolice, "", actor, at),
			newOutcome(models.OutcomeProsecution, "", actor, at.Add(time.Second)),
		}, complete, nil
	case models.FindingQuashed:
		return []models.Outcome{
			newOutcome(models.OutcomeChargeProved, "", actor, at),
			newOutcome(models.OutcomeQuashed, "", actor, at.Add(time.Second)),
		}, complete, nil
	case models.FindingAdjourned:
		adjourned := &models.HearingOutcome{
			ID:          uuid.New().String(),
			Code:        models.HearingOutcomeAdjourn,
			Adjudicator: hearing.Adjudicator,
			Plea:        hearing.Plea,
		}
		return nil, adjourned, nil
	default:
		return nil, nil, models.NewValidationError(fmt.Sprintf("unknown legacy finding %s", hearing.Finding))
	}
}

// MigrationFixService repairs migrated records whose hearing and outcome data landed in
// contradictory shapes. Only the two documented corruption shapes are fixed; anything
// else is logged for manual review and left alone.
type MigrationFixService struct {
	DB    databases.AdjudicationDatabase
	Clock Clock
}

// Repair runs one pass over migrated records and returns the charge numbers fixed
func (s *MigrationFixService) Repair(ctx context.Context) ([]string, error) {
	records, err := s.DB.Find(ctx, bson.M{"adjudication.migrated": true})
	if err != nil {
		return nil, err
	}

	var fixed []string
	for i := range records {
		adjudication := &records[i]
		d := &adjudication.Details

		switch {
		case len(d.Punishments) > 0 && len(d.Outcomes) == 0:
			d.Status = models.StatusInvalidOutcome
		case hasSameDayAdjournAndComplete(d):
			// the legacy feed wrote the adjournment and the final result as two
			// hearings on the same day; the outcome chain is authoritative
			if latest := d.LatestOutcome(); latest != nil {
				d.Status = latest.Code.Status()
			}
		case d.Status == DeriveStatus(d):
			continue
		default:
			zap.S().Warnw("migrated record in unrecognised shape, skipping",
				"chargeNumber", d.ChargeNumber,
				"status", d.Status,
			)
			continue
		}

		if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
			return fixed, err
		}
		fixed = append(fixed, d.ChargeNumber)
	}
	return fixed, nil
}

// hasSameDayAdjournAndComplete detects the double-hearing corruption shape: an
// adjourned hearing and a completed hearing on the same calendar day
func hasSameDayAdjournAndComplete(d *models.AdjudicationDetails) bool {
	days := make(map[string]models.HearingOutcomeCode)
	for _, hearing := range d.Hearings {
		if hearing.Outcome == nil {
			continue
		}
		day := hearing.DateTimeOfHearing.Time().UTC().Format("2006-01-02")
		prior, seen := days[day]
		if !seen {
			days[day] = hearing.Outcome.Code
			continue
		}
		if (prior == models.HearingOutcomeAdjourn && hearing.Outcome.Code == models.HearingOutcomeComplete) ||
			(prior == models.HearingOutcomeComplete && hearing.Outcome.Code == models.HearingOutcomeAdjourn) {
			return true
		}
	}
	return false
}
