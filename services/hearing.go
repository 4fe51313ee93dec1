package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/events"
	"github.com/justicelabs/adjudications-api/locations"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/nomis"
)

// HearingRequest is the payload to schedule or amend a hearing
type HearingRequest struct {
	LocationID        int64
	DateTimeOfHearing time.Time
	OicHearingType    models.OicHearingType
}

// HearingService schedules, amends and removes hearings, mirroring each change into
// the legacy system
type HearingService struct {
	DB        databases.AdjudicationDatabase
	Gateway   nomis.Gateway
	Locations *locations.Client
	Events    events.Publisher
	Clock     Clock
}

// hearingSources are the statuses a new hearing may be scheduled from.
var hearingSources = map[models.ReportedAdjudicationStatus]bool{
	models.StatusUnscheduled: true,
	models.StatusScheduled:   true,
	models.StatusAdjourned:   true,
	models.StatusReferPolice: true,
	models.StatusReferInad:   true,
}

// CreateHearing schedules a hearing for the charge. When the latest outcome is an
// unresolved referral the hearing also resolves it, recording a SCHEDULE_HEARING
// outcome; subsequent hearings (relists after adjournment) do not add another.
func (s *HearingService) CreateHearing(ctx context.Context, chargeNumber string, req HearingRequest, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	if !hearingSources[adjudication.Details.Status] {
		return nil, models.NewValidationError("Invalid status transition")
	}

	at := now(s.Clock)
	if latest := adjudication.Details.LatestOutcome(); latest != nil && latest.Code.IsReferral() {
		if !latest.Code.CanTransitionTo(models.OutcomeScheduleHearing) {
			return nil, models.NewValidationError("Invalid status transition")
		}
		adjudication.Details.Outcomes = append(adjudication.Details.Outcomes,
			newOutcome(models.OutcomeScheduleHearing, "", actor, at))
	}

	hearing := models.Hearing{
		ID:                uuid.New().String(),
		LocationID:        req.LocationID,
		DateTimeOfHearing: primitive.NewDateTimeFromTime(req.DateTimeOfHearing),
		OicHearingType:    req.OicHearingType,
		AgencyID:          adjudication.Details.AgencyID(),
	}
	if s.Locations != nil {
		// best effort; the backfill job fills any misses
		if locationUUID, err := s.Locations.LocationUUID(ctx, req.LocationID); err == nil {
			hearing.LocationUUID = locationUUID
		} else {
			zap.S().Warnf("failed to resolve location %d: %v", req.LocationID, err)
		}
	}
	if s.Gateway != nil {
		oicHearingID, err := s.Gateway.CreateHearing(ctx, chargeNumber, nomis.HearingRequest{
			HearingType: string(req.OicHearingType),
			DateTime:    req.DateTimeOfHearing.Format(time.RFC3339),
			LocationID:  req.LocationID,
		})
		if err != nil {
			return nil, err
		}
		hearing.OicHearingID = &oicHearingID
	}

	adjudication.Details.Hearings = append(adjudication.Details.Hearings, hearing)
	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// AmendHearing changes the time, location or type of the latest hearing. A hearing
// that already has an outcome is part of the case history and cannot be amended.
func (s *HearingService) AmendHearing(ctx context.Context, chargeNumber string, req HearingRequest, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	hearing := adjudication.Details.LatestHearing()
	if hearing == nil {
		return nil, models.NewNotFoundError("Hearing not found")
	}
	if hearing.Outcome != nil {
		return nil, models.NewValidationError("cannot amend a hearing with an outcome")
	}

	hearing.LocationID = req.LocationID
	hearing.DateTimeOfHearing = primitive.NewDateTimeFromTime(req.DateTimeOfHearing)
	hearing.OicHearingType = req.OicHearingType
	if s.Locations != nil {
		if locationUUID, err := s.Locations.LocationUUID(ctx, req.LocationID); err == nil {
			hearing.LocationUUID = locationUUID
		}
	}

	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// DeleteHearing removes the latest hearing. When the hearing resolved a referral, the
// SCHEDULE_HEARING outcome it added is removed with it so the referral becomes
// outstanding again.
func (s *HearingService) DeleteHearing(ctx context.Context, chargeNumber, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	hearing := adjudication.Details.LatestHearing()
	if hearing == nil {
		return nil, models.NewNotFoundError("Hearing not found")
	}
	if hearing.Outcome != nil {
		return nil, models.NewValidationError("cannot delete a hearing with an outcome")
	}

	if s.Gateway != nil && hearing.OicHearingID != nil {
		if err := s.Gateway.DeleteHearing(ctx, chargeNumber, *hearing.OicHearingID); err != nil {
			return nil, err
		}
	}

	kept := adjudication.Details.Hearings[:0]
	for _, h := range adjudication.Details.Hearings {
		if h.ID != hearing.ID {
			kept = append(kept, h)
		}
	}
	adjudication.Details.Hearings = kept

	// a SCHEDULE_HEARING outcome with no hearing left to back it means this hearing
	// resolved a referral; unwind that resolution
	if countOutcomes(&adjudication.Details, models.OutcomeScheduleHearing) > len(adjudication.Details.Hearings) {
		removeLatestOutcomeOfCode(&adjudication.Details, models.OutcomeScheduleHearing)
	}

	adjudication.Details.Status = DeriveStatus(&adjudication.Details)
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// AgencyHearing is one entry on an agency's daily hearing schedule
type AgencyHearing struct {
	ChargeNumber   string                            `json:"chargeNumber"`
	PrisonerNumber string                            `json:"prisonerNumber"`
	Status         models.ReportedAdjudicationStatus `json:"status"`
	Hearing        models.Hearing                    `json:"hearing"`
}

// GetHearingsForAgencyAndDate returns every hearing scheduled at the agency on the
// given day, across all charges, ordered by hearing time within each charge
func (s *HearingService) GetHearingsForAgencyAndDate(ctx context.Context, agencyID string, date time.Time) ([]AgencyHearing, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	filter := bson.M{
		"adjudication.hearings": bson.M{
			"$elemMatch": bson.M{
				"agencyId": agencyID,
				"dateTimeOfHearing": bson.M{
					"$gte": primitive.NewDateTimeFromTime(dayStart),
					"$lt":  primitive.NewDateTimeFromTime(dayEnd),
				},
			},
		},
	}
	matches, err := s.DB.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var result []AgencyHearing
	for i := range matches {
		d := &matches[i].Details
		for _, hearing := range d.HearingsSorted() {
			at := hearing.DateTimeOfHearing.Time().UTC()
			if hearing.AgencyID != agencyID || at.Before(dayStart) || !at.Before(dayEnd) {
				continue
			}
			result = append(result, AgencyHearing{
				ChargeNumber:   d.ChargeNumber,
				PrisonerNumber: d.PrisonerNumber,
				Status:         d.Status,
				Hearing:        hearing,
			})
		}
	}
	return result, nil
}

func countOutcomes(d *models.AdjudicationDetails, code models.OutcomeCode) int {
	n := 0
	for _, o := range d.Outcomes {
		if o.Code == code {
			n++
		}
	}
	return n
}

func removeLatestOutcomeOfCode(d *models.AdjudicationDetails, code models.OutcomeCode) {
	sorted := d.OutcomesSorted()
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Code != code {
			continue
		}
		kept := d.Outcomes[:0]
		for _, o := range d.Outcomes {
			if o.ID != sorted[i].ID {
				kept = append(kept, o)
			}
		}
		d.Outcomes = kept
		return
	}
}
