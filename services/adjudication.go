package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/events"
	"github.com/justicelabs/adjudications-api/models"
	"github.com/justicelabs/adjudications-api/nomis"
)

// CreateAdjudicationRequest is the payload to report a new adjudication
type CreateAdjudicationRequest struct {
	PrisonerNumber     string
	OffenderBookingID  int64
	AgencyID           string
	IncidentLocationID int64
	IncidentTime       time.Time
	Statement          string
	OffenceCodes       []string
	Damages            []models.ReportedDamage
	Evidence           []models.ReportedEvidence
	Witnesses          []models.ReportedWitness
}

// AdjudicationService owns the report lifecycle up to the point a case enters the
// hearing workflow: creation, the review decisions, and reads
type AdjudicationService struct {
	DB      databases.AdjudicationDatabase
	Gateway nomis.Gateway
	Events  events.Publisher
	Clock   Clock
}

// Get returns the adjudication for the given charge number
func (s *AdjudicationService) Get(ctx context.Context, chargeNumber string) (*models.ReportedAdjudication, error) {
	return findByChargeNumber(ctx, s.DB, chargeNumber)
}

// GetByAgency returns a page of the agency's cases, newest first, optionally filtered
// to a status set. Page numbers are 1-based.
func (s *AdjudicationService) GetByAgency(ctx context.Context, agencyID string, statuses []models.ReportedAdjudicationStatus, limit, page int) ([]models.ReportedAdjudication, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"adjudication.overrideAgencyId": agencyID},
			bson.M{
				"adjudication.originatingAgencyId": agencyID,
				"adjudication.overrideAgencyId":    bson.M{"$in": bson.A{nil, ""}},
			},
		},
	}
	if len(statuses) > 0 {
		filter["adjudication.status"] = bson.M{"$in": statuses}
	}
	opts := databases.PaginatedOpts(limit, page)
	opts.SetSort(bson.M{"adjudication.createdAt": -1})
	return s.DB.Find(ctx, filter, opts)
}

// GetByPrisoner returns all cases for a prisoner, newest first
func (s *AdjudicationService) GetByPrisoner(ctx context.Context, prisonerNumber string) ([]models.ReportedAdjudication, error) {
	filter := bson.M{"adjudication.prisonerNumber": prisonerNumber}
	opts := databases.PaginatedOpts(100, 1)
	opts.SetSort(bson.M{"adjudication.createdAt": -1})
	return s.DB.Find(ctx, filter, opts)
}

// Create stores a newly reported adjudication awaiting review. The charge number is
// the reporting agency plus a zero-padded per-agency sequence.
func (s *AdjudicationService) Create(ctx context.Context, req CreateAdjudicationRequest, actor string) (*models.ReportedAdjudication, error) {
	if req.PrisonerNumber == "" || req.AgencyID == "" {
		return nil, models.NewValidationError("prisoner number and agency id are required")
	}
	if req.Statement == "" {
		return nil, models.NewValidationError("statement is required")
	}

	chargeNumber, err := s.nextChargeNumber(ctx, req.AgencyID)
	if err != nil {
		return nil, err
	}

	at := now(s.Clock)
	adjudication := &models.ReportedAdjudication{
		ID: primitive.NewObjectID(),
		Details: models.AdjudicationDetails{
			ChargeNumber:        chargeNumber,
			PrisonerNumber:      req.PrisonerNumber,
			OffenderBookingID:   req.OffenderBookingID,
			OriginatingAgencyID: req.AgencyID,
			IncidentLocationID:  req.IncidentLocationID,
			IncidentTime:        primitive.NewDateTimeFromTime(req.IncidentTime),
			Statement:           req.Statement,
			OffenceCodes:        req.OffenceCodes,
			Status:              models.StatusAwaitingReview,
			Damages:             req.Damages,
			Evidence:            req.Evidence,
			Witnesses:           req.Witnesses,
			CreatedAt:           primitive.NewDateTimeFromTime(at),
			UpdatedAt:           primitive.NewDateTimeFromTime(at),
			CreatedBy:           actor,
		},
	}
	if _, err := s.DB.InsertOne(ctx, adjudication); err != nil {
		return nil, err
	}

	if s.Events != nil {
		s.Events.Publish(ctx, events.Event{
			Type:         events.TypeAdjudicationCreated,
			ChargeNumber: chargeNumber,
			PrisonID:     req.AgencyID,
		})
	}
	return adjudication, nil
}

// SetStatus moves a case through the review workflow. Accepting a report (moving it to
// UNSCHEDULED) publishes it to the legacy system first, so a gateway failure leaves the
// report awaiting review.
func (s *AdjudicationService) SetStatus(ctx context.Context, chargeNumber string, status models.ReportedAdjudicationStatus, reason, details, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	if !adjudication.Details.Status.CanReviewTransitionTo(status) {
		return nil, models.NewValidationError("Invalid status transition")
	}

	if status == models.StatusUnscheduled && s.Gateway != nil {
		err := s.Gateway.PublishAdjudication(ctx, nomis.AdjudicationRequest{
			OffenderNumber:     adjudication.Details.PrisonerNumber,
			AgencyID:           adjudication.Details.OriginatingAgencyID,
			IncidentLocationID: adjudication.Details.IncidentLocationID,
			IncidentTime:       adjudication.Details.IncidentTime.Time().UTC().Format(time.RFC3339),
			StatementDetails:   adjudication.Details.Statement,
			OffenceCodes:       adjudication.Details.OffenceCodes,
		})
		if err != nil {
			return nil, err
		}
	}

	adjudication.Details.Status = status
	adjudication.Details.StatusReason = reason
	adjudication.Details.StatusDetails = details
	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	publishStatusChanged(ctx, s.Events, &adjudication.Details)
	return adjudication, nil
}

// nextChargeNumber allocates the next charge number for the agency. The sequence is
// derived from the current count; a clash on concurrent creates surfaces as a duplicate
// key error from the unique index and the caller retries.
func (s *AdjudicationService) nextChargeNumber(ctx context.Context, agencyID string) (string, error) {
	count, err := s.DB.CountDocuments(ctx, bson.M{"adjudication.originatingAgencyId": agencyID})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", agencyID, count+1), nil
}
