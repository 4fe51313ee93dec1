package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/events"
	"github.com/justicelabs/adjudications-api/models"
)

// Clock supplies the current time to the services; tests pin it
type Clock func() time.Time

func now(c Clock) time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func chargeFilter(chargeNumber string) bson.M {
	return bson.M{"adjudication.chargeNumber": chargeNumber}
}

func findByChargeNumber(ctx context.Context, db databases.AdjudicationDatabase, chargeNumber string) (*models.ReportedAdjudication, error) {
	adjudication, err := db.FindOne(ctx, chargeFilter(chargeNumber))
	if err != nil {
		return nil, models.NewNotFoundError(fmt.Sprintf("adjudication not found for charge number %s", chargeNumber))
	}
	return adjudication, nil
}

func saveAggregate(ctx context.Context, db databases.AdjudicationDatabase, adjudication *models.ReportedAdjudication, clock Clock) error {
	adjudication.Details.UpdatedAt = primitive.NewDateTimeFromTime(now(clock))
	adjudication.Version++
	return db.ReplaceOne(ctx, bson.M{"_id": adjudication.ID}, adjudication)
}

func newOutcome(code models.OutcomeCode, details, actor string, at time.Time) models.Outcome {
	return models.Outcome{
		ID:        uuid.New().String(),
		Code:      code,
		Details:   details,
		CreatedAt: primitive.NewDateTimeFromTime(at),
		CreatedBy: actor,
	}
}

func publishStatusChanged(ctx context.Context, publisher events.Publisher, d *models.AdjudicationDetails) {
	if publisher == nil {
		return
	}
	publisher.Publish(ctx, events.Event{
		Type:         events.TypeStatusChanged,
		ChargeNumber: d.ChargeNumber,
		PrisonID:     d.AgencyID(),
	})
}
