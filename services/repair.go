package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/models"
)

// ActivatedSuspendedRepairService reconciles dangling activation links. An origin
// punishment holds a back-reference to the charge that activated it; when that charge
// was since deleted, quashed, or lost its activated clone, the origin is stuck active
// with nothing justifying it. Repair restores such punishments to their suspended state.
type ActivatedSuspendedRepairService struct {
	DB    databases.AdjudicationDatabase
	Clock Clock
}

// Repair scans every report holding activated punishments, verifies each back-reference
// against the acting charge, and reverts the orphaned ones. Returns the charge numbers
// that were touched.
func (s *ActivatedSuspendedRepairService) Repair(ctx context.Context) ([]string, error) {
	filter := bson.M{
		"adjudication.punishments.activatedByChargeNumber": bson.M{"$exists": true, "$ne": ""},
	}
	origins, err := s.DB.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var touched []string
	for i := range origins {
		origin := &origins[i]
		changed := false
		for j := range origin.Details.Punishments {
			punishment := &origin.Details.Punishments[j]
			if punishment.ActivatedByChargeNumber == "" {
				continue
			}
			ok, err := s.activationHolds(ctx, origin.Details.ChargeNumber, punishment)
			if err != nil {
				return touched, err
			}
			if ok {
				continue
			}
			zap.S().Infow("reverting orphaned activation",
				"chargeNumber", origin.Details.ChargeNumber,
				"punishmentId", punishment.ID,
				"actingCharge", punishment.ActivatedByChargeNumber,
			)
			if latest := punishment.LatestSchedule(); latest != nil && latest.IsActive() {
				punishment.Schedules = punishment.Schedules[:len(punishment.Schedules)-1]
			}
			punishment.ActivatedByChargeNumber = ""
			changed = true
		}
		if changed {
			if err := saveAggregate(ctx, s.DB, origin, s.Clock); err != nil {
				return touched, err
			}
			touched = append(touched, origin.Details.ChargeNumber)
		}
	}
	return touched, nil
}

// activationHolds checks that the acting charge still exists, is still proved, and
// still carries the activated clone pointing back at the origin
func (s *ActivatedSuspendedRepairService) activationHolds(ctx context.Context, originChargeNumber string, punishment *models.Punishment) (bool, error) {
	acting, err := s.DB.FindOne(ctx, chargeFilter(punishment.ActivatedByChargeNumber))
	if err != nil {
		return false, nil
	}
	if acting.Details.Status != models.StatusChargeProved {
		return false, nil
	}
	for _, clone := range acting.Details.Punishments {
		if clone.ActivatedFromChargeNumber == originChargeNumber && clone.Type == punishment.Type {
			return true, nil
		}
	}
	return false, nil
}
