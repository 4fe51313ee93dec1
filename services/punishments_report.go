package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/models"
)

// SuspendedPunishment is a suspended punishment available for activation, tagged with
// the charge it was imposed on. Corrupted marks a punishment found on a case that never
// reached a proved status; such rows are returned flagged so callers can see the bad
// data rather than having it silently hidden.
type SuspendedPunishment struct {
	ChargeNumber string            `json:"chargeNumber"`
	Punishment   models.Punishment `json:"punishment"`
	Corrupted    bool              `json:"corrupted,omitempty"`
}

// AdditionalDaysReport is a punishment of added days on a proved charge, annotated with
// the proved date of the charge it runs consecutive to
type AdditionalDaysReport struct {
	ChargeNumber     string            `json:"chargeNumber"`
	ChargeProvedDate *time.Time        `json:"chargeProvedDate,omitempty"`
	Punishment       models.Punishment `json:"punishment"`
}

// PunishmentsReportService answers read queries over punishments across a prisoner's
// reports
type PunishmentsReportService struct {
	DB    databases.AdjudicationDatabase
	Clock Clock
}

// GetSuspendedPunishments returns the prisoner's suspended punishments that are still
// available to activate, meaning the suspension has not yet expired. Punishments
// carrying rehabilitative activities are managed through their own review flow and are
// excluded, as are punishments another charge already activated. A suspended punishment
// on a case that never reached a proved status is migration corruption and comes back
// flagged, not dropped.
func (s *PunishmentsReportService) GetSuspendedPunishments(ctx context.Context, prisonerNumber string) ([]SuspendedPunishment, error) {
	filter := bson.M{
		"adjudication.prisonerNumber": prisonerNumber,
		"adjudication.punishments":    bson.M{"$exists": true, "$ne": bson.A{}},
	}
	reports, err := s.DB.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	at := now(s.Clock)
	var suspended []SuspendedPunishment
	for i := range reports {
		d := &reports[i].Details
		for _, punishment := range d.Punishments {
			if !punishment.IsSuspended() || punishment.ActivatedByChargeNumber != "" {
				continue
			}
			if !punishment.LatestSchedule().SuspendedUntil.Time().After(at) {
				continue
			}
			if len(punishment.RehabilitativeActivities) > 0 {
				continue
			}
			if d.Status == models.StatusQuashed {
				// quashed charges keep their punishment history but nothing on them
				// can be activated
				continue
			}
			corrupted := !d.Status.IsChargeProvedDerived()
			if corrupted {
				zap.S().Warnf("suspended punishment on %s with status %s", d.ChargeNumber, d.Status)
			}
			suspended = append(suspended, SuspendedPunishment{
				ChargeNumber: d.ChargeNumber,
				Punishment:   punishment,
				Corrupted:    corrupted,
			})
		}
	}
	return suspended, nil
}

// GetReportsWithAdditionalDays returns the prisoner's proved punishments of the given
// added-days type that run consecutive to another charge. Each row is annotated with
// the proved date of the referenced charge, not the punishment's own, so consecutive
// chains can be ordered.
func (s *PunishmentsReportService) GetReportsWithAdditionalDays(ctx context.Context, prisonerNumber string, punishmentType models.PunishmentType) ([]AdditionalDaysReport, error) {
	if punishmentType != models.PunishmentAdditionalDays && punishmentType != models.PunishmentProspectiveDays {
		return nil, models.NewValidationError("punishment type must be ADDITIONAL_DAYS or PROSPECTIVE_DAYS")
	}

	filter := bson.M{
		"adjudication.prisonerNumber": prisonerNumber,
		"adjudication.status":         models.StatusChargeProved,
		"adjudication.punishments": bson.M{"$elemMatch": bson.M{
			"type":                      punishmentType,
			"consecutiveToChargeNumber": bson.M{"$exists": true, "$ne": ""},
		}},
	}
	reports, err := s.DB.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	provedDates := map[string]*time.Time{}
	var result []AdditionalDaysReport
	for i := range reports {
		d := &reports[i].Details
		for _, punishment := range d.Punishments {
			if punishment.Type != punishmentType || punishment.ConsecutiveToChargeNumber == "" {
				continue
			}
			provedDate, seen := provedDates[punishment.ConsecutiveToChargeNumber]
			if !seen {
				referenced, err := findByChargeNumber(ctx, s.DB, punishment.ConsecutiveToChargeNumber)
				if err != nil {
					// a dangling consecutive reference is legacy corruption; the row
					// still comes back, undated
					zap.S().Warnf("consecutive charge %s referenced by %s not found",
						punishment.ConsecutiveToChargeNumber, d.ChargeNumber)
				} else {
					provedDate = chargeProvedDate(&referenced.Details)
				}
				provedDates[punishment.ConsecutiveToChargeNumber] = provedDate
			}
			result = append(result, AdditionalDaysReport{
				ChargeNumber:     d.ChargeNumber,
				ChargeProvedDate: provedDate,
				Punishment:       punishment,
			})
		}
	}
	return result, nil
}

// chargeProvedDate is the date of the hearing that completed with the proved finding,
// taken as the latest completed hearing
func chargeProvedDate(d *models.AdjudicationDetails) *time.Time {
	sorted := d.HearingsSorted()
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Outcome != nil && sorted[i].Outcome.Code == models.HearingOutcomeComplete {
			at := sorted[i].DateTimeOfHearing.Time().UTC()
			return &at
		}
	}
	return nil
}
