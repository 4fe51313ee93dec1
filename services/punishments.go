package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/events"
	"github.com/justicelabs/adjudications-api/models"
)

// PunishmentRequest is one requested punishment on a charge-proved case. When
// ActivatedFrom is set, ID identifies the suspended punishment on the origin charge
// that is being invoked here.
type PunishmentRequest struct {
	ID                        string
	Type                      models.PunishmentType
	PrivilegeType             models.PrivilegeType
	OtherPrivilege            string
	StoppagePercentage        *int
	Amount                    *float64
	Days                      int
	StartDate                 *time.Time
	EndDate                   *time.Time
	SuspendedUntil            *time.Time
	ActivatedFrom             string
	ConsecutiveToChargeNumber string
	RehabilitativeActivities  []models.RehabilitativeActivity
}

// PunishmentsService creates and updates punishments on a charge-proved case and
// manages suspended-punishment activation across charges
type PunishmentsService struct {
	DB     databases.AdjudicationDatabase
	Events events.Publisher
	Clock  Clock
}

// Create adds punishments to a charge-proved case. Requests carrying ActivatedFrom
// consume a suspended punishment on the origin charge: the origin gains an active
// schedule row and the acting-charge back-reference, and the new punishment here
// records where it came from.
func (s *PunishmentsService) Create(ctx context.Context, chargeNumber string, requests []PunishmentRequest, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	if adjudication.Details.Status != models.StatusChargeProved {
		return nil, models.NewValidationError("status is not CHARGE_PROVED")
	}

	at := now(s.Clock)
	for _, request := range requests {
		if err := validatePunishmentRequest(request); err != nil {
			return nil, err
		}
		punishment := buildPunishment(request, at)
		if request.ActivatedFrom != "" {
			if err := s.activate(ctx, request, chargeNumber, &punishment); err != nil {
				return nil, err
			}
		}
		adjudication.Details.Punishments = append(adjudication.Details.Punishments, punishment)
	}

	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	s.publish(ctx, &adjudication.Details)
	return adjudication, nil
}

// Update replaces the punishments on a charge-proved case with the requested set.
// Omission is removal: existing punishments not present in the request are dropped,
// and dropped activations are reversed on their origin charge.
func (s *PunishmentsService) Update(ctx context.Context, chargeNumber string, requests []PunishmentRequest, actor string) (*models.ReportedAdjudication, error) {
	adjudication, err := findByChargeNumber(ctx, s.DB, chargeNumber)
	if err != nil {
		return nil, err
	}
	if adjudication.Details.Status != models.StatusChargeProved {
		return nil, models.NewValidationError("status is not CHARGE_PROVED")
	}

	at := now(s.Clock)
	requested := make(map[string]bool, len(requests))
	for _, request := range requests {
		if request.ID != "" && request.ActivatedFrom == "" {
			requested[request.ID] = true
		}
	}

	// activation requests carry the origin punishment's id, while the clone here holds
	// its own, so clones are matched to requests by origin reference and type
	cloneFor := func(request PunishmentRequest) *models.Punishment {
		for i := range adjudication.Details.Punishments {
			p := &adjudication.Details.Punishments[i]
			if p.ActivatedFromChargeNumber == request.ActivatedFrom && p.Type == request.Type {
				return p
			}
		}
		return nil
	}
	keptClones := make(map[string]bool)
	for _, request := range requests {
		if request.ActivatedFrom == "" {
			continue
		}
		if clone := cloneFor(request); clone != nil {
			keptClones[clone.ID] = true
		}
	}

	// reverse and drop omitted punishments first
	var kept []models.Punishment
	for _, existing := range adjudication.Details.Punishments {
		if existing.ActivatedFromChargeNumber != "" {
			if keptClones[existing.ID] {
				kept = append(kept, existing)
				continue
			}
			if err := s.restoreOrigin(ctx, existing, chargeNumber); err != nil {
				return nil, err
			}
			zap.S().Debugf("reversed activation %s on %s", existing.ID, chargeNumber)
			continue
		}
		if requested[existing.ID] {
			kept = append(kept, existing)
			continue
		}
		zap.S().Debugf("removing punishment %s from %s", existing.ID, chargeNumber)
	}
	adjudication.Details.Punishments = kept

	for _, request := range requests {
		if err := validatePunishmentRequest(request); err != nil {
			return nil, err
		}
		if request.ActivatedFrom != "" {
			if cloneFor(request) != nil {
				// already activated by an earlier update; the origin holds the
				// consumed schedule, nothing to redo
				continue
			}
			punishment := buildPunishment(request, at)
			if err := s.activate(ctx, request, chargeNumber, &punishment); err != nil {
				return nil, err
			}
			adjudication.Details.Punishments = append(adjudication.Details.Punishments, punishment)
			continue
		}
		if existing := adjudication.Details.PunishmentByID(request.ID); existing != nil {
			amendPunishment(existing, request, at)
			continue
		}
		adjudication.Details.Punishments = append(adjudication.Details.Punishments, buildPunishment(request, at))
	}

	if err := saveAggregate(ctx, s.DB, adjudication, s.Clock); err != nil {
		return nil, err
	}
	s.publish(ctx, &adjudication.Details)
	return adjudication, nil
}

// RemoveActivations reverses every cross-charge activation held by the given case:
// each origin punishment is restored to its prior suspended schedule and its
// back-reference cleared, and the activated clones here are dropped. Called when the
// CHARGE_PROVED outcome is removed or the charge is quashed. The caller saves the
// acting aggregate.
func (s *PunishmentsService) RemoveActivations(ctx context.Context, adjudication *models.ReportedAdjudication) error {
	chargeNumber := adjudication.Details.ChargeNumber
	var kept []models.Punishment
	for _, punishment := range adjudication.Details.Punishments {
		if punishment.ActivatedFromChargeNumber == "" {
			kept = append(kept, punishment)
			continue
		}
		if err := s.restoreOrigin(ctx, punishment, chargeNumber); err != nil {
			return err
		}
	}
	adjudication.Details.Punishments = kept
	return nil
}

func (s *PunishmentsService) restoreOrigin(ctx context.Context, clone models.Punishment, actingChargeNumber string) error {
	origin, err := findByChargeNumber(ctx, s.DB, clone.ActivatedFromChargeNumber)
	if err != nil {
		// the origin may have been deleted; the repair service reconciles leftovers
		zap.S().Errorw("activation origin not found",
			"origin", clone.ActivatedFromChargeNumber,
			"actingCharge", actingChargeNumber,
		)
		return nil
	}

	changed := false
	for i := range origin.Details.Punishments {
		originPunishment := &origin.Details.Punishments[i]
		if originPunishment.ActivatedByChargeNumber != actingChargeNumber || originPunishment.Type != clone.Type {
			continue
		}
		// drop the active schedule row added at activation so the prior suspended
		// schedule values become current again
		if latest := originPunishment.LatestSchedule(); latest != nil && latest.IsActive() {
			originPunishment.Schedules = originPunishment.Schedules[:len(originPunishment.Schedules)-1]
		}
		originPunishment.ActivatedByChargeNumber = ""
		changed = true
	}
	if !changed {
		return nil
	}
	return saveAggregate(ctx, s.DB, origin, s.Clock)
}

func (s *PunishmentsService) activate(ctx context.Context, request PunishmentRequest, actingChargeNumber string, punishment *models.Punishment) error {
	origin, err := findByChargeNumber(ctx, s.DB, request.ActivatedFrom)
	if err != nil {
		return err
	}
	originPunishment := origin.Details.PunishmentByID(request.ID)
	if originPunishment == nil {
		return models.NewNotFoundError(fmt.Sprintf("punishment not found for id %s", request.ID))
	}
	if !originPunishment.IsSuspended() {
		return models.NewValidationError("punishment is not suspended")
	}
	if request.StartDate == nil || request.EndDate == nil {
		return models.NewValidationError("start and end date required to activate a punishment")
	}

	at := now(s.Clock)
	start := primitive.NewDateTimeFromTime(*request.StartDate)
	end := primitive.NewDateTimeFromTime(*request.EndDate)

	// the suspended row stays in the history; the activation appends an active row
	originPunishment.Schedules = append(originPunishment.Schedules, models.PunishmentSchedule{
		ID:        uuid.New().String(),
		Days:      request.Days,
		StartDate: &start,
		EndDate:   &end,
		CreatedAt: primitive.NewDateTimeFromTime(at),
	})
	originPunishment.ActivatedByChargeNumber = actingChargeNumber

	if err := saveAggregate(ctx, s.DB, origin, s.Clock); err != nil {
		return err
	}

	punishment.ID = uuid.New().String()
	punishment.ActivatedFromChargeNumber = request.ActivatedFrom
	return nil
}

func (s *PunishmentsService) publish(ctx context.Context, d *models.AdjudicationDetails) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(ctx, events.Event{
		Type:         events.TypePunishmentsUpdated,
		ChargeNumber: d.ChargeNumber,
		PrisonID:     d.AgencyID(),
	})
}

func validatePunishmentRequest(request PunishmentRequest) error {
	if request.Type == models.PunishmentPrivilege && request.PrivilegeType == "" {
		return models.NewValidationError("subtype required for type PRIVILEGE")
	}
	if request.PrivilegeType == models.PrivilegeOther && request.OtherPrivilege == "" {
		return models.NewValidationError("description required for subtype OTHER")
	}
	if request.Type == models.PunishmentEarnings && request.StoppagePercentage == nil {
		return models.NewValidationError("stoppage percentage required for type EARNINGS")
	}
	if request.SuspendedUntil != nil && request.StartDate != nil {
		return models.NewValidationError("punishment schedule cannot be both suspended and active")
	}
	return nil
}

func buildPunishment(request PunishmentRequest, at time.Time) models.Punishment {
	id := request.ID
	if id == "" || request.ActivatedFrom != "" {
		id = uuid.New().String()
	}
	punishment := models.Punishment{
		ID:                        id,
		Type:                      request.Type,
		PrivilegeType:             request.PrivilegeType,
		OtherPrivilege:            request.OtherPrivilege,
		StoppagePercentage:        request.StoppagePercentage,
		Amount:                    request.Amount,
		ConsecutiveToChargeNumber: request.ConsecutiveToChargeNumber,
		RehabilitativeActivities:  request.RehabilitativeActivities,
	}
	punishment.Schedules = append(punishment.Schedules, buildSchedule(request, at))
	return punishment
}

func amendPunishment(punishment *models.Punishment, request PunishmentRequest, at time.Time) {
	punishment.PrivilegeType = request.PrivilegeType
	punishment.OtherPrivilege = request.OtherPrivilege
	punishment.StoppagePercentage = request.StoppagePercentage
	punishment.Amount = request.Amount
	punishment.ConsecutiveToChargeNumber = request.ConsecutiveToChargeNumber
	punishment.RehabilitativeActivities = request.RehabilitativeActivities

	next := buildSchedule(request, at)
	if latest := punishment.LatestSchedule(); latest != nil && sameSpan(*latest, next) {
		return
	}
	punishment.Schedules = append(punishment.Schedules, next)
}

func buildSchedule(request PunishmentRequest, at time.Time) models.PunishmentSchedule {
	schedule := models.PunishmentSchedule{
		ID:        uuid.New().String(),
		Days:      request.Days,
		CreatedAt: primitive.NewDateTimeFromTime(at),
	}
	if request.StartDate != nil {
		start := primitive.NewDateTimeFromTime(*request.StartDate)
		schedule.StartDate = &start
	}
	if request.EndDate != nil {
		end := primitive.NewDateTimeFromTime(*request.EndDate)
		schedule.EndDate = &end
	}
	if request.SuspendedUntil != nil {
		until := primitive.NewDateTimeFromTime(*request.SuspendedUntil)
		schedule.SuspendedUntil = &until
	}
	return schedule
}

func sameSpan(a, b models.PunishmentSchedule) bool {
	return a.Days == b.Days &&
		equalDate(a.StartDate, b.StartDate) &&
		equalDate(a.EndDate, b.EndDate) &&
		equalDate(a.SuspendedUntil, b.SuspendedUntil)
}

func equalDate(a, b *primitive.DateTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
