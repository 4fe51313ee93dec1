package models

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportedAdjudication holds the structure for the adjudications collection in mongo
type ReportedAdjudication struct {
	ID      primitive.ObjectID   `json:"_id" bson:"_id"`
	Details AdjudicationDetails  `json:"adjudication" bson:"adjudication"`
	Version int32                `json:"__v" bson:"__v"`
}

// AdjudicationDetails is the aggregate for one disciplinary charge: the status, the
// outcome chain, the hearings, the punishments and the linkage fields. The whole graph
// is read, mutated and written back as one document.
type AdjudicationDetails struct {
	ChargeNumber        string                     `json:"chargeNumber" bson:"chargeNumber"`
	PrisonerNumber      string                     `json:"prisonerNumber" bson:"prisonerNumber"`
	OffenderBookingID   int64                      `json:"offenderBookingId" bson:"offenderBookingId"`
	OriginatingAgencyID string                     `json:"originatingAgencyId" bson:"originatingAgencyId"`
	IncidentLocationID  int64                      `json:"incidentLocationId,omitempty" bson:"incidentLocationId,omitempty"`
	IncidentTime        primitive.DateTime         `json:"incidentTime,omitempty" bson:"incidentTime,omitempty"`
	Statement           string                     `json:"statement,omitempty" bson:"statement,omitempty"`
	OffenceCodes        []string                   `json:"offenceCodes,omitempty" bson:"offenceCodes,omitempty"`
	OverrideAgencyID    string                     `json:"overrideAgencyId,omitempty" bson:"overrideAgencyId,omitempty"`
	Status              ReportedAdjudicationStatus `json:"status" bson:"status"`
	StatusReason        string                     `json:"statusReason,omitempty" bson:"statusReason,omitempty"`
	StatusDetails       string                     `json:"statusDetails,omitempty" bson:"statusDetails,omitempty"`
	Hearings            []Hearing                  `json:"hearings" bson:"hearings"`
	Outcomes            []Outcome                  `json:"outcomes" bson:"outcomes"`
	Punishments         []Punishment               `json:"punishments" bson:"punishments"`
	PunishmentComments  []PunishmentComment        `json:"punishmentComments,omitempty" bson:"punishmentComments,omitempty"`
	Damages             []ReportedDamage           `json:"damages,omitempty" bson:"damages,omitempty"`
	Evidence            []ReportedEvidence         `json:"evidence,omitempty" bson:"evidence,omitempty"`
	Witnesses           []ReportedWitness          `json:"witnesses,omitempty" bson:"witnesses,omitempty"`
	Migrated            bool                       `json:"migrated" bson:"migrated"`
	CreatedAt           primitive.DateTime         `json:"createdAt" bson:"createdAt"`
	UpdatedAt           primitive.DateTime         `json:"updatedAt" bson:"updatedAt"`
	CreatedBy           string                     `json:"createdBy" bson:"createdBy"`
}

// OutcomesSorted returns the outcome chain ordered by createdAt ascending, preserving
// insertion order for equal timestamps
func (d *AdjudicationDetails) OutcomesSorted() []Outcome {
	out := make([]Outcome, len(d.Outcomes))
	copy(out, d.Outcomes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out
}

// LatestOutcome returns the most recently created outcome, or nil when none exist
func (d *AdjudicationDetails) LatestOutcome() *Outcome {
	sorted := d.OutcomesSorted()
	if len(sorted) == 0 {
		return nil
	}
	latest := sorted[len(sorted)-1]
	for i := range d.Outcomes {
		if d.Outcomes[i].ID == latest.ID {
			return &d.Outcomes[i]
		}
	}
	return nil
}

// HearingsSorted returns the hearings ordered by dateTimeOfHearing ascending
func (d *AdjudicationDetails) HearingsSorted() []Hearing {
	out := make([]Hearing, len(d.Hearings))
	copy(out, d.Hearings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateTimeOfHearing < out[j].DateTimeOfHearing
	})
	return out
}

// LatestHearing returns the most recent hearing by dateTimeOfHearing, not insertion
// order, or nil when the case has no hearings
func (d *AdjudicationDetails) LatestHearing() *Hearing {
	sorted := d.HearingsSorted()
	if len(sorted) == 0 {
		return nil
	}
	latest := sorted[len(sorted)-1]
	for i := range d.Hearings {
		if d.Hearings[i].ID == latest.ID {
			return &d.Hearings[i]
		}
	}
	return nil
}

// HearingByID returns the hearing with the given id, or nil
func (d *AdjudicationDetails) HearingByID(id string) *Hearing {
	for i := range d.Hearings {
		if d.Hearings[i].ID == id {
			return &d.Hearings[i]
		}
	}
	return nil
}

// PunishmentByID returns the punishment with the given id, or nil
func (d *AdjudicationDetails) PunishmentByID(id string) *Punishment {
	for i := range d.Punishments {
		if d.Punishments[i].ID == id {
			return &d.Punishments[i]
		}
	}
	return nil
}

// AgencyID returns the agency currently responsible for the case: the override agency
// when the prisoner has transferred, otherwise the originating agency
func (d *AdjudicationDetails) AgencyID() string {
	if d.OverrideAgencyID != "" {
		return d.OverrideAgencyID
	}
	return d.OriginatingAgencyID
}

// DamageCode categorises reported damage.
type DamageCode string

// Damage codes.
const (
	DamageElectrical   DamageCode = "ELECTRICAL_REPAIR"
	DamagePlumbing     DamageCode = "PLUMBING_REPAIR"
	DamageFurniture    DamageCode = "FURNITURE_OR_FABRIC_REPAIR"
	DamageLock         DamageCode = "LOCK_REPAIR"
	DamageRedecoration DamageCode = "REDECORATION"
	DamageCleaning     DamageCode = "CLEANING"
	DamageReplacement  DamageCode = "REPLACE_AN_ITEM"
)

// ReportedDamage is damage recorded on the report
type ReportedDamage struct {
	Code     DamageCode `json:"code" bson:"code"`
	Details  string     `json:"details" bson:"details"`
	Reporter string     `json:"reporter" bson:"reporter"`
}

// EvidenceCode categorises reported evidence.
type EvidenceCode string

// Evidence codes.
const (
	EvidencePhoto     EvidenceCode = "PHOTO"
	EvidenceBodyCam   EvidenceCode = "BODY_WORN_CAMERA"
	EvidenceCCTV      EvidenceCode = "CCTV"
	EvidenceBaggedTag EvidenceCode = "BAGGED_AND_TAGGED"
	EvidenceOther     EvidenceCode = "OTHER"
)

// ReportedEvidence is evidence recorded on the report
type ReportedEvidence struct {
	Code       EvidenceCode `json:"code" bson:"code"`
	Identifier string       `json:"identifier,omitempty" bson:"identifier,omitempty"`
	Details    string       `json:"details" bson:"details"`
	Reporter   string       `json:"reporter" bson:"reporter"`
}

// WitnessCode categorises a reported witness.
type WitnessCode string

// Witness codes.
const (
	WitnessOfficer WitnessCode = "OFFICER"
	WitnessStaff   WitnessCode = "STAFF"
	WitnessOther   WitnessCode = "OTHER_PERSON"
)

// ReportedWitness is a witness recorded on the report
type ReportedWitness struct {
	Code      WitnessCode `json:"code" bson:"code"`
	FirstName string      `json:"firstName" bson:"firstName"`
	LastName  string      `json:"lastName" bson:"lastName"`
	Reporter  string      `json:"reporter" bson:"reporter"`
}
