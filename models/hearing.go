package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// OicHearingType is the kind of hearing scheduled for a charge.
type OicHearingType string

// Hearing types.
const (
	HearingTypeGovAdult  OicHearingType = "GOV_ADULT"
	HearingTypeGovYOI    OicHearingType = "GOV_YOI"
	HearingTypeInadAdult OicHearingType = "INAD_ADULT"
	HearingTypeInadYOI   OicHearingType = "INAD_YOI"
)

// HearingOutcomeCode is a disposition recorded against one specific hearing.
type HearingOutcomeCode string

// Hearing outcome codes. NOMIS is a placeholder stamped by the migration sweep when a
// result was recorded in the legacy system rather than through this workflow.
const (
	HearingOutcomeComplete    HearingOutcomeCode = "COMPLETE"
	HearingOutcomeReferPolice HearingOutcomeCode = "REFER_POLICE"
	HearingOutcomeReferInad   HearingOutcomeCode = "REFER_INAD"
	HearingOutcomeAdjourn     HearingOutcomeCode = "ADJOURN"
	HearingOutcomeNomis       HearingOutcomeCode = "NOMIS"
)

// OutcomeCode returns the case-level outcome code a hearing outcome of this code
// produces in parallel. Only the referral codes map; COMPLETE and ADJOURN have none.
func (c HearingOutcomeCode) OutcomeCode() (OutcomeCode, bool) {
	switch c {
	case HearingOutcomeReferPolice:
		return OutcomeReferPolice, true
	case HearingOutcomeReferInad:
		return OutcomeReferInad, true
	default:
		return "", false
	}
}

// ValidateReferral fails unless this hearing outcome code maps to a referral outcome
func (c HearingOutcomeCode) ValidateReferral() error {
	if _, ok := c.OutcomeCode(); !ok {
		return NewValidationError("invalid referral type")
	}
	return nil
}

// HearingOutcomePlea is the plea entered at a hearing.
type HearingOutcomePlea string

// Pleas.
const (
	PleaGuilty    HearingOutcomePlea = "GUILTY"
	PleaNotGuilty HearingOutcomePlea = "NOT_GUILTY"
	PleaAbstain   HearingOutcomePlea = "ABSTAIN"
	PleaUnfit     HearingOutcomePlea = "UNFIT"
	PleaNotAsked  HearingOutcomePlea = "NOT_ASKED"
)

// HearingOutcomeAdjournReason explains an adjournment.
type HearingOutcomeAdjournReason string

// Adjourn reasons.
const (
	AdjournLegalAdvice         HearingOutcomeAdjournReason = "LEGAL_ADVICE"
	AdjournLegalRepresentation HearingOutcomeAdjournReason = "LEGAL_REPRESENTATION"
	AdjournROAttend            HearingOutcomeAdjournReason = "RO_ATTEND"
	AdjournHelp                HearingOutcomeAdjournReason = "HELP"
	AdjournUnfit               HearingOutcomeAdjournReason = "UNFIT"
	AdjournWitness             HearingOutcomeAdjournReason = "WITNESS"
	AdjournWitnessSupport      HearingOutcomeAdjournReason = "WITNESS_SUPPORT"
	AdjournMcKenzie            HearingOutcomeAdjournReason = "MCKENZIE"
	AdjournEvidence            HearingOutcomeAdjournReason = "EVIDENCE"
	AdjournInvestigation       HearingOutcomeAdjournReason = "INVESTIGATION"
	AdjournOther               HearingOutcomeAdjournReason = "OTHER"
)

// HearingOutcome holds the disposition recorded against one hearing
type HearingOutcome struct {
	ID          string                      `json:"id" bson:"id"`
	Code        HearingOutcomeCode          `json:"code" bson:"code"`
	Adjudicator string                      `json:"adjudicator" bson:"adjudicator"`
	Reason      HearingOutcomeAdjournReason `json:"reason,omitempty" bson:"reason,omitempty"`
	Plea        HearingOutcomePlea          `json:"plea,omitempty" bson:"plea,omitempty"`
	Details     string                      `json:"details,omitempty" bson:"details,omitempty"`
}

// Hearing is one scheduled hearing event for a charge. LocationUUID is backfilled from
// LocationID by a best-effort background job and may be empty.
type Hearing struct {
	ID                string             `json:"id" bson:"id"`
	LocationID        int64              `json:"locationId" bson:"locationId"`
	LocationUUID      string             `json:"locationUuid,omitempty" bson:"locationUuid,omitempty"`
	DateTimeOfHearing primitive.DateTime `json:"dateTimeOfHearing" bson:"dateTimeOfHearing"`
	OicHearingType    OicHearingType     `json:"oicHearingType" bson:"oicHearingType"`
	OicHearingID      *int64             `json:"oicHearingId,omitempty" bson:"oicHearingId,omitempty"`
	AgencyID          string             `json:"agencyId" bson:"agencyId"`
	Outcome           *HearingOutcome    `json:"outcome,omitempty" bson:"outcome,omitempty"`
}
