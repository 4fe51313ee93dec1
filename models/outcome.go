package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// OutcomeCode is a case-level disposal decision.
type OutcomeCode string

// The disposal codes an adjudication can record.
const (
	OutcomeReferPolice     OutcomeCode = "REFER_POLICE"
	OutcomeReferInad       OutcomeCode = "REFER_INAD"
	OutcomeNotProceed      OutcomeCode = "NOT_PROCEED"
	OutcomeDismissed       OutcomeCode = "DISMISSED"
	OutcomeProsecution     OutcomeCode = "PROSECUTION"
	OutcomeScheduleHearing OutcomeCode = "SCHEDULE_HEARING"
	OutcomeChargeProved    OutcomeCode = "CHARGE_PROVED"
	OutcomeQuashed         OutcomeCode = "QUASHED"
)

// Finding is the legacy (NOMIS) finding code mirrored for an outcome.
type Finding string

// Legacy finding codes.
const (
	FindingProved     Finding = "PROVED"
	FindingDismissed  Finding = "D"
	FindingNotProceed Finding = "NOT_PROCEED"
	FindingRefPolice  Finding = "REF_POLICE"
	FindingProsecuted Finding = "PROSECUTED"
	FindingQuashed    Finding = "QUASHED"
	FindingAdjourned  Finding = "ADJOURNED"
)

// outcomeRule carries the associated data for one outcome code: the status the case
// transitions to, the legacy finding it maps to (empty when no legacy equivalent) and
// the codes a referral of this type may resolve into.
type outcomeRule struct {
	status  ReportedAdjudicationStatus
	finding Finding
	next    []OutcomeCode
}

var outcomeRules = map[OutcomeCode]outcomeRule{
	OutcomeReferPolice: {
		status:  StatusReferPolice,
		finding: FindingRefPolice,
		next:    []OutcomeCode{OutcomeNotProceed, OutcomeProsecution, OutcomeScheduleHearing},
	},
	OutcomeReferInad: {
		status: StatusReferInad,
		next:   []OutcomeCode{OutcomeNotProceed, OutcomeScheduleHearing},
	},
	OutcomeNotProceed:      {status: StatusNotProceed, finding: FindingNotProceed},
	OutcomeDismissed:       {status: StatusDismissed, finding: FindingDismissed},
	OutcomeProsecution:     {status: StatusProsecution, finding: FindingProsecuted},
	OutcomeScheduleHearing: {status: StatusScheduled},
	OutcomeChargeProved:    {status: StatusChargeProved, finding: FindingProved},
	OutcomeQuashed:         {status: StatusQuashed, finding: FindingQuashed},
}

// NextStates returns the outcome codes this code may resolve into. Only the referral
// codes have next states; every other code is terminal.
func (c OutcomeCode) NextStates() []OutcomeCode {
	return outcomeRules[c].next
}

// CanTransitionTo reports whether to is a legal resolution of this code
func (c OutcomeCode) CanTransitionTo(to OutcomeCode) bool {
	for _, n := range c.NextStates() {
		if n == to {
			return true
		}
	}
	return false
}

// Status returns the adjudication status this outcome code transitions the case to
func (c OutcomeCode) Status() ReportedAdjudicationStatus {
	return outcomeRules[c].status
}

// Finding returns the legacy finding code for this outcome, if one exists
func (c OutcomeCode) Finding() (Finding, bool) {
	f := outcomeRules[c].finding
	return f, f != ""
}

// IsReferral reports whether this code defers the decision to an external body
func (c OutcomeCode) IsReferral() bool {
	return c == OutcomeReferPolice || c == OutcomeReferInad
}

// ValidateReferral fails unless the code is one of the referral codes
func (c OutcomeCode) ValidateReferral() error {
	if !c.IsReferral() {
		return NewValidationError("invalid referral type")
	}
	return nil
}

// NotProceedReason explains why a charge was not proceeded with.
type NotProceedReason string

// Not-proceed reasons.
const (
	NotProceedAnotherWay       NotProceedReason = "ANOTHER_WAY"
	NotProceedReleased         NotProceedReason = "RELEASED"
	NotProceedFlawed           NotProceedReason = "FLAWED"
	NotProceedExpiredNotice    NotProceedReason = "EXPIRED_NOTICE"
	NotProceedExpiredHearing   NotProceedReason = "EXPIRED_HEARING"
	NotProceedNotFair          NotProceedReason = "NOT_FAIR"
	NotProceedWitnessNotAttend NotProceedReason = "WITNESS_NOT_ATTEND"
	NotProceedUnfit            NotProceedReason = "UNFIT"
	NotProceedOther            NotProceedReason = "OTHER"
)

// QuashedReason explains why a proved charge was quashed.
type QuashedReason string

// Quashed reasons.
const (
	QuashedFlawed         QuashedReason = "FLAWED_CASE"
	QuashedJudicialReview QuashedReason = "JUDICIAL_REVIEW"
	QuashedAppealUpheld   QuashedReason = "APPEAL_UPHELD"
	QuashedOther          QuashedReason = "OTHER"
)

// Outcome holds one case-level disposal event as stored inside the adjudication
// document. Multiple outcomes form the referral chain, ordered by createdAt.
type Outcome struct {
	ID            string             `json:"id" bson:"id"`
	Code          OutcomeCode        `json:"code" bson:"code"`
	Details       string             `json:"details,omitempty" bson:"details,omitempty"`
	Reason        NotProceedReason   `json:"reason,omitempty" bson:"reason,omitempty"`
	QuashedReason QuashedReason      `json:"quashedReason,omitempty" bson:"quashedReason,omitempty"`
	Amount        *float64           `json:"amount,omitempty" bson:"amount,omitempty"`
	Caution       *bool              `json:"caution,omitempty" bson:"caution,omitempty"`
	OicHearingID  *int64             `json:"oicHearingId,omitempty" bson:"oicHearingId,omitempty"`
	CreatedAt     primitive.DateTime `json:"createdAt" bson:"createdAt"`
	CreatedBy     string             `json:"createdBy" bson:"createdBy"`
}

// CombinedOutcome pairs a referral outcome with the outcome that resolved it, if any.
// Terminal outcomes stand alone with a nil ReferralOutcome.
type CombinedOutcome struct {
	Outcome         Outcome  `json:"outcome"`
	ReferralOutcome *Outcome `json:"referralOutcome,omitempty"`
}
