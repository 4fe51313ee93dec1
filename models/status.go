package models

// ReportedAdjudicationStatus is the state a reported adjudication currently occupies.
// Status is only ever mutated by the workflow services, which keep it consistent with
// the latest outcome and latest hearing outcome.
type ReportedAdjudicationStatus string

// The full status set for a reported adjudication.
const (
	StatusAwaitingReview ReportedAdjudicationStatus = "AWAITING_REVIEW"
	StatusReturned       ReportedAdjudicationStatus = "RETURNED"
	StatusAccepted       ReportedAdjudicationStatus = "ACCEPTED"
	StatusRejected       ReportedAdjudicationStatus = "REJECTED"
	StatusUnscheduled    ReportedAdjudicationStatus = "UNSCHEDULED"
	StatusScheduled      ReportedAdjudicationStatus = "SCHEDULED"
	StatusReferPolice    ReportedAdjudicationStatus = "REFER_POLICE"
	StatusReferInad      ReportedAdjudicationStatus = "REFER_INAD"
	StatusAdjourned      ReportedAdjudicationStatus = "ADJOURNED"
	StatusChargeProved   ReportedAdjudicationStatus = "CHARGE_PROVED"
	StatusDismissed      ReportedAdjudicationStatus = "DISMISSED"
	StatusNotProceed     ReportedAdjudicationStatus = "NOT_PROCEED"
	StatusProsecution    ReportedAdjudicationStatus = "PROSECUTION"
	StatusQuashed        ReportedAdjudicationStatus = "QUASHED"

	// StatusInvalidOutcome is a sink reached only by the migration repair path when
	// hearing and outcome data contradict each other and need manual review.
	StatusInvalidOutcome ReportedAdjudicationStatus = "INVALID_OUTCOME"
)

// TransferableStatuses are the in-flight statuses that must remain visible to the
// receiving prison when a prisoner transfers.
var TransferableStatuses = []ReportedAdjudicationStatus{
	StatusAwaitingReview,
	StatusReturned,
	StatusUnscheduled,
	StatusScheduled,
	StatusReferPolice,
	StatusReferInad,
	StatusAdjourned,
}

// IsTransferable reports whether a case in this status follows the prisoner on transfer
func (s ReportedAdjudicationStatus) IsTransferable() bool {
	for _, ts := range TransferableStatuses {
		if s == ts {
			return true
		}
	}
	return false
}

// IsChargeProvedDerived reports whether this status came out of a completed hearing
// that proved the charge. Suspended punishments are only expected on such cases.
func (s ReportedAdjudicationStatus) IsChargeProvedDerived() bool {
	return s == StatusChargeProved || s == StatusQuashed
}

// reviewTransitions are the legal edges of the pre-hearing review workflow.
var reviewTransitions = map[ReportedAdjudicationStatus][]ReportedAdjudicationStatus{
	StatusAwaitingReview: {StatusUnscheduled, StatusReturned, StatusRejected},
	StatusReturned:       {StatusAwaitingReview},
}

// CanReviewTransitionTo reports whether the review workflow may move a case from s to
// the target status
func (s ReportedAdjudicationStatus) CanReviewTransitionTo(to ReportedAdjudicationStatus) bool {
	for _, t := range reviewTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}
