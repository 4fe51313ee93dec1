package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/justicelabs/adjudications-api/models"
)

func TestStatus_CanReviewTransitionTo(t *testing.T) {
	assert.True(t, models.StatusAwaitingReview.CanReviewTransitionTo(models.StatusUnscheduled))
	assert.True(t, models.StatusAwaitingReview.CanReviewTransitionTo(models.StatusReturned))
	assert.True(t, models.StatusAwaitingReview.CanReviewTransitionTo(models.StatusRejected))
	assert.True(t, models.StatusReturned.CanReviewTransitionTo(models.StatusAwaitingReview))

	assert.False(t, models.StatusAwaitingReview.CanReviewTransitionTo(models.StatusScheduled))
	assert.False(t, models.StatusUnscheduled.CanReviewTransitionTo(models.StatusAwaitingReview))
	assert.False(t, models.StatusRejected.CanReviewTransitionTo(models.StatusAwaitingReview))
	assert.False(t, models.StatusChargeProved.CanReviewTransitionTo(models.StatusUnscheduled))
}

func TestStatus_IsTransferable(t *testing.T) {
	transferable := []models.ReportedAdjudicationStatus{
		models.StatusAwaitingReview,
		models.StatusReturned,
		models.StatusUnscheduled,
		models.StatusScheduled,
		models.StatusReferPolice,
		models.StatusReferInad,
		models.StatusAdjourned,
	}
	for _, s := range transferable {
		assert.True(t, s.IsTransferable(), "%s should follow the prisoner", s)
	}

	terminal := []models.ReportedAdjudicationStatus{
		models.StatusAccepted,
		models.StatusRejected,
		models.StatusChargeProved,
		models.StatusDismissed,
		models.StatusNotProceed,
		models.StatusProsecution,
		models.StatusQuashed,
		models.StatusInvalidOutcome,
	}
	for _, s := range terminal {
		assert.False(t, s.IsTransferable(), "%s should stay with the originating prison", s)
	}
}

func TestStatus_IsChargeProvedDerived(t *testing.T) {
	assert.True(t, models.StatusChargeProved.IsChargeProvedDerived())
	assert.True(t, models.StatusQuashed.IsChargeProvedDerived())
	assert.False(t, models.StatusDismissed.IsChargeProvedDerived())
	assert.False(t, models.StatusScheduled.IsChargeProvedDerived())
}
