package events

import (
	"context"

	"go.uber.org/zap"
)

// Event types published after successful state transitions.
const (
	TypeAdjudicationCreated = "adjudication.report.created"
	TypeStatusChanged       = "adjudication.status.changed"
	TypePunishmentsUpdated  = "adjudication.punishments.updated"
)

// Event is the outbound domain event payload
type Event struct {
	Type         string `json:"eventType"`
	ChargeNumber string `json:"chargeNumber"`
	PrisonID     string `json:"prisonId"`
}

// Publisher is the port for outbound domain events. Delivery and ordering are owned by
// the messaging infrastructure behind the implementation.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// ZapPublisher logs events instead of publishing them; used locally and as a default
type ZapPublisher struct{}

// Publish logs the event
func (ZapPublisher) Publish(_ context.Context, event Event) {
	zap.S().Infow("domain event published",
		"eventType", event.Type,
		"chargeNumber", event.ChargeNumber,
		"prisonId", event.PrisonID,
	)
}
