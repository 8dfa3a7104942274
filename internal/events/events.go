package events

import (
	"context"
	"time"

	"github.com/EdwinEstrella/ironcore-gym/internal/logger"
	"github.com/EdwinEstrella/ironcore-gym/internal/metrics"

	"github.com/google/uuid"
)

const (
	MemberCreated         = "member.created"
	MemberCancelled       = "member.cancelled"
	PlanDeactivated       = "plan.deactivated"
	SubscriptionCreated   = "subscription.created"
	SubscriptionCancelled = "subscription.cancelled"
	SubscriptionExpired   = "subscription.expired"
)

// Event is the JSON body published for every domain change.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	GymID      string      `json:"gym_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data,omitempty"`
}

func New(eventType, gymID string, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		GymID:      gymID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close()
}

// Emit publishes e and logs a failure instead of returning it. Domain writes
// have already committed by the time events go out.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		metrics.RecordEvent(e.Type, "failed")
		logger.WithError(err).Warn("event publish failed", "type", e.Type, "gym_id", e.GymID)
		return
	}
	metrics.RecordEvent(e.Type, "ok")
}

// Noop drops events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(ctx context.Context, e Event) error {
	logger.Debug("event dropped, no broker configured", "type", e.Type)
	return nil
}

func (Noop) Close() {}
