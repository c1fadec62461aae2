// Package events publishes lifecycle changes of requests and orders to an
// external sink after the owning transaction has committed.
package events

import (
	"context"
	"time"

	"carematch/internal/app/ds"

	"github.com/google/uuid"
)

type Type string

const (
	RequestCreated      Type = "request.created"
	RequestClaimed      Type = "request.claimed"
	RequestTransitioned Type = "request.transitioned"
)

// Event is the wire form of one committed lifecycle change.
type Event struct {
	ID            string           `json:"id"`
	Type          Type             `json:"type"`
	RequestID     uint             `json:"request_id"`
	RequestStatus ds.RequestStatus `json:"request_status"`
	OrderStatus   ds.OrderStatus   `json:"order_status,omitempty"`
	SupporterID   string           `json:"supporter_id,omitempty"`
	Actor         string           `json:"actor"`
	ActorRole     string           `json:"actor_role"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// New stamps an event with a fresh id and time.
func New(t Type, req *ds.Request, actor, actorRole string, at time.Time) Event {
	ev := Event{
		ID:            uuid.NewString(),
		Type:          t,
		RequestID:     req.ID,
		RequestStatus: req.Status,
		Actor:         actor,
		ActorRole:     actorRole,
		OccurredAt:    at.UTC(),
	}
	if req.MatchedSupporterID != nil {
		ev.SupporterID = *req.MatchedSupporterID
	}
	return ev
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
