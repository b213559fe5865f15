package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Routing keys of the events published by the services.
const (
	EventUserRegistered      = "user.registered"
	EventPredictionCompleted = "prediction.completed"
)

// EventPublisher sends serialized domain events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

// Publish implements EventPublisher.
func (NoopPublisher) Publish(context.Context, string, []byte) error { return nil }

// Event is the envelope of every published message.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func newEventBody(eventType string, payload any) ([]byte, error) {
	body, err := json.Marshal(Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return body, nil
}
