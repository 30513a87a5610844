package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/foxtrail/planner/internal/model"
)

const (
	// StreamName is the name of the itinerary events stream.
	StreamName = "ITINERARIES"

	// SubjectPrefix is the prefix for all itinerary event subjects.
	SubjectPrefix = "itinerary"
)

// EventStream publishes itinerary change events to JetStream.
type EventStream struct {
	client *Client
}

// NewEventStream creates a new event stream publisher.
func NewEventStream(client *Client) *EventStream {
	return &EventStream{client: client}
}

// EnsureStream creates the itinerary events stream if it does not exist yet.
func (s *EventStream) EnsureStream(ctx context.Context) error {
	js := s.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Discard:     jetstream.DiscardOld,
		Description: "Itinerary change events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// EventSubject returns the subject for an itinerary event.
func EventSubject(itineraryID string, eventType model.EventType) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, itineraryID, eventType)
}

// ItineraryFilter returns the filter subject for all events of one itinerary.
func ItineraryFilter(itineraryID string) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, itineraryID)
}

// Publish sends event to JetStream. The event ID doubles as the message ID so
// retried publishes are de-duplicated by the server.
func (s *EventStream) Publish(ctx context.Context, event *model.ItineraryEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := nats.NewMsg(EventSubject(event.ItineraryID, event.Type))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, event.ID)

	if _, err := s.client.JetStream().PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
