package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foxtrail/planner/internal/clock"
	"github.com/foxtrail/planner/internal/model"
	"github.com/foxtrail/planner/pkg/logger"
	"github.com/foxtrail/planner/pkg/metrics"
)

const publishTimeout = 2 * time.Second

// Publisher delivers itinerary events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event *model.ItineraryEvent) error
}

// EventNotifier announces committed itinerary changes. Delivery is best
// effort: the change is already on disk when Notify runs, so failures are
// logged and counted but never returned.
type EventNotifier struct {
	publisher Publisher
	clock     clock.Clock
	logger    *logger.Logger
}

// NewEventNotifier creates a notifier publishing through p.
func NewEventNotifier(p Publisher, clk clock.Clock, log *logger.Logger) *EventNotifier {
	return &EventNotifier{publisher: p, clock: clk, logger: log}
}

// Notify publishes an event for it. A nil notifier does nothing.
func (n *EventNotifier) Notify(ctx context.Context, eventType model.EventType, it *model.Itinerary, itemID string) {
	if n == nil || n.publisher == nil {
		return
	}

	event := &model.ItineraryEvent{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Type:        eventType,
		ItineraryID: it.ID,
		ItemID:      itemID,
		ItemCount:   len(it.Items),
		OccurredAt:  n.clock.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := n.publisher.Publish(ctx, event); err != nil {
		metrics.RecordEvent(string(eventType), "error")
		n.logger.Warn("failed to publish itinerary event",
			zap.String("itinerary_id", it.ID),
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
		return
	}
	metrics.RecordEvent(string(eventType), "ok")
}
