package model

import (
	"time"
)

// EventType represents the kind of itinerary change.
type EventType string

const (
	EventTypeCreated     EventType = "created"
	EventTypeUpdated     EventType = "updated"
	EventTypeDeleted     EventType = "deleted"
	EventTypeItemAdded   EventType = "item_added"
	EventTypeItemUpdated EventType = "item_updated"
	EventTypeItemRemoved EventType = "item_removed"
	EventTypeOptimized   EventType = "optimized"
	EventTypeGenerated   EventType = "generated"
	EventTypeSynced      EventType = "synced"
)

// ItineraryEvent announces a committed change to an itinerary.
type ItineraryEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	ItineraryID string    `json:"itineraryId"`
	ItemID      string    `json:"itemId,omitempty"`
	ItemCount   int       `json:"itemCount"`
	OccurredAt  time.Time `json:"occurredAt"`
}
