package model

import (
	"time"
)

// CreateItineraryRequest is the request to create a new itinerary.
type CreateItineraryRequest struct {
	Title         string        `json:"title" validate:"max=256"`
	Type          ItineraryType `json:"type"`
	Destination   string        `json:"destination" validate:"max=256"`
	StartLocation string        `json:"startLocation" validate:"max=256"`
	StartDate     *time.Time    `json:"startDate"`
	EndDate       *time.Time    `json:"endDate"`
	Collaborators []string      `json:"collaborators" validate:"max=100,dive,max=128"`
	Preferences   Preferences   `json:"preferences" validate:"max=64"`
	AIGenerated   bool          `json:"aiGenerated"`
}

// UpdateItineraryRequest is a shallow patch: non-nil fields overwrite, the rest
// are left untouched. Preferences and collaborators are replaced wholesale.
type UpdateItineraryRequest struct {
	Title         *string        `json:"title" validate:"omitempty,max=256"`
	Type          *ItineraryType `json:"type"`
	Destination   *string        `json:"destination" validate:"omitempty,max=256"`
	StartLocation *string        `json:"startLocation" validate:"omitempty,max=256"`
	StartDate     *time.Time     `json:"startDate"`
	EndDate       *time.Time     `json:"endDate"`
	Collaborators []string       `json:"collaborators" validate:"max=100,dive,max=128"`
	Preferences   Preferences    `json:"preferences" validate:"max=64"`
	AIGenerated   *bool          `json:"aiGenerated"`
}

// CreateActivityRequest is the request to add an activity to an itinerary.
type CreateActivityRequest struct {
	Name       string     `json:"name" validate:"max=256"`
	Category   Category   `json:"category"`
	Location   string     `json:"location" validate:"max=256"`
	Day        *int       `json:"day"`
	StartTime  *time.Time `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	TravelMode TravelMode `json:"travelMode"`
	Notes      string     `json:"notes" validate:"max=4096"`
}

// UpdateActivityRequest is a shallow patch over an activity.
type UpdateActivityRequest struct {
	Name       *string     `json:"name" validate:"omitempty,max=256"`
	Category   *Category   `json:"category"`
	Location   *string     `json:"location" validate:"omitempty,max=256"`
	Day        *int        `json:"day"`
	StartTime  *time.Time  `json:"startTime"`
	EndTime    *time.Time  `json:"endTime"`
	TravelMode *TravelMode `json:"travelMode"`
	Notes      *string     `json:"notes" validate:"omitempty,max=4096"`
	Sequence   *int        `json:"sequence"`
}

// GenerateItineraryRequest is the compact request handed to the synthesizer.
type GenerateItineraryRequest struct {
	Destination   string        `json:"destination" validate:"max=256"`
	StartDate     *time.Time    `json:"startDate"`
	Days          int           `json:"days" validate:"max=60"`
	Focus         []string      `json:"focus" validate:"max=10,dive,max=64"`
	Type          ItineraryType `json:"type"`
	StartLocation string        `json:"startLocation" validate:"max=256"`
	Title         string        `json:"title" validate:"max=256"`
	Preferences   Preferences   `json:"preferences" validate:"max=64"`
}

// OptimizeResult is returned after reordering an itinerary chronologically.
type OptimizeResult struct {
	Message string     `json:"message"`
	Items   []Activity `json:"items"`
}

// SyncResult is returned by the calendar sync stub.
type SyncResult struct {
	Message  string    `json:"message"`
	SyncedAt time.Time `json:"syncedAt"`
}
