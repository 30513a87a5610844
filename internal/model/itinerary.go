// Package model defines data structures for the itinerary planner.
package model

import (
	"time"
)

// ItineraryType classifies an itinerary.
type ItineraryType string

const (
	ItineraryTypeTrip    ItineraryType = "trip"
	ItineraryTypeDaily   ItineraryType = "daily"
	ItineraryTypeCommute ItineraryType = "commute"
	ItineraryTypeCustom  ItineraryType = "custom"
)

// Valid reports whether t is a known itinerary type.
func (t ItineraryType) Valid() bool {
	switch t {
	case ItineraryTypeTrip, ItineraryTypeDaily, ItineraryTypeCommute, ItineraryTypeCustom:
		return true
	}
	return false
}

// OrDefault returns t when valid, otherwise def.
func (t ItineraryType) OrDefault(def ItineraryType) ItineraryType {
	if t.Valid() {
		return t
	}
	return def
}

// DefaultItineraryTitle is used when an itinerary is created without a title.
const DefaultItineraryTitle = "Untitled Itinerary"

// Itinerary is a titled, dated collection of scheduled activities.
type Itinerary struct {
	ID            string        `json:"id" yaml:"id"`
	Title         string        `json:"title" yaml:"title"`
	Type          ItineraryType `json:"type" yaml:"type"`
	Destination   string        `json:"destination" yaml:"destination"`
	StartDate     time.Time     `json:"startDate" yaml:"startDate"`
	EndDate       time.Time     `json:"endDate" yaml:"endDate"`
	StartLocation string        `json:"startLocation" yaml:"startLocation"`
	Collaborators []string      `json:"collaborators" yaml:"collaborators"`
	Preferences   Preferences   `json:"preferences" yaml:"preferences"`
	AIGenerated   bool          `json:"aiGenerated" yaml:"aiGenerated"`
	CreatedAt     time.Time     `json:"createdAt" yaml:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" yaml:"updatedAt"`
	Items         []Activity    `json:"items" yaml:"items"`
}

// Clone returns a deep copy of the itinerary, its preferences and its items.
func (it *Itinerary) Clone() *Itinerary {
	if it == nil {
		return nil
	}
	c := *it
	c.Collaborators = append([]string{}, it.Collaborators...)
	c.Preferences = it.Preferences.Clone()
	c.Items = CloneActivities(it.Items)
	return &c
}

// FindItem returns the index of the item with the given ID, or -1.
func (it *Itinerary) FindItem(itemID string) int {
	for i := range it.Items {
		if it.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}
