package model

import (
	"time"
)

// Category is the topic of an activity. Synthesizer focus tags share this vocabulary.
type Category string

const (
	CategoryGeneral      Category = "general"
	CategoryCulture      Category = "culture"
	CategoryFood         Category = "food"
	CategoryNature       Category = "nature"
	CategoryProductivity Category = "productivity"
	CategoryCommute      Category = "commute"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryCulture, CategoryFood, CategoryNature, CategoryProductivity, CategoryCommute:
		return true
	}
	return false
}

// OrDefault returns c when valid, otherwise def.
func (c Category) OrDefault(def Category) Category {
	if c.Valid() {
		return c
	}
	return def
}

// TravelMode describes how the traveller reaches an activity.
type TravelMode string

const (
	TravelModeWalk          TravelMode = "walk"
	TravelModePublicTransit TravelMode = "public-transit"
	TravelModeDrive         TravelMode = "drive"
	TravelModeBike          TravelMode = "bike"
)

// Valid reports whether m is a known travel mode.
func (m TravelMode) Valid() bool {
	switch m {
	case TravelModeWalk, TravelModePublicTransit, TravelModeDrive, TravelModeBike:
		return true
	}
	return false
}

// OrDefault returns m when valid, otherwise def.
func (m TravelMode) OrDefault(def TravelMode) TravelMode {
	if m.Valid() {
		return m
	}
	return def
}

// DefaultActivityName is used when an activity is added without a name.
const DefaultActivityName = "Untitled item"

// Activity is a single scheduled item within an itinerary.
type Activity struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Category   Category   `json:"category" yaml:"category"`
	Location   string     `json:"location" yaml:"location"`
	Day        *int       `json:"day" yaml:"day"`
	StartTime  *time.Time `json:"startTime" yaml:"startTime"`
	EndTime    *time.Time `json:"endTime" yaml:"endTime"`
	TravelMode TravelMode `json:"travelMode" yaml:"travelMode"`
	Notes      string     `json:"notes" yaml:"notes"`
	Sequence   *int       `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// Clone returns a copy of the activity that shares no pointers with a.
func (a Activity) Clone() Activity {
	c := a
	c.Day = clonePtr(a.Day)
	c.StartTime = clonePtr(a.StartTime)
	c.EndTime = clonePtr(a.EndTime)
	c.Sequence = clonePtr(a.Sequence)
	return c
}

// CloneActivities deep copies a slice of activities. The result is never nil.
func CloneActivities(items []Activity) []Activity {
	out := make([]Activity, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

// PositiveDay returns day when it points at a positive value, otherwise nil.
func PositiveDay(day *int) *int {
	if day == nil || *day < 1 {
		return nil
	}
	return clonePtr(day)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
