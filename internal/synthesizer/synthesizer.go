// Package synthesizer fabricates itinerary drafts from fixed suggestion tables.
//
// Output depends only on the request and, when no start date is given, on the
// current day. Nothing is random and nothing is persisted here.
package synthesizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxtrail/planner/internal/clock"
	"github.com/foxtrail/planner/internal/model"
)

const (
	// DefaultDays is used when the request asks for no positive number of days.
	DefaultDays = 3

	defaultTitleDestination   = "Custom"
	defaultSummaryDestination = "your itinerary"
)

// DefaultFocus is used when the request carries no focus tags.
var DefaultFocus = []string{string(model.CategoryCulture), string(model.CategoryFood)}

// Draft is an itinerary ready to be created, plus the activities to attach to it.
type Draft struct {
	Itinerary model.CreateItineraryRequest
	Items     []model.Activity
}

// Synthesizer builds drafts. Day boundaries and slot times are laid out in its
// location.
type Synthesizer struct {
	clock    clock.Clock
	location *time.Location
}

// New creates a synthesizer. A nil location means UTC.
func New(c clock.Clock, loc *time.Location) *Synthesizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Synthesizer{clock: c, location: loc}
}

// Build turns req into a draft.
func (s *Synthesizer) Build(req model.GenerateItineraryRequest) Draft {
	startDate := s.resolveStart(req.StartDate)
	days := req.Days
	if days <= 0 {
		days = DefaultDays
	}
	focus := resolveFocus(req)
	itineraryType := req.Type.OrDefault(model.ItineraryTypeTrip)

	items := s.buildItems(startDate, days, focus, itineraryType)

	first := startOfDay(startDate.In(s.location))
	y, m, d := first.Date()
	endDate := time.Date(y, m, d+days-1, 23, 59, 59, int(999*time.Millisecond), s.location).UTC()

	title := req.Title
	if title == "" {
		dest := req.Destination
		if dest == "" {
			dest = defaultTitleDestination
		}
		title = dest + " plan"
	}

	prefs := req.Preferences.Clone()
	prefs[model.PrefFocus] = model.ListValue(focus)
	prefs[model.PrefAISummary] = model.StringValue(Summary(req.Destination, focus, len(items)))

	start := startDate.UTC()
	return Draft{
		Itinerary: model.CreateItineraryRequest{
			Title:         title,
			Type:          itineraryType,
			Destination:   req.Destination,
			StartLocation: req.StartLocation,
			StartDate:     &start,
			EndDate:       &endDate,
			Collaborators: []string{},
			Preferences:   prefs,
			AIGenerated:   true,
		},
		Items: items,
	}
}

// Summary composes the narrative stored under preferences.aiSummary.
func Summary(destination string, focus []string, totalItems int) string {
	if destination == "" {
		destination = defaultSummaryDestination
	}
	return fmt.Sprintf("AI generated %d activities for %s focusing on %s.",
		totalItems, destination, strings.Join(focus, ", "))
}

func (s *Synthesizer) buildItems(startDate time.Time, days int, focus []string, itineraryType model.ItineraryType) []model.Activity {
	duration := 2 * time.Hour
	if itineraryType == model.ItineraryTypeCommute {
		duration = time.Hour
	}

	first := startOfDay(startDate.In(s.location))
	items := make([]model.Activity, 0, days*len(focus))
	for dayIndex := 0; dayIndex < days; dayIndex++ {
		y, m, d := first.Date()
		for idx, tag := range focus {
			table, category := tableFor(tag)
			pick := table[(dayIndex+idx)%len(table)]
			sl := dailySlots[idx%len(dailySlots)]

			start := time.Date(y, m, d+dayIndex, sl.hour, sl.minute, 0, 0, s.location).UTC()
			end := start.Add(duration)
			day := dayIndex + 1

			mode := model.TravelModeWalk
			if tag == string(model.CategoryCommute) {
				mode = model.TravelModePublicTransit
			}

			items = append(items, model.Activity{
				Name:       pick.Name,
				Category:   category,
				Location:   pick.Location,
				Day:        &day,
				StartTime:  &start,
				EndTime:    &end,
				TravelMode: mode,
				Notes:      pick.Notes,
			})
		}
	}
	return items
}

// resolveStart returns the requested start date, or the start of tomorrow.
func (s *Synthesizer) resolveStart(requested *time.Time) time.Time {
	if requested != nil {
		return *requested
	}
	now := s.clock.Now().In(s.location)
	return startOfDay(now).AddDate(0, 0, 1)
}

// resolveFocus prefers preferences.focus over the top-level focus list.
// Tags are trimmed and lower-cased; empty tags are dropped.
func resolveFocus(req model.GenerateItineraryRequest) []string {
	raw := req.Preferences.Focus()
	if len(raw) == 0 {
		raw = req.Focus
	}
	focus := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			focus = append(focus, tag)
		}
	}
	if len(focus) == 0 {
		return append([]string{}, DefaultFocus...)
	}
	return focus
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
