package store

import (
	"time"

	"github.com/foxtrail/planner/internal/model"
)

// seedItinerary builds the sample itinerary written on first run. Its content is
// fixed; only the dates follow the clock.
func seedItinerary(now time.Time, loc *time.Location, newID func() string) *model.Itinerary {
	local := now.In(loc)
	day := func(offset int) time.Time {
		y, m, d := local.AddDate(0, 0, offset).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	at := func(base time.Time, hour int) *time.Time {
		t := base.Add(time.Duration(hour) * time.Hour).UTC()
		return &t
	}
	first := day(3)
	one := 1

	createdAt := now.UTC()
	return &model.Itinerary{
		ID:            newID(),
		Title:         "Kyoto Culture & Study Retreat",
		Type:          model.ItineraryTypeTrip,
		Destination:   "Kyoto, Japan",
		StartDate:     first.UTC(),
		EndDate:       day(8).Add(-time.Millisecond).UTC(),
		StartLocation: "Kyoto Station",
		Collaborators: []string{},
		Preferences: model.Preferences{
			model.PrefFocus:  model.ListValue([]string{"culture", "food"}),
			model.PrefBudget: model.StringValue("moderate"),
			model.PrefAISummary: model.StringValue("A four-day exploration of Kyoto that balances temples, " +
				"tea ceremonies and evening food adventures. Generated sample data."),
		},
		AIGenerated: true,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
		Items: []model.Activity{
			{
				ID:         newID(),
				Name:       "Kiyomizu-dera Temple visit",
				Category:   model.CategoryCulture,
				Location:   "Kiyomizu-dera",
				Day:        &one,
				StartTime:  at(first, 9),
				EndTime:    at(first, 11),
				TravelMode: model.TravelModePublicTransit,
				Notes:      "Arrive before opening crowds; capture skyline views of Kyoto.",
			},
			{
				ID:         newID(),
				Name:       "Tea ceremony workshop",
				Category:   model.CategoryCulture,
				Location:   "Camellia Tea House",
				Day:        &one,
				StartTime:  at(first, 13),
				EndTime:    at(first, 15),
				TravelMode: model.TravelModeWalk,
				Notes:      "Hands-on session introducing tea etiquette.",
			},
			{
				ID:         newID(),
				Name:       "Nishiki Market street food crawl",
				Category:   model.CategoryFood,
				Location:   "Nishiki Market",
				Day:        &one,
				StartTime:  at(first, 18),
				EndTime:    at(first, 20),
				TravelMode: model.TravelModeWalk,
				Notes:      "Sample seasonal snacks, tofu donuts and matcha sweets.",
			},
		},
	}
}
