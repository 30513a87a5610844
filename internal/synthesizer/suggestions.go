package synthesizer

import "github.com/foxtrail/planner/internal/model"

// Suggestion is a candidate activity offered for a focus tag.
type Suggestion struct {
	Name     string
	Location string
	Notes    string
}

// fallbackCategory is used for focus tags without their own table.
const fallbackCategory = model.CategoryCulture

var suggestions = map[model.Category][]Suggestion{
	model.CategoryCulture: {
		{Name: "Museum immersion", Location: "City Heritage Museum", Notes: "Guided tour of local history exhibits."},
		{Name: "Historic district walk", Location: "Old Town Quarter", Notes: "Self-paced exploration with photo stops."},
		{Name: "Craft workshop", Location: "Artisan Studio", Notes: "Create a handmade souvenir with local artists."},
	},
	model.CategoryFood: {
		{Name: "Local market tasting", Location: "Central Market", Notes: "Sample seasonal produce and street snacks."},
		{Name: "Chef-led cooking class", Location: "Kitchen Lab", Notes: "Cook regional dishes with a professional chef."},
		{Name: "Night food tour", Location: "Downtown Food Arcade", Notes: "Guided tasting across iconic eateries."},
	},
	model.CategoryNature: {
		{Name: "Sunrise hike", Location: "Skyline Trailhead", Notes: "Easy hike with scenic viewpoints and birdwatching."},
		{Name: "Botanical garden visit", Location: "City Botanic Gardens", Notes: "Relaxed stroll through themed gardens."},
		{Name: "Riverside cycling", Location: "Riverfront Loop", Notes: "Leisure ride with picnic stop."},
	},
	model.CategoryProductivity: {
		{Name: "Morning deep work session", Location: "Co-working Loft", Notes: "Focus block with premium Wi-Fi and coffee."},
		{Name: "Team stand-up meeting", Location: "Innovation Hub", Notes: "Sync on goals and blockers."},
		{Name: "Campus library research", Location: "North Library", Notes: "Reserve a quiet room for study time."},
	},
	model.CategoryCommute: {
		{Name: "Express metro ride", Location: "Metro Line 2", Notes: "Fastest route with one transfer."},
		{Name: "Bike share transfer", Location: "City Bike Station", Notes: "Use bike share for the last mile to campus."},
		{Name: "Shuttle bus", Location: "Shuttle Stop A", Notes: "Company shuttle departing every 15 minutes."},
	},
}

// tableFor returns the suggestion table for tag and the category recorded on
// activities drawn from it.
func tableFor(tag string) ([]Suggestion, model.Category) {
	category := model.Category(tag)
	if table, ok := suggestions[category]; ok {
		return table, category
	}
	return suggestions[fallbackCategory], fallbackCategory
}

// slot is a start time within a day.
type slot struct {
	hour, minute int
}

var dailySlots = []slot{{9, 0}, {12, 30}, {16, 0}}
