// Package optimizer reorders an itinerary's activities into time order.
package optimizer

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/foxtrail/planner/internal/model"
)

// Message is reported to callers after a successful reorder.
const Message = "Itinerary order optimised by chronological sequence."

// Optimizer sorts activities chronologically. Untimed activities are ordered by
// name using the collation rules of the configured language.
type Optimizer struct {
	tag language.Tag
}

// New creates an optimizer collating names for tag.
func New(tag language.Tag) *Optimizer {
	return &Optimizer{tag: tag}
}

// Default creates an optimizer using the root collation order.
func Default() *Optimizer {
	return New(language.Und)
}

// Optimize returns a sorted copy of items with Sequence set to 1..n.
//
// Activities with a start time come first, earliest first. Activities without
// one follow, ordered by name. Ties keep their input order, so running Optimize
// on its own output changes nothing.
func (o *Optimizer) Optimize(items []model.Activity) []model.Activity {
	out := model.CloneActivities(items)

	// Collators keep scratch buffers and are not safe for concurrent use.
	col := collate.New(o.tag)
	slices.SortStableFunc(out, func(a, b model.Activity) int {
		return compare(col, &a, &b)
	})

	for i := range out {
		seq := i + 1
		out[i].Sequence = &seq
	}
	return out
}

func compare(col *collate.Collator, a, b *model.Activity) int {
	switch {
	case a.StartTime != nil && b.StartTime != nil:
		return a.StartTime.Compare(*b.StartTime)
	case a.StartTime != nil:
		return -1
	case b.StartTime != nil:
		return 1
	default:
		return col.CompareString(a.Name, b.Name)
	}
}
