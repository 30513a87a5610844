package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/foxtrail/planner/internal/model"
	"github.com/foxtrail/planner/internal/store"
)

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <itinerary-id>",
		Short: "Show one itinerary with its activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(opts)
			if err != nil {
				return err
			}

			it, err := e.service.Get(cmd.Context(), args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			return renderItinerary(cmd.OutOrStdout(), opts.output, it, e.location)
		},
	}
}

func renderItinerary(w io.Writer, format string, it *model.Itinerary, loc *time.Location) error {
	return render(w, format, it, func(w io.Writer) error {
		printHeader(w, it.Title)
		printLabelValue(w, "ID", it.ID)
		printLabelValue(w, "Type", string(it.Type))
		printLabelValue(w, "Destination", it.Destination)
		printLabelValue(w, "Start location", it.StartLocation)
		printLabelValue(w, "Dates", formatDate(it.StartDate, loc)+" to "+formatDate(it.EndDate, loc))
		if len(it.Collaborators) > 0 {
			printLabelValue(w, "Collaborators", strings.Join(it.Collaborators, ", "))
		}
		printLabelValue(w, "AI generated", fmt.Sprintf("%t", it.AIGenerated))
		for _, key := range sortedKeys(it.Preferences) {
			printLabelValue(w, key, preferenceString(it.Preferences[key]))
		}
		_, _ = fmt.Fprintln(w)
		return writeItemsTable(w, it.Items, loc)
	})
}

func preferenceString(v model.PreferenceValue) string {
	switch v.Kind() {
	case model.KindString:
		s, _ := v.AsString()
		return s
	case model.KindList:
		list, _ := v.AsList()
		return strings.Join(list, ", ")
	case model.KindNumber:
		n, _ := v.AsNumber()
		return fmt.Sprintf("%g", n)
	}
	return ""
}

func sortedKeys(p model.Preferences) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func notFound(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("itinerary %s not found", id)
	}
	return err
}
