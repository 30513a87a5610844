package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/foxtrail/planner/internal/middleware"
	"github.com/foxtrail/planner/internal/model"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		req       model.GenerateItineraryRequest
		startDate string
		kind      string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new itinerary from the suggestion tables",
		Long: `Generate a draft itinerary and store it.

Each day gets one activity per focus tag. Known tags are culture, food, nature,
productivity and commute; any other tag uses the culture suggestions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(opts)
			if err != nil {
				return err
			}

			if startDate != "" {
				start, err := time.ParseInLocation("2006-01-02", startDate, e.location)
				if err != nil {
					return fmt.Errorf("invalid --start-date %q: want YYYY-MM-DD", startDate)
				}
				req.StartDate = &start
			}
			req.Type = model.ItineraryType(kind)
			if err := middleware.ValidateRequest(&req); err != nil {
				return err
			}

			it, err := e.service.Generate(cmd.Context(), &req)
			if err != nil {
				return err
			}
			return renderItinerary(cmd.OutOrStdout(), opts.output, it, e.location)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Destination, "destination", "", "Destination name")
	flags.StringVar(&req.Title, "title", "", "Itinerary title (default \"<destination> plan\")")
	flags.StringVar(&req.StartLocation, "start-location", "", "Where the trip starts")
	flags.StringVar(&startDate, "start-date", "", "First day as YYYY-MM-DD (default tomorrow)")
	flags.IntVar(&req.Days, "days", 0, "Number of days (default 3)")
	flags.StringSliceVar(&req.Focus, "focus", nil, "Focus tags, comma separated (default culture,food)")
	flags.StringVar(&kind, "type", string(model.ItineraryTypeTrip), "Itinerary type: trip, daily, commute or custom")

	return cmd
}
