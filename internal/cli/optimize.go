package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newOptimizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <itinerary-id>",
		Short: "Reorder an itinerary's activities chronologically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(opts)
			if err != nil {
				return err
			}

			result, err := e.service.Optimize(cmd.Context(), args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			return render(cmd.OutOrStdout(), opts.output, result, func(w io.Writer) error {
				printSuccess(w, result.Message)
				_, _ = fmt.Fprintln(w)
				return writeItemsTable(w, result.Items, e.location)
			})
		},
	}
}
