package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all itineraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(opts)
			if err != nil {
				return err
			}

			list := e.service.List(cmd.Context())
			return render(cmd.OutOrStdout(), opts.output, list, func(w io.Writer) error {
				if len(list) == 0 {
					_, _ = fmt.Fprintln(w, "No itineraries found")
					return nil
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tDESTINATION\tSTART\tEND\tITEMS")
				for _, it := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
						it.ID,
						it.Title,
						it.Type,
						it.Destination,
						formatDate(it.StartDate, e.location),
						formatDate(it.EndDate, e.location),
						len(it.Items),
					)
				}
				return tw.Flush()
			})
		},
	}
}
