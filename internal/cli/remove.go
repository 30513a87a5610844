package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type removeResult struct {
	ID      string `json:"id" yaml:"id"`
	Removed bool   `json:"removed" yaml:"removed"`
}

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <itinerary-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an itinerary and its activities",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(opts)
			if err != nil {
				return err
			}

			id := args[0]
			removed, err := e.service.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("itinerary %s not found", id)
			}
			return render(cmd.OutOrStdout(), opts.output, removeResult{ID: id, Removed: true}, func(w io.Writer) error {
				printSuccess(w, "Removed itinerary "+id)
				return nil
			})
		},
	}
}
