// Package cli implements the plannerctl commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// options are the flags shared by every subcommand.
type options struct {
	dataFile string
	timezone string
	locale   string
	output   string
}

var version = "dev"

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// NewRootCmd builds the plannerctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "plannerctl",
		Version: version,
		Short:   "Inspect and maintain the itinerary document",
		Long: `plannerctl works directly on the JSON document the planner API serves from.

Stop the API server before running commands that modify the document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputTable, outputJSON, outputYAML:
				return nil
			}
			return fmt.Errorf("unsupported output format %q (want table, json or yaml)", opts.output)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.dataFile, "data", envOr("DATA_FILE", "data/itineraries.json"), "Path to the itinerary document")
	flags.StringVar(&opts.timezone, "timezone", envOr("PLANNER_TIMEZONE", "UTC"), "Time zone used to lay out generated days")
	flags.StringVar(&opts.locale, "locale", envOr("PLANNER_LOCALE", "und"), "Locale used to order untimed activities")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "Output format: table, json or yaml")

	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newShowCmd(opts))
	cmd.AddCommand(newOptimizeCmd(opts))
	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newRemoveCmd(opts))

	return cmd
}

// Execute runs plannerctl with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
