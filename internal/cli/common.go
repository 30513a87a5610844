package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/foxtrail/planner/internal/clock"
	"github.com/foxtrail/planner/internal/model"
	"github.com/foxtrail/planner/internal/optimizer"
	"github.com/foxtrail/planner/internal/service"
	"github.com/foxtrail/planner/internal/store"
	"github.com/foxtrail/planner/internal/synthesizer"
	"github.com/foxtrail/planner/pkg/logger"
)

var (
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
)

// env bundles what a command needs to operate on the document.
type env struct {
	service  *service.ItineraryService
	location *time.Location
}

// newEnv opens the document named by --data and wires a service around it.
// Events are not published from the CLI.
func newEnv(opts *options) (*env, error) {
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", opts.timezone, err)
	}
	tag, err := language.Parse(opts.locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", opts.locale, err)
	}

	log := logger.NewNop()
	clk := clock.Real{}
	st := store.New(opts.dataFile,
		store.WithClock(clk),
		store.WithLocation(loc),
		store.WithLogger(log),
	)
	if err := st.Init(); err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.dataFile, err)
	}

	svc := service.NewItineraryService(st, optimizer.New(tag), synthesizer.New(clk, loc), nil, clk, log)
	return &env{service: svc, location: loc}, nil
}

// render writes v in the selected format. table is used for the table format.
func render(w io.Writer, format string, v any, table func(io.Writer) error) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return table(w)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printHeader(w io.Writer, title string) {
	_, _ = headerColor.Fprintf(w, "%s\n", title)
}

func printLabelValue(w io.Writer, label, value string) {
	_, _ = labelColor.Fprintf(w, "  %-14s", label+":")
	_, _ = fmt.Fprintln(w, value)
}

func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

func writeItemsTable(w io.Writer, items []model.Activity, loc *time.Location) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, "  (no activities)")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SEQ\tDAY\tSTART\tEND\tNAME\tCATEGORY\tMODE")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			intOrDash(item.Sequence),
			intOrDash(item.Day),
			timeOrDash(item.StartTime, loc),
			timeOrDash(item.EndTime, loc),
			item.Name,
			item.Category,
			item.TravelMode,
		)
	}
	return tw.Flush()
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func timeOrDash(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

func formatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
