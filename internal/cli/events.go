package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/socialgraph/internal/ir"
	"github.com/roach88/socialgraph/internal/store"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	Database string
	Kind     string
	After    int64
	Limit    int
}

// EventsResult holds the events command output.
type EventsResult struct {
	Database string           `json:"database"`
	Events   []ir.EventRecord `json:"events"`
	LastSeq  int64            `json:"last_seq"`
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Read the SQLite event log",
		Long: `Read domain events from the SQLite event log in sequence order.

The log is written when events.log is enabled in the config. Without --db
the path comes from sqlite.path.

Examples:
  socialgraph events --db ./sg.db
  socialgraph events --db ./sg.db --kind PostLiked --after 10
  socialgraph events --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: sqlite.path from config)")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only events of this kind, e.g. PostCreated")
	cmd.Flags().Int64Var(&opts.After, "after", 0, "only events with seq greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "print at most this many events (0 for all)")

	return cmd
}

func runEvents(opts *EventsOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	path := opts.Database
	if path == "" {
		cfg, err := opts.loadConfig(ctx)
		if err != nil {
			return err
		}
		path = cfg.SQLite.Path
	}
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "event log not found", err)
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	records, err := st.ReadEvents(ctx, opts.After, ir.EventKind(opts.Kind))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	last, err := st.LastEventSeq(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	result := EventsResult{Database: path, Events: records, LastSeq: last}
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}
	return outputEventsText(cmd, result, opts.Verbose)
}

func outputEventsText(cmd *cobra.Command, result EventsResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Event log: %s (last seq %d)\n", result.Database, result.LastSeq)
	if len(result.Events) == 0 {
		fmt.Fprintln(w, "  (no events)")
		return nil
	}
	for _, rec := range result.Events {
		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return fmt.Errorf("render event %d: %w", rec.Seq, err)
		}
		fmt.Fprintf(w, "  [%d] %-15s %s\n", rec.Seq, rec.Kind, payload)
		if verbose {
			fmt.Fprintf(w, "        id: %s\n", rec.ID)
		}
	}
	return nil
}
