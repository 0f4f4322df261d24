package cmd

import (
	"fmt"
	"time"

	"github.com/Togather-Foundation/calendar/internal/calendar"
	"github.com/spf13/cobra"
)

func (a *app) listCommand() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Long: `List events from the API. Without bounds every event is returned;
--start and --end each narrow the listing independently.

Examples:
  # All events
  calendar list

  # Events from today on, as JSON
  calendar list --start today --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			var opts calendar.ListOptions
			var err error
			if opts.Start, err = timeFlag("start", start, now); err != nil {
				return err
			}
			if opts.End, err = timeFlag("end", end, now); err != nil {
				return err
			}

			events, err := a.client.ListEvents(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), a.format, events)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "only events from this time")
	cmd.Flags().StringVar(&end, "end", "", "only events until this time")
	return cmd
}

func (a *app) rangeCommand() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "range",
		Short: "List events between two times",
		Long: `List events inside a date range using the server's by_date_range endpoint.

Examples:
  calendar range --start "2026-03-01" --end "2026-03-31"
  calendar range --start "next monday" --end "next friday 18:00"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			from, err := timeFlag("start", start, now)
			if err != nil {
				return err
			}
			to, err := timeFlag("end", end, now)
			if err != nil {
				return err
			}

			events, err := a.client.ListEventsByDateRange(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), a.format, events)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "range start (required)")
	cmd.Flags().StringVar(&end, "end", "", "range end (required)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := a.client.GetEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printEvent(cmd.OutOrStdout(), a.format, event)
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteEvent(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.logger.Info().Str("event_id", args[0]).Msg("event deleted")
			if a.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"deleted": args[0]})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", args[0])
			return err
		},
	}
}

func (a *app) overlapCommand() *cobra.Command {
	var start, end, exclude string

	cmd := &cobra.Command{
		Use:   "overlap",
		Short: "Check whether a time window overlaps existing events",
		Long: `Ask the server whether [start, end) collides with an existing event.
Pass --exclude with an event's own ID when rescheduling it.

Examples:
  calendar overlap --start "2026-03-02T10:00:00Z" --end "2026-03-02T11:00:00Z"
  calendar overlap --start "tomorrow 10am" --end "tomorrow 11am" --exclude 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			q := calendar.OverlapQuery{ExcludeID: exclude}
			var err error
			if q.Start, err = timeFlag("start", start, now); err != nil {
				return err
			}
			if q.End, err = timeFlag("end", end, now); err != nil {
				return err
			}

			result, err := a.client.CheckOverlap(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printOverlap(cmd.OutOrStdout(), a.format, result)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "window start (required)")
	cmd.Flags().StringVar(&end, "end", "", "window end (required)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "event ID to leave out of the check")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
