package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/Togather-Foundation/calendar/internal/calendar"
	"github.com/Togather-Foundation/calendar/internal/sanitize"
)

const (
	formatTable = "table"
	formatJSON  = "json"

	titleWidth    = 40
	locationWidth = 30
)

// writeJSON indents v without HTML escaping, so string members print as the
// server sent them.
func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// displayTime normalizes a timestamp member to UTC. Values that do not parse
// are shown as received.
func displayTime(e calendar.EventInput, key string) string {
	if e.Text(key) == "" {
		return "-"
	}
	t, err := e.Time(key)
	if err != nil {
		return sanitize.Cell(e.Text(key), 0)
	}
	return calendar.FormatTimestamp(t)
}

func printEvents(w io.Writer, format string, events []calendar.Event) error {
	if format == formatJSON {
		if events == nil {
			events = []calendar.Event{}
		}
		return writeJSON(w, events)
	}

	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No events found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTART\tEND\tLOCATION")
	fmt.Fprintln(tw, "--\t-----\t-----\t---\t--------")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			sanitize.Cell(e.ID().String(), 0),
			sanitize.Cell(e.Title(), titleWidth),
			displayTime(e.EventInput, calendar.FieldStartTime),
			displayTime(e.EventInput, calendar.FieldEndTime),
			sanitize.Cell(e.Location(), locationWidth),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d event(s)\n", len(events))
	return err
}

func printEvent(w io.Writer, format string, e *calendar.Event) error {
	if format == formatJSON {
		return writeJSON(w, e)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", label, value)
		}
	}
	field("ID", sanitize.Cell(e.ID().String(), 0))
	field("Title", sanitize.Cell(e.Title(), 0))
	field("Start", displayTime(e.EventInput, calendar.FieldStartTime))
	field("End", displayTime(e.EventInput, calendar.FieldEndTime))
	if minutes, ok := e.DurationMinutes(); ok {
		field("Duration", strconv.Itoa(minutes)+" min")
	}
	field("Location", sanitize.Cell(e.Location(), 0))
	field("Color", sanitize.Cell(e.Color(), 0))
	if e.IsRecurring() {
		recurrence := sanitize.Cell(e.RecurrenceType(), 0)
		if n := e.RecurrenceInterval(); n > 1 {
			recurrence = fmt.Sprintf("%s (every %d)", recurrence, n)
		}
		if until := displayTime(e.EventInput, calendar.FieldRecurrenceEndDate); until != "-" {
			recurrence += " until " + until
		}
		field("Recurs", recurrence)
	}
	if parent, ok := e.ParentEvent(); ok {
		field("Parent", sanitize.Cell(parent.String(), 0))
	}
	field("Description", sanitize.Cell(e.Description(), 0))
	return tw.Flush()
}

// printOverlap prints the server's answer. JSON output is the raw result
// re-indented; table output uses the typed report when the body has that
// shape and falls back to the raw body otherwise.
func printOverlap(w io.Writer, format string, result calendar.OverlapResult) error {
	if format == formatJSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, result.Raw, "", "  "); err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		_, err := fmt.Fprintln(w, buf.String())
		return err
	}

	report, err := result.Report()
	if err != nil {
		_, err := fmt.Fprintf(w, "Overlap result: %s\n", sanitize.Cell(string(result.Raw), 0))
		return err
	}
	if !report.HasOverlap {
		_, err := fmt.Fprintln(w, "No overlapping events.")
		return err
	}
	fmt.Fprintf(w, "Overlaps with %d event(s):\n\n", len(report.OverlappingEvents))
	return printEvents(w, formatTable, report.OverlappingEvents)
}
