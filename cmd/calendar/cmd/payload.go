package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Togather-Foundation/calendar/internal/calendar"
	"github.com/spf13/cobra"
)

// payloadFlags are the event fields settable from the command line. Only
// flags the user actually passed are applied, so update can patch a fetched
// event without clobbering fields left unspecified.
type payloadFlags struct {
	file string

	title              string
	description        string
	location           string
	color              string
	start              string
	end                string
	recurring          bool
	recurrenceType     string
	recurrenceInterval int
	recurrenceEnd      string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&p.file, "file", "f", "", `read the event JSON from FILE ("-" for stdin)`)
	f.StringVar(&p.title, "title", "", "event title")
	f.StringVar(&p.description, "description", "", "event description")
	f.StringVar(&p.location, "location", "", "event location")
	f.StringVar(&p.color, "color", "", "display color, e.g. #3174ad")
	f.StringVar(&p.start, "start", "", "start time")
	f.StringVar(&p.end, "end", "", "end time")
	f.BoolVar(&p.recurring, "recurring", false, "mark the event as recurring")
	f.StringVar(&p.recurrenceType, "recurrence-type", "", "recurrence type (daily, weekly, monthly, yearly)")
	f.IntVar(&p.recurrenceInterval, "recurrence-interval", 0, "repeat every N periods")
	f.StringVar(&p.recurrenceEnd, "recurrence-end", "", "last date the event recurs")
}

// changed reports whether any field flag (not --file) was passed.
func (p *payloadFlags) changed(cmd *cobra.Command) bool {
	for _, name := range []string{
		"title", "description", "location", "color", "start", "end",
		"recurring", "recurrence-type", "recurrence-interval", "recurrence-end",
	} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// readFile decodes the --file payload. Its members are sent as written.
func (p *payloadFlags) readFile(cmd *cobra.Command) (calendar.EventInput, error) {
	var (
		data []byte
		err  error
	)
	if p.file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(p.file)
	}
	if err != nil {
		return calendar.EventInput{}, fmt.Errorf("read event payload: %w", err)
	}

	var input calendar.EventInput
	if err := json.Unmarshal(data, &input); err != nil {
		return calendar.EventInput{}, fmt.Errorf("parse event payload: %w", err)
	}
	return input, nil
}

// apply sets every passed flag on input. A flag given as "" sends an empty
// string, which clears the field on the server.
func (p *payloadFlags) apply(cmd *cobra.Command, input *calendar.EventInput, now time.Time) error {
	f := cmd.Flags()
	strs := []struct {
		name  string
		value string
		set   func(string)
	}{
		{"title", p.title, input.SetTitle},
		{"description", p.description, input.SetDescription},
		{"location", p.location, input.SetLocation},
		{"color", p.color, input.SetColor},
		{"recurrence-type", p.recurrenceType, input.SetRecurrenceType},
	}
	for _, s := range strs {
		if f.Changed(s.name) {
			s.set(s.value)
		}
	}
	if f.Changed("recurring") {
		input.SetIsRecurring(p.recurring)
	}
	if f.Changed("recurrence-interval") {
		input.SetRecurrenceInterval(p.recurrenceInterval)
	}

	times := []struct {
		name  string
		value string
		set   func(time.Time)
	}{
		{"start", p.start, input.SetStartTime},
		{"end", p.end, input.SetEndTime},
		{"recurrence-end", p.recurrenceEnd, input.SetRecurrenceEndDate},
	}
	for _, t := range times {
		if !f.Changed(t.name) {
			continue
		}
		parsed, err := timeFlag(t.name, t.value, now)
		if err != nil {
			return err
		}
		t.set(parsed)
	}
	return nil
}

func (a *app) createCommand() *cobra.Command {
	var p payloadFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Long: `Create an event from a JSON file or from flags. Flags given together
with --file override the matching members of the file.

Examples:
  calendar create --title "Team sync" --start "tomorrow 10am" --end "tomorrow 11am"
  calendar create --file event.json
  echo '{"title":"Demo","start_time":"2026-03-02T15:00:00Z","end_time":"2026-03-02T16:00:00Z"}' | calendar create -f -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input calendar.EventInput
			if p.file != "" {
				var err error
				if input, err = p.readFile(cmd); err != nil {
					return err
				}
			} else {
				for _, name := range []string{"title", "start", "end"} {
					if !cmd.Flags().Changed(name) {
						return fmt.Errorf("--%s is required unless --file is given", name)
					}
				}
			}
			if err := p.apply(cmd, &input, time.Now()); err != nil {
				return err
			}

			event, err := a.client.CreateEvent(cmd.Context(), input)
			if err != nil {
				return err
			}
			a.logger.Info().Str("event_id", event.ID().String()).Msg("event created")
			return printEvent(cmd.OutOrStdout(), a.format, event)
		},
	}

	p.register(cmd)
	return cmd
}

func (a *app) updateCommand() *cobra.Command {
	var p payloadFlags

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an event",
		Long: `Replace an event. With --file the file is the new payload; otherwise the
current event is fetched and only the passed flags change.

Examples:
  calendar update 42 --title "Team sync (moved)" --start "friday 10am" --end "friday 11am"
  calendar update 42 --file event.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if p.file == "" && !p.changed(cmd) {
				return errors.New("nothing to update: pass --file or at least one field flag")
			}

			var input calendar.EventInput
			if p.file != "" {
				var err error
				if input, err = p.readFile(cmd); err != nil {
					return err
				}
			} else {
				current, err := a.client.GetEvent(cmd.Context(), id)
				if err != nil {
					return err
				}
				input = current.Input()
			}
			if err := p.apply(cmd, &input, time.Now()); err != nil {
				return err
			}

			event, err := a.client.UpdateEvent(cmd.Context(), id, input)
			if err != nil {
				return err
			}
			a.logger.Info().Str("event_id", id).Msg("event updated")
			return printEvent(cmd.OutOrStdout(), a.format, event)
		},
	}

	p.register(cmd)
	return cmd
}
