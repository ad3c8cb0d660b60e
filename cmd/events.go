package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/reclaim/internal/payload"
	"github.com/teemow/reclaim/internal/reclaim"
)

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Read calendar events and apply schedule actions.",
		Long: `Read calendar events and apply schedule actions.

Events are never edited directly. create, update and delete each send one
schedule action (AddEventAction, UpdateEventAction or CancelEventAction);
apply sends a raw envelope of one or more actions.`,
		Example: `  reclaim events list --calendar-id 829105 --start 2026-02-21T00:00:00Z --end 2026-02-22T00:00:00Z
  reclaim events get 829105 abc123 --source-details
  reclaim events create --calendar-id 829105 --title "Team sync" --start 2026-02-21T18:30:00Z --end 2026-02-21T19:00:00Z
  reclaim events update 829105 abc123 --title "Team sync (moved)"
  reclaim events delete 829105 abc123 --message "Cancelled"
  reclaim events apply --json '{"actionsTaken":[{"type":"CancelEventAction","eventKey":"829105/abc123"}]}'`,
	}

	cmd.AddCommand(newEventsListCmd(a))
	cmd.AddCommand(newEventsGetCmd(a))
	cmd.AddCommand(newEventsCreateCmd(a))
	cmd.AddCommand(newEventsUpdateCmd(a))
	cmd.AddCommand(newEventsDeleteCmd(a))
	cmd.AddCommand(newEventsApplyCmd(a))

	return cmd
}

// eventDetailFlags are the read options shared by events list and get.
type eventDetailFlags struct {
	sourceDetails bool
	thin          bool
}

func (f *eventDetailFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.sourceDetails, "source-details", false, "Include source calendar details.")
	cmd.Flags().BoolVar(&f.thin, "thin", false, "Request the thin event representation.")
}

func (f *eventDetailFlags) options() reclaim.EventOptions {
	return reclaim.EventOptions{
		SourceDetails: trueOrNil(f.sourceDetails),
		Thin:          trueOrNil(f.thin),
	}
}

// trueOrNil maps an unset boolean switch to an omitted query parameter.
func trueOrNil(b bool) *bool {
	if !b {
		return nil
	}
	return reclaim.Bool(true)
}

func newEventsListCmd(a *app) *cobra.Command {
	var (
		calendarArgs []string
		allConnected bool
		start        string
		end          string
		details      eventDetailFlags
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List calendar events.",
		Long: `List calendar events.

Without --calendar-id the IDs in RECLAIM_CALENDAR_IDS (comma-separated) are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}

			rawIDs := os.Getenv("RECLAIM_CALENDAR_IDS")
			if cmd.Flags().Changed("calendar-id") {
				rawIDs = strings.Join(calendarArgs, ",")
			}
			calendarIDs, err := parseCalendarIDs(rawIDs)
			if err != nil {
				return err
			}

			opts := details.options()
			events, err := api.ListEvents(cmd.Context(), reclaim.EventListQuery{
				CalendarIDs:   calendarIDs,
				AllConnected:  trueOrNil(allConnected),
				Start:         start,
				End:           end,
				SourceDetails: opts.SourceDetails,
				Thin:          opts.Thin,
			})
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				if events == nil {
					events = []json.RawMessage{}
				}
				return printJSON(a.out, events)
			}
			printEventList(a.out, events)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&calendarArgs, "calendar-id", nil, "Calendar ID to include. Repeatable or comma-separated.")
	cmd.Flags().BoolVar(&allConnected, "all-connected", false, "Include events from all connected calendars.")
	cmd.Flags().StringVar(&start, "start", "", "Range start (ISO 8601 date or timestamp).")
	cmd.Flags().StringVar(&end, "end", "", "Range end (ISO 8601 date or timestamp).")
	details.register(cmd)

	return cmd
}

func newEventsGetCmd(a *app) *cobra.Command {
	var details eventDetailFlags

	cmd := &cobra.Command{
		Use:   "get CALENDAR_ID EVENT_ID",
		Short: "Get one calendar event.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}
			calendarID, err := parseCalendarID(args[0])
			if err != nil {
				return err
			}

			event, err := api.GetEvent(cmd.Context(), calendarID, args[1], details.options())
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				return printJSON(a.out, event)
			}
			printEvent(a.out, event)
			return nil
		},
	}

	details.register(cmd)

	return cmd
}

// eventFieldFlags are the event properties shared by create and update.
type eventFieldFlags struct {
	policyID     string
	description  string
	location     string
	priority     string
	visibility   string
	transparency string
	json         string
	sets         []string
}

func (f *eventFieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.policyID, "policy-id", payload.DefaultPolicyID, "Scheduling policy UUID.")
	cmd.Flags().StringVar(&f.description, "description", "", "Event description.")
	cmd.Flags().StringVar(&f.location, "location", "", "Event location.")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Event priority (P1-P4).")
	cmd.Flags().StringVar(&f.visibility, "visibility", "", "Event visibility, e.g. DEFAULT, PUBLIC or PRIVATE.")
	cmd.Flags().StringVar(&f.transparency, "transparency", "", "Event transparency, e.g. OPAQUE (busy) or TRANSPARENT (free).")
	cmd.Flags().StringVar(&f.json, "json", "", "JSON object merged into the action. Must be a JSON object.")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "Action field override (KEY=VALUE). Repeatable. Value supports JSON literals.")
}

func (f *eventFieldFlags) rawJSON(cmd *cobra.Command) *string {
	if !cmd.Flags().Changed("json") {
		return nil
	}
	return &f.json
}

func newEventsCreateCmd(a *app) *cobra.Command {
	var (
		calendarID              uint64
		title                   string
		start                   string
		end                     string
		attendees               []string
		guestsCanModify         bool
		guestsCanInviteOthers   bool
		guestsCanSeeOtherGuests bool
		fields                  eventFieldFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event via an AddEventAction.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}

			envelope, err := payload.BuildEventCreate(payload.EventCreateInput{
				CalendarID:              calendarID,
				Title:                   title,
				Start:                   start,
				End:                     end,
				PolicyID:                fields.policyID,
				Description:             fields.description,
				Location:                fields.location,
				Attendees:               attendees,
				GuestsCanModify:         guestsCanModify,
				GuestsCanInviteOthers:   guestsCanInviteOthers,
				GuestsCanSeeOtherGuests: guestsCanSeeOtherGuests,
				Priority:                fields.priority,
				Visibility:              fields.visibility,
				Transparency:            fields.transparency,
				JSON:                    fields.rawJSON(cmd),
				Sets:                    fields.sets,
			})
			if err != nil {
				return err
			}

			return a.applyEventAction(cmd, api, envelope, eventsMutationOutput{
				Operation:  "create",
				CalendarID: calendarID,
			})
		},
	}

	cmd.Flags().Uint64Var(&calendarID, "calendar-id", 0, "Calendar ID to create the event in (required).")
	cmd.Flags().StringVar(&title, "title", "", "Event title (required).")
	cmd.Flags().StringVar(&start, "start", "", "Event start (ISO 8601), e.g. 2026-02-21T18:30:00Z.")
	cmd.Flags().StringVar(&end, "end", "", "Event end (ISO 8601), e.g. 2026-02-21T19:00:00Z.")
	cmd.Flags().StringArrayVar(&attendees, "attendee", nil, "Attendee email. Repeatable.")
	cmd.Flags().BoolVar(&guestsCanModify, "guests-can-modify", false, "Allow guests to modify the event.")
	cmd.Flags().BoolVar(&guestsCanInviteOthers, "guests-can-invite-others", true, "Allow guests to invite others.")
	cmd.Flags().BoolVar(&guestsCanSeeOtherGuests, "guests-can-see-other-guests", true, "Allow guests to see the guest list.")
	fields.register(cmd)
	_ = cmd.MarkFlagRequired("calendar-id")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newEventsUpdateCmd(a *app) *cobra.Command {
	var (
		title  string
		start  string
		end    string
		fields eventFieldFlags
	)

	cmd := &cobra.Command{
		Use:   "update CALENDAR_ID EVENT_ID",
		Short: "Update an event via an UpdateEventAction.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}
			calendarID, err := parseCalendarID(args[0])
			if err != nil {
				return err
			}

			in := payload.EventUpdateInput{
				CalendarID:   calendarID,
				EventID:      args[1],
				PolicyID:     fields.policyID,
				Title:        title,
				Description:  fields.description,
				Location:     fields.location,
				Priority:     fields.priority,
				Visibility:   fields.visibility,
				Transparency: fields.transparency,
				JSON:         fields.rawJSON(cmd),
				Sets:         fields.sets,
			}
			if cmd.Flags().Changed("start") {
				in.Start = &start
			}
			if cmd.Flags().Changed("end") {
				in.End = &end
			}

			envelope, err := payload.BuildEventUpdate(in)
			if err != nil {
				return err
			}

			return a.applyEventAction(cmd, api, envelope, eventsMutationOutput{
				Operation:  "update",
				CalendarID: calendarID,
				EventID:    args[1],
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New event title.")
	cmd.Flags().StringVar(&start, "start", "", "New start (ISO 8601). Requires --end.")
	cmd.Flags().StringVar(&end, "end", "", "New end (ISO 8601). Requires --start.")
	fields.register(cmd)

	return cmd
}

func newEventsDeleteCmd(a *app) *cobra.Command {
	var (
		policyID string
		message  string
	)

	cmd := &cobra.Command{
		Use:   "delete CALENDAR_ID EVENT_ID",
		Short: "Cancel an event via a CancelEventAction.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}
			calendarID, err := parseCalendarID(args[0])
			if err != nil {
				return err
			}

			envelope, err := payload.BuildEventDelete(payload.EventDeleteInput{
				CalendarID: calendarID,
				EventID:    args[1],
				PolicyID:   policyID,
				Message:    message,
			})
			if err != nil {
				return err
			}

			return a.applyEventAction(cmd, api, envelope, eventsMutationOutput{
				Operation:  "delete",
				CalendarID: calendarID,
				EventID:    args[1],
			})
		},
	}

	cmd.Flags().StringVar(&policyID, "policy-id", payload.DefaultPolicyID, "Scheduling policy UUID.")
	cmd.Flags().StringVar(&message, "message", "", "Optional notification message sent to attendees.")

	return cmd
}

func newEventsApplyCmd(a *app) *cobra.Command {
	var raw string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a raw schedule actions envelope.",
		Long: `Apply a raw schedule actions envelope.

--json must be an object with a non-empty actionsTaken array. Every action
needs a type of AddEventAction, UpdateEventAction or CancelEventAction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}

			envelope, err := payload.BuildEventApply(raw)
			if err != nil {
				return err
			}
			response, err := api.ApplyScheduleActions(cmd.Context(), envelope)
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				return printJSON(a.out, response)
			}
			printApplyResults(a.out, response)
			return nil
		},
	}

	cmd.Flags().StringVar(&raw, "json", "", `Envelope JSON, e.g. '{"actionsTaken":[...]}' (required).`)
	_ = cmd.MarkFlagRequired("json")

	return cmd
}

// applyEventAction sends envelope and renders the mutation result.
func (a *app) applyEventAction(cmd *cobra.Command, api reclaim.API, envelope payload.Envelope, out eventsMutationOutput) error {
	response, err := api.ApplyScheduleActions(cmd.Context(), envelope)
	if err != nil {
		return err
	}
	out.Response = response

	if a.jsonOutput() {
		return printJSON(a.out, out)
	}
	printEventsMutation(a.out, out)
	return nil
}
