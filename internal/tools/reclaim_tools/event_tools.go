package reclaim_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/reclaim/internal/instrumentation"
	"github.com/teemow/reclaim/internal/payload"
	"github.com/teemow/reclaim/internal/reclaim"
	"github.com/teemow/reclaim/internal/server"
	"github.com/teemow/reclaim/internal/tools/common"
)

const (
	policyIDDescription = "Scheduling policy UUID (default: " + payload.DefaultPolicyID + ")"
	eventSetDescription = "KEY=VALUE overrides applied to the action after json"
)

// registerEventTools registers the calendar event tools
func registerEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listEventsTool := mcp.NewTool("reclaim_list_events",
		mcp.WithDescription("List calendar events known to Reclaim"),
		mcp.WithArray(argCalendarIDs,
			mcp.Description("Calendar IDs to query"),
			mcp.WithNumberItems(),
		),
		mcp.WithBoolean(argAllConnected,
			mcp.Description("Query all connected calendars"),
		),
		mcp.WithString(argStart,
			mcp.Description("Range start, ISO 8601 date or timestamp"),
		),
		mcp.WithString(argEnd,
			mcp.Description("Range end, ISO 8601 date or timestamp"),
		),
		mcp.WithBoolean(argSourceDetails,
			mcp.Description("Include source details"),
		),
		mcp.WithBoolean(argThin,
			mcp.Description("Return thin event objects"),
		),
	)
	s.AddTool(listEventsTool, common.InstrumentedToolHandler("reclaim_list_events", instrumentation.OperationListEvents, sc, handleListEvents(sc)))

	getEventTool := mcp.NewTool("reclaim_get_event",
		mcp.WithDescription("Get one calendar event"),
		mcp.WithNumber(argCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString(argEventID,
			mcp.Required(),
			mcp.Description("Event ID"),
		),
		mcp.WithBoolean(argSourceDetails,
			mcp.Description("Include source details"),
		),
		mcp.WithBoolean(argThin,
			mcp.Description("Return a thin event object"),
		),
	)
	s.AddTool(getEventTool, common.InstrumentedToolHandler("reclaim_get_event", instrumentation.OperationGetEvent, sc, handleGetEvent(sc)))

	if readOnly {
		return nil
	}

	createEventTool := mcp.NewTool("reclaim_create_event",
		mcp.WithDescription("Create a calendar event through a Reclaim AddEventAction"),
		mcp.WithNumber(argCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString(argTitle,
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString(argStart,
			mcp.Required(),
			mcp.Description("Start timestamp, ISO 8601"),
		),
		mcp.WithString(argEnd,
			mcp.Required(),
			mcp.Description("End timestamp, ISO 8601"),
		),
		mcp.WithString(argPolicyID,
			mcp.Description(policyIDDescription),
		),
		mcp.WithString(argDescription,
			mcp.Description("Event description"),
		),
		mcp.WithString(argLocation,
			mcp.Description("Event location"),
		),
		mcp.WithArray(argAttendees,
			mcp.Description("Attendee email addresses"),
			mcp.WithStringItems(),
		),
		mcp.WithString(argPriority,
			mcp.Description("Event priority: "+priorityValuesHint),
		),
		mcp.WithString(argVisibility,
			mcp.Description("Event visibility, e.g. DEFAULT, PUBLIC or PRIVATE"),
		),
		mcp.WithString(argTransparency,
			mcp.Description("Event transparency, e.g. OPAQUE or TRANSPARENT"),
		),
		mcp.WithBoolean(argGuestsCanModify,
			mcp.Description("Whether guests can modify the event"),
		),
		mcp.WithBoolean(argGuestsCanInviteOthers,
			mcp.Description("Whether guests can invite others"),
		),
		mcp.WithBoolean(argGuestsCanSeeOtherGuests,
			mcp.Description("Whether guests can see other guests"),
		),
		mcp.WithObject(argJSON,
			mcp.Description("JSON object merged into the action"),
		),
		mcp.WithArray(argSet,
			mcp.Description(eventSetDescription),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(createEventTool, common.InstrumentedToolHandler("reclaim_create_event", instrumentation.OperationApplyActions, sc, handleCreateEvent(sc)))

	updateEventTool := mcp.NewTool("reclaim_update_event",
		mcp.WithDescription("Update a calendar event through a Reclaim UpdateEventAction. At least one field must change."),
		mcp.WithNumber(argCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString(argEventID,
			mcp.Required(),
			mcp.Description("Event ID"),
		),
		mcp.WithString(argPolicyID,
			mcp.Description(policyIDDescription),
		),
		mcp.WithString(argTitle,
			mcp.Description("New title"),
		),
		mcp.WithString(argDescription,
			mcp.Description("New description"),
		),
		mcp.WithString(argLocation,
			mcp.Description("New location"),
		),
		mcp.WithString(argStart,
			mcp.Description("New start timestamp; requires end"),
		),
		mcp.WithString(argEnd,
			mcp.Description("New end timestamp; requires start"),
		),
		mcp.WithString(argPriority,
			mcp.Description("New priority: "+priorityValuesHint),
		),
		mcp.WithString(argVisibility,
			mcp.Description("New visibility"),
		),
		mcp.WithString(argTransparency,
			mcp.Description("New transparency"),
		),
		mcp.WithObject(argJSON,
			mcp.Description("JSON object merged into the action"),
		),
		mcp.WithArray(argSet,
			mcp.Description(eventSetDescription),
			mcp.WithStringItems(),
		),
	)
	s.AddTool(updateEventTool, common.InstrumentedToolHandler("reclaim_update_event", instrumentation.OperationApplyActions, sc, handleUpdateEvent(sc)))

	deleteEventTool := mcp.NewTool("reclaim_delete_event",
		mcp.WithDescription("Cancel a calendar event through a Reclaim CancelEventAction"),
		mcp.WithNumber(argCalendarID,
			mcp.Required(),
			mcp.Description("Calendar ID"),
		),
		mcp.WithString(argEventID,
			mcp.Required(),
			mcp.Description("Event ID"),
		),
		mcp.WithString(argPolicyID,
			mcp.Description(policyIDDescription),
		),
		mcp.WithString(argMessage,
			mcp.Description("Optional notification message for attendees"),
		),
	)
	s.AddTool(deleteEventTool, common.InstrumentedToolHandler("reclaim_delete_event", instrumentation.OperationApplyActions, sc, handleDeleteEvent(sc)))

	applyTool := mcp.NewTool("reclaim_apply_schedule_actions",
		mcp.WithDescription(`Submit a raw schedule action envelope, e.g. {"actionsTaken":[{"type":"CancelEventAction", ...}]}`),
		mcp.WithObject(argJSON,
			mcp.Required(),
			mcp.Description("Envelope with a non-empty actionsTaken array"),
		),
	)
	s.AddTool(applyTool, common.InstrumentedToolHandler("reclaim_apply_schedule_actions", instrumentation.OperationApplyActions, sc, handleApplyActions(sc)))

	return nil
}

func handleListEvents(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		calendarIDs, err := idList(args, argCalendarIDs)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		query := reclaim.EventListQuery{
			CalendarIDs:   calendarIDs,
			AllConnected:  common.OptionalBool(args, argAllConnected),
			Start:         request.GetString(argStart, ""),
			End:           request.GetString(argEnd, ""),
			SourceDetails: common.OptionalBool(args, argSourceDetails),
			Thin:          common.OptionalBool(args, argThin),
		}

		events, err := sc.API().ListEvents(ctx, query)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		if events == nil {
			events = []json.RawMessage{}
		}
		return common.JSONResult(events)
	}
}

func handleGetEvent(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		calendarID, eventID, err := eventRef(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		event, err := sc.API().GetEvent(ctx, calendarID, eventID, reclaim.EventOptions{
			SourceDetails: common.OptionalBool(args, argSourceDetails),
			Thin:          common.OptionalBool(args, argThin),
		})
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return common.JSONResult(event)
	}
}

func handleCreateEvent(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		calendarID, err := common.IDFromArgs(args, argCalendarID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		attendees, err := common.StringSlice(args, argAttendees)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rawJSON, sets, err := overrideArgs(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		envelope, err := payload.BuildEventCreate(payload.EventCreateInput{
			CalendarID:              calendarID,
			Title:                   request.GetString(argTitle, ""),
			Start:                   request.GetString(argStart, ""),
			End:                     request.GetString(argEnd, ""),
			PolicyID:                request.GetString(argPolicyID, payload.DefaultPolicyID),
			Description:             request.GetString(argDescription, ""),
			Location:                request.GetString(argLocation, ""),
			Attendees:               attendees,
			GuestsCanModify:         request.GetBool(argGuestsCanModify, false),
			GuestsCanInviteOthers:   request.GetBool(argGuestsCanInviteOthers, false),
			GuestsCanSeeOtherGuests: request.GetBool(argGuestsCanSeeOtherGuests, false),
			Priority:                request.GetString(argPriority, ""),
			Visibility:              request.GetString(argVisibility, ""),
			Transparency:            request.GetString(argTransparency, ""),
			JSON:                    rawJSON,
			Sets:                    sets,
		})
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return applyEnvelope(ctx, sc, envelope)
	}
}

func handleUpdateEvent(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		calendarID, eventID, err := eventRef(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rawJSON, sets, err := overrideArgs(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		envelope, err := payload.BuildEventUpdate(payload.EventUpdateInput{
			CalendarID:   calendarID,
			EventID:      eventID,
			PolicyID:     request.GetString(argPolicyID, payload.DefaultPolicyID),
			Title:        request.GetString(argTitle, ""),
			Description:  request.GetString(argDescription, ""),
			Location:     request.GetString(argLocation, ""),
			Start:        rawOptionalString(args, argStart),
			End:          rawOptionalString(args, argEnd),
			Priority:     request.GetString(argPriority, ""),
			Visibility:   request.GetString(argVisibility, ""),
			Transparency: request.GetString(argTransparency, ""),
			JSON:         rawJSON,
			Sets:         sets,
		})
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return applyEnvelope(ctx, sc, envelope)
	}
}

func handleDeleteEvent(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		calendarID, eventID, err := eventRef(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		envelope, err := payload.BuildEventDelete(payload.EventDeleteInput{
			CalendarID: calendarID,
			EventID:    eventID,
			PolicyID:   request.GetString(argPolicyID, payload.DefaultPolicyID),
			Message:    request.GetString(argMessage, ""),
		})
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return applyEnvelope(ctx, sc, envelope)
	}
}

func handleApplyActions(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := common.ObjectArg(request.GetArguments(), argJSON)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if raw == nil {
			return mcp.NewToolResultError(argJSON + " is required"), nil
		}

		envelope, err := payload.BuildEventApply(*raw)
		if err != nil {
			return common.ErrorResult(err), nil
		}
		return applyEnvelope(ctx, sc, envelope)
	}
}

func applyEnvelope(ctx context.Context, sc *server.ServerContext, envelope payload.Envelope) (*mcp.CallToolResult, error) {
	response, err := sc.API().ApplyScheduleActions(ctx, envelope)
	if err != nil {
		return common.ErrorResult(err), nil
	}
	return common.JSONResult(response)
}

// eventRef reads the calendar_id and event_id arguments.
func eventRef(args map[string]any) (uint64, string, error) {
	calendarID, err := common.IDFromArgs(args, argCalendarID)
	if err != nil {
		return 0, "", err
	}
	eventID := common.OptionalString(args, argEventID)
	if eventID == nil {
		return 0, "", fmt.Errorf("%s is required", argEventID)
	}
	return calendarID, *eventID, nil
}

func overrideArgs(args map[string]any) (*string, []string, error) {
	rawJSON, err := common.ObjectArg(args, argJSON)
	if err != nil {
		return nil, nil, err
	}
	sets, err := common.StringSlice(args, argSet)
	if err != nil {
		return nil, nil, err
	}
	return rawJSON, sets, nil
}

// idList reads a single ID or an array of IDs.
func idList(args map[string]any, key string) ([]uint64, error) {
	var items []any
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case []any:
		items = v
	default:
		items = []any{v}
	}

	ids := make([]uint64, 0, len(items))
	for i, item := range items {
		id, err := common.ParseID(item, fmt.Sprintf("%s[%d]", key, i))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
