package reclaim_tools

import (
	"encoding/json"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/reclaim/internal/server"
)

// Argument names used by the task and event tools.
const (
	argAll                     = "all"
	argFilter                  = "filter"
	argTitle                   = "title"
	argNotes                   = "notes"
	argPriority                = "priority"
	argDue                     = "due"
	argTimeChunksRequired      = "time_chunks_required"
	argMinChunkSize            = "min_chunk_size"
	argMaxChunkSize            = "max_chunk_size"
	argEventCategory           = "event_category"
	argAlwaysPrivate           = "always_private"
	argJSON                    = "json"
	argSet                     = "set"
	argCalendarID              = "calendar_id"
	argCalendarIDs             = "calendar_ids"
	argEventID                 = "event_id"
	argAllConnected            = "all_connected"
	argStart                   = "start"
	argEnd                     = "end"
	argSourceDetails           = "source_details"
	argThin                    = "thin"
	argPolicyID                = "policy_id"
	argDescription             = "description"
	argLocation                = "location"
	argAttendees               = "attendees"
	argVisibility              = "visibility"
	argTransparency            = "transparency"
	argGuestsCanModify         = "guests_can_modify"
	argGuestsCanInviteOthers   = "guests_can_invite_others"
	argGuestsCanSeeOtherGuests = "guests_can_see_other_guests"
	argMessage                 = "message"
)

// RegisterReclaimTools registers all Reclaim tools with the MCP server.
// Tools that change tasks or events are only registered when readOnly is
// false.
func RegisterReclaimTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerTaskTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register task tools: %w", err)
	}

	if err := registerEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	return nil
}

// DeleteResult is the outcome of deleting one task.
type DeleteResult struct {
	TaskID      uint64          `json:"task_id"`
	Deleted     bool            `json:"deleted"`
	APIResponse json.RawMessage `json:"api_response"`
}

// NewDeleteResult wraps the API response of a task deletion. An empty
// response is reported as null.
func NewDeleteResult(taskID uint64, response json.RawMessage) DeleteResult {
	if len(response) == 0 {
		response = json.RawMessage("null")
	}
	return DeleteResult{TaskID: taskID, Deleted: true, APIResponse: response}
}
