package payload

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/teemow/reclaim/internal/reclaim"
)

// DefaultPolicyID is the scheduling policy used when none is given.
const DefaultPolicyID = "00000000-0000-0000-0000-000000000000"

// ActionType discriminates schedule actions on the wire.
type ActionType string

const (
	ActionAddEvent    ActionType = "AddEventAction"
	ActionUpdateEvent ActionType = "UpdateEventAction"
	ActionCancelEvent ActionType = "CancelEventAction"
)

// ParseActionType validates a wire discriminant.
func ParseActionType(s string) (ActionType, error) {
	switch t := ActionType(s); t {
	case ActionAddEvent, ActionUpdateEvent, ActionCancelEvent:
		return t, nil
	}
	return "", fmt.Errorf("unknown action type %q", s)
}

// Action is one schedule action. The set of implementations is closed:
// AddEventAction, UpdateEventAction and CancelEventAction.
type Action interface {
	Type() ActionType
	Fields() Object
	isAction()
}

// AddEventAction creates a calendar event.
type AddEventAction struct{ fields Object }

// UpdateEventAction changes an existing calendar event.
type UpdateEventAction struct{ fields Object }

// CancelEventAction cancels a calendar event.
type CancelEventAction struct{ fields Object }

func (AddEventAction) Type() ActionType    { return ActionAddEvent }
func (UpdateEventAction) Type() ActionType { return ActionUpdateEvent }
func (CancelEventAction) Type() ActionType { return ActionCancelEvent }

func (a AddEventAction) Fields() Object    { return a.fields }
func (a UpdateEventAction) Fields() Object { return a.fields }
func (a CancelEventAction) Fields() Object { return a.fields }

func (AddEventAction) isAction()    {}
func (UpdateEventAction) isAction() {}
func (CancelEventAction) isAction() {}

func (a AddEventAction) MarshalJSON() ([]byte, error)    { return marshalAction(a) }
func (a UpdateEventAction) MarshalJSON() ([]byte, error) { return marshalAction(a) }
func (a CancelEventAction) MarshalJSON() ([]byte, error) { return marshalAction(a) }

func marshalAction(a Action) ([]byte, error) {
	out := make(Object, len(a.Fields())+1)
	Merge(out, a.Fields())
	out["type"] = string(a.Type())
	return json.Marshal(out)
}

// NewAction wraps fields in the variant named by their "type" key.
func NewAction(fields Object) (Action, error) {
	raw, ok := fields["type"].(string)
	if !ok {
		return nil, fmt.Errorf("action is missing a string \"type\"")
	}
	t, err := ParseActionType(raw)
	if err != nil {
		return nil, err
	}
	switch t {
	case ActionAddEvent:
		return AddEventAction{fields: fields}, nil
	case ActionUpdateEvent:
		return UpdateEventAction{fields: fields}, nil
	default:
		return CancelEventAction{fields: fields}, nil
	}
}

// Envelope is the body of schedule-actions/apply-actions. Extra carries any
// other top-level keys of a caller-supplied request.
type Envelope struct {
	ActionsTaken []Action
	Extra        Object
}

// MarshalJSON writes actionsTaken alongside the extra keys.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out := make(Object, len(e.Extra)+1)
	Merge(out, e.Extra)
	actions := make([]Action, len(e.ActionsTaken))
	copy(actions, e.ActionsTaken)
	out["actionsTaken"] = actions
	return json.Marshal(out)
}

// EventCreateInput holds the typed options of an event creation.
type EventCreateInput struct {
	CalendarID              uint64
	Title                   string
	Start                   string
	End                     string
	PolicyID                string
	Description             string
	Location                string
	Attendees               []string
	GuestsCanModify         bool
	GuestsCanInviteOthers   bool
	GuestsCanSeeOtherGuests bool
	Priority                string
	Visibility              string
	Transparency            string
	JSON                    *string
	Sets                    []string
}

// EventUpdateInput holds the typed options of an event update. Start and End
// must be given together.
type EventUpdateInput struct {
	CalendarID   uint64
	EventID      string
	PolicyID     string
	Title        string
	Description  string
	Location     string
	Start        *string
	End          *string
	Priority     string
	Visibility   string
	Transparency string
	JSON         *string
	Sets         []string
}

// EventDeleteInput holds the options of an event cancellation.
type EventDeleteInput struct {
	CalendarID uint64
	EventID    string
	PolicyID   string
	Message    string
}

const isoRangeHint = "Use ISO 8601 timestamps, e.g. --start 2026-02-21T18:30:00Z --end 2026-02-21T19:00:00Z"

// updateIdentityKeys never count as a change of an update action.
var updateIdentityKeys = map[string]bool{
	"type":       true,
	"hash":       true,
	"policyId":   true,
	"calendarId": true,
	"eventId":    true,
}

// BuildEventCreate builds a one-action envelope adding an event.
func BuildEventCreate(in EventCreateInput) (Envelope, error) {
	start, end := strings.TrimSpace(in.Start), strings.TrimSpace(in.End)
	if start == "" || end == "" {
		return Envelope{}, reclaim.NewInvalidInputError(
			"Invalid event time range: --start and --end are required.",
			isoRangeHint,
		)
	}

	policyID, err := parsePolicyID(in.PolicyID)
	if err != nil {
		return Envelope{}, err
	}

	attendees := make([]any, 0, len(in.Attendees))
	for _, email := range in.Attendees {
		if email = strings.TrimSpace(email); email != "" {
			attendees = append(attendees, Object{"email": email})
		}
	}

	fields := Object{
		"type":                    string(ActionAddEvent),
		"hash":                    "",
		"policyId":                policyID,
		"eventKey":                "",
		"calendarId":              in.CalendarID,
		"title":                   in.Title,
		"dateRange":               dateRange(start, end),
		"guestsCanModify":         in.GuestsCanModify,
		"guestsCanInviteOthers":   in.GuestsCanInviteOthers,
		"guestsCanSeeOtherGuests": in.GuestsCanSeeOtherGuests,
		"attendees":               attendees,
	}
	setTrimmed(fields, "description", in.Description)
	setTrimmed(fields, "location", in.Location)
	if err := setEventOptions(fields, in.Priority, in.Visibility, in.Transparency); err != nil {
		return Envelope{}, err
	}

	if err := layer(fields, in.JSON, in.Sets); err != nil {
		return Envelope{}, err
	}
	return single(fields, ActionAddEvent)
}

// BuildEventUpdate builds a one-action envelope updating an event. At least
// one field outside the action identity must end up in the payload.
func BuildEventUpdate(in EventUpdateInput) (Envelope, error) {
	policyID, err := parsePolicyID(in.PolicyID)
	if err != nil {
		return Envelope{}, err
	}

	if (in.Start == nil) != (in.End == nil) {
		return Envelope{}, reclaim.NewInvalidInputError(
			"Invalid date range update: --start and --end must be passed together.",
			"Pass both --start and --end, or neither. For partial advanced updates, use --json.",
		)
	}

	fields := Object{
		"type":       string(ActionUpdateEvent),
		"hash":       "",
		"policyId":   policyID,
		"calendarId": in.CalendarID,
		"eventId":    in.EventID,
	}
	setTrimmed(fields, "title", in.Title)
	setTrimmed(fields, "description", in.Description)
	setTrimmed(fields, "location", in.Location)
	if err := setEventOptions(fields, in.Priority, in.Visibility, in.Transparency); err != nil {
		return Envelope{}, err
	}

	if in.Start != nil && in.End != nil {
		start, end := strings.TrimSpace(*in.Start), strings.TrimSpace(*in.End)
		if start == "" || end == "" {
			return Envelope{}, reclaim.NewInvalidInputError(
				"Invalid date range update: --start and --end cannot be empty.",
				isoRangeHint,
			)
		}
		fields["dateRange"] = dateRange(start, end)
	}

	if err := layer(fields, in.JSON, in.Sets); err != nil {
		return Envelope{}, err
	}

	changed := false
	for key := range fields {
		if !updateIdentityKeys[key] {
			changed = true
			break
		}
	}
	if !changed {
		return Envelope{}, reclaim.NewInvalidInputError(
			"Event update requires at least one field change.",
			"Pass one of: --title/--description/--location/--priority/--start+--end, or use --json/--set.",
		)
	}
	return single(fields, ActionUpdateEvent)
}

// BuildEventDelete builds a one-action envelope cancelling an event.
func BuildEventDelete(in EventDeleteInput) (Envelope, error) {
	policyID, err := parsePolicyID(in.PolicyID)
	if err != nil {
		return Envelope{}, err
	}

	fields := Object{
		"type":     string(ActionCancelEvent),
		"hash":     "",
		"policyId": policyID,
		"eventKey": fmt.Sprintf("%d/%s", in.CalendarID, in.EventID),
	}
	setTrimmed(fields, "notificationMessage", in.Message)
	return single(fields, ActionCancelEvent)
}

// BuildEventApply parses a caller-supplied envelope. actionsTaken must be a
// non-empty array of objects whose "type" is a known action.
func BuildEventApply(raw string) (Envelope, error) {
	request, err := ParseJSONObject(raw, FlagJSON)
	if err != nil {
		return Envelope{}, err
	}

	items, ok := request["actionsTaken"].([]any)
	if !ok || len(items) == 0 {
		return Envelope{}, reclaim.NewInvalidInputError(
			"Invalid --json request: actionsTaken is required and must be a non-empty array.",
			`Example: --json '{"actionsTaken":[{"type":"CancelEventAction",...}]}'`,
		)
	}

	actions := make([]Action, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return Envelope{}, reclaim.NewInvalidInputError(
				fmt.Sprintf("Invalid --json request: actionsTaken[%d] must be a JSON object.", i),
				"Each action is an object with a \"type\" such as AddEventAction, UpdateEventAction or CancelEventAction.",
			)
		}
		action, err := NewAction(fields)
		if err != nil {
			return Envelope{}, reclaim.NewInvalidInputError(
				fmt.Sprintf("Invalid --json request: actionsTaken[%d]: %v.", i, err),
				"Use one of: AddEventAction, UpdateEventAction, CancelEventAction.",
			)
		}
		actions = append(actions, action)
	}

	delete(request, "actionsTaken")
	return Envelope{ActionsTaken: actions, Extra: request}, nil
}

// single wraps fields as one action and checks that overrides kept the
// discriminant intact.
func single(fields Object, want ActionType) (Envelope, error) {
	action, err := NewAction(fields)
	if err != nil || action.Type() != want {
		return Envelope{}, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid action type override: this command sends %s.", want),
			"Remove \"type\" from --json/--set, or use `reclaim events apply` for other action types.",
		)
	}
	return Envelope{ActionsTaken: []Action{action}}, nil
}

func parsePolicyID(raw string) (string, error) {
	hint := fmt.Sprintf("Use a UUID, or omit --policy-id to use %s.", DefaultPolicyID)
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", reclaim.NewInvalidInputError("Invalid --policy-id value: it cannot be empty.", hint)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid --policy-id value '%s': not a UUID.", id),
			hint,
		)
	}
	return id, nil
}

func setEventOptions(fields Object, priority, visibility, transparency string) error {
	if strings.TrimSpace(priority) != "" {
		p, err := ParsePriority(priority)
		if err != nil {
			return err
		}
		fields["priority"] = p
	}
	setTrimmed(fields, "visibility", visibility)
	setTrimmed(fields, "transparency", transparency)
	return nil
}

func setTrimmed(fields Object, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		fields[key] = v
	}
}

func dateRange(start, end string) Object {
	return Object{"type": "FixedDateTimeRange", "start": start, "end": end}
}
