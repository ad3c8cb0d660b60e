package payload

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/reclaim/internal/reclaim"
)

// TaskGetter reads the current representation of a task. BuildPut uses it
// when the caller supplies overrides without a full JSON object.
type TaskGetter interface {
	GetTask(ctx context.Context, taskID uint64) (*reclaim.Task, error)
}

// BuildPut assembles a full-replace payload. Without rawJSON the current task
// is fetched and the --set entries are layered on top of it, so a PUT can
// express a partial change. The fetched representation is sent unchanged,
// including fields the client does not model.
func BuildPut(ctx context.Context, getter TaskGetter, taskID uint64, rawJSON *string, sets []string) (Object, error) {
	if rawJSON == nil && len(sets) == 0 {
		return nil, reclaim.NewInvalidInputError(
			"PUT requires update data. Pass --json and/or one or more --set entries.",
			`Examples: --json '{"title":"Plan sprint"}' or --set priority=P4`,
		)
	}

	var payload Object
	if rawJSON != nil {
		obj, err := ParseJSONObject(*rawJSON, FlagJSON)
		if err != nil {
			return nil, err
		}
		payload = obj
	} else {
		// Validate overrides before spending a request on the GET.
		if _, err := ParseSetEntries(sets); err != nil {
			return nil, err
		}
		existing, err := getter.GetTask(ctx, taskID)
		if err != nil {
			return nil, err
		}
		payload, err = toObject(existing)
		if err != nil {
			return nil, reclaim.NewOutputError(fmt.Sprintf("Could not serialize existing task for PUT: %v", err), err)
		}
	}

	if err := layer(payload, nil, sets); err != nil {
		return nil, err
	}
	return payload, nil
}

// BuildPatch assembles a partial-update payload from rawJSON and sets.
// An empty result is rejected.
func BuildPatch(rawJSON *string, sets []string) (Object, error) {
	payload := Object{}
	if err := layer(payload, rawJSON, sets); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, reclaim.NewInvalidInputError(
			"PATCH requires at least one field update.",
			`Pass --json '{"priority":"P4"}' or one/more --set key=value entries.`,
		)
	}
	return payload, nil
}

// Event categories accepted by task creation.
const (
	EventCategoryWork     = "WORK"
	EventCategoryPersonal = "PERSONAL"
)

// CreateTaskInput is the typed input of task creation. Nil pointers are
// options the caller did not pass.
type CreateTaskInput struct {
	Title              string
	Notes              *string
	Priority           *string
	Due                *string
	TimeChunksRequired *uint32
	MinChunkSize       *uint32
	MaxChunkSize       *uint32
	EventCategory      string
	AlwaysPrivate      bool
}

// BuildCreateTask validates in and resolves chunk defaults. When a total is
// given, a missing minimum defaults to 1 and a missing maximum to the total.
func BuildCreateTask(in CreateTaskInput) (reclaim.CreateTaskRequest, error) {
	if in.Due != nil && strings.TrimSpace(*in.Due) == "" {
		return reclaim.CreateTaskRequest{}, reclaim.NewInvalidInputError(
			"Invalid --due value: it cannot be empty.",
			"Use ISO 8601, for example: --due 2026-02-19T15:00:00Z",
		)
	}

	if in.Priority != nil {
		priority, err := ParsePriority(*in.Priority)
		if err != nil {
			return reclaim.CreateTaskRequest{}, err
		}
		in.Priority = &priority
	}

	category, err := ParseEventCategory(in.EventCategory)
	if err != nil {
		return reclaim.CreateTaskRequest{}, err
	}

	if (in.MinChunkSize != nil || in.MaxChunkSize != nil) && in.TimeChunksRequired == nil {
		return reclaim.CreateTaskRequest{}, reclaim.NewInvalidInputError(
			"Invalid chunk options: --min-chunk-size/--max-chunk-size require --time-chunks-required.",
			"Pass --time-chunks-required with chunk size options, e.g. --time-chunks-required 4 --min-chunk-size 2 --max-chunk-size 4",
		)
	}

	minChunk, maxChunk := in.MinChunkSize, in.MaxChunkSize
	if in.TimeChunksRequired != nil {
		total := *in.TimeChunksRequired
		if minChunk == nil {
			minChunk = reclaim.Uint32(1)
		}
		if maxChunk == nil {
			maxChunk = reclaim.Uint32(total)
		}
		if *minChunk > total {
			return reclaim.CreateTaskRequest{}, reclaim.NewInvalidInputError(
				fmt.Sprintf("Invalid --min-chunk-size value: %d exceeds --time-chunks-required (%d).", *minChunk, total),
				"Use a min chunk size less than or equal to --time-chunks-required.",
			)
		}
		if *maxChunk > total {
			return reclaim.CreateTaskRequest{}, reclaim.NewInvalidInputError(
				fmt.Sprintf("Invalid --max-chunk-size value: %d exceeds --time-chunks-required (%d).", *maxChunk, total),
				"Use a max chunk size less than or equal to --time-chunks-required.",
			)
		}
	}

	if minChunk != nil && maxChunk != nil && *minChunk > *maxChunk {
		return reclaim.CreateTaskRequest{}, reclaim.NewInvalidInputError(
			fmt.Sprintf("Invalid chunk bounds: --min-chunk-size (%d) cannot exceed --max-chunk-size (%d).", *minChunk, *maxChunk),
			"Choose chunk sizes where min <= max.",
		)
	}

	return reclaim.CreateTaskRequest{
		Title:              in.Title,
		Notes:              in.Notes,
		Priority:           in.Priority,
		Due:                in.Due,
		TimeChunksRequired: in.TimeChunksRequired,
		MinChunkSize:       minChunk,
		MaxChunkSize:       maxChunk,
		EventCategory:      &category,
		AlwaysPrivate:      reclaim.Bool(in.AlwaysPrivate),
	}, nil
}

// ParsePriority normalizes a P1..P4 priority.
func ParsePriority(s string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(s))
	switch p {
	case "P1", "P2", "P3", "P4":
		return p, nil
	}
	return "", reclaim.NewInvalidInputError(
		fmt.Sprintf("Invalid --priority value '%s'.", s),
		"Use one of: P1, P2, P3, P4.",
	)
}

// ParseEventCategory normalizes WORK or PERSONAL. Blank means WORK.
func ParseEventCategory(s string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(s))
	switch c {
	case "":
		return EventCategoryWork, nil
	case EventCategoryWork, EventCategoryPersonal:
		return c, nil
	}
	return "", reclaim.NewInvalidInputError(
		fmt.Sprintf("Invalid --event-category value '%s'.", s),
		"Use WORK or PERSONAL.",
	)
}
