// Package reclaim_tools provides MCP tools for Reclaim tasks and calendar
// events.
//
// The tools wrap the same Reclaim API client and payload builders as the
// CLI, so validation and error messages match the commands.
//
// # Available Tools
//
// Tasks:
//   - reclaim_list_tasks: List tasks (active by default, optional completion filter)
//   - reclaim_get_task: Get one or more tasks
//   - reclaim_create_task: Create a task
//   - reclaim_patch_task: Partially update a task
//   - reclaim_put_task: Replace a task, fetching it first when only overrides are given
//   - reclaim_delete_task: Delete one or more tasks
//
// Events:
//   - reclaim_list_events: List calendar events
//   - reclaim_get_event: Get one event
//   - reclaim_create_event: Add an event
//   - reclaim_update_event: Update an event
//   - reclaim_delete_event: Cancel an event
//   - reclaim_apply_schedule_actions: Submit a raw action envelope
//
// # Read-only Mode
//
// Only the list and get tools are registered unless the server runs with
// --yolo. Failures are returned as tool error results; when the error
// carries a hint it follows the message on a "Hint:" line.
package reclaim_tools
