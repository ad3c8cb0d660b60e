// Package resources provides MCP resources for Reclaim task data.
// Resources are read-only data sources that MCP clients can fetch:
// the active task list, a summary by status and priority, and single
// tasks through the reclaim://tasks/{id} template.
package resources
