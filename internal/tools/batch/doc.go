// Package batch provides helpers for MCP tools that act on several tasks
// in one call.
//
// This package includes helpers for:
//   - Parsing a task ID parameter that accepts a single value or an array
//   - Running an operation per task without stopping on partial failures
//   - Formatting the per-task outcomes in a consistent structure
package batch
