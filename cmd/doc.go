// Package cmd implements the command-line interface for reclaim.
//
// This package provides the following commands:
//   - list, get, create, put, patch, delete: Manage Reclaim tasks
//   - events: List and read calendar events and apply schedule actions
//   - dashboard: Browse tasks in an interactive terminal view
//   - serve: Start the MCP server to provide tools for AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - generate-man: Generate man pages for the command tree
//   - version: Display version information
//
// Every command reports failures on stderr as "Error: ..." followed by an
// optional "Hint: ..." line and exits with status 2.
package cmd
