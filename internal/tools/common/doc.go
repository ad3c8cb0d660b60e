// Package common provides helpers shared by the MCP tool packages:
// argument parsing, result encoding and the instrumentation wrapper every
// tool handler goes through.
package common
