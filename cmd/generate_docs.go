package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/reclaim/internal/reclaim"
	"github.com/teemow/reclaim/internal/server"
)

const (
	categoryTasks  = "Reclaim Task Tools"
	categoryEvents = "Reclaim Event Tools"
	categoryOther  = "Other"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate a markdown reference of every MCP tool served by "reclaim serve".

The reference is built from the registered tool definitions, so it always
matches the running server. Each tool is marked read-only or write; write
tools are only registered with --yolo.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(cmd, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// docsAPI stands in for the Reclaim client while tools are introspected.
// Registration never calls it.
type docsAPI struct {
	reclaim.API
}

// documentedTool is a registered tool plus the safety mode it needs.
type documentedTool struct {
	mcp.Tool
	write bool
}

func runGenerateDocs(cmd *cobra.Command, outputFile string) error {
	readTools, err := registeredToolSet(true)
	if err != nil {
		return err
	}
	allTools, err := registeredToolSet(false)
	if err != nil {
		return err
	}

	tools := make([]documentedTool, 0, len(allTools))
	for name, tool := range allTools {
		_, readable := readTools[name]
		tools = append(tools, documentedTool{Tool: tool, write: !readable})
	}

	markdown := generateToolsMarkdown(tools)
	if outputFile == "" {
		fmt.Fprint(cmd.OutOrStdout(), markdown)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
	return nil
}

// registeredToolSet registers the tools of one safety mode on a throwaway
// server and returns them by name.
func registeredToolSet(readOnly bool) (map[string]mcp.Tool, error) {
	sc, err := server.NewServerContext(context.Background(), docsAPI{})
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := newMCPServer()
	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		return nil, err
	}

	tools := make(map[string]mcp.Tool)
	for _, st := range mcpSrv.ListTools() {
		tools[st.Tool.Name] = st.Tool
	}
	return tools, nil
}

func generateToolsMarkdown(tools []documentedTool) string {
	byCategory := make(map[string][]documentedTool)
	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		byCategory[category] = append(byCategory[category], tool)
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var sb strings.Builder
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools available when running `reclaim serve`. Generated from the tool definitions by `reclaim generate-docs`.\n\n")
	sb.WriteString("The server starts read-only. Tools marked **write** are only registered with `reclaim serve --yolo`.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category, strings.ToLower(strings.ReplaceAll(category, " ", "-")))
	}
	sb.WriteString("\n")

	for _, category := range categories {
		group := byCategory[category]
		sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })

		fmt.Fprintf(&sb, "## %s\n\n", category)
		for _, tool := range group {
			writeToolMarkdown(&sb, tool)
		}
	}
	return sb.String()
}

func getCategoryFromToolName(name string) string {
	if !strings.HasPrefix(name, "reclaim_") {
		return categoryOther
	}
	switch {
	case strings.HasSuffix(name, "_task"), strings.HasSuffix(name, "_tasks"):
		return categoryTasks
	case strings.HasSuffix(name, "_event"), strings.HasSuffix(name, "_events"), strings.HasSuffix(name, "_actions"):
		return categoryEvents
	default:
		return categoryOther
	}
}

func writeToolMarkdown(sb *strings.Builder, tool documentedTool) {
	mode := "read-only"
	if tool.write {
		mode = "write"
	}
	fmt.Fprintf(sb, "### %s\n\n**Mode:** %s\n\n", tool.Name, mode)
	if tool.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", tool.Description)
	}

	props := tool.InputSchema.Properties
	if len(props) == 0 {
		return
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|----------|------|----------|-------------|\n")
	for _, name := range names {
		prop, _ := props[name].(map[string]any)
		propType, _ := prop["type"].(string)
		if propType == "" {
			propType = "any"
		}
		required := "no"
		if slices.Contains(tool.InputSchema.Required, name) {
			required = "yes"
		}
		desc, _ := prop["description"].(string)
		fmt.Fprintf(sb, "| `%s` | %s | %s | %s |\n", name, propType, required, markdownCell(desc))
	}
	sb.WriteString("\n")
}

// markdownCell keeps a description on one table row.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
