package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/reclaim/internal/logging"
	"github.com/teemow/reclaim/internal/payload"
	"github.com/teemow/reclaim/internal/reclaim"
	"github.com/teemow/reclaim/internal/tools/reclaim_tools"
)

const notificationKeyUsage = "Optional notification key forwarded to the Reclaim API."

func newListCmd(a *app) *cobra.Command {
	var (
		all    bool
		filter string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks (active by default).",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			completion, err := reclaim.ParseCompletionFilter(filter)
			if err != nil {
				return err
			}
			api, err := a.newAPI()
			if err != nil {
				return err
			}

			taskFilter := reclaim.TaskFilterActive
			if all {
				taskFilter = reclaim.TaskFilterAll
			}
			tasks, err := api.ListTasks(cmd.Context(), taskFilter)
			if err != nil {
				return err
			}
			tasks = reclaim.ApplyCompletionFilter(tasks, completion)
			a.logger.Debug("listed tasks", "filter", taskFilter.String(), "count", len(tasks))

			if a.jsonOutput() {
				if tasks == nil {
					tasks = []reclaim.Task{}
				}
				return printJSON(a.out, tasks)
			}
			printTaskList(a.out, all, completion, tasks)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include all tasks, including archived/cancelled/deleted.")
	cmd.Flags().StringVar(&filter, "filter", "", "Only show open or completed tasks.")

	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "get TASK_ID",
		Aliases: []string{"show"},
		Short:   "Get one task by ID.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			task, err := api.GetTask(cmd.Context(), taskID)
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				return printJSON(a.out, task)
			}
			printTask(a.out, task)
			return nil
		},
	}
}

// updateFlags are the options shared by put and patch.
type updateFlags struct {
	json            string
	sets            []string
	notificationKey string
}

func (f *updateFlags) register(cmd *cobra.Command, jsonUsage, setUsage string) {
	cmd.Flags().StringVar(&f.json, "json", "", jsonUsage)
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, setUsage)
	cmd.Flags().StringVar(&f.notificationKey, "notification-key", "", notificationKeyUsage)
}

// rawJSON returns the --json value, or nil when the flag was not passed.
func (f *updateFlags) rawJSON(cmd *cobra.Command) *string {
	if !cmd.Flags().Changed("json") {
		return nil
	}
	return &f.json
}

func newPutCmd(a *app) *cobra.Command {
	var flags updateFlags

	cmd := &cobra.Command{
		Use:   "put TASK_ID",
		Short: "Replace a task via PUT.",
		Long: `Replace a task via PUT.

Pass --json with a full task object, or pass --set key=value fields.
If only --set is passed, reclaim fetches the current task first and then applies your updates.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			body, err := payload.BuildPut(cmd.Context(), api, taskID, flags.rawJSON(cmd), flags.sets)
			if err != nil {
				return err
			}
			updated, err := api.PutTask(cmd.Context(), taskID, body, flags.notificationKey)
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				return printJSON(a.out, updated)
			}
			printMutation(a.out, "Updated (PUT)", updated)
			return nil
		},
	}

	flags.register(cmd,
		"Full task object JSON to send in PUT. Must be a JSON object.",
		"Field override for PUT (KEY=VALUE). Repeatable. Value supports JSON literals (true, null, numbers, arrays, objects).",
	)

	return cmd
}

func newPatchCmd(a *app) *cobra.Command {
	var flags updateFlags

	cmd := &cobra.Command{
		Use:   "patch TASK_ID",
		Short: "Partially update a task via PATCH.",
		Long: `Partially update a task via PATCH.

Pass --json with a partial JSON object and/or repeated --set key=value entries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			body, err := payload.BuildPatch(flags.rawJSON(cmd), flags.sets)
			if err != nil {
				return err
			}
			updated, err := api.PatchTask(cmd.Context(), taskID, body, flags.notificationKey)
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				return printJSON(a.out, updated)
			}
			printMutation(a.out, "Updated (PATCH)", updated)
			return nil
		},
	}

	flags.register(cmd,
		"Partial task JSON object to send in PATCH. Must be a JSON object.",
		"Field update for PATCH (KEY=VALUE). Repeatable. Value supports JSON literals (true, null, numbers, arrays, objects).",
	)

	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var notificationKey string

	cmd := &cobra.Command{
		Use:     "delete TASK_ID",
		Aliases: []string{"del", "rm", "remove"},
		Short:   "Delete one task by ID.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			response, err := api.DeleteTask(cmd.Context(), taskID, notificationKey)
			if err != nil {
				return err
			}
			result := reclaim_tools.NewDeleteResult(taskID, response)
			a.logger.Debug("deleted task", logging.TaskID(taskID))

			if a.jsonOutput() {
				return printJSON(a.out, result)
			}
			printDeleted(a.out, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&notificationKey, "notification-key", "", notificationKeyUsage)

	return cmd
}

func newCreateCmd(a *app) *cobra.Command {
	var (
		title              string
		notes              string
		priority           string
		due                string
		timeChunksRequired uint32
		minChunkSize       uint32
		maxChunkSize       uint32
		eventCategory      string
		alwaysPrivate      bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task.",
		Example: `  reclaim create --title "Plan Q1 roadmap" --priority P2 --event-category WORK
  reclaim create --title "Write report" --time-chunks-required 8 --min-chunk-size 2 --due 2026-02-19T15:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.newAPI()
			if err != nil {
				return err
			}
			if strings.TrimSpace(title) == "" {
				return reclaim.NewInvalidInputError(
					"Invalid --title value: it cannot be empty.",
					`Pass a task title, e.g. --title "Plan Q1 roadmap"`,
				)
			}

			flags := cmd.Flags()
			in := payload.CreateTaskInput{
				Title:         title,
				EventCategory: eventCategory,
				AlwaysPrivate: alwaysPrivate,
			}
			if flags.Changed("notes") {
				in.Notes = &notes
			}
			if flags.Changed("priority") {
				in.Priority = &priority
			}
			if flags.Changed("due") {
				in.Due = &due
			}
			if flags.Changed("time-chunks-required") {
				in.TimeChunksRequired = &timeChunksRequired
			}
			if flags.Changed("min-chunk-size") {
				if err := requirePositive("--min-chunk-size", minChunkSize); err != nil {
					return err
				}
				in.MinChunkSize = &minChunkSize
			}
			if flags.Changed("max-chunk-size") {
				if err := requirePositive("--max-chunk-size", maxChunkSize); err != nil {
					return err
				}
				in.MaxChunkSize = &maxChunkSize
			}

			req, err := payload.BuildCreateTask(in)
			if err != nil {
				return err
			}
			created, err := api.CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				return printJSON(a.out, created)
			}
			printCreated(a.out, created)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title (required).")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional notes/description for the task.")
	cmd.Flags().StringVar(&priority, "priority", "", "Optional priority (P1-P4).")
	cmd.Flags().StringVar(&due, "due", "", "Optional due timestamp (ISO 8601), e.g. 2026-02-19T15:00:00Z.")
	cmd.Flags().Uint32Var(&timeChunksRequired, "time-chunks-required", 0, "Optional total time in 15-minute chunks.")
	cmd.Flags().Uint32Var(&minChunkSize, "min-chunk-size", 0, "Minimum chunk size in 15-minute increments.")
	cmd.Flags().Uint32Var(&maxChunkSize, "max-chunk-size", 0, "Maximum chunk size in 15-minute increments.")
	cmd.Flags().StringVar(&eventCategory, "event-category", payload.EventCategoryWork, "Task category: WORK or PERSONAL.")
	cmd.Flags().BoolVar(&alwaysPrivate, "always-private", true, "Whether calendar blocks should be private (true/false).")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func requirePositive(flag string, v uint32) error {
	if v >= 1 {
		return nil
	}
	return reclaim.NewInvalidInputError(
		fmt.Sprintf("Invalid %s value: %d. It must be at least 1.", flag, v),
		"Chunk sizes are counted in 15-minute increments, starting at 1.",
	)
}
