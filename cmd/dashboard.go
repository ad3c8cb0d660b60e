package cmd

import (
	"github.com/spf13/cobra"

	"github.com/teemow/reclaim/internal/dashboard"
	"github.com/teemow/reclaim/internal/logging"
	"github.com/teemow/reclaim/internal/reclaim"
)

func newDashboardCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive task dashboard.",
		Long: `Open the interactive task dashboard.

Keys:
  j/Down, k/Up   move the selection
  g/Home, G/End  jump to the first or last task
  r              refresh the task list
  ?              toggle help
  :              command mode (:q quits)
  Esc, Ctrl+C    quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOutput() {
				return reclaim.NewInvalidInputError(
					"The dashboard is an interactive TUI and only supports --format human.",
					"Run: reclaim dashboard",
				)
			}
			api, err := a.newAPI()
			if err != nil {
				return err
			}

			filter := reclaim.TaskFilterActive
			if all {
				filter = reclaim.TaskFilterAll
			}
			return dashboard.Run(cmd.Context(), api, dashboard.Options{
				Filter:  filter,
				Metrics: a.metrics(),
				Logger:  logging.NewSlogAdapter(a.logger),
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived/cancelled/deleted tasks.")

	return cmd
}
