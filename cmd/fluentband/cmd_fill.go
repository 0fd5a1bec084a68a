package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluentband/fluentband/internal/models"
)

func newFillCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill <task-id>",
		Short: "Fill missing content for one task",
		Long: `Generate whatever content a task is missing.

The script is generated first if absent; questions and audio then run
concurrently. Stages whose output already exists are skipped, so re-running
fill on a complete task does nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			d, err := buildDeps(ctx, nil)
			if err != nil {
				return err
			}
			defer d.shutdown(ctx)

			task, err := d.orchestrator.FillMissingContent(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("task %s: stage=%s status=%s\n", task.ID, task.Stage(), task.Status)
			if task.Stage() != models.StageComplete {
				return &PartialContentError{
					Message: fmt.Sprintf("task %s is still %s", task.ID, task.Stage()),
				}
			}
			return nil
		},
	}
	return cmd
}
