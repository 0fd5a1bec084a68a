package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fluentband/fluentband/internal/models"
)

func newPregenCommand() *cobra.Command {
	var workers int
	var week int

	cmd := &cobra.Command{
		Use:   "pregen <owner-id>",
		Short: "Pre-generate content for all of a user's listening tasks",
		Long: `Fill every incomplete listening task belonging to one user.

Tasks run concurrently up to the worker limit. One task failing never stops
the others; the command reports each task's final stage and exits non-zero
if any remain incomplete.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			d, err := buildDeps(ctx, nil)
			if err != nil {
				return err
			}
			defer d.shutdown(ctx)

			if workers == 0 {
				workers = d.cfg.Pipeline.PregenWorkers
			}

			reports, err := d.orchestrator.Pregenerate(ctx, args[0], week, workers)
			if err != nil {
				return err
			}

			incomplete := 0
			for _, r := range reports {
				line := fmt.Sprintf("task %s: %s", r.TaskID, r.Stage)
				if r.Err != "" {
					line += " (error: " + r.Err + ")"
				}
				fmt.Println(line)
				if r.Stage != models.StageComplete {
					incomplete++
				}
			}

			if incomplete > 0 {
				return &PartialContentError{
					Message: fmt.Sprintf("%d of %d tasks still incomplete", incomplete, len(reports)),
				}
			}
			fmt.Printf("all %d tasks complete\n", len(reports))
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent task fills (default from config)")
	cmd.Flags().IntVar(&week, "week", 0, "Restrict the run to one week number")
	return cmd
}
