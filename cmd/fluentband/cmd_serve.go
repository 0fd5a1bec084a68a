package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fluentband/fluentband/internal/config"
	"github.com/fluentband/fluentband/internal/webapi"
)

func newServeCommand() *cobra.Command {
	var port int
	var dbPath string
	var bucket string
	var region string
	var model string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the content API server",
		Long: `Start the HTTP server exposing the content pipeline.

Endpoints:
  GET  /api/health                 Health check
  POST /api/tasks                  Create a task
  GET  /api/tasks/{id}/content     Fetch a task, filling missing content
  POST /api/tasks/{id}/start       Start a task (script generated if missing)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := buildDeps(ctx, func(cfg *config.Config) {
				if port != 0 {
					cfg.Server.Port = port
				}
				if dbPath != "" {
					cfg.Database.Path = dbPath
				}
				if bucket != "" {
					cfg.Audio.Bucket = bucket
				}
				if region != "" {
					cfg.Audio.Region = region
				}
				if model != "" {
					cfg.Generation.Model = model
				}
			})
			if err != nil {
				return err
			}
			defer d.shutdown(context.Background())

			webapi.Version = version
			handlers := webapi.NewHandlers(d.tasks, d.orchestrator)
			server := webapi.NewServer(webapi.ServerConfig{Port: d.cfg.Server.Port}, handlers)
			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from config)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket for synthesized audio (default from config)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "LLM model id (default from config)")
	return cmd
}
