package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fluentband",
		Short: "FluentBand - IELTS listening content generation pipeline",
		Long: `FluentBand generates IELTS listening practice content.

It turns empty listening tasks into complete practice units: an LLM-written
script, comprehension questions, and synthesized audio hosted in object
storage. Every command is idempotent; content that already exists is never
regenerated.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newFillCommand())
	cmd.AddCommand(newPregenCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
