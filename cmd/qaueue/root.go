package main

import (
	"github.com/spf13/cobra"

	"qaueue/internal/telemetry"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var outputFlag string
	var logLevelFlag string

	ctx := newCommandContext(&configFlag, &outputFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "qaueue",
		Short:         "Track and prioritize work items awaiting QA",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.outputFormat(); err != nil {
				return err
			}
			if shouldSkipConfig(cmd) {
				return nil
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return telemetry.Init(cmd.Context(), cfg.Telemetry, version)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", outputTable, "Output format: table, json, or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newPrioritizeCommand(ctx))
	rootCmd.AddCommand(newUpdateCommand(ctx))
	rootCmd.AddCommand(newRemoveCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
