package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cinematheque",
		Short:         "Manage a personal movie and TV series collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newLogoutCommand())
	rootCmd.AddCommand(newWhoamiCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newAddCommand())
	rootCmd.AddCommand(newEditCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newToggleSeenCommand())
	rootCmd.AddCommand(newToggleBackupCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}
