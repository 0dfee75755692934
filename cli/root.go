package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ytclean",
		Short: "Empty a YouTube playlist one entry at a time",
		Long: `ytclean removes every entry from a YouTube playlist (Watch Later by
default) by driving the playlist page in Chrome, or through the Data API for
ordinary playlists. Deletions are paced, retried and split into batches with
a pause between them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path (TOML or JSON)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
