package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var source sourceFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the entries currently visible in the playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			page, closePage, err := ctx.openPage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closePage()

			titles, err := page.Titles(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(titles) == 0 {
				fmt.Fprintln(out, "Playlist is empty")
				return nil
			}
			fmt.Fprintln(out, renderTitles(titles))
			return nil
		},
	}

	source.register(cmd)
	return cmd
}
