package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ytclean"
	"ytclean/internal/metrics"
	"ytclean/internal/runlock"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var source sourceFlags
	var pacing pacingFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Remove every entry from the playlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source.apply(cmd, cfg)
			pacing.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lock, err := runlock.Acquire(cfg.LockPath)
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger = logger.With("run_id", uuid.NewString())

			page, closePage, err := ctx.openPage(runCtx, cfg, logger)
			if err != nil {
				logger.Error("open playlist failed", "error", err)
				return err
			}
			defer closePage()

			recorder := metrics.New()
			if cfg.MetricsAddr != "" {
				go func() {
					if err := recorder.Serve(runCtx, cfg.MetricsAddr, logger); err != nil {
						logger.Warn("metrics server stopped", "error", err)
					}
				}()
			}

			driver, err := ytclean.NewDriver(page, cfg, logger, recorder)
			if err != nil {
				return err
			}

			stats, runErr := driver.Run(runCtx)
			if cfg.Verbose {
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(stats))
			}
			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					logger.Warn("cleanup interrupted", "deleted", stats.Deleted)
				} else {
					logger.Error("cleanup failed", "error", runErr)
				}
				return runErr
			}
			return nil
		},
	}

	source.register(cmd)
	pacing.register(cmd)
	return cmd
}
