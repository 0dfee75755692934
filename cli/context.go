package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"ytclean/browser"
	"ytclean/config"
	"ytclean/internal/logging"
	"ytclean/internal/transport"
	"ytclean/playlist"
	"ytclean/youtube"
)

// cleanupPage is a playlist page that can also report entry titles.
type cleanupPage interface {
	playlist.Page
	Titles(ctx context.Context) ([]string, error)
}

type pageOpener func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cleanupPage, func(), error)

type commandContext struct {
	configPath string
	openPage   pageOpener

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{openPage: openPage}
}

// ensureConfig reads the config file and environment once. Validation is
// left to the command, after its flags have been applied.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Read(strings.TrimSpace(c.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: cfg.Verbose,
		Writer:  w,
	})
}

func openPage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cleanupPage, func(), error) {
	switch cfg.Backend {
	case config.BackendAPI:
		rt := transport.New(nil, transport.Options{
			RequestsPerSecond: cfg.API.RequestsPerSecond,
			FailureThreshold:  cfg.API.FailureThreshold,
			RecoveryTimeout:   cfg.API.RecoveryTimeout.Std(),
			Logger:            logger,
		})
		client, err := youtube.HTTPClientOption(cfg.API.TokenFile, rt)
		if err != nil {
			return nil, nil, err
		}
		page, err := youtube.NewAPIPage(ctx, cfg.API.PlaylistID, cfg.API.PageSize, logger, client)
		if err != nil {
			return nil, nil, err
		}
		return page, func() {}, nil
	case config.BackendBrowser:
		b := cfg.Browser
		page, err := browser.Open(ctx, browser.Options{
			PlaylistURL:      b.PlaylistURL,
			RemoteURL:        b.RemoteURL,
			ExecPath:         b.ExecPath,
			UserDataDir:      b.UserDataDir,
			Headless:         b.Headless,
			NoSandbox:        b.NoSandbox,
			EntrySelector:    b.EntrySelector,
			MenuSelector:     b.MenuSelector,
			RemoveXPath:      b.RemoveXPath,
			ActionsPerSecond: b.ActionsPerSecond,
			ActionTimeout:    b.ActionTimeout.Std(),
			LoadTimeout:      b.LoadTimeout.Std(),
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return page, func() { _ = page.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
