package ytclean

import (
	"context"
	"log/slog"

	"ytclean/config"
	"ytclean/playlist"
)

// NewDriver wires a Deleter and a Driver for page from cfg. logger and
// observer may be nil.
func NewDriver(page playlist.Page, cfg *config.Config, logger *slog.Logger, observer playlist.Observer) (*playlist.Driver, error) {
	var delOpts []playlist.DeleterOption
	var drvOpts []playlist.DriverOption
	if logger != nil {
		delOpts = append(delOpts, playlist.WithDeleterLogger(logger))
		drvOpts = append(drvOpts, playlist.WithLogger(logger))
	}
	if observer != nil {
		delOpts = append(delOpts, playlist.WithDeleterObserver(observer))
		drvOpts = append(drvOpts, playlist.WithObserver(observer))
	}

	deleter := playlist.NewDeleter(page, playlist.DeleterConfig{
		SettleDelay:   cfg.SettleDelay.Std(),
		MaxRetries:    cfg.MaxRetries,
		RetryCooldown: cfg.RetryCooldown.Std(),
	}, delOpts...)

	return playlist.NewDriver(page, deleter, playlist.DriverConfig{
		BatchSize:     cfg.BatchSize,
		DeletionDelay: cfg.DeletionDelay.Std(),
		BatchBreak:    cfg.BatchBreak.Std(),
	}, drvOpts...)
}

// Clean removes every entry from page and returns the run's totals.
func Clean(ctx context.Context, page playlist.Page, cfg *config.Config, logger *slog.Logger, observer playlist.Observer) (playlist.Stats, error) {
	driver, err := NewDriver(page, cfg, logger, observer)
	if err != nil {
		return playlist.Stats{}, err
	}
	return driver.Run(ctx)
}
