package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ytclean/internal/logging"
	"ytclean/internal/retry"
)

// DeleterConfig tunes a Deleter.
type DeleterConfig struct {
	// SettleDelay is the pause between opening the menu and searching for
	// the remove control.
	SettleDelay time.Duration
	// MaxRetries bounds the retries of a transient failure.
	MaxRetries int
	// RetryCooldown is the fixed wait before each retry.
	RetryCooldown time.Duration
}

// Deleter performs deletion attempts for single entries.
type Deleter struct {
	page     Page
	cfg      DeleterConfig
	sleeper  Sleeper
	logger   *slog.Logger
	observer Observer
}

// DeleterOption customises a Deleter.
type DeleterOption func(*Deleter)

// WithDeleterSleeper replaces the timer-based sleeper.
func WithDeleterSleeper(s Sleeper) DeleterOption {
	return func(d *Deleter) { d.sleeper = s }
}

// WithDeleterLogger sets the logger.
func WithDeleterLogger(l *slog.Logger) DeleterOption {
	return func(d *Deleter) { d.logger = l }
}

// WithDeleterObserver sets the event observer.
func WithDeleterObserver(o Observer) DeleterOption {
	return func(d *Deleter) { d.observer = o }
}

// NewDeleter returns a Deleter acting on page.
func NewDeleter(page Page, cfg DeleterConfig, opts ...DeleterOption) *Deleter {
	d := &Deleter{
		page:     page,
		cfg:      cfg,
		sleeper:  realSleeper,
		logger:   logging.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delete removes entry from the page. It returns nil on success. A missing
// control fails at once with an error wrapping ErrNotFound; other failures
// are retried up to MaxRetries times with a fixed cooldown and then reported
// as a *retry.RetryableError. Context cancellation is returned unchanged.
func (d *Deleter) Delete(ctx context.Context, entry Entry) error {
	if entry == nil {
		d.logger.Error("entry not found")
		return fmt.Errorf("entry: %w", ErrNotFound)
	}
	log := d.logger.With("entry", entry.Label())

	cfg := retry.Config{
		MaxRetries: d.cfg.MaxRetries,
		Cooldown:   d.cfg.RetryCooldown,
		Multiplier: 1,
		Sleep:      d.sleeper.Sleep,
		OnRetry: func(n int, err error) {
			d.observer.Retried()
			log.Info(fmt.Sprintf("retrying (%d/%d)", n, d.cfg.MaxRetries))
		},
	}

	err := retry.Do(ctx, cfg, isTransient, func(ctx context.Context) error {
		err := d.attempt(ctx, log, entry)
		if err != nil && !errors.Is(err, ErrNotFound) && ctx.Err() == nil {
			log.Error("error during deletion", "error", err)
		}
		return err
	})
	if err != nil {
		return err
	}

	logging.Success(ctx, log, "entry removed")
	return nil
}

func (d *Deleter) attempt(ctx context.Context, log *slog.Logger, entry Entry) error {
	if err := d.page.OpenMenu(ctx, entry); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Error("menu button not found")
		}
		return fmt.Errorf("open action menu: %w", err)
	}
	if err := d.sleeper.Sleep(ctx, d.cfg.SettleDelay); err != nil {
		return err
	}
	if err := d.page.ActivateRemove(ctx); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Error("remove button not found")
		}
		return fmt.Errorf("activate remove control: %w", err)
	}
	return nil
}

// isTransient reports whether a failed attempt is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return false
	}
	return retry.IsRetryable(err)
}
