package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ytclean/internal/logging"
)

// State is a phase of the cleanup loop.
type State int

const (
	StateScanning State = iota
	StateProcessingBatch
	StateBreaking
	StateDone
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateProcessingBatch:
		return "processing_batch"
	case StateBreaking:
		return "breaking"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DriverConfig holds the pacing tunables of a run.
type DriverConfig struct {
	// BatchSize is the number of deletion attempts before a break.
	BatchSize int
	// DeletionDelay is the pause after every deletion attempt.
	DeletionDelay time.Duration
	// BatchBreak is the pause between batches when more entries remain.
	BatchBreak time.Duration
}

// Stats are the counters of one run. They only grow during a run.
type Stats struct {
	Deleted  int
	Failures int
	Batches  int
	Scans    int
	Breaks   int

	StartedAt  time.Time
	FinishedAt time.Time
}

// Attempts returns the number of finished deletion attempts.
func (s Stats) Attempts() int { return s.Deleted + s.Failures }

// Elapsed returns the run duration, or zero if the run has not finished.
func (s Stats) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Driver runs the scan/batch/break loop until the page has no entries left.
type Driver struct {
	page     Page
	deleter  *Deleter
	cfg      DriverConfig
	sleeper  Sleeper
	logger   *slog.Logger
	observer Observer
	now      func() time.Time

	onTransition func(from, to State)
}

// DriverOption customises a Driver.
type DriverOption func(*Driver)

// WithSleeper replaces the timer-based sleeper used for pacing.
func WithSleeper(s Sleeper) DriverOption {
	return func(d *Driver) { d.sleeper = s }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) { d.logger = l }
}

// WithObserver sets the event observer.
func WithObserver(o Observer) DriverOption {
	return func(d *Driver) { d.observer = o }
}

// WithTransitionHook registers fn to be called on every state change.
func WithTransitionHook(fn func(from, to State)) DriverOption {
	return func(d *Driver) { d.onTransition = fn }
}

// NewDriver returns a Driver that removes entries from page using deleter.
func NewDriver(page Page, deleter *Deleter, cfg DriverConfig, opts ...DriverOption) (*Driver, error) {
	if page == nil || deleter == nil {
		return nil, fmt.Errorf("driver requires a page and a deleter")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	d := &Driver{
		page:     page,
		deleter:  deleter,
		cfg:      cfg,
		sleeper:  realSleeper,
		logger:   logging.NewNop(),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run removes entries until a scan finds none. Failures of single entries
// are counted and the loop continues. An enumeration error or context
// cancellation ends the run; the stats gathered so far are returned with it.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	stats := Stats{StartedAt: d.now()}
	state := StateScanning
	var observed int

	d.logger.Info("starting cleanup",
		"batch_size", d.cfg.BatchSize,
		"delay", d.cfg.DeletionDelay,
		"break", d.cfg.BatchBreak,
	)

	for state != StateDone {
		var next State
		var err error

		switch state {
		case StateScanning:
			observed, err = d.scan(ctx, &stats)
			if observed == 0 && err == nil {
				next = StateDone
			} else {
				next = StateProcessingBatch
			}
		case StateProcessingBatch:
			err = d.processBatch(ctx, observed, &stats)
			if observed > d.cfg.BatchSize {
				next = StateBreaking
			} else {
				next = StateScanning
			}
		case StateBreaking:
			d.logger.Info(fmt.Sprintf("taking a %s break", d.cfg.BatchBreak), "remaining", observed-d.cfg.BatchSize)
			d.observer.BreakStarted(d.cfg.BatchBreak)
			stats.Breaks++
			err = d.sleeper.Sleep(ctx, d.cfg.BatchBreak)
			next = StateScanning
		}

		if err != nil {
			stats.FinishedAt = d.now()
			return stats, err
		}
		d.transition(state, next)
		state = next
	}

	stats.FinishedAt = d.now()
	logging.Success(ctx, d.logger, "no more entries found, cleanup complete")
	d.logger.Info("totals", "deleted", stats.Deleted, "failed", stats.Failures, "batches", stats.Batches)
	return stats, nil
}

func (d *Driver) scan(ctx context.Context, stats *Stats) (int, error) {
	entries, err := d.page.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("enumerate entries: %w", err)
	}
	stats.Scans++
	d.observer.EntriesObserved(len(entries))
	d.logger.Debug("scan complete", "entries", len(entries))
	return len(entries), nil
}

// processBatch runs up to min(BatchSize, observed) deletion attempts. Each
// attempt takes the entry at position zero of a fresh read, since every
// removal shifts the remaining entries up.
func (d *Driver) processBatch(ctx context.Context, observed int, stats *Stats) error {
	limit := min(d.cfg.BatchSize, observed)

	for i := 0; i < limit; i++ {
		entries, err := d.page.Entries(ctx)
		if err != nil {
			return fmt.Errorf("enumerate entries: %w", err)
		}
		if len(entries) == 0 {
			break
		}

		if err := d.deleter.Delete(ctx, entries[0]); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			stats.Failures++
			d.observer.EntryFailed()
		} else {
			stats.Deleted++
			d.observer.EntryDeleted()
		}

		if err := d.sleeper.Sleep(ctx, d.cfg.DeletionDelay); err != nil {
			return err
		}
	}

	stats.Batches++
	d.observer.BatchCompleted()
	d.logger.Info(fmt.Sprintf("batch %d complete", stats.Batches), "deleted", stats.Deleted, "failed", stats.Failures)
	return nil
}

func (d *Driver) transition(from, to State) {
	d.logger.Debug("state change", "from", from, "to", to)
	if d.onTransition != nil {
		d.onTransition(from, to)
	}
}
