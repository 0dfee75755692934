// Package playlist removes entries from a playlist one at a time, pacing
// itself with fixed delays and breaks so the host page keeps up.
//
// The page itself sits behind the Page interface; browser and Data API
// implementations live in sibling packages.
package playlist

import (
	"context"
	"errors"
	"time"

	"ytclean/internal/retry"
)

// ErrNotFound reports that an expected control (entry, action menu, or
// remove control) is absent. Deletion attempts that hit it are not retried.
var ErrNotFound = errors.New("control not found")

// Entry is a transient handle to one on-screen playlist item. It is owned by
// the page and becomes invalid once removed or re-rendered.
type Entry interface {
	// Label describes the entry in log lines.
	Label() string
}

// Page is the minimal set of page interactions needed to remove entries.
type Page interface {
	// Entries returns the entries currently visible, in page order.
	Entries(ctx context.Context) ([]Entry, error)
	// OpenMenu activates the action menu of entry. It returns an error
	// wrapping ErrNotFound when the entry has no menu control.
	OpenMenu(ctx context.Context, entry Entry) error
	// ActivateRemove activates the first control anywhere on the page that
	// matches the remove pattern, or returns an error wrapping ErrNotFound.
	ActivateRemove(ctx context.Context) error
}

// Sleeper waits between page interactions.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// realSleeper waits on a timer.
var realSleeper Sleeper = SleeperFunc(retry.Sleep)

// Observer receives run events. Implementations must be cheap; they are
// called inline from the run loop.
type Observer interface {
	EntryDeleted()
	EntryFailed()
	Retried()
	BatchCompleted()
	BreakStarted(d time.Duration)
	EntriesObserved(n int)
}

type nopObserver struct{}

func (nopObserver) EntryDeleted()              {}
func (nopObserver) EntryFailed()               {}
func (nopObserver) Retried()                   {}
func (nopObserver) BatchCompleted()            {}
func (nopObserver) BreakStarted(time.Duration) {}
func (nopObserver) EntriesObserved(int)        {}
