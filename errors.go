package ytclean

import (
	"ytclean/internal/retry"
	"ytclean/internal/runlock"
	"ytclean/playlist"
	"ytclean/youtube"
)

// RetryableError wraps the last error of an entry whose retries ran out.
type RetryableError = retry.RetryableError

var (
	// ErrNotFound reports a missing menu button or remove control.
	ErrNotFound = playlist.ErrNotFound
	// ErrWatchLaterUnsupported is returned when the API backend is pointed
	// at Watch Later.
	ErrWatchLaterUnsupported = youtube.ErrWatchLaterUnsupported
	// ErrLocked means another run holds the run lock.
	ErrLocked = runlock.ErrLocked
)

// IsRetryable reports whether err would be retried by a Deleter.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
