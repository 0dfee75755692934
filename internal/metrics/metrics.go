// Package metrics exposes cleanup progress as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ytclean/playlist"
)

// Recorder counts run events on its own registry. It implements
// playlist.Observer.
type Recorder struct {
	registry *prometheus.Registry

	Deleted      prometheus.Counter
	Failed       prometheus.Counter
	Retries      prometheus.Counter
	Batches      prometheus.Counter
	Breaks       prometheus.Counter
	BreakSeconds prometheus.Counter
	Observed     prometheus.Gauge
}

var _ playlist.Observer = (*Recorder)(nil)

// New creates a Recorder with its metrics registered on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		Deleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytclean_entries_deleted_total",
			Help: "Total number of playlist entries removed",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytclean_entries_failed_total",
			Help: "Total number of deletion attempts that failed",
		}),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytclean_retries_total",
			Help: "Total number of retried deletion attempts",
		}),
		Batches: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytclean_batches_total",
			Help: "Total number of completed batches",
		}),
		Breaks: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytclean_breaks_total",
			Help: "Total number of pauses taken between batches",
		}),
		BreakSeconds: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytclean_break_seconds_total",
			Help: "Total time scheduled for pauses between batches",
		}),
		Observed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ytclean_entries_observed",
			Help: "Number of entries seen by the most recent scan",
		}),
	}
}

func (r *Recorder) EntryDeleted()   { r.Deleted.Inc() }
func (r *Recorder) EntryFailed()    { r.Failed.Inc() }
func (r *Recorder) Retried()        { r.Retries.Inc() }
func (r *Recorder) BatchCompleted() { r.Batches.Inc() }

func (r *Recorder) BreakStarted(d time.Duration) {
	r.Breaks.Inc()
	r.BreakSeconds.Add(d.Seconds())
}

func (r *Recorder) EntriesObserved(n int) { r.Observed.Set(float64(n)) }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
