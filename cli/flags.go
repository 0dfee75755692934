package main

import (
	"time"

	"github.com/spf13/cobra"

	"ytclean/config"
)

// sourceFlags select and reach the playlist. Shared by run and list.
type sourceFlags struct {
	backend     string
	playlistURL string
	playlistID  string
	tokenFile   string
	remoteURL   string
	headless    bool
	noSandbox   bool
	logLevel    string
	logFormat   string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.backend, "backend", "", "Backend: browser or api")
	fl.StringVar(&f.playlistURL, "playlist-url", "", "Playlist page to open (browser backend)")
	fl.StringVar(&f.playlistID, "playlist-id", "", "Playlist id (api backend)")
	fl.StringVar(&f.tokenFile, "token-file", "", "OAuth2 token JSON file (api backend)")
	fl.StringVar(&f.remoteURL, "remote-url", "", "DevTools URL of a running Chrome to attach to")
	fl.BoolVar(&f.headless, "headless", false, "Run the launched Chrome headless")
	fl.BoolVar(&f.noSandbox, "no-sandbox", false, "Disable the Chrome sandbox")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, success, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "", "Log format: console or json")
}

func (f *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("backend") {
		cfg.Backend = f.backend
	}
	if fl.Changed("playlist-url") {
		cfg.Browser.PlaylistURL = f.playlistURL
	}
	if fl.Changed("playlist-id") {
		cfg.API.PlaylistID = f.playlistID
	}
	if fl.Changed("token-file") {
		cfg.API.TokenFile = f.tokenFile
	}
	if fl.Changed("remote-url") {
		cfg.Browser.RemoteURL = f.remoteURL
	}
	if fl.Changed("headless") {
		cfg.Browser.Headless = f.headless
	}
	if fl.Changed("no-sandbox") {
		cfg.Browser.NoSandbox = f.noSandbox
	}
	if fl.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if fl.Changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}
}

// pacingFlags tune batching, delays and retries.
type pacingFlags struct {
	batchSize   int
	delay       time.Duration
	batchBreak  time.Duration
	maxRetries  int
	cooldown    time.Duration
	quiet       bool
	metricsAddr string
}

func (f *pacingFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.IntVar(&f.batchSize, "batch-size", 0, "Entries removed per batch before a break")
	fl.DurationVar(&f.delay, "delay", 0, "Pause after each deletion attempt")
	fl.DurationVar(&f.batchBreak, "break", 0, "Pause between batches")
	fl.IntVar(&f.maxRetries, "max-retries", 0, "Retries per entry after a transient failure")
	fl.DurationVar(&f.cooldown, "cooldown", 0, "Pause before each retry")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "Only log errors")
	fl.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
}

func (f *pacingFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("batch-size") {
		cfg.BatchSize = f.batchSize
	}
	if fl.Changed("delay") {
		cfg.DeletionDelay = config.Duration(f.delay)
	}
	if fl.Changed("break") {
		cfg.BatchBreak = config.Duration(f.batchBreak)
	}
	if fl.Changed("max-retries") {
		cfg.MaxRetries = f.maxRetries
	}
	if fl.Changed("cooldown") {
		cfg.RetryCooldown = config.Duration(f.cooldown)
	}
	if fl.Changed("quiet") {
		cfg.Verbose = !f.quiet
	}
	if fl.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
}
