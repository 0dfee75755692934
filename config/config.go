// Package config manages application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Backend names accepted in Config.Backend.
const (
	BackendBrowser = "browser"
	BackendAPI     = "api"
)

// Config holds all settings for a cleanup run. It is loaded once and passed
// explicitly to the components that need it.
type Config struct {
	// BatchSize is the number of deletions attempted before a break (default 50)
	BatchSize int `json:"batch_size" toml:"batch_size"`
	// DeletionDelay is the pause after every deletion attempt (default 800ms)
	DeletionDelay Duration `json:"deletion_delay" toml:"deletion_delay"`
	// BatchBreak is the pause between batches (default 2m)
	BatchBreak Duration `json:"batch_break" toml:"batch_break"`
	// MaxRetries is the number of retries for a transient failure (default 3)
	MaxRetries int `json:"max_retries" toml:"max_retries"`
	// RetryCooldown is the fixed wait before each retry (default 1s)
	RetryCooldown Duration `json:"retry_cooldown" toml:"retry_cooldown"`
	// SettleDelay is the wait between opening the menu and searching for the remove control (default 300ms)
	SettleDelay Duration `json:"settle_delay" toml:"settle_delay"`
	// Verbose enables info and success log lines (default true)
	Verbose bool `json:"verbose" toml:"verbose"`

	// Backend selects the page implementation: browser or api
	Backend string `json:"backend" toml:"backend"`

	Browser Browser `json:"browser" toml:"browser"`
	API     API     `json:"api" toml:"api"`
	Logging Logging `json:"logging" toml:"logging"`

	// MetricsAddr serves Prometheus metrics while a run is active (empty = off)
	MetricsAddr string `json:"metrics_addr" toml:"metrics_addr"`
	// LockPath is the file used to prevent concurrent runs
	LockPath string `json:"lock_path" toml:"lock_path"`
}

// Browser configures the Chrome DevTools backend.
type Browser struct {
	PlaylistURL string `json:"playlist_url" toml:"playlist_url"`
	// RemoteURL attaches to a running Chrome (ws:// or http:// debugging URL) instead of launching one
	RemoteURL   string `json:"remote_url" toml:"remote_url"`
	ExecPath    string `json:"exec_path" toml:"exec_path"`
	UserDataDir string `json:"user_data_dir" toml:"user_data_dir"`
	Headless    bool   `json:"headless" toml:"headless"`
	// NoSandbox disables the Chrome sandbox, needed when running as root in containers
	NoSandbox bool `json:"no_sandbox" toml:"no_sandbox"`

	EntrySelector string `json:"entry_selector" toml:"entry_selector"`
	MenuSelector  string `json:"menu_selector" toml:"menu_selector"`
	RemoveXPath   string `json:"remove_xpath" toml:"remove_xpath"`

	// ActionsPerSecond throttles raw DevTools actions (0 = unlimited)
	ActionsPerSecond float64  `json:"actions_per_second" toml:"actions_per_second"`
	ActionTimeout    Duration `json:"action_timeout" toml:"action_timeout"`
	LoadTimeout      Duration `json:"load_timeout" toml:"load_timeout"`
}

// API configures the YouTube Data API backend.
type API struct {
	PlaylistID string `json:"playlist_id" toml:"playlist_id"`
	// TokenFile holds an OAuth2 token as JSON
	TokenFile string `json:"token_file" toml:"token_file"`
	PageSize  int64  `json:"page_size" toml:"page_size"`

	// RequestsPerSecond paces Data API calls (0 = unlimited)
	RequestsPerSecond float64 `json:"requests_per_second" toml:"requests_per_second"`
	// FailureThreshold consecutive 5xx/429/network failures hold requests back for RecoveryTimeout
	FailureThreshold int      `json:"failure_threshold" toml:"failure_threshold"`
	RecoveryTimeout  Duration `json:"recovery_timeout" toml:"recovery_timeout"`
}

// Logging configures log output.
type Logging struct {
	Level  string `json:"level" toml:"level"`
	Format string `json:"format" toml:"format"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:     50,
		DeletionDelay: Duration(800 * time.Millisecond),
		BatchBreak:    Duration(2 * time.Minute),
		MaxRetries:    3,
		RetryCooldown: Duration(1 * time.Second),
		SettleDelay:   Duration(300 * time.Millisecond),
		Verbose:       true,
		Backend:       BackendBrowser,
		Browser: Browser{
			PlaylistURL:      "https://www.youtube.com/playlist?list=WL",
			EntrySelector:    "ytd-playlist-video-renderer",
			MenuSelector:     `#primary button[aria-label="Action menu"]`,
			RemoveXPath:      `//span[contains(text(),"Remove from")]`,
			ActionsPerSecond: 5,
			ActionTimeout:    Duration(10 * time.Second),
			LoadTimeout:      Duration(60 * time.Second),
		},
		API: API{
			PageSize:          50,
			RequestsPerSecond: 2,
			FailureThreshold:  5,
			RecoveryTimeout:   Duration(30 * time.Second),
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		LockPath: defaultLockPath(),
	}
}

// Load loads configuration from the config file and environment variables.
// Priority: env vars > config file > defaults. An empty path searches the
// default locations; a non-empty path must exist.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read layers the config file and environment over the defaults without
// validating, so callers can apply further overrides first.
func Read(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(path); err != nil {
		// Config file is optional unless named explicitly
		if path != "" || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the config files consulted when no path is given.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	dir := filepath.Join(home, ".config", "ytclean")
	return []string{
		"ytclean.toml",
		"ytclean.json",
		filepath.Join(dir, "ytclean.toml"),
		filepath.Join(dir, "ytclean.json"),
	}
}

// loadFromFile reads path, or the first existing file from SearchPaths.
func (c *Config) loadFromFile(path string) error {
	paths := SearchPaths()
	if path != "" {
		paths = []string{path}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && path == "" {
				continue
			}
			return err
		}
		if err := c.decode(p, data); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		return nil
	}

	return os.ErrNotExist
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, c)
	case ".toml", "":
		return toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// loadFromEnv overrides config with YTCLEAN_* environment variables.
func (c *Config) loadFromEnv() error {
	ints := map[string]*int{
		"YTCLEAN_BATCH_SIZE":  &c.BatchSize,
		"YTCLEAN_MAX_RETRIES": &c.MaxRetries,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*Duration{
		"YTCLEAN_DELETION_DELAY": &c.DeletionDelay,
		"YTCLEAN_BATCH_BREAK":    &c.BatchBreak,
		"YTCLEAN_RETRY_COOLDOWN": &c.RetryCooldown,
		"YTCLEAN_SETTLE_DELAY":   &c.SettleDelay,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = Duration(d)
		}
	}

	bools := map[string]*bool{
		"YTCLEAN_VERBOSE":    &c.Verbose,
		"YTCLEAN_HEADLESS":   &c.Browser.Headless,
		"YTCLEAN_NO_SANDBOX": &c.Browser.NoSandbox,
	}
	for key, dst := range bools {
		if v := os.Getenv(key); v != "" {
			*dst = v == "true" || v == "1"
		}
	}

	strs := map[string]*string{
		"YTCLEAN_BACKEND":       &c.Backend,
		"YTCLEAN_PLAYLIST_URL":  &c.Browser.PlaylistURL,
		"YTCLEAN_REMOTE_URL":    &c.Browser.RemoteURL,
		"YTCLEAN_CHROME_PATH":   &c.Browser.ExecPath,
		"YTCLEAN_USER_DATA_DIR": &c.Browser.UserDataDir,
		"YTCLEAN_PLAYLIST_ID":   &c.API.PlaylistID,
		"YTCLEAN_TOKEN_FILE":    &c.API.TokenFile,
		"YTCLEAN_LOG_LEVEL":     &c.Logging.Level,
		"YTCLEAN_LOG_FORMAT":    &c.Logging.Format,
		"YTCLEAN_METRICS_ADDR":  &c.MetricsAddr,
		"YTCLEAN_LOCK_PATH":     &c.LockPath,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	return nil
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.DeletionDelay < 0 {
		return fmt.Errorf("deletion_delay must be non-negative")
	}
	if c.BatchBreak < 0 {
		return fmt.Errorf("batch_break must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.RetryCooldown < 0 {
		return fmt.Errorf("retry_cooldown must be non-negative")
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must be non-negative")
	}

	switch c.Backend {
	case BackendBrowser:
		if c.Browser.PlaylistURL == "" {
			return fmt.Errorf("browser.playlist_url is required")
		}
		if c.Browser.EntrySelector == "" || c.Browser.MenuSelector == "" || c.Browser.RemoveXPath == "" {
			return fmt.Errorf("browser selectors must not be empty")
		}
		if c.Browser.ActionsPerSecond < 0 {
			return fmt.Errorf("browser.actions_per_second must be non-negative")
		}
		if c.Browser.ActionTimeout <= 0 || c.Browser.LoadTimeout <= 0 {
			return fmt.Errorf("browser timeouts must be positive")
		}
	case BackendAPI:
		if c.API.PlaylistID == "" {
			return fmt.Errorf("api.playlist_id is required for the api backend")
		}
		if c.API.TokenFile == "" {
			return fmt.Errorf("api.token_file is required for the api backend")
		}
		if c.API.PageSize <= 0 || c.API.PageSize > 50 {
			return fmt.Errorf("api.page_size must be between 1 and 50")
		}
		if c.API.RequestsPerSecond < 0 {
			return fmt.Errorf("api.requests_per_second must be non-negative")
		}
		if c.API.FailureThreshold <= 0 || c.API.RecoveryTimeout <= 0 {
			return fmt.Errorf("api.failure_threshold and api.recovery_timeout must be positive")
		}
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendBrowser, BackendAPI, c.Backend)
	}
	return nil
}

func defaultLockPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "ytclean", "ytclean.lock")
}
