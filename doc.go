// Package ytclean empties a YouTube playlist one entry at a time.
//
// # Overview
//
// The work is split in two layers:
//
//   - playlist.Deleter removes a single entry: it opens the entry's action
//     menu, waits for the menu to settle and activates the remove control,
//     retrying transient failures after a fixed cooldown.
//   - playlist.Driver repeats deletions over the whole playlist in batches,
//     pausing between deletions and taking a longer break between batches,
//     until a scan finds no entries left.
//
// Both work against playlist.Page. Two implementations are provided:
// browser.Page drives a Chrome tab over the DevTools protocol, and
// youtube.APIPage uses the Data API for ordinary playlists (the Data API
// does not expose Watch Later).
//
// # Quick Start
//
//	cfg := config.DefaultConfig()
//	page, err := browser.Open(ctx, browser.Options{
//		PlaylistURL:   cfg.Browser.PlaylistURL,
//		EntrySelector: cfg.Browser.EntrySelector,
//		MenuSelector:  cfg.Browser.MenuSelector,
//		RemoveXPath:   cfg.Browser.RemoveXPath,
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer page.Close()
//
//	stats, err := ytclean.Clean(ctx, page, cfg, logger, nil)
//	fmt.Println(stats.Deleted, "entries removed")
//
// # Error Handling
//
// A single entry that cannot be removed is logged and counted in
// Stats.Failures; the run carries on. Only a failure to read the playlist or
// cancellation of the context ends a run early, and the partial Stats are
// returned with the error. Use errors.Is with ErrNotFound to detect a missing
// page control and errors.As with *RetryableError for an entry whose retries
// ran out.
//
// # Configuration
//
// See package config. Values come from defaults, then a TOML or JSON file,
// then YTCLEAN_* environment variables, then command-line flags.
package ytclean
