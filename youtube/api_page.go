// Package youtube exposes an ordinary YouTube playlist, reached through the
// Data API v3, as a playlist.Page.
//
// The Data API does not serve the Watch Later list; use the browser backend
// for that one.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ytclean/internal/logging"
	"ytclean/playlist"
)

// ErrWatchLaterUnsupported is returned for the Watch Later playlist id.
var ErrWatchLaterUnsupported = errors.New("watch later is not available through the data api")

// APIPage lists and deletes playlist items through the Data API. The first
// page of items plays the role of the visible set.
type APIPage struct {
	service    *youtube.Service
	playlistID string
	pageSize   int64
	logger     *slog.Logger

	mu      sync.Mutex
	pending string // item id whose menu is "open"
}

var _ playlist.Page = (*APIPage)(nil)

// item is a playlist item as seen on the first page of results.
type item struct {
	id    string
	title string
}

func (i *item) Label() string {
	if i.title == "" {
		return i.id
	}
	return i.title
}

// NewAPIPage creates an APIPage for playlistID. Client options carry the
// credentials, e.g. option.WithTokenSource.
func NewAPIPage(ctx context.Context, playlistID string, pageSize int64, logger *slog.Logger, opts ...option.ClientOption) (*APIPage, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("playlist id required")
	}
	if playlistID == "WL" {
		return nil, ErrWatchLaterUnsupported
	}
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 50
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &APIPage{
		service:    service,
		playlistID: playlistID,
		pageSize:   pageSize,
		logger:     logger.With("component", "youtube-api", "playlist", playlistID),
	}, nil
}

// Entries returns the first page of playlist items.
func (a *APIPage) Entries(ctx context.Context) ([]playlist.Entry, error) {
	resp, err := a.service.PlaylistItems.List([]string{"id", "snippet"}).
		PlaylistId(a.playlistID).
		MaxResults(a.pageSize).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list playlist items: %w", err)
	}

	entries := make([]playlist.Entry, 0, len(resp.Items))
	for _, it := range resp.Items {
		var title string
		if it.Snippet != nil {
			title = it.Snippet.Title
		}
		entries = append(entries, &item{id: it.Id, title: title})
	}
	a.logger.Debug("listed playlist items", "count", len(entries), "total", totalResults(resp))
	return entries, nil
}

// Titles returns the titles of the first page of items.
func (a *APIPage) Titles(ctx context.Context) ([]string, error) {
	entries, err := a.Entries(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.(*item).title
	}
	return titles, nil
}

// OpenMenu selects entry as the target of the next ActivateRemove.
func (a *APIPage) OpenMenu(ctx context.Context, entry playlist.Entry) error {
	it, ok := entry.(*item)
	if !ok || it.id == "" {
		return fmt.Errorf("entry %T: %w", entry, playlist.ErrNotFound)
	}
	a.mu.Lock()
	a.pending = it.id
	a.mu.Unlock()
	return nil
}

// ActivateRemove deletes the selected item. A missing selection or an item
// that no longer exists reports playlist.ErrNotFound.
func (a *APIPage) ActivateRemove(ctx context.Context) error {
	a.mu.Lock()
	id := a.pending
	a.pending = ""
	a.mu.Unlock()

	if id == "" {
		return fmt.Errorf("no item selected: %w", playlist.ErrNotFound)
	}

	if err := a.service.PlaylistItems.Delete(id).Context(ctx).Do(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return fmt.Errorf("playlist item %s: %w", id, playlist.ErrNotFound)
		}
		return fmt.Errorf("delete playlist item %s: %w", id, err)
	}
	return nil
}

func totalResults(resp *youtube.PlaylistItemListResponse) int64 {
	if resp.PageInfo == nil {
		return 0
	}
	return resp.PageInfo.TotalResults
}
