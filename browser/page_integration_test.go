package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"ytclean/playlist"
)

// fixturePage mimics the playlist markup: entries carry an action-menu
// button; clicking it pops up a menu whose "Remove from" item deletes the
// entry. The last entry has no menu button.
const fixturePage = `<!doctype html>
<html><body>
<div id="list"></div>
<script>
customElements.define('ytd-playlist-video-renderer', class extends HTMLElement {});
const list = document.getElementById('list');
let current = null;
function closeMenu() {
  const popup = document.getElementById('popup');
  if (popup) popup.remove();
}
function openMenu(entry) {
  closeMenu();
  current = entry;
  const popup = document.createElement('div');
  popup.id = 'popup';
  const item = document.createElement('span');
  item.textContent = 'Remove from Watch later';
  item.style.display = 'inline-block';
  item.style.padding = '8px';
  item.addEventListener('click', () => { current.remove(); current = null; closeMenu(); });
  popup.appendChild(item);
  document.body.appendChild(popup);
}
for (let i = 0; i < 4; i++) {
  const r = document.createElement('ytd-playlist-video-renderer');
  r.innerHTML = '<div id="primary"><a id="video-title">Video ' + i + '</a></div>';
  if (i < 3) {
    const b = document.createElement('button');
    b.setAttribute('aria-label', 'Action menu');
    b.textContent = 'menu';
    b.addEventListener('click', () => openMenu(r));
    r.querySelector('#primary').appendChild(b);
  }
  list.appendChild(r);
}
</script>
</body></html>`

func findChrome(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	if path := os.Getenv("YTCLEAN_CHROME"); path != "" {
		return path
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no Chrome or Chromium found; set YTCLEAN_CHROME to run")
	return ""
}

func openFixture(t *testing.T) *Page {
	t.Helper()
	chrome := findChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(fixturePage))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	page, err := Open(ctx, Options{
		PlaylistURL:   srv.URL,
		ExecPath:      chrome,
		Headless:      true,
		NoSandbox:     true,
		EntrySelector: "ytd-playlist-video-renderer",
		MenuSelector:  `#primary button[aria-label="Action menu"]`,
		RemoveXPath:   `//span[contains(text(),"Remove from")]`,
		ActionTimeout: 10 * time.Second,
		LoadTimeout:   30 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = page.Close() })
	return page
}

func TestPageAgainstFixture(t *testing.T) {
	page := openFixture(t)
	ctx := context.Background()

	entries, err := page.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("Entries() = %d, want 4", len(entries))
	}

	titles, err := page.Titles(ctx)
	if err != nil {
		t.Fatalf("Titles() error = %v", err)
	}
	if len(titles) != 4 || titles[0] != "Video 0" {
		t.Errorf("Titles() = %v", titles)
	}

	if err := page.ActivateRemove(ctx); !errors.Is(err, playlist.ErrNotFound) {
		t.Errorf("ActivateRemove() with no open menu = %v, want ErrNotFound", err)
	}

	if err := page.OpenMenu(ctx, entries[3]); !errors.Is(err, playlist.ErrNotFound) {
		t.Errorf("OpenMenu() on entry without menu = %v, want ErrNotFound", err)
	}

	if err := page.OpenMenu(ctx, entries[0]); err != nil {
		t.Fatalf("OpenMenu() error = %v", err)
	}
	if err := page.ActivateRemove(ctx); err != nil {
		t.Fatalf("ActivateRemove() error = %v", err)
	}

	entries, err = page.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Entries() after removal = %d, want 3", len(entries))
	}
}

// stopAtOne cancels the run once only the menu-less entry is left.
type stopAtOne struct {
	*Page
	cancel context.CancelFunc
}

func (s stopAtOne) Entries(ctx context.Context) ([]playlist.Entry, error) {
	entries, err := s.Page.Entries(ctx)
	if err == nil && len(entries) == 1 {
		s.cancel()
	}
	return entries, err
}

func TestDriverAgainstFixture(t *testing.T) {
	page := openFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	wrapped := stopAtOne{Page: page, cancel: stop}

	deleter := playlist.NewDeleter(wrapped, playlist.DeleterConfig{
		SettleDelay:   50 * time.Millisecond,
		MaxRetries:    1,
		RetryCooldown: 50 * time.Millisecond,
	})
	driver, err := playlist.NewDriver(wrapped, deleter, playlist.DriverConfig{
		BatchSize:     2,
		DeletionDelay: 20 * time.Millisecond,
		BatchBreak:    50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := driver.Run(runCtx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled once one entry is left", err)
	}
	if stats.Deleted != 3 {
		t.Errorf("Deleted = %d, want 3", stats.Deleted)
	}
	if stats.Breaks == 0 {
		t.Error("expected a break between batches of 2")
	}
}
