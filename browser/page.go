// Package browser drives a Chrome tab over the DevTools protocol and exposes
// it as a playlist.Page.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"ytclean/internal/logging"
	"ytclean/playlist"
)

// Options configures how the browser is reached and what it looks for.
type Options struct {
	// PlaylistURL is opened once when the page is created.
	PlaylistURL string
	// RemoteURL attaches to an already running Chrome started with
	// --remote-debugging-port. When empty a new Chrome is launched.
	RemoteURL   string
	ExecPath    string
	UserDataDir string
	Headless    bool
	NoSandbox   bool

	// EntrySelector matches one playlist entry (CSS).
	EntrySelector string
	// MenuSelector matches the action-menu button inside an entry (CSS).
	MenuSelector string
	// RemoveXPath matches the remove control anywhere in the document.
	RemoveXPath string

	ActionsPerSecond float64
	ActionTimeout    time.Duration
	LoadTimeout      time.Duration
}

// Page is a live Chrome tab showing a playlist.
type Page struct {
	opts     Options
	tab      context.Context
	cancels  []context.CancelFunc
	throttle *Throttle
	logger   *slog.Logger
}

var _ playlist.Page = (*Page)(nil)

// entry wraps the DOM node of one playlist entry. Nodes go stale once the
// page re-renders; callers re-read Entries after every removal.
type entry struct {
	node *cdp.Node
}

func (e *entry) Label() string {
	if e.node == nil {
		return "node <nil>"
	}
	return "node " + strconv.FormatInt(int64(e.node.NodeID), 10)
}

// Open starts or attaches to Chrome, opens opts.PlaylistURL and waits for
// the document body. The browser lives until ctx is done or Close is called.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Page, error) {
	if opts.PlaylistURL == "" {
		return nil, errors.New("browser: playlist url is required")
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 10 * time.Second
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With("component", "browser")

	p := &Page{
		opts:     opts,
		throttle: NewThrottle(opts.ActionsPerSecond),
		logger:   logger,
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
		logger.Info("attaching to running browser", "url", opts.RemoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, p.execOptions()...)
		logger.Info("launching browser", "headless", opts.Headless, "profile", opts.UserDataDir)
	}
	p.cancels = append(p.cancels, allocCancel)

	tab, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(p.debugf),
		chromedp.WithErrorf(p.debugf),
	)
	p.tab = tab
	p.cancels = append(p.cancels, tabCancel)

	// The first Run allocates the tab; it must not carry a timeout or the
	// tab would be torn down when the timeout fires.
	if err := chromedp.Run(tab); err != nil {
		p.Close()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	loadCtx, cancel := context.WithTimeout(tab, opts.LoadTimeout)
	defer cancel()
	if err := chromedp.Run(loadCtx,
		chromedp.Navigate(opts.PlaylistURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		p.Close()
		return nil, fmt.Errorf("browser: load %s: %w", opts.PlaylistURL, err)
	}

	logger.Info("playlist loaded", "url", opts.PlaylistURL)
	return p, nil
}

func (p *Page) execOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", p.opts.Headless))
	if p.opts.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(p.opts.UserDataDir))
	}
	if p.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(p.opts.ExecPath))
	}
	if p.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Close closes the tab and, for a launched browser, the browser itself.
func (p *Page) Close() error {
	for i := len(p.cancels) - 1; i >= 0; i-- {
		p.cancels[i]()
	}
	p.cancels = nil
	return nil
}

// Entries returns the entry nodes currently in the document.
func (p *Page) Entries(ctx context.Context) ([]playlist.Entry, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(p.opts.EntrySelector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("query %s: %w", p.opts.EntrySelector, err)
	}

	entries := make([]playlist.Entry, len(nodes))
	for i, n := range nodes {
		entries[i] = &entry{node: n}
	}
	return entries, nil
}

// OpenMenu clicks the action-menu button inside the entry.
func (p *Page) OpenMenu(ctx context.Context, e playlist.Entry) error {
	en, ok := e.(*entry)
	if !ok || en.node == nil {
		return fmt.Errorf("entry %T: %w", e, playlist.ErrNotFound)
	}

	var buttons []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(p.opts.MenuSelector, &buttons,
		chromedp.ByQueryAll, chromedp.FromNode(en.node), chromedp.AtLeast(0))); err != nil {
		return fmt.Errorf("query %s: %w", p.opts.MenuSelector, err)
	}
	if len(buttons) == 0 {
		return fmt.Errorf("%s in %s: %w", p.opts.MenuSelector, en.Label(), playlist.ErrNotFound)
	}

	if err := p.run(ctx, chromedp.MouseClickNode(buttons[0])); err != nil {
		return fmt.Errorf("click action menu: %w", err)
	}
	return nil
}

// ActivateRemove clicks the first node in the document matching RemoveXPath.
func (p *Page) ActivateRemove(ctx context.Context) error {
	var matches []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(p.opts.RemoveXPath, &matches, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return fmt.Errorf("search %s: %w", p.opts.RemoveXPath, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%s: %w", p.opts.RemoveXPath, playlist.ErrNotFound)
	}

	if err := p.run(ctx, chromedp.MouseClickNode(matches[0])); err != nil {
		return fmt.Errorf("click remove control: %w", err)
	}
	return nil
}

// Titles returns the visible title of every entry, in page order. Entries
// without a title element yield an empty string.
func (p *Page) Titles(ctx context.Context) ([]string, error) {
	script := `Array.from(document.querySelectorAll(` + strconv.Quote(p.opts.EntrySelector) + `)).map(e => {
		const t = e.querySelector('#video-title');
		return t ? t.textContent.trim() : '';
	})`

	var titles []string
	if err := p.run(ctx, chromedp.Evaluate(script, &titles)); err != nil {
		return nil, fmt.Errorf("read titles: %w", err)
	}
	return titles, nil
}

// run executes actions on the tab, bounded by ActionTimeout and by ctx.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if p.tab == nil {
		return errors.New("browser: page is closed")
	}
	if err := p.throttle.Wait(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(p.tab, p.opts.ActionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (p *Page) debugf(format string, args ...any) {
	p.logger.Debug(fmt.Sprintf(format, args...))
}
