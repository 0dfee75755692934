package playlist

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type fakeEntry struct {
	id string
}

func (e *fakeEntry) Label() string { return e.id }

// fakePage is an in-memory playlist. Removing the opened entry shifts the
// rest up, the way the real page re-renders.
type fakePage struct {
	entries []*fakeEntry
	opened  *fakeEntry

	noMenu      map[string]bool // entries without an action menu
	noRemove    map[string]int  // entries whose menu lacks a remove control this many times
	flaky       map[string]int  // entries whose OpenMenu fails this many times
	broken      map[string]bool // entries whose OpenMenu always fails
	enumerateFn func() error    // optional hook to fail enumeration
	openCalls   map[string]int  // OpenMenu calls per entry
	scans       int             // Entries calls
	scanSizes   []int           // len(entries) at each Entries call
}

func newFakePage(n int) *fakePage {
	p := &fakePage{
		noMenu:    map[string]bool{},
		noRemove:  map[string]int{},
		flaky:     map[string]int{},
		broken:    map[string]bool{},
		openCalls: map[string]int{},
	}
	for i := 0; i < n; i++ {
		p.entries = append(p.entries, &fakeEntry{id: fmt.Sprintf("video-%03d", i)})
	}
	return p
}

func (p *fakePage) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.enumerateFn != nil {
		if err := p.enumerateFn(); err != nil {
			return nil, err
		}
	}
	p.scans++
	p.scanSizes = append(p.scanSizes, len(p.entries))
	out := make([]Entry, len(p.entries))
	for i, e := range p.entries {
		out[i] = e
	}
	return out, nil
}

func (p *fakePage) OpenMenu(ctx context.Context, entry Entry) error {
	e := entry.(*fakeEntry)
	p.openCalls[e.id]++
	if p.noMenu[e.id] {
		return fmt.Errorf("menu for %s: %w", e.id, ErrNotFound)
	}
	if p.broken[e.id] {
		return errors.New("node is detached from document")
	}
	if p.flaky[e.id] > 0 {
		p.flaky[e.id]--
		return errors.New("click intercepted")
	}
	p.opened = e
	return nil
}

func (p *fakePage) ActivateRemove(ctx context.Context) error {
	if p.opened == nil {
		return fmt.Errorf("remove control: %w", ErrNotFound)
	}
	if p.noRemove[p.opened.id] > 0 {
		p.noRemove[p.opened.id]--
		p.opened = nil
		return fmt.Errorf("remove control: %w", ErrNotFound)
	}
	for i, e := range p.entries {
		if e == p.opened {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			break
		}
	}
	p.opened = nil
	return nil
}

// fakeSleeper records every requested pause without blocking.
type fakeSleeper struct {
	waits []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func (s *fakeSleeper) count(d time.Duration) int {
	n := 0
	for _, w := range s.waits {
		if w == d {
			n++
		}
	}
	return n
}

// countingObserver tallies observer callbacks.
type countingObserver struct {
	deleted, failed, retried, batches, breaks int
	observed                                  []int
}

func (o *countingObserver) EntryDeleted()              { o.deleted++ }
func (o *countingObserver) EntryFailed()               { o.failed++ }
func (o *countingObserver) Retried()                   { o.retried++ }
func (o *countingObserver) BatchCompleted()            { o.batches++ }
func (o *countingObserver) BreakStarted(time.Duration) { o.breaks++ }
func (o *countingObserver) EntriesObserved(n int)      { o.observed = append(o.observed, n) }
