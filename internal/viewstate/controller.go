// Package viewstate holds the list/search state machine behind the hero list
// view: the current records, the query, the derived filtered and paged view,
// and loading/error flags.
//
// In remote mode (token provider) query changes are debounced and resolved by
// an upstream search; in local mode they filter the already fetched records.
// Each controller belongs to one view (an HTTP request, a websocket session,
// a CLI run) and shares nothing with other controllers.
package viewstate

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"herohub/pkg/models"
)

// DefaultDebounce is the quiet period before a remote search is issued.
const DefaultDebounce = 400 * time.Millisecond

// Source is the subset of heroes.Source the list view needs.
type Source interface {
	ListHeroes(ctx context.Context, seedQuery string) ([]models.HeroSummary, error)
	SearchHeroes(ctx context.Context, query string) ([]models.HeroSummary, error)
}

type Options struct {
	// Remote resolves queries with Source.SearchHeroes instead of filtering locally.
	Remote    bool
	PageSize  int
	Debounce  time.Duration
	SeedQuery string
	// OnChange receives a snapshot after every applied transition, in order.
	// It must not call back into the Controller.
	OnChange func(State)
	Logger   *zap.Logger
}

// State is an immutable snapshot of the view.
type State struct {
	Remote     bool                 `json:"remote"`
	Query      string               `json:"query"`
	Items      []models.HeroSummary `json:"items"`
	Total      int                  `json:"total"`
	Records    int                  `json:"records"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	Loading    bool                 `json:"loading"`
	Error      string               `json:"error,omitempty"`
}

func (s State) HasPrev() bool { return s.Page > 1 }
func (s State) HasNext() bool { return s.Page < s.TotalPages }

type Controller struct {
	src  Source
	opts Options
	log  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// notifyMu is taken before mu is released so OnChange sees snapshots in order.
	notifyMu sync.Mutex

	mu        sync.Mutex
	records   []models.HeroSummary
	baseline  []models.HeroSummary
	query     string
	page      int
	listing   bool
	searching bool
	err       string
	listErr   string
	listGen   uint64
	searchGen uint64
	pending   string
	timer     *time.Timer
	unmounted bool

	// inflight counts armed debounce timers and running searches.
	inflight sync.WaitGroup
}

// New creates a controller bound to ctx. When ctx ends the controller
// unmounts itself and no further state is applied.
func New(ctx context.Context, src Source, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Controller{src: src, opts: opts, log: opts.Logger, page: 1}
	c.ctx, c.cancel = context.WithCancel(ctx)
	context.AfterFunc(c.ctx, c.Unmount)
	return c
}

// Mount loads the initial list. It blocks until the list fetch returns;
// run it in a goroutine for a non-blocking view.
func (c *Controller) Mount() {
	c.mu.Lock()
	if c.staleLocked() {
		c.mu.Unlock()
		return
	}
	c.listGen++
	gen := c.listGen
	c.listing = true
	c.err = ""
	c.commit()

	records, err := c.src.ListHeroes(c.ctx, c.opts.SeedQuery)

	c.mu.Lock()
	if c.staleLocked() || gen != c.listGen {
		c.mu.Unlock()
		c.log.Debug("dropping stale list result", zap.Uint64("gen", gen))
		return
	}
	// while a remote query is active the list only refreshes the baseline
	searching := c.opts.Remote && NormalizeQuery(c.query) != ""
	if err != nil {
		c.log.Warn("list load failed", zap.Error(err))
		c.listErr = err.Error()
		if !searching {
			c.err = c.listErr
			c.records = nil
		}
	} else {
		c.baseline = records
		c.listErr = ""
		if !searching {
			c.records = records
			c.page = 1
		}
	}
	c.listing = false
	c.commit()
}

// SetQuery updates the search text. A change of the normalized query resets
// the page to 1 immediately and, in remote mode, re-arms the debounced search.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	if c.staleLocked() {
		c.mu.Unlock()
		return
	}
	prev := NormalizeQuery(c.query)
	c.query = q
	next := NormalizeQuery(q)
	if prev != next {
		c.page = 1
		if c.opts.Remote {
			c.scheduleSearchLocked(next)
		}
	}
	c.commit()
}

func (c *Controller) scheduleSearchLocked(q string) {
	c.searchGen++
	gen := c.searchGen
	// the superseded search, if any, will not apply its result
	c.searching = false
	c.stopTimerLocked()

	c.pending = q
	c.inflight.Add(1)
	c.timer = time.AfterFunc(c.opts.Debounce, func() {
		defer c.inflight.Done()
		c.runSearch(gen, q)
	})
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil && c.timer.Stop() {
		c.inflight.Done()
	}
	c.timer = nil
}

func (c *Controller) runSearch(gen uint64, q string) {
	c.mu.Lock()
	if c.staleLocked() || gen != c.searchGen {
		c.mu.Unlock()
		return
	}
	if q == "" {
		c.records = c.baseline
		c.err = c.listErr
		c.searching = false
		c.commit()
		return
	}
	c.searching = true
	c.err = ""
	c.commit()

	results, err := c.src.SearchHeroes(c.ctx, q)

	c.mu.Lock()
	if c.staleLocked() || gen != c.searchGen {
		c.mu.Unlock()
		c.log.Debug("dropping stale search result", zap.String("query", q), zap.Uint64("gen", gen))
		return
	}
	c.searching = false
	if err != nil {
		c.log.Warn("search failed", zap.String("query", q), zap.Error(err))
		c.err = err.Error()
		c.records = nil
	} else {
		c.records = results
		c.err = ""
	}
	c.commit()
}

// Settle fires a pending debounced search immediately and waits until no
// search is in flight. It must not race with SetQuery.
func (c *Controller) Settle() {
	c.mu.Lock()
	var run func()
	if c.timer != nil && c.timer.Stop() {
		gen, q := c.searchGen, c.pending
		c.timer = nil
		run = func() {
			defer c.inflight.Done()
			c.runSearch(gen, q)
		}
	}
	c.mu.Unlock()

	if run != nil {
		run()
	}
	c.inflight.Wait()
}

func (c *Controller) Next() { c.step(1) }
func (c *Controller) Prev() { c.step(-1) }

// GoTo moves to page, clamped to the available pages.
func (c *Controller) GoTo(page int) {
	c.mu.Lock()
	if c.staleLocked() {
		c.mu.Unlock()
		return
	}
	c.page = ClampPage(page, len(c.displayedLocked()), c.opts.PageSize)
	c.commit()
}

func (c *Controller) step(delta int) {
	c.mu.Lock()
	if c.staleLocked() {
		c.mu.Unlock()
		return
	}
	n := len(c.displayedLocked())
	p := ClampPage(c.page, n, c.opts.PageSize)
	c.page = ClampPage(p+delta, n, c.opts.PageSize)
	c.commit()
}

// Unmount stops the pending debounce and suppresses every later result.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.unmounted = true
	c.stopTimerLocked()
	c.listing = false
	c.searching = false
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) staleLocked() bool {
	return c.unmounted || c.ctx.Err() != nil
}

func (c *Controller) displayedLocked() []models.HeroSummary {
	if c.opts.Remote {
		return c.records
	}
	return FilterByName(c.records, c.query)
}

func (c *Controller) snapshotLocked() State {
	shown := c.displayedLocked()
	items, page := Paginate(shown, c.page, c.opts.PageSize)
	return State{
		Remote:     c.opts.Remote,
		Query:      c.query,
		Items:      slices.Clone(items),
		Total:      len(shown),
		Records:    len(c.records),
		Page:       page,
		TotalPages: TotalPages(len(shown), c.opts.PageSize),
		Loading:    !c.staleLocked() && (c.listing || c.searching),
		Error:      c.err,
	}
}

// commit publishes the current state. It must be called with mu held and
// returns with mu released.
func (c *Controller) commit() {
	s := c.snapshotLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	if c.opts.OnChange != nil {
		c.opts.OnChange(s)
	}
}
