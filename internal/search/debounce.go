package search

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/atomic"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultDelay is the quiet period after the last keystroke before a lookup.
const DefaultDelay = 300 * time.Millisecond

// LookupFunc resolves a query to places.
type LookupFunc func(ctx context.Context, query string) ([]weather.Place, error)

// Result is the outcome of one lookup.
type Result struct {
	Query  string          `json:"query"`
	Places []weather.Place `json:"places"`
	Err    error           `json:"-"`
}

// Debouncer turns a stream of partial queries into at most one lookup per
// pause in typing. Every Input supersedes the previous one: its pending timer
// is stopped, its in-flight lookup is cancelled and its result is dropped.
type Debouncer struct {
	delay    time.Duration
	minLen   int
	lookup   LookupFunc
	onResult func(Result)

	seq atomic.Uint64

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
	latest Result
	closed bool
}

// NewDebouncer creates a Debouncer. onResult, when non-nil, is called with
// every result that was still current when its lookup finished.
func NewDebouncer(delay time.Duration, lookup LookupFunc, onResult func(Result)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay:    delay,
		minLen:   weather.MinQueryLength,
		lookup:   lookup,
		onResult: onResult,
		latest:   Result{Places: []weather.Place{}},
	}
}

// Input records a new value of the search box.
func (d *Debouncer) Input(query string) {
	q := strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	token := d.seq.Inc()
	d.stopLocked()

	if utf8.RuneCountInString(q) < d.minLen {
		d.latest = Result{Query: q, Places: []weather.Place{}}
		return
	}

	d.timer = time.AfterFunc(d.delay, func() { d.fire(token, q) })
}

// Latest returns the most recent current result. Short queries yield an
// empty result.
func (d *Debouncer) Latest() Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

// Stop cancels pending work. Further Input calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.stopLocked()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer) fire(token uint64, q string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.mu.Lock()
	if token != d.seq.Load() || d.closed {
		d.mu.Unlock()
		return
	}
	d.cancel = cancel
	d.mu.Unlock()

	places, err := d.lookup(ctx, q)

	d.mu.Lock()
	if token != d.seq.Load() || d.closed {
		d.mu.Unlock()
		metrics.SearchLookupsTotal.WithLabelValues("stale").Inc()
		log.Printf("DEBUG: dropping stale suggestions for %q", q)
		return
	}
	d.cancel = nil
	if places == nil {
		places = []weather.Place{}
	}
	res := Result{Query: q, Places: places, Err: err}
	d.latest = res
	d.mu.Unlock()

	outcome := "ok"
	if err != nil {
		outcome = string(weather.KindOf(err))
	}
	metrics.SearchLookupsTotal.WithLabelValues(outcome).Inc()

	if d.onResult != nil {
		d.onResult(res)
	}
}
