package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type recorder struct {
	mu      sync.Mutex
	queries []string
	results chan Result
}

func newRecorder() *recorder {
	return &recorder{results: make(chan Result, 8)}
}

func (r *recorder) lookup(_ context.Context, q string) ([]weather.Place, error) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()
	return []weather.Place{{Name: q}}, nil
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func TestShortQueryNeverLooksUp(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(10*time.Millisecond, rec.lookup, func(res Result) { rec.results <- res })
	defer d.Stop()

	d.Input("a")
	d.Input(" b ")
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, rec.seen())
	assert.Empty(t, d.Latest().Places)
	assert.Equal(t, "b", d.Latest().Query)
}

func TestTypingBurstLooksUpOnce(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(30*time.Millisecond, rec.lookup, func(res Result) { rec.results <- res })
	defer d.Stop()

	d.Input("v")
	d.Input("va")
	d.Input("van")

	select {
	case res := <-rec.results:
		assert.Equal(t, "van", res.Query)
		require.Len(t, res.Places, 1)
	case <-time.After(time.Second):
		t.Fatal("no lookup after the debounce delay")
	}

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, []string{"van"}, rec.seen())
	assert.Equal(t, "van", d.Latest().Query)
}

func TestShortQueryCancelsPendingLookup(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(30*time.Millisecond, rec.lookup, nil)
	defer d.Stop()

	d.Input("van")
	d.Input("v")
	time.Sleep(80 * time.Millisecond)

	assert.Empty(t, rec.seen())
	assert.Empty(t, d.Latest().Places)
}

func TestSlowLookupIsSuperseded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)
	var got []Result
	var mu sync.Mutex

	lookup := func(ctx context.Context, q string) ([]weather.Place, error) {
		started <- q
		if q == "par" {
			<-release
		}
		return []weather.Place{{Name: q}}, nil
	}
	d := NewDebouncer(5*time.Millisecond, lookup, func(res Result) {
		mu.Lock()
		got = append(got, res)
		mu.Unlock()
	})
	defer d.Stop()

	d.Input("par")
	require.Equal(t, "par", <-started)

	d.Input("paris")
	require.Equal(t, "paris", <-started)
	require.Eventually(t, func() bool { return d.Latest().Query == "paris" }, time.Second, 5*time.Millisecond)

	close(release)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "paris", got[0].Query)
	assert.Equal(t, "paris", d.Latest().Query)
}

func TestLookupErrorIsReported(t *testing.T) {
	results := make(chan Result, 1)
	lookup := func(context.Context, string) ([]weather.Place, error) {
		return nil, &weather.FetchError{Kind: weather.KindRateLimit}
	}
	d := NewDebouncer(5*time.Millisecond, lookup, func(res Result) { results <- res })
	defer d.Stop()

	d.Input("vancouver")
	select {
	case res := <-results:
		var fe *weather.FetchError
		assert.True(t, errors.As(res.Err, &fe))
		assert.NotNil(t, res.Places)
	case <-time.After(time.Second):
		t.Fatal("no result")
	}
}

func TestStopIgnoresInput(t *testing.T) {
	rec := newRecorder()
	d := NewDebouncer(5*time.Millisecond, rec.lookup, nil)

	d.Input("van")
	d.Stop()
	d.Input("vancouver")
	time.Sleep(30 * time.Millisecond)

	assert.Empty(t, rec.seen())
}
