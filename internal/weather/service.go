package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/atomic"

	"github.com/i474232898/weather-dashboard/internal/metrics"
)

const (
	// UnitsKey is the preference key holding the unit system.
	UnitsKey = "units"

	// MinQueryLength is the shortest query sent to the geocoder.
	MinQueryLength = 2

	defaultSearchLimit = 10
)

// Options bundles the collaborators of a Service.
type Options struct {
	Client      Client
	Geocoder    Geocoder
	Locator     DeviceLocator
	Preferences Preferences
	SearchLimit int
	Now         func() time.Time
}

// Service owns the dashboard state: selected location, unit system, last
// snapshot, advisory banner and theme. Refreshes are tokenised so that only
// the most recently issued one is ever applied.
type Service struct {
	client      Client
	geocoder    Geocoder
	locator     DeviceLocator
	prefs       Preferences
	searchLimit int
	now         func() time.Time

	seq atomic.Uint64

	mu       sync.RWMutex
	units    Units
	coords   *Coordinates
	snapshot Snapshot
	advisory string
	dark     bool
	loading  bool
}

// NewService creates a new Service with metric units and no location.
func NewService(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = defaultSearchLimit
	}
	return &Service{
		client:      opts.Client,
		geocoder:    opts.Geocoder,
		locator:     opts.Locator,
		prefs:       opts.Preferences,
		searchLimit: opts.SearchLimit,
		now:         opts.Now,
		units:       UnitsMetric,
		snapshot:    emptySnapshot(UnitsMetric),
	}
}

// Init loads the stored unit preference. Missing or invalid values keep metric.
func (s *Service) Init(ctx context.Context) {
	if s.prefs == nil {
		return
	}
	v, err := s.prefs.Get(ctx, UnitsKey)
	if err != nil {
		log.Printf("INFO: no stored unit preference, using %s: %v", UnitsMetric, err)
		return
	}
	u, err := ParseUnits(v)
	if err != nil {
		log.Printf("WARN: ignoring stored unit preference: %v", err)
		return
	}

	s.mu.Lock()
	s.units = u
	s.snapshot.Units = u
	s.mu.Unlock()
}

// Start locates the device (falling back to the default coordinate) and runs
// the first refresh. A fallback advisory survives a successful refresh.
func (s *Service) Start(ctx context.Context) (Snapshot, error) {
	res := s.locator.Resolve(ctx)
	if res.Fallback {
		log.Printf("INFO: device location unavailable, using fallback %s", res.Coordinates)
	}
	s.setLocation(res.Coordinates)
	return s.refresh(ctx, res.Advisory)
}

// UseDeviceLocation switches to the device position. Unlike Start there is
// no fallback: on failure the advisory is set and nothing is fetched.
func (s *Service) UseDeviceLocation(ctx context.Context) (Snapshot, error) {
	c, err := s.locator.Locate(ctx)
	if err != nil {
		var adv interface{ Advisory() string }
		msg := "Device location unavailable."
		if errors.As(err, &adv) {
			msg = adv.Advisory()
		}
		s.SetAdvisory(msg)
		return Snapshot{}, fmt.Errorf("locate device: %w", err)
	}
	return s.SelectLocation(ctx, c)
}

// SelectLocation makes c the displayed location and refreshes.
func (s *Service) SelectLocation(ctx context.Context, c Coordinates) (Snapshot, error) {
	s.setLocation(c)
	return s.refresh(ctx, "")
}

// SelectPlace is SelectLocation for a geocoding match.
func (s *Service) SelectPlace(ctx context.Context, p Place) (Snapshot, error) {
	log.Printf("DEBUG: selected place %s", p.Label())
	return s.SelectLocation(ctx, p.Coordinates())
}

// Search looks up places matching query. Queries shorter than MinQueryLength
// characters (after trimming) are rejected without a lookup.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil, ErrQueryTooShort
	}
	if limit <= 0 || limit > s.searchLimit {
		limit = s.searchLimit
	}
	return s.geocoder.SearchCity(ctx, q, limit)
}

// SearchAndSelect picks the first match for query and refreshes.
func (s *Service) SearchAndSelect(ctx context.Context, query string) (Place, Snapshot, error) {
	places, err := s.Search(ctx, query, s.searchLimit)
	if err != nil {
		if !errors.Is(err, ErrQueryTooShort) {
			s.SetAdvisory(AdvisoryFor(err))
		}
		return Place{}, Snapshot{}, err
	}
	if len(places) == 0 {
		s.SetAdvisory(Advisory(KindNotFound))
		return Place{}, Snapshot{}, &FetchError{Kind: KindNotFound, Err: fmt.Errorf("no places match %q", query)}
	}

	snap, err := s.SelectPlace(ctx, places[0])
	return places[0], snap, err
}

// SetUnits stores the unit preference and refreshes when a location is known.
func (s *Service) SetUnits(ctx context.Context, u Units) (Snapshot, error) {
	if _, err := ParseUnits(string(u)); err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.units = u
	hasLocation := s.coords != nil
	if !hasLocation {
		s.snapshot.Units = u
	}
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.Set(ctx, UnitsKey, string(u)); err != nil {
			log.Printf("ERROR: failed to persist unit preference: %v", err)
		}
	}

	if !hasLocation {
		return s.State().Weather, nil
	}
	return s.refresh(ctx, "")
}

// Refresh re-fetches the current location.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	return s.refresh(ctx, "")
}

// RecheckTheme re-resolves day/night from the last known sunrise/sunset.
func (s *Service) RecheckTheme() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyThemeLocked()
	return s.dark
}

// SetAdvisory replaces the banner text.
func (s *Service) SetAdvisory(msg string) {
	s.mu.Lock()
	s.advisory = msg
	s.mu.Unlock()
}

// State returns a copy of the dashboard state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Weather:  s.snapshot,
		Advisory: s.advisory,
		Dark:     s.dark,
		Units:    s.units,
		Loading:  s.loading,
	}
	if s.coords != nil {
		c := *s.coords
		st.Location = &c
	}
	return st
}

func (s *Service) setLocation(c Coordinates) {
	s.mu.Lock()
	s.coords = &c
	s.mu.Unlock()
}

// refresh fetches current conditions and the forecast for the selected
// location. Both must succeed; a failure clears all displayed data. Results
// of a refresh that was overtaken by a newer one are discarded.
func (s *Service) refresh(ctx context.Context, advisory string) (Snapshot, error) {
	s.mu.Lock()
	if s.coords == nil {
		s.mu.Unlock()
		return Snapshot{}, ErrNoLocation
	}
	coords, units := *s.coords, s.units
	token := s.seq.Inc()
	s.loading = true
	s.advisory = advisory
	s.mu.Unlock()

	log.Printf("DEBUG: refresh #%d for %s in %s", token, coords, units)
	cur, fc, err := s.fetchAll(ctx, coords, units)

	s.mu.Lock()
	defer s.mu.Unlock()

	if latest := s.seq.Load(); token != latest {
		log.Printf("DEBUG: discarding refresh #%d, #%d is newer", token, latest)
		metrics.RefreshTotal.WithLabelValues("superseded").Inc()
		return Snapshot{}, ErrSuperseded
	}
	s.loading = false

	if err != nil {
		kind := KindOf(err)
		log.Printf("ERROR: refresh #%d for %s failed (%s): %v", token, coords, kind, err)
		metrics.RefreshTotal.WithLabelValues(string(kind)).Inc()
		s.advisory = Advisory(kind)
		s.snapshot = emptySnapshot(units)
		return Snapshot{}, err
	}

	f := Aggregate(fc.Entries, fc.TimezoneOffset)
	snap := Snapshot{
		Current:        &cur,
		Hourly24:       f.Hourly24,
		Daily5:         f.Daily5,
		LocationName:   cur.LocationName(),
		TimezoneOffset: fc.TimezoneOffset,
		Units:          units,
		FetchedAt:      s.now().UTC(),
	}
	s.snapshot = snap
	s.applyThemeLocked()
	metrics.RefreshTotal.WithLabelValues("ok").Inc()
	return snap, nil
}

// fetchAll runs both upstream calls concurrently. The first failure cancels
// the other call and is the one reported.
func (s *Service) fetchAll(ctx context.Context, c Coordinates, units Units) (CurrentConditions, ForecastData, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		cur      CurrentConditions
		fc       ForecastData
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		r, err := s.client.Current(ctx, c, units)
		if err != nil {
			fail(fmt.Errorf("current weather: %w", err))
			return
		}
		cur = r
	}()
	go func() {
		defer wg.Done()
		r, err := s.client.Forecast(ctx, c, units)
		if err != nil {
			fail(fmt.Errorf("forecast: %w", err))
			return
		}
		fc = r
	}()
	wg.Wait()

	return cur, fc, firstErr
}

func (s *Service) applyThemeLocked() {
	c := s.snapshot.Current
	if c == nil {
		return
	}
	if dark, ok := IsDark(s.now().Unix(), c.Sunrise, c.Sunset); ok {
		s.dark = dark
	}
}
