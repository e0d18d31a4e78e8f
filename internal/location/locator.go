package location

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultTimeout bounds how long Resolve waits for a locator.
const DefaultTimeout = 8 * time.Second

var (
	// ErrUnavailable means no device locator is configured.
	ErrUnavailable = errors.New("device location unavailable")
	// ErrDenied means the locator failed or did not answer in time.
	ErrDenied = errors.New("device location denied")
)

// Locator is a source of the device position.
type Locator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// Error is a failed Locate. It carries the banner text for the failure.
type Error struct {
	Reason error // ErrUnavailable or ErrDenied
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%v: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// Advisory returns the banner text for an explicit "use my location" failure.
func (e *Error) Advisory() string {
	if errors.Is(e.Reason, ErrUnavailable) {
		return "Device location not configured."
	}
	return "Device location denied. Please allow access."
}

// Fallback is the position used when the device cannot be located.
type Fallback struct {
	Coordinates weather.Coordinates
	Name        string
}

// DefaultFallback is Vancouver, BC.
var DefaultFallback = Fallback{
	Coordinates: weather.Coordinates{Lat: 49.2827, Lon: -123.1207},
	Name:        "Vancouver, BC",
}

// Resolver wraps a Locator with a bounded wait and a fallback position.
// A nil locator behaves like an unsupported platform.
type Resolver struct {
	locator  Locator
	fallback Fallback
	timeout  time.Duration
}

// NewResolver creates a Resolver. A non-positive timeout uses DefaultTimeout.
func NewResolver(locator Locator, fallback Fallback, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		locator:  locator,
		fallback: fallback,
		timeout:  timeout,
	}
}

// Locate asks the locator for the device position within the timeout.
func (r *Resolver) Locate(ctx context.Context) (weather.Coordinates, error) {
	if r.locator == nil {
		return weather.Coordinates{}, &Error{Reason: ErrUnavailable}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		c   weather.Coordinates
		err error
	}
	done := make(chan result, 1)
	go func() {
		c, err := r.locator.Locate(ctx)
		done <- result{c, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return weather.Coordinates{}, &Error{Reason: ErrDenied, Err: res.err}
		}
		return res.c, nil
	case <-ctx.Done():
		return weather.Coordinates{}, &Error{Reason: ErrDenied, Err: ctx.Err()}
	}
}

// Resolve is Locate with the fallback applied on any failure.
func (r *Resolver) Resolve(ctx context.Context) weather.Resolution {
	c, err := r.Locate(ctx)
	if err == nil {
		return weather.Resolution{Coordinates: c}
	}

	log.Printf("INFO: locate device failed, showing %s: %v", r.fallback.Name, err)
	advisory := fmt.Sprintf("ℹ️ Location access denied. Showing %s.", r.fallback.Name)
	if errors.Is(err, ErrUnavailable) {
		advisory = fmt.Sprintf("ℹ️ Location unavailable. Showing %s.", r.fallback.Name)
	}
	return weather.Resolution{
		Coordinates: r.fallback.Coordinates,
		Fallback:    true,
		Advisory:    advisory,
	}
}

// StaticLocator always reports the configured coordinates.
type StaticLocator struct {
	Coordinates weather.Coordinates
}

func (l StaticLocator) Locate(context.Context) (weather.Coordinates, error) {
	return l.Coordinates, nil
}

// AddressLocator geocodes a configured postal address with the Google
// Geocoding API.
type AddressLocator struct {
	address geocoder.Address
	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewAddressLocator creates an AddressLocator. The geocoder package keeps its
// API key in a package variable, so apiKey is process-wide.
func NewAddressLocator(apiKey string, address geocoder.Address) *AddressLocator {
	geocoder.ApiKey = apiKey
	return &AddressLocator{
		address: address,
		geocode: geocoder.Geocoding,
	}
}

// Locate geocodes the address. The geocoder call is not context aware; the
// Resolver timeout still bounds the wait.
func (l *AddressLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}
	loc, err := l.geocode(l.address)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("geocode %s: %w", l.address.City, err)
	}
	return weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}
