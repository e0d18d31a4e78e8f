package weather

import (
	"context"
)

// Client abstracts the weather data source (OpenWeatherMap).
type Client interface {
	Current(ctx context.Context, c Coordinates, units Units) (CurrentConditions, error)
	Forecast(ctx context.Context, c Coordinates, units Units) (ForecastData, error)
}

// Geocoder resolves a free-text city query to places.
type Geocoder interface {
	SearchCity(ctx context.Context, query string, limit int) ([]Place, error)
}

// Resolution is the outcome of locating the device with a fallback.
type Resolution struct {
	Coordinates Coordinates
	Fallback    bool
	Advisory    string
}

// DeviceLocator finds the user's position.
// Resolve always yields coordinates (falling back when needed); Locate fails instead.
type DeviceLocator interface {
	Resolve(ctx context.Context) Resolution
	Locate(ctx context.Context) (Coordinates, error)
}

// Preferences is the key-value store holding the unit preference.
type Preferences interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
