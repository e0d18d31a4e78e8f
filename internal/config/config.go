package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/search"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	Lang               string

	// HTTPTimeout bounds every outbound request; a timeout is a NETWORK error.
	HTTPTimeout time.Duration
	// MaxRetries for upstream calls. 0 keeps every failure terminal.
	MaxRetries int

	// Fallback location when the device cannot be located.
	Fallback      location.Fallback
	LocateTimeout time.Duration

	// Device location: coordinates win over an address.
	DeviceCoordinates *weather.Coordinates
	DeviceCity        string
	DeviceState       string
	DeviceCountry     string
	GeocoderAPIKey    string

	// PreferencesDB is the sqlite path for the unit preference ("" = in memory).
	PreferencesDB string

	ThemeInterval  time.Duration
	SearchDebounce time.Duration
	SearchLimit    int

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", providers.DefaultOpenWeatherURL)
	cfg.Lang = getenvDefault("OPENWEATHER_LANG", "en")
	cfg.GeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.PreferencesDB = os.Getenv("PREFERENCES_DB")
	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.LocateTimeout, err = getenvDuration("LOCATE_TIMEOUT", location.DefaultTimeout); err != nil {
		return nil, err
	}
	if cfg.ThemeInterval, err = getenvDuration("THEME_INTERVAL", scheduler.DefaultThemeInterval); err != nil {
		return nil, err
	}
	if cfg.SearchDebounce, err = getenvDuration("SEARCH_DEBOUNCE", search.DefaultDelay); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = getenvInt("UPSTREAM_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.SearchLimit, err = getenvInt("SEARCH_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: must not be negative")
	}
	if cfg.SearchLimit < 1 {
		return nil, fmt.Errorf("invalid SEARCH_LIMIT: must be at least 1")
	}

	if cfg.Fallback, err = loadFallback(); err != nil {
		return nil, err
	}
	if cfg.DeviceCoordinates, err = loadDeviceCoordinates(); err != nil {
		return nil, err
	}
	cfg.DeviceCity = os.Getenv("DEVICE_CITY")
	cfg.DeviceState = os.Getenv("DEVICE_STATE")
	cfg.DeviceCountry = os.Getenv("DEVICE_COUNTRY")

	return cfg, nil
}

func loadFallback() (location.Fallback, error) {
	fb := location.DefaultFallback
	lat, err := getenvFloat("FALLBACK_LAT", fb.Coordinates.Lat)
	if err != nil {
		return fb, err
	}
	lon, err := getenvFloat("FALLBACK_LON", fb.Coordinates.Lon)
	if err != nil {
		return fb, err
	}
	fb.Coordinates = weather.Coordinates{Lat: lat, Lon: lon}
	fb.Name = getenvDefault("FALLBACK_NAME", fb.Name)
	return fb, nil
}

func loadDeviceCoordinates() (*weather.Coordinates, error) {
	latStr, lonStr := os.Getenv("DEVICE_LAT"), os.Getenv("DEVICE_LON")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("DEVICE_LAT and DEVICE_LON must be set together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEVICE_LAT: %w", err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEVICE_LON: %w", err)
	}
	return &weather.Coordinates{Lat: lat, Lon: lon}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
