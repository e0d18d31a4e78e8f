package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/location"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var envKeys = []string{
	"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "OPENWEATHER_LANG", "HTTP_TIMEOUT",
	"UPSTREAM_MAX_RETRIES", "PORT", "FALLBACK_LAT", "FALLBACK_LON", "FALLBACK_NAME",
	"LOCATE_TIMEOUT", "DEVICE_LAT", "DEVICE_LON", "DEVICE_CITY", "DEVICE_STATE",
	"DEVICE_COUNTRY", "GOOGLE_GEOCODER_API_KEY", "PREFERENCES_DB", "THEME_INTERVAL",
	"SEARCH_DEBOUNCE", "SEARCH_LIMIT",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.openweathermap.org", cfg.OpenWeatherBaseURL)
	assert.Equal(t, "en", cfg.Lang)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Zero(t, cfg.MaxRetries)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, location.DefaultFallback, cfg.Fallback)
	assert.Equal(t, 8*time.Second, cfg.LocateTimeout)
	assert.Nil(t, cfg.DeviceCoordinates)
	assert.Empty(t, cfg.PreferencesDB)
	assert.Equal(t, 5*time.Minute, cfg.ThemeInterval)
	assert.Equal(t, 300*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, 10, cfg.SearchLimit)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "abc")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("FALLBACK_LAT", "51.5")
	t.Setenv("FALLBACK_LON", "-0.12")
	t.Setenv("FALLBACK_NAME", "London")
	t.Setenv("DEVICE_LAT", "40.71")
	t.Setenv("DEVICE_LON", "-74.0")
	t.Setenv("THEME_INTERVAL", "1m")
	t.Setenv("SEARCH_LIMIT", "5")
	t.Setenv("PREFERENCES_DB", "/tmp/prefs.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "abc", cfg.OpenWeatherAPIKey)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, location.Fallback{Coordinates: weather.Coordinates{Lat: 51.5, Lon: -0.12}, Name: "London"}, cfg.Fallback)
	require.NotNil(t, cfg.DeviceCoordinates)
	assert.Equal(t, weather.Coordinates{Lat: 40.71, Lon: -74.0}, *cfg.DeviceCoordinates)
	assert.Equal(t, time.Minute, cfg.ThemeInterval)
	assert.Equal(t, 5, cfg.SearchLimit)
	assert.Equal(t, "/tmp/prefs.db", cfg.PreferencesDB)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"HTTP_TIMEOUT":         "ten",
		"SEARCH_DEBOUNCE":      "300",
		"UPSTREAM_MAX_RETRIES": "-1",
		"SEARCH_LIMIT":         "0",
		"FALLBACK_LAT":         "north",
		"DEVICE_LAT":           "1.5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
