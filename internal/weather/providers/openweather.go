package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultOpenWeatherURL is the OpenWeatherMap API root.
const DefaultOpenWeatherURL = "https://api.openweathermap.org"

// OpenWeatherClient talks to the OpenWeatherMap current weather, 5-day/3-hour
// forecast and direct geocoding endpoints.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	lang    string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// OpenWeatherConfig configures an OpenWeatherClient.
type OpenWeatherConfig struct {
	APIKey     string
	BaseURL    string // defaults to DefaultOpenWeatherURL
	Lang       string // defaults to "en"
	MaxRetries int
}

func NewOpenWeatherClient(client *http.Client, cfg OpenWeatherConfig) *OpenWeatherClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenWeatherURL
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}

	return &OpenWeatherClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		lang:    cfg.Lang,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      cfg.MaxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

func toConditions(items []owmCondition) weather.Conditions {
	out := make(weather.Conditions, 0, len(items))
	for _, it := range items {
		out = append(out, weather.Condition{Main: it.Main, Description: it.Description})
	}
	return out
}

// Current fetches /data/2.5/weather for c.
func (p *OpenWeatherClient) Current(ctx context.Context, c weather.Coordinates, units weather.Units) (weather.CurrentConditions, error) {
	var payload struct {
		Dt       int64  `json:"dt"`
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
		Main     struct {
			Temp      *float64 `json:"temp"`
			FeelsLike *float64 `json:"feels_like"`
			Humidity  *int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed *float64 `json:"speed"`
			Deg   *float64 `json:"deg"`
		} `json:"wind"`
		Weather []owmCondition `json:"weather"`
		Sys     struct {
			Country string `json:"country"`
			Sunrise *int64 `json:"sunrise"`
			Sunset  *int64 `json:"sunset"`
		} `json:"sys"`
	}

	if err := p.getJSON(ctx, "current", "/data/2.5/weather", p.pointQuery(c, units), &payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	return weather.CurrentConditions{
		Dt:         payload.Dt,
		Temp:       payload.Main.Temp,
		FeelsLike:  payload.Main.FeelsLike,
		Humidity:   payload.Main.Humidity,
		WindSpeed:  payload.Wind.Speed,
		WindDeg:    payload.Wind.Deg,
		Conditions: toConditions(payload.Weather),
		Sunrise:    payload.Sys.Sunrise,
		Sunset:     payload.Sys.Sunset,
		Timezone:   payload.Timezone,
		Name:       payload.Name,
		Country:    payload.Sys.Country,
	}, nil
}

// Forecast fetches /data/2.5/forecast for c. The timezone offset comes from
// the city metadata and defaults to 0.
func (p *OpenWeatherClient) Forecast(ctx context.Context, c weather.Coordinates, units weather.Units) (weather.ForecastData, error) {
	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp *float64 `json:"temp"`
			} `json:"main"`
			Weather []owmCondition `json:"weather"`
		} `json:"list"`
		City struct {
			Name     string `json:"name"`
			Country  string `json:"country"`
			Timezone *int   `json:"timezone"`
		} `json:"city"`
	}

	if err := p.getJSON(ctx, "forecast", "/data/2.5/forecast", p.pointQuery(c, units), &payload); err != nil {
		return weather.ForecastData{}, err
	}

	entries := make([]weather.RawEntry, 0, len(payload.List))
	for _, it := range payload.List {
		entries = append(entries, weather.RawEntry{
			Dt:         it.Dt,
			Temp:       it.Main.Temp,
			Conditions: toConditions(it.Weather),
		})
	}

	fd := weather.ForecastData{
		Entries: entries,
		City:    payload.City.Name,
		Country: payload.City.Country,
	}
	if payload.City.Timezone != nil {
		fd.TimezoneOffset = *payload.City.Timezone
	}
	return fd, nil
}

// SearchCity resolves query through /geo/1.0/direct.
func (p *OpenWeatherClient) SearchCity(ctx context.Context, query string, limit int) ([]weather.Place, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(limit))

	var payload []struct {
		Name    string  `json:"name"`
		State   string  `json:"state"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := p.getJSON(ctx, "geocode", "/geo/1.0/direct", values, &payload); err != nil {
		return nil, err
	}

	places := make([]weather.Place, 0, len(payload))
	for _, it := range payload {
		places = append(places, weather.Place{
			Name:    it.Name,
			State:   it.State,
			Country: it.Country,
			Lat:     it.Lat,
			Lon:     it.Lon,
		})
	}
	return places, nil
}

func (p *OpenWeatherClient) pointQuery(c weather.Coordinates, units weather.Units) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	values.Set("units", string(units))
	values.Set("lang", p.lang)
	return values
}

func (p *OpenWeatherClient) getJSON(ctx context.Context, endpoint, path string, values url.Values, out any) error {
	if p.apiKey == "" {
		return &weather.FetchError{Kind: weather.KindAPIKey, Err: fmt.Errorf("openweather api key is not configured")}
	}

	buildRequest := func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("appid", p.apiKey)

		u := fmt.Sprintf("%s%s?%s", p.baseURL, path, q.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, endpoint, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &weather.FetchError{Kind: weather.KindNetwork, Err: fmt.Errorf("decode %s response: %w", endpoint, err)}
	}
	return nil
}
