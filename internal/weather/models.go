package weather

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Units is the measurement system requested from the upstream API.
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// ParseUnits validates a unit system string.
func ParseUnits(s string) (Units, error) {
	switch u := Units(s); u {
	case UnitsMetric, UnitsImperial:
		return u, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUnits, s)
	}
}

// TempSymbol returns "C" or "F".
func (u Units) TempSymbol() string {
	if u == UnitsImperial {
		return "F"
	}
	return "C"
}

// SpeedUnit returns the wind speed unit the API reports for u.
func (u Units) SpeedUnit() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// Coordinates is a geographic position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Condition is a single weather condition as reported by the provider.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// Conditions is the ordered condition list of one observation; the first one is primary.
type Conditions []Condition

// Primary returns the first condition, or the zero value when there is none.
func (c Conditions) Primary() Condition {
	if len(c) == 0 {
		return Condition{}
	}
	return c[0]
}

// RawEntry is one 3-hour step of the upstream forecast.
// Temp is nil when the provider omitted the temperature.
type RawEntry struct {
	Dt         int64      `json:"dt"`
	Temp       *float64   `json:"temp"`
	Conditions Conditions `json:"conditions"`
}

// ForecastData is the decoded forecast response.
type ForecastData struct {
	Entries        []RawEntry
	TimezoneOffset int
	City           string
	Country        string
}

// CurrentConditions is the decoded current weather response.
type CurrentConditions struct {
	Dt         int64      `json:"dt"`
	Temp       *float64   `json:"temp"`
	FeelsLike  *float64   `json:"feelsLike"`
	Humidity   *int       `json:"humidity"`
	WindSpeed  *float64   `json:"windSpeed"`
	WindDeg    *float64   `json:"windDeg"`
	Conditions Conditions `json:"conditions"`
	Sunrise    *int64     `json:"sunrise"`
	Sunset     *int64     `json:"sunset"`
	Timezone   int        `json:"timezone"`
	Name       string     `json:"name"`
	Country    string     `json:"country"`
}

// LocationName returns "Name, Country", or "" when the provider gave no name.
func (c CurrentConditions) LocationName() string {
	if c.Name == "" {
		return ""
	}
	if c.Country == "" {
		return c.Name
	}
	return c.Name + ", " + c.Country
}

// Place is a geocoding match.
type Place struct {
	Name    string  `json:"name"`
	State   string  `json:"state,omitempty"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Label formats the place as "Name, State, Country", skipping an empty state.
func (p Place) Label() string {
	if p.State != "" {
		return fmt.Sprintf("%s, %s, %s", p.Name, p.State, p.Country)
	}
	return fmt.Sprintf("%s, %s", p.Name, p.Country)
}

// Coordinates returns the position of the place.
func (p Place) Coordinates() Coordinates {
	return Coordinates{Lat: p.Lat, Lon: p.Lon}
}

// HourlyPoint is one entry of the next-24h slice.
type HourlyPoint struct {
	Dt         int64      `json:"dt"`
	Temp       *float64   `json:"temp"`
	Conditions Conditions `json:"conditions"`
}

// TempRange holds a day's min/max. A range that never saw a numeric
// temperature is +Inf/-Inf and serialises as nulls.
type TempRange struct {
	Min float64
	Max float64
}

func emptyRange() TempRange {
	return TempRange{Min: math.Inf(1), Max: math.Inf(-1)}
}

// HasData reports whether at least one temperature widened the range.
func (r TempRange) HasData() bool {
	return r.Min <= r.Max
}

func (r TempRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	}{finite(r.Min), finite(r.Max)})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// DailyBucket aggregates all forecast entries of one local calendar day.
type DailyBucket struct {
	DayKey     int64      `json:"dayKey"`
	Dt         int64      `json:"dt"` // local midnight, as UTC epoch seconds
	Temp       TempRange  `json:"temp"`
	Conditions Conditions `json:"conditions"`
}

// Forecast is the aggregated view over one forecast response.
type Forecast struct {
	Hourly24 []HourlyPoint `json:"hourly24"`
	Daily5   []DailyBucket `json:"daily5"`
}

// Snapshot is everything one successful refresh produced.
type Snapshot struct {
	Current        *CurrentConditions `json:"current"`
	Hourly24       []HourlyPoint      `json:"hourly24"`
	Daily5         []DailyBucket      `json:"daily5"`
	LocationName   string             `json:"locationName"`
	TimezoneOffset int                `json:"timezoneOffset"`
	Units          Units              `json:"units"`
	FetchedAt      time.Time          `json:"fetchedAt,omitempty"`
}

func emptySnapshot(units Units) Snapshot {
	return Snapshot{
		Hourly24: []HourlyPoint{},
		Daily5:   []DailyBucket{},
		Units:    units,
	}
}

// State is the dashboard state exposed to the presentation layer.
type State struct {
	Weather  Snapshot     `json:"weather"`
	Advisory string       `json:"error,omitempty"`
	Dark     bool         `json:"isDark"`
	Units    Units        `json:"units"`
	Loading  bool         `json:"loading"`
	Location *Coordinates `json:"location,omitempty"`
}
