package present

import (
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// EmptyHint is shown while there is no forecast to display.
const EmptyHint = "Choose a city or allow location to see forecast."

// NowCard is the current-conditions card.
type NowCard struct {
	Location    string `json:"location"`
	LocalTime   string `json:"localTime"`
	LocalDate   string `json:"localDate"`
	Temp        string `json:"temp"`
	Description string `json:"description"`
	FeelsLike   string `json:"feelsLike"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
	WindDir     string `json:"windDirection"`
	Sunrise     string `json:"sunrise"`
	Sunset      string `json:"sunset"`
	Icon        string `json:"icon"`
	Background  string `json:"background"`
}

// HourlyCard is one slot of the next-24h strip.
type HourlyCard struct {
	Time  string `json:"time"`
	Icon  string `json:"icon"`
	Temp  string `json:"temp"`
	Label string `json:"label"`
}

// DailyCard is one day of the 5-day forecast.
type DailyCard struct {
	Weekday string `json:"weekday"`
	Date    string `json:"date"`
	Icon    string `json:"icon"`
	High    string `json:"high"`
	Low     string `json:"low"`
	Unit    string `json:"unit"`
	Label   string `json:"label"`
}

// Dashboard is what the front end renders.
type Dashboard struct {
	Theme    string       `json:"theme"`
	Units    string       `json:"units"`
	Advisory string       `json:"advisory,omitempty"`
	Loading  bool         `json:"loading"`
	Hint     string       `json:"hint,omitempty"`
	Now      *NowCard     `json:"now,omitempty"`
	Hourly   []HourlyCard `json:"hourly"`
	Daily    []DailyCard  `json:"daily"`
}

// Build renders the dashboard cards for st. Times are shown in the
// displayed location's offset.
func Build(st weather.State) Dashboard {
	snap := st.Weather
	units := st.Units
	tz := snap.TimezoneOffset

	d := Dashboard{
		Theme:    "light",
		Units:    string(units),
		Advisory: st.Advisory,
		Loading:  st.Loading,
		Hourly:   make([]HourlyCard, 0, len(snap.Hourly24)),
		Daily:    make([]DailyCard, 0, len(snap.Daily5)),
	}
	if st.Dark {
		d.Theme = "dark"
	}

	if snap.Current != nil {
		d.Now = buildNow(*snap.Current, snap.LocationName, units)
	}

	for _, h := range snap.Hourly24 {
		main := h.Conditions.Primary().Main
		d.Hourly = append(d.Hourly, HourlyCard{
			Time:  weather.LocalTime(h.Dt, tz).Format("15:04"),
			Icon:  IconFor(main),
			Temp:  FormatTemp(h.Temp, units),
			Label: main,
		})
	}

	for _, b := range snap.Daily5 {
		day := weather.LocalTime(b.Dt, tz)
		main := b.Conditions.Primary().Main
		card := DailyCard{
			Weekday: strings.ToUpper(day.Format("Mon")),
			Date:    day.Format("Jan 02"),
			Icon:    IconFor(main),
			High:    Placeholder,
			Low:     Placeholder,
			Unit:    units.TempSymbol(),
			Label:   main,
		}
		if b.Temp.HasData() {
			card.High = FormatDegrees(&b.Temp.Max)
			card.Low = FormatDegrees(&b.Temp.Min)
		}
		d.Daily = append(d.Daily, card)
	}

	if len(d.Hourly) == 0 && !st.Loading {
		d.Hint = EmptyHint
	}
	return d
}

func buildNow(c weather.CurrentConditions, name string, units weather.Units) *NowCard {
	primary := c.Conditions.Primary()
	local := weather.LocalTime(c.Dt, c.Timezone)

	card := &NowCard{
		Location:    name,
		LocalTime:   local.Format("15:04"),
		LocalDate:   local.Format("Mon, Jan 02"),
		Temp:        FormatTemp(c.Temp, units),
		Description: TitleCase(primary.Description),
		FeelsLike:   FormatDegrees(c.FeelsLike),
		Humidity:    FormatHumidity(c.Humidity),
		Wind:        FormatWind(c.WindSpeed, units),
		WindDir:     Placeholder,
		Sunrise:     clock(c.Sunrise, c.Timezone),
		Sunset:      clock(c.Sunset, c.Timezone),
		Icon:        IconFor(primary.Main),
		Background:  BackgroundClass(primary.Main),
	}
	if c.WindDeg != nil {
		card.WindDir = DegToCompass(*c.WindDeg)
	}
	return card
}

func clock(ts *int64, tz int) string {
	if ts == nil {
		return Placeholder
	}
	return weather.LocalTime(*ts, tz).Format("15:04")
}
