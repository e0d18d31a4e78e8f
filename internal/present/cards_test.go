package present

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestBuildEmptyState(t *testing.T) {
	d := Build(weather.State{Units: weather.UnitsMetric})

	assert.Equal(t, "light", d.Theme)
	assert.Nil(t, d.Now)
	assert.NotNil(t, d.Hourly)
	assert.Empty(t, d.Daily)
	assert.Equal(t, EmptyHint, d.Hint)

	loading := Build(weather.State{Units: weather.UnitsMetric, Loading: true})
	assert.Empty(t, loading.Hint)
}

func TestBuildCards(t *testing.T) {
	tz := -8 * 3600
	entries := []weather.RawEntry{
		// 2023-11-14 10:00 and 13:00 local.
		{Dt: 1699984800, Temp: f(6.5), Conditions: weather.Conditions{{Main: "Rain"}}},
		{Dt: 1699995600, Temp: f(9.4), Conditions: weather.Conditions{{Main: "Clouds"}}},
		{Dt: 1700078400, Conditions: weather.Conditions{{Main: "Clear"}}},
	}
	fc := weather.Aggregate(entries, tz)

	sunrise, sunset := int64(1699975000), int64(1700008000)
	humidity := 81
	deg := 250.0
	cur := &weather.CurrentConditions{
		Dt:         1699984800,
		Temp:       f(7.5),
		FeelsLike:  f(5.1),
		Humidity:   &humidity,
		WindSpeed:  f(3.6),
		WindDeg:    &deg,
		Conditions: weather.Conditions{{Main: "Rain", Description: "light rain"}},
		Sunrise:    &sunrise,
		Sunset:     &sunset,
		Timezone:   tz,
	}

	st := weather.State{
		Weather: weather.Snapshot{
			Current:        cur,
			Hourly24:       fc.Hourly24,
			Daily5:         fc.Daily5,
			LocationName:   "Vancouver, CA",
			TimezoneOffset: tz,
			Units:          weather.UnitsMetric,
		},
		Dark:  true,
		Units: weather.UnitsMetric,
	}
	d := Build(st)

	assert.Equal(t, "dark", d.Theme)
	assert.Empty(t, d.Hint)

	require.NotNil(t, d.Now)
	assert.Equal(t, "Vancouver, CA", d.Now.Location)
	assert.Equal(t, "10:00", d.Now.LocalTime)
	assert.Equal(t, "Tue, Nov 14", d.Now.LocalDate)
	assert.Equal(t, "8°C", d.Now.Temp)
	assert.Equal(t, "5°", d.Now.FeelsLike)
	assert.Equal(t, "Light Rain", d.Now.Description)
	assert.Equal(t, "WSW", d.Now.WindDir)
	assert.Equal(t, "bg-rain", d.Now.Background)

	require.Len(t, d.Hourly, 3)
	assert.Equal(t, "10:00", d.Hourly[0].Time)
	assert.Equal(t, "13:00", d.Hourly[1].Time)
	assert.Equal(t, "rain", d.Hourly[0].Icon)
	assert.Equal(t, Placeholder, d.Hourly[2].Temp)

	require.Len(t, d.Daily, 2)
	assert.Equal(t, "TUE", d.Daily[0].Weekday)
	assert.Equal(t, "Nov 14", d.Daily[0].Date)
	assert.Equal(t, "9°", d.Daily[0].High)
	assert.Equal(t, "7°", d.Daily[0].Low)
	assert.Equal(t, "Rain", d.Daily[0].Label)
	assert.Equal(t, "WED", d.Daily[1].Weekday)
	assert.Equal(t, Placeholder, d.Daily[1].High)
	assert.Equal(t, Placeholder, d.Daily[1].Low)
}
