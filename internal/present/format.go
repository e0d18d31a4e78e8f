package present

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Placeholder is shown for values the provider did not report.
const Placeholder = "—"

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// roundHalfUp rounds .5 towards +Inf, so -2.5 becomes -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func usable(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// FormatTemp renders a temperature such as "21°C".
func FormatTemp(t *float64, units weather.Units) string {
	if !usable(t) {
		return Placeholder
	}
	return fmt.Sprintf("%d°%s", roundHalfUp(*t), units.TempSymbol())
}

// FormatDegrees renders a temperature without the unit letter, e.g. "21°".
func FormatDegrees(t *float64) string {
	if !usable(t) {
		return Placeholder
	}
	return fmt.Sprintf("%d°", roundHalfUp(*t))
}

// FormatWind renders a wind speed such as "4 m/s" or "9 mph".
func FormatWind(speed *float64, units weather.Units) string {
	if !usable(speed) {
		return Placeholder
	}
	return fmt.Sprintf("%d %s", roundHalfUp(*speed), units.SpeedUnit())
}

// FormatHumidity renders a relative humidity such as "55%".
func FormatHumidity(h *int) string {
	if h == nil {
		return Placeholder
	}
	return fmt.Sprintf("%d%%", *h)
}

// DegToCompass maps a bearing in degrees to one of 16 compass points.
// Any finite value is accepted; it is normalised to [0, 360).
func DegToCompass(deg float64) string {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return Placeholder
	}
	n := math.Mod(math.Mod(deg, 360)+360, 360)
	idx := int(math.Floor(n/22.5+0.5)) % len(compassPoints)
	return compassPoints[idx]
}

// BackgroundClass picks the card background for a condition label.
func BackgroundClass(condition string) string {
	c := strings.ToLower(condition)
	switch {
	case strings.Contains(c, "clear"):
		return "bg-clear"
	case strings.Contains(c, "cloud"):
		return "bg-clouds"
	case common.HasAny(c, "rain", "drizzle"):
		return "bg-rain"
	case strings.Contains(c, "thunder"):
		return "bg-thunder"
	case strings.Contains(c, "snow"):
		return "bg-snow"
	case common.HasAny(c, "mist", "fog", "haze"):
		return "bg-mist"
	default:
		return "bg-default"
	}
}

// IconFor picks the weather icon name for a primary condition label.
func IconFor(main string) string {
	switch {
	case common.ContainsFold(main, "clear"):
		return "day-sunny"
	case common.ContainsFold(main, "cloud"):
		return "cloud"
	case common.ContainsFold(main, "rain"):
		return "rain"
	case common.ContainsFold(main, "snow"):
		return "snow"
	case common.ContainsFold(main, "thunder"):
		return "thunderstorm"
	default:
		return "day-sunny"
	}
}

// TitleCase capitalises every word, e.g. "light rain" becomes "Light Rain".
func TitleCase(s string) string {
	// A Caser is stateful; one per call.
	return cases.Title(language.Und).String(s)
}
