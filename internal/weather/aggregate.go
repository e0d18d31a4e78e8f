package weather

import (
	"math"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
)

const (
	secondsPerDay = 86400

	// HourlySlots is the number of 3-hour entries covering the next 24 hours.
	HourlySlots = 8
	// DailySlots is the number of days kept in the daily forecast.
	DailySlots = 5
)

// Aggregate splits a time-ascending forecast list into the next-24h slice and
// the first five local calendar days. The input is not sorted or modified.
func Aggregate(entries []RawEntry, tzOffset int) Forecast {
	n := min(len(entries), HourlySlots)
	hourly := make([]HourlyPoint, 0, n)
	for _, e := range entries[:n] {
		hourly = append(hourly, HourlyPoint{
			Dt:         e.Dt,
			Temp:       e.Temp,
			Conditions: e.Conditions,
		})
	}

	days := BucketDays(entries, tzOffset)
	if len(days) > DailySlots {
		days = days[:DailySlots]
	}

	return Forecast{
		Hourly24: hourly,
		Daily5:   days,
	}
}

// BucketDays groups entries by local calendar day, in first-seen order.
// A day's conditions start as its first entry's and are replaced by every
// later severe entry of the same day.
func BucketDays(entries []RawEntry, tzOffset int) []DailyBucket {
	var (
		order = make([]int64, 0, DailySlots+1)
		byDay = make(map[int64]*DailyBucket)
	)

	for _, e := range entries {
		key := DayKey(e.Dt, tzOffset)

		b, ok := byDay[key]
		if !ok {
			b = &DailyBucket{
				DayKey:     key,
				Dt:         DayStart(key, tzOffset),
				Temp:       emptyRange(),
				Conditions: e.Conditions,
			}
			byDay[key] = b
			order = append(order, key)
		}

		if t, ok := numeric(e.Temp); ok {
			b.Temp.Min = math.Min(b.Temp.Min, t)
			b.Temp.Max = math.Max(b.Temp.Max, t)
		}

		if IsSevere(e.Conditions.Primary().Main) {
			b.Conditions = e.Conditions
		}
	}

	out := make([]DailyBucket, 0, len(order))
	for _, k := range order {
		out = append(out, *byDay[k])
	}
	return out
}

// IsSevere reports whether a condition label is thunder, snow or rain.
func IsSevere(main string) bool {
	return common.HasAny(strings.ToLower(main), "thunder", "snow", "rain")
}

// DayKey returns the number of whole local days since the epoch.
func DayKey(dt int64, tzOffset int) int64 {
	return floorDiv(dt+int64(tzOffset), secondsPerDay)
}

// DayStart returns local midnight of the given day as UTC epoch seconds.
func DayStart(dayKey int64, tzOffset int) int64 {
	return dayKey*secondsPerDay - int64(tzOffset)
}

// LocalTime returns the wall clock at dt for a location with the given offset.
func LocalTime(dt int64, tzOffset int) time.Time {
	return time.Unix(dt, 0).In(time.FixedZone("", tzOffset))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func numeric(t *float64) (float64, bool) {
	if t == nil || math.IsNaN(*t) || math.IsInf(*t, 0) {
		return 0, false
	}
	return *t, true
}
