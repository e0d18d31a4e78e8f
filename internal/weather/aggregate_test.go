package weather

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// entries builds 3-hourly entries from start with the given primary conditions.
func entries(start int64, mains ...string) []RawEntry {
	out := make([]RawEntry, 0, len(mains))
	for i, m := range mains {
		out = append(out, RawEntry{
			Dt:         start + int64(i)*10800,
			Temp:       ptr(float64(i)),
			Conditions: Conditions{{Main: m, Description: m}},
		})
	}
	return out
}

func TestAggregateEmpty(t *testing.T) {
	f := Aggregate(nil, 0)
	assert.NotNil(t, f.Hourly24)
	assert.NotNil(t, f.Daily5)
	assert.Empty(t, f.Hourly24)
	assert.Empty(t, f.Daily5)
}

func TestAggregateHourlyLength(t *testing.T) {
	for _, n := range []int{1, 5, 8, 9, 40} {
		mains := make([]string, n)
		for i := range mains {
			mains[i] = "Clear"
		}
		f := Aggregate(entries(0, mains...), 0)
		assert.Len(t, f.Hourly24, min(n, HourlySlots), "n=%d", n)
	}
}

func TestSevereConditionSticks(t *testing.T) {
	// Two UTC days; rain in the middle of day one.
	list := entries(0, "Clear", "Clear", "Rain", "Clear", "Clear", "Clear", "Clear", "Clear", "Clear", "Clouds")
	days := BucketDays(list, 0)

	require.Len(t, days, 2)
	assert.Equal(t, "Rain", days[0].Conditions.Primary().Main)
	assert.Equal(t, "Clear", days[1].Conditions.Primary().Main)
}

func TestLastSevereWins(t *testing.T) {
	list := entries(0, "Clouds", "Snow", "Clear", "Thunderstorm", "Clear")
	days := BucketDays(list, 0)

	require.Len(t, days, 1)
	assert.Equal(t, "Thunderstorm", days[0].Conditions.Primary().Main)
}

func TestSevereMatchIsCaseInsensitive(t *testing.T) {
	assert.True(t, IsSevere("RAIN"))
	assert.True(t, IsSevere("light snow"))
	assert.True(t, IsSevere("Thunderstorm"))
	assert.False(t, IsSevere("Drizzle"))
	assert.False(t, IsSevere(""))
}

func TestFirstEntryConditionsWithoutSevere(t *testing.T) {
	list := entries(0, "Clouds", "Clear", "Mist")
	days := BucketDays(list, 0)

	require.Len(t, days, 1)
	assert.Equal(t, "Clouds", days[0].Conditions.Primary().Main)
}

func TestTempRangeSkipsMissingValues(t *testing.T) {
	list := []RawEntry{
		{Dt: 0, Temp: nil},
		{Dt: 10800, Temp: ptr(math.NaN())},
		{Dt: 21600, Temp: ptr(4)},
		{Dt: 32400, Temp: ptr(-2.5)},
		{Dt: 43200, Temp: ptr(math.Inf(1))},
	}
	days := BucketDays(list, 0)

	require.Len(t, days, 1)
	assert.True(t, days[0].Temp.HasData())
	assert.Equal(t, -2.5, days[0].Temp.Min)
	assert.Equal(t, 4.0, days[0].Temp.Max)
}

func TestTempRangeWithoutNumericValues(t *testing.T) {
	days := BucketDays([]RawEntry{{Dt: 0}, {Dt: 10800}}, 0)

	require.Len(t, days, 1)
	assert.False(t, days[0].Temp.HasData())

	b, err := days[0].Temp.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"min":null,"max":null}`, string(b))
}

func TestBucketsUseLocationOffset(t *testing.T) {
	// 22:00 and 23:00 UTC on day 0 are already day 1 at UTC+3.
	list := []RawEntry{
		{Dt: 79200, Temp: ptr(1)},
		{Dt: 82800, Temp: ptr(2)},
	}

	utc := BucketDays(list, 0)
	require.Len(t, utc, 1)
	assert.Equal(t, int64(0), utc[0].DayKey)

	east := BucketDays(list, 3*3600)
	require.Len(t, east, 1)
	assert.Equal(t, int64(1), east[0].DayKey)
	assert.Equal(t, int64(86400-3*3600), east[0].Dt)

	// 01:00 UTC on day 1 is still day 0 at UTC-8.
	west := BucketDays([]RawEntry{{Dt: 86400 + 3600}}, -8*3600)
	require.Len(t, west, 1)
	assert.Equal(t, int64(0), west[0].DayKey)
	assert.Equal(t, int64(8*3600), west[0].Dt)
}

func TestDayKeyFloorsNegativeTimes(t *testing.T) {
	assert.Equal(t, int64(-1), DayKey(-1, 0))
	assert.Equal(t, int64(-1), DayKey(-86400, 0))
	assert.Equal(t, int64(-2), DayKey(-86401, 0))
	assert.Equal(t, int64(0), DayKey(0, 0))
	assert.Equal(t, int64(-1), DayKey(3600, -2*3600))
}

func TestDailyTruncatedToFive(t *testing.T) {
	// Seven days, one entry per day.
	var list []RawEntry
	for d := int64(0); d < 7; d++ {
		list = append(list, RawEntry{Dt: d*86400 + 43200, Temp: ptr(float64(d))})
	}

	f := Aggregate(list, 0)
	require.Len(t, f.Daily5, DailySlots)
	for i, b := range f.Daily5 {
		assert.Equal(t, int64(i), b.DayKey)
		assert.Equal(t, int64(i)*86400, b.Dt)
	}
}

func TestEveryEntryInExactlyOneBucket(t *testing.T) {
	tz := -7 * 3600
	mains := make([]string, 40)
	for i := range mains {
		mains[i] = "Clouds"
	}
	list := entries(1700000000, mains...)
	days := BucketDays(list, tz)

	seen := make(map[int64]bool)
	for i, b := range days {
		assert.False(t, seen[b.DayKey], "duplicate bucket %d", b.DayKey)
		seen[b.DayKey] = true
		if i > 0 {
			assert.Greater(t, b.DayKey, days[i-1].DayKey)
		}
	}
	for _, e := range list {
		assert.True(t, seen[DayKey(e.Dt, tz)], "entry %d has no bucket", e.Dt)
		start := DayStart(DayKey(e.Dt, tz), tz)
		assert.True(t, e.Dt >= start && e.Dt < start+86400)
	}
}

func TestAggregateDoesNotModifyInput(t *testing.T) {
	list := entries(0, "Clear", "Rain", "Snow")
	before := make([]RawEntry, len(list))
	copy(before, list)

	Aggregate(list, 3600)
	assert.Equal(t, before, list)
}

func TestLocalTime(t *testing.T) {
	lt := LocalTime(0, -8*3600)
	assert.Equal(t, 16, lt.Hour())
	assert.Equal(t, 31, lt.Day())
}
