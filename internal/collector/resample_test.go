package collector

import (
	"math"
	"testing"

	"github.com/azielinski/smog-pipeline/internal/openmeteo"
)

func fptr(v float64) *float64 { return &v }

func TestResampleDailyMean(t *testing.T) {
	hourly := &openmeteo.HourlyAirQuality{
		Time: []string{"2020-01-01T00:00", "2020-01-01T06:00", "2020-01-01T12:00", "2020-01-01T18:00"},
		PM10: []*float64{fptr(10), fptr(20), fptr(30), fptr(40)},
		PM25: []*float64{fptr(5), fptr(10), fptr(15), fptr(20)},
	}

	days, err := resampleDaily(hourly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 daily bucket, got %d", len(days))
	}
	day := days["2020-01-01"]
	if day.pm10 != 25 {
		t.Fatalf("expected daily pm10 mean 25, got %v", day.pm10)
	}
	if day.pm25 != 12.5 {
		t.Fatalf("expected daily pm2.5 mean 12.5, got %v", day.pm25)
	}
}

func TestResampleDailySkipsNulls(t *testing.T) {
	hourly := &openmeteo.HourlyAirQuality{
		Time: []string{"2020-01-01T00:00", "2020-01-01T01:00", "2020-01-01T02:00"},
		PM10: []*float64{fptr(10), nil, fptr(20)},
		PM25: []*float64{nil, nil, nil},
	}

	days, err := resampleDaily(hourly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	day := days["2020-01-01"]
	if day.pm10 != 15 {
		t.Fatalf("expected null-skipping mean 15, got %v", day.pm10)
	}
	if !math.IsNaN(day.pm25) {
		t.Fatalf("expected NaN for a day with no valid pm2.5 samples, got %v", day.pm25)
	}
}

func TestResampleDailySplitsCalendarDays(t *testing.T) {
	hourly := &openmeteo.HourlyAirQuality{
		Time: []string{"2020-01-01T23:00", "2020-01-02T00:00"},
		PM10: []*float64{fptr(10), fptr(30)},
		PM25: []*float64{fptr(10), fptr(30)},
	}

	days, err := resampleDaily(hourly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 daily buckets, got %d", len(days))
	}
	if days["2020-01-01"].pm10 != 10 || days["2020-01-02"].pm10 != 30 {
		t.Fatalf("hours assigned to wrong buckets: %+v", days)
	}
}

func TestResampleDailyRejectsBadTimestamp(t *testing.T) {
	hourly := &openmeteo.HourlyAirQuality{
		Time: []string{"not-a-timestamp"},
		PM10: []*float64{fptr(10)},
		PM25: []*float64{fptr(10)},
	}

	if _, err := resampleDaily(hourly); err == nil {
		t.Fatal("expected an error for a malformed hourly timestamp")
	}
}

func TestMergeDailyIntersection(t *testing.T) {
	weather := &openmeteo.DailyWeather{
		Time:          []string{"2020-01-01", "2020-01-02", "2020-01-03"},
		Temperature:   []*float64{fptr(1), fptr(2), fptr(3)},
		WindSpeedMax:  []*float64{fptr(10), fptr(20), fptr(30)},
		Precipitation: []*float64{fptr(0), fptr(0.5), nil},
	}
	air := map[string]airDay{
		"2020-01-02": {pm10: 40, pm25: 25},
		"2020-01-03": {pm10: 50, pm25: 35},
		"2020-01-04": {pm10: 60, pm25: 45}, // not in the weather series
	}

	rows := mergeDaily("Radom", weather, air)

	if len(rows) != 2 {
		t.Fatalf("expected the 2-day intersection, got %d rows", len(rows))
	}
	if rows[0].Time != "2020-01-02" || rows[1].Time != "2020-01-03" {
		t.Fatalf("rows out of weather-series order: %+v", rows)
	}
	for _, row := range rows {
		if row.City != "Radom" {
			t.Fatalf("expected city tag on every row, got %q", row.City)
		}
	}
	if rows[0].PM10 != 40 || rows[0].Temperature != 2 {
		t.Fatalf("unexpected merged values: %+v", rows[0])
	}
	if !math.IsNaN(rows[1].Precipitation) {
		t.Fatalf("expected null precipitation to merge as NaN, got %v", rows[1].Precipitation)
	}
}
