package collector

import (
	"fmt"
	"math"
	"time"

	"github.com/azielinski/smog-pipeline/internal/dataset"
	"github.com/azielinski/smog-pipeline/internal/openmeteo"
)

// hourlyTimeLayout is the timestamp format of the Open-Meteo hourly series.
const hourlyTimeLayout = "2006-01-02T15:04"

// airDay is the daily mean of the hourly PM metrics for one calendar day.
type airDay struct {
	pm10 float64
	pm25 float64
}

// meanAccumulator averages the non-null values of one daily bucket.
type meanAccumulator struct {
	sum   float64
	count int
}

func (a *meanAccumulator) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.count++
}

func (a *meanAccumulator) mean() float64 {
	if a.count == 0 {
		return math.NaN()
	}
	return a.sum / float64(a.count)
}

// resampleDaily converts the hourly air-quality series into daily
// arithmetic-mean buckets keyed by calendar day ("2006-01-02"). Null hourly
// values are skipped; a day with no valid samples for a metric gets NaN.
func resampleDaily(hourly *openmeteo.HourlyAirQuality) (map[string]airDay, error) {
	pm10 := make(map[string]*meanAccumulator)
	pm25 := make(map[string]*meanAccumulator)

	for i, ts := range hourly.Time {
		t, err := time.Parse(hourlyTimeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse hourly timestamp %q: %w", ts, err)
		}
		day := t.Format("2006-01-02")

		if pm10[day] == nil {
			pm10[day] = &meanAccumulator{}
			pm25[day] = &meanAccumulator{}
		}
		if i < len(hourly.PM10) {
			pm10[day].add(hourly.PM10[i])
		}
		if i < len(hourly.PM25) {
			pm25[day].add(hourly.PM25[i])
		}
	}

	days := make(map[string]airDay, len(pm10))
	for day, acc := range pm10 {
		days[day] = airDay{pm10: acc.mean(), pm25: pm25[day].mean()}
	}
	return days, nil
}

// mergeDaily inner-joins the daily weather series with the resampled
// air-quality days on exact date and tags every row with the city name.
// Days missing from either side are dropped; there is no fill.
func mergeDaily(city string, weather *openmeteo.DailyWeather, air map[string]airDay) []dataset.Observation {
	observations := make([]dataset.Observation, 0, len(weather.Time))

	for i, day := range weather.Time {
		ad, ok := air[day]
		if !ok {
			continue
		}

		observations = append(observations, dataset.Observation{
			Time:          day,
			Temperature:   floatAt(weather.Temperature, i),
			WindSpeedMax:  floatAt(weather.WindSpeedMax, i),
			Precipitation: floatAt(weather.Precipitation, i),
			PM10:          ad.pm10,
			PM25:          ad.pm25,
			City:          city,
		})
	}
	return observations
}

// floatAt dereferences a nullable series value, mapping null to NaN.
func floatAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}
