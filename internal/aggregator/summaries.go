package aggregator

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// topCities bounds the smog-day ranking.
const topCities = 10

// summary couples an output filename with its builder. Builders are pure:
// they never modify the shared data set.
type summary struct {
	file  string
	build func(df dataframe.DataFrame) dataframe.DataFrame
}

var summaries = []summary{
	{file: "pbi_trend_yearly.csv", build: yearlyTrend},
	{file: "pbi_seasonality.csv", build: monthlySeasonality},
	{file: "pbi_ranking_cities.csv", build: topPollutedCities},
	{file: "pbi_page2_wind_curve.csv", build: windCurve},
	{file: "pbi_page2_temp_curve.csv", build: temperatureCurve},
	{file: "pbi_page2_rain_effect.csv", build: rainEffect},
	{file: "pbi_page2_scenarios_clean.csv", build: scenarioDuel},
	{file: "pbi_page3_weekend.csv", build: weekendEffect},
	{file: "pbi_page3_newyear_ready.csv", build: newYearEffect},
	{file: "pbi_page3_heating_season.csv", build: heatingSeason},
}

// meanPM10By groups the data set by the given key columns and averages PM10.
func meanPM10By(df dataframe.DataFrame, keys ...string) dataframe.DataFrame {
	out := df.GroupBy(keys...).Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_MEAN},
		[]string{"pm10"},
	)
	return out.Rename("Avg_PM10", "pm10_MEAN")
}

// yearlyTrend tracks whether air quality improves over the years.
func yearlyTrend(df dataframe.DataFrame) dataframe.DataFrame {
	return meanPM10By(df, "Year").
		Arrange(dataframe.Sort("Year")).
		Select([]string{"Year", "Avg_PM10"})
}

// monthlySeasonality exposes the winter/summer smog pattern.
func monthlySeasonality(df dataframe.DataFrame) dataframe.DataFrame {
	return meanPM10By(df, "Month", "Month_Name").
		Rename("Month_Num", "Month").
		Arrange(dataframe.Sort("Month_Num")).
		Select([]string{"Month_Num", "Month_Name", "Avg_PM10"})
}

// topPollutedCities ranks cities by days above the 50 µg/m³ PM10 threshold.
// Ties are broken by city name ascending so the ranking is deterministic.
func topPollutedCities(df dataframe.DataFrame) dataframe.DataFrame {
	smogDays := df.Filter(dataframe.F{Colname: "pm10", Comparator: series.Greater, Comparando: 50.0})

	out := smogDays.GroupBy("city").Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_COUNT},
		[]string{"pm10"},
	)
	out = out.Rename("Smog_Days", "pm10_COUNT").
		Arrange(dataframe.RevSort("Smog_Days"), dataframe.Sort("city"))
	if out.Err != nil {
		return out
	}

	if out.Nrow() > topCities {
		head := make([]int, topCities)
		for i := range head {
			head[i] = i
		}
		out = out.Subset(head)
	}
	return out.Select([]string{"city", "Smog_Days"})
}

// windCurve relates integer wind-speed bins to mean PM10; bins above 60 km/h
// are extreme outliers and excluded.
func windCurve(df dataframe.DataFrame) dataframe.DataFrame {
	return meanPM10By(df, "Wind_Bin").
		Filter(dataframe.F{Colname: "Wind_Bin", Comparator: series.LessEq, Comparando: 60}).
		Rename("Wind_Speed_kmh", "Wind_Bin").
		Arrange(dataframe.Sort("Wind_Speed_kmh")).
		Select([]string{"Wind_Speed_kmh", "Avg_PM10"})
}

// temperatureCurve relates integer temperature bins in [-20, 30] °C to mean
// PM10.
func temperatureCurve(df dataframe.DataFrame) dataframe.DataFrame {
	return meanPM10By(df, "Temp_Bin").
		Filter(dataframe.F{Colname: "Temp_Bin", Comparator: series.GreaterEq, Comparando: -20}).
		Filter(dataframe.F{Colname: "Temp_Bin", Comparator: series.LessEq, Comparando: 30}).
		Rename("Temperature_C", "Temp_Bin").
		Arrange(dataframe.Sort("Temperature_C")).
		Select([]string{"Temperature_C", "Avg_PM10"})
}

// rainEffect compares wet-deposition days against dry days.
func rainEffect(df dataframe.DataFrame) dataframe.DataFrame {
	return meanPM10By(df, "Rain_Condition").
		Arrange(dataframe.Sort("Rain_Condition")).
		Select([]string{"Rain_Condition", "Avg_PM10"})
}

// scenarioDuel compares the classified weather regimes; the "other" bucket
// is background noise and dropped.
func scenarioDuel(df dataframe.DataFrame) dataframe.DataFrame {
	clean := df.Filter(dataframe.F{Colname: "Scenario", Comparator: series.Neq, Comparando: string(ScenarioOther)})
	return meanPM10By(clean, "Scenario").
		Arrange(dataframe.Sort("Scenario")).
		Select([]string{"Scenario", "Avg_PM10"})
}

// weekendEffect averages PM10 per day of week and flags weekends.
func weekendEffect(df dataframe.DataFrame) dataframe.DataFrame {
	out := meanPM10By(df, "Day_of_Week", "Day_Name")
	if out.Err != nil {
		return out
	}

	daysOfWeek := out.Col("Day_of_Week").Float()
	dayTypes := make([]string, len(daysOfWeek))
	for i, d := range daysOfWeek {
		dayTypes[i] = DayTypeLabel(int(d))
	}

	return out.Mutate(series.New(dayTypes, series.String, "Day_Type")).
		Arrange(dataframe.Sort("Day_of_Week")).
		Select([]string{"Day_of_Week", "Day_Name", "Avg_PM10", "Day_Type"})
}

// newYearEffect isolates the Dec 29 - Jan 3 fireworks window; all other days
// are excluded before grouping.
func newYearEffect(df dataframe.DataFrame) dataframe.DataFrame {
	window := df.Filter(dataframe.F{Colname: "NewYear_Label", Comparator: series.Neq, Comparando: ""})
	return meanPM10By(window, "Day_Offset", "NewYear_Label").
		Arrange(dataframe.Sort("Day_Offset")).
		Select([]string{"Day_Offset", "NewYear_Label", "Avg_PM10"})
}

// heatingSeason compares the October-March heating season with the rest of
// the year.
func heatingSeason(df dataframe.DataFrame) dataframe.DataFrame {
	return meanPM10By(df, "Season").
		Arrange(dataframe.Sort("Season")).
		Select([]string{"Season", "Avg_PM10"})
}
