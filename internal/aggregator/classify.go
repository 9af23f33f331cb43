package aggregator

import "time"

// Scenario is the weather-regime label used by the scenario duel summary.
type Scenario string

const (
	// ScenarioColdCalm marks smog-accumulation conditions.
	ScenarioColdCalm Scenario = "cold & calm"
	// ScenarioColdWindy marks ventilation conditions despite the cold.
	ScenarioColdWindy Scenario = "cold & windy"
	// ScenarioSummer is the warm-weather background baseline.
	ScenarioSummer Scenario = "summer baseline"
	// ScenarioOther is everything else; treated as noise and excluded
	// from the final output.
	ScenarioOther Scenario = "other"
)

// ClassifyScenario labels a day by mean temperature (°C) and max wind speed
// (km/h). Rules are evaluated in order; the first match wins, so a warm windy
// day is still "summer baseline".
func ClassifyScenario(tempC, windKmh float64) Scenario {
	switch {
	case tempC < 5 && windKmh < 10:
		return ScenarioColdCalm
	case tempC < 5 && windKmh > 20:
		return ScenarioColdWindy
	case tempC > 15:
		return ScenarioSummer
	default:
		return ScenarioOther
	}
}

const (
	labelRain   = "Rain (Wet)"
	labelNoRain = "No Rain (Dry)"

	labelHeatingSeason = "Heating Season (Oct-Mar)"
	labelOffSeason     = "Off Season (Apr-Sep)"

	labelWeekend = "Weekend"
	labelWeekday = "Weekday"
)

// RainLabel flags a day as wet once the precipitation sum exceeds 0.1 mm.
func RainLabel(precipMM float64) string {
	if precipMM > 0.1 {
		return labelRain
	}
	return labelNoRain
}

// SeasonLabel flags the October-March residential heating season.
func SeasonLabel(month time.Month) string {
	if month >= time.October || month <= time.March {
		return labelHeatingSeason
	}
	return labelOffSeason
}

// DayTypeLabel flags Saturday and Sunday given a Monday-first day-of-week
// index (0=Monday .. 6=Sunday).
func DayTypeLabel(dayOfWeek int) string {
	if dayOfWeek >= 5 {
		return labelWeekend
	}
	return labelWeekday
}

// dayOfWeekMondayFirst converts Go's Sunday-first weekday to the 0=Monday
// convention used across the summaries.
func dayOfWeekMondayFirst(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// newYearWindow maps the Dec 29 - Jan 3 window to an ordering offset and a
// display label. Days outside the window return ok=false and are excluded
// from the New Year summary entirely.
func newYearWindow(month time.Month, day int) (offset int, label string, ok bool) {
	switch {
	case month == time.December && day == 29:
		return 1, "Dec 29", true
	case month == time.December && day == 30:
		return 2, "Dec 30", true
	case month == time.December && day == 31:
		return 3, "New Year's Eve", true
	case month == time.January && day == 1:
		return 4, "New Year's Day", true
	case month == time.January && day == 2:
		return 5, "Jan 2", true
	case month == time.January && day == 3:
		return 6, "Jan 3", true
	default:
		return 0, "", false
	}
}
