// Package aggregator implements the batch job that turns the collector's
// combined CSV into the summary tables consumed by the BI front end.
package aggregator

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/azielinski/smog-pipeline/internal/config"
	"github.com/azielinski/smog-pipeline/internal/dataset"
)

// Aggregator computes the summary tables from one in-memory data set. Every
// summary is an independent read-only view; none depends on another's output.
type Aggregator struct {
	cfg *config.AggregatorConfig
}

// New creates an Aggregator.
func New(cfg *config.AggregatorConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Run loads the input CSV, derives the calendar and classification columns,
// restricts to the configured cutoff year onward and writes every summary
// CSV. A missing input file is fatal to the run.
func (a *Aggregator) Run() error {
	if _, err := os.Stat(a.cfg.InputFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("input file not found: %s (run the collector first)", a.cfg.InputFile)
		}
		return fmt.Errorf("stat input file: %w", err)
	}

	df, err := dataset.ReadCSV(a.cfg.InputFile)
	if err != nil {
		return err
	}

	df, err = prepare(df, a.cfg.CutoffYear)
	if err != nil {
		return err
	}
	log.Printf("aggregator: data loaded successfully: %d rows", df.Nrow())

	for _, s := range summaries {
		out := s.build(df)
		if out.Err != nil {
			return fmt.Errorf("build %s: %w", s.file, out.Err)
		}
		path := filepath.Join(a.cfg.OutputDir, s.file)
		if err := writeSummary(out, path); err != nil {
			return fmt.Errorf("write %s: %w", s.file, err)
		}
		log.Printf("aggregator: wrote %s (%d rows)", path, out.Nrow())
	}

	log.Printf("aggregator: all %d summary files generated", len(summaries))
	return nil
}

// prepare drops rows with missing metrics, derives the calendar and
// classification columns and applies the cutoff-year filter.
func prepare(df dataframe.DataFrame, cutoffYear int) (dataframe.DataFrame, error) {
	df = dropIncomplete(df)
	if df.Err != nil {
		return df, fmt.Errorf("drop incomplete rows: %w", df.Err)
	}

	df, err := derive(df)
	if err != nil {
		return df, err
	}

	df = df.Filter(dataframe.F{Colname: "Year", Comparator: series.GreaterEq, Comparando: cutoffYear})
	if df.Err != nil {
		return df, fmt.Errorf("filter cutoff year: %w", df.Err)
	}
	return df, nil
}

// dropIncomplete removes rows where any metric is NaN. Means over the
// remaining rows equal pandas-style NaN-skipping means, and NaN values never
// reach the integer binning.
func dropIncomplete(df dataframe.DataFrame) dataframe.DataFrame {
	notNaN := func(el series.Element) bool {
		return !math.IsNaN(el.Float())
	}
	for _, col := range []string{"temperature_2m_mean", "wind_speed_10m_max", "precipitation_sum", "pm10", "pm2_5"} {
		df = df.Filter(dataframe.F{Colname: col, Comparator: series.CompFunc, Comparando: notNaN})
		if df.Err != nil {
			return df
		}
	}
	return df
}

// derive adds every calendar and classification column the summaries group
// by. All labels come from the pure functions in classify.go.
func derive(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	times := df.Col("time").Records()
	temps := df.Col("temperature_2m_mean").Float()
	winds := df.Col("wind_speed_10m_max").Float()
	precips := df.Col("precipitation_sum").Float()
	if df.Err != nil {
		return df, fmt.Errorf("missing input column: %w", df.Err)
	}

	n := len(times)
	years := make([]int, n)
	months := make([]int, n)
	monthNames := make([]string, n)
	dayNames := make([]string, n)
	daysOfWeek := make([]int, n)
	dayTypes := make([]string, n)
	windBins := make([]int, n)
	tempBins := make([]int, n)
	rain := make([]string, n)
	scenarios := make([]string, n)
	seasons := make([]string, n)
	nyOffsets := make([]int, n)
	nyLabels := make([]string, n)

	for i, ts := range times {
		t, err := time.Parse("2006-01-02", ts)
		if err != nil {
			return df, fmt.Errorf("parse date %q: %w", ts, err)
		}

		years[i] = t.Year()
		months[i] = int(t.Month())
		monthNames[i] = t.Month().String()
		dayNames[i] = t.Weekday().String()
		daysOfWeek[i] = dayOfWeekMondayFirst(t.Weekday())
		dayTypes[i] = DayTypeLabel(daysOfWeek[i])

		windBins[i] = int(math.Round(winds[i]))
		tempBins[i] = int(math.Round(temps[i]))
		rain[i] = RainLabel(precips[i])
		scenarios[i] = string(ClassifyScenario(temps[i], winds[i]))
		seasons[i] = SeasonLabel(t.Month())

		nyOffsets[i], nyLabels[i], _ = newYearWindow(t.Month(), t.Day())
	}

	df = df.
		Mutate(series.New(years, series.Int, "Year")).
		Mutate(series.New(months, series.Int, "Month")).
		Mutate(series.New(monthNames, series.String, "Month_Name")).
		Mutate(series.New(dayNames, series.String, "Day_Name")).
		Mutate(series.New(daysOfWeek, series.Int, "Day_of_Week")).
		Mutate(series.New(dayTypes, series.String, "Day_Type")).
		Mutate(series.New(windBins, series.Int, "Wind_Bin")).
		Mutate(series.New(tempBins, series.Int, "Temp_Bin")).
		Mutate(series.New(rain, series.String, "Rain_Condition")).
		Mutate(series.New(scenarios, series.String, "Scenario")).
		Mutate(series.New(seasons, series.String, "Season")).
		Mutate(series.New(nyOffsets, series.Int, "Day_Offset")).
		Mutate(series.New(nyLabels, series.String, "NewYear_Label"))
	if df.Err != nil {
		return df, fmt.Errorf("derive columns: %w", df.Err)
	}
	return df, nil
}

// writeSummary persists one summary table as plain UTF-8 CSV with a header
// row and no index column.
func writeSummary(df dataframe.DataFrame, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := df.WriteCSV(f); err != nil {
		return err
	}
	return f.Close()
}
