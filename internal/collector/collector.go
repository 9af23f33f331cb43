// Package collector implements the batch job that fetches historical weather
// and air-quality observations for the configured cities and persists the
// merged daily data set to one CSV file.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/azielinski/smog-pipeline/internal/config"
	"github.com/azielinski/smog-pipeline/internal/dataset"
	"github.com/azielinski/smog-pipeline/internal/openmeteo"
)

const (
	// pauseBetweenFetches separates the weather and air-quality calls for
	// one city, to stay within the informal upstream rate limits.
	pauseBetweenFetches = 1 * time.Second

	// pauseBetweenCities follows every city, successful or not.
	pauseBetweenCities = 2 * time.Second
)

// Collector orchestrates the per-city fetch-resample-merge sequence. Cities
// are processed strictly sequentially; a failed city is skipped, never fatal.
type Collector struct {
	client *openmeteo.Client
	cfg    *config.CollectorConfig
	sleep  openmeteo.SleepFunc
}

// New creates a Collector. A nil sleep falls back to real context-aware
// sleeping; tests inject a no-op recorder.
func New(client *openmeteo.Client, cfg *config.CollectorConfig, sleep openmeteo.SleepFunc) *Collector {
	if sleep == nil {
		sleep = func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		}
	}
	return &Collector{client: client, cfg: cfg, sleep: sleep}
}

// Run executes one full collection over all configured cities and writes the
// combined CSV. With zero successful cities it reports overall failure and
// writes nothing; that is not an error at the process level.
func (c *Collector) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log.Printf("collector[%s]: starting extraction %s - %s for %d cities",
		runID, c.cfg.StartDate, c.cfg.EndDate, len(c.cfg.Cities))

	var all []dataset.Observation
	succeeded := 0

	for i, city := range c.cfg.Cities {
		observations, err := c.fetchCity(ctx, city)
		switch {
		case err == nil:
			all = append(all, observations...)
			succeeded++
			log.Printf("collector[%s]: [%d/%d] %s: success (%d records)",
				runID, i+1, len(c.cfg.Cities), city.Name, len(observations))
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			log.Printf("collector[%s]: [%d/%d] %s: %v",
				runID, i+1, len(c.cfg.Cities), city.Name, err)
		}

		if err := c.sleep(ctx, pauseBetweenCities); err != nil {
			return err
		}
	}

	if succeeded == 0 || len(all) == 0 {
		log.Printf("collector[%s]: failed to fetch data for any city; nothing written", runID)
		return nil
	}

	if err := dataset.WriteCSV(c.cfg.OutputFile, all); err != nil {
		return fmt.Errorf("persist combined data set: %w", err)
	}

	log.Printf("collector[%s]: completed, %d rows from %d/%d cities saved to %s",
		runID, len(all), succeeded, len(c.cfg.Cities), c.cfg.OutputFile)
	return nil
}

// fetchCity performs the two resilient fetches for one city with a polite
// pause in between, resamples the hourly air quality to daily means and
// inner-joins with the daily weather. Any failure aborts only this city.
func (c *Collector) fetchCity(ctx context.Context, city config.City) ([]dataset.Observation, error) {
	weather, err := c.client.FetchDailyWeather(ctx, city.Lat, city.Lon, c.cfg.StartDate, c.cfg.EndDate)
	if err != nil {
		return nil, fmt.Errorf("weather API error: %w", err)
	}

	if err := c.sleep(ctx, pauseBetweenFetches); err != nil {
		return nil, err
	}

	hourly, err := c.client.FetchHourlyAirQuality(ctx, city.Lat, city.Lon, c.cfg.StartDate, c.cfg.EndDate)
	if err != nil {
		if errors.Is(err, openmeteo.ErrMissingHourly) {
			return nil, fmt.Errorf("missing hourly data: %w", err)
		}
		return nil, fmt.Errorf("air quality API error: %w", err)
	}

	air, err := resampleDaily(hourly)
	if err != nil {
		return nil, fmt.Errorf("data processing error: %w", err)
	}

	return mergeDaily(city.Name, weather, air), nil
}
