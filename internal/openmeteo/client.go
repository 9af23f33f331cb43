package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

const (
	defaultArchiveURL    = "https://archive-api.open-meteo.com/v1/archive"
	defaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

	// Timezone used for all requests; the data set covers Polish cities.
	timezone = "Europe/Warsaw"
)

// ErrMissingHourly signals a well-formed air-quality response without the
// expected "hourly" block. This is not retried; the city is skipped.
var ErrMissingHourly = errors.New("response missing hourly data")

// DailyWeather holds the parallel arrays of the archive API "daily" block.
// Individual values may be null for days without a reading.
type DailyWeather struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m_mean"`
	WindSpeedMax  []*float64 `json:"wind_speed_10m_max"`
	Precipitation []*float64 `json:"precipitation_sum"`
}

// HourlyAirQuality holds the parallel arrays of the air-quality API "hourly"
// block.
type HourlyAirQuality struct {
	Time []string   `json:"time"`
	PM10 []*float64 `json:"pm10"`
	PM25 []*float64 `json:"pm2_5"`
}

type weatherResponse struct {
	Daily *DailyWeather `json:"daily"`
}

type airQualityResponse struct {
	Hourly *HourlyAirQuality `json:"hourly"`
}

// Client fetches historical weather and air-quality series from the
// Open-Meteo archive APIs. Each upstream gets its own circuit breaker so a
// failing air-quality API does not block weather fetches.
type Client struct {
	archiveURL    string
	airQualityURL string
	httpCfg       HTTPClientConfig
	weatherCB     *gobreaker.CircuitBreaker
	airCB         *gobreaker.CircuitBreaker
}

// NewClient creates a Client with the given HTTP client and retry policy.
func NewClient(httpClient *http.Client, retry RetryConfig, sleep SleepFunc) *Client {
	newBreaker := func(name string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		})
	}

	return &Client{
		archiveURL:    defaultArchiveURL,
		airQualityURL: defaultAirQualityURL,
		httpCfg: HTTPClientConfig{
			Client: httpClient,
			Retry:  retry,
			Sleep:  sleep,
		},
		weatherCB: newBreaker("openmeteo-archive"),
		airCB:     newBreaker("openmeteo-air-quality"),
	}
}

// SetBaseURLs overrides the upstream endpoints. Used by tests.
func (c *Client) SetBaseURLs(archiveURL, airQualityURL string) {
	c.archiveURL = archiveURL
	c.airQualityURL = airQualityURL
}

// FetchDailyWeather returns the daily weather series for the coordinates and
// date range. Exhausted retries surface as ErrNoData.
func (c *Client) FetchDailyWeather(ctx context.Context, lat, lon float64, startDate, endDate string) (*DailyWeather, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.2f", lat))
		values.Set("longitude", fmt.Sprintf("%.2f", lon))
		values.Set("start_date", startDate)
		values.Set("end_date", endDate)
		values.Set("daily", "temperature_2m_mean,wind_speed_10m_max,precipitation_sum")
		values.Set("timezone", timezone)

		u := fmt.Sprintf("%s?%s", c.archiveURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload weatherResponse
	if err := fetchJSON(ctx, c.httpCfg, c.weatherCB, buildRequest, &payload); err != nil {
		return nil, err
	}

	if payload.Daily == nil || len(payload.Daily.Time) == 0 {
		return nil, fmt.Errorf("%w: empty daily block", ErrNoData)
	}
	return payload.Daily, nil
}

// FetchHourlyAirQuality returns the hourly PM10/PM2.5 series for the
// coordinates and date range. A response without the "hourly" block yields
// ErrMissingHourly, which is distinct from transport failure and never
// retried.
func (c *Client) FetchHourlyAirQuality(ctx context.Context, lat, lon float64, startDate, endDate string) (*HourlyAirQuality, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.2f", lat))
		values.Set("longitude", fmt.Sprintf("%.2f", lon))
		values.Set("start_date", startDate)
		values.Set("end_date", endDate)
		values.Set("hourly", "pm10,pm2_5")
		values.Set("timezone", timezone)

		u := fmt.Sprintf("%s?%s", c.airQualityURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload airQualityResponse
	if err := fetchJSON(ctx, c.httpCfg, c.airCB, buildRequest, &payload); err != nil {
		return nil, err
	}

	if payload.Hourly == nil {
		return nil, ErrMissingHourly
	}
	return payload.Hourly, nil
}
