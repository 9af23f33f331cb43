package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"

	"github.com/azielinski/smog-pipeline/internal/openmeteo"
)

// City is one entry of the collection target table.
type City struct {
	Name string  `validate:"required"`
	Lat  float64 `validate:"min=-90,max=90"`
	Lon  float64 `validate:"min=-180,max=180"`
}

// CollectorConfig holds everything the collector needs for a run.
type CollectorConfig struct {
	StartDate  string `validate:"required,datetime=2006-01-02"`
	EndDate    string `validate:"required,datetime=2006-01-02"`
	OutputFile string `validate:"required"`

	Cities []City `validate:"required,dive"`

	// Retry policy for upstream requests.
	MaxAttempts int           `validate:"min=1"`
	RetryWait   time.Duration `validate:"min=1ms"`

	// HTTPTimeout is the per-request network timeout.
	HTTPTimeout time.Duration `validate:"min=1s"`

	// Schedule re-runs the full collection on this interval when non-zero.
	// Zero means a single one-shot run.
	Schedule time.Duration
}

// AggregatorConfig holds the aggregator job settings.
type AggregatorConfig struct {
	InputFile string `validate:"required"`
	OutputDir string `validate:"required"`

	// CutoffYear restricts the analysis window. Fixed at 2016 by default,
	// independently of the collector's start date.
	CutoffYear int `validate:"min=1900"`
}

var validate = validator.New()

// defaultCities is the table of major Polish cities with coordinates.
var defaultCities = []City{
	{Name: "Warszawa", Lat: 52.23, Lon: 21.01},
	{Name: "Kraków", Lat: 50.06, Lon: 19.94},
	{Name: "Łódź", Lat: 51.75, Lon: 19.46},
	{Name: "Wrocław", Lat: 51.11, Lon: 17.03},
	{Name: "Poznań", Lat: 52.41, Lon: 16.92},
	{Name: "Gdańsk", Lat: 54.35, Lon: 18.65},
	{Name: "Szczecin", Lat: 53.43, Lon: 14.55},
	{Name: "Bydgoszcz", Lat: 53.12, Lon: 18.00},
	{Name: "Lublin", Lat: 51.25, Lon: 22.57},
	{Name: "Białystok", Lat: 53.13, Lon: 23.16},
	{Name: "Katowice", Lat: 50.26, Lon: 19.02},
	{Name: "Gdynia", Lat: 54.52, Lon: 18.53},
	{Name: "Częstochowa", Lat: 50.81, Lon: 19.12},
	{Name: "Radom", Lat: 51.40, Lon: 21.15},
	{Name: "Toruń", Lat: 53.01, Lon: 18.60},
	{Name: "Sosnowiec", Lat: 50.28, Lon: 19.10},
	{Name: "Kielce", Lat: 50.87, Lon: 20.63},
	{Name: "Rzeszów", Lat: 50.04, Lon: 21.99},
	{Name: "Gliwice", Lat: 50.29, Lon: 18.67},
	{Name: "Zabrze", Lat: 50.32, Lon: 18.79},
}

// DefaultOutputFile is the combined CSV produced by the collector and read
// by the aggregator.
const DefaultOutputFile = "dane_polska_2004_2026.csv"

// LoadCollector reads collector configuration from the environment with
// defaults matching the reference data set.
func LoadCollector() (*CollectorConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &CollectorConfig{
		StartDate:   getenvDefault("COLLECTOR_START_DATE", "2016-01-01"),
		EndDate:     getenvDefault("COLLECTOR_END_DATE", time.Now().Format("2006-01-02")),
		OutputFile:  getenvDefault("COLLECTOR_OUTPUT", DefaultOutputFile),
		MaxAttempts: getenvInt("COLLECTOR_RETRIES", openmeteo.DefaultMaxAttempts),
	}

	var err error
	if cfg.RetryWait, err = getenvDuration("COLLECTOR_RETRY_WAIT", openmeteo.DefaultWait); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("COLLECTOR_HTTP_TIMEOUT", 90*time.Second); err != nil {
		return nil, err
	}
	if cfg.Schedule, err = getenvDuration("COLLECTOR_SCHEDULE", 0); err != nil {
		return nil, err
	}

	cities, err := loadCities()
	if err != nil {
		return nil, err
	}
	cfg.Cities = cities

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid collector config: %w", err)
	}
	return cfg, nil
}

// LoadAggregator reads aggregator configuration from the environment.
func LoadAggregator() (*AggregatorConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AggregatorConfig{
		InputFile:  getenvDefault("AGGREGATOR_INPUT", DefaultOutputFile),
		OutputDir:  getenvDefault("AGGREGATOR_OUTPUT_DIR", "."),
		CutoffYear: getenvInt("AGGREGATOR_CUTOFF_YEAR", 2016),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid aggregator config: %w", err)
	}
	return cfg, nil
}

// loadCities parses COLLECTOR_CITIES ("Name:lat:lon" items separated by ";")
// or falls back to the built-in table. An entry without coordinates is
// resolved through the geocoding API when GEOCODER_API_KEY is set.
func loadCities() ([]City, error) {
	raw := strings.TrimSpace(os.Getenv("COLLECTOR_CITIES"))
	if raw == "" {
		return defaultCities, nil
	}

	geocoder.ApiKey = os.Getenv("GEOCODER_API_KEY")

	var cities []City
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		switch len(parts) {
		case 1:
			city, err := geocodeCity(parts[0])
			if err != nil {
				return nil, err
			}
			cities = append(cities, city)
		case 3:
			lat, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return nil, fmt.Errorf("city %q: invalid latitude %q", parts[0], parts[1])
			}
			lon, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("city %q: invalid longitude %q", parts[0], parts[2])
			}
			cities = append(cities, City{Name: parts[0], Lat: lat, Lon: lon})
		default:
			return nil, fmt.Errorf("invalid city entry %q; want Name or Name:lat:lon", entry)
		}
	}

	if len(cities) == 0 {
		return nil, fmt.Errorf("COLLECTOR_CITIES is set but contains no entries")
	}
	return cities, nil
}

func geocodeCity(name string) (City, error) {
	if geocoder.ApiKey == "" {
		return City{}, fmt.Errorf("city %q has no coordinates and GEOCODER_API_KEY is not set", name)
	}

	location, err := geocoder.Geocoding(geocoder.Address{City: name, Country: "Poland"})
	if err != nil {
		return City{}, fmt.Errorf("geocode city %q: %w", name, err)
	}
	return City{Name: name, Lat: location.Latitude, Lon: location.Longitude}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
