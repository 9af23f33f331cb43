// Package dataset defines the merged daily observation row shared by the
// collector and the aggregator, and its CSV representation.
package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// utf8BOM prefixes the combined CSV so spreadsheet tools pick up the
// encoding of Polish city names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Observation is one merged daily record for a single city. Field order
// defines the CSV column order.
type Observation struct {
	Time          string  `dataframe:"time,string"`
	Temperature   float64 `dataframe:"temperature_2m_mean,float"`
	WindSpeedMax  float64 `dataframe:"wind_speed_10m_max,float"`
	Precipitation float64 `dataframe:"precipitation_sum,float"`
	PM10          float64 `dataframe:"pm10,float"`
	PM25          float64 `dataframe:"pm2_5,float"`
	City          string  `dataframe:"city,string"`
}

// columnTypes pins the CSV schema so gota does not have to guess.
var columnTypes = map[string]series.Type{
	"time":                series.String,
	"temperature_2m_mean": series.Float,
	"wind_speed_10m_max":  series.Float,
	"precipitation_sum":   series.Float,
	"pm10":                series.Float,
	"pm2_5":               series.Float,
	"city":                series.String,
}

// WriteCSV persists the observations to path as UTF-8 with BOM, header row,
// no index column.
func WriteCSV(path string, observations []Observation) error {
	df := dataframe.LoadStructs(observations)
	if df.Err != nil {
		return fmt.Errorf("build dataframe: %w", df.Err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	if err := df.WriteCSV(f); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

// ReadCSV loads a combined observations CSV written by WriteCSV. A leading
// BOM is tolerated and stripped.
func ReadCSV(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(stripBOM(f), dataframe.WithTypes(columnTypes))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", path, df.Err)
	}
	return df, nil
}

// stripBOM removes a leading UTF-8 byte order mark, if present.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}
