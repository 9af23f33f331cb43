package aggregator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/azielinski/smog-pipeline/internal/config"
	"github.com/azielinski/smog-pipeline/internal/dataset"
)

func TestRunGeneratesAllSummaries(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "combined.csv")

	rows := []dataset.Observation{
		obs("2015-06-01", "Radom", 20, 5, 0, 70), // pre-cutoff, must not leak
		obs("2016-01-01", "Radom", 0, 5, 0, 120),
		obs("2016-01-02", "Radom", -2, 25, 1.5, 35),
		obs("2016-07-01", "Kielce", 22, 10, 0, 15),
		obs("2016-12-31", "Kielce", 1, 3, 0, 95),
	}
	if err := dataset.WriteCSV(input, rows); err != nil {
		t.Fatalf("write input: %v", err)
	}

	cfg := &config.AggregatorConfig{InputFile: input, OutputDir: dir, CutoffYear: 2016}
	if err := New(cfg).Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range summaries {
		if _, err := os.Stat(filepath.Join(dir, s.file)); err != nil {
			t.Errorf("summary %s not written: %v", s.file, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "pbi_trend_yearly.csv"))
	if err != nil {
		t.Fatalf("read yearly trend: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if lines[0] != "Year,Avg_PM10" {
		t.Fatalf("unexpected yearly trend header: %q", lines[0])
	}
	// Only 2016 survives the cutoff: one data row.
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "2016,") {
		t.Fatalf("unexpected yearly trend rows: %v", lines[1:])
	}
}

func TestRunFailsOnMissingInput(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.AggregatorConfig{
		InputFile:  filepath.Join(dir, "does-not-exist.csv"),
		OutputDir:  dir,
		CutoffYear: 2016,
	}

	err := New(cfg).Run()
	if err == nil {
		t.Fatal("expected a fatal error for the missing input file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected a clear file-not-found diagnostic, got %v", err)
	}
}
