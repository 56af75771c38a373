package wave

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cast"
)

const (
	DefaultTimeColumn      = "Time_s"
	DefaultElevationColumn = "Probe1_Elevation_m"
)

// Columns names the CSV header fields holding time and elevation.
type Columns struct {
	Time      string `yaml:"time"`
	Elevation string `yaml:"elevation"`
}

func DefaultColumns() Columns {
	return Columns{Time: DefaultTimeColumn, Elevation: DefaultElevationColumn}
}

// LoadReport summarizes what ingestion kept and dropped.
type LoadReport struct {
	Rows    int
	Kept    int
	Dropped int
}

// LoadCSV reads a wave file from disk. A missing file or column is fatal;
// rows with an empty or unparsable value are dropped.
func LoadCSV(path string, cols Columns) (Series, LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, LoadReport{}, fmt.Errorf("open wave data: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, cols)
}

func ReadCSV(r io.Reader, cols Columns) (Series, LoadReport, error) {
	if cols.Time == "" || cols.Elevation == "" {
		cols = DefaultColumns()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Series{}, LoadReport{}, fmt.Errorf("read header: %w", err)
	}

	ti, ei := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case cols.Time:
			ti = i
		case cols.Elevation:
			ei = i
		}
	}
	if ti < 0 {
		return Series{}, LoadReport{}, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Time)
	}
	if ei < 0 {
		return Series{}, LoadReport{}, fmt.Errorf("%w: %q", ErrMissingColumn, cols.Elevation)
	}

	var report LoadReport
	samples := make([]Sample, 0, 1024)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Series{}, report, fmt.Errorf("read row %d: %w", report.Rows+1, err)
		}
		report.Rows++

		t, okT := parseCell(record, ti)
		e, okE := parseCell(record, ei)
		if !okT || !okE {
			report.Dropped++
			continue
		}
		samples = append(samples, Sample{Time: t, Elevation: e})
	}

	series, err := NewSeries(samples)
	if err != nil {
		return Series{}, report, err
	}
	report.Kept = series.Len()
	return series, report, nil
}

func parseCell(record []string, idx int) (float64, bool) {
	if idx >= len(record) {
		return 0, false
	}
	cell := strings.TrimSpace(record[idx])
	if cell == "" || strings.EqualFold(cell, "nan") {
		return 0, false
	}
	v, err := cast.ToFloat64E(cell)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
