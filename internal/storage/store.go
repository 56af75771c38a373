package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sgostarter/libeasygo/pathutils"

	"github.com/san-kum/wavebuoy/internal/analysis"
	"github.com/san-kum/wavebuoy/internal/config"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	scanFile       = "scan.csv"
)

var (
	ErrRunNotFound  = errors.New("storage: run not found")
	ErrAmbiguousRun = errors.New("storage: run id prefix is ambiguous")
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return pathutils.MustDirExists(s.baseDir)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type Optimum struct {
	Mass            float64 `json:"mass_kg"`
	Damping         float64 `json:"damping_ns_per_m"`
	TotalMass       float64 `json:"total_mass_kg"`
	Score           float64 `json:"score"`
	PowerW          float64 `json:"power_w"`
	AnnualEnergyMWh float64 `json:"annual_energy_mwh"`
	Reason          string  `json:"reason"`
	Generations     int     `json:"generations,omitempty"`
	Evaluations     int     `json:"evaluations,omitempty"`
	Converged       bool    `json:"converged"`
	Polished        bool    `json:"polished"`
	Message         string  `json:"message,omitempty"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	DataPath  string             `json:"data_path"`
	Samples   int                `json:"samples"`
	Optimum   *Optimum           `json:"optimum,omitempty"`
	Peak      *analysis.Peak     `json:"peak_acceleration,omitempty"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Buoy      map[string]float64 `json:"buoy,omitempty"`
	Config    *config.Config     `json:"config,omitempty"`
}

// TrajectoryRow is one evaluation-grid sample handed to plotting.
type TrajectoryRow struct {
	Time         float64 `json:"t"`
	Displacement float64 `json:"z"`
	Velocity     float64 `json:"v"`
	Forcing      float64 `json:"forcing"`
	Acceleration float64 `json:"accel"`
}

type ScanRow struct {
	Mass    float64 `json:"mass_kg"`
	Damping float64 `json:"damping_ns_per_m"`
	PowerW  float64 `json:"power_w"`
}

// AnnualEnergyMWh converts mean power to energy over 8760 hours.
func AnnualEnergyMWh(powerW float64) float64 {
	return powerW * 8760 / 1e6
}

// Save writes a run directory and returns its id. meta.ID and
// meta.Timestamp are filled in when empty.
func (s *Store) Save(meta RunMetadata, rows []TrajectoryRow, scan []ScanRow) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	runDir := s.Dir(meta.ID)
	if err := pathutils.MustDirExists(runDir); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if len(rows) > 0 {
		if err := writeFile(filepath.Join(runDir, trajectoryFile), func(w io.Writer) error {
			return ExportCSV(w, rows)
		}); err != nil {
			return "", err
		}
	}

	if len(scan) > 0 {
		if err := writeFile(filepath.Join(runDir, scanFile), func(w io.Writer) error {
			return writeScan(w, scan)
		}); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns runs oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.readMeta(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

// Resolve expands a unique id prefix to the full run id.
func (s *Store) Resolve(prefix string) (string, error) {
	if _, err := os.Stat(filepath.Join(s.Dir(prefix), metadataFile)); err == nil {
		return prefix, nil
	}

	runs, err := s.List()
	if err != nil {
		return "", err
	}
	match := ""
	for _, r := range runs {
		if strings.HasPrefix(r.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguousRun, prefix)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	}
	return match, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}
	return s.readMeta(id)
}

func (s *Store) readMeta(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) ([]TrajectoryRow, error) {
	records, err := s.readCSV(runID, trajectoryFile)
	if err != nil {
		return nil, err
	}

	rows := make([]TrajectoryRow, 0, len(records))
	for _, rec := range records {
		v, ok := parseRow(rec, 5)
		if !ok {
			continue
		}
		rows = append(rows, TrajectoryRow{Time: v[0], Displacement: v[1], Velocity: v[2], Forcing: v[3], Acceleration: v[4]})
	}
	return rows, nil
}

func (s *Store) LoadScan(runID string) ([]ScanRow, error) {
	records, err := s.readCSV(runID, scanFile)
	if err != nil {
		return nil, err
	}

	rows := make([]ScanRow, 0, len(records))
	for _, rec := range records {
		v, ok := parseRow(rec, 3)
		if !ok {
			continue
		}
		rows = append(rows, ScanRow{Mass: v[0], Damping: v[1], PowerW: v[2]})
	}
	return rows, nil
}

// readCSV returns the data records without the header.
func (s *Store) readCSV(runID, name string) ([][]string, error) {
	id, err := s.Resolve(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.Dir(id), name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseRow(record []string, n int) ([]float64, bool) {
	if len(record) < n {
		return nil, false
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func writeScan(w io.Writer, scan []ScanRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"mass_kg", "damping_ns_per_m", "power_w"}); err != nil {
		return err
	}
	for _, r := range scan {
		if err := cw.Write([]string{formatFloat(r.Mass), formatFloat(r.Damping), formatFloat(r.PowerW)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
