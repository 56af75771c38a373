package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/wavebuoy/internal/analysis"
	"github.com/san-kum/wavebuoy/internal/config"
)

func sampleRows() []TrajectoryRow {
	return []TrajectoryRow{
		{Time: 0, Displacement: 0, Velocity: 0, Forcing: 0, Acceleration: 0},
		{Time: 0.1, Displacement: 0.012345678, Velocity: -0.25, Forcing: 31500.5, Acceleration: 0.125},
	}
}

func TestStoreInitNested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	st := New(dir)
	require.NoError(t, st.Init())
	require.NoError(t, st.Init())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	meta := RunMetadata{
		Kind:     "optimize",
		DataPath: "waves.csv",
		Samples:  2,
		Optimum:  &Optimum{Mass: 1e5, Damping: 2e5, PowerW: 30000, AnnualEnergyMWh: AnnualEnergyMWh(30000)},
		Peak:     &analysis.Peak{Time: 120.5, Accel: -1.2, G: -1.2 / 9.81},
		Metrics:  map[string]float64{"rms_velocity": 0.4},
		Buoy:     map[string]float64{"natural_period": 6.5},
		Config:   config.DefaultConfig(),
	}

	runID, err := st.Save(meta, sampleRows(), []ScanRow{{Mass: 2e4, Damping: 1e5, PowerW: 1234.5}})
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	got, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, got.ID)
	assert.Equal(t, "optimize", got.Kind)
	assert.Equal(t, 2e5, got.Optimum.Damping)
	assert.InDelta(t, 262.8, got.Optimum.AnnualEnergyMWh, 1e-9)
	assert.Equal(t, 120.5, got.Peak.Time)
	assert.Equal(t, 0.4, got.Metrics["rms_velocity"])
	assert.Equal(t, 6.5, got.Buoy["natural_period"])
	assert.Equal(t, config.DefaultConfig().Objective, got.Config.Objective)

	rows, err := st.LoadTrajectory(runID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.InDelta(t, 0.012345678, rows[1].Displacement, 1e-12)
	assert.InDelta(t, 31500.5, rows[1].Forcing, 1e-6)

	scan, err := st.LoadScan(runID)
	require.NoError(t, err)
	assert.Equal(t, []ScanRow{{Mass: 2e4, Damping: 1e5, PowerW: 1234.5}}, scan)
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	now := time.Now()
	_, err = st.Save(RunMetadata{Kind: "simulate", Timestamp: now}, nil, nil)
	require.NoError(t, err)
	_, err = st.Save(RunMetadata{Kind: "scan", Timestamp: now.Add(-time.Hour)}, nil, nil)
	require.NoError(t, err)

	// stray entries are ignored
	require.NoError(t, os.MkdirAll(filepath.Join(st.baseDir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "scan", runs[0].Kind)
	assert.Equal(t, "simulate", runs[1].Kind)
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreResolve(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Save(RunMetadata{ID: "abc123"}, nil, nil)
	require.NoError(t, err)
	_, err = st.Save(RunMetadata{ID: "abd456"}, nil, nil)
	require.NoError(t, err)

	id, err := st.Resolve("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)

	_, err = st.Resolve("ab")
	assert.ErrorIs(t, err, ErrAmbiguousRun)

	_, err = st.Resolve("zzz")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreFileStructure(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Kind: "simulate"}, sampleRows(), nil)
	require.NoError(t, err)

	dir := st.Dir(runID)
	assert.FileExists(t, filepath.Join(dir, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, "trajectory.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "scan.csv"))

	_, err = st.LoadScan(runID)
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, RunMetadata{ID: "x", Kind: "simulate"}, sampleRows(), nil))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got.Steps)
	assert.Equal(t, "x", got.Run.ID)
	assert.Equal(t, sampleRows(), got.Trajectory)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, sampleRows()))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "time_s,z_m,v_m_per_s,forcing_n,accel_m_per_s2", string(lines[0]))
	assert.Equal(t, "0.1,0.012345678,-0.25,31500.5,0.125", string(lines[2]))
}
