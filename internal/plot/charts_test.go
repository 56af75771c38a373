package plot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/wavebuoy/internal/analysis"
	"github.com/san-kum/wavebuoy/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleRows(n int) []storage.TrajectoryRow {
	rows := make([]storage.TrajectoryRow, n)
	for i := range rows {
		t := float64(i) * 0.5
		rows[i] = storage.TrajectoryRow{
			Time:         t,
			Displacement: math.Sin(t),
			Velocity:     math.Cos(t),
			Forcing:      2e4 * math.Sin(t),
			Acceleration: -math.Sin(t),
		}
	}
	return rows
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestTrajectory(t *testing.T) {
	dir := t.TempDir()

	withPeak := filepath.Join(dir, "nested", "trajectory.png")
	peak := &analysis.Peak{Time: 7.85, Accel: 1, G: 1 / 9.81}
	require.NoError(t, Trajectory(withPeak, sampleRows(100), peak))
	assertPNG(t, withPeak)

	noPeak := filepath.Join(dir, "no_peak.png")
	require.NoError(t, Trajectory(noPeak, sampleRows(100), nil))
	assertPNG(t, noPeak)
}

func TestScanCurves(t *testing.T) {
	var scan []storage.ScanRow
	for _, c := range []float64{3e5, 1e5, 2e5} {
		for _, m := range []float64{8e4, 2e4, 5e4} {
			scan = append(scan, storage.ScanRow{Mass: m, Damping: c, PowerW: c / m * 100})
		}
	}

	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, ScanCurves(path, scan))
	assertPNG(t, path)
}

func TestNoData(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, Trajectory(filepath.Join(dir, "a.png"), nil, nil), ErrNoData)
	assert.ErrorIs(t, ScanCurves(filepath.Join(dir, "b.png"), nil), ErrNoData)
}
