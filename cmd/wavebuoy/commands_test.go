package main

import (
	"testing"

	"github.com/san-kum/wavebuoy/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCurvesGroupsByDamping(t *testing.T) {
	scan := []storage.ScanRow{
		{Mass: 5e4, Damping: 2e5, PowerW: 3000},
		{Mass: 2e4, Damping: 2e5, PowerW: 1000},
		{Mass: 2e4, Damping: 1e5, PowerW: 500},
		{Mass: 5e4, Damping: 1e5, PowerW: 1500},
		{Mass: 2e4, Damping: 9e5, PowerW: 100},
	}

	curves, labels := scanCurves(scan)
	require.Len(t, curves, 2)
	require.Len(t, labels, 2)
	assert.Equal(t, []float64{0.5, 1.5}, curves[0])
	assert.Equal(t, []float64{1, 3}, curves[1])
	assert.Contains(t, labels[0], "c = 100 kN")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0123abcd", shortID("0123abcd-4567-89ef"))
	assert.Equal(t, "abc", shortID("abc"))
}
