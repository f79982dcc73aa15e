package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpi-converter/models"
)

func rows(times []float64, beacons ...int) []*models.SampleRow {
	isBeacon := make(map[int]bool, len(beacons))
	for _, b := range beacons {
		isBeacon[b] = true
	}
	out := make([]*models.SampleRow, len(times))
	for i, ts := range times {
		out[i] = &models.SampleRow{Line: i + 1, SystemTime: ts, Beacon: isBeacon[i]}
	}
	return out
}

func TestLapDetectorFirstLapFromFirstRow(t *testing.T) {
	d := NewLapDetector()
	var got []models.LapMarker
	for _, r := range rows([]float64{1000.5, 1001, 1050, 1090.25, 1100, 1175.75}, 3, 5) {
		if m, ok := d.Observe(r); ok {
			got = append(got, m)
		}
	}

	require.Len(t, got, 2)
	assert.Equal(t, models.LapMarker{Lap: 1, LapTime: 89.75, SessionTime: 89.75}, got[0])
	assert.Equal(t, models.LapMarker{Lap: 2, LapTime: 85.5, SessionTime: 175.25}, got[1])
	assert.Equal(t, got, d.Laps())

	fastest, ok := d.Fastest()
	require.True(t, ok)
	assert.Equal(t, 2, fastest.Lap)
}

func TestLapDetectorBeaconOnFirstRow(t *testing.T) {
	d := NewLapDetector()
	m, ok := d.Observe(&models.SampleRow{SystemTime: 12, Beacon: true})
	require.True(t, ok)
	assert.Equal(t, 0.0, m.LapTime)

	m, ok = d.Observe(&models.SampleRow{SystemTime: 72, Beacon: true})
	require.True(t, ok)
	assert.Equal(t, 60.0, m.LapTime)
	assert.Equal(t, 2, m.Lap)
}

func TestLapDetectorNoBeacons(t *testing.T) {
	d := NewLapDetector()
	for _, r := range rows([]float64{1, 2, 3}) {
		_, ok := d.Observe(r)
		assert.False(t, ok)
	}
	assert.Empty(t, d.Laps())
	_, ok := d.Fastest()
	assert.False(t, ok)
}
