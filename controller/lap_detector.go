package controller

import "rpi-converter/models"

// LapDetector turns beacon rows into lap markers. The first row it sees
// starts the clock; every beacon row closes the running lap and starts the
// next one at that row's system time.
type LapDetector struct {
	started      bool
	sessionStart float64
	lapStart     float64
	laps         []models.LapMarker
}

// NewLapDetector returns a detector that has not seen any rows.
func NewLapDetector() *LapDetector {
	return &LapDetector{}
}

// Observe feeds one row. It returns the completed lap when the row carries
// a beacon.
func (d *LapDetector) Observe(row *models.SampleRow) (models.LapMarker, bool) {
	if !d.started {
		d.started = true
		d.sessionStart = row.SystemTime
		d.lapStart = row.SystemTime
	}
	if !row.Beacon {
		return models.LapMarker{}, false
	}

	m := models.LapMarker{
		Lap:         len(d.laps) + 1,
		LapTime:     row.SystemTime - d.lapStart,
		SessionTime: row.SystemTime - d.sessionStart,
	}
	d.laps = append(d.laps, m)
	d.lapStart = row.SystemTime
	return m, true
}

// Laps returns every completed lap in order.
func (d *LapDetector) Laps() []models.LapMarker {
	return append([]models.LapMarker(nil), d.laps...)
}

// Fastest returns the quickest completed lap.
func (d *LapDetector) Fastest() (models.LapMarker, bool) {
	var best models.LapMarker
	for i, m := range d.laps {
		if i == 0 || m.LapTime < best.LapTime {
			best = m
		}
	}
	return best, len(d.laps) > 0
}
