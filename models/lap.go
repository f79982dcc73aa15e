package models

import "rpi-converter/utils"

// LapMarker records one crossing of the lap-timing point.
type LapMarker struct {
	Lap         int     `json:"lap"`          // 1-based
	LapTime     float64 `json:"lap_time"`     // seconds since the previous crossing
	SessionTime float64 `json:"session_time"` // seconds since the first sample
}

func (LapMarker) CSVHeader() []string {
	return []string{"lap", "lap_time_s", "lap_time", "session_time_s"}
}

func (m *LapMarker) CSVRow() []string {
	return []string{
		itoa(m.Lap),
		ftoa(m.LapTime, 3),
		utils.FormatLapTime(m.LapTime),
		ftoa(m.SessionTime, 3),
	}
}
