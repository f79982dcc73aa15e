package controller

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"rpi-converter/models"
	"rpi-converter/services/motec"
)

// Summarize computes min, max and mean for every channel in the log.
// decimals, when non-nil, sets the print precision per channel.
func Summarize(log *motec.Log, decimals []int) []models.ChannelSummary {
	out := make([]models.ChannelSummary, len(log.Channels))
	for i, ch := range log.Channels {
		s := models.ChannelSummary{
			Name:     ch.Name,
			Unit:     ch.Unit,
			Samples:  len(ch.Samples),
			Decimals: 3,
		}
		if i < len(decimals) {
			s.Decimals = decimals[i]
		}
		if s.Samples > 0 {
			col := log.Column(i)
			s.Min = floats.Min(col)
			s.Max = floats.Max(col)
			s.Mean = stat.Mean(col, nil)
		}
		out[i] = s
	}
	return out
}
