package controller

import (
	"errors"
	"fmt"
	"io/fs"

	"rpi-converter/models"
	"rpi-converter/services/motec"
)

// InspectResult is what the inspect command prints for one log.
type InspectResult struct {
	Log     *motec.Log
	Laps    []float64 // nil when the sidecar is absent
	Summary []models.ChannelSummary
}

// Inspect decodes an .ld file and, when present, its .ldx sidecar.
func Inspect(path string) (*InspectResult, error) {
	log, err := motec.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	res := &InspectResult{
		Log:     log,
		Summary: Summarize(log, nil),
	}

	extra, err := motec.ReadExtraFile(ExtraPath(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("inspect %s: %w", ExtraPath(path), err)
	default:
		res.Laps = extra.Laps()
	}
	return res, nil
}
