package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTemplateVarsSanitize(t *testing.T) {
	ev := EventMeta{
		Name:     "Spring Sprint #2",
		Driver:   "Tyler A. Stank",
		Venue:    "Black Earth/Loop",
		Vehicle:  "MX-3",
		DateTime: time.Date(2024, 6, 1, 14, 5, 9, 0, time.UTC),
	}
	vars := ev.TemplateVars()

	assert.Equal(t, "Spring_Sprint_2", vars["name"])
	assert.Equal(t, "Tyler_A._Stank", vars["driver"])
	assert.Equal(t, "Black_EarthLoop", vars["venue"])
	assert.Equal(t, "MX-3", vars["vehicle"])
	assert.Equal(t, "", vars["session"])
	assert.Equal(t, "20240601_140509", vars["datetime"])
}

func TestExpandTemplate(t *testing.T) {
	ev := EventMeta{Driver: "Jane Doe", Venue: "Road America"}

	assert.Equal(t, "out/Jane_Doe_Road_America.ld", ev.ExpandTemplate("out/{driver}_{venue}.ld"))
	assert.Equal(t, "plain.ld", ev.ExpandTemplate("plain.ld"))
	assert.Equal(t, "{unknown}.ld", ev.ExpandTemplate("{unknown}.ld"))
}

func TestLapMarkerCSVRow(t *testing.T) {
	m := &LapMarker{Lap: 2, LapTime: 83.4561, SessionTime: 170.25}
	assert.Equal(t, []string{"2", "83.456", "1:23.456", "170.250"}, m.CSVRow())
	assert.Len(t, LapMarker{}.CSVHeader(), len(m.CSVRow()))
}

func TestChannelSummaryCSVRow(t *testing.T) {
	s := &ChannelSummary{Name: "Engine RPM", Unit: "rpm", Samples: 3, Min: 900, Max: 6500, Mean: 3200.5, Decimals: 0}
	assert.Equal(t, []string{"Engine RPM", "rpm", "3", "900", "6500", "3200.5"}, s.CSVRow())
	assert.Len(t, ChannelSummary{}.CSVHeader(), len(s.CSVRow()))
}
