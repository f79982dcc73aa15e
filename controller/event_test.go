package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpi-converter/services/motec"
	"rpi-converter/utils"
)

func TestBuildEventOverridesDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	def := utils.DefaultConfig().Event
	def.Venue = "Black Earth"

	ev, err := BuildEvent(def, EventOverrides{Driver: "Jane Doe", Session: "Race"}, now)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", ev.Driver)
	assert.Equal(t, "Race", ev.Session)
	assert.Equal(t, "MX-3", ev.Vehicle)
	assert.Equal(t, "Black Earth", ev.Venue)
	assert.True(t, now.Equal(ev.DateTime))
}

func TestBuildEventDateTime(t *testing.T) {
	ev, err := BuildEvent(utils.EventConfig{}, EventOverrides{DateTime: "2023-09-17T10:30:00Z"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 9, 17, 10, 30, 0, 0, time.UTC), ev.DateTime.UTC())

	_, err = BuildEvent(utils.EventConfig{}, EventOverrides{DateTime: "yesterday"}, time.Now())
	assert.Error(t, err)
}

func TestApplyEvent(t *testing.T) {
	log := motec.NewLog()
	ApplyEvent(testEvent(), log)

	assert.Equal(t, "01/06/2024", log.Date)
	assert.Equal(t, "14:05:09", log.Time)
	assert.Equal(t, "Tyler Stank", log.Driver)
	assert.Equal(t, "MX-3", log.Vehicle)
	assert.Equal(t, "Black Earth", log.Venue)
	assert.Equal(t, "shakedown", log.ShortComment)
	assert.Equal(t, motec.Event{Name: "Club Day", Session: "Practice", Comment: "dry"}, log.Event)
}
