package controller

import (
	"fmt"
	"time"

	"rpi-converter/models"
	"rpi-converter/services/motec"
	"rpi-converter/utils"
)

// EventOverrides carries event fields given on the command line. Empty
// strings fall back to the configured defaults.
type EventOverrides struct {
	Name         string
	Session      string
	Vehicle      string
	Driver       string
	Venue        string
	Comment      string
	ShortComment string
	DateTime     string // ISO 8601; empty means now
}

// BuildEvent merges configured defaults with command-line overrides.
func BuildEvent(def utils.EventConfig, o EventOverrides, now time.Time) (models.EventMeta, error) {
	pick := func(override, fallback string) string {
		if override != "" {
			return override
		}
		return fallback
	}
	ev := models.EventMeta{
		Name:         pick(o.Name, def.Name),
		Session:      pick(o.Session, def.Session),
		Vehicle:      pick(o.Vehicle, def.Vehicle),
		Driver:       pick(o.Driver, def.Driver),
		Venue:        pick(o.Venue, def.Venue),
		Comment:      pick(o.Comment, def.Comment),
		ShortComment: pick(o.ShortComment, def.ShortComment),
		DateTime:     now,
	}
	if o.DateTime != "" {
		t, err := utils.ParseISODateTime(o.DateTime)
		if err != nil {
			return models.EventMeta{}, fmt.Errorf("event datetime: %w", err)
		}
		ev.DateTime = t
	}
	return ev, nil
}

// ApplyEvent copies the event metadata into the log header and event block.
func ApplyEvent(ev models.EventMeta, log *motec.Log) {
	log.Date = utils.MotecDate(ev.DateTime)
	log.Time = utils.MotecTime(ev.DateTime)
	log.Driver = ev.Driver
	log.Vehicle = ev.Vehicle
	log.Venue = ev.Venue
	log.ShortComment = ev.ShortComment
	log.Event = motec.Event{
		Name:    ev.Name,
		Session: ev.Session,
		Comment: ev.Comment,
	}
}
