package models

import (
	"regexp"
	"strings"
	"time"
)

// EventMeta describes the session a log was recorded in. It is built once
// per conversion and copied into the log header.
type EventMeta struct {
	Name         string    `json:"name"`
	Session      string    `json:"session"`
	Vehicle      string    `json:"vehicle"`
	Driver       string    `json:"driver"`
	Venue        string    `json:"venue"`
	Comment      string    `json:"comment"`
	ShortComment string    `json:"short_comment"`
	DateTime     time.Time `json:"datetime"`
}

var unsafeFilenameChars = regexp.MustCompile(`[^-\w.]`)

// sanitize makes a value safe to embed in a filename: spaces become
// underscores and anything outside [-\w.] is dropped.
func sanitize(v string) string {
	return unsafeFilenameChars.ReplaceAllString(strings.ReplaceAll(v, " ", "_"), "")
}

// TemplateVars returns the sanitized event fields keyed by name, for use
// in output path templates such as "{driver}_{venue}.ld".
func (e EventMeta) TemplateVars() map[string]string {
	vars := map[string]string{
		"name":         sanitize(e.Name),
		"session":      sanitize(e.Session),
		"vehicle":      sanitize(e.Vehicle),
		"driver":       sanitize(e.Driver),
		"venue":        sanitize(e.Venue),
		"comment":      sanitize(e.Comment),
		"shortcomment": sanitize(e.ShortComment),
		"datetime":     "",
	}
	if !e.DateTime.IsZero() {
		vars["datetime"] = e.DateTime.Format("20060102_150405")
	}
	return vars
}

// ExpandTemplate replaces every {key} in tmpl with the matching template
// variable. Unknown keys are left untouched.
func (e EventMeta) ExpandTemplate(tmpl string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	vars := e.TemplateVars()
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
