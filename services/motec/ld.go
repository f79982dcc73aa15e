// Package motec reads and writes MoTeC i2 log files: the binary .ld
// container holding channel metadata and samples, and the .ldx XML
// sidecar holding lap beacons.
package motec

import (
	"errors"
	"fmt"
	"io"
)

// ErrSampleWidth is returned when a sample vector does not have one value
// per channel.
var ErrSampleWidth = errors.New("sample vector width does not match channel count")

// Event is the event block referenced from the header.
type Event struct {
	Name    string
	Session string
	Comment string
}

// Channel is one sampled signal. Samples are stored as 32-bit floats.
type Channel struct {
	Name        string
	ShortName   string
	Unit        string
	FrequencyHz uint16
	Samples     []float32
}

// Log is an in-memory .ld file.
type Log struct {
	Date         string // dd/mm/yyyy
	Time         string // HH:MM:SS
	Driver       string
	Vehicle      string
	Venue        string
	ShortComment string
	Event        Event

	// Vehicle block extras, not set by the converter.
	VehicleWeight  uint32
	VehicleType    string
	VehicleComment string

	Channels []*Channel
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// AddChannel appends a channel definition. Channels must all be added
// before the first call to AddSamples.
func (l *Log) AddChannel(name, shortName, unit string, freqHz uint16) *Channel {
	ch := &Channel{
		Name:        name,
		ShortName:   shortName,
		Unit:        unit,
		FrequencyHz: freqHz,
	}
	l.Channels = append(l.Channels, ch)
	return ch
}

// AddSamples appends one value to every channel, in channel order.
func (l *Log) AddSamples(samples []float64) error {
	if len(samples) != len(l.Channels) {
		return fmt.Errorf("%w: got %d values for %d channels", ErrSampleWidth, len(samples), len(l.Channels))
	}
	for i, v := range samples {
		l.Channels[i].Samples = append(l.Channels[i].Samples, float32(v))
	}
	return nil
}

// NumSamples returns the sample count of the first channel.
func (l *Log) NumSamples() int {
	if len(l.Channels) == 0 {
		return 0
	}
	return len(l.Channels[0].Samples)
}

// Column returns the samples of channel i widened to float64.
func (l *Log) Column(i int) []float64 {
	src := l.Channels[i].Samples
	out := make([]float64, len(src))
	for j, v := range src {
		out[j] = float64(v)
	}
	return out
}

// Encode writes the complete .ld file to w.
func (l *Log) Encode(w io.Writer) error {
	lay := l.layout()
	buf := make([]byte, lay.size)

	l.putHeader(buf, lay)
	l.putEvent(buf[eventPtr:], lay)
	l.putVenue(buf[lay.venuePtr:], lay)
	l.putVehicle(buf[lay.vehiclePtr:])
	for i, ch := range l.Channels {
		putChannel(buf[lay.metaPtr(i):], ch, i, lay)
		putSamples(buf[lay.chanData[i]:], ch.Samples)
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write ld: %w", err)
	}
	return nil
}
