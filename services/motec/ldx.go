package motec

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"rpi-converter/utils"
)

// LogExtra is an in-memory .ldx sidecar: lap beacons plus the summary
// details i2 shows in its session list.
type LogExtra struct {
	laps []float64 // seconds
}

// NewLogExtra returns an empty sidecar.
func NewLogExtra() *LogExtra {
	return &LogExtra{}
}

// AddLap records a completed lap of the given duration in seconds.
func (x *LogExtra) AddLap(seconds float64) {
	x.laps = append(x.laps, seconds)
}

// Laps returns the recorded lap durations in order.
func (x *LogExtra) Laps() []float64 {
	return append([]float64(nil), x.laps...)
}

// FastestLap returns the 1-based number and duration of the quickest lap.
// ok is false when no lap has been recorded.
func (x *LogExtra) FastestLap() (lap int, seconds float64, ok bool) {
	for i, t := range x.laps {
		if !ok || t < seconds {
			lap, seconds, ok = i+1, t, true
		}
	}
	return lap, seconds, ok
}

type ldxFile struct {
	XMLName       xml.Name  `xml:"LDXFile"`
	Locale        string    `xml:"Locale,attr"`
	DefaultLocale string    `xml:"DefaultLocale,attr"`
	Version       string    `xml:"Version,attr"`
	Layers        ldxLayers `xml:"Layers"`
}

type ldxLayers struct {
	Layer   ldxLayer    `xml:"Layer"`
	Details []ldxString `xml:"Details>String"`
}

type ldxLayer struct {
	MarkerBlock ldxMarkerBlock `xml:"MarkerBlock"`
	RangeBlock  struct{}       `xml:"RangeBlock"`
}

type ldxMarkerBlock struct {
	MarkerGroup ldxMarkerGroup `xml:"MarkerGroup"`
}

type ldxMarkerGroup struct {
	Name    string      `xml:"Name,attr"`
	Index   int         `xml:"Index,attr"`
	Markers []ldxMarker `xml:"Marker"`
}

type ldxMarker struct {
	Version   int    `xml:"Version,attr"`
	ClassName string `xml:"ClassName,attr"`
	Name      string `xml:"Name,attr"`
	Flags     int    `xml:"Flags,attr"`
	Time      int64  `xml:"Time,attr"` // microseconds from log start
}

type ldxString struct {
	ID    string `xml:"Id,attr"`
	Value string `xml:"Value,attr"`
}

const (
	detailTotalLaps   = "Total Laps"
	detailFastestTime = "Fastest Time"
	detailFastestLap  = "Fastest Lap"
)

// Encode writes the sidecar XML. Beacon times are cumulative, so marker n
// sits at the sum of the first n lap durations.
func (x *LogExtra) Encode(w io.Writer) error {
	doc := ldxFile{
		Locale:        "English_United States.1252",
		DefaultLocale: "C",
		Version:       "1.6",
	}
	group := &doc.Layers.Layer.MarkerBlock.MarkerGroup
	group.Name = "Beacons"
	group.Index = 3

	var elapsed float64
	for i, t := range x.laps {
		elapsed += t
		group.Markers = append(group.Markers, ldxMarker{
			Version:   100,
			ClassName: "BCN",
			Name:      "Manual." + strconv.Itoa(i+1),
			Flags:     77,
			Time:      utils.SecondsToMicros(elapsed),
		})
	}

	doc.Layers.Details = append(doc.Layers.Details, ldxString{ID: detailTotalLaps, Value: strconv.Itoa(len(x.laps))})
	if lap, t, ok := x.FastestLap(); ok {
		doc.Layers.Details = append(doc.Layers.Details,
			ldxString{ID: detailFastestTime, Value: utils.FormatLapTime(t)},
			ldxString{ID: detailFastestLap, Value: strconv.Itoa(lap)},
		)
	}

	if _, err := io.WriteString(w, "<?xml version=\"1.0\"?>\n"); err != nil {
		return fmt.Errorf("write ldx: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write ldx: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write ldx: %w", err)
	}
	return nil
}

// DecodeExtra parses a sidecar and rebuilds lap durations from the
// cumulative beacon times, in document order.
func DecodeExtra(r io.Reader) (*LogExtra, error) {
	var doc ldxFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse ldx: %w", err)
	}
	markers := doc.Layers.Layer.MarkerBlock.MarkerGroup.Markers
	times := make([]int64, 0, len(markers))
	for _, m := range markers {
		if m.ClassName == "BCN" {
			times = append(times, m.Time)
		}
	}

	x := NewLogExtra()
	var prev int64
	for _, t := range times {
		x.AddLap(float64(t-prev) / 1e6)
		prev = t
	}
	return x, nil
}

// ReadExtraFile decodes the .ldx file at path.
func ReadExtraFile(path string) (*LogExtra, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeExtra(f)
}
