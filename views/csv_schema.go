package views

import "rpi-converter/models"

// CSVSchema defines the column layout of each report the converter can
// emit next to the log. The models' CSVHeader methods produce the same
// lists; this map is what the writers use.

// ReportType identifies a report for schema lookups.
type ReportType int

const (
	ReportLaps ReportType = iota
	ReportChannelSummary
)

var reportNames = map[ReportType]string{
	ReportLaps:           "laps",
	ReportChannelSummary: "channel_summary",
}

func (r ReportType) String() string {
	if n, ok := reportNames[r]; ok {
		return n
	}
	return "unknown"
}

// SchemaColumns returns the canonical column list for a report.
var SchemaColumns = map[ReportType][]string{
	ReportLaps:           models.LapMarker{}.CSVHeader(),
	ReportChannelSummary: models.ChannelSummary{}.CSVHeader(),
}
