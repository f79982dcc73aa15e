package models

// ChannelDef defines one numeric log channel and the CSV column feeding it.
type ChannelDef struct {
	Column      string `json:"column"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Unit        string `json:"unit"`
	FrequencyHz int    `json:"frequency_hz"`
	Decimals    int    `json:"decimals"`
}

// SampleRow is one CSV row reduced to the configured channels.
type SampleRow struct {
	Line       int       // 1-based data row number, header excluded
	SystemTime float64   // seconds, from the time column
	Beacon     bool      // lap-timing point crossed on this row
	Values     []float64 // one per channel, in channel order
}
