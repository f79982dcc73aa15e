package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ─── Event defaults ─────────────────────────────────────────────────────

// EventConfig seeds the event metadata written into the log header.
// Command-line flags override any non-empty value.
type EventConfig struct {
	Name         string `yaml:"name"`
	Session      string `yaml:"session"`
	Vehicle      string `yaml:"vehicle"`
	Driver       string `yaml:"driver"`
	Venue        string `yaml:"venue"`
	Comment      string `yaml:"comment"`
	ShortComment string `yaml:"short_comment"`
}

// ─── Input / channel configs ────────────────────────────────────────────

type CSVInputConfig struct {
	TimeColumn   string `yaml:"time_column"`
	BeaconColumn string `yaml:"beacon_column"`
	BeaconValue  string `yaml:"beacon_value"`
}

// ChannelConfig describes one CSV column that becomes a log channel.
type ChannelConfig struct {
	Column    string `yaml:"column"`
	Name      string `yaml:"name"`
	ShortName string `yaml:"short_name"`
	Unit      string `yaml:"unit"`
	Decimals  int    `yaml:"decimals"`
}

type ChannelsConfig struct {
	FrequencyHz int             `yaml:"frequency_hz"`
	List        []ChannelConfig `yaml:"list"`
}

type ReportConfig struct {
	BufferSizeKB int  `yaml:"buffer_size_kb"`
	WriteHeader  bool `yaml:"write_header"`
}

// ConverterConfig is the top-level structure for converter.yaml.
type ConverterConfig struct {
	Event    EventConfig    `yaml:"event"`
	CSV      CSVInputConfig `yaml:"csv"`
	Channels ChannelsConfig `yaml:"channels"`
	Report   ReportConfig   `yaml:"report"`
}

// Columns returns the CSV column of every configured channel, in order.
func (c *ConverterConfig) Columns() []string {
	cols := make([]string, len(c.Channels.List))
	for i, ch := range c.Channels.List {
		cols[i] = ch.Column
	}
	return cols
}

// DefaultConfig returns the built-in configuration: the data logger's
// numeric channels in header order, sampled at 10 Hz, imperial units.
func DefaultConfig() *ConverterConfig {
	return &ConverterConfig{
		Event: EventConfig{
			Driver:  "Tyler Stank",
			Vehicle: "MX-3",
		},
		CSV: CSVInputConfig{
			TimeColumn:   "system_time",
			BeaconColumn: "beacon",
			BeaconValue:  "1",
		},
		Channels: ChannelsConfig{
			FrequencyHz: 10,
			List: []ChannelConfig{
				{Column: "system_time", Name: "System Time", ShortName: "SysTime", Unit: "s", Decimals: 3},
				{Column: "loop_time", Name: "Loop Time", ShortName: "LoopT", Unit: "s", Decimals: 3},
				{Column: "iteration_time", Name: "Iteration Time", ShortName: "IterT", Unit: "s", Decimals: 3},
				{Column: "rpm", Name: "Engine RPM", ShortName: "RPM", Unit: "rpm", Decimals: 0},
				{Column: "oil_press", Name: "Oil Pressure", ShortName: "OilP", Unit: "psi", Decimals: 1},
				{Column: "oil_temp", Name: "Oil Temp", ShortName: "OilT", Unit: "F", Decimals: 1},
				{Column: "water_press", Name: "Water Pressure", ShortName: "WatP", Unit: "psi", Decimals: 1},
				{Column: "water_temp", Name: "Water Temp", ShortName: "WatT", Unit: "F", Decimals: 1},
				{Column: "volts", Name: "Battery Volts", ShortName: "Volts", Unit: "V", Decimals: 2},
				{Column: "fuel", Name: "Fuel Level", ShortName: "Fuel", Unit: "%", Decimals: 1},
				{Column: "rpi_cpu_temp", Name: "Logger CPU Temp", ShortName: "CPUT", Unit: "C", Decimals: 1},
				{Column: "gforce_x", Name: "G Force X", ShortName: "GX", Unit: "G", Decimals: 3},
				{Column: "gforce_y", Name: "G Force Y", ShortName: "GY", Unit: "G", Decimals: 3},
				{Column: "gforce_z", Name: "G Force Z", ShortName: "GZ", Unit: "G", Decimals: 3},
				{Column: "lat", Name: "GPS Latitude", ShortName: "Lat", Unit: "deg", Decimals: 6},
				{Column: "lon", Name: "GPS Longitude", ShortName: "Lon", Unit: "deg", Decimals: 6},
				{Column: "alt", Name: "GPS Altitude", ShortName: "Alt", Unit: "ft", Decimals: 1},
				{Column: "mph", Name: "Ground Speed", ShortName: "Speed", Unit: "mph", Decimals: 1},
			},
		},
		Report: ReportConfig{
			BufferSizeKB: 64,
			WriteHeader:  true,
		},
	}
}

// ─── Loaders ────────────────────────────────────────────────────────────

// LoadConverterConfig reads converter.yaml on top of DefaultConfig.
// Sections left out of the file keep their defaults; a channel list in
// the file replaces the default list entirely.
func LoadConverterConfig(path string) (*ConverterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read converter config: %w", err)
	}
	cfg := DefaultConfig()
	cfg.Channels.List = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse converter config: %w", err)
	}
	if len(cfg.Channels.List) == 0 {
		cfg.Channels.List = DefaultConfig().Channels.List
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("converter config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the converter cannot run with.
func (c *ConverterConfig) Validate() error {
	if c.CSV.TimeColumn == "" {
		return fmt.Errorf("csv.time_column is empty")
	}
	if c.CSV.BeaconColumn == "" {
		return fmt.Errorf("csv.beacon_column is empty")
	}
	if c.Channels.FrequencyHz <= 0 || c.Channels.FrequencyHz > 0xffff {
		return fmt.Errorf("channels.frequency_hz %d out of range", c.Channels.FrequencyHz)
	}
	seen := make(map[string]bool, len(c.Channels.List))
	for i, ch := range c.Channels.List {
		if ch.Column == "" {
			return fmt.Errorf("channels.list[%d]: column is empty", i)
		}
		if seen[ch.Column] {
			return fmt.Errorf("channels.list[%d]: duplicate column %q", i, ch.Column)
		}
		seen[ch.Column] = true
	}
	return nil
}
