package controller

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"rpi-converter/models"
	"rpi-converter/services/ingest"
	"rpi-converter/services/motec"
	"rpi-converter/utils"
	"rpi-converter/views"
)

// ConversionOptions selects the files and event for one conversion.
type ConversionOptions struct {
	InputPath  string
	OutputPath string // empty: input with .csv replaced by .ld; may hold {driver}-style fields
	Event      models.EventMeta
	LapsCSV    string // optional lap report
	SummaryCSV string // optional channel summary report
}

// ConversionResult describes a finished conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	ExtraPath  string
	Rows       int
	Channels   []models.ChannelDef
	Laps       []models.LapMarker
	Summary    []models.ChannelSummary
}

// ConversionController drives the whole pipeline:
//
//	input CSV ──► CSVReader ──► SampleRow ──► motec.Log     ──► .ld
//	                                 │
//	                            LapDetector ──► motec.LogExtra ──► .ldx
//
// It runs synchronously; outputs are only written after every input row
// has been read and converted.
type ConversionController struct {
	cfg      *utils.ConverterConfig
	channels []models.ChannelDef
}

// NewConversionController validates cfg and resolves its channel list.
func NewConversionController(cfg *utils.ConverterConfig) (*ConversionController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("converter config: %w", err)
	}
	return &ConversionController{
		cfg:      cfg,
		channels: ChannelDefs(cfg),
	}, nil
}

// ChannelDefs turns the configured channel list into channel definitions,
// preserving order. A channel without a display name uses its column.
func ChannelDefs(cfg *utils.ConverterConfig) []models.ChannelDef {
	defs := make([]models.ChannelDef, len(cfg.Channels.List))
	for i, ch := range cfg.Channels.List {
		name := ch.Name
		if name == "" {
			name = ch.Column
		}
		defs[i] = models.ChannelDef{
			Column:      ch.Column,
			Name:        name,
			ShortName:   ch.ShortName,
			Unit:        ch.Unit,
			FrequencyHz: cfg.Channels.FrequencyHz,
			Decimals:    ch.Decimals,
		}
	}
	return defs
}

// Channels returns the channel definitions in log order.
func (cc *ConversionController) Channels() []models.ChannelDef {
	return append([]models.ChannelDef(nil), cc.channels...)
}

// Run performs one conversion. Path checks happen before any file is
// opened, so a rejected run leaves the filesystem untouched.
func (cc *ConversionController) Run(opts ConversionOptions) (*ConversionResult, error) {
	output := opts.OutputPath
	if output == "" {
		output = DefaultOutputPath(opts.InputPath)
	} else {
		output = opts.Event.ExpandTemplate(output)
	}
	if err := CheckPaths(opts.InputPath, output); err != nil {
		return nil, err
	}
	if err := CheckReportPaths(opts.InputPath, output, opts.LapsCSV, opts.SummaryCSV); err != nil {
		return nil, err
	}

	res := &ConversionResult{
		InputPath:  opts.InputPath,
		OutputPath: output,
		ExtraPath:  ExtraPath(output),
		Channels:   cc.Channels(),
	}

	log := motec.NewLog()
	ApplyEvent(opts.Event, log)
	for _, ch := range cc.channels {
		log.AddChannel(ch.Name, ch.ShortName, ch.Unit, uint16(ch.FrequencyHz))
	}
	logx := motec.NewLogExtra()
	laps := NewLapDetector()

	rows, err := cc.readInput(opts.InputPath, log, logx, laps)
	if err != nil {
		return nil, err
	}
	res.Rows = rows
	res.Laps = laps.Laps()
	utils.L().Info("read %d rows from %s  (channels=%d, laps=%d)", rows, opts.InputPath, len(cc.channels), len(res.Laps))

	if err := writeFile(res.OutputPath, log.Encode); err != nil {
		return nil, err
	}
	utils.L().Info("wrote log %s", res.OutputPath)

	if err := writeFile(res.ExtraPath, logx.Encode); err != nil {
		return nil, err
	}
	utils.L().Info("wrote lap markers %s", res.ExtraPath)

	res.Summary = Summarize(log, decimalsOf(cc.channels))
	for _, s := range res.Summary {
		utils.L().Debug("  %-16s %-4s min=%g max=%g mean=%g", s.Name, s.Unit, s.Min, s.Max, s.Mean)
	}
	if fastest, ok := laps.Fastest(); ok {
		utils.L().Info("fastest lap %d: %s", fastest.Lap, utils.FormatLapTime(fastest.LapTime))
	}

	if err := cc.writeReports(opts, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (cc *ConversionController) readInput(path string, log *motec.Log, logx *motec.LogExtra, laps *LapDetector) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	reader, err := ingest.NewCSVReader(bufio.NewReader(f), ingest.CSVReaderConfig{
		TimeColumn:   cc.cfg.CSV.TimeColumn,
		BeaconColumn: cc.cfg.CSV.BeaconColumn,
		BeaconValue:  cc.cfg.CSV.BeaconValue,
		Channels:     cc.cfg.Columns(),
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		if err := log.AddSamples(row.Values); err != nil {
			return 0, fmt.Errorf("%s row %d: %w", path, row.Line, err)
		}
		if lap, ok := laps.Observe(row); ok {
			logx.AddLap(lap.LapTime)
			utils.L().Debug("lap %d  %s  (row %d)", lap.Lap, utils.FormatLapTime(lap.LapTime), row.Line)
		}
	}
	return reader.Rows(), nil
}

func (cc *ConversionController) writeReports(opts ConversionOptions, res *ConversionResult) error {
	bufSize := cc.cfg.Report.BufferSizeKB * 1024
	header := cc.cfg.Report.WriteHeader

	if opts.LapsCSV != "" {
		recs := make([]*models.LapMarker, len(res.Laps))
		for i := range res.Laps {
			recs[i] = &res.Laps[i]
		}
		if err := views.ExportCSV(opts.LapsCSV, views.ReportLaps, recs, bufSize, header); err != nil {
			return fmt.Errorf("%s report: %w", views.ReportLaps, err)
		}
		utils.L().Info("wrote lap report %s", opts.LapsCSV)
	}

	if opts.SummaryCSV != "" {
		recs := make([]*models.ChannelSummary, len(res.Summary))
		for i := range res.Summary {
			recs[i] = &res.Summary[i]
		}
		if err := views.ExportCSV(opts.SummaryCSV, views.ReportChannelSummary, recs, bufSize, header); err != nil {
			return fmt.Errorf("%s report: %w", views.ReportChannelSummary, err)
		}
		utils.L().Info("wrote channel summary %s", opts.SummaryCSV)
	}
	return nil
}

// writeFile creates path and streams encode's output into it.
func writeFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := encode(bw); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func decimalsOf(defs []models.ChannelDef) []int {
	out := make([]int, len(defs))
	for i, d := range defs {
		out[i] = d.Decimals
	}
	return out
}
