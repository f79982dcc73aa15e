package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"rpi-converter/controller"
	"rpi-converter/utils"
)

const defaultFreqHz = 10

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code:
// 0 on success, 1 when the conversion fails, 2 on a usage error.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && (args[0] == "inspect" || args[0] == "i") {
		return runInspect(args[1:], stdout, stderr)
	}
	return runConvert(args, stdout, stderr)
}

type convertFlags struct {
	output       string
	driver       string
	session      string
	vehicle      string
	venue        string
	event        string
	comment      string
	shortComment string
	datetime     string
	metric       bool
	freq         int
	configPath   string
	lapsCSV      string
	summaryCSV   string
	logFile      string
	logLevel     string
	verbose      bool
}

func newConvertFlagSet(f *convertFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("rpi-converter", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── Output ───────────────────────────────────────────────────────
	fs.StringVar(&f.output, "o", "", "name of MoTeC ld file output (default: input with .csv replaced by .ld)")
	fs.StringVar(&f.output, "output-filename", "", "same as -o")

	// ── Event metadata ───────────────────────────────────────────────
	fs.StringVar(&f.driver, "driver", "", "driver name (default from config: Tyler Stank)")
	fs.StringVar(&f.session, "session", "", "session e.g. Practice, Qualify, Race")
	fs.StringVar(&f.vehicle, "vehicle", "", "override name of vehicle (default from config: MX-3)")
	fs.StringVar(&f.venue, "venue", "", "venue/track name, MoTeC will not generate a track map without this")
	fs.StringVar(&f.event, "event", "", "event name")
	fs.StringVar(&f.comment, "comment", "", "event comment")
	fs.StringVar(&f.shortComment, "short-comment", "", "short comment shown in the header")
	fs.StringVar(&f.datetime, "datetime", "", "ISO 8601 session start (default: now)")

	// ── Accepted for compatibility ───────────────────────────────────
	fs.BoolVar(&f.metric, "metric", false, "use metric units (currently unsupported)")
	fs.IntVar(&f.freq, "freq", defaultFreqHz, "frequency to collect samples, currently ignored")

	// ── Converter ────────────────────────────────────────────────────
	fs.StringVar(&f.configPath, "config", "", "path to converter.yaml (default: built-in channel list)")
	fs.StringVar(&f.lapsCSV, "laps-csv", "", "optional lap report CSV path")
	fs.StringVar(&f.summaryCSV, "summary-csv", "", "optional channel summary CSV path")
	fs.StringVar(&f.logFile, "log", "", "optional log file path (stdout is always included)")
	fs.StringVar(&f.logLevel, "log-level", "info", "minimum log level: debug, info, warn, error")
	fs.BoolVar(&f.verbose, "v", false, "debug logging, same as -log-level debug")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Convert RPi data to MoTeC i2\n\n")
		fmt.Fprintf(stderr, "Usage: rpi-converter [options] <input.csv> [options]\n")
		fmt.Fprintf(stderr, "   or: rpi-converter inspect <file.ld>\n\nOptions:\n")
		fs.PrintDefaults()
	}
	return fs
}

func runConvert(args []string, stdout, stderr io.Writer) int {
	var f convertFlags
	fs := newConvertFlagSet(&f, stderr)

	// Options may appear on either side of the input filename.
	if err := fs.Parse(args); err != nil {
		return usageCode(err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	input := fs.Arg(0)
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return usageCode(err)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return 2
	}

	// ── Logger ───────────────────────────────────────────────────────
	level, err := utils.ParseLogLevel(f.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "-log-level: %v\n", err)
		return 2
	}
	if f.verbose {
		level = utils.DEBUG
	}
	logger := utils.InitLogger(level, f.logFile)
	logger.SetLevel(level)
	defer logger.Close()

	// ── Config ───────────────────────────────────────────────────────
	cfg := utils.DefaultConfig()
	if f.configPath != "" {
		if cfg, err = utils.LoadConverterConfig(f.configPath); err != nil {
			utils.L().Error("load converter config: %v", err)
			return 1
		}
	}
	if f.metric {
		utils.L().Warn("metric units are not supported yet, writing imperial units")
	}
	if f.freq != cfg.Channels.FrequencyHz {
		utils.L().Warn("-freq %d ignored, channels are written at %d Hz", f.freq, cfg.Channels.FrequencyHz)
	}

	// ── Event ────────────────────────────────────────────────────────
	ev, err := controller.BuildEvent(cfg.Event, controller.EventOverrides{
		Name:         f.event,
		Session:      f.session,
		Vehicle:      f.vehicle,
		Driver:       f.driver,
		Venue:        f.venue,
		Comment:      f.comment,
		ShortComment: f.shortComment,
		DateTime:     f.datetime,
	}, time.Now())
	if err != nil {
		utils.L().Error("%v", err)
		return 2
	}

	// ── Conversion ───────────────────────────────────────────────────
	cc, err := controller.NewConversionController(cfg)
	if err != nil {
		utils.L().Error("%v", err)
		return 1
	}
	res, err := cc.Run(controller.ConversionOptions{
		InputPath:  input,
		OutputPath: f.output,
		Event:      ev,
		LapsCSV:    f.lapsCSV,
		SummaryCSV: f.summaryCSV,
	})
	if err != nil {
		utils.L().Error("conversion failed: %v", err)
		return 1
	}

	fmt.Fprintf(stdout, "✓ %s -> %s (%d rows, %d channels, %d laps)\n",
		res.InputPath, res.OutputPath, res.Rows, len(res.Channels), len(res.Laps))
	return 0
}

func runInspect(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: rpi-converter inspect <file.ld>")
	}
	if err := fs.Parse(args); err != nil {
		return usageCode(err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	res, err := controller.Inspect(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	printInspect(stdout, res)
	return 0
}

// usageCode maps a flag parse error to an exit code; -h is not a failure.
func usageCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}

func printInspect(w io.Writer, res *controller.InspectResult) {
	l := res.Log
	fmt.Fprintf(w, "Date:     %s %s\n", l.Date, l.Time)
	fmt.Fprintf(w, "Driver:   %s\n", l.Driver)
	fmt.Fprintf(w, "Vehicle:  %s\n", l.Vehicle)
	fmt.Fprintf(w, "Venue:    %s\n", l.Venue)
	fmt.Fprintf(w, "Event:    %s / %s\n", l.Event.Name, l.Event.Session)
	if l.ShortComment != "" {
		fmt.Fprintf(w, "Comment:  %s\n", l.ShortComment)
	}
	fmt.Fprintf(w, "Samples:  %d\n\n", l.NumSamples())

	fmt.Fprintf(w, "%-20s %-6s %5s %8s %14s %14s %14s\n", "CHANNEL", "UNIT", "HZ", "SAMPLES", "MIN", "MAX", "MEAN")
	for i, s := range res.Summary {
		fmt.Fprintf(w, "%-20s %-6s %5d %8d %14.4f %14.4f %14.4f\n",
			s.Name, s.Unit, l.Channels[i].FrequencyHz, s.Samples, s.Min, s.Max, s.Mean)
	}

	if res.Laps == nil {
		return
	}
	fmt.Fprintf(w, "\nLaps:     %d\n", len(res.Laps))
	for i, t := range res.Laps {
		fmt.Fprintf(w, "  %3d  %s\n", i+1, utils.FormatLapTime(t))
	}
}
