package controller

import (
	"encoding/csv"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpi-converter/models"
	"rpi-converter/services/motec"
	"rpi-converter/utils"
)

// sessionCSV builds a data-logger CSV with every default channel plus the
// non-numeric columns the logger also records.
func sessionCSV(t *testing.T, dir string) string {
	t.Helper()
	header := append([]string{"gps_utc_date", "gps_utc_time", "beacon"}, utils.DefaultConfig().Columns()...)
	header = append(header, "track")

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	require.NoError(t, w.Write(header))

	times := []float64{1000, 1000.1, 1000.2, 1060.2, 1060.3, 1115.7}
	beacons := map[int]bool{3: true, 5: true}
	for i, ts := range times {
		rec := []string{"2024-06-01", "14:05:09", "0"}
		if beacons[i] {
			rec[2] = "1"
		}
		for j, col := range utils.DefaultConfig().Columns() {
			switch {
			case col == "system_time":
				rec = append(rec, strconv.FormatFloat(ts, 'f', -1, 64))
			case col == "oil_press" && i == 1:
				rec = append(rec, "")
			default:
				rec = append(rec, strconv.Itoa(i*100+j))
			}
		}
		rec = append(rec, "N")
		require.NoError(t, w.Write(rec))
	}
	w.Flush()
	require.NoError(t, w.Error())

	path := filepath.Join(dir, "session.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}

func testEvent() models.EventMeta {
	return models.EventMeta{
		Name:         "Club Day",
		Session:      "Practice",
		Vehicle:      "MX-3",
		Driver:       "Tyler Stank",
		Venue:        "Black Earth",
		Comment:      "dry",
		ShortComment: "shakedown",
		DateTime:     time.Date(2024, 6, 1, 14, 5, 9, 0, time.UTC),
	}
}

func newController(t *testing.T) *ConversionController {
	t.Helper()
	cc, err := NewConversionController(utils.DefaultConfig())
	require.NoError(t, err)
	return cc
}

func TestConversionWritesLogAndExtra(t *testing.T) {
	dir := t.TempDir()
	input := sessionCSV(t, dir)

	res, err := newController(t).Run(ConversionOptions{InputPath: input, Event: testEvent()})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "session.ld"), res.OutputPath)
	assert.Equal(t, filepath.Join(dir, "session.ldx"), res.ExtraPath)
	assert.Equal(t, 6, res.Rows)

	log, err := motec.ReadFile(res.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, "01/06/2024", log.Date)
	assert.Equal(t, "14:05:09", log.Time)
	assert.Equal(t, "Tyler Stank", log.Driver)
	assert.Equal(t, "MX-3", log.Vehicle)
	assert.Equal(t, "Black Earth", log.Venue)
	assert.Equal(t, "shakedown", log.ShortComment)
	assert.Equal(t, motec.Event{Name: "Club Day", Session: "Practice", Comment: "dry"}, log.Event)

	// Channel set and order follow the configured list, not the CSV header.
	var names []string
	for _, ch := range log.Channels {
		names = append(names, ch.Name)
		assert.Equal(t, uint16(10), ch.FrequencyHz)
	}
	var want []string
	for _, ch := range utils.DefaultConfig().Channels.List {
		want = append(want, ch.Name)
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("channel order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 6, log.NumSamples())
	assert.InDelta(t, 1060.2, log.Column(0)[3], 1e-3)
	oilPress := log.Column(4)
	assert.Equal(t, 0.0, oilPress[1], "blank cell must become 0.0")
	assert.Equal(t, 4.0, oilPress[0])
	assert.Equal(t, 203.0, log.Column(3)[2])

	extra, err := motec.ReadExtraFile(res.ExtraPath)
	require.NoError(t, err)
	require.Len(t, extra.Laps(), 2)
	assert.InDelta(t, 60.2, extra.Laps()[0], 1e-6, "first lap runs from the first row")
	assert.InDelta(t, 55.5, extra.Laps()[1], 1e-6)

	require.Len(t, res.Laps, 2)
	assert.InDelta(t, 115.7, res.Laps[1].SessionTime, 1e-9)
	require.Len(t, res.Summary, len(want))
	assert.Equal(t, 6, res.Summary[0].Samples)
}

func TestConversionRefusesSameFilename(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "session")
	require.NoError(t, os.WriteFile(input, []byte("system_time,beacon\n1,0\n"), 0644))

	_, err := newController(t).Run(ConversionOptions{InputPath: input, Event: testEvent()})
	require.ErrorIs(t, err, ErrSameFilename)

	_, err = newController(t).Run(ConversionOptions{InputPath: input, OutputPath: input, Event: testEvent()})
	require.ErrorIs(t, err, ErrSameFilename)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no output may be created")
	data, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, "system_time,beacon\n1,0\n", string(data))
}

func TestConversionRefusesReportOverInput(t *testing.T) {
	dir := t.TempDir()
	input := sessionCSV(t, dir)
	before, err := os.ReadFile(input)
	require.NoError(t, err)

	for _, opts := range []ConversionOptions{
		{InputPath: input, Event: testEvent(), LapsCSV: input},
		{InputPath: input, Event: testEvent(), SummaryCSV: input},
		{InputPath: input, Event: testEvent(), LapsCSV: filepath.Join(dir, "session.ld")},
		{InputPath: input, Event: testEvent(), LapsCSV: filepath.Join(dir, "r.csv"), SummaryCSV: filepath.Join(dir, "r.csv")},
	} {
		_, err := newController(t).Run(opts)
		require.ErrorIs(t, err, ErrSameFilename)
	}

	after, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, before, after, "input must be left untouched")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no output may be created")
}

func TestConversionOutputTemplate(t *testing.T) {
	dir := t.TempDir()
	input := sessionCSV(t, dir)

	res, err := newController(t).Run(ConversionOptions{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "{driver}_{venue}.ld"),
		Event:      testEvent(),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Tyler_Stank_Black_Earth.ld"), res.OutputPath)
	assert.FileExists(t, res.OutputPath)
	assert.FileExists(t, filepath.Join(dir, "Tyler_Stank_Black_Earth.ldx"))
}

func TestConversionReports(t *testing.T) {
	dir := t.TempDir()
	input := sessionCSV(t, dir)
	lapsCSV := filepath.Join(dir, "laps.csv")
	summaryCSV := filepath.Join(dir, "summary.csv")

	_, err := newController(t).Run(ConversionOptions{
		InputPath:  input,
		Event:      testEvent(),
		LapsCSV:    lapsCSV,
		SummaryCSV: summaryCSV,
	})
	require.NoError(t, err)

	laps, err := os.ReadFile(lapsCSV)
	require.NoError(t, err)
	assert.Equal(t, "lap,lap_time_s,lap_time,session_time_s\n"+
		"1,60.200,1:00.200,60.200\n"+
		"2,55.500,0:55.500,115.700\n", string(laps))

	f, err := os.Open(summaryCSV)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1+len(utils.DefaultConfig().Channels.List))
	assert.Equal(t, []string{"channel", "unit", "samples", "min", "max", "mean"}, recs[0])
	assert.Equal(t, []string{"Engine RPM", "rpm", "6", "3", "503", "253.0"}, recs[4])
}

func TestConversionMissingColumn(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "partial.csv")
	require.NoError(t, os.WriteFile(input, []byte("system_time,beacon,rpm\n1,0,1000\n"), 0644))

	_, err := newController(t).Run(ConversionOptions{InputPath: input, Event: testEvent()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loop_time")
	assert.NoFileExists(t, filepath.Join(dir, "partial.ld"))
}

func TestConversionBadCellAbortsWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(input, []byte("system_time,beacon,rpm\n1,0,1000\n2,0,oops\n"), 0644))

	cfg := utils.DefaultConfig()
	cfg.Channels.List = []utils.ChannelConfig{{Column: "rpm", Name: "Engine RPM"}}
	cc, err := NewConversionController(cfg)
	require.NoError(t, err)

	_, err = cc.Run(ConversionOptions{InputPath: input, Event: testEvent()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.NoFileExists(t, filepath.Join(dir, "bad.ld"))
	assert.NoFileExists(t, filepath.Join(dir, "bad.ldx"))
}

func TestConversionMissingInput(t *testing.T) {
	_, err := newController(t).Run(ConversionOptions{
		InputPath: filepath.Join(t.TempDir(), "nope.csv"),
		Event:     testEvent(),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewConversionControllerRejectsBadConfig(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.Channels.FrequencyHz = 0
	_, err := NewConversionController(cfg)
	assert.Error(t, err)
}

func TestChannelDefsDefaultName(t *testing.T) {
	cfg := utils.DefaultConfig()
	cfg.Channels.List = []utils.ChannelConfig{{Column: "boost", Unit: "psi"}}
	defs := ChannelDefs(cfg)
	require.Len(t, defs, 1)
	assert.Equal(t, models.ChannelDef{Column: "boost", Name: "boost", Unit: "psi", FrequencyHz: 10}, defs[0])
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	res, err := newController(t).Run(ConversionOptions{InputPath: sessionCSV(t, dir), Event: testEvent()})
	require.NoError(t, err)

	got, err := Inspect(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, "Black Earth", got.Log.Venue)
	assert.Len(t, got.Laps, 2)
	assert.Len(t, got.Summary, len(res.Channels))

	require.NoError(t, os.Remove(res.ExtraPath))
	got, err = Inspect(res.OutputPath)
	require.NoError(t, err)
	assert.Nil(t, got.Laps)
}

// Whatever order the CSV columns come in, and whatever extra columns are
// present, the log holds exactly the configured channels in configured
// order with the values from the matching columns.
func TestProperty_ChannelOrderIgnoresHeaderLayout(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 40
	properties := gopter.NewProperties(parameters)

	cfg := utils.DefaultConfig()
	cfg.Channels.List = []utils.ChannelConfig{
		{Column: "rpm", Name: "Engine RPM"},
		{Column: "system_time", Name: "System Time"},
		{Column: "mph", Name: "Ground Speed"},
		{Column: "volts", Name: "Battery Volts"},
	}

	properties.Property("channels follow config order", prop.ForAll(
		func(seed int64, extras int) bool {
			cols := []string{"beacon", "rpm", "system_time", "mph", "volts"}
			for i := 0; i < extras; i++ {
				cols = append(cols, "extra"+strconv.Itoa(i))
			}
			rng := rand.New(rand.NewSource(seed))
			rng.Shuffle(len(cols), func(i, j int) { cols[i], cols[j] = cols[j], cols[i] })

			value := map[string]string{"beacon": "0", "rpm": "4000", "system_time": "12.5", "mph": "61", "volts": "13.5"}
			row := make([]string, len(cols))
			for i, c := range cols {
				if v, ok := value[c]; ok {
					row[i] = v
				} else {
					row[i] = "x"
				}
			}

			dir := t.TempDir()
			input := filepath.Join(dir, "in.csv")
			body := strings.Join(cols, ",") + "\n" + strings.Join(row, ",") + "\n"
			if err := os.WriteFile(input, []byte(body), 0644); err != nil {
				return false
			}

			cc, err := NewConversionController(cfg)
			if err != nil {
				return false
			}
			res, err := cc.Run(ConversionOptions{InputPath: input, Event: testEvent()})
			if err != nil {
				return false
			}
			log, err := motec.ReadFile(res.OutputPath)
			if err != nil || len(log.Channels) != 4 {
				return false
			}
			wantNames := []string{"Engine RPM", "System Time", "Ground Speed", "Battery Volts"}
			wantVals := []float32{4000, 12.5, 61, 13.5}
			for i, ch := range log.Channels {
				if ch.Name != wantNames[i] || len(ch.Samples) != 1 || ch.Samples[0] != wantVals[i] {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}
