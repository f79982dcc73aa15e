package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rpi-converter/models"
)

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing column")
	// ErrBadValue is returned for a non-blank cell that is not a number.
	ErrBadValue = errors.New("non-numeric value")
)

// CSVReaderConfig names the columns the reader extracts.
type CSVReaderConfig struct {
	TimeColumn   string
	BeaconColumn string
	BeaconValue  string
	Channels     []string // channel columns, in output order
}

// CSVReader streams data-logger rows as SampleRows. It reads one row at a
// time and keeps no history.
type CSVReader struct {
	cfg     CSVReaderConfig
	r       *csv.Reader
	chanIdx []int
	timeIdx int
	beacIdx int
	line    int
}

// NewCSVReader reads the header row and resolves every configured column.
// Columns not named in cfg are ignored.
func NewCSVReader(src io.Reader, cfg CSVReaderConfig) (*CSVReader, error) {
	r := csv.NewReader(src)
	r.Comma = ','
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	lookup := func(col string) (int, error) {
		i, ok := pos[col]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
		return i, nil
	}

	cr := &CSVReader{cfg: cfg, chanIdx: make([]int, len(cfg.Channels))}
	if cr.timeIdx, err = lookup(cfg.TimeColumn); err != nil {
		return nil, err
	}
	if cr.beacIdx, err = lookup(cfg.BeaconColumn); err != nil {
		return nil, err
	}
	for i, col := range cfg.Channels {
		if cr.chanIdx[i], err = lookup(col); err != nil {
			return nil, err
		}
	}
	cr.r = r
	return cr, nil
}

// Next returns the next row, or io.EOF once the input is exhausted.
// Blank channel cells become 0.0; a short row is treated as blank in the
// missing trailing cells.
func (cr *CSVReader) Next() (*models.SampleRow, error) {
	rec, err := cr.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("csv row %d: %w", cr.line+1, err)
	}
	cr.line++

	row := &models.SampleRow{
		Line:   cr.line,
		Values: make([]float64, len(cr.chanIdx)),
	}
	for i, idx := range cr.chanIdx {
		v, err := ParseCell(cell(rec, idx))
		if err != nil {
			return nil, fmt.Errorf("csv row %d, column %q: %w", cr.line, cr.cfg.Channels[i], err)
		}
		row.Values[i] = v
	}

	if row.SystemTime, err = ParseCell(cell(rec, cr.timeIdx)); err != nil {
		return nil, fmt.Errorf("csv row %d, column %q: %w", cr.line, cr.cfg.TimeColumn, err)
	}
	row.Beacon = cell(rec, cr.beacIdx) == cr.cfg.BeaconValue
	return row, nil
}

// Rows returns the number of data rows read so far.
func (cr *CSVReader) Rows() int {
	return cr.line
}

// ParseCell converts one CSV cell to a float. Only an empty cell is blank
// and reads as 0.0; surrounding spaces are allowed around a number, but a
// cell of spaces alone or a hex float is rejected.
func ParseCell(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	t := strings.TrimSpace(s)
	if t == "" || isHexFloat(t) {
		return 0, fmt.Errorf("%w %q", ErrBadValue, s)
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrBadValue, s)
	}
	return v, nil
}

func isHexFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
