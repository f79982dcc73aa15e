package views

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"

	"rpi-converter/models"
)

// CSVWriter is a buffered CSV file writer for conversion reports.
// Rows are encoded into a bufio.Writer; nothing reaches the file until
// Flush or Close.
type CSVWriter struct {
	path string
	file *os.File
	buf  *bufio.Writer
	csv  *csv.Writer
	rows uint64
}

// NewCSVWriter creates (or truncates) a file and writes the header row.
func NewCSVWriter(path string, bufSizeBytes int, writeHeader bool, header []string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv create %s: %w", path, err)
	}

	if bufSizeBytes <= 0 {
		bufSizeBytes = 64 * 1024
	}

	bw := bufio.NewWriterSize(f, bufSizeBytes)
	w := &CSVWriter{
		path: path,
		file: f,
		buf:  bw,
		csv:  csv.NewWriter(bw),
	}

	if writeHeader && len(header) > 0 {
		if err := w.csv.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("csv write header: %w", err)
		}
	}

	return w, nil
}

// WriteRow appends a single CSV row.
func (w *CSVWriter) WriteRow(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("csv write %s: %w", w.path, err)
	}
	w.rows++
	return nil
}

// Flush pushes the buffered rows to the OS.
func (w *CSVWriter) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("csv flush %s: %w", w.path, err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("csv flush %s: %w", w.path, err)
	}
	return nil
}

// Close flushes remaining data and closes the file.
func (w *CSVWriter) Close() error {
	ferr := w.Flush()
	cerr := w.file.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

// Rows returns the number of data rows written (excludes header).
func (w *CSVWriter) Rows() uint64 {
	return w.rows
}

// ExportCSV writes one report file: the schema header for kind followed by
// one row per record.
func ExportCSV[T models.CSVRowWriter](path string, kind ReportType, records []T, bufSizeBytes int, writeHeader bool) error {
	w, err := NewCSVWriter(path, bufSizeBytes, writeHeader, SchemaColumns[kind])
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.WriteRow(rec.CSVRow()); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
