package controller

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ErrSameFilename is returned when the output path would overwrite the
// input CSV.
var ErrSameFilename = errors.New("input filename is the same as output filename")

// DefaultOutputPath replaces a trailing ".csv" with ".ld". Any other name
// is returned unchanged.
func DefaultOutputPath(input string) string {
	if strings.HasSuffix(input, ".csv") {
		return strings.TrimSuffix(input, ".csv") + ".ld"
	}
	return input
}

// ExtraPath returns the lap sidecar path for an .ld output path.
func ExtraPath(output string) string {
	return output + "x"
}

// CheckPaths refuses to run when the log or its sidecar would overwrite
// the input. Both spellings and cleaned forms are compared.
func CheckPaths(input, output string) error {
	if input == output || filepath.Clean(input) == filepath.Clean(output) {
		return fmt.Errorf("%w: %s", ErrSameFilename, input)
	}
	if filepath.Clean(input) == filepath.Clean(ExtraPath(output)) {
		return fmt.Errorf("%w: %s", ErrSameFilename, input)
	}
	return nil
}

// CheckReportPaths refuses report paths that would overwrite the input,
// the log, its sidecar or another report. Empty report paths are skipped.
func CheckReportPaths(input, output string, reports ...string) error {
	taken := []string{filepath.Clean(input), filepath.Clean(output), filepath.Clean(ExtraPath(output))}
	for _, r := range reports {
		if r == "" {
			continue
		}
		clean := filepath.Clean(r)
		if slices.Contains(taken, clean) {
			return fmt.Errorf("%w: report %s", ErrSameFilename, r)
		}
		taken = append(taken, clean)
	}
	return nil
}
