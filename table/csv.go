package table

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/zibamira/CTCoral-CoDA/errors"
)

// ReadCSV parses a CSV spreadsheet into a table. The first record is the
// header. Column kinds are inferred: a column whose non-empty cells all
// parse as floats becomes numeric with empty cells as NaN, everything else
// stays a string column with empty cells as "".
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse csv")
	}
	if len(records) == 0 {
		return nil, errors.New("csv has no header")
	}

	header := records[0]
	rows := records[1:]

	t := New()
	for icol, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.Newf("csv column %d has an empty name", icol)
		}

		cells := make([]string, len(rows))
		for irow, row := range rows {
			if icol < len(row) {
				cells[irow] = strings.TrimSpace(row[icol])
			}
		}

		if numbers, ok := parseNumbers(cells); ok {
			err = t.SetNumbers(name, numbers)
		} else {
			err = t.SetStrings(name, cells)
		}
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadCSVFile reads a CSV spreadsheet from the filesystem.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return ReadCSV(f)
}

// parseNumbers attempts a numeric interpretation of the raw cells. It fails
// as soon as one non-empty cell is not a float, demoting the column to
// strings.
func parseNumbers(cells []string) ([]float64, bool) {
	numbers := make([]float64, len(cells))
	nonEmpty := false
	for i, cell := range cells {
		if cell == "" {
			numbers[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		numbers[i] = v
		nonEmpty = true
	}
	return numbers, nonEmpty
}
