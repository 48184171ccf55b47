package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// statisticsFilename is the export file carrying account-level facts.
const statisticsFilename = "statistics.csv"

// accountNameStatistic is the statistics row naming the exporting account.
const accountNameStatistic = "account name"

// MissingFileError reports an export file that is not present in the archive
// directory. Optional files (the saved_ exports, statistics.csv) missing is
// an expected state the caller handles; required files missing is operator
// error.
type MissingFileError struct {
	Dir      string
	Filename string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("export file %s not found in archive directory %s", e.Filename, e.Dir)
}

// IDs reads the item ids out of one export file. The exports are CSVs with
// an 'id' column holding bare (unprefixed) item ids. An export with a header
// but no rows, or an entirely empty file, yields an empty result.
func IDs(dir, filename string) ([]string, error) {
	records, err := readCSV(dir, filename)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	idIdx := columnIndex(records[0], "id")
	if idIdx < 0 {
		return nil, fmt.Errorf("export file %s has no id column", filename)
	}

	ids := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if idIdx < len(record) && record[idIdx] != "" {
			ids = append(ids, record[idIdx])
		}
	}

	return ids, nil
}

// Username resolves the archive's subject account name from statistics.csv,
// which pairs statistic names with values. Returns a *MissingFileError when
// the export lacks the file.
func Username(dir string) (string, error) {
	records, err := readCSV(dir, statisticsFilename)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("export file %s is empty", statisticsFilename)
	}

	statIdx := columnIndex(records[0], "statistic")
	valueIdx := columnIndex(records[0], "value")
	if statIdx < 0 || valueIdx < 0 {
		return "", fmt.Errorf("export file %s has no statistic/value columns", statisticsFilename)
	}

	for _, record := range records[1:] {
		if statIdx < len(record) && record[statIdx] == accountNameStatistic {
			if valueIdx < len(record) {
				return record[valueIdx], nil
			}
		}
	}

	return "", fmt.Errorf("no %q row in %s", accountNameStatistic, statisticsFilename)
}

func readCSV(dir, filename string) ([][]string, error) {
	f, err := os.Open(filepath.Join(dir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingFileError{Dir: dir, Filename: filename}
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Some export files pad rows unevenly; take what is there.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return records, nil
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}
