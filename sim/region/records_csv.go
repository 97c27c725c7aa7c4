package region

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// recordColumns is the expected header of a case-history CSV.
var recordColumns = []string{"day", "confirmed", "recovered", "deaths"}

// ReadRecordsCSV parses a case-history CSV with the header
// day,confirmed,recovered,deaths. Rows are returned sorted by day with later
// rows for a duplicate day replacing earlier ones.
func ReadRecordsCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) < len(recordColumns) {
		return nil, fmt.Errorf("CSV header: expected columns %v, got %v", recordColumns, header)
	}
	for i, col := range recordColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("CSV header column %d: expected %q, got %q", i, col, header[i])
		}
	}

	// Accumulate through a Region so ordering and duplicate handling match AddRecord.
	acc := &Region{}
	rowIdx := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV row %d: %w", rowIdx, err)
		}
		var vals [4]int
		for i := range vals {
			v, err := strconv.Atoi(strings.TrimSpace(row[i]))
			if err != nil {
				return nil, fmt.Errorf("CSV row %d: invalid %s %q: %w", rowIdx, recordColumns[i], row[i], err)
			}
			vals[i] = v
		}
		acc.AddRecord(Record{Day: vals[0], Confirmed: vals[1], Recovered: vals[2], Deaths: vals[3]})
		rowIdx++
	}
	return acc.history, nil
}

// LoadRecordsCSV reads a case-history CSV file.
func LoadRecordsCSV(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history CSV %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only file

	records, err := ReadRecordsCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
