// Package importlog keeps the append-only history of import runs in
// <logs>/imports.csv.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Result values.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Entry is one imported file.
type Entry struct {
	Timestamp    time.Time
	RunID        string
	File         string
	Result       string
	RowsRead     int
	RowsImported int
	Mismatches   int
	Warnings     int
	Report       string
	Error        string
}

// Header is the CSV header for imports.csv.
const Header = "timestamp,run_id,file,result,rows_read,rows_imported,mismatches,warnings,report,error"

// FileName is the history file inside the logs directory.
const FileName = "imports.csv"

const (
	numFields       = 10
	colTimestamp    = 0
	colRunID        = 1
	colFile         = 2
	colResult       = 3
	colRowsRead     = 4
	colRowsImported = 5
	colMismatches   = 6
	colWarnings     = 7
	colReport       = 8
	colError        = 9
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colFile] = e.File
	row[colResult] = e.Result
	row[colRowsRead] = strconv.Itoa(e.RowsRead)
	row[colRowsImported] = strconv.Itoa(e.RowsImported)
	row[colMismatches] = strconv.Itoa(e.Mismatches)
	row[colWarnings] = strconv.Itoa(e.Warnings)
	row[colReport] = e.Report
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	e := Entry{
		Timestamp: ts,
		RunID:     record[colRunID],
		File:      record[colFile],
		Result:    record[colResult],
		Report:    record[colReport],
		Error:     record[colError],
	}
	counts := []struct {
		col int
		dst *int
	}{
		{colRowsRead, &e.RowsRead},
		{colRowsImported, &e.RowsImported},
		{colMismatches, &e.Mismatches},
		{colWarnings, &e.Warnings},
	}
	for _, c := range counts {
		n, err := strconv.Atoi(record[c.col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[c.col], err)
		}
		*c.dst = n
	}
	return e, nil
}

// Append writes entries to <dir>/imports.csv, creating the file and header
// if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/imports.csv, oldest first. A missing
// file yields no entries.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
