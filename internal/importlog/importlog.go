// Package importlog keeps a CSV record of every import run under logs/.
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

	"github.com/google/uuid"
)

// Sources of an import run.
const (
	SourceOrganizze = "organizze"
	SourceOFX       = "ofx"
)

// Entry is one row in the import log.
type Entry struct {
	RunID       string
	Timestamp   time.Time
	Source      string
	Files       []string
	Rows        int
	Postings    int
	Duplicates  int
	Orphans     int
	Unresolved  int
	NeedsReview int
	CommitHash  string
}

// Header is the CSV header for import-log.csv.
const Header = "run_id,timestamp,source,files,rows,postings,duplicates,orphans,unresolved,needs_review,commit_hash"

const (
	numFields      = 11
	logDir         = "logs"
	logFile        = "logs/import-log.csv"
	colRunID       = 0
	colTimestamp   = 1
	colSource      = 2
	colFiles       = 3
	colRows        = 4
	colPostings    = 5
	colDuplicates  = 6
	colOrphans     = 7
	colUnresolved  = 8
	colNeedsReview = 9
	colCommitHash  = 10
)

// fileSep joins file names inside the files column.
const fileSep = ";"

// NewEntry starts an entry with a fresh run id.
func NewEntry(source string, now time.Time) Entry {
	return Entry{
		RunID:     uuid.NewString(),
		Timestamp: now.UTC().Truncate(time.Second),
		Source:    source,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colRunID] = e.RunID
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colSource] = e.Source
	row[colFiles] = strings.Join(e.Files, fileSep)
	row[colRows] = strconv.Itoa(e.Rows)
	row[colPostings] = strconv.Itoa(e.Postings)
	row[colDuplicates] = strconv.Itoa(e.Duplicates)
	row[colOrphans] = strconv.Itoa(e.Orphans)
	row[colUnresolved] = strconv.Itoa(e.Unresolved)
	row[colNeedsReview] = strconv.Itoa(e.NeedsReview)
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if _, err := uuid.Parse(record[colRunID]); err != nil {
		return Entry{}, fmt.Errorf("parsing run id %q: %w", record[colRunID], err)
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	counts := make([]int, 0, 6)
	for _, col := range []int{colRows, colPostings, colDuplicates, colOrphans, colUnresolved, colNeedsReview} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts = append(counts, n)
	}

	var files []string
	if record[colFiles] != "" {
		files = strings.Split(record[colFiles], fileSep)
	}

	return Entry{
		RunID:       record[colRunID],
		Timestamp:   ts,
		Source:      record[colSource],
		Files:       files,
		Rows:        counts[0],
		Postings:    counts[1],
		Duplicates:  counts[2],
		Orphans:     counts[3],
		Unresolved:  counts[4],
		NeedsReview: counts[5],
		CommitHash:  record[colCommitHash],
	}, nil
}

// Path returns the log location inside repoRoot.
func Path(repoRoot string) string {
	return filepath.Join(repoRoot, logFile)
}

// Append writes entries to <repoRoot>/logs/import-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries ...Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(repoRoot)
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

// Read returns all entries from <repoRoot>/logs/import-log.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(Path(repoRoot))
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
