// Package activity keeps an append-only CSV trail of ledger changes.
package activity

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action names a mutating ledger operation.
type Action string

const (
	ActionGroupCreate       Action = "group_create"
	ActionGroupDelete       Action = "group_delete"
	ActionParticipantAdd    Action = "participant_add"
	ActionParticipantRemove Action = "participant_remove"
	ActionBillStage         Action = "bill_stage"
	ActionBillDiscard       Action = "bill_discard"
	ActionBillCommit        Action = "bill_commit"
	ActionExpenseRecord     Action = "expense_record"
	ActionExpenseCancel     Action = "expense_cancel"
)

// Entry is one row in the activity log.
type Entry struct {
	ID         uuid.UUID
	Timestamp  time.Time
	Group      string
	Action     Action
	Details    string
	ExpenseIDs []string
}

// Header is the CSV header for activity.csv.
const Header = "id,timestamp,group,action,details,expense_ids"

const (
	numFields     = 6
	logDir        = "logs"
	logFile       = "logs/activity.csv"
	colID         = 0
	colTimestamp  = 1
	colGroup      = 2
	colAction     = 3
	colDetails    = 4
	colExpenseIDs = 5
)

// NewEntry stamps an entry with a fresh ID and the current time.
func NewEntry(groupName string, action Action, details string, expenseIDs ...string) Entry {
	return Entry{
		ID:         uuid.New(),
		Timestamp:  time.Now().UTC(),
		Group:      groupName,
		Action:     action,
		Details:    details,
		ExpenseIDs: expenseIDs,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colID] = e.ID.String()
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colGroup] = e.Group
	row[colAction] = string(e.Action)
	row[colDetails] = e.Details
	row[colExpenseIDs] = strings.Join(e.ExpenseIDs, ";")
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	entryID, err := uuid.Parse(record[colID])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing id %q: %w", record[colID], err)
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	var expenseIDs []string
	if record[colExpenseIDs] != "" {
		expenseIDs = strings.Split(record[colExpenseIDs], ";")
	}

	return Entry{
		ID:         entryID,
		Timestamp:  ts,
		Group:      record[colGroup],
		Action:     Action(record[colAction]),
		Details:    record[colDetails],
		ExpenseIDs: expenseIDs,
	}, nil
}

// Log appends entries under a data directory. It is safe for concurrent use
// within one process.
type Log struct {
	mu  sync.Mutex
	dir string
}

// NewLog returns a Log writing to <dir>/logs/activity.csv.
func NewLog(dir string) *Log {
	return &Log{dir: dir}
}

// Record appends entries to the log.
func (l *Log) Record(entries ...Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Append(l.dir, entries)
}

// Append writes entries to <dir>/logs/activity.csv, creating the file and header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(dir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(dir, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
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

// Read returns all entries from <dir>/logs/activity.csv.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
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

// ForGroup filters entries down to one group.
func ForGroup(entries []Entry, groupName string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Group == groupName {
			out = append(out, e)
		}
	}
	return out
}
