// Package sheet is the only component touching persistent state: a plain
// xlsx workbook standing in for a hosted spreadsheet, with three named
// tables accessed through a read-rows / append-row / update-row contract.
// The workbook offers no transactions and no compare-and-swap, so callers
// enforce their "at most once" guarantees by re-reading a row right before
// any state-changing write.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

const (
	TableEvents   = "Events"
	TableContacts = "TechContacts"
	TableLog      = "Log"
)

// ErrStoreUnavailable wraps any I/O failure against the workbook. Callers
// must treat the whole operation as failed; no partial write is assumed.
var ErrStoreUnavailable = errors.New("store unavailable")

var tableHeaders = map[string][]string{
	TableEvents: {
		"event_id", "assigned_contact_id", "status", "selected_slot",
		"last_contacted_at", "reminder_count", "redirect_chain",
	},
	TableContacts: {
		"contact_id", "phone_number", "display_name",
	},
	TableLog: {
		"log_id", "event_id", "contact_id", "direction",
		"payload_summary", "timestamp", "outcome",
	},
}

// Row is one data row of a table, addressed by its 1-based sheet row index
// and keyed by the header names of row 1.
type Row struct {
	Index  int
	Values map[string]string
}

// Store is the contract the repositories run on.
type Store interface {
	ReadRows(table string) ([]Row, error)
	AppendRow(table string, values map[string]string) error
	UpdateRow(table string, index int, partial map[string]string) error
}

type Workbook struct {
	path string
	mu   sync.Mutex
	file *excelize.File
}

// Open loads the workbook at path, creating it with the three table sheets
// and their header rows when it does not exist yet.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return create(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook %s: %v", ErrStoreUnavailable, path, err)
	}

	wb := &Workbook{path: path, file: f}
	for table := range tableHeaders {
		idx, err := f.GetSheetIndex(table)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: checking table %s: %v", ErrStoreUnavailable, table, err)
		}
		if idx < 0 {
			f.Close()
			return nil, fmt.Errorf("%w: workbook %s is missing table %s", ErrStoreUnavailable, path, table)
		}
	}
	return wb, nil
}

func create(path string) (*Workbook, error) {
	f := excelize.NewFile()
	for _, table := range []string{TableEvents, TableContacts, TableLog} {
		if _, err := f.NewSheet(table); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: creating table %s: %v", ErrStoreUnavailable, table, err)
		}
		for col, header := range tableHeaders[table] {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("%w: header cell for %s: %v", ErrStoreUnavailable, table, err)
			}
			if err := f.SetCellValue(table, cell, header); err != nil {
				f.Close()
				return nil, fmt.Errorf("%w: writing header for %s: %v", ErrStoreUnavailable, table, err)
			}
		}
	}
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: saving new workbook %s: %v", ErrStoreUnavailable, path, err)
	}
	return &Workbook{path: path, file: f}, nil
}

func (wb *Workbook) Close() error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return wb.file.Close()
}

// Path returns the on-disk location of the workbook.
func (wb *Workbook) Path() string {
	return wb.path
}

func (wb *Workbook) ReadRows(table string) ([]Row, error) {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	return wb.readRowsLocked(table)
}

func (wb *Workbook) readRowsLocked(table string) ([]Row, error) {
	raw, err := wb.file.GetRows(table)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStoreUnavailable, table, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: table %s has no header row", ErrStoreUnavailable, table)
	}

	headers := raw[0]
	rows := make([]Row, 0, len(raw)-1)
	for i, cells := range raw[1:] {
		values := make(map[string]string, len(headers))
		empty := true
		for j, header := range headers {
			v := ""
			if j < len(cells) {
				v = cells[j]
			}
			if v != "" {
				empty = false
			}
			values[header] = v
		}
		if empty {
			continue
		}
		rows = append(rows, Row{Index: i + 2, Values: values})
	}
	return rows, nil
}

func (wb *Workbook) AppendRow(table string, values map[string]string) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	raw, err := wb.file.GetRows(table)
	if err != nil {
		return fmt.Errorf("%w: reading %s for append: %v", ErrStoreUnavailable, table, err)
	}
	next := len(raw) + 1

	if err := wb.setCellsLocked(table, next, values); err != nil {
		return err
	}
	return wb.saveLocked()
}

func (wb *Workbook) UpdateRow(table string, index int, partial map[string]string) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	if index < 2 {
		return fmt.Errorf("%w: row index %d in %s", ErrStoreUnavailable, index, table)
	}
	if err := wb.setCellsLocked(table, index, partial); err != nil {
		return err
	}
	return wb.saveLocked()
}

func (wb *Workbook) setCellsLocked(table string, rowIndex int, values map[string]string) error {
	headers, ok := tableHeaders[table]
	if !ok {
		return fmt.Errorf("%w: unknown table %s", ErrStoreUnavailable, table)
	}
	for col, header := range headers {
		v, present := values[header]
		if !present {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, rowIndex)
		if err != nil {
			return fmt.Errorf("%w: cell for %s row %d: %v", ErrStoreUnavailable, table, rowIndex, err)
		}
		if err := wb.file.SetCellValue(table, cell, v); err != nil {
			return fmt.Errorf("%w: writing %s row %d: %v", ErrStoreUnavailable, table, rowIndex, err)
		}
	}
	return nil
}

func (wb *Workbook) saveLocked() error {
	if err := wb.file.Save(); err != nil {
		return fmt.Errorf("%w: saving workbook: %v", ErrStoreUnavailable, err)
	}
	return nil
}
