package store // package store persists named tables as xlsx workbooks, one table per file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Row is one record of a table: column name to cell value.  Values are kept
// as strings; the repositories own the typed encoding on top.
type Row map[string]string

// saveAttempts bounds how often Save retries a failing write before it
// falls back to a placeholder workbook.  The backoff is linear
// (attempt × 100ms), enough to ride out a file briefly locked by a
// spreadsheet program holding the workbook open.
const saveAttempts = 3

// Store reads and writes whole tables.  Every read loads the full sheet
// into memory and every write replaces the file wholesale; there is no
// partial access.  The zero value is not usable, construct with New.
//
// Save never lets a persistence failure escape to the request path: after
// exhausting retries it leaves a minimal valid workbook behind, reports
// the loss through Report, and returns the terminal error for logging
// only.  Callers are expected to log it and carry on.
type Store struct {
	Log *zap.Logger

	// Report, when set, receives the terminal error of a save that fell
	// back to a placeholder.  It is the side channel for data-loss alarms;
	// the HTTP caller never sees the failure.
	Report func(error)

	// Sleep is swapped out by tests to observe the backoff schedule.
	Sleep func(time.Duration)
}

func New(log *zap.Logger) *Store {
	return &Store{Log: log, Sleep: time.Sleep}
}

// Load returns the records of the named sheet.  A missing file, a missing
// sheet or an unreadable workbook all degrade to "no data"; Load never
// fails.  Rows without a single populated cell are formatting artifacts
// left by placeholder writes and are dropped.
func (s *Store) Load(path, sheet string) []Row {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.Log.Warn("workbook unreadable, treating as empty",
				zap.String("file", path), zap.Error(err))
		}
		return nil
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		return nil
	}
	header := rows[0]
	var out []Row
	for _, cells := range rows[1:] {
		r := Row{}
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" || cell == "" {
				continue
			}
			r[header[i]] = cell
		}
		if len(r) == 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Save writes the records as the named sheet, replacing the file.  headers
// fixes the column order; columns present in rows but not in headers are
// appended in sorted order.  An empty record set still produces a valid,
// reloadable workbook.  Each attempt writes to a temporary file and
// renames it over the destination so a concurrent reader never observes a
// half-written workbook.
func (s *Store) Save(path, sheet string, headers []string, rows []Row) error {
	var lastErr error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		if err := s.write(path, sheet, headers, rows); err != nil {
			lastErr = err
			s.Log.Warn("save attempt failed",
				zap.String("file", path), zap.Int("attempt", attempt), zap.Error(err))
			if attempt < saveAttempts {
				s.sleep(time.Duration(attempt) * 100 * time.Millisecond)
			}
			continue
		}
		return nil
	}

	// Retries exhausted.  Leave a minimal valid workbook so the next load
	// still succeeds, and surface the loss through the report hook.
	err := fmt.Errorf("save %s!%s after %d attempts: %w", path, sheet, saveAttempts, lastErr)
	if s.Report != nil {
		s.Report(err)
	}
	if fbErr := s.write(path, sheet, headers, nil); fbErr != nil {
		s.Log.Error("placeholder fallback failed",
			zap.String("file", path), zap.Error(fbErr))
	}
	return err
}

func (s *Store) write(path, sheet string, headers []string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}
	f.SetActiveSheet(index)

	if len(rows) == 0 {
		// A workbook must contain at least one sheet to be valid; a single
		// blank cell keeps it loadable and loads back as zero records.
		if err := f.SetCellValue(sheet, "A1", ""); err != nil {
			return err
		}
	} else {
		cols := columnSet(headers, rows)
		for i, h := range cols {
			cell, err := excelize.CoordinatesToCellName(i+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return err
			}
		}
		for rIdx, row := range rows {
			for cIdx, h := range cols {
				v, ok := row[h]
				if !ok || v == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
		}
	}

	// excelize.SaveAs infers the workbook format from the file extension
	// and rejects ".tmp", so serialize through Write instead.
	tmp := path + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// columnSet returns headers followed by any keys that appear in rows but
// not in headers, the extras sorted for a deterministic layout.
func columnSet(headers []string, rows []Row) []string {
	seen := make(map[string]bool, len(headers))
	cols := make([]string, 0, len(headers))
	for _, h := range headers {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		cols = append(cols, h)
	}
	var extra []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

func (s *Store) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}
