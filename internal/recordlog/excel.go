package recordlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelLog stores submissions in an .xlsx workbook, one row per submission
// under a header row. Appends are serialized behind a mutex: the whole
// workbook is rewritten on every append, so concurrent writers would lose
// rows otherwise.
type ExcelLog struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewExcelLog creates an Excel-backed log at path. The workbook itself is
// created on first append.
func NewExcelLog(path string, logger *zap.Logger) *ExcelLog {
	return &ExcelLog{path: path, logger: logger}
}

// Append adds one row, creating the workbook with its header if absent.
func (l *ExcelLog) Append(rec Record) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, sheet := l.open()
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	next := len(rows) + 1
	if len(rows) == 0 {
		header := append([]string{}, columns...)
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return 0, fmt.Errorf("failed to write header: %w", err)
		}
		next = 2
	}

	values := rec.rowValues()
	cell := fmt.Sprintf("A%d", next)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return 0, fmt.Errorf("failed to write row: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := f.SaveAs(l.path); err != nil {
		return 0, fmt.Errorf("failed to save workbook: %w", err)
	}

	index := next - 2
	l.logger.Debug("Submission row appended",
		zap.String("path", l.path),
		zap.String("submission_id", rec.SubmissionID),
		zap.Int("row_index", index))
	return index, nil
}

// ReadAll returns every stored submission. A missing or unparseable workbook
// reads as an empty log.
func (l *ExcelLog) ReadAll() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readAll()
}

// Find returns the submission with the given id.
func (l *ExcelLog) Find(submissionID string) (Record, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.readAll()
	if err != nil {
		return Record{}, false, err
	}
	for _, rec := range records {
		if rec.SubmissionID == submissionID {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}

// Close is a no-op; the workbook is opened per operation.
func (l *ExcelLog) Close() error { return nil }

func (l *ExcelLog) readAll() ([]Record, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("Submission workbook unreadable, treating as empty",
				zap.String("path", l.path), zap.Error(err))
		}
		return nil, nil
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		l.logger.Warn("Submission sheet unreadable, treating as empty",
			zap.String("path", l.path), zap.Error(err))
		return nil, nil
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(row))
	}
	return records, nil
}

// open loads the existing workbook or starts a fresh one. An unreadable
// workbook is replaced rather than surfaced, matching the read contract.
func (l *ExcelLog) open() (*excelize.File, string) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("Replacing unreadable submission workbook",
				zap.String("path", l.path), zap.Error(err))
		}
		f = excelize.NewFile()
	}
	return f, f.GetSheetName(0)
}
