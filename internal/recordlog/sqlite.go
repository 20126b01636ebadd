package recordlog

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jmtrujillo/incapacidades-backend/pkg/database"
)

// SQLiteLog stores submissions in an embedded SQLite table. Same append-only
// contract as the Excel backend without the rewrite-whole-file hazard.
type SQLiteLog struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSQLiteLog opens (and if needed initializes) the submission table.
func NewSQLiteLog(path string, logger *zap.Logger) (*SQLiteLog, error) {
	db, err := database.Open(path, logger)
	if err != nil {
		return nil, err
	}

	schema := `
		CREATE TABLE IF NOT EXISTS submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			submission_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			cedula TEXT NOT NULL,
			user_name TEXT NOT NULL,
			user_company TEXT NOT NULL,
			incapacity_type TEXT NOT NULL,
			sub_type TEXT NOT NULL DEFAULT '',
			days_of_incapacity INTEGER NOT NULL DEFAULT 0,
			mother_works TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			status TEXT NOT NULL,
			missing_documents TEXT NOT NULL DEFAULT '',
			files TEXT NOT NULL DEFAULT '',
			saved_dir TEXT NOT NULL
		)
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize submissions table: %w", err)
	}

	return &SQLiteLog{db: db, logger: logger}, nil
}

// Append inserts one submission row and returns its zero-based index.
func (l *SQLiteLog) Append(rec Record) (int, error) {
	query := `
		INSERT INTO submissions (
			submission_id, timestamp, cedula, user_name, user_company,
			incapacity_type, sub_type, days_of_incapacity, mother_works,
			email, phone_number, status, missing_documents, files, saved_dir
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := l.db.Exec(query,
		rec.SubmissionID,
		rec.Timestamp,
		rec.Cedula,
		rec.UserName,
		rec.UserCompany,
		rec.ClaimType,
		rec.SubType,
		rec.Days,
		rec.MotherWorks,
		rec.Email,
		rec.Phone,
		rec.Status,
		strings.Join(rec.MissingDocs, listSeparator),
		strings.Join(rec.Files, listSeparator),
		rec.SavedDir,
	)
	if err != nil {
		l.logger.Error("Failed to append submission", zap.Error(err))
		return 0, fmt.Errorf("failed to append submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return int(id) - 1, nil
}

// ReadAll returns every submission in append order.
func (l *SQLiteLog) ReadAll() ([]Record, error) {
	rows, err := l.db.Query(selectColumns + " ORDER BY id")
	if err != nil {
		l.logger.Warn("Submission table unreadable, treating as empty", zap.Error(err))
		return nil, nil
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Find returns the submission with the given id.
func (l *SQLiteLog) Find(submissionID string) (Record, bool, error) {
	row := l.db.QueryRow(selectColumns+" WHERE submission_id = ? LIMIT 1", submissionID)
	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to find submission: %w", err)
	}
	return rec, true, nil
}

// Close closes the underlying database.
func (l *SQLiteLog) Close() error { return l.db.Close() }

const selectColumns = `
	SELECT submission_id, timestamp, cedula, user_name, user_company,
		incapacity_type, sub_type, days_of_incapacity, mother_works,
		email, phone_number, status, missing_documents, files, saved_dir
	FROM submissions`

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var rec Record
	var missing, files string
	err := scan(
		&rec.SubmissionID,
		&rec.Timestamp,
		&rec.Cedula,
		&rec.UserName,
		&rec.UserCompany,
		&rec.ClaimType,
		&rec.SubType,
		&rec.Days,
		&rec.MotherWorks,
		&rec.Email,
		&rec.Phone,
		&rec.Status,
		&missing,
		&files,
		&rec.SavedDir,
	)
	if err != nil {
		return Record{}, err
	}
	rec.MissingDocs = splitList(missing)
	rec.Files = splitList(files)
	return rec, nil
}
