// Package recordlog persists submission records as an append-only tabular
// log. The backing store is an implementation detail: the Excel backend
// mirrors the operations team's spreadsheet workflow, the SQLite backend is
// the embedded-database alternative.
package recordlog

import (
	"strconv"
	"strings"
)

// listSeparator joins multi-valued columns (missing documents, file paths).
const listSeparator = "; "

// columns is the fixed spreadsheet schema, one submission per row.
var columns = []string{
	"submission_id",
	"timestamp",
	"cedula",
	"userName",
	"userCompany",
	"incapacityType",
	"subType",
	"daysOfIncapacity",
	"motherWorks",
	"email",
	"phoneNumber",
	"status",
	"missingDocuments",
	"files",
	"saved_dir",
}

// Record is one submission row. Records are created once and never mutated.
type Record struct {
	SubmissionID string
	Timestamp    string // 20060102_150405, also the submission folder name
	Cedula       string
	UserName     string
	UserCompany  string
	ClaimType    string
	SubType      string
	Days         int // 0 when not provided
	MotherWorks  string
	Email        string
	Phone        string
	Status       string
	MissingDocs  []string
	Files        []string
	SavedDir     string
}

// Log is the append-only submission store. Append returns the zero-based
// index of the new row. ReadAll returns every row in append order; a missing
// or unreadable store reads as empty, never as an error.
type Log interface {
	Append(rec Record) (int, error)
	ReadAll() ([]Record, error)
	Find(submissionID string) (Record, bool, error)
	Close() error
}

// rowValues renders the record in column order.
func (r Record) rowValues() []string {
	days := ""
	if r.Days > 0 {
		days = strconv.Itoa(r.Days)
	}
	return []string{
		r.SubmissionID,
		r.Timestamp,
		r.Cedula,
		r.UserName,
		r.UserCompany,
		r.ClaimType,
		r.SubType,
		days,
		r.MotherWorks,
		r.Email,
		r.Phone,
		r.Status,
		strings.Join(r.MissingDocs, listSeparator),
		strings.Join(r.Files, listSeparator),
		r.SavedDir,
	}
}

// recordFromRow parses a stored row. Short rows are padded so spreadsheets
// with trailing empty cells round-trip.
func recordFromRow(cells []string) Record {
	padded := make([]string, len(columns))
	copy(padded, cells)

	days := 0
	if padded[7] != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(padded[7])); err == nil {
			days = n
		}
	}

	return Record{
		SubmissionID: padded[0],
		Timestamp:    padded[1],
		Cedula:       padded[2],
		UserName:     padded[3],
		UserCompany:  padded[4],
		ClaimType:    padded[5],
		SubType:      padded[6],
		Days:         days,
		MotherWorks:  padded[8],
		Email:        padded[9],
		Phone:        padded[10],
		Status:       padded[11],
		MissingDocs:  splitList(padded[12]),
		Files:        splitList(padded[13]),
		SavedDir:     padded[14],
	}
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, listSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
