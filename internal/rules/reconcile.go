package rules

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Submission statuses.
const (
	StatusComplete   = "complete"
	StatusIncomplete = "incomplete"
)

// Verdict is the result of comparing required documents against the files a
// claimant actually uploaded.
type Verdict struct {
	Missing []string
	Status  string
}

// Complete reports whether every required document was matched.
func (v Verdict) Complete() bool {
	return v.Status == StatusComplete
}

// Reconcile matches required document labels against uploaded file names.
// A document counts as present when some file's base name, with the extension
// stripped, trimmed and lower-cased, equals the label's normalized form.
// Missing keeps the order of the required list.
func Reconcile(required []string, uploadedNames []string) Verdict {
	present := make(map[string]struct{}, len(uploadedNames))
	for _, name := range uploadedNames {
		present[normalizeName(name)] = struct{}{}
	}

	missing := []string{}
	for _, doc := range required {
		if _, ok := present[strings.ToLower(strings.TrimSpace(doc))]; !ok {
			missing = append(missing, doc)
		}
	}

	status := StatusComplete
	if len(missing) > 0 {
		status = StatusIncomplete
	}
	return Verdict{Missing: missing, Status: status}
}

// normalizeName reduces a file name or path to its comparable form: base
// name without extension, trimmed and lower-cased.
func normalizeName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ToLower(strings.TrimSpace(base))
}

// Filing identifies a fully documented submission ready for filing with the
// health fund.
type Filing struct {
	ID      string
	FiledAt time.Time
}

// NewFiling generates a filing record. The uuid suffix keeps two filings
// created within the same clock second from colliding.
func NewFiling(now time.Time) Filing {
	return Filing{
		ID:      fmt.Sprintf("RAD-%s-%s", now.UTC().Format("20060102150405"), uuid.NewString()[:8]),
		FiledAt: now.UTC(),
	}
}
