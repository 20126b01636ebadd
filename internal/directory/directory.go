// Package directory resolves employees by cédula. The seed table is the
// primary source; when it has no answer, the lookup degrades to a projection
// of historical submissions. There is no real directory service behind this.
package directory

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jmtrujillo/incapacidades-backend/internal/recordlog"
)

// Tier identifies which source answered a lookup.
type Tier string

const (
	TierSeed    Tier = "seed"
	TierHistory Tier = "history"
)

// Employee is read-only reference data for a claimant.
type Employee struct {
	Cedula  string
	Name    string
	Company string
}

// Lookup is the two-tier employee resolver.
type Lookup struct {
	seed   map[string]Employee
	log    recordlog.Log
	logger *zap.Logger
}

// NewLookup builds a resolver over a seed table and the submission log.
func NewLookup(seed []Employee, log recordlog.Log, logger *zap.Logger) *Lookup {
	byID := make(map[string]Employee, len(seed))
	for _, e := range seed {
		byID[e.Cedula] = e
	}
	return &Lookup{seed: byID, log: log, logger: logger}
}

// Find resolves a cédula. The returned tier tells which source answered.
func (l *Lookup) Find(cedula string) (Employee, Tier, bool) {
	if e, ok := l.seed[cedula]; ok {
		return e, TierSeed, true
	}

	records, err := l.log.ReadAll()
	if err != nil {
		l.logger.Warn("History lookup failed", zap.Error(err))
		return Employee{}, "", false
	}
	for _, rec := range records {
		if rec.Cedula == cedula {
			return Employee{
				Cedula:  rec.Cedula,
				Name:    rec.UserName,
				Company: rec.UserCompany,
			}, TierHistory, true
		}
	}
	return Employee{}, "", false
}

// LoadSeed reads the employee seed table from a cedula,name,company CSV
// file. A missing file is not an error: the seed tier is simply empty.
func LoadSeed(path string, logger *zap.Logger) ([]Employee, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("No employee seed file, seed tier disabled",
				zap.String("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	var employees []Employee
	for i, row := range rows {
		// Skip the header row.
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "cedula") {
			continue
		}
		employees = append(employees, Employee{
			Cedula:  strings.TrimSpace(row[0]),
			Name:    strings.TrimSpace(row[1]),
			Company: strings.TrimSpace(row[2]),
		})
	}

	logger.Info("Employee seed loaded",
		zap.String("path", path), zap.Int("count", len(employees)))
	return employees, nil
}
