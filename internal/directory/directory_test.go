package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jmtrujillo/incapacidades-backend/internal/recordlog"
)

func newLog(t *testing.T, records ...recordlog.Record) recordlog.Log {
	t.Helper()
	log := recordlog.NewExcelLog(filepath.Join(t.TempDir(), "incapacidades.xlsx"), zap.NewNop())
	for _, rec := range records {
		_, err := log.Append(rec)
		require.NoError(t, err)
	}
	return log
}

func TestLookup_Find(t *testing.T) {
	seed := []Employee{
		{Cedula: "1085043374", Name: "Juan Pérez", Company: "Soluciones Médicas S.A.S."},
	}

	t.Run("seed tier answers first", func(t *testing.T) {
		history := recordlog.Record{
			SubmissionID: "1085043374-20250101_000000",
			Cedula:       "1085043374",
			UserName:     "Someone Else",
			UserCompany:  "Other Co",
			Timestamp:    "20250101_000000",
			Status:       "incomplete",
			SavedDir:     "uploads/x",
		}
		l := NewLookup(seed, newLog(t, history), zap.NewNop())

		e, tier, ok := l.Find("1085043374")

		require.True(t, ok)
		assert.Equal(t, TierSeed, tier)
		assert.Equal(t, "Juan Pérez", e.Name)
	})

	t.Run("falls back to submission history", func(t *testing.T) {
		history := recordlog.Record{
			SubmissionID: "555-20250101_000000",
			Cedula:       "555",
			UserName:     "María Gómez",
			UserCompany:  "Transportes Andinos",
			Timestamp:    "20250101_000000",
			Status:       "complete",
			SavedDir:     "uploads/y",
		}
		l := NewLookup(seed, newLog(t, history), zap.NewNop())

		e, tier, ok := l.Find("555")

		require.True(t, ok)
		assert.Equal(t, TierHistory, tier)
		assert.Equal(t, "María Gómez", e.Name)
		assert.Equal(t, "Transportes Andinos", e.Company)
	})

	t.Run("unknown cedula is not found", func(t *testing.T) {
		l := NewLookup(seed, newLog(t), zap.NewNop())

		_, _, ok := l.Find("000")

		assert.False(t, ok)
	})
}

func TestLoadSeed(t *testing.T) {
	t.Run("parses rows and skips the header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "employees_seed.csv")
		data := "cedula,name,company\n1085043374,Juan Pérez,Soluciones Médicas S.A.S.\n555,María Gómez,Transportes Andinos\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		employees, err := LoadSeed(path, zap.NewNop())

		require.NoError(t, err)
		require.Len(t, employees, 2)
		assert.Equal(t, "Juan Pérez", employees[0].Name)
	})

	t.Run("missing file yields an empty seed", func(t *testing.T) {
		employees, err := LoadSeed(filepath.Join(t.TempDir(), "nope.csv"), zap.NewNop())

		require.NoError(t, err)
		assert.Empty(t, employees)
	})
}
