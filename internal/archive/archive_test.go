package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jmtrujillo/incapacidades-backend/internal/recordlog"
)

func TestZip(t *testing.T) {
	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "a.pdf"), []byte("aaa"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(folder, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "sub", "b.txt"), []byte("bbb"), 0644))

	var buf bytes.Buffer
	require.NoError(t, Zip(folder, &buf))

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, r.File, 2)

	names := []string{r.File[0].Name, r.File[1].Name}
	assert.Contains(t, names, "a.pdf")
	assert.Contains(t, names, "sub/b.txt")
}

type fakeUploader struct {
	configured bool
	calls      map[string][]string
}

func (f *fakeUploader) Configured() bool { return f.configured }

func (f *fakeUploader) UploadFiles(_ context.Context, remoteBase string, paths []string) int {
	if f.calls == nil {
		f.calls = make(map[string][]string)
	}
	f.calls[remoteBase] = paths
	return len(paths)
}

func TestArchiver_ArchiveOlder(t *testing.T) {
	root := t.TempDir()
	log := recordlog.NewExcelLog(filepath.Join(root, "database", "incapacidades.xlsx"), zap.NewNop())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

	addSubmission := func(id, timestamp string, withFolder bool) {
		rec := recordlog.Record{
			SubmissionID: id,
			Timestamp:    timestamp,
			Cedula:       "123",
			Status:       "complete",
			SavedDir:     filepath.Join("uploads", "Acme", "123", timestamp),
		}
		if withFolder {
			dir := filepath.Join(root, rec.SavedDir)
			require.NoError(t, os.MkdirAll(dir, 0755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.pdf"), []byte("x"), 0644))
		}
		_, err := log.Append(rec)
		require.NoError(t, err)
	}

	addSubmission("old", "20250101_100000", true)    // 151 days old
	addSubmission("fresh", "20250530_100000", true)  // 2 days old
	addSubmission("gone", "20240101_100000", false)  // old, folder missing
	addSubmission("badts", "not-a-timestamp", false) // unparseable

	uploader := &fakeUploader{configured: true}
	a := NewArchiver(log, uploader, root, zap.NewNop())

	moved, err := a.ArchiveOlder(context.Background(), 90, now)

	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	require.Len(t, uploader.calls, 1)
	assert.Contains(t, uploader.calls, "uploads/Acme/123/20250101_100000")
}

func TestArchiver_EmptyLog(t *testing.T) {
	log := recordlog.NewExcelLog(filepath.Join(t.TempDir(), "incapacidades.xlsx"), zap.NewNop())
	a := NewArchiver(log, &fakeUploader{configured: true}, t.TempDir(), zap.NewNop())

	moved, err := a.ArchiveOlder(context.Background(), 90, time.Now())

	require.NoError(t, err)
	assert.Zero(t, moved)
}
