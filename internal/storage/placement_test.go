package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPlacement_Root(t *testing.T) {
	root := t.TempDir()
	p := NewPlacement(root, zap.NewNop())

	assert.Equal(t, root, p.Root())
}

func TestPlacement_SubmissionDir(t *testing.T) {
	p := NewPlacement(t.TempDir(), zap.NewNop())

	t.Run("derives company, cedula and timestamp segments", func(t *testing.T) {
		dir := p.SubmissionDir("Soluciones Médicas S.A.S.", "1085043374", "20250314_100000")

		assert.Equal(t,
			filepath.Join("uploads", "Soluciones Médicas S.A.S.", "1085043374", "20250314_100000"),
			dir)
	})

	t.Run("substitutes path separators in company names", func(t *testing.T) {
		dir := p.SubmissionDir("Acme/Norte", "123", "20250314_100000")

		assert.Equal(t, filepath.Join("uploads", "Acme_Norte", "123", "20250314_100000"), dir)
	})

	t.Run("is deterministic", func(t *testing.T) {
		a := p.SubmissionDir("Acme", "123", "ts")
		b := p.SubmissionDir("Acme", "123", "ts")

		assert.Equal(t, a, b)
	})
}

func TestPlacement_SaveUploads(t *testing.T) {
	t.Run("writes files in input order", func(t *testing.T) {
		root := t.TempDir()
		p := NewPlacement(root, zap.NewNop())
		relDir := p.SubmissionDir("Acme", "123", "20250314_100000")

		saved, err := p.SaveUploads(relDir, []Upload{
			{Name: "incapacidad médica.pdf", Content: strings.NewReader("a")},
			{Name: "epicrisis.pdf", Content: strings.NewReader("b")},
		})

		require.NoError(t, err)
		require.Len(t, saved, 2)
		assert.Equal(t, filepath.Join(root, relDir, "incapacidad médica.pdf"), saved[0])
		assert.Equal(t, filepath.Join(root, relDir, "epicrisis.pdf"), saved[1])

		content, err := os.ReadFile(saved[1])
		require.NoError(t, err)
		assert.Equal(t, "b", string(content))
	})

	t.Run("sanitizes file names with separators", func(t *testing.T) {
		p := NewPlacement(t.TempDir(), zap.NewNop())

		saved, err := p.SaveUploads("uploads/x", []Upload{
			{Name: "../../etc/passwd", Content: strings.NewReader("x")},
		})

		require.NoError(t, err)
		assert.Equal(t, "__etc_passwd", filepath.Base(saved[0]))
	})

	t.Run("falls back to generic name when the name is empty", func(t *testing.T) {
		p := NewPlacement(t.TempDir(), zap.NewNop())

		saved, err := p.SaveUploads("uploads/x", []Upload{
			{Name: "", Content: strings.NewReader("x")},
		})

		require.NoError(t, err)
		assert.Equal(t, "archivo", filepath.Base(saved[0]))
	})

	t.Run("overwrites an existing file of the same name", func(t *testing.T) {
		p := NewPlacement(t.TempDir(), zap.NewNop())

		first, err := p.SaveUploads("uploads/x", []Upload{
			{Name: "doc.pdf", Content: strings.NewReader("old")},
		})
		require.NoError(t, err)

		_, err = p.SaveUploads("uploads/x", []Upload{
			{Name: "doc.pdf", Content: strings.NewReader("new")},
		})
		require.NoError(t, err)

		content, err := os.ReadFile(first[0])
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))
	})

	t.Run("no uploads yields an empty list and an empty directory", func(t *testing.T) {
		root := t.TempDir()
		p := NewPlacement(root, zap.NewNop())

		saved, err := p.SaveUploads("uploads/empty", nil)

		require.NoError(t, err)
		assert.Empty(t, saved)
		assert.DirExists(t, filepath.Join(root, "uploads/empty"))
	})
}
