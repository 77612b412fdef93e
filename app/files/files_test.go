package files

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "uploads"), zerolog.Nop())
	require.NoError(t, err)
	return m
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"lec1.pdf", "lec1.pdf"},
		{"My Lecture Notes.pdf", "My_Lecture_Notes.pdf"},
		{"../../etc/passwd", "etc_passwd"},
		{`..\..\windows\system.ini`, "windows_system.ini"},
		{"résumé.pdf", "resume.pdf"},
		{"日本語.pdf", "pdf"},
		{"...", ""},
		{"a;rm -rf *.pdf", "arm_-rf_.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestSaveAndOpen(t *testing.T) {
	m := newManager(t)

	stored, err := m.Save(Documents, "Lecture 1.pdf", strings.NewReader(samplePDF))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored, "_Lecture_1.pdf"), stored)
	assert.Equal(t, stored, SecureFilename(stored))

	f, ctype, err := m.Open(stored)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "application/pdf", ctype)

	again, err := m.Save(Documents, "Lecture 1.pdf", strings.NewReader(samplePDF))
	require.NoError(t, err)
	assert.NotEqual(t, stored, again, "uploads with the same name must not overwrite each other")
}

func TestSaveRejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{"extension", "notes.exe", samplePDF},
		{"uppercase extension with wrong content", "NOTES.PDF", "MZ\x90\x00 this is not a pdf"},
		{"empty", "notes.pdf", ""},
		{"name sanitised away", "日本.pdf/", samplePDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(t)
			_, err := m.Save(Documents, tt.filename, strings.NewReader(tt.content))
			require.Error(t, err)
			assert.True(t, core.IsValidation(err), "got %v", err)

			entries, err := os.ReadDir(m.Dir())
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestRemove(t *testing.T) {
	m := newManager(t)
	stored, err := m.Save(Documents, "syllabus.pdf", strings.NewReader(samplePDF))
	require.NoError(t, err)

	require.NoError(t, m.Remove(stored))
	_, err = os.Stat(filepath.Join(m.Dir(), stored))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, m.Remove(stored), "already gone")
	assert.NoError(t, m.Remove(""))
}

func TestPathRejectsTraversal(t *testing.T) {
	m := newManager(t)
	for _, name := range []string{"../secret.pdf", "..", "a/b.pdf", "", "x y.pdf"} {
		_, err := m.Path(name)
		assert.True(t, core.IsNotFound(err), name)
	}

	_, _, err := m.Open("missing.pdf")
	assert.True(t, core.IsNotFound(err))
}

func TestReplace(t *testing.T) {
	m := newManager(t)
	old, err := m.Save(Documents, "v1.pdf", strings.NewReader(samplePDF))
	require.NoError(t, err)

	fh := multipartFile(t, "v2.pdf", samplePDF)

	t.Run("commit fails", func(t *testing.T) {
		_, err := m.Replace(Documents, old, fh, func(string) error { return core.ErrNotFound })
		require.ErrorIs(t, err, core.ErrNotFound)
		entries, err := os.ReadDir(m.Dir())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, old, entries[0].Name())
	})

	t.Run("commit succeeds", func(t *testing.T) {
		var committed string
		stored, err := m.Replace(Documents, old, fh, func(name string) error {
			committed = name
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, stored, committed)
		entries, err := os.ReadDir(m.Dir())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, stored, entries[0].Name())
	})
}

func multipartFile(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}
