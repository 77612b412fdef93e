// Package files stores uploaded course material on local disk.
package files

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
)

// sniffLen is how much of an upload is read to detect its content type.
const sniffLen = 3072

// Kind is a class of upload with its accepted extensions and content types.
type Kind struct {
	Name       string
	Extensions []string
	MIMETypes  []string
}

// Documents are course PDFs: syllabi and resources.
var Documents = Kind{
	Name:       "document",
	Extensions: []string{".pdf"},
	MIMETypes:  []string{"application/pdf"},
}

func (k Kind) allowsExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range k.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (k Kind) allowsContent(mtype *mimetype.MIME) bool {
	for _, m := range k.MIMETypes {
		if mtype.Is(m) {
			return true
		}
	}
	return false
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces a client supplied name to a flat ASCII filename.
// It returns "" when nothing usable is left.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(b.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

type Manager struct {
	dir string
	log zerolog.Logger
}

// NewManager creates the upload directory if needed.
func NewManager(dir string, log zerolog.Logger) (*Manager, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving uploads dir")
	}
	if err = os.MkdirAll(abs, 0o755); err != nil {
		return nil, &core.IOError{Op: "mkdir", Path: abs, Err: err}
	}
	return &Manager{dir: abs, log: log.With().Str("component", "files").Logger()}, nil
}

func (m *Manager) Dir() string {
	return m.dir
}

// Save validates and writes r under a unique name derived from filename,
// returning the stored name.
func (m *Manager) Save(kind Kind, filename string, r io.Reader) (string, error) {
	if !kind.allowsExtension(filename) {
		return "", core.NewValidationError(errors.New("file type not allowed"),
			core.FieldError{Field: kind.Name, Error: "Only " + strings.Join(kind.Extensions, ", ") + " files are allowed"})
	}
	safe := SecureFilename(filename)
	if safe == "" || !kind.allowsExtension(safe) {
		return "", core.Invalid("invalid file name")
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "reading upload")
	}
	head = head[:n]
	if n == 0 {
		return "", core.Invalid("uploaded file is empty")
	}
	if mtype := mimetype.Detect(head); !kind.allowsContent(mtype) {
		m.log.Debug().Str("filename", filename).Str("detected", mtype.String()).Msg("rejected upload content")
		return "", core.NewValidationError(errors.New("file content not allowed"),
			core.FieldError{Field: kind.Name, Error: "File content does not match its type"})
	}

	stored := strings.SplitN(uuid.NewString(), "-", 2)[0] + "_" + safe
	tmp, err := os.CreateTemp(m.dir, ".upload-*")
	if err != nil {
		return "", &core.IOError{Op: "create", Path: m.dir, Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = io.Copy(tmp, io.MultiReader(bytes.NewReader(head), r)); err != nil {
		_ = tmp.Close()
		return "", &core.IOError{Op: "write", Path: tmp.Name(), Err: err}
	}
	if err = tmp.Close(); err != nil {
		return "", &core.IOError{Op: "close", Path: tmp.Name(), Err: err}
	}
	dest := filepath.Join(m.dir, stored)
	if err = os.Rename(tmp.Name(), dest); err != nil {
		return "", &core.IOError{Op: "rename", Path: dest, Err: err}
	}
	m.log.Info().Str("file", stored).Msg("stored upload")
	return stored, nil
}

func (m *Manager) SaveUpload(kind Kind, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening upload")
	}
	defer f.Close()
	return m.Save(kind, fh.Filename, f)
}

// Replace stores the upload, hands its name to commit and then drops old.
// When commit fails the new file is removed and old is kept.
func (m *Manager) Replace(kind Kind, old string, fh *multipart.FileHeader, commit func(stored string) error) (string, error) {
	stored, err := m.SaveUpload(kind, fh)
	if err != nil {
		return "", err
	}
	if err = commit(stored); err != nil {
		_ = m.Remove(stored)
		return "", err
	}
	if old != stored {
		_ = m.Remove(old)
	}
	return stored, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (m *Manager) Remove(name string) error {
	if name == "" {
		return nil
	}
	path, err := m.Path(name)
	if err != nil {
		return nil
	}
	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		ioErr := &core.IOError{Op: "remove", Path: path, Err: err}
		m.log.Error().Err(ioErr).Msg("could not remove stored file")
		return ioErr
	}
	return nil
}

// Path resolves a stored name inside the upload directory. Names that change
// under sanitising are treated as missing.
func (m *Manager) Path(name string) (string, error) {
	safe := SecureFilename(name)
	if safe == "" || safe != name {
		return "", core.ErrNotFound
	}
	path := filepath.Join(m.dir, safe)
	rel, err := filepath.Rel(m.dir, path)
	if err != nil || rel != safe {
		return "", core.ErrNotFound
	}
	return path, nil
}

// Open returns the stored file together with its detected content type.
func (m *Manager) Open(name string) (*os.File, string, error) {
	path, err := m.Path(name)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", core.ErrNotFound
		}
		return nil, "", &core.IOError{Op: "open", Path: path, Err: err}
	}
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		return nil, "", &core.IOError{Op: "sniff", Path: path, Err: err}
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, "", &core.IOError{Op: "seek", Path: path, Err: err}
	}
	return f, mtype.String(), nil
}

// StoredFile is one upload on disk.
type StoredFile struct {
	Name    string
	ModTime time.Time
}

// List returns the stored uploads. In-flight temporary files are skipped.
func (m *Manager) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, &core.IOError{Op: "readdir", Path: m.dir, Err: err}
	}
	stored := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stored = append(stored, StoredFile{Name: entry.Name(), ModTime: info.ModTime()})
	}
	return stored, nil
}
