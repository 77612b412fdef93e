package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/TahsinShan/SAT-ar-Matha/app/config"
	inmemdb "github.com/TahsinShan/SAT-ar-Matha/app/database/inmem"
	"github.com/TahsinShan/SAT-ar-Matha/app/files"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

type renderedView struct {
	name string
	data fiber.Map
}

// recordingViews stands in for the template engine and remembers what each
// request rendered.
type recordingViews struct {
	mu    sync.Mutex
	views []renderedView
}

func (v *recordingViews) Load() error { return nil }

func (v *recordingViews) Render(w io.Writer, name string, binding interface{}, _ ...string) error {
	data, _ := binding.(fiber.Map)
	v.mu.Lock()
	v.views = append(v.views, renderedView{name: name, data: data})
	v.mu.Unlock()
	_, err := fmt.Fprintf(w, "view:%s", name)
	return err
}

func (v *recordingViews) last(t *testing.T) renderedView {
	t.Helper()
	v.mu.Lock()
	defer v.mu.Unlock()
	require.NotEmpty(t, v.views, "nothing was rendered")
	return v.views[len(v.views)-1]
}

type testEnv struct {
	t        *testing.T
	app      *fiber.App
	db       *inmemdb.DB
	files    *files.Manager
	views    *recordingViews
	hasher   *auth.Hasher
	sessions *auth.Sessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conf := &config.Config{
		Env:     "test",
		Port:    5000,
		Uploads: config.UploadsConfig{Dir: t.TempDir(), MaxBytes: 4 << 20},
		Session: config.SessionConfig{Secret: "test-secret", TTL: time.Hour, CookieName: "lms_session"},
		Auth:    config.AuthConfig{BcryptCost: bcrypt.MinCost},
	}
	db := inmemdb.Open()
	fm, err := files.NewManager(conf.Uploads.Dir, zerolog.Nop())
	require.NoError(t, err)
	views := &recordingViews{}

	app, err := New(Options{Config: conf, Store: db, Files: fm, Log: zerolog.Nop(), Views: views})
	require.NoError(t, err)

	return &testEnv{
		t:        t,
		app:      app,
		db:       db,
		files:    fm,
		views:    views,
		hasher:   auth.NewHasher(bcrypt.MinCost),
		sessions: auth.NewSessions(conf.Session),
	}
}

func (e *testEnv) createUser(role models.Role, name, phone string) *models.User {
	e.t.Helper()
	hash, err := e.hasher.HashPassword("password")
	require.NoError(e.t, err)
	usr := &models.User{Name: name, Role: role, Phone: phone, PasswordHash: hash}
	require.NoError(e.t, e.db.CreateUser(context.Background(), usr))
	return usr
}

func (e *testEnv) createCourse(name, code string) *models.Course {
	e.t.Helper()
	course := &models.Course{Name: name, Code: code}
	require.NoError(e.t, e.db.CreateCourse(context.Background(), course))
	return course
}

func (e *testEnv) enroll(usr *models.User, courses ...*models.Course) {
	e.t.Helper()
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	require.NoError(e.t, e.db.ReplaceEnrollments(context.Background(), usr.ID, ids))
}

// session returns a valid session cookie for usr.
func (e *testEnv) session(usr *models.User) *http.Cookie {
	e.t.Helper()
	token, _, err := e.sessions.GenerateJWT(usr)
	require.NoError(e.t, err)
	return &http.Cookie{Name: e.sessions.CookieName(), Value: token}
}

func (e *testEnv) do(req *http.Request, session *http.Cookie) *http.Response {
	e.t.Helper()
	if session != nil {
		req.AddCookie(session)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) get(path string, session *http.Cookie) *http.Response {
	return e.do(httptest.NewRequest(fiber.MethodGet, path, nil), session)
}

func (e *testEnv) postForm(path string, values url.Values, session *http.Cookie) *http.Response {
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return e.do(req, session)
}

type upload struct {
	field, filename, content string
}

func (e *testEnv) postMultipart(path string, fields map[string]string, file *upload, session *http.Cookie) *http.Response {
	e.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(e.t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile(file.field, file.filename)
		require.NoError(e.t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, path, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return e.do(req, session)
}

func (e *testEnv) storedFiles() []string {
	e.t.Helper()
	entries, err := os.ReadDir(e.files.Dir())
	require.NoError(e.t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
