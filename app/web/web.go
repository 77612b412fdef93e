// Package web holds the pieces shared by every page handler: the template
// engine, rendering, flash messages and form parsing.
package web

import (
	"embed"
	"encoding/base64"
	"html/template"
	"io/fs"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	"github.com/TahsinShan/SAT-ar-Matha/app/files"
)

const (
	// AppName prefixes every page title.
	AppName = "LMS"

	// Layout wraps every page.
	Layout = "layouts/main"

	flashCookie = "lms_flash"
)

//go:embed templates
var templatesFS embed.FS

// Deps are the collaborators shared by the page handlers.
type Deps struct {
	Store database.Store
	Files *files.Manager
	Log   zerolog.Logger
}

// Engine builds the view engine over the embedded templates.
func Engine(reload bool) (*html.Engine, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("date", func(t time.Time) string {
		return t.Format("02 Jan 2006")
	})
	engine.AddFunc("datetime", func(t time.Time) string {
		return t.Format("02 Jan 2006 15:04")
	})
	engine.AddFunc("isodate", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	})
	// embed codes are stored and rendered exactly as an admin entered them
	engine.AddFunc("embed_html", func(s string) template.HTML {
		return template.HTML(s) //nolint:gosec
	})
	engine.Reload(reload)
	return engine, nil
}

// Render renders a page inside the main layout, adding the title and any
// pending flash message.
func Render(c *fiber.Ctx, name, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title + " - " + AppName
	if _, ok := data["CurrentPage"]; !ok {
		data["CurrentPage"] = strings.SplitN(name, "/", 2)[0]
	}
	if msg := takeFlash(c); msg != "" {
		data["Flash"] = msg
	}
	return c.Render(name, data, Layout)
}

// RenderStatus is Render with an explicit status code.
func RenderStatus(c *fiber.Ctx, status int, name, title string, data fiber.Map) error {
	c.Status(status)
	return Render(c, name, title, data)
}

// Flash stores a one-shot message shown on the next rendered page.
func Flash(c *fiber.Ctx, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// RedirectWithFlash is the usual ending of a successful form post.
func RedirectWithFlash(c *fiber.Ctx, location, msg string) error {
	Flash(c, msg)
	return c.Redirect(location, fiber.StatusSeeOther)
}

func takeFlash(c *fiber.Ctx) string {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return ""
	}
	c.ClearCookie(flashCookie)
	msg, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}
	return string(msg)
}

// ParamID reads a positive numeric route parameter. Anything else is a 404.
func ParamID(c *fiber.Ctx, key string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.ErrNotFound
	}
	return id, nil
}

// FormID reads a positive numeric form value.
func FormID(c *fiber.Ctx, key string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.FormValue(key)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// FormValues returns every value submitted for key, for urlencoded and
// multipart bodies alike.
func FormValues(c *fiber.Ctx, key string) []string {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		return form.Value[key]
	}
	var values []string
	for _, v := range c.Request().PostArgs().PeekMulti(key) {
		values = append(values, string(v))
	}
	return values
}

// FormIDs parses every value of key as an id, skipping blanks.
func FormIDs(c *fiber.Ctx, key string) ([]int64, error) {
	var ids []int64
	for _, raw := range FormValues(c, key) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// OptionalFile returns the uploaded file for key, or nil when none was chosen.
func OptionalFile(c *fiber.Ctx, key string) *multipart.FileHeader {
	fh, err := c.FormFile(key)
	if err != nil || fh == nil || fh.Filename == "" || fh.Size == 0 {
		return nil
	}
	return fh
}

// FormErrors flattens err for a form banner. Errors that are not validation
// failures are returned so the caller can propagate them.
func FormErrors(err error) ([]string, error) {
	if vErr, ok := core.AsValidation(err); ok {
		return vErr.Messages(), nil
	}
	return nil, err
}
