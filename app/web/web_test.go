package web_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
	"github.com/TahsinShan/SAT-ar-Matha/app/web"
)

func TestTemplatesRender(t *testing.T) {
	engine, err := web.Engine(false)
	require.NoError(t, err)
	require.NoError(t, engine.Load())

	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	admin := &auth.Identity{UserID: 1, Role: models.RoleAdmin, Name: "Ada"}
	teacher := &auth.Identity{UserID: 2, Role: models.RoleTeacher, Name: "Tom"}
	student := &auth.Identity{UserID: 3, Role: models.RoleStudent, Name: "Sara"}
	course := models.Course{ID: 4, Name: "Algorithms", Code: "CS201", SyllabusPDF: null.StringFrom("ab12cd34_syllabus.pdf")}
	res := models.Resource{ID: 5, CourseID: 4, Filename: "ef56ab78_lec1.pdf", Title: "Lecture 1", CreatedAt: now, CourseName: "Algorithms"}
	vid := models.Video{ID: 6, CourseID: 4, Title: "Intro", EmbedCode: `<iframe src="https://example.com/v"></iframe>`, CreatedAt: now, CourseName: "Algorithms"}
	upd := models.Update{ID: 7, CourseID: 4, TeacherID: null.Int64From(2), Title: "Exam moved", Message: "Friday", CreatedAt: now,
		AuthorName: "Tom", CourseName: "Algorithms", CourseCode: "CS201"}
	event := models.Event{ID: 8, Title: "Midterm", Description: "Hall A", EventDate: now}
	usr := models.User{ID: 3, Name: "Sara", Role: models.RoleStudent, Phone: "0100", Roll: null.StringFrom("R-1")}
	errs := []string{"Title is required"}

	tests := []struct {
		name     string
		identity *auth.Identity
		data     fiber.Map
		contains string
	}{
		{"home", nil, fiber.Map{}, "create an account"},
		{"error", nil, fiber.Map{"ErrorCode": 404, "ErrorTitle": "Not found", "ErrorMessage": "Missing", "ShowRetry": false}, "404"},
		{"auth/login", nil, fiber.Map{"Errors": []string{"Invalid credentials"}, "Phone": "0100"}, "Invalid credentials"},
		{"auth/signup", nil, fiber.Map{"Roles": []models.Role{models.RoleStudent, models.RoleTeacher}}, "teacher"},
		{"dashboard/student", student, fiber.Map{"User": &usr, "Courses": []models.Course{course}, "Updates": []models.Update{upd}}, "Exam moved"},
		{"dashboard/teacher", teacher, fiber.Map{"User": &usr, "Updates": []models.Update{upd}, "Events": []models.Event{event}}, "Midterm"},
		{"dashboard/admin", admin, fiber.Map{"User": &usr, "Stats": &models.DashboardStats{TotalStudents: 12}}, "12"},
		{"courses/index", nil, fiber.Map{"Courses": []models.Course{course}}, "CS201"},
		{"courses/manage", admin, fiber.Map{"Courses": []models.Course{course}, "Errors": errs}, "Title is required"},
		{"courses/edit", admin, fiber.Map{"Course": &course}, "ab12cd34_syllabus.pdf"},
		{"enrollment/enroll", student, fiber.Map{"Options": []models.CourseOption{{Course: course, Selected: true}}}, "checked"},
		{"resources/manage", admin, fiber.Map{"Course": &course, "Resources": []models.Resource{res}}, "Lecture 1"},
		{"resources/edit", admin, fiber.Map{"Resource": &res}, "Lecture 1"},
		{"resources/index", student, fiber.Map{"Resources": []models.Resource{res}}, "/pdf/ef56ab78_lec1.pdf"},
		{"videos/manage", admin, fiber.Map{"Course": &course, "Videos": []models.Video{vid}}, "Intro"},
		{"videos/edit", admin, fiber.Map{"Video": &vid}, "Intro"},
		{"videos/index", student, fiber.Map{"Videos": []models.Video{vid}}, "/videos/watch/6"},
		{"videos/watch", student, fiber.Map{"Video": &vid}, `<iframe src="https://example.com/v"></iframe>`},
		{"updates/upload", teacher, fiber.Map{"Courses": []models.Course{course}}, "Algorithms"},
		{"updates/index", teacher, fiber.Map{"Updates": []models.Update{upd}}, "/delete-update/7"},
		{"events/index", student, fiber.Map{"Events": []models.Event{event}}, "05 Mar 2024"},
		{"events/manage", admin, fiber.Map{"Events": []models.Event{event}}, "Midterm"},
		{"events/edit", admin, fiber.Map{"Event": &event, "Form": fiber.Map{"Title": "Midterm", "Description": "", "EventDate": "2024-03-05"}}, "2024-03-05"},
		{"users/manage", admin, fiber.Map{"Users": []models.User{usr}}, "R-1"},
		{"users/edit", admin, fiber.Map{"User": &usr}, "0100"},
		{"users/add_student", admin, fiber.Map{"Courses": []models.Course{course}, "Form": fiber.Map{"CourseID": int64(4)}}, "selected"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.data["Title"] = "Page - " + web.AppName
			tc.data["CurrentPage"] = strings.SplitN(tc.name, "/", 2)[0]
			if tc.identity != nil {
				tc.data["Identity"] = tc.identity
			}
			var buf bytes.Buffer
			require.NoError(t, engine.Render(&buf, tc.name, tc.data, web.Layout))
			assert.Contains(t, buf.String(), tc.contains)
			assert.Contains(t, buf.String(), "Page - LMS")
		})
	}
}

func TestStudentCannotSeeDeleteButton(t *testing.T) {
	engine, err := web.Engine(false)
	require.NoError(t, err)
	require.NoError(t, engine.Load())

	upd := models.Update{ID: 7, TeacherID: null.Int64From(2), Title: "Exam moved"}
	for _, id := range []*auth.Identity{
		{UserID: 3, Role: models.RoleStudent},
		{UserID: 9, Role: models.RoleTeacher},
	} {
		var buf bytes.Buffer
		data := fiber.Map{"Identity": id, "Updates": []models.Update{upd}, "Title": "Updates"}
		require.NoError(t, engine.Render(&buf, "updates/index", data, web.Layout))
		assert.NotContains(t, buf.String(), "/delete-update/7")
	}
}

func TestFlashAndForms(t *testing.T) {
	app := fiber.New()
	app.Post("/save", func(c *fiber.Ctx) error {
		return web.RedirectWithFlash(c, "/done", "Saved!")
	})
	app.Get("/item/:id", func(c *fiber.Ctx) error {
		id, err := web.ParamID(c, "id")
		if err != nil {
			return err
		}
		return c.JSON(id)
	})
	app.Post("/ids", func(c *fiber.Ctx) error {
		ids, err := web.FormIDs(c, "courses")
		if err != nil {
			return fiber.ErrBadRequest
		}
		return c.JSON(ids)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/save", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/done", resp.Header.Get(fiber.HeaderLocation))
	var flash *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "lms_flash" {
			flash = c
		}
	}
	require.NotNil(t, flash)
	assert.NotContains(t, flash.Value, "Saved!")

	for path, status := range map[string]int{"/item/12": 200, "/item/0": 404, "/item/-3": 404, "/item/x": 404} {
		resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, path)
	}

	post := func(form url.Values) *http.Response {
		req := httptest.NewRequest(fiber.MethodPost, "/ids", strings.NewReader(form.Encode()))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}
	resp = post(url.Values{"courses": {"3", " ", "7"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.JSONEq(t, `[3,7]`, buf.String())

	resp = post(url.Values{"courses": {"3", "abc"}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
