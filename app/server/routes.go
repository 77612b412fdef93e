package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/courses"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/dashboard"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/enrollment"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/events"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/resources"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/updates"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/users"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/videos"
)

// Route binds a handler to a path together with who may reach it.
type Route struct {
	Method  string
	Path    string
	Policy  auth.Policy
	Handler fiber.Handler
}

type handlers struct {
	auth       *auth.Handler
	dashboard  *dashboard.Handler
	courses    *courses.Handler
	enrollment *enrollment.Handler
	resources  *resources.Handler
	videos     *videos.Handler
	updates    *updates.Handler
	events     *events.Handler
	users      *users.Handler
	health     fiber.Handler
}

var (
	admin    = auth.Roles(models.RoleAdmin)
	student  = auth.Roles(models.RoleStudent)
	staff    = auth.Roles(models.RoleTeacher, models.RoleAdmin)
	anyone   = auth.Public
	signedIn = auth.Authenticated
)

const (
	get  = fiber.MethodGet
	post = fiber.MethodPost
)

// routes is the whole HTTP surface. Every path and its policy is listed here
// and nowhere else.
func routes(h handlers) []Route {
	return []Route{
		{get, "/", anyone, h.dashboard.Home},
		{get, "/healthz", anyone, h.health},

		{get, "/signup", anyone, h.auth.ShowSignupPage},
		{post, "/signup", anyone, h.auth.Signup},
		{get, "/login", anyone, h.auth.ShowLoginPage},
		{post, "/login", anyone, h.auth.Login},
		{get, "/logout", anyone, h.auth.Logout},
		{post, "/logout", anyone, h.auth.Logout},

		{get, "/dashboard", signedIn, h.dashboard.GetDashboard},
		{get, "/api/dashboard/stats", admin, h.dashboard.GetDashboardStatsAPI},

		{get, "/courses", anyone, h.courses.ListCourses},
		{get, "/admin/manage_course", admin, h.courses.ShowManagePage},
		{post, "/admin/manage_course", admin, h.courses.CreateCourse},
		{get, "/admin/edit_course/:id", admin, h.courses.ShowEditPage},
		{post, "/admin/edit_course/:id", admin, h.courses.UpdateCourse},
		{post, "/admin/delete_course/:id", admin, h.courses.DeleteCourse},

		{get, "/student/enroll", student, h.enrollment.ShowEnrollPage},
		{post, "/student/enroll", student, h.enrollment.Enroll},

		{get, "/admin/course/:id/resources", admin, h.resources.ShowManagePage},
		{post, "/admin/course/:id/resources", admin, h.resources.CreateResource},
		{get, "/admin/resource/:id/edit", admin, h.resources.ShowEditPage},
		{post, "/admin/resource/:id/edit", admin, h.resources.UpdateResource},
		{post, "/admin/resource/:id/delete", admin, h.resources.DeleteResource},
		{get, "/resources", student, h.resources.ListStudentResources},
		{get, "/pdf/:filename", signedIn, h.resources.ServePDF},

		{get, "/admin/course/:id/videos", admin, h.videos.ShowManagePage},
		{post, "/admin/course/:id/videos", admin, h.videos.CreateVideo},
		{get, "/admin/video/:id/edit", admin, h.videos.ShowEditPage},
		{post, "/admin/video/:id/edit", admin, h.videos.UpdateVideo},
		{post, "/admin/video/:id/delete", admin, h.videos.DeleteVideo},
		{get, "/videos", student, h.videos.ListStudentVideos},
		{get, "/videos/watch/:id", signedIn, h.videos.WatchVideo},

		{get, "/upload_update", staff, h.updates.ShowUploadPage},
		{post, "/upload_update", staff, h.updates.PostUpdate},
		{get, "/updates", signedIn, h.updates.ListUpdates},
		{post, "/delete-update/:id", staff, h.updates.DeleteUpdate},

		{get, "/events", signedIn, h.events.ListEvents},
		{get, "/api/events", signedIn, h.events.GetEventsAPI},
		{get, "/manage-events", admin, h.events.ShowManagePage},
		{post, "/manage-events", admin, h.events.CreateEvent},
		{get, "/edit-event/:id", admin, h.events.ShowEditPage},
		{post, "/edit-event/:id", admin, h.events.UpdateEvent},
		{post, "/delete-event/:id", admin, h.events.DeleteEvent},

		{get, "/manage-users", admin, h.users.ManageUsersPage},
		{post, "/delete-user", admin, h.users.DeleteUser},
		{get, "/edit-user/:id", admin, h.users.EditUserPage},
		{post, "/edit-user/:id", admin, h.users.UpdateUser},
		{get, "/admin/add-student", admin, h.users.AddStudentPage},
		{post, "/admin/add-student", admin, h.users.AddStudent},
	}
}
