package enrollment

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
	"github.com/TahsinShan/SAT-ar-Matha/app/web"
)

type Handler struct {
	web.Deps
}

func New(deps web.Deps) *Handler {
	return &Handler{Deps: deps}
}

func (h *Handler) ShowEnrollPage(c *fiber.Ctx) error {
	id := auth.CurrentIdentity(c)
	enrolled, err := h.Store.ListEnrolledCourses(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	selected := make(map[int64]bool, len(enrolled))
	for _, course := range enrolled {
		selected[course.ID] = true
	}
	return h.render(c, fiber.StatusOK, selected, nil)
}

func (h *Handler) render(c *fiber.Ctx, status int, selected map[int64]bool, errs []string) error {
	courses, err := h.Store.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	options := make([]models.CourseOption, 0, len(courses))
	for _, course := range courses {
		options = append(options, models.CourseOption{Course: course, Selected: selected[course.ID]})
	}
	return web.RenderStatus(c, status, "enrollment/enroll", "Enroll in courses", fiber.Map{
		"Options": options,
		"Errors":  errs,
	})
}

// Enroll makes the submitted selection the student's complete enrollment.
// Submitting nothing withdraws from every course.
func (h *Handler) Enroll(c *fiber.Ctx) error {
	id := auth.CurrentIdentity(c)
	courseIDs, err := web.FormIDs(c, "courses")
	if err != nil {
		return h.render(c, fiber.StatusBadRequest, nil, []string{"Invalid course selection"})
	}

	err = h.Store.ReplaceEnrollments(c.UserContext(), id.UserID, courseIDs)
	if core.IsConstraint(err) {
		selected := make(map[int64]bool, len(courseIDs))
		for _, courseID := range courseIDs {
			selected[courseID] = true
		}
		return h.render(c, fiber.StatusBadRequest, selected, []string{"One of the selected courses no longer exists"})
	}
	if err != nil {
		return err
	}
	h.Log.Info().Int64("student_id", id.UserID).Ints64("courses", courseIDs).Msg("enrollment replaced")
	return web.RedirectWithFlash(c, "/dashboard", "Enrollment saved")
}
