package updates

import (
	"github.com/gofiber/fiber/v2"
	"github.com/volatiletech/null/v8"

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

type updateForm struct {
	CourseID int64  `form:"course_id" label:"Course" validate:"required,gt=0"`
	Title    string `form:"title" label:"Title" validate:"required,max=200"`
	Message  string `form:"message" label:"Message" validate:"max=5000"`
}

func (h *Handler) ShowUploadPage(c *fiber.Ctx) error {
	return h.renderUpload(c, fiber.StatusOK, updateForm{}, nil)
}

func (h *Handler) renderUpload(c *fiber.Ctx, status int, form updateForm, errs []string) error {
	courses, err := h.Store.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	return web.RenderStatus(c, status, "updates/upload", "Post an update", fiber.Map{
		"Courses": courses,
		"Form":    form,
		"Errors":  errs,
	})
}

// PostUpdate publishes an announcement to the students of one course.
func (h *Handler) PostUpdate(c *fiber.Ctx) error {
	id := auth.CurrentIdentity(c)
	var form updateForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderUpload(c, fiber.StatusBadRequest, form, []string{"Please choose a course"})
	}
	form.Title = core.CleanString(form.Title)
	form.Message = core.CleanString(form.Message)

	err := core.Validate(form)
	if err == nil {
		upd := &models.Update{
			CourseID:  form.CourseID,
			TeacherID: null.Int64From(id.UserID),
			Title:     form.Title,
			Message:   form.Message,
		}
		if err = h.Store.CreateUpdate(c.UserContext(), upd); err == nil {
			h.Log.Info().Int64("update_id", upd.ID).Int64("course_id", upd.CourseID).Int64("author", id.UserID).Msg("update posted")
			return web.RedirectWithFlash(c, "/updates", "Update posted")
		}
		if core.IsConstraint(err) {
			err = core.Invalid("The selected course no longer exists")
		}
	}
	errs, err := web.FormErrors(err)
	if err != nil {
		return err
	}
	return h.renderUpload(c, fiber.StatusBadRequest, form, errs)
}

// ListUpdates shows students the updates of their courses only. Teachers
// and admins see everything.
func (h *Handler) ListUpdates(c *fiber.Ctx) error {
	id := auth.CurrentIdentity(c)
	var filter models.UpdateFilter
	if id.IsStudent() {
		filter.StudentID = id.UserID
	}
	updates, err := h.Store.ListUpdates(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return web.Render(c, "updates/index", "Updates", fiber.Map{"Updates": updates})
}

// DeleteUpdate is allowed to admins and to the teacher who wrote the update.
func (h *Handler) DeleteUpdate(c *fiber.Ctx) error {
	updateID, err := web.ParamID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	upd, err := h.Store.GetUpdate(ctx, updateID)
	if err != nil {
		return err
	}
	id := auth.CurrentIdentity(c)
	if !id.IsAdmin() && !(id.IsTeacher() && upd.AuthoredBy(id.UserID)) {
		return core.ErrForbidden
	}
	if err = h.Store.DeleteUpdate(ctx, upd.ID); err != nil {
		return err
	}
	h.Log.Info().Int64("update_id", upd.ID).Int64("by", id.UserID).Msg("update deleted")
	return web.RedirectWithFlash(c, "/updates", "Update deleted")
}
