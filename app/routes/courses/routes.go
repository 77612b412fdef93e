package courses

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/files"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/web"
)

const manageURL = "/admin/manage_course"

type Handler struct {
	web.Deps
}

func New(deps web.Deps) *Handler {
	return &Handler{Deps: deps}
}

type courseForm struct {
	Name string `form:"name" label:"Name" validate:"required,max=200"`
	Code string `form:"code" label:"Code" validate:"required,max=50"`
}

func (f *courseForm) clean() {
	f.Name = core.CleanString(f.Name)
	f.Code = core.CleanString(f.Code)
}

// ListCourses is the public course catalogue.
func (h *Handler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.Store.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	return web.Render(c, "courses/index", "Courses", fiber.Map{"Courses": courses})
}

func (h *Handler) ShowManagePage(c *fiber.Ctx) error {
	return h.renderManage(c, fiber.StatusOK, nil, courseForm{})
}

func (h *Handler) renderManage(c *fiber.Ctx, status int, errs []string, form courseForm) error {
	courses, err := h.Store.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	return web.RenderStatus(c, status, "courses/manage", "Manage courses", fiber.Map{
		"Courses": courses,
		"Errors":  errs,
		"Form":    form,
	})
}

// CreateCourse adds a course. The syllabus is optional, but a file that is
// not a PDF rejects the whole submission.
func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	var form courseForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	form.clean()
	if err := core.Validate(form); err != nil {
		return h.manageFailed(c, form, err)
	}

	course := &models.Course{Name: form.Name, Code: form.Code}
	if fh := web.OptionalFile(c, "syllabus_pdf"); fh != nil {
		stored, err := h.Files.SaveUpload(files.Documents, fh)
		if err != nil {
			return h.manageFailed(c, form, err)
		}
		course.SyllabusPDF = models.OptionalString(stored)
	}

	if err := h.Store.CreateCourse(c.UserContext(), course); err != nil {
		_ = h.Files.Remove(course.SyllabusPDF.String)
		return err
	}
	h.Log.Info().Int64("course_id", course.ID).Str("code", course.Code).Msg("course created")
	return web.RedirectWithFlash(c, manageURL, "Course added")
}

func (h *Handler) manageFailed(c *fiber.Ctx, form courseForm, err error) error {
	errs, err := web.FormErrors(err)
	if err != nil {
		return err
	}
	return h.renderManage(c, fiber.StatusBadRequest, errs, form)
}

func (h *Handler) ShowEditPage(c *fiber.Ctx) error {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return err
	}
	course, err := h.Store.GetCourse(c.UserContext(), id)
	if err != nil {
		return err
	}
	return h.renderEdit(c, fiber.StatusOK, course, nil)
}

func (h *Handler) renderEdit(c *fiber.Ctx, status int, course *models.Course, errs []string) error {
	return web.RenderStatus(c, status, "courses/edit", "Edit course", fiber.Map{
		"Course": course,
		"Errors": errs,
	})
}

func (h *Handler) UpdateCourse(c *fiber.Ctx) error {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	course, err := h.Store.GetCourse(ctx, id)
	if err != nil {
		return err
	}

	var form courseForm
	if err = c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	form.clean()
	course.Name, course.Code = form.Name, form.Code
	if err = core.Validate(form); err != nil {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return h.renderEdit(c, fiber.StatusBadRequest, course, errs)
	}

	if fh := web.OptionalFile(c, "syllabus_pdf"); fh != nil {
		_, err = h.Files.Replace(files.Documents, course.SyllabusPDF.String, fh, func(stored string) error {
			course.SyllabusPDF = models.OptionalString(stored)
			return h.Store.UpdateCourse(ctx, course)
		})
	} else {
		err = h.Store.UpdateCourse(ctx, course)
	}
	if err != nil {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return h.renderEdit(c, fiber.StatusBadRequest, course, errs)
	}
	h.Log.Info().Int64("course_id", course.ID).Msg("course updated")
	return web.RedirectWithFlash(c, manageURL, "Course updated")
}

// DeleteCourse removes the course with everything attached to it, then
// cleans up its files. A file that cannot be removed does not fail the request.
func (h *Handler) DeleteCourse(c *fiber.Ctx) error {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return err
	}
	orphans, err := h.Store.DeleteCourse(c.UserContext(), id)
	if err != nil {
		return err
	}
	for _, name := range orphans {
		_ = h.Files.Remove(name)
	}
	h.Log.Info().Int64("course_id", id).Int("files", len(orphans)).Msg("course deleted")
	return web.RedirectWithFlash(c, manageURL, "Course deleted")
}
