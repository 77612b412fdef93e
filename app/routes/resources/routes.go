package resources

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/files"
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

type resourceForm struct {
	Title string `form:"title" label:"Title" validate:"required,max=200"`
}

func manageURL(courseID int64) string {
	return fmt.Sprintf("/admin/course/%d/resources", courseID)
}

func (h *Handler) ShowManagePage(c *fiber.Ctx) error {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return err
	}
	course, err := h.Store.GetCourse(c.UserContext(), id)
	if err != nil {
		return err
	}
	return h.renderManage(c, fiber.StatusOK, course, resourceForm{}, nil)
}

func (h *Handler) renderManage(c *fiber.Ctx, status int, course *models.Course, form resourceForm, errs []string) error {
	resources, err := h.Store.ListResources(c.UserContext(), course.ID)
	if err != nil {
		return err
	}
	return web.RenderStatus(c, status, "resources/manage", course.Name+" resources", fiber.Map{
		"Course":    course,
		"Resources": resources,
		"Form":      form,
		"Errors":    errs,
	})
}

// CreateResource uploads a PDF for the course. Nothing is stored unless both
// the file and the row are accepted.
func (h *Handler) CreateResource(c *fiber.Ctx) error {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	course, err := h.Store.GetCourse(ctx, id)
	if err != nil {
		return err
	}

	var form resourceForm
	if err = c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	form.Title = core.CleanString(form.Title)
	fail := func(err error) error {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return h.renderManage(c, fiber.StatusBadRequest, course, form, errs)
	}
	if err = core.Validate(form); err != nil {
		return fail(err)
	}
	fh := web.OptionalFile(c, "file")
	if fh == nil {
		return fail(core.Invalid("Please choose a PDF file"))
	}
	stored, err := h.Files.SaveUpload(files.Documents, fh)
	if err != nil {
		return fail(err)
	}

	res := &models.Resource{CourseID: course.ID, Filename: stored, Title: form.Title}
	if err = h.Store.CreateResource(ctx, res); err != nil {
		_ = h.Files.Remove(stored)
		return err
	}
	h.Log.Info().Int64("resource_id", res.ID).Int64("course_id", course.ID).Msg("resource uploaded")
	return web.RedirectWithFlash(c, manageURL(course.ID), "Resource uploaded")
}

func (h *Handler) ShowEditPage(c *fiber.Ctx) error {
	res, err := h.resource(c)
	if err != nil {
		return err
	}
	return h.renderEdit(c, fiber.StatusOK, res, nil)
}

func (h *Handler) resource(c *fiber.Ctx) (*models.Resource, error) {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.Store.GetResource(c.UserContext(), id)
}

func (h *Handler) renderEdit(c *fiber.Ctx, status int, res *models.Resource, errs []string) error {
	return web.RenderStatus(c, status, "resources/edit", "Edit resource", fiber.Map{
		"Resource": res,
		"Errors":   errs,
	})
}

// UpdateResource changes the title and optionally swaps the PDF.
func (h *Handler) UpdateResource(c *fiber.Ctx) error {
	res, err := h.resource(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var form resourceForm
	if err = c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	res.Title = core.CleanString(form.Title)
	form.Title = res.Title
	if err = core.Validate(form); err == nil {
		if fh := web.OptionalFile(c, "file"); fh != nil {
			_, err = h.Files.Replace(files.Documents, res.Filename, fh, func(stored string) error {
				res.Filename = stored
				return h.Store.UpdateResource(ctx, res)
			})
		} else {
			err = h.Store.UpdateResource(ctx, res)
		}
	}
	if err != nil {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return h.renderEdit(c, fiber.StatusBadRequest, res, errs)
	}
	h.Log.Info().Int64("resource_id", res.ID).Msg("resource updated")
	return web.RedirectWithFlash(c, manageURL(res.CourseID), "Resource updated")
}

func (h *Handler) DeleteResource(c *fiber.Ctx) error {
	res, err := h.resource(c)
	if err != nil {
		return err
	}
	if err = h.Store.DeleteResource(c.UserContext(), res.ID); err != nil {
		return err
	}
	_ = h.Files.Remove(res.Filename)
	h.Log.Info().Int64("resource_id", res.ID).Msg("resource deleted")
	return web.RedirectWithFlash(c, manageURL(res.CourseID), "Resource deleted")
}

// ListStudentResources shows the PDFs of the courses the student takes.
func (h *Handler) ListStudentResources(c *fiber.Ctx) error {
	id := auth.CurrentIdentity(c)
	resources, err := h.Store.ListStudentResources(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return web.Render(c, "resources/index", "Resources", fiber.Map{"Resources": resources})
}

// ServePDF streams a stored upload with its sniffed content type.
func (h *Handler) ServePDF(c *fiber.Ctx) error {
	f, contentType, err := h.Files.Open(c.Params("filename"))
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return &core.IOError{Op: "stat", Path: f.Name(), Err: err}
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", info.Name()))
	return c.SendStream(f, int(info.Size()))
}
