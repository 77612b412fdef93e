package videos

import (
	"fmt"

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

// Embed codes are kept verbatim; only presence is checked.
type videoForm struct {
	Title     string `form:"title" label:"Title" validate:"required,max=200"`
	EmbedCode string `form:"embed_code" label:"Embed code" validate:"required,max=10000"`
}

func (f *videoForm) clean() {
	f.Title = core.CleanString(f.Title)
	f.EmbedCode = core.CleanString(f.EmbedCode)
}

func manageURL(courseID int64) string {
	return fmt.Sprintf("/admin/course/%d/videos", courseID)
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
	return h.renderManage(c, fiber.StatusOK, course, videoForm{}, nil)
}

func (h *Handler) renderManage(c *fiber.Ctx, status int, course *models.Course, form videoForm, errs []string) error {
	videos, err := h.Store.ListVideos(c.UserContext(), course.ID)
	if err != nil {
		return err
	}
	return web.RenderStatus(c, status, "videos/manage", course.Name+" videos", fiber.Map{
		"Course": course,
		"Videos": videos,
		"Form":   form,
		"Errors": errs,
	})
}

func (h *Handler) CreateVideo(c *fiber.Ctx) error {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	course, err := h.Store.GetCourse(ctx, id)
	if err != nil {
		return err
	}

	var form videoForm
	if err = c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	form.clean()
	if err = core.Validate(form); err != nil {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return h.renderManage(c, fiber.StatusBadRequest, course, form, errs)
	}

	vid := &models.Video{CourseID: course.ID, Title: form.Title, EmbedCode: form.EmbedCode}
	if err = h.Store.CreateVideo(ctx, vid); err != nil {
		return err
	}
	h.Log.Info().Int64("video_id", vid.ID).Int64("course_id", course.ID).Msg("video added")
	return web.RedirectWithFlash(c, manageURL(course.ID), "Video added")
}

func (h *Handler) video(c *fiber.Ctx) (*models.Video, error) {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.Store.GetVideo(c.UserContext(), id)
}

func (h *Handler) ShowEditPage(c *fiber.Ctx) error {
	vid, err := h.video(c)
	if err != nil {
		return err
	}
	return web.Render(c, "videos/edit", "Edit video", fiber.Map{"Video": vid})
}

func (h *Handler) UpdateVideo(c *fiber.Ctx) error {
	vid, err := h.video(c)
	if err != nil {
		return err
	}

	var form videoForm
	if err = c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	form.clean()
	vid.Title, vid.EmbedCode = form.Title, form.EmbedCode
	if err = core.Validate(form); err != nil {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return web.RenderStatus(c, fiber.StatusBadRequest, "videos/edit", "Edit video", fiber.Map{
			"Video":  vid,
			"Errors": errs,
		})
	}
	if err = h.Store.UpdateVideo(c.UserContext(), vid); err != nil {
		return err
	}
	h.Log.Info().Int64("video_id", vid.ID).Msg("video updated")
	return web.RedirectWithFlash(c, manageURL(vid.CourseID), "Video updated")
}

func (h *Handler) DeleteVideo(c *fiber.Ctx) error {
	vid, err := h.video(c)
	if err != nil {
		return err
	}
	if err = h.Store.DeleteVideo(c.UserContext(), vid.ID); err != nil {
		return err
	}
	h.Log.Info().Int64("video_id", vid.ID).Msg("video deleted")
	return web.RedirectWithFlash(c, manageURL(vid.CourseID), "Video deleted")
}

func (h *Handler) ListStudentVideos(c *fiber.Ctx) error {
	id := auth.CurrentIdentity(c)
	videos, err := h.Store.ListStudentVideos(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return web.Render(c, "videos/index", "Videos", fiber.Map{"Videos": videos})
}

// WatchVideo plays a single video. Students may only watch videos of
// courses they are enrolled in.
func (h *Handler) WatchVideo(c *fiber.Ctx) error {
	vid, err := h.video(c)
	if err != nil {
		return err
	}
	id := auth.CurrentIdentity(c)
	if id.IsStudent() {
		ok, err := h.Store.IsEnrolled(c.UserContext(), id.UserID, vid.CourseID)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrForbidden
		}
	}
	return web.Render(c, "videos/watch", vid.Title, fiber.Map{"Video": vid})
}
