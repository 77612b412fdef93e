package events

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/volatiletech/null/v8"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
	"github.com/TahsinShan/SAT-ar-Matha/app/web"
)

const (
	manageURL  = "/manage-events"
	dateLayout = "2006-01-02"
)

type Handler struct {
	web.Deps
}

func New(deps web.Deps) *Handler {
	return &Handler{Deps: deps}
}

type eventForm struct {
	Title       string `form:"title" label:"Title" validate:"required,max=200"`
	Description string `form:"description" label:"Description" validate:"max=5000"`
	EventDate   string `form:"event_date" label:"Date" validate:"required,datetime=2006-01-02"`
}

func (f *eventForm) parse() (*models.Event, error) {
	f.Title = core.CleanString(f.Title)
	f.Description = core.CleanString(f.Description)
	f.EventDate = core.CleanString(f.EventDate)
	if err := core.Validate(f); err != nil {
		return nil, err
	}
	date, err := time.Parse(dateLayout, f.EventDate)
	if err != nil {
		return nil, core.Invalid("Date must look like 2024-12-31")
	}
	return &models.Event{Title: f.Title, Description: f.Description, EventDate: date}, nil
}

// ListEvents is the calendar every signed-in user sees, latest date first.
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	events, err := h.Store.ListEvents(c.UserContext())
	if err != nil {
		return err
	}
	return web.Render(c, "events/index", "Events", fiber.Map{"Events": events})
}

func (h *Handler) ShowManagePage(c *fiber.Ctx) error {
	return h.renderManage(c, fiber.StatusOK, eventForm{}, nil)
}

func (h *Handler) renderManage(c *fiber.Ctx, status int, form eventForm, errs []string) error {
	events, err := h.Store.ListEvents(c.UserContext())
	if err != nil {
		return err
	}
	return web.RenderStatus(c, status, "events/manage", "Manage events", fiber.Map{
		"Events": events,
		"Form":   form,
		"Errors": errs,
	})
}

func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var form eventForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	event, err := form.parse()
	if err == nil {
		event.CreatedBy = null.Int64From(auth.CurrentIdentity(c).UserID)
		err = h.Store.CreateEvent(c.UserContext(), event)
	}
	if err != nil {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return h.renderManage(c, fiber.StatusBadRequest, form, errs)
	}
	h.Log.Info().Int64("event_id", event.ID).Msg("event created")
	return web.RedirectWithFlash(c, manageURL, "Event added")
}

func (h *Handler) event(c *fiber.Ctx) (*models.Event, error) {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.Store.GetEvent(c.UserContext(), id)
}

func (h *Handler) ShowEditPage(c *fiber.Ctx) error {
	event, err := h.event(c)
	if err != nil {
		return err
	}
	return web.Render(c, "events/edit", "Edit event", fiber.Map{
		"Event": event,
		"Form": eventForm{
			Title:       event.Title,
			Description: event.Description,
			EventDate:   event.EventDate.Format(dateLayout),
		},
	})
}

func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	orig, err := h.event(c)
	if err != nil {
		return err
	}
	var form eventForm
	if err = c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	event, err := form.parse()
	if err == nil {
		event.ID = orig.ID
		err = h.Store.UpdateEvent(c.UserContext(), event)
	}
	if err != nil {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return web.RenderStatus(c, fiber.StatusBadRequest, "events/edit", "Edit event", fiber.Map{
			"Event":  orig,
			"Form":   form,
			"Errors": errs,
		})
	}
	h.Log.Info().Int64("event_id", event.ID).Msg("event updated")
	return web.RedirectWithFlash(c, manageURL, "Event updated")
}

func (h *Handler) DeleteEvent(c *fiber.Ctx) error {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return err
	}
	if err = h.Store.DeleteEvent(c.UserContext(), id); err != nil {
		return err
	}
	h.Log.Info().Int64("event_id", id).Msg("event deleted")
	return web.RedirectWithFlash(c, manageURL, "Event deleted")
}
