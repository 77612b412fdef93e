package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
	"github.com/TahsinShan/SAT-ar-Matha/app/web"
)

const (
	recentUpdates  = 5
	upcomingEvents = 5
)

type Handler struct {
	web.Deps
	// Now is the clock used to pick upcoming events.
	Now func() time.Time
}

func New(deps web.Deps) *Handler {
	return &Handler{Deps: deps, Now: time.Now}
}

func (h *Handler) Home(c *fiber.Ctx) error {
	return web.Render(c, "home", "Welcome", nil)
}

// GetDashboard renders the landing page of the signed-in user's role.
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	id := auth.CurrentIdentity(c)
	ctx := c.UserContext()

	user, err := h.Store.GetUserByID(ctx, id.UserID)
	if core.IsNotFound(err) {
		// account removed while the session was still valid
		return c.Redirect("/logout")
	}
	if err != nil {
		return err
	}
	data := fiber.Map{"CurrentPage": "dashboard", "User": user}

	switch user.Role {
	case models.RoleStudent:
		courses, err := h.Store.ListEnrolledCourses(ctx, user.ID)
		if err != nil {
			return err
		}
		updates, err := h.Store.ListUpdates(ctx, models.UpdateFilter{StudentID: user.ID, Limit: recentUpdates})
		if err != nil {
			return err
		}
		data["Courses"], data["Updates"] = courses, updates
		return web.Render(c, "dashboard/student", "Dashboard", data)

	case models.RoleTeacher:
		updates, err := h.Store.ListUpdates(ctx, models.UpdateFilter{TeacherID: user.ID, Limit: recentUpdates})
		if err != nil {
			return err
		}
		events, err := h.upcoming(c)
		if err != nil {
			return err
		}
		data["Updates"], data["Events"] = updates, events
		return web.Render(c, "dashboard/teacher", "Dashboard", data)

	default:
		stats, err := h.Store.GetDashboardStats(ctx)
		if err != nil {
			return err
		}
		data["Stats"] = stats
		return web.Render(c, "dashboard/admin", "Dashboard", data)
	}
}

// upcoming returns the next events from today on, soonest first.
func (h *Handler) upcoming(c *fiber.Ctx) ([]models.Event, error) {
	all, err := h.Store.ListEvents(c.UserContext())
	if err != nil {
		return nil, err
	}
	y, m, d := h.Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var events []models.Event
	// all is latest first, so walk it backwards
	for i := len(all) - 1; i >= 0 && len(events) < upcomingEvents; i-- {
		if !all[i].EventDate.Before(today) {
			events = append(events, all[i])
		}
	}
	return events, nil
}

// GetDashboardStatsAPI returns dashboard statistics as JSON
func (h *Handler) GetDashboardStatsAPI(c *fiber.Ctx) error {
	stats, err := h.Store.GetDashboardStats(c.UserContext())
	if err != nil {
		h.Log.Error().Err(err).Msg("fetching dashboard statistics")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch dashboard statistics",
		})
	}
	return c.JSON(stats)
}
