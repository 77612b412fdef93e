package events

import (
	"github.com/gofiber/fiber/v2"
)

// GetEventsAPI returns the calendar as JSON for the dashboard widget.
func (h *Handler) GetEventsAPI(c *fiber.Ctx) error {
	events, err := h.Store.ListEvents(c.UserContext())
	if err != nil {
		h.Log.Error().Err(err).Msg("listing events")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to fetch events",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"events":  events,
	})
}
