package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/web"
)

// statusOf maps an error returned by a handler to the HTTP status it stands for.
func statusOf(err error) int {
	var fErr *fiber.Error
	switch {
	case errors.As(err, &fErr):
		return fErr.Code
	case core.IsNotFound(err):
		return fiber.StatusNotFound
	case errors.Is(err, core.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, core.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case core.IsValidation(err):
		return fiber.StatusBadRequest
	case core.IsConstraint(err):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// errorHandler renders every failure through the error template.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusOf(err)
		title, message := "An Error Occurred", "Something went wrong."

		switch code {
		case fiber.StatusNotFound:
			title, message = "Page Not Found", "The page or record you are looking for does not exist."
		case fiber.StatusForbidden:
			title, message = "Access Forbidden", "You don't have permission to access this resource."
		case fiber.StatusUnauthorized:
			title, message = "Unauthorized", "Please log in to access this resource."
		case fiber.StatusBadRequest:
			title, message = "Bad Request", err.Error()
		case fiber.StatusConflict:
			title, message = "Conflict", "The change conflicts with existing data."
		case fiber.StatusRequestEntityTooLarge:
			title, message = "Upload Too Large", "The submitted file is larger than allowed."
		case fiber.StatusInternalServerError:
			title, message = "Internal Server Error", "We're experiencing technical difficulties. Please try again later."
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		default:
			var fErr *fiber.Error
			if errors.As(err, &fErr) {
				message = fErr.Message
			}
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   message,
				"code":    code,
			})
		}

		rerr := web.RenderStatus(c, code, "error", title, fiber.Map{
			"CurrentPage":  "",
			"ErrorCode":    code,
			"ErrorTitle":   title,
			"ErrorMessage": message,
			"ShowRetry":    code == fiber.StatusInternalServerError,
		})
		if rerr != nil {
			log.Error().Err(rerr).Msg("rendering error page")
			return c.Status(code).SendString(message)
		}
		return nil
	}
}
