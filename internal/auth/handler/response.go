package handler

import (
	"errors"

	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// NewErrorHandler is the single error-formatting layer: every handler returns
// its error and this translates it into status + JSON envelope. Internal
// details only leak outside production.
func NewErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"success": false,
				"message": fiberErr.Message,
			})
		}

		var vErr *ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": autherror.ErrValidationFailed.Error(),
				"errors":  vErr.Fields,
			})
		}

		var rlErr *autherror.RateLimitError
		if errors.As(err, &rlErr) {
			c.Set(fiber.HeaderRetryAfter, formatSeconds(rlErr.RetryAfter))
		}

		status := autherror.StatusCode(err)
		body := fiber.Map{
			"success": false,
			"message": autherror.PublicMessage(err),
		}

		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
			if !production {
				body["error"] = err.Error()
			}
		}

		return c.Status(status).JSON(body)
	}
}
