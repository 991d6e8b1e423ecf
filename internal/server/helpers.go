package server

import (
	"strconv"

	"kms/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts and validates a numeric path parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid ID")
	}
	return uint(id), nil
}

// respondServiceError maps a service/repository error to its HTTP response.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForAppError(err), err)
}
