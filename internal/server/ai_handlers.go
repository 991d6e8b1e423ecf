package server

import (
	"log/slog"

	"kms/internal/middleware"
	"kms/internal/models"

	"github.com/gofiber/fiber/v2"
)

type askRequest struct {
	Topic string `json:"topic"`
}

// AskAI proxies a topic question to the inference provider and returns the
// structured answer. Provider failures are reported as 500s without leaking
// the upstream token.
func (s *Server) AskAI(c *fiber.Ctx) error {
	var req askRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Topic == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Missing topic"))
	}

	answer, err := s.aiClient.Ask(c.UserContext(), req.Topic)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "ai request failed",
			slog.String("error", err.Error()))
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewUpstreamError("AI service unavailable", err))
	}

	return c.JSON(answer)
}
