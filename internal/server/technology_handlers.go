package server

import (
	"io"
	"log/slog"
	"mime/multipart"

	"kms/internal/middleware"
	"kms/internal/models"
	"kms/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTechnologies lists the catalog ordered by name.
func (s *Server) GetTechnologies(c *fiber.Ctx) error {
	techs, err := s.technologySvc.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"technologies": techs})
}

// CreateTechnology adds a catalog entry from a multipart form with a name
// field and an icon file.
func (s *Server) CreateTechnology(c *fiber.Ctx) error {
	name := c.FormValue("name")

	icon, err := readIconUpload(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	if icon == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Icon file is required"))
	}

	tech, err := s.technologySvc.Create(c.UserContext(), name, icon)
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "technology created",
		slog.Uint64("technology_id", uint64(tech.ID)), slog.String("name", tech.Name))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Technology created successfully",
		"technology": tech,
	})
}

// UpdateTechnology changes the name and/or icon. Both parts are optional; an
// omitted icon keeps the current file.
func (s *Server) UpdateTechnology(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	name := c.FormValue("name")
	icon, err := readIconUpload(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	tech, err := s.technologySvc.Update(c.UserContext(), id, name, icon)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Technology updated successfully",
		"technology": tech,
	})
}

// DeleteTechnology removes the catalog row.
func (s *Server) DeleteTechnology(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := s.technologySvc.Delete(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "technology deleted",
		slog.Uint64("technology_id", uint64(id)))

	return c.JSON(fiber.Map{"message": "Technology deleted successfully"})
}

// readIconUpload pulls the "icon" file out of the multipart form. A form
// without that part returns (nil, nil) so update can keep the current icon.
func readIconUpload(c *fiber.Ctx) (*service.IconUpload, error) {
	fileHeader, err := c.FormFile("icon")
	if err != nil {
		return nil, nil
	}
	return iconFromHeader(fileHeader)
}

func iconFromHeader(fh *multipart.FileHeader) (*service.IconUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewValidationError("Cannot read icon file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewValidationError("Cannot read icon file")
	}
	return &service.IconUpload{Filename: fh.Filename, Content: content}, nil
}
