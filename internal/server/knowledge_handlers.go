package server

import (
	"log/slog"

	"kms/internal/middleware"
	"kms/internal/models"
	"kms/internal/repository"
	"kms/internal/service"

	"github.com/gofiber/fiber/v2"
)

type knowledgeRequest struct {
	Technology string   `json:"technology"`
	Level      string   `json:"level"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type commentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

// GetAllKnowledge lists every article, newest first, with comment counts.
func (s *Server) GetAllKnowledge(c *fiber.Ctx) error {
	items, err := s.knowledgeSvc.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"knowledge": items})
}

// CreateKnowledge stores a new article authored by the caller, pending review.
func (s *Server) CreateKnowledge(c *fiber.Ctx) error {
	var req knowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID, _ := c.Locals("userID").(uint)

	item, err := s.knowledgeSvc.Create(c.UserContext(), service.CreateKnowledgeInput{
		AuthorID:   userID,
		Technology: req.Technology,
		Level:      req.Level,
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "knowledge created",
		slog.Uint64("knowledge_id", uint64(item.ID)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Knowledge created successfully",
		"knowledge": item,
	})
}

// SearchKnowledge filters articles by optional technology, level and keyword
// query parameters. Empty parameters are skipped, not matched against.
func (s *Server) SearchKnowledge(c *fiber.Ctx) error {
	filter := repository.SearchFilter{
		Technology: c.Query("technology"),
		Level:      c.Query("level"),
		Keyword:    c.Query("keyword"),
	}

	items, err := s.knowledgeSvc.Search(c.UserContext(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"knowledge": items})
}

// GetKnowledge returns a single article by id.
func (s *Server) GetKnowledge(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	item, err := s.knowledgeSvc.Get(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"knowledge": item})
}

// UpdateKnowledge replaces an article's content fields. Only the author may
// update; a non-author gets 403 even though the article exists.
func (s *Server) UpdateKnowledge(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req knowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID, _ := c.Locals("userID").(uint)

	item, err := s.knowledgeSvc.Update(c.UserContext(), service.UpdateKnowledgeInput{
		UserID:      userID,
		KnowledgeID: id,
		Technology:  req.Technology,
		Level:       req.Level,
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		Status:      req.Status,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":   "Knowledge updated successfully",
		"knowledge": item,
	})
}

// DeleteKnowledge removes an article after the author-only check.
func (s *Server) DeleteKnowledge(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	userID, _ := c.Locals("userID").(uint)

	if err := s.knowledgeSvc.Delete(c.UserContext(), userID, id); err != nil {
		return respondServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "knowledge deleted",
		slog.Uint64("knowledge_id", uint64(id)))

	return c.JSON(fiber.Map{"message": "Knowledge deleted successfully"})
}

// UpdateKnowledgeStatus is the admin moderation endpoint; it changes status
// regardless of who authored the article.
func (s *Server) UpdateKnowledgeStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	item, err := s.knowledgeSvc.Moderate(c.UserContext(), id, req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "knowledge status updated",
		slog.Uint64("knowledge_id", uint64(id)), slog.String("status", req.Status))

	return c.JSON(fiber.Map{"knowledge": item})
}

// CreateComment attaches a comment to an article.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID, _ := c.Locals("userID").(uint)

	comment, err := s.knowledgeSvc.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:      userID,
		KnowledgeID: id,
		Content:     req.Content,
		ParentID:    req.ParentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

// GetComments lists an article's comments, oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	comments, err := s.knowledgeSvc.ListComments(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}
